// Package google loads OAuth2 tokens for the Google Calendar backend.
//
// Tokens are read from per-account files. Obtaining a token in the first
// place is outside this package: any tool that writes an oauth2.Token as
// JSON, or the legacy "<access> <refresh>" pair, produces a usable file.
// When a client id and secret are configured the token is refreshed
// automatically, otherwise it is used as is until it expires.
package google
