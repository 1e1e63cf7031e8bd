// Package logging provides structured logging helpers for weekplanner.
//
// Logging is built on the standard library's slog package. This package
// adds consistent attribute keys, handler construction from configuration
// and anonymization of attendee addresses.
//
// # Usage Patterns
//
//	logger := logging.WithBackend(slog.Default(), "graph")
//	logger.Info("meeting scheduled",
//	    logging.Operation("create_event"),
//	    logging.Zone("America/New_York"))
//
// Attendee and organizer addresses must go through UserHash or Domain:
//
//	logger.Warn("schedule entry failed", logging.UserHash(email))
//
// Remote adapters accept the small Logger interface, satisfied by
// SlogAdapter.
package logging
