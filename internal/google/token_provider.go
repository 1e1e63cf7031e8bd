package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account used when none is named.
const DefaultAccount = "default"

// ErrNoToken is returned when no token file exists for an account.
var ErrNoToken = errors.New("no Google OAuth token found")

// TokenProvider supplies token sources per account.
type TokenProvider interface {
	// TokenSourceForAccount returns a token source for account.
	TokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error)

	// HasTokenForAccount reports whether a token exists for account.
	HasTokenForAccount(account string) bool
}

// OAuthClient identifies the OAuth client that issued the stored tokens.
// Both fields are needed for refreshing.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

func (c OAuthClient) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       CalendarScopes,
	}
}

func (c OAuthClient) canRefresh() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// FileTokenProvider reads tokens from "<dir>/google-<account>.token".
type FileTokenProvider struct {
	dir    string
	client OAuthClient

	// override replaces the path of the default account's token.
	override string
}

// FileTokenOption configures a FileTokenProvider.
type FileTokenOption func(*FileTokenProvider)

// WithTokenDir sets the directory token files are read from.
func WithTokenDir(dir string) FileTokenOption {
	return func(p *FileTokenProvider) { p.dir = dir }
}

// WithDefaultTokenFile reads the default account's token from path.
func WithDefaultTokenFile(path string) FileTokenOption {
	return func(p *FileTokenProvider) { p.override = path }
}

// WithOAuthClient enables token refresh with the given client credentials.
func WithOAuthClient(c OAuthClient) FileTokenOption {
	return func(p *FileTokenProvider) { p.client = c }
}

// NewFileTokenProvider creates a file-based token provider. Token files live
// in the user cache directory unless WithTokenDir is given.
func NewFileTokenProvider(opts ...FileTokenOption) *FileTokenProvider {
	p := &FileTokenProvider{}
	for _, opt := range opts {
		opt(p)
	}
	if p.dir == "" {
		if cache, err := os.UserCacheDir(); err == nil {
			p.dir = filepath.Join(cache, "weekplanner")
		}
	}
	return p
}

var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}

// TokenFilePath returns the token file of account.
func (p *FileTokenProvider) TokenFilePath(account string) string {
	if account == DefaultAccount && p.override != "" {
		return p.override
	}
	return filepath.Join(p.dir, "google-"+account+".token")
}

// HasTokenForAccount reports whether a token file exists for account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(p.TokenFilePath(account))
	return err == nil
}

// TokenSourceForAccount loads the token of account. The returned source
// refreshes the token when client credentials are configured.
func (p *FileTokenProvider) TokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	path := p.TokenFilePath(account)
	token, err := LoadToken(path)
	if err != nil {
		return nil, err
	}

	if p.client.canRefresh() {
		return p.client.config().TokenSource(ctx, token), nil
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token file %s has no access token and no OAuth client is configured to refresh it", path)
	}
	return oauth2.StaticTokenSource(token), nil
}

// LoadToken reads a token file. The file is either an oauth2.Token encoded
// as JSON or the legacy "<access> <refresh>" pair.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNoToken, path)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var token oauth2.Token
		if err := json.Unmarshal([]byte(trimmed), &token); err != nil {
			return nil, fmt.Errorf("failed to decode token file %s: %w", path, err)
		}
		if token.AccessToken == "" && token.RefreshToken == "" {
			return nil, fmt.Errorf("token file %s contains no token", path)
		}
		return &token, nil
	}

	f := strings.Fields(trimmed)
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format in %s", path)
	}
	return &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		// Forces a refresh on first use.
		Expiry: time.Unix(1, 0),
	}, nil
}
