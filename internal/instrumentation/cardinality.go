package instrumentation

import "github.com/teemow/weekplanner/internal/logging"

// User identifiers must pass through ExtractUserDomain before they become
// metric label values.

// ExtractUserDomain returns the domain of an email address, or "unknown".
//
//	ExtractUserDomain("jane@example.com")  // "example.com"
//	ExtractUserDomain("invalid")           // "unknown"
func ExtractUserDomain(email string) string {
	if d := logging.ExtractDomain(email); d != "" {
		return d
	}
	return "unknown"
}
