package common

import "strings"

// DefaultAccount is used when a request names no account.
const DefaultAccount = "default"

// GetAccountFromArgs extracts the account name from request arguments,
// defaulting to DefaultAccount.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && strings.TrimSpace(accountVal) != "" {
		return strings.TrimSpace(accountVal)
	}
	return DefaultAccount
}

// StringArg returns the trimmed string argument name, or "" when it is
// missing or not a string.
func StringArg(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return strings.TrimSpace(v)
}

// NumberArg returns the numeric argument name. JSON numbers decode as
// float64; ok is false when the argument is missing or not a number.
func NumberArg(args map[string]interface{}, name string) (float64, bool) {
	switch v := args[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
