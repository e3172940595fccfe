package apiclient

import "strings"

// errorMessageKeys are checked in order. The first key present with a
// non-null value decides the outcome, even if that value is unusable.
var errorMessageKeys = []string{"message", "error", "detail"}

// NormalizeError turns an arbitrary decoded JSON payload into a single
// message. It never panics and never returns an empty string.
func NormalizeError(payload any) string {
	if isFalsy(payload) {
		return DefaultErrorMessage
	}

	switch p := payload.(type) {
	case string:
		return p
	case map[string]any:
		for _, key := range errorMessageKeys {
			v, ok := p[key]
			if !ok || v == nil {
				continue
			}
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
			return DefaultErrorMessage
		}
	}

	return DefaultErrorMessage
}

// isFalsy mirrors JSON-level emptiness: null, "", false, 0.
func isFalsy(payload any) bool {
	switch p := payload.(type) {
	case nil:
		return true
	case string:
		return p == ""
	case bool:
		return !p
	case float64:
		return p == 0
	case int:
		return p == 0
	}
	return false
}
