package inputval

import "strings"

// StrategyLocal authenticates with an email and password.
const StrategyLocal = "local"

var allowedStrategies = []string{StrategyLocal}

// IsValidStrategy reports whether s names a supported login strategy.
// Matching ignores case and surrounding whitespace.
func IsValidStrategy(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowedStrategies {
		if s == a {
			return true
		}
	}
	return false
}

// AllowedStrategiesList returns the supported strategies in display order.
func AllowedStrategiesList() []string {
	out := make([]string, len(allowedStrategies))
	copy(out, allowedStrategies)
	return out
}
