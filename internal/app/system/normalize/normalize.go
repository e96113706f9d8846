// Package normalize canonicalizes user input before it is compared or stored.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a query-string value; case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Type trims and lowercases an enumerated value such as a relationship type.
func Type(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
