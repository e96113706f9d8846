// Package inputval validates caller-supplied values before they reach a store.
package inputval

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 8

// MaxPasswordLength matches bcrypt's input limit.
const MaxPasswordLength = 72

// IsValidEmail reports whether s is a bare addr-spec (no display name)
// with a well-formed local part and domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return validDotted(s[:at]) && validDotted(s[at+1:])
}

func validDotted(part string) bool {
	return !strings.HasPrefix(part, ".") &&
		!strings.HasSuffix(part, ".") &&
		!strings.Contains(part, "..")
}

// IsValidPassword reports whether pw has an acceptable length.
func IsValidPassword(pw string) bool {
	n := utf8.RuneCountInString(pw)
	return n >= MinPasswordLength && len(pw) <= MaxPasswordLength
}
