package inputval

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"rex@example.com", true},
		{"rex.the.dog@example.com", true},
		{"owner+rex@example.com", true},
		{"rex@kennel.example.com", true},
		{"rex42@example.co.uk", true},
		{"r@d.og", true},
		{"rex@localhost", true},
		{"  rex@example.com  ", true}, // surrounding space is ignored

		{"", false},
		{"   ", false},
		{"rex", false},
		{"rex@", false},
		{"@example.com", false},
		{"rex@@example.com", false},

		{".rex@example.com", false},
		{"rex.@example.com", false},
		{"rex..dog@example.com", false},
		{"rex@.example.com", false},
		{"rex@example..com", false},
		{"rex@example.com.", false},

		{"Rex <rex@example.com>", false},
		{"rex @example.com", false},
		{"rex@ example.com", false},
		{"rex@exam ple.com", false},
		{"rex\t@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

// The minimum counts characters; the maximum counts bytes, since bcrypt
// only reads the first 72 bytes of a password.
func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want bool
	}{
		{"empty", "", false},
		{"seven ascii", "1234567", false},
		{"eight ascii", "12345678", true},
		{"seven two-byte runes", strings.Repeat("é", 7), false},
		{"eight two-byte runes", strings.Repeat("é", 8), true},
		{"72 ascii bytes", strings.Repeat("a", MaxPasswordLength), true},
		{"73 ascii bytes", strings.Repeat("a", MaxPasswordLength+1), false},
		{"36 two-byte runes is 72 bytes", strings.Repeat("é", 36), true},
		{"37 two-byte runes is 74 bytes", strings.Repeat("é", 37), false},
		{"24 three-byte runes is 72 bytes", strings.Repeat("€", 24), true},
		{"25 three-byte runes is 75 bytes", strings.Repeat("€", 25), false},
		{"18 four-byte runes is 72 bytes", strings.Repeat("🐕", 18), true},
		{"19 four-byte runes is 76 bytes", strings.Repeat("🐕", 19), false},
		{"71 ascii then a two-byte rune", strings.Repeat("a", 71) + "é", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidPassword(tt.pw); got != tt.want {
				t.Errorf("IsValidPassword(%d bytes, %d runes) = %v, want %v",
					len(tt.pw), len([]rune(tt.pw)), got, tt.want)
			}
		})
	}
}
