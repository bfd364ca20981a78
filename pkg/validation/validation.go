// Package validation holds the field rules for contacts and accounts.
// The same functions back the server's trust boundary and the Go client's
// advisory checks, so the two can never drift apart.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength     = 2
	MinPasswordLength = 6

	// PhoneDigits is the exact length of an accepted phone number.
	PhoneDigits = 10
	// MaxLenientPhoneDigits is the E.164 upper bound used by the advisory rule.
	MaxLenientPhoneDigits = 15
)

var (
	emailRegex        = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	lenientPhoneRegex = regexp.MustCompile(`^[\d\s\-+().]+$`)
)

// PhoneResult is the outcome of a phone check. Reason is empty when Valid.
type PhoneResult struct {
	Valid  bool
	Reason string
}

// ValidateName reports whether s has at least two characters after trimming.
func ValidateName(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= MinNameLength
}

// ValidateEmail reports whether s looks like local@domain.tld with no spaces.
func ValidateEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// ValidatePhone applies the strict rule: exactly ten ASCII digits, no
// separators, and not a single repeated digit.
func ValidatePhone(s string) PhoneResult {
	s = strings.TrimSpace(s)
	if s == "" {
		return PhoneResult{Reason: "Phone number is required"}
	}
	if !isDigits(s) {
		return PhoneResult{Reason: "Phone number must contain only digits (0-9)"}
	}
	switch {
	case len(s) < PhoneDigits:
		return PhoneResult{Reason: "Phone number must be exactly 10 digits"}
	case len(s) > PhoneDigits:
		return PhoneResult{Reason: "Phone number must be exactly 10 digits (no country code)"}
	}
	if allSame(s) {
		return PhoneResult{Reason: "Please enter a valid phone number"}
	}
	return PhoneResult{Valid: true}
}

// ValidatePhoneLenient accepts common separators and 10-15 digits. It is
// only suitable for input hints; the server enforces ValidatePhone.
func ValidatePhoneLenient(s string) PhoneResult {
	s = strings.TrimSpace(s)
	if s == "" {
		return PhoneResult{Reason: "Phone number is required"}
	}
	if !lenientPhoneRegex.MatchString(s) {
		return PhoneResult{Reason: "Please enter a valid phone number (10-15 digits)"}
	}
	digits := DigitsOnly(s)
	if len(digits) < PhoneDigits || len(digits) > MaxLenientPhoneDigits {
		return PhoneResult{Reason: "Please enter a valid phone number (10-15 digits)"}
	}
	if allSame(digits) {
		return PhoneResult{Reason: "Please enter a valid phone number"}
	}
	return PhoneResult{Valid: true}
}

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
