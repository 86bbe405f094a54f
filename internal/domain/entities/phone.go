package entities

import (
	"errors"
	"strings"
)

const (
	CountryDialPrefix  = "+237"
	countryCodeDigits  = "237"
	subscriberDigitLen = 9
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone reduces user input to the canonical +237XXXXXXXXX form.
//
// Separators are ignored and a country code typed by the user (237, 00237 or
// +237) is dropped before the subscriber length is checked.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	digits = strings.TrimPrefix(digits, "00")
	if len(digits) > subscriberDigitLen && strings.HasPrefix(digits, countryCodeDigits) {
		digits = strings.TrimPrefix(digits, countryCodeDigits)
	}
	if len(digits) != subscriberDigitLen {
		return "", ErrInvalidPhone
	}
	return CountryDialPrefix + digits, nil
}

// IsCanonicalPhone reports whether s is already in normalized form.
func IsCanonicalPhone(s string) bool {
	if !strings.HasPrefix(s, CountryDialPrefix) {
		return false
	}
	digits := strings.TrimPrefix(s, CountryDialPrefix)
	if len(digits) != subscriberDigitLen {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
