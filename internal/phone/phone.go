// Package phone canonicalizes phone numbers into the digit-only form used as
// the join key between CRM orders and call-tracking records.
package phone

import "strings"

const (
	countryCode  = '7'
	trunkPrefix  = '8'
	mobilePrefix = '9'
)

// Normalize reduces raw to a comparable digit string. An 11-digit number with
// the domestic trunk prefix gets the country code instead; a bare 10-digit
// mobile number gets the country code prepended. Anything else is returned
// as-is: numbers that match no pattern simply never join with a call record.
// ok is false when raw holds no digits at all.
func Normalize(raw string) (normalized string, ok bool) {
	if raw == "" {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return "", false
	}

	switch {
	case len(s) == 11 && s[0] == trunkPrefix:
		return string(countryCode) + s[1:], true
	case len(s) == 10 && s[0] == mobilePrefix:
		return string(countryCode) + s, true
	default:
		return s, true
	}
}
