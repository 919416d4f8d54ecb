package namecheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A checker with no API key applies the static rules only.
func staticChecker() *Checker {
	return New(Config{})
}

func TestCheckStaticRules(t *testing.T) {
	c := staticChecker()
	ctx := t.Context()

	tests := []struct {
		name   string
		text   string
		field  Field
		valid  bool
		reason string
	}{
		{"empty", "", FieldFirstName, false, ReasonEmpty},
		{"whitespace only", "   ", FieldFirstName, false, ReasonEmpty},
		{"spam placeholder", "спам", FieldFirstName, true, ReasonOK},
		{"spam placeholder case", "Спам", FieldFirstName, true, ReasonOK},
		{"single rune", "А", FieldFirstName, false, ReasonTooShort},
		{"too long", strings.Repeat("а", 71), FieldFirstName, false, ReasonTooLong},
		{"digits only", "12345", FieldFirstName, false, ReasonDigitsOnly},
		{"no letters", "!!--!!", FieldFirstName, false, ReasonNoLetters},
		{"first name with space", "Анна Мария", FieldFirstName, false, ReasonContainsSpaces},
		{"last name with space passes static", "ван Дамм", FieldLastName, true, ReasonSkipped},
		{"plausible name", "Анна", FieldFirstName, true, ReasonSkipped},
		{"transliterated", "Anna", FieldFirstName, true, ReasonSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Check(ctx, tt.text, tt.field, false)
			assert.Equal(t, tt.valid, v.Valid)
			assert.Equal(t, tt.reason, v.Reason)
		})
	}
}

func TestCheckTrimsBeforeRules(t *testing.T) {
	c := staticChecker()
	// Surrounding whitespace is not a "contains spaces" violation.
	v := c.Check(t.Context(), "  Анна  ", FieldFirstName, false)
	assert.True(t, v.Valid)
}

func TestCheckRuneCountNotByteCount(t *testing.T) {
	c := staticChecker()
	// Two Cyrillic letters are four bytes but still long enough.
	v := c.Check(t.Context(), "Ян", FieldFirstName, false)
	assert.True(t, v.Valid)
}
