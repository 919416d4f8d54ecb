package phone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		// Trunk prefix 8 becomes the country code.
		{"8 (926) 123-45-67", "79261234567", true},
		{"89261234567", "79261234567", true},
		// Already in country-code form.
		{"+7 926 123-45-67", "79261234567", true},
		{"79261234567", "79261234567", true},
		// Bare 10-digit mobile number.
		{"9261234567", "79261234567", true},
		// Patterns that match nothing pass through untouched.
		{"123456", "123456", true},
		{"84951234567", "74951234567", true},
		{"0261234567", "0261234567", true},
		// No digits at all.
		{"", "", false},
		{"n/a", "", false},
		{"---", "", false},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.raw)
		require.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		require.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestNormalizeAgreesAcrossFormats(t *testing.T) {
	// The same subscriber as the CRM and the call log render it.
	a, ok := Normalize("+7 (926) 123-45-67")
	require.True(t, ok)
	b, ok := Normalize("89261234567")
	require.True(t, ok)
	require.Equal(t, a, b)
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{"89261234567", "9261234567", "+79261234567", "123"} {
		once, ok := Normalize(raw)
		require.True(t, ok)
		twice, ok := Normalize(once)
		require.True(t, ok)
		require.Equal(t, once, twice)
	}
}
