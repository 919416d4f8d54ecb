// Package apitime is the single place upstream timestamp strings are parsed.
// The CRM, the call-tracking platform and the bot gateway each render
// datetimes slightly differently (with/without offset, T/space separator,
// fractional seconds, missing seconds), and parsing them at every call site
// led the predecessor of this tool to divergent behavior between report
// sections.
package apitime

import (
	"fmt"
	"time"

	"github.com/qcdesk/qcbot/internal/timewindow"
)

// Layouts carrying an explicit offset.
var zoned = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
}

// Naive layouts; wall-clock values are interpreted in the business timezone,
// which is what every upstream in this deployment emits.
var naive = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Parse tries the accepted layouts in order and returns the first match.
func Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime string")
	}
	for _, layout := range zoned {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naive {
		if t, err := time.ParseInLocation(layout, s, timewindow.Zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime format %q", s)
}

// Format renders t the way the CRM and call-tracking APIs expect range
// filters: second precision, business-zone wall clock.
func Format(t time.Time) string {
	return t.In(timewindow.Zone).Format("2006-01-02 15:04:05")
}
