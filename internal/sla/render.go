package sla

import (
	"fmt"
	"time"

	"github.com/qcdesk/qcbot/internal/timewindow"
)

const timeLayout = "2006-01-02 15:04:05"

// Render turns an evaluation result into report lines: a summary counter, the
// in-hours/out-of-hours split, then one detail line per overdue order with a
// deep link into the CRM. On-time orders are only counted.
func Render(r Result) []string {
	lines := []string{
		fmt.Sprintf("Orders overdue for first contact - %d / %d", r.Overdue, r.Total()),
		fmt.Sprintf("Created during working hours - %d", r.InHours),
		fmt.Sprintf("Created outside working hours - %d", r.OutOfHours),
	}

	for _, out := range r.Outcomes {
		if !out.Overdue {
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"Order %s (%s): created %s, deadline %s, first contact %s. Status: OVERDUE.",
			out.Order.Number,
			out.Order.Link,
			formatLocal(out.Order.CreatedAt),
			formatLocal(out.Deadline),
			contactLabel(out),
		))
	}
	return lines
}

func contactLabel(out Outcome) string {
	if !out.HasContact() {
		return "none"
	}
	return formatLocal(out.FirstContact)
}

func formatLocal(t time.Time) string {
	return t.In(timewindow.Zone).Format(timeLayout)
}
