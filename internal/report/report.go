// Package report assembles the daily QC report from independent sections.
// Sections run concurrently; each one's failure is contained and rendered as
// an explicit placeholder line, so one dead upstream never shortens the
// report or blocks the other sections.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qcdesk/qcbot/internal/metrics"
	"github.com/qcdesk/qcbot/internal/timewindow"
)

type Config struct {
	// BusinessCloseHour is the single source of the closing-hour boundary
	// used by windows, deadlines and rendering alike. It has drifted
	// between 19 and 21 over the operation's history; never inline it.
	BusinessCloseHour int `split_words:"true" default:"21" validate:"gt=9,lte=23"`
}

// Section produces the lines of one numbered report block. Implementations
// must be safe to run concurrently with other sections and must treat the
// passed windows as read-only.
type Section interface {
	Name() string
	Lines(ctx context.Context, w timewindow.Windows) ([]string, error)
}

const errPlaceholder = "could not retrieve data"

// Assemble computes the windows once, runs every section and joins their
// output under a dated header. It always returns a full report: a failed
// section contributes its placeholder line instead of its counters.
func Assemble(ctx context.Context, date timewindow.Date, closeHour int, sections []Section) string {
	w := timewindow.Compute(date, closeHour)

	results := make([][]string, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sections {
		g.Go(func() error {
			start := time.Now()
			lines, err := s.Lines(gctx, w)
			metrics.SectionDuration.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())
			if err != nil {
				slog.ErrorContext(gctx, "report section failed", "section", s.Name(), "error", err)
				metrics.SectionFailures.WithLabelValues(s.Name()).Inc()
				results[i] = []string{fmt.Sprintf("%s - %s", s.Name(), errPlaceholder)}
				return nil
			}
			results[i] = lines
			return nil
		})
	}
	// Sections never propagate errors; Wait is just the join point.
	_ = g.Wait()

	parts := make([]string, 0, len(results)+1)
	parts = append(parts, fmt.Sprintf("QC report %s\n---", w.Date.At(0, 0, 0).Format("02.01.2006")))
	for _, lines := range results {
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}
