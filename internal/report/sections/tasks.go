package sections

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/qcdesk/qcbot/internal/apitime"
	"github.com/qcdesk/qcbot/internal/crm"
	"github.com/qcdesk/qcbot/internal/timewindow"
)

// Tasks tallies, per active manager, how many tasks were due on the report
// day and how many of those were completed or deferred to the next day.
type Tasks struct {
	crm *crm.Client
}

func NewTasks(crmClient *crm.Client) *Tasks {
	return &Tasks{crm: crmClient}
}

func (s *Tasks) Name() string { return "1. Unfinished task check" }

type taskTally struct {
	assigned  int
	completed int
	deferred  int
}

func (s *Tasks) Lines(ctx context.Context, w timewindow.Windows) ([]string, error) {
	managers, err := s.crm.ActiveManagers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching managers: %w", err)
	}

	tasks, err := s.crm.Tasks(ctx, w.FullDayStart, w.FullDayEnd)
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}

	nextDayStart := w.Date.AddDays(1).At(0, 0, 0)
	nextDayEnd := nextDayStart.AddDate(0, 0, 1).Add(-time.Microsecond)

	tallies := make(map[int64]*taskTally)
	for _, t := range tasks {
		if _, ok := managers[t.Performer]; !ok {
			continue
		}
		tally := tallies[t.Performer]
		if tally == nil {
			tally = &taskTally{}
			tallies[t.Performer] = tally
		}
		tally.assigned++

		if t.Complete {
			tally.completed++
			continue
		}
		// An unfinished task whose due time moved into the next day was
		// deferred; anything else is simply not done.
		due, err := apitime.Parse(t.Due)
		if err != nil {
			continue
		}
		if !due.Before(nextDayStart) && !due.After(nextDayEnd) {
			tally.deferred++
		}
	}

	total := 0
	for _, tally := range tallies {
		total += tally.assigned
	}

	lines := []string{fmt.Sprintf("1. Unfinished task check: %d", total)}

	ids := make([]int64, 0, len(tallies))
	for id := range tallies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return managers[ids[i]] < managers[ids[j]] })

	for _, id := range ids {
		tally := tallies[id]
		mark := ""
		if tally.assigned-tally.completed-tally.deferred > 0 {
			mark = "❗"
		}
		lines = append(lines, fmt.Sprintf("%s - assigned %d/completed %d (deferred %d)%s",
			firstWord(managers[id]), tally.assigned, tally.completed, tally.deferred, mark))
	}
	return lines, nil
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i > 0 {
		return s[:i]
	}
	return s
}
