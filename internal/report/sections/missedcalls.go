package sections

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qcdesk/qcbot/internal/calltrack"
	"github.com/qcdesk/qcbot/internal/crm"
	"github.com/qcdesk/qcbot/internal/timewindow"
)

// The missed-call tally watches a longer day than the SLA analysis: lines are
// staffed from 08:00 and callbacks count until 19:00.
const (
	missedCallsOpenHour  = 8
	missedCallsCloseHour = 19
)

// Only lost calls where the caller actually waited count as missed; shorter
// ones are hang-ups and misdials.
const missedCallMinDuration = 10 // seconds

// A callback later than this is reported separately even though it happened.
const lateCallbackAfter = 5 * time.Minute

// Customer activity slightly before the missed call still counts as an
// ongoing conversation when searching the CRM for a chat reply.
const chatLookbackSlack = 5 * time.Minute

// MissedCalls counts lost inbound calls and checks each one for a follow-up:
// an outbound call back, or a chat reply found through the CRM.
type MissedCalls struct {
	calls *calltrack.Client
	crm   *crm.Client
}

func NewMissedCalls(calls *calltrack.Client, crmClient *crm.Client) *MissedCalls {
	return &MissedCalls{calls: calls, crm: crmClient}
}

func (s *MissedCalls) Name() string { return "2. Missed calls" }

type missedCall struct {
	phone string
	at    time.Time
}

func (s *MissedCalls) Lines(ctx context.Context, w timewindow.Windows) ([]string, error) {
	from := w.Date.At(missedCallsOpenHour, 0, 0)
	to := w.Date.At(missedCallsCloseHour, 0, 0)

	calls, err := s.calls.CallsReport(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var missed []missedCall
	uniqueCallers := make(map[string]struct{})
	callbacks := make(map[string][]time.Time)

	for _, c := range calls {
		switch c.Direction {
		case calltrack.DirectionIn:
			if c.ContactPhoneNumber != "" {
				uniqueCallers[c.ContactPhoneNumber] = struct{}{}
			}
			if !c.IsLost || c.CallSessionDuration <= missedCallMinDuration {
				continue
			}
			at, err := c.StartedAt()
			if err != nil {
				slog.WarnContext(ctx, "missed call skipped: bad start time", "start_time", c.StartTime)
				continue
			}
			if c.ContactPhoneNumber != "" {
				missed = append(missed, missedCall{phone: c.ContactPhoneNumber, at: at})
			}
		case calltrack.DirectionOut:
			at, err := c.StartedAt()
			if err != nil || c.ContactPhoneNumber == "" {
				continue
			}
			callbacks[c.ContactPhoneNumber] = append(callbacks[c.ContactPhoneNumber], at)
		}
	}

	lateCallbacks := 0
	responded := make(map[string]struct{})

	for _, m := range missed {
		calledBack, firstDelay := firstCallbackAfter(callbacks[m.phone], m.at)
		anyResponse := calledBack

		if !anyResponse && s.chatReplied(ctx, m) {
			anyResponse = true
		}

		if anyResponse {
			responded[m.phone] = struct{}{}
			if calledBack && firstDelay > lateCallbackAfter {
				lateCallbacks++
			}
		}
	}

	return []string{
		fmt.Sprintf("2. Missed calls - %d", len(missed)),
		fmt.Sprintf("Unique callers - %d", len(uniqueCallers)),
		fmt.Sprintf("Callbacks later than 5 minutes - %d", lateCallbacks),
		fmt.Sprintf("No callback or chat reply - %d", len(missed)-len(responded)),
	}, nil
}

// chatReplied checks the CRM for chat activity after the missed call. Lookup
// failures are logged and treated as "no reply": the number then shows up in
// the unresponded counter rather than silently passing.
func (s *MissedCalls) chatReplied(ctx context.Context, m missedCall) bool {
	since := m.at.Add(-chatLookbackSlack)

	customerID, found, err := s.crm.FindCustomerIDByPhone(ctx, m.phone, since)
	if err != nil {
		slog.WarnContext(ctx, "chat reply lookup failed", "phone", m.phone, "error", err)
		return false
	}
	if !found {
		return false
	}

	replied, err := s.crm.HasChatMessagesSince(ctx, customerID, since)
	if err != nil {
		slog.WarnContext(ctx, "chat message lookup failed", "customer", customerID, "error", err)
		return false
	}
	return replied
}

func firstCallbackAfter(times []time.Time, after time.Time) (bool, time.Duration) {
	var best time.Duration
	found := false
	for _, t := range times {
		if !t.After(after) {
			continue
		}
		if d := t.Sub(after); !found || d < best {
			best = d
			found = true
		}
	}
	return found, best
}
