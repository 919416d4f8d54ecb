// Package sections holds the report sections, one file each. Sections own
// their fetch-and-count logic and lean on the leaf packages (timewindow,
// phone, sla) for the shared algorithms.
package sections

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qcdesk/qcbot/internal/apitime"
	"github.com/qcdesk/qcbot/internal/calltrack"
	"github.com/qcdesk/qcbot/internal/crm"
	"github.com/qcdesk/qcbot/internal/phone"
	"github.com/qcdesk/qcbot/internal/sla"
	"github.com/qcdesk/qcbot/internal/timewindow"
)

// Overdue is the contact-SLA section: did every relevant order get a timely
// outbound call.
type Overdue struct {
	crm     *crm.Client
	calls   *calltrack.Client
	methods []string
}

func NewOverdue(crmClient *crm.Client, calls *calltrack.Client, methods []string) *Overdue {
	if len(methods) == 0 {
		methods = crm.DefaultOrderMethods
	}
	return &Overdue{crm: crmClient, calls: calls, methods: methods}
}

func (s *Overdue) Name() string { return "3. Orders overdue for first contact" }

func (s *Overdue) Lines(ctx context.Context, w timewindow.Windows) ([]string, error) {
	var spillover, dayOrders []crm.Order
	var calls []calltrack.Call

	// The two order windows and the call log are independent fetches; the
	// windows themselves were computed once by the caller, so running the
	// fetches in parallel cannot skew boundaries.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spillover, err = s.crm.Orders(gctx, w.PrevDaySpilloverStart, w.FullDayStart.Add(-time.Second), s.methods)
		return err
	})
	g.Go(func() error {
		var err error
		dayOrders, err = s.crm.Orders(gctx, w.FullDayStart, w.FullDayEnd, s.methods)
		return err
	})
	g.Go(func() error {
		var err error
		// Calls through the latest possible deadline, so an order closed
		// right before the next-day grace ran out still counts on-time.
		calls, err = s.calls.CallsReport(gctx, w.PrevDaySpilloverStart, w.NextBusinessDayStart.Add(sla.OutOfHoursGrace))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	orders := toSLAOrders(ctx, s.crm, crm.DedupeOrders(spillover, dayOrders))
	contacts := outboundContacts(ctx, calls)

	lines := sla.Render(sla.Evaluate(w, orders, contacts))
	lines[0] = "3. " + lines[0]
	return lines, nil
}

// toSLAOrders applies the relevance filter: an order participates only with a
// resolvable number, creation time and normalizable phone. Everything else is
// excluded from all counts.
func toSLAOrders(ctx context.Context, c *crm.Client, orders []crm.Order) []sla.Order {
	out := make([]sla.Order, 0, len(orders))
	for _, o := range orders {
		number := o.Number
		if number == "" {
			continue
		}
		normalized, ok := phone.Normalize(o.ContactPhone())
		if !ok {
			slog.DebugContext(ctx, "order skipped: no usable phone", "order", o.ID)
			continue
		}
		createdAt, err := apitime.Parse(o.CreatedAt)
		if err != nil {
			slog.WarnContext(ctx, "order skipped: bad createdAt", "order", o.ID, "createdAt", o.CreatedAt)
			continue
		}
		out = append(out, sla.Order{
			ID:        o.ID,
			Number:    number,
			Phone:     normalized,
			CreatedAt: createdAt,
			Link:      c.OrderLink(o.ID),
		})
	}
	return out
}

// outboundContacts extracts the outbound calls that can participate in the
// SLA join. Records with a bad timestamp or an unusable phone are dropped
// with a warning, never fatal.
func outboundContacts(ctx context.Context, calls []calltrack.Call) []sla.Contact {
	out := make([]sla.Contact, 0, len(calls))
	for _, c := range calls {
		if c.Direction != calltrack.DirectionOut {
			continue
		}
		normalized, ok := phone.Normalize(c.ContactPhoneNumber)
		if !ok {
			continue
		}
		at, err := c.StartedAt()
		if err != nil {
			slog.WarnContext(ctx, "call skipped: bad start time", "start_time", c.StartTime)
			continue
		}
		out = append(out, sla.Contact{Phone: normalized, At: at})
	}
	return out
}
