package sections

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/qcdesk/qcbot/internal/crm"
	"github.com/qcdesk/qcbot/internal/namecheck"
	"github.com/qcdesk/qcbot/internal/timewindow"
)

// Name checks run against an external classifier, so keep the fan-out modest.
const nameCheckConcurrency = 5

// Names audits the customer name fields on every order created on the report
// day and lists the records operators should clean up.
type Names struct {
	crm     *crm.Client
	checker *namecheck.Checker
}

func NewNames(crmClient *crm.Client, checker *namecheck.Checker) *Names {
	return &Names{crm: crmClient, checker: checker}
}

func (s *Names) Name() string { return "5. Customer name check" }

type nameFinding struct {
	order    crm.Order
	problems []string
}

func (s *Names) Lines(ctx context.Context, w timewindow.Windows) ([]string, error) {
	// Every order of the day is audited, regardless of intake channel.
	orders, err := s.crm.Orders(ctx, w.FullDayStart, w.FullDayEnd, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching orders: %w", err)
	}

	// The same customer can place several orders in a day; audit each record
	// once but keep the first order as the reporting anchor.
	audited := dedupeByCustomer(orders)

	findings := make([]nameFinding, len(audited))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nameCheckConcurrency)
	for i, o := range audited {
		g.Go(func() error {
			findings[i] = nameFinding{order: o, problems: s.auditOrder(gctx, o)}
			return nil
		})
	}
	// Audits never fail hard; Wait only joins the goroutines.
	_ = g.Wait()

	flagged := 0
	details := make([]string, 0, len(findings))
	for _, f := range findings {
		if len(f.problems) == 0 {
			continue
		}
		flagged++
		line := fmt.Sprintf("Order %s: %s", f.order.Number, joinProblems(f.problems))
		if f.order.Customer != nil {
			line += " " + s.crm.CustomerLink(f.order.Customer.ID)
		} else {
			line += " " + s.crm.OrderLink(f.order.ID)
		}
		details = append(details, line)
	}

	lines := []string{
		"5. Customer name check",
		fmt.Sprintf("Orders checked - %d", len(audited)),
		fmt.Sprintf("Orders with name issues - %d", flagged),
	}
	return append(lines, details...), nil
}

// auditOrder returns one "<field>: <reason>" entry per problematic field.
// Patronymic is optional, so an empty one is never flagged.
func (s *Names) auditOrder(ctx context.Context, o crm.Order) []string {
	var first, last, patronymic string
	if o.Customer != nil {
		first = o.Customer.FirstName
		last = o.Customer.LastName
		patronymic = o.Customer.Patronymic
	}

	var problems []string
	lastNameEmpty := last == ""

	if v := s.checker.Check(ctx, first, namecheck.FieldFirstName, lastNameEmpty); !v.Valid {
		problems = append(problems, string(namecheck.FieldFirstName)+": "+v.Reason)
	}
	if !lastNameEmpty {
		if v := s.checker.Check(ctx, last, namecheck.FieldLastName, false); !v.Valid {
			problems = append(problems, string(namecheck.FieldLastName)+": "+v.Reason)
		}
	}
	if patronymic != "" {
		if v := s.checker.Check(ctx, patronymic, namecheck.FieldPatronymic, lastNameEmpty); !v.Valid {
			problems = append(problems, string(namecheck.FieldPatronymic)+": "+v.Reason)
		}
	}
	return problems
}

// dedupeByCustomer keeps the first order per customer ID. Orders with no
// customer record are kept individually; their inline fields still get
// audited.
func dedupeByCustomer(orders []crm.Order) []crm.Order {
	seen := make(map[int64]struct{})
	var out []crm.Order
	for _, o := range orders {
		if o.Customer != nil {
			if _, ok := seen[o.Customer.ID]; ok {
				continue
			}
			seen[o.Customer.ID] = struct{}{}
		}
		out = append(out, o)
	}
	return out
}

func joinProblems(problems []string) string {
	out := problems[0]
	for _, p := range problems[1:] {
		out += "; " + p
	}
	return out
}
