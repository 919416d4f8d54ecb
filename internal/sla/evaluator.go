// Package sla decides, per sales order, whether a timely outbound contact was
// made. Orders and calls are joined on normalized phone number; the contact
// deadline depends on where the order's creation time falls relative to the
// business-hours window.
package sla

import (
	"time"

	"github.com/qcdesk/qcbot/internal/timewindow"
)

// Deadline offsets. The in-hours target is tight because a manager is at the
// desk; orders arriving outside working hours get a grace period from the
// next opening.
const (
	InHoursDeadline = 10 * time.Minute
	OutOfHoursGrace = 2 * time.Hour
)

// Class says which part of the analysis window an order was created in.
type Class int

const (
	// ClassInHours: created within the business-hours window.
	ClassInHours Class = iota
	// ClassSameDayLate: created on the report day after closing.
	ClassSameDayLate
	// ClassOvernight: created after the previous day's close, before
	// today's open.
	ClassOvernight
)

// Order is a relevant order: number, creation instant and normalized phone
// are all known to be present. Callers filter before evaluation.
type Order struct {
	ID        int64
	Number    string
	Phone     string // normalized, see package phone
	CreatedAt time.Time
	Link      string
}

// Contact is an outbound call with a normalized phone.
type Contact struct {
	Phone string
	At    time.Time
}

// Outcome is the per-order verdict.
type Outcome struct {
	Order        Order
	Class        Class
	Deadline     time.Time
	FirstContact time.Time // zero if no qualifying contact was found
	Overdue      bool
}

func (o Outcome) HasContact() bool { return !o.FirstContact.IsZero() }

// Result aggregates outcomes for one report day. Every evaluated order
// contributes to exactly one of InHours/OutOfHours and, when overdue, to
// Overdue. Excluded counts orders whose creation time fell outside the
// analysis window entirely.
type Result struct {
	Outcomes   []Outcome
	InHours    int
	OutOfHours int
	Overdue    int
	Excluded   int
}

func (r Result) Total() int { return r.InHours + r.OutOfHours }

// Evaluate classifies each order, finds its earliest qualifying contact and
// flags it overdue when that contact came after the deadline or never came at
// all. The join is a linear scan per order; daily volumes are sub-thousand so
// indexing the calls buys nothing.
func Evaluate(w timewindow.Windows, orders []Order, contacts []Contact) Result {
	var res Result
	for _, ord := range orders {
		class, deadline, ok := classify(w, ord.CreatedAt)
		if !ok {
			res.Excluded++
			continue
		}

		first := earliestContact(contacts, ord.Phone, ord.CreatedAt)

		out := Outcome{
			Order:        ord,
			Class:        class,
			Deadline:     deadline,
			FirstContact: first,
			// An order nobody called can never be on time, no matter
			// how far away the deadline still is.
			Overdue: first.IsZero() || first.After(deadline),
		}

		if class == ClassInHours {
			res.InHours++
		} else {
			res.OutOfHours++
		}
		if out.Overdue {
			res.Overdue++
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	return res
}

// classify maps a creation instant onto a deadline. The branches are mutually
// exclusive and checked in priority order.
func classify(w timewindow.Windows, createdAt time.Time) (Class, time.Time, bool) {
	switch {
	case !createdAt.Before(w.BusinessStart) && !createdAt.After(w.BusinessEnd):
		return ClassInHours, createdAt.Add(InHoursDeadline), true
	case createdAt.After(w.BusinessEnd) && !createdAt.After(w.FullDayEnd):
		return ClassSameDayLate, w.NextBusinessDayStart.Add(OutOfHoursGrace), true
	case !createdAt.Before(w.PrevDaySpilloverStart) && createdAt.Before(w.BusinessStart):
		return ClassOvernight, w.BusinessStart.Add(OutOfHoursGrace), true
	default:
		return 0, time.Time{}, false
	}
}

// earliestContact returns the minimum timestamp among contacts to the given
// phone at or after createdAt, or the zero time. Ties on the minimum are
// irrelevant: the deadline comparison is identical for either.
func earliestContact(contacts []Contact, phone string, createdAt time.Time) time.Time {
	var first time.Time
	for _, c := range contacts {
		if c.Phone != phone || c.At.Before(createdAt) {
			continue
		}
		if first.IsZero() || c.At.Before(first) {
			first = c.At
		}
	}
	return first
}
