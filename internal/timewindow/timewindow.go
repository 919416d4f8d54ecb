// Package timewindow derives the time boundaries a daily report is built
// around. All arithmetic happens in the fixed business timezone (UTC+3, no
// daylight saving), so results are deterministic for any calendar date and
// need no timezone database.
package timewindow

import "time"

// Zone is the business timezone. It is a fixed offset on purpose: the
// upstream APIs exchange wall-clock strings in this zone and converting
// through a named location would make window boundaries depend on the host
// tzdata.
var Zone = time.FixedZone("MSK", 3*60*60)

// OpenHour is the hour business opens, in the business timezone.
const OpenHour = 9

// DefaultCloseHour is the hour business closes. Orders created at or after
// this hour are treated as arrived outside working hours.
const DefaultCloseHour = 21

// Date is a calendar date in the business timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in the business timezone.
func DateOf(t time.Time) Date {
	y, m, d := t.In(Zone).Date()
	return Date{Year: y, Month: m, Day: d}
}

// At returns the instant at the given wall-clock time on d.
func (d Date) At(hour, min, sec int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, min, sec, 0, Zone)
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.At(12, 0, 0).AddDate(0, 0, n))
}

func (d Date) String() string {
	return d.At(0, 0, 0).Format("2006-01-02")
}

// Windows holds every boundary the report sections need for one date.
// Computed once per run and shared read-only, so all fetches and the SLA
// evaluation see the same instants even if wall-clock time passes mid-run.
type Windows struct {
	Date      Date
	CloseHour int

	// FullDayStart..FullDayEnd cover the whole report day,
	// 00:00:00 .. 23:59:59.999999 local.
	FullDayStart time.Time
	FullDayEnd   time.Time

	// BusinessStart..BusinessEnd cover working hours,
	// 09:00:00 .. one second before the closing hour.
	BusinessStart time.Time
	BusinessEnd   time.Time

	// PrevDaySpilloverStart is the previous day's closing time. Orders
	// created after it and before BusinessStart roll into this day's
	// analysis with an overnight deadline.
	PrevDaySpilloverStart time.Time

	// NextBusinessDayStart is 09:00 on the next weekday.
	NextBusinessDayStart time.Time
}

// Compute derives all report windows for d. closeHour <= OpenHour falls back
// to DefaultCloseHour so a zero config value cannot invert the business
// window.
func Compute(d Date, closeHour int) Windows {
	if closeHour <= OpenHour {
		closeHour = DefaultCloseHour
	}

	dayStart := d.At(0, 0, 0)
	return Windows{
		Date:                  d,
		CloseHour:             closeHour,
		FullDayStart:          dayStart,
		FullDayEnd:            dayStart.AddDate(0, 0, 1).Add(-time.Microsecond),
		BusinessStart:         d.At(OpenHour, 0, 0),
		BusinessEnd:           d.At(closeHour, 0, 0).Add(-time.Second),
		PrevDaySpilloverStart: d.AddDays(-1).At(closeHour, 0, 0),
		NextBusinessDayStart:  nextBusinessDayStart(d),
	}
}

func nextBusinessDayStart(d Date) time.Time {
	next := d.AddDays(1).At(OpenHour, 0, 0)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
