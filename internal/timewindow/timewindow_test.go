package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeWeekday(t *testing.T) {
	// 2024-03-13 is a Wednesday.
	w := Compute(Date{2024, time.March, 13}, 21)

	require.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, Zone), w.FullDayStart)
	require.Equal(t, time.Date(2024, 3, 13, 23, 59, 59, 999999000, Zone), w.FullDayEnd)
	require.Equal(t, time.Date(2024, 3, 13, 9, 0, 0, 0, Zone), w.BusinessStart)
	require.Equal(t, time.Date(2024, 3, 13, 20, 59, 59, 0, Zone), w.BusinessEnd)
	require.Equal(t, time.Date(2024, 3, 12, 21, 0, 0, 0, Zone), w.PrevDaySpilloverStart)
	require.Equal(t, time.Date(2024, 3, 14, 9, 0, 0, 0, Zone), w.NextBusinessDayStart)
}

func TestComputeFridaySkipsWeekend(t *testing.T) {
	// 2024-03-15 is a Friday; the next business day is Monday the 18th.
	w := Compute(Date{2024, time.March, 15}, 21)
	require.Equal(t, time.Date(2024, 3, 18, 9, 0, 0, 0, Zone), w.NextBusinessDayStart)
}

func TestComputeSaturday(t *testing.T) {
	// A Saturday report still lands its next business day on Monday.
	w := Compute(Date{2024, time.March, 16}, 21)
	require.Equal(t, time.Date(2024, 3, 18, 9, 0, 0, 0, Zone), w.NextBusinessDayStart)
}

func TestComputeCloseHourChangesBoundaries(t *testing.T) {
	w := Compute(Date{2024, time.March, 13}, 19)
	require.Equal(t, time.Date(2024, 3, 13, 18, 59, 59, 0, Zone), w.BusinessEnd)
	require.Equal(t, time.Date(2024, 3, 12, 19, 0, 0, 0, Zone), w.PrevDaySpilloverStart)
}

func TestComputeInvalidCloseHourFallsBack(t *testing.T) {
	for _, h := range []int{0, -3, OpenHour} {
		w := Compute(Date{2024, time.March, 13}, h)
		require.Equal(t, DefaultCloseHour, w.CloseHour)
		require.True(t, w.BusinessStart.Before(w.BusinessEnd))
	}
}

func TestComputeMonthBoundary(t *testing.T) {
	// Spillover from the last day of February, leap year.
	w := Compute(Date{2024, time.March, 1}, 21)
	require.Equal(t, time.Date(2024, 2, 29, 21, 0, 0, 0, Zone), w.PrevDaySpilloverStart)

	// Year boundary.
	w = Compute(Date{2024, time.January, 1}, 21)
	require.Equal(t, time.Date(2023, 12, 31, 21, 0, 0, 0, Zone), w.PrevDaySpilloverStart)
}

func TestDateOfUsesBusinessZone(t *testing.T) {
	// 22:30 UTC is already the next day at UTC+3.
	instant := time.Date(2024, 3, 13, 22, 30, 0, 0, time.UTC)
	require.Equal(t, Date{2024, time.March, 14}, DateOf(instant))
}

func TestDateAddDays(t *testing.T) {
	d := Date{2024, time.February, 28}
	require.Equal(t, Date{2024, time.February, 29}, d.AddDays(1))
	require.Equal(t, Date{2024, time.March, 1}, d.AddDays(2))
	require.Equal(t, Date{2024, time.February, 27}, d.AddDays(-1))
}

func TestDateString(t *testing.T) {
	require.Equal(t, "2024-03-05", Date{2024, time.March, 5}.String())
}
