package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

func TestBuildCalendarMonth_GridShape(t *testing.T) {
	s := seriesFromTotals(timeutil.Day(2026, 3, 1), 2000, nil)

	months := []struct {
		year, month int
		weeks       int
	}{
		{2026, 3, 6},  // March 2026 starts on a Sunday, six grid rows
		{2026, 6, 5},  // June 2026 starts on a Monday
		{2026, 2, 5},  // February 2026
		{2027, 2, 4},  // February 2027 starts on a Monday, exactly four weeks
	}

	for _, m := range months {
		cm := BuildCalendarMonth(s, m.year, m.month)
		assert.Equal(t, m.weeks*7, len(cm.Days), "%d-%02d", m.year, m.month)
		assert.Zero(t, len(cm.Days)%7)

		inMonth := 0
		for _, d := range cm.Days {
			if d.InMonth {
				inMonth++
			}
		}
		assert.Equal(t, timeutil.DaysInMonth(m.year, m.month), inMonth)
	}
}

func TestBuildCalendarMonth_MondayFirst(t *testing.T) {
	s := seriesFromTotals(timeutil.Day(2026, 3, 1), 2000, nil)
	cm := BuildCalendarMonth(s, 2026, 3)

	require.NotEmpty(t, cm.Days)
	assert.Equal(t, 1, timeutil.Weekday(cm.Days[0].Date))
	assert.Equal(t, 7, timeutil.Weekday(cm.Days[len(cm.Days)-1].Date))
}

func TestBuildCalendarMonth_Cells(t *testing.T) {
	start := timeutil.Day(2026, 3, 1)
	s := seriesFromTotals(start, 2000, nil)
	s.Totals[timeutil.DayKey(timeutil.Day(2026, 3, 10))] = 1000
	s.Totals[timeutil.DayKey(timeutil.Day(2026, 3, 11))] = 2000
	s.Totals[timeutil.DayKey(timeutil.Day(2026, 3, 12))] = 9000

	cm := BuildCalendarMonth(s, 2026, 3)

	byKey := map[string]CalendarDay{}
	for _, d := range cm.Days {
		byKey[timeutil.DayKey(d.Date)] = d
	}

	assert.Equal(t, 0.5, byKey["2026-03-10"].Ratio)
	assert.Equal(t, 1.0, byKey["2026-03-11"].Ratio)
	// Overshoot caps at double the goal.
	assert.Equal(t, 2.0, byKey["2026-03-12"].Ratio)
	// Silent day: zero total, known goal.
	assert.Equal(t, 0.0, byKey["2026-03-13"].Ratio)
	assert.Equal(t, 2000, byKey["2026-03-13"].GoalMl.Int())

	// Filler cells outside the month carry no data.
	for _, d := range cm.Days {
		if !d.InMonth {
			assert.Zero(t, d.TotalMl.Int())
			assert.Zero(t, d.Ratio)
		}
	}
}
