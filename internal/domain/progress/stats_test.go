package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

func TestComputeStats_FullWeek(t *testing.T) {
	// Monday through Sunday, every day 2020 ml against a 2000 ml goal.
	start := timeutil.Day(2026, 3, 2) // Monday
	today := timeutil.AddDays(start, 6)

	totals := []int{2020, 2020, 2020, 2020, 2020, 2020, 2020}
	s := seriesFromTotals(start, 2000, totals)

	stats := ComputeStats(s, today)

	assert.Equal(t, 2020, stats.Avg7)
	assert.Equal(t, 2020, stats.Median7)
	assert.Equal(t, 7, stats.Above)
	assert.Equal(t, 0, stats.Below)

	assert.Equal(t, 14140, stats.WeekTotalMl)
	assert.Equal(t, 14000, stats.WeekGoalMl)
	// 14140/14000 = 101.0%: past 100 stays past 100, it is not clamped.
	assert.Equal(t, 101, stats.WeekPct)
}

func TestComputeStats_AvgRoundsHalfUp(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	today := timeutil.AddDays(start, 6)

	// Sum 7004: mean 1000.57 rounds up.
	s := seriesFromTotals(start, 2000, []int{1000, 1000, 1000, 1000, 1000, 1000, 1004})
	assert.Equal(t, 1001, ComputeStats(s, today).Avg7)

	// Sum 7003: mean 1000.43 rounds down.
	s = seriesFromTotals(start, 2000, []int{1000, 1000, 1000, 1000, 1000, 1000, 1003})
	assert.Equal(t, 1000, ComputeStats(s, today).Avg7)
}

func TestComputeStats_MedianAndGaps(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	today := timeutil.AddDays(start, 6)

	// Two silent days contribute zero totals.
	s := seriesFromTotals(start, 2000, []int{2000, 0, 1500, 0, 2200, 1800, 2000})

	stats := ComputeStats(s, today)
	assert.Equal(t, 1800, stats.Median7)
	assert.Equal(t, 3, stats.Above)
	assert.Equal(t, 4, stats.Below)
}

func TestComputeStats_UnknownGoalDaysExcludedFromCounts(t *testing.T) {
	today := timeutil.Day(2026, 3, 8)
	goalFrom := timeutil.AddDays(today, -2)

	series := DaySeries{
		Totals:        map[string]shared.Milliliters{},
		Goals:         profile.GoalHistory{{FromDate: goalFrom, GoalMl: 2000}},
		FirstActivity: timeutil.AddDays(today, -6),
		HasActivity:   true,
	}
	for i := -6; i <= 0; i++ {
		series.Totals[timeutil.DayKey(timeutil.AddDays(today, i))] = 2100
	}

	stats := ComputeStats(series, today)
	assert.Equal(t, 3, stats.Above)
	assert.Equal(t, 0, stats.Below)
}

func TestComputeStats_BestDay(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	today := timeutil.AddDays(start, 6)

	s := seriesFromTotals(start, 2000, []int{1500, 2600, 1000, 2600, 2000, 1800, 2100})

	stats := ComputeStats(s, today)
	// Earliest day wins the tie.
	assert.Equal(t, timeutil.AddDays(start, 1), stats.BestDay)
	assert.Equal(t, 2600, stats.BestDayMl)
	assert.Equal(t, timeutil.AddDays(start, 1), stats.BestDayEver)
	assert.Equal(t, 2600, stats.BestDayEverMl)
}

func TestComputeStats_MovingAverageLength(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	today := timeutil.AddDays(start, 6)

	s := seriesFromTotals(start, 2000, []int{2000, 2000, 2000, 2000, 2000, 2000, 2000})

	stats := ComputeStats(s, today)
	require.Len(t, stats.MovingAvg7, 7)
	// The last point covers exactly the visible window.
	assert.Equal(t, stats.Avg7, stats.MovingAvg7[6])
}

func TestComputeStats_EmptySeries(t *testing.T) {
	stats := ComputeStats(DaySeries{Totals: map[string]shared.Milliliters{}}, timeutil.Day(2026, 3, 10))
	assert.Zero(t, stats.Avg7)
	assert.Zero(t, stats.Median7)
	assert.Zero(t, stats.WeekPct)
	assert.Zero(t, stats.Above)
	assert.Zero(t, stats.Below)
}
