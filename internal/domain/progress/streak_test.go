package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// seriesFromTotals builds a DaySeries with one constant goal active from the
// first day and the given totals per day offset from start.
func seriesFromTotals(start time.Time, goal int, totals []int) DaySeries {
	s := DaySeries{
		Totals:        map[string]shared.Milliliters{},
		Goals:         profile.GoalHistory{{FromDate: start, GoalMl: shared.Milliliters(goal)}},
		FirstActivity: start,
		HasActivity:   true,
	}
	for i, ml := range totals {
		if ml > 0 {
			s.Totals[timeutil.DayKey(timeutil.AddDays(start, i))] = shared.Milliliters(ml)
		}
	}
	return s
}

func TestComputeStreak_SixMetDays(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	today := timeutil.AddDays(start, 5)

	s := seriesFromTotals(start, 2000, []int{2000, 2100, 2000, 2500, 2000, 2000})

	state := ComputeStreak(s, today)
	assert.Equal(t, 6, state.CurrentStreak)
	assert.Equal(t, 6, state.BestStreak)
}

func TestComputeStreak_MissBreaksRun(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	today := timeutil.AddDays(start, 6)

	// Four met, one missed, two met again.
	s := seriesFromTotals(start, 2000, []int{2000, 2000, 2000, 2000, 500, 2000, 2000})

	state := ComputeStreak(s, today)
	assert.Equal(t, 2, state.CurrentStreak)
	assert.Equal(t, 4, state.BestStreak)
}

func TestComputeStreak_TodayInProgressDoesNotBreak(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	today := timeutil.AddDays(start, 3)

	// Three met days, today not yet met.
	s := seriesFromTotals(start, 2000, []int{2000, 2000, 2000, 300})

	state := ComputeStreak(s, today)
	assert.Equal(t, 3, state.CurrentStreak)

	// Once today crosses the goal it joins the run.
	s.Totals[timeutil.DayKey(today)] = 2000
	state = ComputeStreak(s, today)
	assert.Equal(t, 4, state.CurrentStreak)
}

func TestComputeStreak_UnknownGoalDaysAreSkipped(t *testing.T) {
	today := timeutil.Day(2026, 3, 10)
	goalFrom := timeutil.AddDays(today, -2)

	// Activity started five days before the goal was known. Unknown-goal days
	// neither extend nor break the run.
	s := DaySeries{
		Totals:        map[string]shared.Milliliters{},
		Goals:         profile.GoalHistory{{FromDate: goalFrom, GoalMl: 2000}},
		FirstActivity: timeutil.AddDays(today, -7),
		HasActivity:   true,
	}
	for i := -7; i <= 0; i++ {
		s.Totals[timeutil.DayKey(timeutil.AddDays(today, i))] = 2100
	}

	state := ComputeStreak(s, today)
	assert.Equal(t, 3, state.CurrentStreak)
	assert.Equal(t, 3, state.BestStreak)
}

func TestComputeStreak_EmptySeries(t *testing.T) {
	state := ComputeStreak(DaySeries{Totals: map[string]shared.Milliliters{}}, timeutil.Day(2026, 3, 10))
	assert.Zero(t, state.CurrentStreak)
	assert.Zero(t, state.BestStreak)
}

func TestComputeStreak_BestNeverBelowCurrent(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	today := timeutil.AddDays(start, 2)

	s := seriesFromTotals(start, 2000, []int{2000, 2000, 2000})
	state := ComputeStreak(s, today)
	assert.GreaterOrEqual(t, state.BestStreak, state.CurrentStreak)
}
