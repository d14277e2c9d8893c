package progress

import (
	"time"

	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// StreakState holds the derived streak counters.
// Invariant: CurrentStreak <= BestStreak, and BestStreak never decreases
// across any sequence of ledger operations that does not remove met days.
type StreakState struct {
	CurrentStreak int `json:"current_streak"`
	BestStreak    int `json:"best_streak"`
}

// ComputeStreak derives the streak from the day series as of today.
//
// A day counts iff its goal was known and the total reached it. Days with an
// unknown goal neither extend nor break a run; they are skipped (documented
// policy for the underspecified goalMl=0 case). Today is special while still
// in progress: an unmet today does not break the streak, it just is not
// counted yet, so the current streak is measured as of the most recently
// completed day.
func ComputeStreak(series DaySeries, today time.Time) StreakState {
	today = timeutil.Truncate(today)

	first, ok := series.horizon()
	if !ok {
		return StreakState{}
	}

	state := StreakState{
		CurrentStreak: currentStreak(series, first, today),
		BestStreak:    bestStreak(series, first, today),
	}
	if state.BestStreak < state.CurrentStreak {
		state.BestStreak = state.CurrentStreak
	}
	return state
}

// currentStreak walks backward from today counting met days.
func currentStreak(series DaySeries, first, today time.Time) int {
	day := today
	if !series.Met(today) {
		// Today is still in progress; start counting from yesterday.
		day = timeutil.AddDays(today, -1)
	}

	count := 0
	for !day.Before(first) {
		switch {
		case series.Met(day):
			count++
		case series.GoalKnown(day):
			// Known goal, unmet: the run ends here.
			return count
		}
		// Unknown-goal days are skipped.
		day = timeutil.AddDays(day, -1)
	}
	return count
}

// bestStreak scans the whole history forward, tracking the longest run.
func bestStreak(series DaySeries, first, today time.Time) int {
	best, run := 0, 0
	timeutil.EachDay(first, today, func(day time.Time) {
		switch {
		case series.Met(day):
			run++
			if run > best {
				best = run
			}
		case series.GoalKnown(day):
			run = 0
		}
	})
	return best
}
