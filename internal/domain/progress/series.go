// Package progress derives everything the product shows from the intake
// ledger: streaks, achievements, rolling statistics, and the calendar
// heat-map. All computations here are pure functions over a day series; they
// never mutate the ledger.
package progress

import (
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// DaySeries is the read-model the derivations run on: effective daily totals
// keyed by YYYY-MM-DD plus the goal history that pins each day's goal.
// Days absent from Totals contributed nothing (total 0).
type DaySeries struct {
	// Totals maps day keys to the day's summed effective milliliters.
	Totals map[string]shared.Milliliters

	// Goals is the user's prospective goal history.
	Goals profile.GoalHistory

	// FirstActivity is the earliest local date with any ledger event.
	FirstActivity time.Time

	// HasActivity is false for an empty ledger.
	HasActivity bool
}

// TotalOn returns the effective total for a day (zero when nothing logged).
func (s DaySeries) TotalOn(day time.Time) shared.Milliliters {
	return s.Totals[timeutil.DayKey(day)]
}

// GoalOn returns the goal in effect on a day (zero when unknown).
func (s DaySeries) GoalOn(day time.Time) shared.Milliliters {
	return s.Goals.GoalOn(day)
}

// GoalKnown reports whether a goal was in effect on the day.
func (s DaySeries) GoalKnown(day time.Time) bool {
	return s.GoalOn(day) > 0
}

// Met reports whether the day counts as met: known goal, total reached it.
func (s DaySeries) Met(day time.Time) bool {
	goal := s.GoalOn(day)
	return goal > 0 && s.TotalOn(day) >= goal
}

// horizon returns the earliest day any derivation needs to look at: the
// first activity or the first goal change, whichever is earlier. The bool is
// false when there is neither.
func (s DaySeries) horizon() (time.Time, bool) {
	switch {
	case s.HasActivity && len(s.Goals) > 0:
		first := s.FirstActivity
		if s.Goals[0].FromDate.Before(first) {
			first = s.Goals[0].FromDate
		}
		return first, true
	case s.HasActivity:
		return s.FirstActivity, true
	case len(s.Goals) > 0:
		return s.Goals[0].FromDate, true
	default:
		return time.Time{}, false
	}
}
