// Package profile contains the user's hydration profile: weight, the ml-per-kg
// factor, and the daily goal. The goal follows the formula goal = weight *
// factor while weight is known; an explicit override persists otherwise.
// Goal changes apply prospectively: past daily records keep the goal that was
// active on their date, which is what the goal history tracks.
package profile

import (
	"sort"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// Validation bounds for profile values.
const (
	MinWeightKg = 20
	MaxWeightKg = 300

	MinMlPerKg = 30
	MaxMlPerKg = 35

	// DefaultMlPerKg is the factor a fresh profile starts with.
	DefaultMlPerKg = 33

	MinGoalMl = 500
	MaxGoalMl = 10000
)

// GoalSource records how the current goal was set.
type GoalSource string

const (
	// GoalSourceNone - no goal known yet.
	GoalSourceNone GoalSource = "none"

	// GoalSourceFormula - goal derived from weight * factor.
	GoalSourceFormula GoalSource = "formula"

	// GoalSourceManual - goal set explicitly by the user.
	GoalSourceManual GoalSource = "manual"
)

// Profile is one user's hydration profile.
type Profile struct {
	UserID shared.UserID

	// WeightKg is the user's weight; zero while unknown.
	WeightKg int

	// MlPerKg is the hydration factor in ml per kg of body weight.
	MlPerKg int

	// GoalMl is the daily goal. Zero while unknown; derived aggregates treat
	// a zero goal as "no goal" and never count such days toward a streak.
	GoalMl shared.Milliliters

	// GoalSource records whether the goal follows the formula or an override.
	GoalSource GoalSource

	UpdatedAt time.Time
}

// New creates a fresh profile with the default factor and no goal.
func New(userID shared.UserID) *Profile {
	return &Profile{
		UserID:     userID,
		MlPerKg:    DefaultMlPerKg,
		GoalSource: GoalSourceNone,
	}
}

// HasGoal reports whether a daily goal is known.
func (p *Profile) HasGoal() bool {
	return p.GoalMl > 0
}

// SetWeight updates the weight and recomputes the goal from the formula.
func (p *Profile) SetWeight(kg int) error {
	if kg < MinWeightKg || kg > MaxWeightKg {
		return shared.ErrInvalidProfileValue
	}
	p.WeightKg = kg
	p.recomputeFormulaGoal()
	return nil
}

// SetFactor updates the ml-per-kg factor and recomputes the goal when the
// weight is known.
func (p *Profile) SetFactor(mlPerKg int) error {
	if mlPerKg < MinMlPerKg || mlPerKg > MaxMlPerKg {
		return shared.ErrInvalidProfileValue
	}
	p.MlPerKg = mlPerKg
	if p.WeightKg > 0 {
		p.recomputeFormulaGoal()
	}
	return nil
}

// SetGoal sets an explicit goal override.
func (p *Profile) SetGoal(goalMl int) error {
	if goalMl < MinGoalMl || goalMl > MaxGoalMl {
		return shared.ErrInvalidProfileValue
	}
	p.GoalMl = shared.Milliliters(goalMl)
	p.GoalSource = GoalSourceManual
	return nil
}

// recomputeFormulaGoal pins the goal to weight * factor. The formula wins
// over a manual override once the weight is known, matching the product rule
// that the Mini App always shows the formula goal for weighed-in users.
func (p *Profile) recomputeFormulaGoal() {
	if p.WeightKg <= 0 {
		return
	}
	p.GoalMl = shared.Milliliters(p.WeightKg * p.MlPerKg)
	p.GoalSource = GoalSourceFormula
}

// ═══════════════════════════════════════════════════════════════════════════
// GOAL HISTORY
// ═══════════════════════════════════════════════════════════════════════════

// GoalChange is one prospective goal change: from FromDate (the user's local
// day the change was made) onward, GoalMl is the goal in effect.
type GoalChange struct {
	FromDate time.Time
	GoalMl   shared.Milliliters
}

// GoalHistory is the ordered list of goal changes for one user, ascending by
// FromDate. It answers "what goal was active on day D" for streak and
// calendar computation.
type GoalHistory []GoalChange

// GoalOn returns the goal in effect on the given local date: the most recent
// change on or before the date, or zero when no goal was known yet.
func (h GoalHistory) GoalOn(localDate time.Time) shared.Milliliters {
	day := timeutil.Truncate(localDate)
	var goal shared.Milliliters
	for _, c := range h {
		if c.FromDate.After(day) {
			break
		}
		goal = c.GoalMl
	}
	return goal
}

// Record returns the history with a change applied. A second change on the
// same day replaces the first; the last change of a day wins for that day.
func (h GoalHistory) Record(localDate time.Time, goalMl shared.Milliliters) GoalHistory {
	day := timeutil.Truncate(localDate)
	out := make(GoalHistory, 0, len(h)+1)
	for _, c := range h {
		if !timeutil.IsSameDay(c.FromDate, day) {
			out = append(out, c)
		}
	}
	out = append(out, GoalChange{FromDate: day, GoalMl: goalMl})
	sort.Slice(out, func(i, j int) bool { return out[i].FromDate.Before(out[j].FromDate) })
	return out
}
