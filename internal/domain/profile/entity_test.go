package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

func TestNew(t *testing.T) {
	p := New(42)
	assert.Equal(t, DefaultMlPerKg, p.MlPerKg)
	assert.Equal(t, GoalSourceNone, p.GoalSource)
	assert.False(t, p.HasGoal())
}

func TestSetWeight_Formula(t *testing.T) {
	p := New(42)
	require.NoError(t, p.SetWeight(70))

	assert.Equal(t, 2310, p.GoalMl.Int()) // 70 kg * 33 ml/kg
	assert.Equal(t, GoalSourceFormula, p.GoalSource)
	assert.True(t, p.HasGoal())
}

func TestSetWeight_Bounds(t *testing.T) {
	p := New(42)
	assert.ErrorIs(t, p.SetWeight(19), shared.ErrInvalidProfileValue)
	assert.ErrorIs(t, p.SetWeight(301), shared.ErrInvalidProfileValue)
	require.NoError(t, p.SetWeight(20))
	require.NoError(t, p.SetWeight(300))
}

func TestSetFactor(t *testing.T) {
	p := New(42)

	// Factor alone does nothing while the weight is unknown.
	require.NoError(t, p.SetFactor(30))
	assert.False(t, p.HasGoal())

	require.NoError(t, p.SetWeight(80))
	assert.Equal(t, 2400, p.GoalMl.Int())

	require.NoError(t, p.SetFactor(35))
	assert.Equal(t, 2800, p.GoalMl.Int())

	assert.ErrorIs(t, p.SetFactor(29), shared.ErrInvalidProfileValue)
	assert.ErrorIs(t, p.SetFactor(36), shared.ErrInvalidProfileValue)
}

func TestSetGoal_ManualOverride(t *testing.T) {
	p := New(42)
	require.NoError(t, p.SetGoal(2500))
	assert.Equal(t, 2500, p.GoalMl.Int())
	assert.Equal(t, GoalSourceManual, p.GoalSource)

	assert.ErrorIs(t, p.SetGoal(499), shared.ErrInvalidProfileValue)
	assert.ErrorIs(t, p.SetGoal(10001), shared.ErrInvalidProfileValue)
}

func TestFormulaWinsOverManual(t *testing.T) {
	p := New(42)
	require.NoError(t, p.SetGoal(3000))

	// Once the weight is known the formula takes over.
	require.NoError(t, p.SetWeight(70))
	assert.Equal(t, 2310, p.GoalMl.Int())
	assert.Equal(t, GoalSourceFormula, p.GoalSource)
}

func TestGoalHistory_GoalOn(t *testing.T) {
	d1 := timeutil.Day(2026, 3, 1)
	d2 := timeutil.Day(2026, 3, 10)

	var h GoalHistory
	h = h.Record(d1, 2000)
	h = h.Record(d2, 2500)

	assert.Equal(t, 0, h.GoalOn(timeutil.Day(2026, 2, 28)).Int())
	assert.Equal(t, 2000, h.GoalOn(d1).Int())
	assert.Equal(t, 2000, h.GoalOn(timeutil.Day(2026, 3, 9)).Int())
	assert.Equal(t, 2500, h.GoalOn(d2).Int())
	assert.Equal(t, 2500, h.GoalOn(timeutil.Day(2026, 12, 31)).Int())
}

func TestGoalHistory_SameDayReplaces(t *testing.T) {
	day := timeutil.Day(2026, 3, 10)

	var h GoalHistory
	h = h.Record(day, 2000)
	h = h.Record(day, 2600)

	require.Len(t, h, 1)
	assert.Equal(t, 2600, h.GoalOn(day).Int())
}

func TestGoalHistory_KeepsOrder(t *testing.T) {
	var h GoalHistory
	h = h.Record(timeutil.Day(2026, 3, 10), 2500)
	h = h.Record(timeutil.Day(2026, 3, 1), 2000)

	require.Len(t, h, 2)
	assert.True(t, h[0].FromDate.Before(h[1].FromDate))
}
