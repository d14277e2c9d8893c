package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/internal/infrastructure/persistence/memory"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

func seedLoader(now time.Time) (*Loader, *memory.IntakeRepository, *memory.ProfileRepository) {
	intakes := memory.NewIntakeRepository()
	profiles := memory.NewProfileRepository()
	loader := NewLoader(intakes, profiles, func() time.Time { return now })
	return loader, intakes, profiles
}

func seedDrink(t *testing.T, intakes *memory.IntakeRepository, userID int64, at time.Time, drink intake.DrinkType, ml int) {
	t.Helper()
	ev, err := intake.NewEvent(shared.UserID(userID), at, 0, drink, ml)
	require.NoError(t, err)
	_, err = intakes.Append(context.Background(), ev)
	require.NoError(t, err)
}

func TestGetState_UnknownUserGetsDefaults(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	loader, _, _ := seedLoader(now)
	h := NewGetStateHandler(loader)

	dto, err := h.Handle(context.Background(), GetStateQuery{UserID: 42})
	require.NoError(t, err)

	assert.Equal(t, int64(42), dto.Profile.UserID)
	assert.Equal(t, profile.DefaultMlPerKg, dto.Profile.MlPerKg)
	assert.Equal(t, 0, dto.Profile.GoalMl)
	assert.Equal(t, "2026-03-10", dto.Today.Date)
	assert.Equal(t, 0, dto.Today.TotalMl)
	assert.Empty(t, dto.Today.Entries)
	assert.Equal(t, 0, dto.Streak)

	require.Len(t, dto.Achievements, 3)
	for _, a := range dto.Achievements {
		assert.False(t, a.Unlocked)
	}
}

func TestGetState_AssemblesTodayAndStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	loader, intakes, profiles := seedLoader(now)
	h := NewGetStateHandler(loader)
	ctx := context.Background()

	p := profile.New(42)
	require.NoError(t, p.SetGoal(1000))
	require.NoError(t, profiles.Save(ctx, p))
	require.NoError(t, profiles.RecordGoalChange(ctx, 42, timeutil.Day(2026, 3, 8), 1000))

	seedDrink(t, intakes, 42, time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC), intake.DrinkWater, 1000)
	seedDrink(t, intakes, 42, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), intake.DrinkWater, 1000)
	seedDrink(t, intakes, 42, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), intake.DrinkWater, 800)
	seedDrink(t, intakes, 42, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), intake.DrinkTea, 500)

	dto, err := h.Handle(ctx, GetStateQuery{UserID: 42})
	require.NoError(t, err)

	assert.Equal(t, 1000, dto.Profile.GoalMl)
	assert.Equal(t, "manual", dto.Profile.GoalSource)

	assert.Equal(t, 1200, dto.Today.TotalMl) // 800 water + 400 effective tea
	assert.True(t, dto.Today.GoalMet)
	require.Len(t, dto.Today.Entries, 2)
	assert.Equal(t, "water", dto.Today.Entries[0].Drink)
	assert.Equal(t, "tea", dto.Today.Entries[1].Drink)
	assert.Equal(t, 400, dto.Today.Entries[1].EffectiveMl)

	assert.Equal(t, 3, dto.Streak)
	assert.Equal(t, 3, dto.BestStreak)

	require.NotNil(t, dto.Stats)
	// The week of March 9 carries a known 1000 ml goal on each of its 7 days.
	assert.Equal(t, 7000, dto.Stats.WeekGoalMl)
	assert.Equal(t, 2200, dto.Stats.WeekTotalMl)
}

func TestGetState_TZOffsetPicksTheLocalDay(t *testing.T) {
	// 23:30 UTC is already the next day at UTC+5.
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	loader, _, _ := seedLoader(now)
	h := NewGetStateHandler(loader)

	dto, err := h.Handle(context.Background(), GetStateQuery{UserID: 42, TZOffsetMinutes: 300})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", dto.Today.Date)
}

func TestGetState_Rejects(t *testing.T) {
	loader, _, _ := seedLoader(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	h := NewGetStateHandler(loader)

	_, err := h.Handle(context.Background(), GetStateQuery{UserID: 0})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), GetStateQuery{UserID: 42, TZOffsetMinutes: 900})
	assert.Error(t, err)
}
