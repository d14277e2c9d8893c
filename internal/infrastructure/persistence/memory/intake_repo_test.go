package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

func mustEvent(t *testing.T, userID int64, at time.Time, drink intake.DrinkType, ml int) *intake.Event {
	t.Helper()
	ev, err := intake.NewEvent(shared.UserID(userID), at, 0, drink, ml)
	require.NoError(t, err)
	return ev
}

func TestIntakeRepository_AppendAssignsIDs(t *testing.T) {
	repo := NewIntakeRepository()
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	first, err := repo.Append(ctx, mustEvent(t, 42, at, intake.DrinkWater, 250))
	require.NoError(t, err)
	second, err := repo.Append(ctx, mustEvent(t, 42, at, intake.DrinkTea, 250))
	require.NoError(t, err)
	other, err := repo.Append(ctx, mustEvent(t, 43, at, intake.DrinkWater, 250))
	require.NoError(t, err)

	assert.Equal(t, shared.EntryID(1), first.ID)
	assert.Equal(t, shared.EntryID(2), second.ID)
	assert.Equal(t, shared.EntryID(1), other.ID, "entry IDs are scoped per user")
}

func TestIntakeRepository_DeleteFreesNoID(t *testing.T) {
	repo := NewIntakeRepository()
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	stored, err := repo.Append(ctx, mustEvent(t, 42, at, intake.DrinkWater, 250))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, 42, stored.ID))

	// The counter keeps moving; reversed entries never recycle their ID.
	next, err := repo.Append(ctx, mustEvent(t, 42, at, intake.DrinkWater, 250))
	require.NoError(t, err)
	assert.Equal(t, shared.EntryID(2), next.ID)
}

func TestIntakeRepository_DeleteMissing(t *testing.T) {
	repo := NewIntakeRepository()
	err := repo.Delete(context.Background(), 42, 99)
	assert.ErrorIs(t, err, shared.ErrEntryNotFound)
}

func TestIntakeRepository_EventsByDate(t *testing.T) {
	repo := NewIntakeRepository()
	ctx := context.Background()

	day1 := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	_, err := repo.Append(ctx, mustEvent(t, 42, day1, intake.DrinkWater, 250))
	require.NoError(t, err)
	_, err = repo.Append(ctx, mustEvent(t, 42, day2, intake.DrinkTea, 250))
	require.NoError(t, err)
	_, err = repo.Append(ctx, mustEvent(t, 42, day1.Add(2*time.Hour), intake.DrinkCoffee, 200))
	require.NoError(t, err)

	events, err := repo.EventsByDate(ctx, 42, timeutil.Day(2026, 3, 10))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, shared.EntryID(1), events[0].ID)
	assert.Equal(t, shared.EntryID(3), events[1].ID)

	empty, err := repo.EventsByDate(ctx, 42, timeutil.Day(2026, 3, 12))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIntakeRepository_DailyTotals(t *testing.T) {
	repo := NewIntakeRepository()
	ctx := context.Background()

	_, err := repo.Append(ctx, mustEvent(t, 42, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), intake.DrinkWater, 500))
	require.NoError(t, err)
	_, err = repo.Append(ctx, mustEvent(t, 42, time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC), intake.DrinkTea, 250))
	require.NoError(t, err)
	_, err = repo.Append(ctx, mustEvent(t, 42, time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC), intake.DrinkCoffee, 200))
	require.NoError(t, err)

	totals, err := repo.DailyTotals(ctx, 42, timeutil.Day(2026, 3, 10), timeutil.Day(2026, 3, 12))
	require.NoError(t, err)
	assert.Equal(t, map[string]shared.Milliliters{
		"2026-03-10": 700, // 500 water + 200 effective tea
		"2026-03-12": 120,
	}, totals)

	// The range is inclusive on both ends and silent days simply have no key.
	narrow, err := repo.DailyTotals(ctx, 42, timeutil.Day(2026, 3, 11), timeutil.Day(2026, 3, 11))
	require.NoError(t, err)
	assert.Empty(t, narrow)
}

func TestIntakeRepository_FirstDay(t *testing.T) {
	repo := NewIntakeRepository()
	ctx := context.Background()

	_, ok, err := repo.FirstDay(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Append(ctx, mustEvent(t, 42, time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC), intake.DrinkWater, 250))
	require.NoError(t, err)
	_, err = repo.Append(ctx, mustEvent(t, 42, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), intake.DrinkWater, 250))
	require.NoError(t, err)

	first, ok, err := repo.FirstDay(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, timeutil.Day(2026, 3, 10), first)
}
