package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/internal/infrastructure/persistence/memory"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// fixture wires the command handlers over in-memory stores with a
// controllable clock.
type fixture struct {
	intakes  *memory.IntakeRepository
	profiles *memory.ProfileRepository
	tickets  *memory.TicketStore
	now      time.Time

	submit  *SubmitIntakeHandler
	undo    *UndoIntakeHandler
	profile *UpdateProfileHandler
}

func newFixture(t *testing.T, start time.Time) *fixture {
	t.Helper()

	f := &fixture{
		intakes:  memory.NewIntakeRepository(),
		profiles: memory.NewProfileRepository(),
		tickets:  memory.NewTicketStore(),
		now:      start,
	}
	loader := query.NewLoader(f.intakes, f.profiles, func() time.Time { return f.now })
	locker := NewUserLocker()

	f.submit = NewSubmitIntakeHandler(
		f.intakes, f.profiles, f.tickets, locker, loader, nil,
		SubmitIntakeHandlerConfig{UndoWindow: 5 * time.Second},
	)
	f.undo = NewUndoIntakeHandler(f.intakes, f.tickets, locker, loader, nil)
	f.profile = NewUpdateProfileHandler(f.profiles, locker, loader, nil)
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) setGoal(t *testing.T, userID int64, goalMl int) {
	t.Helper()
	_, err := f.profile.Handle(context.Background(), UpdateProfileCommand{
		UserID: userID,
		GoalMl: &goalMl,
	})
	require.NoError(t, err)
}

func (f *fixture) drink(t *testing.T, userID int64, drink string, ml int) *SubmitIntakeResult {
	t.Helper()
	res, err := f.submit.Handle(context.Background(), SubmitIntakeCommand{
		UserID: userID,
		RawMl:  ml,
		Drink:  drink,
	})
	require.NoError(t, err)
	return res
}

func TestSubmitIntake_LogsEffectiveVolume(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	res := f.drink(t, 42, "tea", 250)

	assert.Equal(t, int64(1), res.EntryID)
	assert.Equal(t, 250, res.Entry.RawMl.Int())
	assert.Equal(t, 200, res.Entry.EffectiveMl.Int())
	assert.Equal(t, 200, res.Today.TotalMl.Int())
	assert.Equal(t, f.now.Add(5*time.Second), res.UndoExpiresAt)

	require.NotEmpty(t, res.Events)
	assert.Equal(t, shared.EventIntakeLogged, res.Events[0].EventType())
}

func TestSubmitIntake_AssignsSequentialIDs(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, int64(1), f.drink(t, 42, "water", 200).EntryID)
	assert.Equal(t, int64(2), f.drink(t, 42, "water", 200).EntryID)
	// IDs are per user.
	assert.Equal(t, int64(1), f.drink(t, 43, "water", 200).EntryID)
}

func TestSubmitIntake_CreatesProfileOnFirstUse(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	f.drink(t, 42, "water", 200)

	p, err := f.profiles.Get(context.Background(), shared.UserID(42))
	require.NoError(t, err)
	assert.False(t, p.HasGoal())
}

func TestSubmitIntake_RejectsInvalid(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	_, err := f.submit.Handle(context.Background(), SubmitIntakeCommand{
		UserID: 42, RawMl: 0, Drink: "water",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidVolume)

	_, err = f.submit.Handle(context.Background(), SubmitIntakeCommand{
		UserID: 42, RawMl: 250, Drink: "juice",
	})
	assert.ErrorIs(t, err, shared.ErrUnknownDrink)
}

func TestSubmitIntake_GoalCelebrationFiresOnceOnCrossing(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	f.setGoal(t, 42, 2000)

	res := f.drink(t, 42, "water", 1500)
	assert.False(t, res.GoalCompletedToday)

	res = f.drink(t, 42, "water", 600)
	assert.True(t, res.GoalCompletedToday, "2100 ml crosses the 2000 ml goal")
	assert.True(t, res.Today.GoalMet())

	var types []shared.EventType
	for _, ev := range res.Events {
		types = append(types, ev.EventType())
	}
	assert.Contains(t, types, shared.EventGoalCompleted)

	// Pouring more after the goal is already met stays quiet.
	res = f.drink(t, 42, "water", 200)
	assert.False(t, res.GoalCompletedToday)
	for _, ev := range res.Events {
		assert.NotEqual(t, shared.EventGoalCompleted, ev.EventType())
	}
}

func TestUndoIntake_RoundTrip(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.setGoal(t, 42, 2000)

	res := f.drink(t, 42, "coffee", 300)
	require.Equal(t, 180, res.Today.TotalMl.Int())

	undone, err := f.undo.Handle(context.Background(), UndoIntakeCommand{
		UserID:  42,
		EntryID: res.EntryID,
	})
	require.NoError(t, err)
	assert.True(t, undone.Success)
	assert.Equal(t, 0, undone.Today.TotalMl.Int())

	require.NotEmpty(t, undone.Events)
	assert.Equal(t, shared.EventIntakeReversed, undone.Events[0].EventType())

	// The ticket was consumed; a second undo of the same entry is refused.
	again, err := f.undo.Handle(context.Background(), UndoIntakeCommand{
		UserID:  42,
		EntryID: res.EntryID,
	})
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.Empty(t, again.Events)
}

func TestUndoIntake_ExpiredTicket(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	res := f.drink(t, 42, "water", 400)
	f.advance(6 * time.Second)

	undone, err := f.undo.Handle(context.Background(), UndoIntakeCommand{
		UserID:  42,
		EntryID: res.EntryID,
	})
	require.NoError(t, err)
	assert.False(t, undone.Success)
	assert.Equal(t, 400, undone.Today.TotalMl.Int(), "a late undo leaves the ledger alone")
}

func TestUndoIntake_NewEntrySupersedesTicket(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	first := f.drink(t, 42, "water", 400)
	f.advance(time.Second)
	second := f.drink(t, 42, "water", 300)

	undone, err := f.undo.Handle(context.Background(), UndoIntakeCommand{
		UserID:  42,
		EntryID: first.EntryID,
	})
	require.NoError(t, err)
	assert.False(t, undone.Success, "only the latest entry is undoable")
	assert.Equal(t, 700, undone.Today.TotalMl.Int())

	undone, err = f.undo.Handle(context.Background(), UndoIntakeCommand{
		UserID:  42,
		EntryID: second.EntryID,
	})
	require.NoError(t, err)
	assert.True(t, undone.Success)
	assert.Equal(t, 400, undone.Today.TotalMl.Int())
}

func TestSubmitIntake_StreakAndAchievement(t *testing.T) {
	start := timeutil.Day(2026, 3, 2)
	f := newFixture(t, start.Add(9*time.Hour))
	f.setGoal(t, 42, 1000)

	// Meet the goal on six consecutive days.
	for i := 0; i < 6; i++ {
		f.drink(t, 42, "water", 1000)
		f.advance(24 * time.Hour)
	}

	// Day seven. The first sip leaves the day short of the goal.
	res := f.drink(t, 42, "water", 400)
	assert.Equal(t, 6, res.Streak.CurrentStreak)
	assert.Empty(t, res.UnlockedAchievements)

	// Crossing the goal completes the seventh day and unlocks the first badge.
	res = f.drink(t, 42, "water", 600)
	assert.Equal(t, 7, res.Streak.CurrentStreak)
	assert.Equal(t, 7, res.Streak.BestStreak)
	assert.Equal(t, []int{7}, res.UnlockedAchievements)

	var types []shared.EventType
	for _, ev := range res.Events {
		types = append(types, ev.EventType())
	}
	assert.Contains(t, types, shared.EventAchievementUnlocked)
	assert.Contains(t, types, shared.EventStreakUpdated)
}

func TestUpdateProfile_GoalChangeIsProspective(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	f.setGoal(t, 42, 500)
	f.drink(t, 42, "water", 500)

	f.advance(24 * time.Hour)
	weight := 70
	res, err := f.profile.Handle(context.Background(), UpdateProfileCommand{
		UserID:   42,
		WeightKg: &weight,
	})
	require.NoError(t, err)
	assert.True(t, res.GoalChanged)
	assert.Equal(t, 2310, res.Profile.GoalMl.Int())
	assert.Equal(t, 2310, res.Today.GoalMl.Int())

	// Yesterday keeps the goal that was active then.
	history, err := f.profiles.GoalHistory(context.Background(), shared.UserID(42))
	require.NoError(t, err)
	assert.Equal(t, 500, history.GoalOn(timeutil.Day(2026, 3, 10)).Int())
	assert.Equal(t, 2310, history.GoalOn(timeutil.Day(2026, 3, 11)).Int())
}

func TestUpdateProfile_NothingToUpdate(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	_, err := f.profile.Handle(context.Background(), UpdateProfileCommand{UserID: 42})
	assert.Error(t, err)
}
