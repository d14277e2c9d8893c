package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

func TestNewEvent_LocalDateBucketing(t *testing.T) {
	tests := []struct {
		name     string
		utc      time.Time
		offset   int
		wantDate string
	}{
		{
			name:     "midday stays on the same day",
			utc:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			offset:   0,
			wantDate: "2026-03-10",
		},
		{
			name:     "late evening UTC rolls into the next local day east of UTC",
			utc:      time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
			offset:   300, // UTC+5
			wantDate: "2026-03-11",
		},
		{
			name:     "early morning UTC is still the previous local day west of UTC",
			utc:      time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC),
			offset:   -480, // UTC-8
			wantDate: "2026-03-09",
		},
		{
			name:     "half-hour offset",
			utc:      time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC),
			offset:   330, // UTC+5:30
			wantDate: "2026-03-11",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewEvent(42, tt.utc, shared.TZOffsetMinutes(tt.offset), DrinkWater, 250)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, ev.DayKey())
			assert.Equal(t, tt.utc, ev.Timestamp)
		})
	}
}

func TestNewEvent_Rejects(t *testing.T) {
	ts := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := NewEvent(0, ts, 0, DrinkWater, 250)
	assert.ErrorIs(t, err, shared.ErrInvalidID)

	_, err = NewEvent(42, ts, 0, DrinkWater, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidVolume)

	_, err = NewEvent(42, ts, 0, DrinkType("soda"), 250)
	assert.ErrorIs(t, err, shared.ErrUnknownDrink)
}

func TestAggregateDay(t *testing.T) {
	day := timeutil.Day(2026, 3, 10)

	// The classic mixed day: 250 water + 250 tea + 200 coffee + water again.
	events := []Event{
		{ID: 3, Drink: DrinkCoffee, RawMl: 200, EffectiveMl: 120},
		{ID: 1, Drink: DrinkWater, RawMl: 250, EffectiveMl: 250},
		{ID: 4, Drink: DrinkWater, RawMl: 170, EffectiveMl: 170},
		{ID: 2, Drink: DrinkTea, RawMl: 250, EffectiveMl: 200},
	}

	rec := AggregateDay(day, 2000, events)

	assert.Equal(t, 740, rec.TotalMl.Int())
	assert.Equal(t, "2026-03-10", rec.DayKey())
	require.Len(t, rec.Entries, 4)
	for i := 1; i < len(rec.Entries); i++ {
		assert.Less(t, rec.Entries[i-1].ID, rec.Entries[i].ID)
	}
}

func TestAggregateDay_Empty(t *testing.T) {
	rec := AggregateDay(timeutil.Day(2026, 3, 10), 2000, nil)
	assert.Equal(t, 0, rec.TotalMl.Int())
	assert.False(t, rec.GoalMet())
	assert.Empty(t, rec.Entries)
}

func TestDailyRecord_GoalMet(t *testing.T) {
	assert.False(t, DailyRecord{TotalMl: 1999, GoalMl: 2000}.GoalMet())
	assert.True(t, DailyRecord{TotalMl: 2000, GoalMl: 2000}.GoalMet())
	assert.True(t, DailyRecord{TotalMl: 2500, GoalMl: 2000}.GoalMet())

	// An unknown goal is never met, regardless of total.
	assert.False(t, DailyRecord{TotalMl: 3000, GoalMl: 0}.GoalMet())
}

func TestDailyRecord_Ratio(t *testing.T) {
	assert.Equal(t, 0.5, DailyRecord{TotalMl: 1000, GoalMl: 2000}.Ratio())
	assert.Equal(t, 1.0, DailyRecord{TotalMl: 2000, GoalMl: 2000}.Ratio())
	assert.Equal(t, 2.0, DailyRecord{TotalMl: 9000, GoalMl: 2000}.Ratio())
	assert.Equal(t, 0.0, DailyRecord{TotalMl: 1000, GoalMl: 0}.Ratio())
}
