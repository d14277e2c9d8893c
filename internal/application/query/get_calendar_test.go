package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

func TestGetCalendar_GridAndHeat(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	loader, intakes, profiles := seedLoader(now)
	h := NewGetCalendarHandler(loader)
	ctx := context.Background()

	require.NoError(t, profiles.RecordGoalChange(ctx, 42, timeutil.Day(2026, 3, 1), 2000))
	seedDrink(t, intakes, 42, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC), intake.DrinkWater, 1000)
	seedDrink(t, intakes, 42, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), intake.DrinkWater, 2000)

	dto, err := h.Handle(ctx, GetCalendarQuery{UserID: 42, Year: 2026, Month: 3})
	require.NoError(t, err)

	assert.Equal(t, 2026, dto.Year)
	assert.Equal(t, 3, dto.Month)
	// March 2026 spans six Monday-first weeks, February 23 to April 5.
	require.Len(t, dto.Days, 42)
	assert.Equal(t, "2026-02-23", dto.Days[0].Date)
	assert.Equal(t, "2026-04-05", dto.Days[41].Date)

	byDate := make(map[string]CalendarDayDTO, len(dto.Days))
	for _, d := range dto.Days {
		byDate[d.Date] = d
	}

	assert.False(t, byDate["2026-02-23"].InMonth)
	assert.Equal(t, 0, byDate["2026-02-23"].TotalMl)

	half := byDate["2026-03-05"]
	assert.True(t, half.InMonth)
	assert.Equal(t, 1000, half.TotalMl)
	assert.Equal(t, 2000, half.GoalMl)
	assert.InDelta(t, 0.5, half.Ratio, 1e-9)

	full := byDate["2026-03-10"]
	assert.Equal(t, 2000, full.TotalMl)
	assert.InDelta(t, 1.0, full.Ratio, 1e-9)

	silent := byDate["2026-03-07"]
	assert.True(t, silent.InMonth)
	assert.Equal(t, 0, silent.TotalMl)
	assert.Equal(t, 2000, silent.GoalMl)
	assert.InDelta(t, 0.0, silent.Ratio, 1e-9)
}

func TestGetCalendar_EmptyMonth(t *testing.T) {
	loader, _, _ := seedLoader(time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC))
	h := NewGetCalendarHandler(loader)

	dto, err := h.Handle(context.Background(), GetCalendarQuery{UserID: 42, Year: 2026, Month: 6})
	require.NoError(t, err)
	require.Len(t, dto.Days, 35)
	for _, d := range dto.Days {
		assert.Equal(t, 0, d.TotalMl)
		assert.Equal(t, 0, d.GoalMl)
	}
}

func TestGetCalendar_Rejects(t *testing.T) {
	loader, _, _ := seedLoader(time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC))
	h := NewGetCalendarHandler(loader)
	ctx := context.Background()

	_, err := h.Handle(ctx, GetCalendarQuery{UserID: 0, Year: 2026, Month: 3})
	assert.Error(t, err)
	_, err = h.Handle(ctx, GetCalendarQuery{UserID: 42, Year: 2026, Month: 13})
	assert.Error(t, err)
	_, err = h.Handle(ctx, GetCalendarQuery{UserID: 42, Year: 1990, Month: 3})
	assert.Error(t, err)
}
