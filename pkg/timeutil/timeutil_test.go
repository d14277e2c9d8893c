package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDay(t *testing.T) {
	tests := []struct {
		name   string
		utc    time.Time
		offset int
		want   time.Time
	}{
		{"utc midday", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), 0, Day(2026, 3, 10)},
		{"east rolls forward", time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC), 300, Day(2026, 3, 11)},
		{"west rolls back", time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), -480, Day(2026, 3, 9)},
		{"half-hour offset", time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC), 330, Day(2026, 3, 11)},
		{"year boundary", time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC), 120, Day(2027, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LocalDay(tt.utc, tt.offset))
		})
	}
}

func TestDayKeyRoundTrip(t *testing.T) {
	day := Day(2026, 3, 7)
	assert.Equal(t, "2026-03-07", DayKey(day))

	parsed, err := ParseDayKey("2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, day, parsed)

	_, err = ParseDayKey("07.03.2026")
	assert.Error(t, err)
}

func TestWeekday(t *testing.T) {
	// 2026-03-02 is a Monday.
	assert.Equal(t, 1, Weekday(Day(2026, 3, 2)))
	assert.Equal(t, 6, Weekday(Day(2026, 3, 7)))
	assert.Equal(t, 7, Weekday(Day(2026, 3, 8)))
}

func TestStartAndEndOfWeek(t *testing.T) {
	monday := Day(2026, 3, 2)
	sunday := Day(2026, 3, 8)

	for d := monday; !d.After(sunday); d = AddDays(d, 1) {
		assert.Equal(t, monday, StartOfWeek(d), DayKey(d))
		assert.Equal(t, sunday, EndOfWeek(d), DayKey(d))
	}
}

func TestDaysBetween(t *testing.T) {
	a := Day(2026, 3, 1)
	assert.Equal(t, 0, DaysBetween(a, a))
	assert.Equal(t, 9, DaysBetween(a, Day(2026, 3, 10)))
	assert.Equal(t, -9, DaysBetween(Day(2026, 3, 10), a))
	// Time-of-day does not leak into the count.
	assert.Equal(t, 1, DaysBetween(
		time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC),
	))
}

func TestMonthBounds(t *testing.T) {
	assert.Equal(t, Day(2026, 2, 28), EndOfMonth(Day(2026, 2, 11)))
	assert.Equal(t, Day(2028, 2, 29), EndOfMonth(Day(2028, 2, 1)))
	assert.Equal(t, 31, DaysInMonth(2026, 3))
	assert.Equal(t, 30, DaysInMonth(2026, 6))
	assert.Equal(t, 29, DaysInMonth(2028, 2))
}

func TestMonthGridBounds(t *testing.T) {
	tests := []struct {
		year, month int
		first, last time.Time
		weeks       int
	}{
		// March 2026 starts on a Sunday and ends on a Tuesday.
		{2026, 3, Day(2026, 2, 23), Day(2026, 4, 5), 6},
		// June 2026 starts on a Monday.
		{2026, 6, Day(2026, 6, 1), Day(2026, 7, 5), 5},
		// February 2027 starts on a Monday and has exactly four weeks.
		{2027, 2, Day(2027, 2, 1), Day(2027, 2, 28), 4},
	}
	for _, tt := range tests {
		first, last := MonthGridBounds(tt.year, tt.month)
		assert.Equal(t, tt.first, first)
		assert.Equal(t, tt.last, last)
		assert.Equal(t, tt.weeks*7, DaysBetween(first, last)+1)
		assert.Equal(t, 1, Weekday(first))
		assert.Equal(t, 7, Weekday(last))
	}
}

func TestEachDay(t *testing.T) {
	var got []string
	EachDay(Day(2026, 3, 6), Day(2026, 3, 8), func(d time.Time) {
		got = append(got, DayKey(d))
	})
	assert.Equal(t, []string{"2026-03-06", "2026-03-07", "2026-03-08"}, got)

	var none []string
	EachDay(Day(2026, 3, 8), Day(2026, 3, 6), func(d time.Time) {
		none = append(none, DayKey(d))
	})
	assert.Empty(t, none)
}
