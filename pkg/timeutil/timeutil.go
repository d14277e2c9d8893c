// Package timeutil provides calendar-date utilities for the Hydro hub.
// Intake bucketing is timezone-sensitive: the user's wall clock decides which
// calendar day an event belongs to, so every conversion takes the client's
// timezone offset in minutes rather than the server's location.
//
// Throughout the codebase a "day" is a date-only value: a time.Time at
// 00:00:00 UTC whose year/month/day carry the user's local calendar date.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// Common date formats.
const (
	// FormatDate is the canonical date format (YYYY-MM-DD) used as a map and
	// storage key for daily records.
	FormatDate = "2006-01-02"
)

// LocalDay returns the user's local calendar day for the given UTC instant.
// The offset is the client-supplied timezone offset in minutes east of UTC
// (e.g. +300 for UTC+5, -480 for UTC-8).
func LocalDay(utc time.Time, tzOffsetMin int) time.Time {
	local := utc.UTC().Add(time.Duration(tzOffsetMin) * time.Minute)
	return Day(local.Year(), int(local.Month()), local.Day())
}

// Day builds a date-only value for the given calendar date.
func Day(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time-of-day part, keeping the calendar date.
func Truncate(t time.Time) time.Time {
	return Day(t.Year(), int(t.Month()), t.Day())
}

// DayKey formats a day as its canonical YYYY-MM-DD key.
func DayKey(day time.Time) string {
	return day.Format(FormatDate)
}

// ParseDayKey parses a YYYY-MM-DD key back into a date-only value.
func ParseDayKey(s string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, s, time.UTC)
}

// AddDays shifts a day by n calendar days (n may be negative).
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// IsSameDay checks whether two date-only values name the same calendar date.
func IsSameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween returns the number of calendar days from a to b.
// Positive when b is after a.
func DaysBetween(a, b time.Time) int {
	return int(Truncate(b).Sub(Truncate(a)).Hours() / 24)
}

// Weekday returns the ISO weekday for a day: Monday=1 .. Sunday=7.
func Weekday(day time.Time) int {
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// StartOfWeek returns the Monday of the ISO week containing the given day.
func StartOfWeek(day time.Time) time.Time {
	return AddDays(Truncate(day), -(Weekday(day) - 1))
}

// EndOfWeek returns the Sunday of the ISO week containing the given day.
func EndOfWeek(day time.Time) time.Time {
	return AddDays(StartOfWeek(day), 6)
}

// ISOWeek returns the ISO 8601 year and week number for a day.
func ISOWeek(day time.Time) (year, week int) {
	return day.ISOWeek()
}

// StartOfMonth returns the first day of the month containing the given day.
func StartOfMonth(day time.Time) time.Time {
	return Day(day.Year(), int(day.Month()), 1)
}

// EndOfMonth returns the last day of the month containing the given day.
func EndOfMonth(day time.Time) time.Time {
	return AddDays(StartOfMonth(day).AddDate(0, 1, 0), -1)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return EndOfMonth(Day(year, month, 1)).Day()
}

// MonthGridBounds returns the first and last day of a Monday-first calendar
// grid fully covering the month: the Monday on or before the 1st and the
// Sunday on or after the last day. The span is always a whole number of weeks.
func MonthGridBounds(year, month int) (first, last time.Time) {
	som := Day(year, month, 1)
	eom := EndOfMonth(som)
	return StartOfWeek(som), EndOfWeek(eom)
}

// EachDay calls fn for every day from first to last inclusive.
func EachDay(first, last time.Time, fn func(day time.Time)) {
	for d := Truncate(first); !d.After(Truncate(last)); d = AddDays(d, 1) {
		fn(d)
	}
}
