// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/progress"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// Clock supplies the current time; injectable for tests.
type Clock func() time.Time

// Loader assembles the read-model every query and post-mutation snapshot is
// computed from. Derived aggregates are pure recomputation from the ledger on
// every read; nothing derived is persisted.
type Loader struct {
	intakes  intake.Repository
	profiles profile.Repository
	now      Clock
}

// NewLoader creates a Loader. A nil clock defaults to time.Now.
func NewLoader(intakes intake.Repository, profiles profile.Repository, now Clock) *Loader {
	if now == nil {
		now = time.Now
	}
	return &Loader{intakes: intakes, profiles: profiles, now: now}
}

// Now returns the current UTC instant.
func (l *Loader) Now() time.Time {
	return l.now().UTC()
}

// Today returns the user's current local calendar day.
func (l *Loader) Today(tzOffset shared.TZOffsetMinutes) time.Time {
	return timeutil.LocalDay(l.Now(), tzOffset.Int())
}

// ProfileOrDefault loads the user's profile, falling back to a fresh default
// profile (unknown weight, no goal) for users not seen before. Storage faults
// other than not-found propagate unmodified.
func (l *Loader) ProfileOrDefault(ctx context.Context, userID shared.UserID) (*profile.Profile, error) {
	p, err := l.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return profile.New(userID), nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// Series loads the full-history day series for a user: all daily totals from
// the earliest activity (or goal change) through today, plus the goal
// history. This is the input for streak and stats computation.
func (l *Loader) Series(ctx context.Context, userID shared.UserID, today time.Time) (progress.DaySeries, error) {
	series := progress.DaySeries{Totals: map[string]shared.Milliliters{}}

	goals, err := l.profiles.GoalHistory(ctx, userID)
	if err != nil {
		return series, fmt.Errorf("load goal history: %w", err)
	}
	series.Goals = goals

	first, ok, err := l.intakes.FirstDay(ctx, userID)
	if err != nil {
		return series, fmt.Errorf("load first activity: %w", err)
	}
	series.FirstActivity, series.HasActivity = first, ok

	from := timeutil.Truncate(today)
	if ok && first.Before(from) {
		from = first
	}
	// The stats moving-average series looks one window behind the window.
	movingAvgHorizon := timeutil.AddDays(today, -13)
	if movingAvgHorizon.Before(from) {
		from = movingAvgHorizon
	}

	totals, err := l.intakes.DailyTotals(ctx, userID, from, timeutil.Truncate(today))
	if err != nil {
		return series, fmt.Errorf("load daily totals: %w", err)
	}
	series.Totals = totals

	return series, nil
}

// SeriesRange loads a day series restricted to [from, to], for calendar
// queries that never look outside the requested grid.
func (l *Loader) SeriesRange(ctx context.Context, userID shared.UserID, from, to time.Time) (progress.DaySeries, error) {
	series := progress.DaySeries{Totals: map[string]shared.Milliliters{}}

	goals, err := l.profiles.GoalHistory(ctx, userID)
	if err != nil {
		return series, fmt.Errorf("load goal history: %w", err)
	}
	series.Goals = goals

	totals, err := l.intakes.DailyTotals(ctx, userID, from, to)
	if err != nil {
		return series, fmt.Errorf("load daily totals: %w", err)
	}
	series.Totals = totals

	return series, nil
}

// DailyRecord recomputes one day's record from the ledger: events for the
// date against the goal in effect on that date.
func (l *Loader) DailyRecord(ctx context.Context, userID shared.UserID, localDate time.Time) (intake.DailyRecord, error) {
	events, err := l.intakes.EventsByDate(ctx, userID, localDate)
	if err != nil {
		return intake.DailyRecord{}, fmt.Errorf("load events: %w", err)
	}
	goals, err := l.profiles.GoalHistory(ctx, userID)
	if err != nil {
		return intake.DailyRecord{}, fmt.Errorf("load goal history: %w", err)
	}
	return intake.AggregateDay(localDate, goals.GoalOn(localDate), events), nil
}

// Snapshot bundles the aggregates every mutation response carries.
type Snapshot struct {
	Today  intake.DailyRecord
	Streak progress.StreakState
	Stats  *progress.Stats
}

// Snapshot recomputes today's record, the streak, and the rolling stats.
func (l *Loader) Snapshot(ctx context.Context, userID shared.UserID, today time.Time) (*Snapshot, error) {
	record, err := l.DailyRecord(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	series, err := l.Series(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Today:  record,
		Streak: progress.ComputeStreak(series, today),
		Stats:  progress.ComputeStats(series, today),
	}, nil
}
