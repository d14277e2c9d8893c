// Package memory provides in-memory persistence. It backs single-process
// deployments without external storage and doubles as the test backend; the
// behavior contract matches the postgres and sqlite implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// IntakeRepository is an in-memory intake ledger.
type IntakeRepository struct {
	mu      sync.RWMutex
	events  map[shared.UserID][]intake.Event
	nextIDs map[shared.UserID]shared.EntryID
}

// NewIntakeRepository creates an empty in-memory ledger.
func NewIntakeRepository() *IntakeRepository {
	return &IntakeRepository{
		events:  make(map[shared.UserID][]intake.Event),
		nextIDs: make(map[shared.UserID]shared.EntryID),
	}
}

// Append implements intake.Repository.
func (r *IntakeRepository) Append(_ context.Context, ev *intake.Event) (*intake.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextIDs[ev.UserID] + 1
	r.nextIDs[ev.UserID] = id

	stored := *ev
	stored.ID = id
	r.events[ev.UserID] = append(r.events[ev.UserID], stored)

	out := stored
	return &out, nil
}

// Delete implements intake.Repository.
func (r *IntakeRepository) Delete(_ context.Context, userID shared.UserID, entryID shared.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ledger := r.events[userID]
	for i := range ledger {
		if ledger[i].ID == entryID {
			r.events[userID] = append(ledger[:i:i], ledger[i+1:]...)
			return nil
		}
	}
	return shared.ErrEntryNotFound
}

// EventsByDate implements intake.Repository.
func (r *IntakeRepository) EventsByDate(_ context.Context, userID shared.UserID, localDate time.Time) ([]intake.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []intake.Event
	for _, ev := range r.events[userID] {
		if timeutil.IsSameDay(ev.LocalDate, localDate) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DailyTotals implements intake.Repository.
func (r *IntakeRepository) DailyTotals(_ context.Context, userID shared.UserID, from, to time.Time) (map[string]shared.Milliliters, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from = timeutil.Truncate(from)
	to = timeutil.Truncate(to)

	totals := make(map[string]shared.Milliliters)
	for _, ev := range r.events[userID] {
		day := timeutil.Truncate(ev.LocalDate)
		if day.Before(from) || day.After(to) {
			continue
		}
		key := timeutil.DayKey(day)
		totals[key] = totals[key].Add(ev.EffectiveMl)
	}
	return totals, nil
}

// FirstDay implements intake.Repository.
func (r *IntakeRepository) FirstDay(_ context.Context, userID shared.UserID) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var first time.Time
	found := false
	for _, ev := range r.events[userID] {
		day := timeutil.Truncate(ev.LocalDate)
		if !found || day.Before(first) {
			first, found = day, true
		}
	}
	return first, found, nil
}
