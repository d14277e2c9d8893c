package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// ProfileRepository is an in-memory profile and goal history store.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[shared.UserID]profile.Profile
	goals    map[shared.UserID]profile.GoalHistory
}

// NewProfileRepository creates an empty in-memory profile store.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[shared.UserID]profile.Profile),
		goals:    make(map[shared.UserID]profile.GoalHistory),
	}
}

// Get implements profile.Repository.
func (r *ProfileRepository) Get(_ context.Context, userID shared.UserID) (*profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	out := p
	return &out, nil
}

// Save implements profile.Repository.
func (r *ProfileRepository) Save(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[p.UserID] = *p
	return nil
}

// GoalHistory implements profile.Repository.
func (r *ProfileRepository) GoalHistory(_ context.Context, userID shared.UserID) (profile.GoalHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.goals[userID]
	out := make(profile.GoalHistory, len(history))
	copy(out, history)
	return out, nil
}

// RecordGoalChange implements profile.Repository.
func (r *ProfileRepository) RecordGoalChange(_ context.Context, userID shared.UserID, localDate time.Time, goalMl shared.Milliliters) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.goals[userID] = r.goals[userID].Record(localDate, goalMl)
	return nil
}
