package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/progress"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE PROFILE COMMAND
// Updates weight, hydration factor, or a manual goal override. A resulting
// goal change is recorded prospectively: it applies from the user's current
// local day forward and never rewrites past days.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProfileCommand contains the profile fields to change. Nil pointer
// fields are left untouched.
type UpdateProfileCommand struct {
	// UserID is the Telegram user identifier.
	UserID int64

	// WeightKg sets the body weight in kilograms.
	WeightKg *int

	// MlPerKg sets the hydration factor in milliliters per kilogram.
	MlPerKg *int

	// GoalMl sets a manual daily goal, overriding the weight formula.
	GoalMl *int

	// TZOffsetMinutes is the client's offset from UTC, east positive.
	TZOffsetMinutes int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UpdateProfileCommand) Validate() error {
	if !shared.UserID(c.UserID).IsValid() {
		return errors.New("update_profile: user_id is required")
	}
	if c.WeightKg == nil && c.MlPerKg == nil && c.GoalMl == nil {
		return errors.New("update_profile: nothing to update")
	}
	if _, err := shared.NewTZOffset(c.TZOffsetMinutes); err != nil {
		return fmt.Errorf("update_profile: %w", err)
	}
	return nil
}

// UpdateProfileResult contains the result of a profile update.
type UpdateProfileResult struct {
	// Profile is the profile after the update.
	Profile *profile.Profile

	// GoalChanged is true when the effective daily goal changed.
	GoalChanged bool

	// Today is the recomputed record for the current local day; a goal
	// change is already visible here.
	Today intake.DailyRecord

	// Streak is the recomputed streak state.
	Streak progress.StreakState

	// Stats are the recomputed rolling statistics.
	Stats *progress.Stats

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// UpdateProfileHandler handles the UpdateProfileCommand.
type UpdateProfileHandler struct {
	profileRepo    profile.Repository
	locker         *UserLocker
	loader         *query.Loader
	eventPublisher shared.EventPublisher
}

// NewUpdateProfileHandler creates a new UpdateProfileHandler.
func NewUpdateProfileHandler(
	profileRepo profile.Repository,
	locker *UserLocker,
	loader *query.Loader,
	eventPublisher shared.EventPublisher,
) *UpdateProfileHandler {
	return &UpdateProfileHandler{
		profileRepo:    profileRepo,
		locker:         locker,
		loader:         loader,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the update profile command.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (*UpdateProfileResult, error) {
	// Validate command
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_profile: validation failed: %w", err)
	}

	userID := shared.UserID(cmd.UserID)
	unlock := h.locker.Lock(userID)
	defer unlock()

	tzOffset, err := shared.NewTZOffset(cmd.TZOffsetMinutes)
	if err != nil {
		return nil, fmt.Errorf("update_profile: %w", err)
	}

	p, err := h.loader.ProfileOrDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update_profile: %w", err)
	}
	previousGoal := p.GoalMl

	if cmd.WeightKg != nil {
		if err := p.SetWeight(*cmd.WeightKg); err != nil {
			return nil, fmt.Errorf("update_profile: %w", err)
		}
	}
	if cmd.MlPerKg != nil {
		if err := p.SetFactor(*cmd.MlPerKg); err != nil {
			return nil, fmt.Errorf("update_profile: %w", err)
		}
	}
	if cmd.GoalMl != nil {
		if err := p.SetGoal(*cmd.GoalMl); err != nil {
			return nil, fmt.Errorf("update_profile: %w", err)
		}
	}

	if err := h.profileRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("update_profile: failed to save profile: %w", err)
	}

	today := h.loader.Today(tzOffset)
	goalChanged := p.GoalMl != previousGoal
	if goalChanged {
		if err := h.profileRepo.RecordGoalChange(ctx, userID, today, p.GoalMl); err != nil {
			return nil, fmt.Errorf("update_profile: failed to record goal change: %w", err)
		}
	}

	snap, err := h.loader.Snapshot(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("update_profile: %w", err)
	}

	result := &UpdateProfileResult{
		Profile:     p,
		GoalChanged: goalChanged,
		Today:       snap.Today,
		Streak:      snap.Streak,
		Stats:       snap.Stats,
		Events:      make([]shared.Event, 0),
	}

	updated := shared.NewProfileUpdatedEvent(userID, p.WeightKg, p.MlPerKg, p.GoalMl.Int())
	if cmd.CorrelationID != "" {
		updated.BaseEvent = updated.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, updated)

	if h.eventPublisher != nil {
		for _, ev := range result.Events {
			_ = h.eventPublisher.Publish(ev)
		}
	}

	return result, nil
}
