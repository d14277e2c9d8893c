package profile

import (
	"context"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// Repository is the persistence boundary for profiles and goal history.
type Repository interface {
	// Get returns the user's profile. Returns shared.ErrUserNotFound for an
	// unknown user.
	Get(ctx context.Context, userID shared.UserID) (*Profile, error)

	// Save upserts the profile.
	Save(ctx context.Context, p *Profile) error

	// GoalHistory returns the user's goal changes ascending by date.
	// An unknown user has an empty history, not an error.
	GoalHistory(ctx context.Context, userID shared.UserID) (GoalHistory, error)

	// RecordGoalChange persists a prospective goal change effective from the
	// given local date; a same-day change replaces the earlier one.
	RecordGoalChange(ctx context.Context, userID shared.UserID, localDate time.Time, goalMl shared.Milliliters) error
}
