package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// ProfileRepository implements profile.Repository for SQLite.
type ProfileRepository struct {
	store *Store
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(store *Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// Get returns the user's profile.
func (r *ProfileRepository) Get(ctx context.Context, userID shared.UserID) (*profile.Profile, error) {
	query := `
		SELECT user_id, weight_kg, ml_per_kg, goal_ml, goal_source, updated_at
		FROM profiles
		WHERE user_id = ?
	`

	var (
		id         int64
		weightKg   int
		mlPerKg    int
		goalMl     int
		goalSource string
		updatedAt  string
	)
	err := r.store.db.QueryRowContext(ctx, query, int64(userID)).
		Scan(&id, &weightKg, &mlPerKg, &goalMl, &goalSource, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p := &profile.Profile{
		UserID:     shared.UserID(id),
		WeightKg:   weightKg,
		MlPerKg:    mlPerKg,
		GoalMl:     shared.Milliliters(goalMl),
		GoalSource: profile.GoalSource(goalSource),
	}
	if updatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			p.UpdatedAt = ts.UTC()
		}
	}
	return p, nil
}

// Save upserts the profile.
func (r *ProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (user_id, weight_kg, ml_per_kg, goal_ml, goal_source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			weight_kg   = excluded.weight_kg,
			ml_per_kg   = excluded.ml_per_kg,
			goal_ml     = excluded.goal_ml,
			goal_source = excluded.goal_source,
			updated_at  = excluded.updated_at
	`

	_, err := r.store.db.ExecContext(ctx, query,
		int64(p.UserID),
		p.WeightKg,
		p.MlPerKg,
		p.GoalMl.Int(),
		string(p.GoalSource),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GoalHistory returns the user's goal changes ascending by date.
func (r *ProfileRepository) GoalHistory(ctx context.Context, userID shared.UserID) (profile.GoalHistory, error) {
	query := `
		SELECT from_date, goal_ml
		FROM goal_history
		WHERE user_id = ?
		ORDER BY from_date
	`

	rows, err := r.store.db.QueryContext(ctx, query, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to query goal history: %w", err)
	}
	defer rows.Close()

	var history profile.GoalHistory
	for rows.Next() {
		var key string
		var goalMl int
		if err := rows.Scan(&key, &goalMl); err != nil {
			return nil, fmt.Errorf("failed to scan goal change: %w", err)
		}
		day, err := timeutil.ParseDayKey(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse goal date %q: %w", key, err)
		}
		history = append(history, profile.GoalChange{
			FromDate: day,
			GoalMl:   shared.Milliliters(goalMl),
		})
	}
	return history, rows.Err()
}

// RecordGoalChange persists a prospective goal change; a same-day change
// replaces the earlier one.
func (r *ProfileRepository) RecordGoalChange(ctx context.Context, userID shared.UserID, localDate time.Time, goalMl shared.Milliliters) error {
	query := `
		INSERT INTO goal_history (user_id, from_date, goal_ml)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, from_date) DO UPDATE SET goal_ml = excluded.goal_ml
	`

	_, err := r.store.db.ExecContext(ctx,
		query, int64(userID), timeutil.DayKey(localDate), goalMl.Int())
	if err != nil {
		return fmt.Errorf("failed to record goal change: %w", err)
	}
	return nil
}
