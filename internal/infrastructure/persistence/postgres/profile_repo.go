package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProfileRepository implements profile.Repository for PostgreSQL.
type ProfileRepository struct {
	conn *Connection
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(conn *Connection) *ProfileRepository {
	return &ProfileRepository{conn: conn}
}

// Get returns the user's profile.
func (r *ProfileRepository) Get(ctx context.Context, userID shared.UserID) (*profile.Profile, error) {
	query := `
		SELECT user_id, weight_kg, ml_per_kg, goal_ml, goal_source, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var (
		id         int64
		weightKg   int
		mlPerKg    int
		goalMl     int
		goalSource string
		updatedAt  time.Time
	)
	err := r.conn.QueryRow(ctx, query, int64(userID)).
		Scan(&id, &weightKg, &mlPerKg, &goalMl, &goalSource, &updatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile.Profile{
		UserID:     shared.UserID(id),
		WeightKg:   weightKg,
		MlPerKg:    mlPerKg,
		GoalMl:     shared.Milliliters(goalMl),
		GoalSource: profile.GoalSource(goalSource),
		UpdatedAt:  updatedAt.UTC(),
	}, nil
}

// Save upserts the profile.
func (r *ProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (user_id, weight_kg, ml_per_kg, goal_ml, goal_source, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			weight_kg   = EXCLUDED.weight_kg,
			ml_per_kg   = EXCLUDED.ml_per_kg,
			goal_ml     = EXCLUDED.goal_ml,
			goal_source = EXCLUDED.goal_source,
			updated_at  = NOW()
	`

	_, err := r.conn.Exec(ctx, query,
		int64(p.UserID),
		p.WeightKg,
		p.MlPerKg,
		p.GoalMl.Int(),
		string(p.GoalSource),
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
		WHERE user_id = $1
		ORDER BY from_date
	`

	rows, err := r.conn.Query(ctx, query, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to query goal history: %w", err)
	}
	defer rows.Close()

	var history profile.GoalHistory
	for rows.Next() {
		var fromDate time.Time
		var goalMl int
		if err := rows.Scan(&fromDate, &goalMl); err != nil {
			return nil, fmt.Errorf("failed to scan goal change: %w", err)
		}
		history = append(history, profile.GoalChange{
			FromDate: timeutil.Truncate(fromDate),
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
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, from_date) DO UPDATE SET goal_ml = EXCLUDED.goal_ml
	`

	_, err := r.conn.Exec(ctx, query, int64(userID), timeutil.Truncate(localDate), goalMl.Int())
	if err != nil {
		return fmt.Errorf("failed to record goal change: %w", err)
	}
	return nil
}
