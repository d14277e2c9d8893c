package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// IntakeRepository implements intake.Repository for SQLite.
type IntakeRepository struct {
	store *Store
}

// NewIntakeRepository creates a new IntakeRepository.
func NewIntakeRepository(store *Store) *IntakeRepository {
	return &IntakeRepository{store: store}
}

// Append inserts the event with the next per-user entry ID. The store runs
// on a single connection, so the MAX+1 assignment cannot race.
func (r *IntakeRepository) Append(ctx context.Context, ev *intake.Event) (*intake.Event, error) {
	query := `
		INSERT INTO intake_events (user_id, entry_id, ts, local_date, drink, raw_ml, effective_ml)
		SELECT ?, COALESCE(MAX(entry_id), 0) + 1, ?, ?, ?, ?, ?
		FROM intake_events
		WHERE user_id = ?
		RETURNING entry_id
	`

	var entryID int64
	err := r.store.db.QueryRowContext(ctx, query,
		int64(ev.UserID),
		ev.Timestamp.UTC().Format(time.RFC3339),
		timeutil.DayKey(ev.LocalDate),
		string(ev.Drink),
		ev.RawMl.Int(),
		ev.EffectiveMl.Int(),
		int64(ev.UserID),
	).Scan(&entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to append intake event: %w", err)
	}

	stored := *ev
	stored.ID = shared.EntryID(entryID)
	return &stored, nil
}

// Delete removes one event.
func (r *IntakeRepository) Delete(ctx context.Context, userID shared.UserID, entryID shared.EntryID) error {
	res, err := r.store.db.ExecContext(ctx,
		`DELETE FROM intake_events WHERE user_id = ? AND entry_id = ?`,
		int64(userID), int64(entryID),
	)
	if err != nil {
		return fmt.Errorf("failed to delete intake event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete intake event: %w", err)
	}
	if affected == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

// EventsByDate returns the user's events for one local day, by entry ID.
func (r *IntakeRepository) EventsByDate(ctx context.Context, userID shared.UserID, localDate time.Time) ([]intake.Event, error) {
	query := `
		SELECT entry_id, ts, drink, raw_ml, effective_ml
		FROM intake_events
		WHERE user_id = ? AND local_date = ?
		ORDER BY entry_id
	`

	rows, err := r.store.db.QueryContext(ctx, query, int64(userID), timeutil.DayKey(localDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query intake events: %w", err)
	}
	defer rows.Close()

	day := timeutil.Truncate(localDate)
	var events []intake.Event
	for rows.Next() {
		var (
			entryID     int64
			ts          string
			drink       string
			rawMl       int
			effectiveMl int
		)
		if err := rows.Scan(&entryID, &ts, &drink, &rawMl, &effectiveMl); err != nil {
			return nil, fmt.Errorf("failed to scan intake event: %w", err)
		}
		timestamp, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp %q: %w", ts, err)
		}
		events = append(events, intake.Event{
			ID:          shared.EntryID(entryID),
			UserID:      userID,
			Timestamp:   timestamp.UTC(),
			LocalDate:   day,
			Drink:       intake.DrinkType(drink),
			RawMl:       shared.Milliliters(rawMl),
			EffectiveMl: shared.Milliliters(effectiveMl),
		})
	}
	return events, rows.Err()
}

// DailyTotals returns effective-ml sums per day key for [from, to].
func (r *IntakeRepository) DailyTotals(ctx context.Context, userID shared.UserID, from, to time.Time) (map[string]shared.Milliliters, error) {
	query := `
		SELECT local_date, SUM(effective_ml)
		FROM intake_events
		WHERE user_id = ? AND local_date BETWEEN ? AND ?
		GROUP BY local_date
	`

	rows, err := r.store.db.QueryContext(ctx, query,
		int64(userID), timeutil.DayKey(from), timeutil.DayKey(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]shared.Milliliters)
	for rows.Next() {
		var key string
		var total int64
		if err := rows.Scan(&key, &total); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		totals[key] = shared.Milliliters(total)
	}
	return totals, rows.Err()
}

// FirstDay returns the earliest local date with any event for the user.
func (r *IntakeRepository) FirstDay(ctx context.Context, userID shared.UserID) (time.Time, bool, error) {
	var key sql.NullString
	err := r.store.db.QueryRowContext(ctx,
		`SELECT MIN(local_date) FROM intake_events WHERE user_id = ?`,
		int64(userID),
	).Scan(&key)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query first day: %w", err)
	}
	if !key.Valid || key.String == "" {
		return time.Time{}, false, nil
	}
	day, err := timeutil.ParseDayKey(key.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse first day %q: %w", key.String, err)
	}
	return day, true, nil
}
