package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// INTAKE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// IntakeRepository implements intake.Repository for PostgreSQL.
type IntakeRepository struct {
	conn *Connection
}

// NewIntakeRepository creates a new IntakeRepository.
func NewIntakeRepository(conn *Connection) *IntakeRepository {
	return &IntakeRepository{conn: conn}
}

// Append inserts the event with the next per-user entry ID. The insert and
// the ID assignment are one statement, so a concurrent append for the same
// user hits the primary key and is retried.
func (r *IntakeRepository) Append(ctx context.Context, ev *intake.Event) (*intake.Event, error) {
	query := `
		INSERT INTO intake_events (user_id, entry_id, ts, local_date, drink, raw_ml, effective_ml)
		SELECT $1, COALESCE(MAX(entry_id), 0) + 1, $2, $3, $4, $5, $6
		FROM intake_events
		WHERE user_id = $1
		RETURNING entry_id
	`

	for attempt := 0; attempt < 3; attempt++ {
		var entryID int64
		err := r.conn.QueryRow(ctx, query,
			int64(ev.UserID),
			ev.Timestamp,
			timeutil.Truncate(ev.LocalDate),
			string(ev.Drink),
			ev.RawMl.Int(),
			ev.EffectiveMl.Int(),
		).Scan(&entryID)
		if err != nil {
			if IsUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("failed to append intake event: %w", err)
		}

		stored := *ev
		stored.ID = shared.EntryID(entryID)
		return &stored, nil
	}

	return nil, fmt.Errorf("failed to append intake event: %w", shared.ErrStorage)
}

// Delete removes one event.
func (r *IntakeRepository) Delete(ctx context.Context, userID shared.UserID, entryID shared.EntryID) error {
	query := `DELETE FROM intake_events WHERE user_id = $1 AND entry_id = $2`

	tag, err := r.conn.Exec(ctx, query, int64(userID), int64(entryID))
	if err != nil {
		return fmt.Errorf("failed to delete intake event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

// EventsByDate returns the user's events for one local day, by entry ID.
func (r *IntakeRepository) EventsByDate(ctx context.Context, userID shared.UserID, localDate time.Time) ([]intake.Event, error) {
	query := `
		SELECT entry_id, ts, local_date, drink, raw_ml, effective_ml
		FROM intake_events
		WHERE user_id = $1 AND local_date = $2
		ORDER BY entry_id
	`

	rows, err := r.conn.Query(ctx, query, int64(userID), timeutil.Truncate(localDate))
	if err != nil {
		return nil, fmt.Errorf("failed to query intake events: %w", err)
	}
	defer rows.Close()

	var events []intake.Event
	for rows.Next() {
		var (
			entryID     int64
			ts          time.Time
			date        time.Time
			drink       string
			rawMl       int
			effectiveMl int
		)
		if err := rows.Scan(&entryID, &ts, &date, &drink, &rawMl, &effectiveMl); err != nil {
			return nil, fmt.Errorf("failed to scan intake event: %w", err)
		}
		events = append(events, intake.Event{
			ID:          shared.EntryID(entryID),
			UserID:      userID,
			Timestamp:   ts.UTC(),
			LocalDate:   timeutil.Truncate(date),
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
		WHERE user_id = $1 AND local_date BETWEEN $2 AND $3
		GROUP BY local_date
	`

	rows, err := r.conn.Query(ctx, query, int64(userID), timeutil.Truncate(from), timeutil.Truncate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]shared.Milliliters)
	for rows.Next() {
		var date time.Time
		var total int64
		if err := rows.Scan(&date, &total); err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		totals[timeutil.DayKey(date)] = shared.Milliliters(total)
	}
	return totals, rows.Err()
}

// FirstDay returns the earliest local date with any event for the user.
func (r *IntakeRepository) FirstDay(ctx context.Context, userID shared.UserID) (time.Time, bool, error) {
	query := `SELECT MIN(local_date) FROM intake_events WHERE user_id = $1`

	var date *time.Time
	if err := r.conn.QueryRow(ctx, query, int64(userID)).Scan(&date); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query first day: %w", err)
	}
	if date == nil {
		return time.Time{}, false, nil
	}
	return timeutil.Truncate(*date), true, nil
}
