package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/progress"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATE QUERY
// The one-shot read the Mini App opens with: profile, today's record, streak,
// achievements, and rolling statistics, all recomputed from the ledger.
// ══════════════════════════════════════════════════════════════════════════════

// GetStateQuery requests the full engagement state of one user.
type GetStateQuery struct {
	// UserID is the Telegram user identifier.
	UserID int64

	// TZOffsetMinutes is the client's offset from UTC, east positive.
	TZOffsetMinutes int
}

// Validate validates the query.
func (q GetStateQuery) Validate() error {
	if !shared.UserID(q.UserID).IsValid() {
		return errors.New("get_state: user_id is required")
	}
	if _, err := shared.NewTZOffset(q.TZOffsetMinutes); err != nil {
		return fmt.Errorf("get_state: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// DTOs
// ──────────────────────────────────────────────────────────────────────────────

// ProfileDTO is the profile slice of the state response.
type ProfileDTO struct {
	UserID     int64  `json:"user_id"`
	WeightKg   int    `json:"weight_kg"`
	MlPerKg    int    `json:"ml_per_kg"`
	GoalMl     int    `json:"goal_ml"`
	GoalSource string `json:"goal_source"`
}

// EntryDTO is one ledger row of today's record.
type EntryDTO struct {
	EntryID     int64  `json:"entry_id"`
	Drink       string `json:"drink"`
	RawMl       int    `json:"raw_ml"`
	EffectiveMl int    `json:"effective_ml"`
	Timestamp   string `json:"timestamp"`
}

// TodayDTO is the current local day's record.
type TodayDTO struct {
	Date    string     `json:"date"`
	TotalMl int        `json:"total_ml"`
	GoalMl  int        `json:"goal_ml"`
	GoalMet bool       `json:"goal_met"`
	Ratio   float64    `json:"ratio"`
	Entries []EntryDTO `json:"entries"`
}

// AchievementDTO is one streak badge.
type AchievementDTO struct {
	ThresholdDays int  `json:"threshold_days"`
	Unlocked      bool `json:"unlocked"`
}

// StateDTO is the full response of the state query.
type StateDTO struct {
	Profile      ProfileDTO       `json:"profile"`
	Today        TodayDTO         `json:"today"`
	Streak       int              `json:"streak"`
	BestStreak   int              `json:"best_streak"`
	Achievements []AchievementDTO `json:"achievements"`
	Stats        *progress.Stats  `json:"stats"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetStateHandler handles the GetStateQuery.
type GetStateHandler struct {
	loader *Loader
}

// NewGetStateHandler creates a new GetStateHandler.
func NewGetStateHandler(loader *Loader) *GetStateHandler {
	return &GetStateHandler{loader: loader}
}

// Handle executes the state query.
func (h *GetStateHandler) Handle(ctx context.Context, q GetStateQuery) (*StateDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_state: validation failed: %w", err)
	}

	userID := shared.UserID(q.UserID)
	tzOffset, err := shared.NewTZOffset(q.TZOffsetMinutes)
	if err != nil {
		return nil, fmt.Errorf("get_state: %w", err)
	}
	today := h.loader.Today(tzOffset)

	p, err := h.loader.ProfileOrDefault(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get_state: %w", err)
	}

	snap, err := h.loader.Snapshot(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("get_state: %w", err)
	}

	dto := &StateDTO{
		Profile: ProfileDTO{
			UserID:     int64(p.UserID),
			WeightKg:   p.WeightKg,
			MlPerKg:    p.MlPerKg,
			GoalMl:     p.GoalMl.Int(),
			GoalSource: string(p.GoalSource),
		},
		Today:        todayDTO(snap.Today),
		Streak:       snap.Streak.CurrentStreak,
		BestStreak:   snap.Streak.BestStreak,
		Achievements: achievementDTOs(snap.Streak.BestStreak),
		Stats:        snap.Stats,
	}
	return dto, nil
}

func todayDTO(record intake.DailyRecord) TodayDTO {
	entries := make([]EntryDTO, 0, len(record.Entries))
	for _, e := range record.Entries {
		entries = append(entries, EntryDTO{
			EntryID:     int64(e.ID),
			Drink:       string(e.Drink),
			RawMl:       e.RawMl.Int(),
			EffectiveMl: e.EffectiveMl.Int(),
			Timestamp:   e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return TodayDTO{
		Date:    record.DayKey(),
		TotalMl: record.TotalMl.Int(),
		GoalMl:  record.GoalMl.Int(),
		GoalMet: record.GoalMet(),
		Ratio:   record.Ratio(),
		Entries: entries,
	}
}

func achievementDTOs(bestStreak int) []AchievementDTO {
	badges := progress.Achievements(bestStreak)
	dtos := make([]AchievementDTO, 0, len(badges))
	for _, b := range badges {
		dtos = append(dtos, AchievementDTO{
			ThresholdDays: b.ThresholdDays,
			Unlocked:      b.Unlocked,
		})
	}
	return dtos
}
