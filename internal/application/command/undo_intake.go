package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/progress"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNDO INTAKE COMMAND
// Reverses the most recent intake event while its undo ticket is still live.
// A late or mismatched undo is a normal outcome, not a fault: the result
// carries Success=false and the unchanged aggregates.
// ══════════════════════════════════════════════════════════════════════════════

// UndoIntakeCommand contains the data to reverse an intake event.
type UndoIntakeCommand struct {
	// UserID is the Telegram user identifier.
	UserID int64

	// EntryID is the ledger ID the client wants reversed.
	EntryID int64

	// TZOffsetMinutes is the client's offset from UTC, east positive.
	TZOffsetMinutes int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c UndoIntakeCommand) Validate() error {
	if !shared.UserID(c.UserID).IsValid() {
		return errors.New("undo_intake: user_id is required")
	}
	if c.EntryID <= 0 {
		return errors.New("undo_intake: entry_id is required")
	}
	if _, err := shared.NewTZOffset(c.TZOffsetMinutes); err != nil {
		return fmt.Errorf("undo_intake: %w", err)
	}
	return nil
}

// UndoIntakeResult contains the result of an undo attempt.
type UndoIntakeResult struct {
	// Success is false when the ticket was expired, already used, or bound
	// to a different entry.
	Success bool

	// Today is the recomputed record for the affected local day (or the
	// current day when nothing was reversed).
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

// UndoIntakeHandler handles the UndoIntakeCommand.
type UndoIntakeHandler struct {
	intakeRepo     intake.Repository
	tickets        intake.TicketStore
	locker         *UserLocker
	loader         *query.Loader
	eventPublisher shared.EventPublisher
}

// NewUndoIntakeHandler creates a new UndoIntakeHandler.
func NewUndoIntakeHandler(
	intakeRepo intake.Repository,
	tickets intake.TicketStore,
	locker *UserLocker,
	loader *query.Loader,
	eventPublisher shared.EventPublisher,
) *UndoIntakeHandler {
	return &UndoIntakeHandler{
		intakeRepo:     intakeRepo,
		tickets:        tickets,
		locker:         locker,
		loader:         loader,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the undo intake command.
func (h *UndoIntakeHandler) Handle(ctx context.Context, cmd UndoIntakeCommand) (*UndoIntakeResult, error) {
	// Validate command
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("undo_intake: validation failed: %w", err)
	}

	userID := shared.UserID(cmd.UserID)
	entryID := shared.EntryID(cmd.EntryID)
	unlock := h.locker.Lock(userID)
	defer unlock()

	tzOffset, err := shared.NewTZOffset(cmd.TZOffsetMinutes)
	if err != nil {
		return nil, fmt.Errorf("undo_intake: %w", err)
	}
	now := h.loader.Now()

	ticket, ok, err := h.tickets.Take(ctx, userID, entryID, now)
	if err != nil {
		return nil, fmt.Errorf("undo_intake: failed to claim ticket: %w", err)
	}

	day := h.loader.Today(tzOffset)
	result := &UndoIntakeResult{Events: make([]shared.Event, 0)}

	if ok {
		if err := h.intakeRepo.Delete(ctx, userID, entryID); err != nil {
			// The ledger row vanishing under a live ticket is a real fault,
			// not a late undo.
			return nil, fmt.Errorf("undo_intake: failed to delete event: %w", err)
		}
		result.Success = true
		day = ticket.LocalDate

		reversed := shared.NewIntakeReversedEvent(userID, entryID, timeutil.DayKey(ticket.LocalDate))
		if cmd.CorrelationID != "" {
			reversed.BaseEvent = reversed.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, reversed)
	}

	record, err := h.loader.DailyRecord(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("undo_intake: %w", err)
	}
	series, err := h.loader.Series(ctx, userID, h.loader.Today(tzOffset))
	if err != nil {
		return nil, fmt.Errorf("undo_intake: %w", err)
	}
	result.Today = record
	result.Streak = progress.ComputeStreak(series, h.loader.Today(tzOffset))
	result.Stats = progress.ComputeStats(series, h.loader.Today(tzOffset))

	if h.eventPublisher != nil {
		for _, ev := range result.Events {
			_ = h.eventPublisher.Publish(ev)
		}
	}

	return result, nil
}
