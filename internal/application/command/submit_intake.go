package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/progress"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT INTAKE COMMAND
// Records one drink event in the ledger, arms the undo ticket, and returns the
// fully recomputed day, streak, and stats so the client renders confirmation
// from a single response.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitIntakeCommand contains the data to record a drink.
type SubmitIntakeCommand struct {
	// UserID is the Telegram user identifier.
	UserID int64

	// RawMl is the volume as entered, in milliliters.
	RawMl int

	// Drink is the drink type: water, tea or coffee.
	Drink string

	// Timestamp is when the intake happened (defaults to now if zero).
	Timestamp time.Time

	// TZOffsetMinutes is the client's offset from UTC, east positive.
	TZOffsetMinutes int

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c SubmitIntakeCommand) Validate() error {
	if !shared.UserID(c.UserID).IsValid() {
		return errors.New("submit_intake: user_id is required")
	}
	if _, err := intake.ParseDrinkType(c.Drink); err != nil {
		return fmt.Errorf("submit_intake: %w", err)
	}
	if !shared.Milliliters(c.RawMl).IsValidIntake() {
		return fmt.Errorf("submit_intake: %w: volume %d ml outside [%d, %d]",
			shared.ErrInvalidVolume, c.RawMl, shared.MinIntakeMl, shared.MaxIntakeMl)
	}
	if _, err := shared.NewTZOffset(c.TZOffsetMinutes); err != nil {
		return fmt.Errorf("submit_intake: %w", err)
	}
	return nil
}

// SubmitIntakeResult contains the result of recording a drink.
type SubmitIntakeResult struct {
	// EntryID is the ledger ID assigned to the new event.
	EntryID int64

	// Entry is the committed event, including the effective volume.
	Entry intake.Event

	// Today is the recomputed record for the event's local day.
	Today intake.DailyRecord

	// Streak is the recomputed streak state.
	Streak progress.StreakState

	// Stats are the recomputed rolling statistics.
	Stats *progress.Stats

	// GoalCompletedToday is true when this event pushed the day over its goal.
	GoalCompletedToday bool

	// WeekCompleted is true when this event pushed the ISO week over its
	// summed goal.
	WeekCompleted bool

	// UnlockedAchievements lists streak thresholds newly reached, if any.
	UnlockedAchievements []int

	// UndoExpiresAt is when the undo ticket for this entry lapses.
	UndoExpiresAt time.Time

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SubmitIntakeHandler handles the SubmitIntakeCommand.
type SubmitIntakeHandler struct {
	intakeRepo     intake.Repository
	profileRepo    profile.Repository
	tickets        intake.TicketStore
	locker         *UserLocker
	loader         *query.Loader
	eventPublisher shared.EventPublisher

	// Configuration
	undoWindow time.Duration
}

// SubmitIntakeHandlerConfig contains configuration for the handler.
type SubmitIntakeHandlerConfig struct {
	UndoWindow time.Duration
}

// DefaultSubmitIntakeHandlerConfig returns default configuration.
func DefaultSubmitIntakeHandlerConfig() SubmitIntakeHandlerConfig {
	return SubmitIntakeHandlerConfig{UndoWindow: intake.DefaultUndoWindow}
}

// NewSubmitIntakeHandler creates a new SubmitIntakeHandler.
func NewSubmitIntakeHandler(
	intakeRepo intake.Repository,
	profileRepo profile.Repository,
	tickets intake.TicketStore,
	locker *UserLocker,
	loader *query.Loader,
	eventPublisher shared.EventPublisher,
	config SubmitIntakeHandlerConfig,
) *SubmitIntakeHandler {
	if config.UndoWindow <= 0 {
		config = DefaultSubmitIntakeHandlerConfig()
	}

	return &SubmitIntakeHandler{
		intakeRepo:     intakeRepo,
		profileRepo:    profileRepo,
		tickets:        tickets,
		locker:         locker,
		loader:         loader,
		eventPublisher: eventPublisher,
		undoWindow:     config.UndoWindow,
	}
}

// Handle executes the submit intake command.
func (h *SubmitIntakeHandler) Handle(ctx context.Context, cmd SubmitIntakeCommand) (*SubmitIntakeResult, error) {
	// Validate command
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("submit_intake: validation failed: %w", err)
	}

	userID := shared.UserID(cmd.UserID)
	unlock := h.locker.Lock(userID)
	defer unlock()

	now := h.loader.Now()
	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}

	// Make sure the profile row exists before anything references the user.
	if err := h.ensureProfile(ctx, userID); err != nil {
		return nil, fmt.Errorf("submit_intake: %w", err)
	}

	drink, err := intake.ParseDrinkType(cmd.Drink)
	if err != nil {
		return nil, fmt.Errorf("submit_intake: %w", err)
	}
	tzOffset, err := shared.NewTZOffset(cmd.TZOffsetMinutes)
	if err != nil {
		return nil, fmt.Errorf("submit_intake: %w", err)
	}

	ev, err := intake.NewEvent(userID, timestamp, tzOffset, drink, cmd.RawMl)
	if err != nil {
		return nil, fmt.Errorf("submit_intake: %w", err)
	}

	// Recompute the pre-mutation aggregates first; the goal and week
	// celebration flags fire only on the crossing event, never on repeats.
	preSeries, err := h.loader.Series(ctx, userID, ev.LocalDate)
	if err != nil {
		return nil, fmt.Errorf("submit_intake: %w", err)
	}
	preStreak := progress.ComputeStreak(preSeries, ev.LocalDate)
	preStats := progress.ComputeStats(preSeries, ev.LocalDate)
	preMet := preSeries.Met(ev.LocalDate)
	preWeekDone := preStats.WeekGoalMl > 0 && preStats.WeekPct >= 100

	stored, err := h.intakeRepo.Append(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("submit_intake: failed to append event: %w", err)
	}

	// Every append supersedes the previous undo ticket.
	ticket := intake.NewUndoTicket(stored, now, h.undoWindow)
	if err := h.tickets.Arm(ctx, ticket); err != nil {
		return nil, fmt.Errorf("submit_intake: failed to arm undo: %w", err)
	}

	snap, err := h.loader.Snapshot(ctx, userID, ev.LocalDate)
	if err != nil {
		return nil, fmt.Errorf("submit_intake: %w", err)
	}

	result := &SubmitIntakeResult{
		EntryID:       int64(stored.ID),
		Entry:         *stored,
		Today:         snap.Today,
		Streak:        snap.Streak,
		Stats:         snap.Stats,
		UndoExpiresAt: ticket.ExpiresAt,
		Events:        make([]shared.Event, 0),
	}

	logged := shared.NewIntakeLoggedEvent(
		userID, stored.ID, string(stored.Drink),
		stored.RawMl.Int(), stored.EffectiveMl.Int(), stored.DayKey(),
	)
	if cmd.CorrelationID != "" {
		logged.BaseEvent = logged.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	result.Events = append(result.Events, logged)

	if !preMet && snap.Today.GoalMet() {
		result.GoalCompletedToday = true
		result.Events = append(result.Events, shared.NewGoalCompletedEvent(
			userID, snap.Today.DayKey(), snap.Today.TotalMl.Int(), snap.Today.GoalMl.Int(),
		))
	}

	if !preWeekDone && snap.Stats.WeekGoalMl > 0 && snap.Stats.WeekPct >= 100 {
		result.WeekCompleted = true
		isoYear, isoWeek := timeutil.ISOWeek(ev.LocalDate)
		result.Events = append(result.Events, shared.NewWeekCompletedEvent(
			userID, isoYear, isoWeek,
			snap.Stats.WeekTotalMl, snap.Stats.WeekGoalMl, snap.Stats.WeekPct,
		))
	}

	if snap.Streak != preStreak {
		result.Events = append(result.Events, shared.NewStreakUpdatedEvent(
			userID, snap.Streak.CurrentStreak, snap.Streak.BestStreak,
		))
	}

	for _, threshold := range progress.NewlyUnlocked(preStreak.BestStreak, snap.Streak.BestStreak) {
		result.UnlockedAchievements = append(result.UnlockedAchievements, threshold)
		result.Events = append(result.Events, shared.NewAchievementUnlockedEvent(
			userID, threshold, snap.Streak.BestStreak,
		))
	}

	h.publishEvents(result.Events)

	return result, nil
}

func (h *SubmitIntakeHandler) ensureProfile(ctx context.Context, userID shared.UserID) error {
	_, err := h.profileRepo.Get(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if err := h.profileRepo.Save(ctx, profile.New(userID)); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (h *SubmitIntakeHandler) publishEvents(events []shared.Event) {
	if h.eventPublisher == nil {
		return
	}
	for _, ev := range events {
		// Event delivery is best-effort; a failed publish never fails the
		// command that already committed.
		_ = h.eventPublisher.Publish(ev)
	}
}
