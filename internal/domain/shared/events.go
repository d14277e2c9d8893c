// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Intake events
	EventIntakeLogged   EventType = "intake.logged"
	EventIntakeReversed EventType = "intake.reversed"

	// Progress events
	EventGoalCompleted EventType = "progress.goal_completed"
	EventWeekCompleted EventType = "progress.week_completed"
	EventStreakUpdated EventType = "progress.streak_updated"
	EventStreakBroken  EventType = "progress.streak_broken"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"

	// Profile events
	EventProfileUpdated EventType = "profile.updated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Intake Events
// ═══════════════════════════════════════════════════════════════════════════

// IntakeLoggedEvent is emitted when an intake event is appended to the ledger.
type IntakeLoggedEvent struct {
	BaseEvent
	UserID      int64  `json:"user_id"`
	EntryID     int64  `json:"entry_id"`
	Drink       string `json:"drink"`
	RawMl       int    `json:"raw_ml"`
	EffectiveMl int    `json:"effective_ml"`
	LocalDate   string `json:"local_date"`
}

// Payload implements Event interface.
func (e IntakeLoggedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":      e.UserID,
		"entry_id":     e.EntryID,
		"drink":        e.Drink,
		"raw_ml":       e.RawMl,
		"effective_ml": e.EffectiveMl,
		"local_date":   e.LocalDate,
	}
}

// NewIntakeLoggedEvent creates a new IntakeLoggedEvent.
func NewIntakeLoggedEvent(userID UserID, entryID EntryID, drink string, rawMl, effectiveMl int, localDate string) IntakeLoggedEvent {
	return IntakeLoggedEvent{
		BaseEvent:   NewBaseEvent(EventIntakeLogged, userID.String()),
		UserID:      userID.Int64(),
		EntryID:     entryID.Int64(),
		Drink:       drink,
		RawMl:       rawMl,
		EffectiveMl: effectiveMl,
		LocalDate:   localDate,
	}
}

// IntakeReversedEvent is emitted when an intake event is undone within its window.
type IntakeReversedEvent struct {
	BaseEvent
	UserID    int64  `json:"user_id"`
	EntryID   int64  `json:"entry_id"`
	LocalDate string `json:"local_date"`
}

// Payload implements Event interface.
func (e IntakeReversedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"entry_id":   e.EntryID,
		"local_date": e.LocalDate,
	}
}

// NewIntakeReversedEvent creates a new IntakeReversedEvent.
func NewIntakeReversedEvent(userID UserID, entryID EntryID, localDate string) IntakeReversedEvent {
	return IntakeReversedEvent{
		BaseEvent: NewBaseEvent(EventIntakeReversed, userID.String()),
		UserID:    userID.Int64(),
		EntryID:   entryID.Int64(),
		LocalDate: localDate,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// GoalCompletedEvent is emitted the moment a day's total crosses its goal.
// Emitted at most once per day per user: only on the transition.
type GoalCompletedEvent struct {
	BaseEvent
	UserID    int64  `json:"user_id"`
	LocalDate string `json:"local_date"`
	TotalMl   int    `json:"total_ml"`
	GoalMl    int    `json:"goal_ml"`
}

// Payload implements Event interface.
func (e GoalCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"local_date": e.LocalDate,
		"total_ml":   e.TotalMl,
		"goal_ml":    e.GoalMl,
	}
}

// NewGoalCompletedEvent creates a new GoalCompletedEvent.
func NewGoalCompletedEvent(userID UserID, localDate string, totalMl, goalMl int) GoalCompletedEvent {
	return GoalCompletedEvent{
		BaseEvent: NewBaseEvent(EventGoalCompleted, userID.String()),
		UserID:    userID.Int64(),
		LocalDate: localDate,
		TotalMl:   totalMl,
		GoalMl:    goalMl,
	}
}

// WeekCompletedEvent is emitted when the ISO week's total crosses the summed
// weekly goal (the "perfect week" celebration signal).
type WeekCompletedEvent struct {
	BaseEvent
	UserID      int64 `json:"user_id"`
	ISOYear     int   `json:"iso_year"`
	ISOWeek     int   `json:"iso_week"`
	WeekTotalMl int   `json:"week_total_ml"`
	WeekGoalMl  int   `json:"week_goal_ml"`
	WeekPct     int   `json:"week_pct"`
}

// Payload implements Event interface.
func (e WeekCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       e.UserID,
		"iso_year":      e.ISOYear,
		"iso_week":      e.ISOWeek,
		"week_total_ml": e.WeekTotalMl,
		"week_goal_ml":  e.WeekGoalMl,
		"week_pct":      e.WeekPct,
	}
}

// NewWeekCompletedEvent creates a new WeekCompletedEvent.
func NewWeekCompletedEvent(userID UserID, isoYear, isoWeek, totalMl, goalMl, pct int) WeekCompletedEvent {
	return WeekCompletedEvent{
		BaseEvent:   NewBaseEvent(EventWeekCompleted, userID.String()),
		UserID:      userID.Int64(),
		ISOYear:     isoYear,
		ISOWeek:     isoWeek,
		WeekTotalMl: totalMl,
		WeekGoalMl:  goalMl,
		WeekPct:     pct,
	}
}

// StreakUpdatedEvent is emitted when the current streak length changes.
type StreakUpdatedEvent struct {
	BaseEvent
	UserID        int64 `json:"user_id"`
	CurrentStreak int   `json:"current_streak"`
	BestStreak    int   `json:"best_streak"`
}

// Payload implements Event interface.
func (e StreakUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"current_streak": e.CurrentStreak,
		"best_streak":    e.BestStreak,
	}
}

// NewStreakUpdatedEvent creates a new StreakUpdatedEvent.
func NewStreakUpdatedEvent(userID UserID, current, best int) StreakUpdatedEvent {
	return StreakUpdatedEvent{
		BaseEvent:     NewBaseEvent(EventStreakUpdated, userID.String()),
		UserID:        userID.Int64(),
		CurrentStreak: current,
		BestStreak:    best,
	}
}

// StreakBrokenEvent is emitted when a previously accrued streak resets.
type StreakBrokenEvent struct {
	BaseEvent
	UserID         int64 `json:"user_id"`
	PreviousStreak int   `json:"previous_streak"`
}

// Payload implements Event interface.
func (e StreakBrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"previous_streak": e.PreviousStreak,
	}
}

// NewStreakBrokenEvent creates a new StreakBrokenEvent.
func NewStreakBrokenEvent(userID UserID, previous int) StreakBrokenEvent {
	return StreakBrokenEvent{
		BaseEvent:      NewBaseEvent(EventStreakBroken, userID.String()),
		UserID:         userID.Int64(),
		PreviousStreak: previous,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Events
// ═══════════════════════════════════════════════════════════════════════════

// AchievementUnlockedEvent is emitted once when a streak achievement unlocks.
type AchievementUnlockedEvent struct {
	BaseEvent
	UserID        int64 `json:"user_id"`
	ThresholdDays int   `json:"threshold_days"`
	BestStreak    int   `json:"best_streak"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"threshold_days": e.ThresholdDays,
		"best_streak":    e.BestStreak,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(userID UserID, thresholdDays, bestStreak int) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, userID.String()),
		UserID:        userID.Int64(),
		ThresholdDays: thresholdDays,
		BestStreak:    bestStreak,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Profile Events
// ═══════════════════════════════════════════════════════════════════════════

// ProfileUpdatedEvent is emitted when weight, factor, or goal changes.
type ProfileUpdatedEvent struct {
	BaseEvent
	UserID   int64 `json:"user_id"`
	WeightKg int   `json:"weight_kg,omitempty"`
	MlPerKg  int   `json:"ml_per_kg"`
	GoalMl   int   `json:"goal_ml"`
}

// Payload implements Event interface.
func (e ProfileUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"weight_kg": e.WeightKg,
		"ml_per_kg": e.MlPerKg,
		"goal_ml":   e.GoalMl,
	}
}

// NewProfileUpdatedEvent creates a new ProfileUpdatedEvent.
func NewProfileUpdatedEvent(userID UserID, weightKg, mlPerKg, goalMl int) ProfileUpdatedEvent {
	return ProfileUpdatedEvent{
		BaseEvent: NewBaseEvent(EventProfileUpdated, userID.String()),
		UserID:    userID.Int64(),
		WeightKg:  weightKg,
		MlPerKg:   mlPerKg,
		GoalMl:    goalMl,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
