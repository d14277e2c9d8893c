// Package eventhandler contains the domain event handlers.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON GOAL COMPLETED HANDLER
// Reacts to a day's goal being crossed. The Mini App renders its own
// celebration from the command response; this handler covers the plain chat
// path with a congratulation message, and the weekly variant.
// ═══════════════════════════════════════════════════════════════════════════

// MessageSender delivers a plain text message to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// OnGoalCompletedHandler handles GoalCompletedEvent and WeekCompletedEvent.
type OnGoalCompletedHandler struct {
	sender MessageSender
	logger *slog.Logger

	// Configuration
	config GoalCompletedConfig
}

// GoalCompletedConfig contains the handler's configuration.
type GoalCompletedConfig struct {
	// SendCongratulation controls whether a chat message is sent at all.
	SendCongratulation bool
}

// DefaultGoalCompletedConfig returns the default configuration.
func DefaultGoalCompletedConfig() GoalCompletedConfig {
	return GoalCompletedConfig{SendCongratulation: true}
}

// NewOnGoalCompletedHandler creates a new OnGoalCompletedHandler.
func NewOnGoalCompletedHandler(sender MessageSender, logger *slog.Logger, config GoalCompletedConfig) *OnGoalCompletedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnGoalCompletedHandler{
		sender: sender,
		logger: logger.With("handler", "on_goal_completed"),
		config: config,
	}
}

// Handle implements shared.EventHandler.
func (h *OnGoalCompletedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	switch ev := event.(type) {
	case shared.GoalCompletedEvent:
		h.logger.Info("daily goal completed",
			"user_id", ev.UserID,
			"local_date", ev.LocalDate,
			"total_ml", ev.TotalMl,
			"goal_ml", ev.GoalMl,
		)
		if !h.config.SendCongratulation || h.sender == nil {
			return nil
		}
		text := fmt.Sprintf("🎉 Daily goal reached: %d / %d ml. Well done!", ev.TotalMl, ev.GoalMl)
		if err := h.sender.SendMessage(ctx, ev.UserID, text); err != nil {
			h.logger.Warn("failed to send goal congratulation",
				"user_id", ev.UserID,
				"error", err,
			)
		}

	case shared.WeekCompletedEvent:
		h.logger.Info("weekly goal completed",
			"user_id", ev.UserID,
			"iso_year", ev.ISOYear,
			"iso_week", ev.ISOWeek,
			"pct", ev.WeekPct,
		)
		if !h.config.SendCongratulation || h.sender == nil {
			return nil
		}
		text := fmt.Sprintf("🏆 Week %d goal complete: %d%% of %d ml!", ev.ISOWeek, ev.WeekPct, ev.WeekGoalMl)
		if err := h.sender.SendMessage(ctx, ev.UserID, text); err != nil {
			h.logger.Warn("failed to send week congratulation",
				"user_id", ev.UserID,
				"error", err,
			)
		}

	default:
		h.logger.Warn("received unexpected event type",
			"event_type", event.EventType(),
		)
	}

	return nil
}
