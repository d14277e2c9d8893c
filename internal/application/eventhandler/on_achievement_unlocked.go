package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON ACHIEVEMENT UNLOCKED HANDLER
// Announces a newly earned streak badge in chat. Badges are monotonic, so a
// given threshold fires at most once per user lifetime.
// ═══════════════════════════════════════════════════════════════════════════

var badgeNames = map[int]string{
	7:  "One Week Strong",
	14: "Two Week Tide",
	30: "Month of Flow",
}

// OnAchievementUnlockedHandler handles AchievementUnlockedEvent.
type OnAchievementUnlockedHandler struct {
	sender MessageSender
	logger *slog.Logger
}

// NewOnAchievementUnlockedHandler creates a new OnAchievementUnlockedHandler.
func NewOnAchievementUnlockedHandler(sender MessageSender, logger *slog.Logger) *OnAchievementUnlockedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnAchievementUnlockedHandler{
		sender: sender,
		logger: logger.With("handler", "on_achievement_unlocked"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnAchievementUnlockedHandler) Handle(event shared.Event) error {
	ev, ok := event.(shared.AchievementUnlockedEvent)
	if !ok {
		h.logger.Warn("received non-AchievementUnlockedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("achievement unlocked",
		"user_id", ev.UserID,
		"threshold_days", ev.ThresholdDays,
		"best_streak", ev.BestStreak,
	)

	if h.sender == nil {
		return nil
	}

	name := badgeNames[ev.ThresholdDays]
	if name == "" {
		name = fmt.Sprintf("%d-day streak", ev.ThresholdDays)
	}
	text := fmt.Sprintf("🏅 Achievement unlocked: %s (%d days in a row)!", name, ev.ThresholdDays)
	if err := h.sender.SendMessage(context.Background(), ev.UserID, text); err != nil {
		h.logger.Warn("failed to send achievement message",
			"user_id", ev.UserID,
			"error", err,
		)
	}
	return nil
}
