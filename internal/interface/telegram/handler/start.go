package handler

import (
	"context"

	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// START HANDLER
// /start greets the user and shows the quick-add keyboard. The profile row is
// provisioned lazily by the first logged drink, so /start itself only reads.
// ══════════════════════════════════════════════════════════════════════════════

// StartRequest contains the data for a /start command.
type StartRequest struct {
	TelegramID      int64
	ChatID          int64
	FirstName       string
	TZOffsetMinutes int
}

// StartHandler handles /start.
type StartHandler struct {
	stateQuery *query.GetStateHandler
	keyboards  *presenter.Keyboards
}

// NewStartHandler creates a start handler.
func NewStartHandler(stateQuery *query.GetStateHandler, keyboards *presenter.Keyboards) *StartHandler {
	return &StartHandler{stateQuery: stateQuery, keyboards: keyboards}
}

// Handle processes /start.
func (h *StartHandler) Handle(ctx context.Context, req StartRequest) (*Response, error) {
	state, err := h.stateQuery.Handle(ctx, query.GetStateQuery{
		UserID:          req.TelegramID,
		TZOffsetMinutes: req.TZOffsetMinutes,
	})
	if err != nil {
		return nil, err
	}

	name := req.FirstName
	if name == "" {
		name = "there"
	}

	text := "👋 Hi " + name + "! I track your water intake.\n\n" +
		"Tap a button below to log a drink, or use:\n" +
		"• /water [ml], /tea [ml], /coffee [ml]\n" +
		"• /setweight 70 to get a goal from your weight\n" +
		"• /goal 2500 to set the goal directly\n" +
		"• /stats and /calendar for your progress\n"

	if state.Profile.GoalMl > 0 {
		text += "\nYour daily goal: <b>" + itoa(state.Profile.GoalMl) + " ml</b>"
	} else {
		text += "\nNo goal yet. Send /setweight with your weight in kg to get one."
	}

	return HTML(text, h.keyboards.MainMenu()), nil
}
