// Package callback contains handlers for inline keyboard callbacks.
package callback

import (
	"context"
	"strconv"
	"strings"

	"github.com/hydro-bot/hydro-hub/internal/application/command"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/handler"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUICK-ADD CALLBACK
// Handles "add:<drink>:<ml>" from the quick-add buttons.
// ══════════════════════════════════════════════════════════════════════════════

// AddRequest contains the parsed quick-add callback.
type AddRequest struct {
	TelegramID int64
	ChatID     int64

	// Data is the raw callback data, "add:water:250".
	Data string

	TZOffsetMinutes int
}

// AddHandler handles quick-add callbacks.
type AddHandler struct {
	submit    *command.SubmitIntakeHandler
	cards     *presenter.TodayCardPresenter
	keyboards *presenter.Keyboards
}

// NewAddHandler creates a quick-add callback handler.
func NewAddHandler(
	submit *command.SubmitIntakeHandler,
	cards *presenter.TodayCardPresenter,
	keyboards *presenter.Keyboards,
) *AddHandler {
	return &AddHandler{submit: submit, cards: cards, keyboards: keyboards}
}

// Handle logs the drink encoded in the callback data.
func (h *AddHandler) Handle(ctx context.Context, req AddRequest) (*handler.Response, error) {
	parts := strings.Split(req.Data, ":")
	if len(parts) != 3 {
		return nil, nil
	}
	volume, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, nil
	}

	res, err := h.submit.Handle(ctx, command.SubmitIntakeCommand{
		UserID:          req.TelegramID,
		RawMl:           volume,
		Drink:           parts[1],
		TZOffsetMinutes: req.TZOffsetMinutes,
	})
	if err != nil {
		return nil, err
	}

	return handler.HTML(h.cards.RenderLogged(res), h.keyboards.AfterLog(res.EntryID)), nil
}
