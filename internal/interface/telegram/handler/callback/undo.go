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
// UNDO CALLBACK
// Handles "undo:<entry_id>" from the undo button on a logged-drink card.
// An expired or superseded ticket renders a friendly notice, never an error.
// ══════════════════════════════════════════════════════════════════════════════

// UndoRequest contains the parsed undo callback.
type UndoRequest struct {
	TelegramID int64
	ChatID     int64

	// Data is the raw callback data, "undo:42".
	Data string

	TZOffsetMinutes int
}

// UndoHandler handles undo callbacks.
type UndoHandler struct {
	undo      *command.UndoIntakeHandler
	cards     *presenter.TodayCardPresenter
	keyboards *presenter.Keyboards
}

// NewUndoHandler creates an undo callback handler.
func NewUndoHandler(
	undo *command.UndoIntakeHandler,
	cards *presenter.TodayCardPresenter,
	keyboards *presenter.Keyboards,
) *UndoHandler {
	return &UndoHandler{undo: undo, cards: cards, keyboards: keyboards}
}

// Handle reverses the entry encoded in the callback data.
func (h *UndoHandler) Handle(ctx context.Context, req UndoRequest) (*handler.Response, error) {
	parts := strings.Split(req.Data, ":")
	if len(parts) != 2 {
		return nil, nil
	}
	entryID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, nil
	}

	res, err := h.undo.Handle(ctx, command.UndoIntakeCommand{
		UserID:          req.TelegramID,
		EntryID:         entryID,
		TZOffsetMinutes: req.TZOffsetMinutes,
	})
	if err != nil {
		return nil, err
	}

	if !res.Success {
		return handler.HTML(h.cards.RenderUndoExpired(), h.keyboards.MainMenu()), nil
	}

	return handler.HTML(h.cards.RenderUndone(res), h.keyboards.MainMenu()), nil
}
