package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/hydro-bot/hydro-hub/internal/application/command"
	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// DRINK HANDLER
// /water, /tea and /coffee log a drink with an optional volume argument.
// ══════════════════════════════════════════════════════════════════════════════

// defaultVolumes are used when the command carries no volume argument.
var defaultVolumes = map[intake.DrinkType]int{
	intake.DrinkWater:  250,
	intake.DrinkTea:    250,
	intake.DrinkCoffee: 200,
}

// DrinkRequest contains the data for a drink-logging command.
type DrinkRequest struct {
	TelegramID int64
	ChatID     int64

	// Drink is the drink type: water, tea or coffee.
	Drink string

	// Args is the raw argument string; the first token may be a volume in ml.
	Args string

	TZOffsetMinutes int
}

// DrinkHandler handles the drink-logging commands.
type DrinkHandler struct {
	submit    *command.SubmitIntakeHandler
	cards     *presenter.TodayCardPresenter
	keyboards *presenter.Keyboards
}

// NewDrinkHandler creates a drink handler.
func NewDrinkHandler(
	submit *command.SubmitIntakeHandler,
	cards *presenter.TodayCardPresenter,
	keyboards *presenter.Keyboards,
) *DrinkHandler {
	return &DrinkHandler{submit: submit, cards: cards, keyboards: keyboards}
}

// Handle logs a drink and renders the confirmation card.
func (h *DrinkHandler) Handle(ctx context.Context, req DrinkRequest) (*Response, error) {
	drink, err := intake.ParseDrinkType(req.Drink)
	if err != nil {
		return HTML("🤔 I only know water, tea and coffee.", nil), nil
	}

	volume := defaultVolumes[drink]
	if arg := strings.Fields(req.Args); len(arg) > 0 {
		v, err := strconv.Atoi(arg[0])
		if err != nil {
			return HTML("Usage: /"+req.Drink+" [volume in ml], e.g. /"+req.Drink+" 300", nil), nil
		}
		volume = v
	}

	res, err := h.submit.Handle(ctx, command.SubmitIntakeCommand{
		UserID:          req.TelegramID,
		RawMl:           volume,
		Drink:           string(drink),
		TZOffsetMinutes: req.TZOffsetMinutes,
	})
	if err != nil {
		if errors.Is(err, shared.ErrInvalidVolume) {
			return HTML("🚱 Volume must be between 1 and 5000 ml.", nil), nil
		}
		return nil, err
	}

	return HTML(h.cards.RenderLogged(res), h.keyboards.AfterLog(res.EntryID)), nil
}
