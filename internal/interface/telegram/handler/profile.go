package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hydro-bot/hydro-hub/internal/application/command"
	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLER
// /setweight, /setfactor and /goal update the profile; a goal change is
// recorded prospectively so past days keep the goals they were scored against.
// ══════════════════════════════════════════════════════════════════════════════

// ProfileField selects which profile value a command updates.
type ProfileField string

const (
	FieldWeight ProfileField = "weight"
	FieldFactor ProfileField = "factor"
	FieldGoal   ProfileField = "goal"
)

// ProfileRequest contains the data for a profile update command.
type ProfileRequest struct {
	TelegramID int64
	ChatID     int64

	// Field is which value to update.
	Field ProfileField

	// Args is the raw argument string; the first token must be the value.
	Args string

	TZOffsetMinutes int
}

// ProfileHandler handles the profile update commands.
type ProfileHandler struct {
	update    *command.UpdateProfileHandler
	keyboards *presenter.Keyboards
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(update *command.UpdateProfileHandler, keyboards *presenter.Keyboards) *ProfileHandler {
	return &ProfileHandler{update: update, keyboards: keyboards}
}

// Handle parses the value and applies the update.
func (h *ProfileHandler) Handle(ctx context.Context, req ProfileRequest) (*Response, error) {
	arg := strings.Fields(req.Args)
	if len(arg) == 0 {
		return HTML(h.usage(req.Field), nil), nil
	}
	value, err := strconv.Atoi(arg[0])
	if err != nil {
		return HTML(h.usage(req.Field), nil), nil
	}

	cmd := command.UpdateProfileCommand{
		UserID:          req.TelegramID,
		TZOffsetMinutes: req.TZOffsetMinutes,
	}
	switch req.Field {
	case FieldWeight:
		cmd.WeightKg = &value
	case FieldFactor:
		cmd.MlPerKg = &value
	case FieldGoal:
		cmd.GoalMl = &value
	default:
		return HTML(h.usage(req.Field), nil), nil
	}

	res, err := h.update.Handle(ctx, cmd)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidProfileValue) {
			return HTML(h.bounds(req.Field), nil), nil
		}
		return nil, err
	}

	return HTML(h.render(req.Field, res), h.keyboards.MainMenu()), nil
}

func (h *ProfileHandler) render(field ProfileField, res *command.UpdateProfileResult) string {
	p := res.Profile
	var b strings.Builder

	switch field {
	case FieldWeight:
		fmt.Fprintf(&b, "⚖️ Weight set to <b>%d kg</b>.\n", p.WeightKg)
	case FieldFactor:
		fmt.Fprintf(&b, "🧮 Factor set to <b>%d ml/kg</b>.\n", p.MlPerKg)
	case FieldGoal:
		b.WriteString("🎯 Goal updated.\n")
	}

	if p.GoalMl > 0 {
		fmt.Fprintf(&b, "Daily goal: <b>%d ml</b>", p.GoalMl.Int())
		if p.GoalSource == profile.GoalSourceFormula {
			fmt.Fprintf(&b, " (%d kg × %d ml/kg)", p.WeightKg, p.MlPerKg)
		}
		b.WriteString("\n")
	}

	if res.GoalChanged {
		b.WriteString("<i>The new goal applies from today onward; past days keep their old goal.</i>\n")
	}

	if res.Today.GoalMl > 0 {
		fmt.Fprintf(&b, "\nToday: %d / %d ml\n%s",
			res.Today.TotalMl.Int(), res.Today.GoalMl.Int(), presenter.ProgressBar(res.Today.Ratio()))
	}

	return b.String()
}

func (h *ProfileHandler) usage(field ProfileField) string {
	switch field {
	case FieldWeight:
		return "Usage: /setweight 70 (kg)"
	case FieldFactor:
		return "Usage: /setfactor 33 (ml per kg)"
	default:
		return "Usage: /goal 2500 (ml per day)"
	}
}

func (h *ProfileHandler) bounds(field ProfileField) string {
	switch field {
	case FieldWeight:
		return fmt.Sprintf("⚖️ Weight must be between %d and %d kg.", profile.MinWeightKg, profile.MaxWeightKg)
	case FieldFactor:
		return fmt.Sprintf("🧮 Factor must be between %d and %d ml/kg.", profile.MinMlPerKg, profile.MaxMlPerKg)
	default:
		return fmt.Sprintf("🎯 Goal must be between %d and %d ml.", profile.MinGoalMl, profile.MaxGoalMl)
	}
}
