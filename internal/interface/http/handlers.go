package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/application/command"
	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
	"github.com/hydro-bot/hydro-hub/pkg/logger"
	"github.com/hydro-bot/hydro-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot handles GET /.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "hydro-hub",
		"version": "v1",
		"status":  "running",
	})
}

// handleHealth handles GET /health. Runs all registered dependency checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"uptime": s.Uptime().String(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result := s.deps.HealthChecker.Check(ctx)

	status := http.StatusOK
	if !result.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

// handleReady handles GET /ready (readiness probe).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.IsRunning() {
		writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "Server is not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles GET /live (liveness probe).
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE & CALENDAR ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetState handles GET /api/v1/state?user_id=&tz_offset=.
// Returns the full dashboard snapshot the Mini App renders.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	userID := int64(getQueryParamInt(r, "user_id", 0))
	if userID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "missing_user_id", "user_id query parameter is required")
		return
	}

	q := query.GetStateQuery{
		UserID:          userID,
		TZOffsetMinutes: getQueryParamInt(r, "tz_offset", 0),
	}

	state, err := s.deps.GetStateHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeCommandError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// handleGetCalendar handles GET /api/v1/calendar?user_id=&year=&month=&tz_offset=.
func (s *Server) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	userID := int64(getQueryParamInt(r, "user_id", 0))
	if userID <= 0 {
		writeJSONError(w, http.StatusBadRequest, "missing_user_id", "user_id query parameter is required")
		return
	}

	year := getQueryParamInt(r, "year", 0)
	month := getQueryParamInt(r, "month", 0)
	if year == 0 || month == 0 {
		today := timeutil.LocalDay(time.Now(), getQueryParamInt(r, "tz_offset", 0))
		year, month = today.Year(), int(today.Month())
	}

	q := query.GetCalendarQuery{
		UserID: userID,
		Year:   year,
		Month:  month,
	}

	cal, err := s.deps.GetCalendarHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeCommandError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, cal)
}

// ══════════════════════════════════════════════════════════════════════════════
// INTAKE ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

// submitIntakeRequest is the POST /api/v1/intake body.
type submitIntakeRequest struct {
	UserID          int64  `json:"user_id"`
	Drink           string `json:"drink"`
	VolumeMl        int    `json:"volume_ml"`
	TZOffsetMinutes int    `json:"tz_offset"`
}

// handleSubmitIntake handles POST /api/v1/intake.
func (s *Server) handleSubmitIntake(w http.ResponseWriter, r *http.Request) {
	var req submitIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	cmd := command.SubmitIntakeCommand{
		UserID:          req.UserID,
		RawMl:           req.VolumeMl,
		Drink:           req.Drink,
		TZOffsetMinutes: req.TZOffsetMinutes,
		CorrelationID:   getRequestID(r.Context()),
	}

	result, err := s.deps.SubmitIntakeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeCommandError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// undoIntakeRequest is the POST /api/v1/intake/undo body.
type undoIntakeRequest struct {
	UserID          int64 `json:"user_id"`
	EntryID         int64 `json:"entry_id"`
	TZOffsetMinutes int   `json:"tz_offset"`
}

// handleUndoIntake handles POST /api/v1/intake/undo.
// An expired ticket is not an error: the response carries success=false
// in the result body and the client shows the expiry notice.
func (s *Server) handleUndoIntake(w http.ResponseWriter, r *http.Request) {
	var req undoIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	cmd := command.UndoIntakeCommand{
		UserID:          req.UserID,
		EntryID:         req.EntryID,
		TZOffsetMinutes: req.TZOffsetMinutes,
		CorrelationID:   getRequestID(r.Context()),
	}

	result, err := s.deps.UndoIntakeHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeCommandError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE ENDPOINT
// ══════════════════════════════════════════════════════════════════════════════

// updateProfileRequest is the POST /api/v1/profile body. Absent fields are
// left untouched.
type updateProfileRequest struct {
	UserID          int64 `json:"user_id"`
	WeightKg        *int  `json:"weight_kg,omitempty"`
	MlPerKg         *int  `json:"ml_per_kg,omitempty"`
	GoalMl          *int  `json:"goal_ml,omitempty"`
	TZOffsetMinutes int   `json:"tz_offset"`
}

// handleUpdateProfile handles POST /api/v1/profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	cmd := command.UpdateProfileCommand{
		UserID:          req.UserID,
		WeightKg:        req.WeightKg,
		MlPerKg:         req.MlPerKg,
		GoalMl:          req.GoalMl,
		TZOffsetMinutes: req.TZOffsetMinutes,
		CorrelationID:   getRequestID(r.Context()),
	}

	result, err := s.deps.UpdateProfileHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeCommandError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// TELEGRAM WEBHOOK
// ══════════════════════════════════════════════════════════════════════════════

// handleTelegramWebhook handles POST /webhook/telegram.
// Telegram echoes the secret token set at registration; requests without it
// are rejected without reading the body.
func (s *Server) handleTelegramWebhook(w http.ResponseWriter, r *http.Request) {
	if s.config.WebhookSecret != "" {
		if r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != s.config.WebhookSecret {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid webhook secret")
			return
		}
	}

	if s.deps.WebhookHandler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "webhook_disabled", "Webhook processing is not enabled")
		return
	}

	if err := s.deps.WebhookHandler.HandleUpdate(r.Context(), r.Body); err != nil {
		s.logger.Error("webhook processing failed",
			logger.Err(err),
			logger.String("request_id", getRequestID(r.Context())),
		)
		// Telegram retries non-200 responses; a malformed update would retry
		// forever, so only decode failures return 400.
		writeJSONError(w, http.StatusBadRequest, "invalid_update", "Could not process update")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeCommandError maps domain errors to HTTP status codes.
func (s *Server) writeCommandError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidVolume):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_volume", "Volume must be between 1 and 5000 ml")
	case errors.Is(err, shared.ErrUnknownDrink):
		writeJSONError(w, http.StatusUnprocessableEntity, "unknown_drink", "Drink must be water, tea or coffee")
	case errors.Is(err, shared.ErrInvalidProfileValue):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_profile_value", "Profile value is out of allowed bounds")
	case errors.Is(err, shared.ErrEntryNotFound), errors.Is(err, shared.ErrUserNotFound), errors.Is(err, shared.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", "Requested entity was not found")
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		s.logger.Error("request failed",
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
