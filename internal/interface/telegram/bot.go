package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/application/command"
	"github.com/hydro-bot/hydro-hub/internal/application/query"
	"github.com/hydro-bot/hydro-hub/internal/infrastructure/external/telegram"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/handler"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/handler/callback"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/middleware"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig contains configuration for the Telegram bot.
type BotConfig struct {
	// Token is the Telegram Bot API token.
	Token string

	// Mode is the update receiving mode: "polling" or "webhook".
	Mode string

	// WebhookURL is the public URL for webhook mode.
	WebhookURL string

	// WebhookSecret is the secret token Telegram echoes on webhook requests.
	WebhookSecret string

	// WebAppURL is the Mini App URL shown on the main keyboard.
	WebAppURL string

	// DefaultTZOffsetMinutes is the timezone offset applied to chat commands.
	// The Mini App sends the real client offset per request; chat messages
	// carry none, so the deployment picks the audience's home offset.
	DefaultTZOffsetMinutes int

	// PollingTimeout is the long-polling timeout in seconds.
	PollingTimeout int

	// Debug enables debug logging.
	Debug bool

	// Logger for structured logging.
	Logger *slog.Logger

	// MaxConcurrentUpdates limits concurrent update processing.
	MaxConcurrentUpdates int

	// GracefulShutdownTimeout is the timeout for graceful shutdown.
	GracefulShutdownTimeout time.Duration
}

// DefaultBotConfig returns sensible defaults.
func DefaultBotConfig(token string) BotConfig {
	return BotConfig{
		Token:                   token,
		Mode:                    "polling",
		PollingTimeout:          30,
		Logger:                  slog.Default(),
		MaxConcurrentUpdates:    100,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// BotDependencies contains the application-layer handlers the bot drives.
type BotDependencies struct {
	// Commands
	SubmitIntakeCmd  *command.SubmitIntakeHandler
	UndoIntakeCmd    *command.UndoIntakeHandler
	UpdateProfileCmd *command.UpdateProfileHandler

	// Queries
	StateQuery    *query.GetStateHandler
	CalendarQuery *query.GetCalendarHandler
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot is the Telegram bot controller.
type Bot struct {
	config BotConfig
	client *telegram.Client
	router *Router
	logger *slog.Logger

	rateLimiter        *middleware.RateLimiter
	recoveryMiddleware *middleware.RecoveryMiddleware

	running   bool
	runningMu sync.RWMutex
	updateSem chan struct{}
	wg        sync.WaitGroup

	stats *BotStats
}

// BotStats holds runtime statistics.
type BotStats struct {
	mu              sync.RWMutex
	StartedAt       time.Time
	UpdatesReceived int64
	UpdatesHandled  int64
	ErrorsCount     int64
	CommandsCount   map[string]int64
}

// NewBot creates a Telegram bot with all handlers registered.
func NewBot(config BotConfig, deps BotDependencies) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.MaxConcurrentUpdates <= 0 {
		config.MaxConcurrentUpdates = 100
	}

	clientConfig := telegram.DefaultClientConfig(config.Token)
	clientConfig.Logger = config.Logger
	clientConfig.Debug = config.Debug
	client := telegram.NewClient(clientConfig)

	// Presenters
	keyboards := presenter.NewKeyboards(config.WebAppURL)
	cards := presenter.NewTodayCardPresenter()
	reports := presenter.NewReportPresenter()

	// Handlers
	startHandler := handler.NewStartHandler(deps.StateQuery, keyboards)
	helpHandler := handler.NewHelpHandler(keyboards)
	drinkHandler := handler.NewDrinkHandler(deps.SubmitIntakeCmd, cards, keyboards)
	profileHandler := handler.NewProfileHandler(deps.UpdateProfileCmd, keyboards)
	statsHandler := handler.NewStatsHandler(deps.StateQuery, reports, keyboards)
	calendarHandler := handler.NewCalendarHandler(deps.CalendarQuery, reports, keyboards)

	addCallback := callback.NewAddHandler(deps.SubmitIntakeCmd, cards, keyboards)
	undoCallback := callback.NewUndoHandler(deps.UndoIntakeCmd, cards, keyboards)

	router := NewRouter(RouterConfig{Logger: config.Logger, Debug: config.Debug})

	router.RegisterCommand("start", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		req := handler.StartRequest{
			TelegramID:      c.TelegramID,
			ChatID:          c.ChatID,
			TZOffsetMinutes: c.TZOffsetMinutes,
		}
		if c.Message != nil && c.Message.From != nil {
			req.FirstName = c.Message.From.FirstName
		}
		return startHandler.Handle(ctx, req)
	})

	router.RegisterCommand("help", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return helpHandler.Handle(ctx, handler.HelpRequest{TelegramID: c.TelegramID, ChatID: c.ChatID})
	})

	for _, drink := range []string{"water", "tea", "coffee"} {
		drink := drink
		router.RegisterCommand(drink, func(ctx context.Context, c CommandContext) (*handler.Response, error) {
			return drinkHandler.Handle(ctx, handler.DrinkRequest{
				TelegramID:      c.TelegramID,
				ChatID:          c.ChatID,
				Drink:           drink,
				Args:            c.Args,
				TZOffsetMinutes: c.TZOffsetMinutes,
			})
		})
	}

	profileCommands := map[string]handler.ProfileField{
		"setweight": handler.FieldWeight,
		"setfactor": handler.FieldFactor,
		"goal":      handler.FieldGoal,
	}
	for name, field := range profileCommands {
		field := field
		router.RegisterCommand(name, func(ctx context.Context, c CommandContext) (*handler.Response, error) {
			return profileHandler.Handle(ctx, handler.ProfileRequest{
				TelegramID:      c.TelegramID,
				ChatID:          c.ChatID,
				Field:           field,
				Args:            c.Args,
				TZOffsetMinutes: c.TZOffsetMinutes,
			})
		})
	}

	router.RegisterCommand("stats", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return statsHandler.Handle(ctx, handler.StatsRequest{
			TelegramID:      c.TelegramID,
			ChatID:          c.ChatID,
			TZOffsetMinutes: c.TZOffsetMinutes,
		})
	})

	router.RegisterCommand("calendar", func(ctx context.Context, c CommandContext) (*handler.Response, error) {
		return calendarHandler.Handle(ctx, handler.CalendarRequest{
			TelegramID:      c.TelegramID,
			ChatID:          c.ChatID,
			Args:            c.Args,
			TZOffsetMinutes: c.TZOffsetMinutes,
		})
	})

	router.RegisterCallbackPrefix("add:", func(ctx context.Context, cb CallbackContext) (*handler.Response, error) {
		return addCallback.Handle(ctx, callback.AddRequest{
			TelegramID:      cb.TelegramID,
			ChatID:          cb.ChatID,
			Data:            cb.Data,
			TZOffsetMinutes: cb.TZOffsetMinutes,
		})
	})

	router.RegisterCallbackPrefix("undo:", func(ctx context.Context, cb CallbackContext) (*handler.Response, error) {
		return undoCallback.Handle(ctx, callback.UndoRequest{
			TelegramID:      cb.TelegramID,
			ChatID:          cb.ChatID,
			Data:            cb.Data,
			TZOffsetMinutes: cb.TZOffsetMinutes,
		})
	})

	router.RegisterCallbackPrefix("cal:", func(ctx context.Context, cb CallbackContext) (*handler.Response, error) {
		var year, month int
		if _, err := fmt.Sscanf(cb.Data, "cal:%d:%d", &year, &month); err != nil {
			return nil, nil
		}
		return calendarHandler.Handle(ctx, handler.CalendarRequest{
			TelegramID:      cb.TelegramID,
			ChatID:          cb.ChatID,
			Year:            year,
			Month:           month,
			TZOffsetMinutes: cb.TZOffsetMinutes,
		})
	})

	// "cmd:stats" and "cmd:calendar" re-run a command from a button, editing
	// the originating message.
	router.RegisterCallbackPrefix("cmd:", func(ctx context.Context, cb CallbackContext) (*handler.Response, error) {
		switch cb.Data {
		case "cmd:stats":
			return statsHandler.Handle(ctx, handler.StatsRequest{
				TelegramID:      cb.TelegramID,
				ChatID:          cb.ChatID,
				TZOffsetMinutes: cb.TZOffsetMinutes,
			})
		case "cmd:calendar":
			return calendarHandler.Handle(ctx, handler.CalendarRequest{
				TelegramID:      cb.TelegramID,
				ChatID:          cb.ChatID,
				TZOffsetMinutes: cb.TZOffsetMinutes,
			})
		default:
			return nil, nil
		}
	})

	return &Bot{
		config:             config,
		client:             client,
		router:             router,
		logger:             config.Logger,
		rateLimiter:        middleware.NewRateLimiter(middleware.DefaultRateLimitConfig()),
		recoveryMiddleware: middleware.NewRecoveryMiddleware(middleware.DefaultRecoveryConfig()),
		updateSem:          make(chan struct{}, config.MaxConcurrentUpdates),
		stats:              &BotStats{CommandsCount: make(map[string]int64)},
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts receiving updates. Blocks until ctx is done in polling mode.
func (b *Bot) Start(ctx context.Context) error {
	b.runningMu.Lock()
	if b.running {
		b.runningMu.Unlock()
		return errors.New("bot is already running")
	}
	b.running = true
	b.stats.StartedAt = time.Now()
	b.runningMu.Unlock()

	b.logger.Info("starting telegram bot", "mode", b.config.Mode)

	if err := b.verifyToken(ctx); err != nil {
		return fmt.Errorf("failed to verify bot token: %w", err)
	}

	switch b.config.Mode {
	case "polling":
		// Drop any stale webhook so long polling receives updates.
		if err := b.client.DeleteWebhook(ctx, false); err != nil {
			b.logger.Warn("failed to delete webhook", "error", err)
		}
		return b.client.StartPolling(ctx, func(ctx context.Context, update *telegram.Update) error {
			return b.HandleUpdate(ctx, update)
		})
	case "webhook":
		if b.config.WebhookURL == "" {
			return errors.New("webhook URL is required for webhook mode")
		}
		err := b.client.SetWebhook(ctx, b.config.WebhookURL, b.config.WebhookSecret,
			[]string{"message", "callback_query"})
		if err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		// Updates arrive through the HTTP server, which calls HandleUpdate.
		b.logger.Info("webhook registered", "url", b.config.WebhookURL)
		return nil
	default:
		return fmt.Errorf("unknown bot mode: %s", b.config.Mode)
	}
}

// Stop gracefully stops the bot, waiting for in-flight handlers.
func (b *Bot) Stop(ctx context.Context) error {
	b.runningMu.Lock()
	if !b.running {
		b.runningMu.Unlock()
		return nil
	}
	b.running = false
	b.runningMu.Unlock()

	b.logger.Info("stopping telegram bot")

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(b.config.GracefulShutdownTimeout):
		b.logger.Warn("graceful shutdown timeout exceeded")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// IsRunning reports whether the bot is running.
func (b *Bot) IsRunning() bool {
	b.runningMu.RLock()
	defer b.runningMu.RUnlock()
	return b.running
}

func (b *Bot) verifyToken(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return err
	}
	b.logger.Info("bot verified", "id", me.ID, "username", me.Username)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE HANDLING
// ══════════════════════════════════════════════════════════════════════════════

// HandleUpdate processes one Telegram update. The webhook HTTP endpoint and
// the polling loop both funnel through here.
func (b *Bot) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	select {
	case b.updateSem <- struct{}{}:
		defer func() { <-b.updateSem }()
	case <-ctx.Done():
		return ctx.Err()
	}

	b.wg.Add(1)
	defer b.wg.Done()

	b.stats.mu.Lock()
	b.stats.UpdatesReceived++
	b.stats.mu.Unlock()

	start := time.Now()

	var err error
	switch {
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.handleCallbackQuery(ctx, update.CallbackQuery)
	default:
		return nil
	}

	b.stats.mu.Lock()
	if err != nil {
		b.stats.ErrorsCount++
	} else {
		b.stats.UpdatesHandled++
	}
	b.stats.mu.Unlock()

	if err != nil {
		b.logger.Error("failed to handle update",
			"update_id", update.UpdateID,
			"error", err,
			"duration", time.Since(start),
		)
	}

	return err
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.From == nil || !telegram.IsPrivateChat(msg) {
		return nil
	}

	cmd := telegram.ExtractCommand(msg)
	if cmd == "" {
		return nil
	}

	telegramID := msg.From.ID
	chatID := msg.Chat.ID

	b.stats.mu.Lock()
	b.stats.CommandsCount[cmd]++
	b.stats.mu.Unlock()

	if rl := b.rateLimiter.Check(ctx, telegramID); !rl.Allowed {
		_, err := b.client.SendHTML(ctx, chatID, rl.ResponseMessage)
		return err
	}

	res := b.recoveryMiddleware.RecoverWithHandler(ctx, telegramID, "/"+cmd, func() error {
		return b.router.HandleCommand(ctx, cmd, CommandContext{
			TelegramID:      telegramID,
			ChatID:          chatID,
			MessageID:       msg.MessageID,
			Args:            telegram.ExtractCommandArgs(msg),
			TZOffsetMinutes: b.config.DefaultTZOffsetMinutes,
			Message:         msg,
			Client:          b.client,
		})
	})

	if res.Recovered {
		b.logger.Error("panic recovered in command handler", "panic", res.PanicInfo.String())
		_, err := b.client.SendHTML(ctx, chatID, res.UserMessage)
		return err
	}
	if res.Err != nil {
		b.logger.Error("command failed", "command", cmd, "telegram_id", telegramID, "error", res.Err)
		_, err := b.client.SendHTML(ctx, chatID, "😔 Something went wrong. Please try again.")
		return err
	}

	return nil
}

func (b *Bot) handleCallbackQuery(ctx context.Context, cq *telegram.CallbackQuery) error {
	if cq == nil || cq.From == nil {
		return nil
	}

	telegramID := cq.From.ID
	var chatID, messageID int64
	if cq.Message != nil && cq.Message.Chat != nil {
		chatID = cq.Message.Chat.ID
		messageID = cq.Message.MessageID
	}

	// Answer first so the button stops spinning.
	defer func() {
		_ = b.client.AnswerCallbackQuery(ctx, cq.ID, "", false)
	}()

	if rl := b.rateLimiter.Check(ctx, telegramID); !rl.Allowed {
		return b.client.AnswerCallbackQuery(ctx, cq.ID, "⏳ Too fast! Wait a moment.", true)
	}

	res := b.recoveryMiddleware.RecoverWithHandler(ctx, telegramID, "callback:"+cq.Data, func() error {
		return b.router.HandleCallback(ctx, cq.Data, CallbackContext{
			TelegramID:      telegramID,
			ChatID:          chatID,
			MessageID:       messageID,
			QueryID:         cq.ID,
			Data:            cq.Data,
			TZOffsetMinutes: b.config.DefaultTZOffsetMinutes,
			Client:          b.client,
		})
	})

	if res.Recovered {
		b.logger.Error("panic recovered in callback handler", "panic", res.PanicInfo.String())
		if chatID != 0 {
			_, _ = b.client.SendHTML(ctx, chatID, res.UserMessage)
		}
		return nil
	}
	if res.Err != nil {
		b.logger.Error("callback failed", "data", cq.Data, "telegram_id", telegramID, "error", res.Err)
	}

	return res.Err
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCESSORS
// ══════════════════════════════════════════════════════════════════════════════

// Client returns the Telegram client for direct API access.
func (b *Bot) Client() *telegram.Client {
	return b.client
}

// Router returns the router, mainly for tests.
func (b *Bot) Router() *Router {
	return b.router
}

// WebhookSecret returns the configured webhook secret token.
func (b *Bot) WebhookSecret() string {
	return b.config.WebhookSecret
}

// GetStats returns a snapshot of runtime statistics.
func (b *Bot) GetStats() map[string]interface{} {
	b.stats.mu.RLock()
	defer b.stats.mu.RUnlock()

	commands := make(map[string]int64, len(b.stats.CommandsCount))
	for k, v := range b.stats.CommandsCount {
		commands[k] = v
	}

	return map[string]interface{}{
		"started_at":       b.stats.StartedAt,
		"uptime":           time.Since(b.stats.StartedAt).String(),
		"updates_received": b.stats.UpdatesReceived,
		"updates_handled":  b.stats.UpdatesHandled,
		"errors_count":     b.stats.ErrorsCount,
		"commands_count":   commands,
		"running":          b.IsRunning(),
	}
}
