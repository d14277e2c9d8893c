// Package main is the entry point of the Hydro Hub bot.
//
// Hydro Hub tracks personal hydration: every sip is an append-only ledger
// event, everything else (daily totals, streaks, achievements, the calendar
// heat-map) is recomputed from the ledger on read.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure hydration rules without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: persistence, messaging, Telegram API client
// - Interface: Telegram bot handlers, HTTP API for the Mini App
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hydro-bot/hydro-hub/config"

	// Application layer
	"github.com/hydro-bot/hydro-hub/internal/application/command"
	"github.com/hydro-bot/hydro-hub/internal/application/eventhandler"
	"github.com/hydro-bot/hydro-hub/internal/application/query"

	// Domain layer
	"github.com/hydro-bot/hydro-hub/internal/domain/intake"
	"github.com/hydro-bot/hydro-hub/internal/domain/profile"
	"github.com/hydro-bot/hydro-hub/internal/domain/shared"

	// Infrastructure layer
	"github.com/hydro-bot/hydro-hub/internal/infrastructure/messaging"
	"github.com/hydro-bot/hydro-hub/internal/infrastructure/persistence/memory"
	"github.com/hydro-bot/hydro-hub/internal/infrastructure/persistence/postgres"
	"github.com/hydro-bot/hydro-hub/internal/infrastructure/persistence/redis"
	"github.com/hydro-bot/hydro-hub/internal/infrastructure/persistence/sqlite"

	// Interface layer
	httpserver "github.com/hydro-bot/hydro-hub/internal/interface/http"
	"github.com/hydro-bot/hydro-hub/internal/interface/http/handlers"
	"github.com/hydro-bot/hydro-hub/internal/interface/telegram"

	// Packages
	"github.com/hydro-bot/hydro-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────

	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Hydro Hub",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"store", cfg.Database.Driver,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. INTAKE STORE
	// ─────────────────────────────────────────────────────────────────────────
	var (
		intakeRepo  intake.Repository
		profileRepo profile.Repository
		dbChecker   handlers.HealthChecker
	)

	switch cfg.Database.Driver {
	case config.StorePostgres:
		log.Info("connecting to database...")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		if err := dbConn.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		log.Info("database connection established")

		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		intakeRepo = postgres.NewIntakeRepository(dbConn)
		profileRepo = postgres.NewProfileRepository(dbConn)
		dbChecker = handlers.NewDatabaseChecker(dbConn)

	case config.StoreSQLite:
		log.Info("opening sqlite store", "path", cfg.Database.SQLitePath)
		store, err := sqlite.Open(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		defer func() {
			log.Info("closing sqlite store...")
			_ = store.Close()
		}()

		intakeRepo = sqlite.NewIntakeRepository(store)
		profileRepo = sqlite.NewProfileRepository(store)
		dbChecker = handlers.NewDatabaseChecker(store)

	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		intakeRepo = memory.NewIntakeRepository()
		profileRepo = memory.NewProfileRepository()
		dbChecker = handlers.NewNoopChecker("database")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		tickets      intake.TicketStore
		cacheChecker handlers.HealthChecker = handlers.NewNoopChecker("cache")
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, falling back to in-process tickets", "error", err)
		} else {
			defer redisCache.Close()
			tickets = redis.NewTicketStore(redisCache)
			cacheChecker = handlers.NewCacheChecker(redisCache)
			log.Info("Redis connection established")
		}
	}
	if tickets == nil {
		// Undo tickets live a few seconds; in-process storage is fine for a
		// single instance.
		tickets = memory.NewTicketStore()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(eventBusConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	loader := query.NewLoader(intakeRepo, profileRepo, time.Now)
	locker := command.NewUserLocker()

	submitIntakeCmd := command.NewSubmitIntakeHandler(
		intakeRepo, profileRepo, tickets, locker, loader, eventBus,
		command.SubmitIntakeHandlerConfig{UndoWindow: cfg.Hydration.UndoWindow},
	)
	undoIntakeCmd := command.NewUndoIntakeHandler(intakeRepo, tickets, locker, loader, eventBus)
	updateProfileCmd := command.NewUpdateProfileHandler(profileRepo, locker, loader, eventBus)

	stateQuery := query.NewGetStateHandler(loader)
	calendarQuery := query.NewGetCalendarHandler(loader)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. TELEGRAM BOT
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing Telegram bot...")

	botConfig := telegram.DefaultBotConfig(cfg.Telegram.Token)
	if cfg.Telegram.UseWebhook {
		botConfig.Mode = "webhook"
		botConfig.WebhookURL = cfg.Telegram.WebhookURL
		botConfig.WebhookSecret = cfg.Telegram.WebhookSecret
	}
	if cfg.Features.IsEnabled(config.FeatureDashboardMiniApp, nil) {
		botConfig.WebAppURL = cfg.Telegram.WebAppURL
	}
	botConfig.DefaultTZOffsetMinutes = cfg.Hydration.DefaultTZOffsetMinutes
	botConfig.PollingTimeout = int(cfg.Telegram.PollingTimeout.Seconds())
	botConfig.Debug = cfg.App.Debug
	botConfig.Logger = log
	botConfig.GracefulShutdownTimeout = cfg.App.ShutdownTimeout

	botDeps := telegram.BotDependencies{
		SubmitIntakeCmd:  submitIntakeCmd,
		UndoIntakeCmd:    undoIntakeCmd,
		UpdateProfileCmd: updateProfileCmd,
		StateQuery:       stateQuery,
		CalendarQuery:    calendarQuery,
	}

	bot, err := telegram.NewBot(botConfig, botDeps)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	notifier := telegram.NewNotifier(bot.Client())

	dispatcher := messaging.NewDispatcher(eventBus, log)
	dispatcher.Use(messaging.RecoveryMiddleware(log))
	dispatcher.Use(messaging.LoggingMiddleware(log))

	goalHandler := eventhandler.NewOnGoalCompletedHandler(notifier, log, eventhandler.GoalCompletedConfig{
		SendCongratulation: cfg.Features.IsEnabled(config.FeatureCelebrateGoal, nil),
	})
	if err := dispatcher.Register(shared.EventGoalCompleted, "on_goal_completed", goalHandler.Handle); err != nil {
		return fmt.Errorf("failed to register goal handler: %w", err)
	}
	if cfg.Features.IsEnabled(config.FeatureCelebrateWeek, nil) {
		if err := dispatcher.Register(shared.EventWeekCompleted, "on_week_completed", goalHandler.Handle); err != nil {
			return fmt.Errorf("failed to register week handler: %w", err)
		}
	}

	if cfg.Features.IsEnabled(config.FeatureCelebrateAchievement, nil) {
		achievementHandler := eventhandler.NewOnAchievementUnlockedHandler(notifier, log)
		if err := dispatcher.Register(shared.EventAchievementUnlocked, "on_achievement_unlocked", achievementHandler.Handle); err != nil {
			return fmt.Errorf("failed to register achievement handler: %w", err)
		}
	}

	log.Info("event handlers registered", "handlers", dispatcher.Registered())

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.WebhookSecret = cfg.Telegram.WebhookSecret

	var webhookHandler handlers.WebhookHandler
	if cfg.Telegram.UseWebhook {
		webhookHandler = handlers.NewBotWebhookHandler(bot)
	}

	httpDeps := httpserver.Dependencies{
		SubmitIntakeHandler:  submitIntakeCmd,
		UndoIntakeHandler:    undoIntakeCmd,
		UpdateProfileHandler: updateProfileCmd,
		GetStateHandler:      stateQuery,
		GetCalendarHandler:   calendarQuery,
		Logger:               setupHTTPLogger(cfg),
		HealthChecker:        handlers.NewCompositeHealthChecker(5*time.Second, dbChecker, cacheChecker),
		WebhookHandler:       webhookHandler,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. START SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting services...")

	errCh := make(chan error, 2)

	if cfg.HTTP.Enabled {
		go func() {
			log.Info("starting HTTP server", "address", httpServer.Address())
			if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server error: %w", err)
			}
		}()
	}

	go func() {
		log.Info("starting Telegram bot", "mode", botConfig.Mode)
		if err := bot.Start(ctx); err != nil {
			errCh <- fmt.Errorf("telegram bot error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Hydro Hub is running",
		"http_address", httpServer.Address(),
		"telegram_mode", botConfig.Mode,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	// Bot first so no new commands arrive while the API drains.
	log.Info("stopping Telegram bot...")
	if err := bot.Stop(shutdownCtx); err != nil {
		log.Error("failed to stop bot gracefully", "error", err)
		shutdownErr = err
	}

	log.Info("stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	// Event bus and stores close through defers.

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger configures structured logging for the bot and event pipeline.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// setupHTTPLogger configures the HTTP layer's logger.
func setupHTTPLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}
