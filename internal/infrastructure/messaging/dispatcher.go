package messaging

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hydro-bot/hydro-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DISPATCHER
// Registers the engagement event handlers on the bus with a middleware chain
// so a panicking or slow handler never takes the process down with it.
// ══════════════════════════════════════════════════════════════════════════════

// Middleware wraps an event handler.
type Middleware func(shared.EventHandler) shared.EventHandler

// Dispatcher connects named handlers to the event bus through middleware.
type Dispatcher struct {
	bus         shared.EventBus
	logger      *slog.Logger
	mu          sync.Mutex
	middlewares []Middleware
	registered  []string
}

// NewDispatcher creates a dispatcher over the given bus.
func NewDispatcher(bus shared.EventBus, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{bus: bus, logger: logger}
}

// Use appends a middleware; it applies to handlers registered afterwards.
func (d *Dispatcher) Use(middleware Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = append(d.middlewares, middleware)
}

// Register subscribes a named handler for one event type, wrapped in the
// current middleware chain.
func (d *Dispatcher) Register(eventType shared.EventType, name string, handler shared.EventHandler) error {
	d.mu.Lock()
	wrapped := handler
	for i := len(d.middlewares) - 1; i >= 0; i-- {
		wrapped = d.middlewares[i](wrapped)
	}
	d.registered = append(d.registered, name)
	d.mu.Unlock()

	if err := d.bus.Subscribe(eventType, wrapped); err != nil {
		return fmt.Errorf("dispatcher: failed to register %s: %w", name, err)
	}
	d.logger.Debug("registered event handler", "name", name, "event_type", eventType)
	return nil
}

// Registered returns the names of handlers registered so far.
func (d *Dispatcher) Registered() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.registered))
	copy(out, d.registered)
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// RecoveryMiddleware converts a handler panic into an error.
func RecoveryMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event handler panicked",
						"event_type", event.EventType(),
						"panic", r,
					)
					err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
				}
			}()
			return next(event)
		}
	}
}

// LoggingMiddleware logs every handled event with its duration.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			start := time.Now()
			err := next(event)
			logger.Debug("handled event",
				"event_type", event.EventType(),
				"aggregate_id", event.AggregateID(),
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
	}
}
