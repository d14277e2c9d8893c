// Package handlers contains HTTP handler contracts shared between the
// server and its wiring in cmd.
package handlers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECK INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker checks the health of a dependency.
type HealthChecker interface {
	// Check performs the health check.
	Check(ctx context.Context) HealthResult

	// Name returns the checker name.
	Name() string
}

// HealthResult is the result of a health check.
type HealthResult struct {
	// Healthy is true when the component is usable.
	Healthy bool `json:"healthy"`

	// Status is a human-readable status.
	Status string `json:"status"`

	// Latency is how long the check took.
	Latency time.Duration `json:"latency_ns"`

	// Details contains per-component results for composite checks.
	Details map[string]HealthResult `json:"details,omitempty"`

	// Error message, when unhealthy.
	Error string `json:"error,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// CompositeHealthChecker runs multiple checkers in parallel.
type CompositeHealthChecker struct {
	checkers []HealthChecker
	timeout  time.Duration
}

// NewCompositeHealthChecker creates a composite checker.
func NewCompositeHealthChecker(timeout time.Duration, checkers ...HealthChecker) *CompositeHealthChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CompositeHealthChecker{
		checkers: checkers,
		timeout:  timeout,
	}
}

// Name returns the checker name.
func (c *CompositeHealthChecker) Name() string { return "composite" }

// Check runs all checks in parallel and aggregates results.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	details := make(map[string]HealthResult, len(c.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range c.checkers {
		wg.Add(1)
		go func(hc HealthChecker) {
			defer wg.Done()
			result := hc.Check(ctx)
			mu.Lock()
			details[hc.Name()] = result
			mu.Unlock()
		}(checker)
	}

	wg.Wait()

	healthy := true
	var unhealthy []string
	for name, result := range details {
		if !result.Healthy {
			healthy = false
			unhealthy = append(unhealthy, name)
		}
	}

	status := "healthy"
	if !healthy {
		status = fmt.Sprintf("unhealthy: %s", strings.Join(unhealthy, ", "))
	}

	return HealthResult{
		Healthy: healthy,
		Status:  status,
		Latency: time.Since(start),
		Details: details,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPONENT CHECKERS
// ══════════════════════════════════════════════════════════════════════════════

// Pinger is anything that can verify connectivity with a ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker checks the intake store connection.
type DatabaseChecker struct {
	db Pinger
}

// NewDatabaseChecker creates a database health checker.
func NewDatabaseChecker(db Pinger) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

// Name returns the checker name.
func (c *DatabaseChecker) Name() string { return "database" }

// Check pings the database.
func (c *DatabaseChecker) Check(ctx context.Context) HealthResult {
	start := time.Now()

	if err := c.db.Ping(ctx); err != nil {
		return HealthResult{
			Healthy: false,
			Status:  "unreachable",
			Latency: time.Since(start),
			Error:   err.Error(),
		}
	}

	return HealthResult{
		Healthy: true,
		Status:  "connected",
		Latency: time.Since(start),
	}
}

// CacheChecker checks the cache connection.
type CacheChecker struct {
	cache Pinger
}

// NewCacheChecker creates a cache health checker.
func NewCacheChecker(cache Pinger) *CacheChecker {
	return &CacheChecker{cache: cache}
}

// Name returns the checker name.
func (c *CacheChecker) Name() string { return "cache" }

// Check pings the cache.
func (c *CacheChecker) Check(ctx context.Context) HealthResult {
	start := time.Now()

	if err := c.cache.Ping(ctx); err != nil {
		// The cache is an optimization layer; the service degrades but
		// stays up without it.
		return HealthResult{
			Healthy: false,
			Status:  "unreachable",
			Latency: time.Since(start),
			Error:   err.Error(),
		}
	}

	return HealthResult{
		Healthy: true,
		Status:  "connected",
		Latency: time.Since(start),
	}
}

// NoopChecker always reports healthy. Used for components that are
// disabled by configuration (for example Redis in memory-store mode).
type NoopChecker struct {
	name string
}

// NewNoopChecker creates a no-op checker with the given name.
func NewNoopChecker(name string) *NoopChecker {
	return &NoopChecker{name: name}
}

// Name returns the checker name.
func (c *NoopChecker) Name() string { return c.name }

// Check always succeeds.
func (c *NoopChecker) Check(_ context.Context) HealthResult {
	return HealthResult{Healthy: true, Status: "disabled"}
}
