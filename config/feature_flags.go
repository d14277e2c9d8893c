package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages runtime feature toggles. Flags can be flipped per
// deployment through environment variables and rolled out gradually with a
// stable per-user hash.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Per-user overrides for testing and debugging
	userOverrides map[int64]map[string]bool // telegramID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID int64 // Telegram ID
}

// Predefined feature flag names.
const (
	// === Celebration Features ===
	FeatureCelebrateGoal        = "celebrate.goal"        // In-chat goal celebration
	FeatureCelebrateWeek        = "celebrate.week"        // Full-week celebration
	FeatureCelebrateAchievement = "celebrate.achievement" // Streak badge unlocks

	// === Dashboard Features ===
	FeatureDashboardCalendar = "dashboard.calendar" // Monthly heat-map
	FeatureDashboardStats    = "dashboard.stats"    // Rolling 7-day statistics
	FeatureDashboardMiniApp  = "dashboard.mini_app" // Mini App keyboard button

	// === Experimental Features ===
	FeatureExperimentalReminders = "experimental.reminders" // Scheduled drink reminders
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[int64]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureCelebrateGoal] = &Feature{
		Name:           FeatureCelebrateGoal,
		Description:    "Send a celebration when the daily goal is reached",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCelebrateWeek] = &Feature{
		Name:           FeatureCelebrateWeek,
		Description:    "Send a celebration on a full goal-met week",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCelebrateAchievement] = &Feature{
		Name:           FeatureCelebrateAchievement,
		Description:    "Announce streak achievement unlocks",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureDashboardCalendar] = &Feature{
		Name:           FeatureDashboardCalendar,
		Description:    "Monthly calendar heat-map",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureDashboardStats] = &Feature{
		Name:           FeatureDashboardStats,
		Description:    "Rolling 7-day statistics",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureDashboardMiniApp] = &Feature{
		Name:           FeatureDashboardMiniApp,
		Description:    "Show the Mini App button in the main keyboard",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalReminders] = &Feature{
		Name:           FeatureExperimentalReminders,
		Description:    "Scheduled drink reminders",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_CELEBRATE_GOAL=true
// Example: FEATURE_EXPERIMENTAL_REMINDERS=25 (25% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "celebrate.goal" -> "FEATURE_CELEBRATE_GOAL"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != 0 {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if !feature.Enabled {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != 0 {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID int64, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(strconv.FormatInt(userID, 10)))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID int64, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID int64) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// CelebrationsEnabled checks if any celebration is enabled.
func (ff *FeatureFlags) CelebrationsEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureCelebrateGoal, ctx) ||
		ff.IsEnabled(FeatureCelebrateWeek, ctx) ||
		ff.IsEnabled(FeatureCelebrateAchievement, ctx)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
