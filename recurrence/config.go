package recurrence

import (
	"time"

	"cloud.google.com/go/civil"
)

// EngineConfig holds the deployment policy of the recurrence engine
type EngineConfig struct {
	// Horizon is the latest date the engine will ever generate an occurrence for.
	Horizon civil.Date
	// MaxOccurrences caps the length of one generated series.
	MaxOccurrences int
}

// DefaultEngineConfig matches the policy the calendar UI was built against
var DefaultEngineConfig = EngineConfig{
	Horizon:        civil.Date{Year: 2025, Month: time.December, Day: 31},
	MaxOccurrences: 100,
}

// NewEngineWithConfig creates a recurrence engine with custom policy. Zero
// fields fall back to DefaultEngineConfig.
func NewEngineWithConfig(config EngineConfig) *Engine {
	if config.Horizon.IsZero() || !config.Horizon.IsValid() {
		config.Horizon = DefaultEngineConfig.Horizon
	}
	if config.MaxOccurrences <= 0 {
		config.MaxOccurrences = DefaultEngineConfig.MaxOccurrences
	}
	return &Engine{config: config}
}
