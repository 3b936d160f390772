package config

import (
	"time"
)

// DefaultSettings returns the built-in orchestrator settings. The health
// window (100s at 5s ticks, twenty attempts) matches what the services
// need to come up cold on a single host.
func DefaultSettings() Settings {
	return Settings{
		MaxWorkers:     8,
		HealthTimeout:  100 * time.Second,
		HealthInterval: 5 * time.Second,
		PollInterval:   3 * time.Second,
		LogTailLimit:   100,
		StrictSources:  false,
	}
}
