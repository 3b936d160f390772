package config

import (
	"time"
)

// Config is the complete runtime configuration for a deployment run.
// It is assembled once at startup and passed by value into the components
// that need it; nothing re-reads configuration from disk mid-run.
type Config struct {
	// Env holds every key/value pair from the shared environment file.
	// The Deployer injects the whole map into every container
	// unconditionally, so services never see partial configuration.
	Env map[string]string

	// Settings holds orchestrator tuning loaded from the optional
	// settings file, overlaid on built-in defaults.
	Settings Settings
}

// Settings is the top-level structure of the optional depctl.yaml file.
type Settings struct {
	// WorkDir is where source trees are cloned (one subdirectory per
	// service). Defaults to ~/.depctl/workspaces.
	WorkDir string `yaml:"workDir,omitempty"`

	// MaxWorkers caps how many service pipelines run at once.
	MaxWorkers int `yaml:"maxWorkers,omitempty"`

	// HealthTimeout bounds how long a service may take to report healthy.
	HealthTimeout time.Duration `yaml:"healthTimeout,omitempty"`

	// HealthInterval is the delay between health probes.
	HealthInterval time.Duration `yaml:"healthInterval,omitempty"`

	// PollInterval is how often the orchestrator reprints the progress table.
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`

	// LogTailLimit bounds how many captured output lines a task record keeps.
	LogTailLimit int `yaml:"logTailLimit,omitempty"`

	// StrictSources fails a task whose source came from a fallback
	// (wrong branch or synthesized stub) instead of deploying it anyway.
	StrictSources bool `yaml:"strictSources,omitempty"`

	// Services overrides or extends the built-in service registry.
	Services []ServiceDefinition `yaml:"services,omitempty"`
}

// ServiceDefinition defines one deployable service in the settings file.
type ServiceDefinition struct {
	Name          string `yaml:"name"`
	Port          uint16 `yaml:"port"`
	Repo          string `yaml:"repo"`          // "owner/name" locator
	DefaultBranch string `yaml:"defaultBranch"` // branch used by the last-resort clone
}

// RequiredEnvKeys are the keys every service container depends on. The
// loader refuses to proceed when any of them is missing from the
// environment file, so a run never deploys half-configured services.
var RequiredEnvKeys = []string{
	"DATABASE_URL",
	"REDIS_URL",
	"QUEUE_URL",
	"JWT_SECRET",
}
