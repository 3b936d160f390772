package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

const (
	settingsDir      = ".depctl"
	settingsFileName = "depctl.yaml"
)

// Load assembles the full runtime configuration: the required environment
// file at envFile, plus the optional settings file layered on defaults.
func Load(envFile string) (Config, error) {
	env, err := LoadEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}

	settings, err := LoadSettings()
	if err != nil {
		return Config{}, err
	}

	return Config{Env: env, Settings: settings}, nil
}

// LoadEnvFile parses the flat key/value environment file and validates
// that every required key is present. The file is mandatory: deploying
// services with partial configuration is worse than not deploying at all.
func LoadEnvFile(path string) (map[string]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("environment file %s does not exist; create it before deploying", path)
		}
		return nil, fmt.Errorf("cannot read environment file %s: %w", path, err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment file %s: %w", path, err)
	}

	var missing []string
	for _, key := range RequiredEnvKeys {
		if env[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("environment file %s is missing required keys: %v", path, missing)
	}

	return env, nil
}

// LoadSettings loads the user settings file if present and overlays it on
// the built-in defaults. A missing settings file is not an error.
func LoadSettings() (Settings, error) {
	settings := DefaultSettings()

	path, err := settingsPath()
	if err != nil {
		// Settings are optional; carry on with defaults.
		fmt.Fprintf(os.Stderr, "Warning: Could not determine settings path: %v\n", err)
		return settings, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error reading settings from %s: %w", path, err)
	}

	var overlay Settings
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Settings{}, fmt.Errorf("error parsing settings from %s: %w", path, err)
	}

	return mergeSettings(settings, overlay), nil
}

var settingsPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, settingsDir, settingsFileName), nil
}

// mergeSettings merges 'overlay' settings into 'base' settings.
func mergeSettings(base, overlay Settings) Settings {
	merged := base

	if overlay.WorkDir != "" {
		merged.WorkDir = overlay.WorkDir
	}
	if overlay.MaxWorkers != 0 {
		merged.MaxWorkers = overlay.MaxWorkers
	}
	if overlay.HealthTimeout != 0 {
		merged.HealthTimeout = overlay.HealthTimeout
	}
	if overlay.HealthInterval != 0 {
		merged.HealthInterval = overlay.HealthInterval
	}
	if overlay.PollInterval != 0 {
		merged.PollInterval = overlay.PollInterval
	}
	if overlay.LogTailLimit != 0 {
		merged.LogTailLimit = overlay.LogTailLimit
	}
	if overlay.StrictSources {
		merged.StrictSources = true
	}

	// Service overrides replace same-named defaults and append new entries.
	if len(overlay.Services) > 0 {
		byName := make(map[string]int, len(merged.Services))
		for i, svc := range merged.Services {
			byName[svc.Name] = i
		}
		for _, svc := range overlay.Services {
			if i, ok := byName[svc.Name]; ok {
				merged.Services[i] = svc
			} else {
				merged.Services = append(merged.Services, svc)
			}
		}
	}

	return merged
}

// WorkDir resolves the source workspace directory, falling back to the
// default under the user's home directory.
func (c Config) WorkDir() (string, error) {
	if c.Settings.WorkDir != "" {
		return c.Settings.WorkDir, nil
	}
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for workspace: %w", err)
	}
	return filepath.Join(homeDir, settingsDir, "workspaces"), nil
}
