// Package config provides configuration management for depctl.
//
// Two inputs are combined into a single Config value at startup:
//
//  1. The shared environment file (flat KEY=value pairs, default ".env").
//     It supplies the credentials and connection strings that the
//     Deployer injects into every container unconditionally. The file is
//     mandatory and validated against RequiredEnvKeys before any worker
//     starts, so a run fails fast instead of deploying services with
//     partial configuration.
//
//  2. The optional settings file (~/.depctl/depctl.yaml). It tunes the
//     orchestrator (worker cap, health timeout and interval, progress
//     poll interval, log tail bound, strict source policy) and may
//     override or extend the built-in service registry. Settings are
//     merged over built-in defaults, overlay winning.
//
// The resulting Config is passed by value into the components that need
// it; nothing re-reads configuration from disk mid-run.
package config
