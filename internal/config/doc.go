// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// instalite terminal client.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - APIConfig: Backend base URL, timeouts and retries
//   - SessionConfig: Idle timeout and session store driver
//   - UIConfig: Theme and rendering preferences
//   - LogConfig: Log file level and location
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (INSTALITE_*)
//   - ~/.instalite/config.toml
//   - ~/.instalite/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.IdleTimeout()
package config
