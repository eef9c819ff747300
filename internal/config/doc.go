// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for supportdesk.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Support service base URL, endpoint paths and agent routes
//   - PollingConfig: Refresh intervals of the data views
//   - ServerConfig: Demo service listen address, database and rate limits
//   - Watcher: fsnotify-based reloader for a config file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SUPPORTDESK_*), optionally from a .env file
//   - ~/.supportdesk/config.toml
//   - ~/.supportdesk/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Follow edits:
//
//	w, err := config.Watch(path, 200*time.Millisecond)
//	for {
//	    r, ok := w.Next()
//	    if !ok {
//	        break
//	    }
//	    apply(r.Config)
//	}
package config
