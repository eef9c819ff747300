// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured loggers used by the TUI and the demo service.
//
// The TUI owns the terminal, so its records go to a JSON file. The demo
// service logs JSON to stdout.
//
// # Usage
//
//	logger, closeLog, err := logging.New(logging.Options{
//	    Level: cfg.Log.Level,
//	    File:  cfg.Log.File,
//	})
//	if err != nil {
//	    return err
//	}
//	defer closeLog()
package logging
