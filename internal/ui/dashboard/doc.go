// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard provides the metrics overview of the supportdesk TUI.
//
// The view polls the dashboard snapshot while it is mounted and renders the
// four headline metrics plus the agent roster as cards.
//
// # Key Types
//
//   - Model: dashboard view, mounted and unmounted by the root model
//   - Fetcher: snapshot source, implemented by *support.Client
//
// # Usage
//
//	view := dashboard.New(theme, client, cfg.Polling.Dashboard(), logger)
//	view, cmd := view.Mount()
//	// ... on tab switch
//	view = view.Unmount()
package dashboard
