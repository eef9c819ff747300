// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings provides the settings form of the supportdesk TUI.
//
// The form loads the stored settings when mounted, keeps edits locally until
// saved, and validates them before issuing the save request. Loads and saves
// that complete after the form was unmounted are dropped.
//
// # Key Types
//
//   - Model: Bubble Tea model for the form
//   - Store: Load and save backend, implemented by support.Client
//   - SavedMsg: Emitted after a successful save
//
// # Usage
//
//	form := settings.New(theme, client, logger)
//	form, cmd := form.Mount()
package settings
