// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the supportdesk TUI.

Each component is a small struct rendered with Lip Gloss and styled from a
shared *styles.Theme, so every view looks the same.

# Key Types

Header (header.go) - Brand line, company name, session and the tab bar.
StatusBar (statusbar.go) - Request/refresh status plus the shortcuts of the active view.
Toasts (toast.go) - Auto-dismissing notices in the bottom-right corner.

# Usage

	theme := styles.NewTheme("auto")
	header := components.NewHeader(theme)
	header.SetWidth(100)
	header.SetActive(components.TabTickets)
	view := header.View()

Toasts are a value type and return the command that expires them:

	m.toasts, cmd = m.toasts.Add(components.ToastKindSuccess, "Settings saved")
*/
package components
