// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
	"github.com/jeranaias/supportdesk-tui/internal/util"
)

// =============================================================================
// FETCH FEEDBACK - shared by the polled views
// =============================================================================

// RenderLoading renders the spinner line shown during a view's first fetch.
func RenderLoading(theme *styles.Theme, spinnerView, what string) string {
	return spinnerView + " " + theme.LoadingText.Render("Loading "+what+"...")
}

// RenderFetchError renders the box shown when a view's first fetch failed.
func RenderFetchError(theme *styles.Theme, what, reason string, width int) string {
	w := width - 4
	if w < 20 {
		w = 20
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		"Could not load "+what,
		theme.CardMuted.Render(reason),
		theme.CardMuted.Render("Retrying automatically."),
	)
	return theme.ErrorBox.Width(w).Render(content)
}

// RenderFreshness renders the "updated at" line. A non-empty staleReason
// marks the data as the last good snapshot.
func RenderFreshness(theme *styles.Theme, updated time.Time, staleReason string, width int) string {
	line := ""
	if !updated.IsZero() {
		line = theme.Timestamp.Render("Updated " + updated.Format("15:04:05"))
	}
	if staleReason != "" {
		note := util.TruncateWidth("refresh failed, showing last data: "+util.SingleLine(staleReason), max(width-20, 20))
		line += "  " + theme.WarningStyle.Render(styles.StatusIndicators.Warning+" "+note)
	}
	return line
}
