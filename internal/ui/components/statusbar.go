// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the supportdesk TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
	"github.com/jeranaias/supportdesk-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT - bottom status bar
// =============================================================================

// Status represents the current application status
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusLoading
	StatusStale
	StatusError
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusLoading:
		return "Loading..."
	case StatusStale:
		return "Stale"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status
// ACCESSIBILITY: Uses distinct shapes alongside colors for colorblind users
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusSending, StatusLoading:
		return styles.StatusIndicators.Pending
	case StatusStale:
		return styles.StatusIndicators.Warning
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

func (s Status) color() lipgloss.AdaptiveColor {
	switch s {
	case StatusReady:
		return styles.Emerald
	case StatusSending, StatusLoading:
		return styles.Cyan
	case StatusStale:
		return styles.Amber
	default:
		return styles.Rose
	}
}

// StatusBar represents the bottom status bar
type StatusBar struct {
	Status   Status
	Message  string        // Short note next to the status, e.g. the last error
	Endpoint string        // Support service base URL
	Bindings []key.Binding // Shortcuts shown on the right
	Width    int
	theme    *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the status and its note
func (s *StatusBar) SetStatus(status Status, message string) {
	s.Status = status
	s.Message = message
}

// SetBindings replaces the shortcuts shown on the right
func (s *StatusBar) SetBindings(bindings ...key.Binding) {
	s.Bindings = bindings
}

// View renders the status bar
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}

	right := s.shortcuts(styles.LayoutFor(width))

	// Leave room for padding on both sides
	inner := width - 2
	leftMax := inner - lipgloss.Width(right) - 1
	if leftMax < 10 {
		right = ""
		leftMax = inner
	}

	label := s.Status.Icon() + " " + s.Status.String()
	left := lipgloss.NewStyle().Foreground(s.Status.color()).Bold(true).Render(label)

	// Truncate plain text before styling so escape codes are never cut
	note := util.SingleLine(s.Message)
	if s.Endpoint != "" && styles.LayoutFor(width) == styles.LayoutWide {
		if note != "" {
			note += "  "
		}
		note += s.Endpoint
	}
	if room := leftMax - util.StringWidth(label) - 1; note != "" && room > 0 {
		left += " " + s.theme.ShortcutDesc.Render(util.TruncateWidth(note, room))
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return s.theme.StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// shortcuts renders enabled bindings as "key desc" pairs.
// Narrow layouts only show the keys.
func (s *StatusBar) shortcuts(layout styles.LayoutMode) string {
	parts := make([]string, 0, len(s.Bindings))
	for _, b := range s.Bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		item := s.theme.ShortcutKey.Render(help.Key)
		if layout != styles.LayoutNarrow {
			item += " " + s.theme.ShortcutDesc.Render(help.Desc)
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, "  ")
}
