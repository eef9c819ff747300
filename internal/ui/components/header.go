// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the supportdesk TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
	"github.com/jeranaias/supportdesk-tui/internal/util"
)

// =============================================================================
// TAB TYPE
// =============================================================================

// Tab identifies one of the top-level views.
type Tab int

const (
	TabChat Tab = iota
	TabDashboard
	TabTickets
	TabAgents
	TabSettings
)

// AllTabs lists the tabs in display order.
var AllTabs = []Tab{TabChat, TabDashboard, TabTickets, TabAgents, TabSettings}

// String returns the display name for the tab
func (t Tab) String() string {
	switch t {
	case TabChat:
		return "Chat"
	case TabDashboard:
		return "Dashboard"
	case TabTickets:
		return "Tickets"
	case TabAgents:
		return "Agents"
	case TabSettings:
		return "Settings"
	default:
		return "UNKNOWN"
	}
}

// Key returns the number key that selects the tab.
func (t Tab) Key() string {
	return fmt.Sprintf("%d", int(t)+1)
}

// Next returns the tab to the right, wrapping around.
func (t Tab) Next() Tab {
	return Tab((int(t) + 1) % len(AllTabs))
}

// Prev returns the tab to the left, wrapping around.
func (t Tab) Prev() Tab {
	return Tab((int(t) + len(AllTabs) - 1) % len(AllTabs))
}

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header renders the brand line and the tab bar.
type Header struct {
	Title     string // Brand shown on the left
	Company   string // Company the desk serves
	SessionID string // Empty until the chat identity exists
	Active    Tab    // Highlighted tab
	Width     int    // Available width
	theme     *styles.Theme
}

// NewHeader creates a new Header component
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:  "supportdesk",
		Active: TabChat,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the header width
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetActive highlights a tab
func (h *Header) SetActive(tab Tab) {
	h.Active = tab
}

// SetCompany updates the company name
func (h *Header) SetCompany(name string) {
	h.Company = name
}

// SetSession updates the session shown on the right
func (h *Header) SetSession(id string) {
	h.SessionID = id
}

// View renders the header component
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}
	if styles.LayoutFor(width) == styles.LayoutNarrow {
		return h.ViewCompact()
	}

	accentStyle := lipgloss.NewStyle().Foreground(styles.Purple)
	brand := accentStyle.Render("< ") +
		h.theme.HeaderBrand.Render(h.Title) +
		accentStyle.Render(" >")
	if h.Company != "" {
		brand += h.theme.HeaderSubtitle.Render("  " + h.Company)
	}

	right := ""
	if h.SessionID != "" {
		right = h.theme.Timestamp.Render(util.TruncateWidth(h.SessionID, 28))
	}

	gap := width - lipgloss.Width(brand) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	brandLine := h.theme.Header.Width(width).Render(brand + strings.Repeat(" ", gap) + right)

	return lipgloss.JoinVertical(lipgloss.Left, brandLine, h.tabBar(width))
}

// ViewCompact renders a single-line header for narrow terminals.
// Only the active tab is named; the others show their number key.
func (h *Header) ViewCompact() string {
	parts := []string{h.theme.HeaderBrand.Render(h.Title)}
	for _, tab := range AllTabs {
		if tab == h.Active {
			parts = append(parts, h.theme.TabActive.Render(tab.String()))
		} else {
			parts = append(parts, h.theme.TabInactive.Render(tab.Key()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (h *Header) tabBar(width int) string {
	tabs := make([]string, 0, len(AllTabs))
	for _, tab := range AllTabs {
		label := tab.Key() + " " + tab.String()
		if tab == h.Active {
			tabs = append(tabs, h.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, h.theme.TabInactive.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	return h.theme.TabBar.Width(width).Render(row)
}
