// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the supportdesk TUI.

This package defines the color palette, the theme of lipgloss styles and the
spinners used throughout the application. All colors use Lip Gloss
AdaptiveColor for automatic light/dark terminal detection.

# Color System (colors.go)

## Accent Colors

  - Purple - Primary accent, assistant messages and the active tab
  - Cyan - Brand color and the user side of the chat
  - Emerald - Resolved tickets, active agents, positive trends
  - Amber - In-progress work, stale data warnings
  - Rose - Errors, escalations and high priority
  - Blue - Open tickets and informational notes

## Domain Badges

TicketStatusColor, PriorityColor and AgentStateColor map domain enums to
badge colors. TrendColor colors dashboard trends, taking into account
metrics where lower is better (average response time).

## Accessibility

Every state rendered in color also carries an ASCII indicator from
StatusIndicators ([OK], [X], [!], [i], [*]).

# Theme (theme.go)

NewTheme builds every style once. The mode argument forces "dark" or "light",
or detects the terminal background with termenv for "auto".

	theme := styles.NewTheme(cfg.UI.Theme)
	header := theme.HeaderTitle.Render("Support Chat")

LayoutFor maps a terminal width to a LayoutMode, and LayoutMode.Columns gives
the number of cards per row.

# Animations (animations.go)

LineSpinner and DotsSpinner convert to bubbles spinners with NewSpinner.
RenderProgressBar draws the ASCII task bars of the agent roster.
*/
package styles
