// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// CARD GRID
// =============================================================================

// cardGap is the horizontal space between cards in a row.
const cardGap = 1

// CardWidth returns the outer width of one card when columns cards share
// total columns of terminal.
func CardWidth(total, columns int) int {
	if columns < 1 {
		columns = 1
	}
	w := (total - cardGap*(columns-1)) / columns
	if w < 16 {
		w = 16
	}
	return w
}

// Grid lays rendered cards out in rows of columns cards.
func Grid(cards []string, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	gap := lipgloss.NewStyle().Width(cardGap).Render("")
	rows := make([]string, 0, (len(cards)+columns-1)/columns)
	for start := 0; start < len(cards); start += columns {
		end := min(start+columns, len(cards))
		row := make([]string, 0, 2*(end-start))
		for i, card := range cards[start:end] {
			if i > 0 {
				row = append(row, gap)
			}
			row = append(row, card)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
