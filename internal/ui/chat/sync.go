// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/supportdesk-tui/internal/model"
)

// =============================================================================
// VIEW SYNCHRONIZER
// =============================================================================

// Synchronizer detects log mutations by comparing the length and the ID of
// the last entry with what it saw on the previous call.
type Synchronizer struct {
	length int
	lastID string
}

// Observe records the current log shape and reports whether it changed.
func (s *Synchronizer) Observe(log *model.Log) bool {
	length, lastID := 0, ""
	if log != nil {
		length = log.Len()
		if last := log.Last(); last != nil {
			lastID = last.ID
		}
	}

	if length == s.length && lastID == s.lastID {
		return false
	}
	s.length, s.lastID = length, lastID
	return true
}

// ScrollCmd returns the deferred scroll for the last observed shape.
// Bubble Tea renders the current model before it runs the command, so the
// scroll lands after the mutation is on screen.
func (s *Synchronizer) ScrollCmd() tea.Cmd {
	msg := ScrollToLatestMsg{Len: s.length, LastID: s.lastID}
	return func() tea.Msg {
		return msg
	}
}
