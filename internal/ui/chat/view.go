// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains the rendering logic of the chat view: the chat header,
// the message bubbles inside the viewport and the input line.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
)

// Fixed heights around the viewport. Keep in sync with renderHeader and
// renderInput.
const (
	headerHeight = 2
	inputHeight  = 2
)

// maxBubbleWidth keeps long replies readable on wide terminals.
const maxBubbleWidth = 96

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the chat view.
// Layout: header (2 lines) + messages (viewport) + input (2 lines).
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Support Chat")
	subtitle := "Powered by AI agents"
	if m.company != "" {
		subtitle = "Powered by " + m.company
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.theme.HeaderSubtitle.Render(subtitle),
	)
}

func (m Model) renderInput() string {
	width := m.width
	if width < 10 {
		width = 10
	}

	var line string
	if m.state == StateSending {
		line = m.spinner.View() + " " +
			m.theme.InputDisabled.Render("Waiting for the "+m.pending.target.Label()+" agent...")
	} else {
		line = m.input.View()
	}
	return m.theme.InputContainer.Width(width).Render(line)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshContent re-renders the whole log into the viewport.
func (m *Model) refreshContent() {
	if m.viewport.Width <= 0 {
		return
	}
	m.viewport.SetContent(m.renderMessages())
}

func (m Model) renderMessages() string {
	messages := m.log.Snapshot()
	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n")
}

func (m Model) bubbleWidth() int {
	w := m.viewport.Width - 6
	if w > maxBubbleWidth {
		w = maxBubbleWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderMessage renders one turn: a label line and a bubble.
// User turns sit on the right, assistant turns on the left.
func (m Model) renderMessage(msg *model.Message) string {
	width := m.bubbleWidth()
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName()) + " " +
		m.theme.Timestamp.Render(msg.SentAtDisplay())

	if msg.Role == model.RoleUser {
		bubble := m.theme.UserBubble.MaxWidth(width + 4).Render(
			lipgloss.NewStyle().Width(min(width, lipgloss.Width(msg.Content))).Render(msg.Content))
		block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
		return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Right, block)
	}

	body := m.renderAssistantBody(msg.Content, width)
	return lipgloss.JoinVertical(lipgloss.Left,
		"  "+label,
		m.theme.AssistantBubble.Render(body),
	)
}

func (m Model) renderAssistantBody(content string, width int) string {
	if m.markdown && m.renderer != nil {
		if out, ok := m.renderer.render(content, width); ok {
			return strings.Trim(out, "\n")
		}
	}
	return lipgloss.NewStyle().Width(width).Foreground(styles.AssistantBubbleFg).Render(content)
}
