// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/supportdesk-tui/internal/support"
	"github.com/jeranaias/supportdesk-tui/internal/ui/components"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
)

// View renders the settings form.
func (m Model) View() string {
	width := max(m.width, 40)

	if m.loading {
		return components.RenderLoading(m.theme, m.spinner.View(), "settings")
	}
	if m.loadErr != nil {
		return components.RenderFetchError(m.theme, "settings", support.Reason(m.loadErr), width)
	}

	rows := []string{
		m.theme.SectionTop.Render("General"),
		m.textRow(fieldCompany, m.company.View()),
		m.textRow(fieldEmail, m.email.View()),
		m.theme.SectionTop.Render("Agents"),
		m.toggleRow(fieldAutoAttendance),
		m.toggleRow(fieldTechnicalDiagnostics),
		m.toggleRow(fieldSmartEscalation),
		m.toggleRow(fieldSentimentAnalysis),
		m.theme.SectionTop.Render("Notifications"),
		m.toggleRow(fieldNotifyNewTickets),
		m.toggleRow(fieldNotifyEscalated),
		"",
		m.saveRow(),
	}
	if status := m.statusLine(); status != "" {
		rows = append(rows, status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) cursor(f field) string {
	if m.focus == f {
		return m.theme.FieldFocused.Render("> ")
	}
	return "  "
}

func (m Model) labelFor(f field) string {
	style := m.theme.FieldLabel
	if m.focus == f {
		style = style.Foreground(styles.Cyan).Bold(true)
	}
	return style.Render(f.label())
}

func (m Model) textRow(f field, input string) string {
	return m.cursor(f) + m.labelFor(f) + " " + input
}

func (m Model) toggleRow(f field) string {
	toggle := m.theme.ToggleOff.Render("[ ] off")
	if m.flags[f] {
		toggle = m.theme.ToggleOn.Render("[x] on")
	}
	return m.cursor(f) + m.labelFor(f) + " " + toggle
}

func (m Model) saveRow() string {
	label := "[ Save ]"
	if m.saving {
		label = "[ Saving " + m.spinner.View() + "]"
	}
	style := m.theme.TabInactive
	if m.focus == fieldSave {
		style = m.theme.TabActive
	}
	line := m.cursor(fieldSave) + style.Render(label)
	if m.Dirty() {
		line += " " + m.theme.WarningStyle.Render("unsaved changes")
	}
	return line
}

func (m Model) statusLine() string {
	switch {
	case m.saveErr != nil:
		return styles.RenderError("Could not save: " + support.Reason(m.saveErr))
	case !m.savedAt.IsZero():
		return styles.RenderSuccess("Saved at " + m.savedAt.Format("15:04:05"))
	}
	return ""
}
