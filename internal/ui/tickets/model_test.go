// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
)

type fakeFetcher struct {
	tickets []model.Ticket
}

func (f *fakeFetcher) Tickets(context.Context) ([]model.Ticket, error) {
	return f.tickets, nil
}

func sampleTickets() []model.Ticket {
	return []model.Ticket{
		{ID: "1001", Customer: "João Silva", Subject: "Problema com login", Status: model.TicketOpen, Priority: model.PriorityHigh, Message: "Não consigo acessar"},
		{ID: "1002", Customer: "Maria Santos", Subject: "Dúvida sobre fatura", Status: model.TicketInProgress, Priority: model.PriorityMedium},
		{ID: "1003", Customer: "Pedro Costa", Subject: "Erro no pagamento", Status: model.TicketEscalated, Priority: model.PriorityHigh},
	}
}

// mounted returns a ticket list with its first snapshot loaded.
func mounted(t *testing.T) Model {
	t.Helper()
	m := New(styles.NewTheme("dark"), &fakeFetcher{tickets: sampleTickets()}, time.Hour, nil)
	m.SetSize(100, 40)

	m, cmd := m.Mount()
	m = feed(m, cmd)
	require.False(t, m.Poller().Loading())
	return m
}

// feed runs cmd once and delivers its messages, skipping spinner ticks and
// the follow-up commands so no timer is waited on.
func feed(m Model, cmd tea.Cmd) Model {
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = feed(m, c)
		}
	case spinner.TickMsg:
	default:
		m, _ = m.Update(msg)
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestView_ListsTickets(t *testing.T) {
	m := mounted(t)

	view := m.View()
	for _, want := range []string{"3 of 3 tickets", "#1001", "Problema com login", "João Silva", "[Open]", "[High]", "[Escalated]"} {
		assert.Contains(t, view, want)
	}
}

func TestSearch_FiltersAndCaptures(t *testing.T) {
	m := mounted(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.True(t, m.Capturing(), "slash focuses the search box")

	m = typeText(m, "MARIA")
	assert.Equal(t, "MARIA", m.Query())

	visible := m.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "1002", visible[0].ID)
	assert.Contains(t, m.View(), "1 of 3 tickets")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.Capturing())
	assert.Equal(t, "MARIA", m.Query(), "enter keeps the query")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.Query())
	assert.Len(t, m.Visible(), 3)
}

func TestSearch_NoMatches(t *testing.T) {
	m := mounted(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = typeText(m, "zzz")

	assert.Empty(t, m.Visible())
	assert.Contains(t, m.View(), "No tickets match")
}

func TestSelection_MovesAndClamps(t *testing.T) {
	m := mounted(t)

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "1001", sel.ID)

	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	sel, _ = m.Selected()
	assert.Equal(t, "1003", sel.ID, "selection stops at the last ticket")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	sel, _ = m.Selected()
	assert.Equal(t, "1002", sel.ID)
}

func TestUnmount_DiscardsSnapshot(t *testing.T) {
	m := mounted(t)
	m = m.Unmount()

	_, ok := m.Poller().Snapshot()
	assert.False(t, ok)
	assert.False(t, m.Poller().Active())
	assert.Empty(t, m.Visible())
}
