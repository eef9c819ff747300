// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tickets provides the searchable ticket list of the supportdesk TUI.
package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/supportdesk-tui/internal/logging"
	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/poll"
	"github.com/jeranaias/supportdesk-tui/internal/support"
	"github.com/jeranaias/supportdesk-tui/internal/ui/components"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
	"github.com/jeranaias/supportdesk-tui/internal/util"
)

// DefaultInterval is the ticket list refresh period.
const DefaultInterval = 30 * time.Second

// Fetcher loads the ticket list. *support.Client implements it.
type Fetcher interface {
	Tickets(ctx context.Context) ([]model.Ticket, error)
}

// KeyMap defines the ticket list bindings.
type KeyMap struct {
	Search key.Binding
	Clear  key.Binding
	Up     key.Binding
	Down   key.Binding
}

// DefaultKeyMap returns the default ticket list bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "previous")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "next")),
	}
}

// Model is the Bubble Tea model for the ticket list.
type Model struct {
	theme   *styles.Theme
	poller  poll.Poller[[]model.Ticket]
	spinner spinner.Model
	search  textinput.Model
	keys    KeyMap

	// selected indexes the filtered list
	selected int

	width  int
	height int
}

// New creates an unmounted ticket list.
func New(theme *styles.Theme, fetcher Fetcher, interval time.Duration, logger *slog.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	fetch := func(ctx context.Context) ([]model.Ticket, error) {
		tickets, err := fetcher.Tickets(ctx)
		if err != nil {
			logger.Warn("tickets refresh failed", "error", err, "status", support.StatusCode(err))
		}
		return tickets, err
	}

	search := textinput.New()
	search.Placeholder = "Search by subject, customer or ID"
	search.Prompt = "/ "
	search.PromptStyle = theme.InputPrompt
	search.CharLimit = 120

	return Model{
		theme:   theme,
		poller:  poll.New("tickets", interval, fetch),
		spinner: styles.NewSpinner(styles.DotsSpinner),
		search:  search,
		keys:    DefaultKeyMap(),
	}
}

// Mount starts polling. The search query survives remounts.
func (m Model) Mount() (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.poller, cmd = m.poller.Start()
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// Unmount stops polling and discards the snapshot.
func (m Model) Unmount() Model {
	m.poller, _ = m.poller.Stop()
	m.search.Blur()
	m.selected = 0
	return m
}

// SetInterval changes the refresh period from the next tick on.
func (m Model) SetInterval(d time.Duration) Model {
	m.poller = m.poller.SetInterval(d)
	return m
}

// SetTimeout bounds each refresh request.
func (m Model) SetTimeout(d time.Duration) Model {
	m.poller = m.poller.SetTimeout(d)
	return m
}

// SetSize updates the available area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = max(width-6, 10)
}

// Capturing reports whether the search box owns the keyboard.
func (m Model) Capturing() bool { return m.search.Focused() }

// Query returns the current search text.
func (m Model) Query() string { return m.search.Value() }

// Keys returns the ticket list bindings.
func (m Model) Keys() KeyMap { return m.keys }

// Poller exposes the refresh state for the status bar.
func (m Model) Poller() poll.Poller[[]model.Ticket] { return m.poller }

// Visible returns the tickets matching the query, in snapshot order.
func (m Model) Visible() []model.Ticket {
	tickets, _ := m.poller.Snapshot()
	return model.FilterTickets(tickets, m.search.Value())
}

// Selected returns the highlighted ticket.
func (m Model) Selected() (model.Ticket, bool) {
	visible := m.Visible()
	if m.selected < 0 || m.selected >= len(visible) {
		return model.Ticket{}, false
	}
	return visible[m.selected], true
}

// Update handles keys, poller and spinner messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.poller.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.poller, cmd = m.poller.Update(msg)
	m.clampSelection()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.search.Focused() {
		switch msg.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			m.search.Blur()
			m.selected = 0
			return m, nil
		case tea.KeyEnter:
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.selected = 0
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Clear):
		m.search.SetValue("")
		m.selected = 0
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.Visible())-1 {
			m.selected++
		}
	}
	return m, nil
}

func (m *Model) clampSelection() {
	if n := len(m.Visible()); m.selected >= n {
		m.selected = max(n-1, 0)
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the search box and the ticket cards.
func (m Model) View() string {
	width := max(m.width, 40)

	if m.poller.Loading() {
		return components.RenderLoading(m.theme, m.spinner.View(), "tickets")
	}
	all, ok := m.poller.Snapshot()
	if !ok {
		if err := m.poller.Err(); err != nil {
			return components.RenderFetchError(m.theme, "tickets", support.Reason(err), width)
		}
		return ""
	}

	visible := model.FilterTickets(all, m.search.Value())
	summary := m.theme.CardMuted.Render(fmt.Sprintf("%d of %d tickets", len(visible), len(all)))

	sections := []string{m.search.View(), summary}
	if len(visible) == 0 {
		sections = append(sections, m.theme.CardMuted.Render("No tickets match your search."))
	}

	// Keep the selection on screen: each card is 5 lines tall.
	rows := max((m.height-4)/5, 1)
	start := 0
	if m.selected >= rows {
		start = m.selected - rows + 1
	}
	for i := start; i < len(visible) && i < start+rows; i++ {
		sections = append(sections, m.ticketCard(visible[i], i == m.selected, width))
	}

	sections = append(sections, components.RenderFreshness(m.theme, m.poller.LastUpdated(), reasonOf(m.poller.StaleErr()), width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) ticketCard(t model.Ticket, selected bool, width int) string {
	style := m.theme.Card
	if selected {
		style = m.theme.Selected
	}
	inner := width - 4

	title := m.theme.CardValue.Render("#"+t.ID+" "+util.TruncateWidth(t.Subject, inner-len(t.ID)-2))
	badges := strings.Join([]string{
		styles.RenderBadge(t.Status.DisplayName(), styles.TicketStatusColor(t.Status)),
		styles.RenderBadge(t.Priority.DisplayName(), styles.PriorityColor(t.Priority)),
		m.theme.CardTitle.Render(t.Customer),
		m.theme.Timestamp.Render(t.Timestamp),
	}, " ")
	body := m.theme.CardMuted.Render(util.TruncateWidth(util.SingleLine(t.Message), inner))

	return style.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, badges, body))
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	return support.Reason(err)
}
