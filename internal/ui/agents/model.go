// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agents provides the active-agent roster of the supportdesk TUI.
//
// The roster polls the agent list while mounted and shows each agent's state
// and its share of all completed tasks.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
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

// DefaultInterval is the roster refresh period.
const DefaultInterval = 60 * time.Second

// Fetcher loads the agent roster. *support.Client implements it.
type Fetcher interface {
	Agents(ctx context.Context) ([]model.AgentStatus, error)
}

// Model is the Bubble Tea model for the agent roster.
type Model struct {
	theme   *styles.Theme
	poller  poll.Poller[[]model.AgentStatus]
	spinner spinner.Model

	width  int
	height int
}

// New creates an unmounted roster.
func New(theme *styles.Theme, fetcher Fetcher, interval time.Duration, logger *slog.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	fetch := func(ctx context.Context) ([]model.AgentStatus, error) {
		agents, err := fetcher.Agents(ctx)
		if err != nil {
			logger.Warn("agents refresh failed", "error", err, "status", support.StatusCode(err))
		}
		return agents, err
	}
	return Model{
		theme:   theme,
		poller:  poll.New("agents", interval, fetch),
		spinner: styles.NewSpinner(styles.DotsSpinner),
	}
}

// Mount starts polling.
func (m Model) Mount() (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.poller, cmd = m.poller.Start()
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// Unmount stops polling and discards the snapshot.
func (m Model) Unmount() Model {
	m.poller, _ = m.poller.Stop()
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
}

// Poller exposes the refresh state for the status bar.
func (m Model) Poller() poll.Poller[[]model.AgentStatus] { return m.poller }

// Update handles poller and spinner messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !m.poller.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}

	var cmd tea.Cmd
	m.poller, cmd = m.poller.Update(msg)
	return m, cmd
}

// View renders the roster.
func (m Model) View() string {
	width := max(m.width, 40)

	if m.poller.Loading() {
		return components.RenderLoading(m.theme, m.spinner.View(), "agents")
	}
	roster, ok := m.poller.Snapshot()
	if !ok {
		if err := m.poller.Err(); err != nil {
			return components.RenderFetchError(m.theme, "agents", support.Reason(err), width)
		}
		return ""
	}

	total, active := 0, 0
	for _, a := range roster {
		total += a.TasksCompleted
		if a.Status == model.AgentActive {
			active++
		}
	}

	columns := min(styles.LayoutFor(width).Columns(), 2)
	cardWidth := components.CardWidth(width, columns)
	cards := make([]string, 0, len(roster))
	for _, a := range roster {
		cards = append(cards, m.agentCard(a, total, cardWidth))
	}

	summary := m.theme.CardMuted.Render(fmt.Sprintf("%d agents, %d active, %d tasks completed", len(roster), active, total))
	return lipgloss.JoinVertical(lipgloss.Left,
		summary,
		components.Grid(cards, columns),
		components.RenderFreshness(m.theme, m.poller.LastUpdated(), reasonOf(m.poller.StaleErr()), width),
	)
}

func (m Model) agentCard(a model.AgentStatus, total, width int) string {
	inner := width - 4
	share := 0.0
	if total > 0 {
		share = float64(a.TasksCompleted) * 100 / float64(total)
	}

	badge := styles.RenderBadge(styles.AgentStateIndicator(a.Status)+" "+a.Status.DisplayName(), styles.AgentStateColor(a.Status))
	tasks := fmt.Sprintf("%d tasks", a.TasksCompleted)
	bar := styles.RenderProgressBar(max(inner-util.StringWidth(tasks)-1, 4), share)

	return m.theme.Card.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.CardValue.Render(util.TruncateWidth(a.Name, inner)),
		m.theme.CardMuted.Render(util.TruncateWidth(a.Description, inner)),
		badge,
		lipgloss.NewStyle().Foreground(styles.AgentStateColor(a.Status)).Render(bar)+" "+m.theme.CardTitle.Render(tasks),
	))
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	return support.Reason(err)
}
