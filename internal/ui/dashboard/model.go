// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard provides the metrics overview of the supportdesk TUI.
package dashboard

import (
	"context"
	"log/slog"
	"strconv"
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
)

// DefaultInterval is the dashboard refresh period.
const DefaultInterval = 30 * time.Second

// Fetcher loads the dashboard snapshot. *support.Client implements it.
type Fetcher interface {
	Dashboard(ctx context.Context) (model.DashboardMetrics, error)
}

// Model is the Bubble Tea model for the dashboard view.
type Model struct {
	theme   *styles.Theme
	poller  poll.Poller[model.DashboardMetrics]
	spinner spinner.Model

	width  int
	height int
}

// New creates an unmounted dashboard. Fetch failures are logged to logger.
func New(theme *styles.Theme, fetcher Fetcher, interval time.Duration, logger *slog.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	fetch := func(ctx context.Context) (model.DashboardMetrics, error) {
		metrics, err := fetcher.Dashboard(ctx)
		if err != nil {
			logger.Warn("dashboard refresh failed", "error", err, "status", support.StatusCode(err))
		}
		return metrics, err
	}
	return Model{
		theme:   theme,
		poller:  poll.New("dashboard", interval, fetch),
		spinner: styles.NewSpinner(styles.DotsSpinner),
	}
}

// Mount starts polling: loading state and an immediate fetch.
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
func (m Model) Poller() poll.Poller[model.DashboardMetrics] { return m.poller }

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

// =============================================================================
// VIEW
// =============================================================================

// View renders the dashboard.
func (m Model) View() string {
	width := max(m.width, 40)

	if m.poller.Loading() {
		return components.RenderLoading(m.theme, m.spinner.View(), "dashboard")
	}
	metrics, ok := m.poller.Snapshot()
	if !ok {
		if err := m.poller.Err(); err != nil {
			return components.RenderFetchError(m.theme, "dashboard", support.Reason(err), width)
		}
		return ""
	}

	columns := styles.LayoutFor(width).Columns()
	cardWidth := components.CardWidth(width, columns)

	cards := []string{
		m.metricCard("Active tickets", strconv.Itoa(metrics.ActiveTickets), metrics.ActiveTicketsTrend, false, cardWidth),
		m.metricCard("Resolved today", strconv.Itoa(metrics.ResolvedToday), metrics.ResolvedTodayTrend, false, cardWidth),
		m.metricCard("Avg response time", metrics.AvgResponseTime, metrics.AvgResponseTimeTrend, true, cardWidth),
		m.metricCard("Satisfaction", metrics.Satisfaction, metrics.SatisfactionTrend, false, cardWidth),
	}

	sections := []string{components.Grid(cards, columns)}

	if len(metrics.Agents) > 0 {
		agentCards := make([]string, 0, len(metrics.Agents))
		for _, a := range metrics.Agents {
			agentCards = append(agentCards, m.agentCard(a, cardWidth))
		}
		sections = append(sections,
			m.theme.SectionTop.Render("Agents"),
			components.Grid(agentCards, columns),
		)
	}

	sections = append(sections, components.RenderFreshness(m.theme, m.poller.LastUpdated(), reasonOf(m.poller.StaleErr()), width))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) metricCard(title, value, trend string, lowerIsBetter bool, width int) string {
	trendLine := m.theme.CardMuted.Render("-")
	if trend != "" {
		trendLine = lipgloss.NewStyle().Foreground(styles.TrendColor(trend, lowerIsBetter)).
			Render(trend + " vs yesterday")
	}
	return m.theme.Card.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.CardTitle.Render(title),
		m.theme.CardValue.Render(value),
		trendLine,
	))
}

func (m Model) agentCard(a model.AgentStatus, width int) string {
	badge := styles.RenderBadge(styles.AgentStateIndicator(a.Status)+" "+a.Status.DisplayName(), styles.AgentStateColor(a.Status))
	return m.theme.Card.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.CardValue.Render(a.Name),
		badge,
		m.theme.CardMuted.Render(strconv.Itoa(a.TasksCompleted)+" tasks"),
	))
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	return support.Reason(err)
}
