// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/supportdesk-tui/internal/config"
	"github.com/jeranaias/supportdesk-tui/internal/logging"
	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/session"
	"github.com/jeranaias/supportdesk-tui/internal/support"
	"github.com/jeranaias/supportdesk-tui/internal/ui/agents"
	"github.com/jeranaias/supportdesk-tui/internal/ui/chat"
	"github.com/jeranaias/supportdesk-tui/internal/ui/components"
	"github.com/jeranaias/supportdesk-tui/internal/ui/dashboard"
	"github.com/jeranaias/supportdesk-tui/internal/ui/settings"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
	"github.com/jeranaias/supportdesk-tui/internal/ui/tickets"
)

// statusPreviewLen caps the failure text shown in the status bar. The full
// entry stays in the chat log.
const statusPreviewLen = 60

// =============================================================================
// APPLICATION KEYS
// =============================================================================

// appKeyMap holds the bindings the root model handles before the views.
type appKeyMap struct {
	Quit    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	// ForceNext and ForcePrev switch views even while a view captures text
	ForceNext key.Binding
	ForcePrev key.Binding
}

func defaultAppKeyMap() appKeyMap {
	return appKeyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit")),
		NextTab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "previous view")),
		ForceNext: key.NewBinding(key.WithKeys("ctrl+right"), key.WithHelp("C-right", "next view")),
		ForcePrev: key.NewBinding(key.WithKeys("ctrl+left"), key.WithHelp("C-left", "previous view")),
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// ConfigReloadedMsg carries the outcome of re-reading the config file.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// waitForReload blocks on the watcher and delivers the next reload.
// It returns nil once the watcher is closed.
func waitForReload(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		reload, ok := w.Next()
		if !ok {
			return nil
		}
		return ConfigReloadedMsg{Config: reload.Config, Err: reload.Err}
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root Bubble Tea model. It owns the header, the status bar,
// the toast stack and one model per view.
type Model struct {
	cfg    *config.Config
	theme  *styles.Theme
	logger *slog.Logger
	keys   appKeyMap

	width  int
	height int
	active components.Tab

	header    *components.Header
	statusBar *components.StatusBar
	toasts    components.Toasts

	chat      chat.Model
	dashboard dashboard.Model
	tickets   tickets.Model
	agents    agents.Model
	settings  settings.Model

	watcher  *config.Watcher
	override func(*config.Config)

	// stale remembers the refresh failure already announced per view
	stale map[components.Tab]string
}

// Options wires the root model.
type Options struct {
	Config  *config.Config
	Client  *support.Client
	Logger  *slog.Logger
	Watcher *config.Watcher
	Session *session.Manager

	// Override is applied to every reloaded config before it takes effect
	Override func(*config.Config)
}

// NewModel creates the root model with the chat view active.
func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	client := opts.Client
	if client == nil {
		client = support.NewClientWithConfig(cfg.API.ClientConfig())
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	theme := styles.NewTheme(cfg.UI.Theme)

	header := components.NewHeader(theme)
	header.SetCompany(cfg.Chat.CompanyName)
	statusBar := components.NewStatusBar(theme)
	statusBar.Endpoint = client.BaseURL()

	m := &Model{
		cfg:       cfg,
		theme:     theme,
		logger:    logger,
		keys:      defaultAppKeyMap(),
		width:     80,
		height:    24,
		active:    components.TabChat,
		header:    header,
		statusBar: statusBar,
		toasts:    components.NewToasts(nil),
		chat: chat.New(chat.Options{
			Theme:          theme,
			Asker:          client,
			Router:         router.New(cfg.API.Routes.Targets()),
			Session:        opts.Session,
			Logger:         logger.With("view", "chat"),
			Greeting:       cfg.Chat.Greeting,
			Company:        cfg.Chat.CompanyName,
			RequestTimeout: cfg.Chat.RequestTimeout(),
			Markdown:       cfg.UI.Markdown,
		}),
		dashboard: dashboard.New(theme, client, cfg.Polling.Dashboard(), logger.With("view", "dashboard")),
		tickets:   tickets.New(theme, client, cfg.Polling.Tickets(), logger.With("view", "tickets")),
		agents:    agents.New(theme, client, cfg.Polling.Agents(), logger.With("view", "agents")),
		settings:  settings.New(theme, client, logger.With("view", "settings")),
		watcher:   opts.Watcher,
		override:  opts.Override,
		stale:     make(map[components.Tab]string),
	}
	m.applyPolling(cfg)
	m.resize()
	m.refreshChrome()
	return m
}

// Active returns the visible view.
func (m *Model) Active() components.Tab { return m.active }

// Chat returns the chat view model.
func (m *Model) Chat() chat.Model { return m.chat }

// Toasts returns the visible notifications.
func (m *Model) Toasts() []components.Toast { return m.toasts.Items() }

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the chat session and the config watcher.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.chat.Init(), waitForReload(m.watcher))
}

// Update routes messages to the views and keeps the chrome in sync.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.resize()
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKeyPress(msg)
		m.refreshChrome()
		return m, cmd

	case tea.MouseMsg:
		cmd := m.updateActive(msg)
		return m, cmd

	case components.ToastTickMsg:
		m.toasts = m.toasts.Update(msg)
		return m, nil

	case ConfigReloadedMsg:
		cmds = append(cmds, m.applyReload(msg), waitForReload(m.watcher))
		return m, tea.Batch(cmds...)

	case settings.SavedMsg:
		company := msg.Settings.General.CompanyName
		if company != "" {
			m.header.SetCompany(company)
			m.chat.SetCompany(company)
		}
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Add(components.ToastKindSuccess, "Settings saved")
		return m, cmd
	}

	// Everything else goes to every view. Poll results, spinner ticks and
	// request completions carry an owner and other views ignore them.
	cmds = append(cmds, m.broadcast(msg))
	cmds = append(cmds, m.announceStale())
	m.refreshChrome()
	return m, tea.Batch(cmds...)
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.ForceNext):
		return m.switchTo(m.active.Next())
	case key.Matches(msg, m.keys.ForcePrev):
		return m.switchTo(m.active.Prev())
	}

	if tab, ok := tabForKey(msg.String(), m.capturing()); ok {
		return m.switchTo(tab)
	}

	// The settings form uses tab to move between fields.
	if m.active != components.TabSettings {
		switch {
		case key.Matches(msg, m.keys.NextTab):
			return m.switchTo(m.active.Next())
		case key.Matches(msg, m.keys.PrevTab):
			return m.switchTo(m.active.Prev())
		}
	}

	return m.updateActive(msg)
}

// capturing reports whether the active view is taking text input, in which
// case plain digits belong to it. The chat input always has focus.
func (m *Model) capturing() bool {
	switch m.active {
	case components.TabChat:
		return true
	case components.TabTickets:
		return m.tickets.Capturing()
	case components.TabSettings:
		return m.settings.Capturing()
	}
	return false
}

// tabForKey maps alt+1..alt+5 to a view, and plain digits too when no view
// is capturing text.
func tabForKey(s string, capturing bool) (components.Tab, bool) {
	for _, tab := range components.AllTabs {
		if s == "alt+"+tab.Key() || (!capturing && s == tab.Key()) {
			return tab, true
		}
	}
	return 0, false
}

// switchTo unmounts the current data view and mounts the next one. The chat
// view is never unmounted; its session and transcript persist.
func (m *Model) switchTo(tab components.Tab) tea.Cmd {
	if tab == m.active {
		return nil
	}

	switch m.active {
	case components.TabDashboard:
		m.dashboard = m.dashboard.Unmount()
	case components.TabTickets:
		m.tickets = m.tickets.Unmount()
	case components.TabAgents:
		m.agents = m.agents.Unmount()
	case components.TabSettings:
		m.settings = m.settings.Unmount()
	}
	delete(m.stale, m.active)

	m.active = tab
	m.logger.Debug("view switched", "view", tab.String())

	var cmd tea.Cmd
	switch tab {
	case components.TabDashboard:
		m.dashboard, cmd = m.dashboard.Mount()
	case components.TabTickets:
		m.tickets, cmd = m.tickets.Mount()
	case components.TabAgents:
		m.agents, cmd = m.agents.Mount()
	case components.TabSettings:
		m.settings, cmd = m.settings.Mount()
	}
	return cmd
}

// updateActive forwards msg to the visible view only.
func (m *Model) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.active {
	case components.TabChat:
		m.chat, cmd = m.chat.Update(msg)
	case components.TabDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case components.TabTickets:
		m.tickets, cmd = m.tickets.Update(msg)
	case components.TabAgents:
		m.agents, cmd = m.agents.Update(msg)
	case components.TabSettings:
		m.settings, cmd = m.settings.Update(msg)
	}
	return cmd
}

// broadcast forwards msg to every view.
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 5)
	m.chat, cmds[0] = m.chat.Update(msg)
	m.dashboard, cmds[1] = m.dashboard.Update(msg)
	m.tickets, cmds[2] = m.tickets.Update(msg)
	m.agents, cmds[3] = m.agents.Update(msg)
	m.settings, cmds[4] = m.settings.Update(msg)
	return tea.Batch(cmds...)
}

// announceStale raises a warning toast the first time the visible data view
// keeps an old snapshot after a failed refresh.
func (m *Model) announceStale() tea.Cmd {
	staleErr := m.activeStaleErr()
	if staleErr == nil {
		delete(m.stale, m.active)
		return nil
	}
	reason := support.Reason(staleErr)
	if m.stale[m.active] == reason {
		return nil
	}
	m.stale[m.active] = reason

	var cmd tea.Cmd
	m.toasts, cmd = m.toasts.Add(components.ToastKindWarning,
		fmt.Sprintf("%s refresh failed: %s", m.active, reason))
	return cmd
}

func (m *Model) activeStaleErr() error {
	switch m.active {
	case components.TabDashboard:
		return m.dashboard.Poller().StaleErr()
	case components.TabTickets:
		return m.tickets.Poller().StaleErr()
	case components.TabAgents:
		return m.agents.Poller().StaleErr()
	}
	return nil
}

// applyReload swaps in routes, timeouts and poll intervals from a new config.
func (m *Model) applyReload(msg ConfigReloadedMsg) tea.Cmd {
	var cmd tea.Cmd
	if msg.Err != nil || msg.Config == nil {
		m.logger.Warn("config reload failed", "error", msg.Err)
		m.toasts, cmd = m.toasts.Add(components.ToastKindError, "Config reload failed: "+errorText(msg.Err))
		return cmd
	}

	cfg := msg.Config
	if m.override != nil {
		m.override(cfg)
	}
	m.cfg = cfg
	m.chat.SetRouter(router.New(cfg.API.Routes.Targets()))
	m.chat.SetRequestTimeout(cfg.Chat.RequestTimeout())
	m.applyPolling(cfg)

	m.logger.Info("config reloaded",
		"dashboard_interval", cfg.Polling.Dashboard(),
		"tickets_interval", cfg.Polling.Tickets(),
		"agents_interval", cfg.Polling.Agents(),
	)
	m.toasts, cmd = m.toasts.Add(components.ToastKindStatus, "Configuration reloaded")
	return cmd
}

// applyPolling sets refresh intervals and bounds each refresh by the API
// timeout.
func (m *Model) applyPolling(cfg *config.Config) {
	timeout := cfg.API.Timeout()
	m.dashboard = m.dashboard.SetInterval(cfg.Polling.Dashboard()).SetTimeout(timeout)
	m.tickets = m.tickets.SetInterval(cfg.Polling.Tickets()).SetTimeout(timeout)
	m.agents = m.agents.SetInterval(cfg.Polling.Agents()).SetTimeout(timeout)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// =============================================================================
// LAYOUT
// =============================================================================

// resize hands each view the space left between header and status bar.
func (m *Model) resize() {
	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)

	bodyHeight := m.height - lipgloss.Height(m.header.View()) - 1
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.chat.SetSize(m.width, bodyHeight)
	m.dashboard.SetSize(m.width, bodyHeight)
	m.tickets.SetSize(m.width, bodyHeight)
	m.agents.SetSize(m.width, bodyHeight)
	m.settings.SetSize(m.width, bodyHeight)
}

// refreshChrome updates the header and status bar from the view state.
func (m *Model) refreshChrome() {
	m.header.SetActive(m.active)
	if id, ok := m.chat.SessionID(); ok {
		m.header.SetSession(id)
	}

	switch m.active {
	case components.TabChat:
		m.statusBar.SetBindings(m.chat.Keys().ShortHelp()...)
		switch {
		case m.chat.Busy():
			target, _ := m.chat.PendingTarget()
			m.statusBar.SetStatus(components.StatusSending, target.Label())
		case m.chat.LastFailure() != nil:
			m.statusBar.SetStatus(components.StatusError, m.chat.LastFailure().Preview(statusPreviewLen))
		default:
			m.statusBar.SetStatus(components.StatusReady, "")
		}
	case components.TabDashboard:
		m.statusBar.SetBindings(m.keys.NextTab, m.keys.Quit)
		m.pollStatus(m.dashboard.Poller().Loading(), m.dashboard.Poller().Err(), m.dashboard.Poller().StaleErr())
	case components.TabTickets:
		k := m.tickets.Keys()
		m.statusBar.SetBindings(k.Search, k.Up, k.Down, m.keys.Quit)
		m.pollStatus(m.tickets.Poller().Loading(), m.tickets.Poller().Err(), m.tickets.Poller().StaleErr())
	case components.TabAgents:
		m.statusBar.SetBindings(m.keys.NextTab, m.keys.Quit)
		m.pollStatus(m.agents.Poller().Loading(), m.agents.Poller().Err(), m.agents.Poller().StaleErr())
	case components.TabSettings:
		k := m.settings.Keys()
		m.statusBar.SetBindings(k.Next, k.Toggle, k.Save, k.Reset, m.keys.ForceNext)
		switch {
		case m.settings.Loading():
			m.statusBar.SetStatus(components.StatusLoading, "")
		case m.settings.Err() != nil:
			m.statusBar.SetStatus(components.StatusError, support.Reason(m.settings.Err()))
		default:
			m.statusBar.SetStatus(components.StatusReady, "")
		}
	}
}

func (m *Model) pollStatus(loading bool, err, staleErr error) {
	switch {
	case loading:
		m.statusBar.SetStatus(components.StatusLoading, "")
	case staleErr != nil:
		m.statusBar.SetStatus(components.StatusStale, support.Reason(staleErr))
	case err != nil:
		m.statusBar.SetStatus(components.StatusError, support.Reason(err))
	default:
		m.statusBar.SetStatus(components.StatusReady, "")
	}
}

// View renders the header, the active view with toasts over its top lines,
// and the status bar.
func (m *Model) View() string {
	var body string
	switch m.active {
	case components.TabChat:
		body = m.chat.View()
	case components.TabDashboard:
		body = m.dashboard.View()
	case components.TabTickets:
		body = m.tickets.View()
	case components.TabAgents:
		body = m.agents.View()
	case components.TabSettings:
		body = m.settings.View()
	}

	if m.toasts.Len() > 0 {
		body = overlayTop(body, components.RenderToastStack(m.toasts.Items(), m.width/2), m.width)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.statusBar.View())
}

// overlayTop replaces the first lines of body with the right-aligned overlay.
func overlayTop(body, overlay string, width int) string {
	lines := strings.Split(body, "\n")
	for i, line := range strings.Split(overlay, "\n") {
		placed := lipgloss.PlaceHorizontal(width, lipgloss.Right, line)
		if i < len(lines) {
			lines[i] = placed
		} else {
			lines = append(lines, placed)
		}
	}
	return strings.Join(lines, "\n")
}
