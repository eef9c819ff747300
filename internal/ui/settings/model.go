// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/supportdesk-tui/internal/logging"
	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/support"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
)

// DefaultTimeout bounds the load and save calls.
const DefaultTimeout = 15 * time.Second

// Store reads and writes the settings snapshot. *support.Client implements it.
type Store interface {
	Settings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) (model.Settings, error)
}

// =============================================================================
// FIELDS
// =============================================================================

// field identifies one focusable row of the form.
type field int

const (
	fieldCompany field = iota
	fieldEmail
	fieldAutoAttendance
	fieldTechnicalDiagnostics
	fieldSmartEscalation
	fieldSentimentAnalysis
	fieldNotifyNewTickets
	fieldNotifyEscalated
	fieldSave
	fieldCount
)

func (f field) label() string {
	switch f {
	case fieldCompany:
		return "Company name"
	case fieldEmail:
		return "Contact email"
	case fieldAutoAttendance:
		return "Auto attendance"
	case fieldTechnicalDiagnostics:
		return "Technical diagnostics"
	case fieldSmartEscalation:
		return "Smart escalation"
	case fieldSentimentAnalysis:
		return "Sentiment analysis"
	case fieldNotifyNewTickets:
		return "New tickets"
	case fieldNotifyEscalated:
		return "Escalated tickets"
	case fieldSave:
		return "Save"
	default:
		return ""
	}
}

func (f field) isText() bool   { return f == fieldCompany || f == fieldEmail }
func (f field) isToggle() bool { return f >= fieldAutoAttendance && f <= fieldNotifyEscalated }

// =============================================================================
// MESSAGES
// =============================================================================

type loadedMsg struct {
	generation uint64
	settings   model.Settings
	err        error
}

type savedMsg struct {
	generation uint64
	settings   model.Settings
	err        error
}

// SavedMsg tells the root model that new settings were stored.
type SavedMsg struct {
	Settings model.Settings
}

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap defines the settings form bindings.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Save   key.Binding
	Reset  key.Binding
}

// DefaultKeyMap returns the default settings form bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-tab", "previous field")),
		Toggle: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save")),
		Reset:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("C-r", "discard changes")),
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the settings form.
type Model struct {
	theme   *styles.Theme
	store   Store
	logger  *slog.Logger
	timeout time.Duration
	keys    KeyMap
	spinner spinner.Model

	// generation invalidates loads and saves of earlier mounts
	generation uint64
	mounted    bool

	loading bool
	loadErr error
	saving  bool
	saveErr error
	savedAt time.Time

	// loaded is the last snapshot from the service; form edits are kept
	// in the inputs and flags until saved
	loaded  model.Settings
	company textinput.Model
	email   textinput.Model
	flags   map[field]bool
	focus   field

	width  int
	height int
}

// New creates an unmounted settings form.
func New(theme *styles.Theme, store Store, logger *slog.Logger) Model {
	if logger == nil {
		logger = logging.Discard()
	}

	company := textinput.New()
	company.CharLimit = 80
	company.Prompt = ""
	email := textinput.New()
	email.CharLimit = 120
	email.Prompt = ""

	return Model{
		theme:   theme,
		store:   store,
		logger:  logger,
		timeout: DefaultTimeout,
		keys:    DefaultKeyMap(),
		spinner: styles.NewSpinner(styles.DotsSpinner),
		company: company,
		email:   email,
		flags:   make(map[field]bool),
	}
}

// Mount loads the current settings.
func (m Model) Mount() (Model, tea.Cmd) {
	m.generation++
	m.mounted = true
	m.loading = true
	m.loadErr = nil
	m.saveErr = nil
	m.savedAt = time.Time{}
	m.focus = fieldCompany
	return m, tea.Batch(m.loadCmd(), m.spinner.Tick)
}

// Unmount drops the form state. Pending loads and saves are ignored.
func (m Model) Unmount() Model {
	m.generation++
	m.mounted = false
	m.loading = false
	m.saving = false
	m.company.Blur()
	m.email.Blur()
	return m
}

// SetSize updates the available area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	inputWidth := max(min(width-26, 60), 10)
	m.company.Width = inputWidth
	m.email.Width = inputWidth
}

// Capturing reports whether a text field owns the keyboard.
func (m Model) Capturing() bool { return m.mounted && m.focus.isText() }

// Keys returns the form bindings.
func (m Model) Keys() KeyMap { return m.keys }

// Loading reports whether the initial load is outstanding.
func (m Model) Loading() bool { return m.loading }

// Saving reports whether a save is outstanding.
func (m Model) Saving() bool { return m.saving }

// Err returns the load or save error on screen, if any.
func (m Model) Err() error {
	if m.loadErr != nil {
		return m.loadErr
	}
	return m.saveErr
}

// Form returns the settings as currently edited.
func (m Model) Form() model.Settings {
	return model.Settings{
		General: model.GeneralSettings{
			CompanyName:  m.company.Value(),
			ContactEmail: m.email.Value(),
		},
		Agents: model.AgentFlags{
			AutoAttendance:       m.flags[fieldAutoAttendance],
			TechnicalDiagnostics: m.flags[fieldTechnicalDiagnostics],
			SmartEscalation:      m.flags[fieldSmartEscalation],
			SentimentAnalysis:    m.flags[fieldSentimentAnalysis],
		},
		Notifications: model.NotificationFlags{
			NewTickets:       m.flags[fieldNotifyNewTickets],
			EscalatedTickets: m.flags[fieldNotifyEscalated],
		},
	}
}

// Dirty reports whether the form differs from the last loaded snapshot.
func (m Model) Dirty() bool {
	return !m.loading && m.loadErr == nil && m.Form() != m.loaded
}

// fill copies s into the form.
func (m *Model) fill(s model.Settings) {
	m.loaded = s
	m.company.SetValue(s.General.CompanyName)
	m.email.SetValue(s.General.ContactEmail)

	flags := map[field]bool{
		fieldAutoAttendance:       s.Agents.AutoAttendance,
		fieldTechnicalDiagnostics: s.Agents.TechnicalDiagnostics,
		fieldSmartEscalation:      s.Agents.SmartEscalation,
		fieldSentimentAnalysis:    s.Agents.SentimentAnalysis,
		fieldNotifyNewTickets:     s.Notifications.NewTickets,
		fieldNotifyEscalated:      s.Notifications.EscalatedTickets,
	}
	m.flags = flags
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadCmd() tea.Cmd {
	store, timeout, gen := m.store, m.timeout, m.generation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := store.Settings(ctx)
		return loadedMsg{generation: gen, settings: s, err: err}
	}
}

func (m Model) saveCmd(s model.Settings) tea.Cmd {
	store, timeout, gen := m.store, m.timeout, m.generation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		saved, err := store.SaveSettings(ctx, s)
		return savedMsg{generation: gen, settings: saved, err: err}
	}
}

func savedCmd(s model.Settings) tea.Cmd {
	return func() tea.Msg { return SavedMsg{Settings: s} }
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles keys and load/save completions.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.generation != m.generation || !m.mounted {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			m.logger.Warn("settings load failed", "error", msg.err, "status", support.StatusCode(msg.err))
			return m, nil
		}
		m.fill(msg.settings)
		cmd := m.focusCmd()
		return m, cmd

	case savedMsg:
		if msg.generation != m.generation || !m.mounted {
			return m, nil
		}
		m.saving = false
		if msg.err != nil {
			m.saveErr = msg.err
			m.logger.Error("settings save failed", "error", msg.err, "status", support.StatusCode(msg.err))
			return m, nil
		}
		m.fill(msg.settings)
		m.savedAt = time.Now()
		m.logger.Info("settings saved", "company", msg.settings.General.CompanyName)
		return m, savedCmd(msg.settings)

	case spinner.TickMsg:
		if !m.loading && !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.mounted || m.loading || m.loadErr != nil {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		return m.Save()
	case key.Matches(msg, m.keys.Reset):
		m.fill(m.loaded)
		m.saveErr = nil
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.focus = (m.focus + 1) % fieldCount
		cmd := m.focusCmd()
		return m, cmd
	case key.Matches(msg, m.keys.Prev):
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		cmd := m.focusCmd()
		return m, cmd
	}

	if m.focus.isText() {
		return m.updateInputs(msg)
	}

	if key.Matches(msg, m.keys.Toggle) {
		switch {
		case m.focus.isToggle():
			m.flags[m.focus] = !m.flags[m.focus]
			m.savedAt = time.Time{}
		case m.focus == fieldSave:
			return m.Save()
		}
	}
	return m, nil
}

// focusCmd moves the text cursor to the focused field.
func (m *Model) focusCmd() tea.Cmd {
	m.company.Blur()
	m.email.Blur()
	switch m.focus {
	case fieldCompany:
		return m.company.Focus()
	case fieldEmail:
		return m.email.Focus()
	}
	return nil
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	var c1, c2 tea.Cmd
	m.company, c1 = m.company.Update(msg)
	m.email, c2 = m.email.Update(msg)
	return m, tea.Batch(c1, c2)
}

// Save validates the form and stores it. It is a no-op while a save is
// outstanding.
func (m Model) Save() (Model, tea.Cmd) {
	if m.saving || m.loading || !m.mounted {
		return m, nil
	}
	form := m.Form()
	if err := form.Validate(); err != nil {
		m.saveErr = err
		return m, nil
	}
	m.saving = true
	m.saveErr = nil
	return m, tea.Batch(m.saveCmd(form), m.spinner.Tick)
}
