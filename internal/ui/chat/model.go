// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/supportdesk-tui/internal/logging"
	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/session"
	"github.com/jeranaias/supportdesk-tui/internal/support"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State is the request lifecycle state of the chat view.
type State int

const (
	StateIdle    State = iota // Ready for a new request
	StateSending              // One request in flight, input disabled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// DefaultRequestTimeout bounds one agent call when no timeout is configured.
const DefaultRequestTimeout = 60 * time.Second

// NotReadyNotice is appended when a send is attempted before the session exists.
const NotReadyNotice = "The chat session is still starting. Please try again in a moment."

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Asker sends one message to an agent route. *support.Client implements it.
type Asker interface {
	Ask(ctx context.Context, route, message, sessionID string) (support.Answer, error)
}

// Options configures a chat view.
type Options struct {
	Theme          *styles.Theme
	Asker          Asker
	Router         *router.Router
	Session        *session.Manager
	Logger         *slog.Logger
	Greeting       string
	Company        string
	RequestTimeout time.Duration
	Markdown       bool
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// pendingRequest describes the request in flight.
type pendingRequest struct {
	seq     uint64
	target  router.AgentTarget
	route   string
	started time.Time
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state   State
	seq     uint64
	pending pendingRequest

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Conversation
	log     *model.Log
	session *session.Manager
	sync    Synchronizer

	// Collaborators
	asker          Asker
	router         *router.Router
	logger         *slog.Logger
	requestTimeout time.Duration

	// Display
	company  string
	markdown bool
	renderer *markdownRenderer

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Key bindings
	keys KeyMap

	// Log entry of the last failure, cleared by the next accepted request
	lastFailure *model.Message
}

// New creates a chat view. The greeting, when set, is the first log entry.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Router == nil {
		opts.Router = router.New(nil)
	}
	if opts.Session == nil {
		opts.Session = session.NewManager(session.DefaultConfig())
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.Prompt = "> "
	input.PromptStyle = opts.Theme.InputPrompt
	input.CharLimit = 4000
	input.Focus()

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	log := model.NewLog()
	if opts.Greeting != "" {
		log.AppendAssistant(opts.Greeting)
	}

	return Model{
		state:          StateIdle,
		theme:          opts.Theme,
		log:            log,
		session:        opts.Session,
		asker:          opts.Asker,
		router:         opts.Router,
		logger:         opts.Logger,
		requestTimeout: opts.RequestTimeout,
		company:        opts.Company,
		markdown:       opts.Markdown,
		renderer:       newMarkdownRenderer(opts.Theme.IsDark),
		viewport:       vp,
		input:          input,
		spinner:        styles.NewSpinner(styles.LineSpinner),
		keys:           DefaultKeyMap(),
	}
}

// Init starts the session identity and the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.session.StartCmd(), textinput.Blink)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles a message and re-anchors the transcript when the log changed.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	m, cmd := m.update(msg)
	if m.sync.Observe(m.log) {
		m.refreshContent()
		cmd = tea.Batch(cmd, m.sync.ScrollCmd())
	}
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case session.StartedMsg:
		m.logger.Info("chat session started", "session_id", msg.Session.ID)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ReplyMsg:
		return m.handleReply(msg)

	case FailureMsg:
		return m.handleFailure(msg)

	case ScrollToLatestMsg:
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		// Dropping ticks while idle stops the animation
		if m.state != StateSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if target, ok := m.keys.targetFor(msg); ok {
		return m.Send(target)
	}

	switch {
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.state == StateSending {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// SIZE AND SETTINGS
// =============================================================================

// SetSize resizes the view. The transcript keeps its anchor at the bottom.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - headerHeight - inputHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.Width = width - 6

	m.refreshContent()
	m.viewport.GotoBottom()
}

// SetRouter swaps the route table, e.g. after a config reload.
// A request already in flight keeps the route it was sent to.
func (m *Model) SetRouter(r *router.Router) {
	if r != nil {
		m.router = r
	}
}

// SetRequestTimeout changes the timeout of future requests.
func (m *Model) SetRequestTimeout(d time.Duration) {
	if d > 0 {
		m.requestTimeout = d
	}
}

// SetCompany updates the name in the chat header.
func (m *Model) SetCompany(name string) {
	m.company = name
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the lifecycle state.
func (m Model) State() State { return m.state }

// Busy reports whether a request is in flight.
func (m Model) Busy() bool { return m.state == StateSending }

// Log returns the message log.
func (m Model) Log() *model.Log { return m.log }

// SessionID returns the session ID and whether it exists yet.
func (m Model) SessionID() (string, bool) { return m.session.ID() }

// Input returns the current input text.
func (m Model) Input() string { return m.input.Value() }

// SetInput replaces the input text.
func (m *Model) SetInput(s string) { m.input.SetValue(s) }

// Keys returns the key bindings, with send actions disabled while sending.
func (m Model) Keys() KeyMap { return m.keys }

// LastError returns the log entry text of the most recent failed request.
func (m Model) LastError() string {
	if m.lastFailure == nil {
		return ""
	}
	return m.lastFailure.Content
}

// LastFailure returns the log entry of the most recent failed request, or nil.
func (m Model) LastFailure() *model.Message { return m.lastFailure }

// PendingTarget returns the target of the request in flight.
func (m Model) PendingTarget() (router.AgentTarget, bool) {
	return m.pending.target, m.state == StateSending
}

// =============================================================================
// MARKDOWN
// =============================================================================

// markdownRenderer caches a glamour renderer per wrap width.
type markdownRenderer struct {
	style string
	width int
	term  *glamour.TermRenderer
}

func newMarkdownRenderer(dark bool) *markdownRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	return &markdownRenderer{style: style}
}

// render returns the rendered markdown, or false when glamour fails.
func (r *markdownRenderer) render(content string, width int) (string, bool) {
	if r.term == nil || r.width != width {
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", false
		}
		r.term, r.width = term, width
	}
	out, err := r.term.Render(content)
	if err != nil {
		return "", false
	}
	return out, true
}
