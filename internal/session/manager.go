// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the per-view chat session identity.
package session

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// =============================================================================
// SESSION
// =============================================================================

// Session identifies one chat view instance to the support service.
type Session struct {
	ID        string
	CreatedAt time.Time
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the session identity of a single chat view.
// The identity is generated on the first Start and never changes afterwards;
// a new view needs a new Manager.
type Manager struct {
	mu sync.Mutex

	session Session
	started bool

	prefix string
	now    func() time.Time
}

// Config holds configuration for the session manager.
type Config struct {
	// Prefix is prepended to generated IDs (default: "sess")
	Prefix string

	// Clock overrides time.Now, mainly for tests
	Clock func() time.Time
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Prefix: "sess",
		Clock:  time.Now,
	}
}

// NewManager creates a manager without an identity. Call Start to generate it.
func NewManager(cfg Config) *Manager {
	if cfg.Prefix == "" {
		cfg.Prefix = "sess"
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Manager{
		prefix: cfg.Prefix,
		now:    cfg.Clock,
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// Start generates the session on first call and returns it.
// Later calls return the same session unchanged.
func (m *Manager) Start() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		created := m.now()
		m.session = Session{
			ID:        generateSessionID(m.prefix, created),
			CreatedAt: created,
		}
		m.started = true
	}
	return m.session
}

// Ready reports whether the session identity exists.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// ID returns the session ID and whether it has been generated.
func (m *Manager) ID() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.ID, m.started
}

// Session returns the session and whether it has been generated.
func (m *Manager) Session() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.started
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// StartedMsg reports that the session identity is available.
type StartedMsg struct {
	Session Session
}

// StartCmd returns a command that starts the session and reports it.
func (m *Manager) StartCmd() tea.Cmd {
	return func() tea.Msg {
		return StartedMsg{Session: m.Start()}
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateSessionID combines a nanosecond timestamp with a random suffix.
func generateSessionID(prefix string, t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return prefix + "_" + formatTimestamp(t) + "_" + suffix
}

// formatTimestamp formats a time for use in IDs.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("20060102T150405.000000000")
}
