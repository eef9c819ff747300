// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/supportdesk-tui/internal/cli"
	"github.com/jeranaias/supportdesk-tui/internal/config"
	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/session"
	"github.com/jeranaias/supportdesk-tui/internal/support"
	"github.com/jeranaias/supportdesk-tui/internal/ui/chat"
	"github.com/jeranaias/supportdesk-tui/internal/ui/components"
	"github.com/jeranaias/supportdesk-tui/internal/ui/settings"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()

	cfg := config.Default()
	cfg.UI.Theme = "dark"
	m := NewModel(Options{Config: cfg})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func altRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Alt: true}
}

// =============================================================================
// VIEW SWITCHING
// =============================================================================

func TestNewModel_StartsOnChat(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, components.TabChat, m.Active())
	view := m.View()
	for _, tab := range components.AllTabs {
		assert.Contains(t, view, tab.String())
	}
	assert.Contains(t, view, "Support Chat")
	require.Equal(t, 1, m.Chat().Log().Len())
	assert.Equal(t, config.DefaultGreeting, m.Chat().Log().At(0).Content)
	assert.Equal(t, config.Default().API.Timeout(), m.tickets.Poller().Timeout())
}

func TestTab_CyclesViewsAndMounts(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, components.TabDashboard, m.Active())
	assert.NotNil(t, cmd, "mounting the dashboard should start a fetch")

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, components.TabChat, m.Active())

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, components.TabSettings, m.Active(), "shift+tab wraps around")
}

func TestDigits_TypeIntoChat(t *testing.T) {
	m := newTestModel(t)

	m.Update(runes("3"))
	assert.Equal(t, components.TabChat, m.Active())
	assert.Equal(t, "3", m.Chat().Input())
}

func TestAltDigits_AlwaysSwitch(t *testing.T) {
	m := newTestModel(t)

	m.Update(altRunes("4"))
	assert.Equal(t, components.TabAgents, m.Active())

	// Plain digits switch from views that do not capture text.
	m.Update(runes("2"))
	assert.Equal(t, components.TabDashboard, m.Active())
}

func TestSettings_KeepsTabForFields(t *testing.T) {
	m := newTestModel(t)

	m.Update(altRunes("5"))
	require.Equal(t, components.TabSettings, m.Active())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, components.TabSettings, m.Active())

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlRight})
	assert.Equal(t, components.TabChat, m.Active(), "ctrl+right leaves settings")
}

func TestChat_PersistsAcrossSwitches(t *testing.T) {
	m := newTestModel(t)

	m.Update(runes("hello"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlLeft})

	assert.Equal(t, components.TabChat, m.Active())
	assert.Equal(t, "hello", m.Chat().Input())
}

func TestCtrlC_Quits(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func TestSavedSettings_ToastAndCompany(t *testing.T) {
	m := newTestModel(t)

	s := model.DefaultSettings()
	s.General.CompanyName = "Acme Ltda"
	_, cmd := m.Update(settings.SavedMsg{Settings: s})

	assert.NotNil(t, cmd, "toast expiry tick")
	require.Len(t, m.Toasts(), 1)
	assert.Equal(t, components.ToastKindSuccess, m.Toasts()[0].Kind)
	assert.Contains(t, m.View(), "Acme Ltda")
}

func TestConfigReload_AppliesIntervalsAndOverrides(t *testing.T) {
	m := newTestModel(t)
	m.override = applyFlagOverrides(cli.Args{APIURL: "http://flag:9000"})

	next := config.Default()
	next.Polling.DashboardSecs = 42
	next.API.TimeoutSecs = 7
	next.API.BaseURL = "http://file:8000"
	m.Update(ConfigReloadedMsg{Config: next})

	assert.Equal(t, 42*time.Second, m.dashboard.Poller().Interval())
	assert.Equal(t, 7*time.Second, m.dashboard.Poller().Timeout(), "refreshes are bounded by the API timeout")
	assert.Equal(t, 7*time.Second, m.agents.Poller().Timeout())
	assert.Equal(t, "http://flag:9000", m.cfg.API.BaseURL, "flags win over the reloaded file")
	require.Len(t, m.Toasts(), 1)
	assert.Equal(t, components.ToastKindStatus, m.Toasts()[0].Kind)
}

func TestConfigReload_ErrorKeepsConfig(t *testing.T) {
	m := newTestModel(t)
	before := m.cfg

	m.Update(ConfigReloadedMsg{Err: errors.New("bad toml")})

	assert.Same(t, before, m.cfg)
	require.Len(t, m.Toasts(), 1)
	assert.Equal(t, components.ToastKindError, m.Toasts()[0].Kind)
	assert.Contains(t, m.Toasts()[0].Message, "bad toml")
}

func TestToastTick_DropsExpired(t *testing.T) {
	m := newTestModel(t)
	now := time.Now()
	m.toasts = components.NewToasts(func() time.Time { return now })
	m.Update(settings.SavedMsg{Settings: model.DefaultSettings()})
	require.Len(t, m.Toasts(), 1)

	now = now.Add(time.Minute)
	m.Update(components.ToastTickMsg{Time: now})
	assert.Empty(t, m.Toasts())
}

func TestChatFailure_StatusBarShowsPreview(t *testing.T) {
	detail := strings.Repeat("the order service rejected the lookup ", 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"` + detail + `"}`))
	}))
	t.Cleanup(srv.Close)

	mgr := session.NewManager(session.DefaultConfig())
	mgr.Start()
	m := NewModel(Options{
		Config:  config.Default(),
		Client:  support.NewClientWithConfig(&support.ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}),
		Session: mgr,
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m.chat.SetInput("where is order 1234?")
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Send(router.TargetDefault)
	require.NotNil(t, cmd)

	var failure tea.Msg
	pending := []tea.Cmd{cmd}
	for len(pending) > 0 && failure == nil {
		c := pending[0]
		pending = pending[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			pending = append(pending, msg...)
		case chat.FailureMsg:
			failure = msg
		}
	}
	require.NotNil(t, failure)
	m.Update(failure)

	full := m.Chat().LastError()
	require.Contains(t, full, strings.TrimSpace(detail), "the log keeps the whole reason")
	assert.Equal(t, components.StatusError, m.statusBar.Status)
	assert.LessOrEqual(t, len([]rune(m.statusBar.Message)), statusPreviewLen)
	assert.True(t, strings.HasSuffix(m.statusBar.Message, "..."))
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

func TestLoadConfig_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desk.toml")
	body := "[api]\nbase_url = \"http://file:8000\"\n\n[server]\naddr = \"127.0.0.1:9100\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	cfg, watched, err := loadConfig(cli.Args{ConfigPath: path, APIURL: "http://flag:9000", NoMouse: true})
	require.NoError(t, err)

	assert.Equal(t, path, watched)
	assert.Equal(t, "http://flag:9000", cfg.API.BaseURL)
	assert.Equal(t, "127.0.0.1:9100", cfg.Server.Addr)
	assert.False(t, cfg.UI.Mouse)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := loadConfig(cli.Args{ConfigPath: filepath.Join(t.TempDir(), "nope.toml")})
	assert.Error(t, err)
}

func TestRun_VersionAndHelp(t *testing.T) {
	assert.NoError(t, run([]string{"version"}))
	assert.NoError(t, run([]string{"--help"}))

	err := run([]string{"bogus"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitUsageError, cli.ExitCodeFor(err))
	assert.True(t, strings.Contains(err.Error(), "bogus"))
}

func TestRun_InitThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.toml")

	require.NoError(t, run([]string{"init", "--config", path, "--addr", "127.0.0.1:9200"}))

	cfg, watched, err := loadConfig(cli.Args{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, path, watched)
	assert.Equal(t, "127.0.0.1:9200", cfg.Server.Addr)

	err = run([]string{"init", "--config", path})
	require.Error(t, err, "init must not overwrite without --force")
	assert.Contains(t, err.Error(), "already exists")
}
