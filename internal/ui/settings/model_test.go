// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
)

type fakeStore struct {
	current model.Settings
	loadErr error
	saveErr error
	saves   []model.Settings
}

func (f *fakeStore) Settings(context.Context) (model.Settings, error) {
	return f.current, f.loadErr
}

func (f *fakeStore) SaveSettings(_ context.Context, s model.Settings) (model.Settings, error) {
	if f.saveErr != nil {
		return model.Settings{}, f.saveErr
	}
	f.saves = append(f.saves, s)
	f.current = s
	return s, nil
}

// feed runs cmd and delivers load and save completions. The SavedMsg
// notification a successful save produces is returned; cursor blinks are
// never run.
func feed(m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	if cmd == nil {
		return m, nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			var more []tea.Msg
			m, more = feed(m, c)
			out = append(out, more...)
		}
	case loadedMsg:
		m, _ = m.Update(msg)
	case savedMsg:
		var next tea.Cmd
		m, next = m.Update(msg)
		if next != nil {
			out = append(out, next())
		}
	case spinner.TickMsg:
	default:
		out = append(out, msg)
	}
	return m, out
}

func mountedForm(t *testing.T, store *fakeStore) Model {
	t.Helper()
	m := New(styles.NewTheme("dark"), store, nil)
	m.SetSize(100, 40)
	m, cmd := m.Mount()
	require.True(t, m.Loading())
	m, _ = feed(m, cmd)
	return m
}

func press(m Model, k tea.KeyMsg) Model {
	m, _ = m.Update(k)
	return m
}

func TestMount_LoadsIntoForm(t *testing.T) {
	store := &fakeStore{current: model.DefaultSettings()}
	m := mountedForm(t, store)

	require.False(t, m.Loading())
	assert.Equal(t, model.DefaultSettings(), m.Form())
	assert.False(t, m.Dirty())
	assert.True(t, m.Capturing(), "company field is focused first")

	view := m.View()
	for _, want := range []string{"General", "SupportAI", "contato@supportai.com", "Auto attendance", "[x] on", "Notifications", "[ Save ]"} {
		assert.Contains(t, view, want)
	}
}

func TestMount_LoadError(t *testing.T) {
	store := &fakeStore{loadErr: errors.New("boom")}
	m := mountedForm(t, store)

	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "Could not load settings")

	// Keys are ignored without a loaded form
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.False(t, m.Saving())
}

func TestToggleAndSave(t *testing.T) {
	store := &fakeStore{current: model.DefaultSettings()}
	m := mountedForm(t, store)

	// Move to "Smart escalation" and turn it off
	for i := 0; i < int(fieldSmartEscalation); i++ {
		m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	}
	assert.False(t, m.Capturing())
	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	require.True(t, m.Dirty())
	assert.Contains(t, m.View(), "unsaved changes")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.True(t, m.Saving())

	// A second save while the first is outstanding is ignored
	_, again := m.Save()
	assert.Nil(t, again)

	m, out := feed(m, cmd)
	require.Len(t, store.saves, 1)
	assert.False(t, store.saves[0].Agents.SmartEscalation)
	assert.True(t, store.saves[0].Agents.AutoAttendance)
	assert.False(t, m.Saving())
	assert.False(t, m.Dirty())
	assert.Contains(t, m.View(), "Saved at")

	var saved *SavedMsg
	for _, msg := range out {
		if s, ok := msg.(SavedMsg); ok {
			saved = &s
		}
	}
	require.NotNil(t, saved, "root is told about the new settings")
	assert.False(t, saved.Settings.Agents.SmartEscalation)
}

func TestSave_ValidationBlocksRequest(t *testing.T) {
	store := &fakeStore{current: model.DefaultSettings()}
	m := mountedForm(t, store)

	m = press(m, tea.KeyMsg{Type: tea.KeyTab}) // email
	m.email.SetValue("not-an-email")

	m, cmd := m.Save()
	assert.Nil(t, cmd)
	assert.Empty(t, store.saves)
	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "Could not save")
}

func TestSave_ServiceErrorShown(t *testing.T) {
	store := &fakeStore{current: model.DefaultSettings(), saveErr: errors.New("db locked")}
	m := mountedForm(t, store)

	m, cmd := m.Save()
	m, _ = feed(m, cmd)

	assert.False(t, m.Saving())
	assert.Contains(t, m.View(), "db locked")
}

func TestReset_DiscardsEdits(t *testing.T) {
	store := &fakeStore{current: model.DefaultSettings()}
	m := mountedForm(t, store)

	m.company.SetValue("Other Co")
	require.True(t, m.Dirty())

	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.False(t, m.Dirty())
	assert.Equal(t, "SupportAI", m.Form().General.CompanyName)
}

func TestUnmount_IgnoresLateLoad(t *testing.T) {
	store := &fakeStore{current: model.DefaultSettings()}
	m := New(styles.NewTheme("dark"), store, nil)

	m, cmd := m.Mount()
	m = m.Unmount()
	m, _ = feed(m, cmd)

	assert.Equal(t, model.Settings{}, m.Form(), "load of an earlier mount is dropped")
}
