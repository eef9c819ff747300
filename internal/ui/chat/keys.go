// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines keyboard bindings for the chat view. Agent actions use
// control chords so they never collide with text typed into the input.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/supportdesk-tui/internal/router"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat view.
type KeyMap struct {
	Send        key.Binding
	Diagnostics key.Binding
	Escalation  key.Binding
	Feedback    key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat view.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Diagnostics: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "diagnostics"),
		),
		Escalation: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "escalate"),
		),
		Feedback: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("C-f", "feedback"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("Home", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "go to bottom"),
		),
	}
}

// SetSending disables the send and agent actions while a request is in flight.
func (k *KeyMap) SetSending(sending bool) {
	k.Send.SetEnabled(!sending)
	k.Diagnostics.SetEnabled(!sending)
	k.Escalation.SetEnabled(!sending)
	k.Feedback.SetEnabled(!sending)
}

// targetFor maps a key press to the agent it triggers.
// Disabled bindings never match.
func (k KeyMap) targetFor(msg tea.KeyMsg) (router.AgentTarget, bool) {
	switch {
	case key.Matches(msg, k.Send):
		return router.TargetDefault, true
	case key.Matches(msg, k.Diagnostics):
		return router.TargetDiagnostics, true
	case key.Matches(msg, k.Escalation):
		return router.TargetEscalation, true
	case key.Matches(msg, k.Feedback):
		return router.TargetFeedback, true
	}
	return router.TargetDefault, false
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Diagnostics, k.Escalation, k.Feedback}
}

// FullHelp returns the bindings organized into groups.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Diagnostics, k.Escalation, k.Feedback},
		{k.PageUp, k.PageDown, k.Top, k.Bottom},
	}
}
