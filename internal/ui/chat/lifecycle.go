// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/support"
)

// =============================================================================
// REQUEST LIFECYCLE
// =============================================================================
//
// idle -> sending -> (reply | failure) -> idle
//
// Send is the only way into sending and the completion handlers are the only
// way out. Exactly one assistant entry is appended per accepted request.

// Send dispatches the current input to target.
//
// While a request is in flight Send is a no-op: nothing is logged and nothing
// is sent. Before the session exists a notice is appended instead of sending.
// An empty input on the default target is ignored.
func (m Model) Send(target router.AgentTarget) (Model, tea.Cmd) {
	if m.state == StateSending {
		return m, nil
	}

	sessionID, ready := m.session.ID()
	if !ready {
		m.log.AppendAssistant(NotReadyNotice)
		m.logger.Warn("send before session start", "target", target.String())
		return m, nil
	}

	dispatch, err := m.router.Dispatch(target, m.input.Value(), m.log.Snapshot())
	if err != nil {
		if !errors.Is(err, router.ErrEmptyInput) {
			m.logger.Error("dispatch failed", "target", target.String(), "error", err)
		}
		return m, nil
	}

	// Optimistic echo of what is actually sent
	m.log.AppendUser(dispatch.Echo)

	m.seq++
	m.pending = pendingRequest{
		seq:     m.seq,
		target:  dispatch.Target,
		route:   dispatch.Route,
		started: time.Now(),
	}
	m.state = StateSending
	m.lastFailure = nil
	m.keys.SetSending(true)
	m.input.Reset()
	m.input.Blur()

	m.logger.Info("agent request sent",
		"session_id", sessionID,
		"target", dispatch.Target.String(),
		"route", dispatch.Route,
		"seq", m.seq,
	)

	return m, tea.Batch(m.requestCmd(dispatch, sessionID), m.spinner.Tick)
}

// requestCmd performs the agent call off the update loop.
func (m Model) requestCmd(d router.Dispatch, sessionID string) tea.Cmd {
	asker, timeout, seq := m.asker, m.requestTimeout, m.seq
	return func() tea.Msg {
		start := time.Now()
		if asker == nil {
			return FailureMsg{Seq: seq, Target: d.Target, Route: d.Route, Err: support.ErrUnreachable}
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		answer, err := asker.Ask(ctx, d.Route, d.Payload, sessionID)
		if err != nil {
			return FailureMsg{Seq: seq, Target: d.Target, Route: d.Route, Err: err, Duration: time.Since(start)}
		}
		return ReplyMsg{Seq: seq, Target: d.Target, Route: d.Route, Answer: answer, Duration: time.Since(start)}
	}
}

// accepts reports whether a completion belongs to the request in flight.
func (m Model) accepts(seq uint64) bool {
	return m.state == StateSending && seq == m.pending.seq
}

func (m Model) handleReply(msg ReplyMsg) (Model, tea.Cmd) {
	if !m.accepts(msg.Seq) {
		return m, nil
	}

	m.log.AppendAssistant(msg.Answer.Text)

	attrs := []any{
		"target", msg.Target.String(),
		"route", msg.Route,
		"seq", msg.Seq,
		"duration", msg.Duration,
	}
	if msg.Answer.Fallback {
		m.logger.Warn("agent reply missing, showing fallback", attrs...)
	} else {
		m.logger.Info("agent replied", attrs...)
	}

	return m.release()
}

func (m Model) handleFailure(msg FailureMsg) (Model, tea.Cmd) {
	if !m.accepts(msg.Seq) {
		return m, nil
	}

	reason := support.Reason(msg.Err)
	entry := FailureEntry(msg.Target, reason)
	m.lastFailure = m.log.AppendAssistant(entry)

	m.logger.Error(entry,
		"target", msg.Target.String(),
		"route", msg.Route,
		"seq", msg.Seq,
		"status", support.StatusCode(msg.Err),
		"duration", msg.Duration,
		"error", msg.Err,
	)

	return m.release()
}

// release returns to idle and gives the input back to the user.
func (m Model) release() (Model, tea.Cmd) {
	m.state = StateIdle
	m.pending = pendingRequest{}
	m.keys.SetSending(false)
	cmd := m.input.Focus()
	return m, cmd
}

// FailureEntry renders the assistant turn that reports a failed request.
func FailureEntry(target router.AgentTarget, reason string) string {
	return fmt.Sprintf("%s agent failed: %s", target.Label(), reason)
}
