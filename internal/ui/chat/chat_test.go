// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/session"
	"github.com/jeranaias/supportdesk-tui/internal/support"
	"github.com/jeranaias/supportdesk-tui/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type askCall struct {
	route, message, sessionID string
}

// fakeAsker records calls and answers with a fixed reply.
type fakeAsker struct {
	calls  []askCall
	answer support.Answer
	err    error
}

func (f *fakeAsker) Ask(_ context.Context, route, message, sessionID string) (support.Answer, error) {
	f.calls = append(f.calls, askCall{route: route, message: message, sessionID: sessionID})
	if f.err != nil {
		return support.Answer{}, f.err
	}
	return f.answer, nil
}

const greeting = "Hello! How can I help?"

func newModel(t *testing.T, asker Asker, started bool) Model {
	t.Helper()
	mgr := session.NewManager(session.DefaultConfig())
	if started {
		mgr.Start()
	}
	m := New(Options{
		Theme:    styles.NewTheme("dark"),
		Asker:    asker,
		Session:  mgr,
		Greeting: greeting,
		Company:  "Acme",
	})
	m.SetSize(100, 30)
	return m
}

// collect runs cmd and flattens batches into their messages.
// Only use it on commands that return immediately.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// completion returns the ReplyMsg or FailureMsg produced by cmd.
func completion(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case ReplyMsg, FailureMsg:
			return msg
		}
	}
	t.Fatal("command produced no request completion")
	return nil
}

// sendAndComplete types text, triggers target and feeds the completion back.
func sendAndComplete(t *testing.T, m Model, target router.AgentTarget, text string) Model {
	t.Helper()
	m.SetInput(text)
	m, cmd := m.Send(target)
	require.Equal(t, StateSending, m.State())
	m, _ = m.Update(completion(t, cmd))
	require.Equal(t, StateIdle, m.State())
	return m
}

func contents(log *model.Log) []string {
	out := make([]string, 0, log.Len())
	for _, msg := range log.Snapshot() {
		out = append(out, msg.Content)
	}
	return out
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestNew_GreetingIsFirstEntry(t *testing.T) {
	m := newModel(t, &fakeAsker{}, false)

	require.Equal(t, 1, m.Log().Len())
	first := m.Log().At(0)
	assert.Equal(t, model.RoleAssistant, first.Role)
	assert.Equal(t, greeting, first.Content)
	assert.Equal(t, StateIdle, m.State())
}

func TestSend_AppendsUserThenAssistant(t *testing.T) {
	asker := &fakeAsker{answer: support.Answer{Text: "Let me check that."}}
	m := newModel(t, asker, true)

	m.SetInput("My order is late")
	m, cmd := m.Send(router.TargetDefault)

	require.Equal(t, 2, m.Log().Len(), "user turn is echoed before the call completes")
	assert.Equal(t, model.RoleUser, m.Log().Last().Role)
	assert.Equal(t, "My order is late", m.Log().Last().Content)
	assert.Equal(t, StateSending, m.State())
	assert.Empty(t, m.Input(), "input is cleared on send")

	m, _ = m.Update(completion(t, cmd))

	require.Equal(t, 3, m.Log().Len())
	assert.Equal(t, model.RoleAssistant, m.Log().Last().Role)
	assert.Equal(t, "Let me check that.", m.Log().Last().Content)
	assert.Equal(t, StateIdle, m.State())

	require.Len(t, asker.calls, 1)
	assert.Equal(t, "/api/atendimento", asker.calls[0].route)
	assert.Equal(t, "My order is late", asker.calls[0].message)
}

func TestSend_SingleFlight(t *testing.T) {
	asker := &fakeAsker{answer: support.Answer{Text: "ok"}}
	m := newModel(t, asker, true)

	m.SetInput("first")
	m, cmd := m.Send(router.TargetDefault)
	lenAfterFirst := m.Log().Len()

	// Second send and an agent action while the first is in flight
	m.SetInput("second")
	m, second := m.Send(router.TargetDefault)
	m, third := m.Send(router.TargetEscalation)

	assert.Nil(t, second)
	assert.Nil(t, third)
	assert.Equal(t, lenAfterFirst, m.Log().Len(), "no entry while sending")

	m, _ = m.Update(completion(t, cmd))
	assert.Len(t, asker.calls, 1, "exactly one network call")
	assert.Equal(t, lenAfterFirst+1, m.Log().Len())
}

func TestSend_KeysDisabledWhileSending(t *testing.T) {
	m := newModel(t, &fakeAsker{answer: support.Answer{Text: "ok"}}, true)

	m.SetInput("hello")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Busy())
	assert.False(t, m.Keys().Send.Enabled())
	assert.False(t, m.Keys().Diagnostics.Enabled())

	m, _ = m.Update(completion(t, cmd))
	assert.True(t, m.Keys().Send.Enabled())
	assert.True(t, m.Keys().Feedback.Enabled())
}

func TestSend_SessionStableAcrossSends(t *testing.T) {
	asker := &fakeAsker{answer: support.Answer{Text: "ok"}}
	m := newModel(t, asker, true)
	id, ok := m.SessionID()
	require.True(t, ok)

	m = sendAndComplete(t, m, router.TargetDefault, "one")
	m = sendAndComplete(t, m, router.TargetDiagnostics, "two")
	m = sendAndComplete(t, m, router.TargetDefault, "three")

	require.Len(t, asker.calls, 3)
	for i, call := range asker.calls {
		assert.Equal(t, id, call.sessionID, "call %d", i)
	}
	assert.Equal(t, 7, m.Log().Len(), "greeting plus one user and one assistant entry per send")
}

func TestSend_NotReadyAppendsNotice(t *testing.T) {
	asker := &fakeAsker{}
	m := newModel(t, asker, false)

	m.SetInput("hello")
	m, cmd := m.Send(router.TargetDefault)

	assert.Nil(t, cmd)
	assert.Empty(t, asker.calls)
	assert.Equal(t, StateIdle, m.State())
	require.Equal(t, 2, m.Log().Len())
	assert.Equal(t, model.RoleAssistant, m.Log().Last().Role)
	assert.Equal(t, NotReadyNotice, m.Log().Last().Content)
	assert.Equal(t, "hello", m.Input(), "input is kept for the retry")
}

func TestSend_NotReadyThenStarted(t *testing.T) {
	asker := &fakeAsker{answer: support.Answer{Text: "ok"}}
	m := newModel(t, asker, false)

	var started tea.Msg
	for _, msg := range collect(m.session.StartCmd()) {
		started = msg
	}
	m, _ = m.Update(started)

	m = sendAndComplete(t, m, router.TargetDefault, "hello")
	require.Len(t, asker.calls, 1)
	assert.NotEmpty(t, asker.calls[0].sessionID)
}

func TestSend_EmptyDefaultIsIgnored(t *testing.T) {
	asker := &fakeAsker{}
	m := newModel(t, asker, true)

	m.SetInput("   ")
	m, cmd := m.Send(router.TargetDefault)

	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.Log().Len())
	assert.Equal(t, StateIdle, m.State())
}

func TestSend_AgentWithEmptyInputUsesPlaceholder(t *testing.T) {
	asker := &fakeAsker{answer: support.Answer{Text: "Try restarting."}}
	m := newModel(t, asker, true)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	require.Equal(t, StateSending, m.State())

	echo := m.Log().Last()
	assert.Equal(t, model.RoleUser, echo.Role)
	assert.Contains(t, echo.Content, "(requesting diagnostics)")

	m, _ = m.Update(completion(t, cmd))
	require.Len(t, asker.calls, 1)
	call := asker.calls[0]
	assert.Equal(t, "/api/diagnostico", call.route)
	assert.Contains(t, call.message, "Assistant: "+greeting)
	assert.Contains(t, call.message, router.PlaceholderRequest)
}

func TestSend_AgentAfterUserTurnQuotesIt(t *testing.T) {
	asker := &fakeAsker{answer: support.Answer{Text: "ok"}}
	m := newModel(t, asker, true)

	m = sendAndComplete(t, m, router.TargetDefault, "Printer is offline")
	m = sendAndComplete(t, m, router.TargetEscalation, "")

	echo := m.Log().At(m.Log().Len() - 2)
	assert.Equal(t, `(requesting escalation about: "Printer is offline")`, echo.Content)
	assert.Contains(t, asker.calls[1].message, router.ContinueInstruction)
	assert.Contains(t, asker.calls[1].message, "User: Printer is offline")
}

// =============================================================================
// FAILURE TESTS
// =============================================================================

func newServerModel(t *testing.T, status int, body string) Model {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	client := support.NewClientWithConfig(&support.ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	return newModel(t, client, true)
}

func TestFailure_DetailIsShown(t *testing.T) {
	m := newServerModel(t, http.StatusInternalServerError, `{"detail":"X"}`)

	m = sendAndComplete(t, m, router.TargetDefault, "hello")

	last := m.Log().Last()
	assert.Equal(t, model.RoleAssistant, last.Role)
	assert.Equal(t, "Support agent failed: X", last.Content)
	assert.Equal(t, last.Content, m.LastError())
	assert.Equal(t, 3, m.Log().Len())
}

func TestFailure_UnparsableBodyUsesGenericReason(t *testing.T) {
	m := newServerModel(t, http.StatusBadGateway, "<html>upstream exploded</html>")

	m = sendAndComplete(t, m, router.TargetFeedback, "thanks")

	last := m.Log().Last().Content
	assert.True(t, strings.HasPrefix(last, "Feedback agent failed: "), last)
	assert.Contains(t, last, support.GenericReason)
	assert.NotContains(t, last, "<html>")
}

func TestReply_MissingFieldUsesFallback(t *testing.T) {
	m := newServerModel(t, http.StatusOK, `{"unexpected":true}`)

	m = sendAndComplete(t, m, router.TargetDefault, "hello")

	assert.Equal(t, support.FallbackReply, m.Log().Last().Content)
	assert.Empty(t, m.LastError(), "fallback is not a failure")
}

func TestFailure_ClearedByNextAcceptedRequest(t *testing.T) {
	asker := &fakeAsker{err: support.ErrUnreachable}
	m := newModel(t, asker, true)

	m = sendAndComplete(t, m, router.TargetDefault, "one")
	require.NotEmpty(t, m.LastError())

	asker.err = nil
	asker.answer = support.Answer{Text: "back"}
	m.SetInput("two")
	m, _ = m.Send(router.TargetDefault)
	assert.Empty(t, m.LastError())
}

func TestCompletion_StaleSequenceIgnored(t *testing.T) {
	asker := &fakeAsker{answer: support.Answer{Text: "ok"}}
	m := newModel(t, asker, true)

	// Completion with no request in flight
	m, _ = m.Update(ReplyMsg{Seq: 7, Answer: support.Answer{Text: "ghost"}})
	assert.Equal(t, 1, m.Log().Len())

	m.SetInput("hello")
	m, cmd := m.Send(router.TargetDefault)
	done := completion(t, cmd)

	m, _ = m.Update(done)
	m, _ = m.Update(done)
	assert.Equal(t, 3, m.Log().Len(), "duplicate completion adds nothing")
}

// =============================================================================
// SYNCHRONIZER TESTS
// =============================================================================

func TestSynchronizer_Observe(t *testing.T) {
	var s Synchronizer
	log := model.NewLog()

	assert.False(t, s.Observe(log), "empty log matches the zero state")

	log.AppendUser("a")
	assert.True(t, s.Observe(log))
	assert.False(t, s.Observe(log), "no change since last observation")

	log.AppendAssistant("b")
	assert.True(t, s.Observe(log))

	msg, ok := s.ScrollCmd()().(ScrollToLatestMsg)
	require.True(t, ok)
	assert.Equal(t, 2, msg.Len)
	assert.Equal(t, log.Last().ID, msg.LastID)
}

func TestUpdate_ScrollIsDeferred(t *testing.T) {
	m := newModel(t, &fakeAsker{answer: support.Answer{Text: strings.Repeat("line\n", 80)}}, true)

	m.SetInput("hello")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	var scroll *ScrollToLatestMsg
	var done tea.Msg
	for _, msg := range collect(cmd) {
		switch msg := msg.(type) {
		case ScrollToLatestMsg:
			scroll = &msg
		case ReplyMsg:
			done = msg
		}
	}
	require.NotNil(t, scroll, "log change schedules a scroll")
	assert.Equal(t, m.Log().Len(), scroll.Len)

	// The long reply pushes content past the viewport; the scroll comes later.
	m, cmd = m.Update(done)
	m.viewport.GotoTop()
	require.False(t, m.viewport.AtBottom())

	for _, msg := range collect(cmd) {
		if s, ok := msg.(ScrollToLatestMsg); ok {
			m, _ = m.Update(s)
		}
	}
	assert.True(t, m.viewport.AtBottom())
}

// =============================================================================
// VIEW TESTS
// =============================================================================

func TestView_HeaderAndBubbles(t *testing.T) {
	m := newModel(t, &fakeAsker{answer: support.Answer{Text: "Sure thing"}}, true)
	m = sendAndComplete(t, m, router.TargetDefault, "Need help")

	view := m.View()
	for _, want := range []string{"Support Chat", "Powered by Acme", "Need help", "Sure thing"} {
		assert.Contains(t, view, want)
	}
}

func TestView_SendingShowsTarget(t *testing.T) {
	m := newModel(t, &fakeAsker{}, true)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})

	assert.Contains(t, m.View(), "Waiting for the Escalation agent")
}
