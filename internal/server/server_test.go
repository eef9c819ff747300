// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/supportdesk-tui/internal/logging"
	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/support"
)

func newTestServer(t *testing.T, opts Options) (*Server, *Store) {
	t.Helper()
	store, err := OpenStore(context.Background(), MemoryDB)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts.Store = store
	srv, err := New(opts)
	require.NoError(t, err)
	return srv, store
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// SNAPSHOT ENDPOINTS
// =============================================================================

func TestSnapshots_Seeded(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/tickets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tickets := decode[[]model.Ticket](t, rec)
	require.Len(t, tickets, 5)
	assert.Equal(t, "1001", tickets[0].ID)
	assert.Equal(t, "João Silva", tickets[0].Customer)
	assert.Equal(t, model.TicketEscalated, tickets[3].Status)

	rec = do(t, h, http.MethodGet, "/api/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	agents := decode[[]model.AgentStatus](t, rec)
	require.Len(t, agents, 4)
	assert.Equal(t, "Atendimento Inicial", agents[0].Name)
	assert.Equal(t, 142, agents[0].TasksCompleted)
	assert.Equal(t, model.AgentIdle, agents[3].Status)

	rec = do(t, h, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[model.DashboardMetrics](t, rec)
	assert.Equal(t, 23, dash.ActiveTickets)
	assert.Equal(t, "+12%", dash.ActiveTicketsTrend)
	assert.Equal(t, "4.2m", dash.AvgResponseTime)
	assert.Equal(t, "94%", dash.Satisfaction)
	assert.Len(t, dash.Agents, 4)

	rec = do(t, h, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.DefaultSettings(), decode[model.Settings](t, rec))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rec := do(t, srv.Handler(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[support.HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, Version, health.Version)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestSaveSettings(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	h := srv.Handler()

	s := model.DefaultSettings()
	s.General.CompanyName = "Acme"
	s.Agents.SentimentAnalysis = false

	rec := do(t, h, http.MethodPut, "/api/settings", s)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, s, decode[model.Settings](t, rec))

	stored, err := store.Settings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.General.CompanyName)
	assert.False(t, stored.Agents.SentimentAnalysis)
}

func TestSaveSettings_Rejected(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	h := srv.Handler()

	bad := model.DefaultSettings()
	bad.General.ContactEmail = "nope"

	rec := do(t, h, http.MethodPut, "/api/settings", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[support.ErrorResponse](t, rec).Detail, "invalid contact email")

	rec = do(t, h, http.MethodPut, "/api/settings", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// AGENT ROUTES
// =============================================================================

func TestAsk_AgentRoutes(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		message string
		want    string
	}{
		{"support faq", "/api/atendimento", "How do I track my order?", "confirmation email"},
		{"support order", "/api/atendimento", "Where is order 12345?", "**Order 12345**"},
		{"support greeting", "/api/atendimento", "hello", "Thanks for contacting us"},
		{"diagnostics", "/api/diagnostico", "app crashes on start", "Let's troubleshoot: *app crashes on start*"},
		{"feedback positive", "/api/feedback", "great service, thanks", "[Sentiment: Positive]"},
		{"feedback negative", "/api/feedback", "it did not work, not solved", "[Sentiment: Negative]"},
		{"feedback neutral", "/api/feedback", "ok", "[Sentiment: Neutral]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, Options{})
			rec := do(t, srv.Handler(), http.MethodPost, tt.path, support.AskRequest{Message: tt.message, SessionID: "sess-1"})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, decode[support.AskResponse](t, rec).Response, tt.want)
		})
	}
}

func TestAsk_EmptyMessageIs422(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rec := do(t, srv.Handler(), http.MethodPost, "/api/atendimento", support.AskRequest{Message: "   ", SessionID: "s"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "message must not be empty", decode[support.ErrorResponse](t, rec).Detail)
}

func TestAsk_CountsTurnsAndTasks(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	h := srv.Handler()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodPost, "/api/atendimento", support.AskRequest{Message: "hello", SessionID: "sess-a"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/api/atendimento", support.AskRequest{Message: "hello", SessionID: "sess-a"})
	assert.Contains(t, decode[support.AskResponse](t, rec).Response, "could not find a direct answer",
		"later turns of a session get the follow-up reply")

	turns, err := store.RecordTurn(ctx, "sess-a", router.TargetDefault)
	require.NoError(t, err)
	assert.Equal(t, 4, turns)

	turns, err = store.RecordTurn(ctx, "sess-b", router.TargetDefault)
	require.NoError(t, err)
	assert.Equal(t, 1, turns, "sessions are counted separately")

	agents, err := store.Agents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 142+5, agents[0].TasksCompleted)
}

func TestAsk_EscalationFilesTicket(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	ctx := context.Background()

	r := router.New(nil)
	d, err := r.Dispatch(router.TargetEscalation, "I want a refund", nil)
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodPost, d.Route, support.AskRequest{Message: d.Payload, SessionID: "sess-x"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[support.AskResponse](t, rec).Response, "Ticket #1006")

	tickets, err := store.Tickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 6)
	last := tickets[5]
	assert.Equal(t, "1006", last.ID)
	assert.Equal(t, model.TicketEscalated, last.Status)
	assert.Equal(t, "Chat sess-x", last.Customer)
	assert.Equal(t, "I want a refund", last.Message)

	dash, err := store.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 24, dash.ActiveTickets)
}

func TestAsk_CustomRoutes(t *testing.T) {
	srv, _ := newTestServer(t, Options{Routes: router.Routes{router.TargetFeedback: "/v2/feedback"}})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/v2/feedback", support.AskRequest{Message: "thanks", SessionID: "s"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/feedback", support.AskRequest{Message: "thanks", SessionID: "s"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", decode[support.ErrorResponse](t, rec).Detail)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimit: 0.001, Burst: 2})
	h := srv.Handler()

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", nil).Code)
	}
	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, decode[support.ErrorResponse](t, rec).Detail, "Too many requests")
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)

	if !rl.Allow("10.0.0.1") {
		t.Error("first request of a client should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("second request should be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients have their own bucket")
	}
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, Options{CORS: DefaultCORSConfig()})

	req := httptest.NewRequest(http.MethodOptions, "/api/settings", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PUT"))
}

func TestRecovery(t *testing.T) {
	h := RecoveryMiddleware(logging.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode[support.ErrorResponse](t, rec).Detail)
}

// =============================================================================
// END TO END
// =============================================================================

func TestClientAgainstServer(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := support.NewClientWithConfig(&support.ClientConfig{BaseURL: ts.URL, Timeout: 5 * time.Second})
	ctx := context.Background()

	answer, err := client.Ask(ctx, "/api/diagnostico", "printer offline", "sess-e2e")
	require.NoError(t, err)
	assert.False(t, answer.Fallback)
	assert.Contains(t, answer.Text, "printer offline")

	_, err = client.Ask(ctx, "/api/diagnostico", "", "sess-e2e")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, support.StatusCode(err))
	assert.Equal(t, "message must not be empty", support.Reason(err))

	tickets, err := client.Tickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 5)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}
