// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package support

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/supportdesk-tui/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://example.test/"})

	if c.BaseURL() != "http://example.test" {
		t.Errorf("BaseURL() = %q, trailing slash should be trimmed", c.BaseURL())
	}
	if c.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", c.config.Timeout)
	}
	if c.config.Paths != DefaultPaths() {
		t.Errorf("Paths = %+v, want defaults", c.config.Paths)
	}
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestAsk_SendsMessageAndSession(t *testing.T) {
	var got AskRequest
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"response":"On its way"}`))
	})

	answer, err := c.Ask(context.Background(), "/api/atendimento", "Where is my order?", "sess_1")
	require.NoError(t, err)

	assert.Equal(t, "/api/atendimento", path)
	assert.Equal(t, "Where is my order?", got.Message)
	assert.Equal(t, "sess_1", got.SessionID)
	assert.Equal(t, "On its way", answer.Text)
	assert.False(t, answer.Fallback)
}

func TestAsk_ReplyVariants(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     string
		fallback bool
	}{
		{"response field", `{"response":"hi"}`, "hi", false},
		{"reply alias", `{"reply":"hello"}`, "hello", false},
		{"response wins", `{"response":"a","reply":"b"}`, "a", false},
		{"missing field", `{"status":"ok"}`, FallbackReply, true},
		{"blank response", `{"response":"   "}`, FallbackReply, true},
		{"non-string response", `{"response":42}`, FallbackReply, true},
		{"not json", `<html>ok</html>`, FallbackReply, true},
		{"empty body", ``, FallbackReply, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, respond(http.StatusOK, tc.body))

			answer, err := c.Ask(context.Background(), "/api/atendimento", "x", "s")
			if err != nil {
				t.Fatalf("Ask() error = %v, a 2xx should never fail", err)
			}
			if answer.Text != tc.want || answer.Fallback != tc.fallback {
				t.Errorf("Ask() = %+v, want text %q fallback %v", answer, tc.want, tc.fallback)
			}
		})
	}
}

func TestAsk_StatusErrorCarriesDetail(t *testing.T) {
	c := newTestClient(t, respond(http.StatusUnprocessableEntity, `{"detail":"X"}`))

	_, err := c.Ask(context.Background(), "/api/diagnostico", "x", "s")
	require.Error(t, err)

	var clientErr *ClientError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, ErrTypeStatus, clientErr.Type)
	assert.Equal(t, http.StatusUnprocessableEntity, StatusCode(err))
	assert.Equal(t, "X", clientErr.Detail)
	assert.Contains(t, Reason(err), "X")
}

func TestAsk_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url, Timeout: time.Second})
	_, err := c.Ask(context.Background(), "/api/atendimento", "x", "s")

	require.Error(t, err)
	assert.True(t, IsUnreachable(err), "error %v should be a connection error", err)
	assert.Contains(t, Reason(err), "not reachable")
}

func TestAsk_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Ask(ctx, "/api/atendimento", "x", "s")
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "error %v should be a timeout", err)
}

func TestAsk_OutlivesSnapshotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(150 * time.Millisecond):
		}
		w.Write([]byte(`{"response":"slow but fine"}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	answer, err := c.Ask(ctx, "/api/atendimento", "x", "s")
	require.NoError(t, err, "agent calls are bounded by the caller, not the snapshot timeout")
	assert.Equal(t, "slow but fine", answer.Text)

	_, err = c.Dashboard(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "error %v should be a timeout", err)
}

// =============================================================================
// REASON TESTS
// =============================================================================

func TestReason_Chain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "string detail",
			err:  &ClientError{Type: ErrTypeStatus, StatusCode: 500, Detail: "X", Body: []byte(`{"detail":"X"}`)},
			want: "X",
		},
		{
			name: "structured detail is serialized",
			err: &ClientError{
				Type:       ErrTypeStatus,
				StatusCode: 422,
				Detail:     []any{map[string]any{"msg": "field required"}},
			},
			want: `[{"msg":"field required"}]`,
		},
		{
			name: "error field",
			err:  &ClientError{Type: ErrTypeStatus, StatusCode: 500, Body: []byte(`{"error":"backend down"}`)},
			want: "backend down",
		},
		{
			name: "whole body serialization",
			err:  &ClientError{Type: ErrTypeStatus, StatusCode: 500, Body: []byte("{ \"code\": 7 }")},
			want: `{"code":7}`,
		},
		{
			name: "transport message",
			err:  &ClientError{Type: ErrTypeConnection, Message: "support service is not reachable", Cause: errors.New("dial tcp: refused")},
			want: "support service is not reachable: dial tcp: refused",
		},
		{
			name: "unparsable body",
			err:  &ClientError{Type: ErrTypeStatus, StatusCode: 502, Body: []byte("<html>Bad Gateway</html>")},
			want: GenericReason + " (HTTP 502)",
		},
		{
			name: "nothing known",
			err:  &ClientError{},
			want: GenericReason,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "boom",
		},
		{
			name: "nil",
			err:  nil,
			want: GenericReason,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Reason(tc.err); got != tc.want {
				t.Errorf("Reason() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReason_UnparsableBodyEndToEnd(t *testing.T) {
	c := newTestClient(t, respond(http.StatusInternalServerError, "Traceback (most recent call last):"))

	_, err := c.Ask(context.Background(), "/api/feedback", "x", "s")
	require.Error(t, err)

	reason := Reason(err)
	assert.True(t, strings.HasPrefix(reason, GenericReason), "reason = %q", reason)
	assert.NotContains(t, reason, "Traceback")
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestSnapshots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard", respond(http.StatusOK, `{"active_tickets":23,"active_tickets_trend":"+12%"}`))
	mux.HandleFunc("/api/tickets", respond(http.StatusOK, `[{"id":"1001","customer":"João Silva","status":"open","priority":"high"}]`))
	mux.HandleFunc("/api/agents", respond(http.StatusOK, `[{"name":"Feedback","status":"idle","tasks_completed":156}]`))
	mux.HandleFunc("/health", respond(http.StatusOK, `{"status":"ok"}`))

	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	ctx := context.Background()

	metrics, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 23, metrics.ActiveTickets)
	assert.Equal(t, "+12%", metrics.ActiveTicketsTrend)

	tickets, err := c.Tickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, model.PriorityHigh, tickets[0].Priority)

	agents, err := c.Agents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, 156, agents[0].TasksCompleted)

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
}

func TestSnapshots_DecodeError(t *testing.T) {
	c := newTestClient(t, respond(http.StatusOK, `{"not":"a list"}`))

	_, err := c.Tickets(context.Background())
	require.Error(t, err)

	var clientErr *ClientError
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, ErrTypeInvalidResponse, clientErr.Type)
}

func TestSaveSettings(t *testing.T) {
	var received model.Settings
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/settings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(received)
	})

	settings := model.DefaultSettings()
	settings.General.CompanyName = "Acme"
	settings.Agents.SentimentAnalysis = false

	saved, err := c.SaveSettings(context.Background(), settings)
	require.NoError(t, err)
	assert.Equal(t, settings, received)
	assert.Equal(t, settings, saved)
}
