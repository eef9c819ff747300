// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package support provides the HTTP client for the support service API.
package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/supportdesk-tui/internal/model"
)

// maxBodyBytes bounds how much of any response body is read.
const maxBodyBytes = 1 << 20

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Paths holds the non-agent endpoints of the service.
type Paths struct {
	Dashboard string
	Tickets   string
	Agents    string
	Settings  string
	Health    string
}

// DefaultPaths returns the endpoint paths of the reference service.
func DefaultPaths() Paths {
	return Paths{
		Dashboard: "/api/dashboard",
		Tickets:   "/api/tickets",
		Agents:    "/api/agents",
		Settings:  "/api/settings",
		Health:    "/health",
	}
}

// ClientConfig holds configuration options for the support client.
type ClientConfig struct {
	// BaseURL is the service base URL (default: http://127.0.0.1:8000)
	BaseURL string

	// Timeout bounds snapshot, settings and health requests (default: 30s).
	// Ask is bounded only by the caller's context.
	Timeout time.Duration

	// Paths of the snapshot endpoints
	Paths Paths

	// HTTPClient overrides the underlying client, mainly for tests
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:8000",
		Timeout: 30 * time.Second,
		Paths:   DefaultPaths(),
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the support service.
// It is safe for concurrent use.
//
// Example:
//
//	client := support.NewClient()
//	answer, err := client.Ask(ctx, "/api/atendimento", "Where is my order?", sessionID)
//	if err != nil {
//	    log.Println(support.Reason(err))
//	}
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	defaults := DefaultPaths()
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Paths.Dashboard == "" {
		config.Paths.Dashboard = defaults.Dashboard
	}
	if config.Paths.Tickets == "" {
		config.Paths.Tickets = defaults.Tickets
	}
	if config.Paths.Agents == "" {
		config.Paths.Agents = defaults.Agents
	}
	if config.Paths.Settings == "" {
		config.Paths.Settings = defaults.Settings
	}
	if config.Paths.Health == "" {
		config.Paths.Health = defaults.Health
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// AGENT CALLS
// =============================================================================

// Ask posts a message to an agent route on behalf of a session.
//
// A 2xx response without a usable reply is not an error: the returned Answer
// carries FallbackReply and Fallback is set.
func (c *Client) Ask(ctx context.Context, route, message, sessionID string) (Answer, error) {
	body, err := json.Marshal(AskRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return Answer{}, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to marshal request", Cause: err}
	}

	data, err := c.do(ctx, http.MethodPost, route, body)
	if err != nil {
		return Answer{}, err
	}

	var resp AskResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Answer{Text: FallbackReply, Fallback: true}, nil
	}

	for _, candidate := range []string{resp.Response, resp.Reply} {
		if strings.TrimSpace(candidate) != "" {
			return Answer{Text: candidate}, nil
		}
	}
	return Answer{Text: FallbackReply, Fallback: true}, nil
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Dashboard fetches the headline metrics.
func (c *Client) Dashboard(ctx context.Context) (model.DashboardMetrics, error) {
	var metrics model.DashboardMetrics
	err := c.getJSON(ctx, c.config.Paths.Dashboard, &metrics)
	return metrics, err
}

// Tickets fetches the ticket list.
func (c *Client) Tickets(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := c.getJSON(ctx, c.config.Paths.Tickets, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// Agents fetches the agent roster.
func (c *Client) Agents(ctx context.Context) ([]model.AgentStatus, error) {
	var agents []model.AgentStatus
	if err := c.getJSON(ctx, c.config.Paths.Agents, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// Settings fetches the current settings.
func (c *Client) Settings(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	err := c.getJSON(ctx, c.config.Paths.Settings, &settings)
	return settings, err
}

// SaveSettings replaces the settings and returns what the service stored.
func (c *Client) SaveSettings(ctx context.Context, settings model.Settings) (model.Settings, error) {
	body, err := json.Marshal(settings)
	if err != nil {
		return model.Settings{}, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to marshal settings", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	data, err := c.do(ctx, http.MethodPut, c.config.Paths.Settings, body)
	if err != nil {
		return model.Settings{}, err
	}

	var saved model.Settings
	if err := json.Unmarshal(data, &saved); err != nil {
		return model.Settings{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode settings", Cause: err}
	}
	return saved, nil
}

// Health verifies that the service is reachable.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var health HealthResponse
	err := c.getJSON(ctx, c.config.Paths.Health, &health)
	return health, err
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response from " + path, Cause: err}
	}
	return nil
}

// do performs a request and returns the body of a 2xx response.
// Any other status becomes an ErrTypeStatus ClientError carrying the body.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer drainAndClose(resp.Body)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, data)
	}
	return data, nil
}

func transportError(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: ErrUnreachable.Message, Cause: err}
}

func statusError(resp *http.Response, body []byte) *ClientError {
	clientErr := &ClientError{
		Type:       ErrTypeStatus,
		Message:    "request failed: " + resp.Status,
		StatusCode: resp.StatusCode,
		Body:       body,
	}

	var parsed ErrorResponse
	if json.Unmarshal(body, &parsed) == nil {
		clientErr.Detail = parsed.Detail
	}
	return clientErr
}

// Helper to drain response body
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
