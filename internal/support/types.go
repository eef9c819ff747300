// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package support

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AskRequest is the body posted to an agent route.
type AskRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// AskResponse is the success body of an agent route.
// Reply is accepted as an alias of Response.
type AskResponse struct {
	Response string `json:"response,omitempty"`
	Reply    string `json:"reply,omitempty"`
}

// ErrorResponse is the failure body of the support service.
type ErrorResponse struct {
	Detail any    `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Answer is the outcome of a successful agent call.
type Answer struct {
	// Text is the reply to show, or FallbackReply
	Text string

	// Fallback is true when the body carried no usable reply
	Fallback bool
}

// FallbackReply is shown when a successful response carries no reply text.
const FallbackReply = "Sorry, I couldn't process your request right now."
