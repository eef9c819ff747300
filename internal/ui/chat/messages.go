// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea messages of the chat view. Request
// completions carry the sequence number of the request that produced them so
// a late or duplicate completion can never add a second reply.
package chat

import (
	"time"

	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/support"
)

// =============================================================================
// REQUEST MESSAGES
// =============================================================================

// ReplyMsg reports a successful agent call.
type ReplyMsg struct {
	Seq      uint64
	Target   router.AgentTarget
	Route    string
	Answer   support.Answer
	Duration time.Duration
}

// FailureMsg reports a failed agent call.
type FailureMsg struct {
	Seq      uint64
	Target   router.AgentTarget
	Route    string
	Err      error
	Duration time.Duration
}

// =============================================================================
// VIEWPORT MESSAGES
// =============================================================================

// ScrollToLatestMsg asks the view to bring the newest turn into view.
// It is delivered after the render that shows the mutation.
type ScrollToLatestMsg struct {
	Len    int
	LastID string
}
