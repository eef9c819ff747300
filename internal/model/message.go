// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat turns and support snapshots.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync/atomic"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label used when a turn is rendered as text.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// SentAtLayout is the display format for message timestamps.
const SentAtLayout = "15:04"

// Message is a single turn in the chat log.
type Message struct {
	ID      string    `json:"id"`
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:      generateID(),
		Role:    role,
		Content: content,
		SentAt:  time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// SentAtDisplay returns the send time formatted for display (e.g. "9:05" becomes "09:05").
func (m *Message) SentAtDisplay() string {
	return m.SentAt.Format(SentAtLayout)
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Transcript renders the message as "<Role label>: <content>".
func (m *Message) Transcript() string {
	return m.Role.DisplayName() + ": " + m.Content
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// idCounter disambiguates messages created within the same clock tick.
var idCounter atomic.Uint64

// generateID creates a message ID from the wall clock, a monotonic counter and
// a random suffix. The counter alone keeps IDs unique inside one process.
func generateID() string {
	var suffix [4]byte
	// Since Go 1.24 rand.Read does not return an error.
	_, _ = rand.Read(suffix[:])

	return "msg_" +
		strconv.FormatInt(time.Now().UnixNano(), 36) + "_" +
		strconv.FormatUint(idCounter.Add(1), 36) + "_" +
		hex.EncodeToString(suffix[:])
}
