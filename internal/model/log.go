// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat turns and support snapshots.
package model

// =============================================================================
// LOG TYPE
// =============================================================================

// Log is the ordered, append-only sequence of chat turns for one chat view.
// Entries are never edited or removed; failures are appended as new
// assistant turns.
type Log struct {
	messages []*Message
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{messages: make([]*Message, 0, 16)}
}

// Append adds a message to the end of the log.
// Nil messages and messages with an unknown role are ignored.
func (l *Log) Append(msg *Message) {
	if msg == nil || !msg.Role.Valid() {
		return
	}
	l.messages = append(l.messages, msg)
}

// AppendUser creates and appends a user turn.
func (l *Log) AppendUser(content string) *Message {
	msg := NewUserMessage(content)
	l.Append(msg)
	return msg
}

// AppendAssistant creates and appends an assistant turn.
func (l *Log) AppendAssistant(content string) *Message {
	msg := NewAssistantMessage(content)
	l.Append(msg)
	return msg
}

// Len returns the number of turns.
func (l *Log) Len() int {
	return len(l.messages)
}

// At returns the turn at index i, or nil when out of range.
func (l *Log) At(i int) *Message {
	if i < 0 || i >= len(l.messages) {
		return nil
	}
	return l.messages[i]
}

// Last returns the most recent turn, or nil if empty.
func (l *Log) Last() *Message {
	if len(l.messages) == 0 {
		return nil
	}
	return l.messages[len(l.messages)-1]
}

// LastUser returns the most recent user turn, or nil if there is none.
func (l *Log) LastUser() *Message {
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].Role == RoleUser {
			return l.messages[i]
		}
	}
	return nil
}

// Snapshot returns a copy of the turn slice in log order.
// The messages themselves are shared and must be treated as read-only.
func (l *Log) Snapshot() []*Message {
	out := make([]*Message, len(l.messages))
	copy(out, l.messages)
	return out
}

