// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem only appears in remote requests, never in the persisted log.
	RoleSystem Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsConversational reports whether the role may appear in a chat log.
func (r Role) IsConversational() bool {
	return r == RoleUser || r == RoleAssistant
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Du"
	case RoleAssistant:
		return "Assistent"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in a chat log. Messages are append-only: once stored,
// only an empty Meta may still be filled in.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Meta is a short annotation, e.g. how many session documents were active.
	Meta string `json:"meta"`
	// Timestamp is Unix milliseconds.
	Timestamp int64 `json:"ts"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content, meta string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Meta:      meta,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Time returns the message timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// Preview returns the content cut to maxLen runes with "..." appended.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
