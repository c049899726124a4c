// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"github.com/google/uuid"
)

// Default names used when the user does not supply one.
const (
	DefaultChatName    = "Neuer Chat"
	DefaultProjectName = "Projekt 1"
)

// =============================================================================
// PROJECT
// =============================================================================

// Project groups an ordered list of chats. A project owns its chats.
type Project struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Chats []*Chat `json:"chats"`
}

// NewProject creates an empty project with a fresh identifier.
func NewProject(name string) *Project {
	return &Project{
		ID:    NewID(),
		Name:  name,
		Chats: make([]*Chat, 0),
	}
}

// FindChat returns the chat with the given id and its index, or nil and -1.
func (p *Project) FindChat(id string) (*Chat, int) {
	for i, c := range p.Chats {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := &Project{ID: p.ID, Name: p.Name, Chats: make([]*Chat, len(p.Chats))}
	for i, c := range p.Chats {
		out.Chats[i] = c.Clone()
	}
	return out
}

// =============================================================================
// CHAT
// =============================================================================

// Chat is a single ordered conversation within a project.
type Chat struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Messages []Message `json:"messages"`
	// AutoTitlePending is cleared for good after the first successful
	// automatic title.
	AutoTitlePending bool `json:"autoTitlePending"`
}

// NewChat creates an empty chat with a fresh identifier.
func NewChat(name string, autoTitlePending bool) *Chat {
	return &Chat{
		ID:               NewID(),
		Name:             name,
		Messages:         make([]Message, 0),
		AutoTitlePending: autoTitlePending,
	}
}

// LastMessage returns the most recent message, or nil if the chat is empty.
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// RecentConversation returns up to n of the most recent user/assistant
// messages in order.
func (c *Chat) RecentConversation(n int) []Message {
	start := len(c.Messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, 0, len(c.Messages)-start)
	for _, m := range c.Messages[start:] {
		if m.Role.IsConversational() {
			out = append(out, m)
		}
	}
	return out
}

// Clone returns a deep copy of the chat.
func (c *Chat) Clone() *Chat {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// NewID returns a random (v4) UUID string.
func NewID() string {
	return uuid.NewString()
}

// CloneProjects deep-copies a project list.
func CloneProjects(projects []*Project) []*Project {
	out := make([]*Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}
