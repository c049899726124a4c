// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// MessageView is the renderable form of a message. Renderers (CLI, TUI)
// consume views and never look at Message directly.
type MessageView struct {
	Role    Role
	Label   string
	Body    string
	Pill    string
	HasPill bool
	Time    string
}

// ToView maps a message to its view record. It is pure: no rendering API is
// involved.
func ToView(m Message) MessageView {
	v := MessageView{
		Role:    m.Role,
		Label:   m.Role.DisplayName(),
		Body:    m.Content,
		Pill:    m.Meta,
		HasPill: m.Meta != "",
	}
	if m.Timestamp > 0 {
		v.Time = m.Time().Format("15:04")
	}
	return v
}

// ToViews maps a whole chat log.
func ToViews(messages []Message) []MessageView {
	views := make([]MessageView, len(messages))
	for i, m := range messages {
		views[i] = ToView(m)
	}
	return views
}
