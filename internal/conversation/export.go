// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"strings"

	"github.com/jeranaias/sessionchat/internal/model"
)

// ExportMarkdown renders a chat as Markdown with role labels and times.
func (s *Store) ExportMarkdown(projectID, chatID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, _ := s.findProject(projectID)
	if p == nil {
		return "", projectNotFound(projectID)
	}
	c, _ := p.FindChat(chatID)
	if c == nil {
		return "", chatNotFound(chatID)
	}
	return RenderMarkdown(p.Name, c), nil
}

// RenderMarkdown formats a chat. Messages with meta get it as an italic line.
func RenderMarkdown(projectName string, c *model.Chat) string {
	var sb strings.Builder
	sb.WriteString("# " + c.Name + "\n\n")
	sb.WriteString("Projekt: " + projectName + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		v := model.ToView(msg)
		sb.WriteString("**" + v.Label + "**")
		if v.Time != "" {
			sb.WriteString(" (" + v.Time + ")")
		}
		sb.WriteString(":\n\n")
		sb.WriteString(v.Body)
		if v.HasPill {
			sb.WriteString("\n\n_" + v.Pill + "_")
		}
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
