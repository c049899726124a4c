// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/reply"
	"github.com/jeranaias/sessionchat/internal/ui/styles"
	"github.com/jeranaias/sessionchat/internal/util"
)

// View renders the chat view.
func (m Model) View() string {
	if !m.ready {
		return "Lade..."
	}

	input := m.theme.InputFocused
	if m.busy {
		input = m.theme.InputBlurred
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderStatus(),
		input.Render(m.input.View()),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("sessionchat")
	chat := m.theme.HeaderChat.Render(m.projectName + " / " + m.chatName)

	mode := m.theme.ModeOffline.Render("offline")
	if m.backend.RemoteEnabled() {
		mode = m.theme.ModeRemote.Render("remote")
	}

	left := title + "  " + chat
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(mode) - 2
	if gap < 1 {
		gap = 1
		left = util.TruncateWidth(left, m.width-lipgloss.Width(mode)-3)
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + mode)
}

func (m Model) renderStatus() string {
	var left string
	switch {
	case m.err != nil:
		left = styles.RenderError(m.err.Error())
	case m.busy:
		left = m.spinner.View() + " " + stateText(m.state)
	default:
		left = helpText(m.keys)
	}
	docs := fmt.Sprintf("Session-RAG: %d Datei(en)", m.backend.DocumentCount())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(docs) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + docs)
}

// stateText describes a pipeline state for the status bar.
func stateText(s reply.State) string {
	switch s {
	case reply.StateUserAppended, reply.StateRetrieving:
		return "Durchsuche Session-Dateien..."
	case reply.StateResponding:
		return "Antwort wird erstellt..."
	case reply.StateErrorFallback:
		return "Anfrage fehlgeschlagen"
	case reply.StateStreaming:
		return "Antwort..."
	default:
		return "Sende..."
	}
}

func helpText(k KeyMap) string {
	parts := make([]string, 0, len(k.ShortHelp()))
	for _, b := range k.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

// renderLog renders the persisted messages, session notices and the reply
// being revealed.
func (m Model) renderLog() string {
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}

	if len(m.log) == 0 && len(m.notices) == 0 && m.pending == "" {
		return m.theme.Hint.Render("Noch keine Nachrichten. Frag etwas oder lade Dateien mit /load.")
	}

	var b strings.Builder
	for _, v := range m.log {
		b.WriteString(m.renderMessage(v, width))
	}
	for _, v := range m.notices {
		b.WriteString(m.renderMessage(v, width))
	}
	if m.pending != "" {
		b.WriteString(m.renderMessage(model.MessageView{
			Role:  model.RoleAssistant,
			Label: model.RoleAssistant.DisplayName(),
			Body:  m.pending,
		}, width))
	}
	return b.String()
}

func (m Model) renderMessage(v model.MessageView, width int) string {
	if v.Role == model.RoleSystem {
		return m.theme.SystemLine.Width(width).Render(v.Body) + "\n\n"
	}

	header := m.theme.LabelFor(v.Role).Render(v.Label)
	if v.Time != "" {
		header += " " + m.theme.Timestamp.Render(v.Time)
	}
	out := header + "\n" + m.theme.Body.Width(width).Render(v.Body) + "\n"
	if v.HasPill {
		out += m.theme.Pill.Render(v.Pill) + "\n"
	}
	return out + "\n"
}
