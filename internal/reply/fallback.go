// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reply

import (
	"fmt"
	"strings"

	"github.com/jeranaias/sessionchat/internal/rag"
)

// ErrorMessage replaces the reply when the remote call fails.
const ErrorMessage = "Entschuldigung, es gab einen Fehler bei der API-Verbindung. Bitte versuchen Sie es erneut."

// contextHeading introduces retrieved lines in the remote system message.
const contextHeading = "Kontext aus Session-Dateien:"

// FallbackReply builds the offline answer from the retrieved snippets.
func FallbackReply(text string, snippets []rag.Snippet) string {
	if len(snippets) == 0 {
		return "Ich habe keine passenden Stellen in den hochgeladenen Dateien gefunden.\n\n" +
			"Frage: " + text
	}

	bullets := make([]string, len(snippets))
	for i, s := range snippets {
		bullets[i] = "• " + rag.FormatSnippet(s)
	}
	return "Hier sind relevante Auszüge aus den Session-Dateien:\n\n" +
		strings.Join(bullets, "\n") + "\n\n" +
		`Basierend darauf lässt sich deine Frage so einordnen: "` + text + `".`
}

// MetaText is the annotation attached to a reply; empty when no documents
// are active.
func MetaText(activeDocs int) string {
	if activeDocs <= 0 {
		return ""
	}
	return fmt.Sprintf("%d Datei(en) aktiv", activeDocs)
}

// systemMessage appends retrieved lines to the directive.
func systemMessage(directive string, snippets []rag.Snippet) string {
	if len(snippets) == 0 {
		return directive
	}
	var sb strings.Builder
	sb.WriteString(directive)
	sb.WriteString("\n\n")
	sb.WriteString(contextHeading)
	for _, s := range snippets {
		sb.WriteString("\n")
		sb.WriteString(rag.FormatSnippet(s))
	}
	return sb.String()
}
