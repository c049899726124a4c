// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reply

import (
	"regexp"
	"strings"

	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/rag"
	"github.com/jeranaias/sessionchat/internal/util"
)

// Title length limits, in runes.
const (
	titleMaxLen       = 48
	titleKeepLen      = 45
	titleWithTopicMax = 56
)

var (
	leadingFiller = regexp.MustCompile(`(?i)^(bitte|kannst|kann|können|wie|was|warum|wieso)\s+`)
	lastExtension = regexp.MustCompile(`\.[^.]+$`)
)

// Title derives a chat title from the first user message and, when present,
// the name of the best matching document.
func Title(text string, snippets []rag.Snippet) string {
	base := firstSentence(util.CollapseWhitespace(text))
	base = leadingFiller.ReplaceAllString(base, "")
	base = util.TruncateRunes(base, titleMaxLen, titleKeepLen, "…")
	if base == "" {
		return model.DefaultChatName
	}

	topic := ""
	if len(snippets) > 0 {
		topic = lastExtension.ReplaceAllString(snippets[0].DocumentName, "")
	}
	if topic != "" && !strings.Contains(strings.ToLower(base), strings.ToLower(topic)) {
		combined := base + " — " + topic
		if util.RuneLen(combined) <= titleWithTopicMax {
			return combined
		}
	}
	return base
}

// firstSentence cuts s after the first '.', '!' or '?' that is followed by
// whitespace. s must already be whitespace-collapsed.
func firstSentence(s string) string {
	for i := 0; i+1 < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' {
				return s[:i+1]
			}
		}
	}
	return s
}
