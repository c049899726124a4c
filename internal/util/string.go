// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: everything here counts runes, never bytes, so German umlauts and
// other multi-byte characters are never split.

// RuneLen returns the number of runes in s.
func RuneLen(s string) int {
	return len([]rune(s))
}

// TruncateRunes cuts s to at most maxRunes runes. When s is longer, the first
// keep runes are kept, trailing whitespace is trimmed and ellipsis appended.
func TruncateRunes(s string, maxRunes, keep int, ellipsis string) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if keep > len(runes) {
		keep = len(runes)
	}
	if keep < 0 {
		keep = 0
	}
	return strings.TrimRight(string(runes[:keep]), " \t\r\n") + ellipsis
}

// ChunkRunes splits s into consecutive pieces of size runes. The last piece
// may be shorter. An empty string yields no chunks.
func ChunkRunes(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size <= 0 {
		return []string{s}
	}
	runes := []rune(s)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// CollapseWhitespace replaces every run of whitespace with a single space and
// trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateWidth cuts s to a terminal display width, appending "..." when
// something was dropped. Double-width characters count as two columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces up to the given display width.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
