// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/scylladb/go-set/strset"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultMaxResults is how many snippets Score returns.
const DefaultMaxResults = 5

// Snippet is one matching line.
type Snippet struct {
	DocumentName string
	// LineIndex is 0-based; FormatSnippetRef shows it 1-based.
	LineIndex int
	LineText  string
	Score     int
}

var (
	tokenSeparator = regexp.MustCompile(`[^a-z0-9äöüß]+`)
	lineBreak      = regexp.MustCompile(`\r?\n`)
)

// lower lowercases with German rules. A Caser keeps state, so each call gets
// its own.
func lower(s string) string {
	return cases.Lower(language.German).String(s)
}

// Tokenize lowercases the query and splits it into distinct tokens made of
// a-z, 0-9, ä, ö, ü and ß. The result is sorted.
func Tokenize(query string) []string {
	set := strset.New()
	for _, tok := range tokenSeparator.Split(lower(query), -1) {
		if tok != "" {
			set.Add(tok)
		}
	}
	tokens := set.List()
	sort.Strings(tokens)
	return tokens
}

// Score ranks every line of every document by how many distinct query tokens
// it contains and returns the best DefaultMaxResults.
func Score(query string, docs []Document) []Snippet {
	return ScoreTop(query, docs, DefaultMaxResults)
}

// ScoreTop is Score with a custom result limit. Lines scoring zero are
// dropped; ties keep document order, then line order.
func ScoreTop(query string, docs []Document, limit int) []Snippet {
	tokens := Tokenize(query)
	if len(tokens) == 0 || len(docs) == 0 || limit <= 0 {
		return []Snippet{}
	}

	var scored []Snippet
	for _, doc := range docs {
		for idx, line := range lineBreak.Split(doc.Content, -1) {
			lw := lower(line)
			score := 0
			for _, tok := range tokens {
				if strings.Contains(lw, tok) {
					score++
				}
			}
			if score > 0 {
				scored = append(scored, Snippet{
					DocumentName: doc.Name,
					LineIndex:    idx,
					LineText:     line,
					Score:        score,
				})
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	if scored == nil {
		return []Snippet{}
	}
	return scored
}

// FormatSnippetRef renders the reference used in replies: "[name #n]".
func FormatSnippetRef(s Snippet) string {
	return fmt.Sprintf("[%s #%d]", s.DocumentName, s.LineIndex+1)
}

// FormatSnippet renders a reference followed by the line text.
func FormatSnippet(s Snippet) string {
	return FormatSnippetRef(s) + " " + s.LineText
}
