// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"unicode/utf8"
)

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a session document: text loaded for the current chat only and
// never persisted.
type Document struct {
	Name    string
	Path    string
	Size    int64
	Content string
}

// ErrUnsupportedFile is returned by LoadFile for files outside the ingestion
// filter. LoadFiles skips such files silently.
var ErrUnsupportedFile = errors.New("unsupported file type")

var supportedExt = regexp.MustCompile(`(?i)\.(txt|md|markdown|csv)$`)

// IsSupported reports whether a file name passes the ingestion filter.
func IsSupported(name string) bool {
	return supportedExt.MatchString(name)
}

// LoadFile reads one session document.
func LoadFile(path string) (Document, error) {
	if !IsSupported(path) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Document{
		Name:    filepath.Base(path),
		Path:    path,
		Size:    int64(len(data)),
		Content: decodeText(data),
	}, nil
}

// LoadFiles reads every supported path in order. Unsupported files are
// skipped; the first read error aborts.
func LoadFiles(paths ...string) ([]Document, error) {
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		if !IsSupported(p) {
			continue
		}
		doc, err := LoadFile(p)
		if err != nil {
			return docs, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// decodeText strips a UTF-8 BOM and replaces invalid sequences.
func decodeText(data []byte) string {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if utf8.Valid(data) {
		return string(data)
	}
	out := make([]rune, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		out = append(out, r)
		data = data[size:]
	}
	return string(out)
}

// =============================================================================
// COLLECTION
// =============================================================================

// Collection holds the active session documents in load order. It is safe for
// concurrent use; the watcher swaps contents in while a reply runs.
type Collection struct {
	mu   sync.RWMutex
	docs []Document
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Add appends documents. Loading the same file twice keeps both entries.
func (c *Collection) Add(docs ...Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, docs...)
}

// Docs returns a snapshot in load order.
func (c *Collection) Docs() []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// Len returns the number of active documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Clear drops every document.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = nil
}

// Paths returns the distinct source paths in load order.
func (c *Collection) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool, len(c.docs))
	var out []string
	for _, d := range c.docs {
		if d.Path == "" || seen[d.Path] {
			continue
		}
		seen[d.Path] = true
		out = append(out, d.Path)
	}
	return out
}

// Replace swaps the content of every entry loaded from doc.Path, keeping
// positions. It returns the number of entries updated.
func (c *Collection) Replace(doc Document) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for i := range c.docs {
		if c.docs[i].Path == doc.Path {
			c.docs[i] = doc
			n++
		}
	}
	return n
}
