// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/sessionchat/internal/conversation"
	"github.com/jeranaias/sessionchat/internal/model"
)

// minIDPrefix is the shortest id prefix accepted as a reference.
const minIDPrefix = 4

// named is anything listed by index, id or name.
type named interface {
	*model.Project | *model.Chat
}

func refKey[T named](v T) (id, name string) {
	switch x := any(v).(type) {
	case *model.Project:
		return x.ID, x.Name
	case *model.Chat:
		return x.ID, x.Name
	}
	return "", ""
}

// resolveRef finds an entry by 1-based index, full id, unique id prefix or
// case-insensitive name, in that order.
func resolveRef[T named](items []T, ref string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("%w: empty reference", ErrAmbiguousRef)
	}

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(items) {
		return items[n-1], nil
	}

	for _, it := range items {
		if id, _ := refKey(it); id == ref {
			return it, nil
		}
	}

	if len(ref) >= minIDPrefix {
		var match T
		count := 0
		for _, it := range items {
			if id, _ := refKey(it); strings.HasPrefix(id, ref) {
				match = it
				count++
			}
		}
		if count == 1 {
			return match, nil
		}
		if count > 1 {
			return zero, fmt.Errorf("%w: %q matches %d ids", ErrAmbiguousRef, ref, count)
		}
	}

	for _, it := range items {
		if _, name := refKey(it); strings.EqualFold(name, ref) {
			return it, nil
		}
	}
	return zero, nil
}

// findProject resolves a project reference.
func findProject(store *conversation.Store, ref string) (*model.Project, error) {
	p, err := resolveRef(store.Projects(), ref)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &conversation.NotFoundError{Kind: "project", ID: ref}
	}
	return p, nil
}

// findChat resolves a chat reference within a project.
func findChat(p *model.Project, ref string) (*model.Chat, error) {
	c, err := resolveRef(p.Chats, ref)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &conversation.NotFoundError{Kind: "chat", ID: ref}
	}
	return c, nil
}

// shortID abbreviates an id for listings.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
