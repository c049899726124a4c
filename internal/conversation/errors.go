// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import "errors"

// =============================================================================
// ERRORS
// =============================================================================

// ErrProjectNotFound is returned when a project id is unknown.
// Use errors.Is(err, ErrProjectNotFound) to check for this error.
var ErrProjectNotFound = &NotFoundError{Kind: "project"}

// ErrChatNotFound is returned when a chat id is unknown within its project.
var ErrChatNotFound = &NotFoundError{Kind: "chat"}

var (
	// ErrEmptyName is returned when a rename target is blank.
	ErrEmptyName = errors.New("name must not be empty")

	// ErrInvalidRole is returned when appending a message whose role may not
	// appear in a chat log.
	ErrInvalidRole = errors.New("invalid message role")
)

// NotFoundError reports a missing project or chat. Two NotFoundErrors match
// under errors.Is when their Kind is equal; the ID is informational.
type NotFoundError struct {
	Kind string
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Kind + " not found"
	}
	return e.Kind + " not found: " + e.ID
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func projectNotFound(id string) error { return &NotFoundError{Kind: "project", ID: id} }

func chatNotFound(id string) error { return &NotFoundError{Kind: "chat", ID: id} }
