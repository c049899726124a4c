// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/sessionchat/internal/config"
	"github.com/jeranaias/sessionchat/internal/conversation"
	"github.com/jeranaias/sessionchat/internal/prompt"
	"github.com/jeranaias/sessionchat/internal/remote"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a rejected credential
	ExitAuthError = 4
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

var (
	// ErrConfirmationRequired is returned when a destructive action needs
	// confirmation but no terminal is available to ask.
	ErrConfirmationRequired = errors.New("confirmation required: rerun with --yes")

	// ErrNotInteractive is returned by commands that only work on a terminal.
	ErrNotInteractive = errors.New("stdin is not a terminal")

	// ErrAmbiguousRef is returned when a reference matches several entries.
	ErrAmbiguousRef = errors.New("reference is ambiguous")
)

// CommandError wraps a failure with the command that produced it.
type CommandError struct {
	Command string
	Action  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	var verrs config.ValidateErrors
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, conversation.ErrProjectNotFound), errors.Is(err, conversation.ErrChatNotFound):
		return ExitNotFoundError
	case errors.Is(err, remote.ErrInvalidCredential):
		return ExitAuthError
	case errors.As(err, &verrs), errors.Is(err, prompt.ErrUnknownField):
		return ExitConfigError
	case errors.Is(err, ErrConfirmationRequired), errors.Is(err, ErrAmbiguousRef), errors.Is(err, conversation.ErrEmptyName):
		return ExitUsageError
	default:
		return ExitGeneralError
	}
}
