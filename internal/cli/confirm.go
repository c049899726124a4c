// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// =============================================================================
// CONFIRMATION HANDLING
// =============================================================================

// canPrompt reports whether a prompt can be shown. Replaced in tests.
var canPrompt = CanPrompt

// askConfirm shows a yes/no prompt. Replaced in tests.
var askConfirm = func(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok)
	return ok, err
}

// RequireConfirmation checks if the user has confirmed a destructive action.
//
// Confirmation flow:
//  1. If assumeYes is true (--yes), return true immediately
//  2. If no terminal is attached, return ErrConfirmationRequired
//  3. Otherwise ask; Ctrl+C counts as "no"
func RequireConfirmation(message string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !canPrompt() {
		return false, ErrConfirmationRequired
	}

	ok, err := askConfirm(message)
	if errors.Is(err, terminal.InterruptErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
