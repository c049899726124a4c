// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TERMINAL
// =============================================================================

// Width bounds for rendered Markdown.
const (
	DefaultTerminalWidth = 80
	MinTerminalWidth     = 40
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether stdin is a terminal. The REPL and TUI need one;
// "send" and "key set" read piped input otherwise.
func IsTTY() bool { return isTerminal(os.Stdin) }

// IsStdoutTTY reports whether stdout is a terminal. Chat output is printed
// as plain Markdown when it is not.
func IsStdoutTTY() bool { return isTerminal(os.Stdout) }

// CanPrompt reports whether survey prompts can be shown.
func CanPrompt() bool {
	return IsTTY() && IsStdoutTTY()
}

// GetTerminalWidth returns the stdout width clamped to MinTerminalWidth,
// or DefaultTerminalWidth when it cannot be read.
func GetTerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil || w <= 0:
		return DefaultTerminalWidth
	case w < MinTerminalWidth:
		return MinTerminalWidth
	default:
		return w
	}
}

// GetColorProfile picks the color profile for CLI output. NO_COLOR wins over
// FORCE_COLOR; without either, colors follow whether stdout is a terminal.
func GetColorProfile() termenv.Profile {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return termenv.Ascii
	case os.Getenv("FORCE_COLOR") != "", IsStdoutTTY():
		return termenv.ColorProfile()
	default:
		return termenv.Ascii
	}
}
