// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/sessionchat/internal/model"
)

// Theme holds the styled components of the chat view.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND STATUS BAR
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderChat  lipgloss.Style
	StatusBar   lipgloss.Style
	ModeRemote  lipgloss.Style
	ModeOffline lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLine     lipgloss.Style
	Body           lipgloss.Style
	Timestamp      lipgloss.Style
	Pill           lipgloss.Style

	// ==========================================================================
	// INPUT
	// ==========================================================================

	InputFocused lipgloss.Style
	InputBlurred lipgloss.Style
	Hint         lipgloss.Style
	Error        lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.HeaderChat = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ModeRemote = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)
	t.ModeOffline = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)
	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)
	t.SystemLine = lipgloss.NewStyle().
		Foreground(SystemFg).
		Italic(true)
	t.Body = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Pill = lipgloss.NewStyle().
		Foreground(PillFg).
		Background(PillBg).
		Padding(0, 1).
		MarginLeft(2)

	t.InputFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple)
	t.InputBlurred = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)
	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Error = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LabelFor returns the label style of a message author.
func (t *Theme) LabelFor(r model.Role) lipgloss.Style {
	switch r {
	case model.RoleUser:
		return t.UserLabel
	case model.RoleAssistant:
		return t.AssistantLabel
	default:
		return t.SystemLine
	}
}
