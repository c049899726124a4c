// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/jeranaias/sessionchat/internal/prompt"
)

// newSettingsCmd instantiates and returns the settings command.
func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change the bot settings",
	}
	cmd.AddCommand(
		newSettingsShowCmd(opts),
		newSettingsSetCmd(opts),
		newSettingsEditCmd(opts),
		newSettingsResetCmd(opts),
	)
	return cmd
}

func newSettingsShowCmd(opts *rootOptions) *cobra.Command {
	var showPrompt bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current bot settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				s, err := a.settings()
				if err != nil {
					return err
				}
				printSettings(a, s)
				if showPrompt {
					fmt.Fprintln(a.out)
					fmt.Fprintln(a.out, TitleStyle.Render("Systemanweisung"))
					fmt.Fprintln(a.out, prompt.Build(s))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showPrompt, "prompt", false, "also print the resulting system prompt")
	return cmd
}

func printSettings(a *app, s prompt.BotSettings) {
	fmt.Fprintln(a.out, TitleStyle.Render("Bot-Einstellungen"))
	for _, key := range prompt.Fields {
		v, _ := s.Get(key)
		fmt.Fprintf(a.out, "  %s %s\n", RenderLabel(key), ValueStyle.Render(v))
	}
}

func newSettingsSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: "Change one setting. Keys: personality, responseLength, formality,\n" +
			"explanationDepth, codeFocus, examplesFocus, stepByStep, askClarifications.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				s, err := a.settings()
				if err != nil {
					return err
				}
				if err := s.Set(args[0], args[1]); err != nil {
					return &CommandError{Command: "settings", Action: "set", Err: err}
				}
				if err := a.data.SaveSettings(s); err != nil {
					return err
				}
				v, _ := s.Get(args[0])
				fmt.Fprintf(a.out, "%s %s = %s\n", SuccessStyle.Render("Gespeichert:"), args[0], v)
				return nil
			})
		},
	}
}

func newSettingsEditCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit all settings interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !CanPrompt() {
				return fmt.Errorf("settings edit: %w; use \"settings set\"", ErrNotInteractive)
			}
			return withApp(cmd, opts, func(a *app) error {
				s, err := a.settings()
				if err != nil {
					return err
				}
				edited, err := editSettings(s)
				if errors.Is(err, terminal.InterruptErr) {
					fmt.Fprintln(a.out, WarningStyle.Render("Abgebrochen, nichts gespeichert."))
					return nil
				}
				if err != nil {
					return err
				}
				if err := a.data.SaveSettings(edited); err != nil {
					return err
				}
				fmt.Fprintln(a.out, SuccessStyle.Render("Einstellungen gespeichert."))
				return nil
			})
		},
	}
}

// editSettings asks for every setting, starting from s.
func editSettings(s prompt.BotSettings) (prompt.BotSettings, error) {
	answers := struct {
		Personality       string
		ResponseLength    string
		Formality         string
		ExplanationDepth  string
		CodeFocus         bool
		ExamplesFocus     bool
		StepByStep        bool
		AskClarifications bool
	}{}

	qs := []*survey.Question{
		{Name: "personality", Prompt: &survey.Select{
			Message: "Persönlichkeit:", Options: toStrings(prompt.Personalities), Default: string(s.Personality)}},
		{Name: "responseLength", Prompt: &survey.Select{
			Message: "Antwortlänge:", Options: toStrings(prompt.ResponseLengths), Default: string(s.ResponseLength)}},
		{Name: "formality", Prompt: &survey.Select{
			Message: "Anrede:", Options: toStrings(prompt.Formalities), Default: string(s.Formality)}},
		{Name: "explanationDepth", Prompt: &survey.Select{
			Message: "Erklärungstiefe:", Options: toStrings(prompt.Depths), Default: string(s.ExplanationDepth)}},
		{Name: "codeFocus", Prompt: &survey.Confirm{Message: "Code-Beispiele bevorzugen?", Default: s.CodeFocus}},
		{Name: "examplesFocus", Prompt: &survey.Confirm{Message: "Praxisbeispiele einbauen?", Default: s.ExamplesFocus}},
		{Name: "stepByStep", Prompt: &survey.Confirm{Message: "Schritt für Schritt erklären?", Default: s.StepByStep}},
		{Name: "askClarifications", Prompt: &survey.Confirm{Message: "Bei Unklarheiten nachfragen?", Default: s.AskClarifications}},
	}
	if err := survey.Ask(qs, &answers); err != nil {
		return s, err
	}

	out := prompt.BotSettings{
		Personality:       prompt.Personality(answers.Personality),
		ResponseLength:    prompt.ResponseLength(answers.ResponseLength),
		Formality:         prompt.Formality(answers.Formality),
		ExplanationDepth:  prompt.Depth(answers.ExplanationDepth),
		CodeFocus:         answers.CodeFocus,
		ExamplesFocus:     answers.ExamplesFocus,
		StepByStep:        answers.StepByStep,
		AskClarifications: answers.AskClarifications,
	}
	return out, out.Validate()
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func newSettingsResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ok, err := RequireConfirmation("Alle Bot-Einstellungen auf Standard zurücksetzen?", opts.Yes)
				if err != nil || !ok {
					return err
				}
				if err := a.data.SaveSettings(prompt.Defaults()); err != nil {
					return err
				}
				fmt.Fprintln(a.out, SuccessStyle.Render("Einstellungen zurückgesetzt."))
				return nil
			})
		},
	}
}
