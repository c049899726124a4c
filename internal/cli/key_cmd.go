// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/jeranaias/sessionchat/internal/remote"
)

// newKeyCmd instantiates and returns the key command.
func newKeyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"apikey"},
		Short:   "Manage the API key for remote replies",
	}
	cmd.AddCommand(
		newKeySetCmd(opts),
		newKeyStatusCmd(opts),
		newKeyClearCmd(opts),
	)
	return cmd
}

func newKeySetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set [key]",
		Short: "Store an API key (prompted when omitted; \"-\" reads stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readKey(cmd, args)
			if err != nil {
				return err
			}
			key = strings.TrimSpace(key)
			if err := remote.ValidateCredential(key); err != nil {
				return &CommandError{Command: "key", Action: "set", Err: err}
			}

			return withApp(cmd, opts, func(a *app) error {
				if err := a.data.SetCredential(key); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s %s\n", SuccessStyle.Render("API Key gespeichert:"), remote.MaskCredential(key))
				return nil
			})
		},
	}
}

// readKey takes the key from args, stdin or a password prompt.
func readKey(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	if len(args) == 1 || !CanPrompt() {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	var key string
	err := survey.AskOne(&survey.Password{Message: "API Key (sk-...):"}, &key)
	return key, err
}

func newKeyStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				stored, err := a.data.Credential()
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, TitleStyle.Render("API Key"))
				switch {
				case stored != "":
					fmt.Fprintf(a.out, "  %s %s\n", RenderLabel("Gespeichert:"), remote.MaskCredential(stored))
				case a.cfg.Remote.EnvCredential != "":
					fmt.Fprintf(a.out, "  %s %s\n", RenderLabel("Umgebung:"), remote.MaskCredential(a.cfg.Remote.EnvCredential))
				default:
					fmt.Fprintf(a.out, "  %s %s\n", RenderLabel("Status:"), WarningStyle.Render("nicht gesetzt"))
				}

				mode := "remote (" + a.cfg.Remote.Model + ")"
				if c, err := a.completer(); err != nil || c == nil {
					mode = "offline"
				}
				fmt.Fprintf(a.out, "  %s %s\n", RenderLabel("Antworten:"), mode)
				return nil
			})
		},
	}
}

func newKeyClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				ok, err := RequireConfirmation("API Key wirklich löschen? Sie müssen dann einen neuen eingeben.", opts.Yes)
				if err != nil || !ok {
					return err
				}
				if err := a.data.ClearCredential(); err != nil {
					return err
				}
				fmt.Fprintln(a.out, SuccessStyle.Render("API Key gelöscht."))
				return nil
			})
		},
	}
}
