// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/sessionchat/internal/util"
)

// listNameWidth is the name column width in listings.
const listNameWidth = 32

// newProjectCmd instantiates and returns the project command.
func newProjectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "p"},
		Short:   "Create, rename, list and select projects",
	}
	cmd.AddCommand(
		newProjectNewCmd(opts),
		newProjectRenameCmd(opts),
		newProjectListCmd(opts),
		newProjectSelectCmd(opts),
	)
	return cmd
}

func newProjectNewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new [name...]",
		Short: "Create a project with an empty chat and select it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				pid, _, err := a.session.NewProject(strings.Join(args, " "))
				if err != nil {
					return &CommandError{Command: "project", Action: "new", Err: err}
				}
				p, err := a.store().Project(pid)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s %s %s\n",
					SuccessStyle.Render("Projekt erstellt:"), p.Name, DimStyle.Render("("+shortID(p.ID)+")"))
				return nil
			})
		},
	}
}

func newProjectRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project> <name...>",
		Short: "Rename a project (by number, id or name)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				p, err := findProject(a.store(), args[0])
				if err != nil {
					return err
				}
				name := strings.Join(args[1:], " ")
				if err := a.store().RenameProject(p.ID, name); err != nil {
					return &CommandError{Command: "project", Action: "rename", Err: err}
				}
				fmt.Fprintf(a.out, "%s %s → %s\n", SuccessStyle.Render("Projekt umbenannt:"), p.Name, strings.TrimSpace(name))
				return nil
			})
		},
	}
}

func newProjectListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				current, err := a.session.CurrentProject()
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, TitleStyle.Render("Projekte"))
				for i, p := range a.store().Projects() {
					marker := " "
					if p.ID == current.ID {
						marker = "*"
					}
					fmt.Fprintf(a.out, "%s %2d  %s  %s  %s\n",
						marker, i+1,
						util.PadRight(util.TruncateWidth(p.Name, listNameWidth), listNameWidth),
						DimStyle.Render(fmt.Sprintf("%d Chat(s)", len(p.Chats))),
						DimStyle.Render(shortID(p.ID)))
				}
				return nil
			})
		},
	}
}

func newProjectSelectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "select <project>",
		Aliases: []string{"use"},
		Short:   "Switch to a project and its first chat",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				p, err := findProject(a.store(), args[0])
				if err != nil {
					return err
				}
				if err := a.session.SelectProject(p.ID); err != nil {
					return err
				}
				c, err := a.session.CurrentChat()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s %s / %s\n", SuccessStyle.Render("Aktiv:"), p.Name, c.Name)
				return nil
			})
		},
	}
}
