// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/sessionchat/internal/conversation"
	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/util"
)

// newChatCmd instantiates and returns the chat command.
func newChatCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chat",
		Aliases: []string{"chats", "c"},
		Short:   "Manage chats of the current project",
	}
	cmd.AddCommand(
		newChatNewCmd(opts),
		newChatRenameCmd(opts),
		newChatDeleteCmd(opts),
		newChatSelectCmd(opts),
		newChatListCmd(opts),
		newChatShowCmd(opts),
		newChatExportCmd(opts),
	)
	return cmd
}

// currentOrRef returns the chat named by args[0], or the current chat.
func currentOrRef(a *app, args []string) (*model.Project, *model.Chat, error) {
	p, err := a.session.CurrentProject()
	if err != nil {
		return nil, nil, err
	}
	if len(args) == 0 {
		c, err := a.session.CurrentChat()
		return p, c, err
	}
	c, err := findChat(p, args[0])
	return p, c, err
}

func newChatNewCmd(opts *rootOptions) *cobra.Command {
	var autoTitle bool

	cmd := &cobra.Command{
		Use:   "new [name...]",
		Short: "Create a chat in the current project and select it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if _, err := a.session.NewChat(strings.Join(args, " "), autoTitle); err != nil {
					return &CommandError{Command: "chat", Action: "new", Err: err}
				}
				c, err := a.session.CurrentChat()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s %s %s\n",
					SuccessStyle.Render("Chat erstellt:"), c.Name, DimStyle.Render("("+shortID(c.ID)+")"))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&autoTitle, "auto-title", false, "title the chat from its first message")
	return cmd
}

func newChatRenameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <chat> <name...>",
		Short: "Rename a chat (by number, id or name)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				p, c, err := currentOrRef(a, args[:1])
				if err != nil {
					return err
				}
				name := strings.Join(args[1:], " ")
				if err := a.store().RenameChat(p.ID, c.ID, name); err != nil {
					return &CommandError{Command: "chat", Action: "rename", Err: err}
				}
				fmt.Fprintf(a.out, "%s %s → %s\n", SuccessStyle.Render("Chat umbenannt:"), c.Name, strings.TrimSpace(name))
				return nil
			})
		},
	}
}

func newChatDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <chat>",
		Aliases: []string{"rm"},
		Short:   "Delete a chat",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				_, c, err := currentOrRef(a, args)
				if err != nil {
					return err
				}

				ok, err := RequireConfirmation(fmt.Sprintf("Chat %q wirklich löschen?", c.Name), opts.Yes)
				if err != nil || !ok {
					return err
				}

				if err := a.session.DeleteChat(c.ID); err != nil {
					return &CommandError{Command: "chat", Action: "delete", Err: err}
				}
				next, err := a.session.CurrentChat()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s %s\n", SuccessStyle.Render("Chat gelöscht:"), c.Name)
				fmt.Fprintf(a.out, "%s %s\n", DimStyle.Render("Aktiv:"), next.Name)
				return nil
			})
		},
	}
}

func newChatSelectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "select <chat>",
		Aliases: []string{"use"},
		Short:   "Switch to a chat of the current project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				p, c, err := currentOrRef(a, args)
				if err != nil {
					return err
				}
				if err := a.session.SelectChat(c.ID); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s %s / %s\n", SuccessStyle.Render("Aktiv:"), p.Name, c.Name)
				return nil
			})
		},
	}
}

func newChatListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List chats of the current project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				p, current, err := currentOrRef(a, nil)
				if err != nil {
					return err
				}

				fmt.Fprintln(a.out, TitleStyle.Render(p.Name))
				for i, c := range p.Chats {
					marker := " "
					if c.ID == current.ID {
						marker = "*"
					}
					preview := ""
					if last := c.LastMessage(); last != nil {
						preview = last.Preview(40)
					}
					fmt.Fprintf(a.out, "%s %2d  %s  %s  %s\n",
						marker, i+1,
						util.PadRight(util.TruncateWidth(c.Name, listNameWidth), listNameWidth),
						DimStyle.Render(fmt.Sprintf("%3d Nachr.", len(c.Messages))),
						DimStyle.Render(preview))
				}
				return nil
			})
		},
	}
}

func newChatShowCmd(opts *rootOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show [chat]",
		Short: "Show a chat's messages (default: current chat)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				p, c, err := currentOrRef(a, args)
				if err != nil {
					return err
				}
				md := conversation.RenderMarkdown(p.Name, c)
				if raw || !IsStdoutTTY() {
					_, err := io.WriteString(a.out, md)
					return err
				}
				return renderMarkdown(a.out, md)
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without rendering")
	return cmd
}

func newChatExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [chat]",
		Short: "Export a chat as Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				p, c, err := currentOrRef(a, args)
				if err != nil {
					return err
				}
				md, err := a.store().ExportMarkdown(p.ID, c.ID)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err := io.WriteString(a.out, md)
					return err
				}
				if err := util.AtomicWriteFile(output, []byte(md), 0644, 0755); err != nil {
					return &CommandError{Command: "chat", Action: "export", Err: err}
				}
				fmt.Fprintf(a.out, "%s %s\n", SuccessStyle.Render("Exportiert:"), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

// renderMarkdown renders md for the terminal with glamour.
func renderMarkdown(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()-4),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
