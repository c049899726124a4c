// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/reply"
)

// newSendCmd instantiates and returns the send command.
func newSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <text...>",
		Short: "Send one message to the current chat and print the reply",
		Long: "Send one message to the current chat and print the reply.\n" +
			"Use \"-\" to read the message from stdin. Session documents come from --doc.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			}

			return withApp(cmd, opts, func(a *app) error {
				if err := a.loadDocs(opts.Docs...); err != nil {
					return err
				}
				ctx, cancel := interruptContext(cmd.Context())
				defer cancel()
				_, err := a.printReply(ctx, text)
				return err
			})
		},
	}
}

// printReply submits text and streams the reply to the app's output.
func (a *app) printReply(ctx context.Context, text string) (*reply.Result, error) {
	started := false
	res, err := a.submit(ctx, text, func(e reply.Event) {
		switch e.State {
		case reply.StateErrorFallback:
			a.log.Debug("remote failed, showing error text")
		case reply.StateStreaming:
			if !started {
				fmt.Fprint(a.out, roleStyle(model.RoleAssistant).Render(model.RoleAssistant.DisplayName()+":")+" ")
				started = true
			}
			fmt.Fprint(a.out, e.Chunk)
		}
	})
	if started {
		fmt.Fprintln(a.out)
	}
	if err != nil {
		return res, err
	}

	if meta := reply.MetaText(len(a.session.Documents())); meta != "" {
		fmt.Fprintln(a.out, DimStyle.Render("  "+meta))
	}
	if res.Title != "" {
		fmt.Fprintln(a.out, DimStyle.Render("  Titel: "+res.Title))
	}
	return res, nil
}
