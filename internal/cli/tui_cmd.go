// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/rag"
	"github.com/jeranaias/sessionchat/internal/reply"
	"github.com/jeranaias/sessionchat/internal/ui/chat"
	"github.com/jeranaias/sessionchat/internal/ui/styles"
)

// newTUICmd instantiates and returns the tui command.
func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Full-screen chat view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsTTY() || !IsStdoutTTY() {
				return fmt.Errorf("tui: %w", ErrNotInteractive)
			}
			// Log lines would tear the alternate screen unless they go to a file.
			opts.discardLogs = true
			return withApp(cmd, opts, func(a *app) error {
				return runTUI(cmd.Context(), a, opts)
			})
		},
	}
}

func runTUI(ctx context.Context, a *app, opts *rootOptions) error {
	var (
		programMu sync.Mutex
		program   *tea.Program
	)
	stop, err := a.startWatcher(ctx, func(d rag.Document) {
		programMu.Lock()
		p := program
		programMu.Unlock()
		if p != nil {
			p.Send(chat.DocumentReloadedMsg{Name: d.Name})
		}
	})
	if err != nil {
		a.log.Warn("document watcher unavailable", "err", err)
	} else {
		defer stop()
	}

	if len(opts.Docs) > 0 {
		if _, err := a.session.LoadDocuments(opts.Docs...); err != nil {
			return err
		}
	}

	p := tea.NewProgram(chat.New(tuiBackend{a: a}, styles.NewTheme()), tea.WithAltScreen(), tea.WithContext(ctx))
	programMu.Lock()
	program = p
	programMu.Unlock()

	_, err = p.Run()
	return err
}

// tuiBackend adapts the app to the chat view.
type tuiBackend struct {
	a *app
}

func (b tuiBackend) Current() (*model.Project, *model.Chat, error) {
	p, err := b.a.session.CurrentProject()
	if err != nil {
		return nil, nil, err
	}
	c, err := b.a.session.CurrentChat()
	if err != nil {
		return nil, nil, err
	}
	return p, c, nil
}

func (b tuiBackend) Submit(ctx context.Context, text string, onEvent func(reply.Event)) (*reply.Result, error) {
	return b.a.submit(ctx, text, onEvent)
}

func (b tuiBackend) LoadDocuments(paths ...string) (int, error) {
	return b.a.session.LoadDocuments(paths...)
}

func (b tuiBackend) ClearDocuments() { b.a.session.ClearDocuments() }

func (b tuiBackend) DocumentCount() int { return b.a.session.Collection().Len() }

func (b tuiBackend) NewChat() error {
	_, err := b.a.session.NewChat("", false)
	return err
}

func (b tuiBackend) SelectChat(ref string) error {
	p, err := b.a.session.CurrentProject()
	if err != nil {
		return err
	}
	c, err := findChat(p, ref)
	if err != nil {
		return err
	}
	return b.a.session.SelectChat(c.ID)
}

func (b tuiBackend) RemoteEnabled() bool {
	c, err := b.a.completer()
	return err == nil && c != nil
}
