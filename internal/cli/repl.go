// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/sessionchat/internal/config"
	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/rag"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader provides input history and line editing for the REPL.
type lineReader struct {
	line        *liner.State
	historyFile string
}

func newLineReader() *lineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	r := &lineReader{
		line:        line,
		historyFile: filepath.Join(configDir, "repl_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

// ReadInput reads a line of input with the given prompt.
func (r *lineReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history with 0600 permissions and restores the terminal.
func (r *lineReader) Close() {
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			r.line.WriteHistory(f)
			f.Close()
		}
	}
	r.line.Close()
}

// =============================================================================
// REPL COMMAND
// =============================================================================

// newReplCmd instantiates and returns the repl command.
func newReplCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive chat in the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsTTY() {
				return fmt.Errorf("repl: %w; use \"send\" for piped input", ErrNotInteractive)
			}
			return withApp(cmd, opts, func(a *app) error {
				return runREPL(cmd.Context(), a, opts)
			})
		},
	}
}

func runREPL(ctx context.Context, a *app, opts *rootOptions) error {
	stop, err := a.startWatcher(ctx, func(d rag.Document) {
		fmt.Fprintln(a.out, "\n"+DimStyle.Render("Neu geladen: "+d.Name))
	})
	if err != nil {
		a.log.Warn("document watcher unavailable", "err", err)
	} else {
		defer stop()
	}

	if err := a.loadDocs(opts.Docs...); err != nil {
		return err
	}

	printWelcome(a)

	in := newLineReader()
	defer in.Close()

	for {
		input, err := in.ReadInput(PromptStyle.Render(model.RoleUser.DisplayName() + "> "))
		if err != nil {
			// Ctrl+C, Ctrl+D and read errors all end the session.
			fmt.Fprintln(a.out)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := handleSlashCommand(a, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Fehler]"), err)
			}
			if !cont {
				return nil
			}
			continue
		}

		sendCtx, cancel := interruptContext(ctx)
		res, err := a.printReply(sendCtx, input)
		cancel()
		switch {
		case errors.Is(err, context.Canceled), err == nil && res.Canceled:
			fmt.Fprintln(a.out, WarningStyle.Render("[Abgebrochen]"))
		case err != nil:
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Fehler]"), err)
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(a *app, input string) (bool, error) {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printHelp(a)

	case "/load", "/l":
		if len(args) == 0 {
			return true, errors.New("usage: /load <file>...")
		}
		return true, a.loadDocs(args...)

	case "/docs":
		docs := a.session.Documents()
		if len(docs) == 0 {
			fmt.Fprintln(a.out, DimStyle.Render("Keine Session-Dateien."))
		}
		for i, d := range docs {
			fmt.Fprintf(a.out, "  %d. %s %s\n", i+1, d.Name, DimStyle.Render(fmt.Sprintf("(%d Bytes)", d.Size)))
		}

	case "/clear":
		a.session.ClearDocuments()
		fmt.Fprintln(a.out, InfoStyle.Render("Session-RAG: 0 Datei(en) aktiv."))

	case "/new":
		if _, err := a.session.NewChat(strings.Join(args, " "), false); err != nil {
			return true, err
		}
		printCurrent(a)

	case "/chat", "/switch":
		if len(args) == 0 {
			printCurrent(a)
			return true, nil
		}
		p, err := a.session.CurrentProject()
		if err != nil {
			return true, err
		}
		c, err := findChat(p, strings.Join(args, " "))
		if err != nil {
			return true, err
		}
		if err := a.session.SelectChat(c.ID); err != nil {
			return true, err
		}
		printCurrent(a)

	case "/history":
		c, err := a.session.CurrentChat()
		if err != nil {
			return true, err
		}
		printHistory(a, c)

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
	return true, nil
}

// printWelcome prints the session header.
func printWelcome(a *app) {
	fmt.Fprintln(a.out, TitleStyle.Render("sessionchat"))
	printCurrent(a)
	mode := "offline (Auszüge aus Session-Dateien)"
	if c, err := a.completer(); err == nil && c != nil {
		mode = "remote (" + a.cfg.Remote.Model + ")"
	}
	fmt.Fprintf(a.out, "%s %s\n", RenderLabel("Antworten:", 12), mode)
	fmt.Fprintln(a.out, DimStyle.Render("Nachricht eingeben und Enter drücken. Befehle: /help, /quit"))
	fmt.Fprintln(a.out)
}

func printCurrent(a *app) {
	p, err := a.session.CurrentProject()
	if err != nil {
		return
	}
	c, err := a.session.CurrentChat()
	if err != nil {
		return
	}
	fmt.Fprintf(a.out, "%s %s / %s\n", RenderLabel("Chat:", 12), p.Name, c.Name)
}

// printHelp prints available commands.
func printHelp(a *app) {
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/load <datei>...", "Session-Dateien laden"},
		{"/docs", "Aktive Session-Dateien anzeigen"},
		{"/clear", "Session-Dateien entfernen"},
		{"/new [name]", "Neuen Chat beginnen"},
		{"/chat [chat]", "Chat anzeigen oder wechseln"},
		{"/history", "Verlauf des Chats anzeigen"},
		{"/quit", "Beenden"},
	}

	fmt.Fprintln(a.out)
	for _, c := range commands {
		fmt.Fprintf(a.out, "  %s  %s\n", InfoStyle.Render(fmt.Sprintf("%-18s", c.cmd)), c.desc)
	}
	fmt.Fprintln(a.out)
}

// printHistory prints the messages of a chat.
func printHistory(a *app, c *model.Chat) {
	if len(c.Messages) == 0 {
		fmt.Fprintln(a.out, DimStyle.Render("Noch keine Nachrichten."))
		return
	}
	fmt.Fprintln(a.out, TitleStyle.Render(c.Name))
	fmt.Fprintln(a.out, RenderSeparator(min(GetTerminalWidth(), 70)))
	for _, v := range model.ToViews(c.Messages) {
		header := roleStyle(v.Role).Render(v.Label)
		if v.Time != "" {
			header += " " + DimStyle.Render(v.Time)
		}
		fmt.Fprintln(a.out, header)
		fmt.Fprintln(a.out, v.Body)
		if v.HasPill {
			fmt.Fprintln(a.out, DimStyle.Render("  "+v.Pill))
		}
		fmt.Fprintln(a.out)
	}
}
