// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/sessionchat/internal/config"
	"github.com/jeranaias/sessionchat/internal/conversation"
	"github.com/jeranaias/sessionchat/internal/logging"
	"github.com/jeranaias/sessionchat/internal/prompt"
	"github.com/jeranaias/sessionchat/internal/rag"
	"github.com/jeranaias/sessionchat/internal/remote"
	"github.com/jeranaias/sessionchat/internal/reply"
	"github.com/jeranaias/sessionchat/internal/session"
	"github.com/jeranaias/sessionchat/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
	Offline    bool
	Docs       []string
	Yes        bool

	discardLogs bool
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "sessionchat",
		Short:         "Chat with projects, session documents and keyword retrieval",
		Long:          "sessionchat organizes conversations into projects and chats, answers from\nsession documents via keyword retrieval and optionally asks a remote model.",
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.sessionchat/config.toml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.Offline, "offline", false, "never call the remote model")
	pf.StringArrayVar(&opts.Docs, "doc", nil, "session document to load (.txt, .md, .markdown, .csv); repeatable")
	pf.BoolVarP(&opts.Yes, "yes", "y", false, "assume yes for confirmations")

	root.AddCommand(
		newProjectCmd(opts),
		newChatCmd(opts),
		newSendCmd(opts),
		newReplCmd(opts),
		newTUICmd(opts),
		newSettingsCmd(opts),
		newKeyCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app bundles everything a command needs once storage is open.
type app struct {
	cfg      *config.Config
	data     *storage.Adapter
	session  *session.Manager
	pipeline *reply.Pipeline
	out      io.Writer
	log      *log.Logger
}

// loadConfig reads configuration and applies the persistent flags.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		config.LoadEnvFiles()
		cfg, err = config.LoadFromPath(opts.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Offline {
		cfg.Remote.Offline = true
	}
	return cfg, nil
}

// openApp loads configuration, opens storage and restores the selection.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := logging.Configure(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	if opts.discardLogs && cfg.Log.File == "" {
		logging.SetOutput(io.Discard)
	}

	path, err := cfg.StoragePath()
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(cfg.Storage.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	data := storage.NewAdapter(kv)

	store, err := conversation.Open(data, data)
	if err != nil {
		data.Close()
		return nil, err
	}

	mgr := session.NewManager(store, data)
	logger := logging.NewComponentLogger("cli")
	if err := mgr.Restore(); err != nil {
		logger.Warn("could not restore selection", "err", err)
	}

	revealer := &reply.Revealer{
		ChunkSize: cfg.Stream.ChunkSize,
		Delay:     cfg.Stream.ChunkDelay(),
		Sleep:     time.Sleep,
	}

	return &app{
		cfg:      cfg,
		data:     data,
		session:  mgr,
		pipeline: reply.New(store, revealer, cfg.Retrieval.MaxResults),
		out:      cmd.OutOrStdout(),
		log:      logger,
	}, nil
}

// withApp opens the app, runs fn and closes storage again.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) error {
	a, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// Close releases storage.
func (a *app) Close() error {
	return a.data.Close()
}

// store returns the conversation store.
func (a *app) store() *conversation.Store {
	return a.session.Store()
}

// completer resolves the remote client. It returns nil in offline mode, when
// no credential is stored or seeded from the environment, or when the seed is
// malformed.
func (a *app) completer() (reply.Completer, error) {
	if a.cfg.Remote.Offline {
		return nil, nil
	}

	key, err := a.data.Credential()
	if err != nil {
		return nil, err
	}
	if key == "" && a.cfg.Remote.EnvCredential != "" {
		// Stored keys passed this check in "key set"; seeds get it here.
		if err := remote.ValidateCredential(a.cfg.Remote.EnvCredential); err != nil {
			a.log.Warn("ignoring API key from environment, answering offline", "err", err)
			return nil, nil
		}
		key = a.cfg.Remote.EnvCredential
	}

	client, err := remote.NewClient(key, remote.Config{
		BaseURL:           a.cfg.Remote.BaseURL,
		Model:             a.cfg.Remote.Model,
		MaxTokens:         a.cfg.Remote.MaxTokens,
		Temperature:       a.cfg.Remote.Temperature,
		Timeout:           a.cfg.Remote.Timeout(),
		RequestsPerMinute: a.cfg.Remote.RequestsPerMinute,
	})
	if errors.Is(err, remote.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// replyOptions gathers settings, remote and documents for one submission.
func (a *app) replyOptions(onEvent func(reply.Event)) (reply.Options, error) {
	settings, err := a.data.LoadSettings()
	if err != nil {
		return reply.Options{}, err
	}
	completer, err := a.completer()
	if err != nil {
		return reply.Options{}, err
	}
	return reply.Options{
		Settings:  settings,
		Remote:    completer,
		Documents: a.session.Documents(),
		OnEvent:   onEvent,
	}, nil
}

// submit runs one reply in the current chat.
func (a *app) submit(ctx context.Context, text string, onEvent func(reply.Event)) (*reply.Result, error) {
	pid, cid, err := a.session.Current()
	if err != nil {
		return nil, err
	}
	opts, err := a.replyOptions(onEvent)
	if err != nil {
		return nil, err
	}
	return a.pipeline.Submit(ctx, pid, cid, text, opts)
}

// loadDocs loads session documents and prints the active count.
func (a *app) loadDocs(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	added, err := a.session.LoadDocuments(paths...)
	if err != nil {
		return err
	}
	if skipped := len(paths) - added; skipped > 0 {
		fmt.Fprintln(a.out, DimStyle.Render(fmt.Sprintf("%d Datei(en) übersprungen (nur .txt, .md, .markdown, .csv).", skipped)))
	}
	fmt.Fprintln(a.out, InfoStyle.Render(fmt.Sprintf("Session-RAG: %d Datei(en) aktiv.", a.session.Collection().Len())))
	return nil
}

// startWatcher reloads session documents when they change on disk. The
// returned function stops it.
func (a *app) startWatcher(ctx context.Context, onReload func(rag.Document)) (func(), error) {
	w, err := rag.NewWatcher(a.session.Collection())
	if err != nil {
		return nil, err
	}
	w.OnReload(func(d rag.Document) {
		a.log.Info("document reloaded", "name", d.Name)
		if onReload != nil {
			onReload(d)
		}
	})
	a.session.AttachWatcher(w)

	ctx, cancel := context.WithCancel(ctx)
	go w.Run(ctx)
	return func() {
		cancel()
		w.Close()
	}, nil
}

// settings loads the stored bot settings.
func (a *app) settings() (prompt.BotSettings, error) {
	return a.data.LoadSettings()
}

// interruptContext cancels on Ctrl+C or SIGTERM.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
