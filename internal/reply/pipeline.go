// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/jeranaias/sessionchat/internal/logging"
	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/prompt"
	"github.com/jeranaias/sessionchat/internal/rag"
	"github.com/jeranaias/sessionchat/internal/remote"
)

// HistoryLimit is how many recent messages accompany a remote request.
const HistoryLimit = 10

var (
	// ErrBusy is returned when a reply is already in progress.
	ErrBusy = errors.New("a reply is already in progress")

	// ErrEmptyInput is returned for blank user text.
	ErrEmptyInput = errors.New("message is empty")
)

// =============================================================================
// STATES AND EVENTS
// =============================================================================

// State is a pipeline stage.
type State int

const (
	StateIdle State = iota
	StateUserAppended
	StateRetrieving
	StateResponding
	StateErrorFallback
	StateStreaming
	StatePersisted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUserAppended:
		return "user-appended"
	case StateRetrieving:
		return "retrieving"
	case StateResponding:
		return "responding"
	case StateErrorFallback:
		return "error-fallback"
	case StateStreaming:
		return "streaming"
	case StatePersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

// Event reports progress to observers. During streaming Chunk holds the new
// piece and Text everything revealed so far.
type Event struct {
	State State
	Chunk string
	Text  string
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Completer produces a reply from role-tagged messages.
type Completer interface {
	Complete(ctx context.Context, messages []remote.ChatMessage) (string, error)
}

// ChatStore is the subset of the conversation store the pipeline mutates.
type ChatStore interface {
	Chat(projectID, chatID string) (*model.Chat, error)
	AppendMessage(projectID, chatID string, role model.Role, content, meta string) error
	SetLastMessageMeta(projectID, chatID, meta string) error
	SetChatTitle(projectID, chatID, title string) error
}

// Options carry the per-submission inputs.
type Options struct {
	Settings prompt.BotSettings
	// Remote is nil when no credential is configured or offline mode is on.
	Remote    Completer
	Documents []rag.Document
	OnEvent   func(Event)
}

// Result describes a finished submission.
type Result struct {
	UserMessage string
	Reply       string
	Snippets    []rag.Snippet
	UsedRemote  bool
	// Failed is set when the remote call failed and ErrorMessage was shown.
	Failed bool
	// Canceled is set when ctx ended during the remote call. The reply is
	// then ErrorMessage, like any other remote failure.
	Canceled bool
	// Title is the automatic title applied by this submission, if any.
	Title string
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline turns one user message into one persisted assistant reply. Only one
// submission runs at a time; a concurrent Submit fails fast with ErrBusy.
type Pipeline struct {
	store      ChatStore
	revealer   *Revealer
	maxResults int
	sem        *semaphore.Weighted
	running    atomic.Bool
	log        *log.Logger
}

// New creates a pipeline over store. A nil revealer uses the defaults; a
// non-positive maxResults uses rag.DefaultMaxResults.
func New(store ChatStore, revealer *Revealer, maxResults int) *Pipeline {
	if revealer == nil {
		revealer = NewRevealer()
	}
	if maxResults <= 0 {
		maxResults = rag.DefaultMaxResults
	}
	return &Pipeline{
		store:      store,
		revealer:   revealer,
		maxResults: maxResults,
		sem:        semaphore.NewWeighted(1),
		log:        logging.NewComponentLogger("reply"),
	}
}

// Busy reports whether a submission is in progress.
func (p *Pipeline) Busy() bool {
	return p.running.Load()
}

// Submit runs the full flow for text in the given chat. A ctx already done
// returns ctx.Err() with nothing appended. Once the user message is appended
// the flow always ends in StatePersisted: cancelling the remote call yields
// ErrorMessage and the reveal, meta and auto-title still run.
func (p *Pipeline) Submit(ctx context.Context, projectID, chatID, text string, opts Options) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if !p.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer p.sem.Release(1)
	p.running.Store(true)
	defer p.running.Store(false)

	emit := func(e Event) {
		p.log.Debug("state", "state", e.State.String())
		if opts.OnEvent != nil {
			opts.OnEvent(e)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// History is taken before the append so the new text is sent once.
	chat, err := p.store.Chat(projectID, chatID)
	if err != nil {
		return nil, err
	}
	history := chat.RecentConversation(HistoryLimit)

	if err := p.store.AppendMessage(projectID, chatID, model.RoleUser, text, ""); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}
	emit(Event{State: StateUserAppended, Text: text})

	emit(Event{State: StateRetrieving})
	snippets := rag.ScoreTop(text, opts.Documents, p.maxResults)

	emit(Event{State: StateResponding})
	res := &Result{UserMessage: text, Snippets: snippets}

	if opts.Remote == nil {
		res.Reply = FallbackReply(text, snippets)
	} else {
		res.UsedRemote = true
		messages := buildMessages(opts.Settings, snippets, history, text)
		reply, err := opts.Remote.Complete(ctx, messages)
		if err != nil {
			res.Canceled = ctx.Err() != nil
			p.log.Warn("remote reply failed", "err", err, "canceled", res.Canceled)
			res.Failed = true
			res.Reply = ErrorMessage
			emit(Event{State: StateErrorFallback})
		} else {
			res.Reply = reply
		}
	}

	revealed := p.revealer.Reveal(res.Reply, func(chunk, sofar string) {
		emit(Event{State: StateStreaming, Chunk: chunk, Text: sofar})
	})

	if err := p.store.AppendMessage(projectID, chatID, model.RoleAssistant, revealed, ""); err != nil {
		return res, fmt.Errorf("append reply: %w", err)
	}
	if err := p.store.SetLastMessageMeta(projectID, chatID, MetaText(len(opts.Documents))); err != nil {
		return res, fmt.Errorf("attach meta: %w", err)
	}

	if chat.AutoTitlePending {
		title := Title(text, snippets)
		if strings.TrimSpace(title) != "" {
			if err := p.store.SetChatTitle(projectID, chatID, title); err != nil {
				// The flag stays set, so the next submission tries again.
				p.log.Warn("auto-title failed", "err", err)
			} else {
				res.Title = title
			}
		}
	}

	emit(Event{State: StatePersisted, Text: revealed})
	return res, nil
}

// buildMessages assembles the remote request: directive (plus retrieved
// context), recent history, then the new user text.
func buildMessages(settings prompt.BotSettings, snippets []rag.Snippet, history []model.Message, text string) []remote.ChatMessage {
	messages := make([]remote.ChatMessage, 0, len(history)+2)
	messages = append(messages, remote.ChatMessage{
		Role:    model.RoleSystem,
		Content: systemMessage(prompt.Build(settings), snippets),
	})
	for _, m := range history {
		messages = append(messages, remote.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, remote.ChatMessage{Role: model.RoleUser, Content: text})
	return messages
}
