// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/reply"
	"github.com/jeranaias/sessionchat/internal/ui/styles"
)

// Backend is what the chat view needs from the application.
type Backend interface {
	// Current returns copies of the current project and chat.
	Current() (*model.Project, *model.Chat, error)
	// Submit runs one reply in the current chat, reporting progress to onEvent.
	Submit(ctx context.Context, text string, onEvent func(reply.Event)) (*reply.Result, error)
	LoadDocuments(paths ...string) (int, error)
	ClearDocuments()
	DocumentCount() int
	NewChat() error
	// SelectChat switches by number, id or name within the current project.
	SelectChat(ref string) error
	// RemoteEnabled reports whether replies come from the remote model.
	RemoteEnabled() bool
}

// eventBuffer bounds how far the pipeline goroutine may run ahead of the UI.
const eventBuffer = 64

// layout rows outside the viewport: header, status bar, input with border.
const (
	headerRows = 1
	statusRows = 1
	inputRows  = 3
	chromeRows = headerRows + statusRows + inputRows + 2
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat view.
type Model struct {
	backend Backend
	theme   *styles.Theme
	keys    KeyMap

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	projectName string
	chatName    string
	log         []model.MessageView
	notices     []model.MessageView

	// pending is the reply text revealed so far while streaming.
	pending string
	state   reply.State
	busy    bool
	err     error
	// quitting defers Quit until the running reply is persisted.
	quitting bool

	events chan tea.Msg
	cancel context.CancelFunc

	width  int
	height int
	ready  bool
}

// New creates the chat view over backend.
func New(backend Backend, theme *styles.Theme) Model {
	if theme == nil {
		theme = styles.NewTheme()
	}

	ta := textarea.New()
	ta.Placeholder = "Nachricht eingeben... (/load <datei>, /new, /chat <nr>, /clear)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 8000
	ta.SetHeight(inputRows)
	ta.KeyMap.InsertNewline = DefaultKeyMap().Newline
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinnerFrom(styles.LineSpinner)

	m := Model{
		backend:  backend,
		theme:    theme,
		keys:     DefaultKeyMap(),
		viewport: viewport.New(80, 20),
		input:    ta,
		spinner:  sp,
		events:   make(chan tea.Msg, eventBuffer),
	}
	m.refresh()
	return m
}

// spinnerFrom converts a style spinner into a bubbles spinner.
func spinnerFrom(c styles.SpinnerConfig) spinner.Spinner {
	return spinner.Spinner{Frames: c.Frames, FPS: c.Duration()}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the event listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForEvent(m.events))
}

// waitForEvent delivers the next message from the pipeline goroutine.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReplyEventMsg:
		m.handleEvent(msg.Event)
		return m, waitForEvent(m.events)

	case ReplyDoneMsg:
		m.busy = false
		m.pending = ""
		m.state = reply.StateIdle
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		switch {
		case errors.Is(msg.Err, context.Canceled), msg.Err == nil && msg.Result != nil && msg.Result.Canceled:
			m.notice("Anfrage abgebrochen.")
		case msg.Err != nil:
			m.err = msg.Err
		}
		m.refresh()
		if m.quitting {
			return m, tea.Quit
		}
		m.input.Focus()
		return m, waitForEvent(m.events)

	case DocumentReloadedMsg:
		m.notice(fmt.Sprintf("Neu geladen: %s", msg.Name))
		m.render()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if !m.busy {
			return *m, tea.Quit
		}
		// A second Quit also cancels the remote call.
		if m.quitting && m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		m.notice("Beende nach der laufenden Antwort...")
		m.render()
		return *m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.busy && m.cancel != nil {
			m.cancel()
		}
		return *m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return *m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return *m, nil

	case key.Matches(msg, m.keys.NewChat):
		if m.busy {
			return *m, nil
		}
		m.runCommand("/new")
		return *m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.busy {
			return *m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return *m, nil
		}
		m.input.Reset()
		m.err = nil
		if strings.HasPrefix(text, "/") {
			if quit := m.runCommand(text); quit {
				return *m, tea.Quit
			}
			return *m, nil
		}
		return *m, m.submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return *m, cmd
}

// submit starts the pipeline in a goroutine. Progress arrives as
// ReplyEventMsg and the end as ReplyDoneMsg.
func (m *Model) submit(text string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.busy = true
	m.state = reply.StateIdle
	m.spinner.Spinner = spinnerFrom(styles.LineSpinner)
	m.input.Blur()

	backend, ch := m.backend, m.events
	go func() {
		res, err := backend.Submit(ctx, text, func(e reply.Event) {
			ch <- ReplyEventMsg{Event: e}
		})
		ch <- ReplyDoneMsg{Result: res, Err: err}
	}()
	return m.spinner.Tick
}

func (m *Model) handleEvent(e reply.Event) {
	m.state = e.State
	switch e.State {
	case reply.StateUserAppended:
		m.refresh()
	case reply.StateStreaming:
		if m.pending == "" {
			m.spinner.Spinner = spinnerFrom(styles.DotsSpinner)
		}
		m.pending = e.Text
		m.render()
	case reply.StatePersisted:
		m.pending = ""
		m.refresh()
	}
}

// runCommand executes a slash command and reports whether to quit.
func (m *Model) runCommand(input string) bool {
	parts := strings.Fields(input)
	args := parts[1:]

	switch strings.ToLower(parts[0]) {
	case "/quit", "/q", "/exit":
		return true

	case "/load", "/l":
		if len(args) == 0 {
			m.err = errors.New("usage: /load <datei>...")
			break
		}
		if _, err := m.backend.LoadDocuments(args...); err != nil {
			m.err = err
		}
		m.notice(fmt.Sprintf("Session-RAG: %d Datei(en) aktiv.", m.backend.DocumentCount()))

	case "/clear":
		m.backend.ClearDocuments()
		m.notice("Session-RAG: 0 Datei(en) aktiv.")

	case "/new":
		if err := m.backend.NewChat(); err != nil {
			m.err = err
			break
		}
		m.notices = nil

	case "/chat", "/switch":
		if len(args) == 0 {
			m.err = errors.New("usage: /chat <nr|name>")
			break
		}
		if err := m.backend.SelectChat(strings.Join(args, " ")); err != nil {
			m.err = err
			break
		}
		m.notices = nil

	default:
		m.err = fmt.Errorf("unknown command: %s", parts[0])
	}
	m.refresh()
	return false
}

// notice adds a session-only info line to the log.
func (m *Model) notice(text string) {
	m.notices = append(m.notices, model.MessageView{
		Role:  model.RoleSystem,
		Label: model.RoleSystem.DisplayName(),
		Body:  text,
	})
}

// refresh reloads the current chat from the backend and re-renders.
func (m *Model) refresh() {
	p, c, err := m.backend.Current()
	if err != nil {
		m.err = err
		return
	}
	m.projectName = p.Name
	m.chatName = c.Name
	m.log = model.ToViews(c.Messages)
	m.render()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.theme.SetSize(width, height)

	vpHeight := height - chromeRows
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.SetWidth(width - 2)
	m.ready = true
	m.render()
}

// render rebuilds the viewport content and keeps the bottom in view.
func (m *Model) render() {
	m.viewport.SetContent(m.renderLog())
	m.viewport.GotoBottom()
}
