// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/sessionchat/internal/conversation"
	"github.com/jeranaias/sessionchat/internal/logging"
	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/rag"
	"github.com/jeranaias/sessionchat/internal/storage"
)

// SelectionStore remembers the current selection between runs.
type SelectionStore interface {
	LoadSelection() (storage.Selection, error)
	SaveSelection(sel storage.Selection) error
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks the current project and chat plus the session documents.
// Switching or creating a project or chat clears the documents. Whenever the
// current chat is asked for and none exists, one is created.
type Manager struct {
	mu sync.Mutex

	store     *conversation.Store
	selection SelectionStore

	projectID string
	chatID    string

	docs    *rag.Collection
	watcher *rag.Watcher

	log *log.Logger
}

// NewManager creates a manager. selection may be nil.
func NewManager(store *conversation.Store, selection SelectionStore) *Manager {
	return &Manager{
		store:     store,
		selection: selection,
		docs:      rag.NewCollection(),
		log:       logging.NewComponentLogger("session"),
	}
}

// Store returns the conversation store.
func (m *Manager) Store() *conversation.Store { return m.store }

// Restore loads the remembered selection. Stale ids are dropped quietly and
// replaced by the usual fallback on the next Current call.
func (m *Manager) Restore() error {
	if m.selection == nil {
		return nil
	}
	sel, err := m.selection.LoadSelection()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectID = sel.ProjectID
	m.chatID = sel.ChatID
	return nil
}

// Current returns the current project and chat ids, creating "Projekt 1"
// and a pending "Neuer Chat" as needed.
func (m *Manager) Current() (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureLocked(); err != nil {
		return "", "", err
	}
	return m.projectID, m.chatID, nil
}

// CurrentProject returns a copy of the current project.
func (m *Manager) CurrentProject() (*model.Project, error) {
	pid, _, err := m.Current()
	if err != nil {
		return nil, err
	}
	return m.store.Project(pid)
}

// CurrentChat returns a copy of the current chat.
func (m *Manager) CurrentChat() (*model.Chat, error) {
	pid, cid, err := m.Current()
	if err != nil {
		return nil, err
	}
	return m.store.Chat(pid, cid)
}

// ensureLocked repairs the selection. Caller must hold m.mu.
func (m *Manager) ensureLocked() error {
	before := storage.Selection{ProjectID: m.projectID, ChatID: m.chatID}

	projects := m.store.Projects()
	var project *model.Project
	for _, p := range projects {
		if p.ID == m.projectID {
			project = p
			break
		}
	}
	if project == nil {
		if len(projects) > 0 {
			project = projects[0]
		} else {
			id, err := m.store.CreateProject(model.DefaultProjectName)
			if err != nil {
				return fmt.Errorf("create default project: %w", err)
			}
			if project, err = m.store.Project(id); err != nil {
				return err
			}
		}
		m.projectID = project.ID
		m.chatID = ""
	}

	if c, _ := project.FindChat(m.chatID); c == nil {
		if len(project.Chats) > 0 {
			m.chatID = project.Chats[0].ID
		} else {
			id, err := m.store.CreateChat(project.ID, model.DefaultChatName, true)
			if err != nil {
				return fmt.Errorf("create default chat: %w", err)
			}
			m.chatID = id
		}
	}

	after := storage.Selection{ProjectID: m.projectID, ChatID: m.chatID}
	if after != before {
		m.saveLocked()
	}
	return nil
}

func (m *Manager) saveLocked() {
	if m.selection == nil {
		return
	}
	sel := storage.Selection{ProjectID: m.projectID, ChatID: m.chatID}
	if err := m.selection.SaveSelection(sel); err != nil {
		m.log.Warn("failed to save selection", "err", err)
	}
}

// selectLocked switches the selection and drops the session documents.
func (m *Manager) selectLocked(projectID, chatID string) {
	m.projectID = projectID
	m.chatID = chatID
	m.clearDocsLocked()
	m.saveLocked()
}

// =============================================================================
// PROJECT AND CHAT ACTIONS
// =============================================================================

// NewProject creates a project with a pending default chat and selects it.
func (m *Manager) NewProject(name string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pid, err := m.store.CreateProject(name)
	if err != nil {
		return "", "", err
	}
	cid, err := m.store.CreateChat(pid, model.DefaultChatName, true)
	if err != nil {
		return "", "", err
	}
	m.selectLocked(pid, cid)
	return pid, cid, nil
}

// NewChat creates a chat in the current project and selects it.
func (m *Manager) NewChat(name string, autoTitlePending bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLocked(); err != nil {
		return "", err
	}
	cid, err := m.store.CreateChat(m.projectID, name, autoTitlePending)
	if err != nil {
		return "", err
	}
	m.selectLocked(m.projectID, cid)
	return cid, nil
}

// SelectProject switches to a project and its first chat.
func (m *Manager) SelectProject(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.store.Project(id); err != nil {
		return err
	}
	m.selectLocked(id, "")
	return m.ensureLocked()
}

// SelectChat switches to a chat of the current project.
func (m *Manager) SelectChat(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLocked(); err != nil {
		return err
	}
	if _, err := m.store.Chat(m.projectID, id); err != nil {
		return err
	}
	m.selectLocked(m.projectID, id)
	return nil
}

// DeleteChat removes a chat of the current project. The first remaining
// chat becomes current; if none remains a pending one is created.
func (m *Manager) DeleteChat(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureLocked(); err != nil {
		return err
	}
	if err := m.store.DeleteChat(m.projectID, id); err != nil {
		return err
	}
	m.selectLocked(m.projectID, "")
	return m.ensureLocked()
}

// =============================================================================
// SESSION DOCUMENTS
// =============================================================================

// AttachWatcher makes newly loaded documents reload on change.
func (m *Manager) AttachWatcher(w *rag.Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watcher = w
}

// Collection returns the live document collection.
func (m *Manager) Collection() *rag.Collection { return m.docs }

// LoadDocuments adds the supported files among paths and returns how many
// were added. Unsupported files are skipped.
func (m *Manager) LoadDocuments(paths ...string) (int, error) {
	docs, err := rag.LoadFiles(paths...)
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs.Add(docs...)
	if m.watcher != nil {
		for _, d := range docs {
			if werr := m.watcher.Track(d.Path); werr != nil {
				m.log.Warn("cannot watch document", "path", d.Path, "err", werr)
			}
		}
	}
	m.log.Info("documents loaded", "added", len(docs), "active", m.docs.Len())
	return len(docs), err
}

// Documents returns the active documents in load order.
func (m *Manager) Documents() []rag.Document {
	return m.docs.Docs()
}

// ClearDocuments drops every session document.
func (m *Manager) ClearDocuments() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearDocsLocked()
}

func (m *Manager) clearDocsLocked() {
	m.docs.Clear()
	if m.watcher != nil {
		m.watcher.Untrack()
	}
}
