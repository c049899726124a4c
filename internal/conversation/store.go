// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/sessionchat/internal/logging"
	"github.com/jeranaias/sessionchat/internal/model"
)

// Persister writes a full snapshot of the project tree.
type Persister interface {
	SaveProjects(projects []*model.Project) error
}

// Loader reads the stored project tree.
type Loader interface {
	LoadProjects() ([]*model.Project, error)
}

// =============================================================================
// STORE
// =============================================================================

// Store is the only mutator of the project tree. Every mutation persists a
// full snapshot before returning; when persisting fails the tree is restored
// and the error returned. Reads hand out deep copies.
type Store struct {
	mu       sync.RWMutex
	projects []*model.Project
	persist  Persister
	log      *log.Logger
}

// NewStore wraps an already loaded tree.
func NewStore(projects []*model.Project, persist Persister) *Store {
	if projects == nil {
		projects = []*model.Project{}
	}
	return &Store{
		projects: projects,
		persist:  persist,
		log:      logging.NewComponentLogger("store"),
	}
}

// Open loads the tree from src and persists through dst.
func Open(src Loader, dst Persister) (*Store, error) {
	projects, err := src.LoadProjects()
	if err != nil {
		return nil, fmt.Errorf("open conversation store: %w", err)
	}
	return NewStore(projects, dst), nil
}

// mutate runs fn on the live tree and persists the result, rolling back on
// any failure. Caller must not hold s.mu.
func (s *Store) mutate(op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := model.CloneProjects(s.projects)
	if err := fn(); err != nil {
		s.projects = snapshot
		return err
	}
	if err := s.persist.SaveProjects(s.projects); err != nil {
		s.projects = snapshot
		s.log.Error("persist failed, changes rolled back", "op", op, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("persisted", "op", op, "projects", len(s.projects))
	return nil
}

func (s *Store) findProject(id string) (*model.Project, int) {
	for i, p := range s.projects {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

func (s *Store) findChat(projectID, chatID string) (*model.Chat, error) {
	p, _ := s.findProject(projectID)
	if p == nil {
		return nil, projectNotFound(projectID)
	}
	c, _ := p.FindChat(chatID)
	if c == nil {
		return nil, chatNotFound(chatID)
	}
	return c, nil
}

// =============================================================================
// PROJECT OPERATIONS
// =============================================================================

// CreateProject appends a project with no chats. A blank name becomes
// "Projekt <n>" where n is the new project count.
func (s *Store) CreateProject(name string) (string, error) {
	p := model.NewProject(strings.TrimSpace(name))
	err := s.mutate("create project", func() error {
		if p.Name == "" {
			p.Name = fmt.Sprintf("Projekt %d", len(s.projects)+1)
		}
		s.projects = append(s.projects, p)
		return nil
	})
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// RenameProject sets a trimmed, non-blank name.
func (s *Store) RenameProject(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return s.mutate("rename project", func() error {
		p, _ := s.findProject(id)
		if p == nil {
			return projectNotFound(id)
		}
		p.Name = name
		return nil
	})
}

// Project returns a copy of the project.
func (s *Store) Project(id string) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, _ := s.findProject(id)
	if p == nil {
		return nil, projectNotFound(id)
	}
	return p.Clone(), nil
}

// Projects returns a copy of the whole tree in insertion order.
func (s *Store) Projects() []*model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneProjects(s.projects)
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// CreateChat appends an empty chat to the project. A blank name becomes
// "Neuer Chat".
func (s *Store) CreateChat(projectID, name string, autoTitlePending bool) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultChatName
	}
	c := model.NewChat(name, autoTitlePending)

	err := s.mutate("create chat", func() error {
		p, _ := s.findProject(projectID)
		if p == nil {
			return projectNotFound(projectID)
		}
		p.Chats = append(p.Chats, c)
		return nil
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// DeleteChat removes the chat. Deleting the last chat leaves an empty
// project; no replacement is created here.
func (s *Store) DeleteChat(projectID, chatID string) error {
	return s.mutate("delete chat", func() error {
		p, _ := s.findProject(projectID)
		if p == nil {
			return projectNotFound(projectID)
		}
		_, idx := p.FindChat(chatID)
		if idx < 0 {
			return chatNotFound(chatID)
		}
		p.Chats = append(p.Chats[:idx:idx], p.Chats[idx+1:]...)
		return nil
	})
}

// RenameChat sets a trimmed, non-blank name. The auto-title flag is left
// alone.
func (s *Store) RenameChat(projectID, chatID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	return s.mutate("rename chat", func() error {
		c, err := s.findChat(projectID, chatID)
		if err != nil {
			return err
		}
		c.Name = name
		return nil
	})
}

// SetChatTitle applies an automatic title: the chat is renamed and its
// auto-title flag cleared for good.
func (s *Store) SetChatTitle(projectID, chatID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyName
	}
	return s.mutate("set chat title", func() error {
		c, err := s.findChat(projectID, chatID)
		if err != nil {
			return err
		}
		c.Name = title
		c.AutoTitlePending = false
		return nil
	})
}

// Chat returns a copy of the chat.
func (s *Store) Chat(projectID, chatID string) (*model.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.findChat(projectID, chatID)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AppendMessage adds a message to the end of the chat log.
func (s *Store) AppendMessage(projectID, chatID string, role model.Role, content, meta string) error {
	if !role.IsConversational() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	msg := model.NewMessage(role, content, meta)

	return s.mutate("append message", func() error {
		c, err := s.findChat(projectID, chatID)
		if err != nil {
			return err
		}
		c.Messages = append(c.Messages, msg)
		return nil
	})
}

// SetLastMessageMeta attaches the trailing annotation to the last message.
// It is a no-op for an empty meta, an empty log or a message that already
// carries one.
func (s *Store) SetLastMessageMeta(projectID, chatID, meta string) error {
	return s.mutate("set message meta", func() error {
		c, err := s.findChat(projectID, chatID)
		if err != nil {
			return err
		}
		last := c.LastMessage()
		if meta == "" || last == nil || last.Meta != "" {
			return nil
		}
		last.Meta = meta
		return nil
	})
}
