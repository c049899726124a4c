// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/sessionchat/internal/logging"
	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/prompt"
)

// Stable persistence keys. The first three are shared with the browser
// client, so stored trees move between the two unchanged.
const (
	KeyProjects   = "chatbot.projects.v1"
	KeySettings   = "chatbot.bot-settings.v1"
	KeyCredential = "chatbot.api-key"
	KeySelection  = "chatbot.selection.v1"
)

// Selection remembers the current project and chat between CLI invocations.
type Selection struct {
	ProjectID string `json:"projectId"`
	ChatID    string `json:"chatId"`
}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter maps the typed state onto KV keys. Unparsable stored JSON is
// treated as absent: it is logged at warn and never returned as an error.
type Adapter struct {
	kv  KV
	log *log.Logger
}

// NewAdapter wraps a KV backend.
func NewAdapter(kv KV) *Adapter {
	return &Adapter{
		kv:  kv,
		log: logging.NewComponentLogger("storage"),
	}
}

// KV returns the underlying backend.
func (a *Adapter) KV() KV { return a.kv }

// Close closes the backend.
func (a *Adapter) Close() error { return a.kv.Close() }

// LoadProjects returns the stored project tree, or an empty tree when nothing
// (or nothing readable) is stored.
func (a *Adapter) LoadProjects() ([]*model.Project, error) {
	raw, ok, err := a.kv.Get(KeyProjects)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []*model.Project{}, nil
	}

	var projects []*model.Project
	if err := json.Unmarshal([]byte(raw), &projects); err != nil {
		a.log.Warn("stored projects are corrupt, starting empty", "key", KeyProjects, "err", err)
		return []*model.Project{}, nil
	}
	return normalizeProjects(projects), nil
}

// SaveProjects writes the full tree snapshot.
func (a *Adapter) SaveProjects(projects []*model.Project) error {
	if projects == nil {
		projects = []*model.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encode projects: %w", err)
	}
	if err := a.kv.Set(KeyProjects, string(data)); err != nil {
		return fmt.Errorf("save projects: %w", err)
	}
	return nil
}

// LoadSettings returns the stored settings merged over the defaults.
func (a *Adapter) LoadSettings() (prompt.BotSettings, error) {
	raw, ok, err := a.kv.Get(KeySettings)
	if err != nil {
		return prompt.Defaults(), fmt.Errorf("load settings: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return prompt.Defaults(), nil
	}

	var partial prompt.BotSettings
	if err := json.Unmarshal([]byte(raw), &partial); err != nil {
		a.log.Warn("stored settings are corrupt, using defaults", "key", KeySettings, "err", err)
		return prompt.Defaults(), nil
	}
	return prompt.Merge(partial), nil
}

// SaveSettings writes the settings object.
func (a *Adapter) SaveSettings(s prompt.BotSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := a.kv.Set(KeySettings, string(data)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Credential returns the stored credential, or "" when none is stored.
func (a *Adapter) Credential() (string, error) {
	raw, ok, err := a.kv.Get(KeyCredential)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(raw), nil
}

// SetCredential stores the credential as a bare string. Callers validate the
// shape first.
func (a *Adapter) SetCredential(key string) error {
	if err := a.kv.Set(KeyCredential, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// ClearCredential removes the stored credential.
func (a *Adapter) ClearCredential() error {
	if err := a.kv.Delete(KeyCredential); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// LoadSelection returns the remembered selection, or a zero value.
func (a *Adapter) LoadSelection() (Selection, error) {
	raw, ok, err := a.kv.Get(KeySelection)
	if err != nil {
		return Selection{}, fmt.Errorf("load selection: %w", err)
	}
	if !ok {
		return Selection{}, nil
	}

	var sel Selection
	if err := json.Unmarshal([]byte(raw), &sel); err != nil {
		a.log.Warn("stored selection is corrupt, ignoring", "key", KeySelection, "err", err)
		return Selection{}, nil
	}
	return sel, nil
}

// SaveSelection writes the selection.
func (a *Adapter) SaveSelection(sel Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := a.kv.Set(KeySelection, string(data)); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

// normalizeProjects drops null entries and replaces null slices so the rest
// of the program never sees a nil chat list or message log.
func normalizeProjects(in []*model.Project) []*model.Project {
	out := make([]*model.Project, 0, len(in))
	for _, p := range in {
		if p == nil {
			continue
		}
		chats := make([]*model.Chat, 0, len(p.Chats))
		for _, c := range p.Chats {
			if c == nil {
				continue
			}
			if c.Messages == nil {
				c.Messages = make([]model.Message, 0)
			}
			chats = append(chats, c)
		}
		p.Chats = chats
		out = append(out, p)
	}
	return out
}
