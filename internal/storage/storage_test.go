// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/prompt"
)

// =============================================================================
// BACKEND TESTS
// =============================================================================

func backends(t *testing.T) map[string]KV {
	t.Helper()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	files, err := OpenFileKV(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("OpenFileKV failed: %v", err)
	}
	t.Cleanup(func() {
		sqlite.Close()
		files.Close()
	})

	return map[string]KV{
		"sqlite": sqlite,
		"file":   files,
		"memory": NewMemoryKV(),
	}
}

func TestKV_GetSetDelete(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get("missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want false, nil", ok, err)
			}

			if err := kv.Set("chatbot.api-key", "sk-one"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Set("chatbot.api-key", "sk-two"); err != nil {
				t.Fatalf("Overwrite failed: %v", err)
			}

			v, ok, err := kv.Get("chatbot.api-key")
			if err != nil || !ok || v != "sk-two" {
				t.Errorf("Get = %q, %v, %v; want sk-two, true, nil", v, ok, err)
			}

			if err := kv.Delete("chatbot.api-key"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := kv.Delete("chatbot.api-key"); err != nil {
				t.Errorf("Deleting a missing key should be a no-op, got %v", err)
			}
			if _, ok, _ := kv.Get("chatbot.api-key"); ok {
				t.Error("Key still present after Delete")
			}
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := kv.Set(KeySelection, `{"projectId":"p"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	kv.Close()

	kv, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer kv.Close()

	v, ok, err := kv.Get(KeySelection)
	if err != nil || !ok || v != `{"projectId":"p"}` {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestFileKV_KeysStayInsideDir(t *testing.T) {
	dir := t.TempDir()
	kv, err := OpenFileKV(dir)
	if err != nil {
		t.Fatalf("OpenFileKV failed: %v", err)
	}

	if err := kv.Set("../escape", "x"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape")); !os.IsNotExist(err) {
		t.Error("Key escaped the storage directory")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(redis) error = %v, want ErrUnknownBackend", err)
	}
}

// =============================================================================
// ADAPTER TESTS
// =============================================================================

func sampleTree() []*model.Project {
	return []*model.Project{
		{
			ID:   "p1",
			Name: "Projekt 1",
			Chats: []*model.Chat{
				{
					ID:   "c1",
					Name: "Preisfrage — preise",
					Messages: []model.Message{
						{Role: model.RoleUser, Content: "Wie hoch ist der Preis?", Timestamp: 1700000000000},
						{Role: model.RoleAssistant, Content: "49 EUR.", Meta: "1 Datei(en) aktiv", Timestamp: 1700000001000},
					},
				},
				{ID: "c2", Name: "Neuer Chat", Messages: []model.Message{}, AutoTitlePending: true},
			},
		},
		{ID: "p2", Name: "Leer", Chats: []*model.Chat{}},
	}
}

func TestAdapter_ProjectsRoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(kv)
			want := sampleTree()

			if err := a.SaveProjects(want); err != nil {
				t.Fatalf("SaveProjects failed: %v", err)
			}
			got, err := a.LoadProjects()
			if err != nil {
				t.Fatalf("LoadProjects failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAdapter_CorruptDataFallsBack(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(KeyProjects, "{not json")
	kv.Set(KeySettings, "[]")
	kv.Set(KeySelection, "nope")

	a := NewAdapter(kv)

	projects, err := a.LoadProjects()
	if err != nil {
		t.Fatalf("LoadProjects error = %v, want nil", err)
	}
	if len(projects) != 0 {
		t.Errorf("LoadProjects = %d projects, want 0", len(projects))
	}

	settings, err := a.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings error = %v, want nil", err)
	}
	if settings != prompt.Defaults() {
		t.Errorf("LoadSettings = %+v, want defaults", settings)
	}

	sel, err := a.LoadSelection()
	if err != nil || sel != (Selection{}) {
		t.Errorf("LoadSelection = %+v, %v; want zero, nil", sel, err)
	}
}

func TestAdapter_NullSlicesNormalized(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(KeyProjects, `[null,{"id":"p","name":"P","chats":[{"id":"c","name":"C","messages":null}]}]`)

	projects, err := NewAdapter(kv).LoadProjects()
	if err != nil {
		t.Fatalf("LoadProjects failed: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1", len(projects))
	}
	if projects[0].Chats[0].Messages == nil {
		t.Error("Messages should be an empty slice, not nil")
	}
}

func TestAdapter_PartialSettingsMerged(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(KeySettings, `{"personality":"expert","codeFocus":true}`)

	got, err := NewAdapter(kv).LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}

	want := prompt.Defaults()
	want.Personality = prompt.PersonalityExpert
	want.CodeFocus = true
	if got != want {
		t.Errorf("LoadSettings = %+v, want %+v", got, want)
	}
}

func TestAdapter_Credential(t *testing.T) {
	a := NewAdapter(NewMemoryKV())

	if key, err := a.Credential(); err != nil || key != "" {
		t.Errorf("Credential on empty store = %q, %v", key, err)
	}
	if err := a.SetCredential("  sk-test123456  "); err != nil {
		t.Fatalf("SetCredential failed: %v", err)
	}
	if key, _ := a.Credential(); key != "sk-test123456" {
		t.Errorf("Credential = %q, want trimmed value", key)
	}
	if raw, _, _ := a.KV().Get(KeyCredential); raw != "sk-test123456" {
		t.Errorf("stored value = %q, want bare string", raw)
	}
	if err := a.ClearCredential(); err != nil {
		t.Fatalf("ClearCredential failed: %v", err)
	}
	if key, _ := a.Credential(); key != "" {
		t.Errorf("Credential after clear = %q", key)
	}
}

func TestAdapter_Selection(t *testing.T) {
	a := NewAdapter(NewMemoryKV())
	want := Selection{ProjectID: "p1", ChatID: "c1"}

	if err := a.SaveSelection(want); err != nil {
		t.Fatalf("SaveSelection failed: %v", err)
	}
	got, err := a.LoadSelection()
	if err != nil || got != want {
		t.Errorf("LoadSelection = %+v, %v; want %+v", got, err, want)
	}
}
