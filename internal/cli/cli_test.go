// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sessionchat/internal/config"
	"github.com/jeranaias/sessionchat/internal/conversation"
	"github.com/jeranaias/sessionchat/internal/model"
	"github.com/jeranaias/sessionchat/internal/prompt"
	"github.com/jeranaias/sessionchat/internal/remote"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var envVars = []string{
	"SESSIONCHAT_STORAGE_BACKEND", "SESSIONCHAT_STORAGE_PATH",
	"SESSIONCHAT_BASE_URL", "SESSIONCHAT_MODEL", "SESSIONCHAT_OFFLINE",
	"SESSIONCHAT_LOG_LEVEL", "SESSIONCHAT_LOG_FILE",
	"SESSIONCHAT_API_KEY", "OPENAI_API_KEY",
}

// setupHome points the config directory at a temp dir holding an offline,
// file-backed configuration without reveal delay.
func setupHome(t *testing.T, edit ...func(*config.Config)) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	for _, k := range envVars {
		t.Setenv(k, "")
	}

	cfg := config.Default()
	cfg.Storage.Backend = "file"
	cfg.Stream.ChunkDelayMs = 0
	cfg.Remote.Offline = true
	cfg.Log.Level = "error"
	for _, fn := range edit {
		fn(cfg)
	}
	path, err := config.ConfigPath()
	require.NoError(t, err)
	require.NoError(t, config.SaveTOML(cfg, path))

	prev := canPrompt
	canPrompt = func() bool { return false }
	t.Cleanup(func() { canPrompt = prev })
	return home
}

// run executes the command tree and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "args %v, output:\n%s", args, out)
	return out
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// SEND
// =============================================================================

func TestSend_OfflineWithDocument(t *testing.T) {
	setupHome(t)
	doc := writeDoc(t, "preise.txt", "Der Preis beträgt 49 EUR.\nRabatt gibt es ab 10 Stück.\nLieferung in 3 Tagen.")

	out := mustRun(t, "send", "--doc", doc, "Wie", "hoch", "ist", "der", "Preis?")

	assert.Contains(t, out, "Session-RAG: 1 Datei(en) aktiv.")
	assert.Contains(t, out, "Assistent:")
	assert.Contains(t, out, "[preise.txt #1]")
	assert.Contains(t, out, "1 Datei(en) aktiv")
	assert.Contains(t, out, "Titel: hoch ist der Preis? — preise")

	out = mustRun(t, "chat", "list")
	assert.Contains(t, out, "2 Nachr.")
	assert.Contains(t, out, "hoch ist der Preis?")

	out = mustRun(t, "chat", "show", "--raw")
	assert.Contains(t, out, "**Du**")
	assert.Contains(t, out, "**Assistent**")
}

func TestSend_NoDocumentsHasNoMeta(t *testing.T) {
	setupHome(t)

	out := mustRun(t, "send", "Hallo")

	assert.Contains(t, out, "keine passenden Stellen")
	assert.NotContains(t, out, "Datei(en) aktiv")
}

func TestSend_Remote(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Der Preis liegt bei 49 EUR."}}]}`))
	}))
	t.Cleanup(srv.Close)

	setupHome(t, func(c *config.Config) {
		c.Remote.Offline = false
		c.Remote.BaseURL = srv.URL
		c.Remote.RequestsPerMinute = 0
	})
	t.Setenv("SESSIONCHAT_API_KEY", "sk-test-remote-1234")

	out := mustRun(t, "send", "Was kostet das?")

	assert.Contains(t, out, "Der Preis liegt bei 49 EUR.")
	assert.Equal(t, "Bearer sk-test-remote-1234", auth)

	out = mustRun(t, "send", "--offline", "Und jetzt?")
	assert.Contains(t, out, "keine passenden Stellen")
}

func TestSend_MalformedEnvKeyAnswersOffline(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		http.Error(w, "unexpected", http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	setupHome(t, func(c *config.Config) {
		c.Remote.Offline = false
		c.Remote.BaseURL = srv.URL
	})
	t.Setenv("OPENAI_API_KEY", "kein-gueltiger-key")

	out := mustRun(t, "send", "Hallo")
	assert.Contains(t, out, "keine passenden Stellen")
	assert.False(t, called, "a malformed seed never reaches the endpoint")

	out = mustRun(t, "key", "status")
	assert.Contains(t, out, "offline")
}

// =============================================================================
// PROJECTS AND CHATS
// =============================================================================

func TestProjectCommands(t *testing.T) {
	setupHome(t)

	out := mustRun(t, "project", "new", "Kunde", "A")
	assert.Contains(t, out, "Projekt erstellt: Kunde A")

	mustRun(t, "project", "new", "Intern")

	out = mustRun(t, "project", "list")
	assert.Contains(t, out, "Kunde A")
	assert.Contains(t, out, "* ", "current project is marked")

	out = mustRun(t, "project", "select", "kunde a")
	assert.Contains(t, out, "Aktiv: Kunde A / Neuer Chat")

	out = mustRun(t, "project", "rename", "Kunde A", "Kunde", "B")
	assert.Contains(t, out, "Projekt umbenannt: Kunde A → Kunde B")

	_, err := run(t, "project", "select", "Gibt es nicht")
	require.Error(t, err)
	assert.True(t, errors.Is(err, conversation.ErrProjectNotFound))
	assert.Equal(t, ExitNotFoundError, ExitCode(err))
}

func TestChatCommands(t *testing.T) {
	setupHome(t)

	mustRun(t, "chat", "new", "Angebot")
	out := mustRun(t, "chat", "list")
	assert.Contains(t, out, "Angebot")

	out = mustRun(t, "chat", "rename", "Angebot", "Angebot", "2025")
	assert.Contains(t, out, "Chat umbenannt: Angebot → Angebot 2025")

	_, err := run(t, "chat", "delete", "Angebot 2025")
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, ExitUsageError, ExitCode(err))

	out = mustRun(t, "chat", "delete", "--yes", "Angebot 2025")
	assert.Contains(t, out, "Chat gelöscht: Angebot 2025")

	out = mustRun(t, "chat", "list")
	assert.NotContains(t, out, "Angebot 2025")

	_, err = run(t, "chat", "show", "99")
	assert.Equal(t, ExitNotFoundError, ExitCode(err))

	_, err = run(t, "chat", "rename", "1", "   ")
	assert.ErrorIs(t, err, conversation.ErrEmptyName)
}

func TestChatExport(t *testing.T) {
	setupHome(t)
	mustRun(t, "send", "Hallo")

	target := filepath.Join(t.TempDir(), "chat.md")
	out := mustRun(t, "chat", "export", "-o", target)
	assert.Contains(t, out, "Exportiert:")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Du**")
	assert.Contains(t, string(data), "Hallo")
}

// =============================================================================
// SETTINGS, KEY, CONFIG
// =============================================================================

func TestSettingsCommands(t *testing.T) {
	setupHome(t)

	out := mustRun(t, "settings", "set", "responseLength", "short")
	assert.Contains(t, out, "Gespeichert: responseLength = short")

	out = mustRun(t, "settings", "show")
	assert.Contains(t, out, "short")

	_, err := run(t, "settings", "set", "volume", "11")
	assert.ErrorIs(t, err, prompt.ErrUnknownField)
	assert.Equal(t, ExitConfigError, ExitCode(err))

	_, err = run(t, "settings", "reset")
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	out = mustRun(t, "settings", "reset", "-y")
	assert.Contains(t, out, "Einstellungen zurückgesetzt.")
	out = mustRun(t, "settings", "show")
	assert.Contains(t, out, string(prompt.LengthMedium))
}

func TestKeyCommands(t *testing.T) {
	setupHome(t)

	_, err := run(t, "key", "set", "not-a-key")
	assert.ErrorIs(t, err, remote.ErrInvalidCredential)
	assert.Equal(t, ExitAuthError, ExitCode(err))

	out := mustRun(t, "key", "set", "sk-test-0000-abcd")
	assert.Contains(t, out, "API Key gespeichert: sk-test...abcd")
	assert.NotContains(t, out, "0000")

	out = mustRun(t, "key", "status")
	assert.Contains(t, out, "sk-test...abcd")
	assert.Contains(t, out, "offline")

	_, err = run(t, "key", "clear")
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	out = mustRun(t, "key", "clear", "--yes")
	assert.Contains(t, out, "API Key gelöscht.")

	out = mustRun(t, "key", "status")
	assert.Contains(t, out, "nicht gesetzt")
}

func TestConfigCommands(t *testing.T) {
	home := setupHome(t)

	out := mustRun(t, "config", "path")
	assert.Equal(t, filepath.Join(home, "config.toml"), strings.TrimSpace(out))

	out = mustRun(t, "config", "show")
	assert.Contains(t, out, `backend = "file"`)

	_, err := run(t, "config", "init")
	require.Error(t, err, "existing file is not overwritten without --force")

	mustRun(t, "config", "init", "--force")
	cfg, err := config.LoadFromPath(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestInvalidConfigExitCode(t *testing.T) {
	home := setupHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.toml"), []byte("[log]\nlevel = \"loud\"\n"), 0600))

	_, err := run(t, "chat", "list")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

// =============================================================================
// REFERENCES
// =============================================================================

func TestResolveRef(t *testing.T) {
	chats := []*model.Chat{
		{ID: "abcd1111-0000", Name: "Angebot"},
		{ID: "abcd2222-0000", Name: "Rechnung"},
		{ID: "ffff0000-0000", Name: "2"},
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{"index", "2", "Rechnung", nil},
		{"full id", "ffff0000-0000", "2", nil},
		{"unique prefix", "abcd1", "Angebot", nil},
		{"name ignores case", "RECHNUNG", "Rechnung", nil},
		{"ambiguous prefix", "abcd", "", ErrAmbiguousRef},
		{"four rune prefix", "ffff", "2", nil},
		{"empty", " ", "", ErrAmbiguousRef},
		{"missing", "Notiz", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRef(chats, tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneralError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitNotFoundError, ExitCode(&CommandError{Command: "chat", Action: "show",
		Err: &conversation.NotFoundError{Kind: "chat", ID: "x"}}))
	assert.Equal(t, ExitUsageError, ExitCode(ErrAmbiguousRef))
}

func TestRequireConfirmation(t *testing.T) {
	prevPrompt, prevAsk := canPrompt, askConfirm
	t.Cleanup(func() { canPrompt, askConfirm = prevPrompt, prevAsk })

	ok, err := RequireConfirmation("Sicher?", true)
	require.NoError(t, err)
	assert.True(t, ok)

	canPrompt = func() bool { return false }
	_, err = RequireConfirmation("Sicher?", false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	canPrompt = func() bool { return true }
	askConfirm = func(string) (bool, error) { return false, nil }
	ok, err = RequireConfirmation("Sicher?", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	a := &app{out: &buf}

	c := model.NewChat("Angebot", false)
	printHistory(a, c)
	assert.Contains(t, buf.String(), "Noch keine Nachrichten.")

	buf.Reset()
	c.Messages = append(c.Messages,
		model.NewMessage(model.RoleUser, "Was kostet das?", ""),
		model.NewMessage(model.RoleAssistant, "49 EUR.", "1 Datei(en) aktiv"),
	)
	printHistory(a, c)

	out := buf.String()
	assert.Contains(t, out, "Angebot")
	assert.Contains(t, out, strings.Repeat("─", 70))
	assert.Less(t, strings.Index(out, "Was kostet das?"), strings.Index(out, "49 EUR."))
	assert.Contains(t, out, "1 Datei(en) aktiv")
}
