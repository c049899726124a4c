// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sessionchat/internal/model"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Der Preis liegt bei 49 EUR."}}]
}`

type capturedRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, got *capturedRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if got != nil {
			json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	c, err := NewClient("sk-test-1234567890", cfg)
	require.NoError(t, err)
	return c
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestComplete_Success(t *testing.T) {
	var req capturedRequest
	var auth string
	srv := newServer(t, http.StatusOK, completionBody, &req, &auth)

	got, err := testClient(t, srv.URL).Complete(context.Background(), []ChatMessage{
		{Role: model.RoleSystem, Content: "Antworte auf Deutsch."},
		{Role: model.RoleUser, Content: "Wie hoch ist der Preis?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Der Preis liegt bei 49 EUR.", got)

	assert.Equal(t, "Bearer sk-test-1234567890", auth)
	assert.Equal(t, DefaultModel, req.Model)
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
	assert.InDelta(t, DefaultTemperature, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "user", req.Messages[1].Role)
}

func TestComplete_ServerErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Complete(context.Background(), []ChatMessage{{Role: model.RoleUser, Content: "x"}})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestComplete_EmptyContent(t *testing.T) {
	body := `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":""}}]}`
	srv := newServer(t, http.StatusOK, body, nil, nil)

	_, err := testClient(t, srv.URL).Complete(context.Background(), []ChatMessage{{Role: model.RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, ErrRequestFailed)

	srv = newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`, nil, nil)
	_, err = testClient(t, srv.URL).Complete(context.Background(), []ChatMessage{{Role: model.RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestComplete_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(t, url).Complete(context.Background(), []ChatMessage{{Role: model.RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestNewClient_RequiresCredential(t *testing.T) {
	_, err := NewClient("   ", DefaultConfig())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// =============================================================================
// CREDENTIAL TESTS
// =============================================================================

func TestValidateCredential(t *testing.T) {
	assert.NoError(t, ValidateCredential("sk-abc"))
	assert.NoError(t, ValidateCredential("  sk-abc  "))

	for _, bad := range []string{"", "   ", "pk-abc", "SK-abc", "abc sk-"} {
		err := ValidateCredential(bad)
		assert.ErrorIs(t, err, ErrInvalidCredential, "%q", bad)
	}
}

func TestMaskCredential(t *testing.T) {
	assert.Equal(t, "sk-proj...wxyz", MaskCredential("sk-proj-abcdefghijklmnopwxyz"))
	assert.Equal(t, "*****", MaskCredential("sk-ab"))
}

func TestKeyFingerprint(t *testing.T) {
	fp := keyFingerprint("sk-test")
	assert.Len(t, fp, 8)
	assert.NotContains(t, fp, "sk-")
	assert.Equal(t, fp, keyFingerprint("sk-test"))
	assert.Equal(t, "none", keyFingerprint(""))
}
