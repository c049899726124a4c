// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/jeranaias/sessionchat/internal/logging"
	"github.com/jeranaias/sessionchat/internal/model"
)

// Defaults for the completions endpoint.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
)

// ChatMessage is one role-tagged message sent to the model.
type ChatMessage struct {
	Role    model.Role
	Content string
}

// Config holds the request parameters. Zero fields take the defaults.
type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	// RequestsPerMinute paces requests; 0 means unlimited.
	RequestsPerMinute int
	HTTPClient        *http.Client
}

// DefaultConfig returns the standard request parameters.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends chat completions. It never retries: one failure is one
// failed reply.
type Client struct {
	api         openai.Client
	cfg         Config
	limiter     *rate.Limiter
	fingerprint string
	log         *log.Logger
}

// NewClient creates a client for the given credential. An empty credential
// yields ErrNotConfigured.
func NewClient(credential string, cfg Config) (*Client, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrNotConfigured
	}
	cfg.fillDefaults()

	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Client{
		api: openai.NewClient(
			option.WithAPIKey(credential),
			option.WithBaseURL(baseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		cfg:         cfg,
		limiter:     rate.NewLimiter(limit, 1),
		fingerprint: keyFingerprint(credential),
		log:         logging.NewComponentLogger("remote"),
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

// Complete sends messages and returns the first choice's content. Every
// failure wraps ErrRequestFailed; non-2xx responses are *APIError.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    toParams(messages),
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
		Temperature: openai.Float(c.cfg.Temperature),
	}

	c.log.Debug("sending completion", "model", c.cfg.Model, "messages", len(messages), "key", c.fingerprint)
	start := time.Now()

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.log.Warn("completion rejected", "status", apiErr.StatusCode, "key", c.fingerprint)
			return "", &APIError{Status: apiErr.StatusCode, Message: apiErr.Message}
		}
		c.log.Warn("completion failed", "err", err)
		return "", fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrRequestFailed)
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("%w: empty content", ErrRequestFailed)
	}

	c.log.Debug("completion received", "chars", len(content), "elapsed", time.Since(start))
	return content, nil
}

func toParams(messages []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case model.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
