// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, log.InfoLevel, ParseLevel(" INFO "))
	assert.Equal(t, log.WarnLevel, ParseLevel(""))
	assert.Equal(t, log.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, log.WarnLevel, ParseLevel("verbose"))
}

func TestConfigure_EnvFallback(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	require.NoError(t, Configure("", ""))
	assert.Equal(t, log.DebugLevel, Logger().GetLevel())

	require.NoError(t, Configure("error", ""))
	assert.Equal(t, log.ErrorLevel, Logger().GetLevel())
}

func TestConfigure_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessionchat.log")
	require.NoError(t, Configure("info", path))
	t.Cleanup(func() { _ = Configure("warn", "") })

	Info("hello", "k", "v")
	assert.FileExists(t, path)
}

func TestSetOutput(t *testing.T) {
	require.NoError(t, Configure("info", ""))
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { _ = Configure("warn", "") })

	Warn("persistence corrupt", "key", "chatbot.projects.v1")
	assert.Contains(t, buf.String(), "persistence corrupt")
	assert.Contains(t, buf.String(), "chatbot.projects.v1")
}
