// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package remote calls an OpenAI-compatible chat completions endpoint.
//
// The remote model is a black box: role-tagged messages in, text out or a
// failure. Requests are paced with a token bucket and never retried.
// Credentials are never logged; log lines carry a short SHA-256 fingerprint.
package remote
