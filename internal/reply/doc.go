// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reply runs the reply pipeline for one user message.
//
// # Flow
//
//	Idle → UserAppended → Retrieving → Responding → Streaming → Persisted
//	                                        └→ ErrorFallback ┘
//
// The user message is persisted first. Retrieval runs synchronously over the
// session documents. Without a remote completer the reply is built locally
// from the retrieved lines; with one, a failed call is replaced by a fixed
// apology. Either way the text is revealed in 40-rune chunks and then stored
// as exactly one assistant message, followed by the document-count meta and,
// for chats still waiting for one, an automatic title.
package reply
