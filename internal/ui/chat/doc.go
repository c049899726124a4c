// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen chat view.
//
// The view shows the current chat in a scrollable viewport with a multi-line
// input below it. Submissions run the reply pipeline in a goroutine; its
// events arrive as ReplyEventMsg on a buffered channel so the revealed text
// grows chunk by chunk. Input is disabled until ReplyDoneMsg arrives.
//
// Slash commands:
//
//	/load <datei>...  load session documents
//	/clear            drop session documents
//	/new              start a new chat
//	/chat <nr|name>   switch chat
//	/quit             exit
package chat
