// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the sessionchat command tree.
//
// # Commands
//
//	project new|rename|list|select     manage projects
//	chat new|rename|delete|select|list|show|export
//	send <text>                        one reply in the current chat
//	repl                               interactive chat with line editing
//	tui                                full-screen chat view
//	settings show|set|edit|reset       bot settings
//	key set|status|clear               API key for remote replies
//	config show|path|init              configuration file
//
// Projects and chats are referenced by list number, id (or a unique prefix
// of at least four characters) or name. Session documents are given with
// --doc on send, repl and tui, or loaded with /load inside repl and tui.
// Selecting another project or chat drops them.
//
// Destructive commands ask for confirmation on a terminal; elsewhere they
// require --yes.
package cli
