// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists sessionchat state in a single key-value surface.
//
// # Key Types
//
//   - KV: the backend interface (SQLiteKV, FileKV, MemoryKV)
//   - Adapter: typed load/save for projects, settings, credential and selection
//
// # Usage
//
//	kv, err := storage.Open(storage.BackendSQLite, "~/.sessionchat/store.db")
//	adapter := storage.NewAdapter(kv)
//	projects, err := adapter.LoadProjects()
//
// # Keys
//
//	chatbot.projects.v1      JSON array of projects
//	chatbot.bot-settings.v1  JSON settings object
//	chatbot.api-key          bare credential string
//	chatbot.selection.v1     current project and chat ids
package storage
