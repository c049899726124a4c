// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the project → chat → message tree.
//
// Store is the sole mutator. Every operation persists a full snapshot
// synchronously through a Persister (normally storage.Adapter) and rolls the
// in-memory tree back when that fails, so memory and disk never diverge.
//
// # Usage
//
//	store, err := conversation.Open(adapter, adapter)
//	pid, _ := store.CreateProject("Projekt 1")
//	cid, _ := store.CreateChat(pid, "", true)
//	err = store.AppendMessage(pid, cid, model.RoleUser, "Hallo", "")
package conversation
