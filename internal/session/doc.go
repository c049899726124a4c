// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks what the user is currently working on.
//
// # Key Types
//
//   - Manager: current project and chat, session documents
//
// # Usage
//
//	mgr := session.NewManager(store, adapter)
//	mgr.Restore()
//	pid, cid, err := mgr.Current()
//	mgr.LoadDocuments("preise.txt")
//
// # Selection Rules
//
// An unknown or missing project falls back to the first project; with no
// projects at all "Projekt 1" is created. A project without chats gets a new
// "Neuer Chat" that is titled automatically after its first reply. Session
// documents belong to the current chat only and are dropped on every switch.
package session
