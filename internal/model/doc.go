// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for projects, chats and messages.
//
// # Key Types
//
//   - Project: top-level grouping that owns an ordered list of chats
//   - Chat: a single ordered message log with the auto-title flag
//   - Message: role, content, optional meta annotation and timestamp
//   - MessageView: renderable record produced by ToView
//
// The JSON layout matches the tree stored under chatbot.projects.v1, so trees
// written by earlier clients load unchanged.
//
// # Usage
//
//	p := model.NewProject("Projekt 1")
//	c := model.NewChat(model.DefaultChatName, true)
//	p.Chats = append(p.Chats, c)
//	views := model.ToViews(c.Messages)
package model
