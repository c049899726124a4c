// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared across sessionchat.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: rune-safe truncation with a caller-chosen ellipsis
//   - ChunkRunes: fixed-size rune chunks for incremental reveal
//   - CollapseWhitespace: normalize user input before titling
//   - TruncateWidth, PadRight: display-width aware table formatting
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//
// # Usage
//
//	chunks := util.ChunkRunes(reply, 40)
//	title := util.TruncateRunes(base, 48, 45, "…")
//	err := util.AtomicWriteFile(path, data, 0600, 0700)
package util
