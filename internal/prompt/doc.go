// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt holds the reply preferences and turns them into the German
// system directive sent with every remote request.
//
// Stored settings may be partial or carry values from older clients: Merge
// fills gaps from Defaults and Build falls back per field, so a directive is
// always produced. Validate is for entry points that want to reject typos.
package prompt
