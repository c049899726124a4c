// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rag implements keyword retrieval over session documents.
//
// Retrieval is lexical: the query is split into lowercase tokens and every
// line of every document scores one point per distinct token it contains as
// a substring. There is no stemming, no normalization and no embedding.
//
// # Usage
//
//	docs, err := rag.LoadFiles("preise.txt", "notizen.md")
//	snippets := rag.Score("Preis Rabatt", docs)
//	for _, s := range snippets {
//		fmt.Println(rag.FormatSnippet(s))
//	}
package rag
