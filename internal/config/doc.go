// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads sessionchat's TOML configuration.
//
// Values are layered, later sources winning:
//
//  1. Default()
//  2. config.toml in ConfigDir (~/.sessionchat, or $SESSIONCHAT_HOME)
//  3. .env in the working directory and in ConfigDir; never overrides a variable
//     that is already set
//  4. SESSIONCHAT_* variables. SESSIONCHAT_API_KEY or OPENAI_API_KEY seed the
//     credential, which is never written back to disk.
//
// Unknown keys in config.toml are an error, as is any value Validate rejects.
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	path, err := cfg.StoragePath()
package config
