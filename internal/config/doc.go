// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for personachat.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: main configuration structure with all settings
//   - CompletionConfig: OpenAI-compatible backend settings
//   - HistoryConfig: conversation persistence settings
//   - UIConfig: presentation settings
//   - Watcher: live reload of the config file via fsnotify
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (OPENAI_API_KEY, PERSONACHAT_*)
//   - ~/.personachat/config.toml
//   - ~/.personachat/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model := cfg.Completion.Model
package config
