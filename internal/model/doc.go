// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
//
// # Key Types
//
//   - Conversation: append-only sequence of turns for one chat session
//   - Turn: single utterance with role, text, and timestamp
//   - Role: turn author enumeration (user, assistant)
//
// # Usage
//
// Create a new conversation:
//
//	conv := model.NewConversation()
//	conv.AppendUser("Hello!")
//	turns := conv.Snapshot()
package model
