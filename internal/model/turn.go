// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core conversation types for personachat.
package model

import (
	"time"

	"github.com/jeranaias/personachat/internal/util"
)

// Role identifies the author of a turn.
type Role string

const (
	// RoleUser is a turn typed by the user.
	RoleUser Role = "user"
	// RoleAssistant is a turn produced by the completion backend.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is a single utterance in a conversation. Turns are values and are
// never mutated after creation.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserTurn creates a user turn stamped with the current time.
func NewUserTurn(text string) Turn {
	return Turn{
		Role:      RoleUser,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewAssistantTurn creates an assistant turn stamped with the current time.
func NewAssistantTurn(text string) Turn {
	return Turn{
		Role:      RoleAssistant,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// IsUser returns true if this is a user turn.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

// IsAssistant returns true if this is an assistant turn.
func (t Turn) IsAssistant() bool {
	return t.Role == RoleAssistant
}

// Preview returns a truncated version of the text for display in
// status lines. Truncation is rune-aware.
func (t Turn) Preview(maxLen int) string {
	return util.TruncateRunes(t.Text, maxLen)
}
