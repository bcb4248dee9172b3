// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// Conversation is an append-only sequence of turns. Existing turns are
// never edited or removed; the only destructive operation is Clear,
// which resets the sequence to empty.
//
// Conversation is not safe for concurrent use. The session controller
// serializes all access.
type Conversation struct {
	turns []Turn
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// FromTurns creates a conversation seeded with existing turns, e.g.
// loaded from the history store. Timestamps are clamped so the
// non-decreasing order invariant holds even for hand-edited files.
func FromTurns(turns []Turn) *Conversation {
	c := &Conversation{turns: make([]Turn, 0, len(turns))}
	for _, t := range turns {
		c.Append(t)
	}
	return c
}

// Append adds a turn to the end of the conversation. If the turn's
// timestamp precedes the last turn's, it is clamped to the last
// timestamp so order stays non-decreasing.
func (c *Conversation) Append(t Turn) {
	if n := len(c.turns); n > 0 && t.Timestamp.Before(c.turns[n-1].Timestamp) {
		t.Timestamp = c.turns[n-1].Timestamp
	}
	c.turns = append(c.turns, t)
}

// AppendUser appends a user turn with the given text, stamped now.
func (c *Conversation) AppendUser(text string) Turn {
	t := NewUserTurn(text)
	c.Append(t)
	return c.turns[len(c.turns)-1]
}

// AppendAssistant appends an assistant turn with the given text, stamped now.
func (c *Conversation) AppendAssistant(text string) Turn {
	t := NewAssistantTurn(text)
	c.Append(t)
	return c.turns[len(c.turns)-1]
}

// Clear removes all turns. Clearing an already empty conversation is a no-op.
func (c *Conversation) Clear() {
	c.turns = nil
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Empty returns true when the conversation has no turns.
func (c *Conversation) Empty() bool {
	return len(c.turns) == 0
}

// Snapshot returns a copy of all turns. Mutating the returned slice
// does not affect the conversation.
func (c *Conversation) Snapshot() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Window returns a copy of the last k turns, or all turns if the
// conversation is shorter than k. A non-positive k returns nil.
func (c *Conversation) Window(k int) []Turn {
	if k <= 0 {
		return nil
	}
	start := len(c.turns) - k
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(c.turns)-start)
	copy(out, c.turns[start:])
	return out
}

// LastAssistant returns the most recent assistant turn, if any.
func (c *Conversation) LastAssistant() (Turn, bool) {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].IsAssistant() {
			return c.turns[i], true
		}
	}
	return Turn{}, false
}

// LastTimestamp returns the timestamp of the final turn, or the zero
// time for an empty conversation.
func (c *Conversation) LastTimestamp() time.Time {
	if len(c.turns) == 0 {
		return time.Time{}
	}
	return c.turns[len(c.turns)-1].Timestamp
}
