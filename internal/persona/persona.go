// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona defines the built-in chat personas.
//
// A persona is an immutable pairing of a display name and a system
// prompt. The registry is fixed at compile time; selection is by ID.
package persona

import (
	"fmt"
	"sort"
	"strings"
)

// Persona is a named system-prompt preset.
type Persona struct {
	// ID is the stable identifier used in config files and CLI flags.
	ID string
	// Name is the display name shown in the UI.
	Name string
	// SystemPrompt is sent as the system message on every completion.
	SystemPrompt string
	// Tagline is a one-line description for pickers and help output.
	Tagline string
}

// Built-in personas. Order here is the display order.
var registry = []Persona{
	{
		ID:   "roastbot",
		Name: "RoastBot",
		SystemPrompt: "You are RoastBot. Give short, witty, playful roasts. " +
			"If user asks for serious info, give it with a mild sarcastic touch.",
		Tagline: "short, witty, playful roasts",
	},
	{
		ID:   "shakespearebot",
		Name: "ShakespeareBot",
		SystemPrompt: "You are ShakespeareBot. Reply in Early Modern English style. " +
			"Use 'thee', 'thou', poetic phrasing, and a formal tone.",
		Tagline: "replies in Early Modern English",
	},
	{
		ID:   "emojibot",
		Name: "EmojiBot",
		SystemPrompt: "You are EmojiBot. Translate messages mostly into emojis. " +
			"You can add a short English note in parentheses if needed.",
		Tagline: "answers mostly in emojis",
	},
}

// ExamplePrompts are shown on the welcome screen and in help output.
var ExamplePrompts = []string{
	"Tell me a joke about programming.",
	"Explain the Pythagorean theorem simply.",
	"Convert 'I love pizza' into emojis.",
	"Roast me gently for forgetting my keys.",
	"Write a short Shakespearean insult.",
}

// Default returns the persona used when none is configured.
func Default() Persona {
	return registry[0]
}

// Get looks up a persona by ID. Lookup is case-insensitive and also
// accepts the display name, so "RoastBot" and "roastbot" both resolve.
func Get(id string) (Persona, error) {
	needle := strings.ToLower(strings.TrimSpace(id))
	for _, p := range registry {
		if p.ID == needle || strings.ToLower(p.Name) == needle {
			return p, nil
		}
	}
	return Persona{}, fmt.Errorf("unknown persona %q (valid: %s)", id, strings.Join(IDs(), ", "))
}

// All returns the personas in display order.
func All() []Persona {
	out := make([]Persona, len(registry))
	copy(out, registry)
	return out
}

// IDs returns the sorted persona IDs.
func IDs() []string {
	ids := make([]string, len(registry))
	for i, p := range registry {
		ids[i] = p.ID
	}
	sort.Strings(ids)
	return ids
}

// Next returns the persona after p in display order, wrapping at the
// end. Used by the TUI persona cycle key.
func Next(p Persona) Persona {
	for i, cur := range registry {
		if cur.ID == p.ID {
			return registry[(i+1)%len(registry)]
		}
	}
	return Default()
}
