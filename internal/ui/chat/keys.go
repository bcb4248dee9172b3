// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines keyboard bindings and shortcuts for the chat
// interface, along with help text generation for the status bar.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
// Each binding supports multiple keys and includes help text.
type KeyMap struct {
	Submit       key.Binding
	Quit         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Home         key.Binding
	End          key.Binding
	CyclePersona key.Binding
	CycleModel   key.Binding
	TempUp       key.Binding
	TempDown     key.Binding
	TokensUp     key.Binding
	TokensDown   key.Binding
	Persist      key.Binding
	Clear        key.Binding
	Export       key.Binding
	CopyLast     key.Binding
	ToggleRaw    key.Binding
	Help         key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("Esc/C-c", "quit"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("Home", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "go to bottom"),
		),
		CyclePersona: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "next persona"),
		),
		CycleModel: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "next model"),
		),
		TempUp: key.NewBinding(
			key.WithKeys("ctrl+up"),
			key.WithHelp("C-up", "temperature +"),
		),
		TempDown: key.NewBinding(
			key.WithKeys("ctrl+down"),
			key.WithHelp("C-down", "temperature -"),
		),
		TokensUp: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("M-up", "max tokens +"),
		),
		TokensDown: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("M-down", "max tokens -"),
		),
		Persist: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "toggle persistence"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear chat"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "export"),
		),
		CopyLast: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy last reply"),
		),
		ToggleRaw: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "raw history"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "toggle help"),
		),
	}
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the key bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.CyclePersona, k.Export, k.Clear, k.Quit}
}

// FullHelp returns the key bindings shown in the full help view,
// organized into groups.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Conversation
		{k.Submit, k.Clear, k.Export, k.CopyLast},
		// Settings
		{k.CyclePersona, k.CycleModel, k.TempUp, k.TempDown, k.TokensUp, k.TokensDown, k.Persist},
		// Navigation
		{k.PageUp, k.PageDown, k.Home, k.End},
		// Misc
		{k.ToggleRaw, k.Help, k.Quit},
	}
}
