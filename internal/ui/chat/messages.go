// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea messages exchanged between the
// async commands and the update loop.
package chat

import (
	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/session"
)

// =============================================================================
// ASYNC RESULT MESSAGES
// =============================================================================

// sendResultMsg carries the outcome of a completed exchange. Err is
// set when the completion backend failed; the result snapshot still
// reflects the appended user turn in that case.
type sendResultMsg struct {
	result session.Result
	err    error
}

// exportDoneMsg carries the outcome of an export to file.
type exportDoneMsg struct {
	path string
	err  error
}

// copyDoneMsg carries the outcome of a clipboard copy along with a
// short preview of what was copied.
type copyDoneMsg struct {
	preview string
	err     error
}

// statusTimeoutMsg expires a transient status line. The id guards
// against an old timer clearing a newer status.
type statusTimeoutMsg struct {
	id int
}

// =============================================================================
// EXTERNAL MESSAGES
// =============================================================================

// ConfigReloadedMsg is sent by the config file watcher when the config
// changes on disk. The chat model applies the UI settings that can
// change at runtime.
type ConfigReloadedMsg struct {
	Config *config.Config
}
