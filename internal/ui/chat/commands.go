// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the async Bubble Tea commands. Anything that can
// block (the completion round trip, file writes, the clipboard) runs
// here so the update loop never stalls.
package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/personachat/internal/export"
	"github.com/jeranaias/personachat/internal/model"
	"github.com/jeranaias/personachat/internal/session"
)

// statusDuration is how long a transient status line stays visible.
const statusDuration = 4 * time.Second

// sendCmd runs one exchange against the completion backend.
func sendCmd(ctrl *session.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		result, err := ctrl.Send(context.Background(), text)
		return sendResultMsg{result: result, err: err}
	}
}

// exportCmd writes the current conversation to a file in the output
// directory using the given exporter.
func exportCmd(ctrl *session.Controller, exporter export.Exporter, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		doc := ctrl.Export()
		path, err := export.ExportToFile(doc, exporter, opts)
		return exportDoneMsg{path: path, err: err}
	}
}

// copyLastCmd copies a turn's text to the system clipboard.
func copyLastCmd(turn model.Turn) tea.Cmd {
	return func() tea.Msg {
		return copyDoneMsg{
			preview: turn.Preview(40),
			err:     copyToClipboard(turn.Text),
		}
	}
}

// expireStatusCmd clears the status line after statusDuration.
func expireStatusCmd(id int) tea.Cmd {
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusTimeoutMsg{id: id}
	})
}
