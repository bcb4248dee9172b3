// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/export"
	"github.com/jeranaias/personachat/internal/session"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)

		// Header, thinking line, input box, and status bar share the
		// screen with the transcript.
		vpHeight := msg.Height - 7
		if vpHeight < 3 {
			vpHeight = 3
		}
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
		m.input.Width = msg.Width - 6

		m.rebuildRenderer(msg.Width)
		m.refreshViewport()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.state == StateSending {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case sendResultMsg:
		return m.handleSendResult(msg)

	case exportDoneMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, fmt.Sprintf("Export failed: %v", msg.err))
		}
		return m, m.setStatus(statusOK, fmt.Sprintf("Exported to %s", msg.path))

	case copyDoneMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, fmt.Sprintf("Copy failed: %v", msg.err))
		}
		return m, m.setStatus(statusOK, fmt.Sprintf("Copied %q", msg.preview))

	case statusTimeoutMsg:
		if msg.id == m.statusID {
			m.clearStatus()
		}
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg.Config)
	}

	// Everything else goes to the focused components.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keyMap

	switch {
	case key.Matches(msg, k.Quit):
		if m.showRaw || m.showHelp {
			m.showRaw = false
			m.showHelp = false
			m.refreshViewport()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, k.Submit):
		return m.handleSubmit()

	case key.Matches(msg, k.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, k.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, k.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, k.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, k.CyclePersona):
		p := m.ctrl.CyclePersona()
		m.refreshViewport()
		return m, m.setStatus(statusInfo, fmt.Sprintf("Persona: %s", p.Name))

	case key.Matches(msg, k.CycleModel):
		name := m.cycleModel()
		return m, m.setStatus(statusInfo, fmt.Sprintf("Model: %s", name))

	case key.Matches(msg, k.TempUp):
		v := m.ctrl.AdjustTemperature(0.05)
		return m, m.setStatus(statusInfo, fmt.Sprintf("Temperature: %.2f", v))

	case key.Matches(msg, k.TempDown):
		v := m.ctrl.AdjustTemperature(-0.05)
		return m, m.setStatus(statusInfo, fmt.Sprintf("Temperature: %.2f", v))

	case key.Matches(msg, k.TokensUp):
		n := m.ctrl.AdjustMaxTokens(64)
		return m, m.setStatus(statusInfo, fmt.Sprintf("Max tokens: %d", n))

	case key.Matches(msg, k.TokensDown):
		n := m.ctrl.AdjustMaxTokens(-64)
		return m, m.setStatus(statusInfo, fmt.Sprintf("Max tokens: %d", n))

	case key.Matches(msg, k.Persist):
		on, warning := m.ctrl.TogglePersist()
		if warning != "" {
			return m, m.setStatus(statusWarn, warning)
		}
		if on {
			return m, m.setStatus(statusOK, "Persistence on")
		}
		return m, m.setStatus(statusInfo, "Persistence off")

	case key.Matches(msg, k.Clear):
		result := m.ctrl.Clear()
		m.refreshViewport()
		if result.Warning != "" {
			return m, m.setStatus(statusWarn, result.Warning)
		}
		return m, m.setStatus(statusOK, "Chat cleared")

	case key.Matches(msg, k.Export):
		opts := export.DefaultOptions()
		opts.IncludeTimestamps = m.showTimestamps
		return m, exportCmd(m.ctrl, export.NewJSONExporter(opts), opts)

	case key.Matches(msg, k.CopyLast):
		reply, ok := m.ctrl.LastReply()
		if !ok {
			return m, m.setStatus(statusWarn, "No reply to copy yet")
		}
		return m, copyLastCmd(reply)

	case key.Matches(msg, k.ToggleRaw):
		m.showRaw = !m.showRaw
		m.refreshViewport()
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit starts one exchange. The input is cleared immediately
// and echoed into the transcript until the controller appends the real
// turn.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.state == StateSending {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, m.setStatus(statusWarn, "Type a message first")
	}

	m.state = StateSending
	m.pending = text
	m.thinkingStart = time.Now()
	m.input.Reset()
	m.clearStatus()
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.spinner.Tick, sendCmd(m.ctrl, text))
}

// handleSendResult applies the outcome of an exchange.
func (m Model) handleSendResult(msg sendResultMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.pending = ""
	m.refreshViewport()
	m.viewport.GotoBottom()

	if msg.err != nil {
		if errors.Is(msg.err, session.ErrEmptyInput) {
			return m, m.setStatus(statusWarn, "Type a message first")
		}
		return m, m.setStatus(statusError, fmt.Sprintf("Error: %v", msg.err))
	}
	if msg.result.Warning != "" {
		return m, m.setStatus(statusWarn, msg.result.Warning)
	}
	return m, nil
}

// handleConfigReload applies runtime-changeable UI settings from a
// freshly loaded config.
func (m Model) handleConfigReload(cfg *config.Config) (tea.Model, tea.Cmd) {
	if cfg == nil {
		return m, nil
	}
	m.cfg = cfg
	m.markdown = cfg.UI.Markdown
	m.showTimestamps = cfg.UI.ShowTimestamps
	m.rebuildRenderer(m.width)
	m.refreshViewport()
	return m, m.setStatus(statusInfo, "Configuration reloaded")
}

// cycleModel advances to the next known model and returns its name.
func (m *Model) cycleModel() string {
	current := m.ctrl.Settings().Model
	models := config.DefaultModels
	next := models[0]
	for i, name := range models {
		if name == current {
			next = models[(i+1)%len(models)]
			break
		}
	}
	m.ctrl.SetModel(next)
	return next
}
