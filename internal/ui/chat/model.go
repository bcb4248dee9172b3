// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/session"
	"github.com/jeranaias/personachat/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady   State = iota // Ready for input
	StateSending              // Waiting on the completion backend
)

// statusKind selects the styling of the transient status line.
type statusKind int

const (
	statusNone statusKind = iota
	statusInfo
	statusOK
	statusWarn
	statusError
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. One Model wraps one
// session controller; every trigger the view fires goes through it.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Session
	ctrl *session.Controller
	cfg  *config.Config

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Key bindings
	keyMap KeyMap

	// Markdown rendering for assistant replies. nil disables it.
	renderer       *glamour.TermRenderer
	markdown       bool
	showTimestamps bool

	// Pending user text echoed into the transcript while a send is in
	// flight. The turn itself is appended by the controller.
	pending string

	// View toggles
	showRaw  bool
	showHelp bool

	// Transient status line
	status     string
	statusKind statusKind
	statusID   int

	// Thinking state
	thinkingStart time.Time
}

// New creates a new chat model bound to a session controller.
func New(ctrl *session.Controller, cfg *config.Config, theme *styles.Theme) Model {
	// Create text input with prompt
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	// Create viewport
	vp := viewport.New(80, 20)
	vp.SetContent("")

	// Create spinner with ASCII-compatible animation
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := Model{
		state:          StateReady,
		theme:          theme,
		ctrl:           ctrl,
		cfg:            cfg,
		viewport:       vp,
		input:          ti,
		spinner:        sp,
		keyMap:         DefaultKeyMap(),
		markdown:       cfg.UI.Markdown,
		showTimestamps: cfg.UI.ShowTimestamps,
	}

	m.rebuildRenderer(80)
	m.refreshViewport()
	return m
}

// rebuildRenderer recreates the glamour renderer for the given wrap
// width. Rendering falls back to plain text when glamour fails or
// markdown is disabled.
func (m *Model) rebuildRenderer(width int) {
	if !m.markdown {
		m.renderer = nil
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(calculateContentWidth(width, 8)),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer = r
}

// setStatus replaces the status line and returns the command that
// expires it.
func (m *Model) setStatus(kind statusKind, text string) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusKind = kind
	return expireStatusCmd(m.statusID)
}

// clearStatus removes the status line immediately.
func (m *Model) clearStatus() {
	m.status = ""
	m.statusKind = statusNone
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}
