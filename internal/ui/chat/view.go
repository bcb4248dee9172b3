// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/personachat/internal/model"
	"github.com/jeranaias/personachat/internal/persona"
	"github.com/jeranaias/personachat/internal/ui/styles"
	"github.com/jeranaias/personachat/internal/util"
)

// View renders the full chat screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderThinking())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

// refreshViewport rebuilds the transcript content from the current
// conversation snapshot.
func (m *Model) refreshViewport() {
	switch {
	case m.showHelp:
		m.viewport.SetContent(m.renderHelp())
	case m.showRaw:
		m.viewport.SetContent(m.renderRaw())
	default:
		m.viewport.SetContent(m.renderTranscript())
	}
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	p := m.ctrl.Settings().Persona
	title := m.theme.HeaderTitle.Render("personachat")
	sub := m.theme.HeaderSubtitle.Render("chatting with " + p.Name)
	line := title + "  " + sub
	if m.width > 0 {
		return m.theme.Header.Width(m.width - 2).Render(line)
	}
	return m.theme.Header.Render(line)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m Model) renderTranscript() string {
	turns := m.ctrl.Snapshot()
	if len(turns) == 0 && m.pending == "" {
		return m.renderWelcome()
	}

	contentWidth := calculateContentWidth(m.viewport.Width, 10)

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderTurn(turn, contentWidth))
		b.WriteString("\n")
	}

	if m.pending != "" {
		if len(turns) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderPending(contentWidth))
		b.WriteString("\n")
	}

	return b.String()
}

// renderTurn renders one conversation turn as a labeled bubble. User
// turns hug the right edge, assistant turns the left, matching the
// bubble margins from the theme.
func (m Model) renderTurn(turn model.Turn, contentWidth int) string {
	var label, body string

	if turn.IsUser() {
		label = m.theme.UserLabel.Render("You")
		body = m.theme.UserBubble.Render(wrapText(turn.Text, contentWidth))
	} else {
		label = m.theme.AssistantLabel.Render(m.ctrl.Settings().Persona.Name)
		body = m.theme.AssistantBubble.Render(m.renderAssistantText(turn.Text, contentWidth))
	}

	if m.showTimestamps {
		label += " " + m.theme.Timestamp.Render(formatTimestamp(turn.Timestamp))
	}

	return label + "\n" + body
}

// renderAssistantText renders reply text through glamour when markdown
// display is enabled, falling back to plain wrapping.
func (m Model) renderAssistantText(text string, contentWidth int) string {
	if m.renderer != nil {
		out, err := m.renderer.Render(text)
		if err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return wrapText(text, contentWidth)
}

// renderPending echoes the in-flight user message before the
// controller has appended the turn.
func (m Model) renderPending(contentWidth int) string {
	label := m.theme.UserLabel.Render("You")
	body := m.theme.UserBubble.Render(wrapText(m.pending, contentWidth))
	return label + "\n" + body
}

// renderWelcome shows the empty-conversation screen with example
// prompts.
func (m Model) renderWelcome() string {
	p := m.ctrl.Settings().Persona

	var b strings.Builder
	b.WriteString(m.theme.WelcomeTitle.Render("Welcome to personachat"))
	b.WriteString("\n\n")
	b.WriteString(m.theme.WelcomeInfo.Render(fmt.Sprintf("You are chatting with %s.", p.Name)))
	b.WriteString("\n")
	b.WriteString(m.theme.WelcomeInfo.Render("Type a message below, or try one of these:"))
	b.WriteString("\n\n")
	for _, prompt := range persona.ExamplePrompts {
		b.WriteString(m.theme.WelcomePrompt.Render("  " + prompt))
		b.WriteString("\n")
	}

	box := m.theme.WelcomeBox.Render(b.String())
	if m.viewport.Width > 0 {
		return lipgloss.PlaceHorizontal(m.viewport.Width, lipgloss.Center, box)
	}
	return box
}

// =============================================================================
// RAW HISTORY VIEW
// =============================================================================

// renderRaw shows the conversation as the JSON document an export
// would produce.
func (m Model) renderRaw() string {
	doc := m.ctrl.Export()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return styles.RenderError(fmt.Sprintf("Could not encode history: %v", err))
	}
	header := m.theme.SettingLabel.Render("Raw history (press Ctrl+R or Esc to close)")
	return header + "\n\n" + string(data)
}

// =============================================================================
// HELP VIEW
// =============================================================================

func (m Model) renderHelp() string {
	groups := m.keyMap.FullHelp()
	titles := []string{"Conversation", "Settings", "Navigation", "Misc"}

	var b strings.Builder
	b.WriteString(m.theme.SettingValue.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	for i, group := range groups {
		b.WriteString("\n")
		if i < len(titles) {
			b.WriteString(m.theme.SettingLabel.Render(titles[i]))
			b.WriteString("\n")
		}
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				m.theme.ShortcutKey.Render(fmt.Sprintf("%-10s", h.Key)),
				m.theme.ShortcutDesc.Render(h.Desc)))
		}
	}
	return b.String()
}

// =============================================================================
// THINKING LINE
// =============================================================================

func (m Model) renderThinking() string {
	if m.state != StateSending {
		return ""
	}
	elapsed := time.Since(m.thinkingStart).Round(time.Second)
	return fmt.Sprintf(" %s %s",
		m.spinner.View(),
		m.theme.ThinkingText.Render(fmt.Sprintf("%s is thinking... (%s)",
			m.ctrl.Settings().Persona.Name, elapsed)))
}

// =============================================================================
// INPUT AND STATUS BAR
// =============================================================================

func (m Model) renderInput() string {
	line := m.input.View()
	if m.theme.GetLayoutMode() != styles.LayoutNarrow {
		count := m.theme.CharCount.Render(
			fmt.Sprintf("%d/%d", util.RuneLen(m.input.Value()), m.input.CharLimit))
		line += " " + count
	}
	return m.theme.InputContainer.Render(line)
}

// renderStatusBar shows either the transient status line or the
// current session settings with shortcut hints.
func (m Model) renderStatusBar() string {
	if m.status != "" {
		return m.theme.StatusBar.Render(m.renderStatus())
	}

	s := m.ctrl.Settings()

	persist := m.theme.PersistOff.Render("persist off")
	if s.Persist {
		persist = m.theme.PersistOn.Render("persist on")
	}

	parts := []string{
		m.theme.SettingLabel.Render("persona ") + m.theme.SettingValue.Render(s.Persona.Name),
		m.theme.SettingLabel.Render("model ") + m.theme.SettingValue.Render(s.Model),
		m.theme.SettingLabel.Render("temp ") + m.theme.SettingValue.Render(fmt.Sprintf("%.2f", s.Temperature)),
		m.theme.SettingLabel.Render("tokens ") + m.theme.SettingValue.Render(fmt.Sprintf("%d", s.MaxTokens)),
		persist,
	}

	bar := strings.Join(parts, m.theme.SettingLabel.Render("  |  "))

	if m.theme.GetLayoutMode() == styles.LayoutWide {
		var hints []string
		for _, binding := range m.keyMap.ShortHelp() {
			h := binding.Help()
			hints = append(hints,
				m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
		}
		bar += m.theme.SettingLabel.Render("    ") + strings.Join(hints, "  ")
	}

	return m.theme.StatusBar.Render(bar)
}

func (m Model) renderStatus() string {
	status := m.status
	if m.width > 0 {
		status = util.TruncateWidth(status, calculateContentWidth(m.width, 6))
	}
	switch m.statusKind {
	case statusOK:
		return styles.RenderSuccess(status)
	case statusWarn:
		return styles.RenderWarning(status)
	case statusError:
		return styles.RenderError(status)
	default:
		return styles.RenderInfo(status)
	}
}
