// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command handler for the personachat CLI.
//
// Handles "personachat ask" which runs a single exchange and prints
// the reply. The conversation is not persisted; use chat or the TUI
// for an ongoing conversation.
//
// Examples:
//
//	personachat ask "Tell me a joke about programming."
//	personachat ask --persona shakespearebot "How goes the weather?"
//	personachat ask --json "Convert 'I love pizza' into emojis."
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/history"
	"github.com/jeranaias/personachat/internal/session"
	"github.com/jeranaias/personachat/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the shared glamour renderer for markdown output.
var markdownRenderer *glamour.TermRenderer

func init() {
	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}

	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse displays a response with markdown rendering when
// appropriate. Piped output and NO_COLOR environments stay plain so
// they can be processed by other tools.
func displayResponse(response string) {
	if ColorsEnabled() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Println(response)
	}
}

// =============================================================================
// STYLES
// =============================================================================

var (
	personaLabelStyle = lipgloss.NewStyle().
				Foreground(styles.Purple).
				Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// askResult is the JSON shape printed with --json.
type askResult struct {
	Persona string `json:"persona"`
	Model   string `json:"model"`
	Query   string `json:"query"`
	Reply   string `json:"reply"`
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk runs one exchange and prints the reply.
func HandleAsk(cfg *config.Config, args Args) error {
	if args.Query == "" {
		return NewValidationError("query", "", "ask needs a question, e.g. personachat ask \"Tell me a joke.\"")
	}

	settings, err := BuildSettings(cfg, args)
	if err != nil {
		return err
	}
	// One-shot exchanges never persist
	settings.Persist = false

	client := NewCompletionClient(cfg)
	if !client.IsConfigured() {
		return fmt.Errorf("no API key configured; set OPENAI_API_KEY or completion.api_key in the config file")
	}

	histPath, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	ctrl := session.New(history.NewStore(histPath), client, settings)

	if args.Verbose {
		fmt.Fprintf(os.Stderr, "%s\n",
			infoStyle.Render(fmt.Sprintf("persona=%s model=%s temp=%.2f tokens=%d key=%s",
				settings.Persona.ID, settings.Model, settings.Temperature,
				settings.MaxTokens, client.KeyFingerprint())))
	}

	if _, err := ctrl.Send(context.Background(), args.Query); err != nil {
		return NewCommandError("ask", "completion", err)
	}

	var reply string
	if turn, ok := ctrl.LastReply(); ok {
		reply = turn.Text
	}

	if args.JSON {
		out := askResult{
			Persona: settings.Persona.ID,
			Model:   settings.Model,
			Query:   args.Query,
			Reply:   reply,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if !args.Quiet {
		fmt.Println(personaLabelStyle.Render(settings.Persona.Name + ":"))
	}
	displayResponse(reply)
	return nil
}
