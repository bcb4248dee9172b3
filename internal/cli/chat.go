// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the personachat CLI.
//
// Handles "personachat chat" which provides a readline-style REPL for
// conversing with a persona. For the full-screen interface use the
// default TUI instead.
//
// Examples:
//
//	personachat chat                          Chat with the configured persona
//	personachat chat --persona emojibot       Chat with EmojiBot
//	personachat chat --persist                Save the conversation between runs
//
// Interactive commands (during chat):
//
//	/help               Show available commands
//	/persona [name]     Show or switch persona
//	/model [name]       Show or switch model
//	/temp [value]       Show or set temperature
//	/tokens [value]     Show or set max tokens
//	/save               Save the conversation now
//	/clear              Clear the conversation
//	/export [json|md]   Export the conversation
//	/raw                Dump the conversation as JSON
//	/quit               Exit chat
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/export"
	"github.com/jeranaias/personachat/internal/history"
	"github.com/jeranaias/personachat/internal/persona"
	"github.com/jeranaias/personachat/internal/session"
	"github.com/jeranaias/personachat/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// Supports arrow keys for history navigation.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support. The
// input history file is separate from the persisted conversation.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "cli_history")

	c := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the interactive REPL.
func HandleChat(cfg *config.Config, args Args) error {
	if !IsTTY() {
		return fmt.Errorf("chat requires an interactive terminal; use 'ask' for piped input")
	}

	settings, err := BuildSettings(cfg, args)
	if err != nil {
		return err
	}

	client := NewCompletionClient(cfg)
	if !client.IsConfigured() {
		return fmt.Errorf("no API key configured; set OPENAI_API_KEY or completion.api_key in the config file")
	}

	histPath, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	ctrl := session.New(history.NewStore(histPath), client, settings)

	resume := ctrl.Resume()
	if resume.Warning != "" {
		fmt.Println(warningStyle.Render(resume.Warning))
	}
	if n := len(resume.Turns); n > 0 {
		last := resume.Turns[n-1]
		fmt.Println(commandStyle.Render(fmt.Sprintf("Resumed %d messages, last at %s: %s",
			n, ctrl.LastTimestamp().Format("Jan 2 15:04"), last.Preview(48))))
	}

	if !args.Quiet {
		printChatWelcome(ctrl)
	}

	input := NewChatCLI()
	defer input.Close()

	for {
		line, err := input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runChatCommand(ctrl, line, args)
			if err != nil {
				fmt.Println(errorStyle.Render("Error: " + err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		result, err := ctrl.Send(context.Background(), line)
		if err != nil {
			fmt.Println(errorStyle.Render("Error: " + err.Error()))
			continue
		}
		if result.Warning != "" {
			fmt.Println(warningStyle.Render(result.Warning))
		}

		if turn, ok := ctrl.LastReply(); ok {
			fmt.Println(personaLabelStyle.Render(ctrl.Settings().Persona.Name + ":"))
			displayResponse(turn.Text)
		}
	}
}

// printChatWelcome prints the REPL banner.
func printChatWelcome(ctrl *session.Controller) {
	s := ctrl.Settings()
	fmt.Println(welcomeStyle.Render("personachat"))
	fmt.Printf("%s\n", infoStyle.Render(fmt.Sprintf(
		"Chatting with %s using %s. Type /help for commands, /quit to exit.",
		s.Persona.Name, s.Model)))
	fmt.Println(infoStyle.Render("Try: " + persona.ExamplePrompts[0]))
	fmt.Println()
}

// runChatCommand executes a slash command. Returns true when the REPL
// should exit.
func runChatCommand(ctrl *session.Controller, line string, args Args) (bool, error) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	rest := fields[1:]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h":
		printChatHelp()
		return false, nil

	case "/persona":
		if len(rest) == 0 {
			fmt.Println(commandStyle.Render("Persona: " + ctrl.Settings().Persona.Name))
			fmt.Println(infoStyle.Render("Available: " + strings.Join(persona.IDs(), ", ")))
			return false, nil
		}
		p, err := persona.Get(rest[0])
		if err != nil {
			return false, err
		}
		ctrl.SetPersona(p)
		fmt.Println(commandStyle.Render("Switched to " + p.Name))
		return false, nil

	case "/model":
		if len(rest) == 0 {
			fmt.Println(commandStyle.Render("Model: " + ctrl.Settings().Model))
			fmt.Println(infoStyle.Render("Known: " + strings.Join(config.DefaultModels, ", ")))
			return false, nil
		}
		ctrl.SetModel(rest[0])
		fmt.Println(commandStyle.Render("Switched to " + rest[0]))
		return false, nil

	case "/temp", "/temperature":
		if len(rest) == 0 {
			fmt.Println(commandStyle.Render(fmt.Sprintf("Temperature: %.2f", ctrl.Settings().Temperature)))
			return false, nil
		}
		v, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return false, NewValidationError("temperature", rest[0], "must be a number between 0.0 and 1.0")
		}
		got := ctrl.AdjustTemperature(session.ClampTemperature(v) - ctrl.Settings().Temperature)
		fmt.Println(commandStyle.Render(fmt.Sprintf("Temperature: %.2f", got)))
		return false, nil

	case "/tokens", "/max-tokens":
		if len(rest) == 0 {
			fmt.Println(commandStyle.Render(fmt.Sprintf("Max tokens: %d", ctrl.Settings().MaxTokens)))
			return false, nil
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return false, NewValidationError("max tokens", rest[0], "must be an integer between 64 and 1024")
		}
		got := ctrl.AdjustMaxTokens(session.ClampMaxTokens(n) - ctrl.Settings().MaxTokens)
		fmt.Println(commandStyle.Render(fmt.Sprintf("Max tokens: %d", got)))
		return false, nil

	case "/save", "/w":
		if err := ctrl.Save(); err != nil {
			return false, err
		}
		fmt.Println(commandStyle.Render("Saved."))
		return false, nil

	case "/clear", "/c":
		result := ctrl.Clear()
		if result.Warning != "" {
			fmt.Println(warningStyle.Render(result.Warning))
		}
		fmt.Println(commandStyle.Render("Conversation cleared."))
		return false, nil

	case "/export":
		format := "json"
		if len(rest) > 0 {
			format = strings.ToLower(rest[0])
		}
		exporter, err := exporterForFormat(format)
		if err != nil {
			return false, err
		}
		path, err := export.ExportToFile(ctrl.Export(), exporter, export.DefaultOptions())
		if err != nil {
			return false, err
		}
		fmt.Println(commandStyle.Render("Exported to " + path))
		return false, nil

	case "/raw":
		data, err := json.MarshalIndent(ctrl.Export(), "", "  ")
		if err != nil {
			return false, err
		}
		fmt.Println(string(data))
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s; try /help", cmd)
	}
}

// printChatHelp lists the slash commands.
func printChatHelp() {
	help := [][2]string{
		{"/persona [name]", "Show or switch persona"},
		{"/model [name]", "Show or switch model"},
		{"/temp [value]", "Show or set temperature (0.0-1.0)"},
		{"/tokens [value]", "Show or set max tokens (64-1024)"},
		{"/save", "Save the conversation now"},
		{"/clear", "Clear the conversation"},
		{"/export [json|md]", "Export the conversation"},
		{"/raw", "Dump the conversation as JSON"},
		{"/quit", "Exit chat"},
	}
	for _, h := range help {
		fmt.Printf("  %s %s\n",
			commandStyle.Render(fmt.Sprintf("%-18s", h[0])),
			infoStyle.Render(h[1]))
	}
}

// exporterForFormat maps a CLI format name to an exporter.
func exporterForFormat(format string) (export.Exporter, error) {
	switch format {
	case "json":
		return export.NewJSONExporter(nil), nil
	case "md", "markdown":
		return export.NewMarkdownExporter(nil), nil
	default:
		return nil, NewValidationError("format", format, "supported formats are json and markdown")
	}
}
