// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for personachat.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/openai"
	"github.com/jeranaias/personachat/internal/persona"
	"github.com/jeranaias/personachat/internal/session"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Session overrides
	Persona     string
	Model       string
	Temperature float64
	MaxTokens   int
	HasTemp     bool
	HasTokens   bool
	Persist     bool
	NoPersist   bool

	// Command-specific
	Query      string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `personachat - persona chatbot for the terminal

Personachat is an OpenAI-backed chatbot with switchable personas.

It provides:
  - Three built-in personas (RoastBot, ShakespeareBot, EmojiBot)
  - A full-screen TUI with markdown rendering
  - A readline-style REPL and a one-shot ask command
  - Optional conversation persistence and JSON/Markdown export

Usage:
  personachat                      Start TUI (default)
  personachat ask "question"       Ask a single question
  personachat chat                 Interactive REPL chat
  personachat export               Export the saved conversation
    --format json|markdown         Export format (default: json)
    --output DIR                   Output directory (default: .)
  personachat config [show|path]   Configuration
  personachat version              Show version
  personachat help                 Show this help

Global flags:
  --persona NAME        Persona to chat with (roastbot, shakespearebot, emojibot)
  --model NAME          Completion model (gpt-3.5-turbo, gpt-4)
  --temperature N       Sampling temperature (0.0-1.0)
  --max-tokens N        Reply token cap (64-1024)
  --persist             Save the conversation between runs
  --no-persist          Do not save the conversation
  -q, --quiet           Minimal output
  -v, --verbose         Verbose output
  --json                Machine-readable output where supported

Interactive commands (during chat):
  /help                 Show available commands
  /persona [name]       Show or switch persona
  /model [name]         Show or switch model
  /temp [value]         Show or set temperature
  /tokens [value]       Show or set max tokens
  /save                 Save the conversation now
  /clear                Clear the conversation
  /export [json|md]     Export the conversation
  /raw                  Dump the conversation as JSON
  /quit                 Exit chat

Environment:
  OPENAI_API_KEY        API key for the completion backend (required)
  OPENAI_BASE_URL       Alternate OpenAI-compatible endpoint

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("personachat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	// No remaining args: default to the TUI
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "export":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdExport, parsedArgs

	case "config":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdConfig, parsedArgs

	case "version", "--version", "-V":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		// Unknown word: treat the whole line as an ask query, so
		// `personachat "tell me a joke"` works.
		all := append([]string{cmd}, remaining...)
		parseAskArgs(&parsedArgs, all)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts flags valid for every command.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--persist":
			parsedArgs.Persist = true
		case "--no-persist":
			parsedArgs.NoPersist = true
		case "--persona", "-p":
			if i+1 < len(args) {
				i++
				parsedArgs.Persona = args[i]
			}
		case "--model", "-m":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--temperature", "-t":
			if i+1 < len(args) {
				i++
				if v, err := strconv.ParseFloat(args[i], 64); err == nil {
					parsedArgs.Temperature = v
					parsedArgs.HasTemp = true
				}
			}
		case "--max-tokens":
			if i+1 < len(args) {
				i++
				if n, err := strconv.Atoi(args[i]); err == nil {
					parsedArgs.MaxTokens = n
					parsedArgs.HasTokens = true
				}
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--persona="):
				parsedArgs.Persona = strings.TrimPrefix(arg, "--persona=")
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--temperature="):
				if v, err := strconv.ParseFloat(strings.TrimPrefix(arg, "--temperature="), 64); err == nil {
					parsedArgs.Temperature = v
					parsedArgs.HasTemp = true
				}
			case strings.HasPrefix(arg, "--max-tokens="):
				if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--max-tokens=")); err == nil {
					parsedArgs.MaxTokens = n
					parsedArgs.HasTokens = true
				}
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs joins the remaining positional words into the query.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// =============================================================================
// SETTINGS RESOLUTION
// =============================================================================

// BuildSettings resolves session settings from config plus CLI
// overrides. Flags win over the config file; everything is clamped to
// the supported ranges.
func BuildSettings(cfg *config.Config, args Args) (session.Settings, error) {
	personaID := cfg.Persona
	if args.Persona != "" {
		personaID = args.Persona
	}
	p, err := persona.Get(personaID)
	if err != nil {
		return session.Settings{}, err
	}

	modelName := cfg.Completion.Model
	if args.Model != "" {
		modelName = args.Model
	}

	temperature := cfg.Completion.Temperature
	if args.HasTemp {
		temperature = args.Temperature
	}

	maxTokens := cfg.Completion.MaxTokens
	if args.HasTokens {
		maxTokens = args.MaxTokens
	}

	persist := cfg.History.Persist
	if args.Persist {
		persist = true
	}
	if args.NoPersist {
		persist = false
	}

	return session.Settings{
		Persona:     p,
		Model:       modelName,
		Temperature: session.ClampTemperature(temperature),
		MaxTokens:   session.ClampMaxTokens(maxTokens),
		Persist:     persist,
	}, nil
}

// NewCompletionClient builds the OpenAI client from config.
func NewCompletionClient(cfg *config.Config) *openai.Client {
	return openai.NewClient(openai.Options{
		APIKey:            cfg.Completion.APIKey,
		BaseURL:           cfg.Completion.BaseURL,
		Timeout:           time.Duration(cfg.Completion.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Completion.MaxRetries,
		RequestsPerMinute: cfg.Completion.RequestsPerMinute,
	})
}
