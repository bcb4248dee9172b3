// personachat - a persona chatbot for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/personachat/internal/cli"
	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/history"
	"github.com/jeranaias/personachat/internal/session"
	"github.com/jeranaias/personachat/internal/ui/chat"
	"github.com/jeranaias/personachat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	// Commands that need no configuration
	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		cli.DisplayError(err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}

	switch cmd {
	case cli.CmdTUI:
		runTUI(cfg, args)
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(cfg, args), args)
	case cli.CmdChat:
		exitOnError(cli.HandleChat(cfg, args), args)
	case cli.CmdExport:
		exitOnError(cli.HandleExport(cfg, args), args)
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(cfg, args), args)
	default:
		cli.PrintUsage()
		os.Exit(cli.ExitUsage)
	}
}

// exitOnError prints the error and exits with its mapped code.
func exitOnError(err error, args cli.Args) {
	if err == nil {
		return
	}
	cli.DisplayError(err, args.JSON)
	os.Exit(cli.GetExitCode(err))
}

// runTUI starts the full-screen interface.
func runTUI(cfg *config.Config, args cli.Args) {
	settings, err := cli.BuildSettings(cfg, args)
	if err != nil {
		cli.DisplayError(err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}

	client := cli.NewCompletionClient(cfg)
	if !client.IsConfigured() && !args.Quiet {
		fmt.Fprintln(os.Stderr, "Warning: no API key configured; set OPENAI_API_KEY or completion.api_key in the config file")
	}

	histPath, err := cfg.HistoryPath()
	if err != nil {
		cli.DisplayError(err, args.JSON)
		os.Exit(cli.ExitError)
	}

	ctrl := session.New(history.NewStore(histPath), client, settings)
	resume := ctrl.Resume()
	if resume.Warning != "" {
		fmt.Fprintln(os.Stderr, resume.Warning)
	}

	// The TUI owns the terminal, so request logging from the HTTP
	// client goes to a file instead of the screen.
	redirectLogs()

	lipgloss.SetColorProfile(cli.GetColorProfile())
	theme := styles.NewTheme(cfg.UI.Theme)
	m := chat.New(ctrl, cfg, theme)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	// Reload UI settings when the config file changes on disk.
	if tomlPath, err := config.ConfigPathTOML(); err == nil {
		watcher, err := config.NewWatcher(tomlPath, func(c *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: c})
		})
		if err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running personachat: %v\n", err)
		os.Exit(1)
	}
}

// redirectLogs sends the standard logger to a file under the config
// directory. Logging is best effort; failures leave the default
// writer in place.
func redirectLogs() {
	dir, err := config.ConfigDir()
	if err != nil {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "personachat.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return
	}
	log.SetOutput(f)
}
