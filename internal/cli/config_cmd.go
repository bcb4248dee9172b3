// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handler for the personachat CLI.
//
// Examples:
//
//	personachat config            Show the active configuration (redacted)
//	personachat config show       Same
//	personachat config path       Print the config file location
//	personachat config init       Write a default config file
package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/personachat/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(cfg *config.Config, args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		// API keys are redacted; String never prints secrets.
		fmt.Println(cfg.String())
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "init":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !parser.BoolFlag("force") {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
		if err := config.Save(config.Default()); err != nil {
			return err
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return nil

	default:
		return NewValidationError("subcommand", parser.Subcommand(), "expected show, path, or init")
	}
}
