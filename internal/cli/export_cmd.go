// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - Export command handler for the personachat CLI.
//
// Exports the saved conversation without starting a chat session.
//
// Examples:
//
//	personachat export                          Write conversation_export.json
//	personachat export --format markdown        Write a readable transcript
//	personachat export --output exports --open  Write elsewhere and open it
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/export"
	"github.com/jeranaias/personachat/internal/history"
	"github.com/jeranaias/personachat/internal/persona"
)

// HandleExport handles the "export" command.
func HandleExport(cfg *config.Config, args Args) error {
	parser := NewArgParser(args.Raw)

	histPath, err := cfg.HistoryPath()
	if err != nil {
		return err
	}
	turns, err := history.NewStore(histPath).Load()
	if err != nil {
		if errors.Is(err, history.ErrHistoryNotFound) {
			return NewNotFoundError("saved conversation")
		}
		return NewCommandError("export", "load history", err)
	}

	personaID := cfg.Persona
	if args.Persona != "" {
		personaID = args.Persona
	}
	p, err := persona.Get(personaID)
	if err != nil {
		return err
	}

	modelName := cfg.Completion.Model
	if args.Model != "" {
		modelName = args.Model
	}

	opts := export.DefaultOptions()
	opts.OutputDir = parser.FlagOrDefault("output", ".")
	opts.BaseName = parser.FlagOrDefault("name", export.DefaultBaseName)
	opts.OpenAfterExport = parser.BoolFlag("open")

	format := strings.ToLower(parser.FlagOrDefault("format", "json"))
	exporter, err := exporterForFormat(format)
	if err != nil {
		return err
	}

	doc := export.NewDocument(p.Name, modelName, turns)
	path, err := export.ExportToFile(doc, exporter, opts)
	if err != nil {
		return NewCommandError("export", "write file", err)
	}

	if args.JSON {
		fmt.Printf("{\"path\": %q, \"turns\": %d}\n", path, len(turns))
		return nil
	}
	fmt.Printf("Exported %d turns to %s\n", len(turns), path)
	return nil
}
