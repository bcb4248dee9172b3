// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export turns conversation snapshots into downloadable
// documents.
//
// The JSON format is the canonical one and mirrors the persisted
// history schema so an export can be re-imported as a history file's
// "history" array. Markdown export is a readable transcript.
package export

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jeranaias/personachat/internal/history"
	"github.com/jeranaias/personachat/internal/model"
)

// DefaultBaseName is the filename used when none is configured,
// without extension.
const DefaultBaseName = "conversation_export"

// Document is a conversation snapshot frozen at export time, together
// with the persona and model that produced it. ExportedAt is epoch
// seconds, matching the history file's saved_at field.
type Document struct {
	ExportedAt float64              `json:"exported_at"`
	Persona    string               `json:"persona"`
	Model      string               `json:"model"`
	History    []history.StoredTurn `json:"history"`
}

// NewDocument freezes the given turns into an export document stamped
// with the current time.
func NewDocument(personaName, modelName string, turns []model.Turn) *Document {
	return &Document{
		ExportedAt: float64(time.Now().UnixNano()) / float64(time.Second),
		Persona:    personaName,
		Model:      modelName,
		History:    history.EncodeTurns(turns),
	}
}

// Exporter defines the interface for conversation exporters.
type Exporter interface {
	// Export converts a document to the target format.
	Export(doc *Document) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".json").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// BaseName is the output filename without extension.
	// Default: DefaultBaseName
	BaseName string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	// IncludeTimestamps includes per-turn timestamps in readable
	// formats. The JSON format always carries timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		BaseName:          DefaultBaseName,
		OpenAfterExport:   false,
		IncludeTimestamps: true,
	}
}

// ExportToFile exports a document to a file using the specified
// exporter and returns the output file path.
func ExportToFile(doc *Document, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	baseName := opts.BaseName
	if baseName == "" {
		baseName = DefaultBaseName
	}
	filename := sanitizeFilename(baseName) + exporter.FileExtension()

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal - file was still created successfully
			fmt.Printf("Warning: Could not open file: %v\n", err)
		}
	}

	return outputPath, nil
}

// sanitizeFilename removes or replaces characters that are invalid in
// filenames.
func sanitizeFilename(s string) string {
	maxLen := 50
	runes := []rune(s)
	if len(runes) > maxLen {
		s = string(runes[:maxLen])
	}

	// Problematic on Windows and Unix
	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	result := []rune{}
	for _, r := range s {
		if replacement, found := replacer[r]; found {
			result = append(result, replacement)
		} else if r < 32 || r == 127 {
			result = append(result, '-')
		} else {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return DefaultBaseName
	}

	return string(result)
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
