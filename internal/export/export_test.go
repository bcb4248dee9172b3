// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/personachat/internal/model"
)

func testDocument() *Document {
	turns := []model.Turn{
		{Role: model.RoleUser, Text: "tell me a joke", Timestamp: time.Unix(1700000000, 0)},
		{Role: model.RoleAssistant, Text: "your git history", Timestamp: time.Unix(1700000002, 0)},
	}
	return NewDocument("RoastBot", "gpt-3.5-turbo", turns)
}

func TestNewDocument(t *testing.T) {
	before := float64(time.Now().UnixNano()) / 1e9
	doc := testDocument()
	after := float64(time.Now().UnixNano()) / 1e9

	if doc.Persona != "RoastBot" {
		t.Errorf("Persona = %q", doc.Persona)
	}
	if doc.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q", doc.Model)
	}
	if doc.ExportedAt < before || doc.ExportedAt > after {
		t.Errorf("ExportedAt %f not in [%f, %f]", doc.ExportedAt, before, after)
	}
	if len(doc.History) != 2 {
		t.Fatalf("History has %d entries", len(doc.History))
	}
	if doc.History[0].Role != "user" || doc.History[0].TS != 1700000000.0 {
		t.Errorf("History[0] = %+v", doc.History[0])
	}
}

func TestNewDocument_EmptyConversation(t *testing.T) {
	doc := NewDocument("EmojiBot", "gpt-4", nil)
	if doc.History == nil {
		t.Error("empty document History is nil, want empty slice")
	}
}

func TestJSONExporter_WireFormat(t *testing.T) {
	doc := testDocument()
	content, err := NewJSONExporter(nil).Export(doc)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		t.Fatalf("output is not a JSON object: %v", err)
	}
	for _, key := range []string{"exported_at", "persona", "model", "history"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("output missing %q", key)
		}
	}

	var history []map[string]any
	if err := json.Unmarshal(raw["history"], &history); err != nil {
		t.Fatalf("history field: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d entries", len(history))
	}
	for _, entry := range history {
		for _, key := range []string{"role", "text", "ts"} {
			if _, ok := entry[key]; !ok {
				t.Errorf("history entry missing %q: %v", key, entry)
			}
		}
	}
}

func TestJSONExporter_NilDocument(t *testing.T) {
	if _, err := NewJSONExporter(nil).Export(nil); err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestJSONExporter_Metadata(t *testing.T) {
	e := NewJSONExporter(nil)
	if e.FileExtension() != ".json" {
		t.Errorf("FileExtension = %q", e.FileExtension())
	}
	if e.MimeType() != "application/json" {
		t.Errorf("MimeType = %q", e.MimeType())
	}
}

func TestMarkdownExporter(t *testing.T) {
	doc := testDocument()
	content, err := NewMarkdownExporter(nil).Export(doc)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	text := string(content)
	if !strings.Contains(text, "# Conversation with RoastBot") {
		t.Error("missing title heading")
	}
	if !strings.Contains(text, "### You") {
		t.Error("missing user heading")
	}
	if !strings.Contains(text, "### RoastBot") {
		t.Error("assistant heading not labeled with persona")
	}
	if !strings.Contains(text, "tell me a joke") || !strings.Contains(text, "your git history") {
		t.Error("turn text missing from transcript")
	}
	if !strings.Contains(text, "gpt-3.5-turbo") {
		t.Error("model missing from metadata")
	}
}

func TestMarkdownExporter_EmptyHistory(t *testing.T) {
	doc := NewDocument("EmojiBot", "gpt-4", nil)
	content, err := NewMarkdownExporter(nil).Export(doc)
	if err != nil {
		t.Fatalf("Export of empty document failed: %v", err)
	}
	if !strings.Contains(string(content), "No messages") {
		t.Error("empty transcript missing placeholder")
	}
}

func TestMarkdownExporter_NoTimestamps(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeTimestamps = false

	content, err := NewMarkdownExporter(opts).Export(testDocument())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(content), "<sub>") {
		t.Error("timestamps rendered despite IncludeTimestamps=false")
	}
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := ExportToFile(testDocument(), NewJSONExporter(opts), opts)
	if err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	if filepath.Base(path) != "conversation_export.json" {
		t.Errorf("filename = %q, want conversation_export.json", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("written file is not valid JSON: %v", err)
	}
	if doc.Persona != "RoastBot" {
		t.Errorf("round-tripped persona = %q", doc.Persona)
	}
}

func TestExportToFile_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "deep")
	opts := DefaultOptions()
	opts.OutputDir = dir

	if _, err := ExportToFile(testDocument(), NewJSONExporter(opts), opts); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("output dir not created: %v", err)
	}
}

func TestExportToFile_CustomBaseName(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.BaseName = "my chat: roasted?"

	path, err := ExportToFile(testDocument(), NewMarkdownExporter(opts), opts)
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(path)
	if strings.ContainsAny(base, ":? ") {
		t.Errorf("filename %q not sanitized", base)
	}
	if !strings.HasSuffix(base, ".md") {
		t.Errorf("filename %q missing extension", base)
	}
}

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"simple", "simple"},
		{"has space", "has_space"},
		{"a/b\\c:d", "a-b-c-d"},
		{"", DefaultBaseName},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := sanitizeFilename(tc.input); got != tc.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
