// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownExporter exports documents as a readable transcript.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a document to Markdown.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Conversation with %s\n\n", escapeMarkdown(doc.Persona)))

	sb.WriteString(fmt.Sprintf("- **Persona**: %s\n", doc.Persona))
	sb.WriteString(fmt.Sprintf("- **Model**: %s\n", doc.Model))
	sb.WriteString(fmt.Sprintf("- **Turns**: %d\n", len(doc.History)))
	sb.WriteString(fmt.Sprintf("- **Exported**: %s\n", formatTimestamp(epochTime(doc.ExportedAt))))
	sb.WriteString("\n---\n\n")

	if len(doc.History) == 0 {
		sb.WriteString("*No messages.*\n")
		return []byte(sb.String()), nil
	}

	for i, turn := range doc.History {
		label := e.formatRoleLabel(turn.Role, doc.Persona)
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				label,
				epochTime(turn.TS).Format("15:04:05")))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		sb.WriteString(strings.TrimSpace(turn.Text))
		sb.WriteString("\n\n")

		if i < len(doc.History)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// formatRoleLabel returns a heading label for the turn role. Assistant
// turns are labeled with the persona name, matching the chat view.
func (e *MarkdownExporter) formatRoleLabel(role, personaName string) string {
	switch role {
	case "user":
		return "You"
	case "assistant":
		if personaName != "" {
			return personaName
		}
		return "Assistant"
	default:
		if role == "" {
			return "Unknown"
		}
		runes := []rune(role)
		return strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
}

// epochTime converts an epoch-seconds float to a time.Time.
func epochTime(ts float64) time.Time {
	return time.Unix(0, int64(ts*float64(time.Second)))
}

// escapeMarkdown escapes characters that would break formatting in
// headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}
