// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export turns conversation snapshots into downloadable documents.
//
// # Key Types
//
//   - Document: snapshot plus persona/model metadata, frozen at export time
//   - Exporter: export format interface
//   - Options: export configuration options
//
// # Supported Formats
//
//   - JSON: machine-readable, mirrors the persisted history schema
//   - Markdown: human-readable transcript
//
// # Usage
//
//	doc := export.NewDocument("RoastBot", "gpt-3.5-turbo", turns)
//	path, err := export.ExportToFile(doc, export.NewJSONExporter(nil), nil)
package export
