// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for personachat.
//
// It contains the crash-safe file writer used by the history store, plus
// display-width and Unicode helpers shared by the TUI and CLI layers.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe string truncation with ellipsis
//   - TruncateWidth: display-width truncation for terminal columns
//   - NormalizeInput: trim plus Unicode NFC normalization for user input
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
