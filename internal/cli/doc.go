// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements argument parsing and command handlers for
// the personachat command line.
//
// The default command starts the full-screen TUI; ask runs a single
// exchange, chat provides a readline-style REPL, and export/config
// operate on the saved conversation and config file without starting
// a session.
package cli
