// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session coordinates the conversation, completion client, and
// history store behind a single serialized controller.
//
// Every user-visible trigger (send, clear, export) is one method call
// that runs as a complete transaction and returns a fresh snapshot of
// the conversation. A mutex serializes triggers so the conversation is
// only ever touched by one at a time.
//
// # Key Types
//
//   - Controller: owns one conversation and executes triggers
//   - Settings: the adjustable session knobs (persona, model, sampling)
//   - Result: trigger outcome, a snapshot plus an optional warning
//
// # Usage
//
// Create a controller and resume any persisted history:
//
//	ctrl := session.New(store, client, settings)
//	res := ctrl.Resume()
//
// Run an exchange:
//
//	res, err := ctrl.Send(ctx, "tell me a joke")
//
// Warnings on a Result report recoverable conditions (an unreadable
// history file, a failed persist); they never mean the trigger failed.
package session
