// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history persists conversations as a single JSON snapshot file.
//
// The on-disk format matches the original export schema: a top-level
// object with a "saved_at" epoch-seconds float and a "history" array of
// {"role", "text", "ts"} objects. Each Save replaces the whole file
// atomically; there is no append log.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jeranaias/personachat/internal/model"
	"github.com/jeranaias/personachat/internal/util"
)

// Sentinel errors for history store operations.
var (
	// ErrHistoryNotFound indicates no snapshot file exists yet.
	ErrHistoryNotFound = errors.New("history file not found")
	// ErrHistoryCorrupt indicates the snapshot file exists but cannot
	// be decoded.
	ErrHistoryCorrupt = errors.New("history file corrupt")
)

// HistoryError wraps store failures with the file path for context.
type HistoryError struct {
	Path string
	Err  error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Path, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}

// Is supports errors.Is checks against the sentinel errors.
func (e *HistoryError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// StoredTurn is the wire representation of a single turn.
// Timestamps are epoch seconds as a float, matching the original file
// format, so existing history files load unchanged.
type StoredTurn struct {
	Role string  `json:"role"`
	Text string  `json:"text"`
	TS   float64 `json:"ts"`
}

// Snapshot is the wire representation of a persisted conversation.
type Snapshot struct {
	SavedAt float64      `json:"saved_at"`
	History []StoredTurn `json:"history"`
}

// Store reads and writes conversation snapshots at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot file and returns its turns in stored order.
//
// A missing file returns ErrHistoryNotFound; an unreadable or
// undecodable file returns ErrHistoryCorrupt. Both are wrapped in a
// HistoryError. Callers treat these as recoverable and start from an
// empty conversation.
func (s *Store) Load() ([]model.Turn, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &HistoryError{Path: s.path, Err: ErrHistoryNotFound}
		}
		return nil, &HistoryError{Path: s.path, Err: fmt.Errorf("%w: %v", ErrHistoryCorrupt, err)}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &HistoryError{Path: s.path, Err: fmt.Errorf("%w: %v", ErrHistoryCorrupt, err)}
	}

	turns := make([]model.Turn, 0, len(snap.History))
	for _, st := range snap.History {
		role := model.Role(st.Role)
		if !role.Valid() {
			// Tolerate entries written by other tools; skip rather
			// than reject the whole file.
			continue
		}
		turns = append(turns, model.Turn{
			Role:      role,
			Text:      st.Text,
			Timestamp: fromEpoch(st.TS),
		})
	}
	return turns, nil
}

// Save writes all turns as a fresh snapshot, replacing any previous
// file. The write is atomic and the file is private to the user.
func (s *Store) Save(turns []model.Turn) error {
	snap := Snapshot{
		SavedAt: toEpoch(time.Now()),
		History: EncodeTurns(turns),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &HistoryError{Path: s.path, Err: fmt.Errorf("failed to encode snapshot: %w", err)}
	}

	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return &HistoryError{Path: s.path, Err: err}
	}
	return nil
}

// Delete removes the snapshot file. Deleting a missing file is not an
// error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return &HistoryError{Path: s.path, Err: err}
	}
	return nil
}

// EncodeTurns converts turns to their wire representation. The export
// package shares this encoding so persisted and exported history agree.
func EncodeTurns(turns []model.Turn) []StoredTurn {
	out := make([]StoredTurn, len(turns))
	for i, t := range turns {
		out[i] = StoredTurn{
			Role: string(t.Role),
			Text: t.Text,
			TS:   toEpoch(t.Timestamp),
		}
	}
	return out
}

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromEpoch(ts float64) time.Time {
	return time.Unix(0, int64(ts*float64(time.Second)))
}
