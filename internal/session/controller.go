// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/personachat/internal/export"
	"github.com/jeranaias/personachat/internal/history"
	"github.com/jeranaias/personachat/internal/model"
	"github.com/jeranaias/personachat/internal/openai"
	"github.com/jeranaias/personachat/internal/persona"
	"github.com/jeranaias/personachat/internal/util"
)

// HistoryWindow is the number of trailing turns sent to the completion
// backend along with the system prompt.
const HistoryWindow = 24

// Generation parameter bounds, matching the UI sliders.
const (
	MinTemperature = 0.0
	MaxTemperature = 1.0
	MinMaxTokens   = 64
	MaxMaxTokens   = 1024
)

// ErrEmptyInput indicates a send was attempted with a blank message.
var ErrEmptyInput = errors.New("empty input")

// Completer abstracts the completion backend so tests can substitute a
// fake. *openai.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, turns []model.Turn, p openai.GenParams) (string, error)
}

// Settings are the adjustable knobs for a session.
type Settings struct {
	Persona     persona.Persona
	Model       string
	Temperature float64
	MaxTokens   int
	Persist     bool
}

// Result is the outcome of a trigger: a fresh snapshot of the
// conversation plus an optional warning for recoverable conditions
// (unreadable history file, failed persist). A warning never means the
// trigger itself failed.
type Result struct {
	Turns   []model.Turn
	Warning string
}

// Controller owns one conversation and executes triggers against it.
type Controller struct {
	mu       sync.Mutex
	conv     *model.Conversation
	store    *history.Store
	client   Completer
	settings Settings
}

// New creates a controller with an empty conversation.
func New(store *history.Store, client Completer, settings Settings) *Controller {
	return &Controller{
		conv:     model.NewConversation(),
		store:    store,
		client:   client,
		settings: settings,
	}
}

// Resume loads the persisted history into the conversation when
// persistence is enabled. A missing file starts an empty conversation
// silently; an unreadable one starts empty with a warning. Resume
// never fails.
func (c *Controller) Resume() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.settings.Persist {
		return c.result("")
	}

	turns, err := c.store.Load()
	if err != nil {
		if errors.Is(err, history.ErrHistoryNotFound) {
			return c.result("")
		}
		return c.result(fmt.Sprintf("Could not load chat: %v", err))
	}

	c.conv = model.FromTurns(turns)
	return c.result("")
}

// Send runs one complete exchange: append the user turn, call the
// completion backend with the system prompt plus the trailing history
// window, and append the reply.
//
// On completion failure the user turn stays in the conversation and
// the error is returned alongside a snapshot reflecting that. Blank
// input (after trimming) fails with ErrEmptyInput and changes nothing.
func (c *Controller) Send(ctx context.Context, input string) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := util.NormalizeInput(input)
	if text == "" {
		return c.result(""), ErrEmptyInput
	}

	c.conv.AppendUser(text)

	reply, err := c.client.Complete(ctx, c.settings.Persona.SystemPrompt, c.conv.Window(HistoryWindow), openai.GenParams{
		Model:       c.settings.Model,
		Temperature: c.settings.Temperature,
		MaxTokens:   c.settings.MaxTokens,
	})
	if err != nil {
		return c.result(""), err
	}

	c.conv.AppendAssistant(strings.TrimSpace(reply))

	return c.result(c.persist()), nil
}

// Clear empties the conversation and removes the persisted snapshot.
// Clearing an empty conversation is a no-op that still succeeds.
func (c *Controller) Clear() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conv.Clear()

	var warning string
	if c.settings.Persist {
		if err := c.store.Delete(); err != nil {
			warning = fmt.Sprintf("Could not remove saved chat: %v", err)
		}
	}
	return c.result(warning)
}

// Export freezes the current conversation into an export document
// carrying the active persona and model. Exporting an empty
// conversation produces a document with an empty history array.
func (c *Controller) Export() *export.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return export.NewDocument(c.settings.Persona.Name, c.settings.Model, c.conv.Snapshot())
}

// Save persists the current conversation regardless of the persist
// setting. Used by the chat REPL's /save command.
func (c *Controller) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Save(c.conv.Snapshot())
}

// TogglePersist flips session persistence and returns the new state.
// Turning persistence on writes the current conversation immediately
// unless it is empty; a failed write is reported as a warning and
// leaves the toggle on.
func (c *Controller) TogglePersist() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Persist = !c.settings.Persist
	if !c.settings.Persist {
		return false, ""
	}
	return true, c.persist()
}

// Snapshot returns the current conversation turns without running a
// trigger.
func (c *Controller) Snapshot() []model.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Snapshot()
}

// LastReply returns the most recent assistant turn, if any.
func (c *Controller) LastReply() (model.Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.LastAssistant()
}

// Settings returns a copy of the current settings.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetPersona switches the active persona. The conversation is kept;
// only future completions use the new system prompt.
func (c *Controller) SetPersona(p persona.Persona) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Persona = p
}

// CyclePersona switches to the next persona in display order and
// returns it.
func (c *Controller) CyclePersona() persona.Persona {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Persona = persona.Next(c.settings.Persona)
	return c.settings.Persona
}

// SetModel switches the completion model for future sends.
func (c *Controller) SetModel(m string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Model = m
}

// AdjustTemperature shifts the temperature by delta, clamped to
// [0.0, 1.0], and returns the new value.
func (c *Controller) AdjustTemperature(delta float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.Temperature = ClampTemperature(c.settings.Temperature + delta)
	return c.settings.Temperature
}

// AdjustMaxTokens shifts the token budget by delta, clamped to
// [64, 1024], and returns the new value.
func (c *Controller) AdjustMaxTokens(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings.MaxTokens = ClampMaxTokens(c.settings.MaxTokens + delta)
	return c.settings.MaxTokens
}

// ClampTemperature bounds a temperature to [0.0, 1.0].
func ClampTemperature(t float64) float64 {
	if t < MinTemperature {
		return MinTemperature
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

// ClampMaxTokens bounds a token budget to [64, 1024].
func ClampMaxTokens(n int) int {
	if n < MinMaxTokens {
		return MinMaxTokens
	}
	if n > MaxMaxTokens {
		return MaxMaxTokens
	}
	return n
}

// persist writes the snapshot when persistence is enabled and returns
// a warning string on failure. Persist failures never fail the trigger.
func (c *Controller) persist() string {
	if !c.settings.Persist || c.conv.Empty() {
		return ""
	}
	if err := c.store.Save(c.conv.Snapshot()); err != nil {
		return fmt.Sprintf("Could not save chat: %v", err)
	}
	return ""
}

// result builds a Result from the current conversation. Callers must
// hold the mutex.
func (c *Controller) result(warning string) Result {
	return Result{Turns: c.conv.Snapshot(), Warning: warning}
}

// LastTimestamp reports when the conversation last changed.
func (c *Controller) LastTimestamp() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.LastTimestamp()
}
