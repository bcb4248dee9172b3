// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/personachat/internal/config"
	"github.com/jeranaias/personachat/internal/history"
	"github.com/jeranaias/personachat/internal/model"
	"github.com/jeranaias/personachat/internal/openai"
	"github.com/jeranaias/personachat/internal/persona"
	"github.com/jeranaias/personachat/internal/session"
	"github.com/jeranaias/personachat/internal/ui/styles"
)

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, _ string, _ []model.Turn, _ openai.GenParams) (string, error) {
	return f.reply, f.err
}

func newTestModel(t *testing.T, completer session.Completer) (Model, *session.Controller) {
	t.Helper()

	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))
	ctrl := session.New(store, completer, session.Settings{
		Persona:     persona.Default(),
		Model:       config.DefaultModels[0],
		Temperature: 0.65,
		MaxTokens:   512,
	})

	cfg := config.Default()
	cfg.UI.Markdown = false

	return New(ctrl, cfg, styles.NewTheme("dark")), ctrl
}

func TestSubmitEmptyInputSetsWarning(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{reply: "hi"})
	m.input.SetValue("   ")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := updated.(Model)

	if got.state != StateReady {
		t.Errorf("state = %v, want StateReady", got.state)
	}
	if got.status == "" || got.statusKind != statusWarn {
		t.Errorf("expected warning status, got %q kind %v", got.status, got.statusKind)
	}
}

func TestSubmitEntersSendingState(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{reply: "hi"})
	m.input.SetValue("hello")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := updated.(Model)

	if got.state != StateSending {
		t.Errorf("state = %v, want StateSending", got.state)
	}
	if got.pending != "hello" {
		t.Errorf("pending = %q, want %q", got.pending, "hello")
	}
	if got.input.Value() != "" {
		t.Errorf("input not cleared: %q", got.input.Value())
	}
	if cmd == nil {
		t.Error("expected a command to run the exchange")
	}
}

func TestSubmitIgnoredWhileSending(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{reply: "hi"})
	m.state = StateSending
	m.input.SetValue("second message")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := updated.(Model)

	if got.input.Value() != "second message" {
		t.Error("input should be untouched while a send is in flight")
	}
	if cmd != nil {
		t.Error("no command should be issued while sending")
	}
}

func TestSendResultSuccessClearsSendingState(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeCompleter{reply: "a reply"})
	m.state = StateSending
	m.pending = "hello"

	result, err := ctrl.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	updated, _ := m.Update(sendResultMsg{result: result})
	got := updated.(Model)

	if got.state != StateReady {
		t.Errorf("state = %v, want StateReady", got.state)
	}
	if got.pending != "" {
		t.Errorf("pending = %q, want empty", got.pending)
	}
	if len(ctrl.Snapshot()) != 2 {
		t.Errorf("snapshot has %d turns, want 2", len(ctrl.Snapshot()))
	}
}

func TestSendResultErrorSetsErrorStatus(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.state = StateSending

	updated, _ := m.Update(sendResultMsg{err: errors.New("backend down")})
	got := updated.(Model)

	if got.state != StateReady {
		t.Errorf("state = %v, want StateReady", got.state)
	}
	if got.statusKind != statusError {
		t.Errorf("statusKind = %v, want statusError", got.statusKind)
	}
	if !strings.Contains(got.status, "backend down") {
		t.Errorf("status %q missing error text", got.status)
	}
}

func TestSendResultWarningSurfaced(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.state = StateSending

	updated, _ := m.Update(sendResultMsg{result: session.Result{Warning: "Could not save chat: disk full"}})
	got := updated.(Model)

	if got.statusKind != statusWarn {
		t.Errorf("statusKind = %v, want statusWarn", got.statusKind)
	}
}

func TestStatusTimeoutOnlyClearsMatchingID(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.setStatus(statusInfo, "first")
	m.setStatus(statusInfo, "second")
	staleID := m.statusID - 1

	updated, _ := m.Update(statusTimeoutMsg{id: staleID})
	got := updated.(Model)
	if got.status != "second" {
		t.Errorf("stale timeout cleared status, got %q", got.status)
	}

	updated, _ = got.Update(statusTimeoutMsg{id: got.statusID})
	got = updated.(Model)
	if got.status != "" {
		t.Errorf("matching timeout did not clear status, got %q", got.status)
	}
}

func TestCyclePersonaUpdatesStatus(t *testing.T) {
	m, ctrl := newTestModel(t, nil)
	before := ctrl.Settings().Persona.ID

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	got := updated.(Model)

	after := ctrl.Settings().Persona.ID
	if after == before {
		t.Error("persona did not change")
	}
	if !strings.Contains(got.status, ctrl.Settings().Persona.Name) {
		t.Errorf("status %q missing persona name", got.status)
	}
}

func TestCycleModelWrapsAround(t *testing.T) {
	m, ctrl := newTestModel(t, nil)

	seen := map[string]bool{}
	for range config.DefaultModels {
		seen[m.cycleModel()] = true
	}
	if len(seen) != len(config.DefaultModels) {
		t.Errorf("cycling visited %d models, want %d", len(seen), len(config.DefaultModels))
	}
	if ctrl.Settings().Model != config.DefaultModels[0] {
		t.Errorf("full cycle should return to %s, got %s", config.DefaultModels[0], ctrl.Settings().Model)
	}
}

func TestConfigReloadAppliesUISettings(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if m.showTimestamps != true {
		t.Fatal("expected timestamps on by default")
	}

	cfg := config.Default()
	cfg.UI.ShowTimestamps = false
	cfg.UI.Markdown = false

	updated, _ := m.Update(ConfigReloadedMsg{Config: cfg})
	got := updated.(Model)

	if got.showTimestamps {
		t.Error("timestamps should be off after reload")
	}
	if got.renderer != nil {
		t.Error("renderer should be nil with markdown disabled")
	}
}

func TestCopyLastWithoutReplyWarns(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{reply: "ok"})

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	m = updated.(Model)
	if !strings.Contains(m.status, "No reply to copy") {
		t.Errorf("status = %q, want no-reply warning", m.status)
	}
	if cmd == nil {
		t.Error("expected a status expiry command")
	}
}

func TestCopyDoneShowsPreview(t *testing.T) {
	m, _ := newTestModel(t, &fakeCompleter{reply: "ok"})

	updated, _ := m.Update(copyDoneMsg{preview: "a witty reply"})
	m = updated.(Model)
	if !strings.Contains(m.status, "a witty reply") {
		t.Errorf("status = %q, want copied preview", m.status)
	}
}

func TestViewContainsSessionSettings(t *testing.T) {
	m, ctrl := newTestModel(t, nil)
	m.width = 120
	m.theme.SetSize(120, 40)

	out := m.View()
	s := ctrl.Settings()
	for _, want := range []string{s.Persona.Name, s.Model, "0.65", "512"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewWelcomeShowsExamplePrompts(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.refreshViewport()

	out := m.renderTranscript()
	if !strings.Contains(out, persona.ExamplePrompts[0]) {
		t.Errorf("welcome screen missing example prompt")
	}
}

func TestRawViewShowsExportDocument(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeCompleter{reply: "pong"})
	if _, err := ctrl.Send(context.Background(), "ping"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	out := m.renderRaw()
	for _, want := range []string{"exported_at", "\"history\"", "ping", "pong"} {
		if !strings.Contains(out, want) {
			t.Errorf("raw view missing %q", want)
		}
	}
}

func TestTogglePersistKeyUpdatesStatus(t *testing.T) {
	m, ctrl := newTestModel(t, &fakeCompleter{reply: "ok"})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)
	if !strings.Contains(m.status, "Persistence on") {
		t.Errorf("status = %q, want persistence-on notice", m.status)
	}
	if !ctrl.Settings().Persist {
		t.Error("controller persistence not enabled")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)
	if !strings.Contains(m.status, "Persistence off") {
		t.Errorf("status = %q, want persistence-off notice", m.status)
	}
	if ctrl.Settings().Persist {
		t.Error("controller persistence still enabled")
	}
}
