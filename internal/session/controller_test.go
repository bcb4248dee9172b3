// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/personachat/internal/history"
	"github.com/jeranaias/personachat/internal/model"
	"github.com/jeranaias/personachat/internal/openai"
	"github.com/jeranaias/personachat/internal/persona"
)

// fakeCompleter records the last request and returns a canned reply or
// error.
type fakeCompleter struct {
	reply     string
	err       error
	gotSystem string
	gotTurns  []model.Turn
	gotParams openai.GenParams
	callCount int
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt string, turns []model.Turn, p openai.GenParams) (string, error) {
	f.callCount++
	f.gotSystem = systemPrompt
	f.gotTurns = turns
	f.gotParams = p
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testSettings(persist bool) Settings {
	return Settings{
		Persona:     persona.Default(),
		Model:       "gpt-3.5-turbo",
		Temperature: 0.65,
		MaxTokens:   512,
		Persist:     persist,
	}
}

func newTestController(t *testing.T, fake *fakeCompleter, persist bool) *Controller {
	t.Helper()
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))
	return New(store, fake, testSettings(persist))
}

func TestSend_AppendsUserAndAssistant(t *testing.T) {
	fake := &fakeCompleter{reply: "hello back"}
	ctrl := newTestController(t, fake, false)

	res, err := ctrl.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(res.Turns) != 2 {
		t.Fatalf("snapshot has %d turns, want 2", len(res.Turns))
	}
	if res.Turns[0].Role != model.RoleUser || res.Turns[0].Text != "hello" {
		t.Errorf("turn 0 = %+v", res.Turns[0])
	}
	if res.Turns[1].Role != model.RoleAssistant || res.Turns[1].Text != "hello back" {
		t.Errorf("turn 1 = %+v", res.Turns[1])
	}
}

func TestSend_FailureKeepsUserTurn(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("backend down")}
	ctrl := newTestController(t, fake, false)

	res, err := ctrl.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}

	if len(res.Turns) != 1 {
		t.Fatalf("snapshot has %d turns, want 1", len(res.Turns))
	}
	if res.Turns[0].Role != model.RoleUser {
		t.Errorf("retained turn role = %q", res.Turns[0].Role)
	}
}

func TestSend_EmptyInput(t *testing.T) {
	testCases := []string{"", "   ", "\n\t  \n"}

	for _, input := range testCases {
		fake := &fakeCompleter{reply: "x"}
		ctrl := newTestController(t, fake, false)

		_, err := ctrl.Send(context.Background(), input)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Send(%q) err = %v, want ErrEmptyInput", input, err)
		}
		if fake.callCount != 0 {
			t.Errorf("Send(%q) reached the completion backend", input)
		}
		if len(ctrl.Snapshot()) != 0 {
			t.Errorf("Send(%q) modified the conversation", input)
		}
	}
}

func TestSend_TrimsAndNormalizesInput(t *testing.T) {
	fake := &fakeCompleter{reply: "ok"}
	ctrl := newTestController(t, fake, false)

	res, err := ctrl.Send(context.Background(), "  hello there  \n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Turns[0].Text != "hello there" {
		t.Errorf("stored input = %q, want trimmed", res.Turns[0].Text)
	}
}

func TestSend_TrimsReply(t *testing.T) {
	fake := &fakeCompleter{reply: "\n  the reply  \n"}
	ctrl := newTestController(t, fake, false)

	res, err := ctrl.Send(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if res.Turns[1].Text != "the reply" {
		t.Errorf("assistant text = %q, want trimmed", res.Turns[1].Text)
	}
}

func TestSend_UsesPersonaAndParams(t *testing.T) {
	fake := &fakeCompleter{reply: "aye"}
	ctrl := newTestController(t, fake, false)

	p, err := persona.Get("shakespearebot")
	if err != nil {
		t.Fatal(err)
	}
	ctrl.SetPersona(p)
	ctrl.SetModel("gpt-4")

	if _, err := ctrl.Send(context.Background(), "speak"); err != nil {
		t.Fatal(err)
	}

	if fake.gotSystem != p.SystemPrompt {
		t.Errorf("system prompt = %q", fake.gotSystem)
	}
	if fake.gotParams.Model != "gpt-4" {
		t.Errorf("model = %q", fake.gotParams.Model)
	}
	if fake.gotParams.Temperature != 0.65 || fake.gotParams.MaxTokens != 512 {
		t.Errorf("params = %+v", fake.gotParams)
	}
}

func TestSend_WindowsHistory(t *testing.T) {
	fake := &fakeCompleter{reply: "r"}
	ctrl := newTestController(t, fake, false)

	// 20 exchanges = 40 turns, well past the window.
	for i := 0; i < 20; i++ {
		if _, err := ctrl.Send(context.Background(), "msg"); err != nil {
			t.Fatal(err)
		}
	}

	if len(fake.gotTurns) != HistoryWindow {
		t.Errorf("backend saw %d turns, want %d", len(fake.gotTurns), HistoryWindow)
	}
	// The newest turn in the window is the user turn just appended.
	last := fake.gotTurns[len(fake.gotTurns)-1]
	if last.Role != model.RoleUser {
		t.Errorf("last window turn role = %q, want user", last.Role)
	}
}

func TestSend_WindowIncludesNewUserTurn(t *testing.T) {
	fake := &fakeCompleter{reply: "r"}
	ctrl := newTestController(t, fake, false)

	if _, err := ctrl.Send(context.Background(), "only message"); err != nil {
		t.Fatal(err)
	}

	if len(fake.gotTurns) != 1 {
		t.Fatalf("backend saw %d turns, want 1", len(fake.gotTurns))
	}
	if fake.gotTurns[0].Text != "only message" {
		t.Errorf("window turn = %+v", fake.gotTurns[0])
	}
}

func TestSend_PersistsAfterSuccess(t *testing.T) {
	fake := &fakeCompleter{reply: "saved reply"}
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))
	ctrl := New(store, fake, testSettings(true))

	if _, err := ctrl.Send(context.Background(), "persist me"); err != nil {
		t.Fatal(err)
	}

	turns, err := store.Load()
	if err != nil {
		t.Fatalf("Load after Send failed: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("persisted %d turns, want 2", len(turns))
	}
}

func TestSend_NoPersistWhenDisabled(t *testing.T) {
	fake := &fakeCompleter{reply: "r"}
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))
	ctrl := New(store, fake, testSettings(false))

	if _, err := ctrl.Send(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("snapshot file written with persistence disabled")
	}
}

func TestClear(t *testing.T) {
	fake := &fakeCompleter{reply: "r"}
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))
	ctrl := New(store, fake, testSettings(true))

	if _, err := ctrl.Send(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}

	res := ctrl.Clear()
	if len(res.Turns) != 0 {
		t.Errorf("snapshot after Clear has %d turns", len(res.Turns))
	}
	if res.Warning != "" {
		t.Errorf("unexpected warning: %q", res.Warning)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("snapshot file survived Clear")
	}

	// Clearing again is still fine.
	res = ctrl.Clear()
	if len(res.Turns) != 0 || res.Warning != "" {
		t.Errorf("second Clear: %+v", res)
	}
}

func TestResume_MissingFileIsSilent(t *testing.T) {
	fake := &fakeCompleter{}
	ctrl := newTestController(t, fake, true)

	res := ctrl.Resume()
	if len(res.Turns) != 0 {
		t.Errorf("resumed %d turns from nothing", len(res.Turns))
	}
	if res.Warning != "" {
		t.Errorf("missing file produced warning: %q", res.Warning)
	}
}

func TestResume_CorruptFileWarns(t *testing.T) {
	fake := &fakeCompleter{}
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))
	if err := os.WriteFile(store.Path(), []byte("{{{corrupt"), 0600); err != nil {
		t.Fatal(err)
	}
	ctrl := New(store, fake, testSettings(true))

	res := ctrl.Resume()
	if len(res.Turns) != 0 {
		t.Errorf("resumed %d turns from corrupt file", len(res.Turns))
	}
	if !strings.Contains(res.Warning, "Could not load chat") {
		t.Errorf("warning = %q", res.Warning)
	}
}

func TestResume_LoadsSavedHistory(t *testing.T) {
	fake := &fakeCompleter{reply: "r"}
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))

	first := New(store, fake, testSettings(true))
	if _, err := first.Send(context.Background(), "remember this"); err != nil {
		t.Fatal(err)
	}

	second := New(store, fake, testSettings(true))
	res := second.Resume()
	if len(res.Turns) != 2 {
		t.Fatalf("resumed %d turns, want 2", len(res.Turns))
	}
	if res.Turns[0].Text != "remember this" {
		t.Errorf("resumed turn 0 = %q", res.Turns[0].Text)
	}
}

func TestResume_PersistDisabledIgnoresFile(t *testing.T) {
	fake := &fakeCompleter{reply: "r"}
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))

	first := New(store, fake, testSettings(true))
	if _, err := first.Send(context.Background(), "on disk"); err != nil {
		t.Fatal(err)
	}

	second := New(store, fake, testSettings(false))
	res := second.Resume()
	if len(res.Turns) != 0 {
		t.Errorf("resume with persistence off loaded %d turns", len(res.Turns))
	}
}

func TestAdjustTemperature_Clamps(t *testing.T) {
	fake := &fakeCompleter{}
	ctrl := newTestController(t, fake, false)

	if got := ctrl.AdjustTemperature(10); got != MaxTemperature {
		t.Errorf("AdjustTemperature(10) = %v, want %v", got, MaxTemperature)
	}
	if got := ctrl.AdjustTemperature(-10); got != MinTemperature {
		t.Errorf("AdjustTemperature(-10) = %v, want %v", got, MinTemperature)
	}
	if got := ctrl.AdjustTemperature(0.35); got != 0.35 {
		t.Errorf("AdjustTemperature from 0 = %v, want 0.35", got)
	}
}

func TestAdjustMaxTokens_Clamps(t *testing.T) {
	fake := &fakeCompleter{}
	ctrl := newTestController(t, fake, false)

	if got := ctrl.AdjustMaxTokens(100000); got != MaxMaxTokens {
		t.Errorf("AdjustMaxTokens(+huge) = %d, want %d", got, MaxMaxTokens)
	}
	if got := ctrl.AdjustMaxTokens(-100000); got != MinMaxTokens {
		t.Errorf("AdjustMaxTokens(-huge) = %d, want %d", got, MinMaxTokens)
	}
}

func TestCyclePersona(t *testing.T) {
	fake := &fakeCompleter{}
	ctrl := newTestController(t, fake, false)

	start := ctrl.Settings().Persona
	seen := map[string]bool{start.ID: true}
	for i := 0; i < len(persona.All())-1; i++ {
		p := ctrl.CyclePersona()
		if seen[p.ID] {
			t.Fatalf("persona %q repeated before full cycle", p.ID)
		}
		seen[p.ID] = true
	}
	if p := ctrl.CyclePersona(); p.ID != start.ID {
		t.Errorf("full cycle ended at %q, want %q", p.ID, start.ID)
	}
}

func TestExport(t *testing.T) {
	fake := &fakeCompleter{reply: "answer"}
	ctrl := newTestController(t, fake, false)

	if _, err := ctrl.Send(context.Background(), "question"); err != nil {
		t.Fatal(err)
	}

	doc := ctrl.Export()
	if doc.Persona != persona.Default().Name {
		t.Errorf("doc.Persona = %q", doc.Persona)
	}
	if doc.Model != "gpt-3.5-turbo" {
		t.Errorf("doc.Model = %q", doc.Model)
	}
	if len(doc.History) != 2 {
		t.Fatalf("doc.History has %d entries, want 2", len(doc.History))
	}
	if doc.History[0].Text != "question" || doc.History[1].Text != "answer" {
		t.Errorf("doc.History = %+v", doc.History)
	}
}

func TestExport_EmptyConversation(t *testing.T) {
	fake := &fakeCompleter{}
	ctrl := newTestController(t, fake, false)

	doc := ctrl.Export()
	if doc.History == nil || len(doc.History) != 0 {
		t.Errorf("empty export history = %#v, want empty slice", doc.History)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	fake := &fakeCompleter{reply: "r"}
	ctrl := newTestController(t, fake, false)

	res, err := ctrl.Send(context.Background(), "original")
	if err != nil {
		t.Fatal(err)
	}
	res.Turns[0].Text = "mutated"

	if ctrl.Snapshot()[0].Text != "original" {
		t.Error("mutating a result snapshot changed controller state")
	}
}

func TestTogglePersist(t *testing.T) {
	fake := &fakeCompleter{reply: "r"}
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))
	ctrl := New(store, fake, testSettings(false))

	if _, err := ctrl.Send(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(); !errors.Is(err, history.ErrHistoryNotFound) {
		t.Fatalf("persist off should not write a file, Load err = %v", err)
	}

	on, warning := ctrl.TogglePersist()
	if !on || warning != "" {
		t.Fatalf("TogglePersist = (%v, %q), want (true, \"\")", on, warning)
	}
	turns, err := store.Load()
	if err != nil {
		t.Fatalf("toggling persistence on should save immediately: %v", err)
	}
	if len(turns) != 2 {
		t.Errorf("saved %d turns, want 2", len(turns))
	}

	on, _ = ctrl.TogglePersist()
	if on {
		t.Error("second toggle should turn persistence off")
	}
	if ctrl.Settings().Persist {
		t.Error("settings still report persistence on")
	}
}

func TestLastReply(t *testing.T) {
	fake := &fakeCompleter{reply: "first reply"}
	ctrl := newTestController(t, fake, false)

	if _, ok := ctrl.LastReply(); ok {
		t.Fatal("LastReply on empty conversation returned ok")
	}

	if _, err := ctrl.Send(context.Background(), "q1"); err != nil {
		t.Fatal(err)
	}
	fake.reply = "second reply"
	if _, err := ctrl.Send(context.Background(), "q2"); err != nil {
		t.Fatal(err)
	}

	turn, ok := ctrl.LastReply()
	if !ok || turn.Text != "second reply" {
		t.Errorf("LastReply = %q, %v; want %q, true", turn.Text, ok, "second reply")
	}
}

func TestTogglePersist_EmptyConversationWritesNothing(t *testing.T) {
	fake := &fakeCompleter{}
	store := history.NewStore(filepath.Join(t.TempDir(), "chat_history.json"))
	ctrl := New(store, fake, testSettings(false))

	on, warning := ctrl.TogglePersist()
	if !on || warning != "" {
		t.Fatalf("TogglePersist = (%v, %q), want (true, \"\")", on, warning)
	}
	if _, err := store.Load(); !errors.Is(err, history.ErrHistoryNotFound) {
		t.Errorf("empty conversation should not be written, Load err = %v", err)
	}
}

func TestTriggerSequence(t *testing.T) {
	fake := &fakeCompleter{reply: "hello there"}
	ctrl := newTestController(t, fake, false)

	res, err := ctrl.Send(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Turns) != 2 {
		t.Fatalf("after send: %d turns, want 2", len(res.Turns))
	}

	res, err = ctrl.Send(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("blank send err = %v, want ErrEmptyInput", err)
	}
	if len(res.Turns) != 2 {
		t.Errorf("blank send changed the conversation: %d turns", len(res.Turns))
	}
	if fake.callCount != 1 {
		t.Errorf("blank send reached the backend, calls = %d", fake.callCount)
	}

	res = ctrl.Clear()
	if len(res.Turns) != 0 {
		t.Errorf("after clear: %d turns, want 0", len(res.Turns))
	}

	doc := ctrl.Export()
	if doc.History == nil || len(doc.History) != 0 {
		t.Errorf("export after clear: history = %#v, want empty array", doc.History)
	}
}
