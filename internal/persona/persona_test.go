// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	p := Default()
	if p.ID != "roastbot" {
		t.Errorf("Default().ID = %q, want %q", p.ID, "roastbot")
	}
	if p.SystemPrompt == "" {
		t.Error("default persona has empty system prompt")
	}
}

func TestGet(t *testing.T) {
	testCases := []struct {
		name    string
		id      string
		wantID  string
		wantErr bool
	}{
		{"by id", "roastbot", "roastbot", false},
		{"by display name", "ShakespeareBot", "shakespearebot", false},
		{"mixed case", "EMOJIBOT", "emojibot", false},
		{"surrounding space", "  roastbot ", "roastbot", false},
		{"unknown", "piratebot", "", true},
		{"empty", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Get(tc.id)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Get(%q) succeeded, want error", tc.id)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get(%q) failed: %v", tc.id, err)
			}
			if p.ID != tc.wantID {
				t.Errorf("Get(%q).ID = %q, want %q", tc.id, p.ID, tc.wantID)
			}
		})
	}
}

func TestGet_UnknownListsValidIDs(t *testing.T) {
	_, err := Get("nope")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, id := range IDs() {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error %q does not mention valid id %q", err.Error(), id)
		}
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d personas, want 3", len(all))
	}

	seen := make(map[string]bool)
	for _, p := range all {
		if p.ID == "" || p.Name == "" || p.SystemPrompt == "" {
			t.Errorf("persona %+v has empty field", p)
		}
		if seen[p.ID] {
			t.Errorf("duplicate persona ID %q", p.ID)
		}
		seen[p.ID] = true
	}

	// Returned slice is a copy.
	all[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Error("mutating All() result affected registry")
	}
}

func TestNext_Cycles(t *testing.T) {
	start := Default()
	p := start
	for i := 0; i < len(All()); i++ {
		p = Next(p)
	}
	if p.ID != start.ID {
		t.Errorf("cycling %d times ended at %q, want %q", len(All()), p.ID, start.ID)
	}
}

func TestNext_UnknownFallsBackToDefault(t *testing.T) {
	p := Next(Persona{ID: "ghost"})
	if p.ID != Default().ID {
		t.Errorf("Next(unknown) = %q, want default %q", p.ID, Default().ID)
	}
}

func TestExamplePrompts(t *testing.T) {
	if len(ExamplePrompts) != 5 {
		t.Fatalf("len(ExamplePrompts) = %d, want 5", len(ExamplePrompts))
	}
	for i, p := range ExamplePrompts {
		if strings.TrimSpace(p) == "" {
			t.Errorf("example prompt %d is blank", i)
		}
	}
	last := ExamplePrompts[len(ExamplePrompts)-1]
	if !strings.Contains(last, "Shakespearean insult") {
		t.Errorf("last prompt = %q, want the Shakespearean insult prompt", last)
	}
}
