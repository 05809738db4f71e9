package voices

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	if r.DefaultID() != "female_calm" {
		t.Errorf("default = %q, want female_calm", r.DefaultID())
	}

	list := r.List()
	if len(list) != 6 {
		t.Fatalf("len(List()) = %d, want 6", len(list))
	}
	if list[0].ID != "female_calm" {
		t.Errorf("first voice = %q, want female_calm (insertion order)", list[0].ID)
	}

	// Multi-speaker voices share one model key.
	seen := map[string]int{}
	for _, p := range list {
		seen[p.ModelKey]++
	}
	if seen["tts_models/en/vctk/vits"] != 5 {
		t.Errorf("vctk voices = %d, want 5", seen["tts_models/en/vctk/vits"])
	}
}

func TestBuiltinWithConfiguredDefault(t *testing.T) {
	r, err := NewRegistry("male_deep", Builtin())
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	if r.DefaultID() != "male_deep" {
		t.Errorf("default = %q, want male_deep", r.DefaultID())
	}
	if got := r.Resolve("nonexistent_voice").ID; got != "male_deep" {
		t.Errorf("fallback = %q, want male_deep", got)
	}
	if len(r.List()) != len(Builtin()) {
		t.Errorf("len(List()) = %d, want %d", len(r.List()), len(Builtin()))
	}
}

func TestResolveKnownVoice(t *testing.T) {
	r := Default()

	p := r.Resolve("male_deep")
	if p.ID != "male_deep" || p.SubSpeaker != "p226" {
		t.Errorf("Resolve(male_deep) = %+v", p)
	}
}

func TestResolveUnknownVoiceFallsBack(t *testing.T) {
	r := Default()

	p := r.Resolve("nonexistent_voice")
	if p.ID != r.DefaultID() {
		t.Errorf("Resolve(unknown) = %q, want default %q", p.ID, r.DefaultID())
	}
}

func TestNewRegistryValidation(t *testing.T) {
	cases := []struct {
		name      string
		defaultID string
		profiles  []Profile
	}{
		{"empty table", "x", nil},
		{"missing id", "", []Profile{{ModelKey: "m"}}},
		{"missing model", "", []Profile{{ID: "a"}}},
		{"duplicate id", "", []Profile{{ID: "a", ModelKey: "m"}, {ID: "a", ModelKey: "m"}}},
		{"unknown default", "missing", []Profile{{ID: "a", ModelKey: "m"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRegistry(tc.defaultID, tc.profiles); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewRegistryEmptyDefaultUsesFirst(t *testing.T) {
	r, err := NewRegistry("", []Profile{
		{ID: "a", ModelKey: "m1"},
		{ID: "b", ModelKey: "m2"},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if r.DefaultID() != "a" {
		t.Errorf("default = %q, want a", r.DefaultID())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlContent := `
default: narrator
voices:
  - id: narrator
    model: tts_models/en/ljspeech/glow-tts
    description: "Narrator, neutral"
  - id: guide
    model: tts_models/en/vctk/vits
    speaker: p240
    description: "Guide, warm"
`
	path := filepath.Join(dir, "voices.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if r.DefaultID() != "narrator" {
		t.Errorf("default = %q, want narrator", r.DefaultID())
	}
	if got := r.Resolve("guide").SubSpeaker; got != "p240" {
		t.Errorf("guide speaker = %q, want p240", got)
	}
	if got := r.Resolve("unknown").ID; got != "narrator" {
		t.Errorf("fallback = %q, want narrator", got)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
