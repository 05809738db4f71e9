// Package voices maps user-facing voice ids to synthesis model keys.
package voices

import (
	"fmt"
)

// Profile is one user-selectable voice. SubSpeaker is set for voices that
// share a multi-speaker model.
type Profile struct {
	ID          string `yaml:"id"          json:"id"`
	ModelKey    string `yaml:"model"       json:"model"`
	SubSpeaker  string `yaml:"speaker"     json:"speaker,omitempty"`
	Description string `yaml:"description" json:"description"`
}

// Registry is the immutable voice table. It is built once at startup and
// safe for unsynchronized concurrent reads.
type Registry struct {
	defaultID string
	order     []string
	profiles  map[string]Profile
}

// NewRegistry builds a registry from an ordered profile list. The default
// id must be one of the listed voices.
func NewRegistry(defaultID string, profiles []Profile) (*Registry, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no voices configured")
	}

	r := &Registry{
		defaultID: defaultID,
		profiles:  make(map[string]Profile, len(profiles)),
	}
	for _, p := range profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("voice with empty id")
		}
		if p.ModelKey == "" {
			return nil, fmt.Errorf("voice %q has no model", p.ID)
		}
		if _, dup := r.profiles[p.ID]; dup {
			return nil, fmt.Errorf("duplicate voice id %q", p.ID)
		}
		r.profiles[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	if r.defaultID == "" {
		r.defaultID = r.order[0]
	}
	if _, ok := r.profiles[r.defaultID]; !ok {
		return nil, fmt.Errorf("default voice %q is not defined", r.defaultID)
	}
	return r, nil
}

// Builtin returns the built-in voice profiles in their canonical order.
// Use it with NewRegistry to pick a different default voice.
func Builtin() []Profile {
	return []Profile{
		{ID: "female_calm", ModelKey: "tts_models/en/ljspeech/tacotron2-DDC", Description: "Female, calm and clear"},
		{ID: "female_expressive", ModelKey: "tts_models/en/vctk/vits", SubSpeaker: "p225", Description: "Female, expressive"},
		{ID: "male_deep", ModelKey: "tts_models/en/vctk/vits", SubSpeaker: "p226", Description: "Male, deep voice"},
		{ID: "female_young", ModelKey: "tts_models/en/vctk/vits", SubSpeaker: "p231", Description: "Female, young and energetic"},
		{ID: "male_british", ModelKey: "tts_models/en/vctk/vits", SubSpeaker: "p237", Description: "Male, British accent"},
		{ID: "female_american", ModelKey: "tts_models/en/vctk/vits", SubSpeaker: "p232", Description: "Female, American accent"},
	}
}

// Default returns the built-in voice table with female_calm as the default.
func Default() *Registry {
	r, err := NewRegistry("female_calm", Builtin())
	if err != nil {
		panic(err) // built-in table is static
	}
	return r
}

// Resolve returns the profile for id, falling back to the default voice
// when the id is unknown. Availability is preferred over strict validation
// for this one field.
func (r *Registry) Resolve(id string) Profile {
	if p, ok := r.profiles[id]; ok {
		return p
	}
	return r.profiles[r.defaultID]
}

// List returns all profiles in their configured order.
func (r *Registry) List() []Profile {
	out := make([]Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// DefaultID returns the fallback voice id.
func (r *Registry) DefaultID() string { return r.defaultID }
