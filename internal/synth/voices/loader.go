package voices

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type voiceFile struct {
	Default string    `yaml:"default"`
	Voices  []Profile `yaml:"voices"`
}

// LoadFile builds a registry from a YAML voice file, replacing the built-in
// table. The file is read once; the resulting registry is immutable.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voice file %q: %w", path, err)
	}

	var vf voiceFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parse voice file %q: %w", path, err)
	}

	r, err := NewRegistry(vf.Default, vf.Voices)
	if err != nil {
		return nil, fmt.Errorf("voice file %q: %w", path, err)
	}
	return r, nil
}
