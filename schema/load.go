package schema

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads a language schema from a TOML document on disk.
func Load(path string) (*Language, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	lang, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", path, err)
	}
	return lang, nil
}

// Parse decodes and validates a TOML language schema.
func Parse(data []byte) (*Language, error) {
	var lang Language
	if err := toml.Unmarshal(data, &lang); err != nil {
		return nil, fmt.Errorf("schema parse error: %w", err)
	}
	if err := lang.Validate(); err != nil {
		return nil, err
	}
	return &lang, nil
}
