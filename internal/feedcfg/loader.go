package feedcfg

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML policy file and returns the validated Config.
// Unknown fields fail the decode so typos do not silently become defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
