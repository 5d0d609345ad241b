// Package config loads the optional CLI configuration file at
// ~/.arczip/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vqhuy/arczip/backend"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Backend is the backend type bound when --backend is not given.
	Backend string `yaml:"backend"`

	// Exclude lists base-name patterns skipped when adding directories.
	Exclude []string `yaml:"exclude"`
}

func Default() *Config {
	return &Config{
		Backend: backend.DefaultType,
		Exclude: []string{
			".DS_Store",
			".git",
			"Thumbs.db",
		},
	}
}

func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return filepath.Join(home, ".arczip", "config.yaml")
}

// Load returns the config file merged over defaults. A missing file is not
// an error; a malformed one is.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path())
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", Path(), err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", Path(), err)
	}

	if cfg.Backend == "" {
		cfg.Backend = backend.DefaultType
	}

	return cfg, nil
}
