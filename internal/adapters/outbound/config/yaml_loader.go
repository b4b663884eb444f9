package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/monkeycoder/railcheck/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up at the repository root.
const FileName = ".railcheck.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .railcheck.yaml.
type YAMLLoader struct {
	file string
}

// New creates a YAMLLoader reading FileName from the project root.
func New() *YAMLLoader { return &YAMLLoader{} }

// NewWithFile creates a YAMLLoader reading an explicit file. Unlike the
// default lookup, a missing explicit file is an error.
func NewWithFile(path string) *YAMLLoader { return &YAMLLoader{file: path} }

// Load reads the configuration for projectPath.
// Returns DefaultConfig if the default file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	fp := l.file
	if fp == "" {
		fp = filepath.Join(projectPath, FileName)
	}
	name := filepath.Base(fp)

	data, err := os.ReadFile(fp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && l.file == "" {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, fmt.Errorf("reading %s: %w", name, err)
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", name, err)
	}

	// Validate after merging: a canonical descriptor override must not
	// collide with the default competitors.
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return cfg, nil
}

// Marshal renders cfg as the YAML written by `railcheck init`.
func Marshal(cfg domain.ProjectConfig) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", FileName, err)
	}
	header := "# railcheck configuration. Every key is optional; see `railcheck init --help`.\n" +
		"# services:\n#   api:\n#     root: services/api\n"
	return append([]byte(header), body...), nil
}
