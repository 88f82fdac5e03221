package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

// FileName is the project config file looked up at the audit root.
const FileName = ".a11ykraft.yaml"

// ErrConfigExists is returned by WriteDefault when a config is already present.
var ErrConfigExists = errors.New("config file already exists")

// YAMLLoader implements domain.ConfigLoader by reading .a11ykraft.yaml.
type YAMLLoader struct {
	catalog *rules.Catalog
}

// New creates a YAMLLoader that checks skip_rules against the default catalog.
func New() *YAMLLoader { return &YAMLLoader{catalog: rules.Default()} }

// NewWithCatalog creates a YAMLLoader that checks skip_rules against catalog.
func NewWithCatalog(catalog *rules.Catalog) *YAMLLoader { return &YAMLLoader{catalog: catalog} }

// Load reads .a11ykraft.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	if l.catalog != nil {
		var unknown []string
		for _, id := range cfg.SkipRules {
			if !l.catalog.Known(id) {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			return domain.ProjectConfig{}, fmt.Errorf("invalid %s: unknown skip_rules %s (see `a11ykraft rules`)",
				FileName, strings.Join(unknown, ", "))
		}
	}

	return cfg, nil
}

const defaultTemplate = `# a11ykraft project configuration.

# Rule set breadth: standard or full.
tier: standard

# Rule ids to turn off (list them with "a11ykraft rules").
skip_rules: []

# Directory names or root-relative paths left out of audits.
exclude_paths: []

# Page file extensions to audit.
extensions: [".html", ".htm"]

# CI fails when an issue reaches this severity (critical, serious, moderate, minor, none).
fail_on: serious

# CI fails when the overall score drops below this value (0 disables).
min_score: 0

# Pages scanned in parallel.
concurrency: 4

# Load stylesheets linked from pages when they live inside the project.
resolve_stylesheets: true
`

// WriteDefault writes the commented default config to projectPath and
// returns the file path. An existing file is left untouched.
func WriteDefault(projectPath string) (string, error) {
	path := filepath.Join(projectPath, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0o644); err != nil {
		return path, fmt.Errorf("writing %s: %w", FileName, err)
	}
	return path, nil
}
