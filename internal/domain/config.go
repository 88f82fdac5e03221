package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultExtensions are the page file extensions audited when none are configured.
var DefaultExtensions = []string{".html", ".htm"}

const (
	DefaultConcurrency = 4
	maxConcurrency     = 64
)

// ProjectConfig holds project-level configuration loaded from .a11ykraft.yaml.
type ProjectConfig struct {
	Tier               ScanTier `yaml:"tier"                json:"tier,omitempty"`
	SkipRules          []string `yaml:"skip_rules"          json:"skip_rules,omitempty"`
	ExcludePaths       []string `yaml:"exclude_paths"       json:"exclude_paths,omitempty"`
	Extensions         []string `yaml:"extensions"          json:"extensions,omitempty"`
	FailOn             Severity `yaml:"fail_on"             json:"fail_on,omitempty"`
	MinScore           int      `yaml:"min_score"           json:"min_score,omitempty"`
	Concurrency        int      `yaml:"concurrency"         json:"concurrency,omitempty"`
	ResolveStylesheets *bool    `yaml:"resolve_stylesheets" json:"resolve_stylesheets,omitempty"`
}

// DefaultConfig returns a zero-value config that changes nothing.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{}
}

// EffectiveTier returns the configured tier or standard.
func (c ProjectConfig) EffectiveTier() ScanTier {
	if c.Tier == "" {
		return TierStandard
	}
	return c.Tier
}

// EffectiveExtensions returns the configured extensions, normalized to a
// lowercase leading-dot form.
func (c ProjectConfig) EffectiveExtensions() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions
	}
	exts := make([]string, 0, len(c.Extensions))
	for _, e := range c.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

func (c ProjectConfig) EffectiveConcurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return min(c.Concurrency, maxConcurrency)
}

// ShouldResolveStylesheets defaults to true when unset.
func (c ProjectConfig) ShouldResolveStylesheets() bool {
	return c.ResolveStylesheets == nil || *c.ResolveStylesheets
}

// IsSkippedRule reports whether the rule id is excluded.
func (c ProjectConfig) IsSkippedRule(id string) bool {
	for _, s := range c.SkipRules {
		if s == id {
			return true
		}
	}
	return false
}

// Hash fingerprints the settings that change which issues a scan produces.
func (c ProjectConfig) Hash() string {
	skip := append([]string(nil), c.SkipRules...)
	sort.Strings(skip)
	data, _ := json.Marshal(struct {
		Skip     []string `json:"skip"`
		Resolve  bool     `json:"resolve"`
		Tier     ScanTier `json:"tier"`
		Exts     []string `json:"exts"`
		Excluded []string `json:"excluded"`
	}{skip, c.ShouldResolveStylesheets(), c.EffectiveTier(), c.EffectiveExtensions(), c.ExcludePaths})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	// 1. tier must be known or empty
	if c.Tier != "" && !c.Tier.Valid() {
		return fmt.Errorf("unknown tier %q (valid: standard, full)", c.Tier)
	}

	// 2. fail_on must be a severity, "none", or empty
	if c.FailOn != "" && c.FailOn != "none" && c.FailOn.Rank() == 0 {
		return fmt.Errorf("unknown fail_on severity %q (valid: critical, serious, moderate, minor, none)", c.FailOn)
	}

	// 3. min_score must be a percentage
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min_score = %d (must be between 0 and 100)", c.MinScore)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0 (got %d)", c.Concurrency)
	}

	for i, e := range c.Extensions {
		if strings.TrimSpace(strings.TrimPrefix(e, ".")) == "" {
			return fmt.Errorf("extensions[%d] must not be empty", i)
		}
	}

	for i, r := range c.SkipRules {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("skip_rules[%d] must not be empty", i)
		}
	}

	return nil
}

// FailThreshold returns the severity that fails CI, or "" when disabled.
func (c ProjectConfig) FailThreshold() Severity {
	if c.FailOn == "none" {
		return ""
	}
	return c.FailOn
}
