package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/openkraft/a11ykraft/internal/adapters/outbound/config"
	"github.com/openkraft/a11ykraft/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".a11ykraft.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
tier: full
skip_rules: [image-of-text, missing-skip-link]
exclude_paths: [drafts]
extensions: [html, ".xhtml"]
fail_on: critical
min_score: 80
concurrency: 2
resolve_stylesheets: false
`)
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.TierFull, cfg.Tier)
	assert.Equal(t, []string{"image-of-text", "missing-skip-link"}, cfg.SkipRules)
	assert.Equal(t, []string{"drafts"}, cfg.ExcludePaths)
	assert.Equal(t, []string{".html", ".xhtml"}, cfg.EffectiveExtensions())
	assert.Equal(t, domain.SeverityCritical, cfg.FailThreshold())
	assert.Equal(t, 80, cfg.MinScore)
	assert.Equal(t, 2, cfg.EffectiveConcurrency())
	assert.False(t, cfg.ShouldResolveStylesheets())
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)
	loader := appconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .a11ykraft.yaml")
}

func TestYAMLLoader_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"tier":        "tier: gold",
		"fail_on":     "fail_on: blocker",
		"min_score":   "min_score: 120",
		"concurrency": "concurrency: -1",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, content)

			_, err := appconfig.New().Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid .a11ykraft.yaml")
		})
	}
}

func TestYAMLLoader_UnknownSkipRule(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `skip_rules: [missing-alt-text, no-such-rule]`)

	_, err := appconfig.New().Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-rule")
	assert.NotContains(t, err.Error(), "missing-alt-text,")
}

func TestYAMLLoader_EmptyFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.TierStandard, cfg.EffectiveTier())
	assert.True(t, cfg.ShouldResolveStylesheets())
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	path, err := appconfig.WriteDefault(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".a11ykraft.yaml"), path)

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.TierStandard, cfg.Tier)
	assert.Equal(t, domain.SeveritySerious, cfg.FailThreshold())
	assert.Equal(t, 4, cfg.EffectiveConcurrency())

	_, err = appconfig.WriteDefault(dir)
	assert.ErrorIs(t, err, appconfig.ErrConfigExists)
}
