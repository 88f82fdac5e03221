package baseline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/baseline"
	"github.com/openkraft/a11ykraft/internal/domain"
)

func TestStore_SaveAndLoad(t *testing.T) {
	store := baseline.New()
	projectPath := t.TempDir()

	original := &domain.Baseline{
		RootPath:   projectPath,
		Tier:       domain.TierStandard,
		ConfigHash: "abc123",
		Records: []domain.IssueRecord{
			{Page: "index.html", ID: "missing-alt-text-0", Type: "Missing Alt Text", Severity: domain.SeveritySerious, Status: domain.StatusOpen},
		},
	}
	require.NoError(t, store.Save(original))

	loaded, err := store.Load(projectPath)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, original, loaded)

	entries, err := os.ReadDir(filepath.Join(projectPath, ".a11ykraft"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "baseline.json", entries[0].Name())
}

func TestStore_LoadNonExistent(t *testing.T) {
	loaded, err := baseline.New().Load(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_LoadCorrupt(t *testing.T) {
	projectPath := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(projectPath, ".a11ykraft"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(projectPath, ".a11ykraft", "baseline.json"), []byte("[1,"), 0644))

	_, err := baseline.New().Load(projectPath)
	assert.ErrorContains(t, err, "parsing baseline")
}

func TestStore_Invalidate(t *testing.T) {
	store := baseline.New()
	projectPath := t.TempDir()

	require.NoError(t, store.Save(&domain.Baseline{RootPath: projectPath, Tier: domain.TierFull}))
	require.NoError(t, store.Invalidate(projectPath))

	loaded, err := store.Load(projectPath)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, store.Invalidate(projectPath), "invalidating twice is not an error")
}
