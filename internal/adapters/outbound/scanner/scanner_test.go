package scanner_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/scanner"
	"github.com/openkraft/a11ykraft/internal/domain"
)

const fixtureDir = "../../../../testdata/site"

func TestFileScanner_Scan(t *testing.T) {
	s := scanner.New()
	result, err := s.Scan(fixtureDir, domain.DefaultExtensions)
	require.NoError(t, err)

	assert.Equal(t, []string{"about.html", "blog/post.html", "drafts/wip.html", "index.html"}, result.Pages)
	assert.Equal(t, []string{"css/site.css"}, result.Stylesheets)
	assert.False(t, result.HasConfig)
	assert.True(t, filepath.IsAbs(result.RootPath))
}

func TestFileScanner_SkipsDependencyDirs(t *testing.T) {
	s := scanner.New()
	result, err := s.Scan(fixtureDir, domain.DefaultExtensions)
	require.NoError(t, err)

	for _, p := range result.Pages {
		assert.NotContains(t, p, "node_modules/")
	}
}

func TestFileScanner_ExcludePaths(t *testing.T) {
	s := scanner.New()

	result, err := s.Scan(fixtureDir, domain.DefaultExtensions, "drafts")
	require.NoError(t, err)
	assert.NotContains(t, result.Pages, "drafts/wip.html")
	assert.Contains(t, result.Pages, "index.html")

	result, err = s.Scan(fixtureDir, domain.DefaultExtensions, "blog/")
	require.NoError(t, err)
	assert.Equal(t, []string{"about.html", "drafts/wip.html", "index.html"}, result.Pages)
}

func TestFileScanner_Extensions(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.html", "b.HTM", "c.xhtml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("<p>x</p>"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, ".a11ykraft.yaml"), []byte("tier: full\n"), 0o644))

	s := scanner.New()
	result, err := s.Scan(root, domain.DefaultExtensions)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.HTM"}, result.Pages)
	assert.True(t, result.HasConfig)

	result, err = s.Scan(root, []string{".xhtml"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c.xhtml"}, result.Pages)
}

func TestFileScanner_MissingRoot(t *testing.T) {
	s := scanner.New()
	_, err := s.Scan(filepath.Join(t.TempDir(), "nope"), domain.DefaultExtensions)
	assert.Error(t, err)
}
