package e2e_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/a11ykraft/internal/domain"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "a11ykraft-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "a11ykraft")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/a11ykraft")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

// siteCopy copies the fixture site so runs can write .a11ykraft/ state.
func siteCopy(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.CopyFS(root, os.DirFS("../../testdata/site")))
	return root
}

func run(t *testing.T, stdin string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.Output()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return string(out), exitCode
}

// --- Scan Tests ---

func TestE2E_ScanJSON(t *testing.T) {
	root := siteCopy(t)
	out, code := run(t, "", "scan", filepath.Join(root, "about.html"), "--json")
	assert.Equal(t, 0, code)

	var result struct {
		Issues []domain.Issue `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotEmpty(t, result.Issues)

	seen := map[string]bool{}
	for _, i := range result.Issues {
		assert.False(t, seen[i.ID], "duplicate issue id %s", i.ID)
		seen[i.ID] = true
	}
}

func TestE2E_ScanStdinFailOn(t *testing.T) {
	const head = `<html lang="en"><head><title>T</title></head><body><a href="#main-content">Skip to content</a><main id="main-content">`

	_, code := run(t, head+`<p style="animation: flash 0.2s infinite">Sale</p></main></body></html>`, "scan", "-", "--fail-on", "critical")
	assert.Equal(t, 1, code)

	_, code = run(t, head+`<img src="a.png"></main></body></html>`, "scan", "-", "--fail-on", "critical")
	assert.Equal(t, 0, code)

	_, code = run(t, head+`<p>fine</p></main></body></html>`, "scan", "-", "--fail-on", "minor")
	assert.Equal(t, 0, code)
}

// --- Audit Tests ---

func TestE2E_AuditJSON(t *testing.T) {
	root := siteCopy(t)
	out, code := run(t, "", "audit", root, "--json")
	assert.Equal(t, 0, code)

	var report domain.AuditReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Pages, 4)
	assert.True(t, report.Overall >= 0 && report.Overall <= 100)
	assert.NotEmpty(t, report.SiteIssues, "fixture pages disagree on navigation")
}

func TestE2E_AuditDiff(t *testing.T) {
	root := siteCopy(t)
	_, code := run(t, "", "audit", root, "-q")
	require.Equal(t, 0, code)

	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"),
		[]byte(`<html><body><img src="a.png"></body></html>`), 0o644))

	out, code := run(t, "", "audit", root, "--json")
	require.Equal(t, 0, code)

	var report domain.AuditReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Diff)
	assert.NotEmpty(t, report.Diff.New)
}

func TestE2E_AuditCI(t *testing.T) {
	root := siteCopy(t)
	_, code := run(t, "", "audit", root, "-q", "--ci", "--min", "101")
	assert.Equal(t, 1, code, "should exit 1 when below minimum")
}

// --- Fix Tests ---

func TestE2E_FixWrite(t *testing.T) {
	root := siteCopy(t)
	page := filepath.Join(root, "about.html")

	_, code := run(t, "", "fix", page, "--write")
	require.Equal(t, 0, code)

	out, code := run(t, "", "scan", page, "--json")
	require.Equal(t, 0, code)
	assert.NotContains(t, out, "Missing Alt Text")
}

// --- Validate Tests ---

func TestE2E_Validate(t *testing.T) {
	root := siteCopy(t)
	page := filepath.Join(root, "about.html")

	out, code := run(t, "", "validate", page, "--path", root)
	assert.Equal(t, 0, code)

	var result domain.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, domain.ValidationPass, result.Status)
	assert.Equal(t, []string{"about.html"}, result.PagesChecked)
}

// --- Misc ---

func TestE2E_Rules(t *testing.T) {
	out, code := run(t, "", "rules", "--json")
	assert.Equal(t, 0, code)

	var infos []domain.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.NotEmpty(t, infos)
}

func TestE2E_Version(t *testing.T) {
	out, code := run(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "a11ykraft")
}
