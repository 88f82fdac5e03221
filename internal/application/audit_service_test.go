package application_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/baseline"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/config"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/scanner"
	"github.com/openkraft/a11ykraft/internal/adapters/outbound/stylesheet"
	"github.com/openkraft/a11ykraft/internal/application"
	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

const siteDir = "../../testdata/site"

type fakeGit struct{ hash string }

func (g fakeGit) IsGitRepo(string) bool             { return g.hash != "" }
func (g fakeGit) CommitHash(string) (string, error) { return g.hash, nil }

// copySite copies the fixture site so audits can write their baseline.
func copySite(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.CopyFS(root, os.DirFS(siteDir)))
	return root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(rel)), []byte(content), 0644))
}

func newAuditService() *application.AuditService {
	return application.NewAuditService(
		rules.Default(), scanner.New(), config.New(), stylesheet.New(), baseline.New(),
		fakeGit{hash: "0123456789abcdef0123456789abcdef01234567"}, nil,
	)
}

func page(t *testing.T, report *domain.AuditReport, path string) domain.PageReport {
	t.Helper()
	for _, p := range report.Pages {
		if p.Path == path {
			return p
		}
	}
	t.Fatalf("page %s not in report", path)
	return domain.PageReport{}
}

func TestAudit_Site(t *testing.T) {
	root := copySite(t)
	report, err := newAuditService().Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)

	require.Len(t, report.Pages, 4)
	assert.Equal(t, domain.TierStandard, report.Tier)
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", report.CommitHash)
	assert.Nil(t, report.Diff)

	about := page(t, report, "about.html")
	types := issueTypes(about.Issues)
	for _, want := range []string{"Missing Alt Text", "Missing Language of Page", "Missing Page Title", "Duplicate ID", "Missing Form Label/Name", "Generic Link Text"} {
		assert.Contains(t, types, want)
	}
	for _, i := range about.Issues {
		assert.Equal(t, "about.html", i.Page)
	}

	index := page(t, report, "index.html")
	assert.Greater(t, index.Score, about.Score)
	assert.Equal(t, domain.PageScore(index.Summary), index.Score)
}

func TestAudit_LinkedStylesheets(t *testing.T) {
	root := copySite(t)
	report, err := newAuditService().Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)

	index := issueTypes(page(t, report, "index.html").Issues)
	assert.Contains(t, index, "Low Color Contrast")
	assert.Contains(t, index, "Focus Not Visible")
	assert.Contains(t, index, "Fixed Font Size")

	post := issueTypes(page(t, report, "blog/post.html").Issues)
	assert.Contains(t, post, "Focus Not Visible", "../css/site.css resolves from blog/")

	writeFile(t, root, ".a11ykraft.yaml", "resolve_stylesheets: false\n")
	report, err = newAuditService().Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)
	assert.NotContains(t, issueTypes(page(t, report, "index.html").Issues), "Focus Not Visible")
}

func TestAudit_SiteRules(t *testing.T) {
	root := copySite(t)
	report, err := newAuditService().Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)

	var nav, ident []domain.Issue
	for _, i := range report.SiteIssues {
		switch i.Type {
		case "Navigation Consistency":
			nav = append(nav, i)
		case "Inconsistent Identification":
			ident = append(ident, i)
		}
	}
	assert.NotEmpty(t, nav)
	assert.NotEmpty(t, ident)
	for _, i := range report.SiteIssues {
		assert.NotEmpty(t, i.Page)
	}

	pageTotal := 0
	for _, p := range report.Pages {
		pageTotal += p.Summary.Total
	}
	assert.Equal(t, pageTotal+len(report.SiteIssues), report.Summary.Total)
}

func TestAudit_ConfigExcludesAndSkips(t *testing.T) {
	root := copySite(t)
	writeFile(t, root, ".a11ykraft.yaml", "exclude_paths: [drafts]\nskip_rules: [duplicate-id]\n")

	report, err := newAuditService().Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)

	require.Len(t, report.Pages, 3)
	for _, p := range report.Pages {
		assert.False(t, strings.HasPrefix(p.Path, "drafts/"))
		assert.Zero(t, countType(p.Issues, "Duplicate ID"))
	}
}

func TestAudit_TierOverride(t *testing.T) {
	root := copySite(t)
	svc := newAuditService()

	report, err := svc.Audit(context.Background(), root, application.AuditOptions{Tier: domain.TierFull})
	require.NoError(t, err)
	assert.Equal(t, domain.TierFull, report.Tier)

	_, err = svc.Audit(context.Background(), root, application.AuditOptions{Tier: "gold"})
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}

func TestAudit_Progress(t *testing.T) {
	root := copySite(t)

	var mu sync.Mutex
	var calls []int
	_, err := newAuditService().Audit(context.Background(), root, application.AuditOptions{
		Progress: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 4, total)
			calls = append(calls, done)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, calls)
}

func TestAudit_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAuditService().Audit(ctx, copySite(t), application.AuditOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAudit_EmptyPageIsReportedNotFatal(t *testing.T) {
	root := copySite(t)
	writeFile(t, root, "empty.html", "   ")

	report, err := newAuditService().Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)

	empty := page(t, report, "empty.html")
	assert.NotEmpty(t, empty.Error)

	var scored []domain.PageReport
	for _, p := range report.Pages {
		if p.Error == "" {
			scored = append(scored, p)
		}
	}
	assert.Equal(t, domain.ComputeOverallScore(scored), report.Overall)
}

func TestAudit_InvalidConfig(t *testing.T) {
	root := copySite(t)
	writeFile(t, root, ".a11ykraft.yaml", "tier: gold\n")

	_, err := newAuditService().Audit(context.Background(), root, application.AuditOptions{})
	assert.ErrorContains(t, err, "loading config")
}

func TestAudit_BaselineDiff(t *testing.T) {
	root := copySite(t)
	svc := newAuditService()

	first, err := svc.Audit(context.Background(), root, application.AuditOptions{UpdateBaseline: true})
	require.NoError(t, err)
	assert.Nil(t, first.Diff)

	second, err := svc.Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)
	require.NotNil(t, second.Diff)
	assert.Empty(t, second.Diff.New)
	assert.Empty(t, second.Diff.Fixed)
	assert.Len(t, second.Diff.Open, first.Summary.Total)

	// Give the unnamed image on the about page a text alternative.
	about, err := os.ReadFile(filepath.Join(root, "about.html"))
	require.NoError(t, err)
	writeFile(t, root, "about.html", strings.Replace(string(about), `<img src="img/team.jpg">`, `<img src="img/team.jpg" alt="Our team">`, 1))

	third, err := svc.Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)
	require.NotNil(t, third.Diff)

	var fixed []string
	for _, r := range third.Diff.Fixed {
		fixed = append(fixed, r.Page+"#"+r.ID)
		assert.Equal(t, domain.StatusFixed, r.Status)
	}
	assert.Contains(t, fixed, "about.html#missing-alt-text-0")
}

func TestAudit_ConfigChangeInvalidatesBaseline(t *testing.T) {
	root := copySite(t)
	svc := newAuditService()

	_, err := svc.Audit(context.Background(), root, application.AuditOptions{UpdateBaseline: true})
	require.NoError(t, err)

	writeFile(t, root, ".a11ykraft.yaml", "skip_rules: [image-of-text]\n")
	report, err := svc.Audit(context.Background(), root, application.AuditOptions{})
	require.NoError(t, err)
	assert.Nil(t, report.Diff)
}
