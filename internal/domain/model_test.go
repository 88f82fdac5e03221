package domain_test

import (
	"testing"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditReport_Grade(t *testing.T) {
	tests := []struct {
		score int
		grade string
	}{
		{95, "A+"}, {85, "A"}, {75, "B"}, {65, "C"}, {55, "D"}, {45, "F"}, {0, "F"}, {100, "A+"},
	}
	for _, tt := range tests {
		r := domain.AuditReport{Overall: tt.score}
		assert.Equal(t, tt.grade, r.Grade(), "score %d", tt.score)
	}
}

func TestSeverity_Rank(t *testing.T) {
	assert.Greater(t, domain.SeverityCritical.Rank(), domain.SeveritySerious.Rank())
	assert.Greater(t, domain.SeveritySerious.Rank(), domain.SeverityModerate.Rank())
	assert.Greater(t, domain.SeverityModerate.Rank(), domain.SeverityMinor.Rank())
	assert.Equal(t, 0, domain.Severity("blocker").Rank())
}

func TestSeverity_AtLeast(t *testing.T) {
	assert.True(t, domain.SeverityCritical.AtLeast(domain.SeveritySerious))
	assert.True(t, domain.SeveritySerious.AtLeast(domain.SeveritySerious))
	assert.False(t, domain.SeverityModerate.AtLeast(domain.SeveritySerious))
	assert.False(t, domain.Severity("").AtLeast(domain.Severity("")))
}

func TestParseSeverity(t *testing.T) {
	sev, err := domain.ParseSeverity(" Serious ")
	require.NoError(t, err)
	assert.Equal(t, domain.SeveritySerious, sev)

	_, err = domain.ParseSeverity("blocker")
	assert.ErrorIs(t, err, domain.ErrUnknownSeverity)
}

func TestParseScanTier(t *testing.T) {
	tier, err := domain.ParseScanTier("")
	require.NoError(t, err)
	assert.Equal(t, domain.TierStandard, tier)

	tier, err = domain.ParseScanTier("FULL")
	require.NoError(t, err)
	assert.Equal(t, domain.TierFull, tier)

	_, err = domain.ParseScanTier("premium")
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}

func TestScanTier_Includes(t *testing.T) {
	assert.True(t, domain.TierFull.Includes(domain.TierStandard))
	assert.True(t, domain.TierFull.Includes(domain.TierFull))
	assert.True(t, domain.TierStandard.Includes(domain.TierStandard))
	assert.False(t, domain.TierStandard.Includes(domain.TierFull))
}

func TestTierForPlan(t *testing.T) {
	assert.Equal(t, domain.TierFull, domain.TierForPlan("enterprise"))
	assert.Equal(t, domain.TierStandard, domain.TierForPlan("pro"))
	assert.Equal(t, domain.TierStandard, domain.TierForPlan(""))
}

func TestSummarize(t *testing.T) {
	issues := []domain.Issue{
		{Severity: domain.SeverityCritical},
		{Severity: domain.SeveritySerious, Fix: `<img alt="x">`},
		{Severity: domain.SeveritySerious},
		{Severity: domain.SeverityMinor},
	}
	s := domain.Summarize(issues)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Critical)
	assert.Equal(t, 2, s.Serious)
	assert.Equal(t, 0, s.Moderate)
	assert.Equal(t, 1, s.Minor)
	assert.Equal(t, 1, s.Fixable)
	assert.Equal(t, 2, s.Count(domain.SeveritySerious))
}

func TestPageScore(t *testing.T) {
	assert.Equal(t, 100, domain.PageScore(domain.Summary{}))
	assert.Equal(t, 83, domain.PageScore(domain.Summary{Critical: 1, Serious: 1, Moderate: 1}))
	assert.Equal(t, 0, domain.PageScore(domain.Summary{Critical: 20}))
}

func TestComputeOverallScore(t *testing.T) {
	pages := []domain.PageReport{{Score: 80}, {Score: 61}}
	assert.Equal(t, 71, domain.ComputeOverallScore(pages))
}

func TestComputeOverallScore_Empty(t *testing.T) {
	assert.Equal(t, 100, domain.ComputeOverallScore(nil))
}

func TestAuditReport_AllIssuesTagsPages(t *testing.T) {
	r := domain.AuditReport{
		Pages: []domain.PageReport{
			{Path: "index.html", Issues: []domain.Issue{{ID: "missing-alt-text-0"}}},
		},
		SiteIssues: []domain.Issue{{ID: "navigation-consistency-0", Page: "about.html"}},
	}
	all := r.AllIssues()
	require.Len(t, all, 2)
	assert.Equal(t, "index.html", all[0].Page)
	assert.Equal(t, "about.html", all[1].Page)
	assert.Empty(t, r.Pages[0].Issues[0].Page, "pages must not be mutated")
}

func TestExceedsThreshold(t *testing.T) {
	issues := []domain.Issue{{Severity: domain.SeverityModerate}}
	assert.False(t, domain.ExceedsThreshold(issues, domain.SeveritySerious))
	assert.True(t, domain.ExceedsThreshold(issues, domain.SeverityModerate))
	assert.False(t, domain.ExceedsThreshold(issues, ""))
}

func TestGradeFor(t *testing.T) {
	assert.Equal(t, "A+", domain.GradeFor(92))
	assert.Equal(t, "F", domain.GradeFor(10))
}

func TestBadgeColor(t *testing.T) {
	assert.Equal(t, "brightgreen", domain.BadgeColor(95))
	assert.Equal(t, "critical", domain.BadgeColor(30))
}
