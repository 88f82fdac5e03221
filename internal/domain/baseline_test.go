package domain_test

import (
	"testing"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(page, id string) domain.IssueRecord {
	return domain.IssueRecord{Page: page, ID: id, Severity: domain.SeveritySerious, Status: domain.StatusOpen}
}

func TestDiffIssues(t *testing.T) {
	previous := []domain.IssueRecord{
		record("index.html", "missing-alt-text-0"),
		record("index.html", "missing-page-title-0"),
	}
	current := []domain.IssueRecord{
		record("index.html", "missing-alt-text-0"),
		record("about.html", "duplicate-id-3"),
	}

	diff := domain.DiffIssues(previous, current)

	require.Len(t, diff.Open, 1)
	assert.Equal(t, "missing-alt-text-0", diff.Open[0].ID)
	require.Len(t, diff.New, 1)
	assert.Equal(t, "duplicate-id-3", diff.New[0].ID)
	require.Len(t, diff.Fixed, 1)
	assert.Equal(t, "missing-page-title-0", diff.Fixed[0].ID)
	assert.Equal(t, domain.StatusFixed, diff.Fixed[0].Status)
}

func TestDiffIssues_SameIDDifferentPage(t *testing.T) {
	diff := domain.DiffIssues(
		[]domain.IssueRecord{record("a.html", "missing-alt-text-0")},
		[]domain.IssueRecord{record("b.html", "missing-alt-text-0")},
	)
	assert.Len(t, diff.New, 1)
	assert.Len(t, diff.Fixed, 1)
	assert.Empty(t, diff.Open)
}

func TestRecordsFor(t *testing.T) {
	records := domain.RecordsFor([]domain.Issue{
		{ID: "missing-alt-text-0", Page: "index.html", Type: "Missing Alt Text", Severity: domain.SeveritySerious},
	})
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusOpen, records[0].Status)
	assert.Equal(t, "index.html", records[0].Page)
}

func TestBaseline_IsInvalidated(t *testing.T) {
	b := &domain.Baseline{Tier: domain.TierStandard, ConfigHash: "abc"}
	assert.False(t, b.IsInvalidated(domain.TierStandard, "abc"))
	assert.True(t, b.IsInvalidated(domain.TierFull, "abc"))
	assert.True(t, b.IsInvalidated(domain.TierStandard, "def"))
}

func TestFixOptions_Wants(t *testing.T) {
	assert.True(t, domain.FixOptions{}.Wants("missing-alt-text"))
	opts := domain.FixOptions{Rules: []string{"missing-media-controls"}}
	assert.True(t, opts.Wants("missing-media-controls"))
	assert.False(t, opts.Wants("missing-alt-text"))
}
