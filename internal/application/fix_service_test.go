package application_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/a11ykraft/internal/application"
	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

func newFixService() *application.FixService {
	return application.NewFixService(newScanService())
}

func rulesOf(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Rule)
	}
	return out
}

func TestFix_InsertsAltText(t *testing.T) {
	result, err := newFixService().Fix(`<html><body><img src="a.png"><img src="b.png"></body></html>`, domain.FixOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(result.Markup, `alt="Description of image"`))
	assert.Equal(t, 2, countType(result.Applied, "Missing Alt Text"))
	assert.NotContains(t, rulesOf(result.Remaining), "missing-alt-text")
	assert.GreaterOrEqual(t, result.Passes, 1)

	// Issues without a mechanical fix remain.
	assert.Contains(t, rulesOf(result.Remaining), "missing-language")
}

func TestFix_RescanIsClean(t *testing.T) {
	svc := newFixService()
	markup := `<html><body><video src="v.mp4"></video><img src="x.png"><div onclick="go()" role="button">Go</div></body></html>`

	result, err := svc.Fix(markup, domain.FixOptions{})
	require.NoError(t, err)

	issues, err := newScanService().Scan(result.Markup, domain.TierStandard)
	require.NoError(t, err)
	for _, i := range issues {
		assert.False(t, i.HasFix(), "fixable issue left behind: %s %s", i.ID, i.Element)
	}
	assert.Equal(t, issues, result.Remaining)
}

func TestFix_RuleFilter(t *testing.T) {
	markup := `<html><body><video src="v.mp4"></video><img src="x.png"></body></html>`

	result, err := newFixService().Fix(markup, domain.FixOptions{Rules: []string{"missing-media-controls"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"missing-media-controls"}, rulesOf(result.Applied))
	assert.Contains(t, result.Markup, "controls")
	assert.Contains(t, rulesOf(result.Remaining), "missing-alt-text")
}

func TestFix_Idempotent(t *testing.T) {
	svc := newFixService()

	first, err := svc.Fix(`<img src="a.png">`, domain.FixOptions{})
	require.NoError(t, err)

	second, err := svc.Fix(first.Markup, domain.FixOptions{})
	require.NoError(t, err)
	assert.Empty(t, second.Applied)
	assert.Zero(t, second.Passes)
	assert.Equal(t, first.Markup, second.Markup)
}

func TestFix_NothingToFix(t *testing.T) {
	markup := `<html lang="en"><head><title>Ok</title></head><body><p>Hello</p></body></html>`

	result, err := newFixService().Fix(markup, domain.FixOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Zero(t, result.Passes)
}

func TestFix_Errors(t *testing.T) {
	svc := newFixService()

	_, err := svc.Fix("", domain.FixOptions{})
	assert.ErrorIs(t, err, dom.ErrEmptyMarkup)

	_, err = svc.Fix("<p>x</p>", domain.FixOptions{Tier: "gold"})
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}
