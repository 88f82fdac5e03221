package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/openkraft/a11ykraft/internal/application"
	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

func newScanService(opts ...application.ScanOption) *application.ScanService {
	return application.NewScanService(rules.Default(), nil, opts...)
}

func issueTypes(issues []domain.Issue) []string {
	types := make([]string, 0, len(issues))
	for _, i := range issues {
		types = append(types, i.Type)
	}
	return types
}

func countType(issues []domain.Issue, typ string) int {
	n := 0
	for _, i := range issues {
		if i.Type == typ {
			n++
		}
	}
	return n
}

func TestScan_BareImagePage(t *testing.T) {
	issues, err := newScanService().Scan(`<html><body><img src="a.png"></body></html>`, domain.TierStandard)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(issues), 3)
	types := issueTypes(issues)
	assert.Contains(t, types, "Missing Alt Text")
	assert.Contains(t, types, "Missing Language of Page")
	assert.Contains(t, types, "Missing Page Title")
}

func TestScan_UnlabelledInput(t *testing.T) {
	markup := `<html lang="en"><head><title>Sign up</title></head><body>
<form><input id="email"></form>
</body></html>`

	issues, err := newScanService().Scan(markup, domain.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, 1, countType(issues, "Missing Form Label/Name"))
}

func TestScan_LabelledInput(t *testing.T) {
	markup := `<form><label for="email">Email</label><input id="email"></form>`

	issues, err := newScanService().Scan(markup, domain.TierStandard)
	require.NoError(t, err)
	assert.Zero(t, countType(issues, "Missing Form Label/Name"))
}

func TestScan_DuplicateID(t *testing.T) {
	svc := newScanService()

	issues, err := svc.Scan(`<div id="x"></div><span id="x"></span>`, domain.TierStandard)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, countType(issues, "Duplicate ID"), 1)

	issues, err = svc.Scan(`<div id="x"></div><span id="y"></span>`, domain.TierStandard)
	require.NoError(t, err)
	assert.Zero(t, countType(issues, "Duplicate ID"))
}

func TestScan_EmptyAltIsDecorative(t *testing.T) {
	issues, err := newScanService().Scan(`<img src="a.png" alt=""><img src="b.png">`, domain.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, 1, countType(issues, "Missing Alt Text"))
}

const busyPage = `<html><head><meta http-equiv="refresh" content="5">
<style>.x { font-size: 12px; color: #777; background: #888; } :focus { outline: none }</style></head>
<body>
<img src="a.png"><img src="logo.png" alt="Logo">
<video src="v.mp4"></video>
<div role="dialog"><p>Subscribe</p></div>
<a tabindex="3" href="/a">Click here</a><a tabindex="1" href="/b">Read more</a>
<p class="x">Low contrast</p>
<div id="d"></div><div id="d"></div>
<input aria-invalid="true">
<h2>Section</h2>
</body></html>`

func TestScan_Deterministic(t *testing.T) {
	svc := newScanService()

	first, err := svc.Scan(busyPage, domain.TierFull)
	require.NoError(t, err)
	for range 5 {
		again, err := svc.Scan(busyPage, domain.TierFull)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScan_UniqueIDs(t *testing.T) {
	issues, err := newScanService().Scan(busyPage, domain.TierStandard)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, i := range issues {
		assert.False(t, seen[i.ID], "duplicate issue id %s", i.ID)
		seen[i.ID] = true
		assert.Equal(t, i.Severity, i.Impact)
		assert.NotEmpty(t, i.Description)
	}
}

func TestScan_FullIsSupersetOfStandard(t *testing.T) {
	svc := newScanService()

	standard, err := svc.Scan(busyPage, domain.TierStandard)
	require.NoError(t, err)
	full, err := svc.Scan(busyPage, domain.TierFull)
	require.NoError(t, err)

	for _, i := range standard {
		assert.Contains(t, full, i)
	}
}

func TestScan_CatalogOrder(t *testing.T) {
	svc := newScanService()
	issues, err := svc.Scan(busyPage, domain.TierStandard)
	require.NoError(t, err)

	position := make(map[string]int)
	for i, id := range svc.Catalog().IDs() {
		position[id] = i
	}
	for i := 1; i < len(issues); i++ {
		assert.LessOrEqual(t, position[issues[i-1].Rule], position[issues[i].Rule])
	}
}

func TestScan_SkipRules(t *testing.T) {
	issues, err := newScanService(application.WithSkipRules("missing-alt-text")).
		Scan(`<img src="a.png">`, domain.TierStandard)
	require.NoError(t, err)
	assert.Zero(t, countType(issues, "Missing Alt Text"))
}

func TestScan_Errors(t *testing.T) {
	svc := newScanService()

	_, err := svc.Scan("   \n", domain.TierStandard)
	assert.ErrorIs(t, err, dom.ErrEmptyMarkup)

	_, err = svc.Scan("<p>x</p>", domain.ScanTier("gold"))
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}

func TestScan_PanickingRuleIsIsolated(t *testing.T) {
	catalog, err := rules.NewCatalog([]rules.Rule{
		{
			Name: "AlwaysPanics", Type: "Broken", Severity: domain.SeverityCritical, Tier: domain.TierStandard,
			Check: func(*dom.Document, func(rules.Finding)) { panic("boom") },
		},
		{
			Name: "EveryParagraph", Type: "Paragraph", Severity: domain.SeverityMinor, Tier: domain.TierStandard,
			Description: "A paragraph",
			Check: func(doc *dom.Document, emit func(rules.Finding)) {
				for i, p := range doc.ByTag("p") {
					emit(rules.Finding{Ordinal: i, Element: p.OuterHTML()})
				}
			},
		},
	}, nil)
	require.NoError(t, err)

	core, logs := observer.New(zap.ErrorLevel)
	svc := application.NewScanService(catalog, zap.New(core))

	issues, err := svc.Scan("<p>a</p><p>b</p>", domain.TierStandard)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "every-paragraph-0", issues[0].ID)
	assert.Equal(t, "every-paragraph-1", issues[1].ID)
	assert.Equal(t, "A paragraph", issues[0].Description)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "always-panics", logs.All()[0].ContextMap()["rule"])
}

func TestScan_FullOnlyRule(t *testing.T) {
	catalog, err := rules.NewCatalog([]rules.Rule{
		{
			Name: "StrictOnly", Type: "Strict", Severity: domain.SeverityMinor, Tier: domain.TierFull,
			Check: func(doc *dom.Document, emit func(rules.Finding)) {
				emit(rules.Finding{Element: doc.Body().OuterHTML()})
			},
		},
	}, nil)
	require.NoError(t, err)
	svc := application.NewScanService(catalog, nil)

	standard, err := svc.Scan("<p>x</p>", domain.TierStandard)
	require.NoError(t, err)
	assert.Empty(t, standard)

	full, err := svc.Scan("<p>x</p>", domain.TierFull)
	require.NoError(t, err)
	assert.Len(t, full, 1)
}
