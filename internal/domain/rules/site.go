package rules

import (
	"fmt"
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

// Page is one parsed document of a site, identified by its path.
type Page struct {
	Path string
	Doc  *dom.Document
}

// SiteFinding is a finding tied to one page of a multi-document check.
type SiteFinding struct {
	Finding
	Page string
}

// SiteCheckFunc compares pages, which arrive sorted by path.
type SiteCheckFunc func(pages []Page, emit func(SiteFinding))

// SiteRule is a check that only makes sense across several documents.
type SiteRule struct {
	Name        string
	Type        string
	Principle   domain.Principle
	Severity    domain.Severity
	Criterion   string
	Tier        domain.ScanTier
	Description string
	Check       SiteCheckFunc
}

func (r SiteRule) ID() string { return slug(r.Name) }

func (r SiteRule) Info() domain.RuleInfo {
	return domain.RuleInfo{
		ID:          r.ID(),
		Type:        r.Type,
		Principle:   r.Principle,
		Severity:    r.Severity,
		Criterion:   r.Criterion,
		Tier:        r.Tier,
		Description: r.Description,
		SiteWide:    true,
	}
}

var (
	qNav      = dom.MustQuery("nav")
	qNavLinks = dom.MustQuery("a[href]")
)

func siteRules() []SiteRule {
	return []SiteRule{
		{
			Name:        "NavigationConsistency",
			Type:        "Navigation Consistency",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeverityModerate,
			Criterion:   "3.2.3",
			Tier:        domain.TierStandard,
			Description: "Navigation structure is inconsistent across pages",
			Check:       checkConsistentNavigation,
		},
		{
			Name:        "InconsistentIdentification",
			Type:        "Inconsistent Identification",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeverityModerate,
			Criterion:   "3.2.4",
			Tier:        domain.TierStandard,
			Description: "The same link target is identified differently across pages",
			Check:       checkConsistentIdentification,
		},
	}
}

// checkConsistentNavigation takes the first page with a <nav> as reference.
// Another page is inconsistent when the links both navs share appear in a
// different relative order. Links present on only one side are ignored.
func checkConsistentNavigation(pages []Page, emit func(SiteFinding)) {
	var refPath string
	var ref []string
	for _, p := range pages {
		nav := p.Doc.QueryFirst(qNav)
		if nav == nil {
			continue
		}
		hrefs := navHrefs(nav)
		if ref == nil {
			refPath, ref = p.Path, hrefs
			continue
		}
		if sameRelativeOrder(ref, hrefs) {
			continue
		}
		emit(SiteFinding{
			Page: p.Path,
			Finding: Finding{
				Element:     nav.OuterHTML(),
				Description: fmt.Sprintf("Navigation links shared with %s appear in a different order (WCAG 2.0 AA 3.2.3)", refPath),
				Selector:    dom.SelectorFor(nav),
			},
		})
	}
}

func navHrefs(nav *dom.Node) []string {
	hrefs := []string{}
	for _, a := range nav.QueryAll(qNavLinks) {
		hrefs = append(hrefs, strings.TrimSpace(a.AttrOr("href", "")))
	}
	return hrefs
}

func sameRelativeOrder(a, b []string) bool {
	inB := make(map[string]bool, len(b))
	for _, h := range b {
		inB[h] = true
	}
	inA := make(map[string]bool, len(a))
	for _, h := range a {
		inA[h] = true
	}
	var sharedA, sharedB []string
	for _, h := range a {
		if inB[h] {
			sharedA = append(sharedA, h)
		}
	}
	for _, h := range b {
		if inA[h] {
			sharedB = append(sharedB, h)
		}
	}
	if len(sharedA) != len(sharedB) {
		return false
	}
	for i := range sharedA {
		if sharedA[i] != sharedB[i] {
			return false
		}
	}
	return true
}

// checkConsistentIdentification records the first accessible name seen for
// every link target and flags later links to the same target whose name
// differs. In-page fragments are skipped.
func checkConsistentIdentification(pages []Page, emit func(SiteFinding)) {
	type first struct{ page, name string }
	seen := make(map[string]first)
	for _, p := range pages {
		for i, a := range p.Doc.QueryAll(qNavLinks) {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if href == "" || strings.HasPrefix(href, "#") {
				continue
			}
			name := accessibleName(a)
			if name == "" {
				continue
			}
			prev, ok := seen[href]
			if !ok {
				seen[href] = first{page: p.Path, name: name}
				continue
			}
			if strings.EqualFold(prev.name, name) {
				continue
			}
			emit(SiteFinding{
				Page: p.Path,
				Finding: Finding{
					Ordinal:     i,
					Element:     a.OuterHTML(),
					Description: fmt.Sprintf("Link to %s is named %q here but %q on %s", href, name, prev.name, prev.page),
					Selector:    dom.SelectorFor(a),
				},
			})
		}
	}
}
