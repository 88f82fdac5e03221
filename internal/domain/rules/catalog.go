// Package rules holds the accessibility rule catalog. Each rule is a pure
// function over a parsed document; the catalog fixes the order in which their
// findings are reported.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

// Finding is what a rule reports for one offending node. The scan
// orchestrator turns findings into domain.Issue values.
type Finding struct {
	// Ordinal is the node's position among the rule's candidates. Together
	// with the rule id it forms the issue id, so it must be stable for
	// identical input.
	Ordinal     int
	Element     string
	Description string
	Fix         string
	Selector    string
	Message     string
}

// CheckFunc inspects doc and reports findings through emit. It must not
// retain or mutate doc.
type CheckFunc func(doc *dom.Document, emit func(Finding))

// Rule is one catalog entry.
type Rule struct {
	// Name is the CamelCase rule name; ID derives from it.
	Name        string
	Type        string
	Principle   domain.Principle
	Severity    domain.Severity
	Criterion   string
	Tier        domain.ScanTier
	Description string
	Check       CheckFunc
}

// ID returns the kebab-case rule id, e.g. "missing-alt-text".
func (r Rule) ID() string { return slug(r.Name) }

// Info describes the rule for listings.
func (r Rule) Info() domain.RuleInfo {
	return domain.RuleInfo{
		ID:          r.ID(),
		Type:        r.Type,
		Principle:   r.Principle,
		Severity:    r.Severity,
		Criterion:   r.Criterion,
		Tier:        r.Tier,
		Description: r.Description,
	}
}

func slug(name string) string {
	parts := camelcase.Split(name)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return strings.Join(out, "-")
}

// Catalog is an immutable, ordered set of rules.
type Catalog struct {
	rules []Rule
	site  []SiteRule
	byID  map[string]bool
}

// NewCatalog validates and freezes the given rules. Ids must be unique across
// page and site rules and every rule needs a check function.
func NewCatalog(page []Rule, site []SiteRule) (*Catalog, error) {
	c := &Catalog{
		rules: append([]Rule(nil), page...),
		site:  append([]SiteRule(nil), site...),
		byID:  make(map[string]bool, len(page)+len(site)),
	}
	for _, r := range c.rules {
		if err := c.register(r.ID(), r.Tier, r.Check != nil); err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Name, err)
		}
	}
	for _, r := range c.site {
		if err := c.register(r.ID(), r.Tier, r.Check != nil); err != nil {
			return nil, fmt.Errorf("site rule %s: %w", r.Name, err)
		}
	}
	return c, nil
}

func (c *Catalog) register(id string, tier domain.ScanTier, hasCheck bool) error {
	switch {
	case id == "":
		return errors.New("empty name")
	case c.byID[id]:
		return fmt.Errorf("duplicate id %q", id)
	case !tier.Valid():
		return fmt.Errorf("%w %q", domain.ErrUnknownTier, tier)
	case !hasCheck:
		return errors.New("no check function")
	}
	c.byID[id] = true
	return nil
}

// Default returns the built-in catalog in reporting order.
func Default() *Catalog {
	var page []Rule
	page = append(page, perceivable()...)
	page = append(page, operable()...)
	page = append(page, understandable()...)
	page = append(page, robust()...)

	c, err := NewCatalog(page, siteRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Rules returns the single-page rules in catalog order.
func (c *Catalog) Rules() []Rule { return append([]Rule(nil), c.rules...) }

// SiteRules returns the multi-document rules in catalog order.
func (c *Catalog) SiteRules() []SiteRule { return append([]SiteRule(nil), c.site...) }

// ForTier returns the page rules a scan at tier runs, in catalog order.
func (c *Catalog) ForTier(tier domain.ScanTier) []Rule {
	var out []Rule
	for _, r := range c.rules {
		if tier.Includes(r.Tier) {
			out = append(out, r)
		}
	}
	return out
}

// SiteRulesForTier is ForTier for multi-document rules.
func (c *Catalog) SiteRulesForTier(tier domain.ScanTier) []SiteRule {
	var out []SiteRule
	for _, r := range c.site {
		if tier.Includes(r.Tier) {
			out = append(out, r)
		}
	}
	return out
}

// Lookup finds a page rule by id.
func (c *Catalog) Lookup(id string) (Rule, bool) {
	for _, r := range c.rules {
		if r.ID() == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Known reports whether id names any page or site rule.
func (c *Catalog) Known(id string) bool { return c.byID[id] }

// IDs lists every rule id, page rules first.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.rules)+len(c.site))
	for _, r := range c.rules {
		ids = append(ids, r.ID())
	}
	for _, r := range c.site {
		ids = append(ids, r.ID())
	}
	return ids
}

// Info describes every rule, page rules first.
func (c *Catalog) Info() []domain.RuleInfo {
	infos := make([]domain.RuleInfo, 0, len(c.rules)+len(c.site))
	for _, r := range c.rules {
		infos = append(infos, r.Info())
	}
	for _, r := range c.site {
		infos = append(infos, r.Info())
	}
	return infos
}
