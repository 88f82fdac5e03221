package application

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

// ScanService is the scan orchestrator: one parse, then every rule selected
// for the tier, with findings aggregated in catalog order.
type ScanService struct {
	catalog   *rules.Catalog
	logger    *zap.Logger
	skip      map[string]bool
	parseOpts []dom.Option
}

// ScanOption configures a ScanService.
type ScanOption func(*ScanService)

// WithSkipRules excludes rules by id.
func WithSkipRules(ids ...string) ScanOption {
	return func(s *ScanService) {
		for _, id := range ids {
			s.skip[id] = true
		}
	}
}

// WithParseOptions applies dom options to every parse.
func WithParseOptions(opts ...dom.Option) ScanOption {
	return func(s *ScanService) { s.parseOpts = append(s.parseOpts, opts...) }
}

// NewScanService creates a ScanService. A nil logger discards output.
func NewScanService(catalog *rules.Catalog, logger *zap.Logger, opts ...ScanOption) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ScanService{catalog: catalog, logger: logger, skip: make(map[string]bool)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Catalog returns the rule catalog the service runs.
func (s *ScanService) Catalog() *rules.Catalog { return s.catalog }

// Scan parses markup and returns its issues. Markup that cannot be parsed and
// an unknown tier are the only errors; nothing partial is returned with them.
func (s *ScanService) Scan(markup string, tier domain.ScanTier, opts ...dom.Option) ([]domain.Issue, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownTier, tier)
	}
	doc, err := dom.Parse(markup, append(append([]dom.Option(nil), s.parseOpts...), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return s.ScanDocument(doc, tier), nil
}

// ScanDocument runs the rules selected for tier against an already parsed
// document. Rules run concurrently; the result order is the catalog order.
func (s *ScanService) ScanDocument(doc *dom.Document, tier domain.ScanTier) []domain.Issue {
	for _, d := range doc.Diagnostics() {
		s.logger.Debug("style resolution incomplete",
			zap.String("source", d.Source),
			zap.String("detail", d.Message))
	}

	selected := s.selectRules(tier)
	results := make([][]domain.Issue, len(selected))

	var wg sync.WaitGroup
	for i, r := range selected {
		wg.Add(1)
		go func(i int, r rules.Rule) {
			defer wg.Done()
			results[i] = s.runRule(doc, r)
		}(i, r)
	}
	wg.Wait()

	var issues []domain.Issue
	for _, res := range results {
		issues = append(issues, res...)
	}
	return issues
}

func (s *ScanService) selectRules(tier domain.ScanTier) []rules.Rule {
	var out []rules.Rule
	for _, r := range s.catalog.ForTier(tier) {
		if !s.skip[r.ID()] {
			out = append(out, r)
		}
	}
	return out
}

// runRule isolates a rule: if it panics, its contribution is dropped and
// the rest of the scan proceeds.
func (s *ScanService) runRule(doc *dom.Document, r rules.Rule) (issues []domain.Issue) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("rule failed, skipping its findings",
				zap.String("rule", r.ID()),
				zap.Any("panic", rec))
			issues = nil
		}
	}()
	r.Check(doc, func(f rules.Finding) {
		issues = append(issues, toIssue(r.ID(), r.Type, r.Description, r.Severity, f))
	})
	return issues
}

// ScanSite runs the multi-document rules over pages, which must be sorted by
// path. Each issue's Page names the page it was found on.
func (s *ScanService) ScanSite(pages []rules.Page, tier domain.ScanTier) []domain.Issue {
	var issues []domain.Issue
	for _, r := range s.catalog.SiteRulesForTier(tier) {
		if s.skip[r.ID()] {
			continue
		}
		issues = append(issues, s.runSiteRule(pages, r)...)
	}
	return issues
}

func (s *ScanService) runSiteRule(pages []rules.Page, r rules.SiteRule) (issues []domain.Issue) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("site rule failed, skipping its findings",
				zap.String("rule", r.ID()),
				zap.Any("panic", rec))
			issues = nil
		}
	}()
	r.Check(pages, func(f rules.SiteFinding) {
		issue := toIssue(r.ID(), r.Type, r.Description, r.Severity, f.Finding)
		issue.Page = f.Page
		issues = append(issues, issue)
	})
	return issues
}

func toIssue(ruleID, typ, description string, severity domain.Severity, f rules.Finding) domain.Issue {
	if f.Description != "" {
		description = f.Description
	}
	return domain.Issue{
		ID:          ruleID + "-" + strconv.Itoa(f.Ordinal),
		Rule:        ruleID,
		Type:        typ,
		Element:     f.Element,
		Description: description,
		Severity:    severity,
		Fix:         f.Fix,
		Message:     f.Message,
		Selector:    f.Selector,
		Impact:      severity,
	}
}
