package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

// AuditService orchestrates the site audit pipeline:
// load config → walk pages → scan each page (bounded pool) → site rules →
// scores → diff against the baseline.
type AuditService struct {
	catalog      *rules.Catalog
	scanner      domain.PageScanner
	configLoader domain.ConfigLoader
	styles       domain.StylesheetSource
	baseline     domain.BaselineStore
	git          domain.GitInfo
	logger       *zap.Logger
}

func NewAuditService(
	catalog *rules.Catalog,
	scanner domain.PageScanner,
	configLoader domain.ConfigLoader,
	styles domain.StylesheetSource,
	baseline domain.BaselineStore,
	git domain.GitInfo,
	logger *zap.Logger,
) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		catalog:      catalog,
		scanner:      scanner,
		configLoader: configLoader,
		styles:       styles,
		baseline:     baseline,
		git:          git,
		logger:       logger,
	}
}

// AuditOptions tunes one audit run.
type AuditOptions struct {
	// Tier overrides the configured tier when set.
	Tier domain.ScanTier
	// UpdateBaseline persists this audit's issues as the new baseline.
	UpdateBaseline bool
	// Progress, when set, is called after each page finishes. Calls are
	// serialized.
	Progress func(done, total int)
}

type pageResult struct {
	report domain.PageReport
	doc    *dom.Document
}

// Audit scans every page under rootPath.
func (s *AuditService) Audit(ctx context.Context, rootPath string, opts AuditOptions) (*domain.AuditReport, error) {
	// 1. Load config
	cfg, err := s.configLoader.Load(rootPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	tier := cfg.EffectiveTier()
	if opts.Tier != "" {
		tier = opts.Tier
	}
	if !tier.Valid() {
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownTier, tier)
	}

	// 2. Walk the site
	scan, err := s.scanner.Scan(rootPath, cfg.EffectiveExtensions(), cfg.ExcludePaths...)
	if err != nil {
		return nil, fmt.Errorf("scanning site: %w", err)
	}
	s.logger.Debug("site scanned",
		zap.String("root", rootPath),
		zap.Int("pages", len(scan.Pages)),
		zap.Int("stylesheets", len(scan.Stylesheets)))

	// 3. Scan pages with a bounded worker pool
	scanSvc := NewScanService(s.catalog, s.logger, WithSkipRules(cfg.SkipRules...))
	results, err := s.scanPages(ctx, scanSvc, rootPath, scan.Pages, tier, cfg, opts.Progress)
	if err != nil {
		return nil, err
	}

	// 4. Site rules over every page that parsed
	var sitePages []rules.Page
	for _, r := range results {
		if r.doc != nil {
			sitePages = append(sitePages, rules.Page{Path: r.report.Path, Doc: r.doc})
		}
	}
	siteIssues := scanSvc.ScanSite(sitePages, tier)

	// 5. Scores
	report := &domain.AuditReport{
		RootPath:   rootPath,
		Tier:       tier,
		SiteIssues: siteIssues,
		Timestamp:  time.Now(),
	}
	var scored []domain.PageReport
	for _, r := range results {
		report.Pages = append(report.Pages, r.report)
		report.Summary.Merge(r.report.Summary)
		if r.report.Error == "" {
			scored = append(scored, r.report)
		}
	}
	report.Summary.Merge(domain.Summarize(siteIssues))
	report.Overall = domain.ComputeOverallScore(scored)

	if s.git != nil && s.git.IsGitRepo(rootPath) {
		if hash, err := s.git.CommitHash(rootPath); err == nil {
			report.CommitHash = hash
		}
	}

	// 6. Baseline diff
	if err := s.applyBaseline(report, cfg.Hash(), opts.UpdateBaseline); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *AuditService) scanPages(
	ctx context.Context,
	scanSvc *ScanService,
	rootPath string,
	pages []string,
	tier domain.ScanTier,
	cfg domain.ProjectConfig,
	progress func(done, total int),
) ([]pageResult, error) {
	results := make([]pageResult, len(pages))
	sem := make(chan struct{}, cfg.EffectiveConcurrency())

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for i, page := range pages {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, page string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i] = s.scanPage(scanSvc, rootPath, page, tier, cfg)

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(pages))
				mu.Unlock()
			}
		}(i, page)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("auditing %s: %w", rootPath, err)
	}
	return results, nil
}

func (s *AuditService) scanPage(scanSvc *ScanService, rootPath, page string, tier domain.ScanTier, cfg domain.ProjectConfig) pageResult {
	res := pageResult{report: domain.PageReport{Path: page}}

	data, err := os.ReadFile(filepath.Join(rootPath, filepath.FromSlash(page)))
	if err != nil {
		res.report.Error = err.Error()
		return res
	}

	var opts []dom.Option
	if s.styles != nil && cfg.ShouldResolveStylesheets() {
		opts = append(opts, dom.WithStylesheetLoader(s.styles.LoaderFor(rootPath, page)))
	}
	doc, err := dom.Parse(string(data), opts...)
	if err != nil {
		s.logger.Warn("page not audited", zap.String("page", page), zap.Error(err))
		res.report.Error = err.Error()
		return res
	}

	issues := scanSvc.ScanDocument(doc, tier)
	for i := range issues {
		issues[i].Page = page
	}
	res.doc = doc
	res.report.Issues = issues
	res.report.Summary = domain.Summarize(issues)
	res.report.Score = domain.PageScore(res.report.Summary)
	return res
}

func (s *AuditService) applyBaseline(report *domain.AuditReport, configHash string, update bool) error {
	if s.baseline == nil {
		return nil
	}
	current := domain.RecordsFor(report.AllIssues())

	prev, err := s.baseline.Load(report.RootPath)
	if err != nil {
		s.logger.Debug("no usable baseline", zap.Error(err))
	} else if prev != nil && !prev.IsInvalidated(report.Tier, configHash) {
		diff := domain.DiffIssues(prev.Records, current)
		report.Diff = &diff
	}

	if !update {
		return nil
	}
	err = s.baseline.Save(&domain.Baseline{
		RootPath:   report.RootPath,
		Tier:       report.Tier,
		ConfigHash: configHash,
		CommitHash: report.CommitHash,
		Records:    current,
	})
	if err != nil {
		return fmt.Errorf("saving baseline: %w", err)
	}
	return nil
}
