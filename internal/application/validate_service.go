package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

// ValidateService checks changed pages against the stored baseline, so an
// editor hook can tell whether a change introduced new issues without
// re-auditing the whole site.
type ValidateService struct {
	catalog      *rules.Catalog
	audit        *AuditService
	configLoader domain.ConfigLoader
	styles       domain.StylesheetSource
	baseline     domain.BaselineStore
	logger       *zap.Logger
}

// NewValidateService creates a new ValidateService with all required dependencies.
func NewValidateService(
	catalog *rules.Catalog,
	audit *AuditService,
	configLoader domain.ConfigLoader,
	styles domain.StylesheetSource,
	baseline domain.BaselineStore,
	logger *zap.Logger,
) *ValidateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidateService{
		catalog: catalog, audit: audit, configLoader: configLoader,
		styles: styles, baseline: baseline, logger: logger,
	}
}

// Validate rescans the changed pages (paths relative to projectPath) and
// compares them with the baseline. A page that no longer exists has all of
// its baseline issues reported fixed. New issues produce "warn", or "fail"
// when strict is set or when one reaches the configured fail_on severity.
func (s *ValidateService) Validate(ctx context.Context, projectPath string, changed []string, strict bool) (*domain.ValidationResult, error) {
	// 1. Load config
	cfg, err := s.configLoader.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	tier := cfg.EffectiveTier()

	// 2. Load the baseline, auditing from scratch when it is missing or stale
	base, err := s.baseline.Load(projectPath)
	if err != nil || base == nil || base.IsInvalidated(tier, cfg.Hash()) {
		s.logger.Debug("rebuilding baseline", zap.String("root", projectPath))
		if _, err := s.audit.Audit(ctx, projectPath, AuditOptions{UpdateBaseline: true}); err != nil {
			return nil, fmt.Errorf("creating baseline: %w", err)
		}
		if base, err = s.baseline.Load(projectPath); err != nil || base == nil {
			return nil, fmt.Errorf("reloading baseline: %w", errors.Join(err, errBaselineMissing))
		}
	}

	// 3. Rescan changed pages
	scanSvc := NewScanService(s.catalog, s.logger, WithSkipRules(cfg.SkipRules...))
	pages := make(map[string]bool, len(changed))
	var current []domain.Issue
	for _, page := range changed {
		page = filepath.ToSlash(page)
		pages[page] = true

		issues, err := s.scanChanged(scanSvc, projectPath, page, tier, cfg)
		if err != nil {
			return nil, err
		}
		current = append(current, issues...)
	}

	// 4. Diff against the baseline records of those pages only. Site rule
	// records need every page and are left for the next audit.
	var previous []domain.IssueRecord
	var untouched []domain.IssueRecord
	for _, r := range base.Records {
		if pages[r.Page] && !s.isSiteRecord(r) {
			previous = append(previous, r)
		} else {
			untouched = append(untouched, r)
		}
	}
	diff := domain.DiffIssues(previous, domain.RecordsFor(current))

	byKey := make(map[string]domain.Issue, len(current))
	for _, i := range current {
		byKey[i.Page+"#"+i.ID] = i
	}
	result := &domain.ValidationResult{
		Status:      domain.ValidationPass,
		FixedIssues: diff.Fixed,
	}
	for _, r := range diff.New {
		issue := byKey[r.Page+"#"+r.ID]
		result.NewIssues = append(result.NewIssues, issue)
		if issue.HasFix() {
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("%s: replace %s with %s", r.Page, issue.Element, issue.Fix))
		}
	}
	for p := range pages {
		result.PagesChecked = append(result.PagesChecked, p)
	}
	sort.Strings(result.PagesChecked)

	// 5. Determine status
	if len(result.NewIssues) > 0 {
		result.Status = domain.ValidationWarn
		if strict || domain.ExceedsThreshold(result.NewIssues, cfg.FailThreshold()) {
			result.Status = domain.ValidationFail
		}
	}

	// 6. Save the updated baseline
	base.Records = append(untouched, domain.RecordsFor(current)...)
	if err := s.baseline.Save(base); err != nil {
		s.logger.Warn("baseline not updated", zap.Error(err))
	}
	return result, nil
}

func (s *ValidateService) isSiteRecord(r domain.IssueRecord) bool {
	for _, sr := range s.catalog.SiteRules() {
		if strings.HasPrefix(r.ID, sr.ID()+"-") {
			return true
		}
	}
	return false
}

var errBaselineMissing = errors.New("baseline missing after audit")

func (s *ValidateService) scanChanged(scanSvc *ScanService, root, page string, tier domain.ScanTier, cfg domain.ProjectConfig) ([]domain.Issue, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(page)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", page, err)
	}

	var opts []dom.Option
	if s.styles != nil && cfg.ShouldResolveStylesheets() {
		opts = append(opts, dom.WithStylesheetLoader(s.styles.LoaderFor(root, page)))
	}
	issues, err := scanSvc.Scan(string(data), tier, opts...)
	if errors.Is(err, dom.ErrEmptyMarkup) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", page, err)
	}
	for i := range issues {
		issues[i].Page = page
	}
	return issues, nil
}
