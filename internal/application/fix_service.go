package application

import (
	"fmt"
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

// maxFixPasses bounds the rescan loop. Fixes of nested elements can hide each
// other within one pass, so a few passes are needed, never an unbounded number.
const maxFixPasses = 5

// FixService applies issue fixes to markup: scan → replace each issue's
// element snapshot with its fix → rescan, until nothing applicable remains.
type FixService struct {
	scan *ScanService
}

func NewFixService(scan *ScanService) *FixService {
	return &FixService{scan: scan}
}

// Fix returns the patched markup in normalized form, the issues whose fixes
// were applied and the issues still present afterwards.
func (s *FixService) Fix(markup string, opts domain.FixOptions) (*domain.FixResult, error) {
	tier := opts.Tier
	if tier == "" {
		tier = domain.TierStandard
	}

	// 1. Normalize so element snapshots match the markup byte for byte
	doc, err := dom.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	current := doc.Render()
	result := &domain.FixResult{}

	// 2. Apply fixes pass by pass
	for pass := 0; pass < maxFixPasses; pass++ {
		issues, err := s.scan.Scan(current, tier)
		if err != nil {
			return nil, fmt.Errorf("scanning pass %d: %w", pass+1, err)
		}

		applied := 0
		for _, issue := range issues {
			if !issue.HasFix() || !opts.Wants(issue.Rule) {
				continue
			}
			if !strings.Contains(current, issue.Element) {
				continue
			}
			current = strings.Replace(current, issue.Element, issue.Fix, 1)
			result.Applied = append(result.Applied, issue)
			applied++
		}
		if applied == 0 {
			break
		}
		result.Passes++
	}

	// 3. Report what is left
	remaining, err := s.scan.Scan(current, tier)
	if err != nil {
		return nil, fmt.Errorf("rescanning fixed markup: %w", err)
	}
	result.Markup = current
	result.Remaining = remaining
	return result, nil
}
