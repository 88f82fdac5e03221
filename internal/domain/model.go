package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrUnknownTier     = errors.New("unknown scan tier")
	ErrUnknownSeverity = errors.New("unknown severity")
)

// Severity is the engine-assigned urgency of an issue. Critical is highest.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeveritySerious  Severity = "serious"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// Severities lists every severity from highest to lowest.
var Severities = []Severity{SeverityCritical, SeveritySerious, SeverityModerate, SeverityMinor}

// Rank orders severities: critical=4 down to minor=1, unknown=0.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeveritySerious:
		return 3
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as urgent as threshold or more.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank() && s.Rank() > 0
}

func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Rank() == 0 {
		return "", fmt.Errorf("%w %q (valid: critical, serious, moderate, minor)", ErrUnknownSeverity, s)
	}
	return sev, nil
}

// ScanTier selects the breadth of the rule set for one scan invocation.
type ScanTier string

const (
	TierStandard ScanTier = "standard"
	TierFull     ScanTier = "full"
)

func (t ScanTier) Valid() bool { return t == TierStandard || t == TierFull }

// Includes reports whether a scan at tier t runs rules assigned to tier other.
// Full includes standard, never the reverse.
func (t ScanTier) Includes(other ScanTier) bool {
	switch t {
	case TierFull:
		return other.Valid()
	case TierStandard:
		return other == TierStandard
	default:
		return false
	}
}

// ParseScanTier parses a tier name; the empty string means standard.
func ParseScanTier(s string) (ScanTier, error) {
	t := ScanTier(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TierStandard, nil
	}
	if !t.Valid() {
		return "", fmt.Errorf("%w %q (valid: standard, full)", ErrUnknownTier, s)
	}
	return t, nil
}

// TierForPlan maps a subscription plan to the tier it is entitled to.
func TierForPlan(plan string) ScanTier {
	if strings.EqualFold(plan, "enterprise") {
		return TierFull
	}
	return TierStandard
}

// Principle is the WCAG principle a rule belongs to.
type Principle string

const (
	PrinciplePerceivable    Principle = "perceivable"
	PrincipleOperable       Principle = "operable"
	PrincipleUnderstandable Principle = "understandable"
	PrincipleRobust         Principle = "robust"
)

// Issue is a single accessibility finding. Issues are never mutated after a
// scan returns them.
type Issue struct {
	ID          string   `json:"id"`
	Rule        string   `json:"rule"`
	Type        string   `json:"type"`
	Element     string   `json:"element"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Fix         string   `json:"fix,omitempty"`
	Message     string   `json:"message,omitempty"`
	Selector    string   `json:"selector,omitempty"`
	Impact      Severity `json:"impact,omitempty"`
	Page        string   `json:"page,omitempty"`
}

// HasFix reports whether the issue carries a mechanical replacement.
func (i Issue) HasFix() bool { return i.Fix != "" }

// RuleInfo describes a catalog entry for listing and documentation.
type RuleInfo struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Principle   Principle `json:"principle"`
	Severity    Severity  `json:"severity"`
	Criterion   string    `json:"criterion,omitempty"`
	Tier        ScanTier  `json:"tier"`
	Description string    `json:"description"`
	SiteWide    bool      `json:"site_wide,omitempty"`
}

// Summary counts issues by severity.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Serious  int `json:"serious"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
	Fixable  int `json:"fixable"`
}

func Summarize(issues []Issue) Summary {
	var s Summary
	for _, i := range issues {
		s.Add(i)
	}
	return s
}

func (s *Summary) Add(i Issue) {
	s.Total++
	switch i.Severity {
	case SeverityCritical:
		s.Critical++
	case SeveritySerious:
		s.Serious++
	case SeverityModerate:
		s.Moderate++
	case SeverityMinor:
		s.Minor++
	}
	if i.HasFix() {
		s.Fixable++
	}
}

func (s *Summary) Merge(other Summary) {
	s.Total += other.Total
	s.Critical += other.Critical
	s.Serious += other.Serious
	s.Moderate += other.Moderate
	s.Minor += other.Minor
	s.Fixable += other.Fixable
}

// Count returns the number of issues with exactly the given severity.
func (s Summary) Count(sev Severity) int {
	switch sev {
	case SeverityCritical:
		return s.Critical
	case SeveritySerious:
		return s.Serious
	case SeverityModerate:
		return s.Moderate
	case SeverityMinor:
		return s.Minor
	default:
		return 0
	}
}

// Score deduction per issue, by severity.
const (
	penaltyCritical = 10
	penaltySerious  = 5
	penaltyModerate = 2
	penaltyMinor    = 1
)

// PageScore turns a summary into a 0-100 accessibility score.
func PageScore(s Summary) int {
	deductions := s.Critical*penaltyCritical +
		s.Serious*penaltySerious +
		s.Moderate*penaltyModerate +
		s.Minor*penaltyMinor
	return max(0, 100-deductions)
}

// ComputeOverallScore averages page scores. A site with no pages scores 100.
func ComputeOverallScore(pages []PageReport) int {
	if len(pages) == 0 {
		return 100
	}
	total := 0
	for _, p := range pages {
		total += p.Score
	}
	return int(math.Round(float64(total) / float64(len(pages))))
}

func GradeFor(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

func BadgeColor(score int) string {
	switch {
	case score >= 90:
		return "brightgreen"
	case score >= 80:
		return "green"
	case score >= 70:
		return "yellow"
	case score >= 60:
		return "orange"
	case score >= 50:
		return "red"
	default:
		return "critical"
	}
}

// PageReport holds the scan result for one page of an audited site.
type PageReport struct {
	Path    string  `json:"path"`
	Score   int     `json:"score"`
	Summary Summary `json:"summary"`
	Issues  []Issue `json:"issues"`
	Error   string  `json:"error,omitempty"`
}

// AuditReport is the result of auditing every page under a directory.
type AuditReport struct {
	RootPath   string       `json:"root_path"`
	Tier       ScanTier     `json:"tier"`
	Overall    int          `json:"overall"`
	Summary    Summary      `json:"summary"`
	Pages      []PageReport `json:"pages"`
	SiteIssues []Issue      `json:"site_issues,omitempty"`
	Diff       *IssueDiff   `json:"diff,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	CommitHash string       `json:"commit_hash,omitempty"`
}

func (r AuditReport) Grade() string { return GradeFor(r.Overall) }

// AllIssues returns page issues in page order followed by site issues.
func (r AuditReport) AllIssues() []Issue {
	var all []Issue
	for _, p := range r.Pages {
		for _, i := range p.Issues {
			if i.Page == "" {
				i.Page = p.Path
			}
			all = append(all, i)
		}
	}
	return append(all, r.SiteIssues...)
}

// ScoreEntry is a single point in the audit score history.
type ScoreEntry struct {
	Timestamp  string `json:"timestamp"`
	CommitHash string `json:"commit_hash,omitempty"`
	Overall    int    `json:"overall"`
	Grade      string `json:"grade"`
	Issues     int    `json:"issues"`
	Critical   int    `json:"critical"`
	Serious    int    `json:"serious"`
}

// ExceedsThreshold reports whether any issue is at or above threshold.
func ExceedsThreshold(issues []Issue, threshold Severity) bool {
	if threshold == "" {
		return false
	}
	for _, i := range issues {
		if i.Severity.AtLeast(threshold) {
			return true
		}
	}
	return false
}
