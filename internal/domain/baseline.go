package domain

import "sort"

// IssueStatus tracks an issue across audits.
type IssueStatus string

const (
	StatusOpen  IssueStatus = "open"
	StatusFixed IssueStatus = "fixed"
)

// Baseline is the persisted set of open issues from the last audit.
type Baseline struct {
	RootPath   string        `json:"root_path"`
	Tier       ScanTier      `json:"tier"`
	ConfigHash string        `json:"config_hash"`
	CommitHash string        `json:"commit_hash,omitempty"`
	Records    []IssueRecord `json:"records"`
}

// IsInvalidated reports whether the baseline was produced under a different
// tier or configuration and can no longer be compared id-for-id.
func (b *Baseline) IsInvalidated(tier ScanTier, configHash string) bool {
	return b.Tier != tier || b.ConfigHash != configHash
}

// IssueRecord is the storage form of an issue, keyed by page and id.
type IssueRecord struct {
	Page     string      `json:"page"`
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Severity Severity    `json:"severity"`
	Status   IssueStatus `json:"status"`
}

func (r IssueRecord) key() string { return r.Page + "#" + r.ID }

// RecordsFor converts issues to open records.
func RecordsFor(issues []Issue) []IssueRecord {
	records := make([]IssueRecord, 0, len(issues))
	for _, i := range issues {
		records = append(records, IssueRecord{
			Page:     i.Page,
			ID:       i.ID,
			Type:     i.Type,
			Severity: i.Severity,
			Status:   StatusOpen,
		})
	}
	return records
}

// IssueDiff classifies the current issues against a previous baseline.
type IssueDiff struct {
	New   []IssueRecord `json:"new"`
	Open  []IssueRecord `json:"open"`
	Fixed []IssueRecord `json:"fixed"`
}

// DiffIssues compares two record sets by (page, id). Records present only in
// previous are reported fixed; only in current, new; in both, still open.
func DiffIssues(previous, current []IssueRecord) IssueDiff {
	prev := make(map[string]IssueRecord, len(previous))
	for _, r := range previous {
		prev[r.key()] = r
	}
	seen := make(map[string]bool, len(current))

	diff := IssueDiff{}
	for _, r := range current {
		seen[r.key()] = true
		r.Status = StatusOpen
		if _, ok := prev[r.key()]; ok {
			diff.Open = append(diff.Open, r)
		} else {
			diff.New = append(diff.New, r)
		}
	}
	for _, r := range previous {
		if seen[r.key()] {
			continue
		}
		r.Status = StatusFixed
		diff.Fixed = append(diff.Fixed, r)
	}
	sort.SliceStable(diff.Fixed, func(i, j int) bool { return diff.Fixed[i].key() < diff.Fixed[j].key() })
	return diff
}
