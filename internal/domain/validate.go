package domain

// Validation statuses.
const (
	ValidationPass = "pass"
	ValidationWarn = "warn"
	ValidationFail = "fail"
)

// ValidationResult reports drift of changed pages against the baseline.
type ValidationResult struct {
	Status       string        `json:"status"`
	PagesChecked []string      `json:"pages_checked"`
	NewIssues    []Issue       `json:"new_issues"`
	FixedIssues  []IssueRecord `json:"fixed_issues"`
	Suggestions  []string      `json:"suggestions"`
}
