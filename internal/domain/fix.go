package domain

// FixResult is the outcome of applying mechanical fixes to a page.
type FixResult struct {
	Markup    string  `json:"markup"`
	Applied   []Issue `json:"applied"`
	Remaining []Issue `json:"remaining"`
	Passes    int     `json:"passes"`
}

// FixOptions controls which fixes are applied.
type FixOptions struct {
	Tier  ScanTier `json:"tier"`
	Rules []string `json:"rules,omitempty"`
}

// Wants reports whether the options select fixes from the given rule.
func (o FixOptions) Wants(rule string) bool {
	if len(o.Rules) == 0 {
		return true
	}
	for _, r := range o.Rules {
		if r == rule {
			return true
		}
	}
	return false
}
