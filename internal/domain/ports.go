package domain

import "github.com/openkraft/a11ykraft/internal/domain/dom"

// PageScanner walks a site directory and returns the pages to audit.
type PageScanner interface {
	Scan(rootPath string, extensions []string, excludePaths ...string) (*SiteScan, error)
}

// SiteScan holds the result of walking a site directory.
type SiteScan struct {
	RootPath    string   `json:"root_path"`
	Pages       []string `json:"pages"`
	Stylesheets []string `json:"stylesheets"`
	HasConfig   bool     `json:"has_config"`
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// StylesheetSource returns a loader for stylesheets linked from a page.
type StylesheetSource interface {
	LoaderFor(rootPath, page string) dom.StylesheetLoader
}

// BaselineStore persists the open issues of the last audit.
type BaselineStore interface {
	Load(projectPath string) (*Baseline, error)
	Save(baseline *Baseline) error
	Invalidate(projectPath string) error
}

// ScoreHistory persists audit scores over time.
type ScoreHistory interface {
	Save(projectPath string, entry ScoreEntry) error
	Load(projectPath string) ([]ScoreEntry, error)
}

// GitInfo reads repository metadata for the audited tree.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}
