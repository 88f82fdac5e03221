package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/a11ykraft/internal/domain"
)

const historyFile = ".a11ykraft/history/scores.json"

// MaxEntries caps the stored history; the oldest entries are dropped first.
const MaxEntries = 500

// FileHistory implements domain.ScoreHistory using JSON file storage.
type FileHistory struct {
	limit int
}

func New() *FileHistory {
	return &FileHistory{limit: MaxEntries}
}

// NewWithLimit keeps at most limit entries. A limit <= 0 keeps everything.
func NewWithLimit(limit int) *FileHistory {
	return &FileHistory{limit: limit}
}

// Save appends entry to the project's audit score history.
func (h *FileHistory) Save(projectPath string, entry domain.ScoreEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if h.limit > 0 && len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}

	fp := filepath.Join(projectPath, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

// Load returns the stored entries oldest first, or nil when none exist.
func (h *FileHistory) Load(projectPath string) ([]domain.ScoreEntry, error) {
	fp := filepath.Join(projectPath, historyFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.ScoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing score history: %w", err)
	}

	return entries, nil
}

// EntryFor converts an audit report into a history entry.
func EntryFor(report *domain.AuditReport) domain.ScoreEntry {
	return domain.ScoreEntry{
		Timestamp:  report.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		CommitHash: report.CommitHash,
		Overall:    report.Overall,
		Grade:      report.Grade(),
		Issues:     report.Summary.Total,
		Critical:   report.Summary.Critical,
		Serious:    report.Summary.Serious,
	}
}
