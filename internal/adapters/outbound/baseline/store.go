package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/a11ykraft/internal/domain"
)

// Store is a file-based implementation of domain.BaselineStore.
type Store struct{}

// New creates a new file-based baseline store.
func New() *Store {
	return &Store{}
}

// Load reads a project baseline from disk. Returns (nil, nil) if none exists.
func (s *Store) Load(projectPath string) (*domain.Baseline, error) {
	data, err := os.ReadFile(baselinePath(projectPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var b domain.Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing baseline: %w", err)
	}
	return &b, nil
}

// Save writes a baseline to disk under its RootPath, creating directories
// as needed. The file is replaced atomically.
func (s *Store) Save(b *domain.Baseline) error {
	dir := baselineDir(b.RootPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "baseline-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), baselinePath(b.RootPath))
}

// Invalidate removes the baseline file for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(baselinePath(projectPath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func baselineDir(projectPath string) string {
	return filepath.Join(projectPath, ".a11ykraft")
}

func baselinePath(projectPath string) string {
	return filepath.Join(baselineDir(projectPath), "baseline.json")
}
