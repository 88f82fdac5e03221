package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the tree must stay quiet before a re-run.
const DefaultDebounce = 300 * time.Millisecond

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".a11ykraft":   true,
	"vendor":       true,
}

// Watcher reports batches of changed files under a directory tree.
type Watcher struct {
	debounce time.Duration
	logger   *zap.Logger
}

func New(debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{debounce: debounce, logger: logger}
}

// Run watches root until ctx is done. After each burst of changes settles,
// onChange receives the changed paths, relative to root, slash-separated
// and sorted. Calls to onChange never overlap. An onChange error stops Run.
func (w *Watcher) Run(ctx context.Context, root string, onChange func(changed []string) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()

	if err := addRecursive(fw, root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			rel, skip := relative(root, ev.Name)
			if skip {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(fw, ev.Name); err != nil {
						w.logger.Warn("new directory not watched", zap.String("dir", rel), zap.Error(err))
					}
				}
			}
			pending[rel] = true
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			if err := onChange(changed); err != nil {
				return err
			}
		}
	}
}

// relative maps an event path to a root-relative slash path and reports
// whether it lies in a skipped directory.
func relative(root, name string) (string, bool) {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return "", true
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if skipDirs[part] {
			return rel, true
		}
	}
	return rel, false
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDirs[d.Name()] {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
