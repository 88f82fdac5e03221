package gitinfo

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
)

// GitInfoAdapter implements domain.GitInfo using go-git. The audited
// directory may be anywhere inside the work tree.
type GitInfoAdapter struct{}

func New() *GitInfoAdapter {
	return &GitInfoAdapter{}
}

func open(projectPath string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(projectPath, &git.PlainOpenOptions{DetectDotGit: true})
}

func (g *GitInfoAdapter) IsGitRepo(projectPath string) bool {
	_, err := open(projectPath)
	return err == nil
}

// CommitHash returns the full hash of HEAD.
func (g *GitInfoAdapter) CommitHash(projectPath string) (string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String(), nil
}

// ChangedPages lists pages under projectPath that differ from HEAD, are
// staged, or are untracked. Deleted pages are included. Paths are relative
// to projectPath, slash-separated and sorted; only the given extensions count.
func (g *GitInfoAdapter) ChangedPages(projectPath string, extensions []string) ([]string, error) {
	repo, err := open(projectPath)
	if err != nil {
		return nil, fmt.Errorf("opening git repo: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading worktree status: %w", err)
	}

	root, err := resolve(projectPath)
	if err != nil {
		return nil, err
	}
	treeRoot, err := resolve(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}

	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	var pages []string
	for file, st := range status {
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		if !exts[strings.ToLower(filepath.Ext(file))] {
			continue
		}
		rel, err := filepath.Rel(root, filepath.Join(treeRoot, filepath.FromSlash(file)))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		pages = append(pages, filepath.ToSlash(rel))
	}
	sort.Strings(pages)
	return pages, nil
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
