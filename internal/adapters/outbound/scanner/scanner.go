package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain"
)

const configFile = ".a11ykraft.yaml"

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".a11ykraft":   true,
	"vendor":       true,
}

// FileScanner implements domain.PageScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan lists pages with one of the given extensions and every .css file
// under rootPath. Paths are relative, slash-separated and in lexical order.
func (s *FileScanner) Scan(rootPath string, extensions []string, excludePaths ...string) (*domain.SiteScan, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.TrimSuffix(filepath.ToSlash(p), "/")] = true
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	result := &domain.SiteScan{RootPath: absPath}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(absPath, path)
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path == absPath {
				return nil
			}
			if skipDirs[d.Name()] || extraSkip[d.Name()] || extraSkip[relPath] {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		switch {
		case relPath == configFile:
			result.HasConfig = true
		case exts[ext]:
			result.Pages = append(result.Pages, relPath)
		case ext == ".css":
			result.Stylesheets = append(result.Stylesheets, relPath)
		}
		return nil
	})

	return result, err
}
