package stylesheet

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

// MaxSize is the largest stylesheet read from disk.
const MaxSize = 2 << 20

var (
	ErrRemote      = errors.New("remote stylesheets are not fetched")
	ErrOutsideRoot = errors.New("stylesheet outside the audited directory")
	ErrTooLarge    = errors.New("stylesheet too large")
)

// Source implements domain.StylesheetSource for sites on the local disk.
// Only files inside the audited root are read; nothing goes over the network.
type Source struct{}

func New() *Source { return &Source{} }

// LoaderFor returns a loader resolving hrefs the way a browser would for
// page, with rootPath standing in for the server root.
func (s *Source) LoaderFor(rootPath, page string) dom.StylesheetLoader {
	return &fileLoader{root: rootPath, pageDir: path.Dir(filepath.ToSlash(page))}
}

type fileLoader struct {
	root    string
	pageDir string
}

func (l *fileLoader) Load(href string) (string, error) {
	rel, err := l.resolve(href)
	if err != nil {
		return "", err
	}

	full := filepath.Join(l.root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", href, err)
	}
	if info.Size() > MaxSize {
		return "", fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, href, info.Size())
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", href, err)
	}
	return string(data), nil
}

// resolve maps href to a slash path relative to the root.
func (l *fileLoader) resolve(href string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid stylesheet href %q: %w", href, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return "", fmt.Errorf("%w: %s", ErrRemote, href)
	}
	if u.Path == "" {
		return "", fmt.Errorf("invalid stylesheet href %q", href)
	}

	var p string
	if strings.HasPrefix(u.Path, "/") {
		p = path.Clean(strings.TrimPrefix(u.Path, "/"))
	} else {
		p = path.Clean(path.Join(l.pageDir, u.Path))
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, href)
	}
	return p, nil
}
