package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir reads assets from a directory laid out like the embedded tree.
type Dir struct {
	root string
}

// OpenDir checks that root is a readable directory. Symlinks in root are
// resolved once so containment checks compare real paths.
func OpenDir(root string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidDir)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDir, abs, err)
	}
	return &Dir{root: abs}, nil
}

func (d *Dir) Read(kind Kind, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	path := filepath.Join(d.root, filepath.FromSlash(kind.file(name)))
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if !strings.HasPrefix(path, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideDir, name)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- name checked and path contained in root
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q in %s", kind.NotFound, name, d.root)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	return string(data), nil
}

var _ Source = (*Dir)(nil)
