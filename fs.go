package ignoretree

import (
	"path"
	"strings"

	"github.com/spf13/afero"
)

// pathExists reports whether p names any filesystem entry.
func pathExists(fsys afero.Fs, p string) bool {
	_, err := fsys.Stat(p)
	return err == nil
}

// isDir reports whether p names a directory.
func isDir(fsys afero.Fs, p string) bool {
	info, err := fsys.Stat(p)
	return err == nil && info.IsDir()
}

// findBoundaryRoot walks from dir upward and returns the nearest
// directory containing the marker entry. The marker may be a file or a
// directory (worktree-style repository markers are plain files).
func findBoundaryRoot(fsys afero.Fs, dir, marker string) (string, bool) {
	if marker == "" {
		return "", false
	}
	for d := dir; ; {
		if pathExists(fsys, path.Join(d, marker)) {
			return d, true
		}
		parent := path.Dir(d)
		if parent == d {
			return "", false
		}
		d = parent
	}
}

// relativePath returns p relative to base, or ok=false when p is not
// inside base. Containment is segment-aware, not textual: /a/b is not
// an ancestor of /a/bc. Both arguments must be normalized.
func relativePath(base, p string) (string, bool) {
	if p == base {
		return "", true
	}
	prefix := base
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return p[len(prefix):], true
}
