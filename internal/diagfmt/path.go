package diagfmt

import (
	"path/filepath"
	"strings"

	"jsema/internal/source"
)

func displayPath(f *source.File, mode PathMode, base string) string {
	if f == nil {
		return ""
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(f.Path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return f.Path
		}
		rel, err := filepath.Rel(base, f.Path)
		if err != nil || (mode == PathModeAuto && strings.HasPrefix(rel, "..")) {
			return f.Path
		}
		return filepath.ToSlash(rel)
	}
	return f.Path
}
