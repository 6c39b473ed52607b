package classfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirIndex serves .class files from a directory tree laid out by package.
type DirIndex struct {
	root string
}

func NewDirIndex(root string) (*DirIndex, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("classpath entry %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("classpath entry %s: not a directory", root)
	}
	return &DirIndex{root: root}, nil
}

func (d *DirIndex) path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name)+".class")
}

func (d *DirIndex) Has(name string) bool {
	info, err := os.Stat(d.path(name))
	return err == nil && !info.IsDir()
}

func (d *DirIndex) Find(name string) (*Class, error) {
	data, err := os.ReadFile(d.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.path(name), err)
	}
	return c, nil
}

func (d *DirIndex) HasPackage(pkg string) bool {
	info, err := os.Stat(filepath.Join(d.root, filepath.FromSlash(pkg)))
	return err == nil && info.IsDir()
}

func (d *DirIndex) Names() []string {
	var out []string
	_ = filepath.WalkDir(d.root, func(p string, e fs.DirEntry, err error) error {
		if err != nil || e.IsDir() || !strings.HasSuffix(p, ".class") {
			return nil
		}
		rel, relErr := filepath.Rel(d.root, p)
		if relErr == nil {
			out = append(out, filepath.ToSlash(strings.TrimSuffix(rel, ".class")))
		}
		return nil
	})
	sort.Strings(out)
	return out
}
