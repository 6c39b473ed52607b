package classfile

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// JarIndex serves classes from a jar (zip) archive. The entry table is read
// once on open; class bodies are read on demand.
type JarIndex struct {
	mu       sync.Mutex
	path     string
	zr       *zip.ReadCloser
	entries  map[string]*zip.File
	packages map[string]struct{}
}

func OpenJar(path string) (*JarIndex, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open jar %s: %w", path, err)
	}
	j := &JarIndex{
		path:     path,
		zr:       zr,
		entries:  make(map[string]*zip.File, len(zr.File)),
		packages: make(map[string]struct{}),
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".class") || strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}
		name := strings.TrimSuffix(f.Name, ".class")
		j.entries[name] = f
		for pkg := packageOf(name); pkg != ""; pkg = packageOf(pkg) {
			j.packages[pkg] = struct{}{}
		}
	}
	return j, nil
}

func (j *JarIndex) Close() error {
	return j.zr.Close()
}

func (j *JarIndex) Has(name string) bool {
	_, ok := j.entries[name]
	return ok
}

func (j *JarIndex) Find(name string) (*Class, error) {
	f, ok := j.entries[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	j.mu.Lock()
	data, err := readZipEntry(f)
	j.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%s!%s: %w", j.path, f.Name, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s!%s: %w", j.path, f.Name, err)
	}
	return c, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (j *JarIndex) HasPackage(pkg string) bool {
	_, ok := j.packages[pkg]
	return ok
}

func (j *JarIndex) Names() []string {
	out := make([]string, 0, len(j.entries))
	for n := range j.entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
