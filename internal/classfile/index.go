package classfile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound reports that an index has no class of the requested name.
// Loaders do not retry it.
var ErrNotFound = errors.New("class not found")

// Index is the class-lookup contract the loader consumes. Names are binary
// names with '/' separators.
type Index interface {
	Has(name string) bool
	Find(name string) (*Class, error)
}

// PackageIndex is implemented by indexes that can tell whether a package has
// at least one class; qualified-name resolution uses it to tell packages from
// missing types.
type PackageIndex interface {
	HasPackage(pkg string) bool
}

// Lister is implemented by indexes that can enumerate their classes.
type Lister interface {
	Names() []string
}

func packageOf(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return ""
}

// MapIndex is an in-memory index; tests and the boot stubs use it.
type MapIndex struct {
	mu       sync.RWMutex
	classes  map[string]*Class
	packages map[string]struct{}
}

func NewMapIndex(classes ...*Class) *MapIndex {
	m := &MapIndex{classes: make(map[string]*Class, len(classes)), packages: make(map[string]struct{})}
	for _, c := range classes {
		m.Put(c)
	}
	return m
}

// Put adds or replaces a class.
func (m *MapIndex) Put(c *Class) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[c.Name] = c
	for pkg := packageOf(c.Name); pkg != ""; pkg = packageOf(pkg) {
		m.packages[pkg] = struct{}{}
	}
}

func (m *MapIndex) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.classes[name]
	return ok
}

func (m *MapIndex) Find(name string) (*Class, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.classes[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func (m *MapIndex) HasPackage(pkg string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.packages[pkg]
	return ok
}

func (m *MapIndex) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.classes))
	for n := range m.classes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ChainIndex consults its members in order; the first one that has a class
// wins. This is how a classpath shadows the boot stubs.
type ChainIndex []Index

func (c ChainIndex) Has(name string) bool {
	for _, idx := range c {
		if idx.Has(name) {
			return true
		}
	}
	return false
}

func (c ChainIndex) Find(name string) (*Class, error) {
	for _, idx := range c {
		if idx.Has(name) {
			return idx.Find(name)
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

func (c ChainIndex) HasPackage(pkg string) bool {
	for _, idx := range c {
		if p, ok := idx.(PackageIndex); ok && p.HasPackage(pkg) {
			return true
		}
	}
	return false
}

func (c ChainIndex) Names() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, idx := range c {
		l, ok := idx.(Lister)
		if !ok {
			continue
		}
		for _, n := range l.Names() {
			if _, dup := seen[n]; !dup {
				seen[n] = struct{}{}
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}
