// Package loader turns binary class names into symbols. Symbols are created
// on first reference after a cheap index probe and filled from the class
// descriptor only when something asks for their members or supertypes.
package loader

import (
	"sort"
	"strings"
	"sync"

	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/symbols"
	"jsema/internal/trace"
)

// Options configures a Loader.
type Options struct {
	Index    classfile.Index
	Reporter diag.Reporter
	Tracer   trace.Tracer
	// Retries is the number of extra Find attempts for failures other than
	// classfile.ErrNotFound.
	Retries int
}

// Loader memoises class symbols by binary name and completes them lazily.
// It implements symbols.Finder and installs itself on the table.
type Loader struct {
	table    *symbols.Table
	index    classfile.Index
	reporter diag.Reporter
	tracer   trace.Tracer
	retries  int

	mu       sync.Mutex
	classes  map[string]symbols.SymbolID
	notFound map[string]struct{}
	loaded   int
}

func New(table *symbols.Table, opts Options) *Loader {
	l := &Loader{
		table:    table,
		index:    opts.Index,
		reporter: opts.Reporter,
		tracer:   opts.Tracer,
		retries:  max(opts.Retries, 0),
		classes:  make(map[string]symbols.SymbolID, 256),
		notFound: make(map[string]struct{}),
	}
	if l.index == nil {
		l.index = classfile.NewMapIndex()
	}
	if l.reporter == nil {
		l.reporter = diag.NopReporter{}
	}
	if l.tracer == nil {
		l.tracer = trace.Nop
	}
	table.SetFinder(l)
	return l
}

func (l *Loader) Table() *symbols.Table { return l.table }

// normalize accepts dotted or slashed names.
func normalize(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

func (l *Loader) cached(name string) (symbols.SymbolID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.classes[name]
	return id, ok
}

// ClassSymbol returns the symbol of a binary name. The same name always
// yields the same symbol; names the index cannot locate yield the unknown
// symbol and are remembered for NotFound.
func (l *Loader) ClassSymbol(name string) symbols.SymbolID {
	name = normalize(name)
	if id, ok := l.cached(name); ok {
		return id
	}
	if name == "" || !l.index.Has(name) {
		l.mu.Lock()
		if name != "" {
			l.notFound[name] = struct{}{}
		}
		l.classes[name] = l.table.UnknownSymbol()
		l.mu.Unlock()
		return l.table.UnknownSymbol()
	}

	owner, simple := l.ownerOf(name)

	// the owner chain may have registered name already; recheck before
	// allocating so the arena never holds a second symbol for it
	l.mu.Lock()
	if prev, ok := l.classes[name]; ok && !l.table.IsUnknownSym(prev) {
		l.mu.Unlock()
		return prev
	}
	id := l.table.NewClass(symbols.ClassSpec{Name: simple, BinaryName: name, Owner: owner})
	l.table.SetCompleter(id, symbols.CompleterFunc(func(_ *symbols.Table, sym symbols.SymbolID) {
		l.complete(sym, name)
	}))
	l.classes[name] = id
	l.loaded++
	l.mu.Unlock()

	if ownerSym := l.table.Sym(owner); ownerSym != nil && ownerSym.Package != nil {
		l.table.Enter(ownerSym.Package.Members, id)
	}
	return id
}

// ownerOf splits a binary name into its owner symbol and simple name. For
// nested names the longest existing enclosing class wins; without one the
// whole tail (Foo$Bar) is a member of the package.
func (l *Loader) ownerOf(name string) (symbols.SymbolID, string) {
	pkg, rest := "", name
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		pkg, rest = name[:i], name[i+1:]
	}
	prefix := ""
	if pkg != "" {
		prefix = pkg + "/"
	}
	for i := strings.LastIndexByte(rest, '$'); i > 0; i = strings.LastIndexByte(rest[:i], '$') {
		if i == len(rest)-1 {
			continue
		}
		outer := prefix + rest[:i]
		if l.HasClass(outer) {
			return l.ClassSymbol(outer), rest[i+1:]
		}
	}
	return l.table.Package(pkg), rest
}

// HasClass reports whether a class is registered or present in the index.
func (l *Loader) HasClass(name string) bool {
	name = normalize(name)
	if id, ok := l.cached(name); ok && !l.table.IsUnknownSym(id) {
		return true
	}
	return name != "" && l.index.Has(name)
}

// Register binds a binary name to a source class symbol. Source classes
// shadow the class index.
func (l *Loader) Register(name string, sym symbols.SymbolID) {
	name = normalize(name)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.classes[name] = sym
	delete(l.notFound, name)
}

// HasPackage reports whether name (dotted or slashed) is a known package:
// one that already has a symbol or one the index has classes in.
func (l *Loader) HasPackage(name string) bool {
	if l.table.HasPackage(name) {
		return true
	}
	if p, ok := l.index.(classfile.PackageIndex); ok {
		return p.HasPackage(normalize(name))
	}
	return false
}

// Package returns the memoised package symbol.
func (l *Loader) Package(name string) symbols.SymbolID {
	return l.table.Package(name)
}

// NotFound returns the dotted names that could not be located, sorted.
func (l *Loader) NotFound() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.notFound))
	for n := range l.notFound {
		out = append(out, classfile.InternalToDotted(n))
	}
	sort.Strings(out)
	return out
}

// Loaded returns how many class symbols were created from the index.
func (l *Loader) Loaded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}
