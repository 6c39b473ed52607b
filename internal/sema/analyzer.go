// Package sema enters source declarations into the symbol table and binds
// every expression and identifier of a compilation unit to its type and
// symbol.
//
// A unit goes through three passes driven by the caller: Declare creates
// class symbols and installs lazy completers for headers and members,
// CheckHierarchy completes the unit's classes and rejects cyclic
// hierarchies, and Resolve walks every body. Classes of other units are
// completed on demand, so all units of a run should be declared before any
// of them is checked.
package sema

import (
	"errors"
	"fmt"

	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/generics"
	"jsema/internal/loader"
	"jsema/internal/lub"
	"jsema/internal/resolve"
	"jsema/internal/source"
	"jsema/internal/symbols"
	"jsema/internal/trace"
)

// Options configure an Analyzer.
type Options struct {
	Reporter diag.Reporter
	Tracer   trace.Tracer
}

// Analyzer runs the semantic passes over the units of one analysis run.
// All units share the loader's table; an Analyzer is used from a single
// goroutine.
type Analyzer struct {
	t        *symbols.Table
	loader   *loader.Loader
	lub      *lub.Solver
	gen      *generics.Engine
	r        *resolve.Resolver
	quiet    *resolve.Resolver // probes whose failures are not reported
	reporter diag.Reporter
	tracer   trace.Tracer

	decls map[symbols.SymbolID]*classDecl
	anon  map[symbols.SymbolID]int // anonymous/local class counters per top-level class

	folding map[symbols.SymbolID]bool
}

// New creates an analyzer over l's table.
func New(l *loader.Loader, opts Options) *Analyzer {
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	t := l.Table()
	solver := lub.New(t)
	gen := generics.New(t, solver)
	return &Analyzer{
		t:        t,
		loader:   l,
		lub:      solver,
		gen:      gen,
		r:        resolve.New(l, gen, resolve.Options{Reporter: opts.Reporter, Tracer: opts.Tracer}),
		quiet:    resolve.New(l, gen, resolve.Options{Reporter: diag.NopReporter{}, Tracer: opts.Tracer}),
		reporter: opts.Reporter,
		tracer:   opts.Tracer,
		decls:    make(map[symbols.SymbolID]*classDecl),
		anon:     make(map[symbols.SymbolID]int),
		folding:  make(map[symbols.SymbolID]bool),
	}
}

func (a *Analyzer) Table() *symbols.Table        { return a.t }
func (a *Analyzer) Resolver() *resolve.Resolver  { return a.r }
func (a *Analyzer) Generics() *generics.Engine   { return a.gen }
func (a *Analyzer) LUB() *lub.Solver             { return a.lub }
func (a *Analyzer) Loader() *loader.Loader       { return a.loader }
func (a *Analyzer) Reporter() diag.Reporter      { return a.reporter }
func (a *Analyzer) unknownType() symbols.TypeID  { return a.t.UnknownType() }
func (a *Analyzer) unknownSym() symbols.SymbolID { return a.t.UnknownSymbol() }

// Analyze runs all three passes over a single unit. Runs over several
// units go through the driver, which declares every unit first.
func (a *Analyzer) Analyze(file *source.File, tree *ast.Tree) (*Unit, error) {
	u := a.Declare(file, tree)
	if err := a.CheckHierarchy(u); err != nil {
		return u, err
	}
	return u, a.Resolve(u)
}

// CheckHierarchy completes every class declared by u and verifies that no
// class extends itself. A cycle is fatal for the unit: it keeps state
// FirstPassDone and Resolve refuses it.
func (a *Analyzer) CheckHierarchy(u *Unit) (err error) {
	if u.State != FirstPassDone {
		return fmt.Errorf("check hierarchy of %s: unit is %s", u.path(), u.State)
	}
	span := trace.Begin(a.tracer, trace.ScopeUnit, "hierarchy", 0).WithExtra("file", u.path())
	defer func() { span.End("") }()
	defer a.recoverFatal(u, &err)

	u.enterImports(a)
	for _, cls := range u.classes {
		a.t.Complete(cls)
		a.r.CheckHierarchy(cls)
	}
	return nil
}

// Resolve binds every expression and identifier of u. A cyclic hierarchy
// hit during the walk aborts the unit.
func (a *Analyzer) Resolve(u *Unit) (err error) {
	if u.Err != nil {
		return u.Err
	}
	if u.State != FirstPassDone {
		return fmt.Errorf("resolve %s: unit is %s", u.path(), u.State)
	}
	span := trace.Begin(a.tracer, trace.ScopeUnit, "resolve", 0).WithExtra("file", u.path())
	defer func() { span.End("") }()
	defer a.recoverFatal(u, &err)

	u.enterImports(a)
	at := &attr{a: a, u: u, t: a.t, r: a.r, tree: u.Tree}
	root := u.Tree.Unit(u.Tree.Root)
	if root != nil {
		for _, id := range root.Types {
			if cls := u.syms[id]; cls.IsValid() {
				at.classBody(a.bodyEnv(cls), cls, id)
			}
		}
	}
	u.State = TypesResolved
	return nil
}

// recoverFatal turns a cyclic hierarchy panic into the unit's fatal error
// and reports it. Other panics propagate.
func (a *Analyzer) recoverFatal(u *Unit, err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	recErr, ok := rec.(error)
	var cyc *resolve.CyclicHierarchyError
	if !ok || !errors.As(recErr, &cyc) {
		panic(rec)
	}
	u.Err = cyc
	*err = cyc
	trace.Point(a.tracer, trace.ScopeUnit, "fatal", cyc.Error(), 0)
	sp := source.Span{File: u.fileID()}
	if root := u.Tree.Unit(u.Tree.Root); root != nil && len(root.Types) > 0 {
		sp = u.Tree.Span(root.Types[0])
	}
	for _, cls := range u.classes {
		if a.t.FullyQualifiedName(cls) == cyc.Name {
			sp = a.t.MustSym(cls).Span
		}
	}
	diag.ReportError(a.reporter, diag.ResCyclicHierarchy, sp, cyc.Error()).Emit()
}
