// Package resolve implements name lookup, access rules and overload
// resolution over a symbols.Table. Lookups never fail with an error: names
// that cannot be resolved yield the table's unknown symbol.
package resolve

import (
	"fmt"

	"jsema/internal/diag"
	"jsema/internal/generics"
	"jsema/internal/loader"
	"jsema/internal/symbols"
	"jsema/internal/trace"
)

// CyclicHierarchyError is raised (as a panic value) when a class
// transitively extends itself. The analyzer recovers it at the unit
// boundary and aborts only that unit.
type CyclicHierarchyError struct {
	Name string
}

func (e *CyclicHierarchyError) Error() string {
	return fmt.Sprintf("cycling class hierarchy detected: %s", e.Name)
}

// Options configure a Resolver.
type Options struct {
	Reporter diag.Reporter
	Tracer   trace.Tracer
}

// Resolver answers lookups for one analysis run.
type Resolver struct {
	t        *symbols.Table
	loader   *loader.Loader
	gen      *generics.Engine
	reporter diag.Reporter
	tracer   trace.Tracer
}

func New(l *loader.Loader, gen *generics.Engine, opts Options) *Resolver {
	r := &Resolver{
		t:        l.Table(),
		loader:   l,
		gen:      gen,
		reporter: opts.Reporter,
		tracer:   opts.Tracer,
	}
	if r.reporter == nil {
		r.reporter = diag.NopReporter{}
	}
	if r.tracer == nil {
		r.tracer = trace.Nop
	}
	if r.gen == nil {
		r.gen = generics.New(r.t, nil)
	}
	return r
}

func (r *Resolver) Table() *symbols.Table      { return r.t }
func (r *Resolver) Loader() *loader.Loader     { return r.loader }
func (r *Resolver) Generics() *generics.Engine { return r.gen }

func (r *Resolver) unknown() symbols.SymbolID { return r.t.UnknownSymbol() }

// KindMask restricts identifier lookup to symbol kinds.
type KindMask uint8

const (
	KindVar KindMask = 1 << iota
	KindType
	KindPackage
	KindMethod

	KindAny = KindVar | KindType | KindPackage | KindMethod
)

func (m KindMask) allows(kind symbols.SymbolKind) bool {
	switch kind {
	case symbols.SymVariable:
		return m&KindVar != 0
	case symbols.SymType, symbols.SymTypeVar:
		return m&KindType != 0
	case symbols.SymPackage:
		return m&KindPackage != 0
	case symbols.SymMethod:
		return m&KindMethod != 0
	}
	return false
}
