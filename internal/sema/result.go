package sema

import (
	"jsema/internal/ast"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

// Result answers queries about one analysed unit: symbols by name or
// declaration line, the reference under a position, node types and
// bindings.
type Result struct {
	t *symbols.Table
	u *Unit
}

// Result returns the query facade over u.
func (a *Analyzer) Result(u *Unit) *Result {
	return &Result{t: a.t, u: u}
}

func (r *Result) Unit() *Unit { return r.u }

// Symbol returns the first symbol named name declared by the unit, in
// declaration order.
func (r *Result) Symbol(name string) (symbols.SymbolID, bool) {
	for _, sym := range r.u.declared {
		if r.t.MustSym(sym).Name == name {
			return sym, true
		}
	}
	return symbols.NoSymbolID, false
}

// SymbolAt returns the symbol named name whose declaration starts on the
// 1-based line.
func (r *Result) SymbolAt(name string, line uint32) (symbols.SymbolID, bool) {
	if r.u.File == nil {
		return symbols.NoSymbolID, false
	}
	for _, sym := range r.u.declared {
		s := r.t.MustSym(sym)
		if s.Name != name || s.Span.File != r.u.File.ID {
			continue
		}
		if r.u.File.Position(s.Span.Start).Line == line {
			return sym, true
		}
	}
	return symbols.NoSymbolID, false
}

// ReferenceAt returns the innermost reference covering the 1-based
// position. A later reference wins over an earlier one with the same span.
func (r *Result) ReferenceAt(line, col uint32) (Reference, bool) {
	if r.u.File == nil {
		return Reference{}, false
	}
	off, ok := r.u.File.Offset(source.LineCol{Line: line, Col: col})
	if !ok {
		return Reference{}, false
	}
	var best Reference
	found := false
	for _, ref := range r.u.refs {
		if ref.Span.File != r.u.File.ID || !ref.Span.Contains(off) {
			continue
		}
		if !found || ref.Span.Len() <= best.Span.Len() {
			best, found = ref, true
		}
	}
	return best, found
}

// References returns every reference of the unit in walk order.
func (r *Result) References() []Reference {
	return append([]Reference(nil), r.u.refs...)
}

// TypeOf returns the type computed for an expression or type node.
func (r *Result) TypeOf(node ast.NodeID) (symbols.TypeID, bool) {
	t, ok := r.u.types[node]
	return t, ok
}

// SymbolOf returns the symbol a name, declaration or call node is bound to.
func (r *Result) SymbolOf(node ast.NodeID) (symbols.SymbolID, bool) {
	s, ok := r.u.syms[node]
	return s, ok
}

// DeclaredSymbols lists every symbol the unit declared, locals included.
func (r *Result) DeclaredSymbols() []symbols.SymbolID {
	return append([]symbols.SymbolID(nil), r.u.declared...)
}
