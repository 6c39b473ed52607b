// Package generics applies, composes and solves type-variable
// substitutions.
package generics

import (
	"jsema/internal/lub"
	"jsema/internal/symbols"
)

// MaxDepth bounds every recursive walk over type structure.
const MaxDepth = 32

// Engine is the substitution engine of one table. New installs it as the
// table's Substituter so supertypes of parameterized types are
// instantiated.
type Engine struct {
	t   *symbols.Table
	lub *lub.Solver
}

func New(t *symbols.Table, solver *lub.Solver) *Engine {
	if solver == nil {
		solver = lub.New(t)
	}
	e := &Engine{t: t, lub: solver}
	t.SetSubstituter(e)
	return e
}

// Apply replaces the type variables bound by s inside typ.
func (e *Engine) Apply(typ symbols.TypeID, s symbols.SubstID) symbols.TypeID {
	if s == symbols.EmptySubst {
		return typ
	}
	return e.apply(typ, s, 0)
}

// ApplyTo applies s to every formal. The input slice is returned as is
// when no element changes.
func (e *Engine) ApplyTo(formals []symbols.TypeID, s symbols.SubstID) []symbols.TypeID {
	if s == symbols.EmptySubst {
		return formals
	}
	var out []symbols.TypeID
	for i, f := range formals {
		nf := e.apply(f, s, 0)
		if nf != f && out == nil {
			out = make([]symbols.TypeID, len(formals))
			copy(out, formals[:i])
		}
		if out != nil {
			out[i] = nf
		}
	}
	if out == nil {
		return formals
	}
	return out
}

func (e *Engine) apply(typ symbols.TypeID, s symbols.SubstID, depth int) symbols.TypeID {
	t := e.t
	ty, ok := t.Type(typ)
	if !ok || depth > MaxDepth {
		return typ
	}
	switch ty.Kind {
	case symbols.TyTypeVar:
		if bound, ok := t.SubstLookup(s, typ); ok {
			return bound
		}
	case symbols.TyArray:
		if elem := e.apply(ty.Elem, s, depth+1); elem != ty.Elem {
			return t.ArrayOf(elem)
		}
	case symbols.TyWildcard:
		if ty.Bound == symbols.BoundUnbounded {
			return typ
		}
		if bound := e.apply(ty.Elem, s, depth+1); bound != ty.Elem {
			return t.Wildcard(ty.Bound, bound)
		}
	case symbols.TyParameterized:
		pairs := t.Subst(ty.Subst)
		var changed []symbols.Pair
		for i, p := range pairs {
			np := e.apply(p.Type, s, depth+1)
			if np != p.Type && changed == nil {
				changed = make([]symbols.Pair, len(pairs))
				copy(changed, pairs)
			}
			if changed != nil {
				changed[i].Type = np
			}
		}
		if changed != nil {
			return t.Parameterized(ty.Sym, t.InternSubst(changed))
		}
	case symbols.TyMethod:
		params := e.applyList(ty.Params, s, depth)
		result := e.apply(ty.Result, s, depth+1)
		thrown := e.applyList(ty.Thrown, s, depth)
		if result != ty.Result || !sameSlice(params, ty.Params) || !sameSlice(thrown, ty.Thrown) {
			return t.MethodType(params, result, thrown)
		}
	case symbols.TyUnion:
		if alts := e.applyList(ty.Alts, s, depth); !sameSlice(alts, ty.Alts) {
			return t.Union(alts)
		}
	}
	return typ
}

func (e *Engine) applyList(ts []symbols.TypeID, s symbols.SubstID, depth int) []symbols.TypeID {
	var out []symbols.TypeID
	for i, x := range ts {
		nx := e.apply(x, s, depth+1)
		if nx != x && out == nil {
			out = make([]symbols.TypeID, len(ts))
			copy(out, ts[:i])
		}
		if out != nil {
			out[i] = nx
		}
	}
	if out == nil {
		return ts
	}
	return out
}

func sameSlice(a, b []symbols.TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// Combine returns the substitution equivalent to applying applyFirst and
// then s. applyFirst's variables come first, then those only s binds.
func (e *Engine) Combine(s, applyFirst symbols.SubstID) symbols.SubstID {
	switch {
	case applyFirst == symbols.EmptySubst:
		return s
	case s == symbols.EmptySubst:
		return applyFirst
	}
	first := e.t.Subst(applyFirst)
	out := make([]symbols.Pair, 0, len(first)+len(e.t.Subst(s)))
	bound := make(map[symbols.TypeID]struct{}, len(first))
	for _, p := range first {
		out = append(out, symbols.Pair{Var: p.Var, Type: e.apply(p.Type, s, 0)})
		bound[p.Var] = struct{}{}
	}
	for _, p := range e.t.Subst(s) {
		if _, ok := bound[p.Var]; !ok {
			out = append(out, p)
		}
	}
	return e.t.InternSubst(out)
}

// AsMemberOf returns the type of member as seen from site: the declared
// type with the owner's type variables bound by the matching supertype of
// site, erased when site reaches the owner raw.
func (e *Engine) AsMemberOf(site symbols.TypeID, member symbols.SymbolID) symbols.TypeID {
	t := e.t
	declared := t.SymType(member)
	owner := t.EnclosingClass(t.MustSym(member).Owner)
	if !owner.IsValid() || len(t.TypeParams(owner)) == 0 {
		return declared
	}
	as := t.AsSuper(site, owner)
	if !as.IsValid() {
		return declared
	}
	if t.IsRaw(as) {
		if t.MustSym(member).Flags.IsStatic() {
			return declared
		}
		return t.Erasure(declared)
	}
	return e.Apply(declared, t.SubstFor(as))
}
