package generics

import (
	"jsema/internal/symbols"
)

// bindings collects candidate types per type variable in first-seen order.
type bindings struct {
	vars  map[symbols.TypeID]int // variables being solved
	found map[symbols.TypeID][]symbols.TypeID
}

func newBindings(vars []symbols.TypeID) *bindings {
	b := &bindings{vars: make(map[symbols.TypeID]int, len(vars)), found: make(map[symbols.TypeID][]symbols.TypeID)}
	for i, v := range vars {
		b.vars[v] = i
	}
	return b
}

func (b *bindings) add(v, t symbols.TypeID) {
	for _, seen := range b.found[v] {
		if seen == t {
			return
		}
	}
	b.found[v] = append(b.found[v], t)
}

// SubstitutionFromSuperType binds the type variables of sub's class so that
// its supertype with super's class matches super's type arguments. This is
// how `List<String> l = new ArrayList<>()` infers E. Variables the walk does
// not pin map to themselves.
func (e *Engine) SubstitutionFromSuperType(sub, super symbols.TypeID) symbols.SubstID {
	t := e.t
	subSym := t.TypeSym(sub)
	params := t.TypeParams(subSym)
	if len(params) == 0 {
		return symbols.EmptySubst
	}
	vars := make([]symbols.TypeID, len(params))
	for i, p := range params {
		vars[i] = t.MustSym(p).Type
	}
	b := newBindings(vars)
	if t.Kind(super) == symbols.TyParameterized {
		as := t.AsSuper(t.ThisType(subSym), t.TypeSym(super))
		if as.IsValid() && t.Kind(as) == symbols.TyParameterized {
			formal, actual := t.TypeArgs(as), t.TypeArgs(super)
			for i := range formal {
				if i < len(actual) {
					e.unify(formal[i], e.argUpper(actual[i]), b, 0)
				}
			}
		}
	}
	pairs := make([]symbols.Pair, len(vars))
	for i, v := range vars {
		pairs[i] = symbols.Pair{Var: v, Type: v}
		if found := b.found[v]; len(found) > 0 {
			pairs[i].Type = found[0]
		}
	}
	return t.InternSubst(pairs)
}

// argUpper reads a wildcard argument as the type it is pinned to: the
// bound for ? extends/? super, NoTypeID for ?.
func (e *Engine) argUpper(arg symbols.TypeID) symbols.TypeID {
	ty := e.t.MustType(arg)
	if ty.Kind != symbols.TyWildcard {
		return arg
	}
	if ty.Bound == symbols.BoundUnbounded {
		return symbols.NoTypeID
	}
	return ty.Elem
}

// Infer solves the type parameters of method from the argument types of a
// call. Primitive arguments are boxed, several bindings of one variable
// are merged with their least upper bound and unresolved variables become
// their erasure. varargs spreads trailing arguments over the element type
// of the last formal.
func (e *Engine) Infer(method symbols.SymbolID, formals, args []symbols.TypeID, varargs bool) symbols.SubstID {
	t := e.t
	params := t.TypeParams(method)
	if len(params) == 0 {
		return symbols.EmptySubst
	}
	vars := make([]symbols.TypeID, len(params))
	for i, p := range params {
		vars[i] = t.MustSym(p).Type
	}
	b := newBindings(vars)
	for i, arg := range args {
		var formal symbols.TypeID
		switch {
		case varargs && len(formals) > 0 && i >= len(formals)-1:
			last := formals[len(formals)-1]
			formal = last
			if t.Kind(last) == symbols.TyArray && !(len(args) == len(formals) && t.Kind(arg) == symbols.TyArray) {
				formal = t.MustType(last).Elem
			}
		case i < len(formals):
			formal = formals[i]
		default:
			continue
		}
		if t.Kind(arg).IsPrimitive() && !t.Kind(formal).IsPrimitive() {
			arg = t.Box(arg)
		}
		e.unify(formal, arg, b, 0)
	}

	pairs := make([]symbols.Pair, len(vars))
	for i, v := range vars {
		pairs[i] = symbols.Pair{Var: v}
		switch found := b.found[v]; len(found) {
		case 0:
			pairs[i].Type = t.Erasure(v)
		case 1:
			pairs[i].Type = found[0]
		default:
			pairs[i].Type = e.lub.LeastUpperBound(found)
		}
	}
	return t.InternSubst(pairs)
}

// unify matches a formal type against an actual one and records bindings
// for the variables being solved.
func (e *Engine) unify(formal, actual symbols.TypeID, b *bindings, depth int) {
	t := e.t
	if depth > MaxDepth || !actual.IsValid() {
		return
	}
	fty, ok := t.Type(formal)
	if !ok {
		return
	}
	aty, ok := t.Type(actual)
	if !ok || aty.IsUnknown() || aty.IsNull() {
		return
	}
	switch fty.Kind {
	case symbols.TyTypeVar:
		if _, solving := b.vars[formal]; solving {
			if aty.Kind.IsPrimitive() {
				actual = t.Box(actual)
			}
			b.add(formal, actual)
		}
	case symbols.TyArray:
		if aty.Kind == symbols.TyArray {
			e.unify(fty.Elem, aty.Elem, b, depth+1)
		}
	case symbols.TyWildcard:
		if fty.Bound != symbols.BoundUnbounded {
			e.unify(fty.Elem, e.argUpper(actual), b, depth+1)
		}
	case symbols.TyParameterized:
		as := t.AsSuper(actual, fty.Sym)
		if !as.IsValid() || t.Kind(as) != symbols.TyParameterized {
			return
		}
		fargs, aargs := t.TypeArgs(formal), t.TypeArgs(as)
		for i := range fargs {
			if i < len(aargs) {
				e.unify(fargs[i], e.argUpper(aargs[i]), b, depth+1)
			}
		}
	}
}
