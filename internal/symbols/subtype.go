package symbols

import "strings"

// Closure limits: a generic class like `A<T> extends A<A<T>>` has an
// infinite supertype set; walks stop here and lose precision instead.
const (
	MaxClosureDepth = 32
	MaxClosureSize  = 512
)

// DirectSupertypes returns the superclass and interfaces of a reference
// type. Parameterized types get the declared supertypes instantiated with
// their substitution; raw uses of generic classes get erased supertypes.
func (t *Table) DirectSupertypes(id TypeID) []TypeID {
	ty, ok := t.Type(id)
	if !ok {
		return nil
	}
	switch ty.Kind {
	case TyClass, TyParameterized:
		sym := ty.Sym
		var decl []TypeID
		if sup := t.Superclass(sym); sup.IsValid() {
			decl = append(decl, sup)
		} else if t.Flags(sym).IsInterface() {
			// interfaces have Object as their only class supertype
			if obj := t.ObjectType(); obj != id && !t.IsUnknown(obj) {
				decl = append(decl, obj)
			}
		}
		decl = append(decl, t.Interfaces(sym)...)
		switch {
		case ty.Kind == TyParameterized && t.substituter != nil:
			out := make([]TypeID, len(decl))
			for i, d := range decl {
				out[i] = t.substituter.Apply(d, ty.Subst)
			}
			return out
		case ty.Kind == TyParameterized || t.IsRaw(id):
			out := make([]TypeID, len(decl))
			for i, d := range decl {
				out[i] = t.Erasure(d)
			}
			return out
		}
		return decl
	case TyArray:
		elem := t.MustType(ty.Elem)
		if elem.Kind.IsReference() && elem.Kind != TyNull {
			var out []TypeID
			for _, es := range t.DirectSupertypes(ty.Elem) {
				out = append(out, t.ArrayOf(es))
			}
			if len(out) > 0 {
				return out
			}
		}
		return t.arraySupers()
	case TyTypeVar:
		return t.Bounds(ty.Sym)
	case TyWildcard:
		if ty.Bound == BoundExtends {
			return []TypeID{ty.Elem}
		}
		if obj := t.ObjectType(); !t.IsUnknown(obj) {
			return []TypeID{obj}
		}
	case TyUnion:
		return ty.Alts
	}
	return nil
}

func (t *Table) arraySupers() []TypeID {
	var out []TypeID
	for _, name := range []string{"java/lang/Object", "java/lang/Cloneable", "java/io/Serializable"} {
		if st := t.ClassType(name); !t.IsUnknown(st) {
			out = append(out, st)
		}
	}
	return out
}

// Supertypes returns the reflexive transitive supertype closure of id in
// breadth-first order. Results are memoised per type.
func (t *Table) Supertypes(id TypeID) []TypeID {
	if cached, ok := t.closures[id]; ok {
		return cached
	}
	seen := map[TypeID]struct{}{id: {}}
	out := []TypeID{id}
	frontier := []TypeID{id}
	for depth := 0; depth < MaxClosureDepth && len(frontier) > 0 && len(out) < MaxClosureSize; depth++ {
		var next []TypeID
		for _, cur := range frontier {
			for _, sup := range t.DirectSupertypes(cur) {
				if _, dup := seen[sup]; dup || t.IsUnknown(sup) {
					continue
				}
				seen[sup] = struct{}{}
				out = append(out, sup)
				next = append(next, sup)
			}
		}
		frontier = next
	}
	// a hierarchy still being completed may grow; cache only settled ones
	for _, s := range out {
		if sym := t.Sym(t.MustType(s).Sym); sym != nil && sym.state == Completing {
			return out
		}
	}
	t.closures[id] = out
	return out
}

// AsSuper finds the supertype of id whose class symbol is sym, instantiated
// along the path; NoTypeID when sym is not a supertype.
func (t *Table) AsSuper(id TypeID, sym SymbolID) TypeID {
	for _, s := range t.Supertypes(id) {
		ty := t.MustType(s)
		if (ty.Kind == TyClass || ty.Kind == TyParameterized) && ty.Sym == sym {
			return s
		}
	}
	return NoTypeID
}

// IsSubtype reports sub <: super. Unknown is neither a subtype nor a
// supertype of anything, itself included.
func (t *Table) IsSubtype(sub, super TypeID) bool {
	a, okA := t.Type(sub)
	b, okB := t.Type(super)
	if !okA || !okB || a.IsUnknown() || b.IsUnknown() {
		return false
	}
	if sub == super || t.SameType(sub, super) {
		return true
	}
	switch {
	case a.Kind.IsPrimitive() || b.Kind.IsPrimitive():
		return a.Kind.IsPrimitive() && b.Kind.IsPrimitive() && widens(a.Kind, b.Kind)
	case a.Kind == TyVoid || b.Kind == TyVoid || a.Kind == TyMethod || b.Kind == TyMethod:
		return false
	case a.Kind == TyNull:
		return b.Kind.IsReference()
	case b.Kind == TyNull:
		return false
	case a.Kind == TyUnion:
		for _, alt := range a.Alts {
			if !t.IsSubtype(alt, super) {
				return false
			}
		}
		return true
	case b.Kind == TyUnion:
		for _, alt := range b.Alts {
			if t.IsSubtype(sub, alt) {
				return true
			}
		}
		return false
	case b.Kind == TyWildcard:
		switch b.Bound {
		case BoundExtends:
			return t.IsSubtype(sub, b.Elem)
		case BoundSuper:
			return t.IsSubtype(b.Elem, sub)
		}
		return true
	case b.Kind == TyTypeVar:
		// only through a type variable bound of sub
		if a.Kind == TyTypeVar {
			for _, bound := range t.Bounds(a.Sym) {
				if t.IsSubtype(bound, super) {
					return true
				}
			}
		}
		return false
	}

	switch b.Kind {
	case TyArray:
		if a.Kind != TyArray {
			return false
		}
		ea, eb := t.MustType(a.Elem), t.MustType(b.Elem)
		if ea.Kind.IsPrimitive() || eb.Kind.IsPrimitive() {
			return a.Elem == b.Elem
		}
		return t.IsSubtype(a.Elem, b.Elem)
	case TyClass:
		for _, s := range t.Supertypes(sub) {
			st := t.MustType(s)
			if (st.Kind == TyClass || st.Kind == TyParameterized) && st.Sym == b.Sym {
				return true
			}
		}
		return false
	case TyParameterized:
		for _, s := range t.Supertypes(sub) {
			st := t.MustType(s)
			if st.Sym != b.Sym {
				continue
			}
			switch st.Kind {
			case TyClass:
				// raw -> parameterized is an unchecked conversion
				return true
			case TyParameterized:
				if t.argsContained(s, super) {
					return true
				}
			}
		}
		return false
	}
	return false
}

func (t *Table) argsContained(sub, super TypeID) bool {
	sa, ba := t.TypeArgs(sub), t.TypeArgs(super)
	if len(sa) != len(ba) {
		return false
	}
	for i := range sa {
		if !t.Contains(ba[i], sa[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether type argument outer contains inner.
func (t *Table) Contains(outer, inner TypeID) bool {
	if outer == inner {
		return true
	}
	o, ok := t.Type(outer)
	if !ok || o.IsUnknown() {
		return false
	}
	in := t.MustType(inner)
	if o.Kind != TyWildcard {
		return t.SameType(outer, inner)
	}
	switch o.Bound {
	case BoundUnbounded:
		return true
	case BoundExtends:
		if in.Kind == TyWildcard {
			if in.Bound == BoundExtends {
				return t.IsSubtype(in.Elem, o.Elem)
			}
			return t.isObject(o.Elem)
		}
		return t.IsSubtype(inner, o.Elem)
	case BoundSuper:
		if in.Kind == TyWildcard {
			return in.Bound == BoundSuper && t.IsSubtype(o.Elem, in.Elem)
		}
		return t.IsSubtype(o.Elem, inner)
	}
	return false
}

func (t *Table) isObject(id TypeID) bool {
	ty, ok := t.Type(id)
	return ok && ty.Kind == TyClass && t.binaryName(ty.Sym) == "java/lang/Object"
}

// SameType compares interned types by ID and method/union types
// structurally.
func (t *Table) SameType(a, b TypeID) bool {
	if a == b {
		return !t.IsUnknown(a)
	}
	ta, okA := t.Type(a)
	tb, okB := t.Type(b)
	if !okA || !okB || ta.Kind != tb.Kind {
		return false
	}
	switch ta.Kind {
	case TyMethod:
		return ta.Result == tb.Result && sameList(ta.Params, tb.Params)
	case TyUnion:
		return sameList(ta.Alts, tb.Alts)
	}
	return false
}

func sameList(a, b []TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// widening order for numeric primitives; char widens to int and beyond.
var primRank = map[TypeKind]int{TyByte: 1, TyShort: 2, TyInt: 3, TyLong: 4, TyFloat: 5, TyDouble: 6}

func widens(from, to TypeKind) bool {
	if from == to {
		return true
	}
	if from == TyBoolean || to == TyBoolean || to == TyChar {
		return false
	}
	if from == TyChar {
		return primRank[to] >= primRank[TyInt]
	}
	return primRank[from] < primRank[to]
}

// IsSubtypeOfName reports whether id has a supertype with the given fully
// qualified name (nested classes with '$').
func (t *Table) IsSubtypeOfName(id TypeID, fqn string) bool {
	ty, ok := t.Type(id)
	if !ok || ty.IsUnknown() {
		return false
	}
	if ty.Kind.IsPrimitive() {
		for k := TyByte; k <= TyDouble; k++ {
			if k.String() == fqn {
				return widens(ty.Kind, k)
			}
		}
		return fqn == ty.Kind.String()
	}
	if ty.Kind == TyNull {
		return fqn != "" && !isPrimitiveName(fqn)
	}
	if strings.HasSuffix(fqn, "[]") {
		if ty.Kind != TyArray {
			return false
		}
		return t.IsSubtypeOfName(ty.Elem, strings.TrimSuffix(fqn, "[]"))
	}
	for _, s := range t.Supertypes(id) {
		st := t.MustType(s)
		if (st.Kind == TyClass || st.Kind == TyParameterized) && t.FullyQualifiedName(st.Sym) == fqn {
			return true
		}
	}
	return false
}

func isPrimitiveName(name string) bool {
	for k := TyByte; k <= TyBoolean; k++ {
		if k.String() == name {
			return true
		}
	}
	return false
}
