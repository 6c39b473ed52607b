package symbols

import (
	"encoding/binary"
	"fmt"
)

type typeKey struct {
	Kind  TypeKind
	Sym   SymbolID
	Elem  TypeID
	Bound BoundKind
	Subst SubstID
}

// intern returns the canonical TypeID of a structural type. Method and
// union types are never interned.
func (t *Table) intern(ty Type) TypeID {
	if ty.Kind == TyMethod || ty.Kind == TyUnion {
		return t.internRaw(ty)
	}
	key := typeKey{Kind: ty.Kind, Sym: ty.Sym, Elem: ty.Elem, Bound: ty.Bound, Subst: ty.Subst}
	if id, ok := t.typeIndex[key]; ok {
		return id
	}
	id := t.internRaw(ty)
	t.typeIndex[key] = id
	return id
}

func (t *Table) internRaw(ty Type) TypeID {
	id := TypeID(t.nextID(len(t.types), "types"))
	t.types = append(t.types, ty)
	return id
}

// Type returns the descriptor for a TypeID.
func (t *Table) Type(id TypeID) (Type, bool) {
	if !id.IsValid() || int(id) >= len(t.types) {
		return Type{}, false
	}
	return t.types[id], true
}

// MustType panics when id is invalid.
func (t *Table) MustType(id TypeID) Type {
	ty, ok := t.Type(id)
	if !ok {
		panic(fmt.Sprintf("symbols: invalid TypeID %d", id))
	}
	return ty
}

// Kind returns the kind of a type, TyInvalid for invalid IDs.
func (t *Table) Kind(id TypeID) TypeKind {
	ty, _ := t.Type(id)
	return ty.Kind
}

// TypeSym returns the defining symbol of a type.
func (t *Table) TypeSym(id TypeID) SymbolID {
	ty, ok := t.Type(id)
	if !ok {
		return t.unknownSym
	}
	if ty.Kind.IsPrimitive() || ty.Kind == TyVoid || ty.Kind == TyNull {
		return NoSymbolID
	}
	return ty.Sym
}

// IsUnknown reports unknown and invalid types.
func (t *Table) IsUnknown(id TypeID) bool {
	ty, ok := t.Type(id)
	return !ok || ty.IsUnknown()
}

// Primitive returns the builtin type of a primitive kind.
func (t *Table) Primitive(k TypeKind) TypeID {
	switch k {
	case TyByte:
		return t.builtins.Byte
	case TyChar:
		return t.builtins.Char
	case TyShort:
		return t.builtins.Short
	case TyInt:
		return t.builtins.Int
	case TyLong:
		return t.builtins.Long
	case TyFloat:
		return t.builtins.Float
	case TyDouble:
		return t.builtins.Double
	case TyBoolean:
		return t.builtins.Boolean
	case TyVoid:
		return t.builtins.Void
	case TyNull:
		return t.builtins.Null
	}
	return t.builtins.Unknown
}

// ArrayOf returns the interned array type of elem.
func (t *Table) ArrayOf(elem TypeID) TypeID {
	if t.IsUnknown(elem) {
		return t.builtins.Unknown
	}
	return t.intern(Type{Kind: TyArray, Sym: t.arraySym, Elem: elem})
}

// ArrayOfDims wraps elem in dims array levels.
func (t *Table) ArrayOfDims(elem TypeID, dims int) TypeID {
	for range dims {
		elem = t.ArrayOf(elem)
	}
	return elem
}

// Wildcard returns the interned wildcard; bound is ignored when unbounded.
func (t *Table) Wildcard(kind BoundKind, bound TypeID) TypeID {
	if kind == BoundUnbounded {
		bound = NoTypeID
	}
	return t.intern(Type{Kind: TyWildcard, Sym: t.unknownSym, Elem: bound, Bound: kind})
}

// MethodType builds a (non-interned) method signature type.
func (t *Table) MethodType(params []TypeID, result TypeID, thrown []TypeID) TypeID {
	return t.internRaw(Type{Kind: TyMethod, Params: params, Result: result, Thrown: thrown})
}

// Union builds a multi-catch union type. A single alternative is returned
// unchanged.
func (t *Table) Union(alts []TypeID) TypeID {
	if len(alts) == 1 {
		return alts[0]
	}
	return t.internRaw(Type{Kind: TyUnion, Sym: t.unknownSym, Alts: alts})
}

// Parameterized returns the interned (sym, subst) type. An empty
// substitution yields the class type itself.
func (t *Table) Parameterized(sym SymbolID, subst SubstID) TypeID {
	if t.IsUnknownSym(sym) {
		return t.builtins.Unknown
	}
	if subst == EmptySubst {
		return t.SymType(sym)
	}
	return t.intern(Type{Kind: TyParameterized, Sym: sym, Subst: subst})
}

// Parameterize binds the type parameters of sym to args in order. A wrong
// argument count yields the raw class type.
func (t *Table) Parameterize(sym SymbolID, args []TypeID) TypeID {
	params := t.TypeParams(sym)
	if len(params) == 0 || len(params) != len(args) {
		return t.SymType(sym)
	}
	pairs := make([]Pair, len(params))
	for i, p := range params {
		pairs[i] = Pair{Var: t.Sym(p).Type, Type: args[i]}
	}
	return t.Parameterized(sym, t.InternSubst(pairs))
}

// ThisType is the type of `this` inside a class: parameterized by its own
// type variables for generic classes.
func (t *Table) ThisType(sym SymbolID) TypeID {
	params := t.TypeParams(sym)
	if len(params) == 0 {
		return t.SymType(sym)
	}
	args := make([]TypeID, len(params))
	for i, p := range params {
		args[i] = t.Sym(p).Type
	}
	return t.Parameterize(sym, args)
}

// TypeArgs returns the arguments of a parameterized type in the order of the
// class type parameters.
func (t *Table) TypeArgs(id TypeID) []TypeID {
	ty, ok := t.Type(id)
	if !ok || ty.Kind != TyParameterized {
		return nil
	}
	params := t.TypeParams(ty.Sym)
	out := make([]TypeID, len(params))
	for i, p := range params {
		v := t.Sym(p).Type
		if arg, ok := t.SubstLookup(ty.Subst, v); ok {
			out[i] = arg
		} else {
			out[i] = v
		}
	}
	return out
}

// IsRaw reports a generic class used without type arguments.
func (t *Table) IsRaw(id TypeID) bool {
	ty, ok := t.Type(id)
	return ok && ty.Kind == TyClass && len(t.TypeParams(ty.Sym)) > 0
}

// --- substitutions -------------------------------------------------------------

func substKey(pairs []Pair) string {
	buf := make([]byte, 0, len(pairs)*8)
	for _, p := range pairs {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Var))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Type))
	}
	return string(buf)
}

// InternSubst returns the ID of an ordered substitution. Order is part of
// the identity: the same pairs in another order get another ID.
func (t *Table) InternSubst(pairs []Pair) SubstID {
	if len(pairs) == 0 {
		return EmptySubst
	}
	key := substKey(pairs)
	if id, ok := t.substIndex[key]; ok {
		return id
	}
	id := SubstID(t.nextID(len(t.substs), "substitutions"))
	t.substs = append(t.substs, append([]Pair(nil), pairs...))
	t.substIndex[key] = id
	return id
}

// Subst returns the pairs of a substitution; callers must not modify them.
func (t *Table) Subst(id SubstID) []Pair {
	if id == EmptySubst || int(id) >= len(t.substs) {
		return nil
	}
	return t.substs[id]
}

// SubstLookup finds the binding of a type variable.
func (t *Table) SubstLookup(id SubstID, v TypeID) (TypeID, bool) {
	for _, p := range t.Subst(id) {
		if p.Var == v {
			return p.Type, true
		}
	}
	return NoTypeID, false
}

// SubstFor returns the substitution carried by a parameterized type.
func (t *Table) SubstFor(id TypeID) SubstID {
	ty, ok := t.Type(id)
	if !ok || ty.Kind != TyParameterized {
		return EmptySubst
	}
	return ty.Subst
}
