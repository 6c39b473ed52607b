package symbols

import (
	"strings"
)

// Erasure strips type arguments: parameterized types become their class,
// type variables their first bound, arrays erase their element.
func (t *Table) Erasure(id TypeID) TypeID {
	return t.erasure(id, 0)
}

func (t *Table) erasure(id TypeID, depth int) TypeID {
	ty, ok := t.Type(id)
	if !ok {
		return t.builtins.Unknown
	}
	if depth > MaxClosureDepth {
		return t.ObjectType()
	}
	switch ty.Kind {
	case TyParameterized:
		return t.SymType(ty.Sym)
	case TyArray:
		return t.ArrayOf(t.erasure(ty.Elem, depth+1))
	case TyTypeVar:
		bounds := t.Bounds(ty.Sym)
		if len(bounds) == 0 {
			return t.ObjectType()
		}
		return t.erasure(bounds[0], depth+1)
	case TyWildcard:
		if ty.Bound == BoundExtends {
			return t.erasure(ty.Elem, depth+1)
		}
		return t.ObjectType()
	case TyMethod:
		params := make([]TypeID, len(ty.Params))
		for i, p := range ty.Params {
			params[i] = t.erasure(p, depth+1)
		}
		return t.MethodType(params, t.erasure(ty.Result, depth+1), ty.Thrown)
	case TyUnion:
		if len(ty.Alts) > 0 {
			return t.erasure(ty.Alts[0], depth+1)
		}
	}
	return id
}

var boxNames = map[TypeKind]string{
	TyByte:    "java/lang/Byte",
	TyChar:    "java/lang/Character",
	TyShort:   "java/lang/Short",
	TyInt:     "java/lang/Integer",
	TyLong:    "java/lang/Long",
	TyFloat:   "java/lang/Float",
	TyDouble:  "java/lang/Double",
	TyBoolean: "java/lang/Boolean",
	TyVoid:    "java/lang/Void",
}

var unboxKinds = func() map[string]TypeKind {
	m := make(map[string]TypeKind, len(boxNames))
	for k, n := range boxNames {
		if k != TyVoid {
			m[n] = k
		}
	}
	return m
}()

// Box returns the wrapper class type of a primitive; other types are
// returned unchanged.
func (t *Table) Box(id TypeID) TypeID {
	ty, ok := t.Type(id)
	if !ok {
		return t.builtins.Unknown
	}
	name, isPrim := boxNames[ty.Kind]
	if !isPrim {
		return id
	}
	return t.ClassType(name)
}

// Unbox returns the primitive of a wrapper class type, or NoTypeID.
func (t *Table) Unbox(id TypeID) TypeID {
	ty, ok := t.Type(id)
	if !ok || (ty.Kind != TyClass && ty.Kind != TyParameterized) {
		return NoTypeID
	}
	if k, ok := unboxKinds[t.binaryName(ty.Sym)]; ok {
		return t.Primitive(k)
	}
	return NoTypeID
}

// UnboxedOrSelf unboxes wrappers and leaves everything else alone.
func (t *Table) UnboxedOrSelf(id TypeID) TypeID {
	if u := t.Unbox(id); u.IsValid() {
		return u
	}
	return id
}

func (t *Table) binaryName(sym SymbolID) string {
	if s := t.Sym(sym); s != nil && s.Class != nil {
		return s.Class.BinaryName
	}
	return ""
}

// BinaryName returns java/util/Map$Entry for type symbols.
func (t *Table) BinaryName(sym SymbolID) string { return t.binaryName(sym) }

// FullyQualifiedName returns the dotted name of a package, type or member
// symbol. Nested classes keep '$' (java.util.Map$Entry).
func (t *Table) FullyQualifiedName(sym SymbolID) string {
	s := t.Sym(sym)
	if s == nil {
		return ""
	}
	switch s.Kind {
	case SymPackage:
		return s.Package.FullName
	case SymType:
		if s.Class.BinaryName == "[" {
			return "Array"
		}
		return strings.ReplaceAll(s.Class.BinaryName, "/", ".")
	case SymUnknown:
		return s.Name
	}
	if owner := t.Sym(s.Owner); owner != nil && owner.Kind == SymType {
		return t.FullyQualifiedName(s.Owner) + "." + s.Name
	}
	return s.Name
}

// Is reports whether id is exactly the class (or primitive) named fqn.
func (t *Table) Is(id TypeID, fqn string) bool {
	ty, ok := t.Type(id)
	if !ok || ty.IsUnknown() {
		return false
	}
	switch ty.Kind {
	case TyClass, TyParameterized:
		return t.FullyQualifiedName(ty.Sym) == fqn
	case TyArray:
		return strings.HasSuffix(fqn, "[]") && t.Is(ty.Elem, strings.TrimSuffix(fqn, "[]"))
	case TyTypeVar:
		return false
	}
	return ty.Kind.String() == fqn
}

// EnclosingClass walks owners up to the nearest type symbol (sym itself if
// it is a type).
func (t *Table) EnclosingClass(sym SymbolID) SymbolID {
	for id := sym; id.IsValid(); {
		s := t.Sym(id)
		if s == nil {
			break
		}
		if s.Kind == SymType {
			return id
		}
		id = s.Owner
	}
	return NoSymbolID
}

// OutermostClass returns the top-level class enclosing sym.
func (t *Table) OutermostClass(sym SymbolID) SymbolID {
	cls := t.EnclosingClass(sym)
	for cls.IsValid() {
		outer := t.EnclosingClass(t.MustSym(cls).Owner)
		if !outer.IsValid() {
			return cls
		}
		cls = outer
	}
	return cls
}

// PackageOf returns the package symbol that transitively owns sym.
func (t *Table) PackageOf(sym SymbolID) SymbolID {
	for id := sym; id.IsValid(); {
		s := t.Sym(id)
		if s == nil {
			break
		}
		if s.Kind == SymPackage {
			return id
		}
		id = s.Owner
	}
	return t.rootPackage
}
