package loader

import (
	"jsema/internal/classfile"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

// typeEnv maps type variable names to their types; lookups fall through to
// the enclosing method, class and outer classes.
type typeEnv struct {
	vars  map[string]symbols.TypeID
	outer *typeEnv
}

func (e *typeEnv) bind(name string, t symbols.TypeID) {
	if e.vars == nil {
		e.vars = make(map[string]symbols.TypeID, 2)
	}
	e.vars[name] = t
}

func (e *typeEnv) lookup(name string) (symbols.TypeID, bool) {
	for env := e; env != nil; env = env.outer {
		if t, ok := env.vars[name]; ok {
			return t, true
		}
	}
	return symbols.NoTypeID, false
}

// classEnv starts a type environment for sym; inner (non-static) classes
// see the type variables of their enclosing classes.
func (l *Loader) classEnv(sym symbols.SymbolID) *typeEnv {
	env := &typeEnv{}
	s := l.table.MustSym(sym)
	outer := l.table.Sym(s.Owner)
	if outer == nil || outer.Kind != symbols.SymType || s.Flags.IsStatic() {
		return env
	}
	env.outer = &typeEnv{}
	for _, tv := range l.table.TypeParams(s.Owner) {
		tvs := l.table.MustSym(tv)
		env.outer.bind(tvs.Name, tvs.Type)
	}
	env.outer.outer = l.classEnv(s.Owner).outer
	return env
}

// newTypeVars creates every type variable before any bound is converted so
// that bounds may mention any of them (T extends Comparable<T>).
func (l *Loader) newTypeVars(owner symbols.SymbolID, scope symbols.ScopeID, sigs []classfile.TypeParamSig, env *typeEnv) []symbols.SymbolID {
	ids := make([]symbols.SymbolID, len(sigs))
	for i, tp := range sigs {
		ids[i] = l.table.NewTypeVar(tp.Name, owner, i, source.Span{})
		l.table.Enter(scope, ids[i])
		env.bind(tp.Name, l.table.MustSym(ids[i]).Type)
	}
	return ids
}

func (l *Loader) bindBounds(ids []symbols.SymbolID, sigs []classfile.TypeParamSig, env *typeEnv) {
	for i, tp := range sigs {
		var bounds []symbols.TypeID
		if tp.ClassBound != nil {
			bounds = append(bounds, l.typeOf(tp.ClassBound, env))
		}
		for j := range tp.InterfaceBounds {
			bounds = append(bounds, l.typeOf(&tp.InterfaceBounds[j], env))
		}
		l.table.SetBounds(ids[i], bounds)
	}
}

var baseKinds = map[byte]symbols.TypeKind{
	'B': symbols.TyByte,
	'C': symbols.TyChar,
	'D': symbols.TyDouble,
	'F': symbols.TyFloat,
	'I': symbols.TyInt,
	'J': symbols.TyLong,
	'S': symbols.TyShort,
	'Z': symbols.TyBoolean,
}

func (l *Loader) builtin() symbols.Builtins { return l.table.Builtins() }

// classType is the canonical class type of a name without completing it.
func (l *Loader) classType(name string) symbols.TypeID {
	sym := l.ClassSymbol(name)
	if s := l.table.Sym(sym); s != nil && s.Type.IsValid() {
		return s.Type
	}
	return l.builtin().Unknown
}

// typeOf converts a parsed signature. Unbound type variables erase to
// Object; argument lists whose arity does not match the class leave that
// part raw.
func (l *Loader) typeOf(sig *classfile.TypeSig, env *typeEnv) symbols.TypeID {
	switch sig.Kind {
	case classfile.SigBase:
		return l.table.Primitive(baseKinds[sig.Base])
	case classfile.SigVoid:
		return l.builtin().Void
	case classfile.SigArray:
		return l.table.ArrayOf(l.typeOf(sig.Elem, env))
	case classfile.SigTypeVar:
		if t, ok := env.lookup(sig.Var); ok {
			return t
		}
		return l.classType(objectName)
	case classfile.SigClass:
		sym := l.ClassSymbol(sig.BinaryName())
		if l.table.IsUnknownSym(sym) {
			return l.builtin().Unknown
		}
		if !sig.HasArgs() {
			return l.table.MustSym(sym).Type
		}
		var pairs []symbols.Pair
		prefix := ""
		for i, part := range sig.Parts {
			if i > 0 {
				prefix += "$"
			}
			prefix += part.Name
			if len(part.Args) == 0 {
				continue
			}
			partSym := sym
			if i < len(sig.Parts)-1 {
				partSym = l.ClassSymbol(prefix)
			}
			params := l.table.TypeParams(partSym)
			if len(params) != len(part.Args) {
				continue
			}
			for j, a := range part.Args {
				pairs = append(pairs, symbols.Pair{Var: l.table.MustSym(params[j]).Type, Type: l.typeArg(a, env)})
			}
		}
		return l.table.Parameterized(sym, l.table.InternSubst(pairs))
	}
	return l.builtin().Unknown
}

func (l *Loader) typeArg(a classfile.TypeArg, env *typeEnv) symbols.TypeID {
	switch a.Wildcard {
	case '*':
		return l.table.Wildcard(symbols.BoundUnbounded, symbols.NoTypeID)
	case '+':
		return l.table.Wildcard(symbols.BoundExtends, l.typeOf(a.Type, env))
	case '-':
		return l.table.Wildcard(symbols.BoundSuper, l.typeOf(a.Type, env))
	}
	return l.typeOf(a.Type, env)
}

type memberKind uint8

const (
	memberClass memberKind = iota
	memberField
	memberMethod
)

// flagsFromAccess maps class-file access bits; overloaded bits are read
// according to the member kind.
func flagsFromAccess(acc uint16, kind memberKind) symbols.Flags {
	var f symbols.Flags
	set := func(bit uint16, flag symbols.Flags) {
		if acc&bit != 0 {
			f |= flag
		}
	}
	set(classfile.AccPublic, symbols.FlagPublic)
	set(classfile.AccPrivate, symbols.FlagPrivate)
	set(classfile.AccProtected, symbols.FlagProtected)
	set(classfile.AccStatic, symbols.FlagStatic)
	set(classfile.AccFinal, symbols.FlagFinal)
	set(classfile.AccAbstract, symbols.FlagAbstract)
	set(classfile.AccSynthetic, symbols.FlagSynthetic)
	set(classfile.AccEnum, symbols.FlagEnum)
	switch kind {
	case memberClass:
		set(classfile.AccInterface, symbols.FlagInterface)
		set(classfile.AccAnnotation, symbols.FlagAnnotation)
	case memberField:
		set(classfile.AccVolatile, symbols.FlagVolatile)
		set(classfile.AccTransient, symbols.FlagTransient)
	case memberMethod:
		set(classfile.AccSynchronized, symbols.FlagSynchronized)
		set(classfile.AccBridge, symbols.FlagBridge)
		set(classfile.AccVarargs, symbols.FlagVarargs)
		set(classfile.AccNative, symbols.FlagNative)
		set(classfile.AccStrict, symbols.FlagStrict)
	}
	return f
}

func (l *Loader) annotation(a classfile.Annotation) symbols.Annotation {
	out := symbols.Annotation{Type: a.TypeName(), Visible: a.Visible}
	for _, e := range a.Elements {
		out.Values = append(out.Values, symbols.AnnotationValue{Name: e.Name, Value: l.elementValue(e.Value)})
	}
	return out
}

func (l *Loader) elementValue(v classfile.ElementValue) any {
	switch v.Tag {
	case 'B', 'C', 'I', 'J', 'S':
		return v.Int
	case 'Z':
		return v.Int != 0
	case 'F', 'D':
		return v.Float
	case 's':
		return v.String
	case 'e':
		return symbols.EnumConstant{Type: classfile.DescriptorToName(v.EnumType), Const: v.EnumConst}
	case 'c':
		return symbols.ClassLiteral{Type: classLiteralName(v.Class)}
	case '@':
		if v.Annotation != nil {
			a := l.annotation(*v.Annotation)
			return &a
		}
	case '[':
		vals := make([]symbols.AnnotationValue, len(v.Array))
		for i := range v.Array {
			vals[i] = symbols.AnnotationValue{Value: l.elementValue(v.Array[i])}
		}
		return vals
	}
	return nil
}

// classLiteralName renders a class literal descriptor (Ljava/lang/String;,
// I, [J, V) as source text.
func classLiteralName(desc string) string {
	if desc == "V" {
		return "void"
	}
	sig, err := classfile.ParseFieldType(desc)
	if err != nil {
		return desc
	}
	return sig.String()
}
