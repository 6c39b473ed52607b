package sema

import (
	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/resolve"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

// expr types expression id. expected is the target type when the context
// provides one (assignment, argument, return); lambdas, method references,
// diamonds and array initializers are read against it.
func (at *attr) expr(env *resolve.Env, id ast.NodeID, expected symbols.TypeID) symbols.TypeID {
	if !id.IsValid() {
		return at.a.unknownType()
	}
	typ := at.exprKind(env, id, expected)
	if !typ.IsValid() {
		typ = at.a.unknownType()
	}
	at.u.setType(id, typ)
	return typ
}

func (at *attr) exprKind(env *resolve.Env, id ast.NodeID, expected symbols.TypeID) symbols.TypeID {
	tree := at.tree
	b := at.t.Builtins()
	switch tree.Kind(id) {
	case ast.KindLiteral:
		return at.literal(tree.Literal(id))
	case ast.KindIdent, ast.KindFieldAccess:
		sym, typ := at.name(env, id)
		if s := at.t.Sym(sym); s != nil && s.Kind == symbols.SymPackage {
			return at.a.unknownType()
		}
		return typ
	case ast.KindMethodCall:
		return at.call(env, id)
	case ast.KindNew:
		return at.newObject(env, id, expected)
	case ast.KindNewArray:
		return at.newArray(env, id)
	case ast.KindArrayInit:
		return at.arrayInit(env, id, expected)
	case ast.KindAssign:
		op := tree.Op(id)
		left := at.expr(env, op.Left, symbols.NoTypeID)
		rexp := left
		if op.Op != "=" {
			rexp = symbols.NoTypeID
		}
		at.expr(env, op.Right, rexp)
		return left
	case ast.KindBinary:
		return at.binary(env, id)
	case ast.KindUnary:
		un := tree.Unary(id)
		operand := at.expr(env, un.Operand, symbols.NoTypeID)
		switch un.Op {
		case "!":
			return b.Boolean
		case "++", "--":
			return operand
		}
		return at.unaryPromote(operand)
	case ast.KindParen:
		return at.expr(env, tree.Unary(id).Operand, expected)
	case ast.KindConditional:
		return at.conditional(env, id, expected)
	case ast.KindCast:
		c := tree.Cast(id)
		typ := at.a.typeTree(at.u, env, c.Type)
		at.expr(env, c.Expr, typ)
		return typ
	case ast.KindInstanceOf:
		c := tree.Cast(id)
		at.expr(env, c.Expr, symbols.NoTypeID)
		typ := at.a.typeTree(at.u, env, c.Type)
		if c.Binding != "" {
			at.local(env, id, c.Binding, c.BindingSpan, typ, 0)
		}
		return b.Boolean
	case ast.KindArrayAccess:
		ix := tree.ArrayAccess(id)
		arr := at.expr(env, ix.Array, symbols.NoTypeID)
		at.expr(env, ix.Index, b.Int)
		if ty, ok := at.t.Type(arr); ok && ty.Kind == symbols.TyArray {
			return ty.Elem
		}
		return at.a.unknownType()
	case ast.KindLambda:
		return at.lambda(env, id, expected)
	case ast.KindMethodRef:
		return at.methodRef(env, id, expected)
	case ast.KindThis:
		return at.this(env, id)
	case ast.KindSuper:
		return at.super(env, id)
	case ast.KindClassLit:
		return at.classLiteral(env, id)
	case ast.KindSwitchExpr:
		arms := at.switchBody(env, id, expected)
		return at.join(arms)
	}
	return at.a.unknownType()
}

func (at *attr) literal(lit *ast.LiteralData) symbols.TypeID {
	b := at.t.Builtins()
	if lit == nil {
		return b.Unknown
	}
	switch lit.Kind {
	case ast.LitInt:
		return b.Int
	case ast.LitLong:
		return b.Long
	case ast.LitFloat:
		return b.Float
	case ast.LitDouble:
		return b.Double
	case ast.LitChar:
		return b.Char
	case ast.LitBool:
		return b.Boolean
	case ast.LitNull:
		return b.Null
	case ast.LitString:
		return at.t.StringType()
	}
	return b.Unknown
}

// name resolves an identifier or a dotted name to a variable, a type or a
// package and returns its symbol and, for variables and types, its type.
func (at *attr) name(env *resolve.Env, id ast.NodeID) (symbols.SymbolID, symbols.TypeID) {
	tree := at.tree
	unknown := at.a.unknownType()
	if ident := tree.Ident(id); ident != nil {
		sp := tree.Span(id)
		sym := at.r.FindIdent(env, ident.Name, resolve.KindVar|resolve.KindType|resolve.KindPackage)
		if at.t.IsUnknownSym(sym) {
			at.warn(diag.ResUnknownSymbol, sp, "cannot find symbol %s", ident.Name)
			at.u.bind(id, sym)
			return sym, unknown
		}
		at.checkAccess(env, sym, sp)
		at.use(id, sp, sym)
		return sym, at.symbolType(env, sym)
	}

	fa := tree.FieldAccess(id)
	if fa == nil {
		return at.a.unknownSym(), unknown
	}
	var target symbols.SymbolID
	var site symbols.TypeID
	if k := tree.Kind(fa.Target); k == ast.KindIdent || k == ast.KindFieldAccess {
		target, site = at.name(env, fa.Target)
		at.u.setType(fa.Target, site)
	} else {
		site = at.expr(env, fa.Target, symbols.NoTypeID)
	}

	ts := at.t.Sym(target)
	var sym symbols.SymbolID
	switch {
	case ts != nil && ts.Kind == symbols.SymPackage:
		sym = at.r.FindMemberType(env, target, fa.Name)
		if at.t.IsUnknownSym(sym) {
			full := fa.Name
			if ts.Package.FullName != "" {
				full = ts.Package.FullName + "." + fa.Name
			}
			if at.a.loader.HasPackage(full) {
				sym = at.a.loader.Package(full)
			}
		}
	case ts != nil && (ts.Kind == symbols.SymType || ts.Kind == symbols.SymTypeVar):
		sym = at.r.FindField(env, at.t.SymType(target), fa.Name)
		if at.t.IsUnknownSym(sym) {
			sym = at.r.FindMemberType(env, target, fa.Name)
		}
	case at.t.IsUnknown(site):
		// the target already failed; do not cascade
		at.u.bind(id, at.a.unknownSym())
		return at.a.unknownSym(), unknown
	default:
		sym = at.r.FindField(env, site, fa.Name)
	}
	if !sym.IsValid() || at.t.IsUnknownSym(sym) {
		at.warn(diag.ResUnknownSymbol, fa.NameSpan, "cannot find symbol %s", fa.Name)
		at.u.bind(id, at.a.unknownSym())
		return at.a.unknownSym(), unknown
	}
	at.checkAccess(env, sym, fa.NameSpan)
	at.use(id, fa.NameSpan, sym)
	s := at.t.MustSym(sym)
	if s.Kind == symbols.SymVariable && site.IsValid() && (ts == nil || ts.Kind == symbols.SymVariable) {
		return sym, at.a.gen.AsMemberOf(site, sym)
	}
	return sym, at.symbolType(env, sym)
}

func (at *attr) symbolType(env *resolve.Env, sym symbols.SymbolID) symbols.TypeID {
	s := at.t.MustSym(sym)
	switch s.Kind {
	case symbols.SymVariable:
		return at.varType(env, sym)
	case symbols.SymType, symbols.SymTypeVar:
		return at.t.SymType(sym)
	}
	return symbols.NoTypeID
}

func (at *attr) checkAccess(env *resolve.Env, sym symbols.SymbolID, sp source.Span) {
	s := at.t.MustSym(sym)
	if s.Kind == symbols.SymPackage || (s.Kind == symbols.SymVariable && s.Flags.Has(symbols.FlagLocal)) {
		return
	}
	if !at.r.IsAccessible(env, sym) {
		at.warn(diag.ResNotAccessible, sp, "%s has %s access", at.t.FullyQualifiedName(sym), accessName(s.Flags))
	}
}

func accessName(f symbols.Flags) string {
	switch {
	case f.IsPrivate():
		return "private"
	case f.IsProtected():
		return "protected"
	case f.IsPublic():
		return "public"
	}
	return "package-private"
}

func (at *attr) this(env *resolve.Env, id ast.NodeID) symbols.TypeID {
	ref := at.tree.Ref(id)
	cls := env.Class
	if ref != nil && ref.Target.IsValid() {
		q, _ := at.name(env, ref.Target)
		if s := at.t.Sym(q); s == nil || s.Kind != symbols.SymType {
			return at.a.unknownType()
		}
		cls = q
	}
	if !cls.IsValid() {
		return at.a.unknownType()
	}
	return at.t.ThisType(cls)
}

// super types `super` and `Outer.super`/`Iface.super`: the superclass of
// the class, or the named direct superinterface.
func (at *attr) super(env *resolve.Env, id ast.NodeID) symbols.TypeID {
	ref := at.tree.Ref(id)
	cls := env.Class
	if ref != nil && ref.Target.IsValid() {
		q, _ := at.name(env, ref.Target)
		s := at.t.Sym(q)
		if s == nil || s.Kind != symbols.SymType {
			return at.a.unknownType()
		}
		if s.Flags.IsInterface() && cls.IsValid() {
			for _, i := range at.t.Interfaces(cls) {
				if at.t.TypeSym(i) == q {
					return i
				}
			}
			return at.t.SymType(q)
		}
		cls = q
	}
	if !cls.IsValid() {
		return at.a.unknownType()
	}
	if sup := at.t.Superclass(cls); sup.IsValid() {
		return sup
	}
	return at.t.ObjectType()
}

// classLiteral types T.class as Class<boxed T>.
func (at *attr) classLiteral(env *resolve.Env, id ast.NodeID) symbols.TypeID {
	typ := at.a.typeTree(at.u, env, at.tree.Ref(id).Target)
	class := at.a.loader.ClassSymbol("java/lang/Class")
	if at.t.IsUnknown(typ) || at.t.IsUnknownSym(class) {
		return at.a.unknownType()
	}
	arg := at.t.Box(at.t.Erasure(typ))
	if at.t.Kind(typ) == symbols.TyVoid {
		arg = at.t.ClassType("java/lang/Void")
	}
	if len(at.t.TypeParams(class)) != 1 {
		return at.t.SymType(class)
	}
	return at.t.Parameterize(class, []symbols.TypeID{arg})
}

func (at *attr) newArray(env *resolve.Env, id ast.NodeID) symbols.TypeID {
	d := at.tree.NewArrayOf(id)
	elem := at.a.typeTree(at.u, env, d.Elem)
	for _, dim := range d.Dims {
		at.expr(env, dim, at.t.Builtins().Int)
	}
	typ := at.t.ArrayOfDims(elem, len(d.Dims)+d.ExtraDims)
	if d.Init.IsValid() {
		at.expr(env, d.Init, typ)
	}
	return typ
}

// arrayInit types `{a, b}` against the expected array type, or as an array
// of the elements' least upper bound without one.
func (at *attr) arrayInit(env *resolve.Env, id ast.NodeID, expected symbols.TypeID) symbols.TypeID {
	list := at.tree.ArrayInit(id)
	elem := symbols.NoTypeID
	if ty, ok := at.t.Type(expected); ok && ty.Kind == symbols.TyArray {
		elem = ty.Elem
	}
	var types []symbols.TypeID
	for _, e := range list.Elems {
		types = append(types, at.expr(env, e, elem))
	}
	if elem.IsValid() {
		return expected
	}
	if len(types) == 0 {
		return at.a.unknownType()
	}
	return at.t.ArrayOf(at.join(types))
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true, "&&": true, "||": true,
}

func (at *attr) binary(env *resolve.Env, id ast.NodeID) symbols.TypeID {
	op := at.tree.Op(id)
	b := at.t.Builtins()
	left := at.expr(env, op.Left, symbols.NoTypeID)
	right := at.expr(env, op.Right, symbols.NoTypeID)
	switch {
	case comparisonOps[op.Op]:
		return b.Boolean
	case op.Op == "+" && (at.t.Is(left, "java.lang.String") || at.t.Is(right, "java.lang.String")):
		return at.t.StringType()
	case op.Op == "<<" || op.Op == ">>" || op.Op == ">>>":
		return at.unaryPromote(left)
	case op.Op == "&" || op.Op == "|" || op.Op == "^":
		if at.t.Kind(at.t.UnboxedOrSelf(left)) == symbols.TyBoolean {
			return b.Boolean
		}
	}
	return at.binaryPromote(left, right)
}

// unaryPromote widens byte, short and char to int.
func (at *attr) unaryPromote(typ symbols.TypeID) symbols.TypeID {
	b := at.t.Builtins()
	switch at.t.Kind(at.t.UnboxedOrSelf(typ)) {
	case symbols.TyByte, symbols.TyShort, symbols.TyChar, symbols.TyInt:
		return b.Int
	case symbols.TyLong:
		return b.Long
	case symbols.TyFloat:
		return b.Float
	case symbols.TyDouble:
		return b.Double
	}
	return b.Unknown
}

// binaryPromote applies binary numeric promotion after unboxing.
func (at *attr) binaryPromote(l, r symbols.TypeID) symbols.TypeID {
	b := at.t.Builtins()
	lk := at.t.Kind(at.t.UnboxedOrSelf(l))
	rk := at.t.Kind(at.t.UnboxedOrSelf(r))
	if !lk.IsNumeric() || !rk.IsNumeric() {
		return b.Unknown
	}
	switch {
	case lk == symbols.TyDouble || rk == symbols.TyDouble:
		return b.Double
	case lk == symbols.TyFloat || rk == symbols.TyFloat:
		return b.Float
	case lk == symbols.TyLong || rk == symbols.TyLong:
		return b.Long
	}
	return b.Int
}

func (at *attr) conditional(env *resolve.Env, id ast.NodeID, expected symbols.TypeID) symbols.TypeID {
	c := at.tree.Conditional(id)
	at.expr(env, c.Cond, at.t.Builtins().Boolean)
	then := at.expr(env, c.Then, expected)
	els := at.expr(env, c.Else, expected)
	return at.join([]symbols.TypeID{then, els})
}

// join is the type of several alternative values. Operands that all
// unbox to numbers are promoted like the operands of a binary operator;
// anything else joins boxed through the least upper bound. Unknown
// alternatives are ignored.
func (at *attr) join(types []symbols.TypeID) symbols.TypeID {
	var known []symbols.TypeID
	for _, typ := range types {
		if !at.t.IsUnknown(typ) {
			known = append(known, typ)
		}
	}
	if len(known) == 0 {
		return at.a.unknownType()
	}
	numeric, boolean := true, true
	for _, typ := range known {
		k := at.t.Kind(at.t.UnboxedOrSelf(typ))
		numeric = numeric && k.IsNumeric()
		boolean = boolean && k == symbols.TyBoolean
	}
	switch {
	case boolean:
		return at.t.Builtins().Boolean
	case numeric:
		out := at.t.UnboxedOrSelf(known[0])
		for _, typ := range known[1:] {
			if u := at.t.UnboxedOrSelf(typ); u != out {
				out = at.binaryPromote(out, u)
			}
		}
		return out
	}
	boxed := make([]symbols.TypeID, len(known))
	for i, typ := range known {
		boxed[i] = at.t.Box(typ)
	}
	return at.a.lub.LeastUpperBound(boxed)
}
