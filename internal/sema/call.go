package sema

import (
	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/resolve"
	"jsema/internal/symbols"
)

// isDeferred reports arguments whose type depends on the parameter they
// are passed to. They are left out of overload resolution and walked once
// the callee is known.
func (at *attr) isDeferred(id ast.NodeID) bool {
	switch at.tree.Kind(id) {
	case ast.KindLambda, ast.KindMethodRef:
		return true
	case ast.KindParen:
		return at.isDeferred(at.tree.Unary(id).Operand)
	}
	return false
}

// args types call arguments. Deferred arguments type as unknown, which
// matches any parameter.
func (at *attr) args(env *resolve.Env, ids []ast.NodeID) []symbols.TypeID {
	out := make([]symbols.TypeID, len(ids))
	for i, id := range ids {
		if at.isDeferred(id) {
			out[i] = at.a.unknownType()
			continue
		}
		out[i] = at.expr(env, id, symbols.NoTypeID)
	}
	return out
}

// deferred walks the lambda and method reference arguments of a resolved
// call against the matching formal parameter.
func (at *attr) deferred(env *resolve.Env, ids []ast.NodeID, res resolve.Resolved) {
	for i, id := range ids {
		if at.isDeferred(id) {
			at.expr(env, id, at.formalAt(res, i))
		}
	}
}

// formalAt is the type the i-th argument is passed as. In a variable arity
// call the trailing arguments take the element type.
func (at *attr) formalAt(res resolve.Resolved, i int) symbols.TypeID {
	mt, ok := at.t.Type(res.Type)
	if !ok || mt.Kind != symbols.TyMethod || len(mt.Params) == 0 {
		return symbols.NoTypeID
	}
	last := len(mt.Params) - 1
	if res.Phase == resolve.PhaseVarargs && i >= last {
		if ty, ok := at.t.Type(mt.Params[last]); ok && ty.Kind == symbols.TyArray {
			return ty.Elem
		}
	}
	if i < len(mt.Params) {
		return mt.Params[i]
	}
	return symbols.NoTypeID
}

func (at *attr) typeArgs(env *resolve.Env, ids []ast.NodeID) []symbols.TypeID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]symbols.TypeID, len(ids))
	for i, id := range ids {
		out[i] = at.a.typeTree(at.u, env, id)
	}
	return out
}

// call resolves a method invocation, or an explicit this(...)/super(...)
// constructor invocation, and records the usage at the method name.
func (at *attr) call(env *resolve.Env, id ast.NodeID) symbols.TypeID {
	c := at.tree.Call(id)
	typeArgs := at.typeArgs(env, c.TypeArgs)

	if c.Name == symbols.ConstructorName {
		var site symbols.TypeID
		if ref := at.tree.Ref(c.Target); ref != nil && ref.Target.IsValid() && at.tree.Kind(c.Target) == ast.KindSuper {
			// outer.super(...): the qualifier is the enclosing instance
			at.expr(env, ref.Target, symbols.NoTypeID)
			site = at.t.Superclass(env.Class)
			at.u.setType(c.Target, site)
		} else {
			site = at.expr(env, c.Target, symbols.NoTypeID)
		}
		args := at.args(env, c.Args)
		res := at.r.FindConstructor(env, site, args, typeArgs, c.NameSpan)
		at.deferred(env, c.Args, res)
		at.use(id, c.NameSpan, res.Sym)
		return at.t.Builtins().Void
	}

	site := symbols.NoTypeID
	if c.Target.IsValid() {
		switch at.tree.Kind(c.Target) {
		case ast.KindIdent, ast.KindFieldAccess:
			sym, typ := at.name(env, c.Target)
			at.u.setType(c.Target, typ)
			if s := at.t.Sym(sym); s != nil && s.Kind == symbols.SymPackage {
				at.warn(diag.ResUnknownSymbol, at.tree.Span(c.Target), "cannot find symbol %s", s.Package.FullName)
				typ = at.a.unknownType()
			}
			site = typ
		default:
			site = at.expr(env, c.Target, symbols.NoTypeID)
		}
		if !site.IsValid() {
			site = at.a.unknownType()
		}
	}
	args := at.args(env, c.Args)
	res := at.r.FindMethod(env, site, c.Name, args, typeArgs, c.NameSpan)
	at.deferred(env, c.Args, res)
	at.use(id, c.NameSpan, res.Sym)
	if !res.Sym.IsValid() || at.t.IsUnknownSym(res.Sym) {
		return at.a.unknownType()
	}
	return at.r.Result(res)
}

// newObject types `new T(...)`, `outer.new Inner(...)` and anonymous
// class creation. The constructor usage covers the whole expression so
// that the type name keeps resolving to the class.
func (at *attr) newObject(env *resolve.Env, id ast.NodeID, expected symbols.TypeID) symbols.TypeID {
	n := at.tree.New(id)
	typeArgs := at.typeArgs(env, n.TypeArgs)

	var typ symbols.TypeID
	if n.Outer.IsValid() {
		typ = at.innerType(env, at.expr(env, n.Outer, symbols.NoTypeID), n.Type)
	} else {
		typ = at.a.typeTree(at.u, env, n.Type)
	}
	if isDiamond(at.tree, n.Type) {
		typ = at.diamond(typ, expected)
		at.u.setType(n.Type, typ)
	}

	args := at.args(env, n.Args)
	cls := at.t.TypeSym(typ)
	known := cls.IsValid() && !at.t.IsUnknownSym(cls)
	if known && !at.t.Flags(cls).IsInterface() {
		res := at.r.FindConstructor(env, typ, args, typeArgs, at.tree.Span(n.Type))
		at.deferred(env, n.Args, res)
		at.ref(id, at.tree.Span(id), res.Sym)
	} else {
		at.deferred(env, n.Args, resolve.Resolved{})
	}

	if !n.Body.IsValid() {
		return typ
	}
	anon := at.a.declareLocal(at.u, n.Body, env)
	if !anon.IsValid() {
		return typ
	}
	info := at.t.MustSym(anon).Class
	switch {
	case !known:
		info.Super = at.t.ObjectType()
	case at.t.Flags(cls).IsInterface():
		info.Super = at.t.ObjectType()
		info.Interfaces = []symbols.TypeID{typ}
	default:
		info.Super = typ
	}
	at.classBody(at.a.bodyEnv(anon), anon, n.Body)
	return at.t.SymType(anon)
}

// innerType resolves the simple class name of a qualified creation
// against the class of the outer instance.
func (at *attr) innerType(env *resolve.Env, outer symbols.TypeID, tid ast.NodeID) symbols.TypeID {
	d := at.tree.Type(tid)
	if d == nil || len(d.Parts) == 0 || at.t.IsUnknown(outer) {
		return at.a.unknownType()
	}
	part := d.Parts[0]
	sym := at.r.FindMemberType(env, at.t.TypeSym(outer), part.Name)
	if at.t.IsUnknownSym(sym) {
		at.warn(diag.ResUnknownType, part.Span, "cannot resolve type %s", part.Name)
		at.u.bind(tid, sym)
		return at.a.unknownType()
	}
	at.use(tid, part.Span, sym)
	typ := at.t.SymType(sym)
	if len(part.Args) > 0 {
		args := at.typeArgs(env, part.Args)
		if len(args) == len(at.t.TypeParams(sym)) {
			typ = at.t.Parameterize(sym, args)
		}
	}
	at.u.setType(tid, typ)
	return typ
}

// diamond infers the type arguments of `new C<>()` from the target type.
// Arguments the target does not pin default to the erased bound.
func (at *attr) diamond(raw symbols.TypeID, expected symbols.TypeID) symbols.TypeID {
	cls := at.t.TypeSym(raw)
	params := at.t.TypeParams(cls)
	if len(params) == 0 || at.t.IsUnknown(raw) {
		return raw
	}
	subst := symbols.EmptySubst
	if expected.IsValid() && !at.t.IsUnknown(expected) {
		subst = at.a.gen.SubstitutionFromSuperType(at.t.ThisType(cls), at.ground(expected))
	}
	args := make([]symbols.TypeID, len(params))
	for i, p := range params {
		v := at.t.MustSym(p).Type
		if arg, ok := at.t.SubstLookup(subst, v); ok && arg != v {
			args[i] = arg
			continue
		}
		args[i] = at.t.ObjectType()
		if bounds := at.t.Bounds(p); len(bounds) > 0 {
			args[i] = at.t.Erasure(bounds[0])
		}
	}
	return at.t.Parameterize(cls, args)
}

// lambda types a lambda against its functional interface target. Without
// a target the parameters without declared types stay unknown.
func (at *attr) lambda(env *resolve.Env, id ast.NodeID, expected symbols.TypeID) symbols.TypeID {
	d := at.tree.Lambda(id)
	target, mt, ok := at.samType(expected)
	lenv := env.ForLambda(at.newScope(env))
	for i, p := range d.Params {
		v := at.tree.Var(p)
		if v == nil {
			continue
		}
		typ := at.a.unknownType()
		switch {
		case v.Type.IsValid() && at.tree.Kind(v.Type) != ast.KindVarType:
			typ = at.t.ArrayOfDims(at.a.typeTree(at.u, lenv, v.Type), v.Dims)
		case ok && i < len(mt.Params):
			typ = at.ground(mt.Params[i])
			if v.Type.IsValid() {
				at.u.setType(v.Type, typ)
			}
		}
		at.local(lenv, p, v.Name, v.NameSpan, typ, modFlags(v.Mods.Flags)|symbols.FlagParameter)
	}

	result := symbols.NoTypeID
	if ok {
		result = mt.Result
	}
	if at.tree.Kind(d.Body) == ast.KindBlock {
		at.returns = append(at.returns, result)
		at.stmt(lenv, d.Body)
		at.returns = at.returns[:len(at.returns)-1]
	} else {
		at.expr(lenv, d.Body, result)
	}
	if !ok {
		return at.a.unknownType()
	}
	return target
}

// methodRef resolves `T::m`, `expr::m` and `T::new` against the functional
// interface target. For a type qualifier the static form is tried first,
// then the unbound receiver form taking the first parameter as receiver.
func (at *attr) methodRef(env *resolve.Env, id ast.NodeID, expected symbols.TypeID) symbols.TypeID {
	d := at.tree.MethodRef(id)
	sp := at.tree.Span(id)
	target, mt, ok := at.samType(expected)

	site, typeSite := at.refTarget(env, d.Target)
	if at.t.IsUnknown(site) {
		return at.a.unknownType()
	}

	res := resolve.Resolved{Sym: at.a.unknownSym()}
	switch {
	case d.Name == "new":
		if at.t.Kind(site) == symbols.TyArray {
			break
		}
		if ok {
			res = at.a.quiet.FindConstructor(env, site, mt.Params, nil, sp)
		} else {
			res.Sym = at.uniqueMember(site, symbols.ConstructorName)
		}
	case !ok:
		res.Sym = at.uniqueMember(site, d.Name)
	case typeSite:
		res = at.a.quiet.FindMethod(env, site, d.Name, mt.Params, nil, sp)
		if (!at.resolved(res) || !at.t.Flags(res.Sym).IsStatic()) && len(mt.Params) > 0 {
			if unbound := at.a.quiet.FindMethod(env, site, d.Name, mt.Params[1:], nil, sp); at.resolved(unbound) && !at.t.Flags(unbound.Sym).IsStatic() {
				res = unbound
			}
		}
	default:
		res = at.a.quiet.FindMethod(env, site, d.Name, mt.Params, nil, sp)
	}

	switch {
	case d.Name == "new" && at.t.Kind(site) == symbols.TyArray:
		// int[]::new has no constructor symbol
	case at.resolved(res):
		at.use(id, sp, res.Sym)
	case ok:
		at.warn(diag.ResUnknownMethod, sp, "cannot find method %s in %s", d.Name, at.t.TypeString(site))
	}
	if !ok {
		return at.a.unknownType()
	}
	return target
}

// refTarget types the qualifier of a method reference and reports whether
// it names a type rather than a value.
func (at *attr) refTarget(env *resolve.Env, tid ast.NodeID) (symbols.TypeID, bool) {
	switch k := at.tree.Kind(tid); {
	case k.IsTypeTree():
		return at.a.typeTree(at.u, env, tid), true
	case k == ast.KindIdent, k == ast.KindFieldAccess:
		sym, typ := at.name(env, tid)
		at.u.setType(tid, typ)
		s := at.t.Sym(sym)
		if s == nil || s.Kind == symbols.SymPackage || !typ.IsValid() {
			return at.a.unknownType(), false
		}
		return typ, s.Kind == symbols.SymType || s.Kind == symbols.SymTypeVar
	}
	return at.expr(env, tid, symbols.NoTypeID), false
}

func (at *attr) resolved(res resolve.Resolved) bool {
	return res.Sym.IsValid() && !at.t.IsUnknownSym(res.Sym)
}

// uniqueMember finds the method named name declared by the most derived
// class of site that declares one, provided it is not overloaded there. It
// binds method references whose target type is not known.
func (at *attr) uniqueMember(site symbols.TypeID, name string) symbols.SymbolID {
	for _, sup := range at.t.Supertypes(site) {
		cls := at.t.TypeSym(sup)
		if !cls.IsValid() || at.t.IsUnknownSym(cls) {
			continue
		}
		var found []symbols.SymbolID
		for _, m := range at.t.Lookup(at.t.Members(cls), name) {
			if at.t.MustSym(m).Kind == symbols.SymMethod {
				found = append(found, m)
			}
		}
		if len(found) == 1 {
			return found[0]
		}
		if len(found) > 1 || name == symbols.ConstructorName {
			break
		}
	}
	return at.a.unknownSym()
}
