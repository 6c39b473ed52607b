package sema

import (
	"fmt"

	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/resolve"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

// attr is the type-and-reference walk over one unit. Every expression gets
// a type, every name a symbol and every resolved reference a usage.
type attr struct {
	a    *Analyzer
	u    *Unit
	t    *symbols.Table
	r    *resolve.Resolver
	tree *ast.Tree

	returns []symbols.TypeID   // expected result of the enclosing method or lambda
	yields  [][]symbols.TypeID // value types of enclosing switch expressions
	yieldTo []symbols.TypeID
	sams    map[symbols.SymbolID]symbols.SymbolID
}

// classBody walks the initializers and bodies of a class declaration and
// of the classes nested in it.
func (at *attr) classBody(env *resolve.Env, cls symbols.SymbolID, node ast.NodeID) {
	at.t.Complete(cls)
	c := at.tree.Class(node)
	if c == nil {
		return
	}
	clsType := at.t.SymType(cls)
	for _, cn := range c.Constants {
		ec := at.tree.EnumConstant(cn)
		if ec == nil {
			continue
		}
		args := at.args(env, ec.Args)
		res := at.r.FindConstructor(env, clsType, args, nil, ec.NameSpan)
		at.deferred(env, ec.Args, res)
		at.ref(cn, ec.NameSpan, res.Sym)
		if ec.Body.IsValid() {
			anon := at.a.declareLocal(at.u, ec.Body, env)
			at.t.MustSym(anon).Class.Super = clsType
			at.classBody(at.a.bodyEnv(anon), anon, ec.Body)
		}
	}
	for _, m := range c.Members {
		switch k := at.tree.Kind(m); {
		case k == ast.KindField:
			at.fieldInit(env, m)
		case k == ast.KindMethod || k == ast.KindConstructor:
			at.methodBody(env, m)
		case k == ast.KindInitializer:
			in := at.tree.Initializer(m)
			benv := env
			if in.Static {
				benv = staticEnv(env)
			}
			at.returns = append(at.returns, at.t.Builtins().Void)
			at.stmt(benv, in.Body)
			at.returns = at.returns[:len(at.returns)-1]
		case k.IsTypeDecl():
			if inner := at.u.syms[m]; inner.IsValid() {
				at.classBody(at.a.bodyEnv(inner), inner, m)
			}
		}
	}
}

// staticEnv derives an environment without `this`.
func staticEnv(env *resolve.Env) *resolve.Env {
	s := env.ForBlock(symbols.NoScopeID)
	s.Static = true
	return s
}

func (at *attr) fieldInit(env *resolve.Env, node ast.NodeID) {
	v := at.tree.Var(node)
	f := at.u.syms[node]
	if v == nil || !v.Init.IsValid() || !f.IsValid() {
		return
	}
	fenv := env
	if at.t.MustSym(f).Flags.IsStatic() {
		fenv = staticEnv(env)
	}
	at.expr(fenv, v.Init, at.t.MustSym(f).Type)
}

func (at *attr) methodBody(env *resolve.Env, node ast.NodeID) {
	md := at.tree.Method(node)
	m := at.u.syms[node]
	if md == nil || !m.IsValid() {
		return
	}
	ms := at.t.MustSym(m)
	menv := env.ForMethod(m, ms.Method.ParamScope, ms.Flags.IsStatic())
	if md.Body.IsValid() {
		at.returns = append(at.returns, ms.Method.Result)
		at.stmt(menv, md.Body)
		at.returns = at.returns[:len(at.returns)-1]
	}
}

// --- bindings -----------------------------------------------------------------

// use binds node to sym and records the reference and the usage.
func (at *attr) use(node ast.NodeID, sp source.Span, sym symbols.SymbolID) {
	at.u.bind(node, sym)
	at.ref(node, sp, sym)
}

// ref records a reference and a usage without rebinding node.
func (at *attr) ref(node ast.NodeID, sp source.Span, sym symbols.SymbolID) {
	if !sym.IsValid() || at.t.IsUnknownSym(sym) {
		return
	}
	at.u.addRef(sp, node, sym)
	if at.t.MustSym(sym).Kind != symbols.SymPackage {
		at.t.AddUsage(sym, symbols.Usage{Span: sp, Node: node})
	}
}

func (at *attr) warn(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportWarning(at.a.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

// scopeOf returns the innermost local scope of env.
func scopeOf(env *resolve.Env) symbols.ScopeID {
	for e := env; e != nil; e = e.Outer {
		if e.Scope.IsValid() {
			return e.Scope
		}
	}
	return symbols.NoScopeID
}

func (at *attr) newScope(env *resolve.Env) symbols.ScopeID {
	owner := env.Method
	if !owner.IsValid() {
		owner = env.Class
	}
	return at.t.NewScope(symbols.ScopeOrdinary, owner, symbols.NoScopeID)
}

// local declares a local variable, parameter or pattern binding in the
// innermost scope of env.
func (at *attr) local(env *resolve.Env, node ast.NodeID, name string, sp source.Span, typ symbols.TypeID, flags symbols.Flags) symbols.SymbolID {
	owner := env.Method
	if !owner.IsValid() {
		owner = env.Class
	}
	v := at.t.NewVar(symbols.MemberSpec{
		Name:  name,
		Owner: owner,
		Flags: flags | symbols.FlagLocal,
		Span:  sp,
		Decl:  symbols.Decl{File: at.u.fileID(), Node: node},
	}, typ)
	if !at.t.Enter(scopeOf(env), v) {
		at.warn(diag.ResDuplicateSymbol, sp, "variable %s is already defined", name)
	}
	at.u.declare(node, v)
	return v
}

// varType is the type of a variable symbol as seen from env: fields of
// generic ancestors are viewed through the enclosing class.
func (at *attr) varType(env *resolve.Env, v symbols.SymbolID) symbols.TypeID {
	s := at.t.MustSym(v)
	owner := at.t.MustSym(s.Owner)
	if owner.Kind != symbols.SymType || s.Flags.IsStatic() || !env.Class.IsValid() {
		return s.Type
	}
	return at.a.gen.AsMemberOf(at.t.ThisType(env.Class), v)
}

// ground replaces the wildcard arguments of a parameterized type by their
// bounds, the form a lambda or diamond target is read in.
func (at *attr) ground(typ symbols.TypeID) symbols.TypeID {
	ty, ok := at.t.Type(typ)
	if !ok || ty.Kind != symbols.TyParameterized {
		return typ
	}
	args := at.t.TypeArgs(typ)
	changed := false
	for i, arg := range args {
		w := at.t.MustType(arg)
		if w.Kind != symbols.TyWildcard {
			continue
		}
		changed = true
		if w.Bound == symbols.BoundUnbounded {
			args[i] = at.t.ObjectType()
		} else {
			args[i] = w.Elem
		}
	}
	if !changed {
		return typ
	}
	return at.t.Parameterize(ty.Sym, args)
}

// functionalMethod returns the single abstract method of a functional
// interface, NoSymbolID for other types.
func (at *attr) functionalMethod(iface symbols.SymbolID) symbols.SymbolID {
	if sam, ok := at.sams[iface]; ok {
		return sam
	}
	if at.sams == nil {
		at.sams = make(map[symbols.SymbolID]symbols.SymbolID)
	}
	at.sams[iface] = symbols.NoSymbolID
	if !at.t.Flags(iface).IsInterface() {
		return symbols.NoSymbolID
	}
	var found symbols.SymbolID
	seen := map[string]bool{}
	visited := map[symbols.SymbolID]bool{}
	queue := []symbols.SymbolID{iface}
	for len(queue) > 0 && len(visited) <= symbols.MaxClosureDepth {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, m := range at.t.ScopeSymbols(at.t.Members(cur)) {
			ms := at.t.MustSym(m)
			if ms.Kind != symbols.SymMethod || !ms.Flags.IsAbstract() || ms.Flags.IsStatic() || objectMethod(ms) {
				continue
			}
			key := fmt.Sprintf("%s/%d", ms.Name, len(ms.Method.Params))
			if seen[key] {
				continue
			}
			seen[key] = true
			if found.IsValid() {
				return symbols.NoSymbolID
			}
			found = m
		}
		for _, sup := range at.t.Interfaces(cur) {
			if sym := at.t.TypeSym(sup); sym.IsValid() && !at.t.IsUnknownSym(sym) {
				queue = append(queue, sym)
			}
		}
	}
	at.sams[iface] = found
	return found
}

// objectMethod reports abstract redeclarations of public Object methods,
// which do not count towards a functional interface.
func objectMethod(m *symbols.Symbol) bool {
	switch m.Name {
	case "equals":
		return len(m.Method.Params) == 1
	case "hashCode", "toString":
		return len(m.Method.Params) == 0
	}
	return false
}

// samType returns the grounded target type and the method type of its
// functional method as seen from it.
func (at *attr) samType(expected symbols.TypeID) (symbols.TypeID, symbols.Type, bool) {
	if !expected.IsValid() || at.t.IsUnknown(expected) {
		return symbols.NoTypeID, symbols.Type{}, false
	}
	ty := at.t.MustType(expected)
	if ty.Kind != symbols.TyClass && ty.Kind != symbols.TyParameterized {
		return symbols.NoTypeID, symbols.Type{}, false
	}
	sam := at.functionalMethod(ty.Sym)
	if !sam.IsValid() {
		return symbols.NoTypeID, symbols.Type{}, false
	}
	target := at.ground(expected)
	mt, ok := at.t.Type(at.a.gen.AsMemberOf(target, sam))
	if !ok || mt.Kind != symbols.TyMethod {
		return symbols.NoTypeID, symbols.Type{}, false
	}
	return target, mt, true
}
