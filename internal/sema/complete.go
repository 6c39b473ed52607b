package sema

import (
	"jsema/internal/ast"
	"jsema/internal/resolve"
	"jsema/internal/source"
	"jsema/internal/symbols"
	"jsema/internal/trace"
)

// completeClass is the source completer: it binds the header of a class
// declared in a unit and enters its members. Bodies are left to Resolve.
func (a *Analyzer) completeClass(sym symbols.SymbolID) {
	d := a.decls[sym]
	if d == nil {
		return
	}
	u := d.unit
	u.enterImports(a)
	s := a.t.MustSym(sym)
	span := trace.Begin(a.tracer, trace.ScopeClass, "complete_source", 0).WithExtra("class", s.Class.BinaryName)
	defer span.End("")

	c := u.Tree.Class(d.node)
	if c == nil {
		return
	}
	if !s.Flags.Has(symbols.FlagAnonymous) {
		a.classHeader(u, sym, d.node, c)
	}
	body := a.bodyEnv(sym)
	a.metadata(u, a.headerEnv(sym), sym, c.Mods.Annotations)
	a.classMembers(u, body, sym, d.node, c)
}

func (a *Analyzer) classHeader(u *Unit, sym symbols.SymbolID, node ast.NodeID, c *ast.ClassData) {
	s := a.t.MustSym(sym)
	env := a.headerEnv(sym)

	// type parameters are visible to their own bounds
	s.Class.TypeParams = a.newTypeParams(u, sym, c.TypeParams, s.Class.TypeParamScope)
	a.bindBounds(u, env, s.Class.TypeParams)

	kind := u.Tree.Kind(node)
	switch kind {
	case ast.KindClass:
		switch {
		case c.Super.IsValid():
			s.Class.Super = a.typeTree(u, env, c.Super)
		case s.Class.BinaryName != "java/lang/Object":
			s.Class.Super = a.t.ObjectType()
		}
	case ast.KindEnum:
		enum := a.loader.ClassSymbol("java/lang/Enum")
		s.Class.Super = a.t.Parameterize(enum, []symbols.TypeID{s.Type})
	case ast.KindRecord:
		s.Class.Super = a.t.ClassType("java/lang/Record")
	}
	for _, i := range c.Interfaces {
		s.Class.Interfaces = append(s.Class.Interfaces, a.typeTree(u, env, i))
	}
	if kind == ast.KindAnnotationType {
		s.Class.Interfaces = append(s.Class.Interfaces, a.t.ClassType("java/lang/annotation/Annotation"))
	}
}

func (a *Analyzer) classMembers(u *Unit, env *resolve.Env, sym symbols.SymbolID, node ast.NodeID, c *ast.ClassData) {
	s := a.t.MustSym(sym)
	members := s.Class.Members
	kind := u.Tree.Kind(node)
	isInterface := s.Flags.IsInterface()

	for _, cn := range c.Constants {
		ec := u.Tree.EnumConstant(cn)
		if ec == nil {
			continue
		}
		f := a.t.NewVar(symbols.MemberSpec{
			Name:  ec.Name,
			Owner: sym,
			Flags: symbols.FlagPublic | symbols.FlagStatic | symbols.FlagFinal | symbols.FlagEnum,
			Span:  ec.NameSpan,
			Decl:  symbols.Decl{File: u.fileID(), Node: cn},
		}, s.Type)
		a.enterMember(members, f, ec.NameSpan, ec.Name, sym)
		u.declare(cn, f)
		a.metadata(u, env, f, ec.Mods.Annotations)
	}

	var components []symbols.SymbolID
	if kind == ast.KindRecord {
		components = a.recordComponents(u, env, sym, c.Components)
	}

	ctors := 0
	for _, m := range c.Members {
		switch u.Tree.Kind(m) {
		case ast.KindField:
			a.field(u, env, sym, m, isInterface)
		case ast.KindMethod:
			a.method(u, env, sym, m, kind)
		case ast.KindConstructor:
			ctors++
			a.constructor(u, env, sym, m, kind, c.Components)
		}
	}

	switch kind {
	case ast.KindEnum:
		a.enumMethods(sym)
	case ast.KindRecord:
		a.recordMembers(sym, components, ctors)
	}
	if ctors == 0 && !isInterface && !s.Flags.Has(symbols.FlagAnonymous) && kind != ast.KindRecord {
		flags := s.Flags & symbols.AccessMask
		if kind == ast.KindEnum {
			flags = symbols.FlagPrivate
		}
		ctor := a.t.NewMethod(symbols.MemberSpec{Name: symbols.ConstructorName, Owner: sym, Flags: flags, Span: s.Span})
		a.t.SetMethodSignature(ctor, nil, a.t.Builtins().Void, nil)
		a.t.Enter(members, ctor)
	}
}

func (a *Analyzer) enterMember(scope symbols.ScopeID, sym symbols.SymbolID, sp source.Span, name string, owner symbols.SymbolID) {
	if !a.t.Enter(scope, sym) {
		a.duplicate(sp, name, owner)
	}
}

func (a *Analyzer) field(u *Unit, env *resolve.Env, owner symbols.SymbolID, node ast.NodeID, inInterface bool) {
	v := u.Tree.Var(node)
	if v == nil || v.Name == "" {
		return
	}
	flags := modFlags(v.Mods.Flags)
	if inInterface {
		flags |= symbols.FlagPublic | symbols.FlagStatic | symbols.FlagFinal
	}
	typ := a.t.ArrayOfDims(a.typeTree(u, env, v.Type), v.Dims)
	f := a.t.NewVar(symbols.MemberSpec{
		Name:  v.Name,
		Owner: owner,
		Flags: flags,
		Span:  v.NameSpan,
		Decl:  symbols.Decl{File: u.fileID(), Node: node},
	}, typ)
	a.enterMember(a.t.MustSym(owner).Class.Members, f, v.NameSpan, v.Name, owner)
	u.declare(node, f)
	a.metadata(u, env, f, v.Mods.Annotations)
}

func (a *Analyzer) method(u *Unit, env *resolve.Env, owner symbols.SymbolID, node ast.NodeID, ownerKind ast.Kind) {
	md := u.Tree.Method(node)
	if md == nil || md.Name == "" {
		return
	}
	flags := modFlags(md.Mods.Flags)
	if ownerKind == ast.KindInterface || ownerKind == ast.KindAnnotationType {
		if !flags.IsPrivate() {
			flags |= symbols.FlagPublic
		}
		if !md.Body.IsValid() && flags&(symbols.FlagStatic|symbols.FlagDefault|symbols.FlagPrivate) == 0 {
			flags |= symbols.FlagAbstract
		}
	}
	m := a.newMethod(u, env, owner, node, md, flags)
	if md.Default.IsValid() {
		if val, ok := a.elementValue(u, env, md.Default); ok {
			a.t.MustSym(m).Method.DefaultValue = &symbols.AnnotationValue{Name: md.Name, Value: val}
		}
	}
}

func (a *Analyzer) constructor(u *Unit, env *resolve.Env, owner symbols.SymbolID, node ast.NodeID, ownerKind ast.Kind, components []ast.NodeID) {
	md := u.Tree.Method(node)
	if md == nil {
		return
	}
	flags := modFlags(md.Mods.Flags)
	if ownerKind == ast.KindEnum {
		flags = flags&^symbols.AccessMask | symbols.FlagPrivate
	}
	if ownerKind == ast.KindRecord && len(md.Params) == 0 && len(components) > 0 {
		// compact canonical constructor: the header supplies the parameters
		cp := *md
		cp.Params = components
		md = &cp
	}
	a.newMethod(u, env, owner, node, md, flags)
}

// newMethod creates a method or constructor symbol from its declaration:
// type parameters first, then parameter, result and thrown types in the
// method's own environment.
func (a *Analyzer) newMethod(u *Unit, env *resolve.Env, owner symbols.SymbolID, node ast.NodeID, md *ast.MethodData, flags symbols.Flags) symbols.SymbolID {
	m := a.t.NewMethod(symbols.MemberSpec{
		Name:  md.Name,
		Owner: owner,
		Flags: flags,
		Span:  md.NameSpan,
		Decl:  symbols.Decl{File: u.fileID(), Node: node},
	})
	ms := a.t.MustSym(m)
	if md.NameSpan.Empty() {
		ms.Span = u.Tree.Span(node)
	}
	ms.Method.TypeParams = a.newTypeParams(u, m, md.TypeParams, ms.Method.TypeParamScope)
	menv := env.ForMethod(m, ms.Method.ParamScope, flags.IsStatic())
	a.bindBounds(u, menv, ms.Method.TypeParams)

	params := make([]symbols.SymbolID, 0, len(md.Params))
	for _, pn := range md.Params {
		p := u.Tree.Var(pn)
		if p == nil {
			continue
		}
		typ := a.t.ArrayOfDims(a.typeTree(u, menv, p.Type), p.Dims)
		if p.Varargs {
			typ = a.t.ArrayOf(typ)
			ms.Flags |= symbols.FlagVarargs
		}
		ps := a.t.NewVar(symbols.MemberSpec{
			Name:  p.Name,
			Owner: m,
			Flags: modFlags(p.Mods.Flags) | symbols.FlagParameter,
			Span:  p.NameSpan,
			Decl:  symbols.Decl{File: u.fileID(), Node: pn},
		}, typ)
		if _, shared := u.syms[pn]; !shared {
			// compact constructors share the record header nodes
			u.declare(pn, ps)
		}
		a.metadata(u, menv, ps, p.Mods.Annotations)
		params = append(params, ps)
	}
	result := a.t.Builtins().Void
	if md.Name != symbols.ConstructorName {
		result = a.typeTree(u, menv, md.Result)
	}
	var thrown []symbols.TypeID
	for _, th := range md.Throws {
		thrown = append(thrown, a.typeTree(u, menv, th))
	}
	a.t.SetMethodSignature(m, params, result, thrown)
	a.enterMember(a.t.MustSym(owner).Class.Members, m, ms.Span, md.Name, owner)
	u.declare(node, m)
	a.metadata(u, env, m, md.Mods.Annotations)
	return m
}

// enumMethods adds the implicit values() and valueOf(String) of an enum.
func (a *Analyzer) enumMethods(enum symbols.SymbolID) {
	s := a.t.MustSym(enum)
	flags := symbols.FlagPublic | symbols.FlagStatic
	values := a.t.NewMethod(symbols.MemberSpec{Name: "values", Owner: enum, Flags: flags, Span: s.Span})
	a.t.SetMethodSignature(values, nil, a.t.ArrayOf(s.Type), nil)
	a.t.Enter(s.Class.Members, values)

	valueOf := a.t.NewMethod(symbols.MemberSpec{Name: "valueOf", Owner: enum, Flags: flags, Span: s.Span})
	name := a.t.NewVar(symbols.MemberSpec{Name: "name", Owner: valueOf, Flags: symbols.FlagParameter}, a.t.StringType())
	a.t.SetMethodSignature(valueOf, []symbols.SymbolID{name}, s.Type, nil)
	a.t.Enter(s.Class.Members, valueOf)
}

// recordComponents enters the private final fields backing the record
// header and returns them in declaration order.
func (a *Analyzer) recordComponents(u *Unit, env *resolve.Env, rec symbols.SymbolID, nodes []ast.NodeID) []symbols.SymbolID {
	members := a.t.MustSym(rec).Class.Members
	out := make([]symbols.SymbolID, 0, len(nodes))
	for _, n := range nodes {
		v := u.Tree.Var(n)
		if v == nil {
			continue
		}
		typ := a.t.ArrayOfDims(a.typeTree(u, env, v.Type), v.Dims)
		if v.Varargs {
			typ = a.t.ArrayOf(typ)
		}
		f := a.t.NewVar(symbols.MemberSpec{
			Name:  v.Name,
			Owner: rec,
			Flags: symbols.FlagPrivate | symbols.FlagFinal | symbols.FlagRecord,
			Span:  v.NameSpan,
			Decl:  symbols.Decl{File: u.fileID(), Node: n},
		}, typ)
		a.enterMember(members, f, v.NameSpan, v.Name, rec)
		u.declare(n, f)
		a.metadata(u, env, f, v.Mods.Annotations)
		out = append(out, f)
	}
	return out
}

// recordMembers adds the accessors not declared explicitly and the
// canonical constructor when no constructor was declared.
func (a *Analyzer) recordMembers(rec symbols.SymbolID, components []symbols.SymbolID, ctors int) {
	s := a.t.MustSym(rec)
	for _, f := range components {
		fs := a.t.MustSym(f)
		declared := false
		for _, m := range a.t.Lookup(s.Class.Members, fs.Name) {
			if ms := a.t.MustSym(m); ms.Kind == symbols.SymMethod && len(ms.Method.Params) == 0 {
				declared = true
			}
		}
		if declared {
			continue
		}
		acc := a.t.NewMethod(symbols.MemberSpec{Name: fs.Name, Owner: rec, Flags: symbols.FlagPublic, Span: fs.Span, Decl: fs.Decl})
		a.t.SetMethodSignature(acc, nil, fs.Type, nil)
		a.t.Enter(s.Class.Members, acc)
	}
	if ctors > 0 {
		return
	}
	ctor := a.t.NewMethod(symbols.MemberSpec{Name: symbols.ConstructorName, Owner: rec, Flags: s.Flags & symbols.AccessMask, Span: s.Span})
	params := make([]symbols.SymbolID, len(components))
	for i, f := range components {
		fs := a.t.MustSym(f)
		params[i] = a.t.NewVar(symbols.MemberSpec{Name: fs.Name, Owner: ctor, Flags: symbols.FlagParameter, Span: fs.Span}, fs.Type)
	}
	a.t.SetMethodSignature(ctor, params, a.t.Builtins().Void, nil)
	a.t.Enter(s.Class.Members, ctor)
}
