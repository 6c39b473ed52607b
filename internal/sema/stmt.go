package sema

import (
	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/resolve"
	"jsema/internal/symbols"
)

func (at *attr) stmt(env *resolve.Env, id ast.NodeID) {
	if !id.IsValid() {
		return
	}
	tree := at.tree
	boolean := at.t.Builtins().Boolean
	switch k := tree.Kind(id); {
	case k == ast.KindBlock:
		benv := env.ForBlock(at.newScope(env))
		for _, s := range tree.Block(id).Stmts {
			at.stmt(benv, s)
		}
	case k == ast.KindLocalVar:
		at.localVar(env, id)
	case k.IsTypeDecl():
		cls := at.a.declareLocal(at.u, id, env)
		if cls.IsValid() {
			if !at.t.Enter(scopeOf(env), cls) {
				c := tree.Class(id)
				at.warn(diag.ResDuplicateSymbol, c.NameSpan, "class %s is already defined in this scope", c.Name)
			}
			at.classBody(at.a.bodyEnv(cls), cls, id)
		}
	case k == ast.KindExprStmt:
		at.expr(env, tree.Stmt(id).Expr, symbols.NoTypeID)
	case k == ast.KindReturn:
		s := tree.Stmt(id)
		if s.Expr.IsValid() {
			at.expr(env, s.Expr, at.currentReturn())
		}
	case k == ast.KindThrow, k == ast.KindSynchronized:
		s := tree.Stmt(id)
		at.expr(env, s.Expr, symbols.NoTypeID)
		at.stmt(env, s.Body)
	case k == ast.KindYield:
		at.yield(env, tree.Stmt(id).Expr)
	case k == ast.KindIf:
		s := tree.Stmt(id)
		at.expr(env, s.Cond, boolean)
		at.stmt(env, s.Then)
		at.stmt(env, s.Else)
	case k == ast.KindWhile, k == ast.KindDoWhile:
		s := tree.Stmt(id)
		at.expr(env, s.Cond, boolean)
		at.stmt(env, s.Body)
	case k == ast.KindFor:
		s := tree.Stmt(id)
		fenv := env.ForBlock(at.newScope(env))
		for _, in := range s.Init {
			if tree.Kind(in) == ast.KindLocalVar {
				at.localVar(fenv, in)
			} else {
				at.expr(fenv, in, symbols.NoTypeID)
			}
		}
		if s.Cond.IsValid() {
			at.expr(fenv, s.Cond, boolean)
		}
		for _, up := range s.Update {
			at.expr(fenv, up, symbols.NoTypeID)
		}
		at.stmt(fenv, s.Body)
	case k == ast.KindForEach:
		at.forEach(env, id)
	case k == ast.KindTry:
		at.try(env, id)
	case k == ast.KindSwitch:
		at.switchBody(env, id, symbols.NoTypeID)
	case k == ast.KindLabeled:
		at.stmt(env, tree.Stmt(id).Body)
	case k == ast.KindAssert:
		s := tree.Stmt(id)
		at.expr(env, s.Cond, boolean)
		if s.Expr.IsValid() {
			at.expr(env, s.Expr, symbols.NoTypeID)
		}
	}
}

func (at *attr) currentReturn() symbols.TypeID {
	if len(at.returns) == 0 {
		return symbols.NoTypeID
	}
	return at.returns[len(at.returns)-1]
}

// localVar declares a local variable; `var` takes the type of its
// initializer.
func (at *attr) localVar(env *resolve.Env, id ast.NodeID) {
	v := at.tree.Var(id)
	if v == nil {
		return
	}
	var typ symbols.TypeID
	if at.tree.Kind(v.Type) == ast.KindVarType {
		typ = at.a.unknownType()
		if v.Init.IsValid() {
			typ = at.expr(env, v.Init, symbols.NoTypeID)
			if at.t.Kind(typ) == symbols.TyNull {
				typ = at.a.unknownType()
			}
		}
		at.u.setType(v.Type, typ)
	} else {
		typ = at.t.ArrayOfDims(at.a.typeTree(at.u, env, v.Type), v.Dims)
		if v.Init.IsValid() {
			at.expr(env, v.Init, typ)
		}
	}
	sym := at.local(env, id, v.Name, v.NameSpan, typ, modFlags(v.Mods.Flags))
	at.a.metadata(at.u, env, sym, v.Mods.Annotations)
}

// forEach types the loop variable from the array element or the Iterable
// argument of the iterated expression.
func (at *attr) forEach(env *resolve.Env, id ast.NodeID) {
	s := at.tree.Stmt(id)
	fenv := env.ForBlock(at.newScope(env))
	iter := at.expr(env, s.Expr, symbols.NoTypeID)
	elem := at.elementType(iter)

	v := at.tree.Var(s.Var)
	if v != nil {
		typ := elem
		if at.tree.Kind(v.Type) == ast.KindVarType {
			at.u.setType(v.Type, elem)
		} else {
			typ = at.t.ArrayOfDims(at.a.typeTree(at.u, fenv, v.Type), v.Dims)
		}
		sym := at.local(fenv, s.Var, v.Name, v.NameSpan, typ, modFlags(v.Mods.Flags))
		at.a.metadata(at.u, fenv, sym, v.Mods.Annotations)
	}
	at.stmt(fenv, s.Body)
}

func (at *attr) elementType(iter symbols.TypeID) symbols.TypeID {
	ty, ok := at.t.Type(iter)
	if !ok || ty.IsUnknown() {
		return at.a.unknownType()
	}
	if ty.Kind == symbols.TyArray {
		return ty.Elem
	}
	iterable := at.a.loader.ClassSymbol("java/lang/Iterable")
	as := at.t.AsSuper(iter, iterable)
	if !as.IsValid() {
		return at.a.unknownType()
	}
	args := at.t.TypeArgs(as)
	if len(args) != 1 {
		return at.t.ObjectType()
	}
	arg := at.t.MustType(args[0])
	if arg.Kind == symbols.TyWildcard {
		if arg.Bound == symbols.BoundExtends {
			return arg.Elem
		}
		return at.t.ObjectType()
	}
	return args[0]
}

func (at *attr) try(env *resolve.Env, id ast.NodeID) {
	tr := at.tree.Try(id)
	renv := env.ForBlock(at.newScope(env))
	for _, res := range tr.Resources {
		if at.tree.Kind(res) == ast.KindLocalVar {
			at.localVar(renv, res)
		} else {
			at.expr(renv, res, symbols.NoTypeID)
		}
	}
	at.stmt(renv, tr.Body)
	for _, cid := range tr.Catches {
		c := at.tree.Stmt(cid)
		cenv := env.ForBlock(at.newScope(env))
		if p := at.tree.Var(c.Var); p != nil {
			typ := at.a.typeTree(at.u, cenv, p.Type)
			at.local(cenv, c.Var, p.Name, p.NameSpan, typ, modFlags(p.Mods.Flags)|symbols.FlagParameter)
		}
		at.stmt(cenv, c.Body)
	}
	at.stmt(env, tr.Finally)
}

// switchBody walks a switch statement or expression. Labels naming enum
// constants resolve against the selector's enum. For switch expressions
// the value types of the arms are returned.
func (at *attr) switchBody(env *resolve.Env, id ast.NodeID, expected symbols.TypeID) []symbols.TypeID {
	sw := at.tree.Switch(id)
	sel := at.expr(env, sw.Expr, symbols.NoTypeID)
	enum := at.t.TypeSym(sel)
	isEnum := enum.IsValid() && !at.t.IsUnknownSym(enum) && at.t.Flags(enum).IsEnum()

	isExpr := at.tree.Kind(id) == ast.KindSwitchExpr
	if isExpr {
		at.yields = append(at.yields, nil)
		at.yieldTo = append(at.yieldTo, expected)
	}
	senv := env.ForBlock(at.newScope(env))
	for _, cid := range sw.Cases {
		cs := at.tree.Case(cid)
		for _, l := range cs.Labels {
			if isEnum && at.tree.Kind(l) == ast.KindIdent {
				name := at.tree.Ident(l).Name
				f := at.r.FindField(env, sel, name)
				if at.t.IsUnknownSym(f) {
					at.warn(diag.ResUnknownSymbol, at.tree.Span(l), "cannot resolve enum constant %s", name)
				}
				at.use(l, at.tree.Span(l), f)
				at.u.setType(l, sel)
				continue
			}
			at.expr(senv, l, sel)
		}
		cenv := senv
		if cs.Arrow {
			cenv = senv.ForBlock(at.newScope(senv))
		}
		for _, s := range cs.Body {
			if isExpr && cs.Arrow && len(cs.Body) == 1 && at.tree.Kind(s) == ast.KindExprStmt {
				at.yield(cenv, at.tree.Stmt(s).Expr)
				continue
			}
			at.stmt(cenv, s)
		}
	}
	if !isExpr {
		return nil
	}
	out := at.yields[len(at.yields)-1]
	at.yields = at.yields[:len(at.yields)-1]
	at.yieldTo = at.yieldTo[:len(at.yieldTo)-1]
	return out
}

// yield types a switch expression arm value. A throw arm yields nothing.
func (at *attr) yield(env *resolve.Env, e ast.NodeID) {
	if len(at.yields) == 0 {
		at.expr(env, e, symbols.NoTypeID)
		return
	}
	typ := at.expr(env, e, at.yieldTo[len(at.yieldTo)-1])
	top := len(at.yields) - 1
	at.yields[top] = append(at.yields[top], typ)
}
