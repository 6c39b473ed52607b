package ast

// Children returns the direct children of id in source order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	push := func(ids ...NodeID) {
		for _, c := range ids {
			if c.IsValid() {
				out = append(out, c)
			}
		}
	}
	switch {
	case n.Kind == KindCompilationUnit:
		u := t.Unit(id)
		push(u.Imports...)
		push(u.Types...)
	case n.Kind.IsTypeDecl():
		c := t.Class(id)
		push(c.Mods.Annotations...)
		push(c.TypeParams...)
		push(c.Super)
		push(c.Interfaces...)
		push(c.Components...)
		push(c.Constants...)
		push(c.Members...)
	case n.Kind == KindMethod || n.Kind == KindConstructor:
		m := t.Method(id)
		push(m.Mods.Annotations...)
		push(m.TypeParams...)
		push(m.Result)
		push(m.Params...)
		push(m.Throws...)
		push(m.Body, m.Default)
	case n.Kind == KindField || n.Kind == KindLocalVar || n.Kind == KindParameter:
		v := t.Var(id)
		push(v.Mods.Annotations...)
		push(v.Type, v.Init)
	case n.Kind == KindEnumConstant:
		c := t.EnumConstant(id)
		push(c.Mods.Annotations...)
		push(c.Args...)
		push(c.Body)
	case n.Kind == KindTypeParameter:
		push(t.TypeParam(id).Bounds...)
	case n.Kind == KindAnnotation:
		for _, a := range t.Annotation(id).Args {
			push(a.Value)
		}
	case n.Kind == KindInitializer:
		push(t.Initializer(id).Body)
	case n.Kind == KindBlock:
		push(t.Block(id).Stmts...)
	case n.Kind == KindTry:
		d := t.Try(id)
		push(d.Resources...)
		push(d.Body)
		push(d.Catches...)
		push(d.Finally)
	case n.Kind == KindSwitch || n.Kind == KindSwitchExpr:
		d := t.Switch(id)
		push(d.Expr)
		push(d.Cases...)
	case n.Kind == KindCase:
		d := t.Case(id)
		push(d.Labels...)
		push(d.Body...)
	case n.Kind.IsStmt():
		d := t.Stmt(id)
		push(d.Init...)
		push(d.Var, d.Expr, d.Cond)
		push(d.Update...)
		push(d.Then, d.Else, d.Body)
	case n.Kind == KindFieldAccess:
		push(t.FieldAccess(id).Target)
	case n.Kind == KindMethodCall:
		d := t.Call(id)
		push(d.Target)
		push(d.TypeArgs...)
		push(d.Args...)
	case n.Kind == KindNew:
		d := t.New(id)
		push(d.Outer)
		push(d.TypeArgs...)
		push(d.Type)
		push(d.Args...)
		push(d.Body)
	case n.Kind == KindNewArray:
		d := t.NewArrayOf(id)
		push(d.Elem)
		push(d.Dims...)
		push(d.Init)
	case n.Kind == KindArrayInit:
		push(t.ArrayInit(id).Elems...)
	case n.Kind == KindBinary || n.Kind == KindAssign:
		d := t.Op(id)
		push(d.Left, d.Right)
	case n.Kind == KindUnary || n.Kind == KindParen:
		push(t.Unary(id).Operand)
	case n.Kind == KindConditional:
		d := t.Conditional(id)
		push(d.Cond, d.Then, d.Else)
	case n.Kind == KindCast || n.Kind == KindInstanceOf:
		d := t.Cast(id)
		if n.Kind == KindCast {
			push(d.Type, d.Expr)
		} else {
			push(d.Expr, d.Type)
		}
	case n.Kind == KindArrayAccess:
		d := t.ArrayAccess(id)
		push(d.Array, d.Index)
	case n.Kind == KindLambda:
		d := t.Lambda(id)
		push(d.Params...)
		push(d.Body)
	case n.Kind == KindMethodRef:
		push(t.MethodRef(id).Target)
	case n.Kind == KindThis || n.Kind == KindSuper || n.Kind == KindClassLit:
		push(t.Ref(id).Target)
	case n.Kind.IsTypeTree():
		d := t.Type(id)
		for _, p := range d.Parts {
			push(p.Args...)
		}
		push(d.Elem, d.Bound)
		push(d.Alts...)
	}
	return out
}

// Walk visits id and its subtree in pre-order; returning false from fn
// skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(id NodeID) bool) {
	if !id.IsValid() || !fn(id) {
		return
	}
	for _, c := range t.Children(id) {
		t.Walk(c, fn)
	}
}

// LinkParents fills Node.Parent for every node reachable from Root.
func (t *Tree) LinkParents() {
	var link func(id NodeID)
	link = func(id NodeID) {
		for _, c := range t.Children(id) {
			if n := t.Node(c); n != nil {
				n.Parent = id
			}
			link(c)
		}
	}
	link(t.Root)
}

// Enclosing returns the nearest ancestor (or id itself) whose kind matches.
func (t *Tree) Enclosing(id NodeID, match func(Kind) bool) NodeID {
	for id.IsValid() {
		n := t.Node(id)
		if n == nil {
			break
		}
		if match(n.Kind) {
			return id
		}
		id = n.Parent
	}
	return NoNodeID
}
