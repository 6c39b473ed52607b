package sema

import (
	"fmt"

	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/resolve"
	"jsema/internal/symbols"
)

var primitiveKinds = map[string]symbols.TypeKind{
	"byte":    symbols.TyByte,
	"char":    symbols.TyChar,
	"short":   symbols.TyShort,
	"int":     symbols.TyInt,
	"long":    symbols.TyLong,
	"float":   symbols.TyFloat,
	"double":  symbols.TyDouble,
	"boolean": symbols.TyBoolean,
	"void":    symbols.TyVoid,
}

// typeTree resolves a type tree in env. Every named part is bound to its
// symbol and counted as a usage. Unresolvable names yield the unknown type
// and a warning.
func (a *Analyzer) typeTree(u *Unit, env *resolve.Env, id ast.NodeID) symbols.TypeID {
	if !id.IsValid() {
		return a.unknownType()
	}
	tree := u.Tree
	d := tree.Type(id)
	if d == nil {
		return a.unknownType()
	}
	out := a.unknownType()
	switch tree.Kind(id) {
	case ast.KindPrimitiveType, ast.KindVoidType:
		if k, ok := primitiveKinds[d.Name]; ok {
			out = a.t.Primitive(k)
		}
	case ast.KindArrayType:
		out = a.t.ArrayOfDims(a.typeTree(u, env, d.Elem), d.Dims)
	case ast.KindWildcard:
		switch d.BoundKind {
		case ast.BoundExtends:
			out = a.t.Wildcard(symbols.BoundExtends, a.typeTree(u, env, d.Bound))
		case ast.BoundSuper:
			out = a.t.Wildcard(symbols.BoundSuper, a.typeTree(u, env, d.Bound))
		default:
			out = a.t.Wildcard(symbols.BoundUnbounded, symbols.NoTypeID)
		}
	case ast.KindUnionType:
		alts := make([]symbols.TypeID, 0, len(d.Alts))
		for _, alt := range d.Alts {
			alts = append(alts, a.typeTree(u, env, alt))
		}
		out = a.t.Union(alts)
	case ast.KindNamedType:
		out = a.namedType(u, env, id, d)
	}
	u.setType(id, out)
	return out
}

func (a *Analyzer) namedType(u *Unit, env *resolve.Env, id ast.NodeID, d *ast.TypeData) symbols.TypeID {
	if len(d.Parts) == 0 {
		return a.unknownType()
	}
	names := make([]string, len(d.Parts))
	for i, p := range d.Parts {
		names[i] = p.Name
	}
	path := a.r.FindTypePath(env, names)
	for i, p := range d.Parts {
		sym := path[i]
		if a.t.IsUnknownSym(sym) {
			diag.ReportWarning(a.reporter, diag.ResUnknownType, p.Span,
				fmt.Sprintf("cannot resolve type %s", d.Name)).Emit()
			u.bind(id, a.unknownSym())
			return a.unknownType()
		}
		u.addRef(p.Span, id, sym)
		if a.t.MustSym(sym).Kind != symbols.SymPackage {
			a.t.AddUsage(sym, symbols.Usage{Span: p.Span, Node: id})
		}
		// arguments of enclosing parts only bind references
		if i < len(d.Parts)-1 {
			for _, arg := range p.Args {
				a.typeTree(u, env, arg)
			}
		}
	}

	last := path[len(path)-1]
	u.bind(id, last)
	s := a.t.MustSym(last)
	switch s.Kind {
	case symbols.SymTypeVar:
		return s.Type
	case symbols.SymType:
	default:
		diag.ReportWarning(a.reporter, diag.ResUnknownType, d.Parts[len(d.Parts)-1].Span,
			fmt.Sprintf("%s is not a type", d.Name)).Emit()
		return a.unknownType()
	}

	part := d.Parts[len(d.Parts)-1]
	if len(part.Args) == 0 {
		return a.t.SymType(last)
	}
	args := make([]symbols.TypeID, len(part.Args))
	for i, arg := range part.Args {
		args[i] = a.typeTree(u, env, arg)
	}
	params := a.t.TypeParams(last)
	if len(params) != len(args) {
		diag.ReportWarning(a.reporter, diag.ResWrongTypeArgCount, part.Span,
			fmt.Sprintf("wrong number of type arguments for %s: got %d, want %d", d.Name, len(args), len(params))).Emit()
		return a.t.SymType(last)
	}
	return a.t.Parameterize(last, args)
}

// isDiamond reports a named type written with empty type arguments.
func isDiamond(tree *ast.Tree, id ast.NodeID) bool {
	d := tree.Type(id)
	if d == nil || len(d.Parts) == 0 {
		return false
	}
	return d.Parts[len(d.Parts)-1].Diamond
}

// newTypeParams creates the type variables of a generic class or method
// and enters them into scope. Bounds are bound separately so that
// `T extends Comparable<T>` sees T.
func (a *Analyzer) newTypeParams(u *Unit, owner symbols.SymbolID, nodes []ast.NodeID, scope symbols.ScopeID) []symbols.SymbolID {
	out := make([]symbols.SymbolID, 0, len(nodes))
	for i, n := range nodes {
		tp := u.Tree.TypeParam(n)
		if tp == nil {
			continue
		}
		tv := a.t.NewTypeVar(tp.Name, owner, i, tp.NameSpan)
		a.t.MustSym(tv).Decl = symbols.Decl{File: u.fileID(), Node: n}
		if !a.t.Enter(scope, tv) {
			a.duplicate(tp.NameSpan, tp.Name, owner)
		}
		u.declare(n, tv)
		out = append(out, tv)
	}
	return out
}

func (a *Analyzer) bindBounds(u *Unit, env *resolve.Env, vars []symbols.SymbolID) {
	for _, tv := range vars {
		n := a.t.MustSym(tv).Decl.Node
		tp := u.Tree.TypeParam(n)
		if tp == nil || len(tp.Bounds) == 0 {
			continue
		}
		bounds := make([]symbols.TypeID, 0, len(tp.Bounds))
		for _, b := range tp.Bounds {
			bounds = append(bounds, a.typeTree(u, env, b))
		}
		a.t.SetBounds(tv, bounds)
	}
}
