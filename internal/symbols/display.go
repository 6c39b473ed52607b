package symbols

import (
	"strings"
)

// TypeString renders a type the way it is written in source, with fully
// qualified class names.
func (t *Table) TypeString(id TypeID) string {
	var sb strings.Builder
	t.writeType(&sb, id, 0)
	return sb.String()
}

func (t *Table) writeType(sb *strings.Builder, id TypeID, depth int) {
	ty, ok := t.Type(id)
	if !ok {
		sb.WriteString("<invalid>")
		return
	}
	if depth > MaxClosureDepth {
		sb.WriteString("...")
		return
	}
	switch ty.Kind {
	case TyClass:
		sb.WriteString(t.FullyQualifiedName(ty.Sym))
	case TyParameterized:
		sb.WriteString(t.FullyQualifiedName(ty.Sym))
		sb.WriteByte('<')
		for i, a := range t.TypeArgs(id) {
			if i > 0 {
				sb.WriteString(", ")
			}
			t.writeType(sb, a, depth+1)
		}
		sb.WriteByte('>')
	case TyArray:
		t.writeType(sb, ty.Elem, depth+1)
		sb.WriteString("[]")
	case TyTypeVar:
		sb.WriteString(t.MustSym(ty.Sym).Name)
	case TyWildcard:
		sb.WriteByte('?')
		switch ty.Bound {
		case BoundExtends:
			sb.WriteString(" extends ")
			t.writeType(sb, ty.Elem, depth+1)
		case BoundSuper:
			sb.WriteString(" super ")
			t.writeType(sb, ty.Elem, depth+1)
		}
	case TyMethod:
		sb.WriteByte('(')
		for i, p := range ty.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			t.writeType(sb, p, depth+1)
		}
		sb.WriteString(")")
		t.writeType(sb, ty.Result, depth+1)
	case TyUnion:
		for i, a := range ty.Alts {
			if i > 0 {
				sb.WriteString(" | ")
			}
			t.writeType(sb, a, depth+1)
		}
	case TyUnknown:
		sb.WriteString("!unknown!")
	default:
		sb.WriteString(ty.Kind.String())
	}
}

// SubstString renders a substitution as {T -> java.lang.String, ...}.
func (t *Table) SubstString(id SubstID) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range t.Subst(id) {
		if i > 0 {
			sb.WriteString(", ")
		}
		t.writeType(&sb, p.Var, 0)
		sb.WriteString(" -> ")
		t.writeType(&sb, p.Type, 0)
	}
	sb.WriteByte('}')
	return sb.String()
}

// Signature renders a method as name(params) for diagnostics.
func (t *Table) Signature(method SymbolID) string {
	s := t.Sym(method)
	if s == nil {
		return ""
	}
	name := s.Name
	if s.IsConstructor() {
		name = t.MustSym(s.Owner).Name
	}
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, p := range t.MethodParams(method) {
		if i > 0 {
			sb.WriteString(", ")
		}
		pt := t.Sym(p).Type
		if s.Flags.IsVarargs() && i == len(s.Method.Params)-1 && t.Kind(pt) == TyArray {
			t.writeType(&sb, t.MustType(pt).Elem, 0)
			sb.WriteString("...")
			continue
		}
		t.writeType(&sb, pt, 0)
	}
	sb.WriteByte(')')
	return sb.String()
}
