package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"jsema/internal/ast"
	"jsema/internal/source"
)

func (c *converter) typeTree(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	sp := c.span(n)
	switch n.Type() {
	case "void_type":
		return c.tree.NewType(ast.KindVoidType, sp, ast.TypeData{Name: "void"})
	case "integral_type", "floating_point_type", "boolean_type":
		return c.tree.NewType(ast.KindPrimitiveType, sp, ast.TypeData{Name: c.text(n)})
	case "type_identifier", "identifier":
		if c.text(n) == "var" {
			return c.tree.NewType(ast.KindVarType, sp, ast.TypeData{Name: "var"})
		}
		fallthrough
	case "scoped_type_identifier", "generic_type", "scoped_identifier":
		parts := c.typeParts(n)
		names := make([]string, len(parts))
		for i, p := range parts {
			names[i] = p.Name
		}
		return c.tree.NewType(ast.KindNamedType, sp, ast.TypeData{Name: strings.Join(names, "."), Parts: parts})
	case "array_type":
		elem := c.typeTree(field(n, "element"))
		return c.wrapArray(elem, countDims(c.text(field(n, "dimensions"))), sp)
	case "annotated_type":
		for _, ch := range namedChildren(n) {
			if ch.Type() != "annotation" && ch.Type() != "marker_annotation" {
				return c.typeTree(ch)
			}
		}
	case "wildcard":
		d := ast.TypeData{Name: "?"}
		for _, ch := range namedChildren(n) {
			switch ch.Type() {
			case "annotation", "marker_annotation":
			case "super":
				d.BoundKind = ast.BoundSuper
			default:
				d.Bound = c.typeTree(ch)
			}
		}
		if d.Bound.IsValid() && d.BoundKind == ast.BoundNone {
			d.BoundKind = ast.BoundExtends
		}
		return c.tree.NewType(ast.KindWildcard, sp, d)
	default:
		c.unsupported(n)
	}
	return ast.NoNodeID
}

// typeParts flattens Outer<A>.Inner<B> into its dotted segments.
func (c *converter) typeParts(n *sitter.Node) []ast.TypePart {
	switch n.Type() {
	case "type_identifier", "identifier":
		return []ast.TypePart{{Name: c.text(n), Span: c.span(n)}}
	case "scoped_identifier":
		scope, name := field(n, "scope"), field(n, "name")
		if scope == nil || name == nil {
			break
		}
		return append(c.typeParts(scope), ast.TypePart{Name: c.text(name), Span: c.span(name)})
	case "scoped_type_identifier":
		kids := namedChildren(n)
		var parts []ast.TypePart
		for i, ch := range kids {
			switch ch.Type() {
			case "annotation", "marker_annotation":
				continue
			}
			if i == len(kids)-1 {
				parts = append(parts, ast.TypePart{Name: c.text(ch), Span: c.span(ch)})
			} else {
				parts = append(parts, c.typeParts(ch)...)
			}
		}
		return parts
	case "generic_type":
		var parts []ast.TypePart
		for _, ch := range namedChildren(n) {
			if ch.Type() == "type_arguments" {
				if len(parts) == 0 {
					break
				}
				last := &parts[len(parts)-1]
				last.Args = c.typeArgs(ch)
				last.Diamond = len(last.Args) == 0
				continue
			}
			parts = append(parts, c.typeParts(ch)...)
		}
		return parts
	}
	return []ast.TypePart{{Name: c.text(n), Span: c.span(n)}}
}

func (c *converter) typeArgs(n *sitter.Node) []ast.NodeID {
	var out []ast.NodeID
	for _, ch := range namedChildren(n) {
		if id := c.typeTree(ch); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (c *converter) wrapArray(elem ast.NodeID, dims int, sp source.Span) ast.NodeID {
	if !elem.IsValid() || dims == 0 {
		return elem
	}
	return c.tree.NewType(ast.KindArrayType, sp, ast.TypeData{Elem: elem, Dims: dims})
}

// catchType turns `A | B` into a union type tree.
func (c *converter) catchType(n *sitter.Node) ast.NodeID {
	alts := c.typeArgs(n)
	switch len(alts) {
	case 0:
		return ast.NoNodeID
	case 1:
		return alts[0]
	}
	return c.tree.NewType(ast.KindUnionType, c.span(n), ast.TypeData{Alts: alts})
}
