package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"jsema/internal/ast"
)

func (c *converter) unit(root *sitter.Node) ast.NodeID {
	var d ast.UnitData
	for _, ch := range namedChildren(root) {
		switch ch.Type() {
		case "package_declaration":
			if name := childOfType(ch, "scoped_identifier", "identifier"); name != nil {
				d.Package = c.dotted(name)
				d.PackageSpan = c.span(name)
			}
		case "import_declaration":
			d.Imports = append(d.Imports, c.importDecl(ch))
		default:
			if id := c.typeDecl(ch); id.IsValid() {
				d.Types = append(d.Types, id)
			}
		}
	}
	return c.tree.NewUnit(c.span(root), d)
}

func (c *converter) importDecl(n *sitter.Node) ast.NodeID {
	d := ast.ImportData{Static: hasToken(n, "static")}
	if name := childOfType(n, "scoped_identifier", "identifier"); name != nil {
		d.Name = c.dotted(name)
	}
	d.Star = childOfType(n, "asterisk") != nil
	return c.tree.NewImport(c.span(n), d)
}

// dotted renders a (scoped_)identifier without whitespace or comments.
func (c *converter) dotted(n *sitter.Node) string {
	if n.Type() == "scoped_identifier" {
		scope := field(n, "scope")
		name := field(n, "name")
		if scope != nil && name != nil {
			return c.dotted(scope) + "." + c.text(name)
		}
	}
	return strings.Join(strings.Fields(c.text(n)), "")
}

// typeDecl converts class-like declarations; other nodes yield NoNodeID.
func (c *converter) typeDecl(n *sitter.Node) ast.NodeID {
	var kind ast.Kind
	switch n.Type() {
	case "class_declaration":
		kind = ast.KindClass
	case "interface_declaration":
		kind = ast.KindInterface
	case "enum_declaration":
		kind = ast.KindEnum
	case "record_declaration":
		kind = ast.KindRecord
	case "annotation_type_declaration":
		kind = ast.KindAnnotationType
	default:
		return ast.NoNodeID
	}
	d := ast.ClassData{Mods: c.modifiers(childOfType(n, "modifiers"))}
	if name := field(n, "name"); name != nil {
		d.Name = c.text(name)
		d.NameSpan = c.span(name)
	}
	d.TypeParams = c.typeParams(field(n, "type_parameters"))
	if sup := field(n, "superclass"); sup != nil {
		if ts := namedChildren(sup); len(ts) > 0 {
			d.Super = c.typeTree(ts[0])
		}
	}
	if ifs := field(n, "interfaces"); ifs != nil {
		d.Interfaces = c.typeList(ifs)
	}
	if ext := childOfType(n, "extends_interfaces"); ext != nil {
		d.Interfaces = append(d.Interfaces, c.typeList(ext)...)
	}
	if kind == ast.KindRecord {
		for _, p := range namedChildren(field(n, "parameters")) {
			if id := c.param(p); id.IsValid() {
				d.Components = append(d.Components, id)
			}
		}
	}
	body := field(n, "body")
	if kind == ast.KindEnum {
		for _, ch := range namedChildren(body) {
			switch ch.Type() {
			case "enum_constant":
				d.Constants = append(d.Constants, c.enumConstant(ch))
			case "enum_body_declarations":
				d.Members = append(d.Members, c.members(ch)...)
			}
		}
	} else {
		d.Members = c.members(body)
	}
	return c.tree.NewClass(kind, c.span(n), d)
}

// anonymousClass converts the class_body of `new T() {...}` or an enum constant.
func (c *converter) anonymousClass(body *sitter.Node) ast.NodeID {
	if body == nil {
		return ast.NoNodeID
	}
	return c.tree.NewClass(ast.KindClass, c.span(body), ast.ClassData{
		Members:   c.members(body),
		Anonymous: true,
	})
}

// typeList flattens super_interfaces / extends_interfaces / type_list.
func (c *converter) typeList(n *sitter.Node) []ast.NodeID {
	var out []ast.NodeID
	for _, ch := range namedChildren(n) {
		if ch.Type() == "type_list" {
			out = append(out, c.typeList(ch)...)
			continue
		}
		if id := c.typeTree(ch); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (c *converter) members(body *sitter.Node) []ast.NodeID {
	var out []ast.NodeID
	for _, ch := range namedChildren(body) {
		switch ch.Type() {
		case "field_declaration", "constant_declaration":
			out = append(out, c.varDecls(ast.KindField, ch)...)
		case "method_declaration", "annotation_type_element_declaration":
			out = append(out, c.method(ast.KindMethod, ch))
		case "constructor_declaration", "compact_constructor_declaration":
			out = append(out, c.method(ast.KindConstructor, ch))
		case "block":
			out = append(out, c.tree.NewInitializer(c.span(ch), ast.InitializerData{Body: c.block(ch)}))
		case "static_initializer":
			out = append(out, c.tree.NewInitializer(c.span(ch), ast.InitializerData{
				Static: true,
				Body:   c.block(childOfType(ch, "block")),
			}))
		default:
			if id := c.typeDecl(ch); id.IsValid() {
				out = append(out, id)
			}
		}
	}
	return out
}

func (c *converter) enumConstant(n *sitter.Node) ast.NodeID {
	d := ast.EnumConstantData{Mods: c.modifiers(childOfType(n, "modifiers"))}
	if name := field(n, "name"); name != nil {
		d.Name = c.text(name)
		d.NameSpan = c.span(name)
	}
	d.Args = c.args(field(n, "arguments"))
	d.Body = c.anonymousClass(field(n, "body"))
	return c.tree.NewEnumConstant(c.span(n), d)
}

func (c *converter) method(kind ast.Kind, n *sitter.Node) ast.NodeID {
	d := ast.MethodData{Mods: c.modifiers(childOfType(n, "modifiers"))}
	if name := field(n, "name"); name != nil {
		d.Name = c.text(name)
		d.NameSpan = c.span(name)
	}
	if kind == ast.KindConstructor {
		d.Name = "<init>"
	}
	d.TypeParams = c.typeParams(field(n, "type_parameters"))
	if kind == ast.KindMethod {
		d.Result = c.typeTree(field(n, "type"))
		if dims := field(n, "dimensions"); dims != nil {
			d.Result = c.wrapArray(d.Result, countDims(c.text(dims)), c.span(n))
		}
	}
	for _, p := range namedChildren(field(n, "parameters")) {
		if id := c.param(p); id.IsValid() {
			d.Params = append(d.Params, id)
		}
	}
	if th := childOfType(n, "throws"); th != nil {
		for _, t := range namedChildren(th) {
			if id := c.typeTree(t); id.IsValid() {
				d.Throws = append(d.Throws, id)
			}
		}
	}
	if body := field(n, "body"); body != nil {
		d.Body = c.block(body)
	}
	if def := field(n, "value"); def != nil {
		d.Default = c.elementValue(def)
	}
	return c.tree.NewMethod(kind, c.span(n), d)
}

// param handles formal_parameter and spread_parameter; receiver
// parameters are dropped.
func (c *converter) param(n *sitter.Node) ast.NodeID {
	switch n.Type() {
	case "formal_parameter", "catch_formal_parameter":
		d := ast.VarData{Mods: c.modifiers(childOfType(n, "modifiers"))}
		d.Type = c.typeTree(field(n, "type"))
		if n.Type() == "catch_formal_parameter" {
			d.Type = c.catchType(childOfType(n, "catch_type"))
		}
		if name := field(n, "name"); name != nil {
			d.Name = c.text(name)
			d.NameSpan = c.span(name)
		}
		if dims := field(n, "dimensions"); dims != nil {
			d.Dims = countDims(c.text(dims))
		}
		return c.tree.NewVar(ast.KindParameter, c.span(n), d)
	case "spread_parameter":
		d := ast.VarData{Mods: c.modifiers(childOfType(n, "modifiers")), Varargs: true}
		for _, ch := range namedChildren(n) {
			switch ch.Type() {
			case "modifiers":
			case "variable_declarator":
				if name := field(ch, "name"); name != nil {
					d.Name = c.text(name)
					d.NameSpan = c.span(name)
				}
			default:
				if !d.Type.IsValid() {
					d.Type = c.typeTree(ch)
				}
			}
		}
		return c.tree.NewVar(ast.KindParameter, c.span(n), d)
	case "identifier":
		// inferred lambda parameter
		return c.tree.NewVar(ast.KindParameter, c.span(n), ast.VarData{Name: c.text(n), NameSpan: c.span(n)})
	}
	return ast.NoNodeID
}

// varDecls splits `int a, b[] = ...;` into one node per declarator sharing
// the type tree.
func (c *converter) varDecls(kind ast.Kind, n *sitter.Node) []ast.NodeID {
	mods := c.modifiers(childOfType(n, "modifiers"))
	typ := c.typeTree(field(n, "type"))
	var out []ast.NodeID
	for _, decl := range fieldAll(n, "declarator") {
		d := ast.VarData{Mods: mods, Type: typ}
		if name := field(decl, "name"); name != nil {
			d.Name = c.text(name)
			d.NameSpan = c.span(name)
		}
		if dims := field(decl, "dimensions"); dims != nil {
			d.Dims = countDims(c.text(dims))
		}
		if v := field(decl, "value"); v != nil {
			d.Init = c.expr(v)
		}
		out = append(out, c.tree.NewVar(kind, c.span(decl), d))
	}
	return out
}

func (c *converter) modifiers(n *sitter.Node) ast.Modifiers {
	var m ast.Modifiers
	if n == nil {
		return m
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch == nil {
			continue
		}
		switch ch.Type() {
		case "annotation", "marker_annotation":
			m.Annotations = append(m.Annotations, c.annotation(ch))
		default:
			m.Flags |= ast.ModifierFor(c.text(ch))
		}
	}
	return m
}

func (c *converter) annotation(n *sitter.Node) ast.NodeID {
	d := ast.AnnotationData{}
	if name := field(n, "name"); name != nil {
		d.Name = c.dotted(name)
	}
	for _, arg := range namedChildren(field(n, "arguments")) {
		if arg.Type() == "element_value_pair" {
			d.Args = append(d.Args, ast.AnnotationArg{
				Name:  c.text(field(arg, "key")),
				Value: c.elementValue(field(arg, "value")),
			})
			continue
		}
		d.Args = append(d.Args, ast.AnnotationArg{Name: "value", Value: c.elementValue(arg)})
	}
	return c.tree.NewAnnotation(c.span(n), d)
}

func (c *converter) elementValue(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	switch n.Type() {
	case "annotation", "marker_annotation":
		return c.annotation(n)
	case "element_value_array_initializer":
		var elems []ast.NodeID
		for _, ch := range namedChildren(n) {
			elems = append(elems, c.elementValue(ch))
		}
		return c.tree.NewArrayInit(c.span(n), elems)
	}
	return c.expr(n)
}

func (c *converter) typeParams(n *sitter.Node) []ast.NodeID {
	var out []ast.NodeID
	for _, tp := range namedChildren(n) {
		if tp.Type() != "type_parameter" {
			continue
		}
		d := ast.TypeParamData{}
		for _, ch := range namedChildren(tp) {
			switch ch.Type() {
			case "type_identifier", "identifier":
				d.Name = c.text(ch)
				d.NameSpan = c.span(ch)
			case "type_bound":
				for _, b := range namedChildren(ch) {
					if id := c.typeTree(b); id.IsValid() {
						d.Bounds = append(d.Bounds, id)
					}
				}
			}
		}
		out = append(out, c.tree.NewTypeParam(c.span(tp), d))
	}
	return out
}

func countDims(s string) int {
	return strings.Count(s, "[")
}
