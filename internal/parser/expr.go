package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"jsema/internal/ast"
)

func (c *converter) args(n *sitter.Node) []ast.NodeID {
	var out []ast.NodeID
	for _, ch := range namedChildren(n) {
		if id := c.expr(ch); id.IsValid() {
			out = append(out, id)
		}
	}
	return out
}

func (c *converter) expr(n *sitter.Node) ast.NodeID {
	if n == nil || n.IsError() || n.IsMissing() {
		return ast.NoNodeID
	}
	sp := c.span(n)
	kids := namedChildren(n)

	switch n.Type() {
	case "identifier":
		return c.tree.NewIdent(sp, c.text(n))
	case "this":
		return c.tree.NewRef(ast.KindThis, sp, ast.NoNodeID)
	case "super":
		return c.tree.NewRef(ast.KindSuper, sp, ast.NoNodeID)
	case "null_literal":
		return c.tree.NewLiteral(sp, ast.LitNull, "null")
	case "true", "false":
		return c.tree.NewLiteral(sp, ast.LitBool, n.Type())
	case "character_literal":
		return c.tree.NewLiteral(sp, ast.LitChar, c.text(n))
	case "string_literal", "text_block":
		return c.tree.NewLiteral(sp, ast.LitString, c.text(n))
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		text := c.text(n)
		kind := ast.LitInt
		if strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L") {
			kind = ast.LitLong
		}
		return c.tree.NewLiteral(sp, kind, text)
	case "decimal_floating_point_literal", "hex_floating_point_literal":
		text := c.text(n)
		kind := ast.LitDouble
		if strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F") {
			kind = ast.LitFloat
		}
		return c.tree.NewLiteral(sp, kind, text)
	case "parenthesized_expression":
		if len(kids) == 0 {
			return ast.NoNodeID
		}
		return c.tree.NewUnary(ast.KindParen, sp, ast.UnaryData{Op: "()", Operand: c.expr(kids[0])})
	case "field_access":
		obj := field(n, "object")
		target := c.expr(obj)
		// Outer.super.field
		if obj != nil && obj.Type() != "super" && countSuper(n) > 0 {
			target = c.tree.NewRef(ast.KindSuper, sp, target)
		}
		name := field(n, "field")
		if name != nil && name.Type() == "this" {
			return c.tree.NewRef(ast.KindThis, sp, target)
		}
		return c.tree.NewFieldAccess(sp, ast.SelectData{Target: target, Name: c.text(name), NameSpan: c.span(name)})
	case "scoped_identifier":
		return c.tree.NewFieldAccess(sp, ast.SelectData{
			Target:   c.expr(field(n, "scope")),
			Name:     c.text(field(n, "name")),
			NameSpan: c.span(field(n, "name")),
		})
	case "method_invocation":
		name := field(n, "name")
		target := c.expr(field(n, "object"))
		if obj := field(n, "object"); obj != nil && obj.Type() != "super" && countSuper(n) > 0 {
			target = c.tree.NewRef(ast.KindSuper, sp, target)
		}
		return c.tree.NewCall(sp, ast.CallData{
			Target:   target,
			Name:     c.text(name),
			NameSpan: c.span(name),
			TypeArgs: c.typeArgs(field(n, "type_arguments")),
			Args:     c.args(field(n, "arguments")),
		})
	case "object_creation_expression":
		d := ast.NewData{
			Type:     c.typeTree(field(n, "type")),
			TypeArgs: c.typeArgs(field(n, "type_arguments")),
			Args:     c.args(field(n, "arguments")),
			Body:     c.anonymousClass(childOfType(n, "class_body")),
		}
		// outer.new Inner()
		if first := n.Child(0); first != nil && first.Type() != "new" {
			d.Outer = c.expr(first)
		}
		return c.tree.NewNew(sp, d)
	case "array_creation_expression":
		d := ast.NewArrayData{Elem: c.typeTree(field(n, "type"))}
		for _, ch := range kids {
			switch ch.Type() {
			case "dimensions_expr":
				if inner := namedChildren(ch); len(inner) > 0 {
					d.Dims = append(d.Dims, c.expr(inner[0]))
				}
			case "dimensions":
				d.ExtraDims += countDims(c.text(ch))
			case "array_initializer":
				d.Init = c.expr(ch)
			}
		}
		return c.tree.NewNewArray(sp, d)
	case "array_initializer":
		return c.tree.NewArrayInit(sp, c.args(n))
	case "assignment_expression":
		return c.tree.NewOp(ast.KindAssign, sp, ast.OpData{
			Op:    c.text(field(n, "operator")),
			Left:  c.expr(field(n, "left")),
			Right: c.expr(field(n, "right")),
		})
	case "binary_expression":
		return c.tree.NewOp(ast.KindBinary, sp, ast.OpData{
			Op:    c.text(field(n, "operator")),
			Left:  c.expr(field(n, "left")),
			Right: c.expr(field(n, "right")),
		})
	case "unary_expression":
		return c.tree.NewUnary(ast.KindUnary, sp, ast.UnaryData{
			Op:      c.text(field(n, "operator")),
			Operand: c.expr(field(n, "operand")),
		})
	case "update_expression":
		if len(kids) == 0 {
			return ast.NoNodeID
		}
		text := c.text(n)
		postfix := strings.HasSuffix(text, "++") || strings.HasSuffix(text, "--")
		op := "++"
		if strings.Contains(text, "--") {
			op = "--"
		}
		return c.tree.NewUnary(ast.KindUnary, sp, ast.UnaryData{Op: op, Operand: c.expr(kids[0]), Postfix: postfix})
	case "ternary_expression":
		return c.tree.NewConditional(sp, ast.CondData{
			Cond: c.expr(field(n, "condition")),
			Then: c.expr(field(n, "consequence")),
			Else: c.expr(field(n, "alternative")),
		})
	case "cast_expression":
		return c.tree.NewCast(ast.KindCast, sp, ast.CastData{
			Type: c.typeTree(field(n, "type")),
			Expr: c.expr(field(n, "value")),
		})
	case "instanceof_expression":
		d := ast.CastData{Expr: c.expr(field(n, "left")), Type: c.typeTree(field(n, "right"))}
		if name := field(n, "name"); name != nil {
			d.Binding = c.text(name)
			d.BindingSpan = c.span(name)
		}
		if pat := field(n, "pattern"); pat != nil && !d.Type.IsValid() {
			for _, ch := range namedChildren(pat) {
				switch ch.Type() {
				case "identifier":
					d.Binding = c.text(ch)
					d.BindingSpan = c.span(ch)
				case "modifiers":
				default:
					if !d.Type.IsValid() {
						d.Type = c.typeTree(ch)
					}
				}
			}
		}
		return c.tree.NewCast(ast.KindInstanceOf, sp, d)
	case "array_access":
		return c.tree.NewArrayAccess(sp, ast.IndexData{
			Array: c.expr(field(n, "array")),
			Index: c.expr(field(n, "index")),
		})
	case "lambda_expression":
		return c.lambda(n)
	case "method_reference":
		d := ast.MethodRefData{Name: "new"}
		if len(kids) == 0 {
			return ast.NoNodeID
		}
		d.Target = c.exprOrType(kids[0])
		if last := kids[len(kids)-1]; len(kids) > 1 && last.Type() == "identifier" {
			d.Name = c.text(last)
		}
		return c.tree.NewMethodRef(sp, d)
	case "class_literal":
		if len(kids) == 0 {
			return ast.NoNodeID
		}
		return c.tree.NewRef(ast.KindClassLit, sp, c.typeTree(kids[0]))
	case "switch_expression":
		return c.switchNode(ast.KindSwitchExpr, n)
	}
	c.unsupported(n)
	return ast.NoNodeID
}

// exprOrType handles the left side of `::`, which may be a type.
func (c *converter) exprOrType(n *sitter.Node) ast.NodeID {
	switch n.Type() {
	case "generic_type", "array_type", "integral_type", "floating_point_type", "boolean_type", "scoped_type_identifier", "type_identifier":
		return c.typeTree(n)
	}
	return c.expr(n)
}

func (c *converter) lambda(n *sitter.Node) ast.NodeID {
	d := ast.LambdaData{}
	params := field(n, "parameters")
	if params != nil {
		switch params.Type() {
		case "identifier":
			d.Params = append(d.Params, c.param(params))
		default: // formal_parameters, inferred_parameters
			for _, p := range namedChildren(params) {
				if id := c.param(p); id.IsValid() {
					d.Params = append(d.Params, id)
				}
			}
		}
	}
	body := field(n, "body")
	if body != nil && body.Type() == "block" {
		d.Body = c.block(body)
	} else {
		d.Body = c.expr(body)
	}
	return c.tree.NewLambda(c.span(n), d)
}

func countSuper(n *sitter.Node) int {
	count := 0
	for i := 0; i < int(n.ChildCount()); i++ {
		if ch := n.Child(i); ch != nil && ch.Type() == "super" && n.FieldNameForChild(i) == "" {
			count++
		}
	}
	return count
}
