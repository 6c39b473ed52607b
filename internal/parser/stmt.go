package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"jsema/internal/ast"
)

func (c *converter) block(n *sitter.Node) ast.NodeID {
	if n == nil {
		return ast.NoNodeID
	}
	var stmts []ast.NodeID
	for _, ch := range namedChildren(n) {
		stmts = append(stmts, c.stmts(ch)...)
	}
	return c.tree.NewBlock(c.span(n), stmts)
}

// stmt converts a statement that must produce a single node; local
// variable declarations with several declarators are wrapped in a block.
func (c *converter) stmt(n *sitter.Node) ast.NodeID {
	ids := c.stmts(n)
	switch len(ids) {
	case 0:
		return ast.NoNodeID
	case 1:
		return ids[0]
	}
	return c.tree.NewBlock(c.span(n), ids)
}

func (c *converter) stmts(n *sitter.Node) []ast.NodeID {
	if n == nil {
		return nil
	}
	sp := c.span(n)
	one := func(id ast.NodeID) []ast.NodeID {
		if !id.IsValid() {
			return nil
		}
		return []ast.NodeID{id}
	}
	kids := namedChildren(n)
	first := func() *sitter.Node {
		if len(kids) == 0 {
			return nil
		}
		return kids[0]
	}

	switch n.Type() {
	case "block", "constructor_body":
		return one(c.block(n))
	case "local_variable_declaration":
		return c.varDecls(ast.KindLocalVar, n)
	case "expression_statement":
		return one(c.tree.NewStmt(ast.KindExprStmt, sp, ast.StmtData{Expr: c.expr(first())}))
	case "explicit_constructor_invocation":
		return one(c.tree.NewStmt(ast.KindExprStmt, sp, ast.StmtData{Expr: c.ctorInvocation(n)}))
	case "return_statement":
		return one(c.tree.NewStmt(ast.KindReturn, sp, ast.StmtData{Expr: c.expr(first())}))
	case "throw_statement":
		return one(c.tree.NewStmt(ast.KindThrow, sp, ast.StmtData{Expr: c.expr(first())}))
	case "yield_statement":
		return one(c.tree.NewStmt(ast.KindYield, sp, ast.StmtData{Expr: c.expr(first())}))
	case "if_statement":
		return one(c.tree.NewStmt(ast.KindIf, sp, ast.StmtData{
			Cond: c.expr(field(n, "condition")),
			Then: c.stmt(field(n, "consequence")),
			Else: c.stmt(field(n, "alternative")),
		}))
	case "while_statement":
		return one(c.tree.NewStmt(ast.KindWhile, sp, ast.StmtData{
			Cond: c.expr(field(n, "condition")),
			Body: c.stmt(field(n, "body")),
		}))
	case "do_statement":
		return one(c.tree.NewStmt(ast.KindDoWhile, sp, ast.StmtData{
			Cond: c.expr(field(n, "condition")),
			Body: c.stmt(field(n, "body")),
		}))
	case "for_statement":
		d := ast.StmtData{
			Cond: c.expr(field(n, "condition")),
			Body: c.stmt(field(n, "body")),
		}
		for _, in := range fieldAll(n, "init") {
			if in.Type() == "local_variable_declaration" {
				d.Init = append(d.Init, c.varDecls(ast.KindLocalVar, in)...)
			} else if id := c.expr(in); id.IsValid() {
				d.Init = append(d.Init, id)
			}
		}
		for _, up := range fieldAll(n, "update") {
			if id := c.expr(up); id.IsValid() {
				d.Update = append(d.Update, id)
			}
		}
		return one(c.tree.NewStmt(ast.KindFor, sp, d))
	case "enhanced_for_statement":
		v := ast.VarData{
			Mods: c.modifiers(childOfType(n, "modifiers")),
			Type: c.typeTree(field(n, "type")),
		}
		if name := field(n, "name"); name != nil {
			v.Name = c.text(name)
			v.NameSpan = c.span(name)
		}
		return one(c.tree.NewStmt(ast.KindForEach, sp, ast.StmtData{
			Var:  c.tree.NewVar(ast.KindLocalVar, v.NameSpan, v),
			Expr: c.expr(field(n, "value")),
			Body: c.stmt(field(n, "body")),
		}))
	case "try_statement", "try_with_resources_statement":
		return one(c.try(n))
	case "switch_expression", "switch_statement":
		return one(c.switchNode(ast.KindSwitch, n))
	case "synchronized_statement":
		return one(c.tree.NewStmt(ast.KindSynchronized, sp, ast.StmtData{
			Expr: c.expr(childOfType(n, "parenthesized_expression")),
			Body: c.block(field(n, "body")),
		}))
	case "labeled_statement":
		d := ast.StmtData{}
		for _, ch := range kids {
			if ch.Type() == "identifier" && d.Label == "" {
				d.Label = c.text(ch)
				continue
			}
			d.Body = c.stmt(ch)
		}
		return one(c.tree.NewStmt(ast.KindLabeled, sp, d))
	case "break_statement", "continue_statement":
		kind := ast.KindBreak
		if n.Type() == "continue_statement" {
			kind = ast.KindContinue
		}
		d := ast.StmtData{}
		if id := childOfType(n, "identifier"); id != nil {
			d.Label = c.text(id)
		}
		return one(c.tree.NewStmt(kind, sp, d))
	case "assert_statement":
		d := ast.StmtData{}
		if len(kids) > 0 {
			d.Cond = c.expr(kids[0])
		}
		if len(kids) > 1 {
			d.Expr = c.expr(kids[1])
		}
		return one(c.tree.NewStmt(ast.KindAssert, sp, d))
	case "empty_statement":
		return one(c.tree.NewStmt(ast.KindEmpty, sp, ast.StmtData{}))
	}
	if id := c.typeDecl(n); id.IsValid() {
		return one(id)
	}
	// голое выражение (switch rule body, lambda body)
	if id := c.expr(n); id.IsValid() {
		return one(c.tree.NewStmt(ast.KindExprStmt, sp, ast.StmtData{Expr: id}))
	}
	return nil
}

// ctorInvocation models this(...)/super(...) as a call named <init>.
func (c *converter) ctorInvocation(n *sitter.Node) ast.NodeID {
	var target ast.NodeID
	ctor := field(n, "constructor")
	if ctor != nil && ctor.Type() == "super" {
		target = c.tree.NewRef(ast.KindSuper, c.span(ctor), c.expr(field(n, "object")))
	} else {
		target = c.tree.NewRef(ast.KindThis, c.span(ctor), ast.NoNodeID)
	}
	return c.tree.NewCall(c.span(n), ast.CallData{
		Target:   target,
		Name:     "<init>",
		NameSpan: c.span(ctor),
		TypeArgs: c.typeArgs(field(n, "type_arguments")),
		Args:     c.args(field(n, "arguments")),
	})
}

func (c *converter) try(n *sitter.Node) ast.NodeID {
	d := ast.TryData{Body: c.block(field(n, "body"))}
	for _, res := range namedChildren(field(n, "resources")) {
		if res.Type() != "resource" {
			continue
		}
		if typ := field(res, "type"); typ != nil {
			v := ast.VarData{
				Mods: c.modifiers(childOfType(res, "modifiers")),
				Type: c.typeTree(typ),
				Init: c.expr(field(res, "value")),
			}
			if name := field(res, "name"); name != nil {
				v.Name = c.text(name)
				v.NameSpan = c.span(name)
			}
			d.Resources = append(d.Resources, c.tree.NewVar(ast.KindLocalVar, c.span(res), v))
			continue
		}
		if kids := namedChildren(res); len(kids) > 0 {
			d.Resources = append(d.Resources, c.expr(kids[0]))
		}
	}
	for _, ch := range namedChildren(n) {
		switch ch.Type() {
		case "catch_clause":
			d.Catches = append(d.Catches, c.tree.NewStmt(ast.KindCatch, c.span(ch), ast.StmtData{
				Var:  c.param(childOfType(ch, "catch_formal_parameter")),
				Body: c.block(field(ch, "body")),
			}))
		case "finally_clause":
			d.Finally = c.block(childOfType(ch, "block"))
		}
	}
	return c.tree.NewTry(c.span(n), d)
}

func (c *converter) switchNode(kind ast.Kind, n *sitter.Node) ast.NodeID {
	d := ast.SwitchData{Expr: c.expr(field(n, "condition"))}
	for _, grp := range namedChildren(field(n, "body")) {
		cd := ast.CaseData{Arrow: grp.Type() == "switch_rule"}
		for _, ch := range namedChildren(grp) {
			if ch.Type() == "switch_label" {
				if strings.HasPrefix(c.text(ch), "default") {
					cd.Default = true
				}
				for _, l := range namedChildren(ch) {
					if id := c.expr(l); id.IsValid() {
						cd.Labels = append(cd.Labels, id)
					}
				}
				continue
			}
			cd.Body = append(cd.Body, c.stmts(ch)...)
		}
		d.Cases = append(d.Cases, c.tree.NewCase(c.span(grp), cd))
	}
	return c.tree.NewSwitch(kind, c.span(n), d)
}
