package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/source"
)

type Options struct {
	MaxErrors uint
	Reporter  diag.Reporter
}

type Result struct {
	Tree   *ast.Tree
	Errors uint
}

// converter walks one tree-sitter tree and rebuilds it in the ast arena.
type converter struct {
	src    []byte
	file   source.FileID
	tree   *ast.Tree
	opts   Options
	errors uint
}

// ParseFile parses f with the tree-sitter Java grammar and converts the
// concrete tree into an ast.Tree. Syntax errors are reported and the
// affected subtrees dropped; the returned tree is always usable.
// A fresh sitter parser is used per call so ParseFile is safe to call from
// parallel workers.
func ParseFile(ctx context.Context, f *source.File, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(java.GetLanguage())

	st, err := p.ParseCtx(ctx, nil, f.Content)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	defer st.Close()

	c := &converter{
		src:  f.Content,
		file: f.ID,
		tree: ast.NewTree(f.ID, uint(len(f.Content)/8)),
		opts: opts,
	}
	root := st.RootNode()
	if root.HasError() {
		c.reportErrors(root)
	}
	c.unit(root)
	c.tree.LinkParents()
	return Result{Tree: c.tree, Errors: c.errors}, nil
}

// ParseSource is a convenience wrapper for in-memory sources.
func ParseSource(ctx context.Context, fs *source.FileSet, path string, content []byte, opts Options) (Result, error) {
	id := fs.AddVirtual(path, content)
	return ParseFile(ctx, fs.Get(id), opts)
}

func (c *converter) reportErrors(n *sitter.Node) {
	if n == nil {
		return
	}
	if c.opts.MaxErrors > 0 && c.errors >= c.opts.MaxErrors {
		return
	}
	switch {
	case n.IsMissing():
		c.errors++
		diag.ReportError(c.opts.Reporter, diag.SynMissing, c.span(n),
			fmt.Sprintf("missing %s", n.Type())).Emit()
		return
	case n.IsError():
		c.errors++
		diag.ReportError(c.opts.Reporter, diag.SynError, c.span(n),
			fmt.Sprintf("syntax error near %q", clip(c.text(n), 32))).Emit()
		return
	}
	if !n.HasError() {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c.reportErrors(n.Child(i))
	}
}

func (c *converter) unsupported(n *sitter.Node) {
	diag.ReportWarning(c.opts.Reporter, diag.SynUnsupportedNode, c.span(n),
		fmt.Sprintf("unsupported syntax %q", n.Type())).Emit()
}

func (c *converter) span(n *sitter.Node) source.Span {
	if n == nil {
		return source.Span{File: c.file}
	}
	return source.Span{File: c.file, Start: n.StartByte(), End: n.EndByte()}
}

func (c *converter) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(c.src)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
