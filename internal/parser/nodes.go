package parser

import sitter "github.com/smacker/go-tree-sitter"

// namedChildren skips comments and error nodes.
func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		ch := n.NamedChild(i)
		if ch == nil || ch.IsError() {
			continue
		}
		switch ch.Type() {
		case "line_comment", "block_comment", "comment":
			continue
		}
		out = append(out, ch)
	}
	return out
}

// childOfType returns the first named child whose type is one of types.
func childOfType(n *sitter.Node, types ...string) *sitter.Node {
	for _, ch := range namedChildren(n) {
		for _, t := range types {
			if ch.Type() == t {
				return ch
			}
		}
	}
	return nil
}

// hasToken reports whether n has an anonymous child with the given text,
// e.g. "static" in an import declaration.
func hasToken(n *sitter.Node, tok string) bool {
	if n == nil {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch != nil && !ch.IsNamed() && ch.Type() == tok {
			return true
		}
	}
	return false
}

// field is ChildByFieldName with a nil guard.
func field(n *sitter.Node, name string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// fieldAll collects every child tagged with the field name.
func fieldAll(n *sitter.Node, name string) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.FieldNameForChild(i) == name {
			if ch := n.Child(i); ch != nil {
				out = append(out, ch)
			}
		}
	}
	return out
}
