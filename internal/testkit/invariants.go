package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"jsema/internal/ast"
	"jsema/internal/source"
)

// maxDepth bounds the walk so a malformed tree with a cycle fails instead
// of recursing forever.
const maxDepth = 4096

// CheckTreeInvariants runs a minimal set of span invariants on a parsed unit:
// 1) the root is a compilation unit whose span lies within the content
// 2) every reachable node points at the same file and has Start <= End
// 3) every non-empty span is contained in the root span
func CheckTreeInvariants(tree *ast.Tree, sf *source.File) error {
	if tree == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	if tree.File != sf.ID {
		return fmt.Errorf("tree file id %d, want %d", tree.File, sf.ID)
	}
	root := tree.Node(tree.Root)
	if root == nil || root.Kind != ast.KindCompilationUnit {
		return fmt.Errorf("root is not a compilation unit")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if root.Span.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", root.Span.End, lenContent)
	}
	return checkNode(tree, tree.Root, root.Span, 0)
}

func checkNode(tree *ast.Tree, id ast.NodeID, bounds source.Span, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("tree deeper than %d, cycle at node %d?", maxDepth, id)
	}
	n := tree.Node(id)
	if n == nil {
		return fmt.Errorf("dangling node id %d", id)
	}
	sp := n.Span
	if sp.Start > sp.End {
		return fmt.Errorf("node %d (%s) has inverted span %v", id, n.Kind, sp)
	}
	if !sp.Empty() {
		if sp.File != tree.File {
			return fmt.Errorf("node %d (%s) span file mismatch: got=%d want=%d", id, n.Kind, sp.File, tree.File)
		}
		if sp.Start < bounds.Start || sp.End > bounds.End {
			return fmt.Errorf("node %d (%s) span %v is outside unit span %v", id, n.Kind, sp, bounds)
		}
	}
	for _, c := range tree.Children(id) {
		if err := checkNode(tree, c, bounds, depth+1); err != nil {
			return err
		}
	}
	return nil
}
