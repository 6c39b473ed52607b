package parser

import (
	"context"
	"testing"

	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/source"
	"jsema/internal/testkit"
)

func parse(t *testing.T, src string) (*ast.Tree, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	fs := source.NewFileSet()
	res, err := ParseSource(context.Background(), fs, "Test.java", []byte(src),
		Options{Reporter: &diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := testkit.CheckTreeInvariants(res.Tree, fs.Get(res.Tree.File)); err != nil {
		t.Fatalf("tree invariants: %v", err)
	}
	return res.Tree, bag
}

func TestParseClassHeader(t *testing.T) {
	tree, bag := parse(t, `package a.b;
import java.util.*;
import static java.lang.Math.max;
public class Box<T extends Comparable<T>> extends Base implements java.io.Serializable {
  private T value;
  int[] counts, more[];
  public <R> R map(java.util.function.Function<? super T, R> f, Object... rest) { return null; }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	unit := tree.Unit(tree.Root)
	if unit.Package != "a.b" || len(unit.Imports) != 2 || len(unit.Types) != 1 {
		t.Fatalf("unexpected unit %+v", unit)
	}
	if imp := tree.Import(unit.Imports[0]); imp.Name != "java.util" || !imp.Star || imp.Static {
		t.Fatalf("unexpected star import %+v", imp)
	}
	if imp := tree.Import(unit.Imports[1]); imp.Name != "java.lang.Math.max" || !imp.Static {
		t.Fatalf("unexpected static import %+v", imp)
	}

	cls := tree.Class(unit.Types[0])
	if cls.Name != "Box" || !cls.Mods.Flags.Has(ast.ModPublic) {
		t.Fatalf("unexpected class %+v", cls)
	}
	if len(cls.TypeParams) != 1 || len(tree.TypeParam(cls.TypeParams[0]).Bounds) != 1 {
		t.Fatalf("expected one bounded type parameter")
	}
	if sup := tree.Type(cls.Super); sup == nil || sup.Name != "Base" {
		t.Fatalf("unexpected superclass %+v", sup)
	}
	if len(cls.Interfaces) != 1 || tree.Type(cls.Interfaces[0]).Name != "java.io.Serializable" {
		t.Fatalf("unexpected interfaces")
	}
	// value, counts, more, map
	if len(cls.Members) != 4 {
		t.Fatalf("expected 4 members, got %d", len(cls.Members))
	}
	if more := tree.Var(cls.Members[2]); more.Name != "more" || more.Dims != 1 {
		t.Fatalf("unexpected declarator %+v", more)
	}
	m := tree.Method(cls.Members[3])
	if m.Name != "map" || len(m.TypeParams) != 1 || len(m.Params) != 2 {
		t.Fatalf("unexpected method %+v", m)
	}
	if last := tree.Var(m.Params[1]); !last.Varargs || last.Name != "rest" {
		t.Fatalf("expected varargs parameter, got %+v", last)
	}
	fn := tree.Type(tree.Var(m.Params[0]).Type)
	if fn.Name != "java.util.function.Function" || len(fn.Parts[len(fn.Parts)-1].Args) != 2 {
		t.Fatalf("unexpected parameterized type %+v", fn)
	}
	wc := tree.Type(fn.Parts[len(fn.Parts)-1].Args[0])
	if tree.Kind(fn.Parts[len(fn.Parts)-1].Args[0]) != ast.KindWildcard || wc.BoundKind != ast.BoundSuper {
		t.Fatalf("expected ? super T, got %+v", wc)
	}
}

func TestParseExpressions(t *testing.T) {
	tree, _ := parse(t, `class A {
  void f() {
    foo(new A<Cat>());
    int x = cond ? 1 : 2;
    for (String s : list) { s.length(); }
    Runnable r = () -> {};
  }
}`)
	var kinds = map[ast.Kind]int{}
	tree.Walk(tree.Root, func(id ast.NodeID) bool {
		kinds[tree.Kind(id)]++
		return true
	})
	for _, k := range []ast.Kind{ast.KindMethodCall, ast.KindNew, ast.KindConditional, ast.KindForEach, ast.KindLambda, ast.KindLocalVar} {
		if kinds[k] == 0 {
			t.Fatalf("expected a %v node, got %v", k, kinds)
		}
	}
	if kinds[ast.KindMethodCall] != 2 {
		t.Fatalf("expected 2 calls, got %d", kinds[ast.KindMethodCall])
	}
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	tree, bag := parse(t, "class Broken { void f( { }")
	if !bag.HasErrors() {
		t.Fatalf("expected syntax errors")
	}
	if tree == nil || tree.Root == ast.NoNodeID {
		t.Fatalf("tree must still be produced")
	}
}
