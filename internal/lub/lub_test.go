package lub_test

import (
	"errors"
	"fmt"
	"testing"

	"jsema/internal/classfile"
	"jsema/internal/generics"
	"jsema/internal/loader"
	"jsema/internal/lub"
	"jsema/internal/symbols"
)

type fixture struct {
	t      *symbols.Table
	loader *loader.Loader
	solver *lub.Solver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	boot, err := classfile.Boot()
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	extra := classfile.NewMapIndex(
		&classfile.Class{Name: "p/A", Access: classfile.AccPublic, Super: "java/lang/Object"},
		&classfile.Class{Name: "p/B", Access: classfile.AccPublic, Super: "java/lang/Object"},
	)
	tab := symbols.NewTable()
	f := &fixture{t: tab, solver: lub.New(tab)}
	f.loader = loader.New(tab, loader.Options{Index: classfile.ChainIndex{extra, boot}})
	generics.New(tab, f.solver)
	return f
}

func (f *fixture) typ(name string, args ...symbols.TypeID) symbols.TypeID {
	sym := f.loader.ClassSymbol(name)
	if len(args) == 0 {
		return f.t.SymType(sym)
	}
	return f.t.Parameterize(sym, args)
}

func TestLeastUpperBound(t *testing.T) {
	f := newFixture(t)
	b := f.t.Builtins()
	str := f.typ("java/lang/String")
	integer := f.typ("java/lang/Integer")

	cases := []struct {
		name string
		in   []symbols.TypeID
		want string
	}{
		{"single", []symbols.TypeID{str}, "java.lang.String"},
		{"same primitive", []symbols.TypeID{b.Int, b.Int}, "int"},
		{"different primitives", []symbols.TypeID{b.Int, b.Long}, "!unknown!"},
		{"unknown input", []symbols.TypeID{str, b.Unknown}, "!unknown!"},
		{"null dropped", []symbols.TypeID{b.Null, str}, "java.lang.String"},
		{"boxing", []symbols.TypeID{b.Int, integer}, "java.lang.Integer"},
		{"sibling exceptions", []symbols.TypeID{f.typ("java/lang/NullPointerException"), f.typ("java/lang/IllegalArgumentException")}, "java.lang.RuntimeException"},
		{"distant exceptions", []symbols.TypeID{f.typ("java/io/IOException"), f.typ("java/lang/RuntimeException")}, "java.lang.Exception"},
		{"unrelated", []symbols.TypeID{f.typ("p/A"), f.typ("p/B")}, "java.lang.Object"},
		{"class before interface", []symbols.TypeID{integer, f.typ("java/lang/Long")}, "java.lang.Number"},
		{"arrays", []symbols.TypeID{f.t.ArrayOf(integer), f.t.ArrayOf(f.typ("java/lang/Long"))}, "java.lang.Number[]"},
		{"generic same args", []symbols.TypeID{f.typ("java/util/ArrayList", str), f.typ("java/util/LinkedList", str)}, "java.util.AbstractList<java.lang.String>"},
		{"generic different args", []symbols.TypeID{f.typ("java/util/ArrayList", integer), f.typ("java/util/ArrayList", f.typ("java/lang/Long"))}, "java.util.ArrayList<? extends java.lang.Number>"},
		{"raw input", []symbols.TypeID{f.typ("java/util/ArrayList"), f.typ("java/util/LinkedList", str)}, "java.util.AbstractList"},
	}
	for _, tc := range cases {
		got := f.solver.LeastUpperBound(tc.in)
		if s := f.t.TypeString(got); s != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, s, tc.want)
		}
	}
}

func TestLeastUpperBoundTerminates(t *testing.T) {
	f := newFixture(t)
	// Comparable<Integer> vs Comparable<String> recurses through the
	// arguments until the distance limit.
	got := f.solver.LeastUpperBound([]symbols.TypeID{f.typ("java/lang/Integer"), f.typ("java/lang/String")})
	if f.t.TypeSym(got) != f.loader.ClassSymbol("java/lang/Comparable") {
		t.Fatalf("got %s", f.t.TypeString(got))
	}
}

func TestLeastUpperBoundEmptyPanics(t *testing.T) {
	f := newFixture(t)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, lub.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument panic, got %v", fmt.Sprint(r))
		}
	}()
	f.solver.LeastUpperBound(nil)
}
