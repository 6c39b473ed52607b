package sema

import (
	"context"
	"errors"
	"testing"

	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/loader"
	"jsema/internal/parser"
	"jsema/internal/resolve"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

type fixture struct {
	fs  *source.FileSet
	t   *symbols.Table
	l   *loader.Loader
	a   *Analyzer
	bag *diag.Bag
}

func newFixture(tb testing.TB) *fixture {
	tb.Helper()
	boot, err := classfile.Boot()
	if err != nil {
		tb.Fatalf("Boot: %v", err)
	}
	bag := diag.NewBag(0)
	rep := &diag.BagReporter{Bag: bag}
	tab := symbols.NewTable()
	l := loader.New(tab, loader.Options{Index: boot, Reporter: rep})
	return &fixture{fs: source.NewFileSet(), t: tab, l: l, a: New(l, Options{Reporter: rep}), bag: bag}
}

func (f *fixture) declare(tb testing.TB, path, src string) *Unit {
	tb.Helper()
	res, err := parser.ParseSource(context.Background(), f.fs, path, []byte(src), parser.Options{})
	if err != nil {
		tb.Fatalf("parse %s: %v", path, err)
	}
	if res.Errors > 0 {
		tb.Fatalf("parse %s: %d syntax errors", path, res.Errors)
	}
	return f.a.Declare(f.fs.Get(res.Tree.File), res.Tree)
}

// analyze runs every pass over a single source and fails on a fatal error.
func (f *fixture) analyze(tb testing.TB, src string) *Result {
	tb.Helper()
	u := f.declare(tb, "Test.java", src)
	if err := f.a.CheckHierarchy(u); err != nil {
		tb.Fatalf("CheckHierarchy: %v", err)
	}
	if err := f.a.Resolve(u); err != nil {
		tb.Fatalf("Resolve: %v", err)
	}
	if u.State != TypesResolved {
		tb.Fatalf("state = %s", u.State)
	}
	return f.a.Result(u)
}

func (f *fixture) symbolAt(tb testing.TB, r *Result, name string, line uint32) symbols.SymbolID {
	tb.Helper()
	sym, ok := r.SymbolAt(name, line)
	if !ok {
		tb.Fatalf("no symbol %s declared on line %d", name, line)
	}
	return sym
}

func (f *fixture) symbol(tb testing.TB, r *Result, name string) symbols.SymbolID {
	tb.Helper()
	sym, ok := r.Symbol(name)
	if !ok {
		tb.Fatalf("no symbol %s", name)
	}
	return sym
}

func (f *fixture) typeOf(tb testing.TB, r *Result, name string) string {
	tb.Helper()
	return f.t.TypeString(f.t.MustSym(f.symbol(tb, r, name)).Type)
}

func (f *fixture) member(tb testing.TB, cls symbols.SymbolID, name string, nparams int) symbols.SymbolID {
	tb.Helper()
	for _, m := range f.t.Lookup(f.t.Members(cls), name) {
		s := f.t.MustSym(m)
		if s.Kind == symbols.SymMethod && len(s.Method.Params) == nparams {
			return m
		}
	}
	tb.Fatalf("%s has no method %s/%d", f.t.FullyQualifiedName(cls), name, nparams)
	return symbols.NoSymbolID
}

func TestWildcardOverloadUsages(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `package p;
class Animal {}
class Cat extends Animal {}
class Lion extends Cat {}
class A<T> {
  void foo(A<? extends Animal> a) {}
  void foo(Object o) {}
  void test() {
    foo(new A<Animal>());
    foo(new A<Cat>());
    foo(new A<Lion>());
    foo(new A<Object>());
  }
}
`)
	wild := f.symbolAt(t, r, "foo", 6)
	obj := f.symbolAt(t, r, "foo", 7)
	if got := len(f.t.Usages(wild)); got != 3 {
		t.Fatalf("foo(A<? extends Animal>) usages = %d, want 3", got)
	}
	if got := len(f.t.Usages(obj)); got != 1 {
		t.Fatalf("foo(Object) usages = %d, want 1", got)
	}
	if f.bag.HasCode(diag.ResAmbiguousMethod) {
		t.Fatalf("unexpected ambiguity: %+v", f.bag.Items())
	}
}

func TestStrictPhaseBeatsVarargs(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `class C {
  void foo(int i) {}
  void foo(Integer... is) {}
  void test() {
    foo(1);
    foo(1, 2);
    foo();
  }
}
`)
	prim := f.symbolAt(t, r, "foo", 2)
	varargs := f.symbolAt(t, r, "foo", 3)
	if got := len(f.t.Usages(prim)); got != 1 {
		t.Fatalf("foo(int) usages = %d, want 1", got)
	}
	if got := len(f.t.Usages(varargs)); got != 2 {
		t.Fatalf("foo(Integer...) usages = %d, want 2", got)
	}
	if !f.t.Flags(varargs).IsVarargs() {
		t.Fatalf("foo(Integer...) is not varargs")
	}
}

func TestCyclicHierarchyAbortsUnit(t *testing.T) {
	f := newFixture(t)
	u := f.declare(t, "Cycle.java", `package p;
class Foo extends Bar {}
class Bar extends Foo {}
`)
	err := f.a.CheckHierarchy(u)
	var cyc *resolve.CyclicHierarchyError
	if !errors.As(err, &cyc) {
		t.Fatalf("CheckHierarchy error = %v, want a cyclic hierarchy", err)
	}
	if cyc.Name != "p.Foo" && cyc.Name != "p.Bar" {
		t.Fatalf("cycle names %q", cyc.Name)
	}
	if u.State != FirstPassDone {
		t.Fatalf("state = %s, want %s", u.State, FirstPassDone)
	}
	if err := f.a.Resolve(u); !errors.As(err, &cyc) {
		t.Fatalf("Resolve error = %v", err)
	}
	if !f.bag.HasCode(diag.ResCyclicHierarchy) {
		t.Fatalf("no cyclic hierarchy diagnostic")
	}

	// other units of the run are unaffected
	r := f.analyze(t, "class Ok { int x; }")
	if _, ok := r.Symbol("x"); !ok {
		t.Fatalf("healthy unit lost its field")
	}
}

func TestLocalInference(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `import java.util.*;
class C {
  void m() {
    List<String> list = new ArrayList<>();
    var alias = list;
    for (var s : list) { s.length(); }
    var num = true ? 1 : 2L;
    var ex = true ? new IllegalArgumentException() : new IllegalStateException();
    var raw = new ArrayList<>();
    int[] arr = {1, 2};
    for (int e : arr) {}
  }
}
`)
	cases := []struct{ name, want string }{
		{"list", "java.util.List<java.lang.String>"},
		{"alias", "java.util.List<java.lang.String>"},
		{"s", "java.lang.String"},
		{"num", "long"},
		{"ex", "java.lang.RuntimeException"},
		{"raw", "java.util.ArrayList<java.lang.Object>"},
		{"arr", "int[]"},
		{"e", "int"},
	}
	for _, tc := range cases {
		if got := f.typeOf(t, r, tc.name); got != tc.want {
			t.Fatalf("type of %s = %s, want %s", tc.name, got, tc.want)
		}
	}
	length := f.member(t, f.l.ClassSymbol("java/lang/String"), "length", 0)
	if got := len(f.t.Usages(length)); got != 1 {
		t.Fatalf("String.length usages = %d, want 1", got)
	}
}

func TestLambdaAndMethodReference(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `import java.util.function.*;
class C {
  Integer apply(Function<String, Integer> fn) { return fn.apply("x"); }
  void m() {
    Function<String, Integer> f = s -> s.length();
    apply(str -> { return str.length(); });
    apply(String::length);
    Supplier<Object> sup = Object::new;
  }
}
`)
	if got := f.typeOf(t, r, "s"); got != "java.lang.String" {
		t.Fatalf("lambda parameter s = %s", got)
	}
	if got := f.typeOf(t, r, "str"); got != "java.lang.String" {
		t.Fatalf("deferred lambda parameter str = %s", got)
	}
	length := f.member(t, f.l.ClassSymbol("java/lang/String"), "length", 0)
	if got := len(f.t.Usages(length)); got != 3 {
		t.Fatalf("String.length usages = %d, want 3", got)
	}
	apply := f.member(t, f.l.ClassSymbol("java/util/function/Function"), "apply", 1)
	if got := len(f.t.Usages(apply)); got != 1 {
		t.Fatalf("Function.apply usages = %d, want 1", got)
	}
	if f.bag.HasCode(diag.ResUnknownMethod) {
		t.Fatalf("unexpected unknown method: %+v", f.bag.Items())
	}
}

func TestEnumAndRecordMembers(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `enum Color { RED, GREEN }
record Point(int x, int y) {}
class U {
  int m(Color c, Point p) {
    Color[] all = Color.values();
    Color g = Color.valueOf("GREEN");
    switch (c) {
      case RED: return p.x();
      default: return p.y();
    }
  }
}
`)
	color := f.symbol(t, r, "Color")
	if !f.t.Flags(color).IsEnum() {
		t.Fatalf("Color is not an enum")
	}
	red := f.symbolAt(t, r, "RED", 1)
	if got := len(f.t.Usages(red)); got != 1 {
		t.Fatalf("RED usages = %d, want 1", got)
	}
	for _, name := range []string{"values", "valueOf"} {
		n := 0
		if name == "valueOf" {
			n = 1
		}
		if got := len(f.t.Usages(f.member(t, color, name, n))); got != 1 {
			t.Fatalf("%s usages = %d, want 1", name, got)
		}
	}
	if got := f.typeOf(t, r, "all"); got != "Color[]" {
		t.Fatalf("values() type = %s", got)
	}

	point := f.symbol(t, r, "Point")
	if got := f.t.TypeString(f.t.Superclass(point)); got != "java.lang.Record" {
		t.Fatalf("Point extends %s", got)
	}
	x := f.member(t, point, "x", 0)
	if got := len(f.t.Usages(x)); got != 1 {
		t.Fatalf("x() usages = %d, want 1", got)
	}
	f.member(t, point, symbols.ConstructorName, 2)
}

func TestAnnotationMetadata(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `@interface Tag {
  String value();
  int n() default 3;
}
@Deprecated
class Old {
  static final int K = 40 + 2;
  @Tag(value = "a" + "b", n = K) void m() {}
}
`)
	old := f.symbol(t, r, "Old")
	if !f.t.Flags(old).IsDeprecated() {
		t.Fatalf("Old is not deprecated")
	}
	m := f.symbol(t, r, "m")
	md := f.t.Metadata(m)
	if !md.IsAnnotatedWith("Tag") {
		t.Fatalf("m is not annotated with Tag")
	}
	if v, ok := md.Value("Tag", "value"); !ok || v != "ab" {
		t.Fatalf("Tag.value = %v, %v", v, ok)
	}
	if v, ok := md.Value("Tag", "n"); !ok || v != int64(42) {
		t.Fatalf("Tag.n = %v, %v", v, ok)
	}
	n := f.member(t, f.symbol(t, r, "Tag"), "n", 0)
	def := f.t.MustSym(n).Method.DefaultValue
	if def == nil || def.Value != int64(3) {
		t.Fatalf("Tag.n default = %+v", def)
	}
}

func TestUnknownSymbolsDoNotAbort(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `class C {
  Missing field;
  void m() {
    undefinedThing.call();
    int y = field.size();
  }
}
`)
	if !f.bag.HasCode(diag.ResUnknownSymbol) {
		t.Fatalf("no unknown symbol warning")
	}
	if !f.bag.HasCode(diag.ResUnknownType) {
		t.Fatalf("no unknown type warning")
	}
	if f.bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", f.bag.Items())
	}
	if got := f.typeOf(t, r, "field"); got != "!unknown!" {
		t.Fatalf("field type = %s", got)
	}
}

func TestReferenceAt(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `class C {
  int count;
  void bump() {
    count = count + 1;
  }
}
`)
	field := f.symbolAt(t, r, "count", 2)
	ref, ok := r.ReferenceAt(4, 5)
	if !ok {
		t.Fatalf("no reference at 4:5")
	}
	if ref.Sym != field {
		t.Fatalf("reference at 4:5 = %s", f.t.MustSym(ref.Sym).Name)
	}
	if sym, ok := r.SymbolOf(ref.Node); !ok || sym != field {
		t.Fatalf("SymbolOf = %v, %v", sym, ok)
	}
	if typ, ok := r.TypeOf(ref.Node); !ok || f.t.TypeString(typ) != "int" {
		t.Fatalf("TypeOf = %v, %v", typ, ok)
	}
	if got := len(f.t.Usages(field)); got != 2 {
		t.Fatalf("count usages = %d, want 2", got)
	}
	if _, ok := r.ReferenceAt(1, 1); ok {
		t.Fatalf("keyword position resolved to a reference")
	}
}

func TestAnonymousAndLocalClasses(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `class Outer {
  void m() {
    class Local { int v; }
    Local l = new Local();
    int w = l.v;
    Runnable run = new Runnable() {
      public void run() { w(); }
      void w() {}
    };
  }
}
`)
	var anon symbols.SymbolID
	for _, cls := range r.Unit().Classes() {
		if f.t.Flags(cls).Has(symbols.FlagAnonymous) {
			anon = cls
		}
	}
	if !anon.IsValid() {
		t.Fatalf("no anonymous class declared")
	}
	ifaces := f.t.Interfaces(anon)
	if len(ifaces) != 1 || f.t.TypeString(ifaces[0]) != "java.lang.Runnable" {
		t.Fatalf("anonymous class implements %v", ifaces)
	}
	if got := f.t.BinaryName(anon); got != "Outer$2" {
		t.Fatalf("anonymous binary name = %s", got)
	}
	local := f.symbol(t, r, "Local")
	if got := f.t.BinaryName(local); got != "Outer$1Local" {
		t.Fatalf("local binary name = %s", got)
	}
	if got := len(f.t.Usages(f.symbol(t, r, "v"))); got != 1 {
		t.Fatalf("v usages = %d", got)
	}
	if got := len(f.t.Usages(f.member(t, anon, "w", 0))); got != 1 {
		t.Fatalf("w() usages = %d, want 1", got)
	}
}

func TestMultiCatchAndTry(t *testing.T) {
	f := newFixture(t)
	r := f.analyze(t, `import java.io.*;
class C {
  void m() {
    try (Closeable c = null) {
      throw new IOException();
    } catch (IOException | IllegalStateException e) {
      e.getMessage();
    }
  }
}
`)
	if got := f.typeOf(t, r, "e"); got != "java.io.IOException | java.lang.IllegalStateException" {
		t.Fatalf("catch parameter type = %s", got)
	}
	if got := f.typeOf(t, r, "c"); got != "java.io.Closeable" {
		t.Fatalf("resource type = %s", got)
	}
}

func TestResolveRequiresFirstPass(t *testing.T) {
	f := newFixture(t)
	u := f.declare(t, "A.java", "class A {}")
	if err := f.a.Resolve(u); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := f.a.Resolve(u); err == nil {
		t.Fatalf("second Resolve succeeded")
	}
	if err := f.a.CheckHierarchy(u); err == nil {
		t.Fatalf("CheckHierarchy after Resolve succeeded")
	}
}
