package symbols

import (
	"strings"
	"testing"
)

type mapFinder struct {
	t       *Table
	classes map[string]SymbolID
}

func (f *mapFinder) ClassSymbol(name string) SymbolID {
	if id, ok := f.classes[name]; ok {
		return id
	}
	return f.t.UnknownSymbol()
}

func (f *mapFinder) HasClass(name string) bool {
	_, ok := f.classes[name]
	return ok
}

// world builds a small hierarchy without a loader.
type world struct {
	t      *Table
	finder *mapFinder
}

func newWorld(tb testing.TB) *world {
	tb.Helper()
	tab := NewTable()
	w := &world{t: tab, finder: &mapFinder{t: tab, classes: map[string]SymbolID{}}}
	tab.SetFinder(w.finder)
	w.class("java/lang/Object", FlagPublic, "")
	w.class("java/io/Serializable", FlagPublic|FlagInterface|FlagAbstract, "")
	w.class("java/lang/Cloneable", FlagPublic|FlagInterface|FlagAbstract, "")
	w.class("java/lang/Number", FlagPublic|FlagAbstract, "java/lang/Object", "java/io/Serializable")
	w.class("java/lang/Integer", FlagPublic|FlagFinal, "java/lang/Number")
	w.class("java/lang/Long", FlagPublic|FlagFinal, "java/lang/Number")
	w.class("java/lang/String", FlagPublic|FlagFinal, "java/lang/Object", "java/io/Serializable")
	w.class("java/lang/Exception", FlagPublic, "java/lang/Object")
	return w
}

func (w *world) class(binary string, flags Flags, super string, ifaces ...string) SymbolID {
	pkg := ""
	simple := binary
	if i := strings.LastIndexByte(binary, '/'); i >= 0 {
		pkg, simple = binary[:i], binary[i+1:]
	}
	owner := w.t.Package(pkg)
	id := w.t.NewClass(ClassSpec{Name: simple, BinaryName: binary, Owner: owner, Flags: flags})
	w.t.Enter(w.t.Members(owner), id)
	w.finder.classes[binary] = id
	s := w.t.MustSym(id)
	if super != "" {
		s.Class.Super = w.typ(super)
	}
	for _, i := range ifaces {
		s.Class.Interfaces = append(s.Class.Interfaces, w.typ(i))
	}
	return id
}

func (w *world) typ(binary string) TypeID {
	return w.t.ClassType(binary)
}

func TestPrimitiveWidening(t *testing.T) {
	w := newWorld(t)
	b := w.t.Builtins()
	chain := []TypeID{b.Byte, b.Short, b.Int, b.Long, b.Float, b.Double}
	for i := range chain {
		for j := range chain {
			got := w.t.IsSubtype(chain[i], chain[j])
			if got != (i <= j) {
				t.Fatalf("%s <: %s = %v", w.t.TypeString(chain[i]), w.t.TypeString(chain[j]), got)
			}
		}
	}
	if !w.t.IsSubtype(b.Char, b.Int) || w.t.IsSubtype(b.Char, b.Short) || w.t.IsSubtype(b.Byte, b.Char) {
		t.Fatalf("char widening broken")
	}
	if w.t.IsSubtype(b.Boolean, b.Int) || !w.t.IsSubtype(b.Boolean, b.Boolean) {
		t.Fatalf("boolean must only be a subtype of itself")
	}
	if w.t.IsSubtype(b.Int, w.typ("java/lang/Integer")) {
		t.Fatalf("subtyping must not box")
	}
}

func TestNullAndUnknown(t *testing.T) {
	w := newWorld(t)
	b := w.t.Builtins()
	str := w.typ("java/lang/String")
	if !w.t.IsSubtype(b.Null, str) || !w.t.IsSubtype(b.Null, w.t.ArrayOf(b.Int)) || !w.t.IsSubtype(b.Null, b.Null) {
		t.Fatalf("null must be a subtype of references")
	}
	if w.t.IsSubtype(b.Null, b.Int) || w.t.IsSubtype(str, b.Null) {
		t.Fatalf("null is not a subtype of primitives nor a supertype")
	}
	if w.t.IsSubtype(b.Unknown, b.Unknown) || w.t.IsSubtype(str, b.Unknown) || w.t.IsSubtype(b.Unknown, w.typ("java/lang/Object")) {
		t.Fatalf("unknown must not take part in subtyping")
	}
}

func TestReferenceSubtyping(t *testing.T) {
	w := newWorld(t)
	integer, number, object := w.typ("java/lang/Integer"), w.typ("java/lang/Number"), w.typ("java/lang/Object")
	ser := w.typ("java/io/Serializable")
	cases := []struct {
		sub, sup TypeID
		want     bool
	}{
		{integer, integer, true},
		{integer, number, true},
		{integer, object, true},
		{integer, ser, true},
		{number, integer, false},
		{w.typ("java/lang/String"), number, false},
		{ser, object, true},
	}
	for _, tc := range cases {
		if got := w.t.IsSubtype(tc.sub, tc.sup); got != tc.want {
			t.Fatalf("%s <: %s = %v, want %v", w.t.TypeString(tc.sub), w.t.TypeString(tc.sup), got, tc.want)
		}
	}
	if !w.t.IsSubtypeOfName(integer, "java.io.Serializable") || w.t.IsSubtypeOfName(integer, "java.lang.String") {
		t.Fatalf("IsSubtypeOfName mismatch")
	}
	if !w.t.Is(integer, "java.lang.Integer") || w.t.Is(integer, "java.lang.Number") {
		t.Fatalf("Is must be exact")
	}
}

func TestArrayCovariance(t *testing.T) {
	w := newWorld(t)
	b := w.t.Builtins()
	integers := w.t.ArrayOf(w.typ("java/lang/Integer"))
	numbers := w.t.ArrayOf(w.typ("java/lang/Number"))
	strs := w.t.ArrayOf(w.typ("java/lang/String"))
	if !w.t.IsSubtype(integers, numbers) || w.t.IsSubtype(numbers, integers) || w.t.IsSubtype(strs, numbers) {
		t.Fatalf("array covariance must follow elements")
	}
	ints, longs := w.t.ArrayOf(b.Int), w.t.ArrayOf(b.Long)
	if w.t.IsSubtype(ints, longs) || !w.t.IsSubtype(ints, ints) {
		t.Fatalf("primitive arrays are invariant")
	}
	for _, name := range []string{"java/lang/Object", "java/lang/Cloneable", "java/io/Serializable"} {
		if !w.t.IsSubtype(ints, w.typ(name)) || !w.t.IsSubtype(integers, w.typ(name)) {
			t.Fatalf("arrays must be subtypes of %s", name)
		}
	}
	if !w.t.IsSubtypeOfName(integers, "java.lang.Number[]") || !w.t.Is(integers, "java.lang.Integer[]") {
		t.Fatalf("array names")
	}
}

func TestInterningIdentity(t *testing.T) {
	w := newWorld(t)
	list := w.class("java/util/List", FlagPublic|FlagInterface|FlagAbstract, "")
	e := w.t.NewTypeVar("E", list, 0, w.t.MustSym(list).Span)
	w.t.MustSym(list).Class.TypeParams = []SymbolID{e}
	str := w.typ("java/lang/String")

	a := w.t.Parameterize(list, []TypeID{str})
	b := w.t.Parameterize(list, []TypeID{str})
	if a != b {
		t.Fatalf("parameterized types must be interned")
	}
	if w.t.ArrayOf(str) != w.t.ArrayOf(str) || w.t.Wildcard(BoundExtends, str) != w.t.Wildcard(BoundExtends, str) {
		t.Fatalf("array and wildcard types must be interned")
	}
	if got := w.t.TypeString(a); got != "java.util.List<java.lang.String>" {
		t.Fatalf("TypeString = %q", got)
	}
	if !w.t.IsRaw(w.t.SymType(list)) || w.t.IsRaw(a) {
		t.Fatalf("raw detection broken")
	}
	if w.t.Erasure(a) != w.t.SymType(list) {
		t.Fatalf("erasure of List<String> must be List")
	}
	if !w.t.IsSubtype(w.t.SymType(list), a) {
		t.Fatalf("raw List must convert to List<String>")
	}
}

func TestSubstitutionOrderIsIdentity(t *testing.T) {
	w := newWorld(t)
	owner := w.class("p/Pair", FlagPublic, "java/lang/Object")
	k := w.t.Sym(w.t.NewTypeVar("K", owner, 0, w.t.MustSym(owner).Span)).Type
	v := w.t.Sym(w.t.NewTypeVar("V", owner, 1, w.t.MustSym(owner).Span)).Type
	str, num := w.typ("java/lang/String"), w.typ("java/lang/Number")

	s1 := w.t.InternSubst([]Pair{{k, str}, {v, num}})
	s2 := w.t.InternSubst([]Pair{{v, num}, {k, str}})
	s3 := w.t.InternSubst([]Pair{{k, str}, {v, num}})
	if s1 == s2 {
		t.Fatalf("order must be part of substitution identity")
	}
	if s1 != s3 {
		t.Fatalf("equal substitutions must be interned")
	}
	if got, ok := w.t.SubstLookup(s2, k); !ok || got != str {
		t.Fatalf("lookup failed")
	}
	if w.t.SubstString(s1) != "{K -> java.lang.String, V -> java.lang.Number}" {
		t.Fatalf("SubstString = %s", w.t.SubstString(s1))
	}
}

func TestBoxing(t *testing.T) {
	w := newWorld(t)
	b := w.t.Builtins()
	integer := w.typ("java/lang/Integer")
	if w.t.Box(b.Int) != integer || w.t.Unbox(integer) != b.Int {
		t.Fatalf("int <-> Integer")
	}
	if w.t.Unbox(w.typ("java/lang/String")).IsValid() {
		t.Fatalf("String does not unbox")
	}
	if w.t.Box(w.typ("java/lang/String")) != w.typ("java/lang/String") {
		t.Fatalf("Box must leave references alone")
	}
}

func TestCompletionIsIdempotent(t *testing.T) {
	w := newWorld(t)
	calls := 0
	cls := w.t.NewClass(ClassSpec{Name: "Lazy", BinaryName: "Lazy", Owner: w.t.RootPackage()})
	w.t.SetCompleter(cls, CompleterFunc(func(tab *Table, sym SymbolID) {
		calls++
		// re-entrant access while completing must not recurse
		_ = tab.Superclass(sym)
		tab.MustSym(sym).Class.Super = w.typ("java/lang/Number")
		tab.MustSym(sym).Flags |= FlagFinal
	}))
	if w.t.MustSym(cls).State() != Uncompleted {
		t.Fatalf("expected uncompleted symbol")
	}
	first := w.t.Superclass(cls)
	w.t.Complete(cls)
	second := w.t.Superclass(cls)
	if calls != 1 || first != second || !w.t.Flags(cls).IsFinal() {
		t.Fatalf("completion ran %d times (super %d vs %d)", calls, first, second)
	}
	if !w.t.IsSubtype(w.t.SymType(cls), w.typ("java/io/Serializable")) {
		t.Fatalf("completed supertypes must be visible")
	}
}

func TestScopes(t *testing.T) {
	w := newWorld(t)
	owner := w.class("p/C", FlagPublic, "java/lang/Object")
	sc := w.t.NewScope(ScopeOrdinary, owner, NoScopeID)
	f1 := w.t.NewVar(MemberSpec{Name: "x", Owner: owner}, w.t.Builtins().Int)
	f2 := w.t.NewVar(MemberSpec{Name: "x", Owner: owner}, w.t.Builtins().Long)
	m1 := w.t.NewMethod(MemberSpec{Name: "m", Owner: owner})
	m2 := w.t.NewMethod(MemberSpec{Name: "m", Owner: owner})
	if !w.t.Enter(sc, f1) || w.t.Enter(sc, f2) {
		t.Fatalf("ordinary scope must reject duplicate fields")
	}
	if !w.t.Enter(sc, m1) || !w.t.Enter(sc, m2) || len(w.t.Lookup(sc, "m")) != 2 {
		t.Fatalf("overloads must coexist")
	}

	imports := w.t.NewScope(ScopeImport, NoSymbolID, NoScopeID)
	other := w.class("q/C", FlagPublic, "java/lang/Object")
	if !w.t.Enter(imports, owner) || !w.t.Enter(imports, other) || len(w.t.Lookup(imports, "C")) != 2 {
		t.Fatalf("import scope must accept duplicates")
	}

	star := w.t.NewScope(ScopeStarImport, NoSymbolID, NoScopeID)
	w.t.AddImportSource(star, ImportSource{Sym: w.t.Package("java.lang")})
	w.t.AddImportSource(star, ImportSource{Sym: w.t.Package("java.lang")})
	w.t.AddImportSource(star, ImportSource{Sym: w.t.Package("java.io")})
	if got := w.t.Lookup(star, "Integer"); len(got) != 1 || got[0] != w.t.ClassByName("java/lang/Integer") {
		t.Fatalf("star import lookup = %v", got)
	}
	if got := w.t.Lookup(star, "Missing"); len(got) != 0 {
		t.Fatalf("unexpected %v", got)
	}

	inner := w.t.NewScope(ScopeOrdinary, owner, sc)
	if got := w.t.LookupChain(inner, "x"); len(got) != 1 || got[0] != f1 {
		t.Fatalf("lexical chain lookup failed")
	}
}

func TestUsagesSnapshot(t *testing.T) {
	w := newWorld(t)
	v := w.t.NewVar(MemberSpec{Name: "v", Owner: w.t.RootPackage()}, w.t.Builtins().Int)
	w.t.AddUsage(v, Usage{})
	snap := w.t.Usages(v)
	w.t.AddUsage(v, Usage{})
	if len(snap) != 1 || len(w.t.Usages(v)) != 2 {
		t.Fatalf("usages must be returned as snapshots")
	}
	w.t.AddUsage(w.t.UnknownSymbol(), Usage{})
	if len(w.t.Usages(w.t.UnknownSymbol())) != 0 {
		t.Fatalf("unknown symbol must not collect usages")
	}
}

func TestMetadata(t *testing.T) {
	w := newWorld(t)
	cls := w.class("p/Annotated", FlagPublic, "java/lang/Object")
	w.t.AddMetadata(cls, Annotation{Type: "p.Tag", Values: []AnnotationValue{{Name: "value", Value: "x"}}})
	md := w.t.Metadata(cls)
	if !md.IsAnnotatedWith("p.Tag") || md.IsAnnotatedWith("p.Other") {
		t.Fatalf("annotation lookup")
	}
	if v, ok := md.Value("p.Tag", "value"); !ok || v.(string) != "x" {
		t.Fatalf("value lookup: %v", v)
	}
}
