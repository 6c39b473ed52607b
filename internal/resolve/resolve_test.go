package resolve

import (
	"errors"
	"testing"

	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/loader"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

type fixture struct {
	t   *symbols.Table
	l   *loader.Loader
	r   *Resolver
	bag *diag.Bag
}

func newFixture(tb testing.TB, extra ...*classfile.Class) *fixture {
	tb.Helper()
	boot, err := classfile.Boot()
	if err != nil {
		tb.Fatalf("Boot: %v", err)
	}
	bag := diag.NewBag(0)
	rep := &diag.BagReporter{Bag: bag}
	tab := symbols.NewTable()
	l := loader.New(tab, loader.Options{
		Index:    classfile.ChainIndex{classfile.NewMapIndex(extra...), boot},
		Reporter: rep,
	})
	return &fixture{t: tab, l: l, r: New(l, nil, Options{Reporter: rep}), bag: bag}
}

func (f *fixture) class(name string) symbols.SymbolID { return f.l.ClassSymbol(name) }

func (f *fixture) typ(name string, args ...symbols.TypeID) symbols.TypeID {
	if len(args) == 0 {
		return f.t.SymType(f.class(name))
	}
	return f.t.Parameterize(f.class(name), args)
}

// classEnv builds the environment of code inside the body of class name.
func (f *fixture) classEnv(name string) *Env {
	cls := f.class(name)
	pkg := f.t.PackageOf(cls)
	star := f.t.NewScope(symbols.ScopeStarImport, symbols.NoSymbolID, symbols.NoScopeID)
	f.t.AddImportSource(star, symbols.ImportSource{Sym: f.l.Package("java.lang")})
	return NewUnitEnv(pkg, symbols.NoScopeID, star).ForClass(cls, false)
}

func member(tb testing.TB, f *fixture, class, name, sig string) symbols.SymbolID {
	tb.Helper()
	for _, m := range f.t.Lookup(f.t.Members(f.class(class)), name) {
		if sig == "" || f.t.Signature(m) == sig {
			return m
		}
	}
	tb.Fatalf("%s has no member %s %s", class, name, sig)
	return symbols.NoSymbolID
}

func expectCycle(t *testing.T, fn func()) *CyclicHierarchyError {
	t.Helper()
	var got *CyclicHierarchyError
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok || !errors.As(err, &got) {
					panic(rec)
				}
			}
		}()
		fn()
	}()
	if got == nil {
		t.Fatalf("expected a cyclic hierarchy panic")
	}
	return got
}

func TestIsSubClass(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		class, base string
		want        bool
	}{
		{"java/util/ArrayList", "java/util/ArrayList", true},
		{"java/util/ArrayList", "java/util/AbstractList", true},
		{"java/util/ArrayList", "java/util/List", true},
		{"java/util/ArrayList", "java/util/Collection", true},
		{"java/util/ArrayList", "java/lang/Iterable", true},
		{"java/lang/Integer", "java/lang/Number", true},
		{"java/lang/Integer", "java/lang/Comparable", true},
		{"java/lang/Number", "java/lang/Integer", false},
		{"java/lang/String", "java/util/List", false},
	}
	for _, tc := range cases {
		if got := f.r.IsSubClass(f.class(tc.class), f.class(tc.base)); got != tc.want {
			t.Fatalf("IsSubClass(%s, %s) = %v, want %v", tc.class, tc.base, got, tc.want)
		}
	}
}

func TestCyclicHierarchyIsFatal(t *testing.T) {
	f := newFixture(t,
		&classfile.Class{Name: "p/Foo", Access: classfile.AccPublic, Super: "p/Bar"},
		&classfile.Class{Name: "p/Bar", Access: classfile.AccPublic, Super: "p/Foo"},
		&classfile.Class{Name: "p/I", Access: classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract, Super: "java/lang/Object", Interfaces: []string{"p/J"}},
		&classfile.Class{Name: "p/J", Access: classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract, Super: "java/lang/Object", Interfaces: []string{"p/I"}},
	)
	foo, obj := f.class("p/Foo"), f.class("java/lang/Object")
	err := expectCycle(t, func() { f.r.IsSubClass(foo, obj) })
	if err.Name != "p.Foo" && err.Name != "p.Bar" {
		t.Fatalf("cycle names %q", err.Name)
	}
	expectCycle(t, func() { f.r.CheckHierarchy(f.class("p/Bar")) })
	expectCycle(t, func() { f.r.IsSubClass(f.class("p/I"), f.class("java/lang/Runnable")) })

	// lookups degrade instead of failing
	env := f.classEnv("p/Foo")
	if got := f.r.FindField(env, f.typ("p/Foo"), "missing"); !f.t.IsUnknownSym(got) {
		t.Fatalf("field lookup on a cycle = %d", got)
	}
}

func accessFixture(t *testing.T) *fixture {
	t.Helper()
	intField := func(name string, acc uint16) classfile.Field {
		return classfile.Field{Name: name, Access: acc, Descriptor: "I"}
	}
	return newFixture(t,
		&classfile.Class{
			Name: "p/A", Access: classfile.AccPublic, Super: "java/lang/Object",
			Fields: []classfile.Field{
				intField("pub", classfile.AccPublic),
				intField("priv", classfile.AccPrivate),
				intField("prot", classfile.AccProtected),
				intField("pkg", 0),
			},
			InnerClasses: []classfile.InnerClass{{Inner: "p/A$In", Outer: "p/A", Simple: "In", Access: classfile.AccStatic}},
		},
		&classfile.Class{Name: "p/A$In", Access: 0, Super: "java/lang/Object"},
		&classfile.Class{Name: "p/Other", Access: classfile.AccPublic, Super: "java/lang/Object"},
		&classfile.Class{Name: "q/B", Access: classfile.AccPublic, Super: "p/A"},
		&classfile.Class{Name: "q/C", Access: classfile.AccPublic, Super: "java/lang/Object"},
	)
}

func TestIsAccessible(t *testing.T) {
	f := accessFixture(t)
	cases := []struct {
		from  string
		field string
		want  bool
	}{
		{"q/C", "pub", true},
		{"q/C", "priv", false},
		{"q/C", "prot", false},
		{"q/C", "pkg", false},
		{"q/B", "prot", true},
		{"q/B", "pkg", false},
		{"q/B", "priv", false},
		{"p/Other", "pkg", true},
		{"p/Other", "prot", true},
		{"p/Other", "priv", false},
		{"p/A$In", "priv", true},
		{"p/A", "priv", true},
	}
	for _, tc := range cases {
		field := member(t, f, "p/A", tc.field, "")
		if got := f.r.IsAccessible(f.classEnv(tc.from), field); got != tc.want {
			t.Fatalf("%s accessing %s: got %v, want %v", tc.from, tc.field, got, tc.want)
		}
	}
	if f.r.IsAccessible(f.classEnv("q/C"), f.class("p/A$In")) {
		t.Fatalf("package-private nested class must not be accessible from q")
	}
}

func TestIsInheritedIn(t *testing.T) {
	f := accessFixture(t)
	a, b, other := f.class("p/A"), f.class("q/B"), f.class("p/Other")
	cases := []struct {
		field string
		class symbols.SymbolID
		want  bool
	}{
		{"pub", b, true},
		{"prot", b, true},
		{"pkg", b, false},
		{"pkg", other, true},
		{"priv", b, false},
		{"priv", a, true},
	}
	for _, tc := range cases {
		if got := f.r.IsInheritedIn(member(t, f, "p/A", tc.field, ""), tc.class); got != tc.want {
			t.Fatalf("IsInheritedIn(%s, %s) = %v", tc.field, f.t.FullyQualifiedName(tc.class), got)
		}
	}
}

func TestFindFieldThroughHierarchy(t *testing.T) {
	f := accessFixture(t)
	env := f.classEnv("q/B")
	if got := f.r.FindField(env, f.typ("q/B"), "prot"); got != member(t, f, "p/A", "prot", "") {
		t.Fatalf("inherited protected field not found")
	}
	if got := f.r.FindField(env, f.typ("q/B"), "nope"); !f.t.IsUnknownSym(got) {
		t.Fatalf("missing field must be unknown")
	}
	length := f.r.FindField(env, f.t.ArrayOf(f.t.Builtins().Int), "length")
	if f.t.IsUnknownSym(length) || f.t.SymType(length) != f.t.Builtins().Int {
		t.Fatalf("array length not found")
	}
	if got := f.r.FindIdent(env, "pub", KindVar); got != member(t, f, "p/A", "pub", "") {
		t.Fatalf("FindIdent through the class environment failed")
	}
}

func TestFindType(t *testing.T) {
	f := newFixture(t,
		&classfile.Class{
			Name: "p/Outer", Access: classfile.AccPublic, Super: "java/lang/Object",
			Signature:    "<T:Ljava/lang/Object;>Ljava/lang/Object;",
			InnerClasses: []classfile.InnerClass{{Inner: "p/Outer$Node", Outer: "p/Outer", Simple: "Node", Access: classfile.AccPublic | classfile.AccStatic}},
		},
		&classfile.Class{Name: "p/Outer$Node", Access: classfile.AccPublic, Super: "java/lang/Object"},
		&classfile.Class{Name: "p/Sibling", Access: classfile.AccPublic, Super: "java/lang/Object"},
	)
	named := f.t.NewScope(symbols.ScopeImport, symbols.NoSymbolID, symbols.NoScopeID)
	f.t.Enter(named, f.class("java/util/List"))
	star := f.t.NewScope(symbols.ScopeStarImport, symbols.NoSymbolID, symbols.NoScopeID)
	f.t.AddImportSource(star, symbols.ImportSource{Sym: f.l.Package("java.lang")})
	f.t.AddImportSource(star, symbols.ImportSource{Sym: f.l.Package("java.util")})
	env := NewUnitEnv(f.l.Package("p"), named, star).ForClass(f.class("p/Outer"), false)

	cases := []struct {
		name string
		want string
	}{
		{"String", "java.lang.String"},
		{"List", "java.util.List"},
		{"ArrayList", "java.util.ArrayList"},
		{"Sibling", "p.Sibling"},
		{"Node", "p.Outer$Node"},
		{"Outer", "p.Outer"},
	}
	for _, tc := range cases {
		if got := f.t.FullyQualifiedName(f.r.FindType(env, tc.name)); got != tc.want {
			t.Fatalf("FindType(%s) = %q, want %q", tc.name, got, tc.want)
		}
	}
	if tv := f.r.FindType(env, "T"); f.t.MustSym(tv).Kind != symbols.SymTypeVar {
		t.Fatalf("T must resolve to the class type parameter")
	}
	if !f.t.IsUnknownSym(f.r.FindType(env, "Missing")) {
		t.Fatalf("Missing must be unknown")
	}
	if got := f.r.FindQualifiedType(env, "java.util.Map.Entry"); f.t.FullyQualifiedName(got) != "java.util.Map$Entry" {
		t.Fatalf("qualified lookup = %q", f.t.FullyQualifiedName(got))
	}
	path := f.r.FindTypePath(env, []string{"java", "util", "Nope"})
	if len(path) != 3 || !f.t.IsUnknownSym(path[2]) {
		t.Fatalf("java.util.Nope must be unknown")
	}
	if got := f.r.FindIdent(env, "java", KindPackage); f.t.MustSym(got).Kind != symbols.SymPackage {
		t.Fatalf("java must resolve to a package")
	}
}

func TestLocalsShadowFields(t *testing.T) {
	f := accessFixture(t)
	env := f.classEnv("p/A")
	scope := f.t.NewScope(symbols.ScopeOrdinary, symbols.NoSymbolID, symbols.NoScopeID)
	local := f.t.NewVar(symbols.MemberSpec{Name: "pub", Flags: symbols.FlagLocal}, f.t.Builtins().Long)
	f.t.Enter(scope, local)
	inner := env.ForMethod(symbols.NoSymbolID, symbols.NoScopeID, false).ForBlock(scope)
	if got := f.r.FindIdent(inner, "pub", KindVar); got != local {
		t.Fatalf("local must shadow the field")
	}
	if got := f.r.FindIdent(inner, "priv", KindVar); got != member(t, f, "p/A", "priv", "") {
		t.Fatalf("field must be found behind the block")
	}
	if !f.t.IsUnknownSym(f.r.FindIdent(inner, "nothing", KindAny)) {
		t.Fatalf("unresolved name must yield the unknown symbol")
	}
}

func overloadFixture(t *testing.T) *fixture {
	t.Helper()
	m := func(name, desc string, acc uint16) classfile.Method {
		return classfile.Method{Name: name, Descriptor: desc, Access: classfile.AccPublic | acc}
	}
	return newFixture(t, &classfile.Class{
		Name: "p/O", Access: classfile.AccPublic, Super: "java/lang/Object",
		Methods: []classfile.Method{
			m("foo", "(I)V", 0),
			m("foo", "([Ljava/lang/Integer;)V", classfile.AccVarargs),
			m("baz", "(Ljava/lang/Integer;Ljava/lang/Object;)V", 0),
			m("baz", "(Ljava/lang/Object;Ljava/lang/Integer;)V", 0),
			m("qux", "(Ljava/lang/Object;)V", 0),
			m("qux", "(Ljava/lang/String;)V", 0),
			m("wide", "(J)V", 0),
			m("wide", "(D)V", 0),
		},
	})
}

func TestOverloadPhases(t *testing.T) {
	f := overloadFixture(t)
	env := f.classEnv("p/O")
	site := f.typ("p/O")
	b := f.t.Builtins()
	integer := f.typ("java/lang/Integer")
	cases := []struct {
		name  string
		args  []symbols.TypeID
		want  string
		phase Phase
	}{
		{"foo", []symbols.TypeID{b.Int}, "foo(int)", PhaseStrict},
		{"foo", []symbols.TypeID{b.Short}, "foo(int)", PhaseStrict},
		{"foo", []symbols.TypeID{integer}, "foo(int)", PhaseLoose},
		{"foo", []symbols.TypeID{b.Int, b.Int}, "foo(java.lang.Integer...)", PhaseVarargs},
		{"foo", nil, "foo(java.lang.Integer...)", PhaseVarargs},
		{"foo", []symbols.TypeID{f.t.ArrayOf(integer)}, "foo(java.lang.Integer...)", PhaseStrict},
		{"qux", []symbols.TypeID{f.t.StringType()}, "qux(java.lang.String)", PhaseStrict},
		{"qux", []symbols.TypeID{b.Null}, "qux(java.lang.String)", PhaseStrict},
		{"qux", []symbols.TypeID{b.Int}, "qux(java.lang.Object)", PhaseLoose},
		{"wide", []symbols.TypeID{b.Int}, "wide(long)", PhaseStrict},
		{"wide", []symbols.TypeID{f.t.UnknownType()}, "wide(long)", PhaseStrict},
	}
	for _, tc := range cases {
		res := f.r.FindMethod(env, site, tc.name, tc.args, nil, source.Span{})
		if got := f.t.Signature(res.Sym); got != tc.want || res.Phase != tc.phase {
			t.Fatalf("%s%v resolved to %s in phase %s, want %s in %s", tc.name, tc.args, got, res.Phase, tc.want, tc.phase)
		}
	}
	if f.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", f.bag.Items())
	}
}

func TestAmbiguousCallIsReported(t *testing.T) {
	f := overloadFixture(t)
	integer := f.typ("java/lang/Integer")
	res := f.r.FindMethod(f.classEnv("p/O"), f.typ("p/O"), "baz", []symbols.TypeID{integer, integer}, nil, source.Span{})
	if !f.t.IsUnknownSym(res.Sym) || len(res.Ambiguous) != 2 {
		t.Fatalf("ambiguous call resolved to %s", f.t.Signature(res.Sym))
	}
	if !f.bag.HasCode(diag.ResAmbiguousMethod) || f.bag.HasErrors() {
		t.Fatalf("expected one ambiguity warning, got %+v", f.bag.Items())
	}
	if len(f.bag.Items()[0].Notes) != 2 {
		t.Fatalf("candidates must be listed as notes")
	}

	res = f.r.FindMethod(f.classEnv("p/O"), f.typ("p/O"), "foo", []symbols.TypeID{f.t.StringType()}, nil, source.Span{})
	if !f.t.IsUnknownSym(res.Sym) || !f.bag.HasCode(diag.ResUnknownMethod) {
		t.Fatalf("inapplicable call must be unknown and reported")
	}
}

func TestGenericCalls(t *testing.T) {
	f := newFixture(t)
	env := f.classEnv("java/lang/Object")
	str := f.t.StringType()

	res := f.r.FindMethod(env, f.typ("java/util/Arrays"), "asList", []symbols.TypeID{str, str}, nil, source.Span{})
	if got := f.t.TypeString(f.r.Result(res)); got != "java.util.List<java.lang.String>" || res.Phase != PhaseVarargs {
		t.Fatalf("asList result = %s (%s)", got, res.Phase)
	}

	list := f.typ("java/util/ArrayList", str)
	res = f.r.FindMethod(env, list, "get", []symbols.TypeID{f.t.Builtins().Int}, nil, source.Span{})
	if got := f.r.Result(res); got != str {
		t.Fatalf("ArrayList<String>.get = %s", f.t.TypeString(got))
	}
	res = f.r.FindMethod(env, list, "add", []symbols.TypeID{f.t.Builtins().Int}, nil, source.Span{})
	if !f.t.IsUnknownSym(res.Sym) {
		t.Fatalf("add(int) must not apply to ArrayList<String>")
	}

	// String.compareTo(String) and Comparable<String>.compareTo(T) coincide
	res = f.r.FindMethod(env, str, "compareTo", []symbols.TypeID{str}, nil, source.Span{})
	if f.t.IsUnknownSym(res.Sym) || f.t.MustSym(res.Sym).Owner != f.class("java/lang/String") {
		t.Fatalf("compareTo resolved to %s", f.t.FullyQualifiedName(res.Sym))
	}
}

func TestUnqualifiedAndConstructorCalls(t *testing.T) {
	f := newFixture(t, &classfile.Class{
		Name: "p/Box", Access: classfile.AccPublic, Super: "java/lang/Object",
		Methods: []classfile.Method{
			{Name: "<init>", Descriptor: "()V", Access: classfile.AccPublic},
			{Name: "<init>", Descriptor: "(Ljava/lang/String;)V", Access: classfile.AccPublic},
			{Name: "<init>", Descriptor: "(I)V", Access: classfile.AccPrivate},
		},
	})
	env := f.classEnv("p/Box")
	res := f.r.FindMethod(env, symbols.NoTypeID, "hashCode", nil, nil, source.Span{})
	if f.t.FullyQualifiedName(res.Sym) != "java.lang.Object.hashCode" {
		t.Fatalf("unqualified hashCode = %s", f.t.FullyQualifiedName(res.Sym))
	}
	box := f.typ("p/Box")
	res = f.r.FindConstructor(env, box, []symbols.TypeID{f.t.StringType()}, nil, source.Span{})
	if got := f.t.Signature(res.Sym); got != "Box(java.lang.String)" {
		t.Fatalf("constructor = %s", got)
	}
	other := f.classEnv("java/lang/Object")
	res = f.r.FindConstructor(other, box, []symbols.TypeID{f.t.Builtins().Int}, nil, source.Span{})
	if !f.t.IsUnknownSym(res.Sym) || !f.bag.HasCode(diag.ResUnknownMethod) {
		t.Fatalf("private constructor must not be selected from outside")
	}
}

func TestOverridden(t *testing.T) {
	f := newFixture(t,
		&classfile.Class{
			Name: "p/Base", Access: classfile.AccPublic, Super: "java/lang/Object",
			Signature: "<T:Ljava/lang/Object;>Ljava/lang/Object;",
			Methods: []classfile.Method{
				{Name: "put", Descriptor: "(Ljava/lang/Object;)V", Signature: "(TT;)V", Access: classfile.AccPublic},
				{Name: "make", Descriptor: "()V", Access: classfile.AccPublic | classfile.AccStatic},
			},
		},
		&classfile.Class{
			Name: "p/Derived", Access: classfile.AccPublic, Super: "p/Base",
			Signature: "Lp/Base<Ljava/lang/String;>;",
			Methods: []classfile.Method{
				{Name: "put", Descriptor: "(Ljava/lang/String;)V", Access: classfile.AccPublic},
				{Name: "put", Descriptor: "(I)V", Access: classfile.AccPublic},
				{Name: "make", Descriptor: "()V", Access: classfile.AccPublic | classfile.AccStatic},
				{Name: "toString", Descriptor: "()Ljava/lang/String;", Access: classfile.AccPublic},
			},
		},
	)
	cases := []struct {
		sig  string
		want string
	}{
		{"put(java.lang.String)", "p.Base.put"},
		{"put(int)", ""},
		{"make()", ""},
		{"toString()", "java.lang.Object.toString"},
	}
	for _, tc := range cases {
		var name string
		for i := range tc.sig {
			if tc.sig[i] == '(' {
				name = tc.sig[:i]
				break
			}
		}
		m := member(t, f, "p/Derived", name, tc.sig)
		got := f.r.Overridden(m)
		if gotName := f.t.FullyQualifiedName(got); gotName != tc.want {
			t.Fatalf("Overridden(%s) = %q, want %q", tc.sig, gotName, tc.want)
		}
		if cached, ok := f.t.Overridden(m); !ok || cached != got {
			t.Fatalf("Overridden(%s) must be cached", tc.sig)
		}
	}
}
