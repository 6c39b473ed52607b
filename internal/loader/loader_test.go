package loader

import (
	"errors"
	"testing"

	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/symbols"
)

func newLoader(t *testing.T, extra ...*classfile.Class) (*Loader, *diag.Bag) {
	t.Helper()
	boot, err := classfile.Boot()
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	bag := diag.NewBag(0)
	l := New(symbols.NewTable(), Options{
		Index:    classfile.ChainIndex{classfile.NewMapIndex(extra...), boot},
		Reporter: &diag.BagReporter{Bag: bag},
	})
	return l, bag
}

func memberNamed(t *testing.T, tab *symbols.Table, owner symbols.SymbolID, name string) symbols.SymbolID {
	t.Helper()
	found := tab.Lookup(tab.Members(owner), name)
	if len(found) == 0 {
		t.Fatalf("%s has no member %s", tab.FullyQualifiedName(owner), name)
	}
	return found[0]
}

func TestClassSymbolIdentity(t *testing.T) {
	l, _ := newLoader(t)
	a := l.ClassSymbol("java.lang.String")
	b := l.ClassSymbol("java/lang/String")
	if a != b || l.table.IsUnknownSym(a) {
		t.Fatalf("same name must give the same symbol: %d vs %d", a, b)
	}
	if got := l.table.FullyQualifiedName(a); got != "java.lang.String" {
		t.Fatalf("fqn = %q", got)
	}
	for _, missing := range []string{"x/Missing", "a.b.Gone", "x/Missing"} {
		if !l.table.IsUnknownSym(l.ClassSymbol(missing)) {
			t.Fatalf("%s should be unknown", missing)
		}
	}
	nf := l.NotFound()
	if len(nf) != 2 || nf[0] != "a.b.Gone" || nf[1] != "x.Missing" {
		t.Fatalf("NotFound = %v", nf)
	}
}

func TestCompletionIsLazyAndIdempotent(t *testing.T) {
	l, _ := newLoader(t)
	tab := l.table
	list := l.ClassSymbol("java/util/ArrayList")
	if tab.MustSym(list).State() != symbols.Uncompleted {
		t.Fatalf("class must not be completed on creation")
	}
	members := tab.Members(list)
	if tab.MustSym(list).State() != symbols.Completed {
		t.Fatalf("Members must complete the class")
	}
	n := len(tab.ScopeSymbols(members))
	tab.Complete(list)
	if len(tab.ScopeSymbols(tab.Members(list))) != n {
		t.Fatalf("second completion changed the members")
	}
	if got := tab.TypeString(tab.Superclass(list)); got != "java.util.AbstractList<E>" {
		t.Fatalf("super = %s", got)
	}
	if ifaces := tab.Interfaces(list); len(ifaces) != 4 || tab.TypeString(ifaces[0]) != "java.util.List<E>" {
		t.Fatalf("interfaces = %v", ifaces)
	}
	get := memberNamed(t, tab, list, "get")
	if got := tab.Signature(get); got != "get(int)" {
		t.Fatalf("signature = %s", got)
	}
	if tab.MustSym(get).Method.Result != tab.MustSym(tab.TypeParams(list)[0]).Type {
		t.Fatalf("get must return E")
	}
}

func TestRecursiveBounds(t *testing.T) {
	l, _ := newLoader(t)
	tab := l.table
	enum := l.ClassSymbol("java/lang/Enum")
	params := tab.TypeParams(enum)
	if len(params) != 1 {
		t.Fatalf("Enum type params = %v", params)
	}
	bounds := tab.Bounds(params[0])
	if len(bounds) != 1 || tab.TypeString(bounds[0]) != "java.lang.Enum<E>" {
		t.Fatalf("E bound = %v", bounds)
	}
	if args := tab.TypeArgs(bounds[0]); len(args) != 1 || args[0] != tab.MustSym(params[0]).Type {
		t.Fatalf("bound must refer to E itself")
	}
}

func TestNestedNames(t *testing.T) {
	l, _ := newLoader(t,
		&classfile.Class{Name: "p/Foo$Bar", Access: classfile.AccPublic, Super: "java/lang/Object"},
	)
	tab := l.table
	entry := l.ClassSymbol("java/util/Map$Entry")
	mp := l.ClassSymbol("java/util/Map")
	if tab.MustSym(entry).Owner != mp || tab.MustSym(entry).Name != "Entry" {
		t.Fatalf("Map$Entry must be owned by Map")
	}
	if got := tab.FullyQualifiedName(entry); got != "java.util.Map$Entry" {
		t.Fatalf("fqn = %s", got)
	}
	if !tab.Flags(entry).IsStatic() || !tab.Flags(entry).IsInterface() {
		t.Fatalf("inner flags must come from InnerClasses: %s", tab.Flags(entry))
	}
	if memberNamed(t, tab, mp, "Entry") != entry {
		t.Fatalf("inner class must be a member type of Map")
	}

	orphan := l.ClassSymbol("p/Foo$Bar")
	s := tab.MustSym(orphan)
	if s.Name != "Foo$Bar" || s.Owner != tab.Package("p") {
		t.Fatalf("nested name without an outer class: %q owned by %d", s.Name, s.Owner)
	}
}

func TestNestedNamesLongestPrefix(t *testing.T) {
	class := func(name string) *classfile.Class {
		return &classfile.Class{Name: name, Access: classfile.AccPublic, Super: "java/lang/Object"}
	}
	l, _ := newLoader(t,
		class("a/Foo"), class("a/Foo$Bar"), class("a/Foo$Bar$Baz"),
		class("a/X"), class("a/X$Y$Z"),
		class("a/Q$"),
	)
	tab := l.table
	cases := []struct {
		name, owner, simple string
	}{
		{"a/Foo$Bar$Baz", "a/Foo$Bar", "Baz"},
		{"a/X$Y$Z", "a/X", "Y$Z"},
		{"a/Q$", "", "Q$"},
	}
	for _, tc := range cases {
		s := tab.MustSym(l.ClassSymbol(tc.name))
		want := tab.Package("a")
		if tc.owner != "" {
			want = l.ClassSymbol(tc.owner)
		}
		if s.Owner != want || s.Name != tc.simple {
			t.Fatalf("%s: owner %s name %q, want owner %s name %q",
				tc.name, tab.FullyQualifiedName(s.Owner), s.Name, tab.FullyQualifiedName(want), tc.simple)
		}
	}
}

func TestOwnerChainAllocatesOnce(t *testing.T) {
	l, _ := newLoader(t,
		&classfile.Class{Name: "a/Foo", Access: classfile.AccPublic, Super: "java/lang/Object"},
		&classfile.Class{Name: "a/Foo$Bar", Access: classfile.AccPublic, Super: "java/lang/Object"},
		&classfile.Class{Name: "a/Foo$Bar$Baz", Access: classfile.AccPublic, Super: "java/lang/Object"},
	)
	tab := l.table
	l.ClassSymbol("a/Foo$Bar$Baz")
	l.ClassSymbol("a/Foo$Bar")
	l.ClassSymbol("a/Foo")

	classes := 0
	for i := 1; i <= tab.SymbolCount(); i++ {
		id := symbols.SymbolID(i)
		s := tab.Sym(id)
		if s == nil || s.Kind != symbols.SymType || s.Class == nil || id == tab.ArraySymbol() {
			continue
		}
		classes++
		if got := l.ClassSymbol(s.Class.BinaryName); got != id {
			t.Fatalf("%s has a second symbol %d besides %d", s.Class.BinaryName, got, id)
		}
	}
	if classes != l.Loaded() {
		t.Fatalf("class symbols = %d, loaded = %d", classes, l.Loaded())
	}
}

func TestMemberFiltering(t *testing.T) {
	cls := &classfile.Class{
		Name:   "p/Gen",
		Access: classfile.AccPublic,
		Super:  "java/lang/Object",
		Methods: []classfile.Method{
			{Name: "<clinit>", Descriptor: "()V", Access: classfile.AccStatic},
			{Name: "hidden", Descriptor: "()V", Access: classfile.AccSynthetic},
			{Name: "bad", Descriptor: "(Ljava/lang/Object;)I", Access: classfile.AccPublic | classfile.AccBridge},
			{Name: "ok", Descriptor: "(Ljava/lang/Object;)I", Access: classfile.AccPublic | classfile.AccBridge | classfile.AccSynthetic},
			{Name: "max", Descriptor: "(Ljava/lang/Comparable;)Ljava/lang/Comparable;",
				Signature: "<T::Ljava/lang/Comparable<TT;>;>(TT;)TT;", Access: classfile.AccPublic | classfile.AccStatic,
				ParamNames: []string{"value"}, Exceptions: []string{"java/io/IOException"}},
			{Name: "all", Descriptor: "([Ljava/lang/String;)V", Access: classfile.AccPublic | classfile.AccVarargs},
		},
		Fields: []classfile.Field{
			{Name: "this$0", Descriptor: "Lp/Gen;", Access: classfile.AccSynthetic},
			{Name: "names", Descriptor: "Ljava/util/List;", Signature: "Ljava/util/List<Ljava/lang/String;>;", Access: classfile.AccPublic},
		},
	}
	l, bag := newLoader(t, cls)
	tab := l.table
	gen := l.ClassSymbol("p/Gen")
	scope := tab.Members(gen)
	for _, name := range []string{"<clinit>", "hidden", "bad", "ok", "this$0"} {
		if len(tab.Lookup(scope, name)) != 0 {
			t.Fatalf("%s must be skipped", name)
		}
	}
	if !bag.HasCode(diag.LoadBridgeNotSynthetic) || bag.Len() != 1 {
		t.Fatalf("expected one bridge warning, got %+v", bag.Items())
	}

	max := memberNamed(t, tab, gen, "max")
	tps := tab.TypeParams(max)
	if len(tps) != 1 {
		t.Fatalf("max type params = %v", tps)
	}
	tv := tab.MustSym(tps[0]).Type
	bound := tab.Bounds(tps[0])[0]
	if tab.TypeString(bound) != "java.lang.Comparable<T>" || tab.TypeArgs(bound)[0] != tv {
		t.Fatalf("bound = %s", tab.TypeString(bound))
	}
	params := tab.MethodParams(max)
	if len(params) != 1 || tab.MustSym(params[0]).Name != "value" || tab.MustSym(params[0]).Type != tv {
		t.Fatalf("params = %v", params)
	}
	if thrown := tab.Thrown(max); len(thrown) != 1 || !tab.Is(thrown[0], "java.io.IOException") {
		t.Fatalf("thrown = %v", thrown)
	}

	all := memberNamed(t, tab, gen, "all")
	if !tab.Flags(all).IsVarargs() || tab.Signature(all) != "all(java.lang.String...)" {
		t.Fatalf("varargs: %s", tab.Signature(all))
	}
	names := memberNamed(t, tab, gen, "names")
	if got := tab.TypeString(tab.MustSym(names).Type); got != "java.util.List<java.lang.String>" {
		t.Fatalf("field type = %s", got)
	}
}

func TestAnnotationsAndDefaults(t *testing.T) {
	cls := &classfile.Class{
		Name:   "p/Tagged",
		Access: classfile.AccPublic,
		Super:  "java/lang/Object",
		Annotations: []classfile.Annotation{
			{Type: "Ljava/lang/Deprecated;", Visible: true},
			{Type: "Lp/Tag;", Elements: []classfile.ElementPair{
				{Name: "level", Value: classfile.ElementValue{Tag: 'I', Int: 3}},
				{Name: "kind", Value: classfile.ElementValue{Tag: 'e', EnumType: "Lp/Kind;", EnumConst: "FAST"}},
				{Name: "type", Value: classfile.ElementValue{Tag: 'c', Class: "[I"}},
			}},
		},
	}
	l, _ := newLoader(t, cls)
	tab := l.table
	sym := l.ClassSymbol("p/Tagged")
	if !tab.Flags(sym).IsDeprecated() {
		t.Fatalf("@Deprecated must set the flag")
	}
	md := tab.Metadata(sym)
	if v, ok := md.Value("p.Tag", "level"); !ok || v.(int64) != 3 {
		t.Fatalf("level = %v", v)
	}
	if v, _ := md.Value("p.Tag", "kind"); v != (symbols.EnumConstant{Type: "p.Kind", Const: "FAST"}) {
		t.Fatalf("kind = %v", v)
	}
	if v, _ := md.Value("p.Tag", "type"); v != (symbols.ClassLiteral{Type: "int[]"}) {
		t.Fatalf("type = %v", v)
	}

	dep := l.ClassSymbol("java/lang/Deprecated")
	forRemoval := memberNamed(t, tab, dep, "forRemoval")
	dv := tab.MustSym(forRemoval).Method.DefaultValue
	if dv == nil || dv.Value != false {
		t.Fatalf("forRemoval default = %+v", dv)
	}
}

type flakyIndex struct {
	classfile.Index
	failures int
	calls    int
}

func (f *flakyIndex) Find(name string) (*classfile.Class, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("transient read error")
	}
	return f.Index.Find(name)
}

func TestRetries(t *testing.T) {
	boot, err := classfile.Boot()
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	for _, tc := range []struct {
		failures int
		wantCode diag.Code
		wantSup  string
	}{
		{failures: 2, wantCode: diag.LoadRetry, wantSup: "java.lang.Number"},
		{failures: 5, wantCode: diag.LoadClassFormat, wantSup: "java.lang.Object"},
	} {
		idx := &flakyIndex{Index: boot, failures: tc.failures}
		bag := diag.NewBag(0)
		l := New(symbols.NewTable(), Options{Index: idx, Reporter: &diag.BagReporter{Bag: bag}, Retries: 2})
		integer := l.ClassSymbol("java/lang/Integer")
		sup := l.table.Superclass(integer)
		if !bag.HasCode(tc.wantCode) || !l.table.Is(sup, tc.wantSup) {
			t.Fatalf("failures=%d: super %s, diags %+v", tc.failures, l.table.TypeString(sup), bag.Items())
		}
	}
}

func TestInnerConstructorDropsOuterInstance(t *testing.T) {
	outer := &classfile.Class{Name: "p/Outer", Access: classfile.AccPublic, Super: "java/lang/Object",
		InnerClasses: []classfile.InnerClass{{Inner: "p/Outer$In", Outer: "p/Outer", Simple: "In", Access: classfile.AccPublic}}}
	inner := &classfile.Class{Name: "p/Outer$In", Access: classfile.AccPublic, Super: "java/lang/Object",
		InnerClasses: outer.InnerClasses,
		Methods:      []classfile.Method{{Name: "<init>", Descriptor: "(Lp/Outer;I)V", Access: classfile.AccPublic}}}
	l, _ := newLoader(t, outer, inner)
	in := l.ClassSymbol("p/Outer$In")
	ctor := memberNamed(t, l.table, in, symbols.ConstructorName)
	if got := l.table.Signature(ctor); got != "In(int)" {
		t.Fatalf("constructor = %s", got)
	}
}

func TestSubtypingThroughLoadedHierarchy(t *testing.T) {
	l, _ := newLoader(t)
	tab := l.table
	integer := tab.ClassType("java/lang/Integer")
	for _, name := range []string{"java.lang.Number", "java.io.Serializable", "java.lang.Comparable", "java.lang.Object"} {
		if !tab.IsSubtypeOfName(integer, name) {
			t.Fatalf("Integer must be a subtype of %s", name)
		}
	}
	if tab.Box(tab.Builtins().Int) != integer || tab.Unbox(integer) != tab.Builtins().Int {
		t.Fatalf("boxing through loaded classes")
	}
}
