package generics

import (
	"testing"

	"jsema/internal/classfile"
	"jsema/internal/loader"
	"jsema/internal/symbols"
)

type world struct {
	t      *symbols.Table
	loader *loader.Loader
	engine *Engine
}

func newWorld(t *testing.T, extra ...*classfile.Class) *world {
	t.Helper()
	boot, err := classfile.Boot()
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	tab := symbols.NewTable()
	w := &world{t: tab}
	w.loader = loader.New(tab, loader.Options{Index: classfile.ChainIndex{classfile.NewMapIndex(extra...), boot}})
	w.engine = New(tab, nil)
	return w
}

func (w *world) class(name string) symbols.SymbolID { return w.loader.ClassSymbol(name) }

func (w *world) typ(name string, args ...symbols.TypeID) symbols.TypeID {
	sym := w.class(name)
	if len(args) == 0 {
		return w.t.SymType(sym)
	}
	return w.t.Parameterize(sym, args)
}

func (w *world) typeVar(class string, i int) symbols.TypeID {
	return w.t.MustSym(w.t.TypeParams(w.class(class))[i]).Type
}

func (w *world) method(t *testing.T, class, name string) symbols.SymbolID {
	t.Helper()
	found := w.t.Lookup(w.t.Members(w.class(class)), name)
	if len(found) == 0 {
		t.Fatalf("%s.%s not found", class, name)
	}
	return found[0]
}

func TestApplyToKeepsUnchangedSlice(t *testing.T) {
	w := newWorld(t)
	str := w.typ("java/lang/String")
	e := w.typeVar("java/util/ArrayList", 0)
	s := w.t.InternSubst([]symbols.Pair{{Var: e, Type: str}})

	formals := []symbols.TypeID{str, w.t.Builtins().Int}
	if got := w.engine.ApplyTo(formals, s); &got[0] != &formals[0] {
		t.Fatalf("unchanged formals must be returned as is")
	}
	formals = []symbols.TypeID{str, e, w.t.ArrayOf(e)}
	got := w.engine.ApplyTo(formals, s)
	if &got[0] == &formals[0] || got[1] != str || got[2] != w.t.ArrayOf(str) || formals[1] != e {
		t.Fatalf("ApplyTo = %v", got)
	}
}

func TestApplyInterns(t *testing.T) {
	w := newWorld(t)
	str := w.typ("java/lang/String")
	e := w.typeVar("java/util/List", 0)
	s := w.t.InternSubst([]symbols.Pair{{Var: e, Type: str}})
	listE := w.typ("java/util/List", e)
	got := w.engine.Apply(listE, s)
	if got != w.typ("java/util/List", str) {
		t.Fatalf("Apply(List<E>) = %s", w.t.TypeString(got))
	}
	if w.engine.Apply(got, s) != got {
		t.Fatalf("applying to a ground type must be the identity")
	}
}

func TestCombineMatchesSequentialApply(t *testing.T) {
	w := newWorld(t)
	str := w.typ("java/lang/String")
	e := w.typeVar("java/util/ArrayList", 0)
	k := w.typeVar("java/util/Map", 0)
	v := w.typeVar("java/util/Map", 1)

	t0 := w.t.InternSubst([]symbols.Pair{{Var: e, Type: w.typ("java/util/List", k)}, {Var: v, Type: k}})
	t1 := w.t.InternSubst([]symbols.Pair{{Var: k, Type: str}, {Var: e, Type: w.typ("java/lang/Integer")}})
	combined := w.engine.Combine(t1, t0)

	cases := map[string]symbols.TypeID{
		"simple":   e,
		"array":    w.t.ArrayOf(e),
		"wildcard": w.t.Wildcard(symbols.BoundExtends, e),
		"nested":   w.typ("java/util/Map", e, w.typ("java/util/List", v)),
		"ground":   str,
		"other":    k,
	}
	for name, x := range cases {
		want := w.engine.Apply(w.engine.Apply(x, t0), t1)
		if got := w.engine.Apply(x, combined); got != want {
			t.Fatalf("%s: %s != %s", name, w.t.TypeString(got), w.t.TypeString(want))
		}
	}
	pairs := w.t.Subst(combined)
	if len(pairs) != 3 || pairs[0].Var != e || pairs[1].Var != v || pairs[2].Var != k {
		t.Fatalf("combined order = %s", w.t.SubstString(combined))
	}
	if w.engine.Combine(t1, symbols.EmptySubst) != t1 || w.engine.Combine(symbols.EmptySubst, t0) != t0 {
		t.Fatalf("empty substitution must be neutral")
	}
}

func TestParameterizedSubtyping(t *testing.T) {
	w := newWorld(t)
	str, integer, number := w.typ("java/lang/String"), w.typ("java/lang/Integer"), w.typ("java/lang/Number")
	cases := []struct {
		name     string
		sub, sup symbols.TypeID
		want     bool
	}{
		{"ArrayList<String> <: List<String>", w.typ("java/util/ArrayList", str), w.typ("java/util/List", str), true},
		{"ArrayList<String> <: Iterable<String>", w.typ("java/util/ArrayList", str), w.typ("java/lang/Iterable", str), true},
		{"ArrayList<String> </: List<Integer>", w.typ("java/util/ArrayList", str), w.typ("java/util/List", integer), false},
		{"List<Integer> </: List<Number>", w.typ("java/util/List", integer), w.typ("java/util/List", number), false},
		{"List<Integer> <: List<? extends Number>", w.typ("java/util/List", integer),
			w.typ("java/util/List", w.t.Wildcard(symbols.BoundExtends, number)), true},
		{"List<Number> <: List<? super Integer>", w.typ("java/util/List", number),
			w.typ("java/util/List", w.t.Wildcard(symbols.BoundSuper, integer)), true},
		{"List<String> <: Collection<?>", w.typ("java/util/List", str),
			w.typ("java/util/Collection", w.t.Wildcard(symbols.BoundUnbounded, symbols.NoTypeID)), true},
		{"raw ArrayList <: List<String>", w.typ("java/util/ArrayList"), w.typ("java/util/List", str), true},
		{"Integer <: Comparable<Integer>", integer, w.typ("java/lang/Comparable", integer), true},
		{"Integer </: Comparable<String>", integer, w.typ("java/lang/Comparable", str), false},
	}
	for _, tc := range cases {
		if got := w.t.IsSubtype(tc.sub, tc.sup); got != tc.want {
			t.Fatalf("%s: got %v", tc.name, got)
		}
	}
}

func TestSubtypingIsReflexive(t *testing.T) {
	w := newWorld(t)
	str, integer, number := w.typ("java/lang/String"), w.typ("java/lang/Integer"), w.typ("java/lang/Number")
	cases := []struct {
		name string
		typ  symbols.TypeID
	}{
		{"List<String>", w.typ("java/util/List", str)},
		{"List<? extends Number>", w.typ("java/util/List", w.t.Wildcard(symbols.BoundExtends, number))},
		{"? super Integer", w.t.Wildcard(symbols.BoundSuper, integer)},
		{"?", w.t.Wildcard(symbols.BoundUnbounded, symbols.NoTypeID)},
		{"E", w.typeVar("java/util/ArrayList", 0)},
		{"String[][]", w.t.ArrayOf(w.t.ArrayOf(str))},
		{"raw ArrayList", w.typ("java/util/ArrayList")},
		{"Map<String, List<?>>[]", w.t.ArrayOf(w.typ("java/util/Map", str, w.typ("java/util/List", w.t.Wildcard(symbols.BoundUnbounded, symbols.NoTypeID))))},
		{"int", w.t.Builtins().Int},
		{"null", w.t.Builtins().Null},
	}
	for _, tc := range cases {
		if !w.t.IsSubtype(tc.typ, tc.typ) {
			t.Fatalf("%s (%s) must be a subtype of itself", tc.name, w.t.TypeString(tc.typ))
		}
	}
	if unknown := w.t.UnknownType(); w.t.IsSubtype(unknown, unknown) {
		t.Fatalf("unknown must not be a subtype of itself")
	}
}

func TestSubstitutionFromSuperType(t *testing.T) {
	w := newWorld(t)
	str, integer := w.typ("java/lang/String"), w.typ("java/lang/Integer")

	s := w.engine.SubstitutionFromSuperType(w.typ("java/util/ArrayList"), w.typ("java/util/List", str))
	if got := w.engine.Apply(w.t.ThisType(w.class("java/util/ArrayList")), s); got != w.typ("java/util/ArrayList", str) {
		t.Fatalf("diamond ArrayList = %s", w.t.TypeString(got))
	}
	s = w.engine.SubstitutionFromSuperType(w.typ("java/util/HashMap"), w.typ("java/util/Map", str, integer))
	if got := w.t.SubstString(s); got != "{K -> java.lang.String, V -> java.lang.Integer}" {
		t.Fatalf("HashMap substitution = %s", got)
	}
	// nothing pins E through a non-generic target
	s = w.engine.SubstitutionFromSuperType(w.typ("java/util/ArrayList"), w.typ("java/lang/Object"))
	e := w.typeVar("java/util/ArrayList", 0)
	if got, _ := w.t.SubstLookup(s, e); got != e {
		t.Fatalf("unpinned variable must map to itself")
	}
}

func TestInfer(t *testing.T) {
	pick := &classfile.Class{Name: "p/Pick", Access: classfile.AccPublic, Super: "java/lang/Object",
		Methods: []classfile.Method{{Name: "make", Access: classfile.AccPublic | classfile.AccStatic,
			Descriptor: "()Ljava/lang/Number;", Signature: "<T:Ljava/lang/Number;>()TT;"}}}
	w := newWorld(t, pick)
	b := w.t.Builtins()
	asList := w.method(t, "java/util/Arrays", "asList")
	formals := w.t.MustType(w.t.SymType(asList)).Params
	tv := w.t.MustSym(w.t.TypeParams(asList)[0]).Type

	cases := []struct {
		name string
		args []symbols.TypeID
		want symbols.TypeID
	}{
		{"boxed ints", []symbols.TypeID{b.Int, b.Int}, w.typ("java/lang/Integer")},
		{"merged by lub", []symbols.TypeID{w.typ("java/lang/Integer"), w.typ("java/lang/Long")}, w.typ("java/lang/Number")},
		{"array passed as is", []symbols.TypeID{w.t.ArrayOf(w.typ("java/lang/String"))}, w.typ("java/lang/String")},
		{"nothing known", []symbols.TypeID{b.Null}, w.typ("java/lang/Object")},
	}
	for _, tc := range cases {
		s := w.engine.Infer(asList, formals, tc.args, true)
		if got, _ := w.t.SubstLookup(s, tv); got != tc.want {
			t.Fatalf("%s: T = %s", tc.name, w.t.TypeString(got))
		}
	}

	mk := w.method(t, "p/Pick", "make")
	s := w.engine.Infer(mk, nil, nil, false)
	if got := w.engine.Apply(w.t.MustSym(mk).Method.Result, s); got != w.typ("java/lang/Number") {
		t.Fatalf("unresolved variable must erase to its bound, got %s", w.t.TypeString(got))
	}
}

func TestAsMemberOf(t *testing.T) {
	w := newWorld(t)
	str := w.typ("java/lang/String")
	get := w.method(t, "java/util/List", "get")
	mt := w.t.MustType(w.engine.AsMemberOf(w.typ("java/util/ArrayList", str), get))
	if mt.Result != str {
		t.Fatalf("List<String>.get result = %s", w.t.TypeString(mt.Result))
	}
	raw := w.t.MustType(w.engine.AsMemberOf(w.typ("java/util/ArrayList"), get))
	if raw.Result != w.typ("java/lang/Object") {
		t.Fatalf("raw get result = %s", w.t.TypeString(raw.Result))
	}
}
