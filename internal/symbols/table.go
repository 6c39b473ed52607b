package symbols

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"jsema/internal/source"
)

// Finder locates classes by binary name. The loader implements it; the
// table uses it for well-known classes, boxing and package members.
type Finder interface {
	ClassSymbol(binaryName string) SymbolID
	HasClass(binaryName string) bool
}

// Substituter applies substitutions; the generics engine installs itself so
// supertypes of parameterized types can be instantiated.
type Substituter interface {
	Apply(t TypeID, s SubstID) TypeID
}

// Builtins stores TypeIDs of the primitive and sentinel types.
type Builtins struct {
	Byte    TypeID
	Char    TypeID
	Short   TypeID
	Int     TypeID
	Long    TypeID
	Float   TypeID
	Double  TypeID
	Boolean TypeID
	Void    TypeID
	Null    TypeID
	Unknown TypeID
}

// Table is the process-scoped context of one analysis run: it owns the
// symbol, type, scope and substitution arenas plus the interning caches.
// A Table is used from one goroutine at a time.
type Table struct {
	symbols []*Symbol
	types   []Type
	scopes  []*Scope
	substs  [][]Pair

	typeIndex  map[typeKey]TypeID
	substIndex map[string]SubstID
	packages   map[string]SymbolID
	closures   map[TypeID][]TypeID

	builtins    Builtins
	unknownSym  SymbolID
	rootPackage SymbolID
	arraySym    SymbolID

	finder      Finder
	substituter Substituter
	arrayClone  bool
}

// NewTable creates a table seeded with primitives, the unknown sentinel,
// the root package and the shared array class.
func NewTable() *Table {
	t := &Table{
		symbols:    make([]*Symbol, 1, 1024),
		types:      make([]Type, 1, 1024),
		scopes:     make([]*Scope, 1, 256),
		substs:     make([][]Pair, 1, 256),
		typeIndex:  make(map[typeKey]TypeID, 1024),
		substIndex: make(map[string]SubstID, 256),
		packages:   make(map[string]SymbolID, 64),
		closures:   make(map[TypeID][]TypeID, 256),
	}
	t.unknownSym = t.newSymbol(&Symbol{Kind: SymUnknown, Name: "!unknown!"})
	t.builtins.Unknown = t.intern(Type{Kind: TyUnknown, Sym: t.unknownSym})
	t.symbols[t.unknownSym].Type = t.builtins.Unknown

	t.builtins.Byte = t.intern(Type{Kind: TyByte})
	t.builtins.Char = t.intern(Type{Kind: TyChar})
	t.builtins.Short = t.intern(Type{Kind: TyShort})
	t.builtins.Int = t.intern(Type{Kind: TyInt})
	t.builtins.Long = t.intern(Type{Kind: TyLong})
	t.builtins.Float = t.intern(Type{Kind: TyFloat})
	t.builtins.Double = t.intern(Type{Kind: TyDouble})
	t.builtins.Boolean = t.intern(Type{Kind: TyBoolean})
	t.builtins.Void = t.intern(Type{Kind: TyVoid})
	t.builtins.Null = t.intern(Type{Kind: TyNull})

	t.rootPackage = t.newSymbol(&Symbol{Kind: SymPackage, Package: &PackageInfo{}})
	t.symbols[t.rootPackage].Package.Members = t.NewScope(ScopeOrdinary, t.rootPackage, NoScopeID)
	t.packages[""] = t.rootPackage

	t.arraySym = t.newArraySymbol()
	return t
}

// SetFinder installs the class finder (normally the loader).
func (t *Table) SetFinder(f Finder) { t.finder = f }

// SetSubstituter installs the substitution engine.
func (t *Table) SetSubstituter(s Substituter) { t.substituter = s }

func (t *Table) Builtins() Builtins { return t.builtins }

func (t *Table) UnknownSymbol() SymbolID { return t.unknownSym }
func (t *Table) UnknownType() TypeID     { return t.builtins.Unknown }
func (t *Table) RootPackage() SymbolID   { return t.rootPackage }
func (t *Table) ArraySymbol() SymbolID   { return t.arraySym }

func (t *Table) nextID(n int, what string) uint32 {
	value, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", what, err))
	}
	return value
}

func (t *Table) newSymbol(s *Symbol) SymbolID {
	id := SymbolID(t.nextID(len(t.symbols), "symbols"))
	t.symbols = append(t.symbols, s)
	return id
}

// Sym returns the symbol or nil if the ID is invalid. The pointer stays valid
// for the table's lifetime.
func (t *Table) Sym(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.symbols) {
		return nil
	}
	return t.symbols[id]
}

// MustSym panics when id is invalid.
func (t *Table) MustSym(id SymbolID) *Symbol {
	s := t.Sym(id)
	if s == nil {
		panic(fmt.Sprintf("symbols: invalid SymbolID %d", id))
	}
	return s
}

// SymbolCount reports allocated symbols excluding the sentinel slot.
func (t *Table) SymbolCount() int { return len(t.symbols) - 1 }

// IsUnknownSym reports whether id is absent or the unknown sentinel.
func (t *Table) IsUnknownSym(id SymbolID) bool {
	s := t.Sym(id)
	return s == nil || s.Kind == SymUnknown
}

// --- completion --------------------------------------------------------------

// SetCompleter marks sym as uncompleted with the given thunk.
func (t *Table) SetCompleter(sym SymbolID, c Completer) {
	s := t.MustSym(sym)
	if c == nil {
		s.completer = nil
		s.state = Completed
		return
	}
	s.completer = c
	s.state = Uncompleted
}

// Complete runs the pending completer once. Re-entrant calls made while the
// completer runs return immediately and observe the partially built state.
func (t *Table) Complete(sym SymbolID) {
	s := t.Sym(sym)
	if s == nil || s.state != Uncompleted {
		return
	}
	c := s.completer
	s.completer = nil
	s.state = Completing
	defer func() { s.state = Completed }()
	if c != nil {
		c.Complete(t, sym)
	}
}

// Flags returns the flags of sym, completing type symbols first.
func (t *Table) Flags(sym SymbolID) Flags {
	s := t.Sym(sym)
	if s == nil {
		return 0
	}
	if s.Kind == SymType {
		t.Complete(sym)
	}
	return s.Flags
}

// Superclass returns the declared superclass type of a class symbol.
func (t *Table) Superclass(sym SymbolID) TypeID {
	t.Complete(sym)
	if s := t.Sym(sym); s != nil && s.Class != nil {
		return s.Class.Super
	}
	return NoTypeID
}

// Interfaces returns the declared interfaces of a class symbol.
func (t *Table) Interfaces(sym SymbolID) []TypeID {
	t.Complete(sym)
	if s := t.Sym(sym); s != nil && s.Class != nil {
		return s.Class.Interfaces
	}
	return nil
}

// Members returns the member scope of a class or package symbol.
func (t *Table) Members(sym SymbolID) ScopeID {
	s := t.Sym(sym)
	if s == nil {
		return NoScopeID
	}
	switch {
	case s.Class != nil:
		t.Complete(sym)
		return s.Class.Members
	case s.Package != nil:
		return s.Package.Members
	}
	return NoScopeID
}

// TypeParams returns the type parameter symbols of a class or method.
func (t *Table) TypeParams(sym SymbolID) []SymbolID {
	s := t.Sym(sym)
	if s == nil {
		return nil
	}
	t.Complete(sym)
	switch {
	case s.Class != nil:
		return s.Class.TypeParams
	case s.Method != nil:
		return s.Method.TypeParams
	}
	return nil
}

// MethodParams returns the parameter symbols of a method.
func (t *Table) MethodParams(sym SymbolID) []SymbolID {
	t.Complete(sym)
	if s := t.Sym(sym); s != nil && s.Method != nil {
		return s.Method.Params
	}
	return nil
}

// Thrown returns the declared thrown types of a method.
func (t *Table) Thrown(sym SymbolID) []TypeID {
	t.Complete(sym)
	if s := t.Sym(sym); s != nil && s.Method != nil {
		return s.Method.Thrown
	}
	return nil
}

// SymType returns the type of sym, completing it first.
func (t *Table) SymType(sym SymbolID) TypeID {
	s := t.Sym(sym)
	if s == nil {
		return t.builtins.Unknown
	}
	t.Complete(sym)
	if !s.Type.IsValid() {
		return t.builtins.Unknown
	}
	return s.Type
}

// --- usages / metadata ---------------------------------------------------------

// AddUsage records a reference site.
func (t *Table) AddUsage(sym SymbolID, u Usage) {
	if s := t.Sym(sym); s != nil && s.Kind != SymUnknown {
		s.usages = append(s.usages, u)
	}
}

// Usages returns a snapshot of the reference sites of sym.
func (t *Table) Usages(sym SymbolID) []Usage {
	s := t.Sym(sym)
	if s == nil || len(s.usages) == 0 {
		return nil
	}
	out := make([]Usage, len(s.usages))
	copy(out, s.usages)
	return out
}

// AddMetadata attaches an annotation instance.
func (t *Table) AddMetadata(sym SymbolID, a Annotation) {
	if s := t.Sym(sym); s != nil {
		s.metadata = append(s.metadata, a)
	}
}

// Metadata returns the annotations of sym, completing it first.
func (t *Table) Metadata(sym SymbolID) Metadata {
	s := t.Sym(sym)
	if s == nil {
		return nil
	}
	t.Complete(sym)
	return s.metadata
}

// Overridden returns the cached overridden-method link.
func (t *Table) Overridden(method SymbolID) (SymbolID, bool) {
	s := t.Sym(method)
	if s == nil || s.Method == nil || s.Method.overriddenState == 0 {
		return NoSymbolID, false
	}
	return s.Method.overridden, true
}

// SetOverridden caches the overridden-method link; NoSymbolID records "none".
func (t *Table) SetOverridden(method, overridden SymbolID) {
	if s := t.Sym(method); s != nil && s.Method != nil {
		s.Method.overridden = overridden
		s.Method.overriddenState = 1
	}
}

// --- constructors ----------------------------------------------------------

// Package returns the memoised package symbol for a dotted or slashed name,
// creating the owner chain as needed.
func (t *Table) Package(name string) SymbolID {
	name = strings.ReplaceAll(name, "/", ".")
	if id, ok := t.packages[name]; ok {
		return id
	}
	owner := t.rootPackage
	simple := name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		owner = t.Package(name[:i])
		simple = name[i+1:]
	}
	id := t.newSymbol(&Symbol{Kind: SymPackage, Name: simple, Owner: owner, Package: &PackageInfo{FullName: name}})
	t.symbols[id].Package.Members = t.NewScope(ScopeOrdinary, id, NoScopeID)
	t.Enter(t.Members(owner), id)
	t.packages[name] = id
	return id
}

// HasPackage reports whether a package symbol was created for name.
func (t *Table) HasPackage(name string) bool {
	_, ok := t.packages[strings.ReplaceAll(name, "/", ".")]
	return ok
}

// PackageMember resolves a member type of a package: source classes entered
// in the package scope first, then the finder.
func (t *Table) PackageMember(pkg SymbolID, name string) SymbolID {
	p := t.Sym(pkg)
	if p == nil || p.Package == nil {
		return NoSymbolID
	}
	for _, m := range t.Lookup(p.Package.Members, name) {
		if t.Sym(m).Kind == SymType {
			return m
		}
	}
	if t.finder == nil {
		return NoSymbolID
	}
	binary := name
	if p.Package.FullName != "" {
		binary = strings.ReplaceAll(p.Package.FullName, ".", "/") + "/" + name
	}
	if !t.finder.HasClass(binary) {
		return NoSymbolID
	}
	if id := t.finder.ClassSymbol(binary); !t.IsUnknownSym(id) {
		return id
	}
	return NoSymbolID
}

// ClassSpec describes a new type symbol.
type ClassSpec struct {
	Name       string
	BinaryName string
	Owner      SymbolID
	Flags      Flags
	Span       source.Span
	Decl       Decl
	FromSource bool
}

// NewClass creates a type symbol with its canonical class type and an empty
// member scope. Super and interfaces are filled by the caller or completer.
func (t *Table) NewClass(spec ClassSpec) SymbolID {
	id := t.newSymbol(&Symbol{
		Kind:  SymType,
		Flags: spec.Flags,
		Name:  spec.Name,
		Owner: spec.Owner,
		Span:  spec.Span,
		Decl:  spec.Decl,
		Class: &ClassInfo{BinaryName: spec.BinaryName, FromSource: spec.FromSource},
	})
	s := t.symbols[id]
	s.Class.Members = t.NewScope(ScopeOrdinary, id, NoScopeID)
	s.Class.TypeParamScope = t.NewScope(ScopeOrdinary, id, NoScopeID)
	s.Type = t.intern(Type{Kind: TyClass, Sym: id})
	return id
}

// MemberSpec describes a new method or variable symbol.
type MemberSpec struct {
	Name  string
	Owner SymbolID
	Flags Flags
	Span  source.Span
	Decl  Decl
}

// NewMethod creates a method symbol with empty parameter and type parameter
// scopes. Its type is set by SetMethodSignature.
func (t *Table) NewMethod(spec MemberSpec) SymbolID {
	id := t.newSymbol(&Symbol{
		Kind:   SymMethod,
		Flags:  spec.Flags,
		Name:   spec.Name,
		Owner:  spec.Owner,
		Span:   spec.Span,
		Decl:   spec.Decl,
		Method: &MethodInfo{},
	})
	s := t.symbols[id]
	s.Method.ParamScope = t.NewScope(ScopeOrdinary, id, NoScopeID)
	s.Method.TypeParamScope = t.NewScope(ScopeOrdinary, id, NoScopeID)
	return id
}

// SetMethodSignature stores parameters, result and thrown types and builds
// the method type.
func (t *Table) SetMethodSignature(method SymbolID, params []SymbolID, result TypeID, thrown []TypeID) {
	s := t.MustSym(method)
	s.Method.Params = params
	s.Method.Result = result
	s.Method.Thrown = thrown
	for i, p := range params {
		ps := t.Sym(p)
		if ps.Var != nil {
			ps.Var.ParamIndex = i
		}
		t.Enter(s.Method.ParamScope, p)
	}
	ptypes := make([]TypeID, len(params))
	for i, p := range params {
		ptypes[i] = t.Sym(p).Type
	}
	s.Type = t.MethodType(ptypes, result, thrown)
}

// NewVar creates a variable (field, local, parameter) symbol of type typ.
func (t *Table) NewVar(spec MemberSpec, typ TypeID) SymbolID {
	return t.newSymbol(&Symbol{
		Kind:  SymVariable,
		Flags: spec.Flags,
		Name:  spec.Name,
		Owner: spec.Owner,
		Span:  spec.Span,
		Decl:  spec.Decl,
		Type:  typ,
		Var:   &VarInfo{ParamIndex: -1},
	})
}

// NewTypeVar creates a type variable symbol and its type. Bounds are set
// later so that mutually recursive bounds can refer to the variable.
func (t *Table) NewTypeVar(name string, owner SymbolID, index int, span source.Span) SymbolID {
	id := t.newSymbol(&Symbol{
		Kind:    SymTypeVar,
		Name:    name,
		Owner:   owner,
		Span:    span,
		TypeVar: &TypeVarInfo{Index: index},
	})
	t.symbols[id].Type = t.intern(Type{Kind: TyTypeVar, Sym: id})
	return id
}

// SetBounds stores the bounds of a type variable.
func (t *Table) SetBounds(tv SymbolID, bounds []TypeID) {
	if s := t.Sym(tv); s != nil && s.TypeVar != nil {
		s.TypeVar.Bounds = bounds
	}
}

// Bounds returns the declared bounds of a type variable (Object if none).
func (t *Table) Bounds(tv SymbolID) []TypeID {
	s := t.Sym(tv)
	if s == nil || s.TypeVar == nil {
		return nil
	}
	if len(s.TypeVar.Bounds) == 0 {
		if obj := t.ObjectType(); !t.IsUnknown(obj) {
			return []TypeID{obj}
		}
	}
	return s.TypeVar.Bounds
}

func (t *Table) newArraySymbol() SymbolID {
	id := t.NewClass(ClassSpec{Name: "Array", BinaryName: "[", Owner: t.rootPackage, Flags: FlagPublic | FlagFinal})
	members := t.symbols[id].Class.Members
	length := t.NewVar(MemberSpec{Name: "length", Owner: id, Flags: FlagPublic | FlagFinal}, t.builtins.Int)
	t.Enter(members, length)
	return id
}

// addArrayClone enters clone() on the array class once Object is known.
func (t *Table) addArrayClone(obj TypeID) {
	if t.arrayClone {
		return
	}
	t.arrayClone = true
	members := t.symbols[t.arraySym].Class.Members
	clone := t.NewMethod(MemberSpec{Name: "clone", Owner: t.arraySym, Flags: FlagPublic})
	t.SetMethodSignature(clone, nil, obj, nil)
	t.Enter(members, clone)
}

// --- well-known classes ----------------------------------------------------

// ClassByName resolves a binary name through the finder; unknown when absent.
func (t *Table) ClassByName(binaryName string) SymbolID {
	if t.finder == nil {
		return t.unknownSym
	}
	return t.finder.ClassSymbol(binaryName)
}

// ClassType returns the canonical class type of a binary name.
func (t *Table) ClassType(binaryName string) TypeID {
	return t.SymType(t.ClassByName(binaryName))
}

func (t *Table) ObjectType() TypeID {
	obj := t.ClassType("java/lang/Object")
	if !t.IsUnknown(obj) {
		t.addArrayClone(obj)
	}
	return obj
}

func (t *Table) StringType() TypeID { return t.ClassType("java/lang/String") }
