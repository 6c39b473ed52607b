package symbols

// ImportSource is one on-demand import entry of a star-import scope: every
// member type of Sym (a package or a type), or with Static the static
// members of a type. A non-empty Name restricts a static import to one name.
type ImportSource struct {
	Sym    SymbolID
	Name   string
	Static bool
}

// Scope is an ordered multi-valued name table. Lookup returns every symbol
// entered under a name in declaration order.
type Scope struct {
	Kind   ScopeKind
	Owner  SymbolID
	Parent ScopeID

	names   map[string][]SymbolID
	order   []SymbolID
	sources []ImportSource
	star    map[string][]SymbolID
}

func newScope(kind ScopeKind, owner SymbolID, parent ScopeID) *Scope {
	return &Scope{Kind: kind, Owner: owner, Parent: parent, names: make(map[string][]SymbolID)}
}

// NewScope allocates a scope.
func (t *Table) NewScope(kind ScopeKind, owner SymbolID, parent ScopeID) ScopeID {
	id := ScopeID(t.nextID(len(t.scopes), "scopes"))
	t.scopes = append(t.scopes, newScope(kind, owner, parent))
	return id
}

// Scope returns the scope or nil if the ID is invalid.
func (t *Table) Scope(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

// Enter adds sym to the scope. An ordinary scope rejects a second symbol of
// the same name unless both are methods, and returns false; import scopes
// accept duplicates. Entering the same symbol twice is a no-op.
func (t *Table) Enter(scope ScopeID, sym SymbolID) bool {
	sc := t.Scope(scope)
	s := t.Sym(sym)
	if sc == nil || s == nil {
		return false
	}
	existing := sc.names[s.Name]
	for _, e := range existing {
		if e == sym {
			return true
		}
	}
	if sc.Kind == ScopeOrdinary && s.Kind != SymMethod {
		for _, e := range existing {
			if es := t.Sym(e); es != nil && es.Kind == s.Kind {
				return false
			}
		}
	}
	sc.names[s.Name] = append(existing, sym)
	sc.order = append(sc.order, sym)
	if sc.star != nil {
		delete(sc.star, s.Name)
	}
	return true
}

// AddImportSource registers an on-demand import on a star-import scope.
func (t *Table) AddImportSource(scope ScopeID, src ImportSource) {
	sc := t.Scope(scope)
	if sc == nil {
		return
	}
	for _, s := range sc.sources {
		if s == src {
			return
		}
	}
	sc.sources = append(sc.sources, src)
	sc.star = nil
}

// Lookup returns the symbols entered under name. For star-import scopes the
// on-demand sources are consulted and the deduplicated result is cached.
// The returned slice must not be modified.
func (t *Table) Lookup(scope ScopeID, name string) []SymbolID {
	sc := t.Scope(scope)
	if sc == nil {
		return nil
	}
	direct := sc.names[name]
	if sc.Kind != ScopeStarImport || len(sc.sources) == 0 {
		return direct
	}
	if cached, ok := sc.star[name]; ok {
		return cached
	}
	out := append([]SymbolID(nil), direct...)
	for _, src := range sc.sources {
		if src.Name != "" && src.Name != name {
			continue
		}
		for _, found := range t.importedMembers(src, name) {
			dup := false
			for _, o := range out {
				if o == found {
					dup = true
					break
				}
			}
			if !dup {
				out = append(out, found)
			}
		}
	}
	if sc.star == nil {
		sc.star = make(map[string][]SymbolID)
	}
	sc.star[name] = out
	return out
}

func (t *Table) importedMembers(src ImportSource, name string) []SymbolID {
	s := t.Sym(src.Sym)
	if s == nil {
		return nil
	}
	switch s.Kind {
	case SymPackage:
		if src.Static {
			return nil
		}
		if found := t.PackageMember(src.Sym, name); found.IsValid() {
			return []SymbolID{found}
		}
	case SymType:
		var out []SymbolID
		for _, m := range t.Lookup(t.Members(src.Sym), name) {
			ms := t.Sym(m)
			if src.Static {
				if ms.Flags.IsStatic() {
					out = append(out, m)
				}
			} else if ms.Kind == SymType {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// ScopeSymbols returns the symbols entered directly, in order.
func (t *Table) ScopeSymbols(scope ScopeID) []SymbolID {
	sc := t.Scope(scope)
	if sc == nil {
		return nil
	}
	return sc.order
}

// LookupChain walks Parent links until a scope yields a result.
func (t *Table) LookupChain(scope ScopeID, name string) []SymbolID {
	for id := scope; id.IsValid(); {
		if found := t.Lookup(id, name); len(found) > 0 {
			return found
		}
		sc := t.Scope(id)
		if sc == nil {
			break
		}
		id = sc.Parent
	}
	return nil
}
