package resolve

import "jsema/internal/symbols"

// IsAccessible reports whether sym may be referenced from env.
func (r *Resolver) IsAccessible(env *Env, sym symbols.SymbolID) bool {
	s := r.t.Sym(sym)
	if s == nil || s.Kind == symbols.SymUnknown {
		return true
	}
	switch s.Kind {
	case symbols.SymPackage, symbols.SymTypeVar:
		return true
	case symbols.SymVariable:
		// locals and parameters are scoped, not access controlled
		if owner := r.t.Sym(s.Owner); owner == nil || owner.Kind != symbols.SymType {
			return true
		}
	}
	if s.Owner == r.t.ArraySymbol() {
		return true
	}
	flags := r.t.Flags(sym)
	switch {
	case flags.IsPublic():
		return true
	case flags.IsPrivate():
		if !env.Class.IsValid() {
			return false
		}
		return r.t.OutermostClass(env.Class) == r.t.OutermostClass(s.Owner)
	}
	if r.samePackage(env, sym) {
		return true
	}
	if flags.IsProtected() {
		base := r.t.EnclosingClass(s.Owner)
		for cls := env.Class; cls.IsValid(); cls = r.t.EnclosingClass(r.t.MustSym(cls).Owner) {
			if r.isSubClass(cls, base, false) {
				return true
			}
		}
	}
	return false
}

func (r *Resolver) samePackage(env *Env, sym symbols.SymbolID) bool {
	pkg := env.Package
	if env.Class.IsValid() {
		pkg = r.t.PackageOf(env.Class)
	}
	return pkg == r.t.PackageOf(sym)
}

// IsSubClass reports whether class c is base or inherits from it. Interface
// chains are searched only when base is an interface. A cyclic hierarchy
// panics with *CyclicHierarchyError.
func (r *Resolver) IsSubClass(c, base symbols.SymbolID) bool {
	return r.isSubClass(c, base, true)
}

func (r *Resolver) isSubClass(c, base symbols.SymbolID, fatal bool) bool {
	if c == base {
		return c.IsValid()
	}
	if r.t.IsUnknownSym(c) || r.t.IsUnknownSym(base) {
		return false
	}
	if !r.t.Flags(base).IsInterface() {
		seen := make(map[symbols.SymbolID]struct{})
		for cur := c; cur.IsValid() && !r.t.IsUnknownSym(cur); cur = r.superSym(cur) {
			if _, dup := seen[cur]; dup {
				if fatal {
					panic(&CyclicHierarchyError{Name: r.t.FullyQualifiedName(cur)})
				}
				return false
			}
			seen[cur] = struct{}{}
			if cur == base {
				return true
			}
		}
		return false
	}
	found := false
	r.walkHierarchy(c, fatal, func(sym symbols.SymbolID) bool {
		found = sym == base
		return !found
	})
	return found
}

func (r *Resolver) superSym(cls symbols.SymbolID) symbols.SymbolID {
	sup := r.t.Superclass(cls)
	if !sup.IsValid() {
		return symbols.NoSymbolID
	}
	return r.t.TypeSym(sup)
}

// walkHierarchy visits c and all its superclasses and superinterfaces
// depth first, each once. visit returns false to stop. A class found again
// on the current path is a cycle.
func (r *Resolver) walkHierarchy(c symbols.SymbolID, fatal bool, visit func(symbols.SymbolID) bool) {
	onPath := make(map[symbols.SymbolID]bool)
	done := make(map[symbols.SymbolID]bool)
	var walk func(sym symbols.SymbolID) bool
	walk = func(sym symbols.SymbolID) bool {
		if !sym.IsValid() || r.t.IsUnknownSym(sym) || done[sym] {
			return true
		}
		if onPath[sym] {
			if fatal {
				panic(&CyclicHierarchyError{Name: r.t.FullyQualifiedName(sym)})
			}
			return true
		}
		onPath[sym] = true
		defer func() {
			onPath[sym] = false
			done[sym] = true
		}()
		if !visit(sym) {
			return false
		}
		if !walk(r.superSym(sym)) {
			return false
		}
		for _, iface := range r.t.Interfaces(sym) {
			if !walk(r.t.TypeSym(iface)) {
				return false
			}
		}
		return true
	}
	walk(c)
}

// CheckHierarchy walks every ancestor of cls and panics with
// *CyclicHierarchyError when cls takes part in a cycle.
func (r *Resolver) CheckHierarchy(cls symbols.SymbolID) {
	r.walkHierarchy(cls, true, func(symbols.SymbolID) bool { return true })
}

// IsInheritedIn reports whether member sym is inherited into class.
func (r *Resolver) IsInheritedIn(sym, class symbols.SymbolID) bool {
	s := r.t.Sym(sym)
	if s == nil {
		return false
	}
	flags := s.Flags
	switch {
	case flags.IsPublic() || flags.IsProtected():
		return true
	case flags.IsPrivate():
		return s.Owner == class
	}
	return r.t.PackageOf(sym) == r.t.PackageOf(class)
}
