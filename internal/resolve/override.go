package resolve

import "jsema/internal/symbols"

// Overridden returns the method that method overrides, NoSymbolID when it
// overrides nothing. The link is computed on first request and cached on
// the symbol.
func (r *Resolver) Overridden(method symbols.SymbolID) symbols.SymbolID {
	if id, ok := r.t.Overridden(method); ok {
		return id
	}
	result := symbols.NoSymbolID
	s := r.t.Sym(method)
	if s != nil && s.Kind == symbols.SymMethod && !s.IsConstructor() && !s.Flags.IsStatic() && !s.Flags.IsPrivate() {
		owner := r.t.EnclosingClass(s.Owner)
		this := r.t.ThisType(owner)
		mine := r.erasedKey(r.t.SymType(method))
		r.walkHierarchy(owner, false, func(sym symbols.SymbolID) bool {
			if sym == owner {
				return true
			}
			for _, c := range r.t.Lookup(r.t.Members(sym), s.Name) {
				cs := r.t.MustSym(c)
				if cs.Kind != symbols.SymMethod || cs.Flags.IsStatic() || cs.Flags.IsPrivate() {
					continue
				}
				if !r.IsInheritedIn(c, owner) {
					continue
				}
				if r.erasedKey(r.gen.AsMemberOf(this, c)) == mine {
					result = c
					return false
				}
			}
			return true
		})
	}
	r.t.SetOverridden(method, result)
	return result
}
