package resolve

import (
	"strings"

	"jsema/internal/symbols"
)

// siteClasses returns the classes whose members are visible on a value of
// type site, most specific first.
func (r *Resolver) siteClasses(site symbols.TypeID) []symbols.SymbolID {
	return r.siteClassesDepth(site, 0)
}

func (r *Resolver) siteClassesDepth(site symbols.TypeID, depth int) []symbols.SymbolID {
	ty, ok := r.t.Type(site)
	if !ok || ty.IsUnknown() || depth > symbols.MaxClosureDepth {
		return nil
	}
	switch ty.Kind {
	case symbols.TyClass, symbols.TyParameterized:
		return []symbols.SymbolID{ty.Sym}
	case symbols.TyArray:
		out := []symbols.SymbolID{r.t.ArraySymbol()}
		if obj := r.t.TypeSym(r.t.ObjectType()); !r.t.IsUnknownSym(obj) {
			out = append(out, obj)
		}
		return out
	case symbols.TyTypeVar:
		var out []symbols.SymbolID
		for _, b := range r.t.Bounds(ty.Sym) {
			out = append(out, r.siteClassesDepth(b, depth+1)...)
		}
		return out
	case symbols.TyWildcard:
		if ty.Bound == symbols.BoundExtends {
			return r.siteClassesDepth(ty.Elem, depth+1)
		}
		return r.siteClassesDepth(r.t.ObjectType(), depth+1)
	case symbols.TyUnion:
		var out []symbols.SymbolID
		for _, alt := range ty.Alts {
			out = append(out, r.siteClassesDepth(alt, depth+1)...)
		}
		return out
	}
	return nil
}

// findMember searches cls and its ancestors for an accessible member of
// the given kind. Inaccessible matches are remembered so the caller can
// tell "not accessible" from "not found".
func (r *Resolver) findMember(env *Env, cls symbols.SymbolID, name string, kind symbols.SymbolKind) (found, hidden symbols.SymbolID) {
	r.walkHierarchy(cls, false, func(sym symbols.SymbolID) bool {
		for _, m := range r.t.Lookup(r.t.Members(sym), name) {
			ms := r.t.MustSym(m)
			if ms.Kind != kind {
				continue
			}
			if sym != cls && !r.IsInheritedIn(m, cls) {
				continue
			}
			if env != nil && !r.IsAccessible(env, m) {
				if !hidden.IsValid() {
					hidden = m
				}
				continue
			}
			found = m
			return false
		}
		return true
	})
	return found, hidden
}

// FindField finds the field name on a value of type site.
func (r *Resolver) FindField(env *Env, site symbols.TypeID, name string) symbols.SymbolID {
	var hidden symbols.SymbolID
	for _, cls := range r.siteClasses(site) {
		found, h := r.findMember(env, cls, name, symbols.SymVariable)
		if found.IsValid() {
			return found
		}
		if !hidden.IsValid() {
			hidden = h
		}
	}
	if hidden.IsValid() {
		return hidden
	}
	return r.unknown()
}

// FindMemberType finds a member class of cls or of one of its ancestors.
func (r *Resolver) FindMemberType(env *Env, cls symbols.SymbolID, name string) symbols.SymbolID {
	if s := r.t.Sym(cls); s != nil && s.Kind == symbols.SymPackage {
		if found := r.t.PackageMember(cls, name); found.IsValid() {
			return found
		}
		return r.unknown()
	}
	found, hidden := r.findMember(env, cls, name, symbols.SymType)
	switch {
	case found.IsValid():
		return found
	case hidden.IsValid():
		return hidden
	}
	return r.unknown()
}

func (r *Resolver) firstOfKind(ids []symbols.SymbolID, kinds ...symbols.SymbolKind) symbols.SymbolID {
	for _, id := range ids {
		s := r.t.Sym(id)
		if s == nil {
			continue
		}
		for _, k := range kinds {
			if s.Kind == k {
				return id
			}
		}
	}
	return symbols.NoSymbolID
}

func (r *Resolver) typeParamNamed(owner symbols.SymbolID, name string) symbols.SymbolID {
	for _, tp := range r.t.TypeParams(owner) {
		if r.t.MustSym(tp).Name == name {
			return tp
		}
	}
	return symbols.NoSymbolID
}

// FindType resolves a simple type name: local classes and type parameters
// innermost first, then member types of the enclosing classes, then single
// type imports, the current package and on-demand imports.
func (r *Resolver) FindType(env *Env, name string) symbols.SymbolID {
	for e := env; e != nil; e = e.Outer {
		switch e.Kind {
		case EnvBlock, EnvLambda:
			if found := r.firstOfKind(r.t.Lookup(e.Scope, name), symbols.SymType); found.IsValid() {
				return found
			}
		case EnvMethod:
			if tp := r.typeParamNamed(e.Method, name); tp.IsValid() {
				return tp
			}
		case EnvClass:
			if tp := r.typeParamNamed(e.Class, name); tp.IsValid() {
				return tp
			}
			if e.Header {
				continue
			}
			if r.t.MustSym(e.Class).Name == name {
				return e.Class
			}
			if found, _ := r.findMember(e, e.Class, name, symbols.SymType); found.IsValid() {
				return found
			}
		case EnvUnit:
			if found := r.firstOfKind(r.t.Lookup(e.NamedImports, name), symbols.SymType); found.IsValid() {
				return found
			}
			if found := r.t.PackageMember(e.Package, name); found.IsValid() {
				return found
			}
			if found := r.firstOfKind(r.t.Lookup(e.StarImports, name), symbols.SymType); found.IsValid() {
				return found
			}
		}
	}
	return r.unknown()
}

// FindTypePath resolves a dotted type name part by part and returns one
// symbol per part: packages for the leading package segments, then types.
// Parts after the first failure are unknown.
func (r *Resolver) FindTypePath(env *Env, parts []string) []symbols.SymbolID {
	out := make([]symbols.SymbolID, len(parts))
	for i := range out {
		out[i] = r.unknown()
	}
	if len(parts) == 0 {
		return out
	}
	start := 0
	if first := r.FindType(env, parts[0]); !r.t.IsUnknownSym(first) {
		out[0] = first
		start = 1
	} else {
		for i := 1; i < len(parts); i++ {
			binary := strings.Join(parts[:i], "/") + "/" + parts[i]
			if !r.loader.HasClass(binary) {
				continue
			}
			for j := 0; j < i; j++ {
				out[j] = r.loader.Package(strings.Join(parts[:j+1], "."))
			}
			out[i] = r.loader.ClassSymbol(binary)
			start = i + 1
			break
		}
		if start == 0 {
			return out
		}
	}
	for i := start; i < len(parts); i++ {
		next := r.FindMemberType(env, out[i-1], parts[i])
		if r.t.IsUnknownSym(next) {
			return out
		}
		out[i] = next
	}
	return out
}

// FindQualifiedType resolves a dotted type name (java.util.Map.Entry).
func (r *Resolver) FindQualifiedType(env *Env, dotted string) symbols.SymbolID {
	path := r.FindTypePath(env, strings.Split(dotted, "."))
	return path[len(path)-1]
}

// FindIdent resolves an expression name to a variable, type or package,
// in that order, restricted by mask.
func (r *Resolver) FindIdent(env *Env, name string, mask KindMask) symbols.SymbolID {
	if mask&KindVar != 0 {
		if found := r.findVar(env, name); found.IsValid() {
			return found
		}
	}
	if mask&KindType != 0 {
		if found := r.FindType(env, name); !r.t.IsUnknownSym(found) {
			return found
		}
	}
	if mask&KindPackage != 0 && r.loader.HasPackage(name) {
		return r.loader.Package(name)
	}
	return r.unknown()
}

func (r *Resolver) findVar(env *Env, name string) symbols.SymbolID {
	for e := env; e != nil; e = e.Outer {
		switch e.Kind {
		case EnvMethod, EnvBlock, EnvLambda:
			if found := r.firstOfKind(r.t.Lookup(e.Scope, name), symbols.SymVariable); found.IsValid() {
				return found
			}
		case EnvClass:
			found, hidden := r.findMember(e, e.Class, name, symbols.SymVariable)
			if found.IsValid() {
				return found
			}
			if hidden.IsValid() {
				return hidden
			}
		case EnvUnit:
			if found := r.firstOfKind(r.t.Lookup(e.StarImports, name), symbols.SymVariable); found.IsValid() {
				return found
			}
		}
	}
	return symbols.NoSymbolID
}
