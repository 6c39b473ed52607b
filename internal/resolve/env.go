package resolve

import "jsema/internal/symbols"

// EnvKind tells what introduced an environment.
type EnvKind uint8

const (
	EnvUnit EnvKind = iota
	EnvClass
	EnvMethod
	EnvBlock
	EnvLambda
)

func (k EnvKind) String() string {
	switch k {
	case EnvUnit:
		return "unit"
	case EnvClass:
		return "class"
	case EnvMethod:
		return "method"
	case EnvBlock:
		return "block"
	case EnvLambda:
		return "lambda"
	}
	return "invalid"
}

// Env is one link of the lexical environment chain. Class environments
// resolve through the class members; method, block and lambda environments
// carry an ordinary scope for parameters and locals. The unit environment
// at the root holds the package and the import scopes.
type Env struct {
	Kind   EnvKind
	Outer  *Env
	Scope  symbols.ScopeID
	Class  symbols.SymbolID // innermost enclosing class
	Method symbols.SymbolID // innermost enclosing method, if any
	Static bool             // static context: no `this`
	Header bool             // class header: only the type parameters are visible

	Package      symbols.SymbolID
	NamedImports symbols.ScopeID // single-type imports
	StarImports  symbols.ScopeID // on-demand, static and java.lang imports
}

// NewUnitEnv creates the root environment of a compilation unit.
func NewUnitEnv(pkg symbols.SymbolID, named, star symbols.ScopeID) *Env {
	return &Env{Kind: EnvUnit, Package: pkg, NamedImports: named, StarImports: star}
}

func (e *Env) child(kind EnvKind) *Env {
	return &Env{
		Kind:         kind,
		Outer:        e,
		Class:        e.Class,
		Method:       e.Method,
		Static:       e.Static,
		Package:      e.Package,
		NamedImports: e.NamedImports,
		StarImports:  e.StarImports,
	}
}

// ForClass enters the body of cls.
func (e *Env) ForClass(cls symbols.SymbolID, static bool) *Env {
	c := e.child(EnvClass)
	c.Class = cls
	c.Method = symbols.NoSymbolID
	c.Static = static
	return c
}

// ForHeader enters the header of cls (type parameters, extends and
// implements clauses), where its members are not yet in scope.
func (e *Env) ForHeader(cls symbols.SymbolID) *Env {
	c := e.ForClass(cls, false)
	c.Header = true
	return c
}

// ForMethod enters the body of method; scope holds its parameters.
func (e *Env) ForMethod(method symbols.SymbolID, scope symbols.ScopeID, static bool) *Env {
	c := e.child(EnvMethod)
	c.Method = method
	c.Scope = scope
	c.Static = static || e.Static
	return c
}

// ForBlock opens a block with its own scope.
func (e *Env) ForBlock(scope symbols.ScopeID) *Env {
	c := e.child(EnvBlock)
	c.Scope = scope
	return c
}

// ForLambda opens a lambda body with its own parameter scope.
func (e *Env) ForLambda(scope symbols.ScopeID) *Env {
	c := e.child(EnvLambda)
	c.Scope = scope
	return c
}

// Unit returns the root of the chain.
func (e *Env) Unit() *Env {
	for cur := e; cur != nil; cur = cur.Outer {
		if cur.Outer == nil {
			return cur
		}
	}
	return e
}

// Enclosing returns the nearest environment of the given kind or nil.
func (e *Env) Enclosing(kind EnvKind) *Env {
	for cur := e; cur != nil; cur = cur.Outer {
		if cur.Kind == kind {
			return cur
		}
	}
	return nil
}
