package symbols

// Type is the Type sum. Sym is the defining symbol: the class for class,
// parameterized and array types (the shared array class), the type variable
// symbol for typevars and the unknown symbol for unknown. Types other than
// method and union types are interned and compare by TypeID.
type Type struct {
	Kind  TypeKind
	Sym   SymbolID
	Elem  TypeID    // array element, wildcard bound
	Bound BoundKind // wildcard
	Subst SubstID   // parameterized

	Params []TypeID // method
	Result TypeID   // method
	Thrown []TypeID // method
	Alts   []TypeID // union
}

func (t Type) IsPrimitive() bool     { return t.Kind.IsPrimitive() }
func (t Type) IsArray() bool         { return t.Kind == TyArray }
func (t Type) IsClass() bool         { return t.Kind == TyClass || t.Kind == TyParameterized }
func (t Type) IsParameterized() bool { return t.Kind == TyParameterized }
func (t Type) IsTypeVar() bool       { return t.Kind == TyTypeVar }
func (t Type) IsWildcard() bool      { return t.Kind == TyWildcard }
func (t Type) IsUnknown() bool       { return t.Kind == TyUnknown || t.Kind == TyInvalid }
func (t Type) IsNull() bool          { return t.Kind == TyNull }
func (t Type) IsVoid() bool          { return t.Kind == TyVoid }
func (t Type) IsMethod() bool        { return t.Kind == TyMethod }

// Pair is one binding of a substitution; Var is a TyTypeVar type.
type Pair struct {
	Var  TypeID
	Type TypeID
}
