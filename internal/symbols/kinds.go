package symbols

// SymbolKind classifies a symbol.
type SymbolKind uint8

const (
	SymInvalid SymbolKind = iota
	SymPackage
	SymType
	SymMethod
	SymVariable
	SymTypeVar
	SymUnknown
)

func (k SymbolKind) String() string {
	switch k {
	case SymPackage:
		return "package"
	case SymType:
		return "type"
	case SymMethod:
		return "method"
	case SymVariable:
		return "variable"
	case SymTypeVar:
		return "typevar"
	case SymUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// TypeKind is the tag of the Type sum.
type TypeKind uint8

const (
	TyInvalid TypeKind = iota
	TyByte
	TyChar
	TyShort
	TyInt
	TyLong
	TyFloat
	TyDouble
	TyBoolean
	TyVoid
	TyNull
	TyClass
	TyArray
	TyMethod
	TyParameterized
	TyTypeVar
	TyWildcard
	TyUnion
	TyUnknown
)

var typeKindNames = [...]string{
	TyInvalid:       "invalid",
	TyByte:          "byte",
	TyChar:          "char",
	TyShort:         "short",
	TyInt:           "int",
	TyLong:          "long",
	TyFloat:         "float",
	TyDouble:        "double",
	TyBoolean:       "boolean",
	TyVoid:          "void",
	TyNull:          "null",
	TyClass:         "class",
	TyArray:         "array",
	TyMethod:        "method",
	TyParameterized: "parameterized",
	TyTypeVar:       "typevar",
	TyWildcard:      "wildcard",
	TyUnion:         "union",
	TyUnknown:       "unknown",
}

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "invalid"
}

// IsPrimitive covers the eight value kinds; void is not primitive.
func (k TypeKind) IsPrimitive() bool {
	return k >= TyByte && k <= TyBoolean
}

// IsNumeric excludes boolean.
func (k TypeKind) IsNumeric() bool {
	return k >= TyByte && k <= TyDouble
}

// IsReference reports kinds whose values are object references.
func (k TypeKind) IsReference() bool {
	switch k {
	case TyClass, TyArray, TyParameterized, TyTypeVar, TyWildcard, TyUnion, TyNull:
		return true
	}
	return false
}

// BoundKind qualifies a wildcard.
type BoundKind uint8

const (
	BoundUnbounded BoundKind = iota
	BoundExtends
	BoundSuper
)

func (b BoundKind) String() string {
	switch b {
	case BoundExtends:
		return "extends"
	case BoundSuper:
		return "super"
	default:
		return "unbounded"
	}
}

// ScopeKind selects the duplicate policy of a scope.
type ScopeKind uint8

const (
	ScopeOrdinary ScopeKind = iota
	ScopeImport
	ScopeStarImport
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeImport:
		return "import"
	case ScopeStarImport:
		return "star-import"
	default:
		return "ordinary"
	}
}

// CompletionState tracks lazy population of a symbol. The zero value is
// Completed so symbols created without a completer need no bookkeeping.
type CompletionState uint8

const (
	Completed CompletionState = iota
	Uncompleted
	Completing
)
