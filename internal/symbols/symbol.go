package symbols

import (
	"jsema/internal/ast"
	"jsema/internal/source"
)

// Completer fills a symbol on first demand. The table clears the completer
// before calling it, so a completer runs at most once per symbol.
type Completer interface {
	Complete(t *Table, sym SymbolID)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(t *Table, sym SymbolID)

func (f CompleterFunc) Complete(t *Table, sym SymbolID) { f(t, sym) }

// Usage is one reference site of a symbol.
type Usage struct {
	Span source.Span
	Node ast.NodeID
}

// Decl points at the declaring node of a source symbol.
type Decl struct {
	File source.FileID
	Node ast.NodeID
}

// Symbol describes a named program entity. Owner is a non-owning back
// reference; exactly one of the payload pointers is set for packages, types,
// methods, variables and type variables.
type Symbol struct {
	Kind  SymbolKind
	Flags Flags
	Name  string
	Owner SymbolID
	Type  TypeID
	Span  source.Span
	Decl  Decl

	Package *PackageInfo
	Class   *ClassInfo
	Method  *MethodInfo
	Var     *VarInfo
	TypeVar *TypeVarInfo

	state     CompletionState
	completer Completer
	usages    []Usage
	metadata  Metadata
}

type PackageInfo struct {
	FullName string // dotted, "" for the root package
	Members  ScopeID
}

// ClassInfo is the payload of type symbols.
type ClassInfo struct {
	BinaryName     string // java/util/Map$Entry
	Members        ScopeID
	TypeParams     []SymbolID
	TypeParamScope ScopeID
	Super          TypeID
	Interfaces     []TypeID
	FromSource     bool
}

// MethodInfo is the payload of method and constructor symbols.
type MethodInfo struct {
	Params         []SymbolID
	ParamScope     ScopeID
	TypeParams     []SymbolID
	TypeParamScope ScopeID
	Thrown         []TypeID
	Result         TypeID
	DefaultValue   *AnnotationValue

	overridden      SymbolID
	overriddenState uint8 // 0 not computed, 1 computed
}

type VarInfo struct {
	ParamIndex int // -1 unless a parameter
}

type TypeVarInfo struct {
	Bounds []TypeID
	Index  int
}

// IsConstructor reports the <init> naming used for constructors.
func (s *Symbol) IsConstructor() bool {
	return s.Kind == SymMethod && s.Name == ConstructorName
}

// ConstructorName is the member name under which constructors are entered.
const ConstructorName = "<init>"

func (s *Symbol) IsUnknown() bool { return s == nil || s.Kind == SymUnknown }

func (s *Symbol) State() CompletionState { return s.state }
