package ast

import "jsema/internal/source"

// ModFlags is the modifier keyword set of a declaration.
type ModFlags uint32

const (
	ModPublic ModFlags = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModNative
	ModSynchronized
	ModTransient
	ModVolatile
	ModStrictfp
	ModDefault
	ModSealed
	ModNonSealed
)

var modKeywords = map[string]ModFlags{
	"public":       ModPublic,
	"protected":    ModProtected,
	"private":      ModPrivate,
	"static":       ModStatic,
	"final":        ModFinal,
	"abstract":     ModAbstract,
	"native":       ModNative,
	"synchronized": ModSynchronized,
	"transient":    ModTransient,
	"volatile":     ModVolatile,
	"strictfp":     ModStrictfp,
	"default":      ModDefault,
	"sealed":       ModSealed,
	"non-sealed":   ModNonSealed,
}

// ModifierFor maps a modifier keyword to its flag; 0 if unknown.
func ModifierFor(keyword string) ModFlags {
	return modKeywords[keyword]
}

func (m ModFlags) Has(f ModFlags) bool { return m&f != 0 }

type Modifiers struct {
	Flags       ModFlags
	Annotations []NodeID
}

type UnitData struct {
	Package     string
	PackageSpan source.Span
	Imports     []NodeID
	Types       []NodeID
}

type ImportData struct {
	Name   string // dotted, without the trailing .*
	Static bool
	Star   bool
}

// ClassData backs every class-like declaration, including anonymous class
// bodies (Anonymous set, Name empty).
type ClassData struct {
	Name       string
	NameSpan   source.Span
	Mods       Modifiers
	TypeParams []NodeID
	Super      NodeID
	Interfaces []NodeID
	Components []NodeID // record header
	Constants  []NodeID // enum constants
	Members    []NodeID
	Anonymous  bool
}

// MethodData backs methods and constructors (Result is 0 for constructors).
type MethodData struct {
	Name       string
	NameSpan   source.Span
	Mods       Modifiers
	TypeParams []NodeID
	Result     NodeID
	Params     []NodeID
	Throws     []NodeID
	Body       NodeID
	Default    NodeID // annotation element default
}

// VarData backs fields, locals and parameters. Type may be 0 for implicitly
// typed lambda parameters.
type VarData struct {
	Name     string
	NameSpan source.Span
	Mods     Modifiers
	Type     NodeID
	Init     NodeID
	Dims     int // extra dimensions after the name: int a[]
	Varargs  bool
}

type EnumConstantData struct {
	Name     string
	NameSpan source.Span
	Mods     Modifiers
	Args     []NodeID
	Body     NodeID
}

type TypeParamData struct {
	Name     string
	NameSpan source.Span
	Bounds   []NodeID
}

type AnnotationArg struct {
	Name  string // "value" for the single-element form
	Value NodeID
}

type AnnotationData struct {
	Name string
	Args []AnnotationArg
}

type InitializerData struct {
	Static bool
	Body   NodeID
}

type BlockData struct {
	Stmts []NodeID
}

// StmtData is shared by the simple statements; unused fields stay zero.
type StmtData struct {
	Expr   NodeID
	Cond   NodeID
	Then   NodeID
	Else   NodeID
	Body   NodeID
	Var    NodeID
	Init   []NodeID
	Update []NodeID
	Label  string
}

type TryData struct {
	Resources []NodeID
	Body      NodeID
	Catches   []NodeID
	Finally   NodeID
}

type SwitchData struct {
	Expr  NodeID
	Cases []NodeID
}

type CaseData struct {
	Labels  []NodeID
	Default bool
	Arrow   bool
	Body    []NodeID
}

type IdentData struct {
	Name string
}

type LitKind uint8

const (
	LitInt LitKind = iota + 1
	LitLong
	LitFloat
	LitDouble
	LitChar
	LitString
	LitBool
	LitNull
)

type LiteralData struct {
	Kind LitKind
	Text string
}

type SelectData struct {
	Target   NodeID
	Name     string
	NameSpan source.Span
}

type CallData struct {
	Target   NodeID // 0 for unqualified calls
	Name     string
	NameSpan source.Span
	TypeArgs []NodeID
	Args     []NodeID
}

type NewData struct {
	Outer    NodeID
	Type     NodeID
	TypeArgs []NodeID
	Args     []NodeID
	Body     NodeID // anonymous class
}

type NewArrayData struct {
	Elem      NodeID
	Dims      []NodeID
	ExtraDims int
	Init      NodeID
}

type ListData struct {
	Elems []NodeID
}

// OpData backs binary and assignment expressions. Op is the operator text.
type OpData struct {
	Op    string
	Left  NodeID
	Right NodeID
}

// UnaryData backs unary and parenthesized expressions.
type UnaryData struct {
	Op      string
	Operand NodeID
	Postfix bool
}

type CondData struct {
	Cond NodeID
	Then NodeID
	Else NodeID
}

// CastData backs casts and instanceof; Binding is the pattern variable name.
type CastData struct {
	Type        NodeID
	Expr        NodeID
	Binding     string
	BindingSpan source.Span
}

type IndexData struct {
	Array NodeID
	Index NodeID
}

type LambdaData struct {
	Params []NodeID
	Body   NodeID
}

type MethodRefData struct {
	Target NodeID
	Name   string // "new" for constructor references
}

// RefData backs this, super and class literals: Target is the qualifier or
// the literal's type.
type RefData struct {
	Target NodeID
}

type WildcardBound uint8

const (
	BoundNone WildcardBound = iota
	BoundExtends
	BoundSuper
)

// TypePart is one dotted segment of a named type: Outer<A>.Inner<B>.
type TypePart struct {
	Name    string
	Span    source.Span
	Args    []NodeID
	Diamond bool
}

// TypeData backs every type tree.
type TypeData struct {
	Name      string // primitive keyword, or the dotted name of a named type
	Parts     []TypePart
	Elem      NodeID
	Dims      int
	Bound     NodeID
	BoundKind WildcardBound
	Alts      []NodeID
}
