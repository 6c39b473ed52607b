package ast

// Kind is the fixed node-kind enumeration the semantic passes switch over.
type Kind uint8

const (
	KindInvalid Kind = iota

	// declarations
	KindCompilationUnit
	KindImport
	KindClass
	KindInterface
	KindEnum
	KindAnnotationType
	KindRecord
	KindMethod
	KindConstructor
	KindField
	KindEnumConstant
	KindLocalVar
	KindParameter
	KindTypeParameter
	KindAnnotation
	KindInitializer

	// statements
	KindBlock
	KindExprStmt
	KindReturn
	KindThrow
	KindIf
	KindWhile
	KindDoWhile
	KindFor
	KindForEach
	KindTry
	KindCatch
	KindSwitch
	KindCase
	KindSynchronized
	KindLabeled
	KindBreak
	KindContinue
	KindYield
	KindAssert
	KindEmpty

	// expressions
	KindIdent
	KindLiteral
	KindFieldAccess
	KindMethodCall
	KindNew
	KindNewArray
	KindArrayInit
	KindAssign
	KindBinary
	KindUnary
	KindConditional
	KindCast
	KindInstanceOf
	KindArrayAccess
	KindParen
	KindLambda
	KindMethodRef
	KindThis
	KindSuper
	KindClassLit
	KindSwitchExpr

	// type trees
	KindPrimitiveType
	KindVoidType
	KindNamedType
	KindArrayType
	KindWildcard
	KindUnionType
	KindVarType
)

var kindNames = [...]string{
	KindInvalid:         "invalid",
	KindCompilationUnit: "compilation_unit",
	KindImport:          "import",
	KindClass:           "class",
	KindInterface:       "interface",
	KindEnum:            "enum",
	KindAnnotationType:  "annotation_type",
	KindRecord:          "record",
	KindMethod:          "method",
	KindConstructor:     "constructor",
	KindField:           "field",
	KindEnumConstant:    "enum_constant",
	KindLocalVar:        "local_var",
	KindParameter:       "parameter",
	KindTypeParameter:   "type_parameter",
	KindAnnotation:      "annotation",
	KindInitializer:     "initializer",
	KindBlock:           "block",
	KindExprStmt:        "expr_stmt",
	KindReturn:          "return",
	KindThrow:           "throw",
	KindIf:              "if",
	KindWhile:           "while",
	KindDoWhile:         "do_while",
	KindFor:             "for",
	KindForEach:         "for_each",
	KindTry:             "try",
	KindCatch:           "catch",
	KindSwitch:          "switch",
	KindCase:            "case",
	KindSynchronized:    "synchronized",
	KindLabeled:         "labeled",
	KindBreak:           "break",
	KindContinue:        "continue",
	KindYield:           "yield",
	KindAssert:          "assert",
	KindEmpty:           "empty",
	KindIdent:           "ident",
	KindLiteral:         "literal",
	KindFieldAccess:     "field_access",
	KindMethodCall:      "method_call",
	KindNew:             "new",
	KindNewArray:        "new_array",
	KindArrayInit:       "array_init",
	KindAssign:          "assign",
	KindBinary:          "binary",
	KindUnary:           "unary",
	KindConditional:     "conditional",
	KindCast:            "cast",
	KindInstanceOf:      "instanceof",
	KindArrayAccess:     "array_access",
	KindParen:           "paren",
	KindLambda:          "lambda",
	KindMethodRef:       "method_ref",
	KindThis:            "this",
	KindSuper:           "super",
	KindClassLit:        "class_literal",
	KindSwitchExpr:      "switch_expr",
	KindPrimitiveType:   "primitive_type",
	KindVoidType:        "void_type",
	KindNamedType:       "named_type",
	KindArrayType:       "array_type",
	KindWildcard:        "wildcard",
	KindUnionType:       "union_type",
	KindVarType:         "var_type",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsTypeDecl covers class-like declarations.
func (k Kind) IsTypeDecl() bool {
	return k >= KindClass && k <= KindRecord
}

func (k Kind) IsStmt() bool {
	return k >= KindBlock && k <= KindEmpty
}

func (k Kind) IsExpr() bool {
	return k >= KindIdent && k <= KindSwitchExpr
}

func (k Kind) IsTypeTree() bool {
	return k >= KindPrimitiveType && k <= KindVarType
}
