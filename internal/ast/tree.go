package ast

import "jsema/internal/source"

type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }

// Node is the common header; Payload indexes the arena for the node's kind.
type Node struct {
	Kind    Kind
	Span    source.Span
	Parent  NodeID
	Payload uint32
}

// Tree holds one compilation unit. Node IDs are local to the tree.
type Tree struct {
	File source.FileID
	Root NodeID

	Nodes *Arena[Node]

	units       *Arena[UnitData]
	imports     *Arena[ImportData]
	classes     *Arena[ClassData]
	methods     *Arena[MethodData]
	vars        *Arena[VarData]
	constants   *Arena[EnumConstantData]
	typeParams  *Arena[TypeParamData]
	annotations *Arena[AnnotationData]
	inits       *Arena[InitializerData]
	blocks      *Arena[BlockData]
	stmts       *Arena[StmtData]
	tries       *Arena[TryData]
	switches    *Arena[SwitchData]
	cases       *Arena[CaseData]
	idents      *Arena[IdentData]
	literals    *Arena[LiteralData]
	selects     *Arena[SelectData]
	calls       *Arena[CallData]
	news        *Arena[NewData]
	newArrays   *Arena[NewArrayData]
	lists       *Arena[ListData]
	ops         *Arena[OpData]
	unaries     *Arena[UnaryData]
	conds       *Arena[CondData]
	casts       *Arena[CastData]
	indices     *Arena[IndexData]
	lambdas     *Arena[LambdaData]
	methodRefs  *Arena[MethodRefData]
	refs        *Arena[RefData]
	types       *Arena[TypeData]
}

// NewTree allocates an empty tree; capHint sizes the node arena.
func NewTree(file source.FileID, capHint uint) *Tree {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint / 8
	return &Tree{
		File:        file,
		Nodes:       NewArena[Node](capHint),
		units:       NewArena[UnitData](1),
		imports:     NewArena[ImportData](small),
		classes:     NewArena[ClassData](small),
		methods:     NewArena[MethodData](small),
		vars:        NewArena[VarData](small),
		constants:   NewArena[EnumConstantData](0),
		typeParams:  NewArena[TypeParamData](0),
		annotations: NewArena[AnnotationData](0),
		inits:       NewArena[InitializerData](0),
		blocks:      NewArena[BlockData](small),
		stmts:       NewArena[StmtData](small),
		tries:       NewArena[TryData](0),
		switches:    NewArena[SwitchData](0),
		cases:       NewArena[CaseData](0),
		idents:      NewArena[IdentData](capHint / 4),
		literals:    NewArena[LiteralData](small),
		selects:     NewArena[SelectData](small),
		calls:       NewArena[CallData](small),
		news:        NewArena[NewData](small),
		newArrays:   NewArena[NewArrayData](0),
		lists:       NewArena[ListData](0),
		ops:         NewArena[OpData](small),
		unaries:     NewArena[UnaryData](small),
		conds:       NewArena[CondData](0),
		casts:       NewArena[CastData](0),
		indices:     NewArena[IndexData](0),
		lambdas:     NewArena[LambdaData](0),
		methodRefs:  NewArena[MethodRefData](0),
		refs:        NewArena[RefData](0),
		types:       NewArena[TypeData](capHint / 4),
	}
}

// Node returns the header of id, nil for NoNodeID.
func (t *Tree) Node(id NodeID) *Node {
	return t.Nodes.Get(uint32(id))
}

// Kind returns KindInvalid for unknown ids.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindInvalid
}

func (t *Tree) Span(id NodeID) source.Span {
	if n := t.Node(id); n != nil {
		return n.Span
	}
	return source.Span{}
}

func (t *Tree) Len() int {
	return int(t.Nodes.Len())
}

func add[T any](t *Tree, a *Arena[T], kind Kind, sp source.Span, v T) NodeID {
	payload := a.Allocate(v)
	return NodeID(t.Nodes.Allocate(Node{Kind: kind, Span: sp, Payload: payload}))
}

func get[T any](t *Tree, a *Arena[T], id NodeID, match func(Kind) bool) *T {
	n := t.Node(id)
	if n == nil || !match(n.Kind) {
		return nil
	}
	return a.Get(n.Payload)
}

func is(kinds ...Kind) func(Kind) bool {
	return func(k Kind) bool {
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

func (t *Tree) NewUnit(sp source.Span, d UnitData) NodeID {
	id := add(t, t.units, KindCompilationUnit, sp, d)
	t.Root = id
	return id
}
func (t *Tree) NewImport(sp source.Span, d ImportData) NodeID {
	return add(t, t.imports, KindImport, sp, d)
}

// NewClass accepts any class-like kind.
func (t *Tree) NewClass(kind Kind, sp source.Span, d ClassData) NodeID {
	return add(t, t.classes, kind, sp, d)
}
func (t *Tree) NewMethod(kind Kind, sp source.Span, d MethodData) NodeID {
	return add(t, t.methods, kind, sp, d)
}

// NewVar accepts KindField, KindLocalVar and KindParameter.
func (t *Tree) NewVar(kind Kind, sp source.Span, d VarData) NodeID {
	return add(t, t.vars, kind, sp, d)
}
func (t *Tree) NewEnumConstant(sp source.Span, d EnumConstantData) NodeID {
	return add(t, t.constants, KindEnumConstant, sp, d)
}
func (t *Tree) NewTypeParam(sp source.Span, d TypeParamData) NodeID {
	return add(t, t.typeParams, KindTypeParameter, sp, d)
}
func (t *Tree) NewAnnotation(sp source.Span, d AnnotationData) NodeID {
	return add(t, t.annotations, KindAnnotation, sp, d)
}
func (t *Tree) NewInitializer(sp source.Span, d InitializerData) NodeID {
	return add(t, t.inits, KindInitializer, sp, d)
}
func (t *Tree) NewBlock(sp source.Span, stmts []NodeID) NodeID {
	return add(t, t.blocks, KindBlock, sp, BlockData{Stmts: stmts})
}

// NewStmt accepts every statement kind backed by StmtData.
func (t *Tree) NewStmt(kind Kind, sp source.Span, d StmtData) NodeID {
	return add(t, t.stmts, kind, sp, d)
}
func (t *Tree) NewTry(sp source.Span, d TryData) NodeID {
	return add(t, t.tries, KindTry, sp, d)
}
func (t *Tree) NewSwitch(kind Kind, sp source.Span, d SwitchData) NodeID {
	return add(t, t.switches, kind, sp, d)
}
func (t *Tree) NewCase(sp source.Span, d CaseData) NodeID {
	return add(t, t.cases, KindCase, sp, d)
}
func (t *Tree) NewIdent(sp source.Span, name string) NodeID {
	return add(t, t.idents, KindIdent, sp, IdentData{Name: name})
}
func (t *Tree) NewLiteral(sp source.Span, kind LitKind, text string) NodeID {
	return add(t, t.literals, KindLiteral, sp, LiteralData{Kind: kind, Text: text})
}
func (t *Tree) NewFieldAccess(sp source.Span, d SelectData) NodeID {
	return add(t, t.selects, KindFieldAccess, sp, d)
}
func (t *Tree) NewCall(sp source.Span, d CallData) NodeID {
	return add(t, t.calls, KindMethodCall, sp, d)
}
func (t *Tree) NewNew(sp source.Span, d NewData) NodeID {
	return add(t, t.news, KindNew, sp, d)
}
func (t *Tree) NewNewArray(sp source.Span, d NewArrayData) NodeID {
	return add(t, t.newArrays, KindNewArray, sp, d)
}
func (t *Tree) NewArrayInit(sp source.Span, elems []NodeID) NodeID {
	return add(t, t.lists, KindArrayInit, sp, ListData{Elems: elems})
}

// NewOp accepts KindBinary and KindAssign.
func (t *Tree) NewOp(kind Kind, sp source.Span, d OpData) NodeID {
	return add(t, t.ops, kind, sp, d)
}

// NewUnary accepts KindUnary and KindParen.
func (t *Tree) NewUnary(kind Kind, sp source.Span, d UnaryData) NodeID {
	return add(t, t.unaries, kind, sp, d)
}
func (t *Tree) NewConditional(sp source.Span, d CondData) NodeID {
	return add(t, t.conds, KindConditional, sp, d)
}

// NewCast accepts KindCast and KindInstanceOf.
func (t *Tree) NewCast(kind Kind, sp source.Span, d CastData) NodeID {
	return add(t, t.casts, kind, sp, d)
}
func (t *Tree) NewArrayAccess(sp source.Span, d IndexData) NodeID {
	return add(t, t.indices, KindArrayAccess, sp, d)
}
func (t *Tree) NewLambda(sp source.Span, d LambdaData) NodeID {
	return add(t, t.lambdas, KindLambda, sp, d)
}
func (t *Tree) NewMethodRef(sp source.Span, d MethodRefData) NodeID {
	return add(t, t.methodRefs, KindMethodRef, sp, d)
}

// NewRef accepts KindThis, KindSuper and KindClassLit.
func (t *Tree) NewRef(kind Kind, sp source.Span, target NodeID) NodeID {
	return add(t, t.refs, kind, sp, RefData{Target: target})
}

// NewType accepts every type-tree kind.
func (t *Tree) NewType(kind Kind, sp source.Span, d TypeData) NodeID {
	return add(t, t.types, kind, sp, d)
}

func (t *Tree) Unit(id NodeID) *UnitData {
	return get(t, t.units, id, is(KindCompilationUnit))
}
func (t *Tree) Import(id NodeID) *ImportData {
	return get(t, t.imports, id, is(KindImport))
}
func (t *Tree) Class(id NodeID) *ClassData {
	return get(t, t.classes, id, Kind.IsTypeDecl)
}
func (t *Tree) Method(id NodeID) *MethodData {
	return get(t, t.methods, id, is(KindMethod, KindConstructor))
}
func (t *Tree) Var(id NodeID) *VarData {
	return get(t, t.vars, id, is(KindField, KindLocalVar, KindParameter))
}
func (t *Tree) EnumConstant(id NodeID) *EnumConstantData {
	return get(t, t.constants, id, is(KindEnumConstant))
}
func (t *Tree) TypeParam(id NodeID) *TypeParamData {
	return get(t, t.typeParams, id, is(KindTypeParameter))
}
func (t *Tree) Annotation(id NodeID) *AnnotationData {
	return get(t, t.annotations, id, is(KindAnnotation))
}
func (t *Tree) Initializer(id NodeID) *InitializerData {
	return get(t, t.inits, id, is(KindInitializer))
}
func (t *Tree) Block(id NodeID) *BlockData {
	return get(t, t.blocks, id, is(KindBlock))
}
func (t *Tree) Stmt(id NodeID) *StmtData {
	return get(t, t.stmts, id, func(k Kind) bool {
		return k.IsStmt() && k != KindBlock && k != KindTry && k != KindSwitch && k != KindCase
	})
}
func (t *Tree) Try(id NodeID) *TryData {
	return get(t, t.tries, id, is(KindTry))
}
func (t *Tree) Switch(id NodeID) *SwitchData {
	return get(t, t.switches, id, is(KindSwitch, KindSwitchExpr))
}
func (t *Tree) Case(id NodeID) *CaseData {
	return get(t, t.cases, id, is(KindCase))
}
func (t *Tree) Ident(id NodeID) *IdentData {
	return get(t, t.idents, id, is(KindIdent))
}
func (t *Tree) Literal(id NodeID) *LiteralData {
	return get(t, t.literals, id, is(KindLiteral))
}
func (t *Tree) FieldAccess(id NodeID) *SelectData {
	return get(t, t.selects, id, is(KindFieldAccess))
}
func (t *Tree) Call(id NodeID) *CallData {
	return get(t, t.calls, id, is(KindMethodCall))
}
func (t *Tree) New(id NodeID) *NewData {
	return get(t, t.news, id, is(KindNew))
}
func (t *Tree) NewArrayOf(id NodeID) *NewArrayData {
	return get(t, t.newArrays, id, is(KindNewArray))
}
func (t *Tree) ArrayInit(id NodeID) *ListData {
	return get(t, t.lists, id, is(KindArrayInit))
}
func (t *Tree) Op(id NodeID) *OpData {
	return get(t, t.ops, id, is(KindBinary, KindAssign))
}
func (t *Tree) Unary(id NodeID) *UnaryData {
	return get(t, t.unaries, id, is(KindUnary, KindParen))
}
func (t *Tree) Conditional(id NodeID) *CondData {
	return get(t, t.conds, id, is(KindConditional))
}
func (t *Tree) Cast(id NodeID) *CastData {
	return get(t, t.casts, id, is(KindCast, KindInstanceOf))
}
func (t *Tree) ArrayAccess(id NodeID) *IndexData {
	return get(t, t.indices, id, is(KindArrayAccess))
}
func (t *Tree) Lambda(id NodeID) *LambdaData {
	return get(t, t.lambdas, id, is(KindLambda))
}
func (t *Tree) MethodRef(id NodeID) *MethodRefData {
	return get(t, t.methodRefs, id, is(KindMethodRef))
}
func (t *Tree) Ref(id NodeID) *RefData {
	return get(t, t.refs, id, is(KindThis, KindSuper, KindClassLit))
}
func (t *Tree) Type(id NodeID) *TypeData {
	return get(t, t.types, id, Kind.IsTypeTree)
}
