package sema

import (
	"fmt"
	"strings"

	"jsema/internal/ast"
	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/resolve"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

// UnitState is the progress of one compilation unit. States only move
// forward.
type UnitState uint8

const (
	Declared UnitState = iota
	FirstPassDone
	TypesResolved
)

func (s UnitState) String() string {
	switch s {
	case Declared:
		return "declared"
	case FirstPassDone:
		return "first-pass-done"
	case TypesResolved:
		return "types-resolved"
	}
	return fmt.Sprintf("UnitState(%d)", uint8(s))
}

// Reference is one identifier or type-name occurrence bound to a symbol.
type Reference struct {
	Span source.Span
	Node ast.NodeID
	Sym  symbols.SymbolID
}

// Unit is one compilation unit and everything the passes learned about it.
type Unit struct {
	File  *source.File
	Tree  *ast.Tree
	State UnitState
	// Err is the fatal error that aborted the unit, if any.
	Err error

	Package symbols.SymbolID

	env         *resolve.Env
	named, star symbols.ScopeID
	importsDone bool

	classes  []symbols.SymbolID // every class declared by the unit, outer first
	declared []symbols.SymbolID
	types    map[ast.NodeID]symbols.TypeID
	syms     map[ast.NodeID]symbols.SymbolID
	refs     []Reference
}

func (u *Unit) path() string {
	if u.File == nil {
		return "<memory>"
	}
	return u.File.Path
}

func (u *Unit) fileID() source.FileID {
	if u.File == nil {
		return source.NoFileID
	}
	return u.File.ID
}

// Classes returns the classes declared by the unit, outer classes first.
func (u *Unit) Classes() []symbols.SymbolID {
	return append([]symbols.SymbolID(nil), u.classes...)
}

func (u *Unit) declare(node ast.NodeID, sym symbols.SymbolID) {
	u.declared = append(u.declared, sym)
	if node.IsValid() {
		u.syms[node] = sym
	}
}

func (u *Unit) bind(node ast.NodeID, sym symbols.SymbolID) {
	if node.IsValid() {
		u.syms[node] = sym
	}
}

func (u *Unit) setType(node ast.NodeID, t symbols.TypeID) {
	if node.IsValid() {
		u.types[node] = t
	}
}

// enterImports fills the import scopes. It runs once, after every unit of
// the run has been declared, so imports of source classes resolve.
func (u *Unit) enterImports(a *Analyzer) {
	if u.importsDone {
		return
	}
	u.importsDone = true
	t := a.t
	t.AddImportSource(u.star, symbols.ImportSource{Sym: a.loader.Package("java.lang")})

	root := u.Tree.Unit(u.Tree.Root)
	if root == nil {
		return
	}
	for _, id := range root.Imports {
		imp := u.Tree.Import(id)
		if imp == nil || imp.Name == "" {
			continue
		}
		sp := u.Tree.Span(id)
		switch {
		case imp.Star && !imp.Static:
			if cls := a.importedClass(imp.Name); cls.IsValid() {
				t.AddImportSource(u.star, symbols.ImportSource{Sym: cls})
				u.addRef(sp, id, cls)
				continue
			}
			if !a.loader.HasPackage(imp.Name) {
				a.unknownImport(sp, imp.Name+".*")
			}
			t.AddImportSource(u.star, symbols.ImportSource{Sym: a.loader.Package(imp.Name)})
		case imp.Static:
			owner, member := imp.Name, ""
			if !imp.Star {
				i := strings.LastIndexByte(imp.Name, '.')
				if i < 0 {
					a.unknownImport(sp, imp.Name)
					continue
				}
				owner, member = imp.Name[:i], imp.Name[i+1:]
			}
			cls := a.importedClass(owner)
			if !cls.IsValid() {
				a.unknownImport(sp, imp.Name)
				continue
			}
			u.addRef(sp, id, cls)
			t.AddImportSource(u.star, symbols.ImportSource{Sym: cls, Name: member, Static: true})
			if member != "" {
				// a static import also brings a member type of that name
				if inner := a.r.FindMemberType(nil, cls, member); !t.IsUnknownSym(inner) {
					t.Enter(u.named, inner)
				}
			}
		default:
			cls := a.importedClass(imp.Name)
			if !cls.IsValid() {
				a.unknownImport(sp, imp.Name)
				continue
			}
			u.addRef(sp, id, cls)
			t.Enter(u.named, cls)
		}
	}
}

// importedClass resolves a canonical dotted class name, trying nested
// splits from the right: a.b.C.D may be a/b/C$D.
func (a *Analyzer) importedClass(dotted string) symbols.SymbolID {
	binary := classfile.DottedToInternal(dotted)
	for {
		if a.loader.HasClass(binary) {
			return a.loader.ClassSymbol(binary)
		}
		i := strings.LastIndexByte(binary, '/')
		if i < 0 {
			return symbols.NoSymbolID
		}
		binary = binary[:i] + "$" + binary[i+1:]
	}
}

func (a *Analyzer) unknownImport(sp source.Span, name string) {
	diag.ReportWarning(a.reporter, diag.ResUnknownImport, sp, "cannot resolve import "+name).Emit()
}

func (u *Unit) addRef(sp source.Span, node ast.NodeID, sym symbols.SymbolID) {
	u.refs = append(u.refs, Reference{Span: sp, Node: node, Sym: sym})
}
