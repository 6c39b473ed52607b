package sema

import (
	"fmt"
	"strconv"

	"jsema/internal/ast"
	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/resolve"
	"jsema/internal/source"
	"jsema/internal/symbols"
	"jsema/internal/trace"
)

// classDecl remembers where a source class was declared so its completer
// and the resolve pass can rebuild the enclosing environment.
type classDecl struct {
	unit  *Unit
	node  ast.NodeID
	outer func() *resolve.Env
}

// Declare enters the package, the class symbols of every named class of
// the unit (nested ones included) and registers them with the loader.
// Headers and members are filled lazily by source completers.
func (a *Analyzer) Declare(file *source.File, tree *ast.Tree) *Unit {
	u := &Unit{
		File:  file,
		Tree:  tree,
		types: make(map[ast.NodeID]symbols.TypeID),
		syms:  make(map[ast.NodeID]symbols.SymbolID),
	}
	span := trace.Begin(a.tracer, trace.ScopeUnit, "declare", 0).WithExtra("file", u.path())
	defer span.End("")

	root := tree.Unit(tree.Root)
	pkgName := ""
	if root != nil {
		pkgName = root.Package
	}
	u.Package = a.t.RootPackage()
	if pkgName != "" {
		u.Package = a.loader.Package(pkgName)
		u.addRef(root.PackageSpan, tree.Root, u.Package)
	}
	u.named = a.t.NewScope(symbols.ScopeImport, u.Package, symbols.NoScopeID)
	u.star = a.t.NewScope(symbols.ScopeStarImport, u.Package, symbols.NoScopeID)
	u.env = resolve.NewUnitEnv(u.Package, u.named, u.star)

	if root != nil {
		for _, id := range root.Types {
			a.declareClass(u, id, u.Package, func() *resolve.Env { return u.env })
		}
	}
	u.State = FirstPassDone
	return u
}

// declareClass creates the symbol of a named class declaration and of its
// named member classes.
func (a *Analyzer) declareClass(u *Unit, node ast.NodeID, owner symbols.SymbolID, outer func() *resolve.Env) symbols.SymbolID {
	c := u.Tree.Class(node)
	if c == nil || c.Name == "" {
		return symbols.NoSymbolID
	}
	ownerSym := a.t.MustSym(owner)
	var binary string
	switch ownerSym.Kind {
	case symbols.SymPackage:
		binary = c.Name
		if ownerSym.Package.FullName != "" {
			binary = classfile.DottedToInternal(ownerSym.Package.FullName) + "/" + c.Name
		}
	default:
		binary = a.t.BinaryName(owner) + "$" + c.Name
	}

	flags := classFlags(u.Tree.Kind(node), c.Mods.Flags)
	if ownerSym.Kind == symbols.SymType && ownerSym.Flags.IsInterface() {
		flags |= symbols.FlagPublic | symbols.FlagStatic
	}
	if ownerSym.Kind == symbols.SymType && (flags.IsInterface() || flags.IsEnum() || flags.IsRecord()) {
		flags |= symbols.FlagStatic
	}
	sym := a.t.NewClass(symbols.ClassSpec{
		Name:       c.Name,
		BinaryName: binary,
		Owner:      owner,
		Flags:      flags,
		Span:       c.NameSpan,
		Decl:       symbols.Decl{File: u.fileID(), Node: node},
		FromSource: true,
	})
	// the owner's raw scope: Members would complete a class still being declared
	members := symbols.NoScopeID
	switch {
	case ownerSym.Package != nil:
		members = ownerSym.Package.Members
	case ownerSym.Class != nil:
		members = ownerSym.Class.Members
	}
	if !a.t.Enter(members, sym) {
		a.duplicate(c.NameSpan, c.Name, owner)
	}
	if ownerSym.Kind == symbols.SymPackage || ownerSym.Kind == symbols.SymType {
		a.loader.Register(binary, sym)
	}
	u.classes = append(u.classes, sym)
	u.declare(node, sym)
	a.installCompleter(u, sym, node, outer)

	for _, m := range c.Members {
		if u.Tree.Kind(m).IsTypeDecl() {
			a.declareClass(u, m, sym, func() *resolve.Env { return a.bodyEnv(sym) })
		}
	}
	return sym
}

// declareLocal declares a class whose declaration sits in a block or an
// anonymous class body. Its binary name follows the Outer$1Name scheme.
func (a *Analyzer) declareLocal(u *Unit, node ast.NodeID, env *resolve.Env) symbols.SymbolID {
	c := u.Tree.Class(node)
	if c == nil {
		return symbols.NoSymbolID
	}
	owner := env.Class
	if env.Method.IsValid() {
		owner = env.Method
	}
	top := a.t.OutermostClass(env.Class)
	a.anon[top]++
	binary := a.t.BinaryName(top) + "$" + strconv.Itoa(a.anon[top]) + c.Name

	flags := classFlags(u.Tree.Kind(node), c.Mods.Flags)
	if c.Anonymous {
		flags |= symbols.FlagAnonymous | symbols.FlagFinal
	}
	sym := a.t.NewClass(symbols.ClassSpec{
		Name:       c.Name,
		BinaryName: binary,
		Owner:      owner,
		Flags:      flags,
		Span:       c.NameSpan,
		Decl:       symbols.Decl{File: u.fileID(), Node: node},
		FromSource: true,
	})
	if c.Anonymous {
		a.t.MustSym(sym).Span = u.Tree.Span(node)
	}
	u.classes = append(u.classes, sym)
	u.declare(node, sym)
	a.installCompleter(u, sym, node, func() *resolve.Env { return env })
	for _, m := range c.Members {
		if u.Tree.Kind(m).IsTypeDecl() {
			a.declareClass(u, m, sym, func() *resolve.Env { return a.bodyEnv(sym) })
		}
	}
	return sym
}

func (a *Analyzer) installCompleter(u *Unit, sym symbols.SymbolID, node ast.NodeID, outer func() *resolve.Env) {
	a.decls[sym] = &classDecl{unit: u, node: node, outer: outer}
	a.t.SetCompleter(sym, symbols.CompleterFunc(func(_ *symbols.Table, s symbols.SymbolID) {
		a.completeClass(s)
	}))
}

// bodyEnv is the environment of code inside the body of a source class.
func (a *Analyzer) bodyEnv(cls symbols.SymbolID) *resolve.Env {
	d := a.decls[cls]
	if d == nil {
		return resolve.NewUnitEnv(a.t.PackageOf(cls), symbols.NoScopeID, symbols.NoScopeID).ForClass(cls, false)
	}
	return d.outer().ForClass(cls, false)
}

// headerEnv is the environment of the class header: the type parameters
// are visible, members are not.
func (a *Analyzer) headerEnv(cls symbols.SymbolID) *resolve.Env {
	return a.decls[cls].outer().ForHeader(cls)
}

func classFlags(kind ast.Kind, mods ast.ModFlags) symbols.Flags {
	f := modFlags(mods)
	switch kind {
	case ast.KindInterface:
		f |= symbols.FlagInterface | symbols.FlagAbstract
	case ast.KindAnnotationType:
		f |= symbols.FlagInterface | symbols.FlagAbstract | symbols.FlagAnnotation
	case ast.KindEnum:
		f |= symbols.FlagEnum
	case ast.KindRecord:
		f |= symbols.FlagRecord | symbols.FlagFinal
	}
	return f
}

var modFlagMap = []struct {
	mod  ast.ModFlags
	flag symbols.Flags
}{
	{ast.ModPublic, symbols.FlagPublic},
	{ast.ModProtected, symbols.FlagProtected},
	{ast.ModPrivate, symbols.FlagPrivate},
	{ast.ModStatic, symbols.FlagStatic},
	{ast.ModFinal, symbols.FlagFinal},
	{ast.ModAbstract, symbols.FlagAbstract},
	{ast.ModNative, symbols.FlagNative},
	{ast.ModSynchronized, symbols.FlagSynchronized},
	{ast.ModTransient, symbols.FlagTransient},
	{ast.ModVolatile, symbols.FlagVolatile},
	{ast.ModStrictfp, symbols.FlagStrict},
	{ast.ModDefault, symbols.FlagDefault},
	{ast.ModSealed, symbols.FlagSealed},
	{ast.ModNonSealed, symbols.FlagNonSealed},
}

func modFlags(mods ast.ModFlags) symbols.Flags {
	var f symbols.Flags
	for _, m := range modFlagMap {
		if mods.Has(m.mod) {
			f |= m.flag
		}
	}
	return f
}

func (a *Analyzer) duplicate(sp source.Span, name string, owner symbols.SymbolID) {
	where := a.t.FullyQualifiedName(owner)
	if where == "" {
		where = "the default package"
	}
	diag.ReportWarning(a.reporter, diag.ResDuplicateSymbol, sp,
		fmt.Sprintf("%s is already defined in %s", name, where)).Emit()
}
