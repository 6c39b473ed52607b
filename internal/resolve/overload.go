package resolve

import (
	"fmt"
	"strings"

	"jsema/internal/diag"
	"jsema/internal/source"
	"jsema/internal/symbols"
	"jsema/internal/trace"
)

// Phase is an overload resolution phase. Phases run in order and the
// first one with an applicable candidate decides.
type Phase uint8

const (
	PhaseNone    Phase = iota
	PhaseStrict        // subtyping and primitive widening only
	PhaseLoose         // plus boxing and unboxing
	PhaseVarargs       // plus variable arity expansion
)

func (p Phase) String() string {
	switch p {
	case PhaseStrict:
		return "strict"
	case PhaseLoose:
		return "loose"
	case PhaseVarargs:
		return "varargs"
	}
	return "none"
}

// Resolved is the outcome of method or constructor resolution. Type is the
// method type as seen from the call site with inferred type arguments
// applied. A failed resolution carries the unknown symbol and type.
type Resolved struct {
	Sym       symbols.SymbolID
	Type      symbols.TypeID
	Subst     symbols.SubstID
	Phase     Phase
	Ambiguous []symbols.SymbolID
}

// Result returns the result type of the resolved method.
func (r *Resolver) Result(res Resolved) symbols.TypeID {
	ty, ok := r.t.Type(res.Type)
	if !ok || ty.Kind != symbols.TyMethod {
		return r.t.UnknownType()
	}
	return ty.Result
}

func (r *Resolver) unresolved() Resolved {
	return Resolved{Sym: r.unknown(), Type: r.t.UnknownType()}
}

type candidate struct {
	sym     symbols.SymbolID
	mtype   symbols.TypeID
	formals []symbols.TypeID
	subst   symbols.SubstID
	varargs bool
}

// FindMethod resolves a call of name with the given argument types. With a
// valid site the members of that type are searched; otherwise the
// innermost enclosing class declaring a method of that name, then static
// imports. Arguments of unknown type match any parameter.
func (r *Resolver) FindMethod(env *Env, site symbols.TypeID, name string, args, typeArgs []symbols.TypeID, span source.Span) Resolved {
	if site.IsValid() {
		if r.t.IsUnknown(site) {
			return r.unresolved()
		}
		return r.selectMethod(env, site, name, r.methodsOf(site, name), args, typeArgs, span)
	}
	for e := env; e != nil; e = e.Outer {
		switch e.Kind {
		case EnvClass:
			if e.Header {
				continue
			}
			this := r.t.ThisType(e.Class)
			if cands := r.methodsOf(this, name); len(cands) > 0 {
				return r.selectMethod(env, this, name, cands, args, typeArgs, span)
			}
		case EnvUnit:
			var cands []symbols.SymbolID
			for _, m := range r.t.Lookup(e.StarImports, name) {
				if r.t.MustSym(m).Kind == symbols.SymMethod {
					cands = append(cands, m)
				}
			}
			if len(cands) > 0 {
				return r.selectMethod(env, symbols.NoTypeID, name, cands, args, typeArgs, span)
			}
		}
	}
	diag.ReportWarning(r.reporter, diag.ResUnknownMethod, span,
		fmt.Sprintf("cannot find method %s", name)).Emit()
	return r.unresolved()
}

// FindConstructor resolves `new site(args)`. Classes that declare no
// constructor resolve to the unknown symbol without a diagnostic.
func (r *Resolver) FindConstructor(env *Env, site symbols.TypeID, args, typeArgs []symbols.TypeID, span source.Span) Resolved {
	cls := r.t.TypeSym(site)
	if r.t.IsUnknown(site) || r.t.IsUnknownSym(cls) {
		return r.unresolved()
	}
	var cands []symbols.SymbolID
	for _, m := range r.t.Lookup(r.t.Members(cls), symbols.ConstructorName) {
		if r.t.MustSym(m).Kind == symbols.SymMethod {
			cands = append(cands, m)
		}
	}
	if len(cands) == 0 {
		return r.unresolved()
	}
	return r.selectMethod(env, site, symbols.ConstructorName, cands, args, typeArgs, span)
}

// methodsOf collects the methods named name visible on site, most derived
// first. A method overridden by one already collected is skipped.
func (r *Resolver) methodsOf(site symbols.TypeID, name string) []symbols.SymbolID {
	var out []symbols.SymbolID
	seen := make(map[string]struct{})
	for _, cls := range r.siteClasses(site) {
		r.walkHierarchy(cls, false, func(sym symbols.SymbolID) bool {
			for _, m := range r.t.Lookup(r.t.Members(sym), name) {
				ms := r.t.MustSym(m)
				if ms.Kind != symbols.SymMethod || ms.IsConstructor() {
					continue
				}
				if sym != cls && !r.IsInheritedIn(m, cls) {
					continue
				}
				key := r.erasedKey(r.t.SymType(m))
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, m)
			}
			return true
		})
	}
	return out
}

func (r *Resolver) erasedKey(mtype symbols.TypeID) string {
	ty, ok := r.t.Type(mtype)
	if !ok || ty.Kind != symbols.TyMethod {
		return ""
	}
	parts := make([]string, len(ty.Params))
	for i, p := range ty.Params {
		parts[i] = r.t.TypeString(r.t.Erasure(p))
	}
	return strings.Join(parts, ",")
}

func (r *Resolver) selectMethod(env *Env, site symbols.TypeID, name string, cands []symbols.SymbolID, args, typeArgs []symbols.TypeID, span source.Span) Resolved {
	if len(cands) == 0 {
		diag.ReportWarning(r.reporter, diag.ResUnknownMethod, span,
			fmt.Sprintf("cannot find method %s in %s", name, r.t.TypeString(site))).Emit()
		return r.unresolved()
	}
	accessible := cands[:0:0]
	for _, m := range cands {
		if env == nil || r.IsAccessible(env, m) {
			accessible = append(accessible, m)
		}
	}
	if len(accessible) == 0 {
		diag.ReportWarning(r.reporter, diag.ResNotAccessible, span,
			fmt.Sprintf("%s is not accessible", r.t.Signature(cands[0]))).Emit()
		return r.unresolved()
	}

	for _, phase := range []Phase{PhaseStrict, PhaseLoose, PhaseVarargs} {
		var applicable []*candidate
		for _, m := range accessible {
			if c := r.applicable(site, m, args, typeArgs, phase); c != nil {
				applicable = append(applicable, c)
			}
		}
		if len(applicable) == 0 {
			continue
		}
		best, ambiguous := r.mostSpecific(applicable, len(args))
		if ambiguous != nil {
			ids := make([]symbols.SymbolID, len(ambiguous))
			sigs := make([]string, len(ambiguous))
			for i, c := range ambiguous {
				ids[i] = c.sym
				sigs[i] = r.t.Signature(c.sym)
			}
			trace.Point(r.tracer, trace.ScopeUnit, "ambiguous_call", strings.Join(sigs, " | "), 0)
			b := diag.ReportWarning(r.reporter, diag.ResAmbiguousMethod, span,
				fmt.Sprintf("reference to %s is ambiguous", name))
			for _, c := range ambiguous {
				b.WithNote(r.t.MustSym(c.sym).Span, "candidate "+r.t.Signature(c.sym))
			}
			b.Emit()
			res := r.unresolved()
			res.Phase = phase
			res.Ambiguous = ids
			return res
		}
		return Resolved{Sym: best.sym, Type: best.mtype, Subst: best.subst, Phase: phase}
	}

	argTypes := make([]string, len(args))
	for i, a := range args {
		argTypes[i] = r.t.TypeString(a)
	}
	b := diag.ReportWarning(r.reporter, diag.ResUnknownMethod, span,
		fmt.Sprintf("no applicable method %s(%s)", name, strings.Join(argTypes, ", ")))
	for _, m := range accessible {
		b.WithNote(r.t.MustSym(m).Span, "candidate "+r.t.Signature(m))
	}
	b.Emit()
	return r.unresolved()
}

// applicable checks one candidate in one phase and returns it instantiated
// for the call, or nil.
func (r *Resolver) applicable(site symbols.TypeID, m symbols.SymbolID, args, typeArgs []symbols.TypeID, phase Phase) *candidate {
	varargs := phase == PhaseVarargs
	if varargs && !r.t.Flags(m).IsVarargs() {
		return nil
	}
	if !site.IsValid() {
		site = r.t.SymType(r.t.EnclosingClass(r.t.MustSym(m).Owner))
	}
	mtype := r.gen.AsMemberOf(site, m)
	ty, ok := r.t.Type(mtype)
	if !ok || ty.Kind != symbols.TyMethod {
		return nil
	}
	formals := ty.Params
	switch {
	case varargs && len(args) < len(formals)-1:
		return nil
	case !varargs && len(args) != len(formals):
		return nil
	}

	subst := symbols.EmptySubst
	if params := r.t.TypeParams(m); len(params) > 0 {
		if len(typeArgs) == len(params) {
			pairs := make([]symbols.Pair, len(params))
			for i, p := range params {
				pairs[i] = symbols.Pair{Var: r.t.MustSym(p).Type, Type: typeArgs[i]}
			}
			subst = r.t.InternSubst(pairs)
		} else {
			subst = r.gen.Infer(m, formals, args, varargs)
		}
		mtype = r.gen.Apply(mtype, subst)
		formals = r.t.MustType(mtype).Params
	}

	for i, a := range args {
		if !r.argFits(a, r.formalAt(formals, i, varargs), phase) {
			return nil
		}
	}
	return &candidate{sym: m, mtype: mtype, formals: formals, subst: subst, varargs: varargs}
}

// formalAt returns the parameter type matched by argument i; in a variable
// arity call trailing arguments match the element type of the last one.
func (r *Resolver) formalAt(formals []symbols.TypeID, i int, varargs bool) symbols.TypeID {
	if len(formals) == 0 {
		return r.t.UnknownType()
	}
	if varargs && i >= len(formals)-1 {
		last := formals[len(formals)-1]
		if ty := r.t.MustType(last); ty.Kind == symbols.TyArray {
			return ty.Elem
		}
		return last
	}
	if i >= len(formals) {
		return r.t.UnknownType()
	}
	return formals[i]
}

func (r *Resolver) argFits(arg, formal symbols.TypeID, phase Phase) bool {
	if !arg.IsValid() || r.t.IsUnknown(arg) || r.t.IsUnknown(formal) {
		return true
	}
	if r.t.IsSubtype(arg, formal) {
		return true
	}
	if phase == PhaseStrict {
		return false
	}
	ak, fk := r.t.Kind(arg), r.t.Kind(formal)
	switch {
	case ak.IsPrimitive() && !fk.IsPrimitive():
		boxed := r.t.Box(arg)
		return boxed.IsValid() && r.t.IsSubtype(boxed, formal)
	case !ak.IsPrimitive() && fk.IsPrimitive():
		unboxed := r.t.Unbox(arg)
		return unboxed.IsValid() && r.t.IsSubtype(unboxed, formal)
	}
	return false
}

// mostSpecific picks the candidate whose parameters are subtypes of every
// other candidate's. Candidates with identical parameters (an override and
// an abstract declaration) resolve to the first concrete one.
func (r *Resolver) mostSpecific(cands []*candidate, nargs int) (*candidate, []*candidate) {
	if len(cands) == 1 {
		return cands[0], nil
	}
	var best []*candidate
	for _, c := range cands {
		dominates := true
		for _, o := range cands {
			if c != o && !r.moreSpecific(c, o, nargs) {
				dominates = false
				break
			}
		}
		if dominates {
			best = append(best, c)
		}
	}
	if len(best) == 0 {
		return nil, cands
	}
	for _, c := range best {
		if !r.t.Flags(c.sym).IsAbstract() {
			return c, nil
		}
	}
	return best[0], nil
}

func (r *Resolver) moreSpecific(a, b *candidate, nargs int) bool {
	k := len(a.formals)
	if a.varargs {
		k = max(nargs, len(a.formals), len(b.formals))
	}
	for i := 0; i < k; i++ {
		fa, fb := r.formalAt(a.formals, i, a.varargs), r.formalAt(b.formals, i, b.varargs)
		if fa == fb || r.t.IsUnknown(fa) || r.t.IsUnknown(fb) {
			continue
		}
		if !r.t.IsSubtype(fa, fb) {
			return false
		}
	}
	return true
}
