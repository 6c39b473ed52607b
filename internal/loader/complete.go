package loader

import (
	"errors"
	"fmt"
	"strconv"

	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/source"
	"jsema/internal/symbols"
	"jsema/internal/trace"
)

const objectName = "java/lang/Object"

// complete fills a class symbol from its descriptor. Failures leave a
// class that extends Object and has no members.
func (l *Loader) complete(sym symbols.SymbolID, name string) {
	span := trace.Begin(l.tracer, trace.ScopeClass, "complete", 0).WithExtra("class", name)
	defer span.End("")

	cls, err := l.find(name, span.ID())
	s := l.table.MustSym(sym)
	if err != nil {
		code := diag.LoadClassFormat
		if errors.Is(err, classfile.ErrNotFound) {
			code = diag.LoadClassNotFound
		}
		diag.ReportWarning(l.reporter, code, source.Span{},
			fmt.Sprintf("cannot load class %s: %v", classfile.InternalToDotted(name), err)).Emit()
		if name != objectName {
			s.Class.Super = l.classType(objectName)
		}
		return
	}

	access := cls.Access
	for _, ic := range cls.InnerClasses {
		if ic.Inner == cls.Name {
			access = ic.Access
			break
		}
	}
	s.Flags |= flagsFromAccess(access, memberClass)
	if cls.Super == "java/lang/Record" {
		s.Flags |= symbols.FlagRecord
	}
	if cls.Deprecated || hasDeprecated(cls.Annotations) {
		s.Flags |= symbols.FlagDeprecated
	}
	for _, a := range cls.Annotations {
		l.table.AddMetadata(sym, l.annotation(a))
	}

	env := l.classEnv(sym)
	l.classHeader(sym, cls, env)

	members := s.Class.Members
	for i := range cls.Fields {
		if f := l.field(sym, &cls.Fields[i], env); f.IsValid() {
			l.table.Enter(members, f)
		}
	}
	for i := range cls.Methods {
		if m := l.method(sym, cls, &cls.Methods[i], env, span.ID()); m.IsValid() {
			l.table.Enter(members, m)
		}
	}
	for _, ic := range cls.InnerClasses {
		if ic.Outer != cls.Name || ic.Simple == "" || ic.Access&classfile.AccSynthetic != 0 {
			continue
		}
		if inner := l.ClassSymbol(ic.Inner); !l.table.IsUnknownSym(inner) {
			l.table.Enter(members, inner)
		}
	}
}

// find loads the descriptor, retrying failures other than ErrNotFound.
func (l *Loader) find(name string, parent uint64) (*classfile.Class, error) {
	var lastErr error
	for attempt := 0; attempt <= l.retries; attempt++ {
		cls, err := l.index.Find(name)
		if err == nil {
			if attempt > 0 {
				diag.ReportInfo(l.reporter, diag.LoadRetry, source.Span{},
					fmt.Sprintf("class %s loaded after %d attempts", classfile.InternalToDotted(name), attempt+1)).Emit()
			}
			return cls, nil
		}
		lastErr = err
		if errors.Is(err, classfile.ErrNotFound) {
			break
		}
		trace.Point(l.tracer, trace.ScopeClass, "load_retry", name+": "+err.Error(), parent)
	}
	return nil, lastErr
}

// classHeader converts type parameters, superclass and interfaces, from the
// generic signature when it parses and from the raw names otherwise.
func (l *Loader) classHeader(sym symbols.SymbolID, cls *classfile.Class, env *typeEnv) {
	s := l.table.MustSym(sym)
	isInterface := cls.Access&classfile.AccInterface != 0

	if cls.Signature != "" {
		sig, err := classfile.ParseClassSignature(cls.Signature)
		if err == nil {
			s.Class.TypeParams = l.newTypeVars(sym, s.Class.TypeParamScope, sig.TypeParams, env)
			l.bindBounds(s.Class.TypeParams, sig.TypeParams, env)
			if !isInterface && cls.Super != "" {
				s.Class.Super = l.typeOf(&sig.Super, env)
			}
			for i := range sig.Interfaces {
				s.Class.Interfaces = append(s.Class.Interfaces, l.typeOf(&sig.Interfaces[i], env))
			}
			return
		}
		l.badSignature(cls.Name, cls.Signature, err)
	}
	if !isInterface && cls.Super != "" {
		s.Class.Super = l.classType(cls.Super)
	}
	for _, i := range cls.Interfaces {
		s.Class.Interfaces = append(s.Class.Interfaces, l.classType(i))
	}
}

func (l *Loader) field(owner symbols.SymbolID, f *classfile.Field, env *typeEnv) symbols.SymbolID {
	if f.Access&classfile.AccSynthetic != 0 {
		return symbols.NoSymbolID
	}
	typ := l.builtin().Unknown
	if f.Signature != "" {
		if sig, err := classfile.ParseFieldType(f.Signature); err == nil {
			typ = l.typeOf(&sig, env)
		} else {
			l.badSignature(f.Name, f.Signature, err)
		}
	}
	if typ == l.builtin().Unknown {
		sig, err := classfile.ParseFieldType(f.Descriptor)
		if err != nil {
			l.badSignature(f.Name, f.Descriptor, err)
			return symbols.NoSymbolID
		}
		typ = l.typeOf(&sig, env)
	}
	flags := flagsFromAccess(f.Access, memberField)
	if f.Deprecated || hasDeprecated(f.Annotations) {
		flags |= symbols.FlagDeprecated
	}
	id := l.table.NewVar(symbols.MemberSpec{Name: f.Name, Owner: owner, Flags: flags}, typ)
	for _, a := range f.Annotations {
		l.table.AddMetadata(id, l.annotation(a))
	}
	return id
}

func (l *Loader) method(owner symbols.SymbolID, cls *classfile.Class, m *classfile.Method, env *typeEnv, parent uint64) symbols.SymbolID {
	if m.Access&classfile.AccBridge != 0 && m.Access&classfile.AccSynthetic == 0 {
		where := classfile.InternalToDotted(cls.Name) + "." + m.Name + m.Descriptor
		trace.Point(l.tracer, trace.ScopeClass, "bridge_not_synthetic", where, parent)
		diag.ReportWarning(l.reporter, diag.LoadBridgeNotSynthetic, source.Span{},
			"bridge method "+where+" is not marked synthetic").
			WithNote(source.Span{}, "the method is ignored").
			Emit()
		return symbols.NoSymbolID
	}
	if m.Access&classfile.AccSynthetic != 0 || m.Name == "<clinit>" {
		return symbols.NoSymbolID
	}

	flags := flagsFromAccess(m.Access, memberMethod)
	if cls.Access&classfile.AccInterface != 0 && flags&(symbols.FlagAbstract|symbols.FlagStatic|symbols.FlagPrivate) == 0 {
		flags |= symbols.FlagDefault
	}
	if m.Deprecated || hasDeprecated(m.Annotations) {
		flags |= symbols.FlagDeprecated
	}
	id := l.table.NewMethod(symbols.MemberSpec{Name: m.Name, Owner: owner, Flags: flags})
	ms := l.table.MustSym(id)

	menv := env
	var sig classfile.MethodSig
	fromSignature := false
	if m.Signature != "" {
		parsed, err := classfile.ParseMethodType(m.Signature)
		if err == nil {
			sig, fromSignature = parsed, true
		} else {
			l.badSignature(m.Name, m.Signature, err)
		}
	}
	if !fromSignature {
		parsed, err := classfile.ParseMethodType(m.Descriptor)
		if err != nil {
			l.badSignature(m.Name, m.Descriptor, err)
			return symbols.NoSymbolID
		}
		sig = parsed
		if m.Name == symbols.ConstructorName {
			sig.Params = l.dropOuterInstance(owner, sig.Params)
		}
	}
	if len(sig.TypeParams) > 0 {
		menv = &typeEnv{outer: env}
		ms.Method.TypeParams = l.newTypeVars(id, ms.Method.TypeParamScope, sig.TypeParams, menv)
		l.bindBounds(ms.Method.TypeParams, sig.TypeParams, menv)
	}

	params := make([]symbols.SymbolID, len(sig.Params))
	for i := range sig.Params {
		name := "arg" + strconv.Itoa(i)
		if len(m.ParamNames) == len(sig.Params) && m.ParamNames[i] != "" {
			name = m.ParamNames[i]
		}
		params[i] = l.table.NewVar(symbols.MemberSpec{Name: name, Owner: id, Flags: symbols.FlagParameter},
			l.typeOf(&sig.Params[i], menv))
	}
	result := l.typeOf(&sig.Result, menv)
	var thrown []symbols.TypeID
	if fromSignature && len(sig.Throws) > 0 {
		for i := range sig.Throws {
			thrown = append(thrown, l.typeOf(&sig.Throws[i], menv))
		}
	} else {
		for _, e := range m.Exceptions {
			thrown = append(thrown, l.classType(e))
		}
	}
	l.table.SetMethodSignature(id, params, result, thrown)

	if m.Default != nil {
		ms.Method.DefaultValue = &symbols.AnnotationValue{Name: m.Name, Value: l.elementValue(*m.Default)}
	}
	for _, a := range m.Annotations {
		l.table.AddMetadata(id, l.annotation(a))
	}
	return id
}

// dropOuterInstance removes the implicit enclosing-instance parameter that
// descriptors of inner class constructors carry.
func (l *Loader) dropOuterInstance(owner symbols.SymbolID, params []classfile.TypeSig) []classfile.TypeSig {
	s := l.table.MustSym(owner)
	outer := l.table.Sym(s.Owner)
	if outer == nil || outer.Kind != symbols.SymType || s.Flags.IsStatic() || len(params) == 0 {
		return params
	}
	if params[0].Kind == classfile.SigClass && params[0].BinaryName() == outer.Class.BinaryName {
		return params[1:]
	}
	return params
}

func (l *Loader) badSignature(where, sig string, err error) {
	diag.ReportWarning(l.reporter, diag.LoadBadSignature, source.Span{},
		fmt.Sprintf("%s: cannot parse %q: %v", where, sig, err)).Emit()
}

func hasDeprecated(annos []classfile.Annotation) bool {
	for _, a := range annos {
		if a.Type == "Ljava/lang/Deprecated;" {
			return true
		}
	}
	return false
}
