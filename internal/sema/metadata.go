package sema

import (
	"fmt"
	"strconv"
	"strings"

	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/resolve"
	"jsema/internal/symbols"
)

const retentionType = "java.lang.annotation.Retention"

// runtimeRetained lists library annotations kept at run time whose
// descriptors may lack the Retention meta-annotation.
var runtimeRetained = map[string]bool{
	"java.lang.Deprecated":          true,
	"java.lang.FunctionalInterface": true,
	"java.lang.SafeVarargs":         true,
}

// metadata resolves the annotations of a declaration and attaches them to
// sym. Unresolvable annotation types are reported and skipped.
func (a *Analyzer) metadata(u *Unit, env *resolve.Env, sym symbols.SymbolID, nodes []ast.NodeID) {
	for _, n := range nodes {
		ann, ok := a.annotation(u, env, n)
		if !ok {
			continue
		}
		if ann.Type == "java.lang.Deprecated" {
			a.t.MustSym(sym).Flags |= symbols.FlagDeprecated
		}
		a.t.AddMetadata(sym, ann)
	}
}

func (a *Analyzer) annotation(u *Unit, env *resolve.Env, node ast.NodeID) (symbols.Annotation, bool) {
	d := u.Tree.Annotation(node)
	if d == nil || d.Name == "" {
		return symbols.Annotation{}, false
	}
	sp := u.Tree.Span(node)
	typ := a.r.FindQualifiedType(env, d.Name)
	if a.t.IsUnknownSym(typ) || a.t.MustSym(typ).Kind != symbols.SymType {
		diag.ReportWarning(a.reporter, diag.ResUnknownType, sp,
			fmt.Sprintf("cannot resolve annotation type %s", d.Name)).Emit()
		u.bind(node, a.unknownSym())
		return symbols.Annotation{}, false
	}
	u.bind(node, typ)
	u.addRef(sp, node, typ)
	a.t.AddUsage(typ, symbols.Usage{Span: sp, Node: node})

	fqn := a.t.FullyQualifiedName(typ)
	out := symbols.Annotation{Type: fqn, Visible: a.retainedAtRuntime(typ, fqn)}
	for _, arg := range d.Args {
		val, ok := a.elementValue(u, env, arg.Value)
		if !ok {
			continue
		}
		out.Values = append(out.Values, symbols.AnnotationValue{Name: arg.Name, Value: val})
	}
	return out, true
}

func (a *Analyzer) retainedAtRuntime(typ symbols.SymbolID, fqn string) bool {
	v, ok := a.t.Metadata(typ).Value(retentionType, "value")
	if !ok {
		return runtimeRetained[fqn]
	}
	ec, ok := v.(symbols.EnumConstant)
	return ok && ec.Const == "RUNTIME"
}

// elementValue evaluates an annotation element: a constant expression, an
// enum constant, a class literal, a nested annotation or an array of those.
func (a *Analyzer) elementValue(u *Unit, env *resolve.Env, id ast.NodeID) (any, bool) {
	tree := u.Tree
	switch tree.Kind(id) {
	case ast.KindAnnotation:
		ann, ok := a.annotation(u, env, id)
		if !ok {
			return nil, false
		}
		return &ann, true
	case ast.KindArrayInit:
		list := tree.ArrayInit(id)
		vals := make([]symbols.AnnotationValue, 0, len(list.Elems))
		for _, e := range list.Elems {
			if v, ok := a.elementValue(u, env, e); ok {
				vals = append(vals, symbols.AnnotationValue{Value: v})
			}
		}
		return vals, true
	case ast.KindClassLit:
		typ := a.typeTree(u, env, tree.Ref(id).Target)
		if a.t.IsUnknown(typ) {
			return nil, false
		}
		name := a.t.TypeString(a.t.Erasure(typ))
		return symbols.ClassLiteral{Type: name}, true
	}
	return a.constant(u, env, id, true)
}

// constantRef resolves a name used as an element value: an enum constant
// or a constant field folded through its initializer. record binds the
// name and counts the usage; initializers of other fields are walked by
// Resolve and fold without recording.
func (a *Analyzer) constantRef(u *Unit, env *resolve.Env, id ast.NodeID, record bool) (any, bool) {
	tree := u.Tree
	name, ok := dottedName(tree, id)
	if !ok {
		return nil, false
	}
	var f symbols.SymbolID
	sp := tree.Span(id)
	if fa := tree.FieldAccess(id); fa != nil {
		owner, _ := dottedName(tree, fa.Target)
		cls := a.r.FindQualifiedType(env, owner)
		if a.t.IsUnknownSym(cls) {
			f = a.unknownSym()
		} else {
			f = a.r.FindField(env, a.t.SymType(cls), fa.Name)
		}
		sp = fa.NameSpan
	} else {
		f = a.r.FindIdent(env, name, resolve.KindVar)
	}
	if a.t.IsUnknownSym(f) {
		if record {
			diag.ReportWarning(a.reporter, diag.ResUnknownSymbol, sp,
				fmt.Sprintf("cannot resolve constant %s", name)).Emit()
		}
		return nil, false
	}
	if record {
		u.bind(id, f)
		u.addRef(sp, id, f)
		a.t.AddUsage(f, symbols.Usage{Span: sp, Node: id})
	}
	fs := a.t.MustSym(f)
	if fs.Flags.IsEnum() {
		return symbols.EnumConstant{Type: a.t.FullyQualifiedName(fs.Owner), Const: fs.Name}, true
	}
	if !fs.Flags.IsStatic() || !fs.Flags.IsFinal() || a.folding[f] {
		return nil, false
	}
	d := a.decls[fs.Owner]
	if d == nil || !fs.Decl.Node.IsValid() {
		return nil, false
	}
	v := d.unit.Tree.Var(fs.Decl.Node)
	if v == nil || !v.Init.IsValid() {
		return nil, false
	}
	a.folding[f] = true
	defer delete(a.folding, f)
	return a.constant(d.unit, a.bodyEnv(fs.Owner), v.Init, false)
}

// constant folds literals, parentheses, unary minus and the arithmetic and
// concatenation operators over them.
func (a *Analyzer) constant(u *Unit, env *resolve.Env, id ast.NodeID, record bool) (any, bool) {
	tree := u.Tree
	switch tree.Kind(id) {
	case ast.KindLiteral:
		return literalValue(tree.Literal(id))
	case ast.KindParen:
		return a.constant(u, env, tree.Unary(id).Operand, record)
	case ast.KindIdent, ast.KindFieldAccess:
		return a.constantRef(u, env, id, record)
	case ast.KindUnary:
		un := tree.Unary(id)
		v, ok := a.constant(u, env, un.Operand, record)
		if !ok {
			return nil, false
		}
		switch un.Op {
		case "-":
			switch x := v.(type) {
			case int64:
				return -x, true
			case float64:
				return -x, true
			}
		case "+":
			return v, true
		case "!":
			if b, ok := v.(bool); ok {
				return !b, true
			}
		case "~":
			if x, ok := v.(int64); ok {
				return ^x, true
			}
		}
	case ast.KindBinary:
		op := tree.Op(id)
		l, ok1 := a.constant(u, env, op.Left, record)
		r, ok2 := a.constant(u, env, op.Right, record)
		if ok1 && ok2 {
			return foldBinary(op.Op, l, r)
		}
	}
	return nil, false
}

func foldBinary(op string, l, r any) (any, bool) {
	if op == "+" {
		ls, lok := l.(string)
		rs, rok := r.(string)
		if lok || rok {
			if !lok {
				ls = fmt.Sprint(l)
			}
			if !rok {
				rs = fmt.Sprint(r)
			}
			return ls + rs, true
		}
	}
	li, lint := l.(int64)
	ri, rint := r.(int64)
	if lint && rint {
		switch op {
		case "+":
			return li + ri, true
		case "-":
			return li - ri, true
		case "*":
			return li * ri, true
		case "/":
			if ri != 0 {
				return li / ri, true
			}
		case "%":
			if ri != 0 {
				return li % ri, true
			}
		case "<<":
			return li << uint64(ri&63), true
		case ">>":
			return li >> uint64(ri&63), true
		case "|":
			return li | ri, true
		case "&":
			return li & ri, true
		case "^":
			return li ^ ri, true
		}
		return nil, false
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, false
	}
	switch op {
	case "+":
		return lf + rf, true
	case "-":
		return lf - rf, true
	case "*":
		return lf * rf, true
	case "/":
		return lf / rf, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// literalValue converts literal text to its annotation value form.
func literalValue(lit *ast.LiteralData) (any, bool) {
	if lit == nil {
		return nil, false
	}
	text := strings.ReplaceAll(lit.Text, "_", "")
	switch lit.Kind {
	case ast.LitInt, ast.LitLong:
		text = strings.TrimRight(text, "lL")
		return parseJavaInt(text)
	case ast.LitFloat, ast.LitDouble:
		text = strings.TrimRight(text, "fFdD")
		if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
			if !strings.ContainsAny(text, "pP") {
				text += "p0"
			}
		}
		f, err := strconv.ParseFloat(text, 64)
		return f, err == nil
	case ast.LitBool:
		return text == "true", true
	case ast.LitString:
		s, err := unquoteJava(lit.Text, '"')
		return s, err == nil
	case ast.LitChar:
		s, err := unquoteJava(lit.Text, '\'')
		if err != nil || s == "" {
			return nil, false
		}
		return int64([]rune(s)[0]), true
	}
	return nil, false
}

func parseJavaInt(text string) (any, bool) {
	base := 10
	switch {
	case strings.HasPrefix(text, "0x"), strings.HasPrefix(text, "0X"):
		base, text = 16, text[2:]
	case strings.HasPrefix(text, "0b"), strings.HasPrefix(text, "0B"):
		base, text = 2, text[2:]
	case len(text) > 1 && text[0] == '0':
		base, text = 8, text[1:]
	}
	v, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		return nil, false
	}
	return int64(v), true // #nosec G115 -- two's complement wrap matches Java literals
}

// unquoteJava decodes a Java string or char literal. Octal escapes are
// rewritten to the Go form strconv understands.
func unquoteJava(text string, quote byte) (string, error) {
	if len(text) < 2 || text[0] != quote || text[len(text)-1] != quote {
		return "", strconv.ErrSyntax
	}
	body := text[1 : len(text)-1]
	var sb strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			i++
			continue
		}
		next := body[i+1]
		switch {
		case next >= '0' && next <= '7':
			j := i + 1
			val := 0
			for j < len(body) && j < i+4 && body[j] >= '0' && body[j] <= '7' {
				val = val*8 + int(body[j]-'0')
				j++
			}
			sb.WriteRune(rune(val))
			i = j
		case next == 's':
			sb.WriteByte(' ')
			i += 2
		default:
			r, _, tail, err := strconv.UnquoteChar(body[i:], quote)
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
			i = len(body) - len(tail)
		}
	}
	return sb.String(), nil
}

// dottedName flattens an identifier or field access chain to a.b.c.
func dottedName(tree *ast.Tree, id ast.NodeID) (string, bool) {
	switch tree.Kind(id) {
	case ast.KindIdent:
		return tree.Ident(id).Name, true
	case ast.KindFieldAccess:
		fa := tree.FieldAccess(id)
		head, ok := dottedName(tree, fa.Target)
		if !ok {
			return "", false
		}
		return head + "." + fa.Name, true
	}
	return "", false
}
