package classfile

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadSignature is returned for descriptors and generic signatures that do
// not follow the class-file grammar.
var ErrBadSignature = errors.New("malformed signature")

type SigKind uint8

const (
	SigBase SigKind = iota + 1
	SigVoid
	SigClass
	SigTypeVar
	SigArray
)

// TypeSig is a parsed field descriptor or generic type signature.
type TypeSig struct {
	Kind  SigKind
	Base  byte        // B C D F I J S Z for SigBase
	Parts []ClassPart // SigClass: first part carries the package path
	Var   string      // SigTypeVar
	Elem  *TypeSig    // SigArray
}

// ClassPart is one segment of Outer<A>.Inner<B>.
type ClassPart struct {
	Name string
	Args []TypeArg
}

// TypeArg is a type argument; Wildcard is 0, '*', '+' (extends) or '-' (super).
type TypeArg struct {
	Wildcard byte
	Type     *TypeSig
}

type TypeParamSig struct {
	Name            string
	ClassBound      *TypeSig
	InterfaceBounds []TypeSig
}

type ClassSig struct {
	TypeParams []TypeParamSig
	Super      TypeSig
	Interfaces []TypeSig
}

type MethodSig struct {
	TypeParams []TypeParamSig
	Params     []TypeSig
	Result     TypeSig
	Throws     []TypeSig
}

// BinaryName returns java/util/Map$Entry for Ljava/util/Map<TK;TV;>.Entry;.
func (t *TypeSig) BinaryName() string {
	if t.Kind != SigClass {
		return ""
	}
	names := make([]string, len(t.Parts))
	for i, p := range t.Parts {
		names[i] = p.Name
	}
	return strings.Join(names, "$")
}

// HasArgs reports whether any part is parameterized.
func (t *TypeSig) HasArgs() bool {
	for _, p := range t.Parts {
		if len(p.Args) > 0 {
			return true
		}
	}
	return false
}

func (t *TypeSig) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

var baseNames = map[byte]string{
	'B': "byte", 'C': "char", 'D': "double", 'F': "float",
	'I': "int", 'J': "long", 'S': "short", 'Z': "boolean",
}

// BaseName maps a base type descriptor character to its keyword.
func BaseName(b byte) string { return baseNames[b] }

func (t *TypeSig) write(sb *strings.Builder) {
	switch t.Kind {
	case SigBase:
		sb.WriteString(baseNames[t.Base])
	case SigVoid:
		sb.WriteString("void")
	case SigTypeVar:
		sb.WriteString(t.Var)
	case SigArray:
		t.Elem.write(sb)
		sb.WriteString("[]")
	case SigClass:
		for i, p := range t.Parts {
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(InternalToDotted(p.Name))
			if len(p.Args) == 0 {
				continue
			}
			sb.WriteByte('<')
			for j, a := range p.Args {
				if j > 0 {
					sb.WriteString(", ")
				}
				switch a.Wildcard {
				case '*':
					sb.WriteByte('?')
					continue
				case '+':
					sb.WriteString("? extends ")
				case '-':
					sb.WriteString("? super ")
				}
				a.Type.write(sb)
			}
			sb.WriteByte('>')
		}
	}
}

type sigParser struct {
	s   string
	pos int
}

func (p *sigParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %q at %d: %s", ErrBadSignature, p.s, p.pos, fmt.Sprintf(format, args...))
}

func (p *sigParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) expect(b byte) error {
	if p.peek() != b {
		return p.errorf("expected %q", b)
	}
	p.pos++
	return nil
}

func (p *sigParser) ident() (string, error) {
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '.', ';', '[', '/', '<', '>', ':':
			if p.pos == start {
				return "", p.errorf("empty identifier")
			}
			return p.s[start:p.pos], nil
		}
		p.pos++
	}
	return "", p.errorf("unterminated identifier")
}

func (p *sigParser) typeSig(allowVoid bool) (TypeSig, error) {
	c := p.peek()
	switch c {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		p.pos++
		return TypeSig{Kind: SigBase, Base: c}, nil
	case 'V':
		if !allowVoid {
			return TypeSig{}, p.errorf("void not allowed here")
		}
		p.pos++
		return TypeSig{Kind: SigVoid}, nil
	case '[':
		p.pos++
		elem, err := p.typeSig(false)
		if err != nil {
			return TypeSig{}, err
		}
		return TypeSig{Kind: SigArray, Elem: &elem}, nil
	case 'T':
		p.pos++
		name, err := p.ident()
		if err != nil {
			return TypeSig{}, err
		}
		return TypeSig{Kind: SigTypeVar, Var: name}, p.expect(';')
	case 'L':
		return p.classSig()
	}
	return TypeSig{}, p.errorf("unexpected %q", c)
}

func (p *sigParser) classSig() (TypeSig, error) {
	if err := p.expect('L'); err != nil {
		return TypeSig{}, err
	}
	t := TypeSig{Kind: SigClass}
	var pkg strings.Builder
	part := ClassPart{}
	for {
		name, err := p.ident()
		if err != nil {
			return TypeSig{}, err
		}
		if p.peek() == '/' {
			pkg.WriteString(name)
			pkg.WriteByte('/')
			p.pos++
			continue
		}
		part.Name = name
		if len(t.Parts) == 0 {
			part.Name = pkg.String() + name
		}
		if p.peek() == '<' {
			if part.Args, err = p.typeArgs(); err != nil {
				return TypeSig{}, err
			}
		}
		t.Parts = append(t.Parts, part)
		part = ClassPart{}
		switch p.peek() {
		case '.':
			p.pos++
		case ';':
			p.pos++
			return t, nil
		default:
			return TypeSig{}, p.errorf("expected '.' or ';'")
		}
	}
}

func (p *sigParser) typeArgs() ([]TypeArg, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var out []TypeArg
	for p.peek() != '>' {
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated type arguments")
		}
		arg := TypeArg{}
		switch p.peek() {
		case '*':
			p.pos++
			arg.Wildcard = '*'
			out = append(out, arg)
			continue
		case '+', '-':
			arg.Wildcard = p.peek()
			p.pos++
		}
		t, err := p.typeSig(false)
		if err != nil {
			return nil, err
		}
		arg.Type = &t
		out = append(out, arg)
	}
	p.pos++
	if len(out) == 0 {
		return nil, p.errorf("empty type arguments")
	}
	return out, nil
}

func (p *sigParser) typeParams() ([]TypeParamSig, error) {
	if p.peek() != '<' {
		return nil, nil
	}
	p.pos++
	var out []TypeParamSig
	for p.peek() != '>' {
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		tp := TypeParamSig{Name: name}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		// class bound may be empty: <T::Ljava/lang/Comparable;>
		if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
			b, err := p.typeSig(false)
			if err != nil {
				return nil, err
			}
			tp.ClassBound = &b
		}
		for p.peek() == ':' {
			p.pos++
			b, err := p.typeSig(false)
			if err != nil {
				return nil, err
			}
			tp.InterfaceBounds = append(tp.InterfaceBounds, b)
		}
		out = append(out, tp)
		if p.pos >= len(p.s) {
			return nil, p.errorf("unterminated type parameters")
		}
	}
	p.pos++
	return out, nil
}

func (p *sigParser) done() error {
	if p.pos != len(p.s) {
		return p.errorf("trailing characters")
	}
	return nil
}

// ParseFieldType parses a field descriptor or field generic signature.
func ParseFieldType(s string) (TypeSig, error) {
	p := &sigParser{s: s}
	t, err := p.typeSig(false)
	if err != nil {
		return TypeSig{}, err
	}
	return t, p.done()
}

// ParseMethodType parses a method descriptor or method generic signature.
func ParseMethodType(s string) (MethodSig, error) {
	p := &sigParser{s: s}
	var m MethodSig
	var err error
	if m.TypeParams, err = p.typeParams(); err != nil {
		return MethodSig{}, err
	}
	if err := p.expect('('); err != nil {
		return MethodSig{}, err
	}
	for p.peek() != ')' {
		if p.pos >= len(p.s) {
			return MethodSig{}, p.errorf("unterminated parameters")
		}
		t, err := p.typeSig(false)
		if err != nil {
			return MethodSig{}, err
		}
		m.Params = append(m.Params, t)
	}
	p.pos++
	if m.Result, err = p.typeSig(true); err != nil {
		return MethodSig{}, err
	}
	for p.peek() == '^' {
		p.pos++
		t, err := p.typeSig(false)
		if err != nil {
			return MethodSig{}, err
		}
		m.Throws = append(m.Throws, t)
	}
	return m, p.done()
}

// ParseClassSignature parses the Signature attribute of a class.
func ParseClassSignature(s string) (ClassSig, error) {
	p := &sigParser{s: s}
	var c ClassSig
	var err error
	if c.TypeParams, err = p.typeParams(); err != nil {
		return ClassSig{}, err
	}
	if c.Super, err = p.classSig(); err != nil {
		return ClassSig{}, err
	}
	for p.pos < len(p.s) {
		t, err := p.classSig()
		if err != nil {
			return ClassSig{}, err
		}
		c.Interfaces = append(c.Interfaces, t)
	}
	return c, nil
}
