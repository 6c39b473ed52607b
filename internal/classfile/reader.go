package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

// ErrFormat wraps every structural problem found while reading class bytes.
var ErrFormat = errors.New("malformed class file")

const classMagic = 0xCAFEBABE

const (
	cpUtf8               = 1
	cpInteger            = 3
	cpFloat              = 4
	cpLong               = 5
	cpDouble             = 6
	cpClass              = 7
	cpString             = 8
	cpFieldref           = 9
	cpMethodref          = 10
	cpInterfaceMethodref = 11
	cpNameAndType        = 12
	cpMethodHandle       = 15
	cpMethodType         = 16
	cpDynamic            = 17
	cpInvokeDynamic      = 18
	cpModule             = 19
	cpPackage            = 20
)

type cpEntry struct {
	tag uint8
	ref uint16 // Class/String/MethodType name index
	s   string
	i   int64
	f   float64
}

type reader struct {
	b   []byte
	off int
	err error
	cp  []cpEntry
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s (offset %d)", ErrFormat, fmt.Sprintf(format, args...), r.off)
	}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.off+n > len(r.b) {
		r.fail("unexpected end of data")
		return false
	}
	return true
}

func (r *reader) u1() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) u2() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.b[r.off:])
	r.off += 2
	return v
}

func (r *reader) u4() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	v := r.b[r.off : r.off+n]
	r.off += n
	return v
}

// Parse decodes a JVM class file into a Class descriptor. Code attributes
// are skipped: only the declaration surface is kept.
func Parse(data []byte) (*Class, error) {
	r := &reader{b: data}
	if r.u4() != classMagic {
		r.fail("bad magic")
		return nil, r.err
	}
	r.u2() // minor
	r.u2() // major
	r.readConstantPool()

	c := &Class{}
	c.Access = r.u2()
	c.Name = r.className(r.u2())
	if sup := r.u2(); sup != 0 {
		c.Super = r.className(sup)
	}
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		c.Interfaces = append(c.Interfaces, r.className(r.u2()))
	}
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		c.Fields = append(c.Fields, r.readField())
	}
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		c.Methods = append(c.Methods, r.readMethod())
	}
	r.readAttributes(func(name string, ar *reader) {
		switch name {
		case "Signature":
			c.Signature = ar.utf8(ar.u2())
		case "SourceFile":
			c.SourceFile = ar.utf8(ar.u2())
		case "Deprecated":
			c.Deprecated = true
		case "InnerClasses":
			for n := ar.u2(); n > 0 && ar.err == nil; n-- {
				ic := InnerClass{Inner: ar.className(ar.u2())}
				if outer := ar.u2(); outer != 0 {
					ic.Outer = ar.className(outer)
				}
				if simple := ar.u2(); simple != 0 {
					ic.Simple = ar.utf8(simple)
				}
				ic.Access = ar.u2()
				c.InnerClasses = append(c.InnerClasses, ic)
			}
		case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
			c.Annotations = append(c.Annotations, ar.annotations(name == "RuntimeVisibleAnnotations")...)
		}
	})
	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

func (r *reader) readConstantPool() {
	count := int(r.u2())
	r.cp = make([]cpEntry, count)
	for i := 1; i < count && r.err == nil; i++ {
		e := cpEntry{tag: r.u1()}
		switch e.tag {
		case cpUtf8:
			e.s = decodeModifiedUTF8(r.bytes(int(r.u2())))
		case cpInteger:
			e.i = int64(int32(r.u4()))
		case cpFloat:
			e.f = float64(math.Float32frombits(r.u4()))
		case cpLong:
			hi, lo := r.u4(), r.u4()
			e.i = int64(uint64(hi)<<32 | uint64(lo))
		case cpDouble:
			hi, lo := r.u4(), r.u4()
			e.f = math.Float64frombits(uint64(hi)<<32 | uint64(lo))
		case cpClass, cpString, cpMethodType, cpModule, cpPackage:
			e.ref = r.u2()
		case cpFieldref, cpMethodref, cpInterfaceMethodref, cpNameAndType, cpDynamic, cpInvokeDynamic:
			r.u2()
			r.u2()
		case cpMethodHandle:
			r.u1()
			r.u2()
		default:
			r.fail("unknown constant pool tag %d at #%d", e.tag, i)
		}
		r.cp[i] = e
		// long and double take two slots
		if e.tag == cpLong || e.tag == cpDouble {
			i++
		}
	}
}

func (r *reader) entry(idx uint16, tag uint8) *cpEntry {
	if r.err != nil {
		return nil
	}
	if int(idx) <= 0 || int(idx) >= len(r.cp) || r.cp[idx].tag != tag {
		r.fail("constant #%d is not of tag %d", idx, tag)
		return nil
	}
	return &r.cp[idx]
}

func (r *reader) utf8(idx uint16) string {
	if e := r.entry(idx, cpUtf8); e != nil {
		return e.s
	}
	return ""
}

func (r *reader) className(idx uint16) string {
	if e := r.entry(idx, cpClass); e != nil {
		return r.utf8(e.ref)
	}
	return ""
}

// readAttributes hands every attribute body to fn through a bounded sub-reader.
func (r *reader) readAttributes(fn func(name string, ar *reader)) {
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		name := r.utf8(r.u2())
		body := r.bytes(int(r.u4()))
		if r.err != nil {
			return
		}
		ar := &reader{b: body, cp: r.cp}
		fn(name, ar)
		if ar.err != nil && r.err == nil {
			r.err = fmt.Errorf("attribute %s: %w", name, ar.err)
		}
	}
}

func (r *reader) readField() Field {
	f := Field{Access: r.u2(), Name: r.utf8(r.u2()), Descriptor: r.utf8(r.u2())}
	r.readAttributes(func(name string, ar *reader) {
		switch name {
		case "Signature":
			f.Signature = ar.utf8(ar.u2())
		case "Deprecated":
			f.Deprecated = true
		case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
			f.Annotations = append(f.Annotations, ar.annotations(name == "RuntimeVisibleAnnotations")...)
		}
	})
	return f
}

func (r *reader) readMethod() Method {
	m := Method{Access: r.u2(), Name: r.utf8(r.u2()), Descriptor: r.utf8(r.u2())}
	r.readAttributes(func(name string, ar *reader) {
		switch name {
		case "Signature":
			m.Signature = ar.utf8(ar.u2())
		case "Deprecated":
			m.Deprecated = true
		case "Exceptions":
			for n := ar.u2(); n > 0 && ar.err == nil; n-- {
				m.Exceptions = append(m.Exceptions, ar.className(ar.u2()))
			}
		case "MethodParameters":
			for n := ar.u1(); n > 0 && ar.err == nil; n-- {
				pname := ""
				if idx := ar.u2(); idx != 0 {
					pname = ar.utf8(idx)
				}
				ar.u2() // access flags
				m.ParamNames = append(m.ParamNames, pname)
			}
		case "AnnotationDefault":
			v := ar.elementValue(0)
			m.Default = &v
		case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
			m.Annotations = append(m.Annotations, ar.annotations(name == "RuntimeVisibleAnnotations")...)
		}
	})
	return m
}

func (r *reader) annotations(visible bool) []Annotation {
	var out []Annotation
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		out = append(out, r.annotation(visible, 0))
	}
	return out
}

// maxElementDepth bounds nested annotation/array values in hostile input.
const maxElementDepth = 32

func (r *reader) annotation(visible bool, depth int) Annotation {
	a := Annotation{Type: r.utf8(r.u2()), Visible: visible}
	for n := r.u2(); n > 0 && r.err == nil; n-- {
		name := r.utf8(r.u2())
		a.Elements = append(a.Elements, ElementPair{Name: name, Value: r.elementValue(depth + 1)})
	}
	return a
}

func (r *reader) elementValue(depth int) ElementValue {
	if depth > maxElementDepth {
		r.fail("element values nested too deeply")
		return ElementValue{}
	}
	v := ElementValue{Tag: r.u1()}
	switch v.Tag {
	case 'B', 'C', 'I', 'S', 'Z':
		if e := r.entry(r.u2(), cpInteger); e != nil {
			v.Int = e.i
		}
	case 'J':
		if e := r.entry(r.u2(), cpLong); e != nil {
			v.Int = e.i
		}
	case 'F':
		if e := r.entry(r.u2(), cpFloat); e != nil {
			v.Float = e.f
		}
	case 'D':
		if e := r.entry(r.u2(), cpDouble); e != nil {
			v.Float = e.f
		}
	case 's':
		v.String = r.utf8(r.u2())
	case 'e':
		v.EnumType = r.utf8(r.u2())
		v.EnumConst = r.utf8(r.u2())
	case 'c':
		v.Class = r.utf8(r.u2())
	case '@':
		a := r.annotation(true, depth+1)
		v.Annotation = &a
	case '[':
		for n := r.u2(); n > 0 && r.err == nil; n-- {
			v.Array = append(v.Array, r.elementValue(depth+1))
		}
	default:
		r.fail("unknown element value tag %q", v.Tag)
	}
	return v
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8 (NUL as C0 80,
// supplementary characters as surrogate pairs). Invalid bytes become U+FFFD.
func decodeModifiedUTF8(b []byte) string {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, 0xFFFD)
			i++
		}
	}
	return string(utf16.Decode(units))
}
