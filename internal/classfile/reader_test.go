package classfile

import (
	"errors"
	"testing"
)

func buildSampleClass() []byte {
	b := newClassBytes()
	this := b.class("a/Foo")
	super := b.class("java/lang/Object")
	cmp := b.class("java/lang/Comparable")
	ioe := b.class("java/io/IOException")
	inner := b.class("a/Foo$Bar")
	b.long(1 << 40) // occupies two slots
	one := b.integer(1)
	pi := b.double(3.5)

	sigAttr := func(sig string) []byte {
		return b.attr("Signature", b.u2(nil, b.utf8(sig)))
	}

	// @Tag(kind = Kind.A, values = {1}) on the method
	var anno []byte
	anno = b.u2(anno, 1)
	anno = b.u2(anno, b.utf8("La/Tag;"))
	anno = b.u2(anno, 2)
	anno = b.u2(anno, b.utf8("kind"))
	anno = append(anno, 'e')
	anno = b.u2(anno, b.utf8("La/Kind;"))
	anno = b.u2(anno, b.utf8("A"))
	anno = b.u2(anno, b.utf8("values"))
	anno = append(anno, '[')
	anno = b.u2(anno, 1)
	anno = append(anno, 'I')
	anno = b.u2(anno, one)

	var exc []byte
	exc = b.u2(exc, 1)
	exc = b.u2(exc, ioe)

	var params []byte
	params = append(params, 1)
	params = b.u2(params, b.utf8("other"))
	params = b.u2(params, 0)

	var def []byte
	def = append(def, 'D')
	def = b.u2(def, pi)

	var inners []byte
	inners = b.u2(inners, 1)
	inners = b.u2(inners, inner)
	inners = b.u2(inners, this)
	inners = b.u2(inners, b.utf8("Bar"))
	inners = b.u2(inners, AccPublic|AccStatic)

	field := b.member(memberBytes{
		access: AccPrivate | AccFinal,
		name:   "items",
		desc:   "Ljava/util/List;",
		attrs:  [][]byte{sigAttr("Ljava/util/List<TT;>;"), b.attr("Deprecated", nil)},
	})
	method := b.member(memberBytes{
		access: AccPublic,
		name:   "compareTo",
		desc:   "(La/Foo;)I",
		attrs: [][]byte{
			b.attr("Exceptions", exc),
			b.attr("MethodParameters", params),
			b.attr("RuntimeVisibleAnnotations", anno),
		},
	})
	value := b.member(memberBytes{
		access: AccPublic | AccAbstract,
		name:   "weight",
		desc:   "()D",
		attrs:  [][]byte{b.attr("AnnotationDefault", def)},
	})
	classAttrs := [][]byte{
		sigAttr("<T:Ljava/lang/Object;>Ljava/lang/Object;Ljava/lang/Comparable<La/Foo<TT;>;>;"),
		b.attr("InnerClasses", inners),
		b.attr("SourceFile", b.u2(nil, b.utf8("Foo.java"))),
	}
	return b.build(AccPublic|AccSuper, this, super, []uint16{cmp}, [][]byte{field}, [][]byte{method, value}, classAttrs)
}

func TestParseClassFile(t *testing.T) {
	c, err := Parse(buildSampleClass())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Name != "a/Foo" || c.Super != "java/lang/Object" || len(c.Interfaces) != 1 || c.Interfaces[0] != "java/lang/Comparable" {
		t.Fatalf("header: %+v", c)
	}
	if c.SourceFile != "Foo.java" || c.Signature == "" {
		t.Fatalf("class attributes: %+v", c)
	}
	if len(c.InnerClasses) != 1 || c.InnerClasses[0].Simple != "Bar" || c.InnerClasses[0].Outer != "a/Foo" {
		t.Fatalf("inner classes: %+v", c.InnerClasses)
	}
	f := c.Field("items")
	if f == nil || !f.Deprecated || f.Signature != "Ljava/util/List<TT;>;" {
		t.Fatalf("field: %+v", f)
	}
	m := c.Method("compareTo", "(La/Foo;)I")
	if m == nil {
		t.Fatalf("method compareTo missing")
	}
	if len(m.Exceptions) != 1 || m.Exceptions[0] != "java/io/IOException" {
		t.Fatalf("exceptions: %v", m.Exceptions)
	}
	if len(m.ParamNames) != 1 || m.ParamNames[0] != "other" {
		t.Fatalf("param names: %v", m.ParamNames)
	}
	if len(m.Annotations) != 1 {
		t.Fatalf("annotations: %+v", m.Annotations)
	}
	a := m.Annotations[0]
	if a.TypeName() != "a.Tag" || !a.Visible || len(a.Elements) != 2 {
		t.Fatalf("annotation: %+v", a)
	}
	if e := a.Elements[0].Value; e.Tag != 'e' || e.EnumType != "La/Kind;" || e.EnumConst != "A" {
		t.Fatalf("enum element: %+v", e)
	}
	if arr := a.Elements[1].Value; arr.Tag != '[' || len(arr.Array) != 1 || arr.Array[0].Int != 1 {
		t.Fatalf("array element: %+v", arr)
	}
	w := c.Method("weight", "")
	if w == nil || w.Default == nil || w.Default.Tag != 'D' || w.Default.Float != 3.5 {
		t.Fatalf("annotation default: %+v", w)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	good := buildSampleClass()
	cases := map[string][]byte{
		"empty":     nil,
		"bad magic": append([]byte{0xCA, 0xFE, 0xBA, 0xBF}, good[4:]...),
		"truncated": good[:len(good)/2],
	}
	for name, data := range cases {
		if _, err := Parse(data); !errors.Is(err, ErrFormat) {
			t.Fatalf("%s: expected ErrFormat, got %v", name, err)
		}
	}
}

func TestDecodeModifiedUTF8(t *testing.T) {
	// NUL encoded as C0 80, U+1F600 as a surrogate pair
	in := []byte{'a', 0xC0, 0x80, 0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}
	if got := decodeModifiedUTF8(in); got != "a\x00\U0001F600" {
		t.Fatalf("got %q", got)
	}
}
