package classfile

import (
	"errors"
	"testing"
)

func TestParseFieldType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"I", "int"},
		{"[[J", "long[][]"},
		{"Ljava/lang/String;", "java.lang.String"},
		{"TT;", "T"},
		{"Ljava/util/Map<TK;+Ljava/lang/Number;>;", "java.util.Map<K, ? extends java.lang.Number>"},
		{"Ljava/util/List<*>;", "java.util.List<?>"},
		{"Ljava/util/Comparator<-TT;>;", "java.util.Comparator<? super T>"},
		{"La/Outer<TT;>.Inner<Ljava/lang/String;>;", "a.Outer<T>.Inner<java.lang.String>"},
	}
	for _, tc := range cases {
		got, err := ParseFieldType(tc.in)
		if err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("%s: got %q want %q", tc.in, got.String(), tc.want)
		}
	}
}

func TestInnerClassBinaryName(t *testing.T) {
	sig, err := ParseFieldType("Ljava/util/Map<TK;TV;>.Entry<TK;TV;>;")
	if err != nil {
		t.Fatal(err)
	}
	if sig.BinaryName() != "java/util/Map$Entry" || !sig.HasArgs() {
		t.Fatalf("got %q", sig.BinaryName())
	}
}

func TestParseMethodType(t *testing.T) {
	m, err := ParseMethodType("<T::Ljava/lang/Comparable<-TT;>;>(Ljava/util/List<TT;>;[TT;I)TT;^Ljava/io/IOException;^TX;")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.TypeParams) != 1 || m.TypeParams[0].ClassBound != nil || len(m.TypeParams[0].InterfaceBounds) != 1 {
		t.Fatalf("type params: %+v", m.TypeParams)
	}
	if len(m.Params) != 3 || m.Params[1].Kind != SigArray || m.Params[2].Base != 'I' {
		t.Fatalf("params: %+v", m.Params)
	}
	if m.Result.Kind != SigTypeVar || len(m.Throws) != 2 {
		t.Fatalf("result/throws: %+v", m)
	}
	v, err := ParseMethodType("()V")
	if err != nil || v.Result.Kind != SigVoid {
		t.Fatalf("void method: %+v %v", v, err)
	}
}

func TestParseClassSignature(t *testing.T) {
	c, err := ParseClassSignature("<E:Ljava/lang/Enum<TE;>;>Ljava/lang/Object;Ljava/lang/Comparable<TE;>;Ljava/io/Serializable;")
	if err != nil {
		t.Fatal(err)
	}
	if len(c.TypeParams) != 1 || c.TypeParams[0].Name != "E" || c.TypeParams[0].ClassBound.String() != "java.lang.Enum<E>" {
		t.Fatalf("type params: %+v", c.TypeParams)
	}
	if c.Super.BinaryName() != "java/lang/Object" || len(c.Interfaces) != 2 {
		t.Fatalf("supertypes: %+v", c)
	}
}

func TestBadSignatures(t *testing.T) {
	for _, in := range []string{"", "Q", "Ljava/lang/String", "[", "Ljava/util/List<>;", "TT", "II"} {
		if _, err := ParseFieldType(in); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("%q: expected ErrBadSignature, got %v", in, err)
		}
	}
	for _, in := range []string{"(", "(I", "()", "(V)V", "<T>()V"} {
		if _, err := ParseMethodType(in); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("%q: expected ErrBadSignature, got %v", in, err)
		}
	}
}
