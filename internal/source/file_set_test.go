package source

import "testing"

func TestFileSetPositions(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("A.java", []byte("class A {\n  int x;\n}\n"))
	f := fs.Get(id)
	if f == nil {
		t.Fatalf("file not registered")
	}
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{6, LineCol{Line: 1, Col: 7}},
		{12, LineCol{Line: 2, Col: 3}},
		{19, LineCol{Line: 3, Col: 1}},
	}
	for _, tt := range tests {
		if got := f.Position(tt.off); got != tt.want {
			t.Fatalf("Position(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
		back, ok := f.Offset(tt.want)
		if !ok || back != tt.off {
			t.Fatalf("Offset(%+v) = %d,%v, want %d", tt.want, back, ok, tt.off)
		}
	}
	if got := f.GetLine(2); got != "  int x;" {
		t.Fatalf("GetLine(2) = %q", got)
	}
}

func TestNormalizeStripsBOMAndCRLF(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\r\n")...)
	out, flags := Normalize(in)
	if string(out) != "a\nb\n" {
		t.Fatalf("unexpected content %q", out)
	}
	if flags&FileHadBOM == 0 || flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected BOM and CRLF flags, got %b", flags)
	}
}

func TestNormalizeComposesNFC(t *testing.T) {
	// "é" as e + combining acute accent
	out, flags := Normalize([]byte("cafe\u0301"))
	if string(out) != "caf\u00e9" {
		t.Fatalf("expected NFC form, got %q", out)
	}
	if flags&FileNormalizedNFC == 0 {
		t.Fatalf("expected NFC flag")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("Cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Fatalf("cover across files must be a no-op, got %v", got)
	}
}
