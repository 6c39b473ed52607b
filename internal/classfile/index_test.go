package classfile

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jsema/internal/project"
)

func TestMapAndChainIndex(t *testing.T) {
	first := NewMapIndex(&Class{Name: "a/A", Access: AccPublic}, &Class{Name: "a/b/B"})
	second := NewMapIndex(&Class{Name: "a/A", Access: AccPrivate}, &Class{Name: "c/C"})
	chain := ChainIndex{first, second}

	got, err := chain.Find("a/A")
	if err != nil || got.Access != AccPublic {
		t.Fatalf("first index must win: %+v %v", got, err)
	}
	if !chain.Has("c/C") || chain.Has("d/D") {
		t.Fatalf("Has mismatch")
	}
	if _, err := chain.Find("d/D"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !chain.HasPackage("a") || !chain.HasPackage("a/b") || chain.HasPackage("b") {
		t.Fatalf("package lookup mismatch")
	}
	if names := chain.Names(); len(names) != 3 {
		t.Fatalf("names = %v", names)
	}
}

func TestBootStubs(t *testing.T) {
	boot, err := Boot()
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	for _, name := range []string{"java/lang/Object", "java/lang/String", "java/util/ArrayList", "java/util/Map$Entry", "java/util/function/Function"} {
		if !boot.Has(name) {
			t.Fatalf("boot stubs lack %s", name)
		}
	}
	obj, _ := boot.Find("java/lang/Object")
	if obj.Super != "" {
		t.Fatalf("Object must have no superclass, got %q", obj.Super)
	}
	list, _ := boot.Find("java/util/List")
	if list.Access&AccInterface == 0 || list.Super != "java/lang/Object" {
		t.Fatalf("List header: %+v", list)
	}
	// every generic signature in the stubs must parse
	for _, name := range boot.Names() {
		c, _ := boot.Find(name)
		if c.Signature != "" {
			if _, err := ParseClassSignature(c.Signature); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
		}
		for _, m := range c.Methods {
			if m.Signature != "" {
				if _, err := ParseMethodType(m.Signature); err != nil {
					t.Fatalf("%s.%s: %v", name, m.Name, err)
				}
			}
		}
		for _, f := range c.Fields {
			if _, err := ParseFieldType(f.Descriptor); err != nil {
				t.Fatalf("%s.%s: %v", name, f.Name, err)
			}
		}
	}
	deprecated, _ := boot.Find("java/lang/Deprecated")
	if m := deprecated.Method("forRemoval", ""); m == nil || m.Default == nil || m.Default.Tag != 'Z' {
		t.Fatalf("annotation default missing: %+v", m)
	}
}

func TestDecodeStubsRejectsBadFlags(t *testing.T) {
	_, err := DecodeStubs("[[class]]\nname = \"x/Y\"\nflags = [\"publik\"]\n")
	if err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestDirAndJarIndex(t *testing.T) {
	data := buildSampleClass()
	dir := t.TempDir()
	classDir := filepath.Join(dir, "classes", "a")
	if err := os.MkdirAll(classDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(classDir, "Foo.class"), data, 0o600); err != nil {
		t.Fatal(err)
	}
	jarPath := filepath.Join(dir, "lib.jar")
	f, err := os.Create(jarPath)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("a/Foo.class")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	cp, err := OpenClasspath(ClasspathOptions{Entries: []string{filepath.Join(dir, "classes"), jarPath}, Boot: true})
	if err != nil {
		t.Fatalf("OpenClasspath: %v", err)
	}
	defer cp.Close()
	if len(cp.ChainIndex) != 3 {
		t.Fatalf("expected dir, jar and boot, got %d", len(cp.ChainIndex))
	}
	for i, idx := range cp.ChainIndex[:2] {
		c, err := idx.Find("a/Foo")
		if err != nil || c.Name != "a/Foo" {
			t.Fatalf("index %d: %+v %v", i, c, err)
		}
		if _, err := idx.Find("a/Missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("index %d: expected ErrNotFound, got %v", i, err)
		}
		if !idx.(PackageIndex).HasPackage("a") {
			t.Fatalf("index %d: package a missing", i)
		}
	}
	if !cp.Has("java/lang/String") {
		t.Fatalf("boot stubs not chained")
	}
}

func TestCachedIndex(t *testing.T) {
	cache, err := OpenDiskCache("jsema", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	inner := NewMapIndex(&Class{Name: "a/A", Super: "java/lang/Object", Methods: []Method{{Name: "m", Descriptor: "()V"}}})
	salt := project.DigestString("test")

	first := NewCachedIndex(inner, cache, salt)
	if _, err := first.Find("a/A"); err != nil {
		t.Fatal(err)
	}
	if hits, misses := first.Stats(); hits != 0 || misses != 1 {
		t.Fatalf("first run: hits=%d misses=%d", hits, misses)
	}

	second := NewCachedIndex(inner, cache, salt)
	c, err := second.Find("a/A")
	if err != nil {
		t.Fatal(err)
	}
	if hits, _ := second.Stats(); hits != 1 {
		t.Fatalf("second run must hit the cache")
	}
	if c.Method("m", "()V") == nil || c.Super != "java/lang/Object" {
		t.Fatalf("cached class lost data: %+v", c)
	}
	if _, err := second.Find("a/B"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	third := NewCachedIndex(inner, cache, salt)
	if _, err := third.Find("a/A"); err != nil {
		t.Fatal(err)
	}
	if hits, _ := third.Stats(); hits != 0 {
		t.Fatalf("dropped cache must miss")
	}
}
