package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
	maxFuzzInput = 1 << 16
)

var languageSeeds = []string{
	"class A {}",
	"package p; import java.util.*; class A<T extends Comparable<T>> { List<T> xs = new ArrayList<>(); }",
	"class A { void m() { var s = \"x\"; int n = s.length(); Runnable r = () -> {}; } }",
	"class A extends B {} class B extends A {}",
	"enum Color { RED, GREEN; Color next() { return values()[(ordinal() + 1) % 2]; } }",
	"record Point(int x, int y) { Point { if (x < 0) throw new IllegalArgumentException(); } }",
	"@interface Tag { String value() default \"\"; int n() default 1 + 2; }",
	"class A { Object o = new Object() { int w() { return 1; } }; }",
	"class A { void m(java.util.function.Function<String, Integer> f) { m(String::length); } }",
	"class A { int m(Object o) { return switch (o) { default -> o instanceof String s ? s.length() : 0; }; } }",
	"class A { void m() { try (java.io.Closeable c = null) {} catch (java.io.IOException | RuntimeException e) {} } }",
	"class A { class Inner { A outer() { return A.this; } } }",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("testdata", "seeds")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.java файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".java" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
