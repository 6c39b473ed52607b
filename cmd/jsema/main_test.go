package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	rootCmd.SetArgs(nil)
	return out.String(), errOut.String(), err
}

func TestCheckProjectFromManifest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "jsema.toml"), `
[project]
name = "demo"
sources = ["src"]
`)
	writeFile(t, filepath.Join(root, "src", "app", "Main.java"), `package app;
class Main {
  String greet(String who) { return "hi " + who; }
}
`)
	t.Chdir(root)

	out, errOut, err := execute(t, "check", "--color=off", "--format=short")
	if err != nil {
		t.Fatalf("check failed: %v\n%s%s", err, out, errOut)
	}
	if !strings.Contains(errOut, "ok: 1 units, 0 errors") {
		t.Fatalf("summary = %q", errOut)
	}
}

func TestCheckReportsCycles(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "Cycle.java")
	writeFile(t, file, "class A extends B {}\nclass B extends A {}\n")
	t.Chdir(root)

	out, errOut, err := execute(t, "check", "--color=off", "--format=short", file)
	if !errors.Is(err, errFindings) {
		t.Fatalf("err = %v, want findings", err)
	}
	if !strings.Contains(out, "RES3006") {
		t.Fatalf("cycle diagnostic missing:\n%s", out)
	}
	if !strings.Contains(errOut, "1 aborted") {
		t.Fatalf("summary = %q", errOut)
	}
}

func TestClassinfo(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, err := execute(t, "classinfo", "--color=off", "java.lang.String")
	if err != nil {
		t.Fatalf("classinfo: %v", err)
	}
	if !strings.Contains(out, "class java.lang.String") || !strings.Contains(out, "length()") {
		t.Fatalf("output = %s", out)
	}

	_, _, err = execute(t, "classinfo", "--color=off", "no.such.Type")
	if err == nil || !strings.Contains(err.Error(), "no.such.Type") {
		t.Fatalf("err = %v", err)
	}
}

func TestSymbolsJSON(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "P.java")
	writeFile(t, file, "class P { int x; int get() { return x; } }\n")
	t.Chdir(root)

	out, _, err := execute(t, "symbols", "--color=off", "--format=json", file)
	if err != nil {
		t.Fatalf("symbols: %v", err)
	}
	if !strings.Contains(out, `"name": "x"`) || !strings.Contains(out, `"usages": 1`) {
		t.Fatalf("output = %s", out)
	}
}
