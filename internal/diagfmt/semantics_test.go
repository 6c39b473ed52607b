package diagfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"jsema/internal/classfile"
	"jsema/internal/loader"
	"jsema/internal/parser"
	"jsema/internal/sema"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

func TestSemanticsOutput(t *testing.T) {
	boot, err := classfile.Boot()
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	tab := symbols.NewTable()
	a := sema.New(loader.New(tab, loader.Options{Index: boot}), sema.Options{})
	fs := source.NewFileSet()
	res, err := parser.ParseSource(context.Background(), fs, "Counter.java", []byte(`class Counter {
  int n;
  void inc() { n++; }
}
`), parser.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	u, err := a.Analyze(fs.Get(res.Tree.File), res.Tree)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	out, err := BuildSemanticsOutput(&SemanticsInput{Table: tab, Result: a.Result(u)})
	if err != nil {
		t.Fatalf("BuildSemanticsOutput: %v", err)
	}
	if out.State != "types-resolved" || out.File != "Counter.java" {
		t.Fatalf("header = %q %q", out.File, out.State)
	}
	var field *SymbolJSON
	for i := range out.Symbols {
		if out.Symbols[i].Name == "n" {
			field = &out.Symbols[i]
		}
	}
	if field == nil {
		t.Fatalf("no symbol n in %+v", out.Symbols)
	}
	if field.Type != "int" || field.Owner != "Counter" || field.Line != 2 || field.Usages != 1 {
		t.Fatalf("n = %+v", *field)
	}
	found := false
	for _, ref := range out.References {
		if ref.Name == "n" && ref.Line == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("no reference to n on line 3: %+v", out.References)
	}

	var buf bytes.Buffer
	if err := SemanticsJSON(&buf, []*SemanticsInput{{Table: tab, Result: a.Result(u)}}); err != nil {
		t.Fatalf("SemanticsJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"signature": "inc()"`) {
		t.Fatalf("json = %s", buf.String())
	}
}
