package fuzztests

import (
	"context"
	"errors"
	"testing"

	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/loader"
	"jsema/internal/parser"
	"jsema/internal/resolve"
	"jsema/internal/sema"
	"jsema/internal/source"
	"jsema/internal/symbols"
)

// FuzzAnalyze runs every pass over arbitrary input. Syntax errors and
// unresolved names are fine; the only acceptable fatal error is a cyclic
// hierarchy.
func FuzzAnalyze(f *testing.F) {
	addCorpusSeeds(f)
	boot, err := classfile.Boot()
	if err != nil {
		f.Fatalf("Boot: %v", err)
	}
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("Fuzz.java", clampInput(input)))
		res, err := parser.ParseFile(context.Background(), file, parser.Options{Reporter: diag.NopReporter{}, MaxErrors: 64})
		if err != nil {
			t.Fatalf("ParseFile: %v", err)
		}

		tab := symbols.NewTable()
		a := sema.New(loader.New(tab, loader.Options{Index: boot}), sema.Options{Reporter: diag.NopReporter{}})
		u, err := a.Analyze(file, res.Tree)
		var cyc *resolve.CyclicHierarchyError
		if err != nil && !errors.As(err, &cyc) {
			t.Fatalf("Analyze: %v", err)
		}
		if err == nil && u.State != sema.TypesResolved {
			t.Fatalf("state = %s without error", u.State)
		}
	})
}
