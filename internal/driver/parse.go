package driver

import (
	"context"
	"runtime"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"jsema/internal/ast"
	"jsema/internal/diag"
	"jsema/internal/parser"
	"jsema/internal/source"
)

// ParseResult is one parsed compilation unit.
type ParseResult struct {
	Path   string
	FileID source.FileID
	Tree   *ast.Tree
	Bag    *diag.Bag
}

// ParseFiles parses the given files of fs in parallel. Results keep the
// order of ids; a syntax error never fails the run, it only lands in the
// unit's bag.
func ParseFiles(ctx context.Context, fs *source.FileSet, ids []source.FileID, maxDiagnostics, jobs int) ([]ParseResult, error) {
	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, err
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]ParseResult, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(ids)))
	for i, id := range ids {
		g.Go(func() error {
			// индексы уникальны для каждой горутины, мьютекс не нужен
			file := fs.Get(id)
			bag := diag.NewBag(maxDiagnostics)
			res, err := parser.ParseFile(gctx, file, parser.Options{
				MaxErrors: maxErrors,
				Reporter:  &diag.BagReporter{Bag: bag},
			})
			if err != nil {
				return err
			}
			results[i] = ParseResult{Path: file.Path, FileID: id, Tree: res.Tree, Bag: bag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
