// Package driver runs the analysis over a set of compilation units:
// sources are loaded and parsed in parallel, then every unit is declared,
// checked and resolved on the calling goroutine against one shared symbol
// table. A unit whose class hierarchy is cyclic is aborted on its own; the
// others complete.
package driver

import (
	"context"
	"fmt"
	"time"

	"jsema/internal/classfile"
	"jsema/internal/diag"
	"jsema/internal/loader"
	"jsema/internal/observ"
	"jsema/internal/sema"
	"jsema/internal/source"
	"jsema/internal/symbols"
	"jsema/internal/trace"
)

// Options configure a run.
type Options struct {
	Index          classfile.Index
	Jobs           int // parse workers; <= 0 means GOMAXPROCS
	MaxDiagnostics int // per unit; <= 0 means unlimited
	Retries        int
	Tracer         trace.Tracer
	Observer       PhaseObserver
	// Timings adds an ObsTimings diagnostic with the phase report to the
	// run bag.
	Timings bool
}

// UnitResult is the outcome for one compilation unit.
type UnitResult struct {
	Path   string
	FileID source.FileID
	Unit   *sema.Unit // nil when the file could not be loaded
	Result *sema.Result
	Bag    *diag.Bag
	// Err is the fatal error that aborted the unit.
	Err error
}

// Run is a finished analysis run. The table and loader stay usable for
// queries after Analyze returns.
type Run struct {
	FileSet  *source.FileSet
	Table    *symbols.Table
	Loader   *loader.Loader
	Analyzer *sema.Analyzer
	Units    []*UnitResult
	// Bag holds diagnostics that point at no unit: class loading, stubs,
	// timings.
	Bag   *diag.Bag
	Timer *observ.Timer
}

// Failed lists the units aborted by a fatal error.
func (r *Run) Failed() []*UnitResult {
	var out []*UnitResult
	for _, u := range r.Units {
		if u.Err != nil {
			out = append(out, u)
		}
	}
	return out
}

// HasErrors reports an error diagnostic in any unit or in the run bag.
func (r *Run) HasErrors() bool {
	if r.Bag.HasErrors() {
		return true
	}
	for _, u := range r.Units {
		if u.Err != nil || u.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Analyze loads paths into a fresh file set and analyses them.
func Analyze(ctx context.Context, paths []string, opts Options) (*Run, error) {
	fs := source.NewFileSet()
	ids := make([]source.FileID, 0, len(paths))
	var loadFailed []*UnitResult
	for _, p := range paths {
		id, err := fs.Load(p)
		if err != nil {
			bag := diag.NewBag(opts.MaxDiagnostics)
			bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()))
			loadFailed = append(loadFailed, &UnitResult{Path: p, Bag: bag, Err: err})
			continue
		}
		ids = append(ids, id)
	}
	run, err := AnalyzeFiles(ctx, fs, ids, opts)
	if err != nil {
		return nil, err
	}
	run.Units = append(run.Units, loadFailed...)
	return run, nil
}

// AnalyzeFiles analyses files already registered in fs.
func AnalyzeFiles(ctx context.Context, fs *source.FileSet, ids []source.FileID, opts Options) (*Run, error) {
	if opts.Tracer == nil {
		opts.Tracer = trace.FromContext(ctx)
	}
	run := &Run{
		FileSet: fs,
		Table:   symbols.NewTable(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Timer:   observ.NewTimer(),
	}
	rootSpan := trace.Begin(opts.Tracer, trace.ScopeRun, "analyze", trace.ParentFrom(ctx)).WithExtra("units", fmt.Sprint(len(ids)))
	defer func() { rootSpan.End("") }()

	router := newRouteReporter(run.Bag)
	reporter := diag.NewDedupReporter(router)
	run.Loader = loader.New(run.Table, loader.Options{
		Index:    opts.Index,
		Reporter: reporter,
		Tracer:   opts.Tracer,
		Retries:  opts.Retries,
	})
	run.Analyzer = sema.New(run.Loader, sema.Options{Reporter: reporter, Tracer: opts.Tracer})

	phase := run.phaseFunc(opts, rootSpan.ID())

	var parsed []ParseResult
	err := phase("parse", func() error {
		var err error
		parsed, err = ParseFiles(ctx, fs, ids, opts.MaxDiagnostics, opts.Jobs)
		return err
	})
	if err != nil {
		return nil, err
	}

	run.Units = make([]*UnitResult, len(parsed))
	for i, p := range parsed {
		run.Units[i] = &UnitResult{Path: p.Path, FileID: p.FileID, Bag: p.Bag}
		router.route(p.FileID, p.Bag)
	}

	_ = phase("declare", func() error {
		for i, p := range parsed {
			run.Units[i].Unit = run.Analyzer.Declare(fs.Get(p.FileID), p.Tree)
		}
		return nil
	})
	_ = phase("hierarchy", func() error {
		for _, u := range run.Units {
			u.Err = run.Analyzer.CheckHierarchy(u.Unit)
		}
		return nil
	})
	err = phase("resolve", func() error {
		for _, u := range run.Units {
			if err := ctx.Err(); err != nil {
				return err
			}
			if u.Err != nil {
				continue
			}
			u.Err = run.Analyzer.Resolve(u.Unit)
			u.Result = run.Analyzer.Result(u.Unit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.Timings {
		rep := run.Timer.Report()
		appendTimingDiagnostic(run.Bag, timingPayload{Units: len(run.Units), TotalMS: rep.TotalMS, Phases: rep.Phases})
	}
	return run, nil
}

// phaseFunc times fn as a named phase: observer events, a timer entry and
// a pass span.
func (r *Run) phaseFunc(opts Options, parent uint64) func(name string, fn func() error) error {
	return func(name string, fn func() error) error {
		if opts.Observer != nil {
			opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
		}
		span := trace.Begin(opts.Tracer, trace.ScopePass, name, parent)
		idx := r.Timer.Begin(name)
		start := time.Now()

		err := fn()

		note := ""
		if err != nil {
			note = err.Error()
		}
		r.Timer.End(idx, note)
		span.End(note)
		if opts.Observer != nil {
			opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(start)})
		}
		return err
	}
}
