package driver

import (
	"sync"

	"jsema/internal/diag"
	"jsema/internal/source"
)

// routeReporter files each diagnostic into the bag of the unit its primary
// span points at. Diagnostics without a known file go to the run bag.
type routeReporter struct {
	mu     sync.Mutex
	byFile map[source.FileID]*diag.Bag
	run    *diag.Bag
}

func newRouteReporter(run *diag.Bag) *routeReporter {
	return &routeReporter{byFile: make(map[source.FileID]*diag.Bag), run: run}
}

func (r *routeReporter) route(file source.FileID, bag *diag.Bag) {
	r.mu.Lock()
	r.byFile[file] = bag
	r.mu.Unlock()
}

func (r *routeReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	d := diag.New(sev, code, primary, msg)
	d.Notes = append(d.Notes, notes...)

	r.mu.Lock()
	bag, ok := r.byFile[primary.File]
	if !ok {
		bag = r.run
	}
	r.mu.Unlock()
	bag.Add(d)
}
