// Package diag defines the diagnostic model shared by the parser adapter, the
// class loader and the semantic passes.
//
// Producers emit through a Reporter (usually via ReportError / ReportWarning
// and the fluent ReportBuilder); storage lives in Bag. Rendering is the job of
// internal/diagfmt. Resolution failures that the engine recovers from with an
// unknown sentinel are reported here, never returned as Go errors.
package diag
