package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jsema/internal/diag"
	"jsema/internal/diagfmt"
	"jsema/internal/driver"
	"jsema/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.java|directory]...",
	Short: "Resolve Java sources and report diagnostics",
	Long: `Resolve every name, type and method call in the given sources (or the sources
listed in jsema.toml) and report unresolved references and fatal units`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Int("context", 0, "source lines shown above each diagnostic")
}

type checkFlags struct {
	format           string
	noWarnings       bool
	warningsAsErrors bool
	withNotes        bool
	fullPath         bool
	context          int
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var f checkFlags
	var err error
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	if f.noWarnings, err = cmd.Flags().GetBool("no-warnings"); err != nil {
		return f, fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	if f.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return f, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if f.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if f.context, err = cmd.Flags().GetInt("context"); err != nil {
		return f, fmt.Errorf("failed to get context flag: %w", err)
	}
	if f.noWarnings && f.warningsAsErrors {
		return f, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	f.format = strings.ToLower(f.format)
	switch f.format {
	case "pretty", "short", "json", "sarif":
	default:
		return f, fmt.Errorf("unknown format %q", f.format)
	}
	return f, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	sess, opts, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	files, err := sess.settings.sourceFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .java files found")
	}

	run, err := driver.Analyze(cmd.Context(), files, opts)
	if err != nil {
		return err
	}
	bag := collectDiagnostics(run, flags.noWarnings)

	out := cmd.OutOrStdout()
	pathMode := diagfmt.PathModeAuto
	if flags.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	switch flags.format {
	case "json":
		err = diagfmt.JSON(out, bag, run.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			BaseDir:          sess.settings.baseDir(),
			IncludeNotes:     flags.withNotes,
		})
	case "sarif":
		err = diagfmt.Sarif(out, bag, run.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "jsema",
			ToolVersion:    version.Version,
			InvocationArgs: append([]string{"check"}, args...),
		})
	case "short":
		writeShort(out, bag, run)
	default:
		diagfmt.Pretty(out, bag, run.FileSet, diagfmt.PrettyOpts{
			Color:     sess.settings.color,
			Context:   flags.context,
			PathMode:  pathMode,
			BaseDir:   sess.settings.baseDir(),
			ShowNotes: flags.withNotes,
		})
	}
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if sess.settings.timings && flags.format != "json" && flags.format != "sarif" {
		fmt.Fprint(errOut, run.Timer.Summary())
	}
	failed := len(run.Failed())
	if !sess.settings.quiet && (flags.format == "pretty" || flags.format == "short") {
		writeSummary(errOut, run, bag, failed)
	}

	if failed > 0 || bag.HasErrors() || (flags.warningsAsErrors && bag.HasWarnings()) {
		return errFindings
	}
	return nil
}

// collectDiagnostics merges the unit bags and the run bag into one sorted
// bag.
func collectDiagnostics(run *driver.Run, noWarnings bool) *diag.Bag {
	all := diag.NewBag(0)
	for _, u := range run.Units {
		all.Merge(u.Bag)
	}
	all.Merge(run.Bag)
	if noWarnings {
		kept := diag.NewBag(0)
		for _, d := range all.Items() {
			if d.Severity != diag.SevWarning {
				kept.Add(d)
			}
		}
		all = kept
	}
	all.Sort()
	return all
}

// writeShort prints one line per diagnostic: path:line:col: SEV CODE: msg.
func writeShort(w io.Writer, bag *diag.Bag, run *driver.Run) {
	for _, d := range bag.Items() {
		if f := run.FileSet.Get(d.Primary.File); f != nil {
			pos := f.Position(d.Primary.Start)
			fmt.Fprintf(w, "%s:%d:%d: ", f.Path, pos.Line, pos.Col)
		}
		fmt.Fprintf(w, "%s %s: %s\n", d.Severity, d.Code.ID(), d.Message)
	}
}

func writeSummary(w io.Writer, run *driver.Run, bag *diag.Bag, failed int) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	status := color.New(color.FgGreen, color.Bold).Sprint("ok")
	if errs > 0 || failed > 0 {
		status = color.New(color.FgRed, color.Bold).Sprint("failed")
	}
	fmt.Fprintf(w, "%s: %d units, %d errors, %d warnings", status, len(run.Units), errs, warns)
	if failed > 0 {
		fmt.Fprintf(w, ", %d aborted", failed)
	}
	if missing := run.Loader.NotFound(); len(missing) > 0 {
		fmt.Fprintf(w, ", %d classes not found", len(missing))
	}
	fmt.Fprintln(w)
}
