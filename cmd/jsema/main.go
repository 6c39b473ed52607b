package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jsema/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "jsema",
	Short:         "Semantic analysis for Java sources",
	Long:          `jsema resolves names, types and method calls in Java sources against a classpath`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errFindings is returned by commands that finished but found errors; main
// turns it into exit status 1 without printing it.
var errFindings = errors.New("analysis reported errors")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(classinfoCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics per unit (0 = unlimited)")
	pf.Int("jobs", 0, "parallel parse workers (0 = auto)")
	pf.Int("retries", 2, "retries for transient class loading failures")
	pf.StringSlice("classpath", nil, "classpath entries (directories and jars), overrides jsema.toml")
	pf.StringSlice("stubs", nil, "extra class stub files in TOML format")
	pf.Bool("no-boot", false, "do not append the embedded platform stubs")
	pf.Bool("cache", false, "cache decoded jar classes on disk")
	pf.String("cache-dir", "", "disk cache directory (default: user cache dir)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.String("cpuprofile", "", "write a CPU profile to file")
	pf.String("memprofile", "", "write a heap profile to file on exit")
	pf.String("exectrace", "", "write a Go runtime execution trace to file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(os.Stderr, "jsema: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
