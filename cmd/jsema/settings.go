package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"jsema/internal/prof"
	"jsema/internal/project"
)

// settings merge jsema.toml with command-line flags; an explicitly set flag
// wins over the manifest.
type settings struct {
	manifest *project.Manifest

	classpath []string
	stubs     []string
	boot      bool
	cache     bool
	cacheDir  string

	jobs           int
	maxDiagnostics int
	retries        int

	traceOutput string
	traceLevel  string
	traceMode   string
	traceFormat string

	timings bool
	quiet   bool
	color   bool

	profile prof.Options
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg := project.DefaultConfig()
	s := &settings{}
	m, ok, err := project.LoadManifest(wd)
	if err != nil {
		return nil, err
	}
	if ok {
		s.manifest = m
		cfg = m.Config
		s.classpath = m.ClasspathEntries()
		s.stubs = m.StubFiles()
	}
	s.boot = cfg.Classpath.Boot
	s.cache = cfg.Cache.Enabled
	s.cacheDir = cfg.Cache.Dir
	if s.cacheDir != "" && m != nil {
		s.cacheDir = m.Abs(s.cacheDir)
	}
	s.jobs = cfg.Analysis.Jobs
	s.maxDiagnostics = cfg.Analysis.MaxDiagnostics
	s.retries = cfg.Analysis.Retries
	s.traceLevel = cfg.Trace.Level
	s.traceMode = cfg.Trace.Mode
	s.traceOutput = cfg.Trace.Output
	s.traceFormat = "auto"

	pf := cmd.Root().PersistentFlags()
	changed := pf.Changed
	var errs []error
	getInt := func(name string, dst *int) {
		if v, err := pf.GetInt(name); err != nil {
			errs = append(errs, err)
		} else if changed(name) {
			*dst = v
		}
	}
	getString := func(name string, dst *string) {
		if v, err := pf.GetString(name); err != nil {
			errs = append(errs, err)
		} else if changed(name) {
			*dst = v
		}
	}
	getBool := func(name string, dst *bool) {
		if v, err := pf.GetBool(name); err != nil {
			errs = append(errs, err)
		} else if changed(name) {
			*dst = v
		}
	}
	getSlice := func(name string, dst *[]string) {
		if v, err := pf.GetStringSlice(name); err != nil {
			errs = append(errs, err)
		} else if changed(name) {
			*dst = v
		}
	}

	getInt("jobs", &s.jobs)
	getInt("max-diagnostics", &s.maxDiagnostics)
	getInt("retries", &s.retries)
	getSlice("classpath", &s.classpath)
	getSlice("stubs", &s.stubs)
	getBool("cache", &s.cache)
	getString("cache-dir", &s.cacheDir)
	getString("trace", &s.traceOutput)
	getString("trace-level", &s.traceLevel)
	getString("trace-mode", &s.traceMode)
	getString("trace-format", &s.traceFormat)
	getBool("timings", &s.timings)
	getBool("quiet", &s.quiet)
	getString("cpuprofile", &s.profile.CPU)
	getString("memprofile", &s.profile.Mem)
	getString("exectrace", &s.profile.Trace)
	noBoot := false
	getBool("no-boot", &noBoot)
	if noBoot {
		s.boot = false
	}
	colorMode := "auto"
	getString("color", &colorMode)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to read flags: %w", errs[0])
	}

	if s.traceOutput == "stderr" {
		s.traceOutput = "-"
	}
	if s.jobs < 0 || s.retries < 0 {
		return nil, fmt.Errorf("--jobs and --retries must be >= 0")
	}

	switch strings.ToLower(colorMode) {
	case "on", "always":
		s.color = true
	case "off", "never":
		s.color = false
	case "auto":
		s.color = isTerminal(os.Stdout)
	default:
		return nil, fmt.Errorf("unknown color mode %q (must be auto, on or off)", colorMode)
	}
	color.NoColor = !s.color
	return s, nil
}

// sourceFiles expands args into .java files; without args the manifest
// sources are used.
func (s *settings) sourceFiles(args []string) ([]string, error) {
	if len(args) > 0 {
		return project.CollectJavaFiles(args)
	}
	if s.manifest == nil {
		return nil, fmt.Errorf("no sources given and no %s found", project.ManifestName)
	}
	return s.manifest.SourceFiles()
}

// baseDir is where relative paths in the output are anchored.
func (s *settings) baseDir() string {
	if s.manifest != nil {
		return s.manifest.Root
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}
