package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded jsema.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Project   ProjectConfig   `toml:"project"`
	Classpath ClasspathConfig `toml:"classpath"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Trace     TraceConfig     `toml:"trace"`
	Cache     CacheConfig     `toml:"cache"`
}

type ProjectConfig struct {
	Name    string   `toml:"name"`
	Sources []string `toml:"sources"`
}

type ClasspathConfig struct {
	Entries []string `toml:"entries"`
	Stubs   []string `toml:"stubs"`
	Boot    bool     `toml:"boot"`
}

type AnalysisConfig struct {
	Jobs           int `toml:"jobs"`
	MaxDiagnostics int `toml:"max-diagnostics"`
	Retries        int `toml:"retries"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// DefaultConfig is what an absent manifest (or absent sections) means.
func DefaultConfig() Config {
	return Config{
		Project:   ProjectConfig{Sources: []string{"."}},
		Classpath: ClasspathConfig{Boot: true},
		Analysis:  AnalysisConfig{MaxDiagnostics: 100, Retries: 2},
		Trace:     TraceConfig{Level: "off", Mode: "stream", Output: "stderr"},
	}
}

// LoadManifest finds and loads jsema.toml above startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig decodes and validates one manifest file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return Config{}, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [project].name", path)
	}
	if meta.IsDefined("project", "sources") && len(cfg.Project.Sources) == 0 {
		return Config{}, fmt.Errorf("%s: [project].sources is empty", path)
	}
	if cfg.Analysis.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [analysis].jobs must be >= 0", path)
	}
	if cfg.Analysis.Retries < 0 {
		return Config{}, fmt.Errorf("%s: [analysis].retries must be >= 0", path)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undec[0])
	}
	return cfg, nil
}

// Abs resolves a manifest-relative path.
func (m *Manifest) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

// ClasspathEntries returns the classpath with manifest-relative entries
// resolved.
func (m *Manifest) ClasspathEntries() []string {
	out := make([]string, 0, len(m.Config.Classpath.Entries))
	for _, e := range m.Config.Classpath.Entries {
		out = append(out, m.Abs(e))
	}
	return out
}

// StubFiles returns the extra stub files with manifest-relative paths
// resolved.
func (m *Manifest) StubFiles() []string {
	out := make([]string, 0, len(m.Config.Classpath.Stubs))
	for _, e := range m.Config.Classpath.Stubs {
		out = append(out, m.Abs(e))
	}
	return out
}

// SourceFiles expands the configured sources into .java files.
func (m *Manifest) SourceFiles() ([]string, error) {
	roots := make([]string, 0, len(m.Config.Project.Sources))
	for _, s := range m.Config.Project.Sources {
		roots = append(roots, m.Abs(s))
	}
	return CollectJavaFiles(roots)
}

// CollectJavaFiles expands files and directories into a sorted list of
// .java files. Hidden directories are skipped.
func CollectJavaFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), ".java") {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}
