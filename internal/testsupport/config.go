package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"radiocat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The SQLite store is disabled unless WithStore is passed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "scraped_data")
	cfgVal.Paths.ProvidersDir = filepath.Join(base, "providers")
	cfgVal.Paths.OutputDir = filepath.Join(base, "metadata")
	cfgVal.Paths.ISOTable = filepath.Join(base, "countries_iso_map.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Store.Enabled = false
	cfgVal.Store.Path = filepath.Join(base, "state", "catalog.db")
	cfgVal.Probe.TimeoutSeconds = 5
	cfgVal.Probe.Concurrency = 4

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStore enables the SQLite catalog store under the temp state directory.
func WithStore() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.Enabled = true
	}
}

// WithISOTable writes the country table used by the resolver.
func WithISOTable(table map[string]string) ConfigOption {
	return func(b *configBuilder) {
		WriteJSON(b.t, b.cfg.Paths.ISOTable, table)
	}
}

// WithFakeFFprobe installs a stub ffprobe that prints stdout and exits with
// code, and points the config at it.
func WithFakeFFprobe(stdout string, code int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Probe.Binary = FakeFFprobe(b.t, filepath.Join(b.baseDir, "bin"), stdout, code)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
