package preflight

import (
	"strings"

	"radiocat/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the given config. Binary checks
// live in CheckSystemDeps.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if strings.TrimSpace(cfg.Paths.SourceDir) != "" {
		results = append(results, CheckDirectoryReadable("Source directory", cfg.Paths.SourceDir))
	}
	if strings.TrimSpace(cfg.Paths.ProvidersDir) != "" {
		results = append(results, CheckDirectoryReadable("Providers directory", cfg.Paths.ProvidersDir))
	}

	// Output directory (always checked)
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))

	if strings.TrimSpace(cfg.Paths.ISOTable) != "" {
		results = append(results, CheckISOTable(cfg.Paths.ISOTable))
	}

	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
