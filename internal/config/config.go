package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output and state locations.
type Paths struct {
	SourceDir    string `toml:"source_dir"`
	ProvidersDir string `toml:"providers_dir"`
	OutputDir    string `toml:"output_dir"`
	ISOTable     string `toml:"iso_table"`
	LogDir       string `toml:"log_dir"`
	StateDir     string `toml:"state_dir"`
}

// Ingest contains catalog-mode discovery settings.
type Ingest struct {
	// Providers lists the file base names (without .json) accepted in catalog mode.
	Providers []string `toml:"providers"`
}

// Probe contains settings for the external stream probing tool.
type Probe struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Concurrency    int    `toml:"concurrency"`
	UserAgent      string `toml:"user_agent"`
	Referer        string `toml:"referer"`
	ProgressEvery  int    `toml:"progress_every"`
}

// Policy contains the merge and revalidation policy switches.
type Policy struct {
	ForceRetest    bool `toml:"force_retest"`
	SkipValidation bool `toml:"skip_validation"`
	// RetryBroken re-probes streams whose cached outcome is broken. Default: true
	RetryBroken bool `toml:"retry_broken"`
	// FoldGenreCase unions genres case-insensitively. Default: false
	FoldGenreCase bool `toml:"fold_genre_case"`
}

// Store contains configuration for the SQLite catalog store used by sync.
type Store struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Default: <state_dir>/catalog.db
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for radiocat.
//
// Configuration sections by subsystem:
//   - Paths: raw source trees, output directory, ISO table and state
//   - Ingest: provider file names accepted in catalog mode
//   - Probe: ffprobe binary, timeout, pool width and request headers
//   - Policy: revalidation and merge policy switches
//   - Store: SQLite catalog store for sync
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Ingest  Ingest  `toml:"ingest"`
	Probe   Probe   `toml:"probe"`
	Policy  Policy  `toml:"policy"`
	Store   Store   `toml:"store"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/radiocat/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("radiocat.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output, log and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFprobeBinary returns the ffprobe executable used for stream validation.
func (c *Config) FFprobeBinary() string {
	if binary := strings.TrimSpace(c.Probe.Binary); binary != "" {
		return binary
	}
	return defaultProbeBinary
}

// ProbeTimeout returns the per-probe hard timeout.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutSeconds) * time.Second
}

// CatalogOutputPath returns the catalog-mode output file.
func (c *Config) CatalogOutputPath() string {
	return filepath.Join(c.Paths.OutputDir, catalogFileName)
}

// DuplicatesOutputPath returns the duplicates report location.
func (c *Config) DuplicatesOutputPath() string {
	return filepath.Join(c.Paths.OutputDir, duplicatesFileName)
}

// ProviderOutputPath returns the provider-mode output file, optionally scoped to a country.
func (c *Config) ProviderOutputPath(provider, country string) string {
	provider = strings.TrimSpace(provider)
	country = strings.TrimSpace(country)
	if country == "" {
		return filepath.Join(c.Paths.OutputDir, "validated_"+provider+".json")
	}
	return filepath.Join(c.Paths.OutputDir, "validated_"+provider+"_"+strings.ReplaceAll(country, " ", "_")+".json")
}

// ProviderDataDir returns the directory holding a provider's per-country files.
func (c *Config) ProviderDataDir(provider string) string {
	return filepath.Join(c.Paths.ProvidersDir, strings.TrimSpace(provider), "data")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
