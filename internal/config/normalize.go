package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeProbe()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.ProvidersDir, err = expandPath(c.Paths.ProvidersDir); err != nil {
		return fmt.Errorf("paths.providers_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ISOTable) != "" {
		if c.Paths.ISOTable, err = expandPath(c.Paths.ISOTable); err != nil {
			return fmt.Errorf("paths.iso_table: %w", err)
		}
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIngest() {
	providers := make([]string, 0, len(c.Ingest.Providers))
	seen := make(map[string]struct{}, len(c.Ingest.Providers))
	for _, name := range c.Ingest.Providers {
		normalized := strings.TrimSuffix(strings.TrimSpace(name), ".json")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		providers = append(providers, normalized)
	}
	if len(providers) == 0 {
		providers = append(providers, defaultIngestProviders...)
	}
	c.Ingest.Providers = providers
}

func (c *Config) normalizeProbe() {
	c.Probe.Binary = strings.TrimSpace(c.Probe.Binary)
	if value, ok := os.LookupEnv("RADIOCAT_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Probe.Binary = strings.TrimSpace(value)
	}
	if c.Probe.Binary == "" {
		c.Probe.Binary = defaultProbeBinary
	}
	if c.Probe.TimeoutSeconds <= 0 {
		c.Probe.TimeoutSeconds = defaultProbeTimeout
	}
	if c.Probe.Concurrency <= 0 {
		c.Probe.Concurrency = defaultProbeConcurrency
	}
	if c.Probe.ProgressEvery <= 0 {
		c.Probe.ProgressEvery = defaultProbeProgressEvery
	}
	c.Probe.UserAgent = strings.TrimSpace(c.Probe.UserAgent)
	if value, ok := os.LookupEnv("RADIOCAT_USER_AGENT"); ok && strings.TrimSpace(value) != "" {
		c.Probe.UserAgent = strings.TrimSpace(value)
	}
	if c.Probe.UserAgent == "" {
		c.Probe.UserAgent = defaultUserAgent
	}
	c.Probe.Referer = strings.TrimSpace(c.Probe.Referer)
}

func (c *Config) normalizeStore() error {
	var err error
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = filepath.Join(c.Paths.StateDir, defaultStoreFile)
	}
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
