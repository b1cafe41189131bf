package config

import (
	"errors"
	"fmt"
	"strings"
)

const maxProbeConcurrency = 512

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateProbe(); err != nil {
		return err
	}
	if err := c.validatePolicy(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.SourceDir) == "" && strings.TrimSpace(c.Paths.ProvidersDir) == "" {
		return errors.New("paths.source_dir or paths.providers_dir must be set")
	}
	return nil
}

func (c *Config) validateProbe() error {
	if err := ensurePositiveMap(map[string]int{
		"probe.timeout_seconds": c.Probe.TimeoutSeconds,
		"probe.concurrency":     c.Probe.Concurrency,
		"probe.progress_every":  c.Probe.ProgressEvery,
	}); err != nil {
		return err
	}
	if c.Probe.Concurrency > maxProbeConcurrency {
		return fmt.Errorf("probe.concurrency must be <= %d", maxProbeConcurrency)
	}
	if strings.ContainsAny(c.Probe.Referer, "\r\n") {
		return errors.New("probe.referer must not contain line breaks")
	}
	return nil
}

func (c *Config) validatePolicy() error {
	if c.Policy.ForceRetest && c.Policy.SkipValidation {
		return errors.New("policy.force_retest and policy.skip_validation are mutually exclusive")
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path must be set when store.enabled is true")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
