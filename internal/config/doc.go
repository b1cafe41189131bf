// Package config loads, normalizes, and validates radiocat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RADIOCAT_FFPROBE. The Config type centralizes every knob the ingest pipeline
// and CLI need so source trees, output files and probe settings are discovered
// in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
