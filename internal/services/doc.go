// Package services defines shared utilities consumed by the ingest pipeline and
// its external-tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, run modes, and provider names for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent CLI exit codes.
//
// Use these helpers when wiring new pipeline stages so operational behaviour
// (error handling, observability) stays uniform.
package services
