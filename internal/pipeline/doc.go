// Package pipeline orchestrates an ingest run.
//
// Run discovers source files, folds every observation into an
// ingest.Library, applies the validation cache, probes the remaining streams
// through a probe.Scheduler and writes the output once after all workers have
// joined. Only discovery finding no files is fatal (ErrNoInput); per-file and
// per-stream failures are logged and counted. A file lock next to the output
// keeps two runs from writing the same file.
package pipeline
