// Package preflight provides readiness checks for the filesystem paths and
// binaries radiocat depends on.
//
// The CLI "radiocat status" command renders every check. "radiocat ingest"
// only refuses to start when ffprobe is missing and validation is enabled;
// a missing ISO table degrades to raw country labels.
package preflight
