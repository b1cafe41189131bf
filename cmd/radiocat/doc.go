// Package main hosts the radiocat CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the structured logger, and hands work to the internal pipeline, probe and
// store packages. Commands print human summaries to stdout; logs go to stderr
// and the configured log directory.
package main
