// Package probe validates stream URLs with bounded concurrency.
//
// FFprobe is the production Prober. Scheduler runs a fixed pool of workers
// that read jobs from a channel and send outcomes back over another; a single
// collector gathers them so callers fold results on one goroutine.
package probe
