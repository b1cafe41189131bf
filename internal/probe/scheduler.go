package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"radiocat/internal/logging"
	"radiocat/internal/station"
)

// DefaultWorkers is the pool width when none is configured.
const DefaultWorkers = 40

// Job asks for one stream URL to be probed.
type Job struct {
	URL string
}

// Outcome pairs a job with its result.
type Outcome struct {
	URL    string
	Result Result
}

// SchedulerOptions configure the worker pool.
type SchedulerOptions struct {
	Workers       int
	ProgressEvery int
}

// Scheduler fans probe jobs out to a fixed pool of workers and collects the
// outcomes on a single goroutine.
type Scheduler struct {
	prober        Prober
	workers       int
	progressEvery int
	logger        *slog.Logger
}

// NewScheduler creates a scheduler around prober.
func NewScheduler(prober Prober, opts SchedulerOptions, logger *slog.Logger) *Scheduler {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scheduler{
		prober:        prober,
		workers:       workers,
		progressEvery: opts.ProgressEvery,
		logger:        logging.NewComponentLogger(logger, "probe"),
	}
}

// RunAll probes every job and returns exactly one outcome per job in
// completion order. When ctx is canceled no further jobs are dispatched and
// the remainder are reported as Canceled outcomes.
func (s *Scheduler) RunAll(ctx context.Context, jobs []Job) []Outcome {
	if len(jobs) == 0 {
		return nil
	}
	logger := logging.WithContext(ctx, s.logger)
	workers := min(s.workers, len(jobs))

	jobQueue := make(chan Job)
	results := make(chan Outcome, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobQueue {
				results <- s.run(ctx, logger, job)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobQueue)
		for i, job := range jobs {
			select {
			case jobQueue <- job:
			case <-ctx.Done():
				for _, rest := range jobs[i:] {
					results <- Outcome{URL: rest.URL, Result: canceledResult()}
				}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	logger.Info("probing streams",
		logging.Int("stream_count", len(jobs)),
		logging.Int("workers", workers),
	)

	sampler := logging.NewProgressSampler(s.progressEvery, len(jobs))
	outcomes := make([]Outcome, 0, len(jobs))
	working := 0
	for outcome := range results {
		outcomes = append(outcomes, outcome)
		if outcome.Result.Status == station.StatusWorking {
			working++
		}
		done := len(outcomes)
		if sampler.ShouldLog(done) {
			logger.Info("probe progress",
				logging.Int("done", done),
				logging.Int("total", len(jobs)),
				logging.Float64("percent", sampler.Percent(done)),
				logging.Int("working", working),
				logging.Int("broken", done-working),
			)
		}
	}
	return outcomes
}

func (s *Scheduler) run(ctx context.Context, logger *slog.Logger, job Job) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(logger, "prober panicked", "probe_panic",
				logging.String(logging.FieldStreamURL, job.URL),
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldErrorHint, "report the stream url; the prober should never panic"),
				logging.String(logging.FieldImpact, "stream marked broken"),
			)
			out = Outcome{URL: job.URL, Result: Result{Status: station.StatusBroken, Reason: fmt.Sprintf("probe panic: %v", r)}}
		}
	}()
	result := s.prober.Probe(ctx, job.URL)
	logger.Debug("stream probed",
		logging.String(logging.FieldStreamURL, job.URL),
		logging.String("status", string(result.Status)),
		logging.String("codec", result.Codec),
		logging.String("reason", result.Reason),
	)
	return Outcome{URL: job.URL, Result: result}
}
