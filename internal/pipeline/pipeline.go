package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"radiocat/internal/catalog"
	"radiocat/internal/config"
	"radiocat/internal/ingest"
	"radiocat/internal/logging"
	"radiocat/internal/probe"
	"radiocat/internal/probecache"
	"radiocat/internal/services"
	"radiocat/internal/station"
	"radiocat/internal/store"
)

// ErrNoInput is returned when discovery matched no source files. Nothing is
// written in that case.
var ErrNoInput = fmt.Errorf("%w: no input files matched", services.ErrNotFound)

// ErrRunInProgress is returned when another run holds the output lock.
var ErrRunInProgress = errors.New("another run is writing the same output")

// Options select the run mode and per-run policy overrides.
type Options struct {
	// Provider switches to provider mode when set.
	Provider string
	// Country narrows provider mode to one country (name or ISO code).
	Country        string
	ForceRetest    bool
	SkipValidation bool
	// Duplicates also writes the duplicates report.
	Duplicates bool
}

// Mode returns the output mode implied by the options.
func (o Options) Mode() catalog.Mode {
	if strings.TrimSpace(o.Provider) != "" {
		return catalog.ModeProvider
	}
	return catalog.ModeCatalog
}

// Summary reports what a run did.
type Summary struct {
	RunID        string
	Mode         string
	Provider     string
	Files        int
	FailedFiles  int
	RawEntries   int
	SkippedNoURL int
	Unique       int
	CacheHits    int
	CacheSource  string
	Probed       int
	Working      int
	Broken       int
	Untested     int
	OutputPath   string
	Duplicates   *DuplicatesSummary
	Synced       *store.SyncStats
	Duration     time.Duration
}

// Runner executes ingest runs for a configuration.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	prober probe.Prober
}

// Option customizes a Runner.
type Option func(*Runner)

// WithProber replaces the ffprobe-backed prober.
func WithProber(p probe.Prober) Option {
	return func(r *Runner) { r.prober = p }
}

// New constructs a Runner.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, logger: logging.NewComponentLogger(logger, "pipeline")}
	for _, opt := range opts {
		opt(r)
	}
	if r.prober == nil {
		r.prober = probe.NewFFprobe(cfg)
	}
	return r
}

// Run executes one ingest batch: discover, load and merge, consult the
// cache, probe the remaining streams and write the output once.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	started := time.Now()
	mode := opts.Mode()
	provider := strings.TrimSpace(opts.Provider)
	summary := Summary{RunID: uuid.NewString(), Mode: mode.String(), Provider: provider}

	ctx = services.WithRunID(ctx, summary.RunID)
	ctx = services.WithMode(ctx, summary.Mode)
	ctx = services.WithProvider(ctx, provider)
	logger := logging.WithContext(ctx, r.logger)

	if mode == catalog.ModeCatalog && strings.TrimSpace(opts.Country) != "" {
		return summary, services.Wrap(services.ErrValidation, "pipeline", "prepare", "--country requires --provider", nil)
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "prepare", "create directories", err)
	}

	resolver := r.loadResolver(logger)

	files, err := r.discover(mode, provider, opts.Country, resolver)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		return summary, ErrNoInput
	}

	summary.OutputPath = r.outputPath(mode, provider, opts.Country)
	lock := flock.New(summary.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return summary, fmt.Errorf("%w: %s", ErrRunInProgress, summary.OutputPath)
	}
	defer func() { _ = lock.Unlock() }()

	logger.Info("ingest started",
		logging.Int("file_count", len(files)),
		logging.String(logging.FieldPath, summary.OutputPath),
	)

	lib := ingest.NewLibrary(ingest.LibraryOptions{FoldGenreCase: r.cfg.Policy.FoldGenreCase})
	var dupes *ingest.DuplicateIndex
	if opts.Duplicates {
		dupes = ingest.NewDuplicateIndex()
	}
	stats, err := ingest.Load(ctx, logger, files, resolver, func(obs ingest.Observation) {
		lib.Add(obs)
		if dupes != nil {
			dupes.Add(obs)
		}
	})
	if err != nil {
		return summary, err
	}
	summary.Files = stats.Files
	summary.FailedFiles = stats.FailedFiles
	summary.RawEntries = stats.RawEntries
	summary.SkippedNoURL = stats.SkippedNoURL
	summary.Unique = lib.Len()

	cache := probecache.Load(logger, r.cachePaths(mode, provider, summary.OutputPath)...)
	summary.CacheSource = cache.Source()
	policy := probecache.Policy{
		ForceRetest: r.cfg.Policy.ForceRetest || opts.ForceRetest,
		RetryBroken: r.cfg.Policy.RetryBroken,
	}

	records := lib.Records()
	var jobs []probe.Job
	for i, rec := range records {
		if cache.Hit(rec.StreamURL, policy) {
			summary.CacheHits++
		}
		var needsProbe bool
		records[i], needsProbe = cache.Apply(rec, policy)
		if needsProbe {
			jobs = append(jobs, probe.Job{URL: rec.StreamURL})
		}
	}

	skip := r.cfg.Policy.SkipValidation || opts.SkipValidation
	switch {
	case skip:
		logger.Info("validation skipped", logging.Int("pending", len(jobs)))
	case len(jobs) == 0:
		logger.Info("all streams resolved from cache or providers")
	default:
		scheduler := probe.NewScheduler(r.prober, probe.SchedulerOptions{
			Workers:       r.cfg.Probe.Concurrency,
			ProgressEvery: r.cfg.Probe.ProgressEvery,
		}, logger)
		outcomes := scheduler.RunAll(ctx, jobs)
		if err := ctx.Err(); err != nil {
			logging.WarnWithContext(logger, "ingest interrupted", "ingest_interrupted",
				logging.String(logging.FieldPath, summary.OutputPath),
				logging.Int("pending", len(jobs)),
				logging.String(logging.FieldErrorHint, "rerun ingest; finished probes are not cached"),
				logging.String(logging.FieldImpact, "previous output left unchanged"),
			)
			return summary, fmt.Errorf("ingest interrupted, %s left unchanged: %w", summary.OutputPath, err)
		}
		summary.Probed = len(outcomes)
		records = FoldOutcomes(records, outcomes)
	}

	if err := catalog.Write(summary.OutputPath, records, mode, provider); err != nil {
		return summary, err
	}

	for _, rec := range records {
		switch rec.Status {
		case station.StatusWorking:
			summary.Working++
		case station.StatusBroken:
			summary.Broken++
		default:
			summary.Untested++
		}
	}

	if dupes != nil {
		ds, err := r.writeDuplicates(dupes, summary.RawEntries)
		if err != nil {
			return summary, err
		}
		summary.Duplicates = &ds
	}

	if r.cfg.Store.Enabled {
		summary.Synced = r.syncStore(ctx, logger, records)
	}

	summary.Duration = time.Since(started)
	logger.Info("ingest complete",
		logging.String(logging.FieldEventType, "ingest_complete"),
		logging.Int("raw_entries", summary.RawEntries),
		logging.Int("skipped_no_url", summary.SkippedNoURL),
		logging.Int("unique", summary.Unique),
		logging.Int("cache_hits", summary.CacheHits),
		logging.Int("probed", summary.Probed),
		logging.Int("working", summary.Working),
		logging.Int("broken", summary.Broken),
		logging.Int("untested", summary.Untested),
		logging.String(logging.FieldPath, summary.OutputPath),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// FoldOutcomes applies probe outcomes to records on the calling goroutine.
func FoldOutcomes(records []station.Record, outcomes []probe.Outcome) []station.Record {
	byURL := make(map[string]probe.Result, len(outcomes))
	for _, o := range outcomes {
		byURL[o.URL] = o.Result
	}
	out := make([]station.Record, len(records))
	for i, rec := range records {
		if res, ok := byURL[rec.StreamURL]; ok {
			rec = ApplyProbe(rec, res)
		}
		out[i] = rec
	}
	return out
}

// ApplyProbe folds one probe result into rec. A working result replaces the
// validation fields; a broken result cannot downgrade a record a provider
// already reported working. Canceled results leave rec untouched.
func ApplyProbe(rec station.Record, res probe.Result) station.Record {
	if res.Canceled {
		return rec
	}
	v := res.Validation()
	if res.Status == station.StatusWorking {
		return rec.WithValidation(v)
	}
	if rec.Status == station.StatusWorking {
		if v.LastTestedAt != nil {
			rec.LastTestedAt = v.LastTestedAt
		}
		return rec
	}
	v.Status = station.StatusBroken
	return rec.WithValidation(v)
}

func (r *Runner) loadResolver(logger *slog.Logger) ingest.Resolver {
	if strings.TrimSpace(r.cfg.Paths.ISOTable) == "" {
		return ingest.Resolver{}
	}
	resolver, err := ingest.LoadResolver(r.cfg.Paths.ISOTable)
	if err != nil {
		logging.WarnWithContext(logger, "country table unavailable", "iso_table_missing",
			logging.String(logging.FieldPath, r.cfg.Paths.ISOTable),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set paths.iso_table to a JSON object of country name to ISO code"),
			logging.String(logging.FieldImpact, "country labels are written unresolved"),
		)
	}
	return resolver
}

func (r *Runner) discover(mode catalog.Mode, provider, country string, resolver ingest.Resolver) ([]ingest.SourceFile, error) {
	if mode == catalog.ModeProvider {
		return ingest.DiscoverProvider(r.cfg.ProviderDataDir(provider), provider, country, resolver)
	}
	return ingest.DiscoverCatalog(r.cfg.Paths.SourceDir, r.cfg.Ingest.Providers, resolver)
}

func (r *Runner) outputPath(mode catalog.Mode, provider, country string) string {
	if mode == catalog.ModeProvider {
		return r.cfg.ProviderOutputPath(provider, country)
	}
	return r.cfg.CatalogOutputPath()
}

func (r *Runner) cachePaths(mode catalog.Mode, provider, output string) []string {
	if mode == catalog.ModeProvider {
		return []string{output, r.cfg.ProviderOutputPath(provider, "")}
	}
	return []string{output}
}

func (r *Runner) syncStore(ctx context.Context, logger *slog.Logger, records []station.Record) *store.SyncStats {
	st, err := store.Open(ctx, r.cfg.Store.Path)
	if err != nil {
		logging.WarnWithContext(logger, "catalog store unavailable", "store_open_failed",
			logging.String(logging.FieldPath, r.cfg.Store.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run radiocat sync once the database is reachable"),
			logging.String(logging.FieldImpact, "output written but database not updated"),
		)
		return nil
	}
	defer st.Close()
	stats, err := st.Sync(ctx, logger, records)
	if err != nil {
		logging.WarnWithContext(logger, "catalog store sync failed", "store_sync_failed",
			logging.String(logging.FieldPath, r.cfg.Store.Path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run radiocat sync to retry"),
			logging.String(logging.FieldImpact, "output written but database not updated"),
		)
		return nil
	}
	return &stats
}
