package pipeline

import (
	"context"

	"radiocat/internal/catalog"
	"radiocat/internal/ingest"
	"radiocat/internal/logging"
	"radiocat/internal/services"
)

// DuplicatesSummary reports a duplicates scan.
type DuplicatesSummary struct {
	ingest.DuplicateStats
	ReportPath string
}

// Duplicates scans the catalog-mode source tree and writes the duplicates
// report without merging or probing.
func (r *Runner) Duplicates(ctx context.Context) (DuplicatesSummary, error) {
	ctx = services.WithMode(ctx, "duplicates")
	logger := logging.WithContext(ctx, r.logger)

	if err := r.cfg.EnsureDirectories(); err != nil {
		return DuplicatesSummary{}, services.Wrap(services.ErrConfiguration, "pipeline", "prepare", "create directories", err)
	}
	files, err := ingest.DiscoverCatalog(r.cfg.Paths.SourceDir, r.cfg.Ingest.Providers, ingest.Resolver{})
	if err != nil {
		return DuplicatesSummary{}, err
	}
	if len(files) == 0 {
		return DuplicatesSummary{}, ErrNoInput
	}

	index := ingest.NewDuplicateIndex()
	stats, err := ingest.Load(ctx, logger, files, ingest.Resolver{}, index.Add)
	if err != nil {
		return DuplicatesSummary{}, err
	}
	summary, err := r.writeDuplicates(index, stats.RawEntries)
	if err != nil {
		return summary, err
	}
	logger.Info("duplicates scan complete",
		logging.Int("entries", summary.Entries),
		logging.Int("unique_urls", summary.UniqueURLs),
		logging.Int("duplicate_urls", summary.DuplicateURLs),
		logging.Float64("redundancy_percent", summary.RedundancyRate),
		logging.String(logging.FieldPath, summary.ReportPath),
	)
	return summary, nil
}

func (r *Runner) writeDuplicates(index *ingest.DuplicateIndex, rawEntries int) (DuplicatesSummary, error) {
	summary := DuplicatesSummary{
		DuplicateStats: index.Stats(rawEntries),
		ReportPath:     r.cfg.DuplicatesOutputPath(),
	}
	if err := catalog.WriteDuplicates(summary.ReportPath, index.Report()); err != nil {
		return summary, err
	}
	return summary, nil
}
