package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"radiocat/internal/config"
	"radiocat/internal/deps"
	"radiocat/internal/pipeline"
	"radiocat/internal/services"
)

type ingestFlags struct {
	provider    string
	country     string
	forceTest   bool
	skipTest    bool
	duplicates  bool
	concurrency int
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var flags ingestFlags

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Merge station files, validate streams and write the catalog",
		Long: "Without --provider, every recognized provider file under the source directory is merged " +
			"into the master catalog. With --provider, only that provider's per-country files are read " +
			"and a provider-scoped catalog is written.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if flags.concurrency > 0 {
				cfg.Probe.Concurrency = flags.concurrency
			}
			skip := flags.skipTest || cfg.Policy.SkipValidation
			if err := requireFFprobe(cfg, skip); err != nil {
				return err
			}

			runner := pipeline.New(cfg, logger)
			summary, err := runner.Run(cmd.Context(), pipeline.Options{
				Provider:       flags.provider,
				Country:        flags.country,
				ForceRetest:    flags.forceTest,
				SkipValidation: flags.skipTest,
				Duplicates:     flags.duplicates,
			})
			if err != nil {
				return err
			}
			printIngestSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.provider, "provider", "p", "", "Provider to ingest in provider mode (e.g. mytuner)")
	cmd.Flags().StringVar(&flags.country, "country", "", "Limit provider mode to one country (name or ISO code)")
	cmd.Flags().BoolVar(&flags.forceTest, "force-test", false, "Re-probe every stream, ignoring cached results")
	cmd.Flags().BoolVar(&flags.skipTest, "skip-test", false, "Skip stream validation")
	cmd.Flags().BoolVar(&flags.duplicates, "duplicates", false, "Also write the duplicates report")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "Number of concurrent probes (overrides config)")
	return cmd
}

func newDupesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dupes",
		Short: "Report stream URLs listed more than once across provider files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			summary, err := pipeline.New(cfg, logger).Duplicates(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entries:        %s\n", humanize.Comma(int64(summary.Entries)))
			fmt.Fprintf(out, "Unique URLs:    %s\n", humanize.Comma(int64(summary.UniqueURLs)))
			fmt.Fprintf(out, "Duplicate URLs: %s\n", humanize.Comma(int64(summary.DuplicateURLs)))
			fmt.Fprintf(out, "Redundancy:     %.2f%%\n", summary.RedundancyRate)
			fmt.Fprintf(out, "Report:         %s\n", summary.ReportPath)
			return nil
		},
	}
}

func requireFFprobe(cfg *config.Config, skipValidation bool) error {
	statuses := deps.CheckBinaries([]deps.Requirement{deps.FFprobeRequirement(cfg.FFprobeBinary(), skipValidation)})
	missing := deps.MissingRequired(statuses)
	if len(missing) == 0 {
		return nil
	}
	details := make([]string, 0, len(missing))
	for _, m := range missing {
		details = append(details, m.Detail)
	}
	return services.Wrap(services.ErrConfiguration, "ingest", "preflight",
		strings.Join(details, "; ")+" (install ffprobe or pass --skip-test)", nil)
}

func printIngestSummary(out io.Writer, s pipeline.Summary) {
	rows := [][]string{
		{"Files", humanize.Comma(int64(s.Files))},
		{"Unreadable files", humanize.Comma(int64(s.FailedFiles))},
		{"Raw entries", humanize.Comma(int64(s.RawEntries))},
		{"Skipped (no URL)", humanize.Comma(int64(s.SkippedNoURL))},
		{"Unique stations", humanize.Comma(int64(s.Unique))},
		{"Cache hits", humanize.Comma(int64(s.CacheHits))},
		{"Probed", humanize.Comma(int64(s.Probed))},
		{"Working", humanize.Comma(int64(s.Working))},
		{"Broken", humanize.Comma(int64(s.Broken))},
		{"Untested", humanize.Comma(int64(s.Untested))},
	}
	if s.Duplicates != nil {
		rows = append(rows, []string{"Duplicate URLs", humanize.Comma(int64(s.Duplicates.DuplicateURLs))})
	}
	if s.Synced != nil {
		rows = append(rows, []string{"Store inserted/updated", fmt.Sprintf("%s/%s",
			humanize.Comma(int64(s.Synced.Inserted)), humanize.Comma(int64(s.Synced.Updated)))})
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
	fmt.Fprintf(out, "Wrote %s in %s\n", s.OutputPath, s.Duration.Round(1e6))
	if s.Duplicates != nil {
		fmt.Fprintf(out, "Wrote %s\n", s.Duplicates.ReportPath)
	}
}
