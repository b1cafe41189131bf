package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"radiocat/internal/preflight"
	"radiocat/internal/station"
	"radiocat/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, dependency and store health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Config", colorize)...)
			path := ctx.configPath
			if !ctx.configSeen {
				path = "defaults (" + ctx.configPath + " not found)"
			}
			lines = append(lines, renderStatusLine("Config file", statusInfo, path, colorize))
			lines = append(lines, renderStatusLine("Providers", statusInfo, fmt.Sprint(cfg.Ingest.Providers), colorize))
			lines = append(lines, renderStatusLine("Probe workers", statusInfo, fmt.Sprint(cfg.Probe.Concurrency), colorize))
			lines = append(lines, renderStatusLine("Retry broken", statusInfo, yesNo(cfg.Policy.RetryBroken), colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Paths", colorize)...)
			lines = append(lines, preflightLines(preflight.RunAll(cfg), colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(preflight.CheckSystemDeps(cfg), colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Store", colorize)...)
			storeLines, table := storeStatus(cmd, cfg.Store.Enabled, cfg.Store.Path, colorize)
			lines = append(lines, storeLines...)

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if table != "" {
				fmt.Fprintln(out, table)
			}
			return nil
		},
	}
}

func storeStatus(cmd *cobra.Command, enabled bool, path string, colorize bool) ([]string, string) {
	if !enabled {
		return []string{renderStatusLine("Catalog store", statusInfo, "disabled", colorize)}, ""
	}
	if _, err := os.Stat(path); err != nil {
		return []string{renderStatusLine("Catalog store", statusWarn, "not created yet ("+path+")", colorize)}, ""
	}
	st, err := store.Open(cmd.Context(), path)
	if err != nil {
		return []string{renderStatusLine("Catalog store", statusError, err.Error(), colorize)}, ""
	}
	defer st.Close()
	counts, err := st.StatusCounts(cmd.Context())
	if err != nil {
		return []string{renderStatusLine("Catalog store", statusError, err.Error(), colorize)}, ""
	}
	total := 0
	rows := make([][]string, 0, 4)
	for _, status := range []station.Status{station.StatusWorking, station.StatusBroken, station.StatusUntested} {
		total += counts[status]
		rows = append(rows, []string{string(status), humanize.Comma(int64(counts[status]))})
	}
	rows = append(rows, []string{"total", humanize.Comma(int64(total))})
	line := renderStatusLine("Catalog store", statusOK, path, colorize)
	return []string{line}, renderTable([]string{"Status", "Stations"}, rows, []columnAlignment{alignLeft, alignRight})
}
