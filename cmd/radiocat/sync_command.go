package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"radiocat/internal/catalog"
	"radiocat/internal/config"
	"radiocat/internal/services"
	"radiocat/internal/store"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var dbPath string
	var verifyURL string
	var unverifyURL string

	cmd := &cobra.Command{
		Use:   "sync [catalog.json]",
		Short: "Upsert a validated catalog file into the SQLite store",
		Long: "Reads a catalog or provider output file (defaults to the master catalog) and merges every station into the store.\n" +
			"With --verify or --unverify it only toggles the verified flag of one stored station; verified rows keep their status and codec on later syncs.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			source := cfg.CatalogOutputPath()
			if len(args) == 1 {
				source, err = config.ExpandPath(args[0])
				if err != nil {
					return services.Wrap(services.ErrValidation, "sync", "resolve path", args[0], err)
				}
			}
			target := cfg.Store.Path
			if p := strings.TrimSpace(dbPath); p != "" {
				if target, err = config.ExpandPath(p); err != nil {
					return services.Wrap(services.ErrValidation, "sync", "resolve path", p, err)
				}
			}

			if verifyURL != "" || unverifyURL != "" {
				if len(args) == 1 {
					return services.Wrap(services.ErrValidation, "sync", "parse flags", "--verify/--unverify take no catalog argument", nil)
				}
				return markVerified(cmd, target, verifyURL, unverifyURL)
			}

			records, err := catalog.Read(source)
			if errors.Is(err, fs.ErrNotExist) {
				return services.Wrap(services.ErrNotFound, "sync", "read catalog", source, err)
			}
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), target)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Sync(cmd.Context(), logger, records)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Synced %s stations from %s into %s\n", humanize.Comma(int64(stats.Total)), source, st.Path())
			fmt.Fprintf(out, "Inserted: %s  Updated: %s  Failed: %s\n",
				humanize.Comma(int64(stats.Inserted)),
				humanize.Comma(int64(stats.Updated)),
				humanize.Comma(int64(stats.Failed)),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Store database path (overrides store.path)")
	cmd.Flags().StringVar(&verifyURL, "verify", "", "Mark the stored station with this stream URL as verified")
	cmd.Flags().StringVar(&unverifyURL, "unverify", "", "Clear the verified flag of the stored station with this stream URL")
	cmd.MarkFlagsMutuallyExclusive("verify", "unverify")
	return cmd
}

func markVerified(cmd *cobra.Command, target, verifyURL, unverifyURL string) error {
	url, verified := strings.TrimSpace(verifyURL), true
	if url == "" {
		url, verified = strings.TrimSpace(unverifyURL), false
	}
	if url == "" {
		return services.Wrap(services.ErrValidation, "sync", "parse flags", "stream url is empty", nil)
	}
	st, err := store.Open(cmd.Context(), target)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SetVerified(cmd.Context(), url, verified); err != nil {
		return err
	}
	row, err := st.Get(cmd.Context(), url)
	if err != nil {
		return err
	}
	if row == nil {
		return services.Wrap(services.ErrNotFound, "sync", "read back", url, nil)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Stream", "Status", "Codec", "Verified", "Updated"},
		[][]string{{row.StreamURL, string(row.Status), row.Codec, yesNo(row.Verified), humanize.Time(row.UpdatedAt)}},
		nil,
	))
	return nil
}
