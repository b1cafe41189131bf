package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"radiocat/internal/probe"
	"radiocat/internal/station"
)

type probeOutput struct {
	URL          string     `json:"stream_url"`
	Status       string     `json:"status"`
	Codec        string     `json:"codec,omitempty"`
	Bitrate      int64      `json:"bitrate,omitempty"`
	SampleRate   int        `json:"sample_rate,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	LastTestedAt *time.Time `json:"last_tested_at,omitempty"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Validate a single stream URL with ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := requireFFprobe(cfg, false); err != nil {
				return err
			}
			url := strings.TrimSpace(args[0])
			prober := probe.NewFFprobe(cfg)
			if timeout > 0 {
				prober.Timeout = timeout
			}
			res := prober.Probe(cmd.Context(), url)
			if res.Canceled {
				return cmd.Context().Err()
			}
			v := res.Validation()
			output := probeOutput{
				URL:          url,
				Status:       string(res.Status),
				Codec:        res.Codec,
				Bitrate:      res.Bitrate,
				SampleRate:   res.SampleRate,
				Reason:       res.Reason,
				LastTestedAt: v.LastTestedAt,
			}
			if asJSON {
				return writeJSON(cmd, output)
			}
			printProbeResult(cmd, output)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the probe result as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Probe timeout (overrides probe.timeout_seconds)")
	return cmd
}

func printProbeResult(cmd *cobra.Command, out probeOutput) {
	w := cmd.OutOrStdout()
	colorize := shouldColorize(w)
	kind := statusError
	if out.Status == string(station.StatusWorking) {
		kind = statusOK
	}
	fmt.Fprintln(w, renderStatusLine("Stream", kind, out.Status, colorize))
	fmt.Fprintln(w, renderStatusLine("URL", statusInfo, out.URL, colorize))
	if out.Codec != "" {
		fmt.Fprintln(w, renderStatusLine("Codec", statusInfo, out.Codec, colorize))
	}
	if out.Bitrate > 0 {
		fmt.Fprintln(w, renderStatusLine("Bitrate", statusInfo, humanize.SI(float64(out.Bitrate), "bit/s"), colorize))
	}
	if out.SampleRate > 0 {
		fmt.Fprintln(w, renderStatusLine("Sample rate", statusInfo, humanize.SI(float64(out.SampleRate), "Hz"), colorize))
	}
	if out.Reason != "" {
		fmt.Fprintln(w, renderStatusLine("Reason", statusWarn, out.Reason, colorize))
	}
}
