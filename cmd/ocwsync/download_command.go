package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ocwsync/internal/config"
	"ocwsync/internal/pipeline"
	"ocwsync/internal/preflight"
	"ocwsync/internal/services"
	"ocwsync/internal/store"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var opts pipeline.DownloadOptions
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "download <course-slug>",
		Short: "Download a course archive and rebuild its sections and resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := strings.TrimSpace(args[0])
			return ctx.withStore(func(cfg *config.Config, s *store.Store) error {
				if !skipChecks {
					if err := requireChecks(preflight.RunDownload(cmd.Context(), cfg)); err != nil {
						return err
					}
				}
				runID := uuid.NewString()
				logger, logPath, err := ctx.runLogger(runID)
				if err != nil {
					return err
				}
				summary, err := pipeline.NewRunner(cfg, s, logger, pipeline.WithRunID(runID)).Download(cmd.Context(), slug, opts)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, tableSpec{
					title:   summary.Course.Title,
					headers: []string{"Step", "Result"},
					rows: [][]string{
						{"Archive", formatBytes(summary.ArchiveBytes)},
						{"Lectures", fmt.Sprintf("%d (%s)", summary.Lectures, summary.LectureSource)},
						{"PDFs", fmt.Sprintf("%d (%d renamed)", summary.Pdfs, summary.Renamed)},
						{"Ordering", orderingLabel(summary)},
						{"Sections", strconv.Itoa(summary.Content.Sections)},
						{"Resources", fmt.Sprintf("%d (%d videos, %d pdfs)", summary.Content.Resources, summary.Content.Videos, summary.Content.Pdfs)},
						{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
					},
				}.render())
				if opts.KeepScratch {
					fmt.Fprintf(out, "Scratch kept at %s\n", summary.ScratchDir)
				}
				if logPath != "" {
					fmt.Fprintf(out, "Run log: %s\n", logPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.KeepScratch, "keep-scratch", false, "Keep the downloaded archive and extraction directory")
	cmd.Flags().BoolVar(&opts.RefreshLectures, "refresh-lectures", false, "Ignore the cached lecture list and rediscover it")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip preflight checks")
	return cmd
}

func orderingLabel(summary pipeline.DownloadSummary) string {
	if summary.Degraded {
		return summary.Strategy + " (oracle failed)"
	}
	return summary.Strategy
}

// requireChecks turns failed preflight results into a configuration error.
func requireChecks(results []preflight.Result) error {
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, len(failed))
	for i, r := range failed {
		parts[i] = fmt.Sprintf("%s: %s", r.Name, r.Detail)
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "", strings.Join(parts, "; "), nil)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
