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
	"ocwsync/internal/store"
)

func newProblemsCommand(ctx *commandContext) *cobra.Command {
	var skipChecks bool

	cmd := &cobra.Command{
		Use:   "problems <course-slug>",
		Short: "Extract practice problems from a downloaded course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := strings.TrimSpace(args[0])
			return ctx.withStore(func(cfg *config.Config, s *store.Store) error {
				if !skipChecks {
					if err := requireChecks(preflight.RunProblems(cmd.Context(), cfg)); err != nil {
						return err
					}
				}
				runID := uuid.NewString()
				logger, logPath, err := ctx.runLogger(runID)
				if err != nil {
					return err
				}
				summary, err := pipeline.NewRunner(cfg, s, logger, pipeline.WithRunID(runID)).Problems(cmd.Context(), slug)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				result := summary.Result
				fmt.Fprintln(out, tableSpec{
					title:   summary.Course.Title,
					headers: []string{"Step", "Result"},
					rows: [][]string{
						{"Converter", summary.Converter},
						{"Documents", strconv.Itoa(result.Groups)},
						{"Extracted", strconv.Itoa(result.Extracted)},
						{"Skipped", strconv.Itoa(result.Skipped)},
						{"Paired across sections", strconv.Itoa(result.Paired)},
						{"Problems", strconv.Itoa(result.Problems)},
						{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
					},
				}.render())
				if logPath != "" {
					fmt.Fprintf(out, "Run log: %s\n", logPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip preflight checks")
	return cmd
}
