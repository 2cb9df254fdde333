package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ocwsync/internal/catalog"
	"ocwsync/internal/config"
	"ocwsync/internal/store"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Course catalog maintenance",
	}
	catalogCmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Fetch the public course catalog and upsert it into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, s *store.Store) error {
				logger, _, err := ctx.runLogger(uuid.NewString())
				if err != nil {
					return err
				}
				result, err := catalog.New(cfg.Catalog, s, logger).Sync(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d courses from %d pages (%d reported by the API)\n",
					result.Courses, result.Pages, result.Reported)
				return nil
			})
		},
	})
	return catalogCmd
}
