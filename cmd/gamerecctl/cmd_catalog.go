package main

import (
	"fmt"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/yungbote/gamerec-backend/internal/catalog"
)

func newCatalogCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the game catalog",
	}
	cmd.AddCommand(newCatalogStatsCmd(st))
	return cmd
}

func newCatalogStatsCmd(st *cliState) *cobra.Command {
	var (
		path   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print record count and per-field coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				cfg, err := st.loadConfig()
				if err != nil {
					return err
				}
				path = cfg.Catalog.Path
			}
			store, err := catalog.Load(cmd.Context(), st.logger(), path)
			if err != nil {
				return err
			}
			stats := store.Stats()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "games: %d\n", stats.Total)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tNON-EMPTY\tCOVERAGE")
			for _, fc := range stats.Coverage {
				fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", fc.Field, fc.NonEmpty, fc.Ratio*100)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&path, "catalog", "", "catalog file (default catalog.path)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
