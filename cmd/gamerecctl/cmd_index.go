package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/gamerec-backend/internal/app"
	"github.com/yungbote/gamerec-backend/internal/catalog"
	"github.com/yungbote/gamerec-backend/internal/index"
	"github.com/yungbote/gamerec-backend/internal/platform/qdrant"
)

func newIndexCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build and publish embedding artifacts",
	}
	cmd.AddCommand(newIndexBuildCmd(st), newIndexPushQdrantCmd(st))
	return cmd
}

func newIndexBuildCmd(st *cliState) *cobra.Command {
	var (
		catalogPath string
		outDir      string
		batch       int
		workers     int
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Encode the catalog and write embeddings.npy, ids.npy and the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := st.loadConfig()
			if err != nil {
				return err
			}
			log := st.logger()
			if catalogPath == "" {
				catalogPath = cfg.Catalog.Path
			}
			if outDir == "" {
				outDir = cfg.Index.Dir
			}
			if batch <= 0 {
				batch = cfg.Encoder.BatchSize
			}

			store, err := catalog.Load(cmd.Context(), log, catalogPath)
			if err != nil {
				return err
			}
			enc, err := app.NewEncoder(log, cfg.Encoder, 0)
			if err != nil {
				return fmt.Errorf("index build: %w", err)
			}
			a, err := index.Build(cmd.Context(), store.All(), enc, index.BuildOptions{
				BatchSize: batch,
				Workers:   workers,
				Progress: func(done, total int) {
					log.Debug("index build progress", "done", done, "total", total)
				},
			})
			if err != nil {
				return fmt.Errorf("index build: %w", err)
			}
			if err := index.WriteArtifacts(outDir, a); err != nil {
				return fmt.Errorf("index build: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows (dims=%d model=%s) to %s\n", a.Count, a.Dims, a.Model, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (default catalog.path)")
	cmd.Flags().StringVar(&outDir, "out", "", "artifact directory (default index.dir)")
	cmd.Flags().IntVar(&batch, "batch", 0, "texts per encoder call (default encoder.batch_size)")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent encoder calls")
	return cmd
}

func newIndexPushQdrantCmd(st *cliState) *cobra.Command {
	var (
		dir   string
		batch int
	)
	cmd := &cobra.Command{
		Use:   "push-qdrant",
		Short: "Upsert artifact rows into the configured qdrant collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := st.loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Index.Dir
			}
			if batch <= 0 {
				batch = cfg.Index.Qdrant.BatchSize
			}
			a, err := index.LoadArtifacts(dir)
			if err != nil {
				return err
			}
			client, err := qdrant.New(st.logger(), qdrant.Config{
				URL:        cfg.Index.Qdrant.URL,
				Collection: cfg.Index.Qdrant.Collection,
				APIKey:     cfg.Index.Qdrant.APIKey,
				VectorDim:  a.Dims,
				Timeout:    cfg.Index.Qdrant.Timeout,
			})
			if err != nil {
				return err
			}
			pushed, err := index.Push(cmd.Context(), client, a, batch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %d points to %s\n", pushed, client.Collection())
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "artifact directory (default index.dir)")
	cmd.Flags().IntVar(&batch, "batch", 0, "points per upsert (default index.qdrant.batch_size)")
	return cmd
}
