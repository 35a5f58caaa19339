package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/importer"
)

var importFilePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import communities from a JSON, CSV, or XLSX file",
	Long:  "Reads a community directory file, normalizes and validates each record, backfills missing coordinates from the gazetteer, and upserts into the store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path := importFilePath
		if path == "" {
			path = cfg.Directory.FilePath
		}
		if path == "" {
			return eris.New("import: no input file (use --file or directory.file_path)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "import: migrate")
		}

		communities, err := importer.ReadCommunities(ctx, path)
		if err != nil {
			return eris.Wrap(err, "import: read communities")
		}
		if len(communities) == 0 {
			return eris.Errorf("import: no valid communities in %s", path)
		}

		gaz, closeGaz, err := initGazetteer()
		if err != nil {
			return err
		}
		defer closeGaz()

		filled, err := importer.BackfillCoordinates(ctx, gaz, communities)
		if err != nil {
			return eris.Wrap(err, "import: backfill coordinates")
		}

		count, err := st.UpsertCommunities(ctx, communities)
		if err != nil {
			return eris.Wrap(err, "import: upsert communities")
		}

		zap.L().Info("import complete",
			zap.String("file", path),
			zap.Int64("communities", count),
			zap.Int("coordinates_backfilled", filled),
		)
		fmt.Printf("Imported %d communities (%d coordinates backfilled)\n", count, filled)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "community directory file (default from config)")
	rootCmd.AddCommand(importCmd)
}
