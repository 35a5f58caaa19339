package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/geo"
)

var (
	geoLoadURL  string
	geoLoadFile string
)

var geoLoadCmd = &cobra.Command{
	Use:   "load-zcta",
	Short: "Load Census ZCTA centroids into the gazetteer",
	Long: `Downloads the Census TIGER/Line ZCTA5 shapefile and loads one centroid
per zip code into the SQLite gazetteer. Use --file to load an already-extracted
shapefile instead of downloading.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Gazetteer.SQLitePath == "" {
			return eris.New("geo load-zcta: gazetteer.sqlite_path is not set")
		}

		gaz, err := geo.OpenSQLite(cfg.Gazetteer.SQLitePath)
		if err != nil {
			return eris.Wrap(err, "geo load-zcta: open gazetteer")
		}
		defer gaz.Close()

		if err := gaz.Migrate(ctx); err != nil {
			return eris.Wrap(err, "geo load-zcta: migrate")
		}

		var loaded int
		if geoLoadFile != "" {
			loaded, err = geo.LoadZCTAFile(ctx, gaz, geoLoadFile)
		} else {
			url := geoLoadURL
			if url == "" {
				url = cfg.Gazetteer.ZCTAURL
			}
			loaded, err = geo.ImportZCTA(ctx, gaz, nil, url, cfg.Gazetteer.TempDir)
		}
		if err != nil {
			return eris.Wrap(err, "geo load-zcta")
		}

		zap.L().Info("gazetteer load complete", zap.Int("centroids", loaded))
		fmt.Printf("Loaded %d zip centroids\n", loaded)
		return nil
	},
}

var geoStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gazetteer statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gaz, err := geo.OpenSQLite(cfg.Gazetteer.SQLitePath)
		if err != nil {
			return eris.Wrap(err, "geo status: open gazetteer")
		}
		defer gaz.Close()

		count, err := gaz.Count(ctx)
		if err != nil {
			return eris.Wrap(err, "geo status: count")
		}

		fmt.Printf("Gazetteer:      %s\n", cfg.Gazetteer.SQLitePath)
		fmt.Printf("Zip centroids:  %d\n", count)
		return nil
	},
}

func init() {
	geoLoadCmd.Flags().StringVar(&geoLoadURL, "url", "", "ZCTA shapefile URL (default from config)")
	geoLoadCmd.Flags().StringVar(&geoLoadFile, "file", "", "load from a local .shp file instead of downloading")
	geoCmd.AddCommand(geoLoadCmd)
	geoCmd.AddCommand(geoStatusCmd)
}
