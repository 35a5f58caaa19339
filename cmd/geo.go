package main

import "github.com/spf13/cobra"

var geoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Gazetteer management",
	Long:  "Load and inspect the zip-to-coordinate gazetteer used by nearby search and coordinate backfill.",
}

func init() { rootCmd.AddCommand(geoCmd) }
