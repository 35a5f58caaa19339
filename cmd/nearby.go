package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/harborview-living/directory-cli/internal/matcher"
	"github.com/harborview-living/directory-cli/internal/model"
)

var (
	nearbyRadius float64
	nearbyLimit  int
	nearbyFormat string
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby <zip>",
	Short: "List communities near a zip code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		zip, ok := matcher.NormalizeZip(args[0])
		if !ok {
			return eris.Errorf("nearby: %q is not a 5-digit US zip code", args[0])
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		gaz, closeGaz, err := initGazetteer()
		if err != nil {
			return err
		}
		defer closeGaz()

		communities, err := st.ListCommunities(ctx)
		if err != nil {
			return eris.Wrap(err, "nearby: list communities")
		}

		opts := matcher.Options{RadiusMiles: cfg.Matcher.RadiusMiles, MaxResults: cfg.Matcher.MaxResults}
		if nearbyRadius > 0 {
			opts.RadiusMiles = nearbyRadius
		}
		if nearbyLimit > 0 {
			opts.MaxResults = nearbyLimit
		}

		results, err := matcher.New(gaz).Nearby(ctx, zip, communities, opts)
		if err != nil {
			return eris.Wrap(err, "nearby")
		}

		if nearbyFormat == "csv" {
			return writeNearbyCSV(results)
		}

		if len(results) == 0 {
			fmt.Printf("No communities within %.0f miles of %s\n", opts.RadiusMiles, zip)
			return nil
		}

		fmt.Printf("%-30s %-8s %-10s %s\n", "Community", "Zip", "Distance", "Care Types")
		fmt.Println(strings.Repeat("-", 72))
		for _, r := range results {
			fmt.Printf("%-30s %-8s %7.1f mi %s\n", r.Name, r.Zip, r.DistanceDisplay, strings.Join(careTypeStrings(r.CareTypes), ", "))
		}
		return nil
	},
}

func writeNearbyCSV(results []model.CommunityWithDistance) error {
	w := csv.NewWriter(os.Stdout)
	if err := w.Write([]string{"id", "name", "zip", "distance_miles", "care_types"}); err != nil {
		return eris.Wrap(err, "nearby: write csv")
	}
	for _, r := range results {
		record := []string{
			r.ID, r.Name, r.Zip,
			strconv.FormatFloat(r.DistanceDisplay, 'f', 1, 64),
			strings.Join(careTypeStrings(r.CareTypes), "; "),
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "nearby: write csv")
		}
	}
	w.Flush()
	return eris.Wrap(w.Error(), "nearby: flush csv")
}

func careTypeStrings(careTypes []model.CareType) []string {
	out := make([]string, len(careTypes))
	for i, ct := range careTypes {
		out[i] = string(ct)
	}
	return out
}

func init() {
	nearbyCmd.Flags().Float64Var(&nearbyRadius, "radius", 0, "search radius in miles (default from config)")
	nearbyCmd.Flags().IntVar(&nearbyLimit, "limit", 0, "maximum results (default from config)")
	nearbyCmd.Flags().StringVar(&nearbyFormat, "format", "table", "output format: table or csv")
	rootCmd.AddCommand(nearbyCmd)
}
