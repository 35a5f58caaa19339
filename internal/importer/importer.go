// Package importer loads community listings from JSON, CSV, and XLSX files
// into the store.
package importer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/directory"
	"github.com/harborview-living/directory-cli/internal/fetcher"
	"github.com/harborview-living/directory-cli/internal/model"
)

// ReadCommunities parses a community listing file. The format is chosen by
// file extension: .json, .csv, or .xlsx.
func ReadCommunities(ctx context.Context, path string) ([]model.Community, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readJSON(ctx, path)
	case ".csv":
		return readCSV(ctx, path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, eris.Errorf("importer: unsupported file type %q", filepath.Ext(path))
	}
}

func readJSON(ctx context.Context, path string) ([]model.Community, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open json")
	}
	defer f.Close() //nolint:errcheck

	rawCh, errCh := fetcher.DecodeJSONArray[directory.RawCommunity](ctx, f)

	var raws []directory.RawCommunity
	for raw := range rawCh {
		raws = append(raws, raw)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "importer: parse json")
	}

	communities := directory.NormalizeAll(raws)
	logSkipped(len(raws), len(communities))
	return communities, nil
}

func readCSV(ctx context.Context, path string) ([]model.Community, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: open csv")
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		TrimSpace: true,
	})

	var cols map[string]int
	var raws []directory.RawCommunity
	for row := range rowCh {
		if cols == nil {
			select {
			case header := <-headerCh:
				cols = columnIndex(header)
			default:
				return nil, eris.New("importer: csv header not received")
			}
		}
		raws = append(raws, rowToRaw(row, cols))
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrap(err, "importer: parse csv")
	}
	if cols == nil {
		// Header-only or empty file.
		return []model.Community{}, nil
	}

	communities := directory.NormalizeAll(raws)
	logSkipped(len(raws), len(communities))
	return communities, nil
}

func readXLSX(path string) ([]model.Community, error) {
	rows, err := fetcher.ReadXLSX(path)
	if err != nil {
		return nil, eris.Wrap(err, "importer: read xlsx")
	}
	if len(rows) == 0 {
		return []model.Community{}, nil
	}

	cols := columnIndex(rows[0])
	raws := make([]directory.RawCommunity, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raws = append(raws, rowToRaw(row, cols))
	}

	communities := directory.NormalizeAll(raws)
	logSkipped(len(raws), len(communities))
	return communities, nil
}

// columnIndex maps lowercased header names to their positions. Spaces and
// underscores are squashed so "Care Types" and "care_types" both match.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "")
		key = strings.ReplaceAll(key, "_", "")
		if key != "" {
			cols[key] = i
		}
	}
	return cols
}

func rowToRaw(row []string, cols map[string]int) directory.RawCommunity {
	cell := func(names ...string) string {
		for _, name := range names {
			if i, ok := cols[name]; ok && i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	raw := directory.RawCommunity{
		ID:            cell("id"),
		Name:          cell("name", "community", "communityname"),
		Location:      cell("location", "address"),
		Zip:           cell("zip", "zipcode", "postalcode"),
		CareTypesText: cell("caretypes", "care"),
		Image:         cell("image", "imageurl"),
		Description:   cell("description"),
	}
	if tags := cell("amenities", "services"); tags != "" {
		raw.Amenities = splitList(tags)
	}
	if v := cell("lat", "latitude"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			raw.Lat = &lat
		}
	}
	if v := cell("lng", "lon", "longitude"); v != "" {
		if lng, err := strconv.ParseFloat(v, 64); err == nil {
			raw.Lng = &lng
		}
	}
	if v := cell("rating"); v != "" {
		if rating, err := strconv.ParseFloat(v, 64); err == nil {
			raw.Rating = &rating
		}
	}
	return raw
}

// splitList splits a delimited cell on semicolons, or commas when no
// semicolon is present.
func splitList(s string) []string {
	sep := ";"
	if !strings.Contains(s, sep) {
		sep = ","
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// logSkipped reports records dropped during normalization.
func logSkipped(parsed, kept int) {
	if skipped := parsed - kept; skipped > 0 {
		zap.L().Warn("skipped records with no id or name", zap.Int("skipped", skipped))
	}
}
