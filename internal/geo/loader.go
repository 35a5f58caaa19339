package geo

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/fetcher"
	"github.com/harborview-living/directory-cli/internal/model"
)

// DefaultZCTAURL is the Census Bureau ZCTA5 shapefile for the current vintage.
const DefaultZCTAURL = "https://www2.census.gov/geo/tiger/TIGER2024/ZCTA520/tl_2024_us_zcta520.zip"

// upsertBatchSize bounds transaction size during the ZCTA load.
const upsertBatchSize = 5000

// ImportZCTA downloads the Census ZCTA5 shapefile and loads one centroid per
// zip code into the gazetteer. The DBF's internal point (INTPTLAT/INTPTLON)
// is used when present; otherwise the polygon centroid is computed. The
// archive ETag from the last load is sent back on re-runs, so an unchanged
// vintage costs one conditional request and keeps the loaded centroids.
func ImportZCTA(ctx context.Context, gaz *SQLiteGazetteer, f fetcher.Fetcher, url, tempDir string) (int, error) {
	if f == nil {
		f = fetcher.NewHTTPFetcher(fetcher.HTTPOptions{RateLimiters: fetcher.DefaultRateLimiters()})
	}
	if url == "" {
		url = DefaultZCTAURL
	}

	log := zap.L().With(zap.String("component", "geo.loader"))

	if err := gaz.Migrate(ctx); err != nil {
		return 0, err
	}
	loaded, err := gaz.Count(ctx)
	if err != nil {
		return 0, err
	}
	// Only vouch for the stored ETag when the centroids it describes are
	// actually present.
	etag := ""
	if loaded > 0 {
		if etag, err = gaz.ETag(ctx); err != nil {
			return 0, err
		}
	}

	log.Info("checking ZCTA shapefile", zap.String("url", url))
	body, newETag, changed, err := f.DownloadIfChanged(ctx, url, etag)
	if err != nil {
		return 0, eris.Wrap(err, "geo: download ZCTA shapefile")
	}
	if !changed {
		log.Info("ZCTA shapefile unchanged, keeping loaded centroids",
			zap.String("etag", etag), zap.Int("records", loaded))
		return loaded, nil
	}
	defer body.Close() //nolint:errcheck

	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return 0, eris.Wrap(err, "geo: create temp dir")
	}
	zipPath := filepath.Join(tempDir, filepath.Base(url))
	if err := writeFile(zipPath, body); err != nil {
		return 0, err
	}

	extractDir := filepath.Join(tempDir, "zcta")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return 0, eris.Wrap(err, "geo: create extract dir")
	}
	if _, err := fetcher.ExtractZIP(zipPath, extractDir); err != nil {
		return 0, eris.Wrap(err, "geo: extract ZCTA ZIP")
	}

	shpPath, err := findFileByExt(extractDir, ".shp")
	if err != nil {
		return 0, eris.Wrap(err, "geo: find .shp file")
	}

	loaded, err = LoadZCTAFile(ctx, gaz, shpPath)
	if err != nil {
		return loaded, err
	}
	if newETag != "" {
		if err := gaz.SetETag(ctx, newETag); err != nil {
			return loaded, err
		}
	}
	return loaded, nil
}

func writeFile(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "geo: create download file")
	}
	defer out.Close() //nolint:errcheck
	if _, err := io.Copy(out, r); err != nil {
		return eris.Wrap(err, "geo: write download file")
	}
	return nil
}

// LoadZCTAFile reads an already-extracted ZCTA shapefile into the gazetteer.
// Returns the number of centroids loaded.
func LoadZCTAFile(ctx context.Context, gaz *SQLiteGazetteer, shpPath string) (int, error) {
	log := zap.L().With(zap.String("component", "geo.loader"), zap.String("shapefile", shpPath))

	reader, err := shp.Open(shpPath)
	if err != nil {
		return 0, eris.Wrap(err, "geo: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	zctaIdx := fieldIndex(reader, "ZCTA5CE20")
	if zctaIdx < 0 {
		zctaIdx = fieldIndex(reader, "ZCTA5CE10")
	}
	latIdx := fieldPrefixIndex(reader, "INTPTLAT")
	lonIdx := fieldPrefixIndex(reader, "INTPTLON")
	if zctaIdx < 0 {
		return 0, eris.New("geo: ZCTA5CE field not found in shapefile")
	}

	if err := gaz.Migrate(ctx); err != nil {
		return 0, err
	}

	batch := make(map[string]model.Coordinate, upsertBatchSize)
	loaded := 0
	flush := func() error {
		n, err := gaz.Upsert(ctx, batch)
		loaded += n
		batch = make(map[string]model.Coordinate, upsertBatchSize)
		return err
	}

	for reader.Next() {
		if ctx.Err() != nil {
			return loaded, ctx.Err()
		}

		_, shape := reader.Shape()
		zcta := strings.TrimSpace(reader.Attribute(zctaIdx))
		if zcta == "" {
			continue
		}

		coord, ok := internalPoint(reader, latIdx, lonIdx)
		if !ok {
			coord, ok = shapeCentroid(shape)
		}
		if !ok {
			log.Debug("no usable centroid for ZCTA", zap.String("zcta", zcta))
			continue
		}

		batch[zcta] = coord
		if len(batch) >= upsertBatchSize {
			if err := flush(); err != nil {
				return loaded, err
			}
		}
	}
	if err := flush(); err != nil {
		return loaded, err
	}

	log.Info("ZCTA centroids loaded", zap.Int("records", loaded))
	return loaded, nil
}

// internalPoint reads the Census-provided internal point attributes.
// Longitude values carry a leading "+" or "-" sign in the DBF.
func internalPoint(reader *shp.Reader, latIdx, lonIdx int) (model.Coordinate, bool) {
	if latIdx < 0 || lonIdx < 0 {
		return model.Coordinate{}, false
	}
	lat, latErr := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(reader.Attribute(latIdx)), "+"), 64)
	lng, lonErr := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(reader.Attribute(lonIdx)), "+"), 64)
	if latErr != nil || lonErr != nil || (lat == 0 && lng == 0) {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Lat: lat, Lng: lng}, true
}

// shapeCentroid computes the centroid of a polygon shape.
func shapeCentroid(shape shp.Shape) (model.Coordinate, bool) {
	poly, ok := shape.(*shp.Polygon)
	if !ok || len(poly.Points) == 0 {
		return model.Coordinate{}, false
	}

	flat := make([]float64, 0, len(poly.Points)*2)
	for _, p := range poly.Points {
		flat = append(flat, p.X, p.Y)
	}
	ends := make([]int, 0, len(poly.Parts))
	for i, start := range poly.Parts {
		end := len(flat)
		if i+1 < len(poly.Parts) {
			end = int(poly.Parts[i+1]) * 2
		}
		if int(start)*2 < end {
			ends = append(ends, end)
		}
	}
	if len(ends) == 0 {
		ends = []int{len(flat)}
	}

	g := geom.NewPolygonFlat(geom.XY, flat, ends)
	centroid, err := xy.Centroid(g)
	if err != nil || len(centroid) < 2 {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Lat: centroid[1], Lng: centroid[0]}, true
}

// fieldIndex returns the index of a named DBF field, or -1.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(string(f.Name[:]), "\x00"), name) {
			return i
		}
	}
	return -1
}

// fieldPrefixIndex matches vintage-suffixed fields such as INTPTLAT20.
func fieldPrefixIndex(reader *shp.Reader, prefix string) int {
	for i, f := range reader.Fields() {
		name := strings.TrimRight(string(f.Name[:]), "\x00")
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			return i
		}
	}
	return -1
}

// findFileByExt returns the first file in dir with the given extension.
func findFileByExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read dir")
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", eris.Errorf("no %s file found in %s", ext, dir)
}
