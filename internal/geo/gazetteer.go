package geo

import (
	"context"
	"strings"

	"github.com/harborview-living/directory-cli/internal/model"
)

// Gazetteer resolves a 5-digit postal code to a coordinate. The second
// return value is false when the code is not in the dataset; that is an
// expected miss, not an error.
type Gazetteer interface {
	Resolve(ctx context.Context, zip string) (model.Coordinate, bool, error)
}

// StaticGazetteer is an in-memory Gazetteer backed by a fixed table. Used as
// the last-resort fallback and in tests.
type StaticGazetteer struct {
	table map[string]model.Coordinate
}

// NewStaticGazetteer builds a StaticGazetteer from a zip → coordinate map.
func NewStaticGazetteer(table map[string]model.Coordinate) *StaticGazetteer {
	cp := make(map[string]model.Coordinate, len(table))
	for zip, coord := range table {
		cp[strings.TrimSpace(zip)] = coord
	}
	return &StaticGazetteer{table: cp}
}

// Resolve implements Gazetteer.
func (g *StaticGazetteer) Resolve(_ context.Context, zip string) (model.Coordinate, bool, error) {
	coord, ok := g.table[strings.TrimSpace(zip)]
	return coord, ok, nil
}

// clevelandSeed covers the Cleveland metro zips the directory launched with.
// The full national dataset lives in the SQLite gazetteer loaded via
// `geo load-zcta`; this seed keeps nearby search working before that import.
var clevelandSeed = map[string]model.Coordinate{
	"44106": {Lat: 41.5090, Lng: -81.6090},
	"44118": {Lat: 41.5010, Lng: -81.5560},
	"44120": {Lat: 41.4735, Lng: -81.5784},
	"44122": {Lat: 41.4650, Lng: -81.5050},
	"44124": {Lat: 41.5020, Lng: -81.4650},
	"44139": {Lat: 41.3820, Lng: -81.4400},
	"44145": {Lat: 41.4530, Lng: -81.9180},
	"44017": {Lat: 41.3690, Lng: -81.8040},
	"44040": {Lat: 41.5860, Lng: -81.4090},
	"44060": {Lat: 41.6900, Lng: -81.3420},
}

// NewSeedGazetteer returns a StaticGazetteer preloaded with the launch-market
// seed table.
func NewSeedGazetteer() *StaticGazetteer {
	return NewStaticGazetteer(clevelandSeed)
}

// Cascade tries gazetteers in order and returns the first hit. Lookup errors
// fall through to the next source; only the last source's error is surfaced
// when every source misses with an error.
type Cascade struct {
	sources []Gazetteer
}

// NewCascade builds a Cascade over the given sources.
func NewCascade(sources ...Gazetteer) *Cascade {
	return &Cascade{sources: sources}
}

// Resolve implements Gazetteer.
func (c *Cascade) Resolve(ctx context.Context, zip string) (model.Coordinate, bool, error) {
	var lastErr error
	for _, src := range c.sources {
		coord, ok, err := src.Resolve(ctx, zip)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return coord, true, nil
		}
	}
	return model.Coordinate{}, false, lastErr
}
