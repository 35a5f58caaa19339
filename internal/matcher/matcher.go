// Package matcher implements the proximity search behind "communities near
// you": resolve an origin zip, measure haversine distance to each community,
// filter to a radius, and return the closest few.
package matcher

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/harborview-living/directory-cli/internal/geo"
	"github.com/harborview-living/directory-cli/internal/model"
)

const (
	// DefaultRadiusMiles bounds a nearby search when the caller gives none.
	DefaultRadiusMiles = 20.0
	// DefaultMaxResults caps a nearby search when the caller gives none.
	DefaultMaxResults = 5
)

// Options tunes a nearby search. Zero values take the defaults; values at or
// below zero after defaulting are clamped to 1 rather than rejected, since
// this runs in the presentation tier where resilience beats strictness.
type Options struct {
	RadiusMiles float64
	MaxResults  int
}

func (o Options) normalized() Options {
	if o.RadiusMiles == 0 {
		o.RadiusMiles = DefaultRadiusMiles
	}
	if o.MaxResults == 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.RadiusMiles <= 0 {
		o.RadiusMiles = 1
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 1
	}
	return o
}

// Matcher performs proximity searches against an in-memory community list.
type Matcher struct {
	gazetteer geo.Gazetteer
}

// New creates a Matcher over the given gazetteer.
func New(gazetteer geo.Gazetteer) *Matcher {
	return &Matcher{gazetteer: gazetteer}
}

// Nearby returns the communities within the radius of the origin zip,
// ascending by distance, capped at MaxResults. The result is never nil.
//
// An origin zip absent from the gazetteer yields an empty result so the
// caller can render a neutral empty state. Communities whose coordinate
// cannot be resolved are excluded without error. Ties in distance keep the
// input order of the community list.
func (m *Matcher) Nearby(ctx context.Context, originZip string, communities []model.Community, opts Options) ([]model.CommunityWithDistance, error) {
	opts = opts.normalized()
	results := []model.CommunityWithDistance{}

	origin, ok, err := m.gazetteer.Resolve(ctx, originZip)
	if err != nil {
		return nil, eris.Wrapf(err, "matcher: resolve origin %s", originZip)
	}
	if !ok {
		zap.L().Debug("matcher: origin zip not in gazetteer", zap.String("zip", originZip))
		return results, nil
	}

	for _, c := range communities {
		coord, ok, err := m.resolveCommunity(ctx, c)
		if err != nil {
			return nil, eris.Wrapf(err, "matcher: resolve community %s", c.ID)
		}
		if !ok {
			continue
		}

		dist := geo.DistanceMiles(origin, coord)
		if dist > opts.RadiusMiles {
			continue
		}

		results = append(results, model.CommunityWithDistance{
			Community:       c,
			DistanceMiles:   dist,
			DistanceDisplay: geo.RoundMiles(dist),
		})
	}

	// Stable: equal distances keep community input order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceMiles < results[j].DistanceMiles
	})

	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	return results, nil
}

// resolveCommunity returns the community's coordinate. An explicit
// coordinate wins over the zip lookup.
func (m *Matcher) resolveCommunity(ctx context.Context, c model.Community) (model.Coordinate, bool, error) {
	if c.Coordinate != nil {
		return *c.Coordinate, true, nil
	}
	if c.Zip == "" {
		return model.Coordinate{}, false, nil
	}
	return m.gazetteer.Resolve(ctx, c.Zip)
}
