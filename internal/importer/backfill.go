package importer

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harborview-living/directory-cli/internal/geo"
	"github.com/harborview-living/directory-cli/internal/model"
)

// backfillWorkers bounds concurrent gazetteer lookups.
const backfillWorkers = 8

// BackfillCoordinates fills missing community coordinates from their zip
// centroids. Communities whose zip is unknown to the gazetteer are left
// untouched. Returns the number of communities updated.
func BackfillCoordinates(ctx context.Context, gaz geo.Gazetteer, communities []model.Community) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillWorkers)

	var mu sync.Mutex
	filled := 0

	for i := range communities {
		if communities[i].Coordinate != nil || communities[i].Zip == "" {
			continue
		}

		g.Go(func() error {
			coord, ok, err := gaz.Resolve(ctx, communities[i].Zip)
			if err != nil {
				return err
			}
			if !ok {
				zap.L().Debug("no centroid for community zip",
					zap.String("community_id", communities[i].ID),
					zap.String("zip", communities[i].Zip),
				)
				return nil
			}

			mu.Lock()
			communities[i].Coordinate = &coord
			filled++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return filled, err
	}
	return filled, nil
}
