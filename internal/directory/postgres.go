package directory

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/harborview-living/directory-cli/internal/db"
	"github.com/harborview-living/directory-cli/internal/model"
)

// PostgresProvider reads the community roster from the primary database,
// the first rung of the fallback chain.
type PostgresProvider struct {
	pool db.Pool
}

// NewPostgresProvider creates a PostgresProvider over the given pool.
func NewPostgresProvider(pool db.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// Name implements Provider.
func (p *PostgresProvider) Name() string { return "postgres" }

const listCommunitiesQuery = `
	SELECT id, name, location, zip, lat, lng, care_types, amenities, description, image_url, rating
	FROM communities
	ORDER BY position, id`

// Load implements Provider. Rows come back in the curated display order and
// pass through the same normalization as every other source.
func (p *PostgresProvider) Load(ctx context.Context) ([]model.Community, error) {
	if p.pool == nil {
		return nil, ErrNoData
	}

	rows, err := p.pool.Query(ctx, listCommunitiesQuery)
	if err != nil {
		return nil, eris.Wrap(err, "directory: query communities")
	}
	defer rows.Close()

	var raws []RawCommunity
	for rows.Next() {
		var r RawCommunity
		var careTypes, amenities []string
		if err := rows.Scan(&r.ID, &r.Name, &r.Location, &r.Zip, &r.Lat, &r.Lng,
			&careTypes, &amenities, &r.Description, &r.Image, &r.Rating); err != nil {
			return nil, eris.Wrap(err, "directory: scan community")
		}
		r.CareTypes = careTypes
		r.Amenities = amenities
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "directory: iterate communities")
	}

	communities := NormalizeAll(raws)
	if len(communities) == 0 {
		return nil, ErrNoData
	}
	return communities, nil
}
