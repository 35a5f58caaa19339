package directory

import (
	"context"

	"github.com/harborview-living/directory-cli/internal/model"
)

// StaticProvider serves a compiled-in roster, the last rung of the chain.
// The site always has something to render even with no database and no
// export file.
type StaticProvider struct {
	communities []model.Community
}

// NewStaticProvider creates a StaticProvider over a fixed list.
func NewStaticProvider(communities []model.Community) *StaticProvider {
	return &StaticProvider{communities: communities}
}

// NewSeedProvider returns the launch-market roster.
func NewSeedProvider() *StaticProvider {
	return NewStaticProvider(seedCommunities())
}

// Name implements Provider.
func (p *StaticProvider) Name() string { return "static" }

// Load implements Provider.
func (p *StaticProvider) Load(_ context.Context) ([]model.Community, error) {
	if len(p.communities) == 0 {
		return nil, ErrNoData
	}
	out := make([]model.Community, len(p.communities))
	copy(out, p.communities)
	return out, nil
}

func rating(v float64) *float64 { return &v }

// seedCommunities is the hardcoded launch roster for the Cleveland market.
func seedCommunities() []model.Community {
	return []model.Community{
		{
			ID:          "maplewood-commons",
			Name:        "Maplewood Commons",
			Location:    "2255 Larchmere Blvd, Cleveland OH 44120",
			Zip:         "44120",
			CareTypes:   []model.CareType{model.CareTypeAssistedLiving, model.CareTypeMemoryCare},
			Amenities:   []string{"Secured Memory Neighborhood", "Restaurant-Style Dining", "Medication Management"},
			Description: "A quiet campus east of the city with dedicated memory support and chef-prepared dining.",
			ImageURL:    "https://cdn.harborviewliving.com/communities/maplewood-commons.jpg",
			Rating:      rating(4.6),
		},
		{
			ID:          "lakeshore-terrace",
			Name:        "Lakeshore Terrace",
			Location:    "28000 Center Ridge Rd, Westlake OH 44145",
			Zip:         "44145",
			CareTypes:   []model.CareType{model.CareTypeAssistedLiving, model.CareTypeIndependentLiving},
			Amenities:   []string{"Fitness Center", "Transportation", "Housekeeping"},
			Description: "Independent and assisted living apartments minutes from the lakefront.",
			ImageURL:    "https://cdn.harborviewliving.com/communities/lakeshore-terrace.jpg",
			Rating:      rating(4.3),
		},
		{
			ID:          "shaker-gardens",
			Name:        "Shaker Gardens",
			Location:    "3550 Warrensville Center Rd, Shaker Heights OH 44122",
			Zip:         "44122",
			CareTypes:   []model.CareType{model.CareTypeMemoryCare},
			Amenities:   []string{"24/7 Staffing", "Life Enrichment Programs"},
			Description: "Purpose-built memory care neighborhoods in a residential setting.",
			ImageURL:    "https://cdn.harborviewliving.com/communities/shaker-gardens.jpg",
			Rating:      rating(4.8),
		},
		{
			ID:          "riverbend-rehabilitation",
			Name:        "Riverbend Rehabilitation & Care Center",
			Location:    "44 Front St, Berea OH 44017",
			Zip:         "44017",
			CareTypes:   []model.CareType{model.CareTypeSkilledNursing},
			Amenities:   []string{"Rehabilitation Gym", "24/7 Nursing", "Physician Visits"},
			Description: "Short-term rehabilitation and long-term skilled nursing on one campus.",
			ImageURL:    "https://cdn.harborviewliving.com/communities/riverbend.jpg",
			Rating:      rating(4.1),
		},
	}
}
