// Package model defines the domain types shared across the directory pipeline.
package model

// CareType is a category of senior-living service.
type CareType string

const (
	CareTypeIndependentLiving CareType = "Independent Living"
	CareTypeAssistedLiving    CareType = "Assisted Living"
	CareTypeMemoryCare        CareType = "Memory Care"
	CareTypeSkilledNursing    CareType = "Skilled Nursing"
)

// AllCareTypes lists every recognized care type in display order.
var AllCareTypes = []CareType{
	CareTypeIndependentLiving,
	CareTypeAssistedLiving,
	CareTypeMemoryCare,
	CareTypeSkilledNursing,
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Community is a single senior-living community in the directory.
// Records are normalized at the provider boundary; CareTypes is never nil
// (empty slice when unknown) and Zip, when set, is exactly five digits.
type Community struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Zip         string      `json:"zip,omitempty"`
	Coordinate  *Coordinate `json:"coordinate,omitempty"`
	CareTypes   []CareType  `json:"care_types"`
	Amenities   []string    `json:"amenities,omitempty"`
	Description string      `json:"description,omitempty"`
	ImageURL    string      `json:"image_url,omitempty"`
	Rating      *float64    `json:"rating,omitempty"`
}

// HasCareType reports whether the community offers the given care type.
func (c Community) HasCareType(ct CareType) bool {
	for _, have := range c.CareTypes {
		if have == ct {
			return true
		}
	}
	return false
}

// HasAnyCareType reports whether the community offers at least one of the
// given care types.
func (c Community) HasAnyCareType(cts []CareType) bool {
	for _, ct := range cts {
		if c.HasCareType(ct) {
			return true
		}
	}
	return false
}

// CommunityWithDistance annotates a community with its computed distance
// from a query origin. Derived per query, never persisted.
type CommunityWithDistance struct {
	Community
	// DistanceMiles retains full precision for sorting.
	DistanceMiles float64 `json:"distance_miles"`
	// DistanceDisplay is DistanceMiles rounded to one decimal place.
	DistanceDisplay float64 `json:"distance_display"`
}
