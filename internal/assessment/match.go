package assessment

import (
	"fmt"
	"strings"

	"github.com/harborview-living/directory-cli/internal/model"
)

// maxMatches caps the "Top Matched Communities" list.
const maxMatches = 3

// highlightAmenities are the amenities worth calling out per care type, in
// preference order. The first one a community carries becomes its
// distinguishing attribute in the match reason.
var highlightAmenities = map[model.CareType][]string{
	model.CareTypeMemoryCare:        {"Secured Memory Neighborhood", "Life Enrichment Programs", "24/7 Staffing"},
	model.CareTypeAssistedLiving:    {"Medication Management", "Restaurant-Style Dining", "Housekeeping"},
	model.CareTypeIndependentLiving: {"Fitness Center", "Social Calendar", "Transportation"},
	model.CareTypeSkilledNursing:    {"Rehabilitation Gym", "24/7 Nursing", "Physician Visits"},
}

// MatchCommunities selects up to three communities whose care-type tags
// intersect the required tags, preferring ones with a real description and
// an image, in input order. Never padded with non-matching entries.
func MatchCommunities(communities []model.Community, category model.RecommendationCategory, required []model.CareType) []model.MatchedCommunity {
	matches := make([]model.MatchedCommunity, 0, maxMatches)

	// Two passes keep input order within each preference tier.
	appendMatching := func(preferredOnly bool) {
		for _, c := range communities {
			if len(matches) == maxMatches {
				return
			}
			if !c.HasAnyCareType(required) {
				continue
			}
			if preferredOnly != isPreferred(c) {
				continue
			}
			if contains(matches, c.ID) {
				continue
			}
			matches = append(matches, model.MatchedCommunity{
				Community: c,
				Reason:    matchReason(c, category, required),
			})
		}
	}
	appendMatching(true)
	appendMatching(false)

	return matches
}

// isPreferred reports whether the community has a non-placeholder
// description and an image.
func isPreferred(c model.Community) bool {
	desc := strings.TrimSpace(c.Description)
	if desc == "" || strings.Contains(strings.ToLower(desc), "coming soon") {
		return false
	}
	return c.ImageURL != ""
}

// matchReason builds the one-sentence justification: the recommended
// category plus at most one distinguishing amenity.
func matchReason(c model.Community, category model.RecommendationCategory, required []model.CareType) string {
	var offered model.CareType
	for _, ct := range required {
		if c.HasCareType(ct) {
			offered = ct
			break
		}
	}

	if amenity, ok := distinguishingAmenity(c, offered); ok {
		return fmt.Sprintf("%s offers %s with %s.", c.Name, offered, amenity)
	}
	return fmt.Sprintf("%s offers %s.", c.Name, offered)
}

func distinguishingAmenity(c model.Community, ct model.CareType) (string, bool) {
	for _, want := range highlightAmenities[ct] {
		for _, have := range c.Amenities {
			if strings.EqualFold(have, want) {
				return have, true
			}
		}
	}
	if len(c.Amenities) > 0 {
		return c.Amenities[0], true
	}
	return "", false
}

func contains(matches []model.MatchedCommunity, id string) bool {
	for _, m := range matches {
		if m.Community.ID == id {
			return true
		}
	}
	return false
}
