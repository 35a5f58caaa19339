package directory

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/harborview-living/directory-cli/internal/matcher"
	"github.com/harborview-living/directory-cli/internal/model"
)

// RawCommunity is the loose shape communities arrive in from upstream
// sources: CMS exports, spreadsheets, and the legacy JSON dump all disagree
// on field names. Normalize folds it into the canonical model.Community so
// nothing downstream special-cases missing fields.
type RawCommunity struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	Address       string   `json:"address"`
	Zip           string   `json:"zip"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	CareTypes     []string `json:"careTypes"`
	CareTypesText string   `json:"care_types"`
	Amenities     []string `json:"amenities"`
	Services      []string `json:"services"`
	Image         string   `json:"image"`
	Images        []string `json:"images"`
	Description   string   `json:"description"`
	Rating        *float64 `json:"rating"`
}

var titleCaser = cases.Title(language.AmericanEnglish)

// careTypeAliases maps upstream spellings onto the canonical care types.
var careTypeAliases = map[string]model.CareType{
	"independent living": model.CareTypeIndependentLiving,
	"independent":        model.CareTypeIndependentLiving,
	"assisted living":    model.CareTypeAssistedLiving,
	"assisted":           model.CareTypeAssistedLiving,
	"memory care":        model.CareTypeMemoryCare,
	"alzheimer's care":   model.CareTypeMemoryCare,
	"dementia care":      model.CareTypeMemoryCare,
	"skilled nursing":    model.CareTypeSkilledNursing,
	"nursing home":       model.CareTypeSkilledNursing,
}

// Normalize converts a raw record into the canonical Community shape.
func (r RawCommunity) Normalize() model.Community {
	c := model.Community{
		ID:          strings.TrimSpace(r.ID),
		Name:        normalizeName(r.Name),
		Location:    strings.TrimSpace(firstNonEmpty(r.Location, r.Address)),
		Description: strings.TrimSpace(r.Description),
		ImageURL:    firstNonEmpty(r.Image, first(r.Images)),
		CareTypes:   normalizeCareTypes(r.CareTypes, r.CareTypesText),
		Amenities:   mergeTags(r.Amenities, r.Services),
		Rating:      clampRating(r.Rating),
	}

	if zip, ok := matcher.NormalizeZip(r.Zip); ok {
		c.Zip = zip
	} else if zip, ok := zipFromText(c.Location); ok {
		c.Zip = zip
	}

	if r.Lat != nil && r.Lng != nil {
		c.Coordinate = &model.Coordinate{Lat: *r.Lat, Lng: *r.Lng}
	}

	return c
}

// NormalizeAll converts a batch, dropping records with no ID and no name.
func NormalizeAll(raws []RawCommunity) []model.Community {
	out := make([]model.Community, 0, len(raws))
	for _, r := range raws {
		c := r.Normalize()
		if c.ID == "" && c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// normalizeName fixes shouty or all-lower upstream names; mixed-case names
// pass through untouched.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == strings.ToUpper(name) || name == strings.ToLower(name) {
		return titleCaser.String(strings.ToLower(name))
	}
	return name
}

// normalizeCareTypes canonicalizes care-type tags from either the list field
// or the comma-joined text field. Unknown tags are dropped. Never nil.
func normalizeCareTypes(list []string, text string) []model.CareType {
	tags := list
	if len(tags) == 0 && text != "" {
		tags = strings.Split(text, ",")
	}

	out := make([]model.CareType, 0, len(tags))
	seen := make(map[model.CareType]bool, len(tags))
	for _, tag := range tags {
		ct, ok := careTypeAliases[strings.ToLower(strings.TrimSpace(tag))]
		if !ok || seen[ct] {
			continue
		}
		seen[ct] = true
		out = append(out, ct)
	}
	return out
}

func mergeTags(amenities, services []string) []string {
	var out []string
	seen := make(map[string]bool, len(amenities)+len(services))
	for _, tag := range append(append([]string(nil), amenities...), services...) {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

// zipFromText finds the last standalone 5-digit run in an address string.
// Addresses end in the zip, so the last run wins over street numbers.
func zipFromText(text string) (string, bool) {
	var zip string
	run := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] >= '0' && text[i] <= '9' {
			run++
			continue
		}
		if run == 5 {
			zip = text[i-5 : i]
		}
		run = 0
	}
	if zip == "" {
		return "", false
	}
	return zip, true
}

func clampRating(r *float64) *float64 {
	if r == nil {
		return nil
	}
	v := *r
	if v < 0 {
		v = 0
	}
	if v > 5 {
		v = 5
	}
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
