package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-living/directory-cli/internal/model"
)

func TestLeadRecordBasicFields(t *testing.T) {
	record := LeadRecord(model.Lead{
		FirstName: "Dorothy",
		LastName:  "Whitfield",
		Email:     "dorothy@example.com",
		Phone:     "216-555-0142",
		Zip:       "44120",
	}, nil)

	assert.Equal(t, "Dorothy", record["FirstName"])
	assert.Equal(t, "Whitfield", record["LastName"])
	assert.Equal(t, "Whitfield Household", record["Company"])
	assert.Equal(t, "216-555-0142", record["Phone"])
	assert.Equal(t, "44120", record["PostalCode"])
	assert.Equal(t, "Community Finder", record["LeadSource"])
}

func TestLeadRecordOmitsEmptyOptionalFields(t *testing.T) {
	record := LeadRecord(model.Lead{FirstName: "Al", LastName: "Novak", Email: "al@example.com"}, nil)

	_, hasPhone := record["Phone"]
	_, hasZip := record["PostalCode"]
	_, hasDesc := record["Description"]
	assert.False(t, hasPhone)
	assert.False(t, hasZip)
	assert.False(t, hasDesc)
}

func TestLeadRecordDescription(t *testing.T) {
	record := LeadRecord(model.Lead{
		LastName: "Whitfield",
		Recommendation: &model.Recommendation{
			Title:   "Memory Care",
			Score:   9,
			Reasons: []string{"You indicated: A dementia or Alzheimer's diagnosis."},
		},
		CommunityIDs: []string{"maplewood-commons", "unknown-id"},
	}, map[string]string{"maplewood-commons": "Maplewood Commons"})

	desc, ok := record["Description"].(string)
	require.True(t, ok)
	assert.Contains(t, desc, "Assessment result: Memory Care (score 9.0).")
	assert.Contains(t, desc, "You indicated: A dementia or Alzheimer's diagnosis.")
	// Unknown community IDs fall back to the raw ID.
	assert.Contains(t, desc, "Interested in: Maplewood Commons, unknown-id.")
}

func TestHouseholdFallbacks(t *testing.T) {
	assert.Equal(t, "Novak Household", household(model.Lead{LastName: "Novak"}))
	assert.Equal(t, "Al Household", household(model.Lead{FirstName: "Al"}))
	assert.Equal(t, "Unknown Household", household(model.Lead{}))
}
