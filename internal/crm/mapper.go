// Package crm delivers captured leads to Salesforce.
package crm

import (
	"fmt"
	"strings"

	"github.com/harborview-living/directory-cli/internal/model"
)

// leadSource tags every record we create so CRM reports can segment them.
const leadSource = "Community Finder"

// LeadRecord maps a stored lead onto Salesforce Lead fields. communityNames
// resolves the lead's community IDs to display names for the description.
func LeadRecord(lead model.Lead, communityNames map[string]string) map[string]any {
	record := map[string]any{
		"FirstName":  lead.FirstName,
		"LastName":   lead.LastName,
		"Email":      lead.Email,
		"Company":    household(lead),
		"LeadSource": leadSource,
	}
	if lead.Phone != "" {
		record["Phone"] = lead.Phone
	}
	if lead.Zip != "" {
		record["PostalCode"] = lead.Zip
	}
	if desc := describeLead(lead, communityNames); desc != "" {
		record["Description"] = desc
	}
	return record
}

// household fills the Lead sObject's required Company field for consumer leads.
func household(lead model.Lead) string {
	name := strings.TrimSpace(lead.LastName)
	if name == "" {
		name = strings.TrimSpace(lead.FirstName)
	}
	if name == "" {
		return "Unknown Household"
	}
	return name + " Household"
}

func describeLead(lead model.Lead, communityNames map[string]string) string {
	var parts []string

	if rec := lead.Recommendation; rec != nil {
		parts = append(parts, fmt.Sprintf("Assessment result: %s (score %.1f).", rec.Title, rec.Score))
		if len(rec.Reasons) > 0 {
			parts = append(parts, strings.Join(rec.Reasons, " "))
		}
	}

	if len(lead.CommunityIDs) > 0 {
		names := make([]string, 0, len(lead.CommunityIDs))
		for _, id := range lead.CommunityIDs {
			if name, ok := communityNames[id]; ok && name != "" {
				names = append(names, name)
			} else {
				names = append(names, id)
			}
		}
		parts = append(parts, "Interested in: "+strings.Join(names, ", ")+".")
	}

	return strings.Join(parts, "\n")
}
