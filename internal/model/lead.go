package model

import "time"

// LeadStatus tracks a captured lead through CRM handoff.
type LeadStatus string

const (
	LeadStatusNew    LeadStatus = "new"
	LeadStatusSynced LeadStatus = "synced"
	LeadStatusFailed LeadStatus = "failed"
)

// Lead is a captured prospect: contact details plus the assessment context
// that produced them. Destined for the CRM via `leads sync`.
type Lead struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Zip       string     `json:"zip,omitempty"`
	// Recommendation is a snapshot taken at capture time; later bank or
	// directory edits do not rewrite it.
	Recommendation *Recommendation `json:"recommendation,omitempty"`
	CommunityIDs   []string        `json:"community_ids,omitempty"`
	Status         LeadStatus      `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	SyncedAt       *time.Time      `json:"synced_at,omitempty"`
}
