// Package store persists the imported community roster and captured leads.
package store

import (
	"context"
	"time"

	"github.com/harborview-living/directory-cli/internal/model"
)

// LeadFilter specifies criteria for listing leads.
type LeadFilter struct {
	Status model.LeadStatus `json:"status,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}

// Store defines the persistence interface behind the directory and the lead
// capture flow.
type Store interface {
	// Communities
	UpsertCommunities(ctx context.Context, communities []model.Community) (int64, error)
	ListCommunities(ctx context.Context) ([]model.Community, error)

	// Leads
	CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
	GetLead(ctx context.Context, leadID string) (*model.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error)
	MarkLeadSynced(ctx context.Context, leadID string, at time.Time) error
	MarkLeadFailed(ctx context.Context, leadID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
