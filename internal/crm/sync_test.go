package crm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-living/directory-cli/internal/model"
	"github.com/harborview-living/directory-cli/internal/resilience"
	"github.com/harborview-living/directory-cli/internal/store"
	"github.com/harborview-living/directory-cli/pkg/salesforce"
)

type fakeStore struct {
	leads       []model.Lead
	communities []model.Community
	synced      []string
	failed      []string
	listErr     error
}

func (f *fakeStore) UpsertCommunities(context.Context, []model.Community) (int64, error) {
	return 0, nil
}

func (f *fakeStore) ListCommunities(context.Context) ([]model.Community, error) {
	return f.communities, nil
}

func (f *fakeStore) CreateLead(_ context.Context, lead model.Lead) (*model.Lead, error) {
	return &lead, nil
}

func (f *fakeStore) GetLead(context.Context, string) (*model.Lead, error) {
	return nil, errors.New("not found")
}

func (f *fakeStore) ListLeads(_ context.Context, filter store.LeadFilter) ([]model.Lead, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Lead
	for _, l := range f.leads {
		if filter.Status == "" || l.Status == filter.Status {
			out = append(out, l)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeStore) MarkLeadSynced(_ context.Context, leadID string, _ time.Time) error {
	f.synced = append(f.synced, leadID)
	return nil
}

func (f *fakeStore) MarkLeadFailed(_ context.Context, leadID string) error {
	f.failed = append(f.failed, leadID)
	return nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

// fakeCRM implements salesforce.Client with canned query results keyed by email.
type fakeCRM struct {
	existingEmails map[string]string
	rejectEmails   map[string]bool
	insertErr      error
	updateErr      error
	inserted       []map[string]any
	updated        map[string]map[string]any
	queries        []string
}

func (c *fakeCRM) Query(_ context.Context, soql string, out any) error {
	c.queries = append(c.queries, soql)
	leads, ok := out.(*[]salesforce.SFLead)
	if !ok {
		return errors.New("unexpected query output type")
	}
	for email, id := range c.existingEmails {
		if strings.Contains(soql, "'"+email+"'") {
			*leads = []salesforce.SFLead{{ID: id, Email: email}}
		}
	}
	return nil
}

// InsertCollection fails whole-call on insertErr; otherwise each record
// succeeds unless its Email is listed in rejectEmails.
func (c *fakeCRM) InsertCollection(_ context.Context, _ string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	if c.insertErr != nil {
		return nil, c.insertErr
	}
	results := make([]salesforce.CollectionResult, len(records))
	for i, r := range records {
		c.inserted = append(c.inserted, r)
		if email, _ := r["Email"].(string); c.rejectEmails[email] {
			results[i] = salesforce.CollectionResult{Errors: []string{"REQUIRED_FIELD_MISSING"}}
			continue
		}
		results[i] = salesforce.CollectionResult{ID: "00Q000000000001", Success: true}
	}
	return results, nil
}

func (c *fakeCRM) UpdateOne(_ context.Context, _ string, id string, fields map[string]any) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	if c.updated == nil {
		c.updated = make(map[string]map[string]any)
	}
	c.updated[id] = fields
	return nil
}

func newSyncer(st store.Store, client salesforce.Client) *Syncer {
	s := NewSyncer(st, client)
	s.retry = resilience.RetryConfig{MaxAttempts: 1}
	return s
}

func TestSyncPendingDeliversNewLeads(t *testing.T) {
	st := &fakeStore{
		leads: []model.Lead{
			{ID: "lead-1", FirstName: "Dorothy", LastName: "Whitfield", Email: "dorothy@example.com", Zip: "44120", Status: model.LeadStatusNew},
			{ID: "lead-2", FirstName: "Al", LastName: "Novak", Email: "al@example.com", Status: model.LeadStatusNew},
			{ID: "lead-3", FirstName: "Old", LastName: "Synced", Email: "old@example.com", Status: model.LeadStatusSynced},
		},
		communities: []model.Community{{ID: "maplewood-commons", Name: "Maplewood Commons"}},
	}
	client := &fakeCRM{}

	report, err := newSyncer(st, client).SyncPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Synced)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.ElementsMatch(t, []string{"lead-1", "lead-2"}, st.synced)
	require.Len(t, client.inserted, 2)
	assert.Equal(t, "Dorothy", client.inserted[0]["FirstName"])
	assert.Equal(t, "Whitfield Household", client.inserted[0]["Company"])
}

func TestSyncPendingSkipsDuplicates(t *testing.T) {
	st := &fakeStore{
		leads: []model.Lead{
			{ID: "lead-1", FirstName: "Dorothy", LastName: "Whitfield", Email: "dorothy@example.com", Status: model.LeadStatusNew},
		},
	}
	client := &fakeCRM{existingEmails: map[string]string{"dorothy@example.com": "00Q9"}}

	report, err := newSyncer(st, client).SyncPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, client.inserted)
	// Duplicates are marked synced so they drop out of the pending queue.
	assert.Equal(t, []string{"lead-1"}, st.synced)
}

func TestSyncPendingRefreshesDuplicateDescription(t *testing.T) {
	st := &fakeStore{
		leads: []model.Lead{
			{
				ID: "lead-1", FirstName: "Dorothy", LastName: "Whitfield",
				Email:  "dorothy@example.com",
				Status: model.LeadStatusNew,
				Recommendation: &model.Recommendation{
					Title: "Memory Care", Score: 9,
					Reasons: []string{"You indicated: Diagnosed dementia or Alzheimer's."},
				},
				CommunityIDs: []string{"maplewood-commons"},
			},
		},
		communities: []model.Community{{ID: "maplewood-commons", Name: "Maplewood Commons"}},
	}
	client := &fakeCRM{existingEmails: map[string]string{"dorothy@example.com": "00Q9"}}

	report, err := newSyncer(st, client).SyncPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, client.inserted)
	assert.Equal(t, []string{"lead-1"}, st.synced)

	// The re-assessment lands on the existing SF lead instead of a new one.
	require.Contains(t, client.updated, "00Q9")
	desc, _ := client.updated["00Q9"]["Description"].(string)
	assert.Contains(t, desc, "Memory Care")
	assert.Contains(t, desc, "Maplewood Commons")
}

func TestSyncPendingDuplicateRefreshFailureMarksFailed(t *testing.T) {
	st := &fakeStore{
		leads: []model.Lead{
			{
				ID: "lead-1", LastName: "Whitfield", Email: "dorothy@example.com",
				Status:         model.LeadStatusNew,
				Recommendation: &model.Recommendation{Title: "Memory Care", Score: 9},
			},
		},
	}
	client := &fakeCRM{
		existingEmails: map[string]string{"dorothy@example.com": "00Q9"},
		updateErr:      errors.New("entity is locked"),
	}

	report, err := newSyncer(st, client).SyncPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"lead-1"}, st.failed)
	assert.Empty(t, st.synced)
}

func TestSyncPendingMarksFailures(t *testing.T) {
	st := &fakeStore{
		leads: []model.Lead{
			{ID: "lead-1", FirstName: "Al", LastName: "Novak", Email: "al@example.com", Status: model.LeadStatusNew},
		},
	}
	client := &fakeCRM{insertErr: errors.New("invalid session")}

	report, err := newSyncer(st, client).SyncPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"lead-1"}, st.failed)
	assert.Empty(t, st.synced)
}

func TestSyncPendingContinuesPastRejectedRecord(t *testing.T) {
	st := &fakeStore{
		leads: []model.Lead{
			{ID: "lead-1", LastName: "Novak", Email: "al@example.com", Status: model.LeadStatusNew},
			{ID: "lead-2", LastName: "Whitfield", Email: "dorothy@example.com", Status: model.LeadStatusNew},
		},
	}
	client := &fakeCRM{rejectEmails: map[string]bool{"al@example.com": true}}

	report, err := newSyncer(st, client).SyncPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"lead-1"}, st.failed)
	assert.Equal(t, []string{"lead-2"}, st.synced)
}

func TestSyncPendingEmptyQueue(t *testing.T) {
	st := &fakeStore{}
	client := &fakeCRM{}

	report, err := newSyncer(st, client).SyncPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, report.Synced+report.Skipped+report.Failed)
	assert.Empty(t, client.queries)
}

func TestSyncPendingRespectsLimit(t *testing.T) {
	st := &fakeStore{
		leads: []model.Lead{
			{ID: "lead-1", LastName: "A", Email: "a@example.com", Status: model.LeadStatusNew},
			{ID: "lead-2", LastName: "B", Email: "b@example.com", Status: model.LeadStatusNew},
		},
	}
	client := &fakeCRM{}

	report, err := newSyncer(st, client).SyncPending(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
}
