package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-living/directory-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "directory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteCommunityRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	rating := 4.5
	in := []model.Community{
		{
			ID:          "maplewood-commons",
			Name:        "Maplewood Commons",
			Location:    "Shaker Heights, OH",
			Zip:         "44120",
			Coordinate:  &model.Coordinate{Lat: 41.4735, Lng: -81.5784},
			CareTypes:   []model.CareType{model.CareTypeAssistedLiving, model.CareTypeMemoryCare},
			Amenities:   []string{"Chef-prepared dining", "Courtyard garden"},
			Description: "A walkable campus near Shaker Square.",
			ImageURL:    "https://images.harborview.example/maplewood.jpg",
			Rating:      &rating,
		},
		{
			ID:        "lakeshore-terrace",
			Name:      "Lakeshore Terrace",
			Zip:       "44145",
			CareTypes: []model.CareType{model.CareTypeIndependentLiving},
		},
	}

	n, err := s.UpsertCommunities(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.ListCommunities(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Insertion order is preserved via the position column.
	assert.Equal(t, "maplewood-commons", got[0].ID)
	assert.Equal(t, "lakeshore-terrace", got[1].ID)

	require.NotNil(t, got[0].Coordinate)
	assert.InDelta(t, 41.4735, got[0].Coordinate.Lat, 1e-9)
	assert.Equal(t, []model.CareType{model.CareTypeAssistedLiving, model.CareTypeMemoryCare}, got[0].CareTypes)
	assert.Equal(t, []string{"Chef-prepared dining", "Courtyard garden"}, got[0].Amenities)
	require.NotNil(t, got[0].Rating)
	assert.Equal(t, 4.5, *got[0].Rating)

	assert.Nil(t, got[1].Coordinate)
	assert.Nil(t, got[1].Rating)
}

func TestSQLiteUpsertReplacesExisting(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.UpsertCommunities(ctx, []model.Community{
		{ID: "shaker-gardens", Name: "Shaker Gardens", Zip: "44122"},
	})
	require.NoError(t, err)

	_, err = s.UpsertCommunities(ctx, []model.Community{
		{ID: "shaker-gardens", Name: "Shaker Gardens at Van Aken", Zip: "44122"},
	})
	require.NoError(t, err)

	got, err := s.ListCommunities(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Shaker Gardens at Van Aken", got[0].Name)
}

func TestSQLiteLeadLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	created, err := s.CreateLead(ctx, model.Lead{
		FirstName: "Dorothy",
		LastName:  "Whitfield",
		Email:     "dorothy.whitfield@example.com",
		Phone:     "216-555-0142",
		Zip:       "44120",
		Recommendation: &model.Recommendation{
			Category: model.CategoryAssistedLiving,
			Title:    "Assisted Living",
			Score:    7,
		},
		CommunityIDs: []string{"maplewood-commons"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, model.LeadStatusNew, created.Status)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetLead(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dorothy", got.FirstName)
	require.NotNil(t, got.Recommendation)
	assert.Equal(t, model.CategoryAssistedLiving, got.Recommendation.Category)
	assert.Equal(t, []string{"maplewood-commons"}, got.CommunityIDs)
	assert.Nil(t, got.SyncedAt)

	syncedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.MarkLeadSynced(ctx, created.ID, syncedAt))

	got, err = s.GetLead(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusSynced, got.Status)
	require.NotNil(t, got.SyncedAt)
}

func TestSQLiteListLeadsFilter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.CreateLead(ctx, model.Lead{FirstName: "Al", LastName: "Novak", Email: "al@example.com"})
	require.NoError(t, err)
	_, err = s.CreateLead(ctx, model.Lead{FirstName: "Bea", LastName: "Ortiz", Email: "bea@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.MarkLeadSynced(ctx, first.ID, time.Now()))

	pending, err := s.ListLeads(ctx, LeadFilter{Status: model.LeadStatusNew})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Bea", pending[0].FirstName)

	all, err := s.ListLeads(ctx, LeadFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	limited, err := s.ListLeads(ctx, LeadFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteUnknownLead(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.GetLead(ctx, "nope")
	assert.Error(t, err)

	assert.Error(t, s.MarkLeadSynced(ctx, "nope", time.Now()))
	assert.Error(t, s.MarkLeadFailed(ctx, "nope"))
}
