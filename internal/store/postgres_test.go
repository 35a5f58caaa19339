package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-living/directory-cli/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock), mock
}

func TestPostgresUpsertCommunities(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_communities"}, communityColumns).
		WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "communities"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := s.UpsertCommunities(context.Background(), []model.Community{
		{
			ID:        "maplewood-commons",
			Name:      "Maplewood Commons",
			Location:  "Shaker Heights, OH",
			Zip:       "44120",
			CareTypes: []model.CareType{model.CareTypeAssistedLiving},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_communities"}, communityColumns).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := s.UpsertCommunities(context.Background(), []model.Community{
		{ID: "shaker-gardens", Name: "Shaker Gardens"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListCommunities(t *testing.T) {
	s, mock := newMockStore(t)

	lat, lng, rating := 41.4735, -81.5784, 4.5
	rows := pgxmock.NewRows([]string{
		"id", "name", "location", "zip", "lat", "lng",
		"care_types", "amenities", "description", "image_url", "rating",
	}).AddRow(
		"maplewood-commons", "Maplewood Commons", "Shaker Heights, OH", "44120", &lat, &lng,
		[]string{"Assisted Living"}, []string{"Courtyard garden"}, "A walkable campus.", "", &rating,
	).AddRow(
		"lakeshore-terrace", "Lakeshore Terrace", "Westlake, OH", "44145", nil, nil,
		[]string{"Independent Living"}, []string{}, "", "", nil,
	)

	mock.ExpectQuery("SELECT (.+) FROM communities").WillReturnRows(rows)

	got, err := s.ListCommunities(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []model.CareType{model.CareTypeAssistedLiving}, got[0].CareTypes)
	require.NotNil(t, got[0].Coordinate)
	assert.InDelta(t, 41.4735, got[0].Coordinate.Lat, 1e-9)
	assert.Nil(t, got[1].Coordinate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateLead(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(pgxmock.AnyArg(), "Dorothy", "Whitfield", "dorothy@example.com", "", "44120",
			pgxmock.AnyArg(), pgxmock.AnyArg(), "new", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	lead, err := s.CreateLead(context.Background(), model.Lead{
		FirstName: "Dorothy",
		LastName:  "Whitfield",
		Email:     "dorothy@example.com",
		Zip:       "44120",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, model.LeadStatusNew, lead.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetLead(t *testing.T) {
	s, mock := newMockStore(t)

	created := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "phone", "zip",
		"recommendation", "community_ids", "status", "created_at", "synced_at",
	}).AddRow(
		"lead-1", "Dorothy", "Whitfield", "dorothy@example.com", "", "44120",
		[]byte(`{"category":"Memory Care","title":"Memory Care","score":9}`),
		[]string{"maplewood-commons"}, "new", created, nil,
	)

	mock.ExpectQuery("SELECT (.+) FROM leads WHERE id").
		WithArgs("lead-1").
		WillReturnRows(rows)

	lead, err := s.GetLead(context.Background(), "lead-1")
	require.NoError(t, err)
	require.NotNil(t, lead.Recommendation)
	assert.Equal(t, model.CategoryMemoryCare, lead.Recommendation.Category)
	assert.Equal(t, []string{"maplewood-commons"}, lead.CommunityIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListLeadsByStatus(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "phone", "zip",
		"recommendation", "community_ids", "status", "created_at", "synced_at",
	}).AddRow(
		"lead-2", "Al", "Novak", "al@example.com", "", "",
		nil, []string{}, "new", time.Now().UTC(), nil,
	)

	mock.ExpectQuery("SELECT (.+) FROM leads WHERE status").
		WithArgs("new", 10).
		WillReturnRows(rows)

	leads, err := s.ListLeads(context.Background(), LeadFilter{Status: model.LeadStatusNew, Limit: 10})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Nil(t, leads[0].Recommendation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkLeadSynced(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE leads SET status").
		WithArgs("synced", pgxmock.AnyArg(), "lead-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.MarkLeadSynced(context.Background(), "lead-1", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkLeadSyncedMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE leads SET status").
		WithArgs("synced", pgxmock.AnyArg(), "lead-x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.Error(t, s.MarkLeadSynced(context.Background(), "lead-x", time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
