package directory

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-living/directory-cli/internal/model"
)

var communityColumns = []string{
	"id", "name", "location", "zip", "lat", "lng",
	"care_types", "amenities", "description", "image_url", "rating",
}

func TestPostgresProviderLoads(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	lat, lng := 41.47, -81.58
	mock.ExpectQuery(`SELECT id, name, location`).WillReturnRows(
		pgxmock.NewRows(communityColumns).
			AddRow("maplewood", "Maplewood Commons", "Cleveland OH", "44120", &lat, &lng,
				[]string{"Assisted Living"}, []string{"Dining"}, "A quiet campus.", "https://cdn.example.com/m.jpg", nil).
			AddRow("shaker", "Shaker Gardens", "Shaker Heights OH", "44122", nil, nil,
				[]string{"Memory Care"}, []string{}, "", "", nil),
	)

	got, err := NewPostgresProvider(mock).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "maplewood", got[0].ID)
	require.NotNil(t, got[0].Coordinate)
	assert.Equal(t, 41.47, got[0].Coordinate.Lat)
	assert.Equal(t, []model.CareType{model.CareTypeMemoryCare}, got[1].CareTypes)
	assert.Nil(t, got[1].Coordinate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProviderEmptyIsNoData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, location`).WillReturnRows(pgxmock.NewRows(communityColumns))

	_, err = NewPostgresProvider(mock).Load(context.Background())
	assert.True(t, eris.Is(err, ErrNoData))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProviderNilPoolIsNoData(t *testing.T) {
	_, err := NewPostgresProvider(nil).Load(context.Background())
	assert.True(t, eris.Is(err, ErrNoData))
}

func TestPostgresProviderQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, location`).WillReturnError(eris.New("connection refused"))

	_, err = NewPostgresProvider(mock).Load(context.Background())
	require.Error(t, err)
	assert.False(t, eris.Is(err, ErrNoData))
	assert.NoError(t, mock.ExpectationsWereMet())
}
