package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview-living/directory-cli/internal/geo"
	"github.com/harborview-living/directory-cli/internal/model"
)

func testGazetteer() geo.Gazetteer {
	return geo.NewStaticGazetteer(map[string]model.Coordinate{
		"44120": {Lat: 41.4735, Lng: -81.5784},
		"44122": {Lat: 41.4650, Lng: -81.5050},
		"44145": {Lat: 41.4530, Lng: -81.9180},
	})
}

func community(id, zip string) model.Community {
	return model.Community{
		ID:        id,
		Name:      "Community " + id,
		Zip:       zip,
		CareTypes: []model.CareType{model.CareTypeAssistedLiving},
	}
}

func TestNormalizeZip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", "44120", "44120", true},
		{"zip plus four", "44120-1234", "", false},
		{"embedded punctuation", "4 41-20", "44120", true},
		{"too short", "4412", "", false},
		{"letters only", "ohio", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeZip(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNearbySortsAscendingByDistance(t *testing.T) {
	m := New(testGazetteer())

	results, err := m.Nearby(context.Background(), "44120", []model.Community{
		community("far", "44145"),
		community("near", "44122"),
	}, Options{RadiusMiles: 20, MaxResults: 5})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "near", results[0].ID)
	assert.Equal(t, "far", results[1].ID)
	assert.Less(t, results[0].DistanceMiles, results[1].DistanceMiles)
	for _, r := range results {
		assert.LessOrEqual(t, r.DistanceMiles, 20.0)
		assert.GreaterOrEqual(t, r.DistanceMiles, 0.0)
		assert.InDelta(t, r.DistanceMiles, r.DistanceDisplay, 0.05)
	}
}

func TestNearbyRadiusFiltering(t *testing.T) {
	m := New(testGazetteer())

	results, err := m.Nearby(context.Background(), "44120", []model.Community{
		community("far", "44145"),
		community("near", "44122"),
	}, Options{RadiusMiles: 10, MaxResults: 5})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].ID)
}

func TestNearbyUnknownOriginReturnsEmpty(t *testing.T) {
	m := New(testGazetteer())

	results, err := m.Nearby(context.Background(), "99999", []model.Community{
		community("a", "44122"),
	}, Options{})
	require.NoError(t, err)

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestNearbyExcludesUnresolvableCommunities(t *testing.T) {
	m := New(testGazetteer())

	results, err := m.Nearby(context.Background(), "44120", []model.Community{
		community("no-zip", ""),
		community("unknown-zip", "00000"),
		community("known", "44122"),
	}, Options{})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "known", results[0].ID)
}

func TestNearbyExplicitCoordinateWinsOverZip(t *testing.T) {
	m := New(testGazetteer())

	// Zip says ~18 miles out, explicit coordinate puts it at the origin.
	c := community("pinned", "44145")
	c.Coordinate = &model.Coordinate{Lat: 41.4735, Lng: -81.5784}

	results, err := m.Nearby(context.Background(), "44120", []model.Community{c}, Options{RadiusMiles: 1})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.InDelta(t, 0, results[0].DistanceMiles, 0.001)
}

func TestNearbyCapsResults(t *testing.T) {
	m := New(testGazetteer())

	var communities []model.Community
	for i := 0; i < 8; i++ {
		communities = append(communities, community(string(rune('a'+i)), "44122"))
	}

	results, err := m.Nearby(context.Background(), "44120", communities, Options{RadiusMiles: 20, MaxResults: 3})
	require.NoError(t, err)

	assert.Len(t, results, 3)
	// Equal distances keep input order.
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "b", results[1].ID)
	assert.Equal(t, "c", results[2].ID)
}

func TestNearbyClampsInvalidOptions(t *testing.T) {
	m := New(testGazetteer())

	// Negative cap clamps to 1 rather than erroring.
	results, err := m.Nearby(context.Background(), "44120", []model.Community{
		community("near", "44122"),
		community("far", "44145"),
	}, Options{RadiusMiles: 20, MaxResults: -4})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].ID)

	// Negative radius clamps to 1 mile.
	results, err = m.Nearby(context.Background(), "44120", []model.Community{
		community("near", "44122"),
	}, Options{RadiusMiles: -5, MaxResults: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDistanceSymmetry(t *testing.T) {
	a := model.Coordinate{Lat: 41.4735, Lng: -81.5784}
	b := model.Coordinate{Lat: 41.4530, Lng: -81.9180}

	ab := geo.DistanceMiles(a, b)
	ba := geo.DistanceMiles(b, a)

	assert.InDelta(t, ab, ba, 1e-9)
	assert.Greater(t, ab, 0.0)
	assert.InDelta(t, 0, geo.DistanceMiles(a, a), 1e-9)
}
