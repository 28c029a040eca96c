//go:build integration

package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/repositories"
	"github.com/venuelab/directory-engine/pkg/testhelpers"
)

func newEngine(t *testing.T) (UpsertEngine, *database.DB) {
	t.Helper()
	db := testhelpers.SharedDB(t)
	engine := NewUpsertEngine(db,
		repositories.NewEstablishmentRepository(),
		repositories.NewVenueRepository(),
		repositories.NewContentRepository(),
		nil, zap.NewNop())
	return engine, db
}

func testHomepage(t *testing.T) string {
	t.Helper()
	return "https://" + uuid.NewString() + ".example.com"
}

func TestUpsertVenueWithContentEndToEnd(t *testing.T) {
	engine, _ := newEngine(t)
	homepage := testHomepage(t)

	res := engine.UpsertVenueWithContent(t.Context(), VenueUpsert{
		HomepageURL:     homepage,
		VenueURL:        "/locations/downtown",
		VenueName:       "Downtown Taproom",
		BusinessName:    "Thirsty Goat",
		BusinessType:    "Brewery",
		ProductListURL:  "/locations/downtown/beer",
		ProductListType: "Venue Beer List",
	})
	require.True(t, res.OK(), res.Message)

	// Replaying the same upsert is a no-op success.
	replay := engine.UpsertVenueWithContent(t.Context(), VenueUpsert{
		HomepageURL: homepage,
		VenueURL:    "/locations/downtown",
		VenueName:   "Renamed Taproom",
	})
	assert.True(t, replay.OK(), replay.Message)
}

func TestUpsertVenuePagesPartialFailure(t *testing.T) {
	engine, _ := newEngine(t)
	homepage := testHomepage(t)

	results := engine.UpsertVenuePages(t.Context(), homepage, []VenuePage{
		{VenueURL: "/locations/a", VenueName: "A"},
		{VenueURL: "", VenueName: "broken"},
		{VenueURL: "/locations/b", VenueName: "B"},
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.Equal(t, models.StatusInvalid, results[1].Status)
	assert.True(t, results[2].OK(), "a failing item must not abort later items")
}

func TestUpsertSocialPageAndLogo(t *testing.T) {
	engine, _ := newEngine(t)
	homepage := testHomepage(t)

	res := engine.UpsertSocialPage(t.Context(), "Facebook", "https://facebook.com/"+uuid.NewString(), homepage)
	assert.True(t, res.OK(), res.Message)

	res = engine.UpsertLogo(t.Context(), "https://cdn.example/"+uuid.NewString()+".png", homepage)
	assert.True(t, res.OK(), res.Message)
}

func TestWiFiStageAndCommitFlow(t *testing.T) {
	engine, db := newEngine(t)
	homepage := testHomepage(t)

	require.True(t, engine.UpsertVenueWithContent(t.Context(), VenueUpsert{
		HomepageURL: homepage,
		VenueURL:    homepage,
		VenueName:   "Single Location",
	}).OK())

	venueKey := "VNU#" + homepage[len("https://"):] + "#web"
	imageURL := "https://cdn.example/" + uuid.NewString() + ".jpg"

	extractor := &mockExtractor{results: map[string]*models.AnalyzerResult{
		AnalyzerWiFiPassword: {Fields: map[string]any{
			"wifi_network":  wrapped("Guest Net"),
			"wifi_password": wrapped("hunter2"),
		}},
	}}
	staging := NewStagingService(db, repositories.NewStagingRepository(), zap.NewNop())
	ingest := NewIngestService(extractor, nil, staging, engine, nil, zap.NewNop())

	result, err := ingest.ProcessWiFiImage(t.Context(), imageURL, venueKey)
	require.NoError(t, err)
	require.Equal(t, IngestStaged, result.Status)

	commit := NewCommitService(db, repositories.NewFactRepository(), zap.NewNop())
	committed := commit.Commit(t.Context(), result.SessionUID, CategoryWiFiPassword)
	require.True(t, committed.OK(), committed.Message)
	assert.Contains(t, committed.Message, "committed 1")

	// A session can be committed long after staging; replay promotes nothing.
	replay := commit.Commit(t.Context(), result.SessionUID, CategoryWiFiPassword)
	assert.True(t, replay.OK())
	assert.Contains(t, replay.Message, "committed 0")

	// The source photo survives commit as content linked to the venue.
	scope, err := db.NewScope(t.Context())
	require.NoError(t, err)
	defer scope.Close()

	var contentRows int
	require.NoError(t, scope.Conn.QueryRow(t.Context(),
		"SELECT count(*) FROM content WHERE content = $1", imageURL+"#img").Scan(&contentRows))
	assert.Equal(t, 1, contentRows)

	var linkRows int
	require.NoError(t, scope.Conn.QueryRow(t.Context(),
		"SELECT count(*) FROM venue_to_content WHERE venue = $1 AND content = $2",
		venueKey, imageURL+"#img").Scan(&linkRows))
	assert.Equal(t, 1, linkRows)
}

func TestDiscoveryResolveSignals(t *testing.T) {
	db := testhelpers.SharedDB(t)
	engine, _ := newEngine(t)
	discovery := NewDiscoveryService(db,
		repositories.NewVenueRepository(),
		repositories.NewEstablishmentRepository(),
		nil, engine, 0.1, 3, zap.NewNop())

	t.Run("no signal is ambiguous", func(t *testing.T) {
		_, err := discovery.Resolve(t.Context(), ResolveInput{})
		assert.Error(t, err)
	})

	t.Run("empty neighborhood means new business", func(t *testing.T) {
		lat, lon := -47.123, 122.456
		resolution, err := discovery.Resolve(t.Context(), ResolveInput{Latitude: &lat, Longitude: &lon})
		require.NoError(t, err)
		assert.True(t, resolution.NewBusiness)
		assert.Empty(t, resolution.Candidates)
	})

	t.Run("venue key wins over coordinates", func(t *testing.T) {
		homepage := testHomepage(t)
		require.True(t, engine.UpsertVenueWithContent(context.Background(), VenueUpsert{
			HomepageURL: homepage,
			VenueURL:    homepage,
			VenueName:   "Known Venue",
		}).OK())
		venueKey := "VNU#" + homepage[len("https://"):] + "#web"

		lat, lon := -47.5, 122.5
		resolution, err := discovery.Resolve(t.Context(), ResolveInput{
			VenueKey: venueKey, Latitude: &lat, Longitude: &lon,
		})
		require.NoError(t, err)
		assert.False(t, resolution.NewBusiness)
		assert.Equal(t, venueKey, resolution.VenueKey)
		assert.Equal(t, "Known Venue", resolution.VenueName)
	})
}
