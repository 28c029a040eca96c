//go:build integration

package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/testhelpers"
)

// scopedContext acquires a connection scope for one test.
func scopedContext(t *testing.T) context.Context {
	t.Helper()
	db := testhelpers.SharedDB(t)
	scope, err := db.NewScope(context.Background())
	require.NoError(t, err)
	t.Cleanup(scope.Close)
	return database.WithScope(context.Background(), scope)
}

func uniqueHost(t *testing.T) string {
	t.Helper()
	return uuid.NewString() + ".example.com"
}

func TestEstablishmentInsertIfAbsentIsIdempotent(t *testing.T) {
	ctx := scopedContext(t)
	repo := NewEstablishmentRepository()

	est := &models.Establishment{
		Establishment:     uniqueHost(t) + "#web",
		EstablishmentName: "Thirsty Goat",
		BusinessType:      "Brewery",
		IsActive:          true,
		CreatedBy:         "test",
	}

	inserted, err := repo.InsertIfAbsent(ctx, est)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same key again is a benign no-op, even with a different name.
	est.EstablishmentName = "Renamed Goat"
	inserted, err = repo.InsertIfAbsent(ctx, est)
	require.NoError(t, err)
	assert.False(t, inserted)

	name, err := repo.GetName(ctx, est.Establishment)
	require.NoError(t, err)
	assert.Equal(t, "Thirsty Goat", name)
}

func TestEstablishmentGetNameNotFound(t *testing.T) {
	ctx := scopedContext(t)
	repo := NewEstablishmentRepository()

	_, err := repo.GetName(ctx, "missing.example.com#web")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func insertVenue(t *testing.T, ctx context.Context, host, path, businessType string, lat, lon float64) string {
	t.Helper()

	estKey := host + "#web"
	_, err := NewEstablishmentRepository().InsertIfAbsent(ctx, &models.Establishment{
		Establishment:     estKey,
		EstablishmentName: host,
		BusinessType:      businessType,
		IsActive:          true,
		CreatedBy:         "test",
	})
	require.NoError(t, err)

	venueKey := "VNU#" + host + path + "#web"
	_, err = NewVenueRepository().InsertIfAbsent(ctx, &models.Venue{
		Venue:              venueKey,
		VenueEstablishment: estKey,
		VenueName:          host + path,
		City:               "Springfield",
		Latitude:           &lat,
		Longitude:          &lon,
		IsActive:           true,
		CreatedBy:          "test",
	})
	require.NoError(t, err)
	return venueKey
}

func TestVenueNearby(t *testing.T) {
	ctx := scopedContext(t)
	repo := NewVenueRepository()

	// Two breweries ~60m apart, one far away, one of another type nearby.
	host := uniqueHost(t)
	near1 := insertVenue(t, ctx, host, "/taproom", "Brewery", 51.5007, -0.1246)
	near2 := insertVenue(t, ctx, host, "/annex", "Brewery", 51.5012, -0.1246)
	insertVenue(t, ctx, uniqueHost(t), "/far", "Brewery", 51.9000, -0.1246)
	insertVenue(t, ctx, uniqueHost(t), "/cafe", "Cafe", 51.5008, -0.1247)

	candidates, err := repo.Nearby(ctx, 51.5007, -0.1246, 0.1, "Brewery", 3)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, near1, candidates[0].Venue) // closest first
	assert.Equal(t, near2, candidates[1].Venue)
	assert.Less(t, candidates[0].Distance, candidates[1].Distance)

	// No type filter picks up the cafe too.
	all, err := repo.Nearby(ctx, 51.5007, -0.1246, 0.1, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Tight radius excludes everything but the exact point.
	tight, err := repo.Nearby(ctx, 51.5007, -0.1246, 0.01, "Brewery", 3)
	require.NoError(t, err)
	assert.Len(t, tight, 1)
}

func TestContentAndLinkInsertOrder(t *testing.T) {
	ctx := scopedContext(t)
	repo := NewContentRepository()

	host := uniqueHost(t)
	venueKey := insertVenue(t, ctx, host, "/main", "Brewery", 10, 10)

	contentKey := "https://" + host + "/main#web"
	inserted, err := repo.InsertIfAbsent(ctx, &models.Content{
		Content:         contentKey,
		ContentType:     "Venue Homepage",
		ContentGroup:    "Homepage",
		ContentCategory: "Website",
		ContentURL:      "https://" + host + "/main",
		IsActive:        true,
		CreatedBy:       "test",
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	linkKey := "VNUCNTNT#" + host + "/main#VENUEHOMEPAGE#https://" + host + "/main#web"
	inserted, err = repo.InsertVenueLinkIfAbsent(ctx, &models.VenueContentLink{
		VenueToContent:     linkKey,
		VenueToContentType: "Venue Homepage",
		Venue:              venueKey,
		Content:            contentKey,
		IsActive:           true,
		CreatedBy:          "test",
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	// Replay of the link is a no-op.
	inserted, err = repo.InsertVenueLinkIfAbsent(ctx, &models.VenueContentLink{
		VenueToContent:     linkKey,
		VenueToContentType: "Venue Homepage",
		Venue:              venueKey,
		Content:            contentKey,
		IsActive:           true,
		CreatedBy:          "test",
	})
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestStagedWiFiCommitLifecycle(t *testing.T) {
	ctx := scopedContext(t)
	staging := NewStagingRepository()
	facts := NewFactRepository()

	host := uniqueHost(t)
	venueKey := insertVenue(t, ctx, host, "/bar", "Brewery", 20, 20)
	sessionUID := uuid.NewString()

	stage := func(network string) {
		require.NoError(t, staging.StageWiFi(ctx, &models.StagedWiFi{
			SessionUID:    sessionUID,
			VenueWiFi:     host + "/bar#web#" + network + "#ALL",
			Venue:         venueKey,
			WiFiNetwork:   network,
			WiFiPassword:  "secret",
			ContentURL:    "https://cdn.example/wifi.jpg",
			StageDatetime: time.Now().UTC(),
		}))
	}
	stage("GuestNet")
	stage("StaffNet")
	// Appending the same sub-key again produces a third staged row.
	stage("GuestNet")

	promoted, err := facts.CommitWiFi(ctx, sessionUID, "test")
	require.NoError(t, err)
	// Three staged rows collapse onto two distinct fact keys.
	assert.Equal(t, int64(2), promoted)

	// Staging is cleared, so a replayed commit promotes nothing.
	promoted, err = facts.CommitWiFi(ctx, sessionUID, "test")
	require.NoError(t, err)
	assert.Equal(t, int64(0), promoted)
}

func TestStagedHoursCommit(t *testing.T) {
	ctx := scopedContext(t)
	staging := NewStagingRepository()
	facts := NewFactRepository()

	host := uniqueHost(t)
	venueKey := insertVenue(t, ctx, host, "/pub", "Pub", 30, 30)
	sessionUID := uuid.NewString()

	require.NoError(t, staging.StageHours(ctx, &models.StagedHours{
		SessionUID:   sessionUID,
		VenueHours:   "BASE#" + venueKey,
		Venue:        venueKey,
		ScheduleType: "Base",
		Monday:       models.DaySchedule{Summary: "11am-10pm", OpenTime: "11:00", CloseTime: "22:00"},
		ContentURL:   "https://cdn.example/hours.jpg",
	}))

	promoted, err := facts.CommitHours(ctx, sessionUID, "test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), promoted)
}

func TestAnalyzerOutputReplace(t *testing.T) {
	ctx := scopedContext(t)
	staging := NewStagingRepository()

	source := "https://cdn.example/" + uuid.NewString() + ".jpg"
	items := []models.AnalyzerOutputItem{
		{RawItemJSON: `{"name":"IPA"}`, Source: source, PullDatetime: time.Now().UTC()},
		{RawItemJSON: `{"name":"Stout"}`, Source: source, PullDatetime: time.Now().UTC()},
	}
	require.NoError(t, staging.ReplaceAnalyzerOutput(ctx, "cu-tap-list-parser", source, items))

	// A later pull replaces the earlier rows wholesale.
	require.NoError(t, staging.ReplaceAnalyzerOutput(ctx, "cu-tap-list-parser", source,
		items[:1]))

	scope, err := database.GetScope(ctx)
	require.NoError(t, err)
	var count int
	require.NoError(t, scope.Conn.QueryRow(ctx,
		`SELECT count(*) FROM analyzer_output_items WHERE analyzer = $1 AND source = $2`,
		"cu-tap-list-parser", source).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestHomepageQueue(t *testing.T) {
	ctx := scopedContext(t)
	repo := NewHomepageRepository()

	url := "https://" + uniqueHost(t)
	enqueued, err := repo.Enqueue(ctx, url)
	require.NoError(t, err)
	assert.True(t, enqueued)

	enqueued, err = repo.Enqueue(ctx, url)
	require.NoError(t, err)
	assert.False(t, enqueued)

	pending, err := repo.Pending(ctx, 100)
	require.NoError(t, err)
	assert.Contains(t, pending, url)

	require.NoError(t, repo.MarkProcessed(ctx, url))

	pending, err = repo.Pending(ctx, 100)
	require.NoError(t, err)
	assert.NotContains(t, pending, url)
}
