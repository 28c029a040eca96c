package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/models"
)

// Validation failures must surface as invalid results before any storage is
// touched, so a nil database is safe here.
func newValidationEngine() UpsertEngine {
	return NewUpsertEngine(nil, nil, nil, nil, nil, zap.NewNop())
}

func TestUpsertVenueWithContentRequiresVenueURL(t *testing.T) {
	res := newValidationEngine().UpsertVenueWithContent(t.Context(), VenueUpsert{
		HomepageURL: "https://thirstygoat.com",
		VenueURL:    "   ",
	})
	assert.Equal(t, models.StatusInvalid, res.Status)
}

func TestUpsertVenueWithContentRequiresHomepage(t *testing.T) {
	res := newValidationEngine().UpsertVenueWithContent(t.Context(), VenueUpsert{
		VenueURL: "https://thirstygoat.com/downtown",
	})
	assert.Equal(t, models.StatusInvalid, res.Status)
}

func TestUpsertEstablishmentRejectsBadHomepage(t *testing.T) {
	res := newValidationEngine().UpsertEstablishment(t.Context(), "https://", "", "")
	assert.Equal(t, models.StatusInvalid, res.Status)
}

func TestUpsertSocialPageRequiresNetworkAndURL(t *testing.T) {
	engine := newValidationEngine()

	res := engine.UpsertSocialPage(t.Context(), "", "https://facebook.com/x", "https://a.com")
	assert.Equal(t, models.StatusInvalid, res.Status)

	res = engine.UpsertSocialPage(t.Context(), "Facebook", "", "https://a.com")
	assert.Equal(t, models.StatusInvalid, res.Status)
}

func TestUpsertImageContentValidation(t *testing.T) {
	engine := newValidationEngine()

	t.Run("unknown image type", func(t *testing.T) {
		res := engine.UpsertImageContent(t.Context(), ImageContentUpsert{
			ImageURL:  "https://cdn.example/x.jpg",
			ImageType: "Vacation Photo",
			VenueKey:  "VNU#a.com#web",
		})
		assert.Equal(t, models.StatusInvalid, res.Status)
	})

	t.Run("no target", func(t *testing.T) {
		res := engine.UpsertImageContent(t.Context(), ImageContentUpsert{
			ImageURL:  "https://cdn.example/x.jpg",
			ImageType: "WiFi",
		})
		assert.Equal(t, models.StatusInvalid, res.Status)
	})

	t.Run("malformed venue key", func(t *testing.T) {
		res := engine.UpsertImageContent(t.Context(), ImageContentUpsert{
			ImageURL:  "https://cdn.example/x.jpg",
			ImageType: "WiFi",
			VenueKey:  "not-a-key",
		})
		assert.Equal(t, models.StatusInvalid, res.Status)
	})
}

func TestUpsertVenuePagesIsolatesInvalidItems(t *testing.T) {
	results := newValidationEngine().UpsertVenuePages(t.Context(), "https://thirstygoat.com", []VenuePage{
		{VenueURL: ""},
		{VenueURL: "   "},
	})

	assert.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, models.StatusInvalid, res.Status)
	}
}
