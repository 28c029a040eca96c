package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractVenue(t *testing.T) {
	agent := NewVenuePageAgent(&stubClient{response: `{
		"venue_name": " Thirsty Goat ",
		"address_line_1": "123 Main St",
		"city": "Portland", "state_or_province_code": "OR",
		"postal_code": "97201", "product_list_url": "/beer"
	}`}, zap.NewNop())

	loc, err := agent.ExtractVenue(t.Context(), "https://thirstygoat.com", "<html/>")
	require.NoError(t, err)
	assert.Equal(t, "https://thirstygoat.com", loc.VenueURL, "venue url is the page itself")
	assert.Equal(t, "Thirsty Goat", loc.VenueName)
	assert.Equal(t, "123 Main St", loc.AddressLine1)
	assert.Equal(t, "/beer", loc.ProductListURL)
}

func TestExtractVenueStripsFences(t *testing.T) {
	agent := NewVenuePageAgent(&stubClient{response: "```json\n{\"venue_name\": \"X\"}\n```"}, zap.NewNop())

	loc, err := agent.ExtractVenue(t.Context(), "https://example.com", "<html/>")
	require.NoError(t, err)
	assert.Equal(t, "X", loc.VenueName)
}

func TestExtractVenueBadJSON(t *testing.T) {
	agent := NewVenuePageAgent(&stubClient{response: "no locations here"}, zap.NewNop())

	_, err := agent.ExtractVenue(t.Context(), "https://example.com", "<html/>")
	assert.Error(t, err)
}
