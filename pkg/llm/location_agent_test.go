package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClient struct {
	response string
	err      error
}

func (s *stubClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.response, s.err
}

func TestExtractLocations(t *testing.T) {
	agent := NewLocationAgent(&stubClient{response: `[
		{"venue_url": "/locations/downtown", "venue_name": "Downtown Taproom",
		 "city": "Portland", "state_or_province_code": "OR",
		 "product_list_url": "/locations/downtown/beer"},
		{"venue_url": "https://example.com/locations/eastside", "venue_name": "Eastside"}
	]`}, zap.NewNop())

	locations, err := agent.ExtractLocations(t.Context(), "https://example.com", "<html>...</html>")
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "/locations/downtown", locations[0].VenueURL)
	assert.Equal(t, "Portland", locations[0].City)
	assert.Equal(t, "/locations/downtown/beer", locations[0].ProductListURL)
}

func TestExtractLocationsStripsFences(t *testing.T) {
	agent := NewLocationAgent(&stubClient{response: "```json\n[{\"venue_url\": \"https://example.com\"}]\n```"}, zap.NewNop())

	locations, err := agent.ExtractLocations(t.Context(), "https://example.com", "<html/>")
	require.NoError(t, err)
	require.Len(t, locations, 1)
}

func TestExtractLocationsSkipsEmptyURLs(t *testing.T) {
	agent := NewLocationAgent(&stubClient{response: `[{"venue_name": "no url"}]`}, zap.NewNop())

	locations, err := agent.ExtractLocations(t.Context(), "https://example.com", "<html/>")
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestExtractLocationsBadJSON(t *testing.T) {
	agent := NewLocationAgent(&stubClient{response: "sorry, I cannot do that"}, zap.NewNop())

	_, err := agent.ExtractLocations(t.Context(), "https://example.com", "<html/>")
	assert.Error(t, err)
}

func TestExtractLocationsClientError(t *testing.T) {
	agent := NewLocationAgent(&stubClient{err: errors.New("rate limit")}, zap.NewNop())

	_, err := agent.ExtractLocations(t.Context(), "https://example.com", "<html/>")
	assert.Error(t, err)
}
