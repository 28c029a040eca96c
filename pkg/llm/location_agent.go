package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/services"
)

const locationSystemPrompt = `You extract the physical locations of a business
from its homepage HTML. Respond with ONLY a JSON array, no prose and no code
fences. Each element has these string fields: venue_url (the location's page,
absolute or site-relative), venue_name, address_line_1, address_line_2, city,
state_or_province_code, country_code, postal_code, product_list_url (the
location's menu / beer list page if linked, else empty). A single-location
business yields one element whose venue_url is the homepage itself. If no
location can be identified, respond with [].`

type locationJSON struct {
	VenueURL       string `json:"venue_url"`
	VenueName      string `json:"venue_name"`
	AddressLine1   string `json:"address_line_1"`
	AddressLine2   string `json:"address_line_2"`
	City           string `json:"city"`
	State          string `json:"state_or_province_code"`
	CountryCode    string `json:"country_code"`
	PostalCode     string `json:"postal_code"`
	ProductListURL string `json:"product_list_url"`
}

type locationAgent struct {
	client Client
	logger *zap.Logger
}

// NewLocationAgent creates the homepage location-extraction agent.
func NewLocationAgent(client Client, logger *zap.Logger) services.LocationAgent {
	return &locationAgent{client: client, logger: logger.Named("location-agent")}
}

var _ services.LocationAgent = (*locationAgent)(nil)

func (a *locationAgent) ExtractLocations(ctx context.Context, homepageURL, html string) ([]services.VenueLocation, error) {
	userPrompt := fmt.Sprintf("Homepage: %s\n\nHTML:\n%s", homepageURL, html)

	raw, err := a.client.Complete(ctx, locationSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var parsed []locationJSON
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		a.logger.Warn("location agent returned unparseable output",
			zap.String("homepage", homepageURL), zap.Error(err))
		return nil, fmt.Errorf("failed to parse location agent output: %w", err)
	}

	locations := make([]services.VenueLocation, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.VenueURL) == "" {
			continue
		}
		locations = append(locations, services.VenueLocation{
			VenueURL:       p.VenueURL,
			VenueName:      p.VenueName,
			AddressLine1:   p.AddressLine1,
			AddressLine2:   p.AddressLine2,
			City:           p.City,
			State:          p.State,
			CountryCode:    p.CountryCode,
			PostalCode:     p.PostalCode,
			ProductListURL: p.ProductListURL,
		})
	}
	return locations, nil
}

// stripFences tolerates models that wrap JSON in markdown fences despite the
// prompt.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}
