package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/services"
)

const venuePageSystemPrompt = `You extract a single venue's details from the
HTML of its own page. Respond with ONLY a JSON object, no prose and no code
fences, with these string fields: venue_name, address_line_1, address_line_2,
city, state_or_province_code, country_code, postal_code, product_list_url
(the venue's menu / beer list page if linked, else empty). Leave any field
you cannot determine empty.`

type venuePageJSON struct {
	VenueName      string `json:"venue_name"`
	AddressLine1   string `json:"address_line_1"`
	AddressLine2   string `json:"address_line_2"`
	City           string `json:"city"`
	State          string `json:"state_or_province_code"`
	CountryCode    string `json:"country_code"`
	PostalCode     string `json:"postal_code"`
	ProductListURL string `json:"product_list_url"`
}

type venuePageAgent struct {
	client Client
	logger *zap.Logger
}

// NewVenuePageAgent creates the single-venue field-extraction agent, used
// when a business's homepage is its only location page.
func NewVenuePageAgent(client Client, logger *zap.Logger) services.VenuePageAgent {
	return &venuePageAgent{client: client, logger: logger.Named("venue-page-agent")}
}

var _ services.VenuePageAgent = (*venuePageAgent)(nil)

func (a *venuePageAgent) ExtractVenue(ctx context.Context, pageURL, html string) (*services.VenueLocation, error) {
	userPrompt := fmt.Sprintf("Venue page: %s\n\nHTML:\n%s", pageURL, html)

	raw, err := a.client.Complete(ctx, venuePageSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	var parsed venuePageJSON
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		a.logger.Warn("venue page agent returned unparseable output",
			zap.String("page", pageURL), zap.Error(err))
		return nil, fmt.Errorf("failed to parse venue page agent output: %w", err)
	}

	return &services.VenueLocation{
		VenueURL:       pageURL,
		VenueName:      strings.TrimSpace(parsed.VenueName),
		AddressLine1:   parsed.AddressLine1,
		AddressLine2:   parsed.AddressLine2,
		City:           parsed.City,
		State:          parsed.State,
		CountryCode:    parsed.CountryCode,
		PostalCode:     parsed.PostalCode,
		ProductListURL: parsed.ProductListURL,
	}, nil
}
