// Package geo resolves addresses against a Nominatim-compatible geocoding
// service.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/retry"
)

// Client calls the Nominatim search and reverse endpoints.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a geocoding client. userAgent identifies the caller and
// is required by the public Nominatim instance.
func NewClient(baseURL, userAgent string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.Named("geo"),
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
		CountryCode string `json:"country_code"`
		Postcode    string `json:"postcode"`
	} `json:"address"`
}

// Geocode resolves a free-form address to coordinates. An address the
// service does not know yields ErrNotFound.
func (c *Client) Geocode(ctx context.Context, address string) (float64, float64, error) {
	query := url.Values{"q": {address}, "format": {"json"}, "limit": {"1"}}
	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, query.Encode())

	results, err := retry.DoWithResult(ctx, nil, func() ([]searchResult, error) {
		var out []searchResult
		err := c.getJSON(ctx, endpoint, &out)
		return out, err
	})
	if err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no match for address %q: %w", address, apperrors.ErrNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude in geocode response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude in geocode response: %w", err)
	}
	return lat, lon, nil
}

// ReverseGeocode resolves coordinates to a structured postal address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Address, error) {
	query := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format": {"json"},
	}
	endpoint := fmt.Sprintf("%s/reverse?%s", c.baseURL, query.Encode())

	result, err := retry.DoWithResult(ctx, nil, func() (*reverseResult, error) {
		var out reverseResult
		if err := c.getJSON(ctx, endpoint, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	city := result.Address.City
	if city == "" {
		city = result.Address.Town
	}
	if city == "" {
		city = result.Address.Village
	}

	line1 := result.Address.Road
	if result.Address.HouseNumber != "" {
		line1 = result.Address.HouseNumber + " " + result.Address.Road
	}

	return &models.Address{
		Line1:               line1,
		City:                city,
		StateOrProvinceCode: result.Address.State,
		CountryCode:         result.Address.CountryCode,
		PostalCode:          result.Address.Postcode,
		FullAddress:         result.DisplayName,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("geocoding service returned %d: %w", resp.StatusCode, apperrors.ErrExternalService)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	return nil
}
