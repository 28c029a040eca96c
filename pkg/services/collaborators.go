package services

import (
	"context"
	"io"

	"github.com/venuelab/directory-engine/pkg/models"
)

// Extractor runs a named analyzer over a hosted resource and returns its
// parsed output.
type Extractor interface {
	Analyze(ctx context.Context, analyzer, sourceURL string) (*models.AnalyzerResult, error)
}

// Geocoder resolves postal addresses to coordinates and back.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Address, error)
}

// BlobStore hosts uploaded files and reports their size.
type BlobStore interface {
	Upload(ctx context.Context, container, name string, data io.Reader, overwrite bool) (string, error)
	Size(ctx context.Context, container, name string) (int64, error)
}

// PageSnapshot is a rendered view of a business homepage. How the page is
// rendered (browser driver, cache, fixture) is the fetcher's concern.
type PageSnapshot struct {
	HTML        string
	LogoURL     string
	SocialLinks map[string]string // network name -> page URL
	Links       []string
}

// PageFetcher produces snapshots of live web pages.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*PageSnapshot, error)
}

// VenueLocation is one physical location extracted from a homepage by the
// location agent.
type VenueLocation struct {
	VenueURL       string
	VenueName      string
	AddressLine1   string
	AddressLine2   string
	City           string
	State          string
	CountryCode    string
	PostalCode     string
	ProductListURL string
}

// LocationAgent extracts per-location venue records from homepage HTML.
type LocationAgent interface {
	ExtractLocations(ctx context.Context, homepageURL, html string) ([]VenueLocation, error)
}

// VenuePageAgent extracts one venue's fields from the HTML of its own page,
// for businesses whose homepage is their only location page.
type VenuePageAgent interface {
	ExtractVenue(ctx context.Context, pageURL, html string) (*VenueLocation, error)
}
