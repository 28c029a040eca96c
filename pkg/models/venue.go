package models

import "time"

// Venue is one physical location of an establishment, keyed by
// "VNU#{trimmed_url}#web".
type Venue struct {
	Venue               string     `json:"venue"`
	VenueEstablishment  string     `json:"venue_establishment"`
	VenueName           string     `json:"venue_name"`
	AddressLine1        string     `json:"address_line_1"`
	AddressLine2        string     `json:"address_line_2"`
	City                string     `json:"city"`
	StateOrProvinceCode string     `json:"state_or_province_code"`
	CountryCode         string     `json:"country_code"`
	PostalCode          string     `json:"postal_code"`
	Latitude            *float64   `json:"latitude,omitempty"`
	Longitude           *float64   `json:"longitude,omitempty"`
	IsActive            bool       `json:"is_active"`
	CreateDatetime      time.Time  `json:"create_datetime"`
	CreatedBy           string     `json:"created_by"`
	ModifiedDatetime    *time.Time `json:"modified_datetime,omitempty"`
	ModifiedBy          *string    `json:"modified_by,omitempty"`
}

// VenueCandidate is a nearby-venue search hit surfaced to the caller for
// disambiguation.
type VenueCandidate struct {
	Venue       string  `json:"venue"`
	VenueName   string  `json:"venue_name"`
	FullAddress string  `json:"full_address,omitempty"`
	Distance    float64 `json:"distance,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
}
