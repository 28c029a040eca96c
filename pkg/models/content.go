package models

import "time"

// Content is any discovered asset tracked by the directory: a web page, an
// image, or a social profile URL. Keyed by "{resource_url}#web" or
// "{resource_url}#img".
type Content struct {
	Content             string     `json:"content"`
	ContentType         string     `json:"content_type"`
	ContentGroup        string     `json:"content_group"`
	ContentCategory     string     `json:"content_category"`
	ContentURL          string     `json:"content_url"`
	IsActive            bool       `json:"is_active"`
	LastScrapedDatetime time.Time  `json:"last_scraped_datetime"`
	CreateDatetime      time.Time  `json:"create_datetime"`
	CreatedBy           string     `json:"created_by"`
	ModifiedDatetime    *time.Time `json:"modified_datetime,omitempty"`
	ModifiedBy          *string    `json:"modified_by,omitempty"`
}

// VenueContentLink associates a Venue with a Content item, typed by
// relationship (e.g. "Venue Homepage", "WiFi", "Venue Beer List").
type VenueContentLink struct {
	VenueToContent     string    `json:"venue_to_content"`
	VenueToContentType string    `json:"venue_to_content_type"`
	Venue              string    `json:"venue"`
	Content            string    `json:"content"`
	IsValidated        bool      `json:"is_validated"`
	IsActive           bool      `json:"is_active"`
	CreateDatetime     time.Time `json:"create_datetime"`
	CreatedBy          string    `json:"created_by"`
}

// EstablishmentContentLink associates an Establishment with a Content item.
type EstablishmentContentLink struct {
	EstablishmentToContent     string    `json:"establishment_to_content"`
	EstablishmentToContentType string    `json:"establishment_to_content_type"`
	Establishment              string    `json:"establishment"`
	Content                    string    `json:"content"`
	IsValidated                bool      `json:"is_validated"`
	IsActive                   bool      `json:"is_active"`
	CreateDatetime             time.Time `json:"create_datetime"`
	CreatedBy                  string    `json:"created_by"`
}
