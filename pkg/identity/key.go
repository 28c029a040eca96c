// Package identity derives the composite keys that identify establishments,
// venues, content items and their link rows. All derivation is pure string
// work: two equivalent spellings of a URL must always map to the same key.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/venuelab/directory-engine/pkg/apperrors"
)

// Separator delimits key components. It is rejected inside components so a
// composed key can never be ambiguous.
const Separator = "#"

// Kind tags what a key identifies.
type Kind string

const (
	KindEstablishment Kind = "establishment"
	KindVenue         Kind = "venue"
	KindContent       Kind = "content"
	KindLink          Kind = "link"
)

// ContentClass distinguishes web page content from image content.
type ContentClass string

const (
	ClassWeb   ContentClass = "web"
	ClassImage ContentClass = "img"
)

const venuePrefix = "VNU"

// NormalizeURL strips the scheme and any trailing slash from a raw URL.
// A relative path (leading "/") must be resolved against its homepage first;
// passing one here is a caller error.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "/") {
		return "", fmt.Errorf("relative path %q must be resolved against a homepage: %w", raw, apperrors.ErrInvalidInput)
	}
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		return "", fmt.Errorf("url is empty after normalization: %w", apperrors.ErrInvalidInput)
	}
	return trimmed, nil
}

// ResolveRelative joins a homepage-relative link onto its homepage URL.
// Absolute URLs pass through unchanged.
func ResolveRelative(raw, homepageURL string) string {
	if !strings.HasPrefix(raw, "/") {
		return raw
	}
	return strings.TrimSuffix(homepageURL, "/") + raw
}

// EstablishmentKey derives "{host}#web" from a homepage URL: scheme, "www."
// prefix and any path are stripped so every page of a site maps to the same
// establishment.
func EstablishmentKey(homepageURL string) (string, error) {
	normalized, err := NormalizeURL(homepageURL)
	if err != nil {
		return "", err
	}
	host := strings.TrimPrefix(normalized, "www.")
	if idx := strings.Index(host, "/"); idx >= 0 {
		host = host[:idx]
	}
	if err := validateComponent(host); err != nil {
		return "", err
	}
	return host + Separator + string(ClassWeb), nil
}

// VenueKey derives "VNU#{trimmed_url}#web" from a venue page URL.
func VenueKey(venueURL string) (string, error) {
	normalized, err := NormalizeURL(venueURL)
	if err != nil {
		return "", err
	}
	if err := validateComponent(normalized); err != nil {
		return "", err
	}
	return venuePrefix + Separator + normalized + Separator + string(ClassWeb), nil
}

// ContentKey derives "{url}#web" or "{url}#img" for a tracked resource.
// Image and blob URLs keep their scheme in the original data, so only
// validation is applied here, not scheme stripping.
func ContentKey(resourceURL string, class ContentClass) (string, error) {
	trimmed := strings.TrimSpace(resourceURL)
	if trimmed == "" {
		return "", fmt.Errorf("content url is empty: %w", apperrors.ErrInvalidInput)
	}
	if err := validateComponent(trimmed); err != nil {
		return "", err
	}
	return trimmed + Separator + string(class), nil
}

// VenueContentLinkKey composes a distinct key per (venue, content, type)
// triple: "VNUCNTNT#{venue_url}#{TYPETAG}#{content_url}#web".
func VenueContentLinkKey(venueURL, contentURL, linkType string) (string, error) {
	return linkKey("VNUCNTNT", venueURL, contentURL, linkType)
}

// EstablishmentContentLinkKey composes
// "{homepage}#{TYPETAG}#{content_url}#web" for an establishment link.
func EstablishmentContentLinkKey(homepageURL, contentURL, linkType string) (string, error) {
	normalized, err := NormalizeURL(homepageURL)
	if err != nil {
		return "", err
	}
	tag := typeTag(linkType)
	for _, c := range []string{normalized, tag, contentURL} {
		if err := validateComponent(c); err != nil {
			return "", err
		}
	}
	return normalized + Separator + tag + Separator + contentURL + Separator + string(ClassWeb), nil
}

func linkKey(prefix, entityURL, contentURL, linkType string) (string, error) {
	normalized, err := NormalizeURL(entityURL)
	if err != nil {
		return "", err
	}
	tag := typeTag(linkType)
	for _, c := range []string{normalized, tag, contentURL} {
		if err := validateComponent(c); err != nil {
			return "", err
		}
	}
	return prefix + Separator + normalized + Separator + tag + Separator + contentURL + Separator + string(ClassWeb), nil
}

// VenueURLFromKey recovers the trimmed venue URL embedded in a venue key.
// Components never contain the separator, so splitting is unambiguous.
func VenueURLFromKey(venueKey string) (string, error) {
	parts := strings.Split(venueKey, Separator)
	if len(parts) != 3 || parts[0] != venuePrefix || parts[1] == "" {
		return "", fmt.Errorf("malformed venue key %q: %w", venueKey, apperrors.ErrInvalidInput)
	}
	return parts[1], nil
}

// typeTag collapses a human-readable link type ("Venue Beer List") into the
// uppercase tag embedded in link keys ("VENUEBEERLIST").
func typeTag(linkType string) string {
	tag := strings.ToUpper(linkType)
	tag = strings.ReplaceAll(tag, " ", "")
	tag = strings.ReplaceAll(tag, "(", "")
	tag = strings.ReplaceAll(tag, ")", "")
	return tag
}

// WiFiStagingKey derives "{venue-without-VNU#}#{network-no-spaces}#ALL" for a
// staged WiFi row.
func WiFiStagingKey(venueKey, network string) string {
	venue := strings.TrimPrefix(venueKey, venuePrefix+Separator)
	return venue + Separator + strings.ReplaceAll(network, " ", "") + Separator + "ALL"
}

// hours staging date formats, in the order they are tried.
var hoursDateFormats = []string{"2006-01-02", "01/02/2006"}

// HoursStagingKey derives the hours-of-operation staging sub-key. A schedule
// with no effective dates is the base schedule ("BASE#{venue}"); one with an
// effective range is temporary ("TEMP#{YYYYMMDD}#{venue}"). An unparseable
// start date degrades to an empty date component rather than failing.
func HoursStagingKey(venueKey, effectiveStart, effectiveEnd string) (key string, temporary bool) {
	if effectiveStart == "" && effectiveEnd == "" {
		return "BASE" + Separator + venueKey, false
	}
	formatted := ""
	for _, layout := range hoursDateFormats {
		if t, err := time.Parse(layout, effectiveStart); err == nil {
			formatted = t.Format("20060102")
			break
		}
	}
	return "TEMP" + Separator + formatted + Separator + venueKey, true
}

func validateComponent(component string) error {
	if strings.Contains(component, Separator) {
		return fmt.Errorf("key component %q contains reserved separator %q: %w", component, Separator, apperrors.ErrInvalidInput)
	}
	return nil
}
