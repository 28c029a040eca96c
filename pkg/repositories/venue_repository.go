package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/models"
)

// VenueRepository persists physical business locations.
type VenueRepository interface {
	// InsertIfAbsent inserts the venue unless its key already exists.
	// Returns true when a row was written.
	InsertIfAbsent(ctx context.Context, venue *models.Venue) (bool, error)
	GetName(ctx context.Context, key string) (string, error)
	Get(ctx context.Context, key string) (*models.Venue, error)
	// Nearby returns venues within radiusMiles of the point, closest first.
	// businessType filters on the owning establishment when non-empty.
	Nearby(ctx context.Context, lat, lon, radiusMiles float64, businessType string, limit int) ([]models.VenueCandidate, error)
}

type venueRepository struct{}

// NewVenueRepository creates a new venue repository.
func NewVenueRepository() VenueRepository {
	return &venueRepository{}
}

var _ VenueRepository = (*venueRepository)(nil)

func (r *venueRepository) InsertIfAbsent(ctx context.Context, venue *models.Venue) (bool, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return false, err
	}

	tag, err := scope.Conn.Exec(ctx, `
		INSERT INTO venues (
			venue, venue_establishment, venue_name,
			address_line_1, address_line_2, city, state_or_province_code,
			country_code, postal_code, latitude, longitude, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (venue) DO NOTHING`,
		venue.Venue, venue.VenueEstablishment, venue.VenueName,
		venue.AddressLine1, venue.AddressLine2, venue.City, venue.StateOrProvinceCode,
		venue.CountryCode, venue.PostalCode, venue.Latitude, venue.Longitude,
		venue.IsActive, venue.CreatedBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert venue: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *venueRepository) GetName(ctx context.Context, key string) (string, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return "", err
	}

	var name string
	err = scope.Conn.QueryRow(ctx,
		`SELECT venue_name FROM venues WHERE venue = $1`, key).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get venue name: %w", err)
	}
	return name, nil
}

func (r *venueRepository) Get(ctx context.Context, key string) (*models.Venue, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return nil, err
	}

	var v models.Venue
	err = scope.Conn.QueryRow(ctx, `
		SELECT venue, venue_establishment, venue_name,
		       address_line_1, address_line_2, city, state_or_province_code,
		       country_code, postal_code, latitude, longitude, is_active,
		       create_datetime, created_by
		FROM venues WHERE venue = $1`, key).Scan(
		&v.Venue, &v.VenueEstablishment, &v.VenueName,
		&v.AddressLine1, &v.AddressLine2, &v.City, &v.StateOrProvinceCode,
		&v.CountryCode, &v.PostalCode, &v.Latitude, &v.Longitude, &v.IsActive,
		&v.CreateDatetime, &v.CreatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return &v, nil
}

func (r *venueRepository) Nearby(ctx context.Context, lat, lon, radiusMiles float64, businessType string, limit int) ([]models.VenueCandidate, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return nil, err
	}

	// Haversine great-circle distance in statute miles.
	query := `
		SELECT v.venue, v.venue_name,
		       v.address_line_1, v.address_line_2, v.city,
		       v.state_or_province_code, v.postal_code,
		       3958.8 * acos(least(1.0,
		           cos(radians($1)) * cos(radians(v.latitude)) *
		           cos(radians(v.longitude) - radians($2)) +
		           sin(radians($1)) * sin(radians(v.latitude)))) AS distance_miles,
		       COALESCE(img.content_url, '') AS image_url
		FROM venues v
		JOIN establishments e ON e.establishment = v.venue_establishment
		LEFT JOIN LATERAL (
			SELECT c.content_url
			FROM venue_to_content vc
			JOIN content c ON c.content = vc.content
			WHERE vc.venue = v.venue AND c.content_category = 'Image' AND vc.is_active
			ORDER BY vc.create_datetime DESC
			LIMIT 1
		) img ON TRUE
		WHERE v.is_active
		  AND v.latitude IS NOT NULL AND v.longitude IS NOT NULL
		  AND ($4 = '' OR e.business_type = $4)
		  AND 3958.8 * acos(least(1.0,
		      cos(radians($1)) * cos(radians(v.latitude)) *
		      cos(radians(v.longitude) - radians($2)) +
		      sin(radians($1)) * sin(radians(v.latitude)))) <= $3
		ORDER BY distance_miles
		LIMIT $5`

	rows, err := scope.Conn.Query(ctx, query, lat, lon, radiusMiles, businessType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby venues: %w", err)
	}
	defer rows.Close()

	var candidates []models.VenueCandidate
	for rows.Next() {
		var c models.VenueCandidate
		var line1, line2, city, state, postal string
		if err := rows.Scan(&c.Venue, &c.VenueName, &line1, &line2, &city, &state, &postal,
			&c.Distance, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan venue candidate: %w", err)
		}
		c.FullAddress = joinAddress(line1, line2, city, state, postal)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func joinAddress(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
