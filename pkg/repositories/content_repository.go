package repositories

import (
	"context"
	"fmt"

	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/models"
)

// ContentRepository persists scraped resources and their links to venues and
// establishments.
type ContentRepository interface {
	InsertIfAbsent(ctx context.Context, content *models.Content) (bool, error)
	InsertVenueLinkIfAbsent(ctx context.Context, link *models.VenueContentLink) (bool, error)
	InsertEstablishmentLinkIfAbsent(ctx context.Context, link *models.EstablishmentContentLink) (bool, error)
}

type contentRepository struct{}

// NewContentRepository creates a new content repository.
func NewContentRepository() ContentRepository {
	return &contentRepository{}
}

var _ ContentRepository = (*contentRepository)(nil)

func (r *contentRepository) InsertIfAbsent(ctx context.Context, content *models.Content) (bool, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return false, err
	}

	tag, err := scope.Conn.Exec(ctx, `
		INSERT INTO content (
			content, content_type, content_group, content_category,
			content_url, is_active, last_scraped_datetime, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (content) DO NOTHING`,
		content.Content, content.ContentType, content.ContentGroup, content.ContentCategory,
		content.ContentURL, content.IsActive, content.LastScrapedDatetime, content.CreatedBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert content: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *contentRepository) InsertVenueLinkIfAbsent(ctx context.Context, link *models.VenueContentLink) (bool, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return false, err
	}

	tag, err := scope.Conn.Exec(ctx, `
		INSERT INTO venue_to_content (
			venue_to_content, venue_to_content_type, venue, content,
			is_validated, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (venue_to_content) DO NOTHING`,
		link.VenueToContent, link.VenueToContentType, link.Venue, link.Content,
		link.IsValidated, link.IsActive, link.CreatedBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert venue content link: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *contentRepository) InsertEstablishmentLinkIfAbsent(ctx context.Context, link *models.EstablishmentContentLink) (bool, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return false, err
	}

	tag, err := scope.Conn.Exec(ctx, `
		INSERT INTO establishment_to_content (
			establishment_to_content, establishment_to_content_type, establishment, content,
			is_validated, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (establishment_to_content) DO NOTHING`,
		link.EstablishmentToContent, link.EstablishmentToContentType, link.Establishment, link.Content,
		link.IsValidated, link.IsActive, link.CreatedBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert establishment content link: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
