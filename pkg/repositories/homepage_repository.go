package repositories

import (
	"context"
	"fmt"

	"github.com/venuelab/directory-engine/pkg/database"
)

// HomepageRepository is the work queue of business homepages awaiting
// processing.
type HomepageRepository interface {
	// Enqueue adds a homepage to the queue; already-queued URLs are a no-op.
	Enqueue(ctx context.Context, homepageURL string) (bool, error)
	// Pending returns up to limit unprocessed homepages, oldest first.
	Pending(ctx context.Context, limit int) ([]string, error)
	MarkProcessed(ctx context.Context, homepageURL string) error
}

type homepageRepository struct{}

// NewHomepageRepository creates a new homepage queue repository.
func NewHomepageRepository() HomepageRepository {
	return &homepageRepository{}
}

var _ HomepageRepository = (*homepageRepository)(nil)

func (r *homepageRepository) Enqueue(ctx context.Context, homepageURL string) (bool, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return false, err
	}

	tag, err := scope.Conn.Exec(ctx, `
		INSERT INTO homepages (homepage) VALUES ($1)
		ON CONFLICT (homepage) DO NOTHING`, homepageURL)
	if err != nil {
		return false, fmt.Errorf("failed to enqueue homepage: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *homepageRepository) Pending(ctx context.Context, limit int) ([]string, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT homepage FROM homepages
		WHERE status = 'pending'
		ORDER BY create_datetime
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending homepages: %w", err)
	}
	defer rows.Close()

	var pages []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan homepage: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r *homepageRepository) MarkProcessed(ctx context.Context, homepageURL string) error {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return err
	}

	_, err = scope.Conn.Exec(ctx, `
		UPDATE homepages
		SET status = 'processed', processed_datetime = now()
		WHERE homepage = $1`, homepageURL)
	if err != nil {
		return fmt.Errorf("failed to mark homepage processed: %w", err)
	}
	return nil
}
