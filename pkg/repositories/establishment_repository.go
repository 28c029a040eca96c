package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/models"
)

// EstablishmentRepository persists business-level directory entities.
type EstablishmentRepository interface {
	// InsertIfAbsent inserts the establishment unless its key already exists.
	// Returns true when a row was written.
	InsertIfAbsent(ctx context.Context, est *models.Establishment) (bool, error)
	GetName(ctx context.Context, key string) (string, error)
	ListBusinessTypes(ctx context.Context) ([]string, error)
}

type establishmentRepository struct{}

// NewEstablishmentRepository creates a new establishment repository.
func NewEstablishmentRepository() EstablishmentRepository {
	return &establishmentRepository{}
}

var _ EstablishmentRepository = (*establishmentRepository)(nil)

func (r *establishmentRepository) InsertIfAbsent(ctx context.Context, est *models.Establishment) (bool, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return false, err
	}

	tag, err := scope.Conn.Exec(ctx, `
		INSERT INTO establishments (establishment, establishment_name, business_type, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (establishment) DO NOTHING`,
		est.Establishment, est.EstablishmentName, est.BusinessType, est.IsActive, est.CreatedBy)
	if err != nil {
		return false, fmt.Errorf("failed to insert establishment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *establishmentRepository) GetName(ctx context.Context, key string) (string, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return "", err
	}

	var name string
	err = scope.Conn.QueryRow(ctx,
		`SELECT establishment_name FROM establishments WHERE establishment = $1`, key).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get establishment name: %w", err)
	}
	return name, nil
}

func (r *establishmentRepository) ListBusinessTypes(ctx context.Context) ([]string, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.Query(ctx,
		`SELECT DISTINCT business_type FROM establishments WHERE business_type <> '' ORDER BY business_type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list business types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan business type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
