package repositories

import (
	"context"
	"fmt"

	"github.com/venuelab/directory-engine/pkg/database"
)

// FactRepository promotes staged rows into the authoritative fact tables.
// Callers run each Commit inside a transaction so the insert and the staging
// delete land together.
type FactRepository interface {
	// CommitWiFi copies a session's staged wifi rows into venue_wifi and
	// removes them from staging. Returns the number of rows promoted.
	CommitWiFi(ctx context.Context, sessionUID, committedBy string) (int64, error)
	// CommitHours does the same for hours-of-operation rows.
	CommitHours(ctx context.Context, sessionUID, committedBy string) (int64, error)
}

type factRepository struct{}

// NewFactRepository creates a new fact repository.
func NewFactRepository() FactRepository {
	return &factRepository{}
}

var _ FactRepository = (*factRepository)(nil)

func (r *factRepository) CommitWiFi(ctx context.Context, sessionUID, committedBy string) (int64, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := scope.Conn.Exec(ctx, `
		INSERT INTO venue_wifi (venue_wifi, venue, wifi_network, wifi_password, content_url, created_by)
		SELECT venue_wifi, venue, wifi_network, wifi_password, content_url, $2
		FROM staged_venue_wifi
		WHERE session_uid = $1
		ON CONFLICT (venue_wifi) DO NOTHING`, sessionUID, committedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to commit staged wifi: %w", err)
	}

	if _, err := scope.Conn.Exec(ctx,
		`DELETE FROM staged_venue_wifi WHERE session_uid = $1`, sessionUID); err != nil {
		return 0, fmt.Errorf("failed to clear staged wifi: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *factRepository) CommitHours(ctx context.Context, sessionUID, committedBy string) (int64, error) {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := scope.Conn.Exec(ctx, `
		INSERT INTO venue_hours_of_operation (
			venue_hours_of_operation, venue, hours_of_operation_type,
			monday_summary, monday_open_time, monday_close_time,
			tuesday_summary, tuesday_open_time, tuesday_close_time,
			wednesday_summary, wednesday_open_time, wednesday_close_time,
			thursday_summary, thursday_open_time, thursday_close_time,
			friday_summary, friday_open_time, friday_close_time,
			saturday_summary, saturday_open_time, saturday_close_time,
			sunday_summary, sunday_open_time, sunday_close_time,
			schedule_effective_start_date, schedule_effective_end_date,
			content_url, created_by)
		SELECT venue_hours_of_operation, venue, hours_of_operation_type,
			monday_summary, monday_open_time, monday_close_time,
			tuesday_summary, tuesday_open_time, tuesday_close_time,
			wednesday_summary, wednesday_open_time, wednesday_close_time,
			thursday_summary, thursday_open_time, thursday_close_time,
			friday_summary, friday_open_time, friday_close_time,
			saturday_summary, saturday_open_time, saturday_close_time,
			sunday_summary, sunday_open_time, sunday_close_time,
			schedule_effective_start_date, schedule_effective_end_date,
			content_url, $2
		FROM staged_venue_hours_of_operation
		WHERE session_uid = $1
		ON CONFLICT (venue_hours_of_operation) DO NOTHING`, sessionUID, committedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to commit staged hours: %w", err)
	}

	if _, err := scope.Conn.Exec(ctx,
		`DELETE FROM staged_venue_hours_of_operation WHERE session_uid = $1`, sessionUID); err != nil {
		return 0, fmt.Errorf("failed to clear staged hours: %w", err)
	}
	return tag.RowsAffected(), nil
}
