package repositories

import (
	"context"
	"fmt"

	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/models"
)

// StagingRepository persists provisional extractions keyed by session UID.
// Committing a session moves its rows into the authoritative fact tables.
type StagingRepository interface {
	StageWiFi(ctx context.Context, fact *models.StagedWiFi) error
	StageHours(ctx context.Context, fact *models.StagedHours) error
	StageProductOffering(ctx context.Context, fact *models.StagedProductOffering) error
	// ReplaceAnalyzerOutput swaps all stored rows for an analyzer/source pair
	// with the given items.
	ReplaceAnalyzerOutput(ctx context.Context, analyzer, source string, items []models.AnalyzerOutputItem) error
}

type stagingRepository struct{}

// NewStagingRepository creates a new staging repository.
func NewStagingRepository() StagingRepository {
	return &stagingRepository{}
}

var _ StagingRepository = (*stagingRepository)(nil)

func (r *stagingRepository) StageWiFi(ctx context.Context, fact *models.StagedWiFi) error {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return err
	}

	_, err = scope.Conn.Exec(ctx, `
		INSERT INTO staged_venue_wifi (
			session_uid, venue_wifi, venue, wifi_network, wifi_password, content_url, stage_datetime)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		fact.SessionUID, fact.VenueWiFi, fact.Venue, fact.WiFiNetwork,
		fact.WiFiPassword, fact.ContentURL, fact.StageDatetime)
	if err != nil {
		return fmt.Errorf("failed to stage wifi fact: %w", err)
	}
	return nil
}

func (r *stagingRepository) StageHours(ctx context.Context, fact *models.StagedHours) error {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return err
	}

	_, err = scope.Conn.Exec(ctx, `
		INSERT INTO staged_venue_hours_of_operation (
			session_uid, venue_hours_of_operation, venue, hours_of_operation_type,
			monday_summary, monday_open_time, monday_close_time,
			tuesday_summary, tuesday_open_time, tuesday_close_time,
			wednesday_summary, wednesday_open_time, wednesday_close_time,
			thursday_summary, thursday_open_time, thursday_close_time,
			friday_summary, friday_open_time, friday_close_time,
			saturday_summary, saturday_open_time, saturday_close_time,
			sunday_summary, sunday_open_time, sunday_close_time,
			schedule_effective_start_date, schedule_effective_end_date,
			content_url, stage_datetime)
		VALUES ($1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25,
			$26, $27, $28, $29)`,
		fact.SessionUID, fact.VenueHours, fact.Venue, fact.ScheduleType,
		fact.Monday.Summary, fact.Monday.OpenTime, fact.Monday.CloseTime,
		fact.Tuesday.Summary, fact.Tuesday.OpenTime, fact.Tuesday.CloseTime,
		fact.Wednesday.Summary, fact.Wednesday.OpenTime, fact.Wednesday.CloseTime,
		fact.Thursday.Summary, fact.Thursday.OpenTime, fact.Thursday.CloseTime,
		fact.Friday.Summary, fact.Friday.OpenTime, fact.Friday.CloseTime,
		fact.Saturday.Summary, fact.Saturday.OpenTime, fact.Saturday.CloseTime,
		fact.Sunday.Summary, fact.Sunday.OpenTime, fact.Sunday.CloseTime,
		fact.EffectiveStartDate, fact.EffectiveEndDate,
		fact.ContentURL, fact.StageDatetime)
	if err != nil {
		return fmt.Errorf("failed to stage hours fact: %w", err)
	}
	return nil
}

func (r *stagingRepository) StageProductOffering(ctx context.Context, fact *models.StagedProductOffering) error {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return err
	}

	_, err = scope.Conn.Exec(ctx, `
		INSERT INTO staged_product_offerings (
			session_uid, is_new_business, business_name, business_type,
			latitude, longitude, full_address_string, venue, product_list,
			content_url, stage_datetime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		fact.SessionUID, fact.IsNewBusiness, fact.BusinessName, fact.BusinessType,
		fact.Latitude, fact.Longitude, fact.FullAddress, fact.Venue, fact.ProductList,
		fact.ContentURL, fact.StageDatetime)
	if err != nil {
		return fmt.Errorf("failed to stage product offering: %w", err)
	}
	return nil
}

func (r *stagingRepository) ReplaceAnalyzerOutput(ctx context.Context, analyzer, source string, items []models.AnalyzerOutputItem) error {
	scope, err := database.GetScope(ctx)
	if err != nil {
		return err
	}

	if _, err := scope.Conn.Exec(ctx,
		`DELETE FROM analyzer_output_items WHERE analyzer = $1 AND source = $2`,
		analyzer, source); err != nil {
		return fmt.Errorf("failed to clear analyzer output: %w", err)
	}

	for _, item := range items {
		if _, err := scope.Conn.Exec(ctx, `
			INSERT INTO analyzer_output_items (analyzer, source, raw_item_json, pull_datetime)
			VALUES ($1, $2, $3, $4)`,
			analyzer, item.Source, item.RawItemJSON, item.PullDatetime); err != nil {
			return fmt.Errorf("failed to insert analyzer output item: %w", err)
		}
	}
	return nil
}
