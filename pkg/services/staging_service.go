package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/identity"
	"github.com/venuelab/directory-engine/pkg/jsonutil"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/repositories"
)

// analyzers wrap scalar fields in single-key value objects.
const valueKey = "valueString"

// StagingService turns raw analyzer fields into staged rows keyed by session.
// Staging is append-only: the same session staging the same sub-key twice
// produces two rows, and nothing is merged until commit.
type StagingService interface {
	StageWiFi(ctx context.Context, session models.SessionContext, venueKey string, fields map[string]any) models.Result
	StageHours(ctx context.Context, session models.SessionContext, venueKey string, fields map[string]any) models.Result
	StageProductOffering(ctx context.Context, session models.SessionContext, fact models.StagedProductOffering) models.Result
	// RecordAnalyzerOutput stores list-analyzer output, replacing any prior
	// rows for the same analyzer and source.
	RecordAnalyzerOutput(ctx context.Context, analyzer, source string, items []models.AnalyzerOutputItem) error
}

type stagingService struct {
	db      *database.DB
	staging repositories.StagingRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewStagingService creates the staging service.
func NewStagingService(db *database.DB, staging repositories.StagingRepository, logger *zap.Logger) StagingService {
	return &stagingService{
		db:      db,
		staging: staging,
		logger:  logger.Named("staging"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var _ StagingService = (*stagingService)(nil)

func (s *stagingService) StageWiFi(ctx context.Context, session models.SessionContext, venueKey string, fields map[string]any) models.Result {
	network := jsonutil.UnwrapString(fields["wifi_network"], valueKey)
	password := jsonutil.UnwrapString(fields["wifi_password"], valueKey)
	if network == "" {
		return models.InvalidResult("no wifi network found in extracted fields")
	}

	fact := &models.StagedWiFi{
		SessionUID:    session.UID,
		VenueWiFi:     identity.WiFiStagingKey(venueKey, network),
		Venue:         venueKey,
		WiFiNetwork:   network,
		WiFiPassword:  password,
		ContentURL:    session.ContentURL,
		StageDatetime: s.now(),
	}

	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return models.StorageResult(err.Error())
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	if err := s.staging.StageWiFi(ctx, fact); err != nil {
		s.logger.Error("failed to stage wifi", zap.String("session", session.UID), zap.Error(err))
		return models.StorageResult(err.Error())
	}
	return models.OKResult(fmt.Sprintf("wifi staged for session %s", session.UID))
}

func (s *stagingService) StageHours(ctx context.Context, session models.SessionContext, venueKey string, fields map[string]any) models.Result {
	start := jsonutil.UnwrapString(fields["schedule_effective_start_date"], valueKey)
	end := jsonutil.UnwrapString(fields["schedule_effective_end_date"], valueKey)

	key, temporary := identity.HoursStagingKey(venueKey, start, end)
	scheduleType := "Base"
	if temporary {
		scheduleType = "Temporary"
	}

	fact := &models.StagedHours{
		SessionUID:         session.UID,
		VenueHours:         key,
		Venue:              venueKey,
		ScheduleType:       scheduleType,
		Monday:             daySchedule(fields, "monday"),
		Tuesday:            daySchedule(fields, "tuesday"),
		Wednesday:          daySchedule(fields, "wednesday"),
		Thursday:           daySchedule(fields, "thursday"),
		Friday:             daySchedule(fields, "friday"),
		Saturday:           daySchedule(fields, "saturday"),
		Sunday:             daySchedule(fields, "sunday"),
		EffectiveStartDate: start,
		EffectiveEndDate:   end,
		ContentURL:         session.ContentURL,
		StageDatetime:      s.now(),
	}

	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return models.StorageResult(err.Error())
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	if err := s.staging.StageHours(ctx, fact); err != nil {
		s.logger.Error("failed to stage hours", zap.String("session", session.UID), zap.Error(err))
		return models.StorageResult(err.Error())
	}
	return models.OKResult(fmt.Sprintf("hours staged for session %s", session.UID))
}

func (s *stagingService) StageProductOffering(ctx context.Context, session models.SessionContext, fact models.StagedProductOffering) models.Result {
	fact.SessionUID = session.UID
	fact.ContentURL = session.ContentURL
	fact.StageDatetime = s.now()

	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return models.StorageResult(err.Error())
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	if err := s.staging.StageProductOffering(ctx, &fact); err != nil {
		s.logger.Error("failed to stage product offering", zap.String("session", session.UID), zap.Error(err))
		return models.StorageResult(err.Error())
	}
	return models.OKResult(fmt.Sprintf("product offering staged for session %s", session.UID))
}

func (s *stagingService) RecordAnalyzerOutput(ctx context.Context, analyzer, source string, items []models.AnalyzerOutputItem) error {
	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return err
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.staging.ReplaceAnalyzerOutput(ctx, analyzer, source, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func daySchedule(fields map[string]any, day string) models.DaySchedule {
	return models.DaySchedule{
		Summary:   jsonutil.UnwrapString(fields[day+"_summary"], valueKey),
		OpenTime:  jsonutil.UnwrapString(fields[day+"_open_time"], valueKey),
		CloseTime: jsonutil.UnwrapString(fields[day+"_close_time"], valueKey),
	}
}
