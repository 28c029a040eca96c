package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/repositories"
)

// Extraction categories a session can be staged under.
const (
	CategoryWiFiPassword     = "wifi_password"
	CategoryHoursOfOperation = "hours_of_operation"
	CategoryTapList          = "tap_list"
	CategoryProductOfferings = "product_offerings"
	CategoryBusinessGeneral  = "business_general"
)

// CommitService promotes a confirmed session's staged facts into the
// authoritative tables. A session is either fully committed or untouched;
// there is no partial state and no expiry on how long staging may sit before
// confirmation.
type CommitService interface {
	Commit(ctx context.Context, sessionUID, category string) models.Result
}

type commitService struct {
	db     *database.DB
	facts  repositories.FactRepository
	logger *zap.Logger
}

// NewCommitService creates the confirmation-commit coordinator.
func NewCommitService(db *database.DB, facts repositories.FactRepository, logger *zap.Logger) CommitService {
	return &commitService{
		db:     db,
		facts:  facts,
		logger: logger.Named("commit"),
	}
}

var _ CommitService = (*commitService)(nil)

func (s *commitService) Commit(ctx context.Context, sessionUID, category string) models.Result {
	if strings.TrimSpace(sessionUID) == "" {
		return models.InvalidResult("session uid is required")
	}

	switch category {
	case CategoryWiFiPassword:
		return s.commitInTx(ctx, sessionUID, category, s.facts.CommitWiFi)
	case CategoryHoursOfOperation:
		return s.commitInTx(ctx, sessionUID, category, s.facts.CommitHours)
	case CategoryTapList, CategoryProductOfferings, CategoryBusinessGeneral:
		// Commit paths for these categories are not built yet; confirming
		// them promotes nothing.
		return models.OKResult(fmt.Sprintf("commit for category %s is not implemented, nothing committed", category))
	default:
		return models.OKResult(fmt.Sprintf("unknown category %s, nothing committed", category))
	}
}

func (s *commitService) commitInTx(
	ctx context.Context,
	sessionUID, category string,
	commit func(ctx context.Context, sessionUID, committedBy string) (int64, error),
) models.Result {
	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return models.StorageResult(err.Error())
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return models.StorageResult(err.Error())
	}
	defer func() { _ = tx.Rollback(ctx) }()

	promoted, err := commit(ctx, sessionUID, systemActor)
	if err != nil {
		s.logger.Error("commit failed",
			zap.String("session", sessionUID), zap.String("category", category), zap.Error(err))
		return models.StorageResult(fmt.Sprintf("failed to commit session %s: %v", sessionUID, err))
	}

	if err := tx.Commit(ctx); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to finalize commit: %v", err))
	}

	s.logger.Info("session committed",
		zap.String("session", sessionUID), zap.String("category", category), zap.Int64("rows", promoted))
	return models.OKResult(fmt.Sprintf("committed %d %s rows for session %s", promoted, category, sessionUID))
}
