package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/jsonutil"
	"github.com/venuelab/directory-engine/pkg/models"
)

// Analyzer names on the document-understanding service.
const (
	AnalyzerInitialImage        = "cu-initial-image-analyzer"
	AnalyzerWiFiPassword        = "cu-wifi-password-analyzer"
	AnalyzerHoursOfOperation    = "cu-hours-of-operation"
	AnalyzerTapList             = "cu-tap-list-parser"
	AnalyzerProductOffering     = "cu-product-offering-analyzer"
	AnalyzerBusinessType        = "cu-business-type-classifier"
	AnalyzerBusinessTypeWebpage = "cu-business-type-from-webpage-analyzer"
)

// Ingest outcome statuses.
const (
	IngestStaged         = "staged"
	IngestNeedsSelection = "needs_selection"
	IngestNewBusiness    = "new_business"
	IngestUnsupported    = "unsupported"
)

// ImageHoster re-hosts a remote image onto managed storage and returns the
// hosted URL.
type ImageHoster interface {
	Rehost(ctx context.Context, imageURL string) (string, error)
}

// ProcessImageInput carries a submitted image and its identifying signals.
type ProcessImageInput struct {
	ImageURL  string   `json:"image_url"`
	VenueKey  string   `json:"venue,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// IngestResult reports what an image produced: the staged session awaiting
// confirmation, candidate venues needing a pick, or a new-business signal.
type IngestResult struct {
	Status       string                  `json:"status"`
	SessionUID   string                  `json:"session_uid,omitempty"`
	Category     string                  `json:"category"`
	BusinessType string                  `json:"business_type,omitempty"`
	VenueKey     string                  `json:"venue,omitempty"`
	NewBusiness  bool                    `json:"new_business"`
	Candidates   []models.VenueCandidate `json:"candidates,omitempty"`
	Fields       map[string]any          `json:"fields,omitempty"`
	Message      string                  `json:"message,omitempty"`
}

// IngestService runs the full image pipeline: classify, extract, resolve the
// target business, and stage the extraction under a fresh session.
type IngestService interface {
	ProcessImage(ctx context.Context, input ProcessImageInput) (*IngestResult, error)
	// ProcessWiFiImage extracts and stages wifi credentials for a known
	// venue, skipping classification and discovery.
	ProcessWiFiImage(ctx context.Context, imageURL, venueKey string) (*IngestResult, error)
}

type ingestService struct {
	extractor Extractor
	discovery DiscoveryService
	staging   StagingService
	upserts   UpsertEngine
	hoster    ImageHoster
	logger    *zap.Logger
}

// NewIngestService creates the image ingestion orchestrator. hoster may be
// nil; non-JPEG inputs are then analyzed at their original URL. upserts may
// be nil; source images are then not registered as content.
func NewIngestService(
	extractor Extractor,
	discovery DiscoveryService,
	staging StagingService,
	upserts UpsertEngine,
	hoster ImageHoster,
	logger *zap.Logger,
) IngestService {
	return &ingestService{
		extractor: extractor,
		discovery: discovery,
		staging:   staging,
		upserts:   upserts,
		hoster:    hoster,
		logger:    logger.Named("ingest"),
	}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) ProcessImage(ctx context.Context, input ProcessImageInput) (*IngestResult, error) {
	imageURL, err := s.hostedURL(ctx, input.ImageURL)
	if err != nil {
		return nil, err
	}

	classified, err := s.extractor.Analyze(ctx, AnalyzerInitialImage, imageURL)
	if err != nil {
		return nil, fmt.Errorf("image classification failed: %w", err)
	}
	category := jsonutil.UnwrapString(classified.Fields["category"], valueKey)

	businessType := ""
	if typed, err := s.extractor.Analyze(ctx, AnalyzerBusinessType, imageURL); err != nil {
		s.logger.Warn("business type classification failed", zap.Error(err))
	} else {
		businessType = jsonutil.UnwrapString(typed.Fields["business_type"], valueKey)
	}

	resolution, err := s.discovery.Resolve(ctx, ResolveInput{
		VenueKey:     input.VenueKey,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		BusinessType: businessType,
	})
	if err != nil {
		return nil, err
	}

	result := &IngestResult{
		Category:     category,
		BusinessType: businessType,
		VenueKey:     resolution.VenueKey,
		NewBusiness:  resolution.NewBusiness,
		Candidates:   resolution.Candidates,
	}

	if resolution.NewBusiness {
		result.Status = IngestNewBusiness
		result.Message = "no matching venue found, create the business before staging"
		return result, nil
	}
	if resolution.VenueKey == "" {
		result.Status = IngestNeedsSelection
		result.Message = "multiple venues nearby, select one and resubmit"
		return result, nil
	}

	session := models.SessionContext{UID: uuid.NewString(), ContentURL: imageURL}
	staged, err := s.stageByCategory(ctx, session, category, imageURL, resolution, businessType)
	if err != nil {
		return nil, err
	}
	if !staged.res.OK() {
		return nil, fmt.Errorf("staging failed: %s", staged.res.Message)
	}

	result.Status = IngestStaged
	result.SessionUID = session.UID
	result.Fields = staged.fields
	result.Message = staged.res.Message
	if staged.unsupported {
		result.Status = IngestUnsupported
		result.SessionUID = ""
	}
	return result, nil
}

type stageOutcome struct {
	res         models.Result
	fields      map[string]any
	unsupported bool
}

func (s *ingestService) stageByCategory(
	ctx context.Context,
	session models.SessionContext,
	category, imageURL string,
	resolution *Resolution,
	businessType string,
) (stageOutcome, error) {
	switch category {
	case CategoryWiFiPassword:
		fields, err := s.analyzeFields(ctx, AnalyzerWiFiPassword, imageURL)
		if err != nil {
			return stageOutcome{}, err
		}
		res := s.staging.StageWiFi(ctx, session, resolution.VenueKey, fields)
		if res.OK() {
			s.registerImageContent(ctx, imageURL, "WiFi", resolution.VenueKey)
		}
		return stageOutcome{res: res, fields: fields}, nil

	case CategoryHoursOfOperation:
		fields, err := s.analyzeFields(ctx, AnalyzerHoursOfOperation, imageURL)
		if err != nil {
			return stageOutcome{}, err
		}
		return stageOutcome{res: s.staging.StageHours(ctx, session, resolution.VenueKey, fields), fields: fields}, nil

	case CategoryTapList:
		return s.stageProductList(ctx, session, AnalyzerTapList, imageURL, resolution, businessType)

	case CategoryProductOfferings, CategoryBusinessGeneral:
		return s.stageProductList(ctx, session, AnalyzerProductOffering, imageURL, resolution, businessType)

	default:
		return stageOutcome{
			res:         models.OKResult(fmt.Sprintf("image category %q has no staging path", category)),
			unsupported: true,
		}, nil
	}
}

func (s *ingestService) stageProductList(
	ctx context.Context,
	session models.SessionContext,
	analyzer, imageURL string,
	resolution *Resolution,
	businessType string,
) (stageOutcome, error) {
	analyzed, err := s.extractor.Analyze(ctx, analyzer, imageURL)
	if err != nil {
		return stageOutcome{}, fmt.Errorf("analyzer %s failed: %w", analyzer, err)
	}
	if len(analyzed.Items) > 0 {
		if err := s.staging.RecordAnalyzerOutput(ctx, analyzer, imageURL, analyzed.Items); err != nil {
			return stageOutcome{}, err
		}
	}

	res := s.staging.StageProductOffering(ctx, session, models.StagedProductOffering{
		IsNewBusiness: resolution.NewBusiness,
		BusinessName:  resolution.VenueName,
		BusinessType:  businessType,
		Venue:         resolution.VenueKey,
		ProductList:   itemsJSON(analyzed.Items),
	})
	return stageOutcome{res: res, fields: analyzed.Fields}, nil
}

func (s *ingestService) ProcessWiFiImage(ctx context.Context, imageURL, venueKey string) (*IngestResult, error) {
	if strings.TrimSpace(venueKey) == "" {
		return nil, fmt.Errorf("venue key is required for the direct wifi path")
	}

	hosted, err := s.hostedURL(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	fields, err := s.analyzeFields(ctx, AnalyzerWiFiPassword, hosted)
	if err != nil {
		return nil, err
	}

	session := models.SessionContext{UID: uuid.NewString(), ContentURL: hosted}
	res := s.staging.StageWiFi(ctx, session, venueKey, fields)
	if !res.OK() {
		return nil, fmt.Errorf("staging failed: %s", res.Message)
	}
	s.registerImageContent(ctx, hosted, "WiFi", venueKey)

	return &IngestResult{
		Status:     IngestStaged,
		SessionUID: session.UID,
		Category:   CategoryWiFiPassword,
		VenueKey:   venueKey,
		Fields:     fields,
		Message:    res.Message,
	}, nil
}

// registerImageContent records the source image as content linked to the
// venue, so committed facts keep a reference to the photo they came from.
// Registration is idempotent through the engine's conditional inserts.
func (s *ingestService) registerImageContent(ctx context.Context, imageURL, imageType, venueKey string) {
	if s.upserts == nil {
		return
	}
	res := s.upserts.UpsertImageContent(ctx, ImageContentUpsert{
		ImageURL:  imageURL,
		ImageType: imageType,
		VenueKey:  venueKey,
	})
	if !res.OK() {
		s.logger.Warn("image content registration failed",
			zap.String("image", imageURL),
			zap.String("venue", venueKey),
			zap.String("message", res.Message))
	}
}

func (s *ingestService) analyzeFields(ctx context.Context, analyzer, sourceURL string) (map[string]any, error) {
	analyzed, err := s.extractor.Analyze(ctx, analyzer, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("analyzer %s failed: %w", analyzer, err)
	}
	return analyzed.Fields, nil
}

// hostedURL re-hosts non-JPEG images so the analyzers receive a format they
// accept. JPEGs pass through untouched.
func (s *ingestService) hostedURL(ctx context.Context, imageURL string) (string, error) {
	lower := strings.ToLower(imageURL)
	if s.hoster == nil || strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") {
		return imageURL, nil
	}
	hosted, err := s.hoster.Rehost(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("failed to re-host image: %w", err)
	}
	return hosted, nil
}

func itemsJSON(items []models.AnalyzerOutputItem) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.RawItemJSON)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
