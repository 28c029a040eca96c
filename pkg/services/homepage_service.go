package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/identity"
	"github.com/venuelab/directory-engine/pkg/jsonutil"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/repositories"
)

// HomepageReport summarizes what processing one homepage produced.
type HomepageReport struct {
	HomepageURL  string          `json:"homepage_url"`
	BusinessType string          `json:"business_type,omitempty"`
	VenueResults []models.Result `json:"venue_results,omitempty"`
	LogoResult   *models.Result  `json:"logo_result,omitempty"`
	SocialResult []models.Result `json:"social_results,omitempty"`
}

// HomepageService processes business homepages: it registers the
// establishment, its logo and social pages, classifies the business from the
// page HTML, and extracts per-location venue records through the LLM agent.
type HomepageService interface {
	ProcessHomepage(ctx context.Context, homepageURL string, snapshot *PageSnapshot) (*HomepageReport, error)
	Enqueue(ctx context.Context, homepageURL string) (bool, error)
	// ProcessPending drains up to limit queued homepages through the fetcher.
	ProcessPending(ctx context.Context, limit int) ([]*HomepageReport, error)
}

type homepageService struct {
	db            *database.DB
	homepages     repositories.HomepageRepository
	upserts       UpsertEngine
	extractor     Extractor
	locations     LocationAgent
	venuePage     VenuePageAgent
	fetcher       PageFetcher
	blobs         BlobStore
	pageContainer string
	logger        *zap.Logger
}

// NewHomepageService creates the homepage processor. fetcher may be nil when
// only ProcessHomepage with caller-supplied snapshots is used; blobs may be
// nil to skip HTML re-hosting (business-type classification is then skipped).
func NewHomepageService(
	db *database.DB,
	homepages repositories.HomepageRepository,
	upserts UpsertEngine,
	extractor Extractor,
	locations LocationAgent,
	venuePage VenuePageAgent,
	fetcher PageFetcher,
	blobs BlobStore,
	pageContainer string,
	logger *zap.Logger,
) HomepageService {
	return &homepageService{
		db:            db,
		homepages:     homepages,
		upserts:       upserts,
		extractor:     extractor,
		locations:     locations,
		venuePage:     venuePage,
		fetcher:       fetcher,
		blobs:         blobs,
		pageContainer: pageContainer,
		logger:        logger.Named("homepage"),
	}
}

var _ HomepageService = (*homepageService)(nil)

func (s *homepageService) ProcessHomepage(ctx context.Context, homepageURL string, snapshot *PageSnapshot) (*HomepageReport, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("a page snapshot is required")
	}

	report := &HomepageReport{HomepageURL: homepageURL}

	businessType := s.classifyFromHTML(ctx, homepageURL, snapshot.HTML)
	report.BusinessType = businessType

	if res := s.upserts.UpsertEstablishment(ctx, homepageURL, "", businessType); !res.OK() {
		return report, fmt.Errorf("failed to register establishment: %s", res.Message)
	}

	if snapshot.LogoURL != "" {
		res := s.upserts.UpsertLogo(ctx, snapshot.LogoURL, homepageURL)
		report.LogoResult = &res
		if !res.OK() {
			s.logger.Warn("logo upsert failed", zap.String("homepage", homepageURL), zap.String("message", res.Message))
		}
	}

	for network, pageURL := range snapshot.SocialLinks {
		res := s.upserts.UpsertSocialPage(ctx, network, pageURL, homepageURL)
		report.SocialResult = append(report.SocialResult, res)
		if !res.OK() {
			s.logger.Warn("social page upsert failed",
				zap.String("network", network), zap.String("message", res.Message))
		}
	}

	if s.locations != nil {
		locations, err := s.locations.ExtractLocations(ctx, homepageURL, snapshot.HTML)
		if err != nil {
			return report, fmt.Errorf("location extraction failed: %w", err)
		}
		if len(locations) == 0 && s.venuePage != nil {
			// No location pages linked: the homepage is the venue page.
			loc, err := s.venuePage.ExtractVenue(ctx, homepageURL, snapshot.HTML)
			if err != nil {
				return report, fmt.Errorf("venue page extraction failed: %w", err)
			}
			locations = append(locations, *loc)
		}
		for _, loc := range locations {
			report.VenueResults = append(report.VenueResults, s.upserts.UpsertVenueWithContent(ctx, VenueUpsert{
				HomepageURL:    homepageURL,
				VenueURL:       loc.VenueURL,
				VenueName:      loc.VenueName,
				BusinessType:   businessType,
				AddressLine1:   loc.AddressLine1,
				AddressLine2:   loc.AddressLine2,
				City:           loc.City,
				State:          loc.State,
				CountryCode:    loc.CountryCode,
				PostalCode:     loc.PostalCode,
				ProductListURL: loc.ProductListURL,
			}))
		}
	}

	return report, nil
}

// classifyFromHTML re-hosts the page HTML and runs the webpage business-type
// analyzer over it. Classification is best-effort.
func (s *homepageService) classifyFromHTML(ctx context.Context, homepageURL, html string) string {
	if s.blobs == nil || s.extractor == nil || html == "" {
		return ""
	}

	estKey, err := identity.EstablishmentKey(homepageURL)
	if err != nil {
		return ""
	}
	name := hostOf(estKey) + ".html"

	hostedURL, err := s.blobs.Upload(ctx, s.pageContainer, name, strings.NewReader(html), true)
	if err != nil {
		s.logger.Warn("failed to upload page html", zap.String("homepage", homepageURL), zap.Error(err))
		return ""
	}

	analyzed, err := s.extractor.Analyze(ctx, AnalyzerBusinessTypeWebpage, hostedURL)
	if err != nil {
		s.logger.Warn("webpage business type classification failed",
			zap.String("homepage", homepageURL), zap.Error(err))
		return ""
	}
	return jsonutil.UnwrapString(analyzed.Fields["business_type"], valueKey)
}

func (s *homepageService) Enqueue(ctx context.Context, homepageURL string) (bool, error) {
	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return false, err
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	return s.homepages.Enqueue(ctx, homepageURL)
}

func (s *homepageService) ProcessPending(ctx context.Context, limit int) ([]*HomepageReport, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("no page fetcher configured")
	}

	pending, err := s.pendingHomepages(ctx, limit)
	if err != nil {
		return nil, err
	}

	var reports []*HomepageReport
	for _, homepageURL := range pending {
		snapshot, err := s.fetcher.Fetch(ctx, homepageURL)
		if err != nil {
			s.logger.Error("failed to fetch homepage", zap.String("homepage", homepageURL), zap.Error(err))
			continue
		}

		report, err := s.ProcessHomepage(ctx, homepageURL, snapshot)
		if err != nil {
			s.logger.Error("failed to process homepage", zap.String("homepage", homepageURL), zap.Error(err))
			continue
		}
		reports = append(reports, report)

		if err := s.markProcessed(ctx, homepageURL); err != nil {
			s.logger.Error("failed to mark homepage processed", zap.String("homepage", homepageURL), zap.Error(err))
		}
	}
	return reports, nil
}

func (s *homepageService) pendingHomepages(ctx context.Context, limit int) ([]string, error) {
	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	return s.homepages.Pending(ctx, limit)
}

func (s *homepageService) markProcessed(ctx context.Context, homepageURL string) error {
	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return err
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	return s.homepages.MarkProcessed(ctx, homepageURL)
}
