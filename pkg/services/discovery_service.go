package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/identity"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/repositories"
)

// ResolveInput carries the identifying signals available for a submitted
// image: an explicit venue key, or the capture coordinates.
type ResolveInput struct {
	VenueKey     string
	Latitude     *float64
	Longitude    *float64
	BusinessType string
}

// Resolution is the outcome of target-entity resolution.
type Resolution struct {
	VenueKey    string                  `json:"venue,omitempty"`
	VenueName   string                  `json:"venue_name,omitempty"`
	NewBusiness bool                    `json:"new_business"`
	Candidates  []models.VenueCandidate `json:"candidates,omitempty"`
}

// NewBusinessInput creates a business from a geotagged image of it.
type NewBusinessInput struct {
	BusinessName string
	BusinessType string
	Latitude     float64
	Longitude    float64
	ImageURL     string
	HomepageURL  string // optional; synthesized from the name when absent
}

// DiscoveryService resolves which business a piece of evidence belongs to.
type DiscoveryService interface {
	// Resolve binds input signals to a venue. An explicit venue key wins;
	// otherwise coordinates produce nearby candidates, and an empty candidate
	// list means the business is new to the directory. With neither signal
	// resolution is impossible and ErrAmbiguousEntity is returned.
	Resolve(ctx context.Context, input ResolveInput) (*Resolution, error)
	// CreateNewBusiness registers a business first seen in a geotagged image,
	// reverse-geocoding its address.
	CreateNewBusiness(ctx context.Context, input NewBusinessInput) (*Resolution, models.Result)
	ListBusinessTypes(ctx context.Context) ([]string, error)
}

type discoveryService struct {
	db             *database.DB
	venues         repositories.VenueRepository
	establishments repositories.EstablishmentRepository
	geocoder       Geocoder
	upserts        UpsertEngine
	radiusMiles    float64
	maxResults     int
	logger         *zap.Logger
}

// NewDiscoveryService creates the discovery service. radiusMiles and
// maxResults bound the nearby-venue search.
func NewDiscoveryService(
	db *database.DB,
	venues repositories.VenueRepository,
	establishments repositories.EstablishmentRepository,
	geocoder Geocoder,
	upserts UpsertEngine,
	radiusMiles float64,
	maxResults int,
	logger *zap.Logger,
) DiscoveryService {
	return &discoveryService{
		db:             db,
		venues:         venues,
		establishments: establishments,
		geocoder:       geocoder,
		upserts:        upserts,
		radiusMiles:    radiusMiles,
		maxResults:     maxResults,
		logger:         logger.Named("discovery"),
	}
}

var _ DiscoveryService = (*discoveryService)(nil)

func (s *discoveryService) Resolve(ctx context.Context, input ResolveInput) (*Resolution, error) {
	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	if input.VenueKey != "" {
		name, err := s.venues.GetName(ctx, input.VenueKey)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve venue %s: %w", input.VenueKey, err)
		}
		return &Resolution{VenueKey: input.VenueKey, VenueName: name, NewBusiness: false}, nil
	}

	if input.Latitude == nil || input.Longitude == nil {
		return nil, apperrors.ErrAmbiguousEntity
	}

	candidates, err := s.venues.Nearby(ctx, *input.Latitude, *input.Longitude,
		s.radiusMiles, input.BusinessType, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby venues: %w", err)
	}

	if len(candidates) == 0 {
		s.logger.Info("no venues near coordinates, treating as new business",
			zap.Float64("lat", *input.Latitude), zap.Float64("lon", *input.Longitude))
		return &Resolution{NewBusiness: true}, nil
	}
	return &Resolution{NewBusiness: false, Candidates: candidates}, nil
}

func (s *discoveryService) CreateNewBusiness(ctx context.Context, input NewBusinessInput) (*Resolution, models.Result) {
	if strings.TrimSpace(input.BusinessName) == "" {
		return nil, models.InvalidResult("business name is required")
	}

	addr := &models.Address{}
	if s.geocoder != nil {
		reversed, err := s.geocoder.ReverseGeocode(ctx, input.Latitude, input.Longitude)
		if err != nil {
			s.logger.Warn("reverse geocoding failed, creating business without address", zap.Error(err))
		} else {
			addr = reversed
		}
	}

	homepage := input.HomepageURL
	if homepage == "" {
		homepage = syntheticHomepage(input.BusinessName)
	}

	res := s.upserts.UpsertVenueWithContent(ctx, VenueUpsert{
		HomepageURL:  homepage,
		VenueURL:     homepage,
		VenueName:    input.BusinessName,
		BusinessName: input.BusinessName,
		BusinessType: input.BusinessType,
		AddressLine1: addr.Line1,
		AddressLine2: addr.Line2,
		City:         addr.City,
		State:        addr.StateOrProvinceCode,
		CountryCode:  addr.CountryCode,
		PostalCode:   addr.PostalCode,
		Latitude:     &input.Latitude,
		Longitude:    &input.Longitude,
	})
	if !res.OK() {
		return nil, res
	}

	venueKey, err := identity.VenueKey(homepage)
	if err != nil {
		return nil, models.InvalidResult(err.Error())
	}

	if input.ImageURL != "" {
		if imgRes := s.upserts.UpsertImageContent(ctx, ImageContentUpsert{
			ImageURL:  input.ImageURL,
			ImageType: "New Business",
			VenueKey:  venueKey,
		}); !imgRes.OK() {
			return nil, imgRes
		}
	}

	return &Resolution{VenueKey: venueKey, VenueName: input.BusinessName, NewBusiness: true},
		models.OKResult(fmt.Sprintf("business %s created as %s", input.BusinessName, venueKey))
}

func (s *discoveryService) ListBusinessTypes(ctx context.Context) ([]string, error) {
	scope, err := s.db.NewScope(ctx)
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	return s.establishments.ListBusinessTypes(ctx)
}

// syntheticHomepage derives a placeholder site identity for a business that
// has no known web presence yet, so its keys stay derivable from the name.
func syntheticHomepage(businessName string) string {
	slug := strings.ToLower(strings.TrimSpace(businessName))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "#", "")
	return "https://" + slug + ".pending.local"
}
