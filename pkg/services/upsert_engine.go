package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/database"
	"github.com/venuelab/directory-engine/pkg/identity"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/repositories"
)

// systemActor is recorded as created_by on rows written by the service.
const systemActor = "directory-engine"

// VenueUpsert describes one venue page to register, with enough context to
// create the owning establishment if it does not exist yet.
type VenueUpsert struct {
	HomepageURL    string   `json:"homepage_url"`
	VenueURL       string   `json:"venue_url"` // absolute, or '/'-relative to the homepage
	VenueName      string   `json:"venue_name"`
	BusinessName   string   `json:"business_name"`
	BusinessType   string   `json:"business_type"`
	AddressLine1   string   `json:"address_line_1"`
	AddressLine2   string   `json:"address_line_2"`
	City           string   `json:"city"`
	State          string   `json:"state_or_province_code"`
	CountryCode    string   `json:"country_code"`
	PostalCode     string   `json:"postal_code"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	ProductListURL string   `json:"product_list_url,omitempty"`
	// Relationship type for the product list page, e.g. "Venue Beer List".
	ProductListType string `json:"product_list_type,omitempty"`
}

// VenuePage is one item of a batch venue-page registration.
type VenuePage struct {
	VenueURL  string `json:"venue_url"`
	VenueName string `json:"venue_name"`
}

// ImageContentUpsert registers an already-hosted image against a venue or an
// establishment.
type ImageContentUpsert struct {
	ImageURL    string `json:"image_url"`
	ImageType   string `json:"image_type"` // "WiFi", "New Business", "Business Logo"
	VenueKey    string `json:"venue,omitempty"`
	HomepageURL string `json:"homepage_url,omitempty"`
}

// UpsertEngine writes directory entities with conditional-insert semantics:
// every operation is idempotent and re-running it with equivalent input is a
// no-op. Entity and content rows always land before the link rows that
// reference them, inside one transaction per operation.
type UpsertEngine interface {
	UpsertEstablishment(ctx context.Context, homepageURL, businessName, businessType string) models.Result
	UpsertVenueWithContent(ctx context.Context, req VenueUpsert) models.Result
	UpsertVenuePages(ctx context.Context, homepageURL string, pages []VenuePage) []models.Result
	UpsertSocialPage(ctx context.Context, network, pageURL, homepageURL string) models.Result
	UpsertLogo(ctx context.Context, imageURL, homepageURL string) models.Result
	UpsertImageContent(ctx context.Context, req ImageContentUpsert) models.Result
}

type upsertEngine struct {
	db             *database.DB
	establishments repositories.EstablishmentRepository
	venues         repositories.VenueRepository
	content        repositories.ContentRepository
	geocoder       Geocoder
	logger         *zap.Logger
}

// NewUpsertEngine creates the directory upsert engine. geocoder may be nil;
// venues without coordinates are then stored without them.
func NewUpsertEngine(
	db *database.DB,
	establishments repositories.EstablishmentRepository,
	venues repositories.VenueRepository,
	content repositories.ContentRepository,
	geocoder Geocoder,
	logger *zap.Logger,
) UpsertEngine {
	return &upsertEngine{
		db:             db,
		establishments: establishments,
		venues:         venues,
		content:        content,
		geocoder:       geocoder,
		logger:         logger.Named("upsert-engine"),
	}
}

var _ UpsertEngine = (*upsertEngine)(nil)

func (e *upsertEngine) UpsertEstablishment(ctx context.Context, homepageURL, businessName, businessType string) models.Result {
	estKey, err := identity.EstablishmentKey(homepageURL)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	if businessName == "" {
		businessName = hostOf(estKey)
	}

	scope, err := e.db.NewScope(ctx)
	if err != nil {
		return models.StorageResult(err.Error())
	}
	defer scope.Close()
	ctx = database.WithScope(ctx, scope)

	inserted, err := e.establishments.InsertIfAbsent(ctx, &models.Establishment{
		Establishment:     estKey,
		EstablishmentName: businessName,
		BusinessType:      businessType,
		IsActive:          true,
		CreatedBy:         systemActor,
	})
	if err != nil {
		e.logger.Error("establishment upsert failed", zap.String("establishment", estKey), zap.Error(err))
		return models.StorageResult(fmt.Sprintf("failed to upsert establishment: %v", err))
	}
	if !inserted {
		return models.OKResult(fmt.Sprintf("establishment %s already exists", estKey))
	}
	return models.OKResult(fmt.Sprintf("establishment %s created", estKey))
}

func (e *upsertEngine) UpsertVenueWithContent(ctx context.Context, req VenueUpsert) models.Result {
	if strings.TrimSpace(req.VenueURL) == "" {
		return models.InvalidResult("venue url is required")
	}

	venueURL := identity.ResolveRelative(req.VenueURL, req.HomepageURL)

	estKey, err := identity.EstablishmentKey(req.HomepageURL)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	venueKey, err := identity.VenueKey(venueURL)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	contentKey, err := identity.ContentKey(venueURL, identity.ClassWeb)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	linkKey, err := identity.VenueContentLinkKey(venueURL, venueURL, "Venue Homepage")
	if err != nil {
		return models.InvalidResult(err.Error())
	}

	lat, lon := req.Latitude, req.Longitude
	if lat == nil || lon == nil {
		if addr := joinNonEmpty(req.AddressLine1, req.City, req.State, req.PostalCode); addr != "" && e.geocoder != nil {
			gLat, gLon, err := e.geocoder.Geocode(ctx, addr)
			if err != nil {
				e.logger.Warn("geocoding failed, storing venue without coordinates",
					zap.String("venue", venueKey), zap.Error(err))
			} else {
				lat, lon = &gLat, &gLon
			}
		}
	}

	scope, err := e.db.NewScope(ctx)
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

	businessName := req.BusinessName
	if businessName == "" {
		businessName = hostOf(estKey)
	}
	if _, err := e.establishments.InsertIfAbsent(ctx, &models.Establishment{
		Establishment:     estKey,
		EstablishmentName: businessName,
		BusinessType:      req.BusinessType,
		IsActive:          true,
		CreatedBy:         systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to upsert establishment: %v", err))
	}

	venueName := req.VenueName
	if venueName == "" {
		venueName = businessName
	}
	if _, err := e.venues.InsertIfAbsent(ctx, &models.Venue{
		Venue:               venueKey,
		VenueEstablishment:  estKey,
		VenueName:           venueName,
		AddressLine1:        req.AddressLine1,
		AddressLine2:        req.AddressLine2,
		City:                req.City,
		StateOrProvinceCode: req.State,
		CountryCode:         req.CountryCode,
		PostalCode:          req.PostalCode,
		Latitude:            lat,
		Longitude:           lon,
		IsActive:            true,
		CreatedBy:           systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to upsert venue: %v", err))
	}

	if _, err := e.content.InsertIfAbsent(ctx, &models.Content{
		Content:         contentKey,
		ContentType:     "Venue Homepage",
		ContentGroup:    "Homepage",
		ContentCategory: "Website",
		ContentURL:      venueURL,
		IsActive:        true,
		CreatedBy:       systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to upsert venue page content: %v", err))
	}

	if _, err := e.content.InsertVenueLinkIfAbsent(ctx, &models.VenueContentLink{
		VenueToContent:     linkKey,
		VenueToContentType: "Venue Homepage",
		Venue:              venueKey,
		Content:            contentKey,
		IsActive:           true,
		CreatedBy:          systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to link venue page: %v", err))
	}

	if req.ProductListURL != "" {
		if res := e.upsertProductListPage(ctx, venueKey, venueURL, req); !res.OK() {
			return res
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to commit venue upsert: %v", err))
	}

	e.logger.Info("venue upserted", zap.String("venue", venueKey), zap.String("establishment", estKey))
	return models.OKResult(fmt.Sprintf("venue %s upserted", venueKey))
}

// upsertProductListPage registers an auxiliary product-list page (beer list,
// menu) for the venue. Runs inside the caller's transaction.
func (e *upsertEngine) upsertProductListPage(ctx context.Context, venueKey, venueURL string, req VenueUpsert) models.Result {
	listURL := identity.ResolveRelative(req.ProductListURL, req.HomepageURL)
	listType := req.ProductListType
	if listType == "" {
		listType = "Product List"
	}

	listContentKey, err := identity.ContentKey(listURL, identity.ClassWeb)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	listLinkKey, err := identity.VenueContentLinkKey(venueURL, listURL, listType)
	if err != nil {
		return models.InvalidResult(err.Error())
	}

	if _, err := e.content.InsertIfAbsent(ctx, &models.Content{
		Content:         listContentKey,
		ContentType:     listType,
		ContentGroup:    "Web Page",
		ContentCategory: "Website",
		ContentURL:      listURL,
		IsActive:        true,
		CreatedBy:       systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to upsert product list content: %v", err))
	}

	if _, err := e.content.InsertVenueLinkIfAbsent(ctx, &models.VenueContentLink{
		VenueToContent:     listLinkKey,
		VenueToContentType: listType,
		Venue:              venueKey,
		Content:            listContentKey,
		IsActive:           true,
		CreatedBy:          systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to link product list: %v", err))
	}
	return models.OKResult("product list page upserted")
}

// UpsertVenuePages registers a batch of venue pages against one homepage.
// Each item is validated and written independently; a failing item yields its
// own result and never aborts the remainder.
func (e *upsertEngine) UpsertVenuePages(ctx context.Context, homepageURL string, pages []VenuePage) []models.Result {
	results := make([]models.Result, 0, len(pages))
	for _, page := range pages {
		results = append(results, e.UpsertVenueWithContent(ctx, VenueUpsert{
			HomepageURL: homepageURL,
			VenueURL:    page.VenueURL,
			VenueName:   page.VenueName,
		}))
	}
	return results
}

func (e *upsertEngine) UpsertSocialPage(ctx context.Context, network, pageURL, homepageURL string) models.Result {
	if strings.TrimSpace(network) == "" || strings.TrimSpace(pageURL) == "" {
		return models.InvalidResult("network and page url are required")
	}
	return e.upsertEstablishmentContent(ctx, homepageURL, establishmentContent{
		url:      pageURL,
		class:    identity.ClassWeb,
		ctype:    network + " Homepage",
		group:    "Homepage",
		category: "Website",
		linkType: network + " Page",
	})
}

func (e *upsertEngine) UpsertLogo(ctx context.Context, imageURL, homepageURL string) models.Result {
	if strings.TrimSpace(imageURL) == "" {
		return models.InvalidResult("image url is required")
	}
	return e.upsertEstablishmentContent(ctx, homepageURL, establishmentContent{
		url:      imageURL,
		class:    identity.ClassImage,
		ctype:    "Business Logo",
		group:    "Web Image",
		category: "Image",
		linkType: "Logo Image",
	})
}

type establishmentContent struct {
	url      string
	class    identity.ContentClass
	ctype    string
	group    string
	category string
	linkType string
}

func (e *upsertEngine) upsertEstablishmentContent(ctx context.Context, homepageURL string, c establishmentContent) models.Result {
	estKey, err := identity.EstablishmentKey(homepageURL)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	resolved := identity.ResolveRelative(c.url, homepageURL)
	contentKey, err := identity.ContentKey(resolved, c.class)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	linkKey, err := identity.EstablishmentContentLinkKey(homepageURL, resolved, c.linkType)
	if err != nil {
		return models.InvalidResult(err.Error())
	}

	scope, err := e.db.NewScope(ctx)
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

	if _, err := e.establishments.InsertIfAbsent(ctx, &models.Establishment{
		Establishment:     estKey,
		EstablishmentName: hostOf(estKey),
		IsActive:          true,
		CreatedBy:         systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to upsert establishment: %v", err))
	}

	if _, err := e.content.InsertIfAbsent(ctx, &models.Content{
		Content:         contentKey,
		ContentType:     c.ctype,
		ContentGroup:    c.group,
		ContentCategory: c.category,
		ContentURL:      resolved,
		IsActive:        true,
		CreatedBy:       systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to upsert content: %v", err))
	}

	if _, err := e.content.InsertEstablishmentLinkIfAbsent(ctx, &models.EstablishmentContentLink{
		EstablishmentToContent:     linkKey,
		EstablishmentToContentType: c.linkType,
		Establishment:              estKey,
		Content:                    contentKey,
		IsActive:                   true,
		CreatedBy:                  systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to link content: %v", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to commit content upsert: %v", err))
	}
	return models.OKResult(fmt.Sprintf("content %s upserted for %s", contentKey, estKey))
}

func (e *upsertEngine) UpsertImageContent(ctx context.Context, req ImageContentUpsert) models.Result {
	if strings.TrimSpace(req.ImageURL) == "" {
		return models.InvalidResult("image url is required")
	}
	ctype, group, category, ok := imageContentTriple(req.ImageType)
	if !ok {
		return models.InvalidResult(fmt.Sprintf("unknown image type %q", req.ImageType))
	}

	if req.VenueKey == "" {
		if req.HomepageURL == "" {
			return models.InvalidResult("either a venue or a homepage url is required")
		}
		return e.upsertEstablishmentContent(ctx, req.HomepageURL, establishmentContent{
			url:      req.ImageURL,
			class:    identity.ClassImage,
			ctype:    ctype,
			group:    group,
			category: category,
			linkType: req.ImageType + " Image",
		})
	}

	venueURL, err := identity.VenueURLFromKey(req.VenueKey)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	contentKey, err := identity.ContentKey(req.ImageURL, identity.ClassImage)
	if err != nil {
		return models.InvalidResult(err.Error())
	}
	linkKey, err := identity.VenueContentLinkKey(venueURL, req.ImageURL, req.ImageType+" Image")
	if err != nil {
		return models.InvalidResult(err.Error())
	}

	scope, err := e.db.NewScope(ctx)
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

	if _, err := e.content.InsertIfAbsent(ctx, &models.Content{
		Content:         contentKey,
		ContentType:     ctype,
		ContentGroup:    group,
		ContentCategory: category,
		ContentURL:      req.ImageURL,
		IsActive:        true,
		CreatedBy:       systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to upsert image content: %v", err))
	}

	if _, err := e.content.InsertVenueLinkIfAbsent(ctx, &models.VenueContentLink{
		VenueToContent:     linkKey,
		VenueToContentType: req.ImageType + " Image",
		Venue:              req.VenueKey,
		Content:            contentKey,
		IsActive:           true,
		CreatedBy:          systemActor,
	}); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to link image content: %v", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return models.StorageResult(fmt.Sprintf("failed to commit image upsert: %v", err))
	}
	return models.OKResult(fmt.Sprintf("image content %s upserted", contentKey))
}

// imageContentTriple maps an image type to its content type/group/category.
func imageContentTriple(imageType string) (ctype, group, category string, ok bool) {
	switch imageType {
	case "WiFi":
		return "WiFi", "Cellphone Image", "Image", true
	case "New Business":
		return "Business Image", "Cellphone Image", "Image", true
	case "Business Logo":
		return "Business Logo", "Web Image", "Image", true
	default:
		return "", "", "", false
	}
}

// hostOf strips the content-class suffix from an establishment key.
func hostOf(estKey string) string {
	return strings.TrimSuffix(estKey, identity.Separator+string(identity.ClassWeb))
}

func joinNonEmpty(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
