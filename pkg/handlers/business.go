package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/services"
)

// BusinessHandler exposes discovery, venue registration and homepage
// processing endpoints.
type BusinessHandler struct {
	discovery services.DiscoveryService
	upserts   services.UpsertEngine
	homepages services.HomepageService
	logger    *zap.Logger
}

// NewBusinessHandler creates the business handler.
func NewBusinessHandler(
	discovery services.DiscoveryService,
	upserts services.UpsertEngine,
	homepages services.HomepageService,
	logger *zap.Logger,
) *BusinessHandler {
	return &BusinessHandler{
		discovery: discovery,
		upserts:   upserts,
		homepages: homepages,
		logger:    logger.Named("business-handler"),
	}
}

// RegisterRoutes registers the business endpoints.
func (h *BusinessHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/business/types", h.ListBusinessTypes)
	mux.HandleFunc("GET /api/business/nearby", h.NearbyBusinesses)
	mux.HandleFunc("POST /api/business/new", h.CreateNewBusiness)
	mux.HandleFunc("POST /api/venues", h.UpsertVenue)
	mux.HandleFunc("POST /api/venues/batch", h.UpsertVenueBatch)
	mux.HandleFunc("POST /api/content/upsert", h.UpsertImageContent)
	mux.HandleFunc("POST /api/homepages", h.EnqueueHomepage)
	mux.HandleFunc("POST /api/homepages/process", h.ProcessPendingHomepages)
}

func (h *BusinessHandler) ListBusinessTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.discovery.ListBusinessTypes(r.Context())
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"business_types": types})
}

func (h *BusinessHandler) NearbyBusinesses(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_query", "lat and lon are required numeric parameters")
		return
	}

	resolution, err := h.discovery.Resolve(r.Context(), services.ResolveInput{
		Latitude:     &lat,
		Longitude:    &lon,
		BusinessType: r.URL.Query().Get("business_type"),
	})
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, resolution)
}

type newBusinessRequest struct {
	BusinessName string  `json:"business_name"`
	BusinessType string  `json:"business_type"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ImageURL     string  `json:"image_url"`
	HomepageURL  string  `json:"homepage_url"`
}

func (h *BusinessHandler) CreateNewBusiness(w http.ResponseWriter, r *http.Request) {
	var req newBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	resolution, res := h.discovery.CreateNewBusiness(r.Context(), services.NewBusinessInput{
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		ImageURL:     req.ImageURL,
		HomepageURL:  req.HomepageURL,
	})
	if !res.OK() {
		_ = WriteResult(w, res)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"message": res.Message, "resolution": resolution})
}

func (h *BusinessHandler) UpsertVenue(w http.ResponseWriter, r *http.Request) {
	var req services.VenueUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	_ = WriteResult(w, h.upserts.UpsertVenueWithContent(r.Context(), req))
}

type venueBatchRequest struct {
	HomepageURL string               `json:"homepage_url"`
	Pages       []services.VenuePage `json:"pages"`
}

func (h *BusinessHandler) UpsertVenueBatch(w http.ResponseWriter, r *http.Request) {
	var req venueBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	results := h.upserts.UpsertVenuePages(r.Context(), req.HomepageURL, req.Pages)
	_ = WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *BusinessHandler) UpsertImageContent(w http.ResponseWriter, r *http.Request) {
	var req services.ImageContentUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	_ = WriteResult(w, h.upserts.UpsertImageContent(r.Context(), req))
}

type homepageRequest struct {
	HomepageURL string `json:"homepage_url"`
}

func (h *BusinessHandler) EnqueueHomepage(w http.ResponseWriter, r *http.Request) {
	var req homepageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HomepageURL == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "homepage_url is required")
		return
	}

	enqueued, err := h.homepages.Enqueue(r.Context(), req.HomepageURL)
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"enqueued": enqueued})
}

type processPendingRequest struct {
	Limit int `json:"limit"`
}

func (h *BusinessHandler) ProcessPendingHomepages(w http.ResponseWriter, r *http.Request) {
	var req processPendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	reports, err := h.homepages.ProcessPending(r.Context(), req.Limit)
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"reports": reports})
}
