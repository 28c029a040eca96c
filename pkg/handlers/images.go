package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/services"
)

// ImagesHandler exposes the image ingestion and confirmation endpoints.
type ImagesHandler struct {
	ingest services.IngestService
	commit services.CommitService
	logger *zap.Logger
}

// NewImagesHandler creates the images handler.
func NewImagesHandler(ingest services.IngestService, commit services.CommitService, logger *zap.Logger) *ImagesHandler {
	return &ImagesHandler{
		ingest: ingest,
		commit: commit,
		logger: logger.Named("images-handler"),
	}
}

// RegisterRoutes registers the image pipeline endpoints.
func (h *ImagesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/images/process", h.ProcessImage)
	mux.HandleFunc("POST /api/images/wifi", h.ProcessWiFiImage)
	mux.HandleFunc("POST /api/sessions/commit", h.CommitSession)
}

func (h *ImagesHandler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	var input services.ProcessImageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if input.ImageURL == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "image_url is required")
		return
	}

	result, err := h.ingest.ProcessImage(r.Context(), input)
	if err != nil {
		h.logger.Error("image processing failed", zap.String("image", input.ImageURL), zap.Error(err))
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, result)
}

type wifiImageRequest struct {
	ImageURL string `json:"image_url"`
	Venue    string `json:"venue"`
}

func (h *ImagesHandler) ProcessWiFiImage(w http.ResponseWriter, r *http.Request) {
	var req wifiImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.ImageURL == "" || req.Venue == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "image_url and venue are required")
		return
	}

	result, err := h.ingest.ProcessWiFiImage(r.Context(), req.ImageURL, req.Venue)
	if err != nil {
		h.logger.Error("wifi image processing failed", zap.String("venue", req.Venue), zap.Error(err))
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, result)
}

type commitRequest struct {
	SessionUID string `json:"session_uid"`
	Category   string `json:"category"`
}

func (h *ImagesHandler) CommitSession(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}

	_ = WriteResult(w, h.commit.Commit(r.Context(), req.SessionUID, req.Category))
}
