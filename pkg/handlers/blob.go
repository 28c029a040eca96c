package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/services"
)

// BlobHandler exposes file hosting endpoints.
type BlobHandler struct {
	blobs  services.BlobStore
	logger *zap.Logger
}

// NewBlobHandler creates the blob handler.
func NewBlobHandler(blobs services.BlobStore, logger *zap.Logger) *BlobHandler {
	return &BlobHandler{blobs: blobs, logger: logger.Named("blob-handler")}
}

// RegisterRoutes registers the blob endpoints.
func (h *BlobHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/blob/upload", h.Upload)
	mux.HandleFunc("GET /api/blob/size", h.Size)
}

// Upload accepts a multipart form with a "file" part plus "container" and
// optional "name" and "overwrite" fields, and returns the hosted URL.
func (h *BlobHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "a file part is required")
		return
	}
	defer file.Close()

	container := r.FormValue("container")
	if container == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "container is required")
		return
	}
	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	overwrite := r.FormValue("overwrite") == "true"

	url, err := h.blobs.Upload(r.Context(), container, name, file, overwrite)
	if err != nil {
		h.logger.Error("blob upload failed", zap.String("container", container), zap.String("name", name), zap.Error(err))
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *BlobHandler) Size(w http.ResponseWriter, r *http.Request) {
	container := r.URL.Query().Get("container")
	name := r.URL.Query().Get("name")
	if container == "" || name == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_query", "container and name are required")
		return
	}

	size, err := h.blobs.Size(r.Context(), container, name)
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]int64{"size_bytes": size})
}
