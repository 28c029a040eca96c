package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/services"
)

type mockIngest struct {
	result *services.IngestResult
	err    error

	lastInput    services.ProcessImageInput
	lastVenueKey string
}

func (m *mockIngest) ProcessImage(ctx context.Context, input services.ProcessImageInput) (*services.IngestResult, error) {
	m.lastInput = input
	return m.result, m.err
}

func (m *mockIngest) ProcessWiFiImage(ctx context.Context, imageURL, venueKey string) (*services.IngestResult, error) {
	m.lastVenueKey = venueKey
	return m.result, m.err
}

type mockCommit struct {
	result models.Result

	lastSessionUID string
	lastCategory   string
}

func (m *mockCommit) Commit(ctx context.Context, sessionUID, category string) models.Result {
	m.lastSessionUID = sessionUID
	m.lastCategory = category
	return m.result
}

func newImagesMux(ingest *mockIngest, commit *mockCommit) *http.ServeMux {
	mux := http.NewServeMux()
	NewImagesHandler(ingest, commit, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestProcessImageEndpoint(t *testing.T) {
	ingest := &mockIngest{result: &services.IngestResult{
		Status:     services.IngestStaged,
		SessionUID: "abc-123",
		Category:   "wifi_password",
	}}
	mux := newImagesMux(ingest, &mockCommit{})

	body := `{"image_url": "https://cdn.example/wifi.jpg", "venue": "VNU#thirstygoat.com#web"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images/process", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cdn.example/wifi.jpg", ingest.lastInput.ImageURL)

	var got services.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "abc-123", got.SessionUID)
}

func TestProcessImageRequiresURL(t *testing.T) {
	mux := newImagesMux(&mockIngest{}, &mockCommit{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images/process", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "image_url is required")
}

func TestProcessImageAmbiguousVenue(t *testing.T) {
	mux := newImagesMux(&mockIngest{err: apperrors.ErrAmbiguousEntity}, &mockCommit{})

	body := `{"image_url": "https://cdn.example/wifi.jpg"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images/process", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestWiFiImageEndpointRequiresVenue(t *testing.T) {
	mux := newImagesMux(&mockIngest{}, &mockCommit{})

	body := `{"image_url": "https://cdn.example/wifi.jpg"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images/wifi", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommitSessionEndpoint(t *testing.T) {
	commit := &mockCommit{result: models.OKResult("committed 2 wifi_password rows for session s1")}
	mux := newImagesMux(&mockIngest{}, commit)

	body := `{"session_uid": "s1", "category": "wifi_password"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/commit", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", commit.lastSessionUID)
	assert.Equal(t, "wifi_password", commit.lastCategory)
}

func TestCommitSessionInvalidMapsTo400(t *testing.T) {
	commit := &mockCommit{result: models.InvalidResult("no session uid provided")}
	mux := newImagesMux(&mockIngest{}, commit)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions/commit", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
