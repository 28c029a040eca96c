package geo

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/apperrors"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "123 Main St, Springfield", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode([]map[string]string{{"lat": "39.78", "lon": "-89.65"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "directory-engine-test", zap.NewNop())
	lat, lon, err := client.Geocode(t.Context(), "123 Main St, Springfield")
	require.NoError(t, err)
	assert.Equal(t, 39.78, lat)
	assert.Equal(t, -89.65, lon)
}

func TestGeocodeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "directory-engine-test", zap.NewNop())
	_, _, err := client.Geocode(t.Context(), "nowhere at all")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestReverseGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"display_name": "742 Evergreen Terrace, Springfield, OR 97475, USA",
			"address": map[string]string{
				"house_number": "742",
				"road":         "Evergreen Terrace",
				"town":         "Springfield",
				"state":        "Oregon",
				"country_code": "us",
				"postcode":     "97475",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "directory-engine-test", zap.NewNop())
	addr, err := client.ReverseGeocode(t.Context(), 44.05, -123.02)
	require.NoError(t, err)
	assert.Equal(t, "742 Evergreen Terrace", addr.Line1)
	assert.Equal(t, "Springfield", addr.City)
	assert.Equal(t, "97475", addr.PostalCode)
	assert.Equal(t, "742 Evergreen Terrace, Springfield, OR 97475, USA", addr.FullAddress)
}

func TestGeocodeRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{{"lat": "1.5", "lon": "2.5"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "directory-engine-test", zap.NewNop())
	lat, lon, err := client.Geocode(t.Context(), "somewhere")
	require.NoError(t, err)
	assert.Equal(t, 1.5, lat)
	assert.Equal(t, 2.5, lon)
	assert.Equal(t, int32(2), calls.Load())
}
