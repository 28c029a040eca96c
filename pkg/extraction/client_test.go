package extraction

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		Endpoint:     srv.URL,
		APIKey:       "test-key",
		APIVersion:   "2024-12-01-preview",
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  time.Second,
	}, zap.NewNop())
}

func TestAnalyzeScalarFields(t *testing.T) {
	var polls atomic.Int32
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))

		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]any{"id": "op-1", "status": "Running"})
			return
		}

		if polls.Add(1) < 2 {
			json.NewEncoder(w).Encode(map[string]any{"id": "op-1", "status": "Running"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "op-1", "status": "Succeeded",
			"result": map[string]any{
				"contents": []any{map[string]any{
					"fields": map[string]any{
						"wifi_network":  map[string]any{"valueString": "Guest"},
						"wifi_password": map[string]any{"valueString": "hunter2"},
					},
				}},
			},
		})
	}))

	result, err := client.Analyze(t.Context(), "cu-wifi-password-analyzer", "https://blob.example/wifi.jpg")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, map[string]any{"valueString": "Guest"}, result.Fields["wifi_network"])
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestAnalyzeListOutput(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]any{"id": "op-2", "status": "Running"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "op-2", "status": "Succeeded",
			"result": map[string]any{
				"contents": []any{map[string]any{
					"fields": map[string]any{
						"output_list": map[string]any{
							"valueArray": []any{
								map[string]any{"name": "IPA", "price": "7"},
								map[string]any{"name": "Stout", "price": "8"},
							},
						},
					},
				}},
			},
		})
	}))

	result, err := client.Analyze(t.Context(), "cu-tap-list-parser", "https://blob.example/taps.jpg")
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.JSONEq(t, `{"name":"IPA","price":"7"}`, result.Items[0].RawItemJSON)
	assert.Equal(t, "https://blob.example/taps.jpg", result.Items[0].Source)
	assert.False(t, result.Items[0].PullDatetime.IsZero())
	assert.NotContains(t, result.Fields, "output_list")
}

func TestAnalyzeFailedRun(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]any{"id": "op-3", "status": "Running"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "op-3", "status": "Failed",
			"error": map[string]any{"code": "InvalidImage", "message": "unreadable"},
		})
	}))

	_, err := client.Analyze(t.Context(), "cu-initial-image-analyzer", "https://blob.example/bad.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidImage")
}

func TestAnalyzeMissingOperationID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "Running"})
	}))

	_, err := client.Analyze(t.Context(), "cu-initial-image-analyzer", "https://blob.example/x.jpg")
	assert.Error(t, err)
}
