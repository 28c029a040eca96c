package scrape

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const samplePage = `<!DOCTYPE html>
<html><head>
<link rel="shortcut icon" href="/favicon.ico">
</head><body>
<img src="/assets/brand-logo.png" alt="Thirsty Goat">
<a href="/locations/downtown">Downtown</a>
<a href="https://www.facebook.com/thirstygoat">Facebook</a>
<a href="https://instagram.com/thirstygoat">Instagram</a>
<a href="https://facebook.com/duplicate">Other Facebook</a>
<a href="#menu">Menu anchor</a>
<a href="mailto:hi@example.com">Email</a>
</body></html>`

func TestFetchExtractsPageFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	fetcher := NewFetcher("directory-engine-test", zap.NewNop())
	snapshot, err := fetcher.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, samplePage, snapshot.HTML)
	assert.Equal(t, srv.URL+"/assets/brand-logo.png", snapshot.LogoURL)
	assert.Equal(t, "https://www.facebook.com/thirstygoat", snapshot.SocialLinks["Facebook"],
		"first social link per network wins")
	assert.Equal(t, "https://instagram.com/thirstygoat", snapshot.SocialLinks["Instagram"])
	assert.Contains(t, snapshot.Links, srv.URL+"/locations/downtown")

	for _, link := range snapshot.Links {
		assert.NotContains(t, link, "mailto:")
		assert.NotContains(t, link, "#menu")
	}
}

func TestFetchFallsBackToIconWhenNoLogoImage(t *testing.T) {
	page := `<html><head><link rel="icon" href="/icon.png"></head><body><img src="/photo.jpg"></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	fetcher := NewFetcher("directory-engine-test", zap.NewNop())
	snapshot, err := fetcher.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/icon.png", snapshot.LogoURL)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	fetcher := NewFetcher("directory-engine-test", zap.NewNop())
	_, err := fetcher.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	fetcher := NewFetcher("directory-engine-test", zap.NewNop())
	_, err := fetcher.Fetch(t.Context(), "not-a-url")
	assert.Error(t, err)
}
