// Package scrape fetches business homepages over plain HTTP and extracts
// the page features the homepage pipeline consumes: logo candidates,
// social profile links, and outbound links.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/retry"
	"github.com/venuelab/directory-engine/pkg/services"
)

const maxPageBytes = 4 << 20

// socialHosts maps a hostname fragment to the network name used in
// content link types.
var socialHosts = map[string]string{
	"facebook.com":  "Facebook",
	"instagram.com": "Instagram",
	"twitter.com":   "Twitter",
	"x.com":         "Twitter",
	"linkedin.com":  "LinkedIn",
	"youtube.com":   "YouTube",
	"tiktok.com":    "TikTok",
	"bsky.app":      "Bluesky",
	"yelp.com":      "Yelp",
}

// Fetcher retrieves pages with a plain HTTP GET. Script-rendered pages come
// back as served; a browser driver can replace this behind the same
// interface.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

func NewFetcher(userAgent string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  userAgent,
		logger:     logger.Named("scrape"),
	}
}

var _ services.PageFetcher = (*Fetcher)(nil)

func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*services.PageSnapshot, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, apperrors.ErrInvalidInput)
	}

	body, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (string, error) {
		return f.get(ctx, pageURL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}

	snapshot := &services.PageSnapshot{
		HTML:        body,
		SocialLinks: map[string]string{},
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		// Keep the raw HTML for the LLM agents even when parsing fails.
		f.logger.Warn("failed to parse page html", zap.String("url", pageURL), zap.Error(err))
		return snapshot, nil
	}

	f.walk(doc, base, snapshot)
	return snapshot, nil
}

func (f *Fetcher) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrExternalService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: page fetch returned status %d", apperrors.ErrExternalService, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrExternalService, err)
	}
	return string(body), nil
}

func (f *Fetcher) walk(n *html.Node, base *url.URL, snapshot *services.PageSnapshot) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "a":
			if href := resolveAttr(n, "href", base); href != "" {
				snapshot.Links = append(snapshot.Links, href)
				if network := socialNetwork(href); network != "" {
					if _, seen := snapshot.SocialLinks[network]; !seen {
						snapshot.SocialLinks[network] = href
					}
				}
			}
		case "img":
			if snapshot.LogoURL == "" && looksLikeLogo(n) {
				snapshot.LogoURL = resolveAttr(n, "src", base)
			}
		case "link":
			if snapshot.LogoURL == "" && strings.Contains(attr(n, "rel"), "icon") {
				snapshot.LogoURL = resolveAttr(n, "href", base)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		f.walk(c, base, snapshot)
	}
}

// looksLikeLogo reports whether an img tag names itself a logo in its
// src, id, class, or alt text.
func looksLikeLogo(n *html.Node) bool {
	for _, key := range []string{"src", "id", "class", "alt"} {
		if strings.Contains(strings.ToLower(attr(n, key)), "logo") {
			return true
		}
	}
	return false
}

func socialNetwork(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for fragment, network := range socialHosts {
		if host == fragment || strings.HasSuffix(host, "."+fragment) {
			return network
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolveAttr(n *html.Node, key string, base *url.URL) string {
	raw := strings.TrimSpace(attr(n, key))
	if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "javascript:") ||
		strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") || strings.HasPrefix(raw, "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
