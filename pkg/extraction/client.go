// Package extraction calls the document-understanding service that runs the
// named analyzers (wifi, hours, tap list, classifiers) over hosted images and
// pages. The API is asynchronous: submit returns an operation id that is
// polled until the analysis settles.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/venuelab/directory-engine/pkg/apperrors"
	"github.com/venuelab/directory-engine/pkg/models"
	"github.com/venuelab/directory-engine/pkg/retry"
)

// Config for the extraction service client.
type Config struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Client is the analyze/poll HTTP client.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewClient creates an extraction client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 2 * time.Minute
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Named("extraction"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type analyzeRequest struct {
	URL string `json:"url"`
}

type operationResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result struct {
		Contents []struct {
			Fields map[string]any `json:"fields"`
		} `json:"contents"`
	} `json:"result"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Analyze submits sourceURL to the named analyzer and polls until the run
// settles. List-shaped output (an "output_list" field) is flattened into
// provenance-tagged items; everything else surfaces as scalar fields.
func (c *Client) Analyze(ctx context.Context, analyzer, sourceURL string) (*models.AnalyzerResult, error) {
	operationID, err := c.submit(ctx, analyzer, sourceURL)
	if err != nil {
		return nil, err
	}

	op, err := c.poll(ctx, analyzer, operationID)
	if err != nil {
		return nil, err
	}

	return c.parse(op, sourceURL)
}

func (c *Client) submit(ctx context.Context, analyzer, sourceURL string) (string, error) {
	body, err := json.Marshal(analyzeRequest{URL: sourceURL})
	if err != nil {
		return "", fmt.Errorf("failed to encode analyze request: %w", err)
	}

	url := fmt.Sprintf("%s/analyzers/%s:analyze?api-version=%s",
		c.cfg.Endpoint, analyzer, c.cfg.APIVersion)

	return retry.DoWithResult(ctx, nil, func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("analyze submit failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return "", fmt.Errorf("analyze submit returned %d: %s: %w",
				resp.StatusCode, string(payload), apperrors.ErrExternalService)
		}

		var op operationResponse
		if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
			return "", fmt.Errorf("failed to decode analyze response: %w", err)
		}
		if op.ID == "" {
			return "", fmt.Errorf("analyze response missing operation id: %w", apperrors.ErrExternalService)
		}
		return op.ID, nil
	})
}

func (c *Client) poll(ctx context.Context, analyzer, operationID string) (*operationResponse, error) {
	url := fmt.Sprintf("%s/analyzers/%s/results/%s?api-version=%s",
		c.cfg.Endpoint, analyzer, operationID, c.cfg.APIVersion)

	deadline := time.NewTimer(c.cfg.PollTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		op, err := c.fetchResult(ctx, url)
		if err != nil {
			return nil, err
		}

		switch op.Status {
		case "Succeeded":
			return op, nil
		case "Failed":
			return nil, fmt.Errorf("analyzer %s failed: %s %s: %w",
				analyzer, op.Error.Code, op.Error.Message, apperrors.ErrExternalService)
		}

		select {
		case <-ticker.C:
		case <-deadline.C:
			return nil, fmt.Errorf("analyzer %s did not settle within %s: %w",
				analyzer, c.cfg.PollTimeout, apperrors.ErrExternalService)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Client) fetchResult(ctx context.Context, url string) (*operationResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("result poll failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("result poll returned %d: %s: %w",
			resp.StatusCode, string(payload), apperrors.ErrExternalService)
	}

	var op operationResponse
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &op, nil
}

func (c *Client) parse(op *operationResponse, sourceURL string) (*models.AnalyzerResult, error) {
	result := &models.AnalyzerResult{Fields: map[string]any{}}
	if len(op.Result.Contents) == 0 {
		return result, nil
	}

	fields := op.Result.Contents[0].Fields
	list, hasList := fields["output_list"]
	if hasList {
		items, err := c.flattenList(list, sourceURL)
		if err != nil {
			return nil, err
		}
		result.Items = items
		delete(fields, "output_list")
	}
	result.Fields = fields
	return result, nil
}

// flattenList turns an output_list value array into provenance-tagged items.
func (c *Client) flattenList(list any, sourceURL string) ([]models.AnalyzerOutputItem, error) {
	arr, _ := jsonValueArray(list)
	items := make([]models.AnalyzerOutputItem, 0, len(arr))
	pulled := c.now()
	for _, element := range arr {
		raw, err := json.Marshal(element)
		if err != nil {
			return nil, fmt.Errorf("failed to encode list item: %w", err)
		}
		items = append(items, models.AnalyzerOutputItem{
			RawItemJSON:  string(raw),
			Source:       sourceURL,
			PullDatetime: pulled,
		})
	}
	return items, nil
}

// jsonValueArray accepts either a bare JSON array or the wrapped
// {"valueArray": [...]} form the service emits.
func jsonValueArray(v any) ([]any, bool) {
	if arr, ok := v.([]any); ok {
		return arr, true
	}
	if m, ok := v.(map[string]any); ok {
		if arr, ok := m["valueArray"].([]any); ok {
			return arr, true
		}
	}
	return nil, false
}
