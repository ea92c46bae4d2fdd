package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
	"github.com/draeangela/industry-data-visualizer/pkg/httputil"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// maxErrorBody caps how much of a failed response is kept in a NetworkError
const maxErrorBody = 4 << 10

// Client is the shared transport for one series backend
// ⭐ SSOT: 백엔드 응답의 상태코드/디코딩 에러 매핑은 여기서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// New creates a backend client rooted at baseURL
func New(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the backend root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path and query parameters onto the base URL
func (c *Client) URL(path string, params url.Values) string {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}
	return fullURL
}

// Fetch returns the response body of a 2xx answer.
// Any other status, or a transport failure, is a *contracts.NetworkError.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.URL(path, params)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, &contracts.NetworkError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WithFields(map[string]interface{}{
			"url":         fullURL,
			"status_code": resp.StatusCode,
		}).Warn("Backend returned error status")
		return nil, &contracts.NetworkError{
			URL:        fullURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &contracts.NetworkError{URL: fullURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}

// GetJSON fetches path and decodes the JSON answer into dest.
// A body that is not valid JSON for dest is a *contracts.DataShapeError.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	body, err := c.Fetch(ctx, path, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return &contracts.DataShapeError{Reason: fmt.Sprintf("decode %s: %v", path, err)}
	}

	return nil
}

// RequireAligned reports a DataShapeError when a value vector does not match the date axis
func RequireAligned(field string, got, dates int) error {
	if got != dates {
		return &contracts.DataShapeError{
			Field:  field,
			Reason: fmt.Sprintf("has %d entries for %d dates", got, dates),
		}
	}
	return nil
}
