/*
Package api provides the request/response client for the marketplace chat
endpoints: the per-room message history and the counterpart roster.

It encapsulates authentication (bearer token on every call), response size
bounds, and content-type discipline, so callers only see normalized chat
types and coded errors.
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mentorchat/internal/pkg/logx"
)

// maxResponseBytes bounds how much of a response body is read (4 MB); a
// misbehaving endpoint cannot balloon client memory.
const maxResponseBytes int64 = 4 << 20

// Client issues authenticated request/response calls against the REST API.
type Client struct {
	baseURL   string
	authToken string
	http      *http.Client
	logger    zerolog.Logger
}

// NewClient constructs a Client for the given base URL. The timeout bounds
// every call end to end; pass 0 to rely on per-call contexts alone.
func NewClient(baseURL, authToken string, timeout time.Duration) *Client {
	apiLogger := logx.Logger().With().
		Str("component", "APIClient").
		Logger()

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		http:      &http.Client{Timeout: timeout},
		logger:    apiLogger,
	}
}

// getJSON performs one authenticated GET and decodes the JSON body into dst.
// Non-200 statuses and non-JSON bodies are errors; the HTTP status (0 for
// transport-level failures) is returned for the caller's error mapping.
func (c *Client) getJSON(ctx context.Context, path string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return res.StatusCode, fmt.Errorf("unexpected status %d for GET %s", res.StatusCode, path)
	}

	contentType := res.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return res.StatusCode, fmt.Errorf("unexpected content type %q for GET %s", contentType, path)
	}

	limited := http.MaxBytesReader(nil, res.Body, maxResponseBytes)
	if err := json.NewDecoder(limited).Decode(dst); err != nil {
		return res.StatusCode, fmt.Errorf("decoding GET %s response: %w", path, err)
	}

	return res.StatusCode, nil
}
