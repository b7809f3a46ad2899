// Package stats is the HTTP client for the external statistics source.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

// StatusError is returned for any non-2xx response from the statistics API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stats API returned status %d", e.Code)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a statistics client against the given base URL
// (e.g. http://api:8000).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchStats retrieves the raw training rows for a user over an inclusive
// date range. The user id travels both in the path and in the X-User
// identity header.
func (c *Client) FetchStats(ctx context.Context, userID domain.UserID, start, end string) ([]domain.Row, error) {
	endpoint := fmt.Sprintf("%s/api/v1/statistics/%s/stats", c.baseURL, url.PathEscape(string(userID)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}

	q := req.URL.Query()
	q.Set("start", start)
	q.Set("end", end)
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-User", string(userID))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var rows []domain.Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}
	return rows, nil
}
