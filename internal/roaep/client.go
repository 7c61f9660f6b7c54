// Package roaep provides the client for the election authority's presence
// endpoints and the URL templates they follow.
//
// Hourly snapshots live under
//
//	{base}/{roundTag}/data/json/simpv/presence/{variant}_{month}-{DD}_{HH}-00.json
//
// where the variant selects the published shape, plus a {variant}_now.json form
// carrying the live (not yet hourly-bucketed) state.
//
// Fetches are single-shot: a failed fetch degrades to a zero cell upstream
// instead of being retried, because the monitor re-fetches every missing URL on
// the next hourly cycle anyway and the source is rate-sensitive.
package roaep

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prezmon/prezmon/internal/models"
)

// Presence variants published by the source.
const (
	// VariantAll is the full snapshot: county-level aggregates plus every precinct.
	VariantAll = "presence"
	// VariantForeign covers foreign (diaspora) precincts only.
	VariantForeign = "presence_sr"
)

// Client fetches presence snapshots from the authority.
type Client struct {
	baseURL    string
	month      string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a presence client. month is the election month prefix used
// in snapshot file names, e.g. "2025-05".
func NewClient(baseURL, month, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		month:     month,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PresenceURL builds the URL of the hourly snapshot for (day, hour) in the
// round identified by roundTag.
func (c *Client) PresenceURL(roundTag, variant string, ts models.ObservationTimestamp) string {
	return fmt.Sprintf("%s/%s/data/json/simpv/presence/%s_%s-%02d_%02d-00.json",
		c.baseURL, roundTag, variant, c.month, ts.Day, ts.Hour)
}

// LiveURL builds the URL of the live snapshot for the round identified by roundTag.
func (c *Client) LiveURL(roundTag, variant string) string {
	return fmt.Sprintf("%s/%s/data/json/simpv/presence/%s_now.json",
		c.baseURL, roundTag, variant)
}

// FetchPresence performs a single GET against url and decodes the presence
// payload. A non-200 status or a malformed body is a fetch failure.
func (c *Client) FetchPresence(ctx context.Context, url string) (*models.PresenceData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	var data models.PresenceData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}

	return &data, nil
}
