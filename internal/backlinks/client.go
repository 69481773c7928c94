// Package backlinks turns a web-scale hyperlink-graph edge list into a
// shortlist of quality referring domains. Edge lists come from the
// Common Crawl host-level web graph; the package discovers the latest
// release ID, parses externally supplied edge lists, and filters out
// spam before anything reaches a report.
package backlinks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

// defaultIndexURL lists the published Common Crawl web graph releases.
const defaultIndexURL = "https://data.commoncrawl.org/projects/hyperlinkgraph/index.html"

// graphIDPattern matches release IDs like cc-main-2025-may-jun-jul.
var graphIDPattern = regexp.MustCompile(`cc-main-\d{4}(?:-[a-z]{3}){1,3}`)

// Client discovers Common Crawl web graph releases.
type Client struct {
	httpClient *http.Client
	indexURL   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithIndexURL overrides the release index location.
func WithIndexURL(u string) ClientOption {
	return func(cl *Client) {
		cl.indexURL = u
	}
}

// NewClient creates a Client with default settings.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		indexURL:   defaultIndexURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// LatestGraphID returns the newest web graph release ID from the index
// page. Releases are listed newest first, so the first match wins.
func (c *Client) LatestGraphID(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.indexURL, nil)
	if err != nil {
		return "", fmt.Errorf("build index request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch graph index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("graph index returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", fmt.Errorf("read graph index: %w", err)
	}

	id := graphIDPattern.FindString(string(body))
	if id == "" {
		return "", fmt.Errorf("no graph release ID found at %s", c.indexURL)
	}

	return id, nil
}
