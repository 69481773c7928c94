// Package gsc fetches search-performance data from the Google Search
// Console Search Analytics API. The data enriches an audit report with
// how pages actually perform in search; it is never required for the
// audit itself.
package gsc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/seoaudit/internal/model"
)

// defaultBaseURL is the Search Console API endpoint.
const defaultBaseURL = "https://www.googleapis.com/webmasters/v3"

// maxQueryFetchConcurrency bounds the parallel per-page query fetches.
const maxQueryFetchConcurrency = 4

// Client is a narrow Search Console client. It speaks only to the
// searchanalytics query endpoint; property management and sitemap
// submission are somebody else's tool.
type Client struct {
	// httpClient performs the requests.
	httpClient *http.Client

	// baseURL is the API root, overridable for tests.
	baseURL string

	// token is the OAuth bearer token supplied by the operator. Token
	// acquisition and refresh are out of scope; any OAuth tooling can
	// mint one.
	token string

	// rowLimit caps rows per API response.
	rowLimit int

	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = u
	}
}

// WithRowLimit sets the maximum rows requested per call.
func WithRowLimit(n int) ClientOption {
	return func(cl *Client) {
		cl.rowLimit = n
	}
}

// WithLogger sets the logger used for soft failures.
func WithLogger(l *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a Client authenticating with the given bearer token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		rowLimit:   100,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// queryRequest is the searchanalytics query payload.
type queryRequest struct {
	StartDate             string                 `json:"startDate"`
	EndDate               string                 `json:"endDate"`
	Dimensions            []string               `json:"dimensions"`
	RowLimit              int                    `json:"rowLimit"`
	DimensionFilterGroups []dimensionFilterGroup `json:"dimensionFilterGroups,omitempty"`
}

type dimensionFilterGroup struct {
	Filters []dimensionFilter `json:"filters"`
}

type dimensionFilter struct {
	Dimension  string `json:"dimension"`
	Operator   string `json:"operator"`
	Expression string `json:"expression"`
}

// queryResponse is the searchanalytics query result.
type queryResponse struct {
	Rows []struct {
		Keys        []string `json:"keys"`
		Clicks      float64  `json:"clicks"`
		Impressions float64  `json:"impressions"`
		CTR         float64  `json:"ctr"`
		Position    float64  `json:"position"`
	} `json:"rows"`
}

// FetchPageMetrics returns per-page search metrics for the property
// over the trailing number of days.
func (c *Client) FetchPageMetrics(ctx context.Context, site string, days int) ([]model.PageMetrics, error) {
	resp, err := c.query(ctx, site, queryRequest{
		StartDate:  dayOffset(-days),
		EndDate:    dayOffset(0),
		Dimensions: []string{"page"},
		RowLimit:   c.rowLimit,
	})
	if err != nil {
		return nil, err
	}

	metrics := make([]model.PageMetrics, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		metrics = append(metrics, model.PageMetrics{
			URL:         row.Keys[0],
			Clicks:      int(row.Clicks),
			Impressions: int(row.Impressions),
			CTR:         row.CTR,
			Position:    row.Position,
		})
	}

	return metrics, nil
}

// FetchTopQueries returns the top search queries leading to one page
// over the trailing number of days.
func (c *Client) FetchTopQueries(ctx context.Context, site, page string, days int) ([]model.QueryMetrics, error) {
	resp, err := c.query(ctx, site, queryRequest{
		StartDate:  dayOffset(-days),
		EndDate:    dayOffset(0),
		Dimensions: []string{"query"},
		RowLimit:   c.rowLimit,
		DimensionFilterGroups: []dimensionFilterGroup{
			{Filters: []dimensionFilter{
				{Dimension: "page", Operator: "equals", Expression: page},
			}},
		},
	})
	if err != nil {
		return nil, err
	}

	metrics := make([]model.QueryMetrics, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		metrics = append(metrics, model.QueryMetrics{
			URL:         page,
			Query:       row.Keys[0],
			Clicks:      int(row.Clicks),
			Impressions: int(row.Impressions),
			CTR:         row.CTR,
			Position:    row.Position,
		})
	}

	return metrics, nil
}

// FetchQueriesForPages fetches top queries for several pages with
// bounded concurrency. A failed page is logged and skipped; one dead
// page must not discard the rest of the enrichment.
func (c *Client) FetchQueriesForPages(ctx context.Context, site string, pages []string, days int) ([]model.QueryMetrics, error) {
	var mu sync.Mutex
	var all []model.QueryMetrics

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxQueryFetchConcurrency)

	for _, page := range pages {
		page := page
		g.Go(func() error {
			metrics, err := c.FetchTopQueries(ctx, site, page, days)
			if err != nil {
				c.logger.Warn("skipping query metrics for page",
					slog.String("page", page),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			all = append(all, metrics...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

// query performs one searchanalytics query call.
func (c *Client) query(ctx context.Context, site string, reqBody queryRequest) (*queryResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sites/%s/searchAnalytics/query", c.baseURL, url.PathEscape(site))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search console request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search console returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// dayOffset formats today plus the given day offset as an API date.
func dayOffset(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}
