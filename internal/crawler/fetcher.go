package crawler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/urlutil"
)

// Fetcher retrieves a single page and turns the HTTP exchange into a
// model.Page. A failed fetch is still a page: the result carries a
// zero status code and the failure reason, so the audit can report on
// unreachable addresses instead of losing them.
type Fetcher struct {
	// client performs the HTTP requests. Redirects are never followed;
	// each hop is recorded as its own page.
	client *http.Client

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// NewFetcher creates a Fetcher wrapping the given HTTP client.
//
// Design decision: We require an external client because:
//  1. Timeouts and transport settings are the caller's concern
//  2. Consistent with the robots gate, which shares the client
//  3. Allows for different configurations in tests
//
// The client is shallow-copied with redirect following disabled. A 301
// chain is audit data; transparently collapsing it would hide exactly
// the hops the redirect checks need to see.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	f := &Fetcher{
		client:      &c,
		userAgent:   "seoaudit/1.0 (+https://github.com/nao1215/seoaudit)",
		maxBodySize: 10 * 1024 * 1024, // 10MB
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves pageURL and returns the resulting page plus the
// parsed HTML when the response was a successful HTML document. The
// ParseResult is nil for failed fetches, redirects, error statuses,
// and non-HTML content.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.Page, *ParseResult) {
	page := &model.Page{
		URL:       pageURL,
		CrawledAt: time.Now().UTC(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		page.FetchError = err.Error()
		return page, nil
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		page.FetchError = err.Error()
		return page, nil
	}
	defer resp.Body.Close()

	page.StatusCode = resp.StatusCode

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if loc := resp.Header.Get("Location"); loc != "" {
			page.RedirectTo = urlutil.ResolveAndNormalize(resp.Request.URL, loc)
		}
		return page, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		page.FetchError = err.Error()
		return page, nil
	}

	if resp2xx(resp.StatusCode) {
		page.ComputeContentHash(body)
	}
	if !resp2xx(resp.StatusCode) || !isHTML(resp.Header.Get("Content-Type")) {
		return page, nil
	}

	parser, err := NewParser(pageURL)
	if err != nil {
		return page, nil
	}
	result, err := parser.Parse(strings.NewReader(string(body)))
	if err != nil {
		return page, nil
	}

	page.Title = result.Title
	page.MetaDescription = result.MetaDescription
	page.Canonical = result.Canonical
	page.RobotsMeta = result.RobotsMeta
	page.H1Count = result.H1Count
	page.H1Text = result.H1Text

	return page, result
}

func resp2xx(status int) bool {
	return status >= 200 && status < 300
}

func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}
