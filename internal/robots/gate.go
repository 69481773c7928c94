// Package robots implements the crawl permission gate. It fetches a
// site's robots.txt once per crawl session and answers whether a given
// address may be fetched by the configured agent.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"
)

// maxRobotsBodyBytes limits how much of a robots.txt response is read.
const maxRobotsBodyBytes = 512 * 1024

// Gate answers crawl-permission queries for one site.
//
// The gate fails open: when robots.txt cannot be fetched or parsed,
// every address is allowed. An unreachable policy file must not stall
// an otherwise crawlable site. This is a deliberate policy choice, not
// a fallback to tighten later.
type Gate struct {
	// data is the parsed robots.txt. Nil means allow everything.
	data *robotstxt.RobotsData

	// userAgent is the agent string rules are matched against.
	userAgent string

	// sitemaps are the Sitemap declarations found in robots.txt.
	sitemaps []string
}

// NewGate fetches and parses robots.txt from the seed's host. The
// returned gate is always usable; fetch and parse failures produce an
// allow-all gate.
func NewGate(ctx context.Context, client *http.Client, seedURL, userAgent string) *Gate {
	g := &Gate{userAgent: userAgent}

	seed, err := url.Parse(seedURL)
	if err != nil {
		return g
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", seed.Scheme, seed.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return g
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return g
	}
	defer resp.Body.Close()

	// Only a 2xx body is worth parsing. robotstxt's own status handling
	// would treat a 5xx as disallow-all, which conflicts with fail-open.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return g
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return g
	}

	g.data = data
	g.sitemaps = extractSitemaps(string(body))
	return g
}

// AllowAll returns a gate that permits every address. Used when the
// operator disables robots.txt handling.
func AllowAll() *Gate {
	return &Gate{}
}

// Allowed reports whether the given address may be fetched by the
// gate's agent. Unparsable addresses are allowed; the fetcher will
// record their failure as data.
func (g *Gate) Allowed(rawURL string) bool {
	if g.data == nil {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return g.data.TestAgent(path, g.userAgent)
}

// Restricted reports whether the gate holds any parsed rules. False
// means the gate is operating in fail-open (or disabled) mode.
func (g *Gate) Restricted() bool {
	return g.data != nil
}

// BlocksAll reports whether the parsed rules deny the gate's agent the
// site root. A site whose root is disallowed is effectively closed to
// the crawler.
func (g *Gate) BlocksAll() bool {
	return g.data != nil && !g.data.TestAgent("/", g.userAgent)
}

// Sitemaps returns the sitemap URLs declared in robots.txt.
func (g *Gate) Sitemaps() []string {
	return g.sitemaps
}

// extractSitemaps pulls Sitemap declarations out of robots.txt text.
// The robotstxt library exposes groups only, so the lines are scanned
// directly.
func extractSitemaps(body string) []string {
	var sitemaps []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < len("sitemap:") || !strings.EqualFold(line[:len("sitemap:")], "sitemap:") {
			continue
		}
		if v := strings.TrimSpace(line[len("sitemap:"):]); v != "" {
			sitemaps = append(sitemaps, v)
		}
	}
	return sitemaps
}
