package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/urlutil"
)

// PermissionGate answers whether an address may be fetched. It is
// satisfied by the robots package's Gate.
type PermissionGate interface {
	// Allowed reports whether the given address may be fetched.
	Allowed(rawURL string) bool
}

// Store receives pages and links as the crawl discovers them. It is
// satisfied by the database package's AuditDB.
type Store interface {
	// UpsertPage saves a crawled page, replacing any previous record
	// for the same normalized URL.
	UpsertPage(ctx context.Context, page *model.Page) error

	// AppendLink records one discovered hyperlink.
	AppendLink(ctx context.Context, link *model.Link) error
}

// Spider crawls one site breadth-first from a seed address.
// It manages a queue of URLs to visit and respects depth and rate limits.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	// fetcher retrieves individual pages.
	fetcher *Fetcher

	// gate decides crawl permission per address.
	gate PermissionGate

	// store persists pages and links as they are discovered.
	store Store

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the total number of fetch attempts, failures
	// included. This prevents runaway crawling on large sites.
	maxPages int

	// delay is the time to wait between requests.
	// This is a politeness setting to avoid overwhelming servers.
	delay time.Duration

	// excludeExtensions are lowercase path extensions never enqueued,
	// e.g. ".pdf". Binary assets carry no auditable HTML.
	excludeExtensions []string

	// visited tracks normalized URLs already dispatched, so each
	// address is fetched at most once per crawl.
	visited map[string]bool

	// pageCount tracks fetch attempts made so far.
	pageCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to fetch.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithExcludeExtensions sets path extensions that are never enqueued.
// Extensions are matched case-insensitively and must include the dot.
func WithExcludeExtensions(exts []string) SpiderOption {
	return func(s *Spider) {
		s.excludeExtensions = exts
	}
}

// Result summarizes one finished crawl.
type Result struct {
	// SeedURL is the normalized address the crawl started from.
	SeedURL string

	// PagesCrawled is the number of fetch attempts made, failures
	// included.
	PagesCrawled int

	// Termination records why the crawl stopped.
	Termination model.TerminationReason

	// StartedAt and CompletedAt bound the crawl wall-clock time.
	StartedAt   time.Time
	CompletedAt time.Time
}

// NewSpider creates a Spider that fetches through fetcher, asks gate
// for permission, and writes everything it finds to store.
func NewSpider(fetcher *Fetcher, gate PermissionGate, store Store, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		gate:     gate,
		store:    store,
		maxDepth: 3,
		maxPages: 1000,
		delay:    500 * time.Millisecond,
		visited:  make(map[string]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// queueItem represents an item in the crawl queue. The depth is fixed
// at first enqueue and never revised.
type queueItem struct {
	url   string
	depth int
}

// Crawl runs a breadth-first crawl from seedURL until the frontier is
// empty, the page budget is spent, or ctx is cancelled. Pages and
// links stream into the store as they are found; the Result says how
// far the crawl got. Store write failures abort the crawl, everything
// else is recorded and skipped past.
func (s *Spider) Crawl(ctx context.Context, seedURL string) (*Result, error) {
	if !strings.Contains(seedURL, "://") {
		seedURL = "https://" + seedURL
	}
	seed := urlutil.Normalize(seedURL)
	host := urlutil.Host(seed)
	if host == "" {
		return nil, fmt.Errorf("invalid seed URL: %q", seedURL)
	}

	result := &Result{
		SeedURL:     seed,
		StartedAt:   time.Now().UTC(),
		Termination: model.TerminationQueueExhausted,
	}

	queue := []queueItem{{url: seed, depth: 0}}

	for len(queue) > 0 {
		if s.pageCount >= s.maxPages {
			result.Termination = model.TerminationPageBudget
			break
		}

		select {
		case <-ctx.Done():
			result.Termination = model.TerminationCancelled
			result.PagesCrawled = s.pageCount
			result.CompletedAt = time.Now().UTC()
			return result, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]

		// The queue may hold duplicates; the visited set makes each
		// address fetch at most once.
		if s.visited[item.url] {
			continue
		}
		s.visited[item.url] = true

		// The denylist applies to every popped address, the seed
		// included, not just discovered links.
		if urlutil.HasExcludedExtension(item.url, s.excludeExtensions) {
			continue
		}

		if !s.gate.Allowed(item.url) {
			continue
		}

		page, parsed := s.fetcher.Fetch(ctx, item.url)
		page.Depth = item.depth

		if err := s.store.UpsertPage(ctx, page); err != nil {
			return nil, fmt.Errorf("save page %s: %w", item.url, err)
		}
		s.pageCount++

		// A redirecting page contributes no anchors, so its target is
		// the frontier. The target keeps the same depth: the redirect
		// destination stands in for the page, it is not a step away
		// from it.
		if rt := page.RedirectTo; rt != "" && urlutil.SameHost(item.url, rt) && s.enqueueable(rt) {
			queue = append(queue, queueItem{url: rt, depth: item.depth})
		}

		if parsed != nil {
			if err := s.recordLinks(ctx, item.url, parsed.Anchors); err != nil {
				return nil, err
			}
			if item.depth < s.maxDepth {
				for _, target := range parsed.InternalLinks {
					if s.enqueueable(target) {
						queue = append(queue, queueItem{url: target, depth: item.depth + 1})
					}
				}
			}
		}

		// Politeness delay
		if s.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				result.Termination = model.TerminationCancelled
				result.PagesCrawled = s.pageCount
				result.CompletedAt = time.Now().UTC()
				return result, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	result.PagesCrawled = s.pageCount
	result.CompletedAt = time.Now().UTC()
	return result, nil
}

// recordLinks persists every anchor found on sourceURL.
func (s *Spider) recordLinks(ctx context.Context, sourceURL string, anchors []Anchor) error {
	for _, a := range anchors {
		link := &model.Link{
			SourceURL: sourceURL,
			TargetURL: a.URL,
			Text:      a.Text,
			Type:      a.Type,
		}
		if err := s.store.AppendLink(ctx, link); err != nil {
			return fmt.Errorf("save link %s -> %s: %w", sourceURL, a.URL, err)
		}
	}
	return nil
}

// enqueueable reports whether a discovered address belongs on the
// frontier. The extension denylist is not consulted here; every popped
// address is tested against it before fetching.
func (s *Spider) enqueueable(target string) bool {
	return !s.visited[target]
}

// Stats returns current crawl statistics.
func (s *Spider) Stats() SpiderStats {
	return SpiderStats{
		PagesVisited: s.pageCount,
		URLsSeen:     len(s.visited),
	}
}

// SpiderStats contains crawl statistics.
type SpiderStats struct {
	// PagesVisited is the number of fetch attempts made.
	PagesVisited int

	// URLsSeen is the number of unique addresses dispatched.
	URLsSeen int
}
