// Package audit runs the analysis checks over a finished crawl.
//
// Checks are pure functions over a Snapshot: the pages and links loaded
// from the store plus a URL-keyed page index. The Runner loads the
// snapshot once, executes every registered check in order, and persists
// the issues they raise.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/nao1215/seoaudit/internal/model"
)

// Check is one audit rule evaluated against the crawl snapshot.
type Check interface {
	// Name returns the short machine-friendly check name.
	Name() string

	// Description explains what the check looks for.
	Description() string

	// Run evaluates the check and returns the issues it found.
	Run(ctx context.Context, snap *Snapshot) []model.Issue
}

// Store is the persistence surface the Runner needs. It is satisfied
// by the database package's AuditDB.
type Store interface {
	GetAllPages(ctx context.Context) ([]*model.Page, error)
	GetAllLinks(ctx context.Context) ([]*model.Link, error)
	ClearIssues(ctx context.Context) error
	InsertIssue(ctx context.Context, issue *model.Issue) error
}

// Snapshot is the immutable view of one crawl that checks evaluate.
type Snapshot struct {
	// Pages are all fetch attempts, failures included.
	Pages []*model.Page

	// Links are all recorded hyperlinks.
	Links []*model.Link

	// PageByURL indexes Pages by their normalized URL.
	//
	// Design decision: lookups go through this map instead of scanning
	// Pages. A link target that is not in the map was simply never
	// crawled; no placeholder page is fabricated for it.
	PageByURL map[string]*model.Page

	// Site carries site-level facts gathered before the crawl. Nil when
	// the caller did not supply them; site-level checks then stay
	// silent.
	Site *SiteFacts
}

// SiteFacts are the site-level observations made while setting up a
// crawl: the seed address and what the robots.txt fetch turned up.
type SiteFacts struct {
	// SeedURL is the normalized address the crawl started from.
	SeedURL string

	// RobotsChecked reports whether robots.txt was fetched at all.
	// False when the operator disabled robots handling.
	RobotsChecked bool

	// RobotsFound reports whether a parsable robots.txt was retrieved.
	RobotsFound bool

	// RobotsBlocksAll reports whether robots.txt denies the auditing
	// agent the site root.
	RobotsBlocksAll bool

	// Sitemaps are the sitemap URLs declared in robots.txt.
	Sitemaps []string
}

// NewSnapshot builds a Snapshot from loaded pages and links.
func NewSnapshot(pages []*model.Page, links []*model.Link) *Snapshot {
	byURL := make(map[string]*model.Page, len(pages))
	for _, p := range pages {
		byURL[p.URL] = p
	}
	return &Snapshot{
		Pages:     pages,
		Links:     links,
		PageByURL: byURL,
	}
}

// SuccessPages returns the pages that returned a 2xx status. Content
// checks only apply to pages that actually rendered.
func (s *Snapshot) SuccessPages() []*model.Page {
	pages := make([]*model.Page, 0, len(s.Pages))
	for _, p := range s.Pages {
		if p.IsSuccess() {
			pages = append(pages, p)
		}
	}
	return pages
}

// Runner executes audit checks and persists their findings.
type Runner struct {
	store  Store
	checks []Check
	logger *slog.Logger
	site   *SiteFacts
}

// NewRunner creates a Runner over store with the given checks.
// With no checks given, DefaultChecks is used.
func NewRunner(store Store, logger *slog.Logger, checks ...Check) *Runner {
	if len(checks) == 0 {
		checks = DefaultChecks()
	}
	return &Runner{
		store:  store,
		checks: checks,
		logger: logger,
	}
}

// SetSite records the site-level facts the checks see through the
// Snapshot. Without it, site-level checks stay silent.
func (r *Runner) SetSite(site *SiteFacts) {
	r.site = site
}

// DefaultChecks returns every built-in check in execution order.
func DefaultChecks() []Check {
	return []Check{
		&Infrastructure{},
		&BrokenLinks{},
		&Redirects{},
		&Titles{},
		&MetaDescriptions{},
		&Headings{},
	}
}

// Run loads the crawl snapshot, evaluates every check, and stores the
// issues. Previously stored issues are cleared first, so re-running
// the checks over an unchanged crawl yields the same result set.
func (r *Runner) Run(ctx context.Context) ([]*model.Issue, error) {
	pages, err := r.store.GetAllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	links, err := r.store.GetAllLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load links: %w", err)
	}
	snap := NewSnapshot(pages, links)
	snap.Site = r.site

	if err := r.store.ClearIssues(ctx); err != nil {
		return nil, fmt.Errorf("clear previous issues: %w", err)
	}

	var all []*model.Issue
	for _, check := range r.checks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		issues := check.Run(ctx, snap)
		for i := range issues {
			issue := issues[i]
			if err := r.store.InsertIssue(ctx, &issue); err != nil {
				return nil, fmt.Errorf("save issue from %s: %w", check.Name(), err)
			}
			all = append(all, &issue)
		}

		r.logger.Info("check finished",
			slog.String("check", check.Name()),
			slog.Int("issues", len(issues)),
		)
	}

	return all, nil
}

// utilityPaths are well-known addresses excluded from link checks.
// They serve crawlers and browsers, not readers; a missing favicon is
// not a broken page.
var utilityPaths = map[string]bool{
	"/robots.txt":        true,
	"/sitemap.xml":       true,
	"/sitemap_index.xml": true,
	"/favicon.ico":       true,
}

// isUtilityTarget reports whether a link target is a well-known
// utility path.
func isUtilityTarget(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return utilityPaths[u.Path]
}
