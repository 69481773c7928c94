package audit

import (
	"context"
	"net/url"

	"github.com/nao1215/seoaudit/internal/model"
)

// Infrastructure grades site-level setup: the transport scheme of the
// seed and what the robots.txt fetch turned up. It reads the Snapshot's
// SiteFacts rather than the page set, so it stays silent when no facts
// were supplied.
type Infrastructure struct{}

// Name implements Check.
func (c *Infrastructure) Name() string { return "infrastructure" }

// Description implements Check.
func (c *Infrastructure) Description() string {
	return "checks HTTPS, robots.txt availability, and sitemap declarations"
}

// Run implements Check.
func (c *Infrastructure) Run(_ context.Context, snap *Snapshot) []model.Issue {
	site := snap.Site
	if site == nil {
		return nil
	}

	var issues []model.Issue

	if u, err := url.Parse(site.SeedURL); err == nil && u.Scheme == "http" {
		issues = append(issues, model.Issue{
			Type:        model.IssueInsecureScheme,
			Severity:    model.SeverityError,
			Description: "Site is served over plain HTTP; search engines prefer HTTPS",
			AffectedURL: site.SeedURL,
		})
	}

	// The robots facts only exist when robots.txt was actually fetched.
	if !site.RobotsChecked {
		return issues
	}

	switch {
	case !site.RobotsFound:
		issues = append(issues, model.Issue{
			Type:        model.IssueMissingRobots,
			Severity:    model.SeverityNotice,
			Description: "No robots.txt was found; crawlers receive no guidance for this site",
			AffectedURL: site.SeedURL,
		})
	case site.RobotsBlocksAll:
		issues = append(issues, model.Issue{
			Type:        model.IssueRobotsBlocksAll,
			Severity:    model.SeverityError,
			Description: "robots.txt denies the auditing agent the site root; search engines honoring the same rules cannot index the site",
			AffectedURL: site.SeedURL,
		})
	}

	if len(site.Sitemaps) == 0 {
		issues = append(issues, model.Issue{
			Type:        model.IssueMissingSitemap,
			Severity:    model.SeverityWarning,
			Description: "No sitemap is declared in robots.txt",
			AffectedURL: site.SeedURL,
		})
	}

	return issues
}
