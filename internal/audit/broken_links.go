package audit

import (
	"context"
	"fmt"

	"github.com/nao1215/seoaudit/internal/model"
)

// BrokenLinks flags internal links whose targets failed or were never
// reached. External links are out of scope: their availability is not
// this site's problem to fix, and checking them would mean fetching
// hosts the operator never agreed to crawl.
type BrokenLinks struct{}

// Name implements Check.
func (c *BrokenLinks) Name() string { return "broken-links" }

// Description implements Check.
func (c *BrokenLinks) Description() string {
	return "finds internal links pointing at missing, failing, or uncrawled pages"
}

// Run implements Check.
func (c *BrokenLinks) Run(_ context.Context, snap *Snapshot) []model.Issue {
	var issues []model.Issue

	// One issue per distinct source/target pair. A page that repeats
	// the same dead link three times has one problem, not three.
	seen := make(map[[2]string]bool)

	for _, link := range snap.Links {
		if link.Type != model.LinkInternal {
			continue
		}
		if isUtilityTarget(link.TargetURL) {
			continue
		}
		key := [2]string{link.SourceURL, link.TargetURL}
		if seen[key] {
			continue
		}
		seen[key] = true

		target, ok := snap.PageByURL[link.TargetURL]
		if !ok {
			// The crawl never reached the target: beyond the depth or
			// page budget, or filtered out. Unknown is not broken.
			issues = append(issues, model.Issue{
				Type:        model.IssueUncrawledLinkTarget,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Link target %s was never crawled; its status is unknown", link.TargetURL),
				AffectedURL: link.SourceURL,
				Details: map[string]any{
					"target": link.TargetURL,
				},
			})
			continue
		}

		switch {
		case !target.Fetched():
			issues = append(issues, model.Issue{
				Type:        model.IssueBrokenLink,
				Severity:    model.SeverityError,
				Description: fmt.Sprintf("Link target %s is unreachable: %s", link.TargetURL, target.FetchError),
				AffectedURL: link.SourceURL,
				Details: map[string]any{
					"target":      link.TargetURL,
					"fetch_error": target.FetchError,
				},
			})
		case target.StatusCode == 404:
			issues = append(issues, model.Issue{
				Type:        model.IssueBrokenLink,
				Severity:    model.SeverityError,
				Description: fmt.Sprintf("Link target %s returns 404 Not Found", link.TargetURL),
				AffectedURL: link.SourceURL,
				Details: map[string]any{
					"target": link.TargetURL,
					"status": target.StatusCode,
				},
			})
		case target.StatusCode >= 400:
			issues = append(issues, model.Issue{
				Type:        model.IssueBrokenLink,
				Severity:    model.SeverityError,
				Description: fmt.Sprintf("Link target %s returns HTTP %d", link.TargetURL, target.StatusCode),
				AffectedURL: link.SourceURL,
				Details: map[string]any{
					"target": link.TargetURL,
					"status": target.StatusCode,
				},
			})
		}
	}

	return issues
}
