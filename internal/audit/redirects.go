package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// Redirects walks the redirect graph and grades what it finds: a
// single hop is worth knowing about, a multi-hop chain wastes crawl
// budget and link equity, and a loop never resolves at all.
type Redirects struct{}

// Name implements Check.
func (c *Redirects) Name() string { return "redirects" }

// Description implements Check.
func (c *Redirects) Description() string {
	return "finds redirect hops, multi-hop chains, and redirect loops"
}

// Run implements Check.
func (c *Redirects) Run(_ context.Context, snap *Snapshot) []model.Issue {
	// Self-redirects are excluded from the map; a page redirecting to
	// itself is an immediate loop and the walk below would spin on it.
	redirects := make(map[string]string)
	var selfRedirects []string
	for _, p := range snap.Pages {
		if p.RedirectTo == "" {
			continue
		}
		if p.RedirectTo == p.URL {
			selfRedirects = append(selfRedirects, p.URL)
			continue
		}
		redirects[p.URL] = p.RedirectTo
	}

	var issues []model.Issue

	for _, u := range selfRedirects {
		issues = append(issues, model.Issue{
			Type:        model.IssueRedirectLoop,
			Severity:    model.SeverityError,
			Description: fmt.Sprintf("Page %s redirects to itself", u),
			AffectedURL: u,
			Details: map[string]any{
				"chain": []string{u, u},
			},
		})
	}

	// Walk in deterministic order so repeated runs over the same store
	// produce identical issue sets.
	sources := make([]string, 0, len(redirects))
	for u := range redirects {
		sources = append(sources, u)
	}
	sort.Strings(sources)

	// Each distinct loop is reported once, no matter how many chains
	// run into it.
	reportedLoops := make(map[string]bool)

	for _, source := range sources {
		chain := []string{source}
		visited := map[string]bool{source: true}
		loop := false

		for {
			next, ok := redirects[chain[len(chain)-1]]
			if !ok {
				break
			}
			if visited[next] {
				chain = append(chain, next)
				loop = true
				break
			}
			visited[next] = true
			chain = append(chain, next)
		}

		hops := len(chain) - 1
		if loop {
			hops--
		}

		switch {
		case loop:
			sig := loopSignature(chain)
			if !reportedLoops[sig] {
				reportedLoops[sig] = true
				issues = append(issues, model.Issue{
					Type:        model.IssueRedirectLoop,
					Severity:    model.SeverityError,
					Description: fmt.Sprintf("Redirect loop detected: %s", strings.Join(chain, " -> ")),
					AffectedURL: source,
					Details: map[string]any{
						"chain": chain,
					},
				})
			}
		case hops == 1:
			issues = append(issues, model.Issue{
				Type:        model.IssueRedirect,
				Severity:    model.SeverityNotice,
				Description: fmt.Sprintf("Page redirects to %s", chain[1]),
				AffectedURL: source,
				Details: map[string]any{
					"target": chain[1],
				},
			})
		case hops > 1:
			issues = append(issues, model.Issue{
				Type:        model.IssueRedirectChain,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Redirect chain of %d hops: %s", hops, strings.Join(chain, " -> ")),
				AffectedURL: source,
				Details: map[string]any{
					"chain": chain,
					"hops":  hops,
				},
			})
		}
	}

	return issues
}

// loopSignature builds a stable identity for a redirect loop from its
// member set, so A->B->A and B->A->B collapse into one finding.
func loopSignature(chain []string) string {
	members := make([]string, 0, len(chain))
	seen := make(map[string]bool)

	// The loop members are the addresses from the repeated tail back.
	tail := chain[len(chain)-1]
	start := 0
	for i, u := range chain {
		if u == tail {
			start = i
			break
		}
	}
	for _, u := range chain[start:] {
		if !seen[u] {
			seen[u] = true
			members = append(members, u)
		}
	}
	sort.Strings(members)
	return strings.Join(members, "|")
}
