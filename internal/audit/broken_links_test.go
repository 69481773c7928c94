package audit

import (
	"context"
	"testing"

	"github.com/nao1215/seoaudit/internal/model"
)

func internalLink(source, target string) *model.Link {
	return &model.Link{SourceURL: source, TargetURL: target, Type: model.LinkInternal}
}

func issuesOfType(issues []model.Issue, t model.IssueType) []model.Issue {
	var out []model.Issue
	for _, issue := range issues {
		if issue.Type == t {
			out = append(out, issue)
		}
	}
	return out
}

func TestBrokenLinks(t *testing.T) {
	t.Parallel()

	pages := []*model.Page{
		{URL: "http://example.com/", StatusCode: 200},
		{URL: "http://example.com/gone", StatusCode: 404},
		{URL: "http://example.com/error", StatusCode: 503},
		{URL: "http://example.com/dead", FetchError: "connection refused"},
		{URL: "http://example.com/ok", StatusCode: 200},
	}
	links := []*model.Link{
		internalLink("http://example.com/", "http://example.com/gone"),
		internalLink("http://example.com/", "http://example.com/error"),
		internalLink("http://example.com/", "http://example.com/dead"),
		internalLink("http://example.com/", "http://example.com/ok"),
		internalLink("http://example.com/", "http://example.com/never-crawled"),
		{SourceURL: "http://example.com/", TargetURL: "https://other.example.org/gone", Type: model.LinkExternal},
	}
	snap := NewSnapshot(pages, links)

	issues := (&BrokenLinks{}).Run(context.Background(), snap)

	broken := issuesOfType(issues, model.IssueBrokenLink)
	if len(broken) != 3 {
		t.Fatalf("broken_link issues = %d, want 3 (404, 503, unreachable)", len(broken))
	}
	for _, issue := range broken {
		if issue.Severity != model.SeverityError {
			t.Errorf("broken_link severity = %v, want %v", issue.Severity, model.SeverityError)
		}
		if issue.AffectedURL != "http://example.com/" {
			t.Errorf("AffectedURL = %q, want linking page", issue.AffectedURL)
		}
	}

	uncrawled := issuesOfType(issues, model.IssueUncrawledLinkTarget)
	if len(uncrawled) != 1 {
		t.Fatalf("uncrawled_link_target issues = %d, want 1", len(uncrawled))
	}
	if uncrawled[0].Severity != model.SeverityWarning {
		t.Errorf("uncrawled severity = %v, want %v (unknown is not broken)", uncrawled[0].Severity, model.SeverityWarning)
	}
	if uncrawled[0].Details["target"] != "http://example.com/never-crawled" {
		t.Errorf("Details[target] = %v, want uncrawled URL", uncrawled[0].Details["target"])
	}
}

func TestBrokenLinksSkipsUtilityPaths(t *testing.T) {
	t.Parallel()

	pages := []*model.Page{{URL: "http://example.com/", StatusCode: 200}}
	links := []*model.Link{
		internalLink("http://example.com/", "http://example.com/robots.txt"),
		internalLink("http://example.com/", "http://example.com/sitemap.xml"),
		internalLink("http://example.com/", "http://example.com/sitemap_index.xml"),
		internalLink("http://example.com/", "http://example.com/favicon.ico"),
	}
	snap := NewSnapshot(pages, links)

	if issues := (&BrokenLinks{}).Run(context.Background(), snap); len(issues) != 0 {
		t.Errorf("issues = %d, want 0 for utility-path targets", len(issues))
	}
}

func TestBrokenLinksDeduplicatesRepeatedLinks(t *testing.T) {
	t.Parallel()

	pages := []*model.Page{
		{URL: "http://example.com/", StatusCode: 200},
		{URL: "http://example.com/gone", StatusCode: 404},
	}
	links := []*model.Link{
		internalLink("http://example.com/", "http://example.com/gone"),
		internalLink("http://example.com/", "http://example.com/gone"),
		internalLink("http://example.com/", "http://example.com/gone"),
	}
	snap := NewSnapshot(pages, links)

	issues := (&BrokenLinks{}).Run(context.Background(), snap)
	if len(issues) != 1 {
		t.Errorf("issues = %d, want 1 per source/target pair", len(issues))
	}
}
