package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// Title length bounds in characters. Search engines truncate titles
// around 60 characters; below 10 the title carries almost no signal.
const (
	minTitleLen = 10
	maxTitleLen = 60
)

// Titles checks the <title> element of every successful page: present,
// within the length bounds, and unique across the site.
type Titles struct{}

// Name implements Check.
func (c *Titles) Name() string { return "titles" }

// Description implements Check.
func (c *Titles) Description() string {
	return "finds missing, too-short, too-long, and duplicate page titles"
}

// Run implements Check.
func (c *Titles) Run(_ context.Context, snap *Snapshot) []model.Issue {
	var issues []model.Issue

	byTitle := make(map[string][]string)

	for _, p := range snap.SuccessPages() {
		title := strings.TrimSpace(p.Title)

		switch {
		case title == "":
			issues = append(issues, model.Issue{
				Type:        model.IssueMissingTitle,
				Severity:    model.SeverityError,
				Description: "Page has no <title> element",
				AffectedURL: p.URL,
			})
			continue
		case len(title) < minTitleLen:
			issues = append(issues, model.Issue{
				Type:        model.IssueShortTitle,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Title is only %d characters (minimum %d recommended): %q", len(title), minTitleLen, title),
				AffectedURL: p.URL,
				Details: map[string]any{
					"title":  title,
					"length": len(title),
				},
			})
		case len(title) > maxTitleLen:
			issues = append(issues, model.Issue{
				Type:        model.IssueLongTitle,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Title is %d characters (maximum %d recommended); search results will truncate it", len(title), maxTitleLen),
				AffectedURL: p.URL,
				Details: map[string]any{
					"title":  title,
					"length": len(title),
				},
			})
		}

		key := strings.ToLower(title)
		byTitle[key] = append(byTitle[key], p.URL)
	}

	issues = append(issues, duplicateIssues(byTitle, model.IssueDuplicateTitle, "title")...)

	return issues
}

// maxDuplicateExamples caps how many sharing URLs a duplicate finding
// lists.
const maxDuplicateExamples = 5

// duplicateIssues emits one WARNING per page whose value is shared
// with at least one other page, listing up to maxDuplicateExamples of
// the other pages.
func duplicateIssues(byValue map[string][]string, issueType model.IssueType, field string) []model.Issue {
	var issues []model.Issue

	for _, urls := range byValue {
		if len(urls) < 2 {
			continue
		}
		for _, u := range urls {
			examples := make([]string, 0, maxDuplicateExamples)
			for _, other := range urls {
				if other == u {
					continue
				}
				if len(examples) == maxDuplicateExamples {
					break
				}
				examples = append(examples, other)
			}
			issues = append(issues, model.Issue{
				Type:        issueType,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Page shares its %s with %d other page(s)", field, len(urls)-1),
				AffectedURL: u,
				Details: map[string]any{
					"shared_with": examples,
					"total_pages": len(urls),
				},
			})
		}
	}

	return issues
}
