package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// Headings checks the H1 structure of every successful page: exactly
// one H1, and it has to say something.
type Headings struct{}

// Name implements Check.
func (c *Headings) Name() string { return "headings" }

// Description implements Check.
func (c *Headings) Description() string {
	return "finds pages with missing, multiple, or empty H1 headings"
}

// Run implements Check.
func (c *Headings) Run(_ context.Context, snap *Snapshot) []model.Issue {
	var issues []model.Issue

	for _, p := range snap.SuccessPages() {
		switch {
		case p.H1Count == 0:
			issues = append(issues, model.Issue{
				Type:        model.IssueMissingH1,
				Severity:    model.SeverityWarning,
				Description: "Page has no <h1> heading",
				AffectedURL: p.URL,
			})
		case p.H1Count > 1:
			issues = append(issues, model.Issue{
				Type:        model.IssueMultipleH1,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("Page has %d <h1> headings; exactly one is recommended", p.H1Count),
				AffectedURL: p.URL,
				Details: map[string]any{
					"count": p.H1Count,
				},
			})
		case strings.TrimSpace(p.H1Text) == "":
			issues = append(issues, model.Issue{
				Type:        model.IssueEmptyH1,
				Severity:    model.SeverityWarning,
				Description: "Page's <h1> heading has no text",
				AffectedURL: p.URL,
			})
		}
	}

	return issues
}
