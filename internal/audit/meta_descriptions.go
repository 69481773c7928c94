package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/seoaudit/internal/model"
)

// Meta description length bounds in characters. Snippets are cut
// around 160 characters; below 50 the description is unlikely to be
// used at all.
const (
	minMetaDescriptionLen = 50
	maxMetaDescriptionLen = 160
)

// MetaDescriptions checks the meta description of every successful
// page: present, within the length bounds, and unique across the site.
type MetaDescriptions struct{}

// Name implements Check.
func (c *MetaDescriptions) Name() string { return "meta-descriptions" }

// Description implements Check.
func (c *MetaDescriptions) Description() string {
	return "finds missing, too-short, too-long, and duplicate meta descriptions"
}

// Run implements Check.
func (c *MetaDescriptions) Run(_ context.Context, snap *Snapshot) []model.Issue {
	var issues []model.Issue

	byDescription := make(map[string][]string)

	for _, p := range snap.SuccessPages() {
		desc := strings.TrimSpace(p.MetaDescription)

		switch {
		case desc == "":
			issues = append(issues, model.Issue{
				Type:        model.IssueMissingMetaDescription,
				Severity:    model.SeverityWarning,
				Description: "Page has no meta description",
				AffectedURL: p.URL,
			})
			continue
		case len(desc) < minMetaDescriptionLen:
			issues = append(issues, model.Issue{
				Type:        model.IssueShortMetaDescription,
				Severity:    model.SeverityNotice,
				Description: fmt.Sprintf("Meta description is only %d characters (minimum %d recommended)", len(desc), minMetaDescriptionLen),
				AffectedURL: p.URL,
				Details: map[string]any{
					"length": len(desc),
				},
			})
		case len(desc) > maxMetaDescriptionLen:
			issues = append(issues, model.Issue{
				Type:        model.IssueLongMetaDescription,
				Severity:    model.SeverityNotice,
				Description: fmt.Sprintf("Meta description is %d characters (maximum %d recommended); snippets will truncate it", len(desc), maxMetaDescriptionLen),
				AffectedURL: p.URL,
				Details: map[string]any{
					"length": len(desc),
				},
			})
		}

		key := strings.ToLower(desc)
		byDescription[key] = append(byDescription[key], p.URL)
	}

	issues = append(issues, duplicateIssues(byDescription, model.IssueDuplicateMetaDescription, "meta description")...)

	return issues
}
