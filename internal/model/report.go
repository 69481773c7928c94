package model

import "time"

// PageMetrics is search-traffic data for one page, fetched from the
// Search Console integration. All fields cover the requested date range.
type PageMetrics struct {
	URL         string  `json:"url"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// QueryMetrics is search-traffic data for one query on one page.
type QueryMetrics struct {
	URL         string  `json:"url"`
	Query       string  `json:"query"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

// Backlink is one referring domain from the web-scale link graph after
// spam filtering.
type Backlink struct {
	// Domain is the referring host.
	Domain string `json:"domain"`

	// LinkCount is how many edges the graph records from that host.
	LinkCount int `json:"link_count"`

	// QualityScore is a 0..1 heuristic score; higher is better.
	QualityScore float64 `json:"quality_score"`
}

// AuditReport is the assembled result handed to report writers. It is
// built from the store after the crawl and checks finish; writers only
// read it.
type AuditReport struct {
	// SeedURL is the crawl's normalized starting address.
	SeedURL string `json:"seed_url"`

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Meta describes the crawl session.
	Meta CrawlMeta `json:"crawl"`

	// Pages is the full page inventory, ordered by URL.
	Pages []Page `json:"pages"`

	// Issues is the ordered issue list from all checks.
	Issues []Issue `json:"issues"`

	// PageMetrics is search-traffic enrichment, present only when the
	// Search Console integration ran.
	PageMetrics []PageMetrics `json:"page_metrics,omitempty"`

	// Backlinks is referring-domain enrichment, present only when an edge
	// list was filtered.
	Backlinks []Backlink `json:"backlinks,omitempty"`

	// BusinessName and PreparedBy brand the rendered report.
	BusinessName string `json:"business_name,omitempty"`
	PreparedBy   string `json:"prepared_by,omitempty"`
}

// CountBySeverity returns how many issues carry the given severity.
func (r *AuditReport) CountBySeverity(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// IssuesBySeverity returns the issues carrying the given severity, in
// their original order.
func (r *AuditReport) IssuesBySeverity(s Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

// HasIssues reports whether any check found anything.
func (r *AuditReport) HasIssues() bool {
	return len(r.Issues) > 0
}

// WorstSeverity returns the highest severity present, or SeverityNotice
// when the report is clean.
func (r *AuditReport) WorstSeverity() Severity {
	worst := SeverityNotice
	for _, issue := range r.Issues {
		if issue.Severity > worst {
			worst = issue.Severity
		}
	}
	return worst
}
