package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/seoaudit/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AuditReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeIssues(md, report)
	w.writeSearchMetrics(md, report)
	w.writeBacklinks(md, report)
	w.writePages(md, report)
	w.writeFooter(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with audit information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AuditReport) {
	title := "SEO Audit Report"
	if report.BusinessName != "" {
		title = "SEO Audit Report — " + report.BusinessName
	}
	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.SeedURL + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Crawled", strconv.Itoa(report.Meta.TotalPages)},
			{"Crawl Stopped", report.Meta.Termination.String()},
			{"Issues Found", strconv.Itoa(len(report.Issues))},
		},
	})
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	errors := report.CountBySeverity(model.SeverityError)
	warnings := report.CountBySeverity(model.SeverityWarning)
	notices := report.CountBySeverity(model.SeverityNotice)

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Error", strconv.Itoa(errors)},
			{"🟡 Warning", strconv.Itoa(warnings)},
			{"🔵 Notice", strconv.Itoa(notices)},
			{"**Total**", "**" + strconv.Itoa(len(report.Issues)) + "**"},
		},
	})
	md.PlainText("")

	if report.HasIssues() {
		w.writePieChart(md, errors, warnings, notices)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, errors, warnings, notices int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	if errors > 0 {
		chart.LabelAndIntValue("Error", uint64(errors))
	}
	if warnings > 0 {
		chart.LabelAndIntValue("Warning", uint64(warnings))
	}
	if notices > 0 {
		chart.LabelAndIntValue("Notice", uint64(notices))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.AuditReport) {
	switch {
	case report.CountBySeverity(model.SeverityError) > 0:
		md.Cautionf(
			"%d error(s) are costing this site search visibility and should be fixed first.",
			report.CountBySeverity(model.SeverityError),
		)
	case report.CountBySeverity(model.SeverityWarning) > 0:
		md.Warningf(
			"%d warning(s) found. None are critical, but fixing them will improve rankings.",
			report.CountBySeverity(model.SeverityWarning),
		)
	case report.HasIssues():
		md.Note("Only informational notices found. The site is in good shape.")
	default:
		md.Tip("No issues found. The site passed every check.")
	}
	md.PlainText("")
}

// writeIssues writes all issues grouped by severity.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, report *model.AuditReport) {
	md.H2("Issues")
	md.PlainText("")

	if !report.HasIssues() {
		md.PlainText("No issues detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityError, "### 🔴 Errors"},
		{model.SeverityWarning, "### 🟡 Warnings"},
		{model.SeverityNotice, "### 🔵 Notices"},
	}

	for _, sev := range severities {
		issues := report.IssuesBySeverity(sev.level)
		if len(issues) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeIssueTable(md, issues)
	}
}

// writeIssueTable writes a table of issues with details.
func (w *MarkdownWriter) writeIssueTable(md *markdown.Markdown, issues []model.Issue) {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		affected := issue.AffectedURL
		if affected == "" {
			affected = "-"
		}
		rows[i] = []string{
			humanizeIssueType(issue.Type),
			truncateString(affected, 60),
			truncateString(issue.Description, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Issue", "Page", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSearchMetrics writes the Search Console enrichment section when
// metrics are present.
func (w *MarkdownWriter) writeSearchMetrics(md *markdown.Markdown, report *model.AuditReport) {
	if len(report.PageMetrics) == 0 {
		return
	}

	md.H2("Search Performance")
	md.PlainText("")

	rows := make([][]string, len(report.PageMetrics))
	for i, m := range report.PageMetrics {
		rows[i] = []string{
			truncateString(m.URL, 60),
			strconv.Itoa(m.Clicks),
			strconv.Itoa(m.Impressions),
			fmt.Sprintf("%.1f%%", m.CTR*100),
			fmt.Sprintf("%.1f", m.Position),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Clicks", "Impressions", "CTR", "Avg Position"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeBacklinks writes the referring-domain section when backlink
// data is present.
func (w *MarkdownWriter) writeBacklinks(md *markdown.Markdown, report *model.AuditReport) {
	if len(report.Backlinks) == 0 {
		return
	}

	md.H2("Referring Domains")
	md.PlainText("")

	rows := make([][]string, len(report.Backlinks))
	for i, b := range report.Backlinks {
		rows[i] = []string{
			b.Domain,
			strconv.Itoa(b.LinkCount),
			fmt.Sprintf("%.2f", b.QualityScore),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Links", "Quality"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePages writes the crawled page inventory.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.AuditReport) {
	if len(report.Pages) == 0 {
		return
	}

	md.H2("Page Inventory")
	md.PlainText("")

	rows := make([][]string, len(report.Pages))
	for i, p := range report.Pages {
		status := strconv.Itoa(p.StatusCode)
		if !p.Fetched() {
			status = "unreachable"
		}
		rows[i] = []string{
			truncateString(p.URL, 60),
			status,
			strconv.Itoa(p.Depth),
			truncateString(p.Title, 50),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Depth", "Title"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, report *model.AuditReport) {
	md.HorizontalRule()
	md.PlainText("")
	if report.PreparedBy != "" {
		md.PlainTextf("*Prepared by %s*", report.PreparedBy)
		md.PlainText("")
	}
	md.PlainTextf("*Report generated by [seoaudit](https://github.com/nao1215/seoaudit)*")
}
