package report

import (
	"bytes"
	"html/template"
	"io"

	"github.com/nao1215/seoaudit/internal/model"
)

// HTMLWriter outputs reports as a self-contained HTML document with
// inline styling, so the file can be opened or mailed as-is.
type HTMLWriter struct {
	baseWriter
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	return &HTMLWriter{
		baseWriter: newBaseWriter(output),
	}
}

// htmlReport is the template context. The template needs display labels
// the model does not carry.
type htmlReport struct {
	*model.AuditReport

	ErrorCount   int
	WarningCount int
	NoticeCount  int

	Errors   []htmlIssue
	Warnings []htmlIssue
	Notices  []htmlIssue
}

type htmlIssue struct {
	Label       string
	AffectedURL string
	Description string
}

func htmlIssues(issues []model.Issue) []htmlIssue {
	out := make([]htmlIssue, len(issues))
	for i, issue := range issues {
		out[i] = htmlIssue{
			Label:       humanizeIssueType(issue.Type),
			AffectedURL: issue.AffectedURL,
			Description: issue.Description,
		}
	}
	return out
}

// Write outputs the full report as an HTML document.
func (w *HTMLWriter) Write(report *model.AuditReport) (int, error) {
	ctx := &htmlReport{
		AuditReport:  report,
		ErrorCount:   report.CountBySeverity(model.SeverityError),
		WarningCount: report.CountBySeverity(model.SeverityWarning),
		NoticeCount:  report.CountBySeverity(model.SeverityNotice),
		Errors:       htmlIssues(report.IssuesBySeverity(model.SeverityError)),
		Warnings:     htmlIssues(report.IssuesBySeverity(model.SeverityWarning)),
		Notices:      htmlIssues(report.IssuesBySeverity(model.SeverityNotice)),
	}

	// Render to a buffer first so a template failure doesn't leave a
	// half-written document behind.
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, ctx); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"ctrPercent": func(ctr float64) float64 { return ctr * 100 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SEO Audit Report{{if .BusinessName}} — {{.BusinessName}}{{end}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 60rem; padding: 0 1rem; color: #1f2328; }
h1 { border-bottom: 2px solid #d0d7de; padding-bottom: .3rem; }
h2 { border-bottom: 1px solid #d0d7de; padding-bottom: .2rem; margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #d0d7de; padding: .4rem .6rem; text-align: left; font-size: .9rem; word-break: break-word; }
th { background: #f6f8fa; }
.summary td.count { text-align: right; font-weight: 600; }
.sev-error { color: #cf222e; font-weight: 600; }
.sev-warning { color: #9a6700; font-weight: 600; }
.sev-notice { color: #0969da; font-weight: 600; }
footer { margin-top: 3rem; color: #656d76; font-size: .85rem; border-top: 1px solid #d0d7de; padding-top: 1rem; }
</style>
</head>
<body>
<h1>SEO Audit Report{{if .BusinessName}} — {{.BusinessName}}{{end}}</h1>

<table>
<tr><th>Site</th><td>{{.SeedURL}}</td></tr>
<tr><th>Generated</th><td>{{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</td></tr>
<tr><th>Pages Crawled</th><td>{{.Meta.TotalPages}}</td></tr>
<tr><th>Crawl Stopped</th><td>{{.Meta.Termination.String}}</td></tr>
</table>

<h2>Severity Summary</h2>
<table class="summary">
<tr><th>Severity</th><th>Count</th></tr>
<tr><td class="sev-error">Error</td><td class="count">{{.ErrorCount}}</td></tr>
<tr><td class="sev-warning">Warning</td><td class="count">{{.WarningCount}}</td></tr>
<tr><td class="sev-notice">Notice</td><td class="count">{{.NoticeCount}}</td></tr>
</table>

{{if .Errors}}
<h2 class="sev-error">Errors</h2>
<table>
<tr><th>Issue</th><th>Page</th><th>Detail</th></tr>
{{range .Errors}}<tr><td>{{.Label}}</td><td>{{.AffectedURL}}</td><td>{{.Description}}</td></tr>
{{end}}</table>
{{end}}

{{if .Warnings}}
<h2 class="sev-warning">Warnings</h2>
<table>
<tr><th>Issue</th><th>Page</th><th>Detail</th></tr>
{{range .Warnings}}<tr><td>{{.Label}}</td><td>{{.AffectedURL}}</td><td>{{.Description}}</td></tr>
{{end}}</table>
{{end}}

{{if .Notices}}
<h2 class="sev-notice">Notices</h2>
<table>
<tr><th>Issue</th><th>Page</th><th>Detail</th></tr>
{{range .Notices}}<tr><td>{{.Label}}</td><td>{{.AffectedURL}}</td><td>{{.Description}}</td></tr>
{{end}}</table>
{{end}}

{{if not .HasIssues}}<p>No issues found. The site passed every check.</p>{{end}}

{{if .PageMetrics}}
<h2>Search Performance</h2>
<table>
<tr><th>Page</th><th>Clicks</th><th>Impressions</th><th>CTR</th><th>Avg Position</th></tr>
{{range .PageMetrics}}<tr><td>{{.URL}}</td><td>{{.Clicks}}</td><td>{{.Impressions}}</td><td>{{printf "%.1f%%" (ctrPercent .CTR)}}</td><td>{{printf "%.1f" .Position}}</td></tr>
{{end}}</table>
{{end}}

{{if .Backlinks}}
<h2>Referring Domains</h2>
<table>
<tr><th>Domain</th><th>Links</th><th>Quality</th></tr>
{{range .Backlinks}}<tr><td>{{.Domain}}</td><td>{{.LinkCount}}</td><td>{{printf "%.2f" .QualityScore}}</td></tr>
{{end}}</table>
{{end}}

{{if .Pages}}
<h2>Page Inventory</h2>
<table>
<tr><th>URL</th><th>Status</th><th>Depth</th><th>Title</th></tr>
{{range .Pages}}<tr><td>{{.URL}}</td><td>{{if .Fetched}}{{.StatusCode}}{{else}}unreachable{{end}}</td><td>{{.Depth}}</td><td>{{.Title}}</td></tr>
{{end}}</table>
{{end}}

<footer>
{{if .PreparedBy}}<p>Prepared by {{.PreparedBy}}</p>{{end}}
<p>Report generated by seoaudit</p>
</footer>
</body>
</html>
`))
