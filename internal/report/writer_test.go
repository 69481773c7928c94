package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
)

func sampleReport() *model.AuditReport {
	return &model.AuditReport{
		SeedURL:     "http://example.com/",
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Meta: model.CrawlMeta{
			SeedURL:     "http://example.com/",
			StartedAt:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			CompletedAt: time.Date(2026, 3, 1, 8, 10, 0, 0, time.UTC),
			TotalPages:  3,
			TotalIssues: 3,
			Termination: model.TerminationQueueExhausted,
		},
		Pages: []model.Page{
			{URL: "http://example.com/", StatusCode: 200, Title: "Home", Depth: 0},
			{URL: "http://example.com/about", StatusCode: 200, Title: "About <us>", Depth: 1},
			{URL: "http://example.com/gone", StatusCode: 404, Depth: 1},
		},
		Issues: []model.Issue{
			{
				Type:        model.IssueBrokenLink,
				Severity:    model.SeverityError,
				Description: "Link target http://example.com/gone returns 404 Not Found",
				AffectedURL: "http://example.com/",
			},
			{
				Type:        model.IssueMissingMetaDescription,
				Severity:    model.SeverityWarning,
				Description: "Page has no meta description",
				AffectedURL: "http://example.com/about",
			},
			{
				Type:        model.IssueRedirect,
				Severity:    model.SeverityNotice,
				Description: "Page redirects to http://example.com/new",
				AffectedURL: "http://example.com/old",
			},
		},
		PageMetrics: []model.PageMetrics{
			{URL: "http://example.com/", Clicks: 120, Impressions: 3000, CTR: 0.04, Position: 2.4},
		},
		Backlinks: []model.Backlink{
			{Domain: "news.example.org", LinkCount: 12, QualityScore: 0.81},
		},
		BusinessName: "Example Widgets",
		PreparedBy:   "Audit Team",
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithPrettyPrint())

	n, err := w.Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() = %d bytes, buffer has %d", n, buf.Len())
	}

	var got model.AuditReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.SeedURL != "http://example.com/" {
		t.Errorf("SeedURL = %q, want seed", got.SeedURL)
	}
	if len(got.Issues) != 3 {
		t.Errorf("len(Issues) = %d, want 3", len(got.Issues))
	}
	if got.Issues[0].Severity != model.SeverityError {
		t.Errorf("Issues[0].Severity = %v, want %v (severity survives the round trip)", got.Issues[0].Severity, model.SeverityError)
	}
}

func TestFullJSONWriterWrapsVersion(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "1.2.3")

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var got JSONReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", got.Version)
	}
	if got.Report == nil || got.Report.SeedURL != "http://example.com/" {
		t.Error("wrapped report missing or wrong seed")
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# SEO Audit Report — Example Widgets",
		"## Severity Summary",
		"## Issues",
		"### 🔴 Errors",
		"### 🟡 Warnings",
		"### 🔵 Notices",
		"Broken Link",
		"Missing Meta Description",
		"## Search Performance",
		"## Referring Domains",
		"## Page Inventory",
		"```mermaid",
		"Prepared by Audit Team",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}

	if !strings.Contains(out, "> [!CAUTION]") {
		t.Error("markdown output missing caution alert for error-level report")
	}
}

func TestMarkdownWriterCleanReport(t *testing.T) {
	t.Parallel()

	report := sampleReport()
	report.Issues = nil

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "No issues detected.") {
		t.Error("markdown output missing clean-report text")
	}
	if strings.Contains(out, "```mermaid") {
		t.Error("markdown output has a pie chart for an empty issue set")
	}
}

func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewHTMLWriter(&buf)

	n, err := w.Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() = %d bytes, buffer has %d", n, buf.Len())
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"SEO Audit Report — Example Widgets",
		"Severity Summary",
		"Broken Link",
		"Search Performance",
		"Referring Domains",
		"Page Inventory",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html output missing %q", want)
		}
	}

	// Page titles are user content and must be escaped.
	if strings.Contains(out, "About <us>") {
		t.Error("html output contains unescaped page title")
	}
	if !strings.Contains(out, "About &lt;us&gt;") {
		t.Error("html output missing escaped page title")
	}
}

func TestIssuesCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewIssuesCSVWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("rows = %d, want 4 (header + 3 issues)", len(records))
	}
	if records[0][0] != "severity" {
		t.Errorf("header[0] = %q, want severity", records[0][0])
	}
	if records[1][0] != "error" || records[1][1] != "broken_link" {
		t.Errorf("first issue row = %v, want error/broken_link", records[1])
	}
}

func TestPagesCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewPagesCSVWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("rows = %d, want 4 (header + 3 pages)", len(records))
	}
	if records[1][0] != "http://example.com/" || records[1][1] != "200" {
		t.Errorf("first page row = %v, want home page with status 200", records[1])
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewJSONWriter(&a), NewJSONWriter(&b))

	n, err := mw.Write(sampleReport())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("MultiWriter did not write to all destinations")
	}
	if n != a.Len()+b.Len() {
		t.Errorf("Write() = %d bytes, want sum of both outputs %d", n, a.Len()+b.Len())
	}
}

type failingWriter struct{}

func (failingWriter) Write(*model.AuditReport) (int, error) {
	return 0, errors.New("writer broke")
}

func TestMultiWriterStopsOnError(t *testing.T) {
	t.Parallel()

	var after bytes.Buffer
	mw := NewMultiWriter(failingWriter{}, NewJSONWriter(&after))

	if _, err := mw.Write(sampleReport()); err == nil {
		t.Fatal("Write() error = nil, want error from first writer")
	}
	if after.Len() != 0 {
		t.Error("MultiWriter continued past a failing writer")
	}
}

func TestExportAll(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	if err := ExportAll(dir, sampleReport(), "1.2.3"); err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	for _, name := range []string{"report.json", "report.md", "report.html", "issues.csv", "pages.csv"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing export file %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("export file %s is empty", name)
		}
	}
}

func TestExportSingleFormat(t *testing.T) {
	t.Parallel()

	t.Run("csv writes both files", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		if err := Export(dir, "csv", sampleReport(), "1.2.3"); err != nil {
			t.Fatalf("Export() error = %v", err)
		}

		for _, name := range []string{"issues.csv", "pages.csv"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("missing export file %s: %v", name, err)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "report.json")); err == nil {
			t.Error("report.json written for csv-only export")
		}
	})

	t.Run("html only", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "out")
		if err := Export(dir, "html", sampleReport(), "1.2.3"); err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "report.html")); err != nil {
			t.Errorf("missing report.html: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "report.md")); err == nil {
			t.Error("report.md written for html-only export")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		if err := Export(t.TempDir(), "pdf", sampleReport(), "1.2.3"); err == nil {
			t.Error("Export() error = nil, want unknown format error")
		}
	})
}

func TestHumanizeIssueType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input model.IssueType
		want  string
	}{
		{model.IssueBrokenLink, "Broken Link"},
		{model.IssueUncrawledLinkTarget, "Uncrawled Link Target"},
		{model.IssueMissingMetaDescription, "Missing Meta Description"},
		{model.IssueRedirectLoop, "Redirect Loop"},
	}
	for _, tt := range tests {
		if got := humanizeIssueType(tt.input); got != tt.want {
			t.Errorf("humanizeIssueType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString(short, 10) = %q, want unchanged", got)
	}
	if got := truncateString("a long string that needs cutting", 10); got != "a long ..." {
		t.Errorf("truncateString() = %q, want %q", got, "a long ...")
	}
	if len(truncateString("abcdef", 3)) != 3 {
		t.Error("truncateString with tiny max not capped")
	}
}
