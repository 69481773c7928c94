package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nao1215/seoaudit/internal/model"
)

// countingWriter tracks bytes written through it, so the CSV writers
// can satisfy the Writer interface's byte count.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// IssuesCSVWriter outputs the issue list as CSV for spreadsheets.
type IssuesCSVWriter struct {
	baseWriter
}

// NewIssuesCSVWriter creates an IssuesCSVWriter that outputs to the
// given writer.
func NewIssuesCSVWriter(output io.Writer) *IssuesCSVWriter {
	return &IssuesCSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report's issues in CSV format.
func (w *IssuesCSVWriter) Write(report *model.AuditReport) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write([]string{"severity", "type", "affected_url", "description"}); err != nil {
		return counter.n, err
	}
	for _, issue := range report.Issues {
		record := []string{
			issue.Severity.Tag(),
			string(issue.Type),
			issue.AffectedURL,
			issue.Description,
		}
		if err := cw.Write(record); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// PagesCSVWriter outputs the page inventory as CSV for spreadsheets.
type PagesCSVWriter struct {
	baseWriter
}

// NewPagesCSVWriter creates a PagesCSVWriter that outputs to the given
// writer.
func NewPagesCSVWriter(output io.Writer) *PagesCSVWriter {
	return &PagesCSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report's pages in CSV format.
func (w *PagesCSVWriter) Write(report *model.AuditReport) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	header := []string{
		"url", "status_code", "fetch_error", "depth", "title",
		"meta_description", "h1_count", "canonical", "redirect_to", "crawled_at",
	}
	if err := cw.Write(header); err != nil {
		return counter.n, err
	}
	for _, p := range report.Pages {
		record := []string{
			p.URL,
			strconv.Itoa(p.StatusCode),
			p.FetchError,
			strconv.Itoa(p.Depth),
			p.Title,
			p.MetaDescription,
			strconv.Itoa(p.H1Count),
			p.Canonical,
			p.RedirectTo,
			p.CrawledAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}
