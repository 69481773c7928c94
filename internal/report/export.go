package report

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/seoaudit/internal/model"
)

// Export file names inside the output directory.
const (
	jsonFileName   = "report.json"
	mdFileName     = "report.md"
	htmlFileName   = "report.html"
	issuesFileName = "issues.csv"
	pagesFileName  = "pages.csv"
)

type exportJob struct {
	file   string
	writer func(f *os.File) Writer
}

func exportJobs(version string) []exportJob {
	return []exportJob{
		{jsonFileName, func(f *os.File) Writer { return NewFullJSONWriter(f, version, WithPrettyPrint()) }},
		{mdFileName, func(f *os.File) Writer { return NewMarkdownWriter(f) }},
		{htmlFileName, func(f *os.File) Writer { return NewHTMLWriter(f) }},
		{issuesFileName, func(f *os.File) Writer { return NewIssuesCSVWriter(f) }},
		{pagesFileName, func(f *os.File) Writer { return NewPagesCSVWriter(f) }},
	}
}

// ExportAll writes the report in every supported format into dir,
// creating it if needed. The formats are independent of each other, so
// they render concurrently; the first failure cancels the rest.
func ExportAll(dir string, report *model.AuditReport, version string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	jobs := exportJobs(version)

	var g errgroup.Group
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			path := filepath.Join(dir, job.file)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}

			if _, err := job.writer(f).Write(report); err != nil {
				_ = f.Close()
				return fmt.Errorf("write %s: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", path, err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Export writes a single report format into dir. Format is one of
// "json", "markdown", "html", or "csv"; "csv" writes both the issues
// and pages files. "all" is equivalent to ExportAll.
func Export(dir, format string, report *model.AuditReport, version string) error {
	if format == "all" {
		return ExportAll(dir, report, version)
	}

	var files []string
	switch format {
	case "json":
		files = []string{jsonFileName}
	case "markdown":
		files = []string{mdFileName}
	case "html":
		files = []string{htmlFileName}
	case "csv":
		files = []string{issuesFileName, pagesFileName}
	default:
		return fmt.Errorf("unknown report format %q", format)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	wanted := make(map[string]bool, len(files))
	for _, f := range files {
		wanted[f] = true
	}

	for _, job := range exportJobs(version) {
		if !wanted[job.file] {
			continue
		}
		path := filepath.Join(dir, job.file)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := job.writer(f).Write(report); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
	}
	return nil
}
