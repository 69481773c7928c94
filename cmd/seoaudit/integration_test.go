package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"

	"github.com/nao1215/seoaudit/internal/config"
)

// TestAuditWorkflow drives the full CLI workflow against one site:
// audit, backlink import, re-export, clear.
func TestAuditWorkflow(t *testing.T) {
	// Not parallel: redirects the XDG directories for the subcommands
	// that resolve them on their own.
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	xdg.Reload()
	defer xdg.Reload()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, `<html><head><title>Welcome to the shop</title></head>
<body><h1>Shop</h1></body></html>`)
	}))
	defer ts.Close()

	_, host, err := normalizeTarget(ts.URL)
	if err != nil {
		t.Fatal(err)
	}

	// Audit the site. The database lands in the redirected XDG data dir.
	cfg := config.NewConfig()
	cfg.Target = ts.URL
	cfg.CrawlDelay = 0
	cfg.DBDir = config.XDGDataDir()
	cfg.OutputDir = filepath.Join(tmp, "first")
	cfg.SiteConfigs = &config.File{Sites: map[string]config.SiteConfig{}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := runAudit(context.Background(), cfg, logger); err != nil {
		t.Fatalf("runAudit() error = %v", err)
	}

	// Import a backlink edge list.
	edges := filepath.Join(tmp, "edges.txt")
	content := "news.example.org 12\nlibrary.university.edu 5\nsomething.xyz 50\n"
	if err := os.WriteFile(edges, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"backlinks", "--edges", edges, ts.URL})
	if err := root.Execute(); err != nil {
		t.Fatalf("backlinks command error = %v", err)
	}
	if !strings.Contains(out.String(), "Kept 2 of 3") {
		t.Errorf("backlinks output = %q, want spam domain filtered out", out.String())
	}

	// Re-export without crawling; the new report carries the backlinks.
	exportDir := filepath.Join(tmp, "second")
	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"export", "--format", "html", "--output", exportDir, ts.URL})
	if err := root.Execute(); err != nil {
		t.Fatalf("export command error = %v", err)
	}

	html, err := os.ReadFile(filepath.Join(exportDir, "report.html"))
	if err != nil {
		t.Fatalf("report.html not written: %v", err)
	}
	if !strings.Contains(string(html), "news.example.org") {
		t.Error("exported report missing imported backlink domain")
	}

	// Clear wipes everything; a further export has nothing to render.
	root = NewRootCmd()
	out.Reset()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"clear", "--yes", ts.URL})
	if err := root.Execute(); err != nil {
		t.Fatalf("clear command error = %v", err)
	}
	if !strings.Contains(out.String(), "Cleared all stored data for "+host) {
		t.Errorf("clear output = %q", out.String())
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"export", ts.URL})
	if err := root.Execute(); err == nil {
		t.Error("export after clear succeeded, want error")
	}
}

func TestClearCmdPromptAborts(t *testing.T) {
	t.Parallel()

	cmd := NewClearCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("n\n"))
	cmd.SetArgs([]string{"example.com"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "Aborted.") {
		t.Errorf("output = %q, want abort message", out.String())
	}
}
