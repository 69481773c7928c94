package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/urlutil"
)

// normalizeTarget normalizes a user-supplied site argument and returns
// the normalized seed URL and its host. A bare hostname is accepted;
// "https://" is assumed when no scheme is given.
func normalizeTarget(target string) (seed, host string, err error) {
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	seed = urlutil.Normalize(target)
	host = urlutil.Host(seed)
	if host == "" {
		return "", "", fmt.Errorf("invalid site URL: %q", target)
	}
	return seed, host, nil
}

// dbFileName maps an audited host to its database file name.
// Hosts with a port keep it, with ":" made filesystem-safe.
func dbFileName(host string) string {
	return strings.ReplaceAll(host, ":", "_") + ".db"
}

// openDatabase opens the per-site database for host under cfg.DBDir.
// When create is false and no database exists, an error telling the
// user to run an audit first is returned.
func openDatabase(cfg *config.Config, host string, create bool) (*database.AuditDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = create
	db, err := database.Open(cfg.DBDir, dbFileName(host), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// assembleReport builds an AuditReport from everything stored for one
// site: the page inventory, the issue list, the latest crawl metadata,
// and any Search Console or backlink enrichment that has been saved.
func assembleReport(ctx context.Context, db *database.AuditDB, cfg *config.Config, host string) (*model.AuditReport, error) {
	meta, err := db.GetLatestCrawlMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl metadata: %w", err)
	}
	if meta == nil {
		return nil, fmt.Errorf("no crawl recorded for %s (run an audit first)", host)
	}

	pages, err := db.GetAllPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	issues, err := db.GetAllIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load issues: %w", err)
	}
	pageMetrics, err := db.GetPageMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load search metrics: %w", err)
	}
	backlinks, err := db.GetBacklinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load backlinks: %w", err)
	}

	rep := &model.AuditReport{
		SeedURL:      meta.SeedURL,
		GeneratedAt:  time.Now().UTC(),
		Meta:         *meta,
		Pages:        make([]model.Page, 0, len(pages)),
		Issues:       make([]model.Issue, 0, len(issues)),
		PageMetrics:  pageMetrics,
		Backlinks:    backlinks,
		BusinessName: cfg.BusinessName,
		PreparedBy:   cfg.PreparedBy,
	}
	if rep.BusinessName == "" {
		rep.BusinessName = host
	}
	for _, p := range pages {
		rep.Pages = append(rep.Pages, *p)
	}
	for _, issue := range issues {
		rep.Issues = append(rep.Issues, *issue)
	}
	return rep, nil
}
