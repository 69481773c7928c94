package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/seoaudit/internal/model"
)

// AuditDB provides SQLite-based storage for crawl data and audit results.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file per audited site rather
// than one shared file. An audit is a self-contained artifact: it can be
// exported, archived, or deleted without touching other sites' data.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at dbDir/name.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir, name string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, name)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run an audit first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY during the crawl's interleaved page and link writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// Path returns the location of the database file.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Pages store one row per fetch attempt, keyed by normalized URL
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		status_code INTEGER,
		fetch_error TEXT,
		title TEXT,
		meta_description TEXT,
		canonical TEXT,
		robots_meta TEXT,
		h1_count INTEGER DEFAULT 0,
		h1_text TEXT,
		redirect_to TEXT,
		depth INTEGER DEFAULT 0,
		crawled_at DATETIME,
		content_hash TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pages_status ON pages(status_code);
	CREATE INDEX IF NOT EXISTS idx_pages_depth ON pages(depth);

	-- Links record every hyperlink discovered during the crawl
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_url TEXT NOT NULL,
		target_url TEXT NOT NULL,
		text TEXT,
		type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_source ON links(source_url);
	CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_url);

	-- Issues raised by the audit checks
	CREATE TABLE IF NOT EXISTS issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		description TEXT NOT NULL,
		affected_url TEXT,
		details TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_issues_type ON issues(type);
	CREATE INDEX IF NOT EXISTS idx_issues_severity ON issues(severity);
	CREATE INDEX IF NOT EXISTS idx_issues_url ON issues(affected_url);

	-- Crawl sessions, newest last
	CREATE TABLE IF NOT EXISTS crawl_meta (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		started_at DATETIME,
		completed_at DATETIME,
		total_pages INTEGER DEFAULT 0,
		total_issues INTEGER DEFAULT 0,
		termination TEXT
	);

	-- Search performance per page, from Search Console
	CREATE TABLE IF NOT EXISTS gsc_page_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		clicks INTEGER DEFAULT 0,
		impressions INTEGER DEFAULT 0,
		ctr REAL DEFAULT 0,
		position REAL DEFAULT 0
	);

	-- Search performance per query and page, from Search Console
	CREATE TABLE IF NOT EXISTS gsc_queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		query TEXT NOT NULL,
		clicks INTEGER DEFAULT 0,
		impressions INTEGER DEFAULT 0,
		ctr REAL DEFAULT 0,
		position REAL DEFAULT 0,
		UNIQUE(url, query)
	);

	-- Referring domains that passed the quality filter
	CREATE TABLE IF NOT EXISTS backlinks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL UNIQUE,
		link_count INTEGER DEFAULT 0,
		quality_score REAL DEFAULT 0
	);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// UpsertPage inserts or updates a page record. The normalized URL is
// the key: a re-crawl of the same address overwrites the previous row.
func (adb *AuditDB) UpsertPage(ctx context.Context, page *model.Page) error {
	query := `
	INSERT INTO pages (url, status_code, fetch_error, title, meta_description, canonical,
		robots_meta, h1_count, h1_text, redirect_to, depth, crawled_at, content_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		status_code = excluded.status_code,
		fetch_error = excluded.fetch_error,
		title = excluded.title,
		meta_description = excluded.meta_description,
		canonical = excluded.canonical,
		robots_meta = excluded.robots_meta,
		h1_count = excluded.h1_count,
		h1_text = excluded.h1_text,
		redirect_to = excluded.redirect_to,
		depth = excluded.depth,
		crawled_at = excluded.crawled_at,
		content_hash = excluded.content_hash
	`

	_, err := adb.db.ExecContext(ctx, query,
		page.URL,
		page.StatusCode,
		page.FetchError,
		page.Title,
		page.MetaDescription,
		page.Canonical,
		page.RobotsMeta,
		page.H1Count,
		page.H1Text,
		page.RedirectTo,
		page.Depth,
		formatTimestamp(page.CrawledAt),
		page.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}

	return nil
}

// GetPage retrieves a page by its normalized URL.
// Returns nil without error when the page was never crawled.
func (adb *AuditDB) GetPage(ctx context.Context, url string) (*model.Page, error) {
	query := `
	SELECT url, status_code, fetch_error, title, meta_description, canonical,
		robots_meta, h1_count, h1_text, redirect_to, depth, crawled_at, content_hash
	FROM pages
	WHERE url = ?
	`

	page, err := scanPage(adb.db.QueryRowContext(ctx, query, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	return page, nil
}

// GetAllPages retrieves every crawled page ordered by depth, then URL.
func (adb *AuditDB) GetAllPages(ctx context.Context) ([]*model.Page, error) {
	query := `
	SELECT url, status_code, fetch_error, title, meta_description, canonical,
		robots_meta, h1_count, h1_text, redirect_to, depth, crawled_at, content_hash
	FROM pages
	ORDER BY depth, url
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []*model.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}

	return pages, rows.Err()
}

// CountPages returns the number of stored pages.
func (adb *AuditDB) CountPages(ctx context.Context) (int, error) {
	var count int
	if err := adb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pages").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning code.
type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*model.Page, error) {
	var page model.Page
	var crawledAt sql.NullString

	err := row.Scan(
		&page.URL,
		&page.StatusCode,
		&page.FetchError,
		&page.Title,
		&page.MetaDescription,
		&page.Canonical,
		&page.RobotsMeta,
		&page.H1Count,
		&page.H1Text,
		&page.RedirectTo,
		&page.Depth,
		&crawledAt,
		&page.ContentHash,
	)
	if err != nil {
		return nil, err
	}

	if crawledAt.Valid {
		page.CrawledAt = parseTimestamp(crawledAt.String)
	}

	return &page, nil
}

// AppendLink records one discovered hyperlink. Links are append-only;
// the same source may legitimately link a target several times.
func (adb *AuditDB) AppendLink(ctx context.Context, link *model.Link) error {
	query := `
	INSERT INTO links (source_url, target_url, text, type)
	VALUES (?, ?, ?, ?)
	`

	_, err := adb.db.ExecContext(ctx, query,
		link.SourceURL,
		link.TargetURL,
		link.Text,
		link.Type.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to append link: %w", err)
	}

	return nil
}

// GetAllLinks retrieves every recorded link in insertion order.
func (adb *AuditDB) GetAllLinks(ctx context.Context) ([]*model.Link, error) {
	query := `
	SELECT source_url, target_url, text, type
	FROM links
	ORDER BY id
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		var link model.Link
		var linkType string
		if err := rows.Scan(&link.SourceURL, &link.TargetURL, &link.Text, &linkType); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		link.Type = model.ParseLinkType(linkType)
		links = append(links, &link)
	}

	return links, rows.Err()
}

// InsertIssue records one audit finding.
func (adb *AuditDB) InsertIssue(ctx context.Context, issue *model.Issue) error {
	var detailsJSON []byte
	if issue.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(issue.Details)
		if err != nil {
			return fmt.Errorf("failed to serialize issue details: %w", err)
		}
	}

	query := `
	INSERT INTO issues (type, severity, description, affected_url, details)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := adb.db.ExecContext(ctx, query,
		string(issue.Type),
		issue.Severity.Tag(),
		issue.Description,
		issue.AffectedURL,
		string(detailsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert issue: %w", err)
	}

	return nil
}

// GetAllIssues retrieves every issue, most severe first, then by type.
func (adb *AuditDB) GetAllIssues(ctx context.Context) ([]*model.Issue, error) {
	query := `
	SELECT type, severity, description, affected_url, details, created_at
	FROM issues
	ORDER BY
		CASE severity WHEN 'error' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END,
		type, affected_url
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	var issues []*model.Issue
	for rows.Next() {
		var issue model.Issue
		var issueType, severity string
		var details sql.NullString
		var createdAt string

		if err := rows.Scan(&issueType, &severity, &issue.Description, &issue.AffectedURL, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}

		issue.Type = model.IssueType(issueType)
		issue.Severity = model.ParseSeverity(severity)
		issue.CreatedAt = parseTimestamp(createdAt)
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &issue.Details); err != nil {
				return nil, fmt.Errorf("failed to parse issue details: %w", err)
			}
		}

		issues = append(issues, &issue)
	}

	return issues, rows.Err()
}

// ClearIssues removes all issues, so a re-run of the checks starts clean.
func (adb *AuditDB) ClearIssues(ctx context.Context) error {
	if _, err := adb.db.ExecContext(ctx, "DELETE FROM issues"); err != nil {
		return fmt.Errorf("failed to clear issues: %w", err)
	}
	return nil
}

// SaveCrawlMeta records one finished crawl session.
func (adb *AuditDB) SaveCrawlMeta(ctx context.Context, meta *model.CrawlMeta) error {
	query := `
	INSERT INTO crawl_meta (seed_url, started_at, completed_at, total_pages, total_issues, termination)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := adb.db.ExecContext(ctx, query,
		meta.SeedURL,
		formatTimestamp(meta.StartedAt),
		formatTimestamp(meta.CompletedAt),
		meta.TotalPages,
		meta.TotalIssues,
		meta.Termination.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl meta: %w", err)
	}

	return nil
}

// GetLatestCrawlMeta retrieves the most recent crawl session.
// Returns nil without error when no crawl has been recorded.
func (adb *AuditDB) GetLatestCrawlMeta(ctx context.Context) (*model.CrawlMeta, error) {
	query := `
	SELECT seed_url, started_at, completed_at, total_pages, total_issues, termination
	FROM crawl_meta
	ORDER BY id DESC
	LIMIT 1
	`

	var meta model.CrawlMeta
	var startedAt, completedAt, termination string

	err := adb.db.QueryRowContext(ctx, query).Scan(
		&meta.SeedURL,
		&startedAt,
		&completedAt,
		&meta.TotalPages,
		&meta.TotalIssues,
		&termination,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl meta: %w", err)
	}

	meta.StartedAt = parseTimestamp(startedAt)
	meta.CompletedAt = parseTimestamp(completedAt)
	meta.Termination = model.ParseTerminationReason(termination)

	return &meta, nil
}

// SavePageMetrics replaces the stored per-page search metrics.
func (adb *AuditDB) SavePageMetrics(ctx context.Context, metrics []model.PageMetrics) error {
	return adb.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM gsc_page_data"); err != nil {
			return err
		}
		for _, m := range metrics {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO gsc_page_data (url, clicks, impressions, ctr, position) VALUES (?, ?, ?, ?, ?)",
				m.URL, m.Clicks, m.Impressions, m.CTR, m.Position,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPageMetrics retrieves the stored per-page search metrics, most
// clicked first.
func (adb *AuditDB) GetPageMetrics(ctx context.Context) ([]model.PageMetrics, error) {
	rows, err := adb.db.QueryContext(ctx,
		"SELECT url, clicks, impressions, ctr, position FROM gsc_page_data ORDER BY clicks DESC, url")
	if err != nil {
		return nil, fmt.Errorf("failed to query page metrics: %w", err)
	}
	defer rows.Close()

	var metrics []model.PageMetrics
	for rows.Next() {
		var m model.PageMetrics
		if err := rows.Scan(&m.URL, &m.Clicks, &m.Impressions, &m.CTR, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan page metrics: %w", err)
		}
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// SaveQueryMetrics replaces the stored per-query search metrics.
func (adb *AuditDB) SaveQueryMetrics(ctx context.Context, metrics []model.QueryMetrics) error {
	return adb.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM gsc_queries"); err != nil {
			return err
		}
		for _, m := range metrics {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO gsc_queries (url, query, clicks, impressions, ctr, position) VALUES (?, ?, ?, ?, ?, ?)",
				m.URL, m.Query, m.Clicks, m.Impressions, m.CTR, m.Position,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetQueryMetrics retrieves the stored per-query search metrics, most
// clicked first.
func (adb *AuditDB) GetQueryMetrics(ctx context.Context) ([]model.QueryMetrics, error) {
	rows, err := adb.db.QueryContext(ctx,
		"SELECT url, query, clicks, impressions, ctr, position FROM gsc_queries ORDER BY clicks DESC, url, query")
	if err != nil {
		return nil, fmt.Errorf("failed to query search queries: %w", err)
	}
	defer rows.Close()

	var metrics []model.QueryMetrics
	for rows.Next() {
		var m model.QueryMetrics
		if err := rows.Scan(&m.URL, &m.Query, &m.Clicks, &m.Impressions, &m.CTR, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan query metrics: %w", err)
		}
		metrics = append(metrics, m)
	}

	return metrics, rows.Err()
}

// SaveBacklinks replaces the stored referring-domain records.
func (adb *AuditDB) SaveBacklinks(ctx context.Context, backlinks []model.Backlink) error {
	return adb.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM backlinks"); err != nil {
			return err
		}
		for _, b := range backlinks {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO backlinks (domain, link_count, quality_score) VALUES (?, ?, ?)",
				b.Domain, b.LinkCount, b.QualityScore,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBacklinks retrieves the stored referring domains, highest quality
// first.
func (adb *AuditDB) GetBacklinks(ctx context.Context) ([]model.Backlink, error) {
	rows, err := adb.db.QueryContext(ctx,
		"SELECT domain, link_count, quality_score FROM backlinks ORDER BY quality_score DESC, domain")
	if err != nil {
		return nil, fmt.Errorf("failed to query backlinks: %w", err)
	}
	defer rows.Close()

	var backlinks []model.Backlink
	for rows.Next() {
		var b model.Backlink
		if err := rows.Scan(&b.Domain, &b.LinkCount, &b.QualityScore); err != nil {
			return nil, fmt.Errorf("failed to scan backlink: %w", err)
		}
		backlinks = append(backlinks, b)
	}

	return backlinks, rows.Err()
}

// ResetCrawl clears the pages, links, issues, and session tables so a
// fresh crawl of the same site starts from nothing. Enrichment data
// (search metrics and backlinks) survives; it is keyed to the site, not
// to one crawl.
func (adb *AuditDB) ResetCrawl(ctx context.Context) error {
	return adb.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"pages", "links", "issues", "crawl_meta"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes every row from every table.
func (adb *AuditDB) Clear(ctx context.Context) error {
	return adb.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"pages", "links", "issues", "crawl_meta", "gsc_page_data", "gsc_queries", "backlinks"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

// inTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (adb *AuditDB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("transaction failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// timestampFormat is how timestamps are written to the database.
const timestampFormat = "2006-01-02 15:04:05"

// formatTimestamp renders a time for storage. The zero time becomes an
// empty string so parseTimestamp round-trips it back to zero.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampFormat)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
