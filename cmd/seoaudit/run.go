package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/seoaudit/internal/audit"
	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/crawler"
	"github.com/nao1215/seoaudit/internal/database"
	"github.com/nao1215/seoaudit/internal/gsc"
	"github.com/nao1215/seoaudit/internal/log"
	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/report"
	"github.com/nao1215/seoaudit/internal/robots"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <site-url>",
		Short: "Crawl a website and generate an SEO audit report",
		Long: `Run crawls the given website breadth-first from its start page, stores
every page and link in a local SQLite database, checks the result for
common SEO defects, and renders the findings into report files.

The crawler stays on the start page's host, respects robots.txt, and
pauses between requests. Redirects are recorded, not followed, so
redirect chains and loops show up in the report.

Examples:
  # Audit a site with default settings
  seoaudit run https://example.com

  # Shallow, fast audit
  seoaudit run --depth 1 --max-pages 50 example.com

  # Render only the HTML report into ./reports
  seoaudit run --format html --output reports example.com

  # Enrich the report with Search Console data
  seoaudit run --gsc-token "$TOKEN" --gsc-site sc-domain:example.com example.com

Configuration file (.seoaudit) example:
  sites:
    example.com:
      businessName: "Example Widgets"
      depth: 5
    staging.example.com:
      cookie: "preview=1"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ExactArgs(1),
		RunE: runRunCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum link distance from the start page")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Pause between consecutive requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header (also matched against robots.txt rules)")
	cmd.Flags().Bool("no-robots", false,
		"Ignore robots.txt (only use against sites you own)")
	cmd.Flags().StringSlice("exclude-ext", config.DefaultExcludeExtensions(),
		"URL path extensions never crawled")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seoaudit in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "f", "all",
		"Report format: all, json, markdown, html, or csv")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory report files are written to")
	cmd.Flags().String("business-name", "",
		"Client or site name shown in report headers")
	cmd.Flags().String("prepared-by", "",
		"Consultant or agency name shown in the report footer")

	// Search Console enrichment
	cmd.Flags().String("gsc-token", "",
		"OAuth2 access token for the Search Console API")
	cmd.Flags().String("gsc-site", "",
		"Search Console property (e.g. sc-domain:example.com)")
	cmd.Flags().Int("gsc-days", config.DefaultGSCDays,
		"Search Console reporting window in days")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags, then applies
// any site-specific overrides from the configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Target = args[0]

	var err error

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}
	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}
	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}
	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}
	cfg.IgnoreRobots, err = cmd.Flags().GetBool("no-robots")
	if err != nil {
		return nil, err
	}
	cfg.ExcludeExtensions, err = cmd.Flags().GetStringSlice("exclude-ext")
	if err != nil {
		return nil, err
	}
	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.BusinessName, err = cmd.Flags().GetString("business-name")
	if err != nil {
		return nil, err
	}
	cfg.PreparedBy, err = cmd.Flags().GetString("prepared-by")
	if err != nil {
		return nil, err
	}
	cfg.GSCToken, err = cmd.Flags().GetString("gsc-token")
	if err != nil {
		return nil, err
	}
	cfg.GSCSite, err = cmd.Flags().GetString("gsc-site")
	if err != nil {
		return nil, err
	}
	cfg.GSCDays, err = cmd.Flags().GetInt("gsc-days")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently use an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	applySiteOverrides(cfg, cmd)

	return cfg, nil
}

// applySiteOverrides folds the target's site-specific file settings into
// cfg. CLI flags the user set explicitly win over file values.
func applySiteOverrides(cfg *config.Config, cmd *cobra.Command) {
	_, host, err := normalizeTarget(cfg.Target)
	if err != nil {
		return // Validate reports this later with a better message
	}
	site := cfg.SiteConfigs.GetSiteConfig(host)

	if site.Depth != 0 && !cmd.Flags().Changed("depth") {
		cfg.CrawlDepth = site.Depth
	}
	if site.MaxPages != 0 && !cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = site.MaxPages
	}
	if site.DelayMillis != 0 && !cmd.Flags().Changed("delay") {
		cfg.CrawlDelay = time.Duration(site.DelayMillis) * time.Millisecond
	}
	if site.BusinessName != "" && !cmd.Flags().Changed("business-name") {
		cfg.BusinessName = site.BusinessName
	}
}

// setupLogger creates a structured logger based on verbosity setting.
// Credentials (tokens, cookies, auth headers) are masked in the output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// custom headers and cookies into every request. Used for auditing
// staging sites behind simple cookie walls or auth headers.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// newHTTPClient builds the HTTP client used for the crawl, applying
// the per-site cookie and headers when configured.
func newHTTPClient(cfg *config.Config, site config.SiteConfig) *http.Client {
	client := &http.Client{Timeout: cfg.Timeout}
	if site.Cookie != "" || len(site.Headers) > 0 {
		client.Transport = &headerInjectingTransport{
			cookie:  site.Cookie,
			headers: site.Headers,
		}
	}
	return client
}

// runAudit executes the full audit: crawl, checks, enrichment, report.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	seed, host, err := normalizeTarget(cfg.Target)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg, host, true)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database opened", "path", db.Path())

	// Each run replaces the previous crawl of this site. Search Console
	// and backlink enrichment survive so a re-crawl doesn't discard them.
	if err := db.ResetCrawl(ctx); err != nil {
		return fmt.Errorf("failed to reset previous crawl: %w", err)
	}

	var site config.SiteConfig
	if cfg.SiteConfigs != nil {
		site = cfg.SiteConfigs.GetSiteConfig(host)
	}
	client := newHTTPClient(cfg, site)

	gate := robots.AllowAll()
	if cfg.IgnoreRobots {
		logger.Warn("robots.txt ignored", "site", host)
	} else {
		gate = robots.NewGate(ctx, client, seed, cfg.UserAgent)
		if gate.Restricted() {
			logger.Info("robots.txt rules apply", "site", host, "sitemaps", len(gate.Sitemaps()))
		}
	}

	fetcher := crawler.NewFetcher(client,
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	)
	spider := crawler.NewSpider(fetcher, gate, db,
		crawler.WithMaxDepth(cfg.CrawlDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithExcludeExtensions(cfg.ExcludeExtensions),
	)

	fmt.Printf("Auditing %s...\n", seed)
	start := time.Now()

	result, err := spider.Crawl(ctx, seed)
	if err != nil {
		if result == nil {
			return fmt.Errorf("crawl failed: %w", err)
		}
		// A cancelled crawl still audits whatever it stored, so the
		// remaining steps run on an uncancelled context.
		logger.Warn("crawl interrupted", "error", err, "pages", result.PagesCrawled)
		ctx = context.WithoutCancel(ctx)
	}

	fmt.Printf("Crawled %d pages in %s (%s)\n",
		result.PagesCrawled, time.Since(start).Round(time.Millisecond), result.Termination)

	meta := &model.CrawlMeta{
		SeedURL:     result.SeedURL,
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
		TotalPages:  result.PagesCrawled,
		Termination: result.Termination,
	}

	runner := audit.NewRunner(db, logger)
	runner.SetSite(&audit.SiteFacts{
		SeedURL:         seed,
		RobotsChecked:   !cfg.IgnoreRobots,
		RobotsFound:     gate.Restricted(),
		RobotsBlocksAll: gate.BlocksAll(),
		Sitemaps:        gate.Sitemaps(),
	})
	issues, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("audit checks failed: %w", err)
	}
	meta.TotalIssues = len(issues)

	if err := db.SaveCrawlMeta(ctx, meta); err != nil {
		return fmt.Errorf("failed to save crawl metadata: %w", err)
	}

	if cfg.GSCToken != "" {
		enrichFromSearchConsole(ctx, cfg, db, logger)
	}

	rep, err := assembleReport(ctx, db, cfg, host)
	if err != nil {
		return err
	}
	if err := report.Export(cfg.OutputDir, cfg.Format, rep, getVersion()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	printSummary(rep, cfg.OutputDir)
	return nil
}

// enrichFromSearchConsole fetches page and query metrics and stores
// them. Enrichment is best effort: a Search Console outage or an
// expired token downgrades the report instead of failing the audit.
func enrichFromSearchConsole(ctx context.Context, cfg *config.Config, db *database.AuditDB, logger *slog.Logger) {
	client := gsc.NewClient(cfg.GSCToken, gsc.WithLogger(logger))

	pageMetrics, err := client.FetchPageMetrics(ctx, cfg.GSCSite, cfg.GSCDays)
	if err != nil {
		logger.Warn("Search Console enrichment skipped", "error", err)
		return
	}
	if err := db.SavePageMetrics(ctx, pageMetrics); err != nil {
		logger.Warn("failed to save search metrics", "error", err)
		return
	}

	pages := make([]string, 0, len(pageMetrics))
	for _, m := range pageMetrics {
		pages = append(pages, m.URL)
	}
	queryMetrics, err := client.FetchQueriesForPages(ctx, cfg.GSCSite, pages, cfg.GSCDays)
	if err != nil {
		logger.Warn("query metrics skipped", "error", err)
		return
	}
	if err := db.SaveQueryMetrics(ctx, queryMetrics); err != nil {
		logger.Warn("failed to save query metrics", "error", err)
		return
	}

	logger.Info("Search Console enrichment saved",
		"pages", len(pageMetrics), "queries", len(queryMetrics))
}

// printSummary prints the issue counts and output location to stdout.
func printSummary(rep *model.AuditReport, outputDir string) {
	fmt.Printf("\nFound %d issues: %d errors, %d warnings, %d notices\n",
		len(rep.Issues),
		rep.CountBySeverity(model.SeverityError),
		rep.CountBySeverity(model.SeverityWarning),
		rep.CountBySeverity(model.SeverityNotice),
	)
	fmt.Printf("Reports written to %s\n", outputDir)
}
