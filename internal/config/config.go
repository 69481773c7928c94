package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request HTTP timeout. Most well-behaved
	// sites respond within a few seconds; 10 seconds leaves headroom for
	// slow origins without stalling the whole crawl on one dead URL.
	DefaultTimeout = 10 * time.Second

	// DefaultCrawlDepth of 3 reaches the pages that matter for SEO
	// (home, category, detail) on most site structures. Deeper pages
	// rarely rank and crawling them inflates audit time. Can be raised
	// via the --depth CLI flag.
	DefaultCrawlDepth = 3

	// DefaultMaxPages caps the crawl regardless of depth. This prevents
	// runaway crawling on large or infinitely-generating sites
	// (calendars, faceted navigation). Users can override this via the
	// --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultCrawlDelay is the pause between consecutive requests.
	// This is a politeness setting: 500ms keeps a full audit of a
	// thousand pages under ten minutes while staying gentle on small
	// shared-hosting servers. Can be adjusted via --delay.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultUserAgent identifies seoaudit in HTTP requests.
	// A descriptive User-Agent lets site operators recognize audit
	// traffic in their logs and is required for robots.txt matching.
	DefaultUserAgent = "seoaudit/1.0 (+https://github.com/nao1215/seoaudit)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 10MB is far beyond any sane HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultGSCDays is the Search Console reporting window in days.
	DefaultGSCDays = 28

	// DefaultOutputDir is where report files are written when --output
	// is not specified.
	DefaultOutputDir = "seoaudit-report"

	// AppName is the application name used for XDG directory paths.
	AppName = "seoaudit"
)

// DefaultExcludeExtensions lists URL path extensions skipped during
// crawling. These are binary or non-HTML assets that carry no on-page
// SEO signals worth fetching.
func DefaultExcludeExtensions() []string {
	return []string{".pdf", ".epub", ".zip", ".gz", ".tar", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".mp4", ".mp3", ".css", ".js"}
}

// ReportFormats are the accepted values for the --format flag.
// "all" renders every format into the output directory.
var ReportFormats = []string{"all", "json", "markdown", "html", "csv"}

// Config holds all configuration options for seoaudit.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Target is the seed URL of the site to audit. A bare hostname is
	// accepted; "https://" is assumed when no scheme is given.
	Target string

	// Timeout is the HTTP timeout for each request.
	// This applies to individual requests, not the overall audit duration.
	Timeout time.Duration

	// CrawlDepth is the maximum link distance from the seed URL.
	// Depth 0 means only fetch the seed page.
	CrawlDepth int

	// MaxPages is the maximum number of pages to fetch in one audit.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// CrawlDelay is the delay between HTTP requests during crawling.
	// This is a "politeness" setting to avoid overwhelming the audited
	// site. Use 0 only against servers you operate yourself.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	// It is also the agent name matched against robots.txt rules.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64

	// ExcludeExtensions are URL path extensions skipped during crawling.
	// When nil, DefaultExcludeExtensions() is used.
	ExcludeExtensions []string

	// IgnoreRobots disables the robots.txt permission gate.
	// Only use this against sites you own; the gate exists so that the
	// audit respects the same rules search engine crawlers follow.
	IgnoreRobots bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info-level and above are logged.
	Verbose bool

	// Format selects the report output: one of ReportFormats.
	// "all" (the default) writes every format into OutputDir.
	Format string

	// OutputDir is the directory report files are written to.
	// It is created if it does not exist.
	OutputDir string

	// DBDir is the directory for the per-site SQLite database.
	// Defaults to the XDG data directory (~/.local/share/seoaudit on Linux).
	// The database file itself is named after the audited host, so
	// auditing several sites from one machine keeps them separate.
	DBDir string

	// BusinessName is the client or site name shown in report headers.
	// When empty, the audited host is used.
	BusinessName string

	// PreparedBy is the consultant or agency name shown in the report
	// footer. Optional.
	PreparedBy string

	// GSCToken is an OAuth2 access token for the Google Search Console
	// API. When set together with GSCSite, the audit is enriched with
	// search performance metrics.
	GSCToken string

	// GSCSite is the Search Console property identifier, e.g.
	// "sc-domain:example.com" or "https://example.com/".
	GSCSite string

	// GSCDays is the Search Console reporting window in days.
	GSCDays int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .seoaudit in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file. This is populated by LoadConfigFile.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, delay).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		CrawlDepth:        DefaultCrawlDepth,
		MaxPages:          DefaultMaxPages,
		CrawlDelay:        DefaultCrawlDelay,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		ExcludeExtensions: DefaultExcludeExtensions(),
		Format:            "all",
		OutputDir:         DefaultOutputDir,
		DBDir:             XDGDataDir(),
		GSCDays:           DefaultGSCDays,
	}
}

// XDGDataDir returns the XDG data directory for seoaudit.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/seoaudit
// On macOS: ~/Library/Application Support/seoaudit
// On Windows: %LOCALAPPDATA%\seoaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for seoaudit.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/seoaudit
// On macOS: ~/Library/Caches/seoaudit
// On Windows: %LOCALAPPDATA%\seoaudit\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.Target == "" {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDepth < 0 {
		return ErrInvalidDepth
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if !validFormat(c.Format) {
		return ErrInvalidFormat
	}

	// GSC enrichment needs both halves of the credential pair
	if (c.GSCToken == "") != (c.GSCSite == "") {
		return ErrIncompleteGSC
	}
	if c.GSCDays <= 0 {
		return ErrInvalidGSCDays
	}

	return nil
}

func validFormat(format string) bool {
	for _, f := range ReportFormats {
		if format == f {
			return true
		}
	}
	return false
}
