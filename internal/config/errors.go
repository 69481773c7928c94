package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no site URL is specified.
	ErrNoTarget = errors.New("no target specified: provide a site URL to audit")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Use 0 to fetch only the seed page.
	ErrInvalidDepth = errors.New("invalid crawl depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is negative.
	// Use 0 to fall back to the default budget.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidFormat is returned when --format is not one of
	// all, json, markdown, html, or csv.
	ErrInvalidFormat = errors.New("invalid report format: must be one of all, json, markdown, html, csv")

	// ErrIncompleteGSC is returned when only one of --gsc-token and
	// --gsc-site is specified. Search Console enrichment needs both.
	ErrIncompleteGSC = errors.New("incomplete Search Console settings: --gsc-token and --gsc-site must be used together")

	// ErrInvalidGSCDays is returned when the Search Console reporting
	// window is not positive.
	ErrInvalidGSCDays = errors.New("invalid Search Console window: days must be positive")
)
