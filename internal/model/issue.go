package model

import "time"

// IssueType identifies the kind of defect an audit check found.
// Checks are the sole producers of issues; each type is emitted by
// exactly one check.
type IssueType string

// Issue types produced by the audit checks.
const (
	// IssueBrokenLink is an internal link whose target was fetched and
	// returned a 4xx/5xx status, or could not be reached at all.
	IssueBrokenLink IssueType = "broken_link"

	// IssueUncrawledLinkTarget is an internal link whose target never
	// appeared in the crawl's page set. The target may simply have been
	// excluded by depth, extension, or robots policy, so this is kept
	// distinct from IssueBrokenLink rather than merged into it.
	IssueUncrawledLinkTarget IssueType = "uncrawled_link_target"

	// IssueRedirect is a page that redirects in a single hop.
	IssueRedirect IssueType = "redirect"

	// IssueRedirectChain is a page whose redirect takes more than one hop
	// to resolve.
	IssueRedirectChain IssueType = "redirect_chain"

	// IssueRedirectLoop is a page whose redirect walk revisits an address
	// before reaching a non-redirecting destination.
	IssueRedirectLoop IssueType = "redirect_loop"

	IssueMissingTitle   IssueType = "missing_title"
	IssueShortTitle     IssueType = "short_title"
	IssueLongTitle      IssueType = "long_title"
	IssueDuplicateTitle IssueType = "duplicate_title"

	IssueMissingMetaDescription   IssueType = "missing_meta_description"
	IssueShortMetaDescription     IssueType = "short_meta_description"
	IssueLongMetaDescription      IssueType = "long_meta_description"
	IssueDuplicateMetaDescription IssueType = "duplicate_meta_description"

	IssueMissingH1  IssueType = "missing_h1"
	IssueMultipleH1 IssueType = "multiple_h1"
	IssueEmptyH1    IssueType = "empty_h1"

	// IssueInsecureScheme is a site served over plain HTTP.
	IssueInsecureScheme IssueType = "insecure_scheme"

	// IssueMissingRobots is a site with no readable robots.txt.
	IssueMissingRobots IssueType = "missing_robots"

	// IssueRobotsBlocksAll is a robots.txt that denies the auditing
	// agent the site root.
	IssueRobotsBlocksAll IssueType = "robots_blocks_all"

	// IssueMissingSitemap is a site whose robots.txt declares no
	// sitemap.
	IssueMissingSitemap IssueType = "missing_sitemap"
)

// Issue is one finding produced by an audit check. Issues are immutable
// once produced.
type Issue struct {
	// Type identifies the defect.
	Type IssueType `json:"issue_type"`

	// Severity grades the finding.
	Severity Severity `json:"severity"`

	// Description is a human-readable one-liner.
	Description string `json:"description"`

	// AffectedURL is the page the finding is attributed to.
	AffectedURL string `json:"affected_url,omitempty"`

	// Details carries structured context specific to the issue type, such
	// as the target URL of a broken link or the hop list of a redirect
	// chain. May be nil.
	Details map[string]any `json:"details,omitempty"`

	// CreatedAt is when the check produced the issue.
	CreatedAt time.Time `json:"created_at,omitempty"`
}
