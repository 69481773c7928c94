package model

// LinkType classifies a link edge relative to the crawl's seed host.
//
// Design decision: a closed enum rather than a free-form string so
// consumers (the scheduler, the broken-link check, report writers)
// handle every case exhaustively.
type LinkType int

const (
	// LinkInternal is a link whose normalized target host equals the
	// seed host. Internal links feed the crawl frontier.
	LinkInternal LinkType = iota

	// LinkExternal is a link to any other host. External links are
	// recorded but never enqueued.
	LinkExternal
)

// String returns the database/wire tag for the link type.
func (t LinkType) String() string {
	if t == LinkExternal {
		return "external"
	}
	return "internal"
}

// ParseLinkType converts a stored tag back to a LinkType.
func ParseLinkType(tag string) LinkType {
	if tag == "external" {
		return LinkExternal
	}
	return LinkInternal
}

// Link is one directed edge in the page graph: an anchor on SourceURL
// pointing at TargetURL. One Link exists per anchor occurrence; repeated
// anchors on the same page produce repeated edges.
type Link struct {
	// SourceURL is the normalized address of the page carrying the anchor.
	SourceURL string `json:"source_url"`

	// TargetURL is the anchor's href resolved against the source and
	// normalized with the same rules used for Page keys. Link targets and
	// Page keys must share one normalization or graph joins silently miss.
	TargetURL string `json:"target_url"`

	// Text is the anchor's inner text, truncated to MaxAnchorTextLen.
	Text string `json:"text,omitempty"`

	// Type classifies the edge against the seed host.
	Type LinkType `json:"type"`
}

// MaxAnchorTextLen bounds stored anchor text. Pathological markup can
// put arbitrarily large content inside an anchor; 200 characters is
// plenty for reporting which link was meant.
const MaxAnchorTextLen = 200
