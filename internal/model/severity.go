package model

// Severity represents how serious an audit issue is.
//
// Design decision: We use iota-based constants rather than string
// constants so severities can be compared and sorted cheaply. The
// String() method provides human-readable output when needed.
type Severity int

const (
	// SeverityNotice indicates informational findings with no direct SEO
	// impact. Examples: a page that redirects once, a short meta
	// description. These are worth knowing about but rarely need action.
	SeverityNotice Severity = iota

	// SeverityWarning indicates issues that likely degrade search
	// performance and should be reviewed. Examples: duplicate titles,
	// redirect chains, links to pages the crawl never reached.
	SeverityWarning

	// SeverityError indicates confirmed defects. Examples: internal links
	// to 404 pages, redirect loops, missing title tags.
	SeverityError
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityNotice:
		return "NOTICE"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler so severities serialize
// as lowercase tags ("error", "warning", "notice") in JSON and CSV,
// matching the values stored in the database.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.Tag()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}

// Tag returns the lowercase database/wire tag for the severity.
func (s Severity) Tag() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "notice"
	}
}

// ParseSeverity converts a stored tag back to a Severity.
// Unknown tags map to SeverityNotice so malformed rows degrade softly
// instead of failing a whole report.
func ParseSeverity(tag string) Severity {
	switch tag {
	case "error", "ERROR":
		return SeverityError
	case "warning", "WARNING":
		return SeverityWarning
	default:
		return SeverityNotice
	}
}
