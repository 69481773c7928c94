package model

import "time"

// TerminationReason records why the crawl loop stopped. The queue
// draining and the page budget being hit are independently observable:
// a crawl can hit the budget with work still queued, drain the queue
// under budget, or be cancelled before either.
type TerminationReason int

const (
	// TerminationQueueExhausted means every reachable address within the
	// depth bound was processed.
	TerminationQueueExhausted TerminationReason = iota

	// TerminationPageBudget means the configured max-pages count was
	// reached with addresses still queued.
	TerminationPageBudget

	// TerminationCancelled means the crawl context was cancelled. Pages
	// and links stored before cancellation remain recorded.
	TerminationCancelled
)

// String returns a human-readable termination reason.
func (r TerminationReason) String() string {
	switch r {
	case TerminationPageBudget:
		return "page budget reached"
	case TerminationCancelled:
		return "cancelled"
	default:
		return "queue exhausted"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r TerminationReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *TerminationReason) UnmarshalText(text []byte) error {
	*r = ParseTerminationReason(string(text))
	return nil
}

// ParseTerminationReason converts a stored reason string back to its
// TerminationReason. Unknown strings map to TerminationQueueExhausted.
func ParseTerminationReason(s string) TerminationReason {
	switch s {
	case "page budget reached":
		return TerminationPageBudget
	case "cancelled":
		return TerminationCancelled
	default:
		return TerminationQueueExhausted
	}
}

// CrawlMeta describes one crawl session.
type CrawlMeta struct {
	// SeedURL is the normalized starting address.
	SeedURL string `json:"seed_url"`

	// StartedAt and CompletedAt bound the crawl window. CompletedAt is
	// zero while the crawl is running.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	// TotalPages is the number of Page records the crawl produced.
	TotalPages int `json:"total_pages"`

	// TotalIssues is filled in after the audit checks run.
	TotalIssues int `json:"total_issues"`

	// Termination records why the crawl stopped.
	Termination TerminationReason `json:"termination"`
}
