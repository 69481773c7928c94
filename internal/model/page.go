package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Page represents one crawled address and everything extracted from it.
// A Page exists for every dispatched fetch, including failures: a fetch
// that never produced an HTTP response still records a Page with
// StatusCode zero and FetchError set, so the audit can tell "attempted
// and failed" apart from "never attempted".
//
// Design decision: fetch failure is data carried inside the record, not
// an error propagated to the scheduler. The crawl must continue past
// individual failures, and the broken-link check needs the failed
// attempt on record.
type Page struct {
	// URL is the normalized address the page is keyed by. Exactly one
	// Page exists per normalized URL per crawl; a re-crawl overwrites.
	URL string `json:"url"`

	// StatusCode is the HTTP status of the response. Redirects are not
	// followed; a 3xx is recorded as-is with RedirectTo set. Zero means
	// no response was received; check FetchError for the cause.
	StatusCode int `json:"status_code,omitempty"`

	// FetchError describes a network-level failure (timeout, DNS,
	// connection refused). Empty on any response, even a 500.
	FetchError string `json:"fetch_error,omitempty"`

	// Title is the text of the first <title> element. Empty for non-HTML
	// and failed responses.
	Title string `json:"title,omitempty"`

	// MetaDescription is the content attribute of <meta name="description">.
	MetaDescription string `json:"meta_description,omitempty"`

	// Canonical is the href of <link rel="canonical">.
	Canonical string `json:"canonical,omitempty"`

	// RobotsMeta is the content attribute of <meta name="robots">.
	RobotsMeta string `json:"robots_meta,omitempty"`

	// H1Count is the number of <h1> elements anywhere in the document.
	H1Count int `json:"h1_count"`

	// H1Text is the pipe-joined text of all <h1> elements in document
	// order. No deduplication.
	H1Text string `json:"h1_text,omitempty"`

	// RedirectTo is the normalized final address when the server
	// redirected this URL. Empty when the response came straight back.
	// The Page stays keyed by the originally requested address.
	RedirectTo string `json:"redirect_to,omitempty"`

	// Depth is the BFS depth at which the address was first enqueued.
	// It is never revised, even if the address is rediscovered shallower.
	Depth int `json:"depth"`

	// CrawledAt is when the fetch completed.
	CrawledAt time.Time `json:"crawled_at"`

	// ContentHash is the SHA-256 hex digest of the raw response body,
	// used for duplicate-content comparison. Empty when no body was read.
	ContentHash string `json:"content_hash,omitempty"`
}

// Fetched reports whether an HTTP response was received for this page.
func (p *Page) Fetched() bool {
	return p.StatusCode != 0
}

// IsSuccess reports whether the page returned a 2xx status.
func (p *Page) IsSuccess() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// ComputeContentHash calculates and sets ContentHash from raw body bytes.
func (p *Page) ComputeContentHash(raw []byte) {
	if len(raw) == 0 {
		p.ContentHash = ""
		return
	}
	sum := sha256.Sum256(raw)
	p.ContentHash = hex.EncodeToString(sum[:])
}
