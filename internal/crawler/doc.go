// Package crawler implements the polite breadth-first site crawler.
//
// The package is split into three pieces with one job each:
//
//   - Parser extracts the audit-relevant fields from a single HTML
//     document: title, meta description, canonical, robots meta,
//     headings, and anchors.
//   - Fetcher performs one HTTP GET and converts the exchange into a
//     model.Page. Failures are recorded on the page, not returned as
//     errors, so the crawl continues past dead addresses.
//   - Spider drives the breadth-first frontier: it dedupes addresses by
//     their normalized form, asks the permission gate before every
//     fetch, enforces the depth and page budgets, waits the politeness
//     delay between requests, and streams pages and links into the
//     store.
//
// The crawl stays on the seed's host. Off-host anchors are recorded as
// external links but never enqueued.
package crawler
