// Package database provides SQLite-based persistence for audit data.
//
// One database file holds everything a site audit produces: the crawled
// pages, the link graph between them, the issues the checks raised, the
// crawl session metadata, and the optional search-performance and
// backlink enrichment data. Keeping it all in one file makes a finished
// audit a single portable artifact that the export commands can render
// without re-crawling.
package database
