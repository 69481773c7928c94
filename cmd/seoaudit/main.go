// Package main provides the entry point for the seoaudit CLI.
//
// seoaudit crawls a website the way a search engine crawler would,
// stores everything it finds in a local SQLite database, and renders
// client-ready SEO audit reports.
//
// Usage:
//
//	seoaudit run https://example.com
//	seoaudit export example.com --format html
//
// See --help for all available options.
package main

// main is the entry point for seoaudit.
func main() {
	Execute()
}
