// Package urlutil canonicalizes addresses so that two URLs referring to
// the same resource compare equal. Every URL that enters the crawl (the
// seed, frontier entries, link targets, page keys) passes through the
// same normalization, otherwise graph joins silently miss.
package urlutil
