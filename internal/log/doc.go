// Package log provides slog helpers that keep credentials out of log
// output. Audits may carry Search Console tokens, staging-site cookies,
// and Authorization headers; the redacting handler masks them before
// any record is written.
package log
