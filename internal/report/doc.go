// Package report renders a finished audit in the supported output
// formats: JSON for tooling, Markdown for sharing, HTML for reading in
// a browser, and CSV for spreadsheets. Writers only read the assembled
// model.AuditReport; assembling it from the store is the caller's job.
package report
