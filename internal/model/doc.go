// Package model defines the core data structures shared across the
// crawler, audit checks, database, and report writers.
package model
