// Package config defines configuration structures and validation
// for the seoaudit CLI.
package config
