// Package main provides the entry point for the seoaudit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for seoaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seoaudit",
		Short: "SEO audit tool for small-business websites",
		Long: `seoaudit crawls a website, checks every page for common SEO defects
(broken links, redirect chains, missing or duplicate titles and meta
descriptions, heading problems), and renders the findings as JSON,
Markdown, HTML, and CSV reports.

Crawl results are stored in a local SQLite database, one file per
audited site, so reports can be re-rendered without re-crawling.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewChecksCmd())
	cmd.AddCommand(NewBacklinksCmd())
	cmd.AddCommand(NewClearCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
