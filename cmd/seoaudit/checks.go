package main

import (
	"fmt"

	"github.com/nao1215/seoaudit/internal/audit"
	"github.com/spf13/cobra"
)

// NewChecksCmd creates the checks command.
func NewChecksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the audit checks that run against crawled pages",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, check := range audit.DefaultChecks() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", check.Name(), check.Description())
			}
		},
	}
}
