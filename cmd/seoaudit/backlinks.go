package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nao1215/seoaudit/internal/backlinks"
	"github.com/nao1215/seoaudit/internal/config"
	"github.com/spf13/cobra"
)

// NewBacklinksCmd creates the backlinks command.
func NewBacklinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backlinks <site-url>",
		Short: "Import referring domains from a Common Crawl edge list",
		Long: `Backlinks filters a Common Crawl host-level edge list down to the
referring domains worth showing a client, scores them, and stores them
alongside the site's audit data. The next rendered report includes a
backlinks section.

The edge list is a text file of "domain count" lines, extracted from
the Common Crawl hyperlink graph for the audited host. Run the command
without --edges to print the current graph release and where to get it.

Examples:
  # Show the latest Common Crawl graph release
  seoaudit backlinks example.com

  # Import and filter an edge list
  seoaudit backlinks --edges example-com-edges.txt example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runBacklinksCmd,
	}

	cmd.Flags().StringP("edges", "e", "",
		"Path to a \"domain count\" edge list file")

	return cmd
}

// runBacklinksCmd executes the backlinks command.
func runBacklinksCmd(cmd *cobra.Command, args []string) error {
	edgesPath, err := cmd.Flags().GetString("edges")
	if err != nil {
		return err
	}

	ctx := context.Background()

	if edgesPath == "" {
		client := backlinks.NewClient()
		graphID, err := client.LatestGraphID(ctx)
		if err != nil {
			return fmt.Errorf("failed to look up the current graph release: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Latest Common Crawl graph release: %s\n", graphID)
		fmt.Fprintf(cmd.OutOrStdout(), "Download the host-level edges for your domain from\n")
		fmt.Fprintf(cmd.OutOrStdout(), "https://data.commoncrawl.org/projects/hyperlinkgraph/%s/\n", graphID)
		fmt.Fprintf(cmd.OutOrStdout(), "then re-run with --edges <file>.\n")
		return nil
	}

	f, err := os.Open(edgesPath) //nolint:gosec // User-provided edge list path is intentional
	if err != nil {
		return fmt.Errorf("failed to open edge list: %w", err)
	}
	defer f.Close()

	edges, err := backlinks.ParseEdgeList(f)
	if err != nil {
		return fmt.Errorf("failed to parse edge list %s: %w", edgesPath, err)
	}

	spamCfg, err := backlinks.LoadSpamConfig()
	if err != nil {
		return fmt.Errorf("failed to load spam filter config: %w", err)
	}

	filtered := backlinks.Filter(edges, spamCfg)

	cfg := config.NewConfig()
	_, host, err := normalizeTarget(args[0])
	if err != nil {
		return err
	}

	// Enrichment may arrive before the first crawl, so create the
	// database if needed.
	db, err := openDatabase(cfg, host, true)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveBacklinks(ctx, filtered); err != nil {
		return fmt.Errorf("failed to save backlinks: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Kept %d of %d referring domains for %s\n",
		len(filtered), len(edges), host)
	return nil
}
