package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/spf13/cobra"
)

// NewClearCmd creates the clear command.
func NewClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <site-url>",
		Short: "Delete all stored data for a site",
		Long: `Clear removes every stored record for a site: pages, links, issues,
crawl history, Search Console metrics, and backlinks. The database file
itself is kept so ongoing exports fail with a clear message instead of
a missing-file error.`,
		Args: cobra.ExactArgs(1),
		RunE: runClearCmd,
	}

	cmd.Flags().BoolP("yes", "y", false,
		"Skip the confirmation prompt")

	return cmd
}

// runClearCmd executes the clear command.
func runClearCmd(cmd *cobra.Command, args []string) error {
	skipPrompt, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}

	_, host, err := normalizeTarget(args[0])
	if err != nil {
		return err
	}

	if !skipPrompt {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete all stored data for %s? [y/N]: ", host)
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if answer = strings.ToLower(strings.TrimSpace(answer)); answer != "y" && answer != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	cfg := config.NewConfig()
	db, err := openDatabase(cfg, host, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared all stored data for %s\n", host)
	return nil
}
