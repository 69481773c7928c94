package main

import (
	"context"
	"fmt"

	"github.com/nao1215/seoaudit/internal/config"
	"github.com/nao1215/seoaudit/internal/report"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <site-url>",
		Short: "Re-render reports from a previous audit without re-crawling",
		Long: `Export reads the stored results of a previous audit and renders them
into report files. The site is not contacted.

Examples:
  # Re-render every format
  seoaudit export example.com

  # Just the HTML report, into ./reports
  seoaudit export --format html --output reports example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("format", "f", "all",
		"Report format: all, json, markdown, html, or csv")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory report files are written to")
	cmd.Flags().String("business-name", "",
		"Client or site name shown in report headers")
	cmd.Flags().String("prepared-by", "",
		"Consultant or agency name shown in the report footer")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Target = args[0]

	var err error
	cfg.Format, err = cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	cfg.BusinessName, err = cmd.Flags().GetString("business-name")
	if err != nil {
		return err
	}
	cfg.PreparedBy, err = cmd.Flags().GetString("prepared-by")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	_, host, err := normalizeTarget(cfg.Target)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg, host, false)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	rep, err := assembleReport(ctx, db, cfg, host)
	if err != nil {
		return err
	}
	if err := report.Export(cfg.OutputDir, cfg.Format, rep, getVersion()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	printSummary(rep, cfg.OutputDir)
	return nil
}
