package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/sitecrawl/pkg/reporter"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [CRAWL_ID]",
		Short: "Render a crawl stored in the SQLite history",
		Long: `Without an argument, lists the crawls stored in the history database.
With a crawl ID, renders that crawl in the requested format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReport,
	}

	cmd.Flags().String("db", filepath.Join("output", reporter.FormatSQLite.FileName()), "History database written by --format sqlite")
	cmd.Flags().String("format", string(reporter.FormatMarkdown), "Report format (json, csv, yaml, markdown, html)")
	cmd.Flags().String("output", "", "Output file for report")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	formatName, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("history database: %w", err)
	}
	store, err := reporter.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 0 {
		crawls, err := store.Crawls(cmd.Context())
		if err != nil {
			return err
		}
		return listCrawls(cmd.OutOrStdout(), crawls)
	}

	format, err := reporter.ParseFormat(formatName)
	if err != nil {
		return err
	}
	result, err := store.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	data, err := reporter.Generate(format, result)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}

	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", output)
	return nil
}

func listCrawls(w io.Writer, crawls []reporter.CrawlSummary) error {
	if len(crawls) == 0 {
		_, err := fmt.Fprintln(w, "No crawls stored.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CRAWL ID\tSTARTED\tPAGES\tFAILED\tSTART URL")
	for _, c := range crawls {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			c.CrawlID, c.StartedAt.Format("2006-01-02 15:04:05"), c.CrawledPages, c.FailedCount, c.StartURL)
	}
	return tw.Flush()
}
