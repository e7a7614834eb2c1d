package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/sitecrawl/internal/config"
	"github.com/amosWeiskopf/sitecrawl/internal/logging"
	"github.com/amosWeiskopf/sitecrawl/internal/models"
	"github.com/amosWeiskopf/sitecrawl/pkg/crawler"
	"github.com/amosWeiskopf/sitecrawl/pkg/reporter"
)

func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [URL]",
		Short: "Crawl a website and save the results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCrawl,
	}

	flags := cmd.Flags()
	flags.String("start-url", "", "URL to start crawling from (may also be given as an argument)")
	flags.Int("max-pages", models.DefaultMaxPages, "Maximum number of pages to visit")
	flags.Float64("delay", models.DefaultDelay.Seconds(), "Seconds to wait between pages")
	flags.Int("retries", models.DefaultRetries, "Retries for transient failures")
	flags.String("user-agent", "", "User-Agent header (defaults to $USER_AGENT or "+models.DefaultUserAgent+")")
	flags.Bool("respect-robots", true, "Honour robots.txt")
	flags.Bool("extract-text", false, "Count words of each page's main text")
	flags.String("output-dir", "output", "Directory results are written to")
	flags.StringSlice("format", []string{"json", "csv"}, "Output formats: json, csv, yaml, markdown, html, sqlite")
	flags.String("log-level", "info", "Log level")
	flags.String("log-format", "text", "Log format (text or json)")
	return cmd
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		if err := cmd.Flags().Set("start-url", args[0]); err != nil {
			return err
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	formats, err := reporter.ParseFormats(cfg.Output.Formats)
	if err != nil {
		return fmt.Errorf("invalid output formats: %w", err)
	}

	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	entry := logger.WithFields(logrus.Fields{"app": appName, "version": version})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := crawler.New(cfg.Request(), crawler.WithLogger(entry))
	if err != nil {
		return err
	}
	result, crawlErr := c.Crawl(ctx)

	var errs *multierror.Error
	if crawlErr != nil {
		entry.WithError(crawlErr).Warn("crawl stopped early, saving partial results")
		errs = multierror.Append(errs, crawlErr)
	}

	// Partial results are still written after an interrupt.
	paths, writeErr := reporter.New(cfg.Output.Dir, formats, reporter.WithLogger(entry)).
		Write(context.WithoutCancel(ctx), result)
	if writeErr != nil {
		errs = multierror.Append(errs, writeErr)
	}

	printSummary(cmd.OutOrStdout(), result, paths)
	return errs.ErrorOrNil()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func printSummary(w io.Writer, result *models.CrawlResult, paths []string) {
	if result == nil {
		return
	}
	fmt.Fprintf(w, "Done. Crawled %d pages.\n", result.CrawledPages)
	fmt.Fprintf(w, "Failed URLs: %d\n", result.FailedCount)
	for _, path := range paths {
		fmt.Fprintf(w, "Saved: %s\n", path)
	}
}
