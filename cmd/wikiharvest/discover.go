package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taym/wikiharvest/internal/config"
	"github.com/taym/wikiharvest/internal/model"
	"github.com/taym/wikiharvest/internal/report"
	"github.com/taym/wikiharvest/internal/wiki"
)

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [seed-page]",
		Short: "Crawl the noticeboard and list its talk page references",
		Long: `Discover crawls the seed noticeboard page and its archives and writes
one JSONL line per discovered talk page link, without resolving any page
bodies. The output feeds the resolve command.

Examples:
  # List references of the default noticeboard
  wikiharvest discover -o links.jsonl

  # Then resolve them in a separate run
  wikiharvest resolve links.jsonl -o records.jsonl`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDiscoverCmd,
	}

	addCommonFlags(cmd)
	return cmd
}

// runDiscoverCmd executes the discover command.
func runDiscoverCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runDiscover(ctx, cfg, logger)
}

// runDiscover executes the discovery stage alone.
func runDiscover(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	output, closeOutput, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := report.NewJSONLWriter(output)
	paginator := wiki.NewPaginator(newFetchClient(cfg), base, cfg.Prefix, cfg.ArchiveMarker,
		wiki.WithPaginatorLogger(logger))

	started := time.Now()
	stats, err := paginator.Discover(ctx, cfg.Seed, func(link model.ReferenceLink) error {
		return writer.WriteLink(link)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Discovered %d links (%d archives, %d skipped) in %s\n",
		stats.Links, stats.Archives, stats.ArchivesSkipped,
		time.Since(started).Round(time.Millisecond))

	return nil
}
