package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taym/wikiharvest/internal/config"
	"github.com/taym/wikiharvest/internal/model"
	"github.com/taym/wikiharvest/internal/report"
	"github.com/taym/wikiharvest/internal/resolve"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [links-file]",
		Short: "Resolve discovered links into wikitext records",
		Long: `Resolve reads the link JSONL produced by the discover command, fetches
each linked page's wikitext through the MediaWiki API, and writes one
record per link whose page still exists.

Reads from stdin when no links file is given.

Examples:
  # Resolve a previously discovered link list
  wikiharvest resolve links.jsonl -o records.jsonl

  # Pipe the two stages together
  wikiharvest discover | wikiharvest resolve`,
		Args: cobra.MaximumNArgs(1),
		RunE: runResolveCmd,
	}

	addCommonFlags(cmd)
	return cmd
}

// runResolveCmd executes the resolve command.
func runResolveCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, nil)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runResolve(ctx, cfg, logger)
}

// runResolve executes the resolution stage alone.
func runResolve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	input, closeInput, err := openInput(cfg.Input)
	if err != nil {
		return err
	}
	defer closeInput()

	output, closeOutput, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := report.NewJSONLWriter(output)
	resolver := resolve.NewResolver(newFetchClient(cfg), cfg.APIURL,
		resolve.WithResolverLogger(logger))

	started := time.Now()
	failed := 0

	err = report.ReadLinks(input, func(link model.ReferenceLink) error {
		page, err := resolver.Resolve(ctx, link.Target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("dropping link after failed resolution",
				"target", link.Target,
				"error", err,
			)
			failed++
			return nil
		}
		if page.Absent() {
			logger.Warn("dropping link to absent page",
				"target", link.Target,
				"anchor", link.Anchor,
			)
			return nil
		}
		return writer.WriteRecord(model.NewOutputRecord(link, page, time.Now().UTC()))
	})
	if err != nil {
		return err
	}

	stats := resolver.Stats()
	fmt.Fprintf(os.Stderr, "Resolved %d pages (%d cache hits, %d absent, %d failed) into %d records in %s\n",
		stats.Resolutions, stats.CacheHits, stats.Absent, failed, writer.Count(),
		time.Since(started).Round(time.Millisecond))

	return nil
}

// openInput opens the link input: the given file path, or stdin when
// the path is empty.
func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open links file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
