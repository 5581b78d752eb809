package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taym/wikiharvest/internal/config"
	"github.com/taym/wikiharvest/internal/database"
	"github.com/taym/wikiharvest/internal/fetch"
	"github.com/taym/wikiharvest/internal/log"
	"github.com/taym/wikiharvest/internal/model"
	"github.com/taym/wikiharvest/internal/pipeline"
	"github.com/taym/wikiharvest/internal/report"
	"github.com/taym/wikiharvest/internal/resolve"
	"github.com/taym/wikiharvest/internal/wiki"
)

// NewHarvestCmd creates the harvest command.
func NewHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest [seed-page]",
		Short: "Discover and resolve noticeboard references in one run",
		Long: `Harvest runs both stages back to back: it crawls the seed noticeboard
page and its archives for talk page links, resolves every linked page's
wikitext through the MediaWiki API, and writes one JSONL record per link.

Records stream to stdout as they are produced; use --output to write them
to a file instead.

Examples:
  # Harvest the default noticeboard
  wikiharvest harvest

  # Harvest a different noticeboard into a file
  wikiharvest harvest "Wikipedia:Reliable_sources/Noticeboard" -o records.jsonl

  # Keep a run summary and archive records in the local database
  wikiharvest harvest -o records.jsonl --summary run.md --save-db

  # Harvest a non-default wiki defined in .wikiharvest
  wikiharvest harvest --wiki dewiki

Configuration file (.wikiharvest) example:
  defaults:
    delay: 2s
  wikis:
    dewiki:
      baseURL: https://de.wikipedia.org
      apiURL: https://de.wikipedia.org/w/api.php
      prefix: "Diskussion:"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHarvestCmd,
	}

	addCommonFlags(cmd)
	cmd.Flags().StringP("summary", "s", "",
		"Write a markdown run summary to the specified file")
	cmd.Flags().Bool("save-db", false,
		"Also archive records into the local SQLite database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runHarvestCmd executes the harvest command.
func runHarvestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.SummaryFile, err = cmd.Flags().GetString("summary")
	if err != nil {
		return err
	}
	cfg.SaveToDB, err = cmd.Flags().GetBool("save-db")
	if err != nil {
		return err
	}
	if cfg.SaveToDB {
		cfg.DBDir, err = cmd.Flags().GetString("db-dir")
		if err != nil {
			return err
		}
		if cfg.DBDir == "" {
			cfg.DBDir = config.XDGDataDir()
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runHarvest(ctx, cfg, logger)
}

// runHarvest executes the harvest run.
func runHarvest(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
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
	var sink pipeline.RecordSink = writer

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)

		sink = pipeline.MultiSink(writer, &dbSink{ctx: ctx, db: db})
	}

	client := newFetchClient(cfg)
	paginator := wiki.NewPaginator(client, base, cfg.Prefix, cfg.ArchiveMarker,
		wiki.WithPaginatorLogger(logger))
	resolver := resolve.NewResolver(client, cfg.APIURL,
		resolve.WithResolverLogger(logger))
	coordinator := pipeline.NewCoordinator(paginator, resolver, sink,
		pipeline.WithLogger(logger))

	started := time.Now()
	stats, runErr := coordinator.Run(ctx, cfg.Seed)
	finished := time.Now()

	if cfg.SummaryFile != "" {
		if err := writeSummary(cfg, stats, started, finished); err != nil {
			logger.Error("failed to write summary", "path", cfg.SummaryFile, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(os.Stderr, "Harvested %d records from %d links in %s\n",
		stats.Records, stats.Links, finished.Sub(started).Round(time.Millisecond))

	return nil
}

// writeSummary renders the markdown run summary.
func writeSummary(cfg *config.Config, stats *pipeline.Stats, started, finished time.Time) error {
	f, err := os.Create(cfg.SummaryFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return report.NewMarkdownSummary(f).Write(&report.Summary{
		Seed:              cfg.Seed,
		Started:           started,
		Finished:          finished,
		Links:             stats.Links,
		Records:           stats.Records,
		Resolutions:       stats.Resolutions,
		CacheHits:         stats.CacheHits,
		AbsentPages:       stats.Absent,
		FailedResolutions: stats.FailedResolutions,
		Archives:          stats.Archives,
		ArchivesSkipped:   stats.ArchivesSkipped,
		LinksBySource:     stats.LinksBySource,
	})
}

// dbSink adapts the harvest database to the pipeline's record sink.
type dbSink struct {
	ctx context.Context
	db  *database.HarvestDB
}

// WriteRecord archives one record.
func (s *dbSink) WriteRecord(rec model.OutputRecord) error {
	return s.db.SaveRecord(s.ctx, rec)
}

// addCommonFlags registers the flags shared by harvest, discover, and
// resolve.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Wiki base URL; seed and archive pages are fetched from <base>/wiki/<title>")
	cmd.Flags().String("api-url", config.DefaultAPIURL,
		"MediaWiki action API endpoint")
	cmd.Flags().String("prefix", config.DefaultPrefix,
		"Title prefix a link target must carry to count as a reference")
	cmd.Flags().String("archive-marker", config.DefaultArchiveMarker,
		"Substring an href must contain, together with \"Archive\", to count as an archive page")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-attempt HTTP timeout")
	cmd.Flags().IntP("retries", "r", config.DefaultRetries,
		"Maximum attempts per fetch")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Politeness delay between outbound requests")
	cmd.Flags().Duration("backoff", config.DefaultBackoff,
		"Base for linear retry backoff")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent sent with every request")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path instead of stdout")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikiharvest in current or home directory)")
	cmd.Flags().StringP("wiki", "w", "",
		"Named wiki section of the configuration file to apply")
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. File overrides sit between the defaults and any
// explicitly set flags, so a flag given on the command line always wins.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	wikiName, err := cmd.Flags().GetString("wiki")
	if err != nil {
		return nil, err
	}

	// Load overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyWiki(file.GetWikiConfig(wikiName))
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else if wikiName != "" {
		return nil, fmt.Errorf("wiki %q requested but no configuration file found", wikiName)
	}

	// Explicit flags override the config file.
	if err := applyStringFlag(cmd, "base-url", &cfg.BaseURL); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "api-url", &cfg.APIURL); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "prefix", &cfg.Prefix); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "archive-marker", &cfg.ArchiveMarker); err != nil {
		return nil, err
	}
	if err := applyStringFlag(cmd, "user-agent", &cfg.UserAgent); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("delay") {
		if cfg.Delay, err = cmd.Flags().GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("retries") {
		if cfg.Retries, err = cmd.Flags().GetInt("retries"); err != nil {
			return nil, err
		}
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.Backoff, err = cmd.Flags().GetDuration("backoff")
	if err != nil {
		return nil, err
	}
	cfg.Output, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Seed = args[0]
	}

	return cfg, nil
}

// applyStringFlag copies a string flag into dst only when the user set it.
func applyStringFlag(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = value
	return nil
}

// setupLogger creates a structured logger from the global logging flags.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.JSONLog = getBoolFlag(cmd, "json-log")

	if cfg.JSONLog {
		return log.NewJSONLogger(os.Stderr, cfg.Verbose)
	}
	return log.NewLogger(os.Stderr, cfg.Verbose)
}

// getBoolFlag retrieves a bool flag from the command or its parent.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// openOutput opens the output destination: the given file path, or
// stdout when the path is empty. The returned close function is a no-op
// for stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// newFetchClient builds the HTTP client from the run configuration.
func newFetchClient(cfg *config.Config) *fetch.Client {
	return fetch.NewClient(
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithRetries(cfg.Retries),
		fetch.WithBackoff(cfg.Backoff),
		fetch.WithDelay(cfg.Delay),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)
}
