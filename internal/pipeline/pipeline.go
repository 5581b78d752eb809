package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taym/wikiharvest/internal/model"
	"github.com/taym/wikiharvest/internal/resolve"
	"github.com/taym/wikiharvest/internal/wiki"
)

// RecordSink receives output records in emission order.
//
// Design decision: We define the sink interface here, on the consumer
// side, rather than importing the report package because:
// 1. It keeps the pipeline independent of output formats
// 2. Any writer with a WriteRecord method (JSONL, database) plugs in
// 3. Tests can capture records with a trivial in-memory sink
type RecordSink interface {
	// WriteRecord writes one output record. An error aborts the run.
	WriteRecord(rec model.OutputRecord) error
}

// MultiSink fans each record out to every given sink, stopping at the
// first failure.
func MultiSink(sinks ...RecordSink) RecordSink {
	return multiSink(sinks)
}

type multiSink []RecordSink

func (m multiSink) WriteRecord(rec model.OutputRecord) error {
	for _, sink := range m {
		if err := sink.WriteRecord(rec); err != nil {
			return err
		}
	}
	return nil
}

// Stats summarizes one harvest run.
type Stats struct {
	// Links is the total number of links discovered.
	Links int

	// Records is the number of output records written.
	Records int

	// Resolutions is the number of distinct pages resolved over the
	// network, absent outcomes included.
	Resolutions int

	// CacheHits is the number of lookups answered from the cache.
	CacheHits int

	// Absent is the number of distinct pages the wiki reported missing.
	Absent int

	// FailedResolutions is the number of links dropped because their
	// page's resolution exhausted its retries.
	FailedResolutions int

	// Archives and ArchivesSkipped count archive pages crawled and
	// skipped.
	Archives        int
	ArchivesSkipped int

	// LinksBySource maps each source context to its link count.
	LinksBySource map[string]int
}

// Coordinator runs the two harvest stages back to back, resolving each
// link as it is discovered.
type Coordinator struct {
	// paginator streams discovered links.
	paginator *wiki.Paginator

	// resolver maps titles to page bodies, cached per run.
	resolver *resolve.Resolver

	// sink receives the output records.
	sink RecordSink

	// logger for structured logging.
	logger *slog.Logger

	// now returns the current time; replaceable in tests.
	now func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithClock replaces the time source. Only used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a Coordinator over the given stages and sink.
func NewCoordinator(paginator *wiki.Paginator, resolver *resolve.Resolver, sink RecordSink, opts ...Option) *Coordinator {
	c := &Coordinator{
		paginator: paginator,
		resolver:  resolver,
		sink:      sink,
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run harvests everything reachable from the seed page.
//
// Each discovered link is resolved immediately. A link whose page is
// absent is dropped with a warning; a link whose resolution fails after
// retries is dropped too, and the run continues with the next link. Only
// a seed fetch failure or a sink write failure aborts the run.
func (c *Coordinator) Run(ctx context.Context, seed string) (*Stats, error) {
	stats := &Stats{LinksBySource: make(map[string]int)}

	c.logger.Info("harvest started", "seed", seed)

	discoverStats, err := c.paginator.Discover(ctx, seed, func(link model.ReferenceLink) error {
		stats.LinksBySource[link.Source]++
		return c.processLink(ctx, link, stats)
	})

	stats.Links = discoverStats.Links
	stats.Archives = discoverStats.Archives
	stats.ArchivesSkipped = discoverStats.ArchivesSkipped

	resolveStats := c.resolver.Stats()
	stats.Resolutions = resolveStats.Resolutions
	stats.CacheHits = resolveStats.CacheHits
	stats.Absent = resolveStats.Absent

	if err != nil {
		return stats, fmt.Errorf("harvest failed: %w", err)
	}

	c.logger.Info("harvest finished",
		"links", stats.Links,
		"records", stats.Records,
		"resolutions", stats.Resolutions,
		"cache_hits", stats.CacheHits,
	)

	return stats, nil
}

// processLink resolves one link and writes its record. Resolution
// failures are absorbed here so the stream continues; sink failures
// propagate and abort the run.
func (c *Coordinator) processLink(ctx context.Context, link model.ReferenceLink, stats *Stats) error {
	page, err := c.resolver.Resolve(ctx, link.Target)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("dropping link after failed resolution",
			"target", link.Target,
			"error", err,
		)
		stats.FailedResolutions++
		return nil
	}

	if page.Absent() {
		c.logger.Warn("dropping link to absent page",
			"target", link.Target,
			"anchor", link.Anchor,
		)
		return nil
	}

	rec := model.NewOutputRecord(link, page, c.now())
	if err := c.sink.WriteRecord(rec); err != nil {
		return fmt.Errorf("failed to write record for %q: %w", link.Target, err)
	}
	stats.Records++

	return nil
}
