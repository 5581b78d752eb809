package wiki

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/taym/wikiharvest/internal/fetch"
	"github.com/taym/wikiharvest/internal/model"
)

// EmitFunc receives each discovered link in stream order. Returning an
// error aborts the discovery; it is how a downstream sink failure stops
// the crawl.
type EmitFunc func(model.ReferenceLink) error

// DiscoverStats summarizes one discovery pass.
type DiscoverStats struct {
	// Links is the total number of links emitted.
	Links int

	// Archives is the number of archive pages crawled successfully.
	Archives int

	// ArchivesSkipped is the number of archive pages skipped after
	// their fetch exhausted its retries.
	ArchivesSkipped int
}

// Paginator discovers reference links from a seed noticeboard page and
// its archive pages.
//
// The traversal is one level deep by construction: archives are
// enumerated once from the seed document and are not themselves
// searched for further archive links.
type Paginator struct {
	// client fetches documents; it enforces the politeness spacing
	// between archive fetches.
	client *fetch.Client

	// base is the wiki base URL.
	base *url.URL

	// prefix selects reference targets (e.g. "Talk:").
	prefix string

	// marker identifies archive links together with "Archive".
	marker string

	// logger for structured logging.
	logger *slog.Logger
}

// PaginatorOption configures a Paginator.
type PaginatorOption func(*Paginator)

// WithPaginatorLogger sets a custom logger.
func WithPaginatorLogger(logger *slog.Logger) PaginatorOption {
	return func(p *Paginator) {
		p.logger = logger
	}
}

// NewPaginator creates a Paginator. The base URL must be the wiki root
// (scheme and host, no path).
func NewPaginator(client *fetch.Client, base *url.URL, prefix, marker string, opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		client: client,
		base:   base,
		prefix: prefix,
		marker: marker,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Discover crawls the seed page and its archives, streaming every
// discovered link to emit in a stable order: seed links first in
// extraction order, then each archive's links in archive discovery
// order. Order numbers are monotonic across the whole stream.
//
// A failed archive fetch is logged and skipped; the remaining archives
// still proceed. Only a failed seed fetch is fatal, because without the
// seed there is neither a link set nor an archive list.
func (p *Paginator) Discover(ctx context.Context, seed string, emit EmitFunc) (*DiscoverStats, error) {
	stats := &DiscoverStats{}
	extractor := NewExtractor(p.base)
	order := 0

	seedBody, err := p.client.Get(ctx, PageURL(p.base, seed))
	if err != nil {
		return stats, fmt.Errorf("failed to fetch seed page %q: %w", seed, err)
	}

	seedTargets, err := extractor.References(bytes.NewReader(seedBody), p.prefix)
	if err != nil {
		return stats, fmt.Errorf("failed to parse seed page %q: %w", seed, err)
	}

	p.logger.Debug("seed page extracted",
		"seed", seed,
		"links", len(seedTargets),
	)

	for _, target := range seedTargets {
		if err := p.emitTarget(emit, model.SeedSource, target, &order, stats); err != nil {
			return stats, err
		}
	}

	archives, err := extractor.Archives(bytes.NewReader(seedBody), p.marker)
	if err != nil {
		return stats, fmt.Errorf("failed to parse seed page %q: %w", seed, err)
	}

	p.logger.Debug("archive pages discovered", "count", len(archives))

	for _, archive := range archives {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		body, err := p.client.Get(ctx, PageURL(p.base, archive))
		if err != nil {
			p.logger.Warn("skipping archive page",
				"archive", archive,
				"error", err,
			)
			stats.ArchivesSkipped++
			continue
		}

		targets, err := extractor.References(bytes.NewReader(body), p.prefix)
		if err != nil {
			p.logger.Warn("skipping unparseable archive page",
				"archive", archive,
				"error", err,
			)
			stats.ArchivesSkipped++
			continue
		}

		p.logger.Debug("archive page extracted",
			"archive", archive,
			"links", len(targets),
		)

		for _, target := range targets {
			if err := p.emitTarget(emit, archive, target, &order, stats); err != nil {
				return stats, err
			}
		}
		stats.Archives++
	}

	return stats, nil
}

// emitTarget wraps a target into a ReferenceLink and hands it to emit.
func (p *Paginator) emitTarget(emit EmitFunc, source string, target Target, order *int, stats *DiscoverStats) error {
	link := model.ReferenceLink{
		Source: source,
		Target: target.Title,
		Anchor: target.Anchor,
		Order:  *order,
	}
	*order++
	stats.Links++
	return emit(link)
}
