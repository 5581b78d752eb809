package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/taym/wikiharvest/internal/fetch"
	"github.com/taym/wikiharvest/internal/model"
)

// Resolver maps page titles to their latest revision's wikitext via the
// MediaWiki action API, caching one resolution per distinct title for
// the lifetime of the run.
//
// The cache is owned exclusively by the Resolver and, because the
// pipeline is strictly sequential, needs no locking.
type Resolver struct {
	// client performs the API requests with retry and politeness
	// pacing. Cache hits never touch it.
	client *fetch.Client

	// apiURL is the api.php endpoint.
	apiURL string

	// cache holds every completed resolution, present or absent.
	cache map[string]*model.ResolvedPage

	// hits counts cache hits, for run statistics.
	hits int

	// logger for structured logging.
	logger *slog.Logger

	// now returns the current time; replaceable in tests.
	now func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets a custom logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithClock replaces the time source. Only used in tests.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a Resolver against the given api.php endpoint.
func NewResolver(client *fetch.Client, apiURL string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client: client,
		apiURL: apiURL,
		cache:  make(map[string]*model.ResolvedPage),
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// queryResponse mirrors the slice of the action API response the
// resolver consumes (formatversion=2). Everything else in the envelope
// is ignored.
type queryResponse struct {
	Query struct {
		Pages []struct {
			Title     string `json:"title"`
			Missing   bool   `json:"missing"`
			Revisions []struct {
				Timestamp string `json:"timestamp"`
				Slots     struct {
					Main struct {
						Content string `json:"content"`
					} `json:"main"`
				} `json:"slots"`
			} `json:"revisions"`
		} `json:"pages"`
	} `json:"query"`
}

// Resolve returns the ResolvedPage for a title, fetching it from the
// API on first sight and from the cache afterwards.
//
// A missing page or a page without revisions resolves to an absent
// (nil-Text) page and a nil error; that outcome is cached. A transport
// failure after retries is returned as an error and leaves no cache
// entry.
func (r *Resolver) Resolve(ctx context.Context, title string) (*model.ResolvedPage, error) {
	if page, ok := r.cache[title]; ok {
		r.hits++
		return page, nil
	}

	r.logger.Debug("resolving page", "title", title)

	body, err := r.client.Get(ctx, r.queryURL(title))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", title, err)
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode API response for %q: %w", title, err)
	}

	page := &model.ResolvedPage{
		Title:      title,
		ResolvedAt: r.now(),
	}

	if len(resp.Query.Pages) > 0 {
		p := resp.Query.Pages[0]
		if !p.Missing && len(p.Revisions) > 0 {
			rev := p.Revisions[0]
			content := rev.Slots.Main.Content
			page.Text = &content
			page.RevisionTimestamp = rev.Timestamp
		}
	}

	if page.Absent() {
		r.logger.Warn("page absent", "title", title)
	}

	r.cache[title] = page
	return page, nil
}

// queryURL builds the revisions query for one title.
func (r *Resolver) queryURL(title string) string {
	params := url.Values{
		"action":        {"query"},
		"format":        {"json"},
		"prop":          {"revisions"},
		"rvprop":        {"content|timestamp"},
		"rvslots":       {"main"},
		"formatversion": {"2"},
		"titles":        {title},
	}
	return r.apiURL + "?" + params.Encode()
}

// Stats returns resolution statistics for the run so far.
func (r *Resolver) Stats() Stats {
	absent := 0
	for _, page := range r.cache {
		if page.Absent() {
			absent++
		}
	}
	return Stats{
		Resolutions: len(r.cache),
		CacheHits:   r.hits,
		Absent:      absent,
	}
}

// Stats summarizes the resolver's work.
type Stats struct {
	// Resolutions is the number of distinct titles resolved, absent
	// outcomes included.
	Resolutions int

	// CacheHits is the number of lookups answered without network
	// access.
	CacheHits int

	// Absent is the number of titles that resolved to nothing.
	Absent int
}
