package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/taym/wikiharvest/internal/fetch"
	"github.com/taym/wikiharvest/internal/model"
)

// newTestClient returns a fetch client tuned for fast tests.
func newTestClient() *fetch.Client {
	return fetch.NewClient(
		fetch.WithDelay(0),
		fetch.WithRetries(2),
		fetch.WithBackoff(time.Millisecond),
	)
}

// collectLinks returns an EmitFunc appending into the given slice.
func collectLinks(links *[]model.ReferenceLink) EmitFunc {
	return func(link model.ReferenceLink) error {
		*links = append(*links, link)
		return nil
	}
}

// TestPaginatorDiscover tests the full discovery pass against a fake wiki.
func TestPaginatorDiscover(t *testing.T) {
	t.Parallel()

	t.Run("streams seed then archives in order", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/wiki/Wikipedia:Noticeboard", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body>
				<a href="/wiki/Talk:X#SectionA">a</a>
				<a href="/wiki/Talk:X#SectionB">b</a>
				<a href="/wiki/Talk:Y">c</a>
				<a href="/wiki/Wikipedia:Noticeboard/Archive_1">Archive 1</a>
				<a href="/wiki/Wikipedia:Noticeboard/Archive_2">Archive 2</a>
			</body></html>`)
		})
		mux.HandleFunc("/wiki/Wikipedia:Noticeboard/Archive_1", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body><a href="/wiki/Talk:Z">z</a></body></html>`)
		})
		mux.HandleFunc("/wiki/Wikipedia:Noticeboard/Archive_2", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body><a href="/wiki/Talk:X">x again</a></body></html>`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		base, err := url.Parse(srv.URL)
		if err != nil {
			t.Fatalf("failed to parse server URL: %v", err)
		}

		var links []model.ReferenceLink
		paginator := NewPaginator(newTestClient(), base, "Talk:", "Noticeboard")
		stats, err := paginator.Discover(context.Background(), "Wikipedia:Noticeboard", collectLinks(&links))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantSources := []string{
			model.SeedSource, model.SeedSource, model.SeedSource,
			"Wikipedia:Noticeboard/Archive_1",
			"Wikipedia:Noticeboard/Archive_2",
		}
		wantTargets := []string{"Talk:X", "Talk:X", "Talk:Y", "Talk:Z", "Talk:X"}

		if len(links) != len(wantSources) {
			t.Fatalf("expected %d links, got %d: %v", len(wantSources), len(links), links)
		}
		for i, link := range links {
			if link.Source != wantSources[i] {
				t.Errorf("link %d: expected source %q, got %q", i, wantSources[i], link.Source)
			}
			if link.Target != wantTargets[i] {
				t.Errorf("link %d: expected target %q, got %q", i, wantTargets[i], link.Target)
			}
			if link.Order != i {
				t.Errorf("link %d: expected order %d, got %d", i, i, link.Order)
			}
		}

		if links[0].Anchor != "SectionA" || links[1].Anchor != "SectionB" {
			t.Errorf("anchors not preserved: %+v", links[:2])
		}

		if stats.Links != 5 || stats.Archives != 2 || stats.ArchivesSkipped != 0 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})

	t.Run("failing archive is skipped, run continues", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/wiki/Wikipedia:Noticeboard", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body>
				<a href="/wiki/Wikipedia:Noticeboard/Archive_1">Archive 1</a>
				<a href="/wiki/Wikipedia:Noticeboard/Archive_2">Archive 2</a>
			</body></html>`)
		})
		mux.HandleFunc("/wiki/Wikipedia:Noticeboard/Archive_1", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		mux.HandleFunc("/wiki/Wikipedia:Noticeboard/Archive_2", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body><a href="/wiki/Talk:Survivor">s</a></body></html>`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		base, err := url.Parse(srv.URL)
		if err != nil {
			t.Fatalf("failed to parse server URL: %v", err)
		}

		var links []model.ReferenceLink
		paginator := NewPaginator(newTestClient(), base, "Talk:", "Noticeboard")
		stats, err := paginator.Discover(context.Background(), "Wikipedia:Noticeboard", collectLinks(&links))
		if err != nil {
			t.Fatalf("archive failure must not abort the run, got %v", err)
		}

		if len(links) != 1 || links[0].Target != "Talk:Survivor" {
			t.Errorf("expected the surviving archive's link, got %v", links)
		}
		if stats.Archives != 1 || stats.ArchivesSkipped != 1 {
			t.Errorf("unexpected stats: %+v", stats)
		}
	})

	t.Run("seed fetch failure is fatal", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		base, err := url.Parse(srv.URL)
		if err != nil {
			t.Fatalf("failed to parse server URL: %v", err)
		}

		paginator := NewPaginator(newTestClient(), base, "Talk:", "Noticeboard")
		_, err = paginator.Discover(context.Background(), "Wikipedia:Noticeboard", func(model.ReferenceLink) error {
			t.Error("no links should be emitted on seed failure")
			return nil
		})

		var exhausted *fetch.ExhaustedError
		if !errors.As(err, &exhausted) {
			t.Errorf("expected ExhaustedError for seed failure, got %v", err)
		}
	})

	t.Run("emit error aborts discovery", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body><a href="/wiki/Talk:A">a</a><a href="/wiki/Talk:B">b</a></body></html>`)
		}))
		defer srv.Close()

		base, err := url.Parse(srv.URL)
		if err != nil {
			t.Fatalf("failed to parse server URL: %v", err)
		}

		sinkErr := errors.New("sink closed")
		paginator := NewPaginator(newTestClient(), base, "Talk:", "Noticeboard")
		_, err = paginator.Discover(context.Background(), "Wikipedia:Noticeboard", func(model.ReferenceLink) error {
			return sinkErr
		})
		if !errors.Is(err, sinkErr) {
			t.Errorf("expected sink error to propagate, got %v", err)
		}
	})
}
