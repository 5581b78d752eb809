package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taym/wikiharvest/internal/config"
	"github.com/taym/wikiharvest/internal/log"
	"github.com/taym/wikiharvest/internal/model"
)

// newNoticeboardServer serves a two-page fake wiki with an action API.
func newNoticeboardServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/Wikipedia:Noticeboard", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/wiki/Talk:Alpha#Dispute">case</a>
			<a href="/wiki/Talk:Beta">case</a>
			<a href="/wiki/Wikipedia:Noticeboard/Archive_1">Archive 1</a>
		</body></html>`)
	})
	mux.HandleFunc("/wiki/Wikipedia:Noticeboard/Archive_1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/wiki/Talk:Alpha#Old">old case</a></body></html>`)
	})
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		title := r.URL.Query().Get("titles")
		switch title {
		case "Talk:Alpha":
			fmt.Fprint(w, `{"query":{"pages":[{"title":"Talk:Alpha","revisions":[{"timestamp":"2024-05-01T10:00:00Z","slots":{"main":{"content":"alpha text"}}}]}]}}`)
		default:
			fmt.Fprintf(w, `{"query":{"pages":[{"title":%q,"missing":true}]}}`, title)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newTestConfig returns a run configuration pointed at the fake wiki.
func newTestConfig(srv *httptest.Server) *config.Config {
	cfg := config.NewConfig()
	cfg.BaseURL = srv.URL
	cfg.APIURL = srv.URL + "/w/api.php"
	cfg.Seed = "Wikipedia:Noticeboard"
	cfg.ArchiveMarker = "Noticeboard"
	cfg.Delay = 0
	cfg.Backoff = 0
	cfg.Retries = 1
	return cfg
}

// readRecords decodes a record JSONL file.
func readRecords(t *testing.T, path string) []model.OutputRecord {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	var records []model.OutputRecord
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec model.OutputRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid record line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

// TestHarvestIntegration runs the combined harvest against a fake wiki.
func TestHarvestIntegration(t *testing.T) {
	t.Parallel()

	srv := newNoticeboardServer(t)
	cfg := newTestConfig(srv)
	cfg.Output = filepath.Join(t.TempDir(), "records.jsonl")
	cfg.SummaryFile = filepath.Join(t.TempDir(), "summary.md")

	logger := log.NewLogger(io.Discard, false)
	if err := runHarvest(context.Background(), cfg, logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := readRecords(t, cfg.Output)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	// Seed link first, archive link second; Talk:Beta is absent.
	if records[0].Title != "Talk:Alpha" || records[0].Anchor != "Dispute" || records[0].Source != "seed" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Title != "Talk:Alpha" || records[1].Anchor != "Old" {
		t.Errorf("unexpected second record: %+v", records[1])
	}
	if records[0].Wikitext != "alpha text" {
		t.Errorf("unexpected wikitext: %q", records[0].Wikitext)
	}

	summary, err := os.ReadFile(cfg.SummaryFile)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	if !strings.Contains(string(summary), "# Harvest Summary") {
		t.Errorf("unexpected summary content:\n%s", summary)
	}
}

// TestDiscoverResolveIntegration runs the two stages separately, feeding
// discover's link output into resolve.
func TestDiscoverResolveIntegration(t *testing.T) {
	t.Parallel()

	srv := newNoticeboardServer(t)
	logger := log.NewLogger(io.Discard, false)
	dir := t.TempDir()

	discoverCfg := newTestConfig(srv)
	discoverCfg.Output = filepath.Join(dir, "links.jsonl")
	if err := runDiscover(context.Background(), discoverCfg, logger); err != nil {
		t.Fatalf("discover failed: %v", err)
	}

	links, err := os.ReadFile(discoverCfg.Output)
	if err != nil {
		t.Fatalf("links not written: %v", err)
	}
	if got := len(strings.Split(strings.TrimSpace(string(links)), "\n")); got != 3 {
		t.Fatalf("expected 3 link lines, got %d:\n%s", got, links)
	}

	resolveCfg := newTestConfig(srv)
	resolveCfg.Input = discoverCfg.Output
	resolveCfg.Output = filepath.Join(dir, "records.jsonl")
	if err := runResolve(context.Background(), resolveCfg, logger); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	records := readRecords(t, resolveCfg.Output)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	for _, rec := range records {
		if rec.Title != "Talk:Alpha" {
			t.Errorf("unexpected record title: %q", rec.Title)
		}
		if rec.FetchedAt.IsZero() {
			t.Error("fetchedAt not set")
		}
	}
}

// TestHarvestSeedFailure verifies that an unreachable seed aborts the run.
func TestHarvestSeedFailure(t *testing.T) {
	t.Parallel()

	srv := newNoticeboardServer(t)
	cfg := newTestConfig(srv)
	cfg.Seed = "Wikipedia:No_such_board"
	cfg.Output = filepath.Join(t.TempDir(), "records.jsonl")

	logger := log.NewLogger(io.Discard, false)
	if err := runHarvest(context.Background(), cfg, logger); err == nil {
		t.Error("expected error for unreachable seed")
	}
}
