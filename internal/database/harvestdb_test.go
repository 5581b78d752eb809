package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taym/wikiharvest/internal/model"
)

// TestOpen tests database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database and directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested")
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dir, "wikiharvest.db")); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	})

	t.Run("refuses to create without CreateIfNotExists", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})
}

// TestSaveRecord tests record and page storage.
func TestSaveRecord(t *testing.T) {
	t.Parallel()

	newDB := func(t *testing.T) *HarvestDB {
		t.Helper()
		db, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		return db
	}

	fetchedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		ctx := context.Background()

		rec := model.OutputRecord{
			Source:            model.SeedSource,
			Title:             "Talk:X",
			Anchor:            "SectionA",
			Wikitext:          "== Thread ==\ntext",
			RevisionTimestamp: "2024-05-01T10:00:00Z",
			FetchedAt:         fetchedAt,
		}
		if err := db.SaveRecord(ctx, rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		page, err := db.GetPage(ctx, "Talk:X")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page == nil {
			t.Fatal("expected stored page")
		}
		if page.Wikitext != rec.Wikitext {
			t.Errorf("unexpected wikitext: %q", page.Wikitext)
		}
		if page.RevisionTimestamp != rec.RevisionTimestamp {
			t.Errorf("unexpected revision timestamp: %q", page.RevisionTimestamp)
		}

		count, err := db.CountRecords(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 record, got %d", count)
		}
	})

	t.Run("same title with different anchors keeps one page", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		ctx := context.Background()

		for _, anchor := range []string{"SectionA", "SectionB"} {
			rec := model.OutputRecord{
				Source:    model.SeedSource,
				Title:     "Talk:X",
				Anchor:    anchor,
				Wikitext:  "text",
				FetchedAt: fetchedAt,
			}
			if err := db.SaveRecord(ctx, rec); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		count, err := db.CountRecords(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 records, got %d", count)
		}

		titles, err := db.ListTitles(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(titles) != 1 || titles[0] != "Talk:X" {
			t.Errorf("expected single page Talk:X, got %v", titles)
		}
	})

	t.Run("re-harvest upserts instead of duplicating", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		ctx := context.Background()

		rec := model.OutputRecord{
			Source:    model.SeedSource,
			Title:     "Talk:X",
			Wikitext:  "old",
			FetchedAt: fetchedAt,
		}
		if err := db.SaveRecord(ctx, rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rec.Wikitext = "new"
		if err := db.SaveRecord(ctx, rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		count, err := db.CountRecords(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 record after upsert, got %d", count)
		}

		page, err := db.GetPage(ctx, "Talk:X")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Wikitext != "new" {
			t.Errorf("expected updated wikitext, got %q", page.Wikitext)
		}
	})

	t.Run("unknown page returns nil", func(t *testing.T) {
		t.Parallel()

		db := newDB(t)
		page, err := db.GetPage(context.Background(), "Talk:Nobody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page != nil {
			t.Errorf("expected nil page, got %+v", page)
		}
	})
}
