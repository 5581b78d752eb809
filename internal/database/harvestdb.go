package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/taym/wikiharvest/internal/model"
)

// HarvestDB provides SQLite-based storage for harvest runs.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file per data directory
// rather than one file per run. Repeated harvests of the same wiki
// upsert into the same tables, so the database always holds the latest
// snapshot of every reference seen so far.
type HarvestDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HarvestDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HarvestDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HarvestDB, error) {
	dbPath := filepath.Join(dbDir, "wikiharvest.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HarvestDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HarvestDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HarvestDB) createTables() error {
	schema := `
	-- Pages store resolved wikitext, one row per distinct title
	CREATE TABLE IF NOT EXISTS pages (
		title TEXT PRIMARY KEY,
		wikitext TEXT NOT NULL,
		revision_timestamp TEXT,
		resolved_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Records store one row per discovered reference
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		title TEXT NOT NULL,
		anchor TEXT NOT NULL DEFAULT '',
		fetched_at DATETIME NOT NULL,
		UNIQUE(title, anchor)
	);

	CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
	CREATE INDEX IF NOT EXISTS idx_records_title ON records(title);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRecord stores one output record, upserting both the page body and
// the reference row. Re-harvesting the same reference replaces the old
// row rather than accumulating duplicates.
func (hdb *HarvestDB) SaveRecord(ctx context.Context, rec model.OutputRecord) error {
	pageQuery := `
	INSERT INTO pages (title, wikitext, revision_timestamp)
	VALUES (?, ?, ?)
	ON CONFLICT(title) DO UPDATE SET
		wikitext = excluded.wikitext,
		revision_timestamp = excluded.revision_timestamp,
		resolved_at = CURRENT_TIMESTAMP
	`
	if _, err := hdb.db.ExecContext(ctx, pageQuery, rec.Title, rec.Wikitext, rec.RevisionTimestamp); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}

	recordQuery := `
	INSERT INTO records (source, title, anchor, fetched_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(title, anchor) DO UPDATE SET
		source = excluded.source,
		fetched_at = excluded.fetched_at
	`
	if _, err := hdb.db.ExecContext(ctx, recordQuery, rec.Source, rec.Title, rec.Anchor, rec.FetchedAt); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

// StoredPage is a resolved page body read back from the database.
type StoredPage struct {
	// Title is the normalized page title.
	Title string

	// Wikitext is the page body at resolution time.
	Wikitext string

	// RevisionTimestamp is the wiki's timestamp for the stored revision.
	RevisionTimestamp string

	// ResolvedAt is when the body was fetched.
	ResolvedAt time.Time
}

// GetPage retrieves a stored page by title. Returns nil without error
// when the title has never been stored.
func (hdb *HarvestDB) GetPage(ctx context.Context, title string) (*StoredPage, error) {
	query := `
	SELECT title, wikitext, revision_timestamp, resolved_at
	FROM pages
	WHERE title = ?
	`

	var page StoredPage
	var resolvedAt string
	err := hdb.db.QueryRowContext(ctx, query, title).Scan(
		&page.Title,
		&page.Wikitext,
		&page.RevisionTimestamp,
		&resolvedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	page.ResolvedAt = parseTimestamp(resolvedAt)
	return &page, nil
}

// CountRecords returns the number of stored reference records.
func (hdb *HarvestDB) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := hdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// ListTitles returns the distinct stored page titles in sorted order.
func (hdb *HarvestDB) ListTitles(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, "SELECT title FROM pages ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, title)
	}

	return titles, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
