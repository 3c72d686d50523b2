package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mailspider/mailspider/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl data and reports.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file per installation rather
// than separate files per crawled site. This keeps cross-site email
// queries cheap and simplifies backup/restore operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
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

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "mailspider.db")

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

	// modernc.org/sqlite uses mode=rw to prevent creating new files
	// and mode=rwc to allow creation.
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

	// SQLite only supports one writer, so cap the pool at a single
	// connection to avoid SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Page records store individual page fetches
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		origin_domain TEXT NOT NULL,
		depth INTEGER DEFAULT 0,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		UNIQUE(url, origin_domain)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_origin ON pages(origin_domain);
	CREATE INDEX IF NOT EXISTS idx_pages_fetched ON pages(fetched_at);

	-- Extracted emails, deduplicated per origin and source page
	CREATE TABLE IF NOT EXISTS emails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL,
		origin_domain TEXT NOT NULL,
		source_url TEXT NOT NULL,
		found_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(email, origin_domain, source_url)
	);

	CREATE INDEX IF NOT EXISTS idx_emails_email ON emails(email);
	CREATE INDEX IF NOT EXISTS idx_emails_origin ON emails(origin_domain);

	-- Crawl reports store complete run results as JSON
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seeds TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		email_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON crawl_reports(timestamp);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertPage inserts or updates a fetched page record.
// Uses UPSERT to handle duplicates (same URL + origin domain).
func (cdb *CrawlDB) InsertPage(ctx context.Context, page *model.Page) (int64, error) {
	query := `
	INSERT INTO pages (url, origin_domain, depth, status_code, content_type, title)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, origin_domain) DO UPDATE SET
		depth = excluded.depth,
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		fetched_at = CURRENT_TIMESTAMP
	`

	result, err := cdb.db.ExecContext(ctx, query,
		page.URL,
		page.OriginDomain,
		page.Depth,
		page.StatusCode,
		page.ContentType,
		page.Title,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page: %w", err)
	}

	return result.LastInsertId()
}

// GetPage retrieves a page record by URL and origin domain.
// Returns nil without error when no record exists.
func (cdb *CrawlDB) GetPage(ctx context.Context, url, originDomain string) (*model.Page, error) {
	query := `
	SELECT url, origin_domain, depth, fetched_at, status_code, content_type, title
	FROM pages
	WHERE url = ? AND origin_domain = ?
	`

	var page model.Page
	var fetchedAt string

	err := cdb.db.QueryRowContext(ctx, query, url, originDomain).Scan(
		&page.URL,
		&page.OriginDomain,
		&page.Depth,
		&fetchedAt,
		&page.StatusCode,
		&page.ContentType,
		&page.Title,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	page.FetchedAt = parseTimestamp(fetchedAt)

	return &page, nil
}

// HasRecentPage checks if a URL was fetched within the specified duration.
func (cdb *CrawlDB) HasRecentPage(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM pages
	WHERE url = ? AND fetched_at > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := cdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent page: %w", err)
	}

	return count > 0, nil
}

// InsertEmail inserts an extracted email result.
// Duplicates (same email, origin, and source page) are ignored.
func (cdb *CrawlDB) InsertEmail(ctx context.Context, res *model.EmailResult) error {
	query := `
	INSERT INTO emails (email, origin_domain, source_url)
	VALUES (?, ?, ?)
	ON CONFLICT(email, origin_domain, source_url) DO NOTHING
	`

	_, err := cdb.db.ExecContext(ctx, query,
		res.Email,
		res.OriginDomain,
		res.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert email: %w", err)
	}

	return nil
}

// QueryEmails queries extracted emails with an optional origin domain filter.
func (cdb *CrawlDB) QueryEmails(ctx context.Context, originDomain string) ([]model.EmailResult, error) {
	query := `
	SELECT email, origin_domain, source_url, found_at
	FROM emails
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if originDomain != "" {
		query += " AND origin_domain = ?"
		args = append(args, originDomain)
	}

	query += " ORDER BY found_at DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query emails: %w", err)
	}
	defer rows.Close()

	var results []model.EmailResult
	for rows.Next() {
		var res model.EmailResult
		var foundAt string

		err := rows.Scan(
			&res.Email,
			&res.OriginDomain,
			&res.SourceURL,
			&foundAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}

		res.FoundAt = parseTimestamp(foundAt)
		results = append(results, res)
	}

	return results, rows.Err()
}

// SaveCrawlReport saves a complete crawl report as JSON, along with the
// pages and emails it contains.
func (cdb *CrawlDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) error {
	for i := range report.Pages {
		if _, err := cdb.InsertPage(ctx, report.Pages[i]); err != nil {
			return err
		}
	}
	for i := range report.Emails {
		if err := cdb.InsertEmail(ctx, &report.Emails[i]); err != nil {
			return err
		}
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	seedsJSON, _ := json.Marshal(report.Seeds) //nolint:errcheck,errchkjson // Seeds is a string slice; Marshal won't fail

	query := `
	INSERT INTO crawl_reports (seeds, report_json, email_count)
	VALUES (?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		string(seedsJSON),
		string(reportJSON),
		len(report.Emails),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}

	return nil
}

// GetLatestCrawlReport retrieves the most recent crawl report.
// Returns nil without error when no reports exist.
func (cdb *CrawlDB) GetLatestCrawlReport(ctx context.Context) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	ORDER BY timestamp DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListCrawledDomains returns all origin domains with stored pages.
func (cdb *CrawlDB) ListCrawledDomains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT origin_domain FROM pages
	ORDER BY origin_domain
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
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
