package reporter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/amosWeiskopf/sitecrawl/internal/models"
)

// Store keeps finished crawls in a SQLite database so runs can be compared
// later.
type Store struct {
	db *sql.DB
}

// CrawlSummary is one row of the crawls table.
type CrawlSummary struct {
	CrawlID       string
	StartURL      string
	RobotsURL     string
	RobotsEnabled bool
	CrawledPages  int
	FailedCount   int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawls (
		id TEXT PRIMARY KEY,
		start_url TEXT NOT NULL,
		robots_url TEXT,
		robots_enabled INTEGER NOT NULL DEFAULT 0,
		crawled_pages INTEGER NOT NULL DEFAULT 0,
		failed_count INTEGER NOT NULL DEFAULT 0,
		started_at TEXT,
		finished_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_start_url ON crawls(start_url);

	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id TEXT NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		status INTEGER,
		title TEXT,
		links_found INTEGER NOT NULL DEFAULT 0,
		blocked_by_robots INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		content_type TEXT,
		word_count INTEGER NOT NULL DEFAULT 0,
		UNIQUE(crawl_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_crawl ON pages(crawl_id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save stores result and all of its pages in one transaction and returns
// the crawl ID used. A result without an ID is given one.
func (s *Store) Save(ctx context.Context, result *models.CrawlResult) (string, error) {
	if result == nil {
		return "", errors.New("nil crawl result")
	}
	crawlID := result.CrawlID
	if crawlID == "" {
		crawlID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO crawls (id, start_url, robots_url, robots_enabled, crawled_pages, failed_count, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		crawlID, result.StartURL, result.RobotsURL, result.RobotsEnabled,
		result.CrawledPages, result.FailedCount,
		formatDBTime(result.StartedAt), formatDBTime(result.FinishedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert crawl: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (crawl_id, position, url, status, title, links_found, blocked_by_robots, error, content_type, word_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range result.Pages {
		var status sql.NullInt64
		if p.Status != nil {
			status = sql.NullInt64{Int64: int64(*p.Status), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, crawlID, i, p.URL, status, p.Title,
			p.LinksFound, p.BlockedByRobots, p.Error, p.ContentType, p.WordCount); err != nil {
			return "", fmt.Errorf("failed to insert page %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit crawl: %w", err)
	}
	return crawlID, nil
}

// ErrCrawlNotFound is returned by Load for an unknown crawl ID.
var ErrCrawlNotFound = errors.New("crawl not found")

const crawlColumns = `id, start_url, robots_url, robots_enabled, crawled_pages, failed_count, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCrawl(row rowScanner) (CrawlSummary, error) {
	var (
		c                 CrawlSummary
		robotsURL         sql.NullString
		started, finished sql.NullString
	)
	if err := row.Scan(&c.CrawlID, &c.StartURL, &robotsURL, &c.RobotsEnabled,
		&c.CrawledPages, &c.FailedCount, &started, &finished); err != nil {
		return CrawlSummary{}, err
	}
	c.RobotsURL = robotsURL.String
	c.StartedAt = parseDBTime(started.String)
	c.FinishedAt = parseDBTime(finished.String)
	return c, nil
}

// Crawls lists stored crawls, newest first.
func (s *Store) Crawls(ctx context.Context) ([]CrawlSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+crawlColumns+`
	FROM crawls ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawls: %w", err)
	}
	defer rows.Close()

	var out []CrawlSummary
	for rows.Next() {
		c, err := scanCrawl(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Load rebuilds a stored crawl result.
func (s *Store) Load(ctx context.Context, crawlID string) (*models.CrawlResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+crawlColumns+` FROM crawls WHERE id = ?`, crawlID)
	c, err := scanCrawl(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCrawlNotFound, crawlID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl %s: %w", crawlID, err)
	}

	pages, err := s.Pages(ctx, crawlID)
	if err != nil {
		return nil, err
	}

	result := &models.CrawlResult{
		CrawlID:       c.CrawlID,
		StartURL:      c.StartURL,
		RobotsURL:     c.RobotsURL,
		RobotsEnabled: c.RobotsEnabled,
		CrawledPages:  c.CrawledPages,
		FailedCount:   c.FailedCount,
		FailedURLs:    []string{},
		Pages:         []models.PageRecord{},
		StartedAt:     c.StartedAt,
		FinishedAt:    c.FinishedAt,
	}
	for _, p := range pages {
		result.Pages = append(result.Pages, p)
		if p.Failed() {
			result.FailedURLs = append(result.FailedURLs, p.URL)
		}
	}
	return result, nil
}

// Pages returns the records of one crawl in visit order.
func (s *Store) Pages(ctx context.Context, crawlID string) ([]models.PageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT url, status, title, links_found, blocked_by_robots, error, content_type, word_count
	FROM pages WHERE crawl_id = ? ORDER BY position`, crawlID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var out []models.PageRecord
	for rows.Next() {
		var (
			p                          models.PageRecord
			status                     sql.NullInt64
			title, errMsg, contentType sql.NullString
		)
		if err := rows.Scan(&p.URL, &status, &title, &p.LinksFound, &p.BlockedByRobots,
			&errMsg, &contentType, &p.WordCount); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		if status.Valid {
			code := int(status.Int64)
			p.Status = &code
		}
		p.Title = title.String
		p.Error = errMsg.String
		p.ContentType = contentType.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func formatDBTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseDBTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
