// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger remembers which paper links have already been reported so
// repeated alert runs can surface only new papers. It is optional: the
// parsers never depend on it.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-mail/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "ledger.db"

	defaultMaxResults = 50
)

// Store manages the ledger SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	now        func() time.Time
}

// NewStore opens or creates the ledger at dir/index/ledger.db.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbDir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		dir:        cfg.Dir,
		maxResults: maxResults,
		now:        func() time.Time { return time.Now().UTC() },
	}

	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS papers (
		url TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		source TEXT,
		first_seen TEXT NOT NULL,
		last_seen TEXT NOT NULL,
		times_seen INTEGER NOT NULL DEFAULT 1
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSummary reports the outcome of Record.
type RecordSummary struct {
	// New lists the papers whose URL was not in the ledger before.
	New []types.PaperRecord

	// Seen counts papers that were already known.
	Seen int
}

// Record upserts papers under source. A known URL takes the new title and
// has its last_seen and times_seen updated.
func (s *Store) Record(ctx context.Context, source string, papers []types.PaperRecord) (RecordSummary, error) {
	var summary RecordSummary
	if len(papers) == 0 {
		return summary, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stamp := s.now().Format(time.RFC3339Nano)
	for _, p := range papers {
		var known int
		err := tx.QueryRowContext(ctx, `SELECT count(*) FROM papers WHERE url = ?`, p.URL).Scan(&known)
		if err != nil {
			return RecordSummary{}, fmt.Errorf("looking up %s: %w", p.URL, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO papers (url, title, source, first_seen, last_seen, times_seen)
			 VALUES (?, ?, ?, ?, ?, 1)
			 ON CONFLICT(url) DO UPDATE SET
				title=excluded.title, source=excluded.source,
				last_seen=excluded.last_seen, times_seen=papers.times_seen + 1`,
			p.URL, p.Title, source, stamp, stamp,
		)
		if err != nil {
			return RecordSummary{}, fmt.Errorf("recording %s: %w", p.URL, err)
		}

		if known == 0 {
			summary.New = append(summary.New, p)
		} else {
			summary.Seen++
		}
	}

	if err := tx.Commit(); err != nil {
		return RecordSummary{}, fmt.Errorf("committing: %w", err)
	}
	return summary, nil
}

// ListOptions filters List results.
type ListOptions struct {
	// Query matches a case-insensitive substring of the title.
	Query string

	// Domain matches a substring of the URL.
	Domain string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// List returns ledger entries, most recently seen first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.LedgerEntry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT url, title, source, first_seen, last_seen, times_seen FROM papers WHERE 1=1`)
	if opts.Query != "" {
		qb.WriteString(` AND lower(title) LIKE ?`)
		args = append(args, "%"+strings.ToLower(opts.Query)+"%")
	}
	if opts.Domain != "" {
		qb.WriteString(` AND instr(url, ?) > 0`)
		args = append(args, opts.Domain)
	}
	qb.WriteString(` ORDER BY last_seen DESC, url LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []types.LedgerEntry
	for rows.Next() {
		var (
			e                   types.LedgerEntry
			source              sql.NullString
			firstSeen, lastSeen string
		)
		if err := rows.Scan(&e.URL, &e.Title, &source, &firstSeen, &lastSeen, &e.TimesSeen); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Source = source.String
		var err error
		if e.FirstSeen, err = time.Parse(time.RFC3339Nano, firstSeen); err != nil {
			return nil, fmt.Errorf("parsing first_seen of %s: %w", e.URL, err)
		}
		if e.LastSeen, err = time.Parse(time.RFC3339Nano, lastSeen); err != nil {
			return nil, fmt.Errorf("parsing last_seen of %s: %w", e.URL, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
