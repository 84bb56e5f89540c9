package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"refsync/internal/domain"
	"refsync/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// LinkStore implements ports.LinkStore using SQLite
type LinkStore struct {
	mu     sync.Mutex // serializes writes
	db     *sql.DB
	dbPath string
}

// Ensure LinkStore implements ports.LinkStore
var _ ports.LinkStore = (*LinkStore)(nil)

// NewLinkStore creates a new SQLite link store
func NewLinkStore() *LinkStore {
	return &LinkStore{}
}

// Open opens or creates the database at path. An empty path uses the
// XDG data directory.
func (s *LinkStore) Open(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	// Expand ~ in path
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	s.dbPath = path

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create link store directory: %w", err)
	}

	// WAL lets readers proceed while a sync writes links
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// No unique constraint on the natural key: uniqueness is the caller's
	// job (TargetKey before SaveLink)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS links (
			source_lib_uri TEXT NOT NULL,
			source_key TEXT NOT NULL,
			target_lib_uri TEXT NOT NULL,
			target_key TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_links_natural ON links(source_lib_uri, source_key, target_lib_uri);
		CREATE INDEX IF NOT EXISTS idx_links_target ON links(target_lib_uri, target_key);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *LinkStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file in use
func (s *LinkStore) Path() string {
	return s.dbPath
}

// DefaultPath returns the link database location under XDG_DATA_HOME
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "refsync", "links.db")
}

// TargetKey returns the most recently saved target key for the triple
func (s *LinkStore) TargetKey(ctx context.Context, sourceLibURI, sourceKey, targetLibURI string) (string, bool, error) {
	var key string
	err := s.db.QueryRowContext(ctx, `
		SELECT target_key FROM links
		WHERE source_lib_uri = ? AND source_key = ? AND target_lib_uri = ?
		ORDER BY rowid DESC LIMIT 1
	`, sourceLibURI, sourceKey, targetLibURI).Scan(&key)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return key, true, nil
}

// SaveLink inserts a link
func (s *LinkStore) SaveLink(ctx context.Context, link domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, insertLink, linkArgs(link)...)
	return err
}

// SaveLinks inserts links in a single transaction
func (s *LinkStore) SaveLinks(ctx context.Context, links []domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	for _, link := range links {
		if err := tx.insert(ctx, link); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// RemoveLink deletes the links of the triple. A set TargetKey narrows the
// delete to that target. Nothing to delete is not an error.
func (s *LinkStore) RemoveLink(ctx context.Context, link domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `DELETE FROM links WHERE source_lib_uri = ? AND source_key = ? AND target_lib_uri = ?`
	args := []any{link.SourceLibURI, link.SourceKey, link.TargetLibURI}
	if link.TargetKey != "" {
		query += ` AND target_key = ?`
		args = append(args, link.TargetKey)
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// Links lists links matching filter, oldest first
func (s *LinkStore) Links(ctx context.Context, filter domain.LinkFilter) ([]domain.Link, error) {
	var (
		where []string
		args  []any
	)
	if filter.SourceLibURI != "" {
		where = append(where, "source_lib_uri = ?")
		args = append(args, filter.SourceLibURI)
	}
	if filter.TargetLibURI != "" {
		where = append(where, "target_lib_uri = ?")
		args = append(args, filter.TargetLibURI)
	}
	if filter.SourceKey != "" {
		where = append(where, "source_key = ?")
		args = append(args, filter.SourceKey)
	}

	query := `SELECT source_lib_uri, source_key, target_lib_uri, target_key, created_at FROM links`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var (
			l       domain.Link
			created int64
		)
		if err := rows.Scan(&l.SourceLibURI, &l.SourceKey, &l.TargetLibURI, &l.TargetKey, &created); err != nil {
			return nil, err
		}
		l.CreatedAt = time.UnixMilli(created).UTC()
		links = append(links, l)
	}

	return links, rows.Err()
}

const insertLink = `
	INSERT INTO links (source_lib_uri, source_key, target_lib_uri, target_key, created_at)
	VALUES (?, ?, ?, ?, ?)
`

func linkArgs(link domain.Link) []any {
	created := link.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return []any{link.SourceLibURI, link.SourceKey, link.TargetLibURI, link.TargetKey, created.UnixMilli()}
}
