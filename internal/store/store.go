package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // The database driver
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
// The constraint on episodes.episode_url is the processed-work ledger: even
// if two runs race past the existence check, the second insert fails here.
var ErrDuplicate = errors.New("record already exists")

const episodeSchema = `
CREATE TABLE IF NOT EXISTS episodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	podcast_url TEXT NOT NULL,
	episode_url TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	published_at TEXT,
	audio_path TEXT NOT NULL,
	transcript_path TEXT NOT NULL,
	summary_path TEXT NOT NULL,
	summary_text TEXT NOT NULL,
	processed_at TEXT NOT NULL
);
`

const podcastConfigSchema = `
CREATE TABLE IF NOT EXISTS podcast_configs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	rss_feed_url TEXT NOT NULL UNIQUE,
	recipient_email TEXT
);
`

// Store wraps the sqlite database holding episodes and podcast configs.
type Store struct {
	db *sqlx.DB
}

// Open connects to the sqlite database at path and ensures the schema
// exists. Pass ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// sqlite allows a single writer; a second pooled connection would also
	// see a different database entirely when path is ":memory:".
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.CreateTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection without touching the schema. Used by
// tests that drive the store with sqlmock.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// CreateTables ensures both tables exist.
func (s *Store) CreateTables() error {
	if err := s.CreateEpisodeTable(); err != nil {
		return err
	}
	return s.CreatePodcastConfigTable()
}

func (s *Store) CreateEpisodeTable() error {
	if _, err := s.db.Exec(episodeSchema); err != nil {
		return fmt.Errorf("failed to create episodes table: %w", err)
	}
	return nil
}

func (s *Store) CreatePodcastConfigTable() error {
	if _, err := s.db.Exec(podcastConfigSchema); err != nil {
		return fmt.Errorf("failed to create podcast_configs table: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is sqlite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
