// Package store is the read path over the corpus SQLite database. It serves
// the person, edge, thread, and attachment queries the derived views are
// computed from. The database is opened read-only — the ingest pipeline is
// the only writer, and it runs against its own connection.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/agentic-research/mailcorpus/internal/attachments"
	"github.com/agentic-research/mailcorpus/internal/network"
	"github.com/agentic-research/mailcorpus/internal/threads"
	_ "modernc.org/sqlite"
)

// Store wraps the corpus database connection.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens the corpus database read-only.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open corpus db %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	return &Store{db: db, logger: logger}, nil
}

// NewStore wraps an existing connection. Used by tests that build a corpus
// in-place and query it through the same handle.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Verify interface compliance at compile time.
var (
	_ network.PersonSource     = (*Store)(nil)
	_ threads.AttachmentSource = (*Store)(nil)
	_ attachments.Catalog      = (*Store)(nil)
)
