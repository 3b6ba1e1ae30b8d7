package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"
)

// batchAddress is one entry of a to/cc/bcc list in an extractor batch file.
type batchAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// batchAttachment describes one extracted attachment. The extractor
// deduplicates payloads by content hash, so the same sha256 appears under
// many messages.
type batchAttachment struct {
	SHA256   string `json:"sha256_hash"`
	Filename string `json:"original_filename"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// batchMessage is one message record in an emails_batch_*.json file.
type batchMessage struct {
	MessageID   string            `json:"message_id"`
	Timestamp   int64             `json:"timestamp"`
	FromAddress string            `json:"from_address"`
	FromName    string            `json:"from_name"`
	To          []batchAddress    `json:"to_addresses"`
	Cc          []batchAddress    `json:"cc_addresses"`
	Bcc         []batchAddress    `json:"bcc_addresses"`
	Subject     string            `json:"subject"`
	InReplyTo   string            `json:"in_reply_to"`
	References  []string          `json:"references"`
	Body        string            `json:"body"`
	Attachments []batchAttachment `json:"attachments"`
}

// Stats counts what a load run inserted.
type Stats struct {
	Files       int
	Messages    int
	Duplicates  int
	People      int
	Attachments int
}

// Loader writes batch files into the corpus database. Not safe for
// concurrent use; run one loader per database.
type Loader struct {
	db     *sql.DB
	logger *slog.Logger

	// identity caches avoid a SELECT per address and per attachment hash
	peopleByEmail map[string]int64
	attachByHash  map[string]int64
}

// Open creates (or opens) the corpus database for writing and ensures the
// schema exists.
func Open(path string, logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus db %s: %w", path, err)
	}

	// Bulk-insert tuning. The database is rebuilt from batch files on
	// corruption, so durability during load is not worth the fsync cost.
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close() // ignore error
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close() // ignore error
		return nil, err
	}

	if err := CreateSchema(db); err != nil {
		_ = db.Close() // ignore error
		return nil, err
	}

	return &Loader{
		db:            db,
		logger:        logger,
		peopleByEmail: make(map[string]int64),
		attachByHash:  make(map[string]int64),
	}, nil
}

func (l *Loader) Close() error {
	return l.db.Close()
}

// DB exposes the underlying connection for the enrichment passes and tests.
func (l *Loader) DB() *sql.DB {
	return l.db
}

// LoadDir loads every emails_batch_*.json file under dir, in name order.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*Stats, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "emails_batch_*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob batches in %s: %w", dir, err)
	}
	sort.Strings(paths)

	stats := &Stats{}
	for _, p := range paths {
		if err := l.LoadFile(ctx, p, stats); err != nil {
			return stats, err
		}
		stats.Files++
	}
	stats.People = len(l.peopleByEmail)
	stats.Attachments = len(l.attachByHash)
	return stats, nil
}

// LoadFile loads one batch file inside a single transaction.
func (l *Loader) LoadFile(ctx context.Context, path string, stats *Stats) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read batch %s: %w", path, err)
	}

	var batch []batchMessage
	if err := oj.Unmarshal(raw, &batch); err != nil {
		return fmt.Errorf("parse batch %s: %w", path, err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // safe to ignore

	stmts, err := prepareBatchStmts(tx)
	if err != nil {
		return err
	}
	defer stmts.close()

	for i := range batch {
		inserted, err := l.insertMessage(stmts, &batch[i])
		if err != nil {
			return fmt.Errorf("batch %s message %s: %w", path, batch[i].MessageID, err)
		}
		if inserted {
			stats.Messages++
		} else {
			stats.Duplicates++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch %s: %w", path, err)
	}
	l.logger.Info("loaded batch", "path", path, "messages", len(batch))
	return nil
}

type batchStmts struct {
	person     *sql.Stmt
	message    *sql.Stmt
	recipient  *sql.Stmt
	attachment *sql.Stmt
	msgAttach  *sql.Stmt
}

func prepareBatchStmts(tx *sql.Tx) (*batchStmts, error) {
	s := &batchStmts{}
	var err error
	if s.person, err = tx.Prepare(
		"INSERT INTO people (email, name) VALUES (?, NULLIF(?, '')) ON CONFLICT(email) DO UPDATE SET name = COALESCE(people.name, NULLIF(excluded.name, '')) RETURNING id"); err != nil {
		return nil, fmt.Errorf("prepare person insert: %w", err)
	}
	if s.message, err = tx.Prepare(
		"INSERT OR IGNORE INTO messages (message_id, from_person_id, subject, body, timestamp, in_reply_to, has_attachments) VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)"); err != nil {
		return nil, fmt.Errorf("prepare message insert: %w", err)
	}
	if s.recipient, err = tx.Prepare(
		"INSERT OR IGNORE INTO message_recipients (message_id, person_id, recipient_type) VALUES (?, ?, ?)"); err != nil {
		return nil, fmt.Errorf("prepare recipient insert: %w", err)
	}
	if s.attachment, err = tx.Prepare(
		"INSERT INTO attachments (sha256_hash, original_filename, mime_type, file_size) VALUES (?, ?, ?, ?) ON CONFLICT(sha256_hash) DO UPDATE SET sha256_hash = excluded.sha256_hash RETURNING id"); err != nil {
		return nil, fmt.Errorf("prepare attachment insert: %w", err)
	}
	if s.msgAttach, err = tx.Prepare(
		"INSERT OR IGNORE INTO message_attachments (message_id, attachment_id, filename, attachment_order) VALUES (?, ?, ?, ?)"); err != nil {
		return nil, fmt.Errorf("prepare message_attachment insert: %w", err)
	}
	return s, nil
}

func (s *batchStmts) close() {
	for _, stmt := range []*sql.Stmt{s.person, s.message, s.recipient, s.attachment, s.msgAttach} {
		if stmt != nil {
			_ = stmt.Close() // safe to ignore
		}
	}
}

// insertMessage writes one message and its recipients and attachments.
// Returns false when the message_id was already loaded.
func (l *Loader) insertMessage(stmts *batchStmts, m *batchMessage) (bool, error) {
	fromID, err := l.personID(stmts, m.FromAddress, m.FromName)
	if err != nil {
		return false, err
	}

	res, err := stmts.message.Exec(m.MessageID, fromID, m.Subject, m.Body,
		m.Timestamp, m.InReplyTo, boolToInt(len(m.Attachments) > 0))
	if err != nil {
		return false, fmt.Errorf("insert message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// message_id seen in an earlier batch; the corpus export overlaps
		// mailbox folders, so duplicates are expected
		return false, nil
	}
	msgID, err := res.LastInsertId()
	if err != nil {
		return false, err
	}

	lists := []struct {
		kind  string
		addrs []batchAddress
	}{
		{"to", m.To},
		{"cc", m.Cc},
		{"bcc", m.Bcc},
	}
	for _, list := range lists {
		for _, addr := range list.addrs {
			pid, err := l.personID(stmts, addr.Address, addr.Name)
			if err != nil {
				return false, err
			}
			if pid == 0 {
				continue
			}
			if _, err := stmts.recipient.Exec(msgID, pid, list.kind); err != nil {
				return false, fmt.Errorf("insert recipient: %w", err)
			}
		}
	}

	for order, att := range m.Attachments {
		aid, err := l.attachmentID(stmts, att)
		if err != nil {
			return false, err
		}
		if _, err := stmts.msgAttach.Exec(msgID, aid, att.Filename, order); err != nil {
			return false, fmt.Errorf("insert message_attachment: %w", err)
		}
	}

	return true, nil
}

// personID resolves an email address to a people row, creating it on first
// sight. Addresses are lowercased so the same person never splits on case.
// Returns 0 for empty addresses.
func (l *Loader) personID(stmts *batchStmts, email, name string) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, nil
	}
	if id, ok := l.peopleByEmail[email]; ok {
		return id, nil
	}
	var id int64
	if err := stmts.person.QueryRow(email, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert person %s: %w", email, err)
	}
	l.peopleByEmail[email] = id
	return id, nil
}

func (l *Loader) attachmentID(stmts *batchStmts, att batchAttachment) (int64, error) {
	if id, ok := l.attachByHash[att.SHA256]; ok {
		return id, nil
	}
	var id int64
	if err := stmts.attachment.QueryRow(att.SHA256, att.Filename, att.MimeType, att.FileSize).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert attachment %s: %w", att.SHA256, err)
	}
	l.attachByHash[att.SHA256] = id
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
