// Package ingest builds the corpus SQLite database from extractor batch files
// and derives the thread and activity columns the read path depends on.
package ingest

import (
	"database/sql"
	"fmt"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS people (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT UNIQUE NOT NULL,
	name TEXT,
	sent_count INTEGER DEFAULT 0,
	received_count INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT UNIQUE NOT NULL,
	from_person_id INTEGER REFERENCES people(id),
	subject TEXT,
	body TEXT,
	timestamp INTEGER,
	in_reply_to TEXT,
	thread_id INTEGER,
	has_attachments INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id);
CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_person_id);

CREATE TABLE IF NOT EXISTS message_recipients (
	message_id INTEGER REFERENCES messages(id),
	person_id INTEGER REFERENCES people(id),
	recipient_type TEXT NOT NULL,
	PRIMARY KEY (message_id, person_id, recipient_type)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_recipients_person ON message_recipients(person_id);

CREATE TABLE IF NOT EXISTS attachments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sha256_hash TEXT UNIQUE NOT NULL,
	original_filename TEXT,
	mime_type TEXT,
	file_size INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS message_attachments (
	message_id INTEGER REFERENCES messages(id),
	attachment_id INTEGER REFERENCES attachments(id),
	filename TEXT,
	attachment_order INTEGER DEFAULT 0,
	PRIMARY KEY (message_id, attachment_id, attachment_order)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS threads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	subject_normalized TEXT,
	message_count INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_threads_subject ON threads(subject_normalized);
`

// CreateSchema creates all corpus tables and indexes. Idempotent.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("create corpus schema: %w", err)
	}
	return nil
}
