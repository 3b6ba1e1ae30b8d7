package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// replyPrefixRe strips reply and forward markers, repeatedly, so
// "RE: RE: FW: Budget" and "Budget" normalize to the same thread key.
var replyPrefixRe = regexp.MustCompile(`^(?i:re|fw|fwd)\s*:\s*`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeSubject produces the thread grouping key for a subject line.
func NormalizeSubject(subject string) string {
	s := strings.TrimSpace(strings.ToLower(subject))
	for {
		stripped := replyPrefixRe.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = strings.TrimSpace(stripped)
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}

// BuildThreads groups messages into threads by normalized subject and stamps
// messages.thread_id. Runs after all batches are loaded; rerunning rebuilds
// the grouping from scratch.
func (l *Loader) BuildThreads(ctx context.Context) (int, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin thread tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // safe to ignore

	if _, err := tx.Exec("DELETE FROM threads"); err != nil {
		return 0, fmt.Errorf("clear threads: %w", err)
	}

	rows, err := tx.Query("SELECT id, COALESCE(subject, '') FROM messages ORDER BY timestamp, id")
	if err != nil {
		return 0, fmt.Errorf("query subjects: %w", err)
	}

	// normalized subject → thread id, assigned in chronological order
	threadIDs := make(map[string]int64)
	type assignment struct {
		messageID int64
		threadID  int64
	}
	var assignments []assignment

	insertThread, err := tx.Prepare("INSERT INTO threads (subject_normalized) VALUES (?)")
	if err != nil {
		_ = rows.Close() // ignore error
		return 0, fmt.Errorf("prepare thread insert: %w", err)
	}
	defer func() { _ = insertThread.Close() }() // safe to ignore

	for rows.Next() {
		var msgID int64
		var subject string
		if err := rows.Scan(&msgID, &subject); err != nil {
			_ = rows.Close() // ignore error
			return 0, fmt.Errorf("scan subject: %w", err)
		}
		key := NormalizeSubject(subject)
		tid, ok := threadIDs[key]
		if !ok {
			res, err := insertThread.Exec(key)
			if err != nil {
				_ = rows.Close() // ignore error
				return 0, fmt.Errorf("insert thread: %w", err)
			}
			if tid, err = res.LastInsertId(); err != nil {
				_ = rows.Close() // ignore error
				return 0, err
			}
			threadIDs[key] = tid
		}
		assignments = append(assignments, assignment{messageID: msgID, threadID: tid})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close() // ignore error
		return 0, fmt.Errorf("iterate subjects: %w", err)
	}
	_ = rows.Close() // safe to ignore

	stamp, err := tx.Prepare("UPDATE messages SET thread_id = ? WHERE id = ?")
	if err != nil {
		return 0, fmt.Errorf("prepare thread stamp: %w", err)
	}
	defer func() { _ = stamp.Close() }() // safe to ignore
	for _, a := range assignments {
		if _, err := stamp.Exec(a.threadID, a.messageID); err != nil {
			return 0, fmt.Errorf("stamp message %d: %w", a.messageID, err)
		}
	}

	if _, err := tx.Exec(`
		UPDATE threads SET message_count = (
			SELECT COUNT(*) FROM messages WHERE messages.thread_id = threads.id
		)`); err != nil {
		return 0, fmt.Errorf("update thread counts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit threads: %w", err)
	}
	return len(threadIDs), nil
}

// UpdatePeopleStats recomputes sent_count and received_count from the message
// tables. Cheap enough to run unconditionally after every load.
func (l *Loader) UpdatePeopleStats(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `
		UPDATE people SET
			sent_count = (
				SELECT COUNT(*) FROM messages WHERE messages.from_person_id = people.id
			),
			received_count = (
				SELECT COUNT(*) FROM message_recipients WHERE message_recipients.person_id = people.id
			)`)
	if err != nil {
		return fmt.Errorf("update people stats: %w", err)
	}
	return nil
}
