package store

import (
	"context"
	"fmt"

	"github.com/agentic-research/mailcorpus/api"
	"github.com/cespare/xxhash/v2"
)

// ThreadMessages returns every message in a thread in chronological order.
// Sender fields are denormalized in so the tree view needs no second query.
func (s *Store) ThreadMessages(ctx context.Context, threadID int64) ([]api.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.message_id, m.from_person_id,
		       COALESCE(p.email, ''), COALESCE(p.name, ''),
		       COALESCE(m.subject, ''), COALESCE(m.body, ''),
		       m.timestamp, COALESCE(m.in_reply_to, ''), m.has_attachments
		FROM messages m
		LEFT JOIN people p ON p.id = m.from_person_id
		WHERE m.thread_id = ?
		ORDER BY m.timestamp, m.id`, threadID)
	if err != nil {
		return nil, fmt.Errorf("query thread %d: %w", threadID, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var msgs []api.Message
	for rows.Next() {
		var m api.Message
		var hasAtt int
		if err := rows.Scan(&m.ID, &m.MessageID, &m.FromID, &m.FromEmail, &m.FromName,
			&m.Subject, &m.Body, &m.Timestamp, &m.InReplyTo, &hasAtt); err != nil {
			return nil, fmt.Errorf("scan thread message: %w", err)
		}
		m.HasAttachments = hasAtt != 0
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate thread messages: %w", err)
	}
	return msgs, nil
}

// CountThreadMessages returns the raw (pre-dedup) message count of a thread.
func (s *Store) CountThreadMessages(ctx context.Context, threadID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE thread_id = ?", threadID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count thread %d: %w", threadID, err)
	}
	return n, nil
}

// DedupedThreadPage returns one page of a thread's messages after collapsing
// duplicates. Corpus dumps carry the same body under multiple message IDs
// (one per mailbox it was archived from); messages with the same sender and
// identical body hash to one entry, keeping the earliest. total counts the
// deduplicated messages, and page is 1-based.
func (s *Store) DedupedThreadPage(ctx context.Context, threadID int64, page, limit int) (msgs []api.Message, total int, err error) {
	all, err := s.ThreadMessages(ctx, threadID)
	if err != nil {
		return nil, 0, err
	}

	type dupKey struct {
		from int64
		body uint64
	}
	seen := make(map[dupKey]bool, len(all))
	deduped := all[:0]
	for _, m := range all {
		k := dupKey{from: m.FromID, body: xxhash.Sum64String(m.Body)}
		if seen[k] {
			continue
		}
		seen[k] = true
		deduped = append(deduped, m)
	}

	total = len(deduped)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return deduped[start:end], total, nil
}
