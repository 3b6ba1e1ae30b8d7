package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-research/mailcorpus/api"
)

// AttachmentsForMessages fetches the stored attachments of the given messages
// in a single query, keyed by message ID and ordered as they appeared in the
// original email.
func (s *Store) AttachmentsForMessages(ctx context.Context, messageIDs []int64) (map[int64][]api.AttachmentRecord, error) {
	if len(messageIDs) == 0 {
		return map[int64][]api.AttachmentRecord{}, nil
	}

	placeholders := make([]string, len(messageIDs))
	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT ma.message_id, a.id, COALESCE(ma.filename, a.original_filename),
		       COALESCE(a.mime_type, ''), a.file_size
		FROM message_attachments ma
		JOIN attachments a ON a.id = ma.attachment_id
		WHERE ma.message_id IN (%s)
		ORDER BY ma.message_id, ma.attachment_order`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query message attachments: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	byMessage := make(map[int64][]api.AttachmentRecord)
	for rows.Next() {
		var msgID int64
		var rec api.AttachmentRecord
		if err := rows.Scan(&msgID, &rec.ID, &rec.Filename, &rec.MimeType, &rec.FileSize); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		byMessage[msgID] = append(byMessage[msgID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return byMessage, nil
}

// LookupByNames finds catalog attachments whose stored filename matches any of
// the given names, case-insensitively. Each name also matches as a path
// suffix, so a bare "report.doc" finds "legal\contracts\report.doc".
func (s *Store) LookupByNames(ctx context.Context, names []string) ([]api.AttachmentRecord, error) {
	if len(names) == 0 {
		return nil, nil
	}

	clauses := make([]string, len(names))
	args := make([]any, 0, len(names)*2)
	for i, name := range names {
		lower := strings.ToLower(name)
		clauses[i] = `(lower(a.original_filename) = ? OR lower(a.original_filename) LIKE ? ESCAPE '\')`
		args = append(args, lower, "%"+escapeLike(lower))
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT a.id, a.original_filename, COALESCE(a.mime_type, ''), a.file_size
		FROM attachments a
		WHERE %s
		ORDER BY a.id`, strings.Join(clauses, " OR "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attachments by name: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var recs []api.AttachmentRecord
	for rows.Next() {
		var rec api.AttachmentRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.MimeType, &rec.FileSize); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return recs, nil
}

// escapeLike escapes LIKE metacharacters so filenames with underscores
// (common in the corpus) match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
