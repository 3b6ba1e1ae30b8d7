package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agentic-research/mailcorpus/api"
)

// Stats computes corpus-wide counts for the stats view.
func (s *Store) Stats(ctx context.Context) (*api.CorpusStats, error) {
	stats := &api.CorpusStats{}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM people", &stats.People},
		{"SELECT COUNT(*) FROM messages", &stats.Messages},
		{"SELECT COUNT(*) FROM threads", &stats.Threads},
		{"SELECT COUNT(*) FROM attachments", &stats.Attachments},
		{"SELECT COALESCE(SUM(file_size), 0) FROM attachments", &stats.AttachmentBytes},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("corpus stats: %w", err)
		}
	}

	var first, last sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MIN(timestamp), MAX(timestamp) FROM messages").Scan(&first, &last)
	if err != nil {
		return nil, fmt.Errorf("corpus time range: %w", err)
	}
	stats.FirstTimestamp = first.Int64
	stats.LastTimestamp = last.Int64

	return stats, nil
}
