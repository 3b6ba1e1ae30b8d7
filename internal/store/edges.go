package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentic-research/mailcorpus/api"
)

// EdgesAmong aggregates sender→recipient message counts between the given
// people. Both endpoints must be in ids; pairs below minWeight are dropped.
// Edges are directed: a→b and b→a are separate rows.
func (s *Store) EdgesAmong(ctx context.Context, ids []int64, minWeight, limit int) ([]api.Edge, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)*2+2)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	in := strings.Join(placeholders, ",")
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, minWeight, limit)

	query := fmt.Sprintf(`
		SELECT m.from_person_id, r.person_id, COUNT(*) AS weight
		FROM messages m
		JOIN message_recipients r ON r.message_id = m.id
		WHERE m.from_person_id IN (%s)
		AND r.person_id IN (%s)
		AND m.from_person_id != r.person_id
		GROUP BY m.from_person_id, r.person_id
		HAVING COUNT(*) >= ?
		ORDER BY weight DESC, m.from_person_id, r.person_id
		LIMIT ?`, in, in)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var edges []api.Edge
	for rows.Next() {
		var e api.Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Weight); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return edges, nil
}
