package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agentic-research/mailcorpus/api"
)

// TopPeople returns the most active people, ordered by total email volume.
// minEmails filters out marginal correspondents before the sort.
func (s *Store) TopPeople(ctx context.Context, minEmails, limit int) ([]api.PersonNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, COALESCE(name, ''), sent_count, received_count
		FROM people
		WHERE sent_count + received_count >= ?
		ORDER BY sent_count + received_count DESC, id
		LIMIT ?`, minEmails, limit)
	if err != nil {
		return nil, fmt.Errorf("query top people: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var people []api.PersonNode
	for rows.Next() {
		var p api.PersonNode
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.Sent, &p.Received); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		p.Total = p.Sent + p.Received
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

// PersonByID looks up a single person. The bool reports whether the row exists.
func (s *Store) PersonByID(ctx context.Context, id int64) (api.PersonNode, bool, error) {
	var p api.PersonNode
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(name, ''), sent_count, received_count
		FROM people
		WHERE id = ?`, id).Scan(&p.ID, &p.Email, &p.Name, &p.Sent, &p.Received)
	if errors.Is(err, sql.ErrNoRows) {
		return api.PersonNode{}, false, nil
	}
	if err != nil {
		return api.PersonNode{}, false, fmt.Errorf("query person %d: %w", id, err)
	}
	p.Total = p.Sent + p.Received
	return p, true, nil
}

// Neighbors returns the people who exchanged mail with centerID, in either
// direction, ordered by their overall activity. minEmails applies the same
// activity floor as TopPeople so ego graphs stay comparable to the global one.
func (s *Store) Neighbors(ctx context.Context, centerID int64, minEmails, limit int) ([]api.PersonNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.email, COALESCE(p.name, ''), p.sent_count, p.received_count
		FROM people p
		WHERE p.id IN (
			SELECT r.person_id
			FROM messages m JOIN message_recipients r ON r.message_id = m.id
			WHERE m.from_person_id = ?
			UNION
			SELECT m.from_person_id
			FROM messages m JOIN message_recipients r ON r.message_id = m.id
			WHERE r.person_id = ?
		)
		AND p.id != ?
		AND p.sent_count + p.received_count >= ?
		ORDER BY p.sent_count + p.received_count DESC, p.id
		LIMIT ?`, centerID, centerID, centerID, minEmails, limit)
	if err != nil {
		return nil, fmt.Errorf("query neighbors of %d: %w", centerID, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var people []api.PersonNode
	for rows.Next() {
		var p api.PersonNode
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.Sent, &p.Received); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		p.Total = p.Sent + p.Received
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbors: %w", err)
	}
	return people, nil
}
