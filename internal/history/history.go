// Package history persists answered queries and loads the historical
// project corpus used by the similarity engine.
package history

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/whjyxl/cost-rag/backend/pkg/query"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// Store is the PostgreSQL-backed query history store.
type Store struct {
	conn pgxIConn
}

// NewStore creates a history store on an existing connection.
func NewStore(conn pgxIConn) *Store {
	return &Store{conn: conn}
}

// Record inserts one answered query.
func (s *Store) Record(ctx context.Context, entry query.HistoryEntry) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO query_history
			(query_id, question, answer, confidence, query_type, session_id, user_id, execution_ms, sources_used, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.QueryID, entry.Question, entry.Answer, entry.Confidence, entry.QueryType,
		entry.SessionID, entry.UserID, entry.ExecutionMs, entry.SourcesUsed, entry.AnsweredAt)
	return err
}

// Recent returns the newest history entries for a user, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]query.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(ctx, `
		SELECT query_id, question, answer, confidence, query_type, session_id, user_id, execution_ms, sources_used, answered_at
		FROM query_history
		WHERE ($1 = '' OR user_id = $1)
		ORDER BY answered_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]query.HistoryEntry, 0, limit)
	for rows.Next() {
		var entry query.HistoryEntry
		if err := rows.Scan(&entry.QueryID, &entry.Question, &entry.Answer, &entry.Confidence,
			&entry.QueryType, &entry.SessionID, &entry.UserID, &entry.ExecutionMs,
			&entry.SourcesUsed, &entry.AnsweredAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
