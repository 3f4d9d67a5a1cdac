// Package pgx implements the source adapters on PostgreSQL with pgvector
// for embedding similarity search.
package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

func clampTopK(k int, fallback int) int {
	if k <= 0 {
		return fallback
	}
	if k > 50 {
		return 50
	}
	return k
}
