// Package db holds the SQL query layer. Queries is the single entry point;
// it runs against either the pool or a transaction via the DBTX interface.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries bundles all SQL operations.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to the given connection source.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to a transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
