// Package db defines the shared database handle interface used by every
// store in this repository. Stores are constructed over a db.DBTX so the
// same code runs against the pool for simple reads and against a
// transaction when a write needs the per-(user, ayah) serialization
// described in the scheduling core's concurrency model.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by *pgxpool.Pool, *pgxpool.Conn, and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner is satisfied by *pgxpool.Pool and *pgxpool.Conn: anything that can
// start a transaction. Stores that need transactional serialization (the
// reducer) accept a Beginner rather than a bare DBTX.
type Beginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	_ Beginner = (*pgxpool.Pool)(nil)
	_ DBTX     = (pgx.Tx)(nil)
)
