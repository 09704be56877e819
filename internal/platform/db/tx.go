package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queryable is the subset of pgx operations shared by pools, connections and
// transactions. Repositories use it so the same queries run inside or outside
// a transaction.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type contextKey string

const connKey contextKey = "db_conn"

// WithConn returns a context carrying the given connection. Repositories that
// find a connection in the context use it instead of the pool, which lets a
// service run several repository calls in one transaction.
func WithConn(ctx context.Context, conn Queryable) context.Context {
	return context.WithValue(ctx, connKey, conn)
}

// ConnFromContext returns the connection stored in the context, or nil.
func ConnFromContext(ctx context.Context) Queryable {
	if conn, ok := ctx.Value(connKey).(Queryable); ok {
		return conn
	}
	return nil
}

// InTx runs fn inside a transaction. The transaction is carried through the
// context so repository calls made by fn join it. Rolls back on error.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(WithConn(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
