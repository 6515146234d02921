package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const connKey contextKey = "db_conn"

// Queryable is the subset of pgx operations repositories need. It is
// satisfied by *pgxpool.Pool, *pgxpool.Conn, and pgx.Tx.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// WithConn returns a context carrying q. Repositories prefer the carried
// connection over their own pool, so queries inside InTx share one
// transaction.
func WithConn(ctx context.Context, q Queryable) context.Context {
	return context.WithValue(ctx, connKey, q)
}

// ConnFromContext retrieves the request- or transaction-scoped connection, or
// nil when none is set.
func ConnFromContext(ctx context.Context) Queryable {
	q, _ := ctx.Value(connKey).(Queryable)
	return q
}

// InTx runs fn inside a transaction. The transaction is injected into the
// context passed to fn, so any repository call made through that context joins
// it. Rolls back on error or panic, commits otherwise.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(WithConn(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
