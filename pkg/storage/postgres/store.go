// Package postgres implements storage.Datastore against PostgreSQL, using
// sqlx for scanning and golang-migrate to own the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/opsnet/unet/pkg/storage"
)

// Store is a storage.Datastore backed by a PostgreSQL connection pool.
type Store struct {
	db *sqlx.DB
}

// Open connects to dsn, applies every pending migration, and returns a
// ready Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := Migrate(db.DB); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// NewStore wraps an already-connected sqlx.DB. Callers that manage their
// own connection lifecycle (tests, long-lived daemons sharing a pool) use
// this instead of Open.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string { return "postgres" }

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying connection pool so a caller can tune its
// limits (max open/idle connections, connection lifetime) after construction.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// --- transaction support ---

type txKey struct{}

// querier is the subset of *sqlx.DB and *sqlx.Tx used by every entity
// file; it lets each query run against whichever one the context carries.
type querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// querierFrom returns the transaction attached to ctx, or s.db if none.
func (s *Store) querierFrom(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// Tx is the storage.Transaction returned by BeginTransaction. Context
// returns a derived context.Context that routes subsequent Store calls
// through this same transaction; callers needing that must type-assert
// the storage.Transaction they got back to *postgres.Tx.
type Tx struct {
	tx  *sqlx.Tx
	ctx context.Context
}

func (t *Tx) Context() context.Context { return t.ctx }

func (t *Tx) Commit(ctx context.Context) error   { return t.tx.Commit() }
func (t *Tx) Rollback(ctx context.Context) error { return t.tx.Rollback() }

func (s *Store) BeginTransaction(ctx context.Context) (storage.Transaction, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	txCtx := context.WithValue(ctx, txKey{}, tx)
	return &Tx{tx: tx, ctx: txCtx}, nil
}

// --- query builder, adapted from the tenant-scoped SelectBuilder this
// package originally carried: same fluent shape, generalized to whatever
// table/columns a caller names instead of assuming an account_id column. ---

// selectBuilder builds a parameterized SELECT against PostgreSQL's $N
// placeholder syntax.
type selectBuilder struct {
	table      string
	columns    []string
	conditions []string
	args       []any
	orderBy    []string
	limit      int
	argIndex   int
}

func newSelectBuilder(table string) *selectBuilder {
	return &selectBuilder{table: table, argIndex: 1}
}

func (b *selectBuilder) cols(cols ...string) *selectBuilder {
	b.columns = cols
	return b
}

func (b *selectBuilder) whereEq(column string, value any) *selectBuilder {
	b.conditions = append(b.conditions, fmt.Sprintf("%s = $%d", column, b.argIndex))
	b.args = append(b.args, value)
	b.argIndex++
	return b
}

func (b *selectBuilder) orderByAsc(column string) *selectBuilder {
	b.orderBy = append(b.orderBy, column+" ASC")
	return b
}

func (b *selectBuilder) build() (string, []any) {
	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}
	query := fmt.Sprintf("SELECT %s FROM %s", cols, b.table)
	if len(b.conditions) > 0 {
		query += " WHERE " + strings.Join(b.conditions, " AND ")
	}
	if len(b.orderBy) > 0 {
		query += " ORDER BY " + strings.Join(b.orderBy, ", ")
	}
	if b.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", b.limit)
	}
	return query, b.args
}

var _ storage.Datastore = (*Store)(nil)
