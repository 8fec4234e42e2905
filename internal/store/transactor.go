// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

// Transactor runs a unit of work inside a single transaction.
type Transactor interface {
	// InTransaction begins a transaction and calls fn with its handle.
	// The transaction is committed when fn returns nil and rolled back otherwise.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Beginner opens transactions. *pgxpool.Pool and pgxmock pools satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgxTransactor implements Transactor on top of a pgx connection pool.
type PgxTransactor struct {
	db Beginner
}

// NewTransactor creates a PgxTransactor backed by db.
func NewTransactor(db Beginner) *PgxTransactor {
	return &PgxTransactor{db: db}
}

// InTransaction begins a transaction, calls fn with it, and commits or rolls back.
// Panics inside fn roll the transaction back and are re-raised.
func (t *PgxTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx) //nolint:errcheck // panic takes precedence
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}

var _ Transactor = (*PgxTransactor)(nil)
