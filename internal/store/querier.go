// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx used by repositories.
// *pgxpool.Pool, pgx.Tx and pgxmock connections all satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is an open transaction handle. It is passed explicitly down a call chain
// so that every step of a multi-step write joins the same transaction.
// A nil Tx means "run autonomously".
type Tx interface {
	Querier
}

// Use returns tx when one is supplied and db otherwise.
func Use(db Querier, tx Tx) Querier {
	if tx != nil {
		return tx
	}
	return db
}
