// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no active row matches a lookup.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write collides with a uniqueness constraint
// among active rows.
var ErrConflict = errors.New("conflict")

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation, returning the violated constraint name.
func IsUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
