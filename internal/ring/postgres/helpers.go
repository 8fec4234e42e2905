// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package postgres implements the ring repositories on PostgreSQL.
package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// scanIDs reads a single-column result of ULID strings.
func scanIDs(rows pgx.Rows) ([]ulid.ULID, error) {
	defer rows.Close()

	var ids []ulid.ULID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func parseID(raw string) (ulid.ULID, error) {
	id, err := ulid.Parse(raw)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_STORED_ID").With("id", raw).Wrap(err)
	}
	return id, nil
}
