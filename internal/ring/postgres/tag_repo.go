// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/ring"
	"github.com/ringdex/ringdex/internal/store"
)

var tagsTable = store.Table{
	Name:    "tags",
	Columns: []string{"id", "name", "creator_id", "deleted_at"},
}

// TagRepository implements ring.TagRepository using PostgreSQL.
type TagRepository struct {
	db store.Querier
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db store.Querier) *TagRepository {
	return &TagRepository{db: db}
}

// Create stores a new tag.
func (r *TagRepository) Create(ctx context.Context, tx store.Tx, t *ring.Tag) error {
	_, err := store.Use(r.db, tx).Exec(ctx,
		`INSERT INTO tags (id, name, creator_id) VALUES ($1, $2, $3)`,
		t.ID.String(), t.Name, t.CreatorID.String())
	if constraint, ok := store.IsUniqueViolation(err); ok {
		return oops.Code(ring.CodeTagExists).
			With("constraint", constraint).
			With("name", t.Name).
			Wrap(store.ErrConflict)
	}
	if err != nil {
		return oops.Code("TAG_CREATE_FAILED").
			With("operation", "insert tag").
			With("name", t.Name).
			Wrap(err)
	}
	return nil
}

// GetByName retrieves an active tag by normalised name.
func (r *TagRepository) GetByName(ctx context.Context, tx store.Tx, name string) (*ring.Tag, error) {
	var (
		t         ring.Tag
		id        string
		creatorID string
		deletedAt *time.Time
	)
	err := store.Use(r.db, tx).QueryRow(ctx, tagsTable.SelectActive("tags.name = $1"), name).
		Scan(&id, &t.Name, &creatorID, &deletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(ring.CodeTagNotFound).
			With("name", name).
			Wrap(store.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TAG_GET_FAILED").
			With("operation", "get tag by name").
			With("name", name).
			Wrap(err)
	}

	if t.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if t.CreatorID, err = parseID(creatorID); err != nil {
		return nil, err
	}
	t.DeletedAt = deletedAt
	return &t, nil
}

var _ ring.TagRepository = (*TagRepository)(nil)
