// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/ring"
	"github.com/ringdex/ringdex/internal/store"
)

var webringsTable = store.Table{
	Name: "webrings",
	Columns: []string{
		"id", "name", "url", "description", "private", "creator_id",
		"deleted_at", "created_at", "modified_at",
	},
}

// WebringRepository implements ring.WebringRepository using PostgreSQL.
type WebringRepository struct {
	db store.Querier
}

// NewWebringRepository creates a new WebringRepository.
func NewWebringRepository(db store.Querier) *WebringRepository {
	return &WebringRepository{db: db}
}

// Create stores a new webring with its tag and moderator associations.
func (r *WebringRepository) Create(ctx context.Context, tx store.Tx, w *ring.Webring) error {
	q := store.Use(r.db, tx)
	_, err := q.Exec(ctx, `
		INSERT INTO webrings (id, name, url, description, private, creator_id, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		w.ID.String(),
		w.Name,
		w.URL,
		w.Description,
		w.Private,
		w.CreatorID.String(),
		w.CreatedAt,
		w.ModifiedAt,
	)
	if constraint, ok := store.IsUniqueViolation(err); ok {
		return oops.Code(ring.CodeWebringExists).
			With("constraint", constraint).
			With("url", w.URL).
			Wrap(store.ErrConflict)
	}
	if err != nil {
		return oops.Code("WEBRING_CREATE_FAILED").
			With("operation", "insert webring").
			With("url", w.URL).
			Wrap(err)
	}

	for _, tagID := range w.TagIDs {
		if err := r.addTag(ctx, q, w.ID, tagID); err != nil {
			return err
		}
	}
	for _, userID := range w.ModeratorIDs {
		if err := r.addModerator(ctx, q, w.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves an active webring with its tags and moderators.
func (r *WebringRepository) GetByID(ctx context.Context, tx store.Tx, id ulid.ULID) (*ring.Webring, error) {
	q := store.Use(r.db, tx)
	w, err := scanWebring(q.QueryRow(ctx, webringsTable.SelectActive("webrings.id = $1"), id.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(ring.CodeWebringNotFound).
			With("id", id.String()).
			Wrap(store.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("WEBRING_GET_FAILED").
			With("operation", "get webring by id").
			With("id", id.String()).
			Wrap(err)
	}

	rows, err := q.Query(ctx, `SELECT tag_id FROM webring_tags WHERE webring_id = $1 ORDER BY tag_id`, id.String())
	if err == nil {
		w.TagIDs, err = scanIDs(rows)
	}
	if err != nil {
		return nil, oops.Code("WEBRING_GET_FAILED").
			With("operation", "list webring tags").
			With("id", id.String()).
			Wrap(err)
	}

	rows, err = q.Query(ctx, `SELECT user_id FROM webring_moderators WHERE webring_id = $1 ORDER BY user_id`, id.String())
	if err == nil {
		w.ModeratorIDs, err = scanIDs(rows)
	}
	if err != nil {
		return nil, oops.Code("WEBRING_GET_FAILED").
			With("operation", "list webring moderators").
			With("id", id.String()).
			Wrap(err)
	}
	return w, nil
}

// ListActiveByCreator returns the active webrings created by a user.
func (r *WebringRepository) ListActiveByCreator(ctx context.Context, tx store.Tx, creatorID ulid.ULID) ([]*ring.Webring, error) {
	rows, err := store.Use(r.db, tx).Query(ctx,
		webringsTable.SelectActive("webrings.creator_id = $1", "ORDER BY webrings.created_at, webrings.id"),
		creatorID.String())
	if err != nil {
		return nil, oops.Code("WEBRING_LIST_FAILED").
			With("operation", "list webrings by creator").
			With("creator_id", creatorID.String()).
			Wrap(err)
	}
	return collectWebrings(rows, "creator_id", creatorID)
}

// ListActiveByModerator returns the active webrings a user moderates.
func (r *WebringRepository) ListActiveByModerator(ctx context.Context, tx store.Tx, userID ulid.ULID) ([]*ring.Webring, error) {
	rows, err := store.Use(r.db, tx).Query(ctx,
		webringsTable.SelectActive(
			"webrings.id IN (SELECT webring_id FROM webring_moderators WHERE user_id = $1)",
			"ORDER BY webrings.created_at, webrings.id"),
		userID.String())
	if err != nil {
		return nil, oops.Code("WEBRING_LIST_FAILED").
			With("operation", "list webrings by moderator").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return collectWebrings(rows, "user_id", userID)
}

// Update writes the mutable columns of an active webring.
func (r *WebringRepository) Update(ctx context.Context, tx store.Tx, w *ring.Webring) error {
	result, err := store.Use(r.db, tx).Exec(ctx,
		webringsTable.UpdateActive(
			"name = $2, url = $3, description = $4, private = $5, deleted_at = $6, modified_at = $7",
			"webrings.id = $1"),
		w.ID.String(),
		w.Name,
		w.URL,
		w.Description,
		w.Private,
		w.DeletedAt,
		w.ModifiedAt,
	)
	if constraint, ok := store.IsUniqueViolation(err); ok {
		return oops.Code(ring.CodeWebringExists).
			With("constraint", constraint).
			With("url", w.URL).
			Wrap(store.ErrConflict)
	}
	if err != nil {
		return oops.Code("WEBRING_UPDATE_FAILED").
			With("operation", "update webring").
			With("id", w.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(ring.CodeWebringNotFound).
			With("id", w.ID.String()).
			Wrap(store.ErrNotFound)
	}
	return nil
}

// AddModerator grants a user moderation of an active webring.
func (r *WebringRepository) AddModerator(ctx context.Context, tx store.Tx, webringID, userID ulid.ULID) error {
	return r.addModerator(ctx, store.Use(r.db, tx), webringID, userID)
}

// AddTag attaches a tag to an active webring.
func (r *WebringRepository) AddTag(ctx context.Context, tx store.Tx, webringID, tagID ulid.ULID) error {
	return r.addTag(ctx, store.Use(r.db, tx), webringID, tagID)
}

func (r *WebringRepository) addModerator(ctx context.Context, q store.Querier, webringID, userID ulid.ULID) error {
	result, err := q.Exec(ctx, `
		INSERT INTO webring_moderators (webring_id, user_id)
		SELECT webrings.id, $2 FROM webrings WHERE `+webringsTable.ActivePredicate()+` AND webrings.id = $1
		ON CONFLICT (webring_id, user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	`, webringID.String(), userID.String())
	if err != nil {
		return oops.Code("WEBRING_MODERATOR_FAILED").
			With("operation", "add moderator").
			With("id", webringID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(ring.CodeWebringNotFound).
			With("id", webringID.String()).
			Wrap(store.ErrNotFound)
	}
	return nil
}

func (r *WebringRepository) addTag(ctx context.Context, q store.Querier, webringID, tagID ulid.ULID) error {
	result, err := q.Exec(ctx, `
		INSERT INTO webring_tags (webring_id, tag_id)
		SELECT webrings.id, $2 FROM webrings WHERE `+webringsTable.ActivePredicate()+` AND webrings.id = $1
		ON CONFLICT (webring_id, tag_id) DO UPDATE SET tag_id = EXCLUDED.tag_id
	`, webringID.String(), tagID.String())
	if err != nil {
		return oops.Code("WEBRING_TAG_FAILED").
			With("operation", "add tag").
			With("id", webringID.String()).
			With("tag_id", tagID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(ring.CodeWebringNotFound).
			With("id", webringID.String()).
			Wrap(store.ErrNotFound)
	}
	return nil
}

func collectWebrings(rows pgx.Rows, key string, id ulid.ULID) ([]*ring.Webring, error) {
	defer rows.Close()

	var out []*ring.Webring
	for rows.Next() {
		w, err := scanWebring(rows)
		if err != nil {
			return nil, oops.Code("WEBRING_LIST_FAILED").With(key, id.String()).Wrap(err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("WEBRING_LIST_FAILED").With(key, id.String()).Wrap(err)
	}
	return out, nil
}

func scanWebring(row pgx.Row) (*ring.Webring, error) {
	var (
		w         ring.Webring
		id        string
		creatorID string
		deletedAt *time.Time
	)
	if err := row.Scan(
		&id,
		&w.Name,
		&w.URL,
		&w.Description,
		&w.Private,
		&creatorID,
		&deletedAt,
		&w.CreatedAt,
		&w.ModifiedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if w.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if w.CreatorID, err = parseID(creatorID); err != nil {
		return nil, err
	}
	w.DeletedAt = deletedAt
	return &w, nil
}

var _ ring.WebringRepository = (*WebringRepository)(nil)
