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

var sitesTable = store.Table{
	Name: "sites",
	Columns: []string{
		"id", "name", "url", "webring_id", "added_by_id",
		"deleted_at", "created_at", "modified_at",
	},
}

// SiteRepository implements ring.SiteRepository using PostgreSQL.
type SiteRepository struct {
	db store.Querier
}

// NewSiteRepository creates a new SiteRepository.
func NewSiteRepository(db store.Querier) *SiteRepository {
	return &SiteRepository{db: db}
}

// Create stores a new site.
func (r *SiteRepository) Create(ctx context.Context, tx store.Tx, s *ring.Site) error {
	_, err := store.Use(r.db, tx).Exec(ctx, `
		INSERT INTO sites (id, name, url, webring_id, added_by_id, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		s.ID.String(),
		s.Name,
		s.URL,
		s.WebringID.String(),
		s.AddedByID.String(),
		s.CreatedAt,
		s.ModifiedAt,
	)
	if err != nil {
		return oops.Code("SITE_CREATE_FAILED").
			With("operation", "insert site").
			With("webring_id", s.WebringID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an active site.
func (r *SiteRepository) GetByID(ctx context.Context, tx store.Tx, id ulid.ULID) (*ring.Site, error) {
	row := store.Use(r.db, tx).QueryRow(ctx, sitesTable.SelectActive("sites.id = $1"), id.String())

	site, err := scanSite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(ring.CodeSiteNotFound).
			With("id", id.String()).
			Wrap(store.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SITE_GET_FAILED").
			With("operation", "get site by id").
			With("id", id.String()).
			Wrap(err)
	}
	return site, nil
}

// ListActiveByWebring returns the active sites of a webring, oldest first.
func (r *SiteRepository) ListActiveByWebring(ctx context.Context, tx store.Tx, webringID ulid.ULID) ([]*ring.Site, error) {
	rows, err := store.Use(r.db, tx).Query(ctx,
		sitesTable.SelectActive("sites.webring_id = $1", "ORDER BY sites.created_at, sites.id"),
		webringID.String())
	if err != nil {
		return nil, oops.Code("SITE_LIST_FAILED").
			With("operation", "list sites by webring").
			With("webring_id", webringID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var sites []*ring.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, oops.Code("SITE_LIST_FAILED").
				With("webring_id", webringID.String()).
				Wrap(err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SITE_LIST_FAILED").
			With("webring_id", webringID.String()).
			Wrap(err)
	}
	return sites, nil
}

// Update writes the mutable columns of an active site.
func (r *SiteRepository) Update(ctx context.Context, tx store.Tx, s *ring.Site) error {
	result, err := store.Use(r.db, tx).Exec(ctx,
		sitesTable.UpdateActive("name = $2, url = $3, deleted_at = $4, modified_at = $5", "sites.id = $1"),
		s.ID.String(),
		s.Name,
		s.URL,
		s.DeletedAt,
		s.ModifiedAt,
	)
	if err != nil {
		return oops.Code("SITE_UPDATE_FAILED").
			With("operation", "update site").
			With("id", s.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(ring.CodeSiteNotFound).
			With("id", s.ID.String()).
			Wrap(store.ErrNotFound)
	}
	return nil
}

func scanSite(row pgx.Row) (*ring.Site, error) {
	var (
		s         ring.Site
		id        string
		webringID string
		addedByID string
		deletedAt *time.Time
	)
	if err := row.Scan(&id, &s.Name, &s.URL, &webringID, &addedByID, &deletedAt, &s.CreatedAt, &s.ModifiedAt); err != nil {
		return nil, err
	}

	var err error
	if s.ID, err = parseID(id); err != nil {
		return nil, err
	}
	if s.WebringID, err = parseID(webringID); err != nil {
		return nil, err
	}
	if s.AddedByID, err = parseID(addedByID); err != nil {
		return nil, err
	}
	s.DeletedAt = deletedAt
	return &s, nil
}

var _ ring.SiteRepository = (*SiteRepository)(nil)
