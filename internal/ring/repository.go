// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package ring

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/ringdex/ringdex/internal/store"
)

// WebringRepository manages webring persistence. Lookups and updates only see
// webrings that are not soft-deleted; misses return store.ErrNotFound.
type WebringRepository interface {
	// Create stores a new webring with its tags and moderators.
	Create(ctx context.Context, tx store.Tx, w *Webring) error

	// GetByID retrieves an active webring with its tag and moderator IDs.
	GetByID(ctx context.Context, tx store.Tx, id ulid.ULID) (*Webring, error)

	// ListActiveByCreator returns the active webrings created by a user,
	// oldest first. Moderated webrings are not included.
	ListActiveByCreator(ctx context.Context, tx store.Tx, creatorID ulid.ULID) ([]*Webring, error)

	// ListActiveByModerator returns the active webrings a user moderates.
	ListActiveByModerator(ctx context.Context, tx store.Tx, userID ulid.ULID) ([]*Webring, error)

	// Update writes the mutable fields of an active webring, including DeletedAt.
	Update(ctx context.Context, tx store.Tx, w *Webring) error

	// AddModerator grants userID moderation of an active webring.
	AddModerator(ctx context.Context, tx store.Tx, webringID, userID ulid.ULID) error

	// AddTag attaches a tag to an active webring.
	AddTag(ctx context.Context, tx store.Tx, webringID, tagID ulid.ULID) error
}

// SiteRepository manages site persistence. Lookups and updates only see
// sites that are not soft-deleted.
type SiteRepository interface {
	// Create stores a new site.
	Create(ctx context.Context, tx store.Tx, s *Site) error

	// GetByID retrieves an active site.
	GetByID(ctx context.Context, tx store.Tx, id ulid.ULID) (*Site, error)

	// ListActiveByWebring returns the active sites of a webring, oldest first.
	ListActiveByWebring(ctx context.Context, tx store.Tx, webringID ulid.ULID) ([]*Site, error)

	// Update writes the mutable fields of an active site, including DeletedAt.
	Update(ctx context.Context, tx store.Tx, s *Site) error
}

// TagRepository manages tag persistence.
type TagRepository interface {
	// Create stores a new tag.
	Create(ctx context.Context, tx store.Tx, t *Tag) error

	// GetByName retrieves an active tag by normalised name.
	GetByName(ctx context.Context, tx store.Tx, name string) (*Tag, error)
}
