// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package lifecycle soft-deletes aggregates together with everything they own.
//
// Ownership runs User → Webring (as creator) → Site. Deleting a parent first
// deletes its children, recursively, with the same deletion instant and the
// same transaction, and only then writes the parent's own row. Moderatorship
// and tags are associations and are never followed.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/clock"
	"github.com/ringdex/ringdex/internal/ring"
	"github.com/ringdex/ringdex/internal/store"
	"github.com/ringdex/ringdex/internal/validate"
)

var tracer = otel.Tracer("ringdex/lifecycle")

// DeleteOptions controls a delete operation.
type DeleteOptions struct {
	// DeletedAt is stamped on every row the operation deletes. Zero means now.
	DeletedAt time.Time
	// Tx, when set, is the caller's open transaction. The coordinator writes
	// through it and never commits or rolls it back.
	Tx store.Tx
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock used for default deletion and modification times.
func WithClock(c clock.Clock) Option {
	return func(co *Coordinator) {
		if c != nil {
			co.clock = c
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(co *Coordinator) {
		if l != nil {
			co.logger = l
		}
	}
}

// Coordinator runs cascading soft deletes.
type Coordinator struct {
	users      auth.UserRepository
	webrings   ring.WebringRepository
	sites      ring.SiteRepository
	transactor store.Transactor
	clock      clock.Clock
	logger     *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(
	users auth.UserRepository,
	webrings ring.WebringRepository,
	sites ring.SiteRepository,
	transactor store.Transactor,
	opts ...Option,
) (*Coordinator, error) {
	switch {
	case users == nil:
		return nil, oops.Errorf("users repository is required")
	case webrings == nil:
		return nil, oops.Errorf("webrings repository is required")
	case sites == nil:
		return nil, oops.Errorf("sites repository is required")
	case transactor == nil:
		return nil, oops.Errorf("transactor is required")
	}

	c := &Coordinator{
		users:      users,
		webrings:   webrings,
		sites:      sites,
		transactor: transactor,
		clock:      clock.System{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DeleteSite soft-deletes an active site. Without a caller transaction it is
// a single autonomous write.
func (c *Coordinator) DeleteSite(ctx context.Context, rawID string, opts DeleteOptions) (site *ring.Site, err error) {
	id, err := validate.ParseID("site_id", rawID)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "lifecycle.delete_site",
		trace.WithAttributes(attribute.String("site.id", id.String())))
	defer func() { endSpan(span, err) }()

	deletedAt := clock.Resolve(c.clock, opts.DeletedAt)
	site, err = c.lookupSite(ctx, opts.Tx, id)
	if err != nil {
		return nil, err
	}
	if err = c.markSite(ctx, opts.Tx, site, deletedAt); err != nil {
		return nil, err
	}

	tally{sites: 1}.record()
	c.logger.InfoContext(ctx, "site deleted",
		"site_id", id.String(),
		"webring_id", site.WebringID.String(),
		"deleted_at", deletedAt)
	return site, nil
}

// DeleteWebring soft-deletes an active webring after every active site in it.
func (c *Coordinator) DeleteWebring(ctx context.Context, rawID string, opts DeleteOptions) (webring *ring.Webring, err error) {
	id, err := validate.ParseID("webring_id", rawID)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "lifecycle.delete_webring",
		trace.WithAttributes(attribute.String("webring.id", id.String())))
	defer func() { endSpan(span, err) }()

	deletedAt := clock.Resolve(c.clock, opts.DeletedAt)
	var t tally
	err = c.withTx(ctx, opts.Tx, func(ctx context.Context, tx store.Tx) error {
		var err error
		webring, err = c.deleteWebring(ctx, tx, id, deletedAt, &t)
		return err
	})
	if err != nil {
		return nil, err
	}

	t.record()
	span.SetAttributes(attribute.Int("cascade.sites", t.sites))
	c.logger.InfoContext(ctx, "webring deleted",
		"webring_id", id.String(),
		"sites", t.sites,
		"deleted_at", deletedAt)
	return webring, nil
}

// DeleteUser soft-deletes an active user after every active webring the user
// created, each with its sites. Webrings the user only moderates are untouched.
func (c *Coordinator) DeleteUser(ctx context.Context, rawID string, opts DeleteOptions) (user *auth.User, err error) {
	id, err := validate.ParseID("user_id", rawID)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "lifecycle.delete_user",
		trace.WithAttributes(attribute.String("user.id", id.String())))
	defer func() { endSpan(span, err) }()

	deletedAt := clock.Resolve(c.clock, opts.DeletedAt)
	var t tally
	err = c.withTx(ctx, opts.Tx, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = c.deleteUser(ctx, tx, id, deletedAt, &t)
		return err
	})
	if err != nil {
		return nil, err
	}

	t.record()
	span.SetAttributes(
		attribute.Int("cascade.webrings", t.webrings),
		attribute.Int("cascade.sites", t.sites))
	c.logger.InfoContext(ctx, "user deleted",
		"user_id", id.String(),
		"webrings", t.webrings,
		"sites", t.sites,
		"deleted_at", deletedAt)
	return user, nil
}

// withTx runs fn in the caller's transaction, or in a new one it owns.
func (c *Coordinator) withTx(ctx context.Context, tx store.Tx, fn func(ctx context.Context, tx store.Tx) error) error {
	if tx != nil {
		return fn(ctx, tx)
	}
	return c.transactor.InTransaction(ctx, fn)
}

func (c *Coordinator) deleteUser(ctx context.Context, tx store.Tx, id ulid.ULID, deletedAt time.Time, t *tally) (*auth.User, error) {
	user, err := c.users.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, oops.Code("USER_QUERY_FAILED").With("user_id", id.String()).Wrap(err)
	}

	owned, err := c.webrings.ListActiveByCreator(ctx, tx, id)
	if err != nil {
		return nil, oops.Code("WEBRING_LIST_FAILED").With("user_id", id.String()).Wrap(err)
	}
	for _, w := range owned {
		if _, err := c.deleteWebring(ctx, tx, w.ID, deletedAt, t); err != nil {
			return nil, err
		}
	}

	user.DeletedAt = &deletedAt
	user.ModifiedAt = c.clock.Now()
	if err := c.users.Update(ctx, tx, user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, userNotFound(id)
		}
		return nil, oops.Code("USER_DELETE_FAILED").With("user_id", id.String()).Wrap(err)
	}
	t.users++
	return user, nil
}

func (c *Coordinator) deleteWebring(ctx context.Context, tx store.Tx, id ulid.ULID, deletedAt time.Time, t *tally) (*ring.Webring, error) {
	webring, err := c.webrings.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, webringNotFound(id)
		}
		return nil, oops.Code("WEBRING_QUERY_FAILED").With("webring_id", id.String()).Wrap(err)
	}

	sites, err := c.sites.ListActiveByWebring(ctx, tx, id)
	if err != nil {
		return nil, oops.Code("SITE_LIST_FAILED").With("webring_id", id.String()).Wrap(err)
	}
	for _, s := range sites {
		if err := c.markSite(ctx, tx, s, deletedAt); err != nil {
			return nil, err
		}
		t.sites++
	}

	webring.MarkDeleted(deletedAt, c.clock.Now())
	if err := c.webrings.Update(ctx, tx, webring); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, webringNotFound(id)
		}
		return nil, oops.Code("WEBRING_DELETE_FAILED").With("webring_id", id.String()).Wrap(err)
	}
	t.webrings++
	return webring, nil
}

func (c *Coordinator) lookupSite(ctx context.Context, tx store.Tx, id ulid.ULID) (*ring.Site, error) {
	site, err := c.sites.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, siteNotFound(id)
		}
		return nil, oops.Code("SITE_QUERY_FAILED").With("site_id", id.String()).Wrap(err)
	}
	return site, nil
}

func (c *Coordinator) markSite(ctx context.Context, tx store.Tx, site *ring.Site, deletedAt time.Time) error {
	site.MarkDeleted(deletedAt, c.clock.Now())
	if err := c.sites.Update(ctx, tx, site); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return siteNotFound(site.ID)
		}
		return oops.Code("SITE_DELETE_FAILED").With("site_id", site.ID.String()).Wrap(err)
	}
	return nil
}

// The not-found errors also cover a row deleted by a concurrent caller
// between the lookup and the write.

func userNotFound(id ulid.ULID) error {
	return oops.Code(auth.CodeUserNotFound).With("user_id", id.String()).Errorf("user not found")
}

func webringNotFound(id ulid.ULID) error {
	return oops.Code(ring.CodeWebringNotFound).With("webring_id", id.String()).Errorf("webring not found")
}

func siteNotFound(id ulid.ULID) error {
	return oops.Code(ring.CodeSiteNotFound).With("site_id", id.String()).Errorf("site not found")
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
