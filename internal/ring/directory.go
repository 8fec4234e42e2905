// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package ring

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/clock"
	"github.com/ringdex/ringdex/internal/store"
)

// WebringInput is the raw data for a new webring.
type WebringInput struct {
	Name        string
	URL         string
	Description string
	Private     bool
	CreatorID   ulid.ULID
	// Tags are tag names; each must name an existing tag.
	Tags []string
}

// SiteInput is the raw data for a new site.
type SiteInput struct {
	WebringID ulid.ULID
	Name      string
	URL       string
	AddedByID ulid.ULID
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithDirectoryClock sets the clock used for creation times.
func WithDirectoryClock(c clock.Clock) DirectoryOption {
	return func(d *Directory) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithDirectoryLogger sets the logger. The default is slog.Default().
func WithDirectoryLogger(l *slog.Logger) DirectoryOption {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// Directory creates webrings, sites and tags after normalising and
// validating their fields against the configured limits.
type Directory struct {
	webrings   WebringRepository
	sites      SiteRepository
	tags       TagRepository
	transactor store.Transactor
	limits     Limits
	clock      clock.Clock
	logger     *slog.Logger
}

// NewDirectory creates a Directory. Zero limits select DefaultLimits.
func NewDirectory(
	webrings WebringRepository,
	sites SiteRepository,
	tags TagRepository,
	transactor store.Transactor,
	limits Limits,
	opts ...DirectoryOption,
) (*Directory, error) {
	switch {
	case webrings == nil:
		return nil, oops.Errorf("webring repository is required")
	case sites == nil:
		return nil, oops.Errorf("site repository is required")
	case tags == nil:
		return nil, oops.Errorf("tag repository is required")
	case transactor == nil:
		return nil, oops.Errorf("transactor is required")
	}
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}

	d := &Directory{
		webrings:   webrings,
		sites:      sites,
		tags:       tags,
		transactor: transactor,
		limits:     limits,
		clock:      clock.System{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// CreateTag stores a new tag.
func (d *Directory) CreateTag(ctx context.Context, name string, creatorID ulid.ULID) (*Tag, error) {
	name, err := NormaliseTagName(name)
	if err != nil {
		return nil, err
	}
	if err := d.limits.ValidateTagName(name); err != nil {
		return nil, err
	}

	tag, err := NewTag(name, creatorID)
	if err != nil {
		return nil, err
	}
	if err := d.tags.Create(ctx, nil, tag); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, oops.Code(CodeTagExists).With("name", name).Errorf("tag already exists")
		}
		return nil, oops.Code("TAG_CREATE_FAILED").With("name", name).Wrap(err)
	}

	d.logger.InfoContext(ctx, "tag created", "tag_id", tag.ID.String(), "name", name)
	return tag, nil
}

// CreateWebring stores a new webring and attaches its tags, all in one
// transaction.
func (d *Directory) CreateWebring(ctx context.Context, in WebringInput) (*Webring, error) {
	name, err := NormaliseWebringName(in.Name)
	if err != nil {
		return nil, err
	}
	slug, err := NormaliseWebringURL(in.URL)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)

	if err := d.limits.ValidateWebringName(name); err != nil {
		return nil, err
	}
	if err := d.limits.ValidateWebringURL(slug); err != nil {
		return nil, err
	}
	if err := d.limits.ValidateDescription(description); err != nil {
		return nil, err
	}

	webring, err := NewWebring(name, slug, description, in.Private, in.CreatorID, d.clock.Now())
	if err != nil {
		return nil, err
	}

	err = d.transactor.InTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, raw := range in.Tags {
			tag, err := d.lookupTag(ctx, tx, raw)
			if err != nil {
				return err
			}
			if !slices.Contains(webring.TagIDs, tag.ID) {
				webring.TagIDs = append(webring.TagIDs, tag.ID)
			}
		}

		if err := d.webrings.Create(ctx, tx, webring); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return oops.Code(CodeWebringExists).With("url", slug).Errorf("webring url already taken")
			}
			return oops.Code("WEBRING_CREATE_FAILED").With("url", slug).Wrap(err)
		}
		return nil
	})
	if err != nil {
		//nolint:wrapcheck // transaction errors are already coded
		return nil, err
	}

	d.logger.InfoContext(ctx, "webring created",
		"webring_id", webring.ID.String(),
		"url", slug,
		"tags", len(webring.TagIDs))
	return webring, nil
}

// AddSite lists a new site in an active webring.
func (d *Directory) AddSite(ctx context.Context, in SiteInput) (*Site, error) {
	name, err := NormaliseSiteName(in.Name)
	if err != nil {
		return nil, err
	}
	address := strings.TrimSpace(in.URL)
	if err := d.limits.ValidateSiteName(name); err != nil {
		return nil, err
	}
	if err := d.limits.ValidateSiteURL(address); err != nil {
		return nil, err
	}

	site, err := NewSite(name, address, in.WebringID, in.AddedByID, d.clock.Now())
	if err != nil {
		return nil, err
	}

	err = d.transactor.InTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := d.webrings.GetByID(ctx, tx, in.WebringID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return oops.Code(CodeWebringNotFound).
					With("webring_id", in.WebringID.String()).
					Errorf("webring not found")
			}
			return oops.Code("WEBRING_QUERY_FAILED").With("webring_id", in.WebringID.String()).Wrap(err)
		}
		if err := d.sites.Create(ctx, tx, site); err != nil {
			return oops.Code("SITE_CREATE_FAILED").With("webring_id", in.WebringID.String()).Wrap(err)
		}
		return nil
	})
	if err != nil {
		//nolint:wrapcheck // transaction errors are already coded
		return nil, err
	}

	d.logger.InfoContext(ctx, "site added",
		"site_id", site.ID.String(),
		"webring_id", in.WebringID.String())
	return site, nil
}

// AddModerator grants a user moderation of an active webring.
func (d *Directory) AddModerator(ctx context.Context, webringID, userID ulid.ULID) error {
	if err := d.webrings.AddModerator(ctx, nil, webringID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return oops.Code(CodeWebringNotFound).
				With("webring_id", webringID.String()).
				Errorf("webring not found")
		}
		return oops.Code("WEBRING_MODERATOR_FAILED").
			With("webring_id", webringID.String()).
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

func (d *Directory) lookupTag(ctx context.Context, tx store.Tx, raw string) (*Tag, error) {
	name, err := NormaliseTagName(raw)
	if err != nil {
		return nil, err
	}
	tag, err := d.tags.GetByName(ctx, tx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, oops.Code(CodeTagNotFound).With("name", name).Errorf("tag %q not found", name)
		}
		return nil, oops.Code("TAG_QUERY_FAILED").With("name", name).Wrap(err)
	}
	return tag, nil
}
