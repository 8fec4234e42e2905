// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package ring holds the webring directory aggregates: webrings, the sites
// listed in them and the tags that classify them.
//
// A Webring is owned by its creator and owns its Sites. Moderators and tags
// are associations only; they never own anything.
package ring

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Error codes returned by this package.
const (
	CodeWebringNotFound = "WEBRING_NOT_FOUND"
	CodeWebringExists   = "WEBRING_ALREADY_EXISTS"
	CodeSiteNotFound    = "SITE_NOT_FOUND"
	CodeTagNotFound     = "TAG_NOT_FOUND"
	CodeTagExists       = "TAG_ALREADY_EXISTS"
)

// Webring is a named, ordered collection of sites.
type Webring struct {
	ID          ulid.ULID
	Name        string
	URL         string
	Description string
	Private     bool
	CreatorID   ulid.ULID
	// TagIDs and ModeratorIDs are populated by WebringRepository.GetByID only.
	TagIDs       []ulid.ULID
	ModeratorIDs []ulid.ULID
	DeletedAt    *time.Time
	CreatedAt    time.Time
	ModifiedAt   time.Time
}

// NewWebring creates an unsaved webring. name and url must already be
// normalised and validated.
func NewWebring(name, url, description string, private bool, creatorID ulid.ULID, now time.Time) (*Webring, error) {
	if creatorID.IsZero() {
		return nil, oops.Code("WEBRING_INVALID_CREATOR").Errorf("creator ID cannot be zero")
	}
	if name == "" || url == "" {
		return nil, oops.Code("WEBRING_INVALID").Errorf("name and url are required")
	}
	return &Webring{
		ID:          ulid.Make(),
		Name:        name,
		URL:         url,
		Description: description,
		Private:     private,
		CreatorID:   creatorID,
		CreatedAt:   now,
		ModifiedAt:  now,
	}, nil
}

// MarkDeleted soft-deletes the webring at deletedAt.
func (w *Webring) MarkDeleted(deletedAt, now time.Time) {
	w.DeletedAt = &deletedAt
	w.ModifiedAt = now
}

// Site is a website listed in a webring.
type Site struct {
	ID         ulid.ULID
	Name       string
	URL        string
	WebringID  ulid.ULID
	AddedByID  ulid.ULID
	DeletedAt  *time.Time
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// NewSite creates an unsaved site in a webring.
func NewSite(name, url string, webringID, addedByID ulid.ULID, now time.Time) (*Site, error) {
	if webringID.IsZero() {
		return nil, oops.Code("SITE_INVALID_WEBRING").Errorf("webring ID cannot be zero")
	}
	if addedByID.IsZero() {
		return nil, oops.Code("SITE_INVALID_USER").Errorf("added-by user ID cannot be zero")
	}
	if name == "" || url == "" {
		return nil, oops.Code("SITE_INVALID").Errorf("name and url are required")
	}
	return &Site{
		ID:         ulid.Make(),
		Name:       name,
		URL:        url,
		WebringID:  webringID,
		AddedByID:  addedByID,
		CreatedAt:  now,
		ModifiedAt: now,
	}, nil
}

// MarkDeleted soft-deletes the site at deletedAt.
func (s *Site) MarkDeleted(deletedAt, now time.Time) {
	s.DeletedAt = &deletedAt
	s.ModifiedAt = now
}

// Tag classifies webrings.
type Tag struct {
	ID        ulid.ULID
	Name      string
	CreatorID ulid.ULID
	DeletedAt *time.Time
}

// NewTag creates an unsaved tag. name must already be normalised.
func NewTag(name string, creatorID ulid.ULID) (*Tag, error) {
	if name == "" {
		return nil, oops.Code("TAG_INVALID").Errorf("name is required")
	}
	if creatorID.IsZero() {
		return nil, oops.Code("TAG_INVALID_CREATOR").Errorf("creator ID cannot be zero")
	}
	return &Tag{ID: ulid.Make(), Name: name, CreatorID: creatorID}, nil
}
