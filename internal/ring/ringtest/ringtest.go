// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package ringtest provides in-memory ring repositories for tests.
package ringtest

import (
	"context"
	"slices"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/ringdex/ringdex/internal/ring"
	"github.com/ringdex/ringdex/internal/store"
)

// WebringRepository is an in-memory ring.WebringRepository.
type WebringRepository struct {
	mu       sync.Mutex
	order    []ulid.ULID
	webrings map[ulid.ULID]ring.Webring

	// Txs records the transaction handle passed to every call, in order.
	Txs []store.Tx
	// UpdateErr, when set, is returned by Update for the listed IDs, or for
	// every ID when FailIDs is empty.
	UpdateErr error
	FailIDs   []ulid.ULID
	// Updated lists the IDs passed to successful Update calls, in order.
	Updated []ulid.ULID
}

// NewWebringRepository returns a repository seeded with webrings.
func NewWebringRepository(webrings ...*ring.Webring) *WebringRepository {
	r := &WebringRepository{webrings: make(map[ulid.ULID]ring.Webring)}
	for _, w := range webrings {
		r.put(w)
	}
	return r
}

func (r *WebringRepository) put(w *ring.Webring) {
	if _, ok := r.webrings[w.ID]; !ok {
		r.order = append(r.order, w.ID)
	}
	cp := *w
	cp.TagIDs = slices.Clone(w.TagIDs)
	cp.ModeratorIDs = slices.Clone(w.ModeratorIDs)
	r.webrings[w.ID] = cp
}

func (r *WebringRepository) active(id ulid.ULID) (ring.Webring, bool) {
	w, ok := r.webrings[id]
	return w, ok && w.DeletedAt == nil
}

// Create implements ring.WebringRepository.
func (r *WebringRepository) Create(_ context.Context, tx store.Tx, w *ring.Webring) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	for _, existing := range r.webrings {
		if existing.DeletedAt == nil && existing.URL == w.URL {
			return store.ErrConflict
		}
	}
	r.put(w)
	return nil
}

// GetByID implements ring.WebringRepository.
func (r *WebringRepository) GetByID(_ context.Context, tx store.Tx, id ulid.ULID) (*ring.Webring, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	w, ok := r.active(id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &w, nil
}

// ListActiveByCreator implements ring.WebringRepository.
func (r *WebringRepository) ListActiveByCreator(_ context.Context, tx store.Tx, creatorID ulid.ULID) ([]*ring.Webring, error) {
	return r.list(tx, func(w ring.Webring) bool { return w.CreatorID == creatorID })
}

// ListActiveByModerator implements ring.WebringRepository.
func (r *WebringRepository) ListActiveByModerator(_ context.Context, tx store.Tx, userID ulid.ULID) ([]*ring.Webring, error) {
	return r.list(tx, func(w ring.Webring) bool { return slices.Contains(w.ModeratorIDs, userID) })
}

func (r *WebringRepository) list(tx store.Tx, match func(ring.Webring) bool) ([]*ring.Webring, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	var out []*ring.Webring
	for _, id := range r.order {
		w, ok := r.active(id)
		if ok && match(w) {
			out = append(out, &w)
		}
	}
	return out, nil
}

// Update implements ring.WebringRepository.
func (r *WebringRepository) Update(_ context.Context, tx store.Tx, w *ring.Webring) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	if r.UpdateErr != nil && (len(r.FailIDs) == 0 || slices.Contains(r.FailIDs, w.ID)) {
		return r.UpdateErr
	}
	if _, ok := r.active(w.ID); !ok {
		return store.ErrNotFound
	}
	r.put(w)
	r.Updated = append(r.Updated, w.ID)
	return nil
}

// AddModerator implements ring.WebringRepository.
func (r *WebringRepository) AddModerator(_ context.Context, tx store.Tx, webringID, userID ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	w, ok := r.active(webringID)
	if !ok {
		return store.ErrNotFound
	}
	if !slices.Contains(w.ModeratorIDs, userID) {
		w.ModeratorIDs = append(w.ModeratorIDs, userID)
	}
	r.put(&w)
	return nil
}

// AddTag implements ring.WebringRepository.
func (r *WebringRepository) AddTag(_ context.Context, tx store.Tx, webringID, tagID ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	w, ok := r.active(webringID)
	if !ok {
		return store.ErrNotFound
	}
	if !slices.Contains(w.TagIDs, tagID) {
		w.TagIDs = append(w.TagIDs, tagID)
	}
	r.put(&w)
	return nil
}

// Stored returns the stored copy of a webring, including soft-deleted ones.
func (r *WebringRepository) Stored(id ulid.ULID) (ring.Webring, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.webrings[id]
	return w, ok
}

// SiteRepository is an in-memory ring.SiteRepository.
type SiteRepository struct {
	mu    sync.Mutex
	order []ulid.ULID
	sites map[ulid.ULID]ring.Site

	Txs       []store.Tx
	UpdateErr error
	FailIDs   []ulid.ULID
	Updated   []ulid.ULID
}

// NewSiteRepository returns a repository seeded with sites.
func NewSiteRepository(sites ...*ring.Site) *SiteRepository {
	r := &SiteRepository{sites: make(map[ulid.ULID]ring.Site)}
	for _, s := range sites {
		r.put(s)
	}
	return r
}

func (r *SiteRepository) put(s *ring.Site) {
	if _, ok := r.sites[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	r.sites[s.ID] = *s
}

// Create implements ring.SiteRepository.
func (r *SiteRepository) Create(_ context.Context, tx store.Tx, s *ring.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)
	r.put(s)
	return nil
}

// GetByID implements ring.SiteRepository.
func (r *SiteRepository) GetByID(_ context.Context, tx store.Tx, id ulid.ULID) (*ring.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	s, ok := r.sites[id]
	if !ok || s.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

// ListActiveByWebring implements ring.SiteRepository.
func (r *SiteRepository) ListActiveByWebring(_ context.Context, tx store.Tx, webringID ulid.ULID) ([]*ring.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	var out []*ring.Site
	for _, id := range r.order {
		s := r.sites[id]
		if s.DeletedAt == nil && s.WebringID == webringID {
			out = append(out, &s)
		}
	}
	return out, nil
}

// Update implements ring.SiteRepository.
func (r *SiteRepository) Update(_ context.Context, tx store.Tx, s *ring.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	if r.UpdateErr != nil && (len(r.FailIDs) == 0 || slices.Contains(r.FailIDs, s.ID)) {
		return r.UpdateErr
	}
	existing, ok := r.sites[s.ID]
	if !ok || existing.DeletedAt != nil {
		return store.ErrNotFound
	}
	r.put(s)
	r.Updated = append(r.Updated, s.ID)
	return nil
}

// Stored returns the stored copy of a site, including soft-deleted ones.
func (r *SiteRepository) Stored(id ulid.ULID) (ring.Site, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sites[id]
	return s, ok
}

// TagRepository is an in-memory ring.TagRepository keyed by name.
type TagRepository struct {
	mu   sync.Mutex
	tags map[string]ring.Tag

	Txs []store.Tx
}

// NewTagRepository returns a repository seeded with tags.
func NewTagRepository(tags ...*ring.Tag) *TagRepository {
	r := &TagRepository{tags: make(map[string]ring.Tag)}
	for _, t := range tags {
		r.tags[t.Name] = *t
	}
	return r
}

// Create implements ring.TagRepository.
func (r *TagRepository) Create(_ context.Context, tx store.Tx, t *ring.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	if existing, ok := r.tags[t.Name]; ok && existing.DeletedAt == nil {
		return store.ErrConflict
	}
	r.tags[t.Name] = *t
	return nil
}

// GetByName implements ring.TagRepository.
func (r *TagRepository) GetByName(_ context.Context, tx store.Tx, name string) (*ring.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	t, ok := r.tags[name]
	if !ok || t.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

var (
	_ ring.WebringRepository = (*WebringRepository)(nil)
	_ ring.SiteRepository    = (*SiteRepository)(nil)
	_ ring.TagRepository     = (*TagRepository)(nil)
)
