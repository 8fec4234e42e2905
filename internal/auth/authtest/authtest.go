// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package authtest provides in-memory auth repositories for tests.
// Both honour soft deletion the way the PostgreSQL repositories do.
package authtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/store"
)

// UserRepository is an in-memory auth.UserRepository.
type UserRepository struct {
	mu    sync.Mutex
	users map[ulid.ULID]auth.User

	// Txs records the transaction handle passed to every call, in order.
	Txs []store.Tx
	// UpdateErr, when set, is returned by Update without writing.
	UpdateErr error
	// GetErr, when set, is returned by GetByID and GetByEmail.
	GetErr error
	// Updates counts successful Update calls.
	Updates int
}

// NewUserRepository returns a repository seeded with users.
func NewUserRepository(users ...*auth.User) *UserRepository {
	r := &UserRepository{users: make(map[ulid.ULID]auth.User)}
	for _, u := range users {
		r.users[u.ID] = *u
	}
	return r
}

// Create implements auth.UserRepository.
func (r *UserRepository) Create(_ context.Context, tx store.Tx, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	for _, existing := range r.users {
		if existing.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return oops.Code(auth.CodeUserExists).Wrap(store.ErrConflict)
		}
	}
	r.users[user.ID] = *user
	return nil
}

// GetByID implements auth.UserRepository.
func (r *UserRepository) GetByID(_ context.Context, tx store.Tx, id ulid.ULID) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	if r.GetErr != nil {
		return nil, r.GetErr
	}
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

// GetByEmail implements auth.UserRepository.
func (r *UserRepository) GetByEmail(_ context.Context, tx store.Tx, email string) (*auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	if r.GetErr != nil {
		return nil, r.GetErr
	}
	for _, u := range r.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

// Update implements auth.UserRepository.
func (r *UserRepository) Update(_ context.Context, tx store.Tx, user *auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)

	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	existing, ok := r.users[user.ID]
	if !ok || existing.DeletedAt != nil {
		return store.ErrNotFound
	}
	r.users[user.ID] = *user
	r.Updates++
	return nil
}

// Stored returns the stored copy of a user, including soft-deleted ones.
func (r *UserRepository) Stored(id ulid.ULID) (auth.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok
}

// SessionRepository is an in-memory auth.SessionRepository.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]auth.Session

	Txs []store.Tx
	// CreateErr, when set, is returned by Create without writing.
	CreateErr error
	// Reads counts GetByID calls.
	Reads int
	// Writes counts Create, End and EndByUser calls.
	Writes int
}

// NewSessionRepository returns a repository seeded with sessions.
func NewSessionRepository(sessions ...*auth.Session) *SessionRepository {
	r := &SessionRepository{sessions: make(map[uuid.UUID]auth.Session)}
	for _, s := range sessions {
		r.sessions[s.ID] = *s
	}
	return r
}

// Create implements auth.SessionRepository.
func (r *SessionRepository) Create(_ context.Context, tx store.Tx, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)
	r.Writes++

	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.sessions[session.ID] = *session
	return nil
}

// GetByID implements auth.SessionRepository.
func (r *SessionRepository) GetByID(_ context.Context, tx store.Tx, id uuid.UUID) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)
	r.Reads++

	s, ok := r.sessions[id]
	if !ok || s.DeletedAt != nil {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

// End implements auth.SessionRepository.
func (r *SessionRepository) End(_ context.Context, tx store.Tx, id uuid.UUID, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)
	r.Writes++

	s, ok := r.sessions[id]
	if !ok || s.DeletedAt != nil || s.EndedAt != nil {
		return store.ErrNotFound
	}
	s.EndedAt = &endedAt
	r.sessions[id] = s
	return nil
}

// EndByUser implements auth.SessionRepository.
func (r *SessionRepository) EndByUser(_ context.Context, tx store.Tx, userID ulid.ULID, endedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Txs = append(r.Txs, tx)
	r.Writes++

	var n int64
	for id, s := range r.sessions {
		if s.UserID != userID || s.DeletedAt != nil || s.EndedAt != nil {
			continue
		}
		s.EndedAt = &endedAt
		r.sessions[id] = s
		n++
	}
	return n, nil
}

// Stored returns the stored copy of a session, including soft-deleted ones.
func (r *SessionRepository) Stored(id uuid.UUID) (auth.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// PlainHasher is a fast PasswordHasher for tests: the hash of p is "plain:"+p.
type PlainHasher struct {
	// Upgrade makes NeedsUpgrade return true.
	Upgrade bool
	// Verified counts Verify calls.
	Verified int
}

// Hash implements auth.PasswordHasher.
func (h *PlainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", auth.ErrEmptyPassword
	}
	return "plain:" + password, nil
}

// Verify implements auth.PasswordHasher. Hashes without the prefix never match.
func (h *PlainHasher) Verify(password, hash string) (bool, error) {
	h.Verified++
	return hash == "plain:"+password, nil
}

// NeedsUpgrade implements auth.PasswordHasher.
func (h *PlainHasher) NeedsUpgrade(string) bool {
	return h.Upgrade
}

var (
	_ auth.UserRepository    = (*UserRepository)(nil)
	_ auth.SessionRepository = (*SessionRepository)(nil)
	_ auth.PasswordHasher    = (*PlainHasher)(nil)
)
