// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/store"
)

// Session is a login session. Its ID is the bearer value presented by clients.
type Session struct {
	ID        uuid.UUID
	UserID    ulid.ULID
	ExpiresAt time.Time
	EndedAt   *time.Time
	DeletedAt *time.Time
	CreatedAt time.Time
}

// NewSession creates an unsaved session for userID valid from now until expiresAt.
func NewSession(userID ulid.ULID, now, expiresAt time.Time) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code(CodeSessionUserUnsaved).Errorf("user has not been persisted")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, oops.Code("SESSION_ID_FAILED").Wrap(err)
	}

	return &Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// EndedBy reports whether the session was ended at or before t.
func (s *Session) EndedBy(t time.Time) bool {
	return s.EndedAt != nil && !t.Before(*s.EndedAt)
}

// Check reports why the session cannot be used at asOf, or nil if it can.
// An ended session is invalid; otherwise asOf must fall inside
// [CreatedAt, ExpiresAt]. Instants before creation count as expired.
func (s *Session) Check(asOf time.Time) error {
	if s.EndedBy(asOf) {
		return oops.Code(CodeSessionInvalid).
			With("session_id", s.ID.String()).
			Errorf("session has ended")
	}
	if asOf.Before(s.CreatedAt) || asOf.After(s.ExpiresAt) {
		return oops.Code(CodeSessionExpired).
			With("session_id", s.ID.String()).
			Errorf("session has expired")
	}
	return nil
}

// SessionRepository manages session persistence. Lookups never return
// soft-deleted sessions.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, tx store.Tx, session *Session) error

	// GetByID retrieves an active session. Returns store.ErrNotFound if absent.
	GetByID(ctx context.Context, tx store.Tx, id uuid.UUID) (*Session, error)

	// End stamps EndedAt on an active, not yet ended session.
	// Returns store.ErrNotFound if no such session exists.
	End(ctx context.Context, tx store.Tx, id uuid.UUID, endedAt time.Time) error

	// EndByUser stamps EndedAt on every active, not yet ended session of a
	// user and returns how many sessions were ended.
	EndByUser(ctx context.Context, tx store.Tx, userID ulid.ULID, endedAt time.Time) (int64, error)
}
