// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/clock"
	"github.com/ringdex/ringdex/internal/store"
)

// DefaultSessionValidity is the session lifetime used when none is configured.
const DefaultSessionValidity = 7 * 24 * time.Hour

// CreateSessionOptions controls CreateSession.
type CreateSessionOptions struct {
	// ExpiresAt overrides the default expiry of now plus the validity period.
	ExpiresAt time.Time
	// Tx, when set, is the transaction the session row is written in.
	Tx store.Tx
}

// EndSessionOptions controls EndSession and EndUserSessions.
type EndSessionOptions struct {
	// EndedAt overrides the end instant. Zero means now.
	EndedAt time.Time
	Tx      store.Tx
}

// SessionService authenticates and manages login sessions.
type SessionService struct {
	users    UserRepository
	sessions SessionRepository
	validity time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

// NewSessionService creates a SessionService. A non-positive validity selects
// DefaultSessionValidity.
func NewSessionService(users UserRepository, sessions SessionRepository, validity time.Duration, opts ...Option) (*SessionService, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if validity <= 0 {
		validity = DefaultSessionValidity
	}

	o := applyOptions(opts)
	return &SessionService{
		users:    users,
		sessions: sessions,
		validity: validity,
		clock:    o.clock,
		logger:   o.logger,
	}, nil
}

// AuthenticateSession returns the session identified by sessionID if it is
// usable at asOf. A zero asOf means now. Authentication never writes.
func (s *SessionService) AuthenticateSession(ctx context.Context, sessionID string, asOf time.Time) (*Session, error) {
	asOf = clock.Resolve(s.clock, asOf)

	id, err := uuid.Parse(sessionID)
	if err != nil {
		recordSessionAuthentication(SessionNotFound)
		return nil, sessionNotFound(sessionID)
	}

	session, err := s.sessions.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			recordSessionAuthentication(SessionNotFound)
			return nil, sessionNotFound(sessionID)
		}
		recordSessionAuthentication(SessionError)
		return nil, oops.Code("SESSION_QUERY_FAILED").
			With("session_id", sessionID).
			Wrap(err)
	}

	if err := session.Check(asOf); err != nil {
		if session.EndedBy(asOf) {
			recordSessionAuthentication(SessionEnded)
		} else {
			recordSessionAuthentication(SessionExpired)
		}
		return nil, err
	}

	recordSessionAuthentication(SessionValid)
	return session, nil
}

// Identify authenticates a session and returns its active owner.
func (s *SessionService) Identify(ctx context.Context, sessionID string, asOf time.Time) (*User, *Session, error) {
	session, err := s.AuthenticateSession(ctx, sessionID, asOf)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, nil, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, oops.Code(CodeUserNotFound).
				With("user_id", session.UserID.String()).
				Errorf("session owner not found")
		}
		return nil, nil, oops.Code("USER_QUERY_FAILED").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return user, session, nil
}

// CreateSession persists a new session for an already persisted user.
func (s *SessionService) CreateSession(ctx context.Context, user *User, opts CreateSessionOptions) (*Session, error) {
	if user == nil || user.ID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code(CodeSessionUserUnsaved).Errorf("cannot create a session for an unsaved user")
	}

	now := s.clock.Now()
	expiresAt := opts.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.validity)
	}

	session, err := NewSession(user.ID, now, expiresAt)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, opts.Tx, session); err != nil {
		return nil, oops.Code(CodeSessionCreateFailed).
			With("user_id", user.ID.String()).
			Wrap(err)
	}
	return session, nil
}

// EndSession ends a session so it no longer authenticates.
func (s *SessionService) EndSession(ctx context.Context, sessionID string, opts EndSessionOptions) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return sessionNotFound(sessionID)
	}

	endedAt := clock.Resolve(s.clock, opts.EndedAt)
	if err := s.sessions.End(ctx, opts.Tx, id, endedAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return sessionNotFound(sessionID)
		}
		return oops.Code("SESSION_END_FAILED").
			With("session_id", sessionID).
			Wrap(err)
	}
	return nil
}

// EndUserSessions ends every current session of a user and returns the count.
func (s *SessionService) EndUserSessions(ctx context.Context, userID ulid.ULID, opts EndSessionOptions) (int64, error) {
	endedAt := clock.Resolve(s.clock, opts.EndedAt)
	n, err := s.sessions.EndByUser(ctx, opts.Tx, userID, endedAt)
	if err != nil {
		return 0, oops.Code("SESSION_END_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "ended user sessions",
			"user_id", userID.String(),
			"count", n)
	}
	return n, nil
}

func sessionNotFound(sessionID string) error {
	return oops.Code(CodeSessionNotFound).
		With("session_id", sessionID).
		Errorf("session not found")
}
