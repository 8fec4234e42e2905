// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/auth/authtest"
	"github.com/ringdex/ringdex/internal/clock"
	"github.com/ringdex/ringdex/internal/store"
	"github.com/ringdex/ringdex/internal/store/storetest"
	"github.com/ringdex/ringdex/pkg/errutil"
)

type sessionFixture struct {
	users    *authtest.UserRepository
	sessions *authtest.SessionRepository
	svc      *auth.SessionService
	user     *auth.User
}

func newSessionFixture(t *testing.T, now time.Time, seeded ...*auth.Session) *sessionFixture {
	t.Helper()
	user, err := auth.NewUser("alice", "alice@example.org", "plain:secret", t0, 0)
	require.NoError(t, err)

	f := &sessionFixture{
		users:    authtest.NewUserRepository(user),
		sessions: authtest.NewSessionRepository(seeded...),
		user:     user,
	}
	f.svc, err = auth.NewSessionService(f.users, f.sessions, time.Hour, auth.WithClock(clock.Fixed(now)))
	require.NoError(t, err)
	return f
}

func TestNewSessionService_RequiresRepositories(t *testing.T) {
	_, err := auth.NewSessionService(nil, authtest.NewSessionRepository(), time.Hour)
	assert.Error(t, err)
	_, err = auth.NewSessionService(authtest.NewUserRepository(), nil, time.Hour)
	assert.Error(t, err)
}

func TestSessionService_AuthenticateSession(t *testing.T) {
	ctx := context.Background()
	userID := ulid.Make()
	ended := t0.Add(30 * time.Minute)
	deleted := t0

	current := &auth.Session{ID: uuid.New(), UserID: userID, CreatedAt: t0, ExpiresAt: t0.Add(time.Hour)}
	endedSession := &auth.Session{ID: uuid.New(), UserID: userID, CreatedAt: t0, ExpiresAt: t0.Add(time.Hour), EndedAt: &ended}
	deletedSession := &auth.Session{ID: uuid.New(), UserID: userID, CreatedAt: t0, ExpiresAt: t0.Add(time.Hour), DeletedAt: &deleted}

	tests := []struct {
		name      string
		sessionID string
		asOf      time.Time
		wantCode  string
	}{
		{name: "current session", sessionID: current.ID.String(), asOf: t0.Add(time.Minute)},
		{name: "zero asOf uses clock", sessionID: current.ID.String()},
		{name: "malformed id", sessionID: "not-a-uuid", wantCode: auth.CodeSessionNotFound},
		{name: "unknown id", sessionID: uuid.NewString(), wantCode: auth.CodeSessionNotFound},
		{name: "soft-deleted session", sessionID: deletedSession.ID.String(), asOf: t0.Add(time.Minute), wantCode: auth.CodeSessionNotFound},
		{name: "ended session", sessionID: endedSession.ID.String(), asOf: ended, wantCode: auth.CodeSessionInvalid},
		{name: "expired session", sessionID: current.ID.String(), asOf: t0.Add(2 * time.Hour), wantCode: auth.CodeSessionExpired},
		{name: "an hour before creation", sessionID: current.ID.String(), asOf: t0.Add(-time.Hour), wantCode: auth.CodeSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t, t0.Add(10*time.Minute), current, endedSession, deletedSession)

			got, err := f.svc.AuthenticateSession(ctx, tt.sessionID, tt.asOf)
			if tt.wantCode != "" {
				errutil.AssertErrorCode(t, err, tt.wantCode)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, current.ID, got.ID)
				assert.Equal(t, *current, *got, "session is returned unchanged")
			}
			assert.Zero(t, f.sessions.Writes, "authentication never writes")
		})
	}
}

func TestSessionService_AuthenticateSessionStoreFailure(t *testing.T) {
	f := newSessionFixture(t, t0)
	svc, err := auth.NewSessionService(f.users, failingSessions{}, time.Hour)
	require.NoError(t, err)

	_, err = svc.AuthenticateSession(context.Background(), uuid.NewString(), t0)
	errutil.AssertErrorCode(t, err, "SESSION_QUERY_FAILED")
}

type failingSessions struct{ auth.SessionRepository }

func (failingSessions) GetByID(context.Context, store.Tx, uuid.UUID) (*auth.Session, error) {
	return nil, errors.New("connection refused")
}

func TestSessionService_CreateSession(t *testing.T) {
	ctx := context.Background()
	now := t0.Add(5 * time.Minute)

	t.Run("defaults expiry to validity period", func(t *testing.T) {
		f := newSessionFixture(t, now)

		s, err := f.svc.CreateSession(ctx, f.user, auth.CreateSessionOptions{})
		require.NoError(t, err)
		assert.Equal(t, now, s.CreatedAt)
		assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
		assert.Equal(t, f.user.ID, s.UserID)

		stored, ok := f.sessions.Stored(s.ID)
		require.True(t, ok)
		assert.Equal(t, *s, stored)
		assert.Equal(t, []store.Tx{nil}, f.sessions.Txs)
	})

	t.Run("explicit expiry and transaction", func(t *testing.T) {
		f := newSessionFixture(t, now)
		tx := &storetest.Tx{ID: 7}
		expires := now.Add(10 * time.Minute)

		s, err := f.svc.CreateSession(ctx, f.user, auth.CreateSessionOptions{ExpiresAt: expires, Tx: tx})
		require.NoError(t, err)
		assert.Equal(t, expires, s.ExpiresAt)
		require.Len(t, f.sessions.Txs, 1)
		assert.Same(t, tx, f.sessions.Txs[0])
	})

	t.Run("unsaved user", func(t *testing.T) {
		f := newSessionFixture(t, now)

		_, err := f.svc.CreateSession(ctx, &auth.User{Username: "ghost"}, auth.CreateSessionOptions{})
		errutil.AssertErrorCode(t, err, auth.CodeSessionUserUnsaved)
		_, err = f.svc.CreateSession(ctx, nil, auth.CreateSessionOptions{})
		errutil.AssertErrorCode(t, err, auth.CodeSessionUserUnsaved)
		assert.Zero(t, f.sessions.Writes)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newSessionFixture(t, now)
		f.sessions.CreateErr = errors.New("disk full")

		_, err := f.svc.CreateSession(ctx, f.user, auth.CreateSessionOptions{})
		errutil.AssertErrorCode(t, err, auth.CodeSessionCreateFailed)
	})
}

func TestSessionService_EndSession(t *testing.T) {
	ctx := context.Background()
	now := t0.Add(10 * time.Minute)

	f := newSessionFixture(t, now)
	s, err := f.svc.CreateSession(ctx, f.user, auth.CreateSessionOptions{})
	require.NoError(t, err)

	require.NoError(t, f.svc.EndSession(ctx, s.ID.String(), auth.EndSessionOptions{}))

	_, err = f.svc.AuthenticateSession(ctx, s.ID.String(), now)
	errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)

	err = f.svc.EndSession(ctx, s.ID.String(), auth.EndSessionOptions{})
	errutil.AssertErrorCode(t, err, auth.CodeSessionNotFound)

	err = f.svc.EndSession(ctx, "garbage", auth.EndSessionOptions{})
	errutil.AssertErrorCode(t, err, auth.CodeSessionNotFound)
}

func TestSessionService_EndUserSessions(t *testing.T) {
	ctx := context.Background()
	now := t0.Add(10 * time.Minute)
	f := newSessionFixture(t, now)

	for range 2 {
		_, err := f.svc.CreateSession(ctx, f.user, auth.CreateSessionOptions{})
		require.NoError(t, err)
	}
	other, err := f.svc.CreateSession(ctx, &auth.User{ID: ulid.Make()}, auth.CreateSessionOptions{})
	require.NoError(t, err)

	n, err := f.svc.EndUserSessions(ctx, f.user.ID, auth.EndSessionOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = f.svc.AuthenticateSession(ctx, other.ID.String(), now)
	assert.NoError(t, err)
}

func TestSessionService_Identify(t *testing.T) {
	ctx := context.Background()
	now := t0.Add(10 * time.Minute)

	t.Run("resolves owner", func(t *testing.T) {
		f := newSessionFixture(t, now)
		s, err := f.svc.CreateSession(ctx, f.user, auth.CreateSessionOptions{})
		require.NoError(t, err)

		user, session, err := f.svc.Identify(ctx, s.ID.String(), time.Time{})
		require.NoError(t, err)
		assert.Equal(t, f.user.ID, user.ID)
		assert.Equal(t, s.ID, session.ID)
	})

	t.Run("deleted owner", func(t *testing.T) {
		f := newSessionFixture(t, now)
		s, err := f.svc.CreateSession(ctx, f.user, auth.CreateSessionOptions{})
		require.NoError(t, err)

		deleted := *f.user
		deleted.DeletedAt = &now
		require.NoError(t, f.users.Update(ctx, nil, &deleted))

		_, _, err = f.svc.Identify(ctx, s.ID.String(), now)
		errutil.AssertErrorCode(t, err, auth.CodeUserNotFound)
	})
}
