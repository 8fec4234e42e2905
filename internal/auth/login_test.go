// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/auth/authtest"
	"github.com/ringdex/ringdex/internal/clock"
	"github.com/ringdex/ringdex/internal/store"
	"github.com/ringdex/ringdex/internal/store/storetest"
	"github.com/ringdex/ringdex/pkg/errutil"
)

type loginFixture struct {
	users      *authtest.UserRepository
	sessions   *authtest.SessionRepository
	hasher     *authtest.PlainHasher
	transactor *storetest.Transactor
	sessionSvc *auth.SessionService
	auth       *auth.Authenticator
	user       *auth.User
	now        time.Time
}

func newLoginFixture(t *testing.T, policy auth.Policy) *loginFixture {
	t.Helper()
	now := t0.Add(48 * time.Hour)

	user, err := auth.NewUser("alice", "alice@example.org", "plain:correct-horse", t0, policy.PasswordExpiry)
	require.NoError(t, err)

	f := &loginFixture{
		users:      authtest.NewUserRepository(user),
		sessions:   authtest.NewSessionRepository(),
		hasher:     &authtest.PlainHasher{},
		transactor: &storetest.Transactor{},
		user:       user,
		now:        now,
	}
	f.sessionSvc, err = auth.NewSessionService(f.users, f.sessions, time.Hour, auth.WithClock(clock.Fixed(now)))
	require.NoError(t, err)
	f.auth, err = auth.NewAuthenticator(f.users, f.sessionSvc, f.hasher, f.transactor, policy, auth.WithClock(clock.Fixed(now)))
	require.NoError(t, err)
	return f
}

func (f *loginFixture) stored(t *testing.T) auth.User {
	t.Helper()
	u, ok := f.users.Stored(f.user.ID)
	require.True(t, ok)
	return u
}

func TestNewAuthenticator_RequiresDependencies(t *testing.T) {
	users := authtest.NewUserRepository()
	sessions, err := auth.NewSessionService(users, authtest.NewSessionRepository(), time.Hour)
	require.NoError(t, err)
	hasher := &authtest.PlainHasher{}
	tr := &storetest.Transactor{}

	_, err = auth.NewAuthenticator(nil, sessions, hasher, tr, auth.Policy{})
	assert.Error(t, err)
	_, err = auth.NewAuthenticator(users, nil, hasher, tr, auth.Policy{})
	assert.Error(t, err)
	_, err = auth.NewAuthenticator(users, sessions, nil, tr, auth.Policy{})
	assert.Error(t, err)
	_, err = auth.NewAuthenticator(users, sessions, hasher, nil, auth.Policy{})
	assert.Error(t, err)
}

func TestAuthenticator_LoginSuccess(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{MaxLoginAttempts: 3})
	f.user.LoginAttemptCount = 2
	require.NoError(t, f.users.Update(context.Background(), nil, f.user))

	user, err := f.auth.Login(context.Background(), "  ALICE@example.org ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, user.ID)

	stored := f.stored(t)
	assert.Zero(t, stored.LoginAttemptCount)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, f.now, *stored.LastLoginAt)
	assert.Equal(t, f.now, stored.ModifiedAt)
}

func TestAuthenticator_LoginUnknownUser(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{})

	_, unknownErr := f.auth.Login(context.Background(), "nobody@example.org", "correct-horse")
	errutil.AssertErrorCode(t, unknownErr, auth.CodeUserNotFound)
	assert.Equal(t, 1, f.hasher.Verified, "unknown users still pay for a verification")

	_, badErr := f.auth.Login(context.Background(), "alice@example.org", "wrong")
	errutil.AssertErrorCode(t, badErr, auth.CodeInvalidCredentials)
	assert.Equal(t, badErr.Error(), unknownErr.Error(), "public messages must not reveal which one failed")

	_, err := f.auth.Login(context.Background(), "   ", "correct-horse")
	errutil.AssertErrorCode(t, err, auth.CodeUserNotFound)
	assert.Equal(t, 3, f.hasher.Verified, "unparseable emails pay for a verification too")
	assert.Equal(t, badErr.Error(), err.Error())
}

func TestAuthenticator_LockoutAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t, auth.Policy{MaxLoginAttempts: 3})

	_, err := f.auth.Login(ctx, "alice@example.org", "wrong")
	errutil.AssertErrorCode(t, err, auth.CodeInvalidCredentials)
	_, err = f.auth.Login(ctx, "alice@example.org", "wrong")
	errutil.AssertErrorCode(t, err, auth.CodeInvalidCredentials)
	afterTwo := f.stored(t)
	assert.Equal(t, 2, afterTwo.LoginAttemptCount)
	assert.False(t, afterTwo.IsLocked())

	before := testutil.ToFloat64(auth.LoginAttempts.WithLabelValues(auth.LoginLockedOut))
	_, err = f.auth.Login(ctx, "alice@example.org", "wrong")
	errutil.AssertErrorCode(t, err, auth.CodeAttemptsExceeded)
	assert.Equal(t, before+1, testutil.ToFloat64(auth.LoginAttempts.WithLabelValues(auth.LoginLockedOut)))

	stored := f.stored(t)
	assert.True(t, stored.IsLocked())
	assert.Equal(t, 3, stored.LoginAttemptCount)
	assert.Equal(t, f.now, stored.ModifiedAt)

	verified := f.hasher.Verified
	_, err = f.auth.Login(ctx, "alice@example.org", "correct-horse")
	errutil.AssertErrorCode(t, err, auth.CodeLoginDisabled)
	assert.Equal(t, 3, f.stored(t).LoginAttemptCount, "locked login leaves the counter alone")
	assert.Equal(t, verified, f.hasher.Verified, "locked accounts are rejected before verification")
}

func TestAuthenticator_ExpiredPasswordStillRecordsLogin(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{MaxLoginAttempts: 3, PasswordExpiry: 24 * time.Hour})
	f.user.LoginAttemptCount = 1
	require.NoError(t, f.users.Update(context.Background(), nil, f.user))

	_, err := f.auth.Login(context.Background(), "alice@example.org", "correct-horse")
	errutil.AssertErrorCode(t, err, auth.CodePasswordExpired)

	stored := f.stored(t)
	assert.Zero(t, stored.LoginAttemptCount)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, f.now, *stored.LastLoginAt)
}

func TestAuthenticator_StoredExpiryEnforcedWithoutPolicy(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{})
	stale := f.now.Add(-time.Second)
	f.user.PasswordExpiresAt = &stale
	require.NoError(t, f.users.Update(context.Background(), nil, f.user))

	_, err := f.auth.Login(context.Background(), "alice@example.org", "correct-horse")
	errutil.AssertErrorCode(t, err, auth.CodePasswordExpired)
	stored := f.stored(t)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, f.now, *stored.LastLoginAt)
}

func TestAuthenticator_NoExpiryTimeNeverExpires(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{})
	f.user.PasswordExpiresAt = nil
	require.NoError(t, f.users.Update(context.Background(), nil, f.user))

	_, err := f.auth.Login(context.Background(), "alice@example.org", "correct-horse")
	assert.NoError(t, err)
}

func TestAuthenticator_LoginPersistFailure(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{})
	f.users.UpdateErr = errors.New("connection reset")

	_, err := f.auth.Login(context.Background(), "alice@example.org", "wrong")
	errutil.AssertErrorCode(t, err, auth.CodeLoginFailed)

	_, err = f.auth.Login(context.Background(), "alice@example.org", "correct-horse")
	errutil.AssertErrorCode(t, err, auth.CodeLoginFailed)
}

func TestAuthenticator_LoginLookupFailure(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{})
	f.users.GetErr = errors.New("connection reset")

	_, err := f.auth.Login(context.Background(), "alice@example.org", "correct-horse")
	errutil.AssertErrorCode(t, err, auth.CodeLoginFailed)
}

func TestAuthenticator_LoginUpgradesHash(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{})
	f.user.PasswordHash = "plain:correct-horse"
	f.hasher.Upgrade = true

	_, err := f.auth.Login(context.Background(), "alice@example.org", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "plain:correct-horse", f.stored(t).PasswordHash)
	assert.Equal(t, 1, f.users.Updates)
}

func TestAuthenticator_StartSession(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{})

	user, session, err := f.auth.StartSession(context.Background(), "alice@example.org", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, f.now.Add(time.Hour), session.ExpiresAt)

	_, err = f.sessionSvc.AuthenticateSession(context.Background(), session.ID.String(), f.now)
	assert.NoError(t, err)

	_, _, err = f.auth.StartSession(context.Background(), "alice@example.org", "wrong")
	errutil.AssertErrorCode(t, err, auth.CodeInvalidCredentials)
	assert.Equal(t, 1, f.sessions.Writes)
}

func TestAuthenticator_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		in       auth.RegisterInput
		wantCode string
	}{
		{name: "valid", in: auth.RegisterInput{Username: " Bob_1 ", Email: " BOB@example.org ", Password: "long-enough"}},
		{name: "blank username", in: auth.RegisterInput{Username: " ", Email: "bob@example.org", Password: "long-enough"}, wantCode: auth.CodeInvalidUsername},
		{name: "username charset", in: auth.RegisterInput{Username: "bob smith", Email: "bob@example.org", Password: "long-enough"}, wantCode: "USERNAME_INVALID_CHARS"},
		{name: "bad email", in: auth.RegisterInput{Username: "bob", Email: "bob", Password: "long-enough"}, wantCode: "EMAIL_INVALID_FORMAT"},
		{name: "short password", in: auth.RegisterInput{Username: "bob", Email: "bob@example.org", Password: "short"}, wantCode: "PASSWORD_TOO_SHORT"},
		{name: "duplicate email", in: auth.RegisterInput{Username: "bob", Email: "ALICE@example.org", Password: "long-enough"}, wantCode: auth.CodeUserExists},
		{name: "duplicate username", in: auth.RegisterInput{Username: "Alice", Email: "other@example.org", Password: "long-enough"}, wantCode: auth.CodeUserExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoginFixture(t, auth.Policy{PasswordExpiry: time.Hour})

			user, err := f.auth.Register(ctx, tt.in)
			if tt.wantCode != "" {
				errutil.AssertErrorCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "bob_1", user.Username)
			assert.Equal(t, "bob@example.org", user.Email)
			assert.Equal(t, "plain:long-enough", user.PasswordHash)
			require.NotNil(t, user.PasswordExpiresAt)
			assert.Equal(t, f.now.Add(time.Hour), *user.PasswordExpiresAt)

			_, err = f.auth.Login(ctx, "bob@example.org", "long-enough")
			assert.NoError(t, err)
		})
	}
}

func TestAuthenticator_SetPassword(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t, auth.Policy{MaxLoginAttempts: 1, PasswordExpiry: time.Hour})

	session, err := f.sessionSvc.CreateSession(ctx, f.user, auth.CreateSessionOptions{})
	require.NoError(t, err)
	_, err = f.auth.Login(ctx, "alice@example.org", "wrong")
	errutil.AssertErrorCode(t, err, auth.CodeAttemptsExceeded)

	require.NoError(t, f.auth.SetPassword(ctx, f.user.ID, "new-password"))
	require.Len(t, f.transactor.Committed, 1)
	require.NotEmpty(t, f.sessions.Txs)
	assert.Same(t, f.transactor.Committed[0], f.sessions.Txs[len(f.sessions.Txs)-1],
		"sessions are ended inside the password transaction")

	stored := f.stored(t)
	assert.False(t, stored.IsLocked())
	assert.Zero(t, stored.LoginAttemptCount)
	assert.Equal(t, "plain:new-password", stored.PasswordHash)
	assert.Equal(t, f.now, stored.PasswordSetAt)
	require.NotNil(t, stored.PasswordExpiresAt)
	assert.Equal(t, f.now.Add(time.Hour), *stored.PasswordExpiresAt)

	_, err = f.sessionSvc.AuthenticateSession(ctx, session.ID.String(), f.now)
	errutil.AssertErrorCode(t, err, auth.CodeSessionInvalid)

	_, err = f.auth.Login(ctx, "alice@example.org", "new-password")
	assert.NoError(t, err)
}

func TestAuthenticator_SetPasswordFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid password", func(t *testing.T) {
		f := newLoginFixture(t, auth.Policy{})
		err := f.auth.SetPassword(ctx, f.user.ID, "short")
		errutil.AssertErrorCode(t, err, "PASSWORD_TOO_SHORT")
		assert.Empty(t, f.transactor.Begun)
	})

	t.Run("unknown user rolls back", func(t *testing.T) {
		f := newLoginFixture(t, auth.Policy{})
		err := f.auth.SetPassword(ctx, authtestMissingID, "new-password")
		errutil.AssertErrorCode(t, err, auth.CodeUserNotFound)
		assert.Len(t, f.transactor.RolledBack, 1)
	})

	t.Run("update failure rolls back", func(t *testing.T) {
		f := newLoginFixture(t, auth.Policy{})
		f.users.UpdateErr = errors.New("connection reset")
		err := f.auth.SetPassword(ctx, f.user.ID, "new-password")
		errutil.AssertErrorCode(t, err, "USER_UPDATE_FAILED")
		assert.Len(t, f.transactor.RolledBack, 1)
		assert.Empty(t, f.transactor.Committed)
	})
}

func TestAuthenticator_Unlock(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t, auth.Policy{MaxLoginAttempts: 1})

	_, err := f.auth.Login(ctx, "alice@example.org", "wrong")
	errutil.AssertErrorCode(t, err, auth.CodeAttemptsExceeded)

	require.NoError(t, f.auth.Unlock(ctx, f.user.ID))
	unlocked := f.stored(t)
	assert.False(t, unlocked.IsLocked())

	_, err = f.auth.Login(ctx, "alice@example.org", "correct-horse")
	assert.NoError(t, err)

	err = f.auth.Unlock(ctx, authtestMissingID)
	errutil.AssertErrorCode(t, err, auth.CodeUserNotFound)
}

func TestAuthenticator_UnlockRunsAutonomously(t *testing.T) {
	f := newLoginFixture(t, auth.Policy{})
	require.NoError(t, f.auth.Unlock(context.Background(), f.user.ID))
	for _, tx := range f.users.Txs {
		assert.Equal(t, store.Tx(nil), tx)
	}
}
