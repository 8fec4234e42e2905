// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/clock"
	"github.com/ringdex/ringdex/internal/store"
)

// DefaultMaxLoginAttempts is the number of consecutive failures that locks an account.
const DefaultMaxLoginAttempts = 3

// dummyPasswordHash is verified against when no user matches so that unknown
// emails take as long as wrong passwords. It never matches any password.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Policy holds the login rules.
type Policy struct {
	// MaxLoginAttempts locks the account when the failure counter reaches it.
	MaxLoginAttempts int
	// PasswordExpiry is how long a newly set password stays valid. Zero sets
	// no expiry time; an expiry time already stored is still enforced.
	PasswordExpiry time.Duration
	// Limits constrains registration and password changes.
	Limits Limits
}

// RegisterInput is the raw data for a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Authenticator verifies credentials and drives the lockout state machine.
type Authenticator struct {
	users      UserRepository
	sessions   *SessionService
	hasher     PasswordHasher
	transactor store.Transactor
	policy     Policy
	clock      clock.Clock
	logger     *slog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(
	users UserRepository,
	sessions *SessionService,
	hasher PasswordHasher,
	transactor store.Transactor,
	policy Policy,
	opts ...Option,
) (*Authenticator, error) {
	switch {
	case users == nil:
		return nil, oops.Errorf("users repository is required")
	case sessions == nil:
		return nil, oops.Errorf("session service is required")
	case hasher == nil:
		return nil, oops.Errorf("password hasher is required")
	case transactor == nil:
		return nil, oops.Errorf("transactor is required")
	}
	if policy.MaxLoginAttempts <= 0 {
		policy.MaxLoginAttempts = DefaultMaxLoginAttempts
	}
	if policy.Limits == (Limits{}) {
		policy.Limits = DefaultLimits()
	}

	o := applyOptions(opts)
	return &Authenticator{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		transactor: transactor,
		policy:     policy,
		clock:      o.clock,
		logger:     o.logger,
	}, nil
}

// Login checks an email and password.
//
// A locked account fails with AUTH_LOGIN_DISABLED before the password is
// looked at. A wrong password advances the failure counter, possibly locking
// the account, and the new state is saved before the call fails. A correct
// password resets the counter and stamps the login time, which is saved even
// when the login is then rejected because the password has expired.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*User, error) {
	normalised, err := NormaliseEmail(email)
	if err != nil {
		return nil, a.rejectUnknown(password, email)
	}

	user, err := a.users.GetByEmail(ctx, nil, normalised)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, a.rejectUnknown(password, normalised)
		}
		recordLogin(LoginError)
		return nil, oops.Code(CodeLoginFailed).
			With("operation", "get user by email").
			Wrap(err)
	}

	if user.IsLocked() {
		recordLogin(LoginDisabled)
		return nil, oops.Code(CodeLoginDisabled).
			With("user_id", user.ID.String()).
			Errorf("login disabled after too many failed attempts")
	}

	valid, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		recordLogin(LoginError)
		return nil, oops.Code(CodeLoginFailed).
			With("operation", "verify password").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	now := a.clock.Now()
	if !valid {
		return nil, a.failLogin(ctx, user, now)
	}

	user.RecordSuccess(now)
	if a.hasher.NeedsUpgrade(user.PasswordHash) {
		if upgraded, hashErr := a.hasher.Hash(password); hashErr == nil {
			user.PasswordHash = upgraded
		} else {
			a.logger.WarnContext(ctx, "password hash upgrade failed",
				"user_id", user.ID.String(),
				"error", hashErr)
		}
	}
	if err := a.users.Update(ctx, nil, user); err != nil {
		recordLogin(LoginError)
		return nil, oops.Code(CodeLoginFailed).
			With("operation", "record login").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	if user.PasswordExpired(now) {
		recordLogin(LoginPasswordExpired)
		a.logger.InfoContext(ctx, "login with expired password",
			"user_id", user.ID.String(),
			"password_expires_at", *user.PasswordExpiresAt)
		return nil, oops.Code(CodePasswordExpired).
			With("user_id", user.ID.String()).
			Errorf("password has expired")
	}

	recordLogin(LoginSuccess)
	return user, nil
}

// failLogin records a wrong password and returns the error for the caller.
func (a *Authenticator) failLogin(ctx context.Context, user *User, now time.Time) error {
	locked := user.RecordFailure(now, a.policy.MaxLoginAttempts)
	if err := a.users.Update(ctx, nil, user); err != nil {
		recordLogin(LoginError)
		return oops.Code(CodeLoginFailed).
			With("operation", "record failed login").
			With("user_id", user.ID.String()).
			Wrap(err)
	}

	if locked {
		recordLogin(LoginLockedOut)
		a.logger.WarnContext(ctx, "account locked after failed logins",
			"user_id", user.ID.String(),
			"attempts", user.LoginAttemptCount)
		return oops.Code(CodeAttemptsExceeded).
			With("user_id", user.ID.String()).
			Errorf("too many failed login attempts")
	}

	recordLogin(LoginBadPassword)
	return oops.Code(CodeInvalidCredentials).Errorf(credentialsMessage)
}

// StartSession logs in and opens a session for the user.
func (a *Authenticator) StartSession(ctx context.Context, email, password string) (*User, *Session, error) {
	user, err := a.Login(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	session, err := a.sessions.CreateSession(ctx, user, CreateSessionOptions{})
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Register normalises and validates the input, hashes the password and
// creates an active account.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (*User, error) {
	username, err := NormaliseUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := NormaliseEmail(in.Email)
	if err != nil {
		return nil, err
	}

	limits := a.policy.Limits
	if err := limits.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := limits.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := limits.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	user, err := NewUser(username, email, hash, a.clock.Now(), a.policy.PasswordExpiry)
	if err != nil {
		return nil, err
	}
	if err := a.users.Create(ctx, nil, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, oops.Code(CodeUserExists).
				With("username", username).
				Errorf("username or email already registered")
		}
		return nil, oops.Code("USER_CREATE_FAILED").Wrap(err)
	}

	a.logger.InfoContext(ctx, "user registered", "user_id", user.ID.String())
	return user, nil
}

// SetPassword replaces a user's password, clears any lockout and ends every
// current session, all in one transaction.
func (a *Authenticator) SetPassword(ctx context.Context, userID ulid.ULID, password string) error {
	if err := a.policy.Limits.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	now := a.clock.Now()
	return a.transactor.InTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		user, err := a.getUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		user.SetPasswordHash(hash, now, a.policy.PasswordExpiry)
		user.Unlock(now)
		if err := a.users.Update(ctx, tx, user); err != nil {
			return oops.Code("USER_UPDATE_FAILED").
				With("user_id", userID.String()).
				Wrap(err)
		}

		_, err = a.sessions.EndUserSessions(ctx, userID, EndSessionOptions{EndedAt: now, Tx: tx})
		return err
	})
}

// Unlock clears a lockout and the failure counter.
func (a *Authenticator) Unlock(ctx context.Context, userID ulid.ULID) error {
	user, err := a.getUser(ctx, nil, userID)
	if err != nil {
		return err
	}

	user.Unlock(a.clock.Now())
	if err := a.users.Update(ctx, nil, user); err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("user_id", userID.String()).
			Wrap(err)
	}

	a.logger.InfoContext(ctx, "user unlocked", "user_id", userID.String())
	return nil
}

func (a *Authenticator) getUser(ctx context.Context, tx store.Tx, id ulid.ULID) (*User, error) {
	user, err := a.users.GetByID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, oops.Code(CodeUserNotFound).
				With("user_id", id.String()).
				Errorf("user not found")
		}
		return nil, oops.Code("USER_QUERY_FAILED").
			With("user_id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// rejectUnknown pays for a verification against the dummy hash so that an
// unknown account costs as much as a wrong password.
func (a *Authenticator) rejectUnknown(password, email string) error {
	_, _ = a.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing only
	recordLogin(LoginUnknownUser)
	return unknownUser(email)
}

// unknownUser carries the same public message as a wrong password.
func unknownUser(email string) error {
	return oops.Code(CodeUserNotFound).
		With("email", email).
		Errorf(credentialsMessage)
}
