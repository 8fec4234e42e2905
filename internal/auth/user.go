// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/store"
)

// AccountState is the lockout state of a user account.
type AccountState string

// Account states.
const (
	AccountActive AccountState = "active"
	AccountLocked AccountState = "locked"
)

// User is a registered account.
type User struct {
	ID                ulid.ULID
	Username          string
	Email             string
	PasswordHash      string
	PasswordSetAt     time.Time
	PasswordExpiresAt *time.Time
	LastLoginAt       *time.Time
	LoginAttemptCount int
	State             AccountState
	DeletedAt         *time.Time
	CreatedAt         time.Time
	ModifiedAt        time.Time
}

// NewUser creates an unsaved active user. username and email must already be
// normalised and validated. A zero passwordExpiry means the password never expires.
func NewUser(username, email, passwordHash string, now time.Time, passwordExpiry time.Duration) (*User, error) {
	if username == "" || email == "" {
		return nil, oops.Code("USER_INVALID").Errorf("username and email are required")
	}
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID").Errorf("password hash cannot be empty")
	}

	u := &User{
		ID:         ulid.Make(),
		Username:   username,
		Email:      email,
		State:      AccountActive,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	u.SetPasswordHash(passwordHash, now, passwordExpiry)
	return u, nil
}

// IsLocked reports whether logins are disabled after too many failures.
func (u *User) IsLocked() bool {
	return u.State == AccountLocked
}

// IsDeleted reports whether the user has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// RecordFailure counts a failed password check. It locks the account once the
// counter reaches maxAttempts and reports whether that happened.
func (u *User) RecordFailure(now time.Time, maxAttempts int) bool {
	u.LoginAttemptCount++
	u.ModifiedAt = now
	if maxAttempts > 0 && u.LoginAttemptCount >= maxAttempts {
		u.State = AccountLocked
		return true
	}
	return false
}

// RecordSuccess resets the failure counter and stamps the login time.
func (u *User) RecordSuccess(now time.Time) {
	u.LoginAttemptCount = 0
	u.LastLoginAt = &now
	u.ModifiedAt = now
}

// Unlock clears the lockout and the failure counter.
func (u *User) Unlock(now time.Time) {
	u.State = AccountActive
	u.LoginAttemptCount = 0
	u.ModifiedAt = now
}

// SetPasswordHash replaces the password and restarts its expiry period.
func (u *User) SetPasswordHash(hash string, now time.Time, passwordExpiry time.Duration) {
	u.PasswordHash = hash
	u.PasswordSetAt = now
	u.PasswordExpiresAt = nil
	if passwordExpiry > 0 {
		expires := now.Add(passwordExpiry)
		u.PasswordExpiresAt = &expires
	}
	u.ModifiedAt = now
}

// PasswordExpired reports whether the password expired strictly before now.
func (u *User) PasswordExpired(now time.Time) bool {
	return u.PasswordExpiresAt != nil && u.PasswordExpiresAt.Before(now)
}

// UserRepository manages user persistence. Lookups never return soft-deleted
// users; they fail with store.ErrNotFound instead. Every method runs inside tx
// when one is given.
type UserRepository interface {
	// Create stores a new user.
	Create(ctx context.Context, tx store.Tx, user *User) error

	// GetByID retrieves an active user by ID.
	GetByID(ctx context.Context, tx store.Tx, id ulid.ULID) (*User, error)

	// GetByEmail retrieves an active user by normalised email.
	GetByEmail(ctx context.Context, tx store.Tx, email string) (*User, error)

	// Update writes every mutable field of an active user, including DeletedAt.
	Update(ctx context.Context, tx store.Tx, user *User) error
}
