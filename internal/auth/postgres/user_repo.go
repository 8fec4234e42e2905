// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/store"
)

var usersTable = store.Table{
	Name: "users",
	Columns: []string{
		"id", "username", "email", "password_hash", "password_set_at",
		"password_expires_at", "last_login_at", "login_attempt_count",
		"account_state", "deleted_at", "created_at", "modified_at",
	},
}

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db store.Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, tx store.Tx, user *auth.User) error {
	_, err := store.Use(r.db, tx).Exec(ctx, `
		INSERT INTO users (
			id, username, email, password_hash, password_set_at,
			password_expires_at, last_login_at, login_attempt_count,
			account_state, created_at, modified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.PasswordSetAt,
		user.PasswordExpiresAt,
		user.LastLoginAt,
		user.LoginAttemptCount,
		string(user.State),
		user.CreatedAt,
		user.ModifiedAt,
	)
	if constraint, ok := store.IsUniqueViolation(err); ok {
		return oops.Code(auth.CodeUserExists).
			With("constraint", constraint).
			With("username", user.Username).
			Wrap(store.ErrConflict)
	}
	if err != nil {
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an active user by ID.
func (r *UserRepository) GetByID(ctx context.Context, tx store.Tx, id ulid.ULID) (*auth.User, error) {
	row := store.Use(r.db, tx).QueryRow(ctx, usersTable.SelectActive("users.id = $1"), id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeUserNotFound).
			With("id", id.String()).
			Wrap(store.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves an active user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, tx store.Tx, email string) (*auth.User, error) {
	row := store.Use(r.db, tx).QueryRow(ctx, usersTable.SelectActive("LOWER(users.email) = LOWER($1)"), email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeUserNotFound).
			With("email", email).
			Wrap(store.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// Update writes every mutable column of an active user.
func (r *UserRepository) Update(ctx context.Context, tx store.Tx, user *auth.User) error {
	result, err := store.Use(r.db, tx).Exec(ctx, usersTable.UpdateActive(`
			username = $2,
			email = $3,
			password_hash = $4,
			password_set_at = $5,
			password_expires_at = $6,
			last_login_at = $7,
			login_attempt_count = $8,
			account_state = $9,
			deleted_at = $10,
			modified_at = $11`,
		"users.id = $1"),
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.PasswordSetAt,
		user.PasswordExpiresAt,
		user.LastLoginAt,
		user.LoginAttemptCount,
		string(user.State),
		user.DeletedAt,
		user.ModifiedAt,
	)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", user.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(auth.CodeUserNotFound).
			With("id", user.ID.String()).
			Wrap(store.ErrNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		user  auth.User
		id    string
		state string
	)
	var passwordExpiresAt, lastLoginAt, deletedAt *time.Time
	if err := row.Scan(
		&id,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.PasswordSetAt,
		&passwordExpiresAt,
		&lastLoginAt,
		&user.LoginAttemptCount,
		&state,
		&deletedAt,
		&user.CreatedAt,
		&user.ModifiedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := ulid.Parse(id)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").With("id", id).Wrap(err)
	}
	user.ID = parsed
	user.State = auth.AccountState(state)
	user.PasswordExpiresAt = passwordExpiresAt
	user.LastLoginAt = lastLoginAt
	user.DeletedAt = deletedAt
	return &user, nil
}

var _ auth.UserRepository = (*UserRepository)(nil)
