// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/ringdex/ringdex/internal/auth"
	"github.com/ringdex/ringdex/internal/store"
)

var sessionsTable = store.Table{
	Name:    "sessions",
	Columns: []string{"id", "user_id", "expires_at", "ended_at", "deleted_at", "created_at"},
}

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db store.Querier
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db store.Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, tx store.Tx, session *auth.Session) error {
	_, err := store.Use(r.db, tx).Exec(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an active session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, tx store.Tx, id uuid.UUID) (*auth.Session, error) {
	row := store.Use(r.db, tx).QueryRow(ctx, sessionsTable.SelectActive("sessions.id = $1"), id.String())

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(auth.CodeSessionNotFound).
			With("id", id.String()).
			Wrap(store.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by id").
			With("id", id.String()).
			Wrap(err)
	}
	return session, nil
}

// End stamps ended_at on an active session that has not ended yet.
func (r *SessionRepository) End(ctx context.Context, tx store.Tx, id uuid.UUID, endedAt time.Time) error {
	result, err := store.Use(r.db, tx).Exec(ctx,
		sessionsTable.UpdateActive("ended_at = $2", "sessions.id = $1 AND sessions.ended_at IS NULL"),
		id.String(), endedAt)
	if err != nil {
		return oops.Code("SESSION_END_FAILED").
			With("operation", "end session").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(auth.CodeSessionNotFound).
			With("id", id.String()).
			Wrap(store.ErrNotFound)
	}
	return nil
}

// EndByUser stamps ended_at on every active, not yet ended session of a user.
func (r *SessionRepository) EndByUser(ctx context.Context, tx store.Tx, userID ulid.ULID, endedAt time.Time) (int64, error) {
	result, err := store.Use(r.db, tx).Exec(ctx,
		sessionsTable.UpdateActive("ended_at = $2", "sessions.user_id = $1 AND sessions.ended_at IS NULL"),
		userID.String(), endedAt)
	if err != nil {
		return 0, oops.Code("SESSION_END_FAILED").
			With("operation", "end user sessions").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		session auth.Session
		id      string
		userID  string
	)
	var endedAt, deletedAt *time.Time
	if err := row.Scan(&id, &userID, &session.ExpiresAt, &endedAt, &deletedAt, &session.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if session.ID, err = uuid.Parse(id); err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").With("id", id).Wrap(err)
	}
	if session.UserID, err = ulid.Parse(userID); err != nil {
		return nil, oops.Code("SESSION_INVALID_USER_ID").With("user_id", userID).Wrap(err)
	}
	session.EndedAt = endedAt
	session.DeletedAt = deletedAt
	return &session, nil
}

var _ auth.SessionRepository = (*SessionRepository)(nil)
