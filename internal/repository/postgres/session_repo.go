// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	xerrors "duka-auth-service/internal/pkg/errors"
	"duka-auth-service/internal/pkg/session"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository is the PostgreSQL session.Store adapter. Conflicting writes
// to the same row are serialized by row-level locking in the database; the
// repository itself holds no locks.
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Insert(ctx context.Context, sess *session.Session) error {
	query := `
		INSERT INTO sessions (
			session_id, user_id, access_token, refresh_token,
			ip_address, user_agent, is_active, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		sess.SessionID, sess.UserID, sess.AccessToken, sess.RefreshToken,
		sess.IPAddress, sess.UserAgent, sess.IsActive, sess.ExpiresAt,
	).Scan(&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

func (r *SessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*session.Session, error) {
	query := `
		SELECT session_id, user_id, access_token, refresh_token,
		       ip_address, user_agent, is_active, expires_at, created_at, updated_at
		FROM sessions
		WHERE session_id = $1
	`

	var sess session.Session
	err := r.db.QueryRow(ctx, query, sessionID).Scan(
		&sess.SessionID, &sess.UserID, &sess.AccessToken, &sess.RefreshToken,
		&sess.IPAddress, &sess.UserAgent, &sess.IsActive, &sess.ExpiresAt,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &sess, nil
}

func (r *SessionRepository) FindActiveByUserID(ctx context.Context, userID int64) ([]*session.Session, error) {
	query := `
		SELECT session_id, user_id, access_token, refresh_token,
		       ip_address, user_agent, is_active, expires_at, created_at, updated_at
		FROM sessions
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		var sess session.Session
		if err := rows.Scan(
			&sess.SessionID, &sess.UserID, &sess.AccessToken, &sess.RefreshToken,
			&sess.IPAddress, &sess.UserAgent, &sess.IsActive, &sess.ExpiresAt,
			&sess.CreatedAt, &sess.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &sess)
	}

	return sessions, rows.Err()
}

func (r *SessionRepository) UpdateAccessToken(ctx context.Context, sessionID, accessToken string) error {
	query := `
		UPDATE sessions
		SET access_token = $1, updated_at = NOW()
		WHERE session_id = $2
	`

	tag, err := r.db.Exec(ctx, query, accessToken, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update access token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	query := `
		UPDATE sessions
		SET is_active = FALSE, updated_at = NOW()
		WHERE session_id = $1 AND is_active = TRUE
	`

	// Already-inactive rows match nothing; deactivation stays idempotent.
	if _, err := r.db.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeactivateAllForUser(ctx context.Context, userID int64) error {
	query := `
		UPDATE sessions
		SET is_active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_active = TRUE
	`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to deactivate user sessions: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeactivateExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE sessions
		SET is_active = FALSE, updated_at = NOW()
		WHERE expires_at < $1 AND is_active = TRUE
	`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
