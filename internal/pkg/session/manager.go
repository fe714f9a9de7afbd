// internal/pkg/session/manager.go
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"duka-auth-service/internal/domain/user"
	xerrors "duka-auth-service/internal/pkg/errors"
	"duka-auth-service/internal/pkg/token"

	"go.uber.org/zap"
)

// Manager orchestrates the session lifecycle: creation, verification with
// transparent access-token renewal, explicit renewal, revocation and the expiry
// sweep. It is the only component with business rules; the Store and the token
// codec stay mechanism-only.
type Manager struct {
	store  Store
	users  user.Directory
	codec  *token.Codec
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(store Store, users user.Directory, codec *token.Codec, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		users:  users,
		codec:  codec,
		logger: logger,
		now:    time.Now,
	}
}

// CreateSession opens a new session for the user after a successful login.
// The returned projection carries only the opaque session identifier; the
// signed tokens stay server-side.
func (m *Manager) CreateSession(ctx context.Context, userID int64, ipAddress, userAgent string) (*VerifiedSession, error) {
	u, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !u.IsActive {
		return nil, xerrors.ErrUserInactive
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	accessToken, err := m.codec.SignAccessToken(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := m.codec.SignRefreshToken(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	now := m.now()
	sess := &Session{
		SessionID:    sessionID,
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		IsActive:     true,
		ExpiresAt:    now.Add(m.codec.RefreshTTL()),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := m.store.Insert(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	// Last-login bookkeeping lives on the user side; log but don't fail.
	if err := m.users.TouchLastLogin(ctx, userID); err != nil {
		m.logger.Warn("failed to update last login",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	return &VerifiedSession{
		SessionID: sess.SessionID,
		ExpiresAt: sess.ExpiresAt,
		User:      u.Info(),
	}, nil
}

// VerifySession resolves an opaque session identifier to its identity
// projection. Every authentication failure (unknown id, revoked, expired,
// inactive user, unrenewable token) comes back as a nil result, never an
// error; errors are reserved for infrastructure failures.
//
// An expired stored access token is renewed in place, transparently to the
// caller. Renewal never extends the session's absolute expiry.
func (m *Manager) VerifySession(ctx context.Context, sessionID string) (*VerifiedSession, error) {
	sess, err := m.store.FindBySessionID(ctx, sessionID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	switch sess.StateAt(m.now()) {
	case StateInactive:
		return nil, nil
	case StateExpired:
		// Lazy expiry: materialize the terminal state on read.
		if err := m.store.Deactivate(ctx, sess.SessionID); err != nil {
			m.logger.Warn("failed to deactivate expired session", zap.Error(err))
		}
		return nil, nil
	}

	u, err := m.users.FindByID(ctx, sess.UserID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			m.deactivateQuietly(ctx, sess.SessionID, "user no longer exists")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !u.IsActive {
		m.deactivateQuietly(ctx, sess.SessionID, "user is inactive")
		return nil, nil
	}

	if _, err := m.codec.Verify(sess.AccessToken, token.KindAccess); err != nil {
		// Silent renewal: sign a replacement bound to the same identity pair.
		newAccess, signErr := m.codec.SignAccessToken(sess.UserID, sess.SessionID)
		if signErr != nil {
			m.deactivateQuietly(ctx, sess.SessionID, "access token renewal signing failed")
			return nil, nil
		}
		if persistErr := m.store.UpdateAccessToken(ctx, sess.SessionID, newAccess); persistErr != nil {
			// An unpersisted token must not be trusted; fail this call and let
			// the next verification retry the renewal.
			m.logger.Warn("failed to persist renewed access token", zap.Error(persistErr))
			return nil, nil
		}
	}

	return &VerifiedSession{
		SessionID: sess.SessionID,
		ExpiresAt: sess.ExpiresAt,
		User:      u.Info(),
	}, nil
}

// RenewAccessToken is the explicit variant of the verification path's silent
// renewal. It honors the same expiry rules and never moves the session's
// absolute expiry.
func (m *Manager) RenewAccessToken(ctx context.Context, sessionID string) (*RenewedSession, error) {
	sess, err := m.store.FindBySessionID(ctx, sessionID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	switch sess.StateAt(m.now()) {
	case StateInactive:
		return nil, xerrors.ErrSessionNotFound
	case StateExpired:
		if err := m.store.Deactivate(ctx, sess.SessionID); err != nil {
			m.logger.Warn("failed to deactivate expired session", zap.Error(err))
		}
		return nil, xerrors.ErrSessionExpired
	}

	newAccess, err := m.codec.SignAccessToken(sess.UserID, sess.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	if err := m.store.UpdateAccessToken(ctx, sess.SessionID, newAccess); err != nil {
		return nil, fmt.Errorf("failed to persist access token: %w", err)
	}

	return &RenewedSession{
		SessionID: sess.SessionID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// DeactivateSession soft-revokes a single session. Idempotent.
func (m *Manager) DeactivateSession(ctx context.Context, sessionID string) error {
	if err := m.store.Deactivate(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	return nil
}

// DeactivateAllUserSessions soft-revokes every session of a user
// (logout-everywhere). Idempotent.
func (m *Manager) DeactivateAllUserSessions(ctx context.Context, userID int64) error {
	if err := m.store.DeactivateAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to deactivate user sessions: %w", err)
	}
	return nil
}

// CleanupExpiredSessions deactivates every active session past its absolute
// expiry and returns the number of rows affected. Intended to run on an
// external schedule.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	count, err := m.store.DeactivateExpiredBefore(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}
	if count > 0 {
		m.logger.Info("expired sessions swept", zap.Int64("count", count))
	}
	return count, nil
}

// GetUserSessions lists the user's active sessions for account-management UIs.
func (m *Manager) GetUserSessions(ctx context.Context, userID int64) ([]Info, error) {
	sessions, err := m.store.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.ListInfo())
	}
	return infos, nil
}

func (m *Manager) deactivateQuietly(ctx context.Context, sessionID, reason string) {
	if err := m.store.Deactivate(ctx, sessionID); err != nil {
		m.logger.Warn("failed to deactivate session",
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
}

// generateSessionID returns 256 bits from a CSPRNG, URL-safe encoded. Session
// identifiers are the sole bearer credential and must never be guessable.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
