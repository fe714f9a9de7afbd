// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"

	"duka-auth-service/internal/domain/auth"
	"duka-auth-service/internal/domain/user"
	xerrors "duka-auth-service/internal/pkg/errors"
	"duka-auth-service/internal/pkg/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService layers credential login on top of the session manager. All
// session lifecycle logic stays in the manager; this service only decides
// whether a login attempt is allowed to open one.
type AuthService struct {
	users    user.Directory
	sessions *session.Manager
	logger   *zap.Logger
}

func NewAuthService(users user.Directory, sessions *session.Manager, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// Login authenticates a user with email/password and opens a session.
// Credential failures come back uniformly as ErrUnauthorized so the response
// never reveals whether the account exists.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*session.VerifiedSession, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", xerrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", xerrors.ErrUnauthorized)
	}

	if !u.IsActive {
		return nil, xerrors.ErrUserInactive
	}

	verified, err := s.sessions.CreateSession(ctx, u.ID, req.IPAddress, req.UserAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", u.ID),
		zap.String("ip", req.IPAddress),
	)

	return verified, nil
}

// Logout revokes the current session. Idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.DeactivateSession(ctx, sessionID)
}

// LogoutAll revokes every session of the user (logout-everywhere).
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	return s.sessions.DeactivateAllUserSessions(ctx, userID)
}

// RenewSession explicitly renews the session's access token.
func (s *AuthService) RenewSession(ctx context.Context, sessionID string) (*session.RenewedSession, error) {
	return s.sessions.RenewAccessToken(ctx, sessionID)
}

// ListSessions returns the user's active sessions for account management.
func (s *AuthService) ListSessions(ctx context.Context, userID int64) ([]session.Info, error) {
	return s.sessions.GetUserSessions(ctx, userID)
}

// GetMe returns the current user's projection.
func (s *AuthService) GetMe(ctx context.Context, userID int64) (*user.Info, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	info := u.Info()
	return &info, nil
}

// CleanupSessions sweeps expired sessions; wired to an admin endpoint so an
// external scheduler can drive it.
func (s *AuthService) CleanupSessions(ctx context.Context) (int64, error) {
	return s.sessions.CleanupExpiredSessions(ctx)
}
