// internal/pkg/session/store.go
package session

import (
	"context"
	"time"
)

// Store is the persistence contract for session rows. Pure data access, no
// business rules. Deactivations are idempotent: deactivating a session that is
// already inactive is a no-op, not an error.
type Store interface {
	Insert(ctx context.Context, s *Session) error
	FindBySessionID(ctx context.Context, sessionID string) (*Session, error)
	FindActiveByUserID(ctx context.Context, userID int64) ([]*Session, error)
	UpdateAccessToken(ctx context.Context, sessionID, accessToken string) error
	Deactivate(ctx context.Context, sessionID string) error
	DeactivateAllForUser(ctx context.Context, userID int64) error
	DeactivateExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}
