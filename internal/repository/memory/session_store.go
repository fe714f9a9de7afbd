// internal/repository/memory/session_store.go
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	xerrors "duka-auth-service/internal/pkg/errors"
	"duka-auth-service/internal/pkg/session"
)

// SessionStore is a mutex-guarded in-memory session.Store, used by tests and
// for running the service without a database.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session.Session),
	}
}

func (s *SessionStore) Insert(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.SessionID]; exists {
		return fmt.Errorf("session %q already exists", sess.SessionID)
	}

	cp := *sess
	s.sessions[sess.SessionID] = &cp
	return nil
}

func (s *SessionStore) FindBySessionID(ctx context.Context, sessionID string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}

	cp := *sess
	return &cp, nil
}

func (s *SessionStore) FindActiveByUserID(ctx context.Context, userID int64) ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*session.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive {
			cp := *sess
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *SessionStore) UpdateAccessToken(ctx context.Context, sessionID, accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return xerrors.ErrNotFound
	}

	sess.AccessToken = accessToken
	sess.UpdatedAt = time.Now()
	return nil
}

func (s *SessionStore) Deactivate(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || !sess.IsActive {
		return nil
	}

	sess.IsActive = false
	sess.UpdatedAt = time.Now()
	return nil
}

func (s *SessionStore) DeactivateAllForUser(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive {
			sess.IsActive = false
			sess.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (s *SessionStore) DeactivateExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, sess := range s.sessions {
		if sess.IsActive && sess.ExpiresAt.Before(now) {
			sess.IsActive = false
			sess.UpdatedAt = time.Now()
			count++
		}
	}
	return count, nil
}
