// internal/pkg/session/types.go
package session

import (
	"time"

	"duka-auth-service/internal/domain/user"
)

// State is the derived lifecycle state of a session at a point in time.
type State string

const (
	StateActive   State = "active"
	StateExpired  State = "expired"
	StateInactive State = "inactive"
)

// Session is one login: a durable record binding the opaque session identifier
// to its owner and the signed tokens issued for it. The tokens never leave the
// server side; clients only ever hold SessionID.
type Session struct {
	SessionID    string    `json:"session_id" db:"session_id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	AccessToken  string    `json:"-" db:"access_token"`
	RefreshToken string    `json:"-" db:"refresh_token"`
	IPAddress    string    `json:"ip_address" db:"ip_address"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	ExpiresAt    time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// StateAt derives the lifecycle state at the given instant. Revocation is
// terminal: an inactive session stays inactive regardless of its expiry.
func (s *Session) StateAt(now time.Time) State {
	if !s.IsActive {
		return StateInactive
	}
	if now.After(s.ExpiresAt) {
		return StateExpired
	}
	return StateActive
}

// VerifiedSession is what verification and creation return to callers. Only the
// opaque session identifier crosses the boundary, never token material.
type VerifiedSession struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	User      user.Info `json:"user"`
}

// RenewedSession is the result of an explicit access-token renewal.
type RenewedSession struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Info is the read-only listing entry for session-management UIs.
type Info struct {
	SessionID string    `json:"session_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ListInfo projects the session for listing; token material excluded.
func (s *Session) ListInfo() Info {
	return Info{
		SessionID: s.SessionID,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
