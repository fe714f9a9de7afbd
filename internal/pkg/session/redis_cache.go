// internal/pkg/session/redis_cache.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a read-through decorator over a Store. Reads try Redis first and
// fall back to the inner store; every write goes to the inner store first and
// then drops the cached row, so a renewal is visible to the very next
// verification on the same session (read-your-writes through the store).
//
// The inner store stays the single source of truth; Redis failures degrade to
// plain store access and are only logged.
type Cache struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(inner Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// cachedSession is the Redis row encoding. Session hides its token columns
// from API JSON; the cache needs them round-tripped, so it keeps its own tags.
type cachedSession struct {
	SessionID    string    `json:"session_id"`
	UserID       int64     `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	IsActive     bool      `json:"is_active"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Cache) Insert(ctx context.Context, s *Session) error {
	if err := c.inner.Insert(ctx, s); err != nil {
		return err
	}
	c.set(ctx, s)
	return nil
}

func (c *Cache) FindBySessionID(ctx context.Context, sessionID string) (*Session, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if err == nil {
		var row cachedSession
		if err := json.Unmarshal(data, &row); err == nil {
			return row.session(), nil
		}
		// Unreadable entry; drop it and fall through to the store.
		c.del(ctx, sessionID)
	} else if err != redis.Nil {
		c.logger.Warn("redis read failed, falling back to store", zap.Error(err))
	}

	sess, err := c.inner.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, sess)
	return sess, nil
}

func (c *Cache) FindActiveByUserID(ctx context.Context, userID int64) ([]*Session, error) {
	return c.inner.FindActiveByUserID(ctx, userID)
}

func (c *Cache) UpdateAccessToken(ctx context.Context, sessionID, accessToken string) error {
	if err := c.inner.UpdateAccessToken(ctx, sessionID, accessToken); err != nil {
		return err
	}
	c.del(ctx, sessionID)
	return nil
}

func (c *Cache) Deactivate(ctx context.Context, sessionID string) error {
	if err := c.inner.Deactivate(ctx, sessionID); err != nil {
		return err
	}
	c.del(ctx, sessionID)
	return nil
}

func (c *Cache) DeactivateAllForUser(ctx context.Context, userID int64) error {
	// Collect the keys before the bulk write; afterwards the rows are no
	// longer listed as active.
	sessions, err := c.inner.FindActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := c.inner.DeactivateAllForUser(ctx, userID); err != nil {
		return err
	}
	for _, s := range sessions {
		c.del(ctx, s.SessionID)
	}
	return nil
}

func (c *Cache) DeactivateExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	// Cached rows carry expires_at and callers derive state from it, so a
	// stale active flag past expiry is never trusted. No invalidation needed.
	return c.inner.DeactivateExpiredBefore(ctx, now)
}

func (c *Cache) key(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (row *cachedSession) session() *Session {
	return &Session{
		SessionID:    row.SessionID,
		UserID:       row.UserID,
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		IPAddress:    row.IPAddress,
		UserAgent:    row.UserAgent,
		IsActive:     row.IsActive,
		ExpiresAt:    row.ExpiresAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (c *Cache) set(ctx context.Context, s *Session) {
	data, err := json.Marshal(&cachedSession{
		SessionID:    s.SessionID,
		UserID:       s.UserID,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		IPAddress:    s.IPAddress,
		UserAgent:    s.UserAgent,
		IsActive:     s.IsActive,
		ExpiresAt:    s.ExpiresAt,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	})
	if err != nil {
		c.logger.Warn("failed to marshal session for cache", zap.Error(err))
		return
	}

	ttl := c.ttl
	if remaining := time.Until(s.ExpiresAt); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	if err := c.client.Set(ctx, c.key(s.SessionID), data, ttl).Err(); err != nil {
		c.logger.Warn("failed to cache session", zap.Error(err))
	}
}

func (c *Cache) del(ctx context.Context, sessionID string) {
	if err := c.client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		c.logger.Warn("failed to drop cached session", zap.Error(err))
	}
}
