// internal/pkg/token/codec.go
package token

import (
	"fmt"
	"time"

	xerrors "duka-auth-service/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Config carries the signing configuration. Both secrets are required;
// a missing secret is a startup-time failure, never a per-request one.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec signs and verifies the two token kinds with independent HMAC secrets,
// so compromise of one secret cannot forge tokens of the other kind.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("token codec: access token secret is not configured")
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("token codec: refresh token secret is not configured")
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}

	return &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		audience:      cfg.Audience,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

// AccessTTL returns the configured access-token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime. Sessions use it as
// their absolute expiry.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// SignAccessToken issues a short-lived access token bound to (userID, sessionID).
func (c *Codec) SignAccessToken(userID int64, sessionID string) (string, error) {
	return c.sign(userID, sessionID, KindAccess, c.accessSecret, c.accessTTL)
}

// SignRefreshToken issues a long-lived refresh token bound to (userID, sessionID).
func (c *Codec) SignRefreshToken(userID int64, sessionID string) (string, error) {
	return c.sign(userID, sessionID, KindRefresh, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) sign(userID int64, sessionID string, kind Kind, secret []byte, ttl time.Duration) (string, error) {
	now := c.now()

	claims := &Claims{
		UserID:    userID,
		SessionID: sessionID,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  []string{c.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify validates a token against the expected kind and returns its claims.
// Any signature, expiry, shape or kind mismatch comes back as
// xerrors.ErrInvalidToken; callers map it uniformly to "not authenticated".
func (c *Codec) Verify(tokenString string, expected Kind) (*Claims, error) {
	secret := c.accessSecret
	if expected == KindRefresh {
		secret = c.refreshSecret
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid claims", xerrors.ErrInvalidToken)
	}

	if claims.TokenType != expected {
		return nil, fmt.Errorf("%w: token is not a %s token", xerrors.ErrInvalidToken, expected)
	}
	if claims.UserID == 0 || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing subject claims", xerrors.ErrInvalidToken)
	}

	if claims.Issuer != c.issuer {
		return nil, fmt.Errorf("%w: invalid issuer", xerrors.ErrInvalidToken)
	}
	if !claims.VerifyAudience(c.audience, true) {
		return nil, fmt.Errorf("%w: invalid audience", xerrors.ErrInvalidToken)
	}

	return claims, nil
}
