package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"duka-auth-service/internal/domain/user"
	xerrors "duka-auth-service/internal/pkg/errors"
	"duka-auth-service/internal/pkg/session"
	"duka-auth-service/internal/pkg/token"
	"duka-auth-service/internal/repository/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDirectory struct {
	users map[int64]*user.User
}

func (d *stubDirectory) FindByID(ctx context.Context, id int64) (*user.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (d *stubDirectory) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range d.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (d *stubDirectory) TouchLastLogin(ctx context.Context, id int64) error {
	return nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := token.NewCodec(token.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		Issuer:        "duka-auth",
		Audience:      "duka-api",
	})
	require.NoError(t, err)

	dir := &stubDirectory{users: map[int64]*user.User{
		1: {ID: 1, Email: "user@example.com", Role: "user", IsActive: true},
		2: {ID: 2, Email: "admin@example.com", Role: "admin", IsActive: true},
	}}

	manager := session.NewManager(memory.NewSessionStore(), dir, codec, zap.NewNop())
	authMw := NewAuthMiddleware(manager, zap.NewNop())

	engine := gin.New()
	engine.GET("/me", authMw.Auth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    MustGetUserID(c),
			"session_id": MustGetSessionID(c),
			"role":       GetRole(c),
		})
	})
	admin := engine.Group("/admin", authMw.AdminOnly()...)
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return engine, manager
}

func doRequest(engine *gin.Engine, path, sessionID string, asCookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sessionID != "" {
		if asCookie {
			req.AddCookie(&http.Cookie{Name: "session_id", Value: sessionID})
		} else {
			req.Header.Set("Authorization", "Bearer "+sessionID)
		}
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingSession(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doRequest(engine, "/me", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_UnknownSession(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := doRequest(engine, "/me", "not-a-session", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ValidSession(t *testing.T) {
	engine, manager := newTestEngine(t)

	created, err := manager.CreateSession(context.Background(), 1, "1.2.3.4", "test")
	require.NoError(t, err)

	w := doRequest(engine, "/me", created.SessionID, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.SessionID)
	assert.Contains(t, w.Body.String(), `"user_id":1`)
}

func TestAuth_SessionCookieFallback(t *testing.T) {
	engine, manager := newTestEngine(t)

	created, err := manager.CreateSession(context.Background(), 1, "", "")
	require.NoError(t, err)

	w := doRequest(engine, "/me", created.SessionID, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RevokedSession(t *testing.T) {
	engine, manager := newTestEngine(t)
	ctx := context.Background()

	created, err := manager.CreateSession(ctx, 1, "", "")
	require.NoError(t, err)
	require.NoError(t, manager.DeactivateSession(ctx, created.SessionID))

	w := doRequest(engine, "/me", created.SessionID, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	engine, manager := newTestEngine(t)
	ctx := context.Background()

	userSess, err := manager.CreateSession(ctx, 1, "", "")
	require.NoError(t, err)
	adminSess, err := manager.CreateSession(ctx, 2, "", "")
	require.NoError(t, err)

	w := doRequest(engine, "/admin/ping", userSess.SessionID, false)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(engine, "/admin/ping", adminSess.SessionID, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

// A tampered stored token is renewed transparently, so the request still
// succeeds end to end.
func TestAuth_SurvivesStoredTokenRotation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	codec, err := token.NewCodec(token.Config{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		Issuer:        "duka-auth",
		Audience:      "duka-api",
		AccessTTL:     time.Minute,
	})
	require.NoError(t, err)

	store := memory.NewSessionStore()
	dir := &stubDirectory{users: map[int64]*user.User{
		1: {ID: 1, Email: "user@example.com", Role: "user", IsActive: true},
	}}
	manager := session.NewManager(store, dir, codec, zap.NewNop())
	authMw := NewAuthMiddleware(manager, zap.NewNop())

	engine := gin.New()
	engine.GET("/me", authMw.Auth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": MustGetUserID(c)})
	})

	ctx := context.Background()
	created, err := manager.CreateSession(ctx, 1, "", "")
	require.NoError(t, err)

	// Invalidate the stored access token out of band.
	require.NoError(t, store.UpdateAccessToken(ctx, created.SessionID, "garbage"))

	w := doRequest(engine, "/me", created.SessionID, false)
	assert.Equal(t, http.StatusOK, w.Code)

	refreshed, err := store.FindBySessionID(ctx, created.SessionID)
	require.NoError(t, err)
	assert.NotEqual(t, "garbage", refreshed.AccessToken)
}
