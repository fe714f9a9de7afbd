// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"duka-auth-service/internal/pkg/response"
	"duka-auth-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware is the HTTP-facing gateway into the session core. It extracts
// the opaque session identifier from the request, verifies it, and attaches
// the resolved identity to the request context. Every verification failure is
// a uniform 401 regardless of the internal cause.
type AuthMiddleware struct {
	sessions *session.Manager
	logger   *zap.Logger
}

func NewAuthMiddleware(sessions *session.Manager, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		logger:   logger,
	}
}

// Auth is the base authentication middleware.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := extractSessionID(c)
		if sessionID == "" {
			response.Unauthorized(c, "missing session")
			return
		}

		verified, err := m.sessions.VerifySession(c.Request.Context(), sessionID)
		if err != nil {
			// Infrastructure failure, not an authentication failure.
			m.logger.Error("session verification failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		if verified == nil {
			response.Unauthorized(c, "not authenticated")
			return
		}

		c.Set("user_id", verified.User.ID)
		c.Set("session_id", verified.SessionID)
		c.Set("email", verified.User.Email)
		c.Set("role", verified.User.Role)

		c.Next()
	}
}

// RequireRole requires the authenticated user to hold one of the given roles.
// MUST be used after Auth().
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := GetRole(c)
		if userRole == "" {
			response.Forbidden(c, "authentication required")
			return
		}

		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "insufficient permissions")
	}
}

// AdminOnly returns middlewares for admin-only routes (Auth + RequireRole).
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole("admin"),
	}
}

// extractSessionID pulls the opaque session identifier from the Authorization
// header, falling back to the session cookie.
func extractSessionID(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie("session_id"); err == nil {
		return cookie
	}

	return ""
}
