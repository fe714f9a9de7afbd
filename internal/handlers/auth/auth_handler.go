// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"strconv"

	"duka-auth-service/internal/domain/auth"
	"duka-auth-service/internal/middleware"
	"duka-auth-service/internal/pkg/response"
	authUsecase "duka-auth-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles credential login and returns the opaque session identifier.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	verified, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		response.Unauthorized(c, "login failed")
		return
	}

	response.Success(c, http.StatusOK, "login successful", verified)
}

// Logout revokes the current session (requires auth).
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := middleware.MustGetSessionID(c)

	if err := h.authService.Logout(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// LogoutAll revokes every session of the current user (requires auth).
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "all sessions logged out", nil)
}

// RenewSession explicitly renews the current session's access token.
func (h *AuthHandler) RenewSession(c *gin.Context) {
	sessionID := middleware.MustGetSessionID(c)

	renewed, err := h.authService.RenewSession(c.Request.Context(), sessionID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "session renewed", renewed)
}

// GetSessions lists the current user's active sessions.
func (h *AuthHandler) GetSessions(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	sessions, err := h.authService.ListSessions(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "sessions retrieved", sessions)
}

// GetMe returns the current user's projection.
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	info, err := h.authService.GetMe(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", info)
}

// CleanupSessions sweeps expired sessions (admin only; driven by an external
// scheduler).
func (h *AuthHandler) CleanupSessions(c *gin.Context) {
	count, err := h.authService.CleanupSessions(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "expired sessions cleaned up", gin.H{"count": count})
}

// RevokeUserSessions revokes every session of the given user (admin only).
func (h *AuthHandler) RevokeUserSessions(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "user sessions revoked", nil)
}
