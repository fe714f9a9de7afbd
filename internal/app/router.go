// internal/app/router.go
package app

import (
	authHandler "duka-auth-service/internal/handlers/auth"
	"duka-auth-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/logout-all", h.AuthHandler.LogoutAll)
		authProtected.POST("/renew-session", h.AuthHandler.RenewSession)
		authProtected.GET("/sessions", h.AuthHandler.GetSessions)
		authProtected.GET("/me", h.AuthHandler.GetMe)
	}

	// ==================== Admin Routes ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.POST("/sessions/cleanup", h.AuthHandler.CleanupSessions)
		admin.DELETE("/users/:user_id/sessions", h.AuthHandler.RevokeUserSessions)
	}
}
