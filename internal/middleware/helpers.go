// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetUserID gets the authenticated user's ID from context.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := v.(int64)
	return id, ok
}

// MustGetUserID gets the user ID from context or panics.
func MustGetUserID(c *gin.Context) int64 {
	id, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return id
}

// GetSessionID gets the current session identifier from context.
func GetSessionID(c *gin.Context) (string, bool) {
	v, exists := c.Get("session_id")
	if !exists {
		return "", false
	}

	id, ok := v.(string)
	return id, ok
}

// MustGetSessionID gets the session identifier from context or panics.
func MustGetSessionID(c *gin.Context) string {
	id, exists := GetSessionID(c)
	if !exists {
		panic("session_id not found in context")
	}
	return id
}

// GetRole gets the authenticated user's role from context.
func GetRole(c *gin.Context) string {
	v, exists := c.Get("role")
	if !exists {
		return ""
	}

	role, ok := v.(string)
	if !ok {
		return ""
	}
	return role
}

// IsAuthenticated checks if request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}

// IsAdmin checks if the authenticated user is an admin.
func IsAdmin(c *gin.Context) bool {
	return GetRole(c) == "admin"
}
