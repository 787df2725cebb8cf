package api

import (
	"strings"

	"watthome/auth"
	"watthome/internal/web/middleware"
	"watthome/internal/web/models"

	"github.com/gin-gonic/gin"
)

// SessionControl is what the auth routes need from the scheduler: polling
// starts when a user logs in and stops when the session ends.
type SessionControl interface {
	StartUser(userID string)
	StopUser(userID string)
}

func RegisterAuthRoutes(router *gin.Engine, authModule *auth.Module, mw *middleware.Manager, sessions SessionControl) {
	r := router.Group("/auth")
	{
		r.POST("/register", func(c *gin.Context) {
			var req models.RegisterRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			userID, token, err := authModule.RegisterWithJWT(c, req.Username, req.Password, req.Email)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			sessions.StartUser(userID)
			c.JSON(201, gin.H{"token": token, "userId": userID})
		})

		r.POST("/login", func(c *gin.Context) {
			var req models.LoginRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			userID, token, err := authModule.LoginWithJWT(c, req.Username, req.Password)
			if err != nil {
				c.JSON(401, gin.H{"error": err.Error()})
				return
			}
			sessions.StartUser(userID)
			c.JSON(200, gin.H{"token": token, "userId": userID})
		})
	}

	authed := router.Group("/auth")
	authed.Use(mw.RequireAuth())
	{
		authed.POST("/logout", func(c *gin.Context) {
			userID := c.GetString("user_id")
			sessions.StopUser(userID)
			token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			// best effort: only session tokens have server-side state
			_ = authModule.LogoutSession(c, token)
			c.JSON(200, gin.H{"status": "logged out"})
		})
	}
}
