package api

import (
	"watthome/auth"
	"watthome/internal/web/middleware"
	"watthome/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(r *gin.Engine, authModule *auth.Module, mw *middleware.Manager) {
	group := r.Group("/users")
	group.Use(mw.RequireAuth())
	{
		group.GET("/me", func(c *gin.Context) {
			userID := c.GetString("user_id")
			username, email, err := authModule.GetUser(c, userID)
			if err != nil {
				c.JSON(404, gin.H{"error": "User not found"})
				return
			}
			c.JSON(200, models.User{ID: userID, Username: username, Email: email})
		})

		group.POST("/me/password", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req models.ChangePasswordRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := authModule.ChangePassword(c, userID, req.OldPassword, req.NewPassword); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"status": "Password changed"})
		})

		group.POST("/me/email", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req models.ChangeEmailRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := authModule.ChangeEmail(c, userID, req.Password, req.NewEmail); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"status": "Email changed"})
		})
	}
}
