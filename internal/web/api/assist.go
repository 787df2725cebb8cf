package api

import (
	"watthome/internal/assist"
	"watthome/internal/web/middleware"
	"watthome/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterAssistRoutes(r *gin.Engine, mw *middleware.Manager, svc *assist.Service) {
	group := r.Group("/assist")
	group.Use(mw.RequireAuth())
	{
		group.POST("/chat", func(c *gin.Context) {
			if !svc.Enabled() {
				c.JSON(503, gin.H{"error": "Assistant is not configured"})
				return
			}
			var req models.ChatRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			reply, err := svc.Chat(c, req.Messages)
			if err != nil {
				c.JSON(502, gin.H{"error": "Assistant is unavailable"})
				return
			}
			c.JSON(200, gin.H{"reply": reply})
		})
	}
}
