package api

import (
	"errors"

	"watthome/internal/models"
	"watthome/internal/store"
	"watthome/internal/web/middleware"
	webModels "watthome/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterAutomationRoutes(r *gin.Engine, mw *middleware.Manager, automations *store.AutomationStore) {
	group := r.Group("/automations")
	group.Use(mw.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			list, err := automations.ListForUser(c, userID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch automations"})
				return
			}
			if list == nil {
				list = []models.Automation{}
			}
			c.JSON(200, list)
		})

		group.POST("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var automation models.Automation
			if err := c.ShouldBindJSON(&automation); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			automation.UserID = userID
			if _, err := automations.Create(c, &automation); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			created, err := automations.GetByID(c, automation.ID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch created automation"})
				return
			}
			c.JSON(201, created)
		})

		group.GET("/:id", func(c *gin.Context) {
			automation, ok := ownedAutomation(c, automations)
			if !ok {
				return
			}
			c.JSON(200, automation)
		})

		group.PATCH("/:id", func(c *gin.Context) {
			automation, ok := ownedAutomation(c, automations)
			if !ok {
				return
			}
			var patch store.AutomationPatch
			if err := c.ShouldBindJSON(&patch); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := automations.Update(c, automation.ID, patch); err != nil {
				c.JSON(500, gin.H{"error": "Failed to update automation"})
				return
			}
			updated, err := automations.GetByID(c, automation.ID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch automation"})
				return
			}
			c.JSON(200, updated)
		})

		group.PATCH("/:id/active", func(c *gin.Context) {
			automation, ok := ownedAutomation(c, automations)
			if !ok {
				return
			}
			var req webModels.SetActiveRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := automations.SetActive(c, automation.ID, *req.IsActive); err != nil {
				c.JSON(500, gin.H{"error": "Failed to update automation"})
				return
			}
			c.JSON(200, gin.H{"id": automation.ID, "isActive": *req.IsActive})
		})

		group.DELETE("/:id", func(c *gin.Context) {
			automation, ok := ownedAutomation(c, automations)
			if !ok {
				return
			}
			if err := automations.Delete(c, automation.ID); err != nil {
				c.JSON(500, gin.H{"error": "Failed to delete automation"})
				return
			}
			c.JSON(200, gin.H{"status": "Automation deleted successfully"})
		})
	}
}

func ownedAutomation(c *gin.Context, automations *store.AutomationStore) (*models.Automation, bool) {
	userID := c.GetString("user_id")
	automation, err := automations.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "Automation not found"})
		} else {
			c.JSON(500, gin.H{"error": "Failed to fetch automation"})
		}
		return nil, false
	}
	if automation.UserID != userID {
		c.JSON(404, gin.H{"error": "Automation not found"})
		return nil, false
	}
	return automation, true
}
