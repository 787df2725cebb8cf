package api

import (
	"errors"

	"watthome/internal/models"
	"watthome/internal/store"
	"watthome/internal/web/middleware"
	webModels "watthome/internal/web/models"

	"github.com/gin-gonic/gin"
)

func RegisterDeviceRoutes(r *gin.Engine, mw *middleware.Manager, devices *store.DeviceStore) {
	group := r.Group("/devices")
	group.Use(mw.RequireAuth())
	{
		group.GET("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			list, err := devices.ListForUser(c, userID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch devices"})
				return
			}
			if list == nil {
				list = []models.Device{}
			}
			c.JSON(200, list)
		})

		group.POST("", func(c *gin.Context) {
			userID := c.GetString("user_id")
			var req webModels.AddDeviceRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			device := models.Device{
				UserID:      userID,
				DeviceName:  req.DeviceName,
				DeviceType:  req.DeviceType,
				Location:    req.Location,
				EnergyUsage: req.EnergyUsage,
				Settings:    req.Settings,
			}
			if _, err := devices.Create(c, &device); err != nil {
				c.JSON(500, gin.H{"error": "Failed to create device"})
				return
			}
			created, err := devices.GetByID(c, device.ID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch created device"})
				return
			}
			c.JSON(201, created)
		})

		group.GET("/energy/total", func(c *gin.Context) {
			userID := c.GetString("user_id")
			total, err := devices.TotalEnergyForUser(c, userID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to compute total energy"})
				return
			}
			c.JSON(200, gin.H{"userId": userID, "totalEnergy": total})
		})

		group.GET("/:id", func(c *gin.Context) {
			device, ok := ownedDevice(c, devices)
			if !ok {
				return
			}
			c.JSON(200, device)
		})

		group.PUT("/:id/state", func(c *gin.Context) {
			device, ok := ownedDevice(c, devices)
			if !ok {
				return
			}
			var req webModels.SetStateRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := devices.SetState(c, device.ID, *req.IsOn); err != nil {
				c.JSON(500, gin.H{"error": "Failed to update device state"})
				return
			}
			updated, err := devices.GetByID(c, device.ID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch device"})
				return
			}
			c.JSON(200, updated)
		})

		group.PATCH("/:id/settings", func(c *gin.Context) {
			device, ok := ownedDevice(c, devices)
			if !ok {
				return
			}
			var req webModels.PatchSettingsRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(400, gin.H{"error": "Invalid request"})
				return
			}
			if err := devices.PatchSettings(c, device.ID, req.Settings); err != nil {
				c.JSON(500, gin.H{"error": "Failed to update settings"})
				return
			}
			settings, err := devices.GetSettings(c, device.ID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to fetch settings"})
				return
			}
			c.JSON(200, gin.H{"id": device.ID, "settings": settings})
		})

		group.GET("/:id/energy", func(c *gin.Context) {
			device, ok := ownedDevice(c, devices)
			if !ok {
				return
			}
			stats, err := devices.EnergyStats(c, device.ID)
			if err != nil {
				c.JSON(500, gin.H{"error": "Failed to compute energy stats"})
				return
			}
			c.JSON(200, stats)
		})

		group.DELETE("/:id", func(c *gin.Context) {
			device, ok := ownedDevice(c, devices)
			if !ok {
				return
			}
			if err := devices.Delete(c, device.ID); err != nil {
				c.JSON(500, gin.H{"error": "Failed to delete device"})
				return
			}
			c.JSON(200, gin.H{"status": "Device deleted successfully"})
		})
	}
}

// ownedDevice resolves the :id parameter and enforces ownership. On failure
// it writes the response and returns ok=false.
func ownedDevice(c *gin.Context, devices *store.DeviceStore) (*models.Device, bool) {
	userID := c.GetString("user_id")
	device, err := devices.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(404, gin.H{"error": "Device not found"})
		} else {
			c.JSON(500, gin.H{"error": "Failed to fetch device"})
		}
		return nil, false
	}
	if device.UserID != userID {
		c.JSON(404, gin.H{"error": "Device not found"})
		return nil, false
	}
	return device, true
}
