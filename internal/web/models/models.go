package models

import "watthome/internal/assist"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type ChangeEmailRequest struct {
	Password string `json:"password" binding:"required"`
	NewEmail string `json:"newEmail" binding:"required"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AddDeviceRequest struct {
	DeviceName  string         `json:"deviceName" binding:"required"`
	DeviceType  string         `json:"deviceType" binding:"required"`
	Location    string         `json:"location"`
	EnergyUsage float64        `json:"energyUsage"`
	Settings    map[string]any `json:"settings"`
}

type SetStateRequest struct {
	IsOn *bool `json:"isOn" binding:"required"`
}

type PatchSettingsRequest struct {
	Settings map[string]any `json:"settings" binding:"required"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type ChatRequest struct {
	Messages []assist.Message `json:"messages" binding:"required"`
}
