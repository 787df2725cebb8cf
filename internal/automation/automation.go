// Package automation implements trigger evaluation and execution for
// user-defined automation rules.
package automation

import (
	"context"
	"time"

	"watthome/internal/models"
	"watthome/internal/store"
)

// AutomationStore is the slice of the automation adapter the evaluation core
// needs.
type AutomationStore interface {
	ListActiveForUser(ctx context.Context, userID string) ([]models.Automation, error)
	MarkTriggered(ctx context.Context, id string, at time.Time) error
}

// DeviceStore is the slice of the device adapter the evaluation core needs.
type DeviceStore interface {
	GetByID(ctx context.Context, id string) (*models.Device, error)
	SetState(ctx context.Context, id string, isOn bool) error
	PatchSettings(ctx context.Context, id string, patch map[string]any) error
}

var (
	_ AutomationStore = (*store.AutomationStore)(nil)
	_ DeviceStore     = (*store.DeviceStore)(nil)
)
