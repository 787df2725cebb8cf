package automation

import (
	"context"
	"fmt"
	"time"

	"watthome/internal/models"

	"go.uber.org/zap"
)

// DeviceResult is the outcome of one action against one target device.
type DeviceResult struct {
	DeviceID string `json:"deviceId"`
	Success  bool   `json:"success"`
	Detail   string `json:"detail"` // action description or failure reason
}

// ExecutionResult aggregates the per-device outcomes of one automation run.
type ExecutionResult struct {
	AutomationID string         `json:"automationId"`
	Success      bool           `json:"success"`
	Devices      []DeviceResult `json:"devices"`
}

// Executor maps a fired automation onto device mutations.
type Executor struct {
	automations AutomationStore
	devices     DeviceStore
	logger      *zap.Logger
	now         func() time.Time
}

func NewExecutor(automations AutomationStore, devices DeviceStore, logger *zap.Logger) *Executor {
	return &Executor{
		automations: automations,
		devices:     devices,
		logger:      logger,
		now:         time.Now,
	}
}

// Execute runs the automation's action against every target device. Target
// devices are processed independently: one failure never blocks the rest.
// lastTriggered is stamped unconditionally afterwards, even when every
// per-device action failed, so a persistently failing Time of Day automation
// still counts as having run today. That retry semantic is deliberate.
func (e *Executor) Execute(ctx context.Context, a models.Automation) ExecutionResult {
	result := ExecutionResult{AutomationID: a.ID, Success: true}

	for _, target := range a.Devices {
		outcome := e.applyAction(ctx, a, target)
		if !outcome.Success {
			result.Success = false
			e.logger.Warn("automation action failed on device",
				zap.String("automation_id", a.ID),
				zap.String("device_id", target.ID),
				zap.String("reason", outcome.Detail))
		}
		result.Devices = append(result.Devices, outcome)
	}

	if err := e.automations.MarkTriggered(ctx, a.ID, e.now()); err != nil {
		e.logger.Error("failed to stamp lastTriggered",
			zap.String("automation_id", a.ID), zap.Error(err))
	}

	e.logger.Info("automation executed",
		zap.String("automation_id", a.ID),
		zap.String("name", a.Name),
		zap.Int("targets", len(a.Devices)),
		zap.Bool("success", result.Success))
	return result
}

func (e *Executor) applyAction(ctx context.Context, a models.Automation, target models.DeviceRef) DeviceResult {
	device, err := e.devices.GetByID(ctx, target.ID)
	if err != nil {
		return DeviceResult{DeviceID: target.ID, Detail: fmt.Sprintf("device unavailable: %v", err)}
	}

	switch a.Action {
	case models.ActionTurnOn:
		if err := e.devices.SetState(ctx, device.ID, true); err != nil {
			return DeviceResult{DeviceID: device.ID, Detail: err.Error()}
		}
		return DeviceResult{DeviceID: device.ID, Success: true, Detail: "turned on"}

	case models.ActionTurnOff:
		if err := e.devices.SetState(ctx, device.ID, false); err != nil {
			return DeviceResult{DeviceID: device.ID, Detail: err.Error()}
		}
		return DeviceResult{DeviceID: device.ID, Success: true, Detail: "turned off"}

	case models.ActionSetTemperature:
		return e.applySetting(ctx, device, a.ActionValue, "temperature", models.DeviceTypeThermostat)

	case models.ActionSetBrightness:
		return e.applySetting(ctx, device, a.ActionValue, "brightness", models.DeviceTypeSmartLight)

	default:
		return DeviceResult{DeviceID: device.ID, Detail: fmt.Sprintf("unsupported action %q", a.Action)}
	}
}

// applySetting writes an integer settings value, enforcing that the live
// device carries the required type. Mismatches are per-device failures and do
// not mutate the device.
func (e *Executor) applySetting(ctx context.Context, device *models.Device, value *models.FlexNumber, key, requiredType string) DeviceResult {
	if device.DeviceType != requiredType {
		return DeviceResult{
			DeviceID: device.ID,
			Detail:   fmt.Sprintf("set %s requires a %s, device is a %s", key, requiredType, device.DeviceType),
		}
	}
	v, ok := value.Int()
	if !ok {
		return DeviceResult{DeviceID: device.ID, Detail: fmt.Sprintf("set %s requires a numeric action value", key)}
	}
	if err := e.devices.PatchSettings(ctx, device.ID, map[string]any{key: v}); err != nil {
		return DeviceResult{DeviceID: device.ID, Detail: err.Error()}
	}
	return DeviceResult{DeviceID: device.ID, Success: true, Detail: fmt.Sprintf("%s set to %d", key, v)}
}
