package automation

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"watthome/internal/models"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ThresholdTriggerEvaluator decides which temperature automations should fire
// based on a live sensor reading.
//
// Unlike the time evaluator there is no per-day dedup here: a condition that
// stays true re-fires on every polling cycle while the automation is active.
// That keeps a thermostat responsive to changing conditions and is a
// deliberate asymmetry.
type ThresholdTriggerEvaluator struct {
	automations AutomationStore
	devices     DeviceStore
	executor    *Executor
	logger      *zap.Logger
}

func NewThresholdTriggerEvaluator(automations AutomationStore, devices DeviceStore, executor *Executor, logger *zap.Logger) *ThresholdTriggerEvaluator {
	return &ThresholdTriggerEvaluator{
		automations: automations,
		devices:     devices,
		executor:    executor,
		logger:      logger,
	}
}

// Evaluate runs one polling pass for a user and returns the ids of the
// automations that fired. A rule missing its target devices, threshold, or
// trigger device is inert and silently skipped; an unreadable sensor is a
// logged skip. Above fires iff reading > threshold, Below iff reading <
// threshold; equality never fires either kind.
func (e *ThresholdTriggerEvaluator) Evaluate(ctx context.Context, userID string) ([]string, error) {
	all, err := e.automations.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list automations for %s: %w", userID, err)
	}
	candidates := lo.Filter(all, func(a models.Automation, _ int) bool {
		return a.Trigger == models.TriggerTemperatureAbove || a.Trigger == models.TriggerTemperatureBelow
	})

	var executed []string
	for _, a := range candidates {
		if len(a.Devices) == 0 || a.TriggerDevice == nil || a.TriggerDevice.ID == "" {
			continue
		}
		threshold, ok := a.TriggerValue.Float64()
		if !ok {
			continue
		}

		sensor, err := e.devices.GetByID(ctx, a.TriggerDevice.ID)
		if err != nil {
			e.logger.Warn("trigger device unavailable",
				zap.String("automation_id", a.ID),
				zap.String("device_id", a.TriggerDevice.ID),
				zap.Error(err))
			continue
		}
		reading, ok := numericSetting(sensor.Settings, "temperature")
		if !ok {
			e.logger.Warn("trigger device has no readable temperature",
				zap.String("automation_id", a.ID),
				zap.String("device_id", sensor.ID))
			continue
		}

		var fire bool
		switch a.Trigger {
		case models.TriggerTemperatureAbove:
			fire = reading > threshold
		case models.TriggerTemperatureBelow:
			fire = reading < threshold
		}
		if !fire {
			continue
		}

		e.logger.Info("threshold trigger fired",
			zap.String("automation_id", a.ID),
			zap.String("name", a.Name),
			zap.String("trigger", string(a.Trigger)),
			zap.Float64("reading", reading),
			zap.Float64("threshold", threshold))
		e.executor.Execute(ctx, a)
		executed = append(executed, a.ID)
	}
	return executed, nil
}

// numericSetting coerces a settings entry to a usable float. Old records
// sometimes hold numbers as strings.
func numericSetting(settings map[string]any, key string) (float64, bool) {
	raw, ok := settings[key]
	if !ok {
		return 0, false
	}
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
