package automation

import (
	"context"
	"testing"

	"watthome/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newThresholdEvaluator(automations *fakeAutomationStore, devices *fakeDeviceStore) *ThresholdTriggerEvaluator {
	executor := NewExecutor(automations, devices, zap.NewNop())
	return NewThresholdTriggerEvaluator(automations, devices, executor, zap.NewNop())
}

func thresholdAutomation(id string, kind models.TriggerKind, threshold float64) models.Automation {
	return models.Automation{
		ID:            id,
		Trigger:       kind,
		TriggerValue:  models.Flex(threshold),
		TriggerDevice: &models.DeviceRef{ID: "sensor"},
		Action:        models.ActionTurnOn,
		Devices:       []models.DeviceRef{{ID: "heater"}},
		IsActive:      true,
	}
}

func sensorStore(temperature any) *fakeDeviceStore {
	return &fakeDeviceStore{devices: map[string]*models.Device{
		"sensor": {ID: "sensor", DeviceType: models.DeviceTypeThermostat,
			Settings: map[string]any{"temperature": temperature}},
		"heater": {ID: "heater", DeviceType: models.DeviceTypeThermostat},
	}}
}

func TestThresholdComparisons(t *testing.T) {
	tests := []struct {
		name      string
		kind      models.TriggerKind
		threshold float64
		reading   any
		want      bool
	}{
		{"above fires when reading is higher", models.TriggerTemperatureAbove, 25, 26.0, true},
		{"above does not fire at equality", models.TriggerTemperatureAbove, 25, 25.0, false},
		{"above does not fire when lower", models.TriggerTemperatureAbove, 25, 24.0, false},
		{"below fires when reading is lower", models.TriggerTemperatureBelow, 18, 17.5, true},
		{"below does not fire at equality", models.TriggerTemperatureBelow, 18, 18.0, false},
		{"below does not fire when higher", models.TriggerTemperatureBelow, 18, 19.0, false},
		{"string readings are coerced", models.TriggerTemperatureAbove, 25, "26.5", true},
		{"unparseable readings are skipped", models.TriggerTemperatureAbove, 25, "warm", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			automations := &fakeAutomationStore{
				automations: []models.Automation{thresholdAutomation("a1", tt.kind, tt.threshold)},
			}
			evaluator := newThresholdEvaluator(automations, sensorStore(tt.reading))

			executed, err := evaluator.Evaluate(context.Background(), "user-1")
			require.NoError(t, err)
			if tt.want {
				assert.Equal(t, []string{"a1"}, executed)
			} else {
				assert.Empty(t, executed)
			}
		})
	}
}

func TestThresholdSkipsIncompleteRules(t *testing.T) {
	noTargets := thresholdAutomation("no-targets", models.TriggerTemperatureAbove, 25)
	noTargets.Devices = nil

	noSensor := thresholdAutomation("no-sensor", models.TriggerTemperatureAbove, 25)
	noSensor.TriggerDevice = nil

	noThreshold := thresholdAutomation("no-threshold", models.TriggerTemperatureAbove, 25)
	noThreshold.TriggerValue = nil

	automations := &fakeAutomationStore{
		automations: []models.Automation{noTargets, noSensor, noThreshold},
	}
	evaluator := newThresholdEvaluator(automations, sensorStore(30.0))

	executed, err := evaluator.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, executed)
}

func TestThresholdSkipsUnreadableSensor(t *testing.T) {
	automations := &fakeAutomationStore{
		automations: []models.Automation{thresholdAutomation("a1", models.TriggerTemperatureAbove, 25)},
	}
	devices := &fakeDeviceStore{devices: map[string]*models.Device{
		"heater": {ID: "heater", DeviceType: models.DeviceTypeThermostat},
	}}
	evaluator := newThresholdEvaluator(automations, devices)

	executed, err := evaluator.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, executed, "a missing sensor skips the rule, not the pass")
}

func TestThresholdRefiresWhileConditionHolds(t *testing.T) {
	automations := &fakeAutomationStore{
		automations: []models.Automation{thresholdAutomation("a1", models.TriggerTemperatureAbove, 25)},
	}
	evaluator := newThresholdEvaluator(automations, sensorStore(30.0))

	for i := 0; i < 3; i++ {
		executed, err := evaluator.Evaluate(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a1"}, executed, "pass %d", i)
	}
}
