package automation

import (
	"context"
	"testing"
	"time"

	"watthome/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTimeEvaluatorAt(automations *fakeAutomationStore, devices *fakeDeviceStore, now time.Time) *TimeTriggerEvaluator {
	executor := NewExecutor(automations, devices, zap.NewNop())
	executor.now = func() time.Time { return now }
	evaluator := NewTimeTriggerEvaluator(automations, executor, zap.NewNop())
	evaluator.now = func() time.Time { return now }
	return evaluator
}

func timeAutomation(id, triggerTime string, lastTriggered *time.Time) models.Automation {
	return models.Automation{
		ID:            id,
		Trigger:       models.TriggerTimeOfDay,
		TriggerTime:   triggerTime,
		Action:        models.ActionTurnOn,
		Devices:       []models.DeviceRef{{ID: "lamp"}},
		IsActive:      true,
		LastTriggered: lastTriggered,
	}
}

func lampStore() *fakeDeviceStore {
	return &fakeDeviceStore{devices: map[string]*models.Device{
		"lamp": {ID: "lamp", DeviceType: models.DeviceTypeSmartLight},
	}}
}

func TestTimeTriggerFires(t *testing.T) {
	tests := []struct {
		name        string
		triggerTime string
		now         time.Time
		want        bool
	}{
		{
			name:        "within the window",
			triggerTime: "10:00 AM",
			now:         time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
			want:        true,
		},
		{
			name:        "exactly on time",
			triggerTime: "10:00 AM",
			now:         time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			want:        true,
		},
		{
			name:        "at the window edge",
			triggerTime: "10:00 AM",
			now:         time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC),
			want:        true,
		},
		{
			name:        "one minute past the window",
			triggerTime: "10:00 AM",
			now:         time.Date(2024, 6, 1, 13, 1, 0, 0, time.UTC),
			want:        false,
		},
		{
			name:        "before the trigger time",
			triggerTime: "10:00 AM",
			now:         time.Date(2024, 6, 1, 9, 59, 0, 0, time.UTC),
			want:        false,
		},
		{
			name:        "midnight is 12 AM",
			triggerTime: "12:00 AM",
			now:         time.Date(2024, 6, 1, 0, 5, 0, 0, time.UTC),
			want:        true,
		},
		{
			name:        "noon is 12 PM",
			triggerTime: "12:00 PM",
			now:         time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC),
			want:        true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			automations := &fakeAutomationStore{
				automations: []models.Automation{timeAutomation("a1", tt.triggerTime, nil)},
			}
			evaluator := newTimeEvaluatorAt(automations, lampStore(), tt.now)

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

func TestTimeTriggerFiresAtMostOncePerDay(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

	earlierToday := time.Date(2024, 6, 1, 10, 1, 0, 0, time.UTC)
	automations := &fakeAutomationStore{
		automations: []models.Automation{timeAutomation("a1", "10:00 AM", &earlierToday)},
	}
	evaluator := newTimeEvaluatorAt(automations, lampStore(), now)

	executed, err := evaluator.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, executed, "already fired today")

	yesterday := now.AddDate(0, 0, -1)
	automations.automations = []models.Automation{timeAutomation("a1", "10:00 AM", &yesterday)}
	executed, err = evaluator.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, executed, "yesterday's run does not block today")
}

func TestTimeTriggerSkipsMalformedAndEmptyTimes(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	automations := &fakeAutomationStore{
		automations: []models.Automation{
			timeAutomation("bad", "25:99", nil),
			timeAutomation("empty", "", nil),
			timeAutomation("good", "10:00 AM", nil),
		},
	}
	evaluator := newTimeEvaluatorAt(automations, lampStore(), now)

	executed, err := evaluator.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, executed)
}

func TestTimeTriggerIgnoresOtherTriggerKinds(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	automations := &fakeAutomationStore{
		automations: []models.Automation{{
			ID:       "thresh",
			Trigger:  models.TriggerTemperatureAbove,
			Action:   models.ActionTurnOn,
			Devices:  []models.DeviceRef{{ID: "lamp"}},
			IsActive: true,
		}},
	}
	evaluator := newTimeEvaluatorAt(automations, lampStore(), now)

	executed, err := evaluator.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, executed)
}

func TestTimeTriggerFiresAllDueAutomations(t *testing.T) {
	now := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	automations := &fakeAutomationStore{
		automations: []models.Automation{
			timeAutomation("a1", "07:00 AM", nil),
			timeAutomation("a2", "7:00 AM", nil),
		},
	}
	evaluator := newTimeEvaluatorAt(automations, lampStore(), now)

	executed, err := evaluator.Evaluate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, executed)
	assert.Contains(t, automations.marked, "a1")
	assert.Contains(t, automations.marked, "a2")
}
