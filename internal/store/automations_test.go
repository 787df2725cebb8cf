package store

import (
	"context"
	"testing"

	"watthome/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAutomationCreateValidation(t *testing.T) {
	s := NewAutomationStore(nil, zap.NewNop())

	tests := []struct {
		name       string
		automation models.Automation
		wantErr    string
	}{
		{
			name:       "missing user id",
			automation: models.Automation{Name: "morning", Trigger: models.TriggerTimeOfDay},
			wantErr:    "userId",
		},
		{
			name:       "missing name",
			automation: models.Automation{UserID: "u1", Trigger: models.TriggerTimeOfDay},
			wantErr:    "name",
		},
		{
			name:       "unknown trigger kind",
			automation: models.Automation{UserID: "u1", Name: "morning", Trigger: "On Sneeze"},
			wantErr:    "unknown trigger kind",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), &tt.automation)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildAutomationUpdateAlwaysStampsLastUpdated(t *testing.T) {
	sets, args := buildAutomationUpdate(AutomationPatch{})
	assert.Equal(t, []string{"last_updated = now()"}, sets)
	assert.Empty(t, args)
}

func TestBuildAutomationUpdateNumbersPlaceholders(t *testing.T) {
	name := "evening"
	active := true
	value := models.FlexNumber(21.5)

	sets, args := buildAutomationUpdate(AutomationPatch{
		Name:         &name,
		TriggerValue: &value,
		IsActive:     &active,
	})

	require.Len(t, args, 3)
	assert.Equal(t, []string{
		"last_updated = now()",
		"name = $1",
		"trigger_value = $2",
		"is_active = $3",
	}, sets)
	assert.Equal(t, "evening", args[0])
	assert.Equal(t, 21.5, args[1])
	assert.Equal(t, true, args[2])
}

func TestBuildAutomationUpdateActionColumn(t *testing.T) {
	action := models.ActionSetBrightness
	sets, args := buildAutomationUpdate(AutomationPatch{Action: &action})
	assert.Contains(t, sets, "action = $1")
	assert.Equal(t, "Set Brightness", args[0])
}
