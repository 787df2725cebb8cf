package automation

import (
	"context"
	"fmt"
	"time"

	"watthome/internal/models"
)

type fakeAutomationStore struct {
	automations []models.Automation
	listErr     error
	marked      map[string]time.Time
	markErr     error
}

func (f *fakeAutomationStore) ListActiveForUser(_ context.Context, _ string) ([]models.Automation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.automations, nil
}

func (f *fakeAutomationStore) MarkTriggered(_ context.Context, id string, at time.Time) error {
	if f.marked == nil {
		f.marked = map[string]time.Time{}
	}
	f.marked[id] = at
	return f.markErr
}

type fakeDeviceStore struct {
	devices  map[string]*models.Device
	states   map[string]bool
	patches  map[string]map[string]any
	stateErr error
}

func (f *fakeDeviceStore) GetByID(_ context.Context, id string) (*models.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, fmt.Errorf("device %s not found", id)
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDeviceStore) SetState(_ context.Context, id string, isOn bool) error {
	if f.stateErr != nil {
		return f.stateErr
	}
	if f.states == nil {
		f.states = map[string]bool{}
	}
	f.states[id] = isOn
	return nil
}

func (f *fakeDeviceStore) PatchSettings(_ context.Context, id string, patch map[string]any) error {
	if f.patches == nil {
		f.patches = map[string]map[string]any{}
	}
	f.patches[id] = patch
	return nil
}
