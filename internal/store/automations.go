package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"watthome/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AutomationStore is the CRUD adapter for automation rule documents.
type AutomationStore struct {
	db     *Store
	logger *zap.Logger
}

func NewAutomationStore(db *Store, logger *zap.Logger) *AutomationStore {
	return &AutomationStore{db: db, logger: logger}
}

const automationColumns = `id, user_id, name, trigger_kind, trigger_time,
	trigger_value, trigger_device, devices, action, action_value, is_active,
	frequency, notify_before, created_at, last_updated, last_triggered`

func scanAutomation(row interface{ Scan(...any) error }) (*models.Automation, error) {
	var (
		a            models.Automation
		triggerTime  *string
		triggerValue *float64
		action       *string
		actionValue  *float64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Trigger, &triggerTime,
		&triggerValue, &a.TriggerDevice, &a.Devices, &action, &actionValue,
		&a.IsActive, &a.Frequency, &a.NotifyBefore, &a.CreatedAt,
		&a.LastUpdated, &a.LastTriggered)
	if err != nil {
		return nil, err
	}
	if triggerTime != nil {
		a.TriggerTime = *triggerTime
	}
	if triggerValue != nil {
		a.TriggerValue = models.Flex(*triggerValue)
	}
	if action != nil {
		a.Action = models.ActionKind(*action)
	}
	if actionValue != nil {
		a.ActionValue = models.Flex(*actionValue)
	}
	return &a, nil
}

// Create persists a new automation and returns its store-assigned id. A
// missing userId is rejected before any store call. Optional fields that were
// never supplied stay NULL in the row, so "never set" is distinguishable from
// "explicitly cleared".
func (s *AutomationStore) Create(ctx context.Context, a *models.Automation) (string, error) {
	if a.UserID == "" {
		return "", fmt.Errorf("automation is missing a userId")
	}
	if a.Name == "" {
		return "", fmt.Errorf("automation is missing a name")
	}
	switch a.Trigger {
	case models.TriggerTimeOfDay, models.TriggerTemperatureAbove, models.TriggerTemperatureBelow:
	default:
		return "", fmt.Errorf("unknown trigger kind %q", a.Trigger)
	}
	if a.Frequency == "" {
		a.Frequency = "Daily"
	}
	if a.Devices == nil {
		a.Devices = []models.DeviceRef{}
	}

	id := uuid.NewString()
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO automations
			(id, user_id, name, trigger_kind, trigger_time, trigger_value,
			 trigger_device, devices, action, action_value, is_active,
			 frequency, notify_before, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())`,
		id, a.UserID, a.Name, a.Trigger,
		nullString(a.TriggerTime), flexValue(a.TriggerValue), a.TriggerDevice,
		a.Devices, nullString(string(a.Action)), flexValue(a.ActionValue),
		a.IsActive, a.Frequency, a.NotifyBefore)
	if err != nil {
		return "", fmt.Errorf("create automation: %w", err)
	}
	a.ID = id
	return id, nil
}

// GetByID fetches one automation document.
func (s *AutomationStore) GetByID(ctx context.Context, id string) (*models.Automation, error) {
	row := s.db.pool.QueryRow(ctx, "SELECT "+automationColumns+" FROM automations WHERE id = $1", id)
	a, err := scanAutomation(row)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("automation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch automation %s: %w", id, err)
	}
	return a, nil
}

// ListForUser fetches every automation owned by a user.
func (s *AutomationStore) ListForUser(ctx context.Context, userID string) ([]models.Automation, error) {
	return s.list(ctx, "SELECT "+automationColumns+" FROM automations WHERE user_id = $1 ORDER BY created_at", userID)
}

// ListActiveForUser fetches the user's active automations, the candidate set
// for trigger evaluation.
func (s *AutomationStore) ListActiveForUser(ctx context.Context, userID string) ([]models.Automation, error) {
	return s.list(ctx, "SELECT "+automationColumns+" FROM automations WHERE user_id = $1 AND is_active ORDER BY created_at", userID)
}

func (s *AutomationStore) list(ctx context.Context, query string, args ...any) ([]models.Automation, error) {
	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list automations: %w", err)
	}
	defer rows.Close()

	var automations []models.Automation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan automation: %w", err)
		}
		automations = append(automations, *a)
	}
	return automations, rows.Err()
}

// AutomationPatch carries field edits; nil pointers leave the stored value
// untouched.
type AutomationPatch struct {
	Name          *string             `json:"name,omitempty"`
	Trigger       *models.TriggerKind `json:"trigger,omitempty"`
	TriggerTime   *string             `json:"triggerTime,omitempty"`
	TriggerValue  *models.FlexNumber  `json:"triggerValue,omitempty"`
	TriggerDevice *models.DeviceRef   `json:"triggerDevice,omitempty"`
	Devices       *[]models.DeviceRef `json:"devices,omitempty"`
	Action        *models.ActionKind  `json:"actions,omitempty"`
	ActionValue   *models.FlexNumber  `json:"actionValue,omitempty"`
	IsActive      *bool               `json:"isActive,omitempty"`
	Frequency     *string             `json:"frequency,omitempty"`
	NotifyBefore  *bool               `json:"notifyBefore,omitempty"`
}

// Update applies a patch. last_updated is stamped server-side on every call
// regardless of patch contents.
func (s *AutomationStore) Update(ctx context.Context, id string, patch AutomationPatch) error {
	sets, args := buildAutomationUpdate(patch)
	args = append(args, id)
	query := fmt.Sprintf("UPDATE automations SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	ct, err := s.db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update automation %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("automation %s: %w", id, ErrNotFound)
	}
	return nil
}

// buildAutomationUpdate turns a patch into SET clauses and their arguments.
// The last_updated stamp is always present.
func buildAutomationUpdate(patch AutomationPatch) ([]string, []any) {
	sets := []string{"last_updated = now()"}
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Trigger != nil {
		add("trigger_kind", *patch.Trigger)
	}
	if patch.TriggerTime != nil {
		add("trigger_time", *patch.TriggerTime)
	}
	if patch.TriggerValue != nil {
		add("trigger_value", float64(*patch.TriggerValue))
	}
	if patch.TriggerDevice != nil {
		add("trigger_device", *patch.TriggerDevice)
	}
	if patch.Devices != nil {
		add("devices", *patch.Devices)
	}
	if patch.Action != nil {
		add("action", string(*patch.Action))
	}
	if patch.ActionValue != nil {
		add("action_value", float64(*patch.ActionValue))
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.Frequency != nil {
		add("frequency", *patch.Frequency)
	}
	if patch.NotifyBefore != nil {
		add("notify_before", *patch.NotifyBefore)
	}
	return sets, args
}

// SetActive toggles the active flag.
func (s *AutomationStore) SetActive(ctx context.Context, id string, active bool) error {
	return s.Update(ctx, id, AutomationPatch{IsActive: &active})
}

// MarkTriggered stamps last_triggered. Called unconditionally after
// execution, even when every per-device action failed.
func (s *AutomationStore) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	ct, err := s.db.pool.Exec(ctx,
		"UPDATE automations SET last_triggered = $1 WHERE id = $2", at, id)
	if err != nil {
		return fmt.Errorf("mark automation triggered %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("automation %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an automation document.
func (s *AutomationStore) Delete(ctx context.Context, id string) error {
	ct, err := s.db.pool.Exec(ctx, "DELETE FROM automations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete automation %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("automation %s: %w", id, ErrNotFound)
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func flexValue(f *models.FlexNumber) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}
