package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"watthome/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const deviceCacheTTL = time.Hour

// DeviceStore is the CRUD adapter for device documents. It owns the
// energy-accumulation arithmetic on the on->off transition, mirrors live
// state into Redis, and fans mutations out as MQTT commands so physical
// devices follow.
type DeviceStore struct {
	db     *Store
	cache  *redis.Client
	mqtt   mqtt.Client
	logger *zap.Logger
}

// NewDeviceStore creates a device adapter. cache and mqttClient may be nil;
// both are best-effort side channels.
func NewDeviceStore(db *Store, cache *redis.Client, mqttClient mqtt.Client, logger *zap.Logger) *DeviceStore {
	return &DeviceStore{db: db, cache: cache, mqtt: mqttClient, logger: logger}
}

const deviceColumns = `id, user_id, device_name, device_type, location, is_on,
	settings, energy_usage, total_energy, total_usage_time, last_turned_on,
	created_at, last_updated`

func scanDevice(row interface{ Scan(...any) error }) (*models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.UserID, &d.DeviceName, &d.DeviceType, &d.Location,
		&d.IsOn, &d.Settings, &d.EnergyUsage, &d.TotalEnergy, &d.TotalUsageTime,
		&d.LastTurnedOnTime, &d.CreatedAt, &d.LastUpdated)
	if err != nil {
		return nil, err
	}
	if d.Settings == nil {
		d.Settings = map[string]any{}
	}
	return &d, nil
}

// Create persists a new device and returns its store-assigned id.
func (s *DeviceStore) Create(ctx context.Context, d *models.Device) (string, error) {
	if d.UserID == "" {
		return "", fmt.Errorf("device is missing a userId")
	}
	if d.Settings == nil {
		d.Settings = map[string]any{}
	}
	id := uuid.NewString()
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO devices
			(id, user_id, device_name, device_type, location, is_on, settings,
			 energy_usage, total_energy, total_usage_time, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7, 0, 0, now(), now())`,
		id, d.UserID, d.DeviceName, d.DeviceType, d.Location, d.Settings, d.EnergyUsage)
	if err != nil {
		return "", fmt.Errorf("create device: %w", err)
	}
	d.ID = id
	return id, nil
}

// GetByID fetches a device document. Missing ids map to ErrNotFound.
func (s *DeviceStore) GetByID(ctx context.Context, id string) (*models.Device, error) {
	row := s.db.pool.QueryRow(ctx, "SELECT "+deviceColumns+" FROM devices WHERE id = $1", id)
	d, err := scanDevice(row)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("device %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch device %s: %w", id, err)
	}
	return d, nil
}

// ListForUser fetches all devices owned by a user.
func (s *DeviceStore) ListForUser(ctx context.Context, userID string) ([]models.Device, error) {
	rows, err := s.db.pool.Query(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE user_id = $1 ORDER BY created_at", userID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

// SetState turns a device on or off.
//
// Turning on stamps last_turned_on; a device that is already on keeps its
// original stamp so the running session is not reset. Turning off folds the
// finished session into the persisted totals: elapsed seconds into
// total_usage_time, rate * hours into total_energy. A device with no
// last_turned_on stamp accrues nothing. Single-writer per device is assumed.
func (s *DeviceStore) SetState(ctx context.Context, id string, isOn bool) error {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	totalEnergy := d.TotalEnergy
	totalUsage := d.TotalUsageTime
	var lastOn *time.Time

	if isOn {
		if d.IsOn && d.LastTurnedOnTime != nil {
			lastOn = d.LastTurnedOnTime
		} else {
			lastOn = &now
		}
	} else if d.LastTurnedOnTime != nil {
		kwh, seconds := sessionUsage(d.EnergyUsage, *d.LastTurnedOnTime, now)
		totalEnergy += kwh
		totalUsage += seconds
		s.logger.Info("device session closed",
			zap.String("device_id", id),
			zap.Int64("seconds", seconds),
			zap.Float64("kwh", kwh))
	}

	_, err = s.db.pool.Exec(ctx, `
		UPDATE devices
		SET is_on = $1, last_turned_on = $2, total_energy = $3,
		    total_usage_time = $4, last_updated = now()
		WHERE id = $5`,
		isOn, lastOn, totalEnergy, totalUsage, id)
	if err != nil {
		return fmt.Errorf("update device state %s: %w", id, err)
	}

	d.IsOn = isOn
	d.LastTurnedOnTime = lastOn
	d.TotalEnergy = totalEnergy
	d.TotalUsageTime = totalUsage
	s.cacheState(ctx, d)
	s.publishCommand(id, map[string]any{"on": isOn})
	return nil
}

// PatchSettings merges the patch into the device settings map.
func (s *DeviceStore) PatchSettings(ctx context.Context, id string, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	ct, err := s.db.pool.Exec(ctx, `
		UPDATE devices
		SET settings = settings || $1::jsonb, last_updated = now()
		WHERE id = $2`,
		patch, id)
	if err != nil {
		return fmt.Errorf("patch device settings %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("device %s: %w", id, ErrNotFound)
	}

	if d, err := s.GetByID(ctx, id); err == nil {
		s.cacheState(ctx, d)
	}
	s.publishCommand(id, map[string]any{"settings": patch})
	return nil
}

// GetSettings fetches the settings map only.
func (s *DeviceStore) GetSettings(ctx context.Context, id string) (map[string]any, error) {
	var settings map[string]any
	err := s.db.pool.QueryRow(ctx, "SELECT settings FROM devices WHERE id = $1", id).Scan(&settings)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("device %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch device settings %s: %w", id, err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

// EnergyStats reports the accumulated totals plus, while the device is on,
// the live session computed against the current clock. The live figures are
// never written back.
func (s *DeviceStore) EnergyStats(ctx context.Context, id string) (*models.EnergyStats, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := &models.EnergyStats{
		DeviceID:       d.ID,
		IsOn:           d.IsOn,
		TotalEnergy:    d.TotalEnergy,
		TotalUsageTime: d.TotalUsageTime,
	}
	if d.IsOn && d.LastTurnedOnTime != nil {
		stats.CurrentSessionKWh, stats.CurrentSessionTime = sessionUsage(d.EnergyUsage, *d.LastTurnedOnTime, time.Now())
	}
	return stats, nil
}

// TotalEnergyForUser sums persisted totals across all of the user's devices,
// including the live session of any device currently on.
func (s *DeviceStore) TotalEnergyForUser(ctx context.Context, userID string) (float64, error) {
	devices, err := s.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	total := 0.0
	for _, d := range devices {
		total += d.TotalEnergy
		if d.IsOn && d.LastTurnedOnTime != nil {
			kwh, _ := sessionUsage(d.EnergyUsage, *d.LastTurnedOnTime, now)
			total += kwh
		}
	}
	return total, nil
}

// Delete removes a device document and drops its cache entry.
func (s *DeviceStore) Delete(ctx context.Context, id string) error {
	ct, err := s.db.pool.Exec(ctx, "DELETE FROM devices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete device %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("device %s: %w", id, ErrNotFound)
	}
	if s.cache != nil {
		s.cache.Del(ctx, "device:"+id)
	}
	return nil
}

// cacheState mirrors the device state snapshot into Redis. Snapshots are
// disposable; Postgres stays authoritative.
func (s *DeviceStore) cacheState(ctx context.Context, d *models.Device) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(map[string]any{
		"on":       d.IsOn,
		"settings": d.Settings,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, "device:"+d.ID, raw, deviceCacheTTL).Err(); err != nil {
		s.logger.Warn("device cache write failed", zap.String("device_id", d.ID), zap.Error(err))
	}
}

// publishCommand tells the physical device to follow the stored state.
func (s *DeviceStore) publishCommand(id string, payload map[string]any) {
	if s.mqtt == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	topic := fmt.Sprintf("devices/%s/commands", id)
	s.mqtt.Publish(topic, 1, false, raw)
}
