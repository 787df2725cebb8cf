package models

import "time"

// TriggerKind identifies what condition an automation waits for.
type TriggerKind string

const (
	TriggerTimeOfDay        TriggerKind = "Time of Day"
	TriggerTemperatureAbove TriggerKind = "Temperature Above"
	TriggerTemperatureBelow TriggerKind = "Temperature Below"
)

// ActionKind identifies what an automation does to its target devices.
type ActionKind string

const (
	ActionTurnOn         ActionKind = "Turn On"
	ActionTurnOff        ActionKind = "Turn Off"
	ActionSetTemperature ActionKind = "Set Temperature"
	ActionSetBrightness  ActionKind = "Set Brightness"
)

// Known device types. The settings map is type-dependent: thermostats carry
// "temperature", smart lights carry "brightness".
const (
	DeviceTypeSmartLight     = "Smart Light"
	DeviceTypeThermostat     = "Thermostat"
	DeviceTypeTV             = "TV"
	DeviceTypeRoomba         = "Roomba"
	DeviceTypeWashingMachine = "Washing Machine"
	DeviceTypeCCTV           = "CCTV"
)

// Device represents one controllable smart-home entity.
type Device struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	DeviceName       string         `json:"deviceName"`
	DeviceType       string         `json:"deviceType"`
	Location         string         `json:"location"`
	IsOn             bool           `json:"isOn"`
	Settings         map[string]any `json:"settings"`
	EnergyUsage      float64        `json:"energyUsage"`    // hourly rate, kWh per hour
	TotalEnergy      float64        `json:"totalEnergy"`    // accumulated, bumped on the on->off transition
	TotalUsageTime   int64          `json:"totalUsageTime"` // seconds
	LastTurnedOnTime *time.Time     `json:"lastTurnedOnTime"`
	CreatedAt        time.Time      `json:"createdAt"`
	LastUpdated      time.Time      `json:"lastUpdated"`
}

// DeviceRef is a denormalized pointer at a device, with the name and type
// cached at automation-creation time, as stored inside automation documents.
type DeviceRef struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	DeviceType string `json:"deviceType,omitempty"`
}

// Automation is a user-defined rule: when the trigger condition holds,
// perform the action on the target devices.
//
// Exactly one trigger kind applies. TriggerTime is only meaningful for
// Time of Day; TriggerValue and TriggerDevice only for the temperature kinds.
// The wire field for the action kind is "actions" (legacy client shape).
type Automation struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Name          string      `json:"name"`
	Trigger       TriggerKind `json:"trigger"`
	TriggerTime   string      `json:"triggerTime,omitempty"` // "HH:MM AM|PM"
	TriggerValue  *FlexNumber `json:"triggerValue,omitempty"`
	TriggerDevice *DeviceRef  `json:"triggerDevice,omitempty"`
	Devices       []DeviceRef `json:"devices"`
	Action        ActionKind  `json:"actions,omitempty"`
	ActionValue   *FlexNumber `json:"actionValue,omitempty"`
	IsActive      bool        `json:"isActive"`
	Frequency     string      `json:"frequency"` // "Daily"
	NotifyBefore  bool        `json:"notifyBefore"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastUpdated   time.Time   `json:"lastUpdated"`
	LastTriggered *time.Time  `json:"lastTriggered"`
}

// EnergyStats is the on-demand energy report for a device. While the device
// is on, the session figures are computed live and never persisted.
type EnergyStats struct {
	DeviceID           string  `json:"deviceId"`
	IsOn               bool    `json:"isOn"`
	TotalEnergy        float64 `json:"totalEnergy"`
	TotalUsageTime     int64   `json:"totalUsageTime"`
	CurrentSessionTime int64   `json:"currentSessionTime"`
	CurrentSessionKWh  float64 `json:"currentSessionKwh"`
}
