package models

import (
	"encoding/json"
	"time"
)

// NormalizeTimestamp converts the timestamp representations found in records
// migrated from the old document store into a time.Time. Three shapes exist
// in the wild: an RFC3339 string, a plain epoch-seconds number, and a
// {"seconds": n, "nanos": m} object. Returns false when the value is absent
// or none of the shapes match.
//
// All timestamp decoding goes through here so the evaluation core only ever
// sees time.Time.
func NormalizeTimestamp(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, true
		}
		return time.Time{}, false
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	case json.Number:
		if sec, err := v.Int64(); err == nil {
			return time.Unix(sec, 0), true
		}
		return time.Time{}, false
	case map[string]any:
		secRaw, ok := v["seconds"]
		if !ok {
			return time.Time{}, false
		}
		sec, ok := toInt64(secRaw)
		if !ok {
			return time.Time{}, false
		}
		var nanos int64
		if nRaw, ok := v["nanos"]; ok {
			nanos, _ = toInt64(nRaw)
		}
		return time.Unix(sec, nanos), true
	}
	return time.Time{}, false
}

// UnmarshalJSON tolerates the legacy timestamp shapes in automation payloads
// exported from the old store.
func (a *Automation) UnmarshalJSON(data []byte) error {
	type plain Automation
	aux := struct {
		*plain
		CreatedAt     any `json:"createdAt"`
		LastUpdated   any `json:"lastUpdated"`
		LastTriggered any `json:"lastTriggered"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t, ok := NormalizeTimestamp(aux.CreatedAt); ok {
		a.CreatedAt = t
	}
	if t, ok := NormalizeTimestamp(aux.LastUpdated); ok {
		a.LastUpdated = t
	}
	if t, ok := NormalizeTimestamp(aux.LastTriggered); ok {
		a.LastTriggered = &t
	}
	return nil
}

func toInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		v, err := n.Int64()
		return v, err == nil
	}
	return 0, false
}
