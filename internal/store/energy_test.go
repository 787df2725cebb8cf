package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionUsage(t *testing.T) {
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		rate        float64
		elapsed     time.Duration
		wantKWh     float64
		wantSeconds int64
	}{
		{"half hour at rate 100", 100, 30 * time.Minute, 50, 1800},
		{"one hour at rate 2", 2, time.Hour, 2, 3600},
		{"ninety seconds at rate 1", 1, 90 * time.Second, 0.025, 90},
		{"zero elapsed", 100, 0, 0, 0},
		{"zero rate", 0, time.Hour, 0, 3600},
		{"sub-second elapsed truncates", 100, 900 * time.Millisecond, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kwh, seconds := sessionUsage(tt.rate, start, start.Add(tt.elapsed))
			assert.InDelta(t, tt.wantKWh, kwh, 1e-9)
			assert.Equal(t, tt.wantSeconds, seconds)
		})
	}
}

func TestSessionUsageClockWentBackwards(t *testing.T) {
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	kwh, seconds := sessionUsage(100, start, start.Add(-time.Minute))
	assert.Zero(t, kwh)
	assert.Zero(t, seconds)
}
