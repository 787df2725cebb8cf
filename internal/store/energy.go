package store

import "time"

// sessionUsage computes the energy and on-time accrued by a device session.
// The hourly rate is kWh per hour, so energy = rate * elapsed/3600. Elapsed
// time is truncated to whole seconds; a clock that went backwards accrues
// nothing.
func sessionUsage(hourlyRate float64, turnedOn, now time.Time) (kwh float64, seconds int64) {
	seconds = int64(now.Sub(turnedOn).Seconds())
	if seconds < 0 {
		return 0, 0
	}
	return hourlyRate * float64(seconds) / 3600.0, seconds
}
