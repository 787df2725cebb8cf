package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func countingEnqueue(counter *atomic.Int32) func(string) error {
	return func(string) error {
		counter.Add(1)
		return nil
	}
}

func TestStartUserRunsInitialCheck(t *testing.T) {
	var timeChecks, thresholdChecks atomic.Int32
	s := New(zap.NewNop(), countingEnqueue(&timeChecks), countingEnqueue(&thresholdChecks))
	s.initialDelay = 10 * time.Millisecond
	s.Run()
	defer s.Shutdown()

	s.StartUser("user-1")

	assert.Eventually(t, func() bool {
		return timeChecks.Load() >= 1 && thresholdChecks.Load() >= 1
	}, time.Second, 10*time.Millisecond, "initial one-shot should run both checks")
}

func TestStartUserIsIdempotent(t *testing.T) {
	s := New(zap.NewNop(), countingEnqueue(new(atomic.Int32)), countingEnqueue(new(atomic.Int32)))
	s.initialDelay = time.Hour
	s.Run()
	defer s.Shutdown()

	s.StartUser("user-1")
	s.StartUser("user-1")
	s.StartUser("user-1")
	assert.Equal(t, 1, s.ActiveUsers())
}

func TestStopUserIsSafeWhenNothingRuns(t *testing.T) {
	s := New(zap.NewNop(), countingEnqueue(new(atomic.Int32)), countingEnqueue(new(atomic.Int32)))
	s.Run()
	defer s.Shutdown()

	s.StopUser("nobody")
	assert.Equal(t, 0, s.ActiveUsers())
}

func TestStopUserCancelsTimers(t *testing.T) {
	var timeChecks atomic.Int32
	s := New(zap.NewNop(), countingEnqueue(&timeChecks), countingEnqueue(new(atomic.Int32)))
	s.initialDelay = 200 * time.Millisecond
	s.Run()
	defer s.Shutdown()

	s.StartUser("user-1")
	s.StopUser("user-1")
	assert.Equal(t, 0, s.ActiveUsers())

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), timeChecks.Load(), "stopped user must not get the initial check")
}

func TestStopAll(t *testing.T) {
	s := New(zap.NewNop(), countingEnqueue(new(atomic.Int32)), countingEnqueue(new(atomic.Int32)))
	s.initialDelay = time.Hour
	s.Run()
	defer s.Shutdown()

	s.StartUser("user-1")
	s.StartUser("user-2")
	s.StartUser("user-3")
	assert.Equal(t, 3, s.ActiveUsers())

	s.StopAll()
	assert.Equal(t, 0, s.ActiveUsers())
}

func TestPanickingCallbackDoesNotCrash(t *testing.T) {
	s := New(zap.NewNop(),
		func(string) error { panic("boom") },
		func(string) error { panic("boom") })
	s.initialDelay = 10 * time.Millisecond
	s.Run()
	defer s.Shutdown()

	s.StartUser("user-1")
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, s.ActiveUsers())
}
