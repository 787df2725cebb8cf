// Package scheduler owns the polling timers that drive automation checks for
// each active user session.
package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	timeCheckSpec      = "@every 30s"
	thresholdCheckSpec = "@every 60s"

	// first run shortly after start so a fresh session does not wait a
	// full interval
	defaultInitialDelay = 5 * time.Second
)

// Scheduler keys two recurring checks per user: a 30s time-trigger poll and a
// 60s threshold-trigger poll, plus a one-shot initial run of both. State is
// purely in-memory and rebuilt per session: login starts a user's timers,
// logout tears them down.
type Scheduler struct {
	cron             *cron.Cron
	logger           *zap.Logger
	enqueueTime      func(userID string) error
	enqueueThreshold func(userID string) error
	initialDelay     time.Duration

	mu   sync.Mutex
	jobs map[string]*userJobs
}

type userJobs struct {
	timeEntry      cron.EntryID
	thresholdEntry cron.EntryID
	initial        *time.Timer
}

// New creates a scheduler. The enqueue callbacks hand evaluation work to the
// task queue; they are invoked from timer goroutines and must be safe to call
// concurrently.
func New(logger *zap.Logger, enqueueTime, enqueueThreshold func(userID string) error) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		logger:           logger,
		enqueueTime:      enqueueTime,
		enqueueThreshold: enqueueThreshold,
		initialDelay:     defaultInitialDelay,
		jobs:             make(map[string]*userJobs),
	}
}

// Run starts the underlying cron loop.
func (s *Scheduler) Run() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Shutdown stops every user's timers and waits for running jobs to finish.
func (s *Scheduler) Shutdown() {
	s.StopAll()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// StartUser establishes the polling timers for a user session. Any existing
// timers for the user are torn down first, so restarting is idempotent.
func (s *Scheduler) StartUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(userID)

	timeEntry, err := s.cron.AddFunc(timeCheckSpec, func() {
		s.guarded("time check", userID, s.enqueueTime)
	})
	if err != nil {
		s.logger.Error("failed to schedule time check", zap.String("user_id", userID), zap.Error(err))
		return
	}
	thresholdEntry, err := s.cron.AddFunc(thresholdCheckSpec, func() {
		s.guarded("threshold check", userID, s.enqueueThreshold)
	})
	if err != nil {
		s.cron.Remove(timeEntry)
		s.logger.Error("failed to schedule threshold check", zap.String("user_id", userID), zap.Error(err))
		return
	}

	initial := time.AfterFunc(s.initialDelay, func() {
		s.guarded("initial time check", userID, s.enqueueTime)
		s.guarded("initial threshold check", userID, s.enqueueThreshold)
	})

	s.jobs[userID] = &userJobs{
		timeEntry:      timeEntry,
		thresholdEntry: thresholdEntry,
		initial:        initial,
	}
	s.logger.Info("automation polling started", zap.String("user_id", userID))
}

// StopUser cancels a user's timers. Safe to call when nothing is running.
func (s *Scheduler) StopUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(userID)
}

// StopAll cancels every user's timers.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID := range s.jobs {
		s.stopLocked(userID)
	}
}

// ActiveUsers reports how many user sessions have timers registered.
func (s *Scheduler) ActiveUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Scheduler) stopLocked(userID string) {
	jobs, ok := s.jobs[userID]
	if !ok {
		return
	}
	s.cron.Remove(jobs.timeEntry)
	s.cron.Remove(jobs.thresholdEntry)
	jobs.initial.Stop()
	delete(s.jobs, userID)
	s.logger.Info("automation polling stopped", zap.String("user_id", userID))
}

// guarded runs one check callback; a panic or error in a single cycle must
// never kill the timer.
func (s *Scheduler) guarded(name, userID string, fn func(string) error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler callback panicked",
				zap.String("check", name),
				zap.String("user_id", userID),
				zap.Any("panic", r))
		}
	}()
	if err := fn(userID); err != nil {
		s.logger.Error("scheduler check failed",
			zap.String("check", name),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
