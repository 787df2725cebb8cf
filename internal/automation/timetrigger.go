package automation

import (
	"context"
	"fmt"
	"time"

	"watthome/internal/models"
	"watthome/internal/timeutil"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// graceWindowMinutes is how long past its scheduled time a Time of Day
// automation may still fire. Late checks inside the window fire (the app may
// have been backgrounded over the exact minute); beyond it the automation
// waits for the next day.
const graceWindowMinutes = 180

// TimeTriggerEvaluator decides which Time of Day automations should fire now.
type TimeTriggerEvaluator struct {
	automations AutomationStore
	executor    *Executor
	logger      *zap.Logger
	now         func() time.Time
}

func NewTimeTriggerEvaluator(automations AutomationStore, executor *Executor, logger *zap.Logger) *TimeTriggerEvaluator {
	return &TimeTriggerEvaluator{
		automations: automations,
		executor:    executor,
		logger:      logger,
		now:         time.Now,
	}
}

// Evaluate runs one polling pass for a user and returns the ids of the
// automations that fired. An automation fires when its scheduled time has
// arrived, the lateness is within the grace window, and it has not already
// fired today. Several automations sharing the same time all fire in one
// pass, in store iteration order.
func (e *TimeTriggerEvaluator) Evaluate(ctx context.Context, userID string) ([]string, error) {
	now := e.now()
	currentMinutes := timeutil.MinutesSinceMidnight(now)

	all, err := e.automations.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list automations for %s: %w", userID, err)
	}
	candidates := lo.Filter(all, func(a models.Automation, _ int) bool {
		return a.Trigger == models.TriggerTimeOfDay
	})

	var executed []string
	for _, a := range candidates {
		if a.TriggerTime == "" {
			continue
		}

		// At most one execution per calendar day, however often the
		// scheduler wakes.
		if a.LastTriggered != nil && timeutil.SameDay(*a.LastTriggered, now) {
			continue
		}

		triggerMinutes, err := timeutil.ParseClockMinutes(a.TriggerTime)
		if err != nil {
			e.logger.Warn("skipping automation with malformed trigger time",
				zap.String("automation_id", a.ID),
				zap.String("trigger_time", a.TriggerTime))
			continue
		}

		if currentMinutes < triggerMinutes {
			continue
		}
		if currentMinutes-triggerMinutes > graceWindowMinutes {
			e.logger.Info("trigger time too far past, waiting for next day",
				zap.String("automation_id", a.ID),
				zap.String("trigger_time", a.TriggerTime),
				zap.Int("minutes_late", currentMinutes-triggerMinutes))
			continue
		}

		e.logger.Info("time trigger fired",
			zap.String("automation_id", a.ID),
			zap.String("name", a.Name),
			zap.String("trigger_time", a.TriggerTime),
			zap.String("now", timeutil.FormatClock(now)))
		e.executor.Execute(ctx, a)
		executed = append(executed, a.ID)
	}
	return executed, nil
}
