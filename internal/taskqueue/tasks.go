package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"watthome/internal/automation"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TaskTimeCheck      = "automation:time_check"
	TaskThresholdCheck = "automation:threshold_check"
)

// Evaluator instances are set once by the main application before workers
// start.
var (
	timeEvaluator      *automation.TimeTriggerEvaluator
	thresholdEvaluator *automation.ThresholdTriggerEvaluator
	logger             = zap.NewNop()
)

// SetGlobalInstances wires the evaluators the worker handlers run.
func SetGlobalInstances(timeEval *automation.TimeTriggerEvaluator, thresholdEval *automation.ThresholdTriggerEvaluator, log *zap.Logger) {
	timeEvaluator = timeEval
	thresholdEvaluator = thresholdEval
	logger = log
}

type checkPayload struct {
	UserID string `json:"user_id"`
}

// EnqueueTimeCheck queues a time-trigger evaluation pass for a user.
func EnqueueTimeCheck(userID string) error {
	return enqueueCheck(TaskTimeCheck, userID)
}

// EnqueueThresholdCheck queues a threshold-trigger evaluation pass for a user.
func EnqueueThresholdCheck(userID string) error {
	return enqueueCheck(TaskThresholdCheck, userID)
}

func enqueueCheck(taskType, userID string) error {
	if asynqClient == nil {
		return fmt.Errorf("task queue not started")
	}
	payload, err := json.Marshal(checkPayload{UserID: userID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(taskType, payload)
	_, err = asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(25*time.Second))
	if err != nil {
		return fmt.Errorf("enqueue %s for user %s: %w", taskType, userID, err)
	}
	return nil
}

func handleTimeCheck(ctx context.Context, t *asynq.Task) error {
	var payload checkPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("bad %s payload: %w", t.Type(), err)
	}
	executed, err := timeEvaluator.Evaluate(ctx, payload.UserID)
	if err != nil {
		logger.Error("time check failed", zap.String("user_id", payload.UserID), zap.Error(err))
		return err
	}
	if len(executed) > 0 {
		logger.Info("time check executed automations",
			zap.String("user_id", payload.UserID),
			zap.Strings("automation_ids", executed))
	}
	return nil
}

func handleThresholdCheck(ctx context.Context, t *asynq.Task) error {
	var payload checkPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("bad %s payload: %w", t.Type(), err)
	}
	executed, err := thresholdEvaluator.Evaluate(ctx, payload.UserID)
	if err != nil {
		logger.Error("threshold check failed", zap.String("user_id", payload.UserID), zap.Error(err))
		return err
	}
	if len(executed) > 0 {
		logger.Info("threshold check executed automations",
			zap.String("user_id", payload.UserID),
			zap.Strings("automation_ids", executed))
	}
	return nil
}
