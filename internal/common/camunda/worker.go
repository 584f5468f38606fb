// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"desk-feedback-workers/internal/common/config"
	"desk-feedback-workers/internal/common/errors"
	"desk-feedback-workers/internal/common/logger"
)

// StartWorker opens a job worker for taskType. Disabled workers are skipped
// and nil is returned.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handlerFunc func(worker.JobClient, entities.Job),
	log logger.Logger,
) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jobWorker
}

// CompleteJob completes job with variables, retrying transient gateway
// failures with DefaultRetryConfig.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, variables interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(variables)
	if err != nil {
		return errors.NewWorkflowEngineError(errors.ErrCodeWorkflowEngineRejected, "complete job", err)
	}
	return ExecuteWithRetry(ctx, DefaultRetryConfig, "complete job", func(ctx context.Context) error {
		_, err := cmd.Send(ctx)
		return err
	})
}

// RetryWithBackoff calls operation up to maxRetries times, doubling the delay
// after every failure.
func RetryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
