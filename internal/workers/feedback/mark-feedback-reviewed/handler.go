package markfeedbackreviewed

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"desk-feedback-workers/internal/common/camunda"
	"desk-feedback-workers/internal/common/errors"
	"desk-feedback-workers/internal/common/logger"
	"desk-feedback-workers/internal/common/metrics"
	"desk-feedback-workers/internal/workers/data-access/query-postgresql/queries"
)

const TaskType = "mark-feedback-reviewed"

type Handler struct {
	config       *Config
	repo         *queries.FeedbackRepository
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		repo:         queries.NewFeedbackRepository(db, false),
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func parseInput(variables string) (*Input, error) {
	if err := inputSchema.ValidateJSON(variables).Error(); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidInputError("input cannot be nil")
	}
	if input.OrganizationID <= 0 || len(input.FeedbackIDs) == 0 {
		return nil, errors.NewInvalidInputError("organizationId and feedbackIds are required")
	}

	ids := uniqueIDs(input.FeedbackIDs)
	reviewedAt := h.now().UTC()

	updated, err := h.repo.MarkReviewed(ctx, input.OrganizationID, ids, reviewedAt)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewFeedbackQueryTimeoutError("mark_reviewed")
		}
		return nil, errors.NewFeedbackUpdateFailedError(err)
	}
	metrics.FeedbackReviewed.Add(float64(updated))

	h.logger.Info("feedback marked as reviewed", map[string]interface{}{
		"organizationId": input.OrganizationID,
		"requested":      len(ids),
		"updated":        updated,
	})

	return &Output{
		OrganizationID: input.OrganizationID,
		Requested:      len(ids),
		Updated:        updated,
		ReviewedAt:     reviewedAt,
	}, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	if err := camunda.CompleteJob(context.Background(), client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := string(errors.ErrCodeInternal)
	if stdErr, ok := errors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
