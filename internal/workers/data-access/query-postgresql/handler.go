package querypostgresql

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
	"desk-feedback-workers/internal/models"
	"desk-feedback-workers/internal/workers/data-access/query-postgresql/queries"
)

const (
	TaskType = "query-postgresql"
)

type Handler struct {
	config       *Config
	repo         *queries.FeedbackRepository
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		repo:         queries.NewFeedbackRepository(db, config.RatingsInverted),
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
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

	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, errors.NewInvalidQueryTypeError(input.QueryType)
	}

	params := map[string]interface{}{
		"organizationId": input.OrganizationID,
	}
	if input.FeedbackID != 0 {
		params["feedbackId"] = input.FeedbackID
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.repo, queryType, params)
	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			return nil, errors.NewFeedbackQueryTimeoutError(input.QueryType)
		case queries.IsInputError(err):
			return nil, errors.NewInvalidInputError(err.Error())
		default:
			return nil, errors.NewFeedbackQueryFailedError(input.QueryType, err)
		}
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType":      input.QueryType,
		"organizationId": input.OrganizationID,
		"rowCount":       rowCount,
		"durationMs":     execTime,
	})

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
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
