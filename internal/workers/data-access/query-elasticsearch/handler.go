package queryelasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"

	"desk-feedback-workers/internal/common/camunda"
	"desk-feedback-workers/internal/common/logger"
	"desk-feedback-workers/internal/common/metrics"
	"desk-feedback-workers/internal/workers/data-access/query-elasticsearch/queries"
)

const (
	TaskType = "query-elasticsearch"
)

var (
	ErrInvalidSearchInput            = errors.New("INVALID_SEARCH_INPUT")
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrSearchQueryFailed             = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout                 = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound                 = errors.New("INDEX_NOT_FOUND")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, mapErrorToCode(err), err.Error(), getRetryCount(err, job.Retries))
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidSearchInput)
	}
	if h.client == nil {
		return nil, ErrElasticsearchConnectionFailed
	}

	index := input.IndexName
	if index == "" {
		index = h.config.DefaultIndex
	}

	result, err := queries.Execute(ctx, h.client, queries.ElasticsearchQuery{
		Index:          index,
		QueryType:      input.QueryType,
		OrganizationID: input.OrganizationID,
		Filters:        input.Filters,
		From:           input.Pagination.From,
		Size:           input.Pagination.Size,
	})
	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			return nil, ErrSearchTimeout
		case errors.Is(err, queries.ErrUnknownQueryType), errors.Is(err, queries.ErrMissingFilter):
			return nil, fmt.Errorf("%w: %v", ErrInvalidSearchInput, err)
		case errors.Is(err, queries.ErrMissingIndex), errors.Is(err, queries.ErrIndexMissing):
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, index)
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	h.logger.Debug("search completed", map[string]interface{}{
		"queryType": input.QueryType,
		"index":     index,
		"totalHits": result.TotalHits,
	})

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
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

// failJob hands transient failures back to the broker with the remaining
// retries and raises a BPMN error for everything else.
func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	var err error
	if retries > 0 {
		_, err = client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(retries).
			ErrorMessage(errorMessage).
			Send(context.Background())
	} else {
		_, err = client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(errorCode).
			ErrorMessage(errorMessage).
			Send(context.Background())
	}
	if err != nil {
		h.logger.Error("failed to report job failure", map[string]interface{}{
			"error": err,
		})
	}
}

func mapErrorToCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSearchInput):
		return "INVALID_SEARCH_INPUT"
	case errors.Is(err, ErrIndexNotFound):
		return "INDEX_NOT_FOUND"
	case errors.Is(err, ErrSearchTimeout):
		return "SEARCH_TIMEOUT"
	case errors.Is(err, ErrSearchQueryFailed):
		return "SEARCH_QUERY_FAILED"
	case errors.Is(err, ErrElasticsearchConnectionFailed):
		return "ELASTICSEARCH_CONNECTION_FAILED"
	}
	return "UNKNOWN_ERROR"
}

// getRetryCount returns the retries left for a transient failure, capped by
// the per-error budget; 0 means the failure is not retried.
func getRetryCount(err error, remaining int32) int32 {
	var budget int32
	switch {
	case errors.Is(err, ErrElasticsearchConnectionFailed), errors.Is(err, ErrSearchQueryFailed):
		budget = 3
	case errors.Is(err, ErrSearchTimeout):
		budget = 2
	default:
		return 0
	}
	left := remaining - 1
	if left > budget {
		left = budget
	}
	if left < 0 {
		return 0
	}
	return left
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
