package analyzefeedback

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"desk-feedback-workers/internal/analytics"
	"desk-feedback-workers/internal/common/camunda"
	"desk-feedback-workers/internal/common/errors"
	"desk-feedback-workers/internal/common/logger"
	"desk-feedback-workers/internal/common/metrics"
	"desk-feedback-workers/internal/common/observability"
)

const TaskType = "analyze-feedback"

// FeedbackSource loads the feedback batch of an organization.
type FeedbackSource interface {
	LoadBatch(ctx context.Context, organizationID int64, onlyUnreviewed bool) ([]analytics.FeedbackRecord, error)
}

// Dependencies are the collaborators of the handler. Cache, Publisher and
// Recorder are optional.
type Dependencies struct {
	Source    FeedbackSource
	Cache     *Cache
	Publisher Publisher
	Lexicon   *analytics.Lexicon
	Recorder  observability.JobRecorder
	Logger    logger.Logger
}

type Handler struct {
	config       *Config
	source       FeedbackSource
	cache        *Cache
	publisher    Publisher
	lexicon      *analytics.Lexicon
	analyzer     *analytics.Analyzer
	recorder     observability.JobRecorder
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
	now          func() time.Time
}

func NewHandler(config *Config, deps Dependencies) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	lex := deps.Lexicon
	if lex == nil {
		lex = analytics.DefaultLexicon()
	}
	analyzer, err := analytics.NewAnalyzer(lex, config.Engine)
	if err != nil {
		return nil, err
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       config,
		source:       deps.Source,
		cache:        deps.Cache,
		publisher:    deps.Publisher,
		lexicon:      lex,
		analyzer:     analyzer,
		recorder:     deps.Recorder,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
		now:          time.Now,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err == nil {
		var output *Output
		output, err = h.execute(ctx, input)
		if err == nil {
			h.completeJob(client, job, output)
			h.record(ctx, "success", time.Since(start))
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
			return
		}
	}

	h.record(ctx, "failed", time.Since(start))
	h.failJob(client, job, err)
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

	records, err := h.loadRecords(ctx, input)
	if err != nil {
		return nil, err
	}

	analyzer, err := h.analyzerFor(input)
	if err != nil {
		return nil, err
	}

	output := &Output{
		AnalysisID:     uuid.NewString(),
		OrganizationID: input.OrganizationID,
		ItemCount:      len(records),
	}

	key, result := h.lookup(ctx, analyzer.Config(), records)
	if result != nil {
		output.Cached = true
	} else {
		result, err = analyzer.Analyze(records)
		if err != nil {
			if stderrors.Is(err, analytics.ErrInvalidRating) {
				return nil, errors.NewInvalidRatingError(err)
			}
			return nil, errors.NewAnalysisFailedError(err)
		}
		h.store(ctx, key, result)
		observeResult(result)
	}
	output.Result = result

	if input.Publish && h.publisher != nil {
		doc := NewAnalysisDocument(output.AnalysisID, input.OrganizationID, result, h.now())
		if err := h.publisher.Publish(ctx, doc); err != nil {
			return nil, errors.NewPublishFailedError(h.config.PublishIndex, err)
		}
		output.Published = true
	}

	h.logger.Info("feedback analyzed", map[string]interface{}{
		"analysisId": output.AnalysisID,
		"itemCount":  output.ItemCount,
		"cached":     output.Cached,
		"published":  output.Published,
		"urgent":     result.UrgencyDistribution[analytics.BucketInsufficient],
	})
	return output, nil
}

func (h *Handler) loadRecords(ctx context.Context, input *Input) ([]analytics.FeedbackRecord, error) {
	if input.OrganizationID == nil {
		if input.Feedback == nil {
			return nil, errors.NewInvalidInputError("either organizationId or feedback is required")
		}
		return input.Feedback, nil
	}
	if h.source == nil {
		return nil, errors.NewInvalidInputError("loading feedback by organization is not configured")
	}

	records, err := h.source.LoadBatch(ctx, *input.OrganizationID, input.OnlyUnreviewed)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewFeedbackQueryTimeoutError("feedback_batch")
		}
		return nil, errors.NewFeedbackQueryFailedError("feedback_batch", err)
	}
	return records, nil
}

// analyzerFor applies per-job overrides on top of the configured analyzer.
func (h *Handler) analyzerFor(input *Input) (*analytics.Analyzer, error) {
	if input.MinWordFreq == nil && input.NumTopics == nil {
		return h.analyzer, nil
	}

	engine := h.analyzer.Config()
	if input.MinWordFreq != nil {
		engine.MinWordFreq = *input.MinWordFreq
	}
	if input.NumTopics != nil {
		engine.NumTopics = *input.NumTopics
	}
	analyzer, err := analytics.NewAnalyzer(h.lexicon, engine)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	return analyzer, nil
}

// lookup returns the cache key and a cached result if there is one. Cache
// failures are logged and treated as misses.
func (h *Handler) lookup(ctx context.Context, engine analytics.Config, records []analytics.FeedbackRecord) (string, *analytics.BatchResult) {
	if h.cache == nil {
		return "", nil
	}

	key, err := CacheKey(h.lexicon.Fingerprint(), engine, records)
	if err != nil {
		h.cacheFailure("build cache key", err)
		return "", nil
	}

	result, hit, err := h.cache.Get(ctx, key)
	switch {
	case err != nil:
		h.cacheFailure("read cache", err)
		return key, nil
	case hit:
		metrics.FeedbackAnalysisCache.WithLabelValues("hit").Inc()
		return key, result
	default:
		metrics.FeedbackAnalysisCache.WithLabelValues("miss").Inc()
		return key, nil
	}
}

func (h *Handler) store(ctx context.Context, key string, result *analytics.BatchResult) {
	if h.cache == nil || key == "" {
		return
	}
	if err := h.cache.Set(ctx, key, result); err != nil {
		h.cacheFailure("write cache", err)
	}
}

func (h *Handler) cacheFailure(op string, err error) {
	metrics.FeedbackAnalysisCache.WithLabelValues("error").Inc()
	stdErr := errors.NewCacheFailedError(err)
	h.logger.Warn("analysis cache unavailable", map[string]interface{}{
		"operation": op,
		"errorCode": string(stdErr.Code),
		"error":     stdErr.Details,
	})
}

func observeResult(result *analytics.BatchResult) {
	metrics.FeedbackItemsAnalyzed.Add(float64(result.TotalItems))
	for _, item := range result.DetailedItems {
		metrics.FeedbackUrgencyScore.Observe(item.Urgency)
	}
}

func (h *Handler) record(ctx context.Context, status string, d time.Duration) {
	if h.recorder == nil {
		return
	}
	h.recorder.RecordJobProcessed(ctx, TaskType, status)
	h.recorder.RecordJobDuration(ctx, TaskType, d, status)
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
