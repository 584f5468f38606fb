package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"desk-feedback-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// QueryFunc returns: data, rowCount, executionTime (ms), error
type QueryFunc func(ctx context.Context, repo *FeedbackRepository, params map[string]interface{}) (interface{}, int, int64, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeFeedbackBatch:         FeedbackBatch,
	models.QueryTypeFeedbackUnreviewed:    FeedbackUnreviewed,
	models.QueryTypeFeedbackByID:          FeedbackByID,
	models.QueryTypeFeedbackSummaryCounts: FeedbackSummaryCounts,
}

func Execute(ctx context.Context, repo *FeedbackRepository, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, repo, params)
}

func FeedbackBatch(ctx context.Context, repo *FeedbackRepository, params map[string]interface{}) (interface{}, int, int64, error) {
	return loadBatch(ctx, repo, params, false)
}

func FeedbackUnreviewed(ctx context.Context, repo *FeedbackRepository, params map[string]interface{}) (interface{}, int, int64, error) {
	return loadBatch(ctx, repo, params, true)
}

func loadBatch(ctx context.Context, repo *FeedbackRepository, params map[string]interface{}, onlyUnreviewed bool) (interface{}, int, int64, error) {
	orgID, err := int64Param(params, "organizationId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	records, err := repo.LoadBatch(ctx, orgID, onlyUnreviewed)
	if err != nil {
		return nil, 0, 0, err
	}
	return records, len(records), time.Since(start).Milliseconds(), nil
}

func FeedbackByID(ctx context.Context, repo *FeedbackRepository, params map[string]interface{}) (interface{}, int, int64, error) {
	orgID, err := int64Param(params, "organizationId")
	if err != nil {
		return nil, 0, 0, err
	}
	feedbackID, err := int64Param(params, "feedbackId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	record, err := repo.LoadByID(ctx, orgID, feedbackID)
	if err != nil {
		return nil, 0, 0, err
	}
	return record, 1, time.Since(start).Milliseconds(), nil
}

func FeedbackSummaryCounts(ctx context.Context, repo *FeedbackRepository, params map[string]interface{}) (interface{}, int, int64, error) {
	orgID, err := int64Param(params, "organizationId")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	counts, err := repo.SummaryCounts(ctx, orgID)
	if err != nil {
		return nil, 0, 0, err
	}
	return counts, 1, time.Since(start).Milliseconds(), nil
}

func int64Param(params map[string]interface{}, name string) (int64, error) {
	v, ok := params[name].(int64)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	return v, nil
}

// IsInputError reports errors caused by the job variables rather than the database.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingParam) || errors.Is(err, ErrFeedbackNotFound)
}
