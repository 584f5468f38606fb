package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := stderrors.New("connection reset")

	tests := []struct {
		name          string
		err           *StandardError
		wantCode      ErrorCode
		wantRetryable bool
	}{
		{"invalid input", NewInvalidInputError("organizationId is required"), ErrCodeInvalidInput, false},
		{"invalid rating", NewInvalidRatingError(cause), ErrCodeInvalidRating, false},
		{"database connection", NewDatabaseConnectionFailedError(cause), ErrCodeDatabaseConnectionFailed, true},
		{"query failed", NewFeedbackQueryFailedError("feedback_batch", cause), ErrCodeFeedbackQueryFailed, true},
		{"query timeout", NewFeedbackQueryTimeoutError("feedback_batch"), ErrCodeFeedbackQueryTimeout, true},
		{"update failed", NewFeedbackUpdateFailedError(cause), ErrCodeFeedbackUpdateFailed, true},
		{"invalid query type", NewInvalidQueryTypeError("desk_bookings"), ErrCodeInvalidQueryType, false},
		{"analysis failed", NewAnalysisFailedError(cause), ErrCodeAnalysisFailed, false},
		{"lexicon", NewLexiconLoadFailedError("nl.yaml", cause), ErrCodeLexiconLoadFailed, false},
		{"cache", NewCacheFailedError(cause), ErrCodeCacheFailed, true},
		{"publish", NewPublishFailedError("feedback-analyses", cause), ErrCodePublishFailed, true},
		{"engine rejected", NewWorkflowEngineError(ErrCodeWorkflowEngineRejected, "complete", cause), ErrCodeWorkflowEngineRejected, false},
		{"engine unavailable", NewWorkflowEngineError(ErrCodeWorkflowEngineUnavailable, "complete", cause), ErrCodeWorkflowEngineUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantRetryable, tt.err.Retryable)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.wantCode))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewFeedbackQueryFailedError("feedback_batch", stderrors.New("boom")))
	assert.Equal(t, "FEEDBACK_QUERY_FAILED", bpmn.Code)
	assert.True(t, bpmn.Retryable)
	assert.Equal(t, 3, bpmn.Retries)
	assert.Equal(t, "FEEDBACK_QUERY_FAILED", bpmn.ErrorVariables["originalErrorCode"])

	bpmn = ConvertToBPMNError(NewInvalidRatingError(stderrors.New("wifi rating 7 outside 1-5")))
	assert.Equal(t, "INVALID_RATING", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)

	bpmn = ConvertToBPMNError(NewWorkflowEngineError(ErrCodeWorkflowEngineTimeout, "topology", stderrors.New("deadline exceeded")))
	assert.Equal(t, "WORKFLOW_ENGINE_TIMEOUT", bpmn.Code)
	assert.Equal(t, 2, bpmn.Retries)
}

func TestAsStandardError(t *testing.T) {
	wrapped := fmt.Errorf("analyze: %w", NewAnalysisFailedError(stderrors.New("boom")))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeAnalysisFailed, stdErr.Code)

	_, ok = AsStandardError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeFeedbackQueryFailed:       "DATABASE",
		ErrCodeFeedbackUpdateFailed:      "DATABASE",
		ErrCodeAnalysisFailed:            "ANALYTICS",
		ErrCodeLexiconLoadFailed:         "ANALYTICS",
		ErrCodeCacheFailed:               "CACHE",
		ErrCodePublishFailed:             "SEARCH",
		ErrCodeWorkflowEngineUnavailable: "WORKFLOW",
		ErrCodeInvalidRating:             "VALIDATION",
		ErrCodeInternal:                  "OTHER",
	}

	for code, want := range tests {
		t.Run(string(code), func(t *testing.T) {
			assert.Equal(t, want, GetErrorCategory(code))
		})
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodePublishFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeInvalidInput))
}
