package errors

import (
	stderrors "errors"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
)

func createJob(retries int32, variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                42,
		Type:               "feedback.analyze",
		ProcessInstanceKey: 420,
		Retries:            retries,
		Variables:          variables,
	}}
}

func TestRetriesLeft(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		remaining int32
		expected  int32
	}{
		{"budget caps remaining", ErrCodeFeedbackQueryFailed, 10, 3},
		{"remaining caps budget", ErrCodeFeedbackQueryFailed, 3, 2},
		{"last attempt throws", ErrCodeFeedbackQueryFailed, 1, 0},
		{"no retries left", ErrCodeCacheFailed, 0, 0},
		{"business error", ErrCodeInvalidRating, 5, 0},
		{"timeout budget", ErrCodeFeedbackQueryTimeout, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, retriesLeft(tt.code, tt.remaining))
		})
	}
}

func TestResolveFailure(t *testing.T) {
	t.Run("transient error is retried", func(t *testing.T) {
		failure := resolveFailure(createJob(3, ""), NewFeedbackQueryFailedError("feedback_batch", stderrors.New("boom")))
		assert.Equal(t, int32(2), failure.retries)
		assert.Equal(t, outcomeRetry, failure.outcome())
		assert.Equal(t, "FEEDBACK_QUERY_FAILED", failure.bpmn.Code)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		failure := resolveFailure(createJob(3, ""), stderrors.New("nil pointer"))
		assert.Equal(t, ErrCodeInternal, failure.std.Code)
		assert.Equal(t, "nil pointer", failure.std.Details)
		assert.Equal(t, outcomeThrow, failure.outcome())
	})
}

func TestFailureFields(t *testing.T) {
	job := createJob(3, `{"organizationId":7,"onlyUnreviewed":true}`)
	failure := resolveFailure(job, NewFeedbackQueryFailedError("feedback_batch", stderrors.New("connection reset")))

	fields := failureFields(job, failure)

	assert.Equal(t, int64(42), fields["jobKey"])
	assert.Equal(t, "feedback.analyze", fields["jobType"])
	assert.Equal(t, int64(420), fields["workflowInstance"])
	assert.Equal(t, "FEEDBACK_QUERY_FAILED", fields["errorCode"])
	assert.Equal(t, "DATABASE", fields["errorCategory"])
	assert.Equal(t, int64(7), fields["organizationId"])
	assert.Equal(t, "feedback_batch", fields["queryType"])
	assert.Equal(t, int32(2), fields["retriesLeft"])
	assert.Equal(t, outcomeRetry, fields["outcome"])
}

func TestFailureFields_InlineBatch(t *testing.T) {
	job := createJob(1, `{"feedback":[{"feedbackId":1}]}`)
	failure := resolveFailure(job, NewAnalysisFailedError(stderrors.New("lexicon missing topics")))

	fields := failureFields(job, failure)

	assert.NotContains(t, fields, "organizationId")
	assert.Equal(t, "ANALYTICS", fields["errorCategory"])
	assert.Equal(t, outcomeThrow, fields["outcome"])
}

func TestFailureFields_MetadataDoesNotOverrideJobFields(t *testing.T) {
	job := createJob(3, "")
	stdErr := NewFeedbackQueryFailedError("feedback_batch", stderrors.New("boom"))
	stdErr.Metadata["jobKey"] = "spoofed"

	fields := failureFields(job, resolveFailure(job, stdErr))

	assert.Equal(t, int64(42), fields["jobKey"])
}

func TestOrganizationID(t *testing.T) {
	id, ok := organizationID(`{"organizationId":12}`)
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	_, ok = organizationID(`{"organizationId":null}`)
	assert.False(t, ok)

	_, ok = organizationID(`not json`)
	assert.False(t, ok)

	_, ok = organizationID("")
	assert.False(t, ok)
}

func TestErrorVariables(t *testing.T) {
	vars, ok := errorVariables(ConvertToBPMNError(NewCacheFailedError(stderrors.New("redis down"))))
	assert.True(t, ok)
	assert.Contains(t, vars, `"errorCode":"CACHE_FAILED"`)
	assert.Contains(t, vars, `"retryable":true`)
}
