// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports failed feedback jobs back to the broker. Transient
// failures are failed with a reduced retry count; the rest are thrown as BPMN
// errors for the process to route.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

const (
	outcomeRetry = "retry"
	outcomeThrow = "throw"
)

// jobFailure is the resolved answer to one failed job.
type jobFailure struct {
	std     *StandardError
	bpmn    *BPMNError
	retries int32
}

func (f jobFailure) outcome() string {
	if f.retries > 0 {
		return outcomeRetry
	}
	return outcomeThrow
}

// resolveFailure normalizes err and works out how many retries to hand back.
func resolveFailure(job entities.Job, err error) jobFailure {
	stdErr, ok := AsStandardError(err)
	if !ok {
		stdErr = newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
	}
	return jobFailure{
		std:     stdErr,
		bpmn:    ConvertToBPMNError(stdErr),
		retries: retriesLeft(stdErr.Code, job.Retries),
	}
}

// retriesLeft is the broker's remaining budget minus this attempt, capped by
// the per-code budget. Zero means the failure is thrown.
func retriesLeft(code ErrorCode, remaining int32) int32 {
	budget := int32(GetRetryCount(code))
	if budget == 0 {
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

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	failure := resolveFailure(job, err)
	h.logger.Error("feedback job failed", failureFields(job, failure))

	vars, hasVars := errorVariables(failure.bpmn)
	var sendErr error
	if failure.retries > 0 {
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(failure.retries).
			ErrorMessage(failure.bpmn.Message)
		if hasVars {
			if withVars, err := cmd.VariablesFromString(vars); err == nil {
				_, sendErr = withVars.Send(ctx)
				h.reportSendError(job, sendErr)
				return
			}
		}
		_, sendErr = cmd.Send(ctx)
	} else {
		cmd := client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(failure.bpmn.Code).
			ErrorMessage(failure.bpmn.Message)
		if hasVars {
			if withVars, err := cmd.VariablesFromString(vars); err == nil {
				_, sendErr = withVars.Send(ctx)
				h.reportSendError(job, sendErr)
				return
			}
		}
		_, sendErr = cmd.Send(ctx)
	}
	h.reportSendError(job, sendErr)
}

func (h *ErrorHandler) reportSendError(job entities.Job, err error) {
	if err == nil {
		return
	}
	h.logger.Error("failed to report job failure", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err,
	})
}

func errorVariables(bpmnErr *BPMNError) (string, bool) {
	data, err := json.Marshal(bpmnErr.ToErrorVariables())
	if err != nil {
		return "", false
	}
	return string(data), true
}

// failureFields builds the log fields for a failed job. The organization of
// the batch and any error metadata (query type, index) are included so
// failures can be traced to the feedback they concern.
func failureFields(job entities.Job, failure jobFailure) map[string]interface{} {
	fields := map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"workflowInstance": job.ProcessInstanceKey,
		"errorCode":        string(failure.std.Code),
		"bpmnErrorCode":    failure.bpmn.Code,
		"errorCategory":    GetErrorCategory(failure.std.Code),
		"message":          failure.bpmn.Message,
		"details":          failure.std.Details,
		"retryable":        failure.std.Retryable,
		"retriesLeft":      failure.retries,
		"outcome":          failure.outcome(),
	}
	if orgID, ok := organizationID(job.Variables); ok {
		fields["organizationId"] = orgID
	}
	for k, v := range failure.std.Metadata {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	return fields
}

func organizationID(variables string) (int64, bool) {
	if variables == "" {
		return 0, false
	}
	var vars struct {
		OrganizationID *int64 `json:"organizationId"`
	}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil || vars.OrganizationID == nil {
		return 0, false
	}
	return *vars.OrganizationID, true
}
